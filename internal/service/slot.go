package service

import (
	"context"
	"sync"
)

// requestSlot tracks the latest call of one operation kind. Beginning a
// call cancels the previous one and issues a new sequence number; only
// the holder of the latest number may apply its result.
type requestSlot struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func (s *requestSlot) begin(parent context.Context) (context.Context, uint64, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.seq++
	s.cancel = cancel
	seq := s.seq

	return ctx, seq, func() {
		cancel()
		s.mu.Lock()
		if s.seq == seq {
			s.cancel = nil
		}
		s.mu.Unlock()
	}
}

func (s *requestSlot) isCurrent(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq == seq
}

// invalidate drops whatever is in flight without starting a new call.
func (s *requestSlot) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
}
