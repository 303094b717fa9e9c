package credential

import (
	"errors"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/repository"
)

type failureKind int

const (
	kindNone failureKind = iota
	kindMissing
	kindUnavailable
	kindFailed
)

func (k failureKind) String() string {
	switch k {
	case kindNone:
		return "none"
	case kindMissing:
		return "missing"
	case kindUnavailable:
		return "unavailable"
	default:
		return "failed"
	}
}

// result carries either a value or the kind of storage failure. It never
// leaves this package: the Store's exported methods collapse every failure
// into "absent".
type result[T any] struct {
	value T
	kind  failureKind
	err   error
}

func ok[T any](v T) result[T] {
	return result[T]{value: v}
}

func fail[T any](err error) result[T] {
	return result[T]{kind: classify(err), err: err}
}

func (r result[T]) ok() bool {
	return r.kind == kindNone
}

func classify(err error) failureKind {
	switch {
	case err == nil:
		return kindNone
	case errors.Is(err, repository.ErrKeyNotFound):
		return kindMissing
	case errors.Is(err, repository.ErrStorageUnavailable):
		return kindUnavailable
	default:
		return kindFailed
	}
}
