package credential

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/repository"
)

const (
	TokenKey = "authToken"
	UserKey  = "userData"
)

// Store owns the session token and the cached user blob. None of its
// methods return errors: when the backing storage is missing or failing,
// writes become no-ops and reads report absent. Callers must not assume a
// write persisted.
type Store struct {
	kv  repository.KeyValueStore
	log logger.Logger
}

// NewStore accepts a nil kv, which models an environment with no
// persistent storage at all.
func NewStore(kv repository.KeyValueStore, log logger.Logger) *Store {
	return &Store{kv: kv, log: log}
}

func (s *Store) SaveToken(ctx context.Context, token string) {
	if token == "" {
		s.log.Warn("credential.Store.SaveToken: refusing to persist empty token")
		return
	}
	if r := s.write(ctx, TokenKey, token); !r.ok() {
		s.log.Warn("credential.Store.SaveToken: token not persisted", "kind", r.kind.String(), "error", r.err)
	}
}

func (s *Store) GetToken(ctx context.Context) (string, bool) {
	r := s.readToken(ctx)
	if !r.ok() {
		return "", false
	}
	return r.value, true
}

// RemoveToken clears the token and the cached user blob. Idempotent.
func (s *Store) RemoveToken(ctx context.Context) {
	if r := s.remove(ctx, TokenKey, UserKey); !r.ok() {
		s.log.Warn("credential.Store.RemoveToken: clear failed", "kind", r.kind.String(), "error", r.err)
	}
}

// IsLoggedIn only checks that a token is present; it says nothing about
// whether the server still accepts it.
func (s *Store) IsLoggedIn(ctx context.Context) bool {
	_, ok := s.GetToken(ctx)
	return ok
}

func (s *Store) SaveUser(ctx context.Context, user *entity.User) {
	if user == nil {
		return
	}
	blob, err := json.Marshal(user)
	if err != nil {
		s.log.Warn("credential.Store.SaveUser: encode failed", "error", err)
		return
	}
	if r := s.write(ctx, UserKey, string(blob)); !r.ok() {
		s.log.Warn("credential.Store.SaveUser: user not persisted", "kind", r.kind.String(), "error", r.err)
	}
}

// StoredUser returns the last persisted user blob, unvalidated.
func (s *Store) StoredUser(ctx context.Context) (*entity.User, bool) {
	r := s.readUser(ctx)
	if !r.ok() {
		return nil, false
	}
	return r.value, true
}

func (s *Store) readToken(ctx context.Context) result[string] {
	r := s.read(ctx, TokenKey)
	if r.ok() && r.value == "" {
		return result[string]{kind: kindMissing}
	}
	// A nil backend is a configured state, not worth a warning per request.
	if r.kind == kindFailed || (r.kind == kindUnavailable && s.kv != nil) {
		s.log.Warn("credential.Store.GetToken: read failed", "kind", r.kind.String(), "error", r.err)
	}
	return r
}

func (s *Store) readUser(ctx context.Context) result[*entity.User] {
	raw := s.read(ctx, UserKey)
	if !raw.ok() {
		return result[*entity.User]{kind: raw.kind, err: raw.err}
	}
	var user entity.User
	if err := json.Unmarshal([]byte(raw.value), &user); err != nil {
		s.log.Warn("credential.Store.StoredUser: corrupt user blob", "error", err)
		return result[*entity.User]{kind: kindFailed, err: fmt.Errorf("decode user blob: %w", err)}
	}
	return ok(&user)
}

func (s *Store) read(ctx context.Context, key string) result[string] {
	if s.kv == nil {
		return fail[string](repository.ErrStorageUnavailable)
	}
	v, err := s.kv.Get(ctx, key)
	if err != nil {
		return fail[string](err)
	}
	return ok(v)
}

func (s *Store) write(ctx context.Context, key, value string) result[struct{}] {
	if s.kv == nil {
		return fail[struct{}](repository.ErrStorageUnavailable)
	}
	if err := s.kv.Set(ctx, key, value); err != nil {
		return fail[struct{}](err)
	}
	return ok(struct{}{})
}

func (s *Store) remove(ctx context.Context, keys ...string) result[struct{}] {
	if s.kv == nil {
		return fail[struct{}](repository.ErrStorageUnavailable)
	}
	if err := s.kv.Delete(ctx, keys...); err != nil {
		return fail[struct{}](err)
	}
	return ok(struct{}{})
}
