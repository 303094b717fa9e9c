package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/adapter/gateway"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/metrics"
)

type AuthAPI interface {
	Login(ctx context.Context, req entity.LoginRequest) (*entity.AuthResponse, error)
	Register(ctx context.Context, req entity.RegisterRequest) (*entity.AuthResponse, error)
	Logout(ctx context.Context) (string, error)
	Profile(ctx context.Context) (*entity.User, error)
	UpdateProfile(ctx context.Context, update entity.ProfileUpdate) (*entity.ProfileResponse, error)
	Verify(ctx context.Context) (*entity.TokenVerification, error)
}

// CredentialStore is satisfied by *credential.Store. None of its methods
// fail from the caller's point of view.
type CredentialStore interface {
	SaveToken(ctx context.Context, token string)
	GetToken(ctx context.Context) (string, bool)
	RemoveToken(ctx context.Context)
	IsLoggedIn(ctx context.Context) bool
	SaveUser(ctx context.Context, user *entity.User)
	StoredUser(ctx context.Context) (*entity.User, bool)
}

type SessionState int

const (
	StateAnonymous SessionState = iota
	StateAuthenticating
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// SessionService owns the signed-in user. Its fields are locked for
// memory safety only: concurrent SignIn and SignOut are not serialized
// and whichever finishes last decides the final state.
type SessionService struct {
	api     AuthAPI
	creds   CredentialStore
	events  EventPublisher
	log     logger.Logger
	metrics *metrics.Manager
	now     func() time.Time

	startOnce sync.Once

	mu      sync.RWMutex
	user    *entity.User
	state   SessionState
	loading bool
}

func NewSessionService(api AuthAPI, creds CredentialStore, events EventPublisher, log logger.Logger, m *metrics.Manager) *SessionService {
	return &SessionService{
		api:     api,
		creds:   creds,
		events:  events,
		log:     log,
		metrics: m,
		now:     time.Now,
		state:   StateAnonymous,
		loading: true,
	}
}

// Start restores a previous session from the stored token. It runs once;
// any failure leaves the session anonymous with the token cleared.
func (s *SessionService) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		defer s.setLoading(false)

		if !s.creds.IsLoggedIn(ctx) {
			s.log.Debug("SessionService.Start: no stored token")
			return
		}

		user, err := s.api.Profile(ctx)
		if err != nil {
			s.log.Warn("SessionService.Start: stored token rejected, clearing session", "error", err)
			s.expire(ctx)
			return
		}

		s.creds.SaveUser(ctx, user)
		s.setUser(user, StateAuthenticated)
		s.log.Info("SessionService.Start: session restored", "user_id", user.ID, "username", user.Username)
	})
}

func (s *SessionService) SignIn(ctx context.Context, username, password string) (*entity.User, error) {
	req := entity.LoginRequest{Username: username, Password: password}
	if err := validateLogin(req); err != nil {
		return nil, err
	}

	s.beginAuth()
	defer s.setLoading(false)

	resp, err := s.api.Login(ctx, req)
	if err == nil && resp.Token == "" {
		err = ErrMissingToken
	}
	if err != nil {
		s.log.Warn("SessionService.SignIn: login failed", "username", username, "error", err)
		s.creds.RemoveToken(context.WithoutCancel(ctx))
		s.setUser(nil, StateAnonymous)
		return nil, err
	}

	return s.establish(ctx, resp, entity.EventSignedIn), nil
}

func (s *SessionService) SignUp(ctx context.Context, req entity.RegisterRequest) (*entity.User, error) {
	if err := validateRegister(req); err != nil {
		return nil, err
	}

	s.beginAuth()
	defer s.setLoading(false)

	resp, err := s.api.Register(ctx, req)
	if err == nil && resp.Token == "" {
		err = ErrMissingToken
	}
	if err != nil {
		s.log.Warn("SessionService.SignUp: registration failed", "username", req.Username, "error", err)
		s.creds.RemoveToken(context.WithoutCancel(ctx))
		s.setUser(nil, StateAnonymous)
		return nil, err
	}

	return s.establish(ctx, resp, entity.EventRegistered), nil
}

// SignOut always ends the local session, whatever the server says.
func (s *SessionService) SignOut(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	prev := s.CurrentUser()

	if _, err := s.api.Logout(ctx); err != nil {
		s.log.Warn("SessionService.SignOut: logout request failed, continuing local sign-out", "error", err)
	}

	// The token goes even when ctx is already cancelled.
	s.creds.RemoveToken(context.WithoutCancel(ctx))
	s.setUser(nil, StateAnonymous)

	ev := entity.SessionEvent{Event: entity.EventSignedOut, At: s.now()}
	if prev != nil {
		ev.UserID, ev.Username = prev.ID, prev.Username
	}
	s.metrics.SessionEvent("signed_out")
	publishEvent(ctx, s.events, s.log, entity.EventSignedOut, ev)
	s.log.Info("SessionService.SignOut: signed out")
}

func (s *SessionService) UpdateProfile(ctx context.Context, update entity.ProfileUpdate) (*entity.User, error) {
	if s.CurrentUser() == nil {
		return nil, ErrNotAuthenticated
	}
	if err := validateProfileUpdate(update); err != nil {
		return nil, err
	}

	resp, err := s.api.UpdateProfile(ctx, update)
	if err != nil {
		if gateway.IsUnauthorized(err) {
			s.TokenRejected(ctx)
		}
		return nil, err
	}

	user := resp.User
	s.creds.SaveUser(ctx, &user)
	s.setUser(&user, StateAuthenticated)
	return s.CurrentUser(), nil
}

// Verify asks the server whether the stored token is still good. A token
// the server rejects ends the session; a request that never got an answer
// leaves the session alone and reports false.
func (s *SessionService) Verify(ctx context.Context) bool {
	if _, ok := s.creds.GetToken(ctx); !ok {
		if s.IsLoggedIn() {
			s.expire(ctx)
		}
		return false
	}

	v, err := s.api.Verify(ctx)
	if err != nil {
		s.log.Warn("SessionService.Verify: verification request failed", "error", err)
		return false
	}
	if !v.Valid {
		s.log.Info("SessionService.Verify: token no longer valid", "reason", v.Error)
		s.TokenRejected(ctx)
		return false
	}

	if v.User != nil {
		s.creds.SaveUser(ctx, v.User)
		s.setUser(v.User, StateAuthenticated)
	}
	return true
}

// TokenRejected ends the session after the server refused the stored token
// on any request. The token is always cleared; an expiry is only reported
// when someone was signed in.
func (s *SessionService) TokenRejected(ctx context.Context) {
	s.creds.RemoveToken(context.WithoutCancel(ctx))
	prev := s.clearUser()
	if prev == nil {
		return
	}
	s.log.Info("SessionService: token rejected by server, session ended", "user_id", prev.ID, "username", prev.Username)
	s.reportExpired(ctx, prev)
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *SessionService) CurrentUser() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *SessionService) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *SessionService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *SessionService) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *SessionService) establish(ctx context.Context, resp *entity.AuthResponse, event string) *entity.User {
	user := resp.User
	s.creds.SaveToken(ctx, resp.Token)
	s.creds.SaveUser(ctx, &user)
	s.setUser(&user, StateAuthenticated)

	s.metrics.SessionEvent(strings.TrimPrefix(event, "session."))
	publishEvent(ctx, s.events, s.log, event, entity.SessionEvent{
		Event:    event,
		UserID:   user.ID,
		Username: user.Username,
		At:       s.now(),
	})
	s.log.Info("SessionService: authenticated", "event", event, "user_id", user.ID, "username", user.Username)
	return s.CurrentUser()
}

func (s *SessionService) expire(ctx context.Context) {
	s.creds.RemoveToken(context.WithoutCancel(ctx))
	s.reportExpired(ctx, s.clearUser())
}

func (s *SessionService) reportExpired(ctx context.Context, prev *entity.User) {
	ev := entity.SessionEvent{Event: entity.EventSessionExpired, At: s.now()}
	if prev != nil {
		ev.UserID, ev.Username = prev.ID, prev.Username
	}
	s.metrics.SessionEvent("expired")
	publishEvent(ctx, s.events, s.log, entity.EventSessionExpired, ev)
}

func (s *SessionService) beginAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.state = StateAuthenticating
}

func (s *SessionService) setUser(user *entity.User, state SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.state = state
}

// clearUser signs the user out and returns whoever was signed in.
func (s *SessionService) clearUser() *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.user
	s.user = nil
	s.state = StateAnonymous
	return prev
}

func (s *SessionService) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}
