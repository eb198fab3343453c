package session

import (
	"context"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/tomeducation/admin/core"
)

type (
	// AuthAPI is the slice of the remote API the Store needs.
	AuthAPI interface {
		Login(ctx context.Context, name, password string) (token string, user User, err error)
	}

	// Repository persists exactly two values: the bearer token and the
	// serialized user profile. They are saved and cleared together,
	// never independently.
	Repository interface {
		// Load returns (nil, nil) when no session is persisted.
		Load() (*Principal, error)
		Save(Principal) error
		Clear() error
	}

	// Store is the single source of truth for "who is logged in".
	// All session mutation goes through Initialize, Login, Logout and
	// Invalidate; nothing else may touch the principal.
	Store struct {
		api  AuthAPI
		repo Repository
		log  core.Logger

		mu        sync.RWMutex
		once      sync.Once
		principal *Principal
		loading   bool
	}
)

func NewStore(api AuthAPI, repo Repository, log core.Logger) *Store {
	return &Store{
		api:     api,
		repo:    repo,
		log:     log,
		loading: true,
	}
}

// Initialize resolves the persisted session, if any. It runs exactly
// once per process; later calls are no-ops. No server round-trip is
// made: a persisted token is trusted until the API rejects it, except
// when its own expiry claim is already past.
func (s *Store) Initialize() {
	s.once.Do(func() {
		defer func() {
			s.mu.Lock()
			s.loading = false
			s.mu.Unlock()
		}()

		principal, err := s.repo.Load()
		if err != nil {
			s.log.Error("session: loading persisted session", err)
			return
		}
		if principal == nil || principal.Token == "" {
			return
		}
		if tokenExpired(principal.Token) {
			s.log.Info("session: persisted token expired, discarding")
			if err := s.repo.Clear(); err != nil {
				s.log.Error("session: clearing expired session", err)
			}
			return
		}
		s.mu.Lock()
		s.principal = principal
		s.mu.Unlock()
	})
}

// Login authenticates against the remote API. It never returns an
// error: failures are logged and reported as false so the caller can
// simply re-render the login view.
func (s *Store) Login(ctx context.Context, creds Credentials) bool {
	creds.Name = core.CleanString(creds.Name)
	if err := core.CheckStruct(creds); err != nil {
		s.log.Info("session: login rejected", err)
		return false
	}

	token, usr, err := s.api.Login(ctx, creds.Name, creds.Password)
	if err != nil {
		s.log.Error("session: login failed", err)
		return false
	}

	principal := Principal{Token: token, User: usr}
	s.mu.Lock()
	s.principal = &principal
	s.mu.Unlock()

	if err := s.repo.Save(principal); err != nil {
		// still logged in for this process; only persistence failed
		s.log.Error("session: persisting session", err)
	}
	return true
}

// Logout clears the in-memory principal and durable storage together.
// Idempotent: logging out while already logged out is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	s.principal = nil
	s.mu.Unlock()

	if err := s.repo.Clear(); err != nil {
		s.log.Error("session: clearing persisted session", err)
	}
}

// Invalidate is the implicit-logout path: the HTTP client calls it
// when any authenticated request comes back 401. A revoked or stale
// token cannot be repaired client-side, so the session is dropped.
func (s *Store) Invalidate() {
	s.log.Info("session: token rejected by the API, logging out")
	s.Logout()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal != nil
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return User{}
	}
	return s.principal.User
}

// Token implements the read-only token source attached to outgoing
// requests. Resource code never mutates the token through it.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return ""
	}
	return s.principal.Token
}

// tokenExpired inspects the token's own expiry claim without
// verifying the signature (the secret lives server-side). Opaque,
// non-JWT tokens are kept; the 401 path covers their revocation.
func tokenExpired(token string) bool {
	claims := new(jwt.StandardClaims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == 0 {
		return false
	}
	return time.Unix(claims.ExpiresAt, 0).Before(time.Now())
}
