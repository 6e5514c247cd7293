// Package session owns the persisted bearer token: its expiry check and the
// logout semantics every outbound request relies on.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/scanpilot/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/scanpilot/internal/common"
	"github.com/dmitrijs2005/scanpilot/internal/logging"
)

// DefaultSafetyMargin is how long before its exp a token stops being used.
const DefaultSafetyMargin = 5 * time.Second

// Store is the single authoritative holder of the session token.
//
// Nothing is cached in memory: every call reads the backing repository, so a
// logout performed through one caller is observed by every later call from
// any other goroutine. All access is serialized by mu.
type Store struct {
	mu     sync.Mutex
	repo   metadata.Repository
	margin time.Duration
	now    func() time.Time
	log    logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSafetyMargin makes a token count as expired d before its exp claim.
func WithSafetyMargin(d time.Duration) Option {
	return func(s *Store) { s.margin = d }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger for session events. The default discards.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

func NewStore(repo metadata.Repository, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		margin: DefaultSafetyMargin,
		now:    time.Now,
		log:    logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetValidToken returns the stored token if it is present and not expired.
// An expired or undecodable token is cleared as a side effect. A failure to
// read the repository is returned as an error and leaves the token alone.
func (s *Store) GetValidToken(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.repo.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return "", false, fmt.Errorf("read session token: %w", err)
	}
	token := string(b)
	if token == "" {
		return "", false, nil
	}

	if s.expired(token) {
		s.log.Info(ctx, "session token expired, clearing")
		s.clear(ctx)
		return "", false, nil
	}

	return token, true, nil
}

// IsAuthenticated reports whether a well-formed, unexpired token exists.
// A missing or unreadable token counts as not authenticated.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	token, ok, err := s.GetValidToken(ctx)
	if err != nil {
		s.log.Warn(ctx, "checking session failed", "error", err)
		return false
	}
	if !ok {
		return false
	}
	if !WellFormed(token) {
		_ = s.Logout(ctx)
		return false
	}
	return true
}

// SetToken replaces any previously stored token.
func (s *Store) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Set(ctx, common.AccessTokenKey, []byte(token))
}

// Logout clears the stored token. Calling it with no token stored is fine.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Delete(ctx, common.AccessTokenKey)
}

func (s *Store) clear(ctx context.Context) {
	if err := s.repo.Delete(ctx, common.AccessTokenKey); err != nil {
		s.log.Warn(ctx, "clearing session token failed", "error", err)
	}
}

// expired treats an undecodable token as expired. A token without exp
// never expires locally; the backend still has the final say via 401.
func (s *Store) expired(token string) bool {
	exp, ok, err := ExpiresAt(token)
	if err != nil {
		return true
	}
	if !ok {
		return false
	}
	return !s.now().Add(s.margin).Before(exp)
}
