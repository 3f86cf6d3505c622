// Package auth checks credentials and keeps login sessions.
//
// Accounts come from two places: the built-in demo accounts of the
// municipality and users registered through the API, stored with a bcrypt
// hash. A user's ID is the base64 form of its email, so card sets keep
// their owner across restarts and backends.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jules-12/card-creator-pro/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidInput       = errors.New("invalid registration")
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// User is an authenticated principal.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// Session binds a bearer token to a user until ExpiresAt.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserStore is the subset of store.Store used for registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *store.User) error
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
}

// Options configures a Service.
type Options struct {
	SessionTTL time.Duration
	DemoUsers  bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// Now defaults to time.Now.
	Now func() time.Time
}

type account struct {
	user User
	hash []byte
}

// Service authenticates users and tracks sessions in memory.
type Service struct {
	users UserStore
	demo  map[string]account
	ttl   time.Duration
	cost  int
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

var demoAccounts = []struct {
	email, password, fullName string
}{
	{"admin@mairie-cotonou.bj", "admin123", "Administrateur"},
	{"agent@mairie-cotonou.bj", "agent123", "Agent Municipal"},
}

// New creates a Service. Demo account passwords are hashed once here.
func New(users UserStore, opts Options) (*Service, error) {
	s := &Service{
		users:    users,
		demo:     make(map[string]account),
		ttl:      opts.SessionTTL,
		cost:     opts.BcryptCost,
		now:      opts.Now,
		sessions: make(map[string]Session),
	}
	if s.ttl <= 0 {
		s.ttl = 12 * time.Hour
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}

	if opts.DemoUsers {
		for _, d := range demoAccounts {
			hash, err := bcrypt.GenerateFromPassword([]byte(d.password), s.cost)
			if err != nil {
				return nil, fmt.Errorf("hash demo password: %w", err)
			}
			s.demo[d.email] = account{
				user: User{ID: UserID(d.email), Email: d.email, FullName: d.fullName},
				hash: hash,
			}
		}
	}
	return s, nil
}

// UserID derives the stable user identifier from an email.
func UserID(email string) string {
	return base64.StdEncoding.EncodeToString([]byte(normalizeEmail(email)))
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	acc, err := s.lookupAccount(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.open(acc.user), nil
}

// Register creates an account and logs it in. Emails are unique across
// demo and registered accounts.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*Session, error) {
	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)

	switch {
	case !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@"):
		return nil, fmt.Errorf("%w: email %q is not valid", ErrInvalidInput, email)
	case len(password) < MinPasswordLength:
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	case fullName == "":
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}

	if _, ok := s.demo[email]; ok {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &store.User{
		ID:           UserID(email),
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.open(User{ID: u.ID, Email: u.Email, FullName: u.FullName}), nil
}

// Logout ends the session identified by token. Unknown tokens are ignored.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Lookup returns the user of a live session.
func (s *Service) Lookup(token string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return User{}, false
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		return User{}, false
	}
	return sess.User, true
}

// ActiveSessions returns the number of unexpired sessions.
func (s *Service) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return len(s.sessions)
}

func (s *Service) lookupAccount(ctx context.Context, email string) (account, error) {
	email = normalizeEmail(email)
	if acc, ok := s.demo[email]; ok {
		return acc, nil
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return account{}, err
	}
	return account{
		user: User{ID: u.ID, Email: u.Email, FullName: u.FullName},
		hash: []byte(u.PasswordHash),
	}, nil
}

func (s *Service) open(u User) *Session {
	sess := Session{
		Token:     uuid.NewString(),
		User:      u,
		ExpiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.pruneLocked()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	return &sess
}

func (s *Service) pruneLocked() {
	now := s.now()
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
