package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jules-12/card-creator-pro/internal/store"
)

// memUsers is an in-memory UserStore.
type memUsers struct {
	mu    sync.Mutex
	users map[string]store.User
}

func (m *memUsers) CreateUser(_ context.Context, u *store.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users == nil {
		m.users = make(map[string]store.User)
	}
	if _, ok := m.users[u.Email]; ok {
		return store.ErrEmailTaken
	}
	m.users[u.Email] = *u
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(t *testing.T, c *clock) *Service {
	t.Helper()
	s, err := New(&memUsers{}, Options{
		SessionTTL: time.Hour,
		DemoUsers:  true,
		BcryptCost: bcrypt.MinCost,
		Now:        c.now,
	})
	require.NoError(t, err)
	return s
}

func TestLogin_DemoUsers(t *testing.T) {
	s := newService(t, &clock{t: time.Now()})
	ctx := context.Background()

	sess, err := s.Login(ctx, "admin@mairie-cotonou.bj", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "Administrateur", sess.User.FullName)
	assert.Equal(t, "YWRtaW5AbWFpcmllLWNvdG9ub3UuYmo=", sess.User.ID)
	assert.NotEmpty(t, sess.Token)

	sess, err = s.Login(ctx, " Agent@Mairie-Cotonou.bj ", "agent123")
	require.NoError(t, err)
	assert.Equal(t, "agent@mairie-cotonou.bj", sess.User.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newService(t, &clock{t: time.Now()})
	ctx := context.Background()

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "admin@mairie-cotonou.bj", "agent123"},
		{"unknown email", "nobody@mairie-cotonou.bj", "admin123"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestLogin_DemoUsersDisabled(t *testing.T) {
	s, err := New(&memUsers{}, Options{BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	_, err = s.Login(context.Background(), "admin@mairie-cotonou.bj", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister(t *testing.T) {
	s := newService(t, &clock{t: time.Now()})
	ctx := context.Background()

	sess, err := s.Register(ctx, "Chef.Zone@Cotonou.bj", "secret1", "  Chef de zone ")
	require.NoError(t, err)
	assert.Equal(t, "chef.zone@cotonou.bj", sess.User.Email)
	assert.Equal(t, "Chef de zone", sess.User.FullName)
	assert.Equal(t, UserID("chef.zone@cotonou.bj"), sess.User.ID)

	u, ok := s.Lookup(sess.Token)
	require.True(t, ok)
	assert.Equal(t, sess.User, u)

	again, err := s.Login(ctx, "chef.zone@cotonou.bj", "secret1")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, again.User.ID)
	assert.NotEqual(t, sess.Token, again.Token)
}

func TestRegister_Rejections(t *testing.T) {
	s := newService(t, &clock{t: time.Now()})
	ctx := context.Background()

	_, err := s.Register(ctx, "dup@cotonou.bj", "secret1", "Dup")
	require.NoError(t, err)

	tests := []struct {
		name                      string
		email, password, fullName string
		want                      error
	}{
		{"demo email", "admin@mairie-cotonou.bj", "secret1", "X", ErrEmailTaken},
		{"registered email", "DUP@cotonou.bj", "secret1", "X", ErrEmailTaken},
		{"bad email", "cotonou.bj", "secret1", "X", ErrInvalidInput},
		{"short password", "new@cotonou.bj", "12345", "X", ErrInvalidInput},
		{"no name", "new@cotonou.bj", "secret1", "  ", ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(ctx, tt.email, tt.password, tt.fullName)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSessions_ExpireAndLogout(t *testing.T) {
	c := &clock{t: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)}
	s := newService(t, c)
	ctx := context.Background()

	first, err := s.Login(ctx, "admin@mairie-cotonou.bj", "admin123")
	require.NoError(t, err)
	assert.Equal(t, c.t.Add(time.Hour), first.ExpiresAt)

	c.t = c.t.Add(30 * time.Minute)
	second, err := s.Login(ctx, "agent@mairie-cotonou.bj", "agent123")
	require.NoError(t, err)
	assert.Equal(t, 2, s.ActiveSessions())

	c.t = c.t.Add(31 * time.Minute)
	_, ok := s.Lookup(first.Token)
	assert.False(t, ok, "first session should have expired")
	_, ok = s.Lookup(second.Token)
	assert.True(t, ok)
	assert.Equal(t, 1, s.ActiveSessions())

	s.Logout(second.Token)
	_, ok = s.Lookup(second.Token)
	assert.False(t, ok)
	s.Logout("unknown")

	_, ok = s.Lookup("")
	assert.False(t, ok)
}
