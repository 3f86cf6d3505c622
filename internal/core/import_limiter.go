package core

// import_limiter.go shares the import slots between accounts.
//
// A decoded workbook is held in memory with all its rows, so the number of
// concurrent imports is bounded. Each account holds at most perAccount of
// those slots at a time.

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

var (
	// ErrTooManyImports is returned when no import slot frees up in time.
	ErrTooManyImports = errors.New("too many imports in progress, please try again later")

	// ErrImportInProgress is returned when the account already uses its
	// share of import slots.
	ErrImportInProgress = errors.New("an import is already running for this account")
)

const (
	DefaultMaxConcurrentImports = 4
	DefaultMaxImportsPerAccount = 1
	DefaultMaxWaitTime          = 15 * time.Second
)

// ImportLimiter hands out import slots with a per-account cap.
type ImportLimiter struct {
	slots      *semaphore.Weighted
	size       int
	perAccount int
	maxWait    time.Duration

	mu        sync.Mutex
	active    int
	byAccount map[string]int
	// idle is closed when active drops back to zero.
	idle chan struct{}
}

// NewImportLimiter allows size imports at once, at most perAccount of them
// for one account. Non-positive arguments select the defaults; perAccount
// never exceeds size.
func NewImportLimiter(size, perAccount int, maxWait time.Duration) *ImportLimiter {
	if size <= 0 {
		size = DefaultMaxConcurrentImports
	}
	if perAccount <= 0 {
		perAccount = DefaultMaxImportsPerAccount
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &ImportLimiter{
		slots:      semaphore.NewWeighted(int64(size)),
		size:       size,
		perAccount: min(perAccount, size),
		maxWait:    maxWait,
		byAccount:  make(map[string]int),
	}
}

// Acquire takes a slot for account. An account over its share fails at
// once with ErrImportInProgress; otherwise Acquire waits up to maxWait for a
// free slot. The returned release must be called when the import ends; it
// is safe to call more than once.
func (l *ImportLimiter) Acquire(ctx context.Context, account string) (release func(), err error) {
	l.mu.Lock()
	if l.byAccount[account] >= l.perAccount {
		l.mu.Unlock()
		return nil, ErrImportInProgress
	}
	l.byAccount[account]++
	l.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.slots.Acquire(waitCtx, 1); err != nil {
		l.mu.Lock()
		l.forget(account)
		l.mu.Unlock()

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrTooManyImports
	}

	l.mu.Lock()
	if l.active == 0 {
		l.idle = make(chan struct{})
	}
	l.active++
	l.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { l.release(account) }) }, nil
}

func (l *ImportLimiter) release(account string) {
	l.mu.Lock()
	l.forget(account)
	l.active--
	if l.active == 0 {
		close(l.idle)
	}
	l.mu.Unlock()

	l.slots.Release(1)
}

// forget drops one reservation of account. l.mu must be held.
func (l *ImportLimiter) forget(account string) {
	if l.byAccount[account] <= 1 {
		delete(l.byAccount, account)
		return
	}
	l.byAccount[account]--
}

// WaitForDrain blocks until no import is running or ctx is done.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	if l.active == 0 {
		l.mu.Unlock()
		return nil
	}
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ImportLimiterStatus is a snapshot of the limiter for health checks.
type ImportLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
	PerAccount    int `json:"per_account"`
	Accounts      int `json:"accounts"`
}

// Status returns the current limiter state. Accounts counts the accounts
// holding or waiting for a slot.
func (l *ImportLimiter) Status() ImportLimiterStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	return ImportLimiterStatus{
		Active:        l.active,
		Available:     l.size - l.active,
		MaxConcurrent: l.size,
		PerAccount:    l.perAccount,
		Accounts:      len(l.byAccount),
	}
}
