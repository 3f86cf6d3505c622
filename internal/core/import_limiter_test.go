package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportLimiter_AcquireRelease(t *testing.T) {
	limiter := NewImportLimiter(2, 1, time.Second)
	ctx := context.Background()

	releaseA, err := limiter.Acquire(ctx, "alice")
	require.NoError(t, err)
	releaseB, err := limiter.Acquire(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, ImportLimiterStatus{Active: 2, Available: 0, MaxConcurrent: 2, PerAccount: 1, Accounts: 2}, limiter.Status())

	releaseA()
	releaseA()
	assert.Equal(t, 1, limiter.Status().Active)
	assert.Equal(t, 1, limiter.Status().Accounts)

	releaseB()
	assert.Equal(t, ImportLimiterStatus{Active: 0, Available: 2, MaxConcurrent: 2, PerAccount: 1, Accounts: 0}, limiter.Status())
}

func TestImportLimiter_PerAccountCap(t *testing.T) {
	tests := []struct {
		name       string
		perAccount int
		held       int
		wantErr    error
	}{
		{"first import", 1, 0, nil},
		{"second import rejected", 1, 1, ErrImportInProgress},
		{"second import within share", 2, 1, nil},
		{"third import over share", 2, 2, ErrImportInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewImportLimiter(4, tt.perAccount, time.Second)
			ctx := context.Background()
			for i := 0; i < tt.held; i++ {
				release, err := limiter.Acquire(ctx, "alice")
				require.NoError(t, err)
				defer release()
			}

			start := time.Now()
			release, err := limiter.Acquire(ctx, "alice")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Less(t, time.Since(start), 500*time.Millisecond)
				assert.Equal(t, tt.held, limiter.Status().Active)
				return
			}
			require.NoError(t, err)
			release()

			other, err := limiter.Acquire(ctx, "bob")
			require.NoError(t, err)
			other()
		})
	}
}

func TestImportLimiter_PerAccountNeverExceedsPool(t *testing.T) {
	limiter := NewImportLimiter(2, 5, time.Second)
	assert.Equal(t, 2, limiter.Status().PerAccount)

	def := NewImportLimiter(0, 0, 0)
	assert.Equal(t, DefaultMaxConcurrentImports, def.Status().MaxConcurrent)
	assert.Equal(t, DefaultMaxImportsPerAccount, def.Status().PerAccount)
	assert.Equal(t, DefaultMaxWaitTime, def.maxWait)
}

func TestImportLimiter_BlocksWhenFull(t *testing.T) {
	limiter := NewImportLimiter(1, 1, 100*time.Millisecond)
	ctx := context.Background()

	release, err := limiter.Acquire(ctx, "alice")
	require.NoError(t, err)
	defer release()

	start := time.Now()
	_, err = limiter.Acquire(ctx, "bob")
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrTooManyImports)
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	// The rejected wait leaves no reservation behind.
	assert.Equal(t, 1, limiter.Status().Accounts)
}

func TestImportLimiter_WaiterGetsFreedSlot(t *testing.T) {
	limiter := NewImportLimiter(1, 1, time.Second)
	ctx := context.Background()

	release, err := limiter.Acquire(ctx, "alice")
	require.NoError(t, err)
	go func() {
		time.Sleep(30 * time.Millisecond)
		release()
	}()

	next, err := limiter.Acquire(ctx, "bob")
	require.NoError(t, err)
	next()
}

func TestImportLimiter_ConcurrentAccess(t *testing.T) {
	const size = 3
	limiter := NewImportLimiter(size, 1, time.Second)

	var (
		wg          sync.WaitGroup
		current     atomic.Int32
		maxObserved atomic.Int32
	)
	accounts := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, account := range accounts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := limiter.Acquire(context.Background(), account)
			if err != nil {
				t.Errorf("Acquire(%s): %v", account, err)
				return
			}
			defer release()

			n := current.Add(1)
			for {
				old := maxObserved.Load()
				if n <= old || maxObserved.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, int(maxObserved.Load()), size)
	assert.Equal(t, 0, limiter.Status().Active)
	assert.Equal(t, 0, limiter.Status().Accounts)
}

func TestImportLimiter_ContextCancellation(t *testing.T) {
	limiter := NewImportLimiter(1, 1, 5*time.Second)
	release, err := limiter.Acquire(context.Background(), "alice")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = limiter.Acquire(ctx, "bob")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportLimiter_WaitForDrain(t *testing.T) {
	limiter := NewImportLimiter(2, 1, time.Second)
	assert.NoError(t, limiter.WaitForDrain(context.Background()))

	release, err := limiter.Acquire(context.Background(), "alice")
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, limiter.WaitForDrain(ctx))
	assert.Equal(t, 0, limiter.Status().Active)

	// A second busy period gets a fresh idle signal.
	release, err = limiter.Acquire(context.Background(), "bob")
	require.NoError(t, err)
	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	assert.ErrorIs(t, limiter.WaitForDrain(short), context.DeadlineExceeded)
	release()
}
