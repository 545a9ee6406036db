package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/config"
)

func newTestClient(t *testing.T, ratings RatingRecomputer) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), cfg, ratings, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	client, err := NewClient(dbPath, DefaultConfig(), &fakeRecomputer{}, nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")

	assert.NoError(t, client.Close())
}

func TestTasksDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "bookstore-tasks.db"), TasksDBPath(filepath.Join("data", "bookstore.db")))
	assert.Equal(t, "catalog-tasks", TasksDBPath("catalog"))
}

func TestClientStartStop(t *testing.T) {
	client := newTestClient(t, &fakeRecomputer{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestStopWithoutStart(t *testing.T) {
	assert.True(t, newTestClient(t, &fakeRecomputer{}).Stop(context.Background()))
}

type fakeRecomputer struct {
	mu    sync.Mutex
	books []uint
	all   int
	err   error
	done  chan struct{}
}

func (f *fakeRecomputer) Recompute(_ context.Context, bookID uint) (decimal.NullDecimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books = append(f.books, bookID)
	f.signal()
	return decimal.NewNullDecimal(decimal.NewFromInt(4)), f.err
}

func (f *fakeRecomputer) RecomputeAll(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.all++
	f.signal()
	return 3, f.err
}

func (f *fakeRecomputer) signal() {
	if f.done != nil {
		select {
		case f.done <- struct{}{}:
		default:
		}
	}
}

func TestRecomputeRatingsProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("single book", func(t *testing.T) {
		fake := &fakeRecomputer{}
		require.NoError(t, RecomputeRatingsProcessor(fake, nil)(ctx, RecomputeRatingsTask{BookID: 7}))
		assert.Equal(t, []uint{7}, fake.books)
		assert.Zero(t, fake.all)
	})

	t.Run("zero book id means all books", func(t *testing.T) {
		fake := &fakeRecomputer{}
		require.NoError(t, RecomputeRatingsProcessor(fake, nil)(ctx, RecomputeRatingsTask{}))
		assert.Equal(t, 1, fake.all)
		assert.Empty(t, fake.books)
	})

	t.Run("errors are returned for retry", func(t *testing.T) {
		fake := &fakeRecomputer{err: errors.New("database is locked")}
		err := RecomputeRatingsProcessor(fake, nil)(ctx, RecomputeRatingsTask{BookID: 7})
		assert.ErrorIs(t, err, fake.err)
	})

	t.Run("missing aggregator", func(t *testing.T) {
		assert.Error(t, RecomputeRatingsProcessor(nil, nil)(ctx, RecomputeRatingsTask{BookID: 7}))
	})
}

func TestRecomputeRatingsTaskConfig(t *testing.T) {
	cfg := RecomputeRatingsTask{BookID: 1}.Config()

	assert.Equal(t, RecomputeRatingsQueue, cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestEnqueueRecompute(t *testing.T) {
	fake := &fakeRecomputer{done: make(chan struct{}, 1)}
	client := newTestClient(t, fake)
	ctx := context.Background()

	id, err := client.EnqueueRecompute(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	state, err := client.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatePending, state)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go client.Start(runCtx)

	select {
	case <-fake.done:
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}

	fake.mu.Lock()
	assert.Equal(t, []uint{42}, fake.books)
	fake.mu.Unlock()

	assert.Eventually(t, func() bool {
		state, err := client.State(ctx, id)
		return err == nil && state == StateSuccess
	}, 5*time.Second, 20*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(ctx, 2*time.Second)
	defer stopCancel()
	client.Stop(stopCtx)
}

func TestStateUnknownTask(t *testing.T) {
	state, err := newTestClient(t, &fakeRecomputer{}).State(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, StateNotFound, state)
}

func TestStateName(t *testing.T) {
	assert.Equal(t, StatePending, stateName(backlite.TaskStatusPending))
	assert.Equal(t, StateSuccess, stateName(backlite.TaskStatusSuccess))
	assert.Equal(t, StateNotFound, stateName(backlite.TaskStatusNotFound))
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.Tasks{Workers: 4})
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)

	assert.Equal(t, DefaultConfig(), ConfigFrom(config.Tasks{}))
}
