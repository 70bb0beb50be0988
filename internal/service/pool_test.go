package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/docpipe/internal/config"
	"github.com/raphaelgruber/docpipe/internal/db"
	"github.com/raphaelgruber/docpipe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingProcessor holds each job until release is closed.
type blockingProcessor struct {
	started chan string
	release chan struct{}
}

func newBlockingProcessor() *blockingProcessor {
	return &blockingProcessor{
		started: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (p *blockingProcessor) Process(_ context.Context, job *models.Job) Outcome {
	p.started <- job.ID
	<-p.release
	return Outcome{JobID: job.ID, State: StatePersisted, Record: &models.DocumentMetadata{Status: models.StatusCompleted}}
}

type panicProcessor struct{}

func (panicProcessor) Process(context.Context, *models.Job) Outcome {
	panic("unexpected")
}

func TestPool_FiftyJobsFiveWorkers(t *testing.T) {
	store := db.NewMemoryStore()
	p := newTestProcessor(t, store)
	dir := t.TempDir()

	pool := NewPool(p, PoolConfig{Workers: 5}, nil)
	pool.Start(context.Background())

	for i := range 50 {
		path := writeFile(t, dir, fmt.Sprintf("doc-%02d.txt", i), fmt.Sprintf("Document number %d talks about pipelines.", i))
		_, err := pool.Submit(context.Background(), path, 1)
		require.NoError(t, err)
	}
	pool.Close()

	docs, err := store.List(context.Background(), db.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, docs, 50)

	seen := make(map[string]bool)
	for _, d := range docs {
		assert.False(t, seen[d.DocumentName], "duplicate record %s", d.DocumentName)
		seen[d.DocumentName] = true
	}

	stats := pool.Stats()
	assert.Equal(t, 50, stats.Submitted)
	assert.Equal(t, 50, stats.Completed)
	assert.Equal(t, 50, stats.Done())
	assert.Zero(t, stats.Queued)
	assert.Zero(t, stats.Running)
}

func TestPool_RejectWhenFull(t *testing.T) {
	proc := newBlockingProcessor()
	pool := NewPool(proc, PoolConfig{Workers: 1, QueueSize: 1, Admission: config.AdmissionReject}, nil)
	pool.Start(context.Background())

	_, err := pool.Submit(context.Background(), "a.txt", 1)
	require.NoError(t, err)
	<-proc.started // worker holds the first job

	_, err = pool.Submit(context.Background(), "b.txt", 1)
	require.NoError(t, err, "second job fits in the queue")

	_, err = pool.Submit(context.Background(), "c.txt", 1)
	require.ErrorIs(t, err, ErrQueueFull)

	close(proc.release)
	pool.Close()

	stats := pool.Stats()
	assert.Equal(t, 2, stats.Submitted)
	assert.Equal(t, 2, stats.Completed)
}

func TestPool_BlockHonoursContext(t *testing.T) {
	proc := newBlockingProcessor()
	pool := NewPool(proc, PoolConfig{Workers: 1, QueueSize: 1}, nil)
	pool.Start(context.Background())

	_, err := pool.Submit(context.Background(), "a.txt", 1)
	require.NoError(t, err)
	<-proc.started
	_, err = pool.Submit(context.Background(), "b.txt", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = pool.Submit(ctx, "c.txt", 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(proc.release)
	pool.Close()
}

func TestPool_BlockWaitsForSpace(t *testing.T) {
	proc := newBlockingProcessor()
	pool := NewPool(proc, PoolConfig{Workers: 1, QueueSize: 1}, nil)
	pool.Start(context.Background())

	_, err := pool.Submit(context.Background(), "a.txt", 1)
	require.NoError(t, err)
	<-proc.started
	_, err = pool.Submit(context.Background(), "b.txt", 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := pool.Submit(context.Background(), "c.txt", 1)
		assert.NoError(t, err)
	}()

	close(proc.release)
	wg.Wait()
	pool.Close()

	assert.Equal(t, 3, pool.Stats().Completed)
}

func TestPool_SubmitAfterClose(t *testing.T) {
	pool := NewPool(newBlockingProcessor(), PoolConfig{}, nil)
	pool.Start(context.Background())
	pool.Close()

	_, err := pool.Submit(context.Background(), "late.txt", 1)
	require.ErrorIs(t, err, ErrPoolClosed)

	require.NotPanics(t, pool.Close, "close is idempotent")
}

func TestPool_WorkerSurvivesPanic(t *testing.T) {
	var outcomes []Outcome
	var mu sync.Mutex
	pool := NewPool(panicProcessor{}, PoolConfig{
		Workers: 1,
		OnOutcome: func(o Outcome) {
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
		},
	}, nil)
	pool.Start(context.Background())

	for i := range 3 {
		_, err := pool.Submit(context.Background(), fmt.Sprintf("%d.txt", i), 1)
		require.NoError(t, err)
	}
	pool.Close()

	assert.Len(t, outcomes, 3)
	assert.Equal(t, 3, pool.Stats().Dropped)
}

func TestPoolConfigDefaults(t *testing.T) {
	cfg := PoolConfig{Admission: "bogus"}.withDefaults()
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, 100, cfg.QueueSize)
	assert.Equal(t, config.AdmissionBlock, cfg.Admission)
}

func TestPool_CloseWithoutStartDrainsQueue(t *testing.T) {
	store := db.NewMemoryStore()
	p := newTestProcessor(t, store)
	path := writeFile(t, t.TempDir(), "queued.txt", "Queued before any worker existed.")

	pool := NewPool(p, PoolConfig{Workers: 2, Admission: config.AdmissionReject}, nil)
	_, err := pool.Submit(context.Background(), path, 1)
	require.NoError(t, err)

	pool.Close()

	docs, err := store.List(context.Background(), db.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	stats := pool.Stats()
	assert.Equal(t, 1, stats.Submitted)
	assert.Zero(t, stats.Queued)
	assert.Equal(t, 1, stats.Done())
}
