package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type funcWorker struct {
	run func(ctx context.Context) error
}

func (w *funcWorker) Run(ctx context.Context) error { return w.run(ctx) }

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)

	var calls atomic.Int32
	worker := &funcWorker{run: func(ctx context.Context) error {
		calls.Add(1)
		panic("boom")
	}}

	sup := NewSupervisor(slog.Default(), 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	go sup.Add(worker).Run(ctx)

	// Waiting for panics and restarts
	time.Sleep(300 * time.Millisecond)

	req.GreaterOrEqual(calls.Load(), int32(2))
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)

	// Given a worker running only once
	var calls atomic.Int32
	worker := &funcWorker{run: func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}}

	sup := NewSupervisor(slog.Default(), 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		sup.Add(worker).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
		req.Equal(int32(1), calls.Load())
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after worker success")
	}
}

func TestSupervisor_StopCancelsWorkers(t *testing.T) {
	req := require.New(t)

	started := make(chan struct{})
	worker := &funcWorker{run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	}}

	sup := NewSupervisor(slog.Default(), 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		sup.Add(worker).Run(context.Background())
		close(done)
	}()

	<-started
	sup.Stop()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after Stop()")
	}
}
