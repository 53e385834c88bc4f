package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// flakyWorker panics the first runs, then blocks until canceled.
type flakyWorker struct {
	runs       atomic.Int32
	panicsLeft int32
}

func (w *flakyWorker) Run(ctx context.Context) error {
	count := w.runs.Add(1)
	if count <= w.panicsLeft {
		panic("boom")
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestSupervisor_RestartsAfterPanic(t *testing.T) {
	req := require.New(t)
	supervisor := NewSupervisor(slog.Default(), 10*time.Millisecond)
	worker := &flakyWorker{panicsLeft: 2}
	supervisor.Add(worker)

	done := make(chan struct{})
	go func() {
		supervisor.Run(context.Background())
		close(done)
	}()

	// Then the worker is restarted past its panics
	req.Eventually(func() bool {
		return worker.runs.Load() >= 3
	}, 2*time.Second, 10*time.Millisecond)

	// When the supervisor stops, Run returns
	supervisor.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("supervisor did not stop")
	}
}

type finishingWorker struct {
	runs atomic.Int32
}

func (w *finishingWorker) Run(context.Context) error {
	w.runs.Add(1)
	return nil
}

func TestSupervisor_CleanExit_NeverRestarts(t *testing.T) {
	req := require.New(t)
	supervisor := NewSupervisor(slog.Default(), time.Millisecond)
	worker := &finishingWorker{}
	supervisor.Add(worker)

	// A worker returning nil finished its job: Run unblocks
	supervisor.Run(context.Background())
	req.Equal(int32(1), worker.runs.Load())
}

func TestSupervisor_StopBeforeRun_IsHonored(t *testing.T) {
	req := require.New(t)
	supervisor := NewSupervisor(slog.Default(), time.Millisecond)
	worker := &flakyWorker{}
	supervisor.Add(worker)

	// When Stop lands before Run
	supervisor.Stop()

	done := make(chan struct{})
	go func() {
		supervisor.Run(context.Background())
		close(done)
	}()

	// Then Run returns promptly without starting any worker
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("supervisor kept running after an early Stop")
	}
	req.Equal(int32(0), worker.runs.Load())
}

func TestSupervisor_ConcurrentRunAndStop(t *testing.T) {
	req := require.New(t)

	// Stop racing Run from another goroutine must always terminate it,
	// whichever side wins the handoff of the cancel trigger
	for i := 0; i < 20; i++ {
		supervisor := NewSupervisor(slog.Default(), time.Millisecond)
		supervisor.Add(&flakyWorker{})

		done := make(chan struct{})
		go func() {
			supervisor.Run(context.Background())
			close(done)
		}()
		supervisor.Stop()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			req.Fail("supervisor did not stop")
		}
	}
}

func TestSupervisor_ParentCancel_StopsWorkers(t *testing.T) {
	req := require.New(t)
	supervisor := NewSupervisor(slog.Default(), time.Millisecond)
	worker := &flakyWorker{}
	supervisor.Add(worker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		supervisor.Run(ctx)
		close(done)
	}()

	req.Eventually(func() bool { return worker.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	// When the parent context cancels
	cancel()

	// Then supervision winds down without restarting
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("supervisor did not stop on parent cancel")
	}
}
