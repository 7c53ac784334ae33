package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

type fakeTaskServer struct {
	startErr  error
	started   atomic.Int32
	shutdowns atomic.Int32
	block     chan struct{}
}

func (f *fakeTaskServer) Start(_ asynq.Handler) error {
	f.started.Add(1)
	return f.startErr
}

func (f *fakeTaskServer) Shutdown() {
	f.shutdowns.Add(1)
	if f.block != nil {
		<-f.block
	}
}

func TestWorkerServiceRunsUntilContextDone(t *testing.T) {
	server := &fakeTaskServer{}
	svc := newService(server, asynq.NewServeMux())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Start(ctx) }()

	select {
	case err := <-errCh:
		t.Fatalf("start returned before cancel: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("start should exit cleanly on cancel: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.Stop(context.Background()); err != nil {
			t.Fatalf("stop failed: %v", err)
		}
	}
	if server.shutdowns.Load() != 1 {
		t.Fatalf("server should shut down once, got %d", server.shutdowns.Load())
	}
}

func TestWorkerServiceStartFailure(t *testing.T) {
	server := &fakeTaskServer{startErr: errors.New("redis unreachable")}
	svc := newService(server, asynq.NewServeMux())

	if err := svc.Start(context.Background()); err == nil {
		t.Fatalf("start error should propagate")
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop after failed start: %v", err)
	}
	if server.shutdowns.Load() != 0 {
		t.Fatalf("server that never started should not be shut down")
	}
}

func TestWorkerServiceStopHonorsDeadline(t *testing.T) {
	server := &fakeTaskServer{block: make(chan struct{})}
	defer close(server.block)
	svc := newService(server, asynq.NewServeMux())

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = svc.Start(ctx) }()
	defer cancel()
	deadline := time.Now().Add(time.Second)
	for !svc.isStarted() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stopCancel()
	if err := svc.Stop(stopCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
