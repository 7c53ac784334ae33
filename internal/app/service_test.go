package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dujiao-next/marketcore/internal/config"
	"github.com/dujiao-next/marketcore/internal/provider"
)

type stubService struct {
	name     string
	startErr error
	stopped  atomic.Bool
	stopLog  *stopLog
}

type stopLog struct {
	mu    sync.Mutex
	names []string
}

func (l *stopLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *stubService) Stop(context.Context) error {
	s.stopped.Store(true)
	if s.stopLog != nil {
		s.stopLog.add(s.name)
	}
	return nil
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	healthy := &stubService{name: "healthy"}
	bindErr := errors.New("bind failed")
	failing := &stubService{name: "failing", startErr: bindErr}
	runner := NewRunner(healthy, failing)

	err := runner.Run(context.Background(), time.Second, nil)
	if !errors.Is(err, bindErr) || !strings.HasPrefix(err.Error(), "failing: ") {
		t.Fatalf("expected start error tagged with service name, got %v", err)
	}
	if !healthy.stopped.Load() || !failing.stopped.Load() {
		t.Fatalf("every service should be stopped")
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	svc := &stubService{name: "loop"}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if err := NewRunner(svc).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
	if !svc.stopped.Load() {
		t.Fatalf("service should be stopped")
	}
}

func TestRunnerStopsInReverseOrder(t *testing.T) {
	log := &stopLog{}
	services := []Service{
		&stubService{name: "http", stopLog: log},
		&stubService{name: "order-reaper", stopLog: log},
		&stubService{name: "worker", stopLog: log},
	}
	runner := NewRunner(services...)
	if got := strings.Join(runner.Names(), ","); got != "http,order-reaper,worker" {
		t.Fatalf("unexpected registration order: %s", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
	if got := strings.Join(log.names, ","); got != "worker,order-reaper,http" {
		t.Fatalf("services must stop in reverse order, got %s", got)
	}
}

func TestRunnerRejectsNilService(t *testing.T) {
	healthy := &stubService{name: "healthy"}
	if err := NewRunner(healthy, nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("nil service should be rejected")
	}
	if healthy.stopped.Load() {
		t.Fatalf("nothing should start when a service is nil")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, "API": ModeAPI, " worker ": ModeWorker, "all": ModeAll}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("unknown mode should be rejected")
	}
}

func TestBuildRunnerRejectsMissingInputs(t *testing.T) {
	if _, err := BuildRunner(nil, ModeAll, &provider.Container{}); err == nil {
		t.Fatalf("nil config should be rejected")
	}
	if _, err := BuildRunner(&config.Config{}, ModeAll, nil); err == nil {
		t.Fatalf("nil container should be rejected")
	}
	if _, err := BuildRunner(&config.Config{}, "unknown", &provider.Container{}); err == nil {
		t.Fatalf("unknown mode should yield no services")
	}
}

func TestBuildRunnerWorkerModeRequiresReaper(t *testing.T) {
	runner, err := BuildRunner(&config.Config{}, ModeWorker, &provider.Container{})
	if err == nil {
		t.Fatalf("worker mode without a reaper should fail, got runner %v", runner != nil)
	}
}
