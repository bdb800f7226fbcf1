package hosting

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocrud/ioc/logging"
)

type fakeService struct {
	started atomic.Bool
	stopped atomic.Bool
	failWith error
}

func (s *fakeService) Start(ctx context.Context) error {
	s.started.Store(true)
	if s.failWith != nil {
		return s.failWith
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.stopped.Store(true)
	return nil
}

func newQuietLogger() logging.Logger {
	return logging.NewLoggingBuilder().Build().CreateLogger("test")
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager(newQuietLogger())
	a, b := &fakeService{}, &fakeService{}
	m.Add(a)
	m.Add(b)

	if m.Len() != 2 {
		t.Fatalf("expected 2 services, got %d", m.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.StartAll(ctx)

	deadline := time.After(time.Second)
	for !a.started.Load() || !b.started.Load() {
		select {
		case <-deadline:
			t.Fatal("services did not start in time")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	m.Wait()

	if err := m.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if !a.stopped.Load() || !b.stopped.Load() {
		t.Error("every service must receive Stop")
	}
}

func TestManagerReportsStartFailure(t *testing.T) {
	m := NewManager(newQuietLogger())
	boom := errors.New("boom")
	m.Add(&fakeService{failWith: boom})

	errCh := m.StartAll(context.Background())

	select {
	case err := <-errCh:
		if !errors.Is(err, boom) {
			t.Errorf("expected the start failure, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a failure report")
	}
	m.Wait()
}

func TestTimedService(t *testing.T) {
	var runs atomic.Int32
	svc := NewTimedService("tick", 5*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, newQuietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	time.Sleep(40 * time.Millisecond)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if runs.Load() == 0 {
		t.Error("expected the task to have run at least once")
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
