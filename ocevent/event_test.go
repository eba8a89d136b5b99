package ocevent_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sanguinariojoe/oclandgo/ocevent"
)

func TestNewStartsSubmitted(t *testing.T) {
	e := ocevent.New(1, 10, 20, 0)
	if e.Status() != ocevent.Submitted {
		t.Fatalf("got %v, want submitted", e.Status())
	}
	if e.Refcount().Load() != 1 {
		t.Fatalf("refcount = %d, want 1", e.Refcount().Load())
	}
}

func TestWaitBlocksUntilTerminal(t *testing.T) {
	e := ocevent.New(1, 10, 20, 0)
	var wg sync.WaitGroup
	wg.Add(1)
	done := make(chan error, 1)
	go func() {
		defer wg.Done()
		done <- e.Wait(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before the event reached a terminal state")
	case <-time.After(20 * time.Millisecond):
	}

	e.SetStatus(ocevent.Running)
	select {
	case <-done:
		t.Fatal("Wait returned on a non-terminal transition (running)")
	case <-time.After(20 * time.Millisecond):
	}

	e.SetStatus(ocevent.Complete)
	wg.Wait()
	if err := <-done; err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	e := ocevent.New(1, 10, 20, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Wait(ctx); err == nil {
		t.Fatal("expected context error from a cancelled wait")
	}
}

func TestWaitListRequiresEveryEventTerminal(t *testing.T) {
	a := ocevent.New(1, 10, 20, 0)
	b := ocevent.New(2, 10, 20, 0)
	a.SetStatus(ocevent.Complete)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := ocevent.WaitList(ctx, []*ocevent.Event{a, b}); err == nil {
		t.Fatal("expected timeout: b never completed")
	}

	b.SetStatus(ocevent.Complete)
	if err := ocevent.WaitList(context.Background(), []*ocevent.Event{a, b}); err != nil {
		t.Fatalf("WaitList: %v", err)
	}
}

func TestSameContextRejectsMismatch(t *testing.T) {
	a := ocevent.New(1, 10, 20, 0)
	b := ocevent.New(2, 99, 20, 0)
	if err := ocevent.SameContext([]*ocevent.Event{a, b}, 10); err == nil {
		t.Fatal("expected mismatch error for event belonging to a different context")
	}
	if err := ocevent.SameContext([]*ocevent.Event{a}, 10); err != nil {
		t.Fatalf("SameContext: %v", err)
	}
}

func TestProfilingTimestampsAdvanceMonotonically(t *testing.T) {
	e := ocevent.New(1, 10, 20, 0)
	queued, _, _, _ := e.Profiling()
	if queued == 0 {
		t.Fatal("expected a non-zero queued timestamp at creation")
	}

	e.SetStatus(ocevent.Running)
	_, _, start, _ := e.Profiling()
	if start == 0 {
		t.Fatal("expected a non-zero start timestamp after Running")
	}

	e.SetStatus(ocevent.Complete)
	_, _, _, end := e.Profiling()
	if end == 0 {
		t.Fatal("expected a non-zero end timestamp after Complete")
	}
}

func TestErrorIsTerminal(t *testing.T) {
	if !ocevent.Error.Terminal() {
		t.Fatal("Error should be a terminal status")
	}
	if ocevent.Running.Terminal() {
		t.Fatal("Running should not be terminal")
	}
}
