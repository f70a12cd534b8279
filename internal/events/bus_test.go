package events

import (
	"sync"
	"testing"
)

func TestBus_SubscribeAndEmit(t *testing.T) {
	bus := NewBus()

	var received []Event
	bus.Subscribe(func(e Event) {
		received = append(received, e)
	})

	bus.Emit(NewEvent(LayerReviewing, "domain"))
	bus.Emit(NewEvent(LayerPassed, "domain"))

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[0].Type != LayerReviewing {
		t.Errorf("expected first event %q, got %q", LayerReviewing, received[0].Type)
	}
	if received[1].Type != LayerPassed {
		t.Errorf("expected second event %q, got %q", LayerPassed, received[1].Type)
	}
}

func TestBus_EmitSetsTime(t *testing.T) {
	bus := NewBus()

	var got Event
	bus.Subscribe(func(e Event) { got = e })

	bus.Emit(NewEvent(RunStarted, ""))

	if got.Time.IsZero() {
		t.Error("expected Emit to stamp Time on the event")
	}
}

func TestBus_MultipleHandlersInOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(func(Event) { order = append(order, "first") })
	bus.Subscribe(func(Event) { order = append(order, "second") })

	bus.Emit(NewEvent(RunStarted, ""))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected handlers in subscription order, got %v", order)
	}
}

func TestBus_NilHandlerIgnored(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(nil)

	// Must not panic
	bus.Emit(NewEvent(RunStarted, ""))
}

func TestBus_EmitAfterCloseDropped(t *testing.T) {
	bus := NewBus()

	count := 0
	bus.Subscribe(func(Event) { count++ })

	bus.Emit(NewEvent(RunStarted, ""))
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	bus.Emit(NewEvent(RunCompleted, ""))

	if count != 1 {
		t.Errorf("expected 1 delivered event, got %d", count)
	}
}

func TestBus_ConcurrentEmit(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Emit(NewEvent(JudgePassCompleted, "domain"))
		}()
	}
	wg.Wait()

	if count != 10 {
		t.Errorf("expected 10 delivered events, got %d", count)
	}
}
