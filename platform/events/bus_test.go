package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"scanrate_backend/platform/logger"
)

type stubEvent struct {
	BaseEvent
	name string
}

func (e stubEvent) EventName() string { return e.name }

// waitFor fails the test if done is not closed within a second. Publish
// runs handlers on their own goroutines, so delivery must be awaited.
func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestBusDeliversToEverySubscriber(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	var (
		mu    sync.Mutex
		seen  []string
		count = 2
		done  = make(chan struct{})
	)
	record := func(id string) Handler {
		return HandlerFunc(func(ctx context.Context, event Event) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, id+":"+event.EventName())
			count--
			if count == 0 {
				close(done)
			}
			return nil
		})
	}
	bus.Subscribe("thing.happened", record("a"))
	bus.Subscribe("thing.happened", record("b"))

	bus.Publish(context.Background(), stubEvent{BaseEvent: NewBaseEvent(), name: "thing.happened"})
	waitFor(t, done)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("expected both subscribers invoked, got %v", seen)
	}
}

func TestBusIgnoresUnsubscribedEvents(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	invoked := make(chan struct{}, 1)
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		invoked <- struct{}{}
		return nil
	}))

	bus.Publish(context.Background(), stubEvent{BaseEvent: NewBaseEvent(), name: "other.happened"})

	select {
	case <-invoked:
		t.Fatal("handler fired for an event it never subscribed to")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusSurvivesFailingAndPanickingHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	done := make(chan struct{})
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		return errors.New("handler broke")
	}))
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		panic("handler panicked")
	}))
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		close(done)
		return nil
	}))

	// Neither the error nor the panic may reach the publisher or starve
	// the healthy subscriber.
	bus.Publish(context.Background(), stubEvent{BaseEvent: NewBaseEvent(), name: "thing.happened"})
	waitFor(t, done)
}
