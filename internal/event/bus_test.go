package event

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestBus() *Bus {
	return NewBus(zerolog.Nop())
}

func TestBusDeliversInPublishOrder(t *testing.T) {
	bus := newTestBus()
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	dates := []string{"2026-08-01", "2026-08-02", "2026-08-03"}
	for _, d := range dates {
		bus.Publish(New(AttendanceUpdated, AttendanceData{Date: d}))
	}

	for i, want := range dates {
		select {
		case ev := <-sub.C:
			got := ev.Data.(AttendanceData).Date
			if got != want {
				t.Errorf("event %d: got date %q, want %q", i, got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestBusNoBacklogForLateSubscriber(t *testing.T) {
	bus := newTestBus()

	// Three events published while nobody (relevant) is attached.
	for i := 0; i < 3; i++ {
		bus.Publish(New(AttendanceUpdated, nil))
	}

	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	select {
	case ev := <-sub.C:
		t.Fatalf("late subscriber received backlog event %v", ev.Type)
	default:
	}

	// The next published event is received normally.
	bus.Publish(New(TeacherUpdated, nil))
	select {
	case ev := <-sub.C:
		if ev.Type != TeacherUpdated {
			t.Errorf("got type %q, want %q", ev.Type, TeacherUpdated)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for post-subscribe event")
	}
}

func TestBusPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	bus := newTestBus()
	sub := bus.Subscribe() // never drained
	defer bus.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			bus.Publish(New(AttendanceUpdated, nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}
}

func TestBusUnsubscribeIsIdempotentAndConcurrencySafe(t *testing.T) {
	bus := newTestBus()

	var wg sync.WaitGroup
	// Hammer subscribe/unsubscribe while publishing; the race detector
	// flags any unsafe iteration over the subscriber set.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub := bus.Subscribe()
				bus.Publish(New(DepartmentUpdated, nil))
				bus.Unsubscribe(sub)
				bus.Unsubscribe(sub) // double unsubscribe must not panic
			}
		}()
	}
	wg.Wait()

	if n := bus.SubscriberCount(); n != 0 {
		t.Errorf("subscriber count after churn = %d, want 0", n)
	}
}
