package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ngmvpwd/pakaya-sub001/internal/event"
)

// newBareHub returns a hub whose state is manipulated directly, without
// the Run goroutine, so drop/broadcast behavior is deterministic.
func newBareHub() *Hub {
	return NewHub(zerolog.Nop())
}

func newBareClient(h *Hub) *Client {
	return NewClient(h, nil, zerolog.Nop())
}

func recvFrame(t *testing.T, c *Client) event.Event {
	t.Helper()
	select {
	case payload := <-c.send:
		var ev event.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return event.Event{}
	}
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	h := newBareHub()
	a, b := newBareClient(h), newBareClient(h)
	h.clients[a] = true
	h.clients[b] = true

	h.broadcast(event.New(event.AttendanceUpdated, event.AttendanceData{Date: "2026-08-20"}))

	for _, c := range []*Client{a, b} {
		ev := recvFrame(t, c)
		if ev.Type != event.AttendanceUpdated {
			t.Errorf("frame type = %q, want attendance_updated", ev.Type)
		}
	}
}

func TestStalledClientIsDroppedWithoutBlockingOthers(t *testing.T) {
	h := newBareHub()
	stalled, healthy := newBareClient(h), newBareClient(h)
	h.clients[stalled] = true
	h.clients[healthy] = true

	// Fill the stalled client's buffer, then one more broadcast.
	for i := 0; i <= sendBuffer; i++ {
		h.broadcast(event.New(event.AttendanceUpdated, nil))
		// Keep the healthy client drained so only the stalled one fills.
		<-healthy.send
	}

	if h.clients[stalled] {
		t.Error("stalled client still in fan-out set")
	}
	if !h.clients[healthy] {
		t.Error("healthy client was dropped alongside the stalled one")
	}

	// The stalled client's channel is closed after its buffer drains.
	drained := 0
	for range stalled.send {
		drained++
	}
	if drained != sendBuffer {
		t.Errorf("stalled client buffered %d frames, want %d", drained, sendBuffer)
	}

	// Delivery to the healthy client keeps working.
	h.broadcast(event.New(event.TeacherUpdated, nil))
	if ev := recvFrame(t, healthy); ev.Type != event.TeacherUpdated {
		t.Errorf("frame type = %q, want teacher_updated", ev.Type)
	}
}

func TestReconnectedViewerGetsNoBacklog(t *testing.T) {
	h := newBareHub()
	viewer := newBareClient(h)
	h.clients[viewer] = true

	// Viewer disconnects.
	h.drop(viewer)

	// Three events pass while it is offline.
	for i := 0; i < 3; i++ {
		h.broadcast(event.New(event.AttendanceUpdated, nil))
	}

	// Reconnect is a brand-new client; it must see only what follows.
	reconnected := newBareClient(h)
	h.clients[reconnected] = true

	h.broadcast(event.New(event.DepartmentUpdated, nil))

	ev := recvFrame(t, reconnected)
	if ev.Type != event.DepartmentUpdated {
		t.Errorf("first frame after reconnect = %q, want department_updated", ev.Type)
	}
	select {
	case extra := <-reconnected.send:
		t.Errorf("reconnected viewer received backlog frame: %s", extra)
	default:
	}
}

func TestHubRunBridgesBusToClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := event.NewBus(zerolog.Nop())
	h := newBareHub()
	go h.Run(ctx, bus)

	viewer := newBareClient(h)
	h.Register(viewer)

	// Wait for registration to land before publishing.
	for h.ClientCount() != 1 {
		time.Sleep(time.Millisecond)
	}

	bus.Publish(event.New(event.AttendanceUpdated, event.AttendanceData{Date: "2026-08-21"}))

	ev := recvFrame(t, viewer)
	if ev.Type != event.AttendanceUpdated {
		t.Errorf("frame type = %q, want attendance_updated", ev.Type)
	}

	h.Unregister(viewer)
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client count never dropped to 0 after unregister")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDefaultReconnectPolicy(t *testing.T) {
	p := DefaultReconnectPolicy()
	if p.BaseDelayMS != 1000 || p.MaxDelayMS != 30000 || p.Multiplier != 2 || p.MaxAttempts != 5 {
		t.Errorf("unexpected reconnect policy: %+v", p)
	}
}

func TestHelloFrameShape(t *testing.T) {
	raw, err := encodeHello()
	if err != nil {
		t.Fatalf("encodeHello: %v", err)
	}
	var frame struct {
		Type      string          `json:"type"`
		Data      ReconnectPolicy `json:"data"`
		Timestamp time.Time       `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("unmarshal hello: %v", err)
	}
	if frame.Type != FrameHello {
		t.Errorf("type = %q, want %q", frame.Type, FrameHello)
	}
	if frame.Timestamp.IsZero() {
		t.Error("hello frame missing timestamp")
	}
	if frame.Data.MaxAttempts != ReconnectMaxAttempts {
		t.Errorf("hello carries max_attempts = %d, want %d", frame.Data.MaxAttempts, ReconnectMaxAttempts)
	}
}
