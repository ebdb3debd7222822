package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "entry.added", Data: map[string]string{"id": "004"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: entry.added") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"004"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishState_Coalesces(t *testing.T) {
	b := NewBroker(200 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First snapshot goes out immediately; the burst after it collapses into
	// one trailing frame carrying the latest value.
	b.PublishState(map[string]int{"count": 1})
	b.PublishState(map[string]int{"count": 2})
	b.PublishState(map[string]int{"count": 3})

	var frames []string
	timeout := time.After(time.Second)
	for len(frames) < 2 {
		select {
		case msg := <-ch:
			frames = append(frames, string(msg))
		case <-timeout:
			t.Fatalf("expected 2 frames, got %d: %q", len(frames), frames)
		}
	}

	if !strings.Contains(frames[0], `"count":1`) {
		t.Errorf("first frame = %q, want count 1", frames[0])
	}
	if !strings.Contains(frames[1], `"count":3`) {
		t.Errorf("trailing frame = %q, want count 3", frames[1])
	}
	for _, f := range frames {
		if !strings.Contains(f, "event: "+EventStateUpdated) {
			t.Errorf("missing event type in %q", f)
		}
	}

	select {
	case msg := <-ch:
		t.Errorf("unexpected extra frame %q", msg)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFrame(t *testing.T) {
	raw, err := Frame(Event{ID: "abc", Type: "effect", Data: map[string]string{"kind": "show_toast"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "id: abc\nevent: effect\ndata: {\"kind\":\"show_toast\"}\n\n"
	if string(raw) != want {
		t.Errorf("Frame = %q, want %q", raw, want)
	}

	if _, err := Frame(Event{Type: "bad", Data: make(chan int)}); err == nil {
		t.Error("expected marshal error")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/state/stream", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishState(map[string]int{"count": 7})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: state.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: "entry.added", Data: map[string]string{"id": "004"}})
	b.PublishState(map[string]int{"count": 1})
}

func TestShutdown_NotifiesThenEndsStream(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/api/state/stream", nil)
	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	b.Shutdown("restart")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not end after Shutdown")
	}

	body := w.Body.String()
	if !strings.Contains(body, "event: "+EventShutdown) || !strings.Contains(body, `"reason":"restart"`) {
		t.Errorf("missing shutdown frame in %q", body)
	}

	// Idempotent with Close.
	b.Shutdown("again")
	b.Close()
}
