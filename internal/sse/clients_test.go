package sse

import (
	"bytes"
	"testing"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"named", Event{Name: "post-created", Data: []byte(`{"slug":"a"}`)}, "event: post-created\ndata: {\"slug\":\"a\"}\n\n"},
		{"unnamed", Event{Data: []byte("hello")}, "data: hello\n\n"},
		{"multi-line", Event{Name: "x", Data: []byte("a\nb")}, "event: x\ndata: a\ndata: b\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, tt.event); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestBroadcastFiltersBySlug(t *testing.T) {
	clients := NewSSEClients()

	all := NewClient("")
	one := NewClient("hello-world")
	other := NewClient("other-post")
	clients.Add(all)
	clients.Add(one)
	clients.Add(other)

	delivered := clients.Broadcast("hello-world", Event{Name: "post-updated"})
	if delivered != 2 {
		t.Errorf("Expected 2 deliveries, got %d", delivered)
	}

	if len(all.Msg) != 1 || len(one.Msg) != 1 {
		t.Error("Expected matching clients to receive the event")
	}
	if len(other.Msg) != 0 {
		t.Error("Expected other client to be skipped")
	}
}

func TestBroadcastDoesNotBlock(t *testing.T) {
	clients := NewSSEClients()

	slow := &Client{Msg: make(chan Event)} // unbuffered and never read
	fast := NewClient("")
	clients.Add(slow)
	clients.Add(fast)

	for i := 0; i < DefaultBuffer+5; i++ {
		clients.Broadcast("p", Event{Name: "tick"})
	}

	if len(fast.Msg) != DefaultBuffer {
		t.Errorf("Expected fast client buffer to fill to %d, got %d", DefaultBuffer, len(fast.Msg))
	}
}

func TestDelete(t *testing.T) {
	clients := NewSSEClients()
	c := NewClient("")
	clients.Add(c)

	clients.Delete(c)
	clients.Delete(c) // second delete is a no-op

	if clients.Len() != 0 {
		t.Errorf("Expected no clients, got %d", clients.Len())
	}
	if _, ok := <-c.Msg; ok {
		t.Error("Expected channel to be closed")
	}
	if n := clients.Broadcast("p", Event{Name: "x"}); n != 0 {
		t.Errorf("Expected no deliveries after delete, got %d", n)
	}
}
