// Package sse fans post change events out to Server-Sent Events clients.
package sse

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

const DefaultBuffer = 16

type Event struct {
	Name string
	Data []byte
}

// Write encodes e in the text/event-stream format. Multi-line data is split
// into one data field per line.
func Write(w io.Writer, e Event) error {
	var buf bytes.Buffer
	if e.Name != "" {
		fmt.Fprintf(&buf, "event: %s\n", e.Name)
	}
	for _, line := range bytes.Split(e.Data, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')

	_, err := w.Write(buf.Bytes())
	return err
}

type Client struct {
	Msg chan Event
	// Slug limits the client to events about one post. Empty means all.
	Slug string
}

func NewClient(slug string) *Client {
	return &Client{
		Msg:  make(chan Event, DefaultBuffer),
		Slug: slug,
	}
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[client] {
		delete(s.clients, client)
		close(client.Msg)
	}
}

func (s *SSEClients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast queues e for every client interested in slug. Clients whose
// buffer is full miss the event. It returns how many clients received it.
func (s *SSEClients) Broadcast(slug string, e Event) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	delivered := 0
	for client := range s.clients {
		if client.Slug != "" && client.Slug != slug {
			continue
		}
		select {
		case client.Msg <- e:
			delivered++
		default:
		}
	}
	return delivered
}
