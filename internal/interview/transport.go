package interview

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message is one inbound frame: JSON control/text, or a raw PCM audio chunk.
type Message struct {
	Binary bool
	Data   []byte
}

// Transport is the bidirectional client connection a session runs over. Send
// must be safe to call after the peer disconnected (return an error, never
// block forever); Open reports whether writes can still reach the peer.
type Transport interface {
	Read(ctx context.Context) (Message, error)
	Send(event Event) error
	Open() bool
	Close() error
}

const wsWriteTimeout = 10 * time.Second

// WSTransport adapts a gorilla websocket connection; writes are serialized.
type WSTransport struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

func (t *WSTransport) Read(ctx context.Context) (Message, error) {
	kind, data, err := t.conn.ReadMessage()
	if err != nil {
		t.markClosed()
		return Message{}, err
	}
	return Message{Binary: kind == websocket.BinaryMessage, Data: data}, nil
}

func (t *WSTransport) Send(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return websocket.ErrCloseSent
	}
	t.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if werr := t.conn.WriteMessage(websocket.TextMessage, payload); werr != nil {
		t.closed = true
		return werr
	}
	return nil
}

func (t *WSTransport) Open() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

func (t *WSTransport) Close() error {
	t.markClosed()
	return t.conn.Close()
}

func (t *WSTransport) markClosed() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

// BackgroundTransport drives a simulated session with no live peer: it serves
// the start message once and collects every outbound event.
type BackgroundTransport struct {
	start []byte

	mu     sync.Mutex
	served bool
	closed bool
	events []Event
}

func NewBackgroundTransport(startMessage []byte) *BackgroundTransport {
	return &BackgroundTransport{start: startMessage}
}

func (t *BackgroundTransport) Read(ctx context.Context) (Message, error) {
	t.mu.Lock()
	served := t.served
	t.served = true
	t.mu.Unlock()

	if !served {
		return Message{Data: t.start}, nil
	}
	<-ctx.Done()
	return Message{}, ctx.Err()
}

func (t *BackgroundTransport) Send(event Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
	return nil
}

func (t *BackgroundTransport) Open() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

func (t *BackgroundTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

func (t *BackgroundTransport) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}
