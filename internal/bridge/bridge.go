// Package bridge exposes workspace updates over a local WebSocket endpoint
// so external tools (editor status bars, shell scripts) can subscribe to
// the same push stream the UI receives.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Event is the envelope broadcast to every subscriber.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Bridge is a broadcast hub bound to localhost only.
type Bridge struct {
	log      zerolog.Logger
	port     int
	server   *http.Server
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// New creates a bridge listening on the given localhost port.
func New(log zerolog.Logger, port int) *Bridge {
	return &Bridge{
		log:     log,
		port:    port,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			// Local tooling only; no cross-origin browser use intended.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Start begins serving. Bind failures are logged and leave the bridge
// inactive; the engine itself is unaffected.
func (b *Bridge) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", b.handleEvents)

	b.server = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", b.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		b.log.Info().Int("port", b.port).Msg("event bridge listening")
		if err := b.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			b.log.Warn().Err(err).Msg("event bridge stopped")
		}
	}()
}

// Stop closes all client connections and shuts the server down.
func (b *Bridge) Stop() {
	b.mu.Lock()
	for conn := range b.clients {
		conn.Close()
	}
	b.clients = make(map[*websocket.Conn]bool)
	b.mu.Unlock()

	if b.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = b.server.Shutdown(ctx)
	}
}

// Broadcast sends an event to every connected subscriber. Slow or dead
// clients are dropped rather than blocking the engine.
func (b *Bridge) Broadcast(eventType string, payload any) {
	raw, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		b.log.Warn().Err(err).Str("event", eventType).Msg("failed to marshal bridge event")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			conn.Close()
			delete(b.clients, conn)
		}
	}
}

func (b *Bridge) handleEvents(rw http.ResponseWriter, req *http.Request) {
	conn, err := b.upgrader.Upgrade(rw, req, nil)
	if err != nil {
		b.log.Warn().Err(err).Msg("bridge upgrade failed")
		return
	}

	b.mu.Lock()
	b.clients[conn] = true
	b.mu.Unlock()

	// Subscribers are write-only from our side; drain reads until the
	// client disconnects.
	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.clients, conn)
			b.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
