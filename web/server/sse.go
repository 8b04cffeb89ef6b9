package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console"
	Data string `json:"data"` // JSON-encoded data
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// handleConsole streams log messages as SSE, starting with recent history
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	messages, history, cancel := s.console.Subscribe(50)
	defer cancel()

	sseEventChan := make(chan SSEEvent, 100)
	go s.streamConsoleMessages(ctx, history, messages, sseEventChan)
	s.writeSSEEvents(w, ctx, sseEventChan)
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}

			_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data)
			if err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages turns console messages into SSE events
func (s *Server) streamConsoleMessages(ctx context.Context, history []ConsoleMessage, messages <-chan ConsoleMessage, sseEventChan chan SSEEvent) {
	send := func(msg ConsoleMessage) bool {
		data, err := json.Marshal(msg)
		if err != nil {
			return true
		}
		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, msg := range history {
		if !send(msg) {
			return
		}
	}

	for {
		select {
		case msg := <-messages:
			if !send(msg) {
				return
			}
		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}
