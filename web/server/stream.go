package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-stilllife/pkg/controls"
)

// InputEvent is a message sent by a websocket client
type InputEvent struct {
	Type   string  `json:"type"` // resize, pointerdown, pointermove, pointerup, wheel
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button int     `json:"button"` // 0 left, 1 middle, 2 right
	DeltaY float64 `json:"deltaY"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	DPR    float64 `json:"dpr"`
}

// StreamMessage is a text message sent to websocket clients. Frames are sent
// as binary PNG messages.
type StreamMessage struct {
	Type    string          `json:"type"` // "console", "frame", "error"
	Console *ConsoleMessage `json:"console,omitempty"`
	Frame   int             `json:"frame,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// applyInput must run on the loop goroutine
func (s *Server) applyInput(ev InputEvent) error {
	orbit := s.still.Controls
	switch ev.Type {
	case "resize":
		dpr := ev.DPR
		if dpr == 0 {
			dpr = 1
		}
		return s.still.Resize(ev.Width, ev.Height, dpr)
	case "pointerdown":
		button, err := pointerButton(ev.Button)
		if err != nil {
			return err
		}
		orbit.PointerDown(button, ev.X, ev.Y)
	case "pointermove":
		orbit.PointerMove(ev.X, ev.Y)
	case "pointerup":
		orbit.PointerUp()
	case "wheel":
		orbit.Wheel(ev.DeltaY)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

func pointerButton(button int) (controls.Button, error) {
	switch button {
	case 0:
		return controls.ButtonLeft, nil
	case 1:
		return controls.ButtonMiddle, nil
	case 2:
		return controls.ButtonRight, nil
	default:
		return 0, fmt.Errorf("unknown pointer button %d", button)
	}
}

// handleStream upgrades to a websocket that carries input events in and
// frames plus console messages out
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Errors from the reader are reported by the single writer
	errs := make(chan string, 8)
	go s.readEvents(ctx, cancel, conn, errs)
	s.writeStream(ctx, conn, errs)
}

// readEvents decodes client events and hands them to the loop
func (s *Server) readEvents(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, errs chan<- string) {
	defer cancel()
	for {
		var ev InputEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debugf("websocket read: %v", err)
			}
			return
		}

		s.still.Loop.Post(func() {
			if err := s.applyInput(ev); err != nil {
				select {
				case errs <- err.Error():
				default:
				}
			}
		})

		if ctx.Err() != nil {
			return
		}
	}
}

// writeStream is the only goroutine writing to conn
func (s *Server) writeStream(ctx context.Context, conn *websocket.Conn, errs <-chan string) {
	messages, _, unsubscribe := s.console.Subscribe(50)
	defer unsubscribe()

	ticker := time.NewTicker(s.StreamInterval)
	defer ticker.Stop()

	sent := 0
	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case msg := <-messages:
			if err := conn.WriteJSON(StreamMessage{Type: "console", Console: &msg}); err != nil {
				return
			}

		case text := <-errs:
			if err := conn.WriteJSON(StreamMessage{Type: "error", Error: text}); err != nil {
				return
			}

		case <-ticker.C:
			frame := s.latestFrame()
			if frame.Image == nil || frame.Number == sent {
				continue
			}
			data, err := encodeFrame(frame.Image, 0, 0)
			if err != nil {
				s.logger.Errorf("failed to encode frame %d: %v", frame.Number, err)
				continue
			}
			if err := conn.WriteJSON(StreamMessage{Type: "frame", Frame: frame.Number}); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
			sent = frame.Number
		}
	}
}
