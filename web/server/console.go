package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-stilllife/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warning", "error"
}

// Console fans log messages out to connected clients and keeps the most
// recent ones for clients that connect later
type Console struct {
	mu          sync.Mutex
	history     []ConsoleMessage
	historySize int
	subscribers map[chan ConsoleMessage]struct{}
}

// NewConsole creates a console that remembers up to historySize messages
func NewConsole(historySize int) *Console {
	return &Console{
		historySize: historySize,
		subscribers: make(map[chan ConsoleMessage]struct{}),
	}
}

// Publish records msg and offers it to every subscriber without blocking
func (c *Console) Publish(msg ConsoleMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.historySize > 0 {
		c.history = append(c.history, msg)
		if len(c.history) > c.historySize {
			c.history = c.history[len(c.history)-c.historySize:]
		}
	}

	for ch := range c.subscribers {
		select {
		case ch <- msg:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// Subscribe returns a channel of new messages, the history so far and a
// function that ends the subscription
func (c *Console) Subscribe(buffer int) (<-chan ConsoleMessage, []ConsoleMessage, func()) {
	ch := make(chan ConsoleMessage, buffer)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	history := append([]ConsoleMessage(nil), c.history...)
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, ch)
			c.mu.Unlock()
		})
	}
	return ch, history, cancel
}

// WebLogger implements core.Logger by writing to a server-side logger and
// publishing every message to the web console
type WebLogger struct {
	next    core.Logger
	console *Console
}

// NewWebLogger creates a logger that tees into console. next may be nil.
func NewWebLogger(next core.Logger, console *Console) *WebLogger {
	if next == nil {
		next = core.NewNopLogger()
	}
	return &WebLogger{next: next, console: console}
}

func (wl *WebLogger) Debugf(format string, args ...any) {
	wl.next.Debugf(format, args...)
	wl.publish("debug", format, args)
}

func (wl *WebLogger) Infof(format string, args ...any) {
	wl.next.Infof(format, args...)
	wl.publish("info", format, args)
}

func (wl *WebLogger) Warnf(format string, args ...any) {
	wl.next.Warnf(format, args...)
	wl.publish("warning", format, args)
}

func (wl *WebLogger) Errorf(format string, args ...any) {
	wl.next.Errorf(format, args...)
	wl.publish("error", format, args)
}

func (wl *WebLogger) publish(level, format string, args []any) {
	if wl.console == nil {
		return
	}
	wl.console.Publish(ConsoleMessage{
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
		Level:     level,
	})
}
