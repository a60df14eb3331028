package api

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"goeda/internal"
	"goeda/ports"

	"github.com/gin-gonic/gin"
)

// EventClient is one connected SSE subscriber
type EventClient struct {
	StreamID string
	Channel  chan RunEvent
}

// RunEvent is one diagnostic line of a running report, streamed to subscribers
type RunEvent struct {
	StreamID  string    `json:"stream_id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// EventHub fans report diagnostics out to Server-Sent Events subscribers
type EventHub struct {
	clients    map[string]map[chan RunEvent]bool
	clientsMu  sync.RWMutex
	register   chan EventClient
	unregister chan EventClient
	broadcast  chan RunEvent
	done       chan struct{}
	closeOnce  sync.Once
	keepAlive  time.Duration
	logger     *internal.Logger
}

// NewEventHub creates a hub and starts its dispatch loop
func NewEventHub(logger *internal.Logger) *EventHub {
	if logger == nil {
		logger = internal.NewLoggerWithZap(internal.LogLevelError, nil)
	}
	hub := &EventHub{
		clients:    make(map[string]map[chan RunEvent]bool),
		register:   make(chan EventClient, 10),
		unregister: make(chan EventClient, 10),
		broadcast:  make(chan RunEvent, 100),
		done:       make(chan struct{}),
		keepAlive:  30 * time.Second,
		logger:     logger.Named("sse"),
	}

	go hub.run()
	return hub
}

// run processes hub operations until Close
func (h *EventHub) run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.StreamID] == nil {
				h.clients[client.StreamID] = make(map[chan RunEvent]bool)
			}
			h.clients[client.StreamID][client.Channel] = true
			h.logger.Debug("client registered for stream %s (total clients: %d)",
				client.StreamID, len(h.clients[client.StreamID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.StreamID]; exists {
				delete(clients, client.Channel)
				h.logger.Debug("client unregistered from stream %s (remaining clients: %d)",
					client.StreamID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.StreamID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.StreamID] {
				select {
				case clientChan <- event:
				default:
					h.logger.Warn("client channel full for stream %s, skipping event", event.StreamID)
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Broadcast queues an event for every subscriber of its stream
func (h *EventHub) Broadcast(event RunEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping %s event", event.Level)
	}
}

// Close stops the dispatch loop
func (h *EventHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of subscribers of a stream
func (h *EventHub) ClientCount(streamID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[streamID])
}

// HandleSSE streams the events of ?stream=<id> until the client disconnects
func (h *EventHub) HandleSSE(c *gin.Context) {
	streamID := c.Query("stream")
	if streamID == "" {
		c.JSON(400, gin.H{"error": "stream parameter required"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan RunEvent, 64)
	select {
	case h.register <- EventClient{StreamID: streamID, Channel: clientChan}:
	default:
		c.JSON(500, gin.H{"error": "event hub registration failed"})
		return
	}
	defer func() {
		select {
		case h.unregister <- EventClient{StreamID: streamID, Channel: clientChan}:
		default:
		}
	}()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-clientChan:
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.Level, string(payload))
			return true

		case <-time.After(h.keepAlive):
			c.SSEvent("ping", `{"status":"alive","timestamp":"`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// StreamDiagnostics logs every analyzer diagnostic and mirrors it to the
// subscribers of one stream
type StreamDiagnostics struct {
	logger   *internal.Logger
	hub      *EventHub
	streamID string
}

var _ ports.Diagnostics = (*StreamDiagnostics)(nil)

// NewStreamDiagnostics creates the fan-out; an empty streamID only logs
func NewStreamDiagnostics(logger *internal.Logger, hub *EventHub, streamID string) *StreamDiagnostics {
	return &StreamDiagnostics{logger: logger, hub: hub, streamID: streamID}
}

func (d *StreamDiagnostics) Info(format string, args ...interface{}) {
	d.logger.Info(format, args...)
	d.publish("info", format, args)
}

func (d *StreamDiagnostics) Warn(format string, args ...interface{}) {
	d.logger.Warn(format, args...)
	d.publish("warn", format, args)
}

func (d *StreamDiagnostics) Error(format string, args ...interface{}) {
	d.logger.Error(format, args...)
	d.publish("error", format, args)
}

func (d *StreamDiagnostics) publish(level, format string, args []interface{}) {
	if d.hub == nil || d.streamID == "" {
		return
	}
	d.hub.Broadcast(RunEvent{
		StreamID:  d.streamID,
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	})
}
