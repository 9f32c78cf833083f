// Package events provides event handling functionality
package events

import (
	"context"
	"sync"

	"github.com/keithhb33/MathVis/internal/logger"
)

// EventType represents the type of render lifecycle event
type EventType string

const (
	// EventRenderCompleted is emitted when a job finishes with a video
	EventRenderCompleted EventType = "render_completed"
	// EventRenderFailed is emitted when a job reaches the failed state
	EventRenderFailed EventType = "render_failed"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents a render lifecycle event. Events are emitted after the
// terminal state is durably recorded, so handlers can trust the registry.
type Event struct {
	Type     EventType // The type of event
	JobID    string    // The job ID
	Artifact string    // The artifact file name, set for completions
	Error    string    // The failure cause with its internal prefix, set for failures
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

var (
	// handlers is a map of event types to their handlers
	handlers = make(map[EventType][]Handler)
	// handlersMu is a mutex for the handlers map
	handlersMu sync.RWMutex
	// eventChan is a channel for events
	eventChan = make(chan Event, EventChannelSize)
)

// Subscribe registers a handler for a specific event type
func Subscribe(eventType EventType, handler Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[eventType] = append(handlers[eventType], handler)
	logger.Debugf("📝 Registered handler for event type: %s", eventType)
}

// Publish sends an event to be processed
func Publish(event Event) {
	eventChan <- event
	logger.Debugf("📢 Published event: %s (Job: %s)", event.Type, event.JobID)
}

// Start starts the event processing loop
func Start(ctx context.Context) {
	go processEvents(ctx)
	logger.Info("🎯 Started event processing loop")
}

// processEvents handles events in the background
func processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("🛑 Stopping event processing loop")
			return
		case event := <-eventChan:
			logger.Debugf("📥 Received event %s for job %s", event.Type, event.JobID)
			handlersMu.RLock()
			eventHandlers := handlers[event.Type]
			handlersMu.RUnlock()

			// Process event with all registered handlers
			for _, handler := range eventHandlers {
				go func(h Handler, e Event) {
					if err := h(ctx, e); err != nil {
						logger.Errorf("❌ Failed to handle event %s: %v", e.Type, err)
					} else {
						logger.Debugf("✅ Successfully processed event %s for job %s", e.Type, e.JobID)
					}
				}(handler, event)
			}
		}
	}
}
