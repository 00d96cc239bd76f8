package events

import (
	"context"
	"errors"
	"sync"
)

// EventHandler reacts to a published occupancy event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans occupancy events out to subscribed handlers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// memoryDispatcher delivers events synchronously within the publishing
// call. Handler failures never block the remaining handlers.
type memoryDispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &memoryDispatcher{handlers: make(map[EventType][]EventHandler)}
}

// Publish invokes every handler subscribed to the event's type and reports
// their combined failures.
func (d *memoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subscribed := append([]EventHandler(nil), d.handlers[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, handler := range subscribed {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for the given event type.
func (d *memoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}
