package events

import (
	"fmt"
	"sync"
)

// InMemoryDispatcher fans domain events out to registered handlers through a
// buffered channel. Handlers run on the dispatcher goroutine; slow handlers
// should hand off to their own workers.
type InMemoryDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	running  bool
	stopCh   chan struct{}
	eventCh  chan DomainEvent
	wg       sync.WaitGroup
	onError  func(event DomainEvent, err error)
}

// NewInMemoryDispatcher creates a dispatcher with the given channel buffer.
func NewInMemoryDispatcher(bufferSize int) *InMemoryDispatcher {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &InMemoryDispatcher{
		handlers: make(map[string][]Handler),
		stopCh:   make(chan struct{}),
		eventCh:  make(chan DomainEvent, bufferSize),
	}
}

// OnError registers a callback invoked when a handler returns an error.
func (d *InMemoryDispatcher) OnError(fn func(event DomainEvent, err error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onError = fn
}

// Publish enqueues a single event. Fails when the dispatcher is stopped or
// the buffer is full.
func (d *InMemoryDispatcher) Publish(event DomainEvent) error {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()
	if !running {
		return fmt.Errorf("event dispatcher is not running")
	}

	select {
	case d.eventCh <- event:
		return nil
	default:
		return fmt.Errorf("event channel is full")
	}
}

// PublishAll enqueues multiple events, stopping at the first failure.
func (d *InMemoryDispatcher) PublishAll(events []DomainEvent) error {
	for _, event := range events {
		if err := d.Publish(event); err != nil {
			return fmt.Errorf("failed to publish event %s: %w", event.EventType(), err)
		}
	}
	return nil
}

// Subscribe registers a handler for an event type.
func (d *InMemoryDispatcher) Subscribe(eventType string, handler Handler) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
	return nil
}

// Start launches the dispatch goroutine.
func (d *InMemoryDispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("event dispatcher is already running")
	}
	d.running = true
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()
		d.run()
	}()

	return nil
}

// Stop drains buffered events and shuts the dispatcher down.
func (d *InMemoryDispatcher) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return fmt.Errorf("event dispatcher is not running")
	}
	d.running = false
	d.mu.Unlock()

	close(d.stopCh)
	d.wg.Wait()
	return nil
}

func (d *InMemoryDispatcher) run() {
	for {
		select {
		case <-d.stopCh:
			for {
				select {
				case event := <-d.eventCh:
					d.dispatch(event)
				default:
					return
				}
			}
		case event := <-d.eventCh:
			d.dispatch(event)
		}
	}
}

func (d *InMemoryDispatcher) dispatch(event DomainEvent) {
	d.mu.RLock()
	handlers := d.handlers[event.EventType()]
	onError := d.onError
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(event); err != nil && onError != nil {
			onError(event, err)
		}
	}
}
