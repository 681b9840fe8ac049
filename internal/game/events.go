package game

import (
	"sync"
	"time"
)

// EventType indicates the category of a session event.
type EventType string

const (
	EventSnapshot     EventType = "SNAPSHOT"
	EventPhaseChanged EventType = "PHASE_CHANGED"
	EventNotice       EventType = "NOTICE"
	EventSkill        EventType = "SKILL_TRIGGERED"
	EventCombat       EventType = "COMBAT_RESOLVED"
	EventCapture      EventType = "BASE_CAPTURED"
	EventFinished     EventType = "FINISHED"
)

// Notice severities carried by EventNotice events.
const (
	NoticeInfo  = "info"
	NoticeError = "error"
)

// Event is one observable session occurrence. Snapshot events follow every
// state mutation; the remaining types narrate what happened for log panes and
// spectators.
type Event struct {
	Type      EventType `json:"type"`
	Seat      Seat      `json:"seat"`
	Level     string    `json:"level,omitempty"`
	Message   string    `json:"message,omitempty"`
	CardName  string    `json:"card_name,omitempty"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
	Result    *Result   `json:"result,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Listener reacts to published events.
type Listener func(Event)

// TypedListener reacts to a single event type.
type TypedListener struct {
	Handle   int
	Type     EventType
	Callback func(Event)
}

// Bus is a synchronous publish/subscribe fan-out. Publishing happens from the
// session goroutine only; subscribers that need to block must hand the event
// off to their own goroutine.
type Bus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewBus constructs an empty event bus.
func NewBus() *Bus {
	return &Bus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for every event and returns its handle.
func (b *Bus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	handle := b.nextHandle
	b.nextHandle++
	b.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for one event type only.
func (b *Bus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	handle := b.nextHandle
	b.nextHandle++
	b.typedListeners[eventType] = append(b.typedListeners[eventType], TypedListener{
		Handle:   handle,
		Type:     eventType,
		Callback: callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the handle, regardless of
// how it was registered.
func (b *Bus) Unsubscribe(handle int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, handle)
	for eventType, listeners := range b.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				b.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all matching listeners synchronously.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		listener(event)
	}
	for _, listener := range b.typedListeners[event.Type] {
		listener.Callback(event)
	}
}
