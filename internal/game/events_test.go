package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()

	var all []EventType
	var notices int
	bus.Subscribe(func(ev Event) {
		all = append(all, ev.Type)
	})
	bus.SubscribeTyped(EventNotice, func(ev Event) {
		notices++
	})

	bus.Publish(Event{Type: EventNotice, Message: "one"})
	bus.Publish(Event{Type: EventPhaseChanged, Message: "MAIN"})
	bus.Publish(Event{Type: EventNotice, Message: "two"})

	assert.Equal(t, []EventType{EventNotice, EventPhaseChanged, EventNotice}, all)
	assert.Equal(t, 2, notices)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()

	var got int
	handle := bus.Subscribe(func(Event) { got++ })
	bus.Publish(Event{Type: EventNotice})
	bus.Unsubscribe(handle)
	bus.Publish(Event{Type: EventNotice})

	assert.Equal(t, 1, got)

	typedHandle := bus.SubscribeTyped(EventSnapshot, func(Event) { got += 10 })
	bus.Publish(Event{Type: EventSnapshot})
	bus.Unsubscribe(typedHandle)
	bus.Publish(Event{Type: EventSnapshot})

	assert.Equal(t, 11, got)
}

func TestBusIgnoresNilListeners(t *testing.T) {
	bus := NewBus()
	assert.Equal(t, -1, bus.Subscribe(nil))
	assert.Equal(t, -1, bus.SubscribeTyped(EventNotice, nil))
	bus.Publish(Event{Type: EventNotice})
}
