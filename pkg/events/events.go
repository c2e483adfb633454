// Package events is a minimal named-channel observer registry. Delivery is
// synchronous and in-order: Emit calls every handler subscribed at the moment
// of emission before returning. There is no queue and no goroutine hand-off,
// so handlers may read manager state without racing a later mutation.
package events

import "sort"

// Handler receives the payload emitted on a channel.
type Handler func(payload any)

// Bus routes emitted payloads to subscribers by channel name.
type Bus struct {
	nextID   int
	handlers map[string]map[int]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string]map[int]Handler)}
}

// Subscribe registers a handler for a named channel and returns an
// unsubscribe function. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(channel string, h Handler) func() {
	b.nextID++
	id := b.nextID
	if _, ok := b.handlers[channel]; !ok {
		b.handlers[channel] = make(map[int]Handler)
	}
	b.handlers[channel][id] = h

	return func() {
		subs := b.handlers[channel]
		delete(subs, id)
		if len(subs) == 0 {
			delete(b.handlers, channel)
		}
	}
}

// Emit delivers payload to every current subscriber of the channel, in
// subscription order. Handlers registered during delivery do not receive the
// in-flight emission.
func (b *Bus) Emit(channel string, payload any) {
	subs := b.handlers[channel]
	if len(subs) == 0 {
		return
	}
	ids := make([]int, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if h, ok := subs[id]; ok {
			h(payload)
		}
	}
}
