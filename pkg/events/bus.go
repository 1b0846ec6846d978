// Package events is a synchronous publish/subscribe bus for host game events.
//
// Handlers run in subscription order on the publishing goroutine. A handler that is
// unsubscribed while an event is being delivered is not called for that event.
package events

import "time"

type Kind int

const (
	Tick Kind = iota
	Elimination
	Disconnect
	Leave
	Attack
)

func (k Kind) String() string {
	switch k {
	case Tick:
		return "tick"
	case Elimination:
		return "elimination"
	case Disconnect:
		return "disconnect"
	case Leave:
		return "leave"
	case Attack:
		return "attack"
	default:
		return "unknown"
	}
}

// Event is what the host reports. Subject is the player the event is about (the
// eliminated, disconnected or leaving player, or the attacker); Other is the killer
// or the attacked player, if any. At is set on ticks.
type Event struct {
	Kind    Kind
	Subject string
	Other   string
	At      time.Time
}

type Handler func(Event)

type ID uint64

type subscription struct {
	id      ID
	kind    Kind
	handler Handler
}

type Bus struct {
	next ID
	subs map[Kind][]*subscription
	byID map[ID]*subscription
}

func NewBus() *Bus {
	return &Bus{
		subs: map[Kind][]*subscription{},
		byID: map[ID]*subscription{},
	}
}

func (b *Bus) Subscribe(kind Kind, h Handler) ID {
	b.next++
	sub := &subscription{id: b.next, kind: kind, handler: h}
	b.subs[kind] = append(b.subs[kind], sub)
	b.byID[sub.id] = sub
	return sub.id
}

// Unsubscribe reports whether the subscription existed.
func (b *Bus) Unsubscribe(id ID) bool {
	sub, ok := b.byID[id]
	if !ok {
		return false
	}
	delete(b.byID, id)
	subs := b.subs[sub.kind]
	for i, s := range subs {
		if s == sub {
			b.subs[sub.kind] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.kind]) == 0 {
		delete(b.subs, sub.kind)
	}
	return true
}

func (b *Bus) Publish(e Event) {
	// handlers may (un)subscribe while we deliver
	subs := append([]*subscription(nil), b.subs[e.Kind]...)
	for _, sub := range subs {
		if _, ok := b.byID[sub.id]; !ok {
			continue
		}
		sub.handler(e)
	}
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int { return len(b.byID) }

// Group collects the subscriptions of one owner so they can be torn down in one step.
type Group struct {
	bus  *Bus
	ids  []ID
	live bool
}

func (b *Bus) NewGroup() *Group {
	return &Group{bus: b, live: true}
}

func (g *Group) Subscribe(kind Kind, h Handler) ID {
	if !g.live {
		return 0
	}
	id := g.bus.Subscribe(kind, func(e Event) {
		if g.live {
			h(e)
		}
	})
	g.ids = append(g.ids, id)
	return id
}

// Drop removes a single subscription of the group, keeping the group live.
func (g *Group) Drop(id ID) {
	for i, _id := range g.ids {
		if _id == id {
			g.bus.Unsubscribe(id)
			g.ids = append(g.ids[:i], g.ids[i+1:]...)
			return
		}
	}
}

// Close marks the group dead and removes all its subscriptions. It reports whether the
// group was still live, so that only the first caller acts on it.
func (g *Group) Close() bool {
	if !g.live {
		return false
	}
	g.live = false
	for _, id := range g.ids {
		g.bus.Unsubscribe(id)
	}
	g.ids = nil
	return true
}

func (g *Group) Live() bool { return g.live }
