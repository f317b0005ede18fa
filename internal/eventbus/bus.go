// Package eventbus is a typed publish/subscribe hub for the console
// widgets. It is single-threaded: every call must come from the UI
// goroutine. Subscribing or unsubscribing from inside a handler is safe;
// such changes take effect once the outermost Emit returns.
package eventbus

import (
	"github.com/rs/zerolog/log"
)

// Handle is a generation-checked identity for a sender or receiver. The
// zero Handle is Any.
type Handle struct {
	index uint32
	gen   uint32
}

// Any matches every sender when used as a sender filter.
var Any = Handle{}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h == Handle{} }

// Subscription identifies one connection made with Connect.
type Subscription struct {
	id   uint64
	kind Kind
}

type subscription struct {
	id        uint64
	kind      Kind
	sender    Handle
	receiver  Handle
	fn        func(Event) bool
	connected bool
}

type mutation struct {
	add    *subscription
	remove Subscription
}

// Bus routes events to subscribers. The zero value is not usable; call New.
type Bus struct {
	subs    [kindCount][]*subscription
	byID    map[uint64]*subscription
	pending []mutation
	depth   int
	nextID  uint64

	gens []uint32 // generation per arena slot; index 0 is reserved for Any
	free []uint32
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		byID: make(map[uint64]*subscription),
		gens: []uint32{0},
	}
}

// NewHandle allocates an identity for a widget or other participant.
func (b *Bus) NewHandle() Handle {
	if n := len(b.free); n > 0 {
		idx := b.free[n-1]
		b.free = b.free[:n-1]
		return Handle{index: idx, gen: b.gens[idx]}
	}
	b.gens = append(b.gens, 1)
	return Handle{index: uint32(len(b.gens) - 1), gen: 1}
}

// Alive reports whether h still refers to a live participant.
func (b *Bus) Alive(h Handle) bool {
	return h.index != 0 && int(h.index) < len(b.gens) && b.gens[h.index] == h.gen
}

// Release invalidates h: every subscription it owns is disconnected and
// in-flight emits will not call into it again. The slot is recycled with
// a new generation, so h never becomes valid again.
func (b *Bus) Release(h Handle) {
	if !b.Alive(h) {
		return
	}
	b.gens[h.index]++
	b.free = append(b.free, h.index)
	for kind := range b.subs {
		for _, s := range b.subs[kind] {
			if s.receiver == h && s.connected {
				b.Disconnect(Subscription{id: s.id, kind: Kind(kind)})
			}
		}
	}
	for _, m := range b.pending {
		if m.add != nil && m.add.receiver == h {
			m.add.connected = false
		}
	}
}

// Connect subscribes fn to events of type E. A zero sender accepts events
// from anyone; otherwise only events emitted by that sender are
// delivered. fn returns true when it handled the event, which stops the
// emit.
func Connect[E Event](b *Bus, sender, receiver Handle, fn func(E) bool) Subscription {
	var zero E
	kind := zero.Kind()
	b.nextID++
	s := &subscription{
		id:       b.nextID,
		kind:     kind,
		sender:   sender,
		receiver: receiver,
		fn: func(ev Event) bool {
			e, ok := ev.(E)
			return ok && fn(e)
		},
		connected: true,
	}
	b.byID[s.id] = s
	if b.depth > 0 {
		b.pending = append(b.pending, mutation{add: s})
		log.Debug().Stringer("kind", kind).Uint64("sub", s.id).Msg("eventbus: connect deferred")
	} else {
		b.subs[kind] = append(b.subs[kind], s)
	}
	return Subscription{id: s.id, kind: kind}
}

// Disconnect removes a subscription. The handler is not invoked again,
// even later in an emit that is already running.
func (b *Bus) Disconnect(sub Subscription) {
	s, ok := b.byID[sub.id]
	if !ok {
		return
	}
	s.connected = false
	delete(b.byID, sub.id)
	if b.depth > 0 {
		b.pending = append(b.pending, mutation{remove: sub})
		return
	}
	b.remove(sub)
}

func (b *Bus) remove(sub Subscription) {
	list := b.subs[sub.kind]
	for i, s := range list {
		if s.id == sub.id {
			// Copy instead of shifting in place: an outer emit may still
			// hold the old slice.
			next := make([]*subscription, 0, len(list)-1)
			next = append(next, list[:i]...)
			b.subs[sub.kind] = append(next, list[i+1:]...)
			return
		}
	}
}

// Emit delivers ev to matching subscribers in registration order until
// one of them handles it. It reports whether the event was handled.
func (b *Bus) Emit(ev Event, sender Handle) bool {
	kind := ev.Kind()
	if kind >= kindCount {
		return false
	}
	b.depth++
	handled := false
	for _, s := range b.subs[kind] {
		if !s.connected || !b.Alive(s.receiver) {
			continue
		}
		if !s.sender.IsZero() && s.sender != sender {
			continue
		}
		if s.fn(ev) {
			handled = true
			break
		}
	}
	b.depth--
	if b.depth == 0 {
		b.applyPending()
	}
	return handled
}

func (b *Bus) applyPending() {
	if len(b.pending) == 0 {
		return
	}
	pending := b.pending
	b.pending = nil
	for _, m := range pending {
		if m.add != nil {
			if m.add.connected {
				b.subs[m.add.kind] = append(b.subs[m.add.kind], m.add)
			}
			continue
		}
		b.remove(m.remove)
	}
	log.Debug().Int("mutations", len(pending)).Msg("eventbus: applied deferred changes")
}

// HasConnection reports whether receiver has a live subscription for kind.
func (b *Bus) HasConnection(kind Kind, receiver Handle) bool {
	if kind >= kindCount || !b.Alive(receiver) {
		return false
	}
	for _, s := range b.subs[kind] {
		if s.connected && s.receiver == receiver {
			return true
		}
	}
	for _, m := range b.pending {
		if m.add != nil && m.add.connected && m.add.receiver == receiver && m.add.kind == kind {
			return true
		}
	}
	return false
}

