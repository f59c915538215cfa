package forge

import "sync"

// stream is a double-buffered ring for one event type: producers append to
// active, consumers read stable from the previous frame, and swap() rotates
// them once per schedule tick.
type stream[E any] struct {
	mu         sync.Mutex
	active     []E
	stable     []E
	capacity   int
	producerID TypeID
}

func newStream[E any](capacity int, producerID TypeID) *stream[E] {
	return &stream[E]{capacity: capacity, producerID: producerID}
}

func (s *stream[E]) send(e E) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.active) >= s.capacity {
		programBug(EventCapacityError{Type: s.producerID, Capacity: s.capacity})
	}
	s.active = append(s.active, e)
}

func (s *stream[E]) read() []E {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]E, len(s.stable))
	copy(out, s.stable)
	return out
}

func (s *stream[E]) swap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stable, s.active = s.active, s.stable[:0]
}

// eventBroker is the heterogeneous registry of per-type streams, plus the
// producer/consumer TypeID markers used by the access-grant system so a
// system that calls Producer[E] conflicts with another Producer[E] but
// never with a Consumer[E].
type eventBroker struct {
	mu        sync.Mutex
	types     *TypeRegistry
	streams   map[TypeID]any // producer TypeID -> *stream[E]
	swappers  []func()
}

func newEventBroker(types *TypeRegistry) *eventBroker {
	return &eventBroker{types: types, streams: make(map[TypeID]any)}
}

// registerEvent ensures E has producer/consumer markers and a backing
// stream, returning the markers. Idempotent.
func registerEvent[E any](b *eventBroker, capacity int) (producer, consumer TypeID) {
	producer, consumer = RegisterEvent[E](b.types)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.streams[producer]; ok {
		return producer, consumer
	}
	s := newStream[E](capacity, producer)
	b.streams[producer] = s
	b.swappers = append(b.swappers, s.swap)
	return producer, consumer
}

func streamFor[E any](b *eventBroker) (*stream[E], bool) {
	producer, _, ok := EventMarkers[E](b.types)
	if !ok {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.streams[producer]
	if !ok {
		return nil, false
	}
	return s.(*stream[E]), true
}

// swapAll rotates every registered stream's double buffer. Called by the
// Schedule at the start of its first-registered phase, before that phase's
// systems run.
func (b *eventBroker) swapAll() {
	b.mu.Lock()
	swappers := append([]func(){}, b.swappers...)
	b.mu.Unlock()
	for _, swap := range swappers {
		swap()
	}
}

// Producer is a system Parameter granting write-only access to E's
// producer marker: Send appends to the active buffer.
type Producer[E any] struct {
	stream *stream[E]
}

// Send appends e to the active buffer. Sending into a stream already at its
// registered capacity is a ProgramBug: capacity is fixed at registration,
// so overflow is always a caller bug, never a condition to silently drop.
func (p Producer[E]) Send(e E) {
	p.stream.send(e)
}

// Consumer is a system Parameter granting read-only access to E's consumer
// marker: Events returns a snapshot of last tick's stable buffer.
type Consumer[E any] struct {
	stream *stream[E]
}

func (c Consumer[E]) Events() []E {
	if c.stream == nil {
		return nil
	}
	return c.stream.read()
}
