package forge

// Parameter is a system's declared dependency: the Schedule uses
// access(world) once, at AddSystem time, to compute the system's aggregate
// AccessRequest, and resolve(world, shard) once per run to hand the system
// its extracted values.
//
// Go has no variadic generics, so forge can't express "a system taking any
// number of differently-typed Parameters" as one generic function. Instead
// system.go provides NewSystem1..NewSystem4, fixed-arity constructors
// generic over each parameter's value type — the same bounded-arity
// tradeoff the Query engine's Term list makes for a different reason.
type Parameter[V any] interface {
	access(w *World) *AccessRequest
	resolve(w *World, s *Shard) V
}

// QueryParam is the Query<D> parameter kind: its access is the union of its
// terms' reads/writes, and it resolves to a *Query whose terms are checked
// against the shard's grant when ShardQuery builds it.
type QueryParam struct {
	terms []Term
}

// QueryOf declares a Query parameter over terms.
func QueryOf(terms ...Term) QueryParam {
	return QueryParam{terms: terms}
}

func (p QueryParam) access(w *World) *AccessRequest {
	req := NewAccessRequest()
	for _, t := range p.terms {
		r := t.resolve(w.storage.types)
		if r.kind == termEntity {
			continue
		}
		if r.write {
			req.Write(r.typeID)
		} else {
			req.Read(r.typeID)
		}
	}
	return req
}

func (p QueryParam) resolve(w *World, s *Shard) *Query {
	return ShardQuery(s, p.terms...)
}

// UniqParam is the Uniq<U> parameter kind: a read of U's unique slot.
type UniqParam[U any] struct{}

// UniqOf declares a read-only Unique parameter for U.
func UniqOf[U any]() UniqParam[U] { return UniqParam[U]{} }

func (UniqParam[U]) access(w *World) *AccessRequest {
	return NewAccessRequest().Read(RegisterComponent[U](w.storage.types))
}

func (UniqParam[U]) resolve(w *World, s *Shard) *U {
	v, err := ShardUnique[U](s)
	if err != nil {
		programBug(err)
	}
	return v
}

// UniqMutParam is the UniqMut<U> parameter kind: a write of U's unique slot.
type UniqMutParam[U any] struct{}

// UniqMutOf declares a mutable Unique parameter for U.
func UniqMutOf[U any]() UniqMutParam[U] { return UniqMutParam[U]{} }

func (UniqMutParam[U]) access(w *World) *AccessRequest {
	return NewAccessRequest().Write(RegisterComponent[U](w.storage.types))
}

func (UniqMutParam[U]) resolve(w *World, s *Shard) *U {
	v, err := ShardUniqueMut[U](s)
	if err != nil {
		programBug(err)
	}
	return v
}

// WorldParam is the &World parameter kind: read-only access to the entire
// world. Unlike Exclusive systems, which take *World
// directly and always run alone, a Parallel system with a WorldParam may
// still run alongside other systems whose access is read-only or whose
// writes it doesn't touch — ReadonlyWorld only conflicts with writes.
type WorldParam struct{}

// WorldOf declares a read-only whole-world parameter.
func WorldOf() WorldParam { return WorldParam{} }

func (WorldParam) access(w *World) *AccessRequest {
	return NewAccessRequest().ReadonlyWorld()
}

func (WorldParam) resolve(w *World, s *Shard) *World {
	return w
}

// CommandsParam is the Commands parameter kind: no access at all, since
// every mutation it performs is deferred.
type CommandsParam struct{}

// CommandsOf declares a Commands parameter.
func CommandsOf() CommandsParam { return CommandsParam{} }

func (CommandsParam) access(w *World) *AccessRequest {
	return NewAccessRequest()
}

func (CommandsParam) resolve(w *World, s *Shard) Commands {
	return s.Commands()
}

// ProducerParam is the Producer<E> parameter kind: a write of E's
// producer marker.
type ProducerParam[E any] struct {
	capacity int
}

// ProducerOf declares a Producer parameter for E, registering E's event
// streams with Config.defaultEventCapacity if this is the first reference.
func ProducerOf[E any]() ProducerParam[E] { return ProducerParam[E]{capacity: Config.defaultEventCapacity} }

func (p ProducerParam[E]) access(w *World) *AccessRequest {
	registerEvent[E](w.storage.events, p.capacity)
	producer, _, _ := EventMarkers[E](w.storage.types)
	return NewAccessRequest().Write(producer)
}

func (p ProducerParam[E]) resolve(w *World, s *Shard) Producer[E] {
	stream, _ := streamFor[E](w.storage.events)
	return Producer[E]{stream: stream}
}

// ConsumerParam is the Consumer<E> parameter kind: a read of E's
// consumer marker.
type ConsumerParam[E any] struct {
	capacity int
}

// ConsumerOf declares a Consumer parameter for E.
func ConsumerOf[E any]() ConsumerParam[E] { return ConsumerParam[E]{capacity: Config.defaultEventCapacity} }

func (p ConsumerParam[E]) access(w *World) *AccessRequest {
	registerEvent[E](w.storage.events, p.capacity)
	_, consumer, _ := EventMarkers[E](w.storage.types)
	return NewAccessRequest().Read(consumer)
}

func (p ConsumerParam[E]) resolve(w *World, s *Shard) Consumer[E] {
	stream, _ := streamFor[E](w.storage.events)
	return Consumer[E]{stream: stream}
}
