package forge

// World is the top-level ECS handle: a facade tying together the Type
// Registry, entity storage, archetypes, uniques, the event broker, and the
// command queue that defers mutation while a Query or Shard is active.
type World struct {
	storage *Storage
}

// NewWorld creates an empty World.
func NewWorld() *World {
	return &World{storage: newStorage()}
}

// Types exposes the world's TypeRegistry, e.g. for pre-registering
// component types before building Queries or AccessRequests.
func (w *World) Types() *TypeRegistry {
	return w.storage.types
}

// Spawn creates an entity with the given components, applying immediately
// unless storage is locked by an outstanding Query or Shard grant, in which
// case the spawn is deferred to the command queue until every lock drains.
func (w *World) Spawn(components ...any) Entity {
	spec, raw := encodeComponents(w.storage.types, components)
	if w.storage.Locked() {
		e := w.storage.allocator.alloc()
		w.storage.queue.push(&spawnCommand{entity: e, spec: spec, raw: raw})
		return e
	}
	return w.storage.spawnRaw(spec, raw)
}

// Despawn removes e, or defers the removal if storage is locked. The bool
// result reports whether e was actually spawned at the time of the call;
// despawning an already-despawned or never-spawned entity is a
// TransientNoOp that reports false, not an error.
func (w *World) Despawn(e Entity) (bool, error) {
	if w.storage.Locked() {
		alive := w.storage.entities.IsAlive(e)
		w.storage.queue.push(&despawnCommand{entity: e})
		return alive, nil
	}
	return w.storage.despawn(e)
}

// AddComponents attaches components to e, migrating it into the archetype
// that also has them, or defers the migration if storage is locked. Adding
// components to an unknown or already-despawned entity is a no-op, not an
// error.
func (w *World) AddComponents(e Entity, components ...any) error {
	_, raw := encodeComponents(w.storage.types, components)
	if w.storage.Locked() {
		w.storage.queue.push(&addComponentsCommand{entity: e, added: raw})
		return nil
	}
	loc, ok := w.storage.entities.Location(e)
	if !ok {
		return nil
	}
	current := w.storage.tables[loc.Table].Spec()
	ids := make([]TypeID, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	return w.storage.migrate(e, current.Union(ids...), raw)
}

// RemoveComponents detaches the named component types from e, or defers the
// migration if storage is locked. Removing components from an unknown or
// already-despawned entity is a TransientNoOp, not an error.
func (w *World) RemoveComponents(e Entity, ids ...TypeID) error {
	if w.storage.Locked() {
		w.storage.queue.push(&removeComponentsCommand{entity: e, remove: ids})
		return nil
	}
	loc, ok := w.storage.entities.Location(e)
	if !ok {
		return nil
	}
	current := w.storage.tables[loc.Table].Spec()
	return w.storage.migrate(e, current.Without(ids...), nil)
}

// IsAlive reports whether e refers to a currently spawned entity.
func (w *World) IsAlive(e Entity) bool {
	return w.storage.entities.IsAlive(e)
}

// Location returns e's current archetype/table/row, if alive.
func (w *World) Location(e Entity) (Location, bool) {
	return w.storage.entities.Location(e)
}

// Archetypes returns every archetype the world has created, in creation
// order.
func (w *World) Archetypes() []Archetype {
	return w.storage.archetypes.All()
}

// AddUnique stores v as the world's single instance of T, overwriting any
// previous value.
func AddUnique[T any](w *World, v T) {
	setUnique[T](w.storage, v)
}

// Unique returns the world's shared instance of T.
func Unique[T any](w *World) (*T, error) {
	return getUnique[T](w.storage)
}

// UniqueMut returns the world's shared instance of T for mutation. In
// forge, as in Go generally, this is the same pointer Unique would return —
// the read/write distinction is enforced at the AccessRequest/Grant layer
// for scheduled systems, not by the type system.
func UniqueMut[T any](w *World) (*T, error) {
	return getUnique[T](w.storage)
}

// RegisterEvent reserves producer/consumer TypeID markers and a backing
// stream for E, sized to Config.defaultEventCapacity. Safe to call more
// than once; later calls are no-ops.
func RegisterEvent[E any](w *World) {
	registerEvent[E](w.storage.events, Config.defaultEventCapacity)
}

// RegisterEventCapacity is RegisterEvent with an explicit stream capacity.
func RegisterEventCapacity[E any](w *World, capacity int) {
	registerEvent[E](w.storage.events, capacity)
}

// NewProducer returns a Producer[E] bound to world's event stream for E.
// RegisterEvent[E] must have already been called.
func NewProducer[E any](w *World) Producer[E] {
	s, _ := streamFor[E](w.storage.events)
	return Producer[E]{stream: s}
}

// NewConsumer returns a Consumer[E] bound to world's event stream for E.
func NewConsumer[E any](w *World) Consumer[E] {
	s, _ := streamFor[E](w.storage.events)
	return Consumer[E]{stream: s}
}

// SwapEvents rotates every registered event stream's double buffer. The
// Schedule calls this at the start of its first-registered phase, before
// that phase's systems run.
func (w *World) SwapEvents() {
	w.storage.events.swapAll()
}

// NewShard issues an AccessGrant for req and returns a Shard bound to it.
// The caller must call Shard.Release when done; the Schedule does this
// automatically for systems it runs.
func (w *World) NewShard(req *AccessRequest) *Shard {
	grant := newAccessGrant(w.storage, req)
	return newShard(w, grant)
}

// FlushCommands applies every queued command immediately. Flushing while a
// query iteration or access grant is outstanding is a ProgramBug: the
// Schedule only ever calls this at the start of a phase and after each
// Exclusive system, when no shard is outstanding, so queued mutation never races a
// Query walking the very tables it would migrate. Locks drain the queue
// automatically on release (Storage.RemoveLock), so direct callers should
// rarely need this at all.
func (w *World) FlushCommands() {
	if w.storage.Locked() {
		programBug(GrantMisuseError{Reason: "command flush attempted while a query iteration or access grant is outstanding"})
	}
	w.storage.queue.flush()
}
