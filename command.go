package forge

import "sync"

// command is one deferred mutation. Parallel systems only ever see the
// world through a Shard, which can't touch table storage directly, so every
// structural change a Parallel system wants to make — spawn, despawn, add
// or remove components — goes through Commands and is buffered here until
// the scheduler flushes it, covering the full migration protocol, not just
// spawn/destroy.
type command interface {
	apply(s *Storage)
}

type spawnCommand struct {
	entity Entity
	spec   ComponentSpec
	raw    map[TypeID][]byte
}

func (c *spawnCommand) apply(s *Storage) {
	tableID := s.getOrCreateTable(c.spec)
	s.mu.Lock()
	t := s.tables[tableID]
	row := t.addRow(c.entity)
	for id, bytes := range c.raw {
		if col, ok := t.column(id); ok {
			col.writeBytes(row, bytes)
		}
	}
	s.mu.Unlock()
	s.entities.SpawnAt(c.entity, Location{Table: tableID, Row: row})
}

type despawnCommand struct {
	entity Entity
}

func (c *despawnCommand) apply(s *Storage) {
	_, _ = s.despawn(c.entity)
}

type addComponentsCommand struct {
	entity Entity
	added  map[TypeID][]byte
}

func (c *addComponentsCommand) apply(s *Storage) {
	loc, ok := s.entities.Location(c.entity)
	if !ok {
		return
	}
	current := s.tables[loc.Table].Spec()
	ids := make([]TypeID, 0, len(c.added))
	for id := range c.added {
		ids = append(ids, id)
	}
	newSpec := current.Union(ids...)
	_ = s.migrate(c.entity, newSpec, c.added)
}

type removeComponentsCommand struct {
	entity Entity
	remove []TypeID
}

func (c *removeComponentsCommand) apply(s *Storage) {
	loc, ok := s.entities.Location(c.entity)
	if !ok {
		return
	}
	current := s.tables[loc.Table].Spec()
	newSpec := current.Without(c.remove...)
	_ = s.migrate(c.entity, newSpec, nil)
}

// commandQueue is the mutex-protected FIFO backing the Command Buffer. No
// lock-free MPSC queue appears anywhere in the retrieved example pack, so
// this stays a plain stdlib mutex + slice rather than reaching for an
// ungrounded dependency (see DESIGN.md).
type commandQueue struct {
	mu      sync.Mutex
	storage *Storage
	cmds    []command
}

func newCommandQueue(s *Storage) *commandQueue {
	return &commandQueue{storage: s}
}

func (q *commandQueue) push(c command) {
	q.mu.Lock()
	q.cmds = append(q.cmds, c)
	q.mu.Unlock()
}

// flush applies every queued command in FIFO order, then clears the queue.
// Called by Storage.RemoveLock once the last outstanding lock is released,
// and explicitly by Schedule.Run between waves.
func (q *commandQueue) flush() {
	q.mu.Lock()
	pending := q.cmds
	q.cmds = nil
	q.mu.Unlock()
	for _, c := range pending {
		c.apply(q.storage)
	}
}

// Commands is the System Parameter through which a Parallel system performs
// structural mutation. Every method enqueues; nothing it does is visible
// until the next flush.
type Commands struct {
	storage *Storage
}

// Spawn pre-allocates an entity id immediately (so callers can reference it
// the same tick, e.g. to relate it to other queued commands) and queues the
// table insertion for the next flush.
func (c Commands) Spawn(components ...any) Entity {
	spec, raw := encodeComponents(c.storage.types, components)
	e := c.storage.allocator.alloc()
	c.storage.queue.push(&spawnCommand{entity: e, spec: spec, raw: raw})
	return e
}

// Despawn queues e's removal.
func (c Commands) Despawn(e Entity) {
	c.storage.queue.push(&despawnCommand{entity: e})
}

// AddComponents queues attaching the given components to e, migrating it
// into the archetype that also has them.
func (c Commands) AddComponents(e Entity, components ...any) {
	_, raw := encodeComponents(c.storage.types, components)
	c.storage.queue.push(&addComponentsCommand{entity: e, added: raw})
}

// RemoveComponents queues detaching the named component types from e.
func (c Commands) RemoveComponents(e Entity, ids ...TypeID) {
	c.storage.queue.push(&removeComponentsCommand{entity: e, remove: ids})
}
