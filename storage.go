package forge

import (
	"sync"
	"sync/atomic"

	"github.com/TheBitDrifter/bark"
)

// Lock reasons tracked by Storage: hold a lock, defer structural mutation,
// drain the queue once every lock is released. Holders are counted per
// reason rather than toggled as a single bit per reason, since forge's
// scheduler runs many Parallel systems' Queries and Shards concurrently
// within a wave, so "query iteration" and "access grant outstanding" both
// need to tolerate more than one simultaneous holder.
const (
	lockBitQueryIteration uint32 = iota
	lockBitAccessGrant
	numLockBits
)

// Storage owns every entity's physical data: the type registry, the
// entity id->location index, the archetype/table set, unique singletons,
// and the event broker. It is the layer below World that actually holds
// bytes; World adds the query/scheduling/grant API surface on top.
type Storage struct {
	mu sync.RWMutex

	types      *TypeRegistry
	entities   *entityRegistry
	allocator  *entityAllocator
	archetypes *archetypeRegistry
	tables     []*Table

	uniquesMu sync.RWMutex
	uniques   map[TypeID]any

	events *eventBroker

	locks [numLockBits]atomic.Int32
	queue *commandQueue
}

func newStorage() *Storage {
	s := &Storage{
		types:      NewTypeRegistry(),
		entities:   newEntityRegistry(),
		allocator:  newEntityAllocator(),
		archetypes: newArchetypeRegistry(),
		uniques:    make(map[TypeID]any),
	}
	s.events = newEventBroker(s.types)
	s.queue = newCommandQueue(s)
	return s
}

// Locked reports whether any structural-mutation lock is currently held.
func (s *Storage) Locked() bool {
	for i := range s.locks {
		if s.locks[i].Load() > 0 {
			return true
		}
	}
	return false
}

// AddLock acquires one more holder of bit. Structural mutations
// (spawn/despawn/add/remove components) check Locked and defer to the
// command queue instead of mutating tables while a Query or Shard might be
// reading them.
func (s *Storage) AddLock(bit uint32) {
	s.locks[bit].Add(1)
}

// RemoveLock releases one holder of bit. Once every lock is fully
// released, queued commands are flushed: unlocking drains the queue.
func (s *Storage) RemoveLock(bit uint32) {
	s.locks[bit].Add(-1)
	if !s.Locked() {
		s.queue.flush()
	}
}

func (s *Storage) getOrCreateTable(spec ComponentSpec) TableID {
	s.mu.Lock()
	defer s.mu.Unlock()
	arch := s.archetypes.getOrCreate(spec, func(_ ArchetypeID, spec ComponentSpec) TableID {
		id := TableID(len(s.tables))
		s.tables = append(s.tables, newTable(id, spec, s.types))
		return id
	})
	return arch.TableID()
}

func (s *Storage) table(id TableID) *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[id]
}

// spawnRaw allocates an entity, places it into the archetype matching
// spec, writes each component's raw bytes, and records its Location.
// raw must supply exactly one entry per id in spec.IDs(); zero-sized types
// may omit an entry (nothing to write).
func (s *Storage) spawnRaw(spec ComponentSpec, raw map[TypeID][]byte) Entity {
	e := s.allocator.alloc()
	tableID := s.getOrCreateTable(spec)

	s.mu.Lock()
	t := s.tables[tableID]
	row := t.addRow(e)
	for id, bytes := range raw {
		if c, ok := t.column(id); ok {
			c.writeBytes(row, bytes)
		}
	}
	s.mu.Unlock()

	s.entities.SpawnAt(e, Location{Table: tableID, Row: row})
	return e
}

// despawn removes e's row from its table, running the destructor
// equivalent on every component, and frees e's id for reuse. Despawning an
// already-despawned or never-spawned entity is a no-op, not an error — the
// bool return reports whether this call actually despawned e (false for
// both no-op cases), per entityRegistry.Despawn's own contract.
func (s *Storage) despawn(e Entity) (bool, error) {
	loc, ok := s.entities.Location(e)
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	t := s.tables[loc.Table]
	moved, didMove := t.swapRemoveRow(loc.Row)
	s.mu.Unlock()

	despawned := s.entities.Despawn(e)
	if didMove {
		s.entities.SetLocation(moved, loc)
	}
	if despawned {
		s.allocator.free(e)
	}
	return despawned, nil
}

// migrate moves e from its current table into the table matching newSpec,
// carrying over every component e already had that still belongs in
// newSpec, writing `added` for anything newSpec introduces, and dropping
// (running the destructor equivalent on) anything newSpec removes. No
// component value is ever copied by value across the migration except via
// its own raw bytes, and no destructor runs on a value that survives the
// move.
func (s *Storage) migrate(e Entity, newSpec ComponentSpec, added map[TypeID][]byte) error {
	loc, ok := s.entities.Location(e)
	if !ok {
		return nil
	}
	newTableID := s.getOrCreateTable(newSpec)

	s.mu.Lock()
	oldTable := s.tables[loc.Table]
	for _, id := range oldTable.Spec().IDs() {
		if !newSpec.Contains(id) {
			if c, ok := oldTable.column(id); ok {
				c.dropAt(loc.Row)
			}
		}
	}
	raw, moved, didMove := oldTable.extractRow(loc.Row)

	for id, bytes := range added {
		raw[id] = bytes
	}

	newTable := s.tables[newTableID]
	newRow := newTable.addRow(e)
	for _, id := range newSpec.IDs() {
		if bytes, ok := raw[id]; ok {
			if c, ok := newTable.column(id); ok {
				c.writeBytes(newRow, bytes)
			}
		}
	}
	s.mu.Unlock()

	s.entities.SetLocation(e, Location{Table: newTableID, Row: newRow})
	if didMove {
		s.entities.SetLocation(moved, loc)
	}
	return nil
}

// setUnique stores a single instance of T shared world-wide. The registry
// holds *T so UniqueMut can hand back a pointer that actually aliases
// the stored value.
func setUnique[T any](s *Storage, v T) {
	id := RegisterComponent[T](s.types)
	boxed := v
	s.uniquesMu.Lock()
	defer s.uniquesMu.Unlock()
	s.uniques[id] = &boxed
}

func getUnique[T any](s *Storage) (*T, error) {
	id, ok := GetComponent[T](s.types)
	if !ok {
		return nil, UnknownUniqueError{Type: id}
	}
	s.uniquesMu.RLock()
	defer s.uniquesMu.RUnlock()
	v, ok := s.uniques[id]
	if !ok {
		return nil, UnknownUniqueError{Type: id}
	}
	return v.(*T), nil
}

// programBug panics with a bark-traced error for conditions classified as
// caller bugs rather than recoverable runtime errors (aliasing violations,
// access conflicts, grant misuse).
func programBug(err error) {
	panic(bark.AddTrace(err))
}
