package forge

import "github.com/TheBitDrifter/mask"

// Archetype pairs a ComponentSpec with the TableID of the table storing its
// entities: exactly one table per archetype.
type Archetype struct {
	id      ArchetypeID
	spec    ComponentSpec
	tableID TableID
}

func (a Archetype) ID() ArchetypeID     { return a.id }
func (a Archetype) Spec() ComponentSpec { return a.spec }
func (a Archetype) TableID() TableID    { return a.tableID }

// archetypeRegistry maps ComponentSpecs to Archetypes, keyed by the exact
// component mask (map[mask.Mask256]ArchetypeID), and memoizes the broader
// "which archetypes support this query" containment scan behind a Cache.
type archetypeRegistry struct {
	byMask map[mask.Mask256]ArchetypeID
	list   []Archetype
	cache  Cache[[]TableID]
}

func newArchetypeRegistry() *archetypeRegistry {
	return &archetypeRegistry{
		byMask: make(map[mask.Mask256]ArchetypeID),
		cache:  NewCache[[]TableID](Config.defaultQueryCacheEntries),
	}
}

// getOrCreate returns the archetype for spec, creating it (and its backing
// table, via makeTable) if this is the first time spec has been seen.
func (r *archetypeRegistry) getOrCreate(spec ComponentSpec, makeTable func(ArchetypeID, ComponentSpec) TableID) Archetype {
	if id, ok := r.byMask[spec.Mask()]; ok {
		return r.list[id]
	}
	id := ArchetypeID(len(r.list))
	tableID := makeTable(id, spec)
	arch := Archetype{id: id, spec: spec, tableID: tableID}
	r.list = append(r.list, arch)
	r.byMask[spec.Mask()] = id
	r.cache.Clear()
	return arch
}

// All returns every known archetype, in creation order.
func (r *archetypeRegistry) All() []Archetype {
	return r.list
}

// supporting returns the TableIds of every archetype whose spec contains
// all of required, memoized by required's key since query iteration calls
// this every frame for the same DataSpecs.
func (r *archetypeRegistry) supporting(required ComponentSpec) []TableID {
	key := required.key()
	if idx, ok := r.cache.GetIndex(key); ok {
		return *r.cache.GetItem(idx)
	}
	out := make([]TableID, 0, len(r.list))
	for _, a := range r.list {
		if a.spec.ContainsAll(required) {
			out = append(out, a.tableID)
		}
	}
	r.cache.Register(key, out)
	return out
}
