package forge

// Shard is a grant-scoped view of the World handed to a Parallel system. It
// is deliberately usable from one goroutine only: a Shard holds a *World
// plus an AccessGrant and is never safe to share or clone across
// goroutines. Go's type system has no borrow checker to enforce that split,
// so the boundary is documentation plus the debug assertions in
// checkRead/checkWrite: each query or unique access the system performs
// through its Shard is checked against the grant it was issued, and a
// caller reaching past its declared AccessRequest panics with a ProgramBug
// rather than silently racing.
type Shard struct {
	world *World
	grant *AccessGrant
}

func newShard(w *World, grant *AccessGrant) *Shard {
	return &Shard{world: w, grant: grant}
}

// Release ends the shard's access grant. A Parallel system does not call
// this itself — the scheduler releases every wave's shards once all of the
// wave's systems return.
func (s *Shard) Release() {
	s.grant.Release()
}

func (s *Shard) checkRead(id TypeID) {
	if !s.grant.request.covers(id, false) {
		programBug(AccessConflictError{Reason: "shard read outside its granted access request"})
	}
}

func (s *Shard) checkWrite(id TypeID) {
	if !s.grant.request.covers(id, true) {
		programBug(AccessConflictError{Reason: "shard write outside its granted access request"})
	}
}

// Commands returns a command buffer handle bound to the shard's world.
// Structural mutation always goes through here, never through direct table
// access, since a Shard's grant may be shared read-only with other
// concurrently running systems.
func (s *Shard) Commands() Commands {
	return Commands{storage: s.world.storage}
}

// ShardUnique returns the shared instance of T, checked against the
// shard's granted reads.
func ShardUnique[T any](s *Shard) (*T, error) {
	id, ok := GetComponent[T](s.world.storage.types)
	if ok {
		s.checkRead(id)
	}
	return getUnique[T](s.world.storage)
}

// ShardUniqueMut returns the shared instance of T for mutation, checked
// against the shard's granted writes.
func ShardUniqueMut[T any](s *Shard) (*T, error) {
	id, ok := GetComponent[T](s.world.storage.types)
	if ok {
		s.checkWrite(id)
	}
	return getUnique[T](s.world.storage)
}

// ShardQuery runs a Query built from terms, checked term-by-term against
// the shard's granted access before iterating.
func ShardQuery(s *Shard, terms ...Term) *Query {
	q := NewQuery(s.world, terms...)
	for _, t := range q.spec.terms {
		if t.kind == termEntity {
			continue
		}
		if t.write {
			s.checkWrite(t.typeID)
		} else {
			s.checkRead(t.typeID)
		}
	}
	return q
}
