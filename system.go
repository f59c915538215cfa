package forge

// RunMode selects how a System is invoked.
type RunMode int

const (
	// Parallel systems receive a *Shard scoped to their declared access and
	// may run alongside other Parallel systems in the same wave whose
	// requests don't conflict.
	Parallel RunMode = iota
	// Exclusive systems receive the whole *World directly and always run
	// alone, in their own single-system wave.
	Exclusive
)

// System is one unit of scheduled work: a RunMode, the AccessRequest it was
// finalized with when added to a Schedule, and the closure that extracts
// its Parameters and invokes the user's function.
type System struct {
	Name string
	Mode RunMode

	requiredAccess func(*World) *AccessRequest
	runExclusive   func(*World)
	runParallel    func(*World, *Shard)

	access *AccessRequest // finalized by Schedule.AddSystem
}

// NewExclusiveSystem wraps fn as a System that always runs alone with
// unrestricted world access.
func NewExclusiveSystem(name string, fn func(*World)) *System {
	return &System{
		Name:           name,
		Mode:           Exclusive,
		requiredAccess: func(*World) *AccessRequest { return NewAccessRequest().WholeWorld() },
		runExclusive:   fn,
	}
}

// NewSystem1 wraps fn as a Parallel system taking one Parameter.
func NewSystem1[P1 any](name string, p1 Parameter[P1], fn func(P1)) *System {
	return &System{
		Name: name,
		Mode: Parallel,
		requiredAccess: func(w *World) *AccessRequest {
			return p1.access(w)
		},
		runParallel: func(w *World, s *Shard) {
			fn(p1.resolve(w, s))
		},
	}
}

// NewSystem2 wraps fn as a Parallel system taking two Parameters.
func NewSystem2[P1, P2 any](name string, p1 Parameter[P1], p2 Parameter[P2], fn func(P1, P2)) *System {
	return &System{
		Name: name,
		Mode: Parallel,
		requiredAccess: func(w *World) *AccessRequest {
			return p1.access(w).merge(p2.access(w))
		},
		runParallel: func(w *World, s *Shard) {
			fn(p1.resolve(w, s), p2.resolve(w, s))
		},
	}
}

// NewSystem3 wraps fn as a Parallel system taking three Parameters.
func NewSystem3[P1, P2, P3 any](name string, p1 Parameter[P1], p2 Parameter[P2], p3 Parameter[P3], fn func(P1, P2, P3)) *System {
	return &System{
		Name: name,
		Mode: Parallel,
		requiredAccess: func(w *World) *AccessRequest {
			return p1.access(w).merge(p2.access(w)).merge(p3.access(w))
		},
		runParallel: func(w *World, s *Shard) {
			fn(p1.resolve(w, s), p2.resolve(w, s), p3.resolve(w, s))
		},
	}
}

// NewSystem4 wraps fn as a Parallel system taking four Parameters.
func NewSystem4[P1, P2, P3, P4 any](name string, p1 Parameter[P1], p2 Parameter[P2], p3 Parameter[P3], p4 Parameter[P4], fn func(P1, P2, P3, P4)) *System {
	return &System{
		Name: name,
		Mode: Parallel,
		requiredAccess: func(w *World) *AccessRequest {
			return p1.access(w).merge(p2.access(w)).merge(p3.access(w)).merge(p4.access(w))
		},
		runParallel: func(w *World, s *Shard) {
			fn(p1.resolve(w, s), p2.resolve(w, s), p3.resolve(w, s), p4.resolve(w, s))
		},
	}
}

func (sys *System) finalize(w *World) {
	sys.access = sys.requiredAccess(w)
}

// runOnShard invokes a Parallel system against an already-granted Shard.
// The Schedule owns the grant's lifetime: it opens every system's Shard in
// a wave before dispatching, and releases all of them only once the whole
// wave has completed, so systems run concurrently rather than serializing
// on grant acquisition.
func (sys *System) runOnShard(w *World, s *Shard) {
	sys.runParallel(w, s)
}
