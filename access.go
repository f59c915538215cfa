package forge

import "github.com/TheBitDrifter/mask"

// worldAccess is the three-state whole-world access tier: none, readonly,
// or exclusive. readonly is the access profile of a Parallel system's
// &World Parameter: it may run alongside other readonly-world or plain-read
// requests, but conflicts with any write anywhere. exclusive is reserved for
// Exclusive systems, which always run alone.
type worldAccess int

const (
	worldAccessNone worldAccess = iota
	worldAccessReadonly
	worldAccessExclusive
)

// AccessRequest declares the set of TypeIds a system (or an ad-hoc Shard
// caller) intends to read and write. It is built once, at system-add time,
// and never mutated again — access is validated once, not every tick.
// TypeIds are kept as plain slices rather than a single
// combined mask.Mask256, since a System's request is assembled by merging
// several Parameters' individual requests (system.go) and the mask package
// exposes Mark/Unmark but no documented union operator to fold two masks
// together; the masks below are rebuilt from the slices whenever a
// containment test needs one.
type AccessRequest struct {
	readIDs  []TypeID
	writeIDs []TypeID
	world    worldAccess
}

// NewAccessRequest returns an empty request.
func NewAccessRequest() *AccessRequest {
	return &AccessRequest{}
}

// Read adds id to the request's read set.
func (r *AccessRequest) Read(id TypeID) *AccessRequest {
	r.readIDs = append(r.readIDs, id)
	return r
}

// Write adds id to the request's write set.
func (r *AccessRequest) Write(id TypeID) *AccessRequest {
	r.writeIDs = append(r.writeIDs, id)
	return r
}

// WholeWorld marks the request as needing unrestricted, exclusive world
// access — the access profile of an Exclusive system taking *World
// directly. An exclusive-world request conflicts with every other request,
// including other whole-world ones.
func (r *AccessRequest) WholeWorld() *AccessRequest {
	r.world = worldAccessExclusive
	return r
}

// ReadonlyWorld marks the request as needing read access to the entire
// world — the access profile of a Parallel system's &World Parameter.
// Unlike WholeWorld, two readonly-world requests (or a readonly-world
// request and a plain read) do not conflict with each other; a
// readonly-world request conflicts only with writes.
func (r *AccessRequest) ReadonlyWorld() *AccessRequest {
	if r.world < worldAccessReadonly {
		r.world = worldAccessReadonly
	}
	return r
}

// merge folds other's reads/writes into r — used when a System's aggregate
// AccessRequest is assembled from several Parameters' individual requests.
// Two Parameters that overlap inconsistently (one writes a TypeId the other
// reads or writes) are a ProgramBug.
func (r *AccessRequest) merge(other *AccessRequest) *AccessRequest {
	rw, ow := r.writeMask(), other.writeMask()
	if rw.ContainsAny(ow) || rw.ContainsAny(other.readMask()) || ow.ContainsAny(r.readMask()) {
		programBug(AccessConflictError{Reason: "system parameters request conflicting access to the same type"})
	}
	if other.world > r.world {
		r.world = other.world
	}
	r.readIDs = append(r.readIDs, other.readIDs...)
	r.writeIDs = append(r.writeIDs, other.writeIDs...)
	return r
}

func (r *AccessRequest) readMask() mask.Mask256 {
	var m mask.Mask256
	for _, id := range r.readIDs {
		m.Mark(uint32(id))
	}
	return m
}

func (r *AccessRequest) writeMask() mask.Mask256 {
	var m mask.Mask256
	for _, id := range r.writeIDs {
		m.Mark(uint32(id))
	}
	return m
}

func (r *AccessRequest) covers(id TypeID, write bool) bool {
	if r.world == worldAccessExclusive {
		return true
	}
	if r.world == worldAccessReadonly && !write {
		return true
	}
	var bit mask.Mask256
	bit.Mark(uint32(id))
	if write {
		return r.writeMask().ContainsAll(bit)
	}
	return r.readMask().ContainsAll(bit) || r.writeMask().ContainsAll(bit)
}

// ConflictsWith implements the exact conflict rule: two requests
// conflict iff either claims exclusive-world access, or either's
// readonly-world access meets the other's writes, or one's writes
// intersect the other's reads or writes. Two read-only requests (plain or
// whole-world) never conflict with each other.
func (r *AccessRequest) ConflictsWith(other *AccessRequest) bool {
	if r.world == worldAccessExclusive || other.world == worldAccessExclusive {
		return true
	}
	rw, ow := r.writeMask(), other.writeMask()
	if r.world == worldAccessReadonly && !ow.IsEmpty() {
		return true
	}
	if other.world == worldAccessReadonly && !rw.IsEmpty() {
		return true
	}
	if rw.ContainsAny(ow) {
		return true
	}
	if rw.ContainsAny(other.readMask()) {
		return true
	}
	if ow.ContainsAny(r.readMask()) {
		return true
	}
	return false
}

// AccessGrant is the live token proving a caller has exclusive/shared claim
// to the TypeIds in an AccessRequest. A Shard holds one; releasing it frees
// Storage's access-grant lock bit, letting queued commands flush and the
// scheduler dispatch the next wave.
type AccessGrant struct {
	request  *AccessRequest
	storage  *Storage
	released bool
}

func newAccessGrant(storage *Storage, req *AccessRequest) *AccessGrant {
	storage.AddLock(lockBitAccessGrant)
	return &AccessGrant{request: req, storage: storage}
}

// Release ends the grant. Releasing a grant more than once is a
// ProgramBug: Go has no destructor to lean on for a single-release
// guarantee, so double-release is checked explicitly.
func (g *AccessGrant) Release() {
	if g.released {
		programBug(GrantMisuseError{Reason: "access grant released more than once"})
	}
	g.released = true
	g.storage.RemoveLock(lockBitAccessGrant)
}
