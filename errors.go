package forge

import "fmt"

// UnknownTypeError is returned when a TypeId is used that was never
// produced by this world's Type Registry.
type UnknownTypeError struct {
	ID TypeID
}

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("type id %d is not registered in this world", e.ID)
}

// UnknownUniqueError is returned by Unique/UniqueMut (and ShardUnique/
// ShardUniqueMut) when no value of that type was ever added.
type UnknownUniqueError struct {
	Type TypeID
}

func (e UnknownUniqueError) Error() string {
	return fmt.Sprintf("no unique registered for type id %d", e.Type)
}

// EventCapacityError is a ProgramBug: sending into a full event stream.
// Event capacity is fixed at registration time; overflowing it is always a
// caller bug, never a condition to silently drop.
type EventCapacityError struct {
	Type     TypeID
	Capacity int
}

func (e EventCapacityError) Error() string {
	return fmt.Sprintf("event stream for type id %d is full (capacity %d)", e.Type, e.Capacity)
}

// AliasingError is a ProgramBug raised at Query construction when a
// DataSpec would hand out two overlapping borrows of the same component.
type AliasingError struct {
	Type TypeID
}

func (e AliasingError) Error() string {
	return fmt.Sprintf("query aliases type id %d (component appears more than once, or both shared and exclusive)", e.Type)
}

// AccessConflictError is a ProgramBug raised when a Shard is used to read or
// write outside its granted AccessRequest, or when one system's Parameters
// request conflicting access to the same type. World.NewShard does not check
// a new request against grants that are still outstanding.
type AccessConflictError struct {
	Reason string
}

func (e AccessConflictError) Error() string {
	return fmt.Sprintf("conflicting world access: %s", e.Reason)
}

// GrantMisuseError is a ProgramBug: releasing a shard's grant more than
// once, or flushing commands while a grant is outstanding.
type GrantMisuseError struct {
	Reason string
}

func (e GrantMisuseError) Error() string {
	return fmt.Sprintf("access grant misuse: %s", e.Reason)
}
