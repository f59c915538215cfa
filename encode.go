package forge

import (
	"reflect"
	"unsafe"
)

// encodeComponent registers v's type (if needed) and copies out its raw
// bytes. This is the dynamic-typed counterpart to columnWrite[T]: it lets
// Spawn/AddComponents accept a heterogeneous ...any component list the way
// the doc example does, at the cost of one small reflect.New per call
// instead of a compile-time generic dispatch.
func encodeComponent(types *TypeRegistry, v any) (TypeID, []byte) {
	t := reflect.TypeOf(v)
	id := types.registerType(t)
	if t.Size() == 0 {
		return id, nil
	}
	addressable := reflect.New(t)
	addressable.Elem().Set(reflect.ValueOf(v))
	ptr := unsafe.Pointer(addressable.Pointer())
	return id, unsafe.Slice((*byte)(ptr), t.Size())
}

func encodeComponents(types *TypeRegistry, components []any) (ComponentSpec, map[TypeID][]byte) {
	ids := make([]TypeID, len(components))
	raw := make(map[TypeID][]byte, len(components))
	for i, comp := range components {
		id, bytes := encodeComponent(types, comp)
		ids[i] = id
		raw[id] = bytes
	}
	return NewComponentSpec(ids...), raw
}
