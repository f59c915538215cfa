package forge

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/TheBitDrifter/bark"
)

// TypeID is a dense identifier assigned in registration order to a
// component, unique, or event-marker type. Ids never recycle.
type TypeID uint32

// typeLayout is the memory metadata the Type Registry holds per TypeID:
// size, whether the type is zero-sized, and whether its values hold
// anything a Column must zero on removal (forge's stand-in for a
// destructor — Go has no user Drop impls, so "running the destructor"
// means zeroing the byte range so the garbage collector can reclaim
// whatever it referenced).
type typeLayout struct {
	goType    reflect.Type
	size      uintptr
	zeroSized bool
	needsDrop bool
}

// TypeRegistry maintains the bijection between Go type identity and dense
// TypeIds, plus per-type layout metadata. Registration is idempotent and
// safe for concurrent callers; lookups are lock-free save for the RWMutex's
// read-side fast path.
//
// A World owns exactly one TypeRegistry; components, uniques, and event
// producer/consumer markers all share its id space (bounded by
// Config.defaultMaxTypes, the width of the mask.Mask256 bitset used
// everywhere a ComponentSpec or AccessRequest needs to test membership).
type TypeRegistry struct {
	mu      sync.RWMutex
	byType  map[reflect.Type]TypeID
	layouts []typeLayout
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{byType: make(map[reflect.Type]TypeID, 64)}
}

func (r *TypeRegistry) registerType(t reflect.Type) TypeID {
	r.mu.RLock()
	if id, ok := r.byType[t]; ok {
		r.mu.RUnlock()
		return id
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byType[t]; ok {
		return id
	}
	if len(r.layouts) >= Config.defaultMaxTypes {
		panic(bark.AddTrace(fmt.Errorf("forge: type registry exhausted (max %d types)", Config.defaultMaxTypes)))
	}
	id := TypeID(len(r.layouts))
	r.layouts = append(r.layouts, typeLayout{
		goType:    t,
		size:      t.Size(),
		zeroSized: t.Size() == 0,
		needsDrop: containsPointer(t),
	})
	r.byType[t] = id
	return id
}

func (r *TypeRegistry) lookupType(t reflect.Type) (TypeID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byType[t]
	return id, ok
}

// Info returns the layout metadata for a registered TypeID.
func (r *TypeRegistry) Info(id TypeID) typeLayout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.layouts[id]
}

// Count returns the number of distinct types registered so far.
func (r *TypeRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.layouts)
}

// RegisterComponent assigns (or returns the existing) TypeID for T.
func RegisterComponent[T any](r *TypeRegistry) TypeID {
	return r.registerType(reflect.TypeFor[T]())
}

// GetComponent returns T's TypeID if it has been registered.
func GetComponent[T any](r *TypeRegistry) (TypeID, bool) {
	return r.lookupType(reflect.TypeFor[T]())
}

// producerMarker and consumerMarker are phantom types used purely to mint
// two distinct, stable TypeIds per event type E — the aliasing markers
// the access-grant system keys conflicts on. They are never instantiated.
type producerMarker[E any] struct{}
type consumerMarker[E any] struct{}

// RegisterEvent reserves a producer TypeID and a consumer TypeID for event
// type E. Producers write the producer marker; consumers read the consumer
// marker — so producers conflict with each other but never with consumers.
// The marker is shared per event type rather than per consumer function, so
// two different consumers of the same event type never conflict either.
func RegisterEvent[E any](r *TypeRegistry) (producer, consumer TypeID) {
	producer = r.registerType(reflect.TypeFor[producerMarker[E]]())
	consumer = r.registerType(reflect.TypeFor[consumerMarker[E]]())
	return
}

// EventMarkers returns the producer/consumer TypeIds for E if RegisterEvent
// has already been called for it.
func EventMarkers[E any](r *TypeRegistry) (producer, consumer TypeID, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, pok := r.byType[reflect.TypeFor[producerMarker[E]]()]
	c, cok := r.byType[reflect.TypeFor[consumerMarker[E]]()]
	return p, c, pok && cok
}

// containsPointer reports whether values of t can hold references the
// garbage collector needs to know about, i.e. whether a Column must zero a
// removed element rather than simply shrinking its length.
func containsPointer(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.Slice, reflect.String, reflect.UnsafePointer:
		return true
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if containsPointer(t.Field(i).Type) {
				return true
			}
		}
		return false
	case reflect.Array:
		if t.Len() == 0 {
			return false
		}
		return containsPointer(t.Elem())
	default:
		return false
	}
}
