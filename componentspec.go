package forge

import (
	"sort"
	"strconv"

	"github.com/TheBitDrifter/mask"
)

// ComponentSpec is the identity of an archetype: an immutable, sorted,
// deduplicated set of TypeIds plus the mask.Mask256 bitset used for fast
// containment tests and as the archetype registry's map key.
type ComponentSpec struct {
	ids  []TypeID
	bits mask.Mask256
}

// NewComponentSpec builds a ComponentSpec from a (possibly unsorted,
// possibly duplicated) set of TypeIds.
func NewComponentSpec(ids ...TypeID) ComponentSpec {
	sorted := append([]TypeID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	deduped := sorted[:0]
	var bits mask.Mask256
	first := true
	var last TypeID
	for _, id := range sorted {
		if !first && id == last {
			continue
		}
		deduped = append(deduped, id)
		bits.Mark(uint32(id))
		last = id
		first = false
	}
	return ComponentSpec{ids: deduped, bits: bits}
}

// IDs returns the spec's sorted, deduplicated TypeIds. The caller must not
// mutate the returned slice.
func (s ComponentSpec) IDs() []TypeID { return s.ids }

// Len returns the number of distinct component types in the spec.
func (s ComponentSpec) Len() int { return len(s.ids) }

// Mask returns the underlying bitset.
func (s ComponentSpec) Mask() mask.Mask256 { return s.bits }

// Contains reports whether id is a member of the spec.
func (s ComponentSpec) Contains(id TypeID) bool {
	var bit mask.Mask256
	bit.Mark(uint32(id))
	return s.bits.ContainsAll(bit)
}

// ContainsAll reports whether every type in other is also in s — the
// "archetype supports this query" test.
func (s ComponentSpec) ContainsAll(other ComponentSpec) bool {
	return s.bits.ContainsAll(other.bits)
}

// ContainsAny reports whether s and other share at least one type.
func (s ComponentSpec) ContainsAny(other ComponentSpec) bool {
	return s.bits.ContainsAny(other.bits)
}

// IsEmpty reports whether the spec has no component types.
func (s ComponentSpec) IsEmpty() bool {
	return s.bits.IsEmpty()
}

// Union returns a new spec containing s's types plus ids.
func (s ComponentSpec) Union(ids ...TypeID) ComponentSpec {
	combined := make([]TypeID, 0, len(s.ids)+len(ids))
	combined = append(combined, s.ids...)
	combined = append(combined, ids...)
	return NewComponentSpec(combined...)
}

// Without returns a new spec with ids removed from s.
func (s ComponentSpec) Without(ids ...TypeID) ComponentSpec {
	remove := NewComponentSpec(ids...)
	kept := make([]TypeID, 0, len(s.ids))
	for _, id := range s.ids {
		if !remove.Contains(id) {
			kept = append(kept, id)
		}
	}
	return NewComponentSpec(kept...)
}

// key is the string form used by the archetype registry's supporting cache;
// the map keyed directly by mask.Mask256 is used for exact-spec lookups
// (archetypeRegistry.getOrCreate, via Storage.getOrCreateTable), where
// equality rather than containment is what matters.
func (s ComponentSpec) key() string {
	buf := make([]byte, 0, len(s.ids)*6)
	for _, id := range s.ids {
		buf = strconv.AppendUint(buf, uint64(id), 10)
		buf = append(buf, ',')
	}
	return string(buf)
}
