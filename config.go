package forge

// Config holds global tunables for the ECS core. There is no file/env
// parsing here — forge is a library, not a service; configuration is an
// out-of-scope concern (no CLI, no persistence).
var Config config = config{
	defaultColumnCapacity:    8,
	defaultEventCapacity:     256,
	defaultQueryCacheEntries: 64,
	defaultMaxTypes:          256,
}

type config struct {
	// defaultColumnCapacity is the initial row capacity reserved for a new
	// table's columns.
	defaultColumnCapacity int

	// defaultEventCapacity is the per-type event stream capacity used when
	// World.RegisterEvent is called without an explicit capacity.
	defaultEventCapacity int

	// defaultQueryCacheEntries bounds the archetype-registry's
	// supporting() memoization cache.
	defaultQueryCacheEntries int

	// defaultMaxTypes bounds the Type Registry. Components, uniques, and
	// event producer/consumer markers all share this dense id space; it is
	// sized to the width of mask.Mask256, the bitset this module uses to
	// canonicalize ComponentSpecs and AccessRequests.
	defaultMaxTypes int
}

// SetDefaultColumnCapacity overrides the initial capacity reserved by new
// table columns.
func (c *config) SetDefaultColumnCapacity(n int) {
	c.defaultColumnCapacity = n
}

// SetDefaultEventCapacity overrides the capacity used for event streams
// registered without an explicit capacity.
func (c *config) SetDefaultEventCapacity(n int) {
	c.defaultEventCapacity = n
}
