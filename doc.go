/*
Package forge provides an archetype-based Entity-Component-System (ECS) core
for games and simulations.

Forge keeps entities that share the same set of component types together in
one columnar Table, so iterating a Query touches contiguous memory instead
of chasing pointers. On top of that storage it layers a typed query engine,
a double-buffered event bus, a deferred command buffer, and a cooperative
scheduler that runs independent systems in parallel.

Core Concepts:

  - Entity: an (id, generation) pair identifying a spawned object.
  - Component: any Go type attached to an entity.
  - Archetype: the set of entities sharing one ComponentSpec; backed by a Table.
  - Query: a declarative fetch over components, compiled to an iterator.
  - Schedule: an ordered set of Systems, grouped into phases and waves.

Basic Usage:

	world := forge.NewWorld()

	type Position struct{ X, Y float64 }
	type Velocity struct{ X, Y float64 }

	e := world.Spawn(Position{1, 2}, Velocity{3, 4})

	q := forge.NewQuery(world, forge.EntityTerm(), forge.Write[Position](), forge.Read[Velocity]())
	q.ForEach(func(row forge.Row) {
		pos := forge.Get[Position](row)
		vel := forge.Get[Velocity](row)
		pos.X += vel.X
		pos.Y += vel.Y
	})

	world.Despawn(e)

Systems, phases, and parallel execution are driven by a Schedule:

	sched := forge.NewSchedule()
	sched.AddSystem(forge.PhaseUpdate, movementSystem, world)
	sched.Run(forge.PhaseUpdate, world, forge.NewDefaultExecutor(4))
*/
package forge
