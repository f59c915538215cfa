package forge

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type Accel struct{ X, Y float64 }

// S4 — two systems with disjoint writes (Vel vs Accel), both reading Pos,
// land in the same wave and actually overlap in time.
func TestParallelNonConflict(t *testing.T) {
	w := NewWorld()
	w.Spawn(Position{0, 0}, Velocity{0, 0}, Accel{0, 0})

	var mu sync.Mutex
	var starts, ends []time.Time

	record := func() (time.Time, time.Time) {
		mu.Lock()
		start := time.Now()
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		end := time.Now()
		return start, end
	}

	sys1 := NewSystem1("write-vel", QueryOf(Read[Position](), Write[Velocity]()), func(q *Query) {
		start, end := record()
		mu.Lock()
		starts, ends = append(starts, start), append(ends, end)
		mu.Unlock()
		q.ForEach(func(Row) {})
	})
	sys2 := NewSystem1("write-accel", QueryOf(Read[Position](), Write[Accel]()), func(q *Query) {
		start, end := record()
		mu.Lock()
		starts, ends = append(starts, start), append(ends, end)
		mu.Unlock()
		q.ForEach(func(Row) {})
	})

	sched := NewSchedule()
	sched.AddSystem(PhaseUpdate, sys1, w)
	sched.AddSystem(PhaseUpdate, sys2, w)

	waves := partitionWaves(sched.systems[PhaseUpdate])
	if len(waves) != 1 || len(waves[0]) != 2 {
		t.Fatalf("got %d wave(s), want one wave of 2 systems", len(waves))
	}

	sched.Run(PhaseUpdate, w, NewDefaultExecutor(4))

	if len(starts) != 2 {
		t.Fatalf("got %d recorded runs, want 2", len(starts))
	}
	// the second system to start must begin before the first one ends —
	// proof the wave actually ran concurrently rather than serializing.
	first, second := 0, 1
	if starts[1].Before(starts[0]) {
		first, second = 1, 0
	}
	if !starts[second].Before(ends[first]) {
		t.Fatalf("systems did not overlap: starts=%v ends=%v", starts, ends)
	}
}

func TestConflictingSystemsGetSeparateWaves(t *testing.T) {
	w := NewWorld()
	sys1 := NewSystem1("write-pos-a", QueryOf(Write[Position]()), func(*Query) {})
	sys2 := NewSystem1("write-pos-b", QueryOf(Write[Position]()), func(*Query) {})

	sched := NewSchedule()
	sched.AddSystem(PhaseUpdate, sys1, w)
	sched.AddSystem(PhaseUpdate, sys2, w)

	waves := partitionWaves(sched.systems[PhaseUpdate])
	if len(waves) != 2 {
		t.Fatalf("got %d wave(s), want 2 (conflicting writers must not share a wave)", len(waves))
	}
}

type Spawned struct{ Tag int }

// S5 — event swap.
func TestEventSwap(t *testing.T) {
	w := NewWorld()
	RegisterEvent[Spawned](w)

	producer := NewProducer[Spawned](w)
	consumer := NewConsumer[Spawned](w)

	producer.Send(Spawned{Tag: 1})
	producer.Send(Spawned{Tag: 2})
	if got := consumer.Events(); len(got) != 0 {
		t.Fatalf("consumer saw %v before any swap, want none", got)
	}

	w.SwapEvents()
	got := consumer.Events()
	if len(got) != 2 || got[0].Tag != 1 || got[1].Tag != 2 {
		t.Fatalf("got %v, want [{1} {2}]", got)
	}

	w.SwapEvents()
	if got := consumer.Events(); len(got) != 0 {
		t.Fatalf("consumer saw %v two swaps later, want none", got)
	}
}

// S6 — command ordering.
func TestCommandOrdering(t *testing.T) {
	w := NewWorld()
	cmds := Commands{storage: w.storage}

	e1 := cmds.Spawn(Position{0, 0})
	e2 := cmds.Spawn(Position{1, 0})
	cmds.Despawn(e1)

	w.FlushCommands()

	if w.IsAlive(e1) {
		t.Fatal("e1 should have been despawned by the flush")
	}
	if !w.IsAlive(e2) {
		t.Fatal("e2 should still be alive after the flush")
	}
	loc, ok := w.Location(e2)
	if !ok {
		t.Fatal("e2 has no location after flush")
	}
	tbl := w.storage.tables[loc.Table]
	if tbl.Length() != 1 {
		t.Fatalf("e2's table has %d rows, want 1", tbl.Length())
	}
	pos, _ := tableGet[Position](tbl, RegisterComponent[Position](w.Types()), loc.Row)
	if *pos != (Position{1, 0}) {
		t.Fatalf("e2's Position = %+v, want {1 0}", *pos)
	}
}

func TestExclusiveSystemRunsAlone(t *testing.T) {
	w := NewWorld()
	w.Spawn(Position{0, 0})

	ran := false
	sys := NewExclusiveSystem("reset-all", func(w *World) {
		ran = true
	})
	sys2 := NewSystem1("reader", QueryOf(Read[Position]()), func(*Query) {})

	sched := NewSchedule()
	sched.AddSystem(PhaseUpdate, sys, w)
	sched.AddSystem(PhaseUpdate, sys2, w)

	waves := partitionWaves(sched.systems[PhaseUpdate])
	if len(waves) != 2 {
		t.Fatalf("got %d waves, want 2 (exclusive system must be isolated)", len(waves))
	}
	if len(waves[0]) != 1 || waves[0][0].Mode != Exclusive {
		t.Fatalf("first wave = %+v, want a single exclusive system", waves[0])
	}

	sched.Run(PhaseUpdate, w, NewDefaultExecutor(2))
	if !ran {
		t.Fatal("exclusive system did not run")
	}
}

// A &World (WorldParam) reader may share a wave with another plain reader,
// but never with a writer — readonly-world access only conflicts with
// writes.
func TestReadonlyWorldSharesWaveWithReadersNotWriters(t *testing.T) {
	reader := NewSystem1("pos-reader", QueryOf(Read[Position]()), func(*Query) {})
	worldReader := NewSystem1("world-reader", WorldOf(), func(*World) {})
	writer := NewSystem1("pos-writer", QueryOf(Write[Position]()), func(*Query) {})

	w := NewWorld()
	sched := NewSchedule()
	sched.AddSystem(PhaseUpdate, reader, w)
	sched.AddSystem(PhaseUpdate, worldReader, w)

	waves := partitionWaves(sched.systems[PhaseUpdate])
	if len(waves) != 1 || len(waves[0]) != 2 {
		t.Fatalf("got %d wave(s), want one wave of 2 (plain reader + world reader)", len(waves))
	}

	sched2 := NewSchedule()
	sched2.AddSystem(PhaseUpdate, worldReader, w)
	sched2.AddSystem(PhaseUpdate, writer, w)
	waves2 := partitionWaves(sched2.systems[PhaseUpdate])
	if len(waves2) != 2 {
		t.Fatalf("got %d wave(s), want 2 (world reader must conflict with a Position writer)", len(waves2))
	}
}

// A system whose parallel function panics must still release its shard's
// grant, and the scheduler must re-raise the panic at the phase boundary
// with the offending system's name attached.
func TestPanickingSystemReleasesGrantAndReraises(t *testing.T) {
	w := NewWorld()
	w.Spawn(Position{0, 0})

	sys := NewSystem1("boom", QueryOf(Read[Position]()), func(*Query) {
		panic("kaboom")
	})

	sched := NewSchedule()
	sched.AddSystem(PhaseUpdate, sys, w)

	defer func() {
		if recover() == nil {
			t.Fatal("Schedule.Run did not re-raise the panicking system's panic")
		}
		if w.storage.Locked() {
			t.Fatal("a panicking system left its access grant unreleased")
		}
	}()
	sched.Run(PhaseUpdate, w, NewDefaultExecutor(2))
}

// raiseSystemPanic's own message (independent of bark's wrapping) names
// both the offending system and the original panic value.
func TestRaiseSystemPanicNamesSystemAndValue(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("raiseSystemPanic did not panic")
		}
		msg := fmt.Sprint(r)
		if !strings.Contains(msg, "boom") || !strings.Contains(msg, "kaboom") {
			t.Fatalf("panic value %q does not name the offending system or original value", msg)
		}
	}()
	raiseSystemPanic(systemPanic{name: "boom", value: "kaboom"})
}
