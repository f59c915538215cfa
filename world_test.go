package forge

import "testing"

type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }

// S1 — spawn + despawn single.
func TestSpawnDespawnSingle(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(Position{1, 2}, Velocity{3, 4})
	if e.ID != 0 || e.Generation != 0 {
		t.Fatalf("got entity %+v, want (0,0)", e)
	}

	q := NewQuery(w, EntityTerm(), Read[Position]())
	var got []Entity
	q.ForEach(func(r Row) {
		got = append(got, r.Entity())
		pos := Get[Position](r)
		if pos.X != 1 || pos.Y != 2 {
			t.Errorf("got Pos%+v, want {1 2}", *pos)
		}
	})
	if len(got) != 1 || got[0] != e {
		t.Fatalf("query returned %v, want [%v]", got, e)
	}

	if ok, err := w.Despawn(e); err != nil || !ok {
		t.Fatalf("Despawn: ok=%v err=%v, want true, nil", ok, err)
	}
	if q.Count() != 0 {
		t.Fatalf("query after despawn matched %d rows, want 0", q.Count())
	}

	next := w.storage.allocator.alloc()
	if next.ID != 0 || next.Generation != 1 {
		t.Fatalf("reused entity %+v, want (0,1)", next)
	}
}

// S2 — migration preserves bytes.
func TestMigrationPreservesBytes(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(Position{5, 6})

	if err := w.AddComponents(e, Velocity{7, 8}); err != nil {
		t.Fatalf("AddComponents: %v", err)
	}

	both := NewQuery(w, Read[Position](), Read[Velocity]())
	rows := 0
	both.ForEach(func(r Row) {
		rows++
		pos := Get[Position](r)
		vel := Get[Velocity](r)
		if *pos != (Position{5, 6}) || *vel != (Velocity{7, 8}) {
			t.Errorf("got Pos%+v Vel%+v, want {5 6} {7 8}", *pos, *vel)
		}
	})
	if rows != 1 {
		t.Fatalf("matched %d rows, want 1", rows)
	}

	velID := RegisterComponent[Velocity](w.Types())
	if err := w.RemoveComponents(e, velID); err != nil {
		t.Fatalf("RemoveComponents: %v", err)
	}

	velOnly := NewQuery(w, Read[Velocity]())
	if velOnly.Count() != 0 {
		t.Fatalf("velocity query matched %d rows after removal, want 0", velOnly.Count())
	}

	posOnly := NewQuery(w, Read[Position]())
	posOnly.ForEach(func(r Row) {
		if pos := Get[Position](r); *pos != (Position{5, 6}) {
			t.Errorf("got Pos%+v after migration, want {5 6}", *pos)
		}
	})
	if posOnly.Count() != 1 {
		t.Fatalf("position query matched %d rows, want 1", posOnly.Count())
	}
}

// S3 — aliasing violation rejected at construction.
func TestAliasingViolationRejected(t *testing.T) {
	w := NewWorld()
	w.Spawn(Position{0, 0})

	defer func() {
		if recover() == nil {
			t.Fatal("NewQuery did not panic on aliased Read/Write of the same type")
		}
	}()
	NewQuery(w, Write[Position](), Read[Position]())
}

func TestAddComponentsOnUnknownEntityIsTransientNoOp(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(Position{1, 1})
	if ok, err := w.Despawn(e); err != nil || !ok {
		t.Fatalf("Despawn: ok=%v err=%v, want true, nil", ok, err)
	}
	if err := w.AddComponents(e, Velocity{1, 1}); err != nil {
		t.Fatalf("AddComponents on a despawned entity should be a no-op, got error: %v", err)
	}
	if w.IsAlive(e) {
		t.Fatal("AddComponents must not resurrect a despawned entity")
	}
}

func TestDespawnOfAlreadyDespawnedIsTransientNoOp(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(Position{1, 1})
	if ok, err := w.Despawn(e); err != nil || !ok {
		t.Fatalf("first Despawn: ok=%v err=%v, want true, nil", ok, err)
	}
	if ok, err := w.Despawn(e); err != nil || ok {
		t.Fatalf("second Despawn should be a no-op: ok=%v err=%v, want false, nil", ok, err)
	}
}

func TestUnique(t *testing.T) {
	w := NewWorld()
	type FrameCount struct{ N int }
	AddUnique(w, FrameCount{N: 1})

	v, err := Unique[FrameCount](w)
	if err != nil || v.N != 1 {
		t.Fatalf("Unique() = %+v, %v; want {1}, nil", v, err)
	}

	mut, err := UniqueMut[FrameCount](w)
	if err != nil {
		t.Fatalf("UniqueMut: %v", err)
	}
	mut.N = 2

	v2, _ := Unique[FrameCount](w)
	if v2.N != 2 {
		t.Fatalf("UniqueMut did not alias the stored value: got %d, want 2", v2.N)
	}
}

func TestUnknownUniqueIsAnError(t *testing.T) {
	w := NewWorld()
	type Nope struct{}
	if _, err := Unique[Nope](w); err == nil {
		t.Fatal("expected UnknownUniqueError for a unique that was never added")
	}
}
