package forge

import (
	"context"
	"fmt"
	"sync"

	"github.com/TheBitDrifter/bark"
)

// Phase is a user-declared marker naming a stage of a frame. forge ships a
// few conventional phases as a convenience; nothing in the scheduler
// requires using them.
type Phase string

const (
	PhasePreUpdate  Phase = "PreUpdate"
	PhaseUpdate     Phase = "Update"
	PhasePostUpdate Phase = "PostUpdate"
)

// Schedule maps Phase tags to ordered system lists.
type Schedule struct {
	mu      sync.Mutex
	order   []Phase
	systems map[Phase][]*System
}

// NewSchedule returns an empty Schedule.
func NewSchedule() *Schedule {
	return &Schedule{systems: make(map[Phase][]*System)}
}

// AddSystem appends sys to phase, in registration order, finalizing its
// AccessRequest against w. A system's access is validated once here, not
// re-derived every tick.
func (s *Schedule) AddSystem(phase Phase, sys *System, w *World) {
	sys.finalize(w)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.systems[phase]; !ok {
		s.order = append(s.order, phase)
	}
	s.systems[phase] = append(s.systems[phase], sys)
}

// partitionWaves splits systems into maximal prefixes of pairwise-compatible
// Parallel systems, with every Exclusive system isolated in its own
// single-system wave.
func partitionWaves(systems []*System) [][]*System {
	var waves [][]*System
	i := 0
	for i < len(systems) {
		if systems[i].Mode == Exclusive {
			waves = append(waves, systems[i:i+1])
			i++
			continue
		}
		wave := []*System{systems[i]}
		j := i + 1
		for j < len(systems) && systems[j].Mode != Exclusive && compatibleWithAll(systems[j], wave) {
			wave = append(wave, systems[j])
			j++
		}
		waves = append(waves, wave)
		i = j
	}
	return waves
}

func compatibleWithAll(sys *System, wave []*System) bool {
	for _, member := range wave {
		if sys.access.ConflictsWith(member.access) {
			return false
		}
	}
	return true
}

// Run executes phase's systems against w using exec: flush pending
// commands, swap event buffers if phase is the schedule's first-registered
// phase, partition into waves, and run each wave to completion before
// releasing its grants.
func (s *Schedule) Run(phase Phase, w *World, exec Executor) {
	s.mu.Lock()
	systems := append([]*System(nil), s.systems[phase]...)
	isFirstPhase := len(s.order) > 0 && s.order[0] == phase
	s.mu.Unlock()

	w.FlushCommands()
	if isFirstPhase {
		w.SwapEvents()
	}

	for _, wave := range partitionWaves(systems) {
		if len(wave) == 1 && wave[0].Mode == Exclusive {
			runExclusiveChecked(wave[0], w)
			w.FlushCommands()
			continue
		}

		shards := make([]*Shard, len(wave))
		for i, sys := range wave {
			shards[i] = w.NewShard(sys.access)
		}

		var panicsMu sync.Mutex
		var panics []systemPanic

		tasks := make([]func(), len(wave))
		for i := range wave {
			sys, shard := wave[i], shards[i]
			tasks[i] = func() {
				defer func() {
					if r := recover(); r != nil {
						panicsMu.Lock()
						panics = append(panics, systemPanic{name: sys.Name, value: r})
						panicsMu.Unlock()
					}
				}()
				sys.runOnShard(w, shard)
			}
		}
		exec.Run(context.Background(), tasks)

		// Grant release count must equal grant acquisition count at every
		// phase boundary regardless of whether a system panicked, so every
		// shard is released before the panic (if any) is re-raised.
		for _, shard := range shards {
			shard.Release()
		}

		if len(panics) > 0 {
			raiseSystemPanic(panics[0])
		}
	}
}

// systemPanic records which system panicked and with what value, so the
// scheduler can log the offending system identity before re-raising to the
// driver.
type systemPanic struct {
	name  string
	value any
}

func raiseSystemPanic(p systemPanic) {
	panic(bark.AddTrace(fmt.Errorf("forge: system %q panicked: %v", p.name, p.value)))
}

// runExclusiveChecked invokes an Exclusive system's function directly on
// the caller's goroutine, re-raising any panic traced with the system's
// identity so the exclusive path reports failures the same way the
// parallel wave path does.
func runExclusiveChecked(sys *System, w *World) {
	defer func() {
		if r := recover(); r != nil {
			raiseSystemPanic(systemPanic{name: sys.Name, value: r})
		}
	}()
	sys.runExclusive(w)
}

// RunSequence runs each phase in phases, in order, against w.
func (s *Schedule) RunSequence(phases []Phase, w *World, exec Executor) {
	for _, phase := range phases {
		s.Run(phase, w, exec)
	}
}
