package forge

import "testing"

type Damage struct{ Amount int }

func TestEventStreamCapacityIsEnforced(t *testing.T) {
	w := NewWorld()
	RegisterEventCapacity[Damage](w, 2)
	producer := NewProducer[Damage](w)

	producer.Send(Damage{1})
	producer.Send(Damage{2})

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on the third send into a capacity-2 stream")
		}
	}()
	producer.Send(Damage{3})
}

func TestEventRegistrationIsIdempotent(t *testing.T) {
	w := NewWorld()
	RegisterEvent[Damage](w)
	p1, c1, _ := EventMarkers[Damage](w.Types())
	RegisterEvent[Damage](w)
	p2, c2, _ := EventMarkers[Damage](w.Types())
	if p1 != p2 || c1 != c2 {
		t.Fatalf("registering the same event type twice minted new markers: (%d,%d) vs (%d,%d)", p1, c1, p2, c2)
	}
}

func TestProducerAndConsumerOfSameEventDoNotConflict(t *testing.T) {
	w := NewWorld()
	RegisterEvent[Damage](w)

	producerAccess := ProducerOf[Damage]().access(w)
	consumerAccess := ConsumerOf[Damage]().access(w)
	if producerAccess.ConflictsWith(consumerAccess) {
		t.Fatal("a Producer[E] and a Consumer[E] of the same event must not conflict")
	}
}

func TestTwoProducersOfSameEventConflict(t *testing.T) {
	w := NewWorld()
	RegisterEvent[Damage](w)

	a := ProducerOf[Damage]().access(w)
	b := ProducerOf[Damage]().access(w)
	if !a.ConflictsWith(b) {
		t.Fatal("two Producer[E] parameters for the same event must conflict")
	}
}
