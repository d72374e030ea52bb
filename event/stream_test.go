package event

import (
	"testing"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	s := NewStream[int]()
	var order []string
	s.Subscribe(func(int) { order = append(order, "first") })
	s.Subscribe(func(int) { order = append(order, "second") })
	s.Subscribe(func(int) { order = append(order, "third") })

	s.Publish(1)

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("deliveries = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("deliveries = %v, want %v", order, want)
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	s := NewStream[string]()
	var got []string
	sub := s.Subscribe(func(v string) { got = append(got, "a:"+v) })
	s.Subscribe(func(v string) { got = append(got, "b:"+v) })

	s.Publish("one")
	sub.Cancel()
	s.Publish("two")

	want := []string{"a:one", "b:one", "b:two"}
	if len(got) != len(want) {
		t.Fatalf("deliveries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("deliveries = %v, want %v", got, want)
		}
	}
	if sub.IsActive() {
		t.Error("IsActive() = true after Cancel")
	}
}

// A handler cancelling a later subscription suppresses it within the
// same publish.
func TestCancelDuringDelivery(t *testing.T) {
	s := NewStream[int]()
	var later *Subscription
	calls := 0
	s.Subscribe(func(int) { later.Cancel() })
	later = s.Subscribe(func(int) { calls++ })

	s.Publish(1)
	s.Publish(2)

	if calls != 0 {
		t.Errorf("cancelled handler ran %d times", calls)
	}
}

func TestOnceAutoCancels(t *testing.T) {
	s := NewStream[int]()
	calls := 0
	sub := s.Subscribe(func(int) { calls++ }, Once())

	s.Publish(1)
	s.Publish(2)

	if calls != 1 {
		t.Errorf("once handler ran %d times, want 1", calls)
	}
	if sub.IsActive() {
		t.Error("once subscription still active after delivery")
	}
}

func TestPanicIsolation(t *testing.T) {
	var recovered any
	s := NewStream[int](WithPanicHandler(func(r any) { recovered = r }))
	ran := false
	s.Subscribe(func(int) { panic("boom") })
	s.Subscribe(func(int) { ran = true })

	s.Publish(1)

	if !ran {
		t.Error("handler after the panicking one did not run")
	}
	if recovered != "boom" {
		t.Errorf("recovered = %v, want boom", recovered)
	}
	st := s.Stats()
	if st.Panics != 1 {
		t.Errorf("Stats().Panics = %d, want 1", st.Panics)
	}
	if st.Delivered != 1 {
		t.Errorf("Stats().Delivered = %d, want 1", st.Delivered)
	}
}

// A panicking once-handler stays subscribed; only a successful
// delivery consumes it.
func TestOnceSurvivesPanic(t *testing.T) {
	s := NewStream[int]()
	calls := 0
	s.Subscribe(func(int) {
		calls++
		if calls == 1 {
			panic("first try")
		}
	}, Once())

	s.Publish(1)
	s.Publish(2)
	s.Publish(3)

	if calls != 2 {
		t.Errorf("handler ran %d times, want 2", calls)
	}
}

func TestSubscribeDuringDelivery(t *testing.T) {
	s := NewStream[int]()
	var got []int
	s.Subscribe(func(v int) {
		if v == 1 {
			s.Subscribe(func(v int) { got = append(got, v) })
		}
	})

	s.Publish(1)
	s.Publish(2)

	if len(got) != 1 || got[0] != 2 {
		t.Errorf("late subscriber saw %v, want [2]", got)
	}
}

func TestStats(t *testing.T) {
	s := NewStream[int]()
	if st := s.Stats(); st.Published != 0 || st.Active != 0 {
		t.Fatalf("fresh stream stats = %+v", st)
	}

	a := s.Subscribe(func(int) {})
	s.Subscribe(func(int) {})
	s.Publish(1)
	s.Publish(2)

	st := s.Stats()
	if st.Published != 2 {
		t.Errorf("Published = %d, want 2", st.Published)
	}
	if st.Delivered != 4 {
		t.Errorf("Delivered = %d, want 4", st.Delivered)
	}
	if st.Active != 2 {
		t.Errorf("Active = %d, want 2", st.Active)
	}

	a.Cancel()
	if st := s.Stats(); st.Active != 1 {
		t.Errorf("Active = %d after cancel, want 1", st.Active)
	}
}

func TestSubscriptionIDsUnique(t *testing.T) {
	s := NewStream[int]()
	a := s.Subscribe(func(int) {})
	b := s.Subscribe(func(int) {})
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("subscription IDs %q and %q are not distinct", a.ID(), b.ID())
	}
}
