package eventbus

import (
	"testing"
	"time"
)

func TestPublishFanout(t *testing.T) {
	t.Parallel()

	b := New()
	ch1, unsub1 := b.Subscribe(4)
	ch2, unsub2 := b.Subscribe(4)
	defer unsub1()
	defer unsub2()

	b.Publish(Event{Type: TypeTaskOverdue, Data: TaskEvent{VehicleID: "v1", TaskID: "t1"}})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			if e.Type != TypeTaskOverdue {
				t.Fatalf("subscriber %d: type = %q", i, e.Type)
			}
			if e.Time.IsZero() {
				t.Fatalf("subscriber %d: time not stamped", i)
			}
			if te := e.Data.(TaskEvent); te.VehicleID != "v1" {
				t.Fatalf("subscriber %d: payload %+v", i, te)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: no event", i)
		}
	}
}

func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	t.Parallel()

	b := New()
	ch, unsub := b.Subscribe(1)
	defer unsub()

	b.Publish(Event{Type: TypeTaskDueSoon})
	b.Publish(Event{Type: TypeTaskOverdue}) // buffer full: dropped, Publish must not block

	e := <-ch
	if e.Type != TypeTaskDueSoon {
		t.Fatalf("type = %q, want the first event", e.Type)
	}
	select {
	case e := <-ch:
		t.Fatalf("unexpected second event %q", e.Type)
	default:
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()

	b := New()
	ch, unsub := b.Subscribe(1)
	unsub()
	unsub() // second call must not panic

	if _, ok := <-ch; ok {
		t.Fatal("channel must be closed after unsubscribe")
	}

	// Publishing after unsubscribe must not panic either.
	b.Publish(Event{Type: TypeScheduleRefreshed})
}
