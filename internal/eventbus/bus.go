// Package eventbus decouples the engine sweeps from the caller-owned
// notification layer: sweeps publish task lifecycle events, and whoever
// renders reminders subscribes.
package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Event types published by this repo.
const (
	TypeTaskOverdue       = "task.overdue"
	TypeTaskDueSoon       = "task.due_soon"
	TypeForecastArchived  = "forecast.archived"
	TypeScheduleRefreshed = "schedule.refreshed"
)

// TaskEvent is the payload for task lifecycle events.
type TaskEvent struct {
	VehicleID string `json:"vehicle_id"`
	TaskID    string `json:"task_id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Status    string `json:"status"`
}

// Event is a lightweight, in-memory signal.
//
// Contract:
//   - Publish MUST be non-blocking.
//   - Slow subscribers may drop events (bounded backpressure).
//
// Data should be small and ideally JSON-serializable.
type Event struct {
	Type string
	Time time.Time
	Data any
}

type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
}

// New returns a simple in-memory fanout bus. It owns no background goroutines.
func New() Bus {
	return &memBus{subs: map[uint64]chan Event{}}
}

type memBus struct {
	mu   sync.RWMutex
	subs map[uint64]chan Event
	seq  atomic.Uint64
}

func (b *memBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	// Sends are non-blocking, so holding the read lock for the whole fanout
	// is cheap and guarantees Unsubscribe (which takes the write lock) can
	// never close a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// drop for this subscriber
		}
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}
