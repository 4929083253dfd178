package events

import (
	"log"
	"sync"
	"time"
)

// Event types emitted by the core for the notification collaborator.
const (
	TypeSheetDistributed    = "sheet.distributed"
	TypeResponseUpdated     = "response.updated"
	TypeEntryCompleted      = "entry.completed"
	TypeAssignmentSubmitted = "assignment.submitted"
	TypeAssignmentUnlocked  = "assignment.unlocked"
)

// Event is the domain event envelope handed to subscribers.
type Event struct {
	Type        string    `json:"type"`
	SheetID     int       `json:"sheet_id"`
	TeamID      int       `json:"team_id,omitempty"`
	EntryID     int       `json:"entry_id,omitempty"`
	ActorUserID int       `json:"actor_user_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Subscriber consumes events on the dispatcher's goroutine; slow
// subscribers should hand off to their own workers.
type Subscriber interface {
	Handle(Event)
}

// Dispatcher is an in-process fan-out bus. Emit never blocks the
// triggering mutation: when the buffer is full the event is dropped
// with a log line, since notification delivery is best-effort.
type Dispatcher struct {
	ch   chan Event
	mu   sync.RWMutex
	subs []Subscriber
	done chan struct{}
}

func NewDispatcher(buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	d := &Dispatcher{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) Subscribe(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, s)
}

// Emit publishes an event without blocking the caller.
func (d *Dispatcher) Emit(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	select {
	case d.ch <- e:
	default:
		log.Printf("[Events] Buffer full, dropping %s (sheet %d)", e.Type, e.SheetID)
	}
}

func (d *Dispatcher) run() {
	for {
		select {
		case e := <-d.ch:
			d.mu.RLock()
			subs := d.subs
			d.mu.RUnlock()
			for _, s := range subs {
				s.Handle(e)
			}
		case <-d.done:
			return
		}
	}
}

// Close stops the dispatch loop. Buffered events not yet delivered are
// dropped.
func (d *Dispatcher) Close() {
	close(d.done)
}

// LogSubscriber stands in for the external notification component: it
// records each transition so operators can verify events flow, without
// this core ever blocking on delivery.
type LogSubscriber struct{}

func (LogSubscriber) Handle(e Event) {
	log.Printf("[Events] %s sheet=%d team=%d entry=%d actor=%d", e.Type, e.SheetID, e.TeamID, e.EntryID, e.ActorUserID)
}
