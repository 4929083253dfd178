package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type collectingSubscriber struct {
	mu     sync.Mutex
	events []Event
}

func (c *collectingSubscriber) Handle(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collectingSubscriber) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewDispatcher(16)
	defer d.Close()

	sub := &collectingSubscriber{}
	d.Subscribe(sub)

	d.Emit(Event{Type: TypeSheetDistributed, SheetID: 1, ActorUserID: 9})
	d.Emit(Event{Type: TypeEntryCompleted, SheetID: 1, TeamID: 2, EntryID: 5, ActorUserID: 3})

	assert.Eventually(t, func() bool {
		return len(sub.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	got := sub.snapshot()
	assert.Equal(t, TypeSheetDistributed, got[0].Type)
	assert.Equal(t, TypeEntryCompleted, got[1].Type)
	assert.Equal(t, 5, got[1].EntryID)
	assert.False(t, got[0].OccurredAt.IsZero(), "dispatcher should stamp OccurredAt")
}

func TestDispatcherEmitNeverBlocks(t *testing.T) {
	// No subscribers and a tiny buffer: extra events must be dropped,
	// not block the caller.
	d := NewDispatcher(1)
	defer d.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			d.Emit(Event{Type: TypeResponseUpdated, SheetID: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked with a full buffer")
	}
}

func TestDispatcherLateSubscriber(t *testing.T) {
	d := NewDispatcher(16)
	defer d.Close()

	sub := &collectingSubscriber{}
	d.Subscribe(sub)

	d.Emit(Event{Type: TypeAssignmentSubmitted, SheetID: 3, TeamID: 1})

	assert.Eventually(t, func() bool {
		events := sub.snapshot()
		return len(events) == 1 && events[0].TeamID == 1
	}, time.Second, 5*time.Millisecond)
}
