package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSubscriber keeps the event types it receives
type recordingSubscriber struct {
	id          string
	workspaceID int32
	sendErr     error

	mu     sync.Mutex
	events []Event
	closed bool
}

func newSubscriber(id string, workspaceID int32) *recordingSubscriber {
	return &recordingSubscriber{id: id, workspaceID: workspaceID}
}

func (s *recordingSubscriber) ID() string         { return s.id }
func (s *recordingSubscriber) WorkspaceID() int32 { return s.workspaceID }

func (s *recordingSubscriber) Send(data []byte) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return nil
}

func (s *recordingSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSubscriber) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, len(s.events))
	for i, evt := range s.events {
		types[i] = evt.Type
	}
	return types
}

func (s *recordingSubscriber) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func TestHub_InvoicePaidStaysInWorkspace(t *testing.T) {
	hub := NewHub()
	phone := newSubscriber("phone", 1)
	laptop := newSubscriber("laptop", 1)
	stranger := newSubscriber("stranger", 2)
	for _, sub := range []*recordingSubscriber{phone, laptop, stranger} {
		require.NoError(t, hub.Register(sub))
	}

	hub.Publish(1, InvoicePaid(map[string]string{"cardId": "c1", "date": "2024-03-20"}))

	assert.Equal(t, []string{"invoice.paid"}, phone.types())
	assert.Equal(t, []string{"invoice.paid"}, laptop.types())
	assert.Empty(t, stranger.types())

	payload, ok := phone.events[0].Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2024-03-20", payload["date"])
	assert.Equal(t, EntityTypeInvoice, phone.events[0].Entity)
}

func TestHub_TransactionEventsKeepOrder(t *testing.T) {
	hub := NewHub()
	sub := newSubscriber("tab", 7)
	require.NoError(t, hub.Register(sub))

	hub.Publish(7, TransactionCreated([]string{"a", "b"}))
	hub.Publish(7, TransactionUpdated("a"))
	hub.Publish(7, TransactionDeleted("b"))
	hub.Publish(7, TransactionsImported(map[string]int{"imported": 3}))

	assert.Equal(t, []string{
		"transaction.created",
		"transaction.updated",
		"transaction.deleted",
		"transaction.imported",
	}, sub.types())
}

func TestHub_RejectsSubscriberWithoutWorkspace(t *testing.T) {
	hub := NewHub()

	err := hub.Register(newSubscriber("fresh-login", 0))
	assert.ErrorIs(t, err, ErrNoWorkspace)
	assert.Equal(t, 0, hub.ClientCount(0))

	assert.NotPanics(t, func() { hub.Publish(0, AutomationCompleted(nil)) })
}

func TestHub_DropsFailingSubscriber(t *testing.T) {
	hub := NewHub()
	healthy := newSubscriber("healthy", 3)
	stuck := newSubscriber("stuck", 3)
	stuck.sendErr = ErrClientSlow
	require.NoError(t, hub.Register(healthy))
	require.NoError(t, hub.Register(stuck))

	hub.Publish(3, AutomationCompleted(map[string]int{"recurrences": 2}))
	hub.Publish(3, ClosureToggled(map[string]int{"month": 3}))

	assert.Equal(t, []string{"automation.completed", "closure.toggled"}, healthy.types())
	assert.True(t, stuck.isClosed())
	assert.Equal(t, 1, hub.ClientCount(3))
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := newSubscriber("tab", 1)
	require.NoError(t, hub.Register(sub))

	hub.Unregister(sub)
	hub.Unregister(sub)
	hub.Unregister(newSubscriber("never-registered", 9))

	assert.Equal(t, 0, hub.ClientCount(1))
	hub.Publish(1, GoalUpdated("g"))
	assert.Empty(t, sub.types())
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub()
	a := newSubscriber("a", 1)
	b := newSubscriber("b", 2)
	require.NoError(t, hub.Register(a))
	require.NoError(t, hub.Register(b))

	hub.Shutdown()

	assert.True(t, a.isClosed())
	assert.True(t, b.isClosed())
	assert.Equal(t, 0, hub.ClientCount(1))
	assert.ErrorIs(t, hub.Register(newSubscriber("late", 1)), ErrHubClosed)
}

func TestHub_ConcurrentPublishAndUnregister(t *testing.T) {
	hub := NewHub()
	const workspaces = 5
	subs := make([]*recordingSubscriber, 50)
	for i := range subs {
		subs[i] = newSubscriber(fmt.Sprintf("tab-%d", i), int32(i%workspaces)+1)
		require.NoError(t, hub.Register(subs[i]))
	}

	var wg sync.WaitGroup
	for i := range subs {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			hub.Publish(int32(idx%workspaces)+1, DebtUpdated(idx))
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(subs[idx])
		}(i)
	}
	wg.Wait()

	for ws := int32(1); ws <= workspaces; ws++ {
		assert.Equal(t, 0, hub.ClientCount(ws))
	}
}
