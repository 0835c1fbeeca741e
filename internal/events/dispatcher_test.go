package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_PublishInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var seen []string
	d.Subscribe(EventUserCreated, func(_ context.Context, e Event) error {
		seen = append(seen, e.UserID)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserCreated, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, seen)
}

func TestDispatcher_HandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	second := false
	d.Subscribe(EventUserDeleted, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventUserDeleted, func(context.Context, Event) error {
		second = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserDeleted, UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, second)
}

func TestDispatcher_IgnoresUnsubscribedTypes(t *testing.T) {
	d := NewInMemoryDispatcher()
	err := d.Publish(context.Background(), Event{Type: EventUserUpdated, UserID: "u1"})
	assert.NoError(t, err)
}
