package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherInvokesSubscribedHandlers(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var got []string
	d.Subscribe(EventReportResolved, func(_ context.Context, event Event) error {
		got = append(got, event.ReportID)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventReportResolved, ReportID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, got)
}

func TestDispatcherContinuesPastFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	d.Subscribe(EventReportCreated, func(_ context.Context, _ Event) error {
		return errors.New("webhook down")
	})
	secondRan := false
	d.Subscribe(EventReportCreated, func(_ context.Context, _ Event) error {
		secondRan = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventReportCreated, ReportID: "r2"})
	require.NoError(t, err)
	assert.True(t, secondRan)
}

func TestDispatcherIgnoresUnsubscribedType(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	err := d.Publish(context.Background(), Event{Type: EventUserBanned})
	assert.NoError(t, err)
}
