package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsCreatesOneControllerPerSession(t *testing.T) {
	client := newStubClient()
	sched := &manualScheduler{}
	created := 0
	sessions := NewSessions(func(session, locale string) (*Controller, error) {
		created++
		return newTestController(client, sched, func(o *ControllerOptions) {
			o.Session = session
			o.Locale = locale
		}), nil
	}, nil)

	a, err := sessions.Get(context.Background(), "a", "es")
	require.NoError(t, err)
	again, err := sessions.Get(context.Background(), "a", "en")
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, "es", again.Locale())

	def, err := sessions.Get(context.Background(), "  ", "es")
	require.NoError(t, err)
	assert.Equal(t, DefaultSession, def.Session())

	assert.Equal(t, 2, created)
	assert.Equal(t, 2, sessions.Len())
	assert.Equal(t, 2, client.count("ListProducts"), "each new session loads the catalog once")
}

func TestSessionsInitialLoadFailureBecomesBanner(t *testing.T) {
	client := newStubClient()
	client.products = func(context.Context) ([]Product, error) {
		return nil, errors.New("connection refused")
	}
	sched := &manualScheduler{}
	sessions := NewSessions(func(session, locale string) (*Controller, error) {
		return newTestController(client, sched), nil
	}, nil)

	c, err := sessions.Get(context.Background(), "s1", "es")
	require.NoError(t, err)
	alerts := c.Alerts().Active()
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertError, alerts[0].Kind)
}

func TestSessionsFactoryErrorAndDrop(t *testing.T) {
	boom := errors.New("boom")
	sessions := NewSessions(func(session, locale string) (*Controller, error) {
		if session == "bad" {
			return nil, boom
		}
		return newTestController(newStubClient(), &manualScheduler{}), nil
	}, nil)

	_, err := sessions.Get(context.Background(), "bad", "es")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, sessions.Len())

	_, err = sessions.Get(context.Background(), "ok", "es")
	require.NoError(t, err)
	assert.True(t, sessions.Drop("ok"))
	assert.False(t, sessions.Drop("ok"))
	assert.Equal(t, 0, sessions.Len())
}

func TestSessionsEvictIdleSessions(t *testing.T) {
	client := newStubClient()
	client.products = func(context.Context) ([]Product, error) {
		return nil, errors.New("connection refused")
	}
	sched := &manualScheduler{}
	now := time.Date(2025, 6, 27, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(func(session, locale string) (*Controller, error) {
		return newTestController(client, sched, func(o *ControllerOptions) { o.Session = session }), nil
	}, nil, WithSessionIdleTTL(time.Minute), WithSessionClock(func() time.Time { return now }))

	idle, err := sessions.Get(context.Background(), "idle", "es")
	require.NoError(t, err)
	require.Len(t, idle.Alerts().Active(), 1)
	require.Equal(t, 1, idle.Alerts().Pending())

	now = now.Add(30 * time.Second)
	_, err = sessions.Get(context.Background(), "busy", "es")
	require.NoError(t, err)
	assert.Equal(t, 2, sessions.Len())

	now = now.Add(45 * time.Second)
	_, err = sessions.Get(context.Background(), "busy", "es")
	require.NoError(t, err)
	_, err = sessions.Get(context.Background(), "fresh", "es")
	require.NoError(t, err)

	assert.Equal(t, 2, sessions.Len(), "idle session is swept when a new one is created")
	assert.Equal(t, 0, idle.Alerts().Pending(), "evicted session stops its alert timers")

	again, err := sessions.Get(context.Background(), "idle", "es")
	require.NoError(t, err)
	assert.NotSame(t, idle, again)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 3, sessions.Sweep())
	assert.Equal(t, 0, sessions.Len())
}

func TestSessionsCapEvictsLeastRecentlyUsed(t *testing.T) {
	now := time.Date(2025, 6, 27, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(func(session, locale string) (*Controller, error) {
		return newTestController(newStubClient(), &manualScheduler{}, func(o *ControllerOptions) { o.Session = session }), nil
	}, nil, WithMaxSessions(2), WithSessionClock(func() time.Time { return now }))

	for _, id := range []string{"a", "b"} {
		_, err := sessions.Get(context.Background(), id, "es")
		require.NoError(t, err)
		now = now.Add(time.Second)
	}
	a, err := sessions.Get(context.Background(), "a", "es")
	require.NoError(t, err)
	now = now.Add(time.Second)

	for i := 0; i < 50; i++ {
		_, err := sessions.Get(context.Background(), fmt.Sprintf("k%d", i), "es")
		require.NoError(t, err)
		now = now.Add(time.Second)
		if i == 0 {
			again, err := sessions.Get(context.Background(), "a", "es")
			require.NoError(t, err)
			assert.Same(t, a, again, "b was older and went first")
		}
	}
	assert.Equal(t, 2, sessions.Len())
}
