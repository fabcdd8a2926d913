// internal/bus/bus_test.go
package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitReachesAllSubscribers(t *testing.T) {
	b := New()

	var first, second []Event
	b.Subscribe(func(ev Event) { first = append(first, ev) })
	b.Subscribe(func(ev Event) { second = append(second, ev) })

	b.Emit("courses", "page-1")

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "courses", first[0].Collection)
	assert.Equal(t, "page-1", first[0].Source)
	assert.WithinDuration(t, time.Now(), first[0].Timestamp, time.Second)
}

func TestEmissionOrderIsPreserved(t *testing.T) {
	b := New()

	var seen []string
	b.Subscribe(func(ev Event) { seen = append(seen, ev.Collection) })

	b.Emit("courses", "page-1")
	b.Emit("scores", "page-1")
	b.Emit("users", "page-2")

	assert.Equal(t, []string{"courses", "scores", "users"}, seen)
}

func TestSubscriberSeesOwnEmissions(t *testing.T) {
	// Filtering self-originated events is the subscriber's job, not the
	// bus's; the bus delivers everything.
	b := New()

	var seen []Event
	b.Subscribe(func(ev Event) { seen = append(seen, ev) })

	b.Emit("courses", "me")

	require.Len(t, seen, 1)
	assert.Equal(t, "me", seen[0].Source)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()

	count := 0
	unsubscribe := b.Subscribe(func(Event) { count++ })

	b.Emit("courses", "page-1")
	unsubscribe()
	b.Emit("courses", "page-1")

	assert.Equal(t, 1, count)
}

func TestEmitWithoutRelayDoesNotFail(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() {
		b.Emit("courses", "page-1")
	})
	assert.NoError(t, b.Close())
}
