package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/pkg/logger"
)

func newTestDispatcher() *Dispatcher {
	return NewDispatcher(logger.NewNop(), nil)
}

func streamOpportunity(id string) *contracts.Opportunity {
	return &contracts.Opportunity{
		ID:         id,
		Title:      "Road resurfacing program",
		Industries: []string{"construction"},
		Value:      contracts.ValueRange{Min: 200_000, Max: 600_000, Currency: "CAD"},
		Location:   contracts.Location{City: "Winnipeg", Region: "Manitoba"},
		Diversity:  contracts.DiversityRequirement{MinimumPercentage: 25},
		Status:     contracts.OpportunityOpen,
	}
}

// collect returns a callback that records delivered opportunity IDs on a
// buffered channel.
func collect(ch chan string) Callback {
	return func(_ context.Context, opp *contracts.Opportunity) error {
		ch <- opp.ID
		return nil
	}
}

func waitFor(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a delivery")
		return ""
	}
}

// received drains everything already on the channel. Call after Stop so
// no delivery is still in flight.
func received(ch chan string) []string {
	var ids []string
	for {
		select {
		case id := <-ch:
			ids = append(ids, id)
		default:
			return ids
		}
	}
}

func TestPublish_DeliversToMatchingSubscription(t *testing.T) {
	d := newTestDispatcher()
	defer d.Stop()

	ch := make(chan string, 4)
	sub, err := d.Subscribe(Filter{Industries: []string{"construction"}}, collect(ch))
	require.NoError(t, err)
	require.NotEmpty(t, sub.ID)
	assert.Equal(t, StatusActive, sub.Status())

	require.NoError(t, d.Publish(context.Background(), streamOpportunity("opp-1")))

	assert.Equal(t, "opp-1", waitFor(t, ch))
}

func TestPublish_SkipsNonMatchingFilter(t *testing.T) {
	d := newTestDispatcher()

	ch := make(chan string, 4)
	_, err := d.Subscribe(Filter{Industries: []string{"logistics"}}, collect(ch))
	require.NoError(t, err)

	require.NoError(t, d.Publish(context.Background(), streamOpportunity("opp-1")))

	d.Stop()
	assert.Empty(t, received(ch))
}

func TestPausedSubscription_ReceivesNothing(t *testing.T) {
	d := newTestDispatcher()

	ch := make(chan string, 4)
	sub, err := d.Subscribe(Filter{}, collect(ch))
	require.NoError(t, err)

	require.NoError(t, d.Pause(sub.ID))
	assert.Equal(t, StatusPaused, sub.Status())

	require.NoError(t, d.Publish(context.Background(), streamOpportunity("opp-1")))

	d.Stop()
	assert.Empty(t, received(ch))
}

func TestResume_DeliversOnlyNewEvents(t *testing.T) {
	d := newTestDispatcher()

	ch := make(chan string, 4)
	sub, err := d.Subscribe(Filter{}, collect(ch))
	require.NoError(t, err)

	require.NoError(t, d.Pause(sub.ID))
	require.NoError(t, d.Publish(context.Background(), streamOpportunity("opp-missed")))

	require.NoError(t, d.Resume(sub.ID))
	require.NoError(t, d.Publish(context.Background(), streamOpportunity("opp-2")))

	assert.Equal(t, "opp-2", waitFor(t, ch))

	d.Stop()
	assert.Empty(t, received(ch), "the opportunity missed while paused must not be replayed")
}

func TestPublish_ExactlyOncePerOpportunity(t *testing.T) {
	d := newTestDispatcher()

	ch := make(chan string, 8)
	sub, err := d.Subscribe(Filter{}, collect(ch))
	require.NoError(t, err)

	ctx := context.Background()
	opp := streamOpportunity("opp-1")

	require.NoError(t, d.Publish(ctx, opp))
	assert.Equal(t, "opp-1", waitFor(t, ch))

	// Republishing the same opportunity never duplicates delivery, in
	// any lifecycle state.
	require.NoError(t, d.Publish(ctx, opp))
	require.NoError(t, d.Pause(sub.ID))
	require.NoError(t, d.Publish(ctx, opp))
	require.NoError(t, d.Resume(sub.ID))
	require.NoError(t, d.Publish(ctx, opp))

	d.Stop()
	assert.Empty(t, received(ch))
	assert.Equal(t, int64(1), d.Stats().Deliveries)
}

func TestUnsubscribe_IsTerminal(t *testing.T) {
	d := newTestDispatcher()

	ch := make(chan string, 4)
	sub, err := d.Subscribe(Filter{}, collect(ch))
	require.NoError(t, err)

	require.NoError(t, d.Unsubscribe(sub.ID))
	assert.Equal(t, StatusUnsubscribed, sub.Status())

	_, ok := d.Get(sub.ID)
	assert.False(t, ok)

	// Further events for the identifier are a no-op, not an error.
	require.NoError(t, d.Publish(context.Background(), streamOpportunity("opp-1")))
	require.NoError(t, d.Unsubscribe(sub.ID))

	// Lifecycle changes can no longer target it.
	assert.ErrorIs(t, d.Pause(sub.ID), ErrSubscriptionNotFound)
	assert.ErrorIs(t, d.Resume(sub.ID), ErrSubscriptionNotFound)

	d.Stop()
	assert.Empty(t, received(ch))
}

func TestPublish_BroadcastsToAllActiveMatches(t *testing.T) {
	d := newTestDispatcher()

	chA := make(chan string, 4)
	chB := make(chan string, 4)
	chPaused := make(chan string, 4)

	_, err := d.Subscribe(Filter{Industries: []string{"construction"}}, collect(chA))
	require.NoError(t, err)
	_, err = d.Subscribe(Filter{Regions: []string{"Manitoba"}}, collect(chB))
	require.NoError(t, err)
	paused, err := d.Subscribe(Filter{}, collect(chPaused))
	require.NoError(t, err)
	require.NoError(t, d.Pause(paused.ID))

	require.NoError(t, d.Publish(context.Background(), streamOpportunity("opp-1")))

	assert.Equal(t, "opp-1", waitFor(t, chA))
	assert.Equal(t, "opp-1", waitFor(t, chB))

	d.Stop()
	assert.Empty(t, received(chPaused))

	stats := d.Stats()
	assert.Equal(t, int64(2), stats.Deliveries)
	assert.Equal(t, 2, stats.ActiveSubscriptions)
	assert.Equal(t, 1, stats.PausedSubscriptions)
}

func TestPublish_CallbackErrorIsIsolated(t *testing.T) {
	d := newTestDispatcher()

	failing := func(_ context.Context, _ *contracts.Opportunity) error {
		return errors.New("subscriber refused the event")
	}
	_, err := d.Subscribe(Filter{}, failing)
	require.NoError(t, err)

	ch := make(chan string, 4)
	_, err = d.Subscribe(Filter{}, collect(ch))
	require.NoError(t, err)

	require.NoError(t, d.Publish(context.Background(), streamOpportunity("opp-1")))
	assert.Equal(t, "opp-1", waitFor(t, ch))

	d.Stop()

	stats := d.Stats()
	assert.Equal(t, int64(2), stats.Deliveries)
	assert.Equal(t, int64(1), stats.CallbackFailures)
}

func TestPublish_CallbackPanicDoesNotKillDispatcher(t *testing.T) {
	d := newTestDispatcher()

	panicking := func(_ context.Context, _ *contracts.Opportunity) error {
		panic("subscriber exploded")
	}
	_, err := d.Subscribe(Filter{}, panicking)
	require.NoError(t, err)

	ch := make(chan string, 4)
	_, err = d.Subscribe(Filter{}, collect(ch))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, d.Publish(ctx, streamOpportunity("opp-1")))
	assert.Equal(t, "opp-1", waitFor(t, ch))

	// The dispatcher keeps serving after the panic.
	require.NoError(t, d.Publish(ctx, streamOpportunity("opp-2")))
	assert.Equal(t, "opp-2", waitFor(t, ch))

	d.Stop()
	assert.Equal(t, int64(2), d.Stats().CallbackFailures)
}

type sinkCall struct {
	subscriptionID string
	opportunityID  string
}

type recordingSink struct {
	mu    sync.Mutex
	calls []sinkCall
	err   error
}

func (r *recordingSink) NotifyMatch(_ context.Context, subscriptionID string, opp *contracts.Opportunity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sinkCall{subscriptionID, opp.ID})
	return r.err
}

func (r *recordingSink) recorded() []sinkCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sinkCall(nil), r.calls...)
}

func TestPublish_NotifiesSinkOncePerMatch(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(logger.NewNop(), sink)

	ch := make(chan string, 4)
	sub, err := d.Subscribe(Filter{}, collect(ch))
	require.NoError(t, err)

	require.NoError(t, d.Publish(context.Background(), streamOpportunity("opp-1")))
	waitFor(t, ch)

	d.Stop()

	calls := sink.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, sub.ID, calls[0].subscriptionID)
	assert.Equal(t, "opp-1", calls[0].opportunityID)
}

func TestPublish_SinkFailureIsNotPropagated(t *testing.T) {
	sink := &recordingSink{err: errors.New("sink offline")}
	d := NewDispatcher(logger.NewNop(), sink)

	ch := make(chan string, 4)
	_, err := d.Subscribe(Filter{}, collect(ch))
	require.NoError(t, err)

	require.NoError(t, d.Publish(context.Background(), streamOpportunity("opp-1")))
	assert.Equal(t, "opp-1", waitFor(t, ch))

	d.Stop()
	assert.Equal(t, int64(1), d.Stats().Deliveries)
}

func TestSubscribe_RequiresCallback(t *testing.T) {
	d := newTestDispatcher()
	defer d.Stop()

	_, err := d.Subscribe(Filter{}, nil)
	assert.ErrorIs(t, err, ErrNilCallback)
}

func TestPublish_RejectsInvalidOpportunity(t *testing.T) {
	d := newTestDispatcher()
	defer d.Stop()

	assert.ErrorIs(t, d.Publish(context.Background(), nil), ErrInvalidOpportunity)
	assert.ErrorIs(t, d.Publish(context.Background(), &contracts.Opportunity{}), ErrInvalidOpportunity)
}

func TestStoppedDispatcher_RefusesWork(t *testing.T) {
	d := newTestDispatcher()
	d.Stop()

	_, err := d.Subscribe(Filter{}, collect(make(chan string, 1)))
	assert.ErrorIs(t, err, ErrStreamClosed)
	assert.ErrorIs(t, d.Publish(context.Background(), streamOpportunity("opp-1")), ErrStreamClosed)

	// Stopping twice is harmless.
	d.Stop()
}

func TestFilterMatches(t *testing.T) {
	base := streamOpportunity("opp-1")

	remote := streamOpportunity("opp-remote")
	remote.Location = contracts.Location{Remote: true}

	noDiversity := streamOpportunity("opp-nd")
	noDiversity.Diversity = contracts.DiversityRequirement{}

	tests := []struct {
		name   string
		filter Filter
		opp    *contracts.Opportunity
		want   bool
	}{
		{"empty filter matches everything", Filter{}, base, true},
		{"industry overlap", Filter{Industries: []string{"construction"}}, base, true},
		{"industry synonym overlap", Filter{Industries: []string{"general contracting"}}, base, true},
		{"industry miss", Filter{Industries: []string{"it services"}}, base, false},
		{"diversity threshold met exactly", Filter{MinDiversityContent: 25}, base, true},
		{"diversity threshold above requirement", Filter{MinDiversityContent: 40}, base, false},
		{"diversity threshold against unrequired", Filter{MinDiversityContent: 10}, noDiversity, false},
		{"region match is case-insensitive", Filter{Regions: []string{"manitoba"}}, base, true},
		{"region miss", Filter{Regions: []string{"Ontario"}}, base, false},
		{"remote passes any region filter", Filter{Regions: []string{"Ontario"}}, remote, true},
		{"value ranges overlap", Filter{Value: contracts.ValueRange{Min: 500_000, Max: 900_000}}, base, true},
		{"value ranges disjoint", Filter{Value: contracts.ValueRange{Min: 700_000, Max: 900_000}}, base, false},
		{"zero value range places no constraint", Filter{Value: contracts.ValueRange{}}, base, true},
		{
			"all criteria together",
			Filter{
				Industries:          []string{"construction"},
				MinDiversityContent: 20,
				Regions:             []string{"Manitoba"},
				Value:               contracts.ValueRange{Min: 100_000, Max: 300_000},
			},
			base,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.opp))
		})
	}
}

func TestPublish_ConcurrentWithLifecycleChanges(t *testing.T) {
	d := newTestDispatcher()

	ch := make(chan string, 256)
	sub, err := d.Subscribe(Filter{}, collect(ch))
	require.NoError(t, err)

	const publishers = 4
	const perPublisher = 25

	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				id := fmt.Sprintf("opp-%d-%d", p, i)
				_ = d.Publish(context.Background(), streamOpportunity(id))
			}
		}(p)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = d.Pause(sub.ID)
			_ = d.Resume(sub.ID)
		}
	}()

	wg.Wait()
	d.Stop()

	// A subscription toggled mid-dispatch is notified at most once per
	// opportunity, never twice.
	counts := make(map[string]int)
	for _, id := range received(ch) {
		counts[id]++
	}
	for id, n := range counts {
		assert.Equalf(t, 1, n, "opportunity %s delivered %d times", id, n)
	}
	assert.LessOrEqual(t, len(counts), publishers*perPublisher)
}
