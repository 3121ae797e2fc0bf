package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/pkg/logger"
)

var (
	// ErrSubscriptionNotFound rejects lifecycle operations on unknown or
	// already-removed subscription identifiers.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrStreamClosed rejects publishes and new subscriptions after Stop.
	ErrStreamClosed = errors.New("stream dispatcher is stopped")

	// ErrNilCallback rejects subscriptions registered without a callback.
	ErrNilCallback = errors.New("subscription requires a callback")

	// ErrInvalidOpportunity rejects publishes of a nil opportunity or one
	// without an identifier.
	ErrInvalidOpportunity = errors.New("published opportunity must carry an id")
)

// Dispatcher owns the subscription registry and broadcasts each published
// opportunity to every active subscription whose filter matches. The
// engine owns no timer: an external ingestion collaborator pushes
// opportunities in through Publish.
//
// Filter and lifecycle checks run synchronously inside Publish, so an
// opportunity published while a subscription is paused is decided
// immediately and never delivered later. Callback invocation is
// fire-and-forget on a goroutine per delivery; one slow or failing
// subscriber never blocks the publisher or the other subscribers.
type Dispatcher struct {
	logger *logger.Logger
	sink   contracts.NotificationSink

	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool

	published        int64
	deliveries       int64
	callbackFailures int64

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher. The sink may be nil when no
// external notification collaborator is wired.
func NewDispatcher(log *logger.Logger, sink contracts.NotificationSink) *Dispatcher {
	return &Dispatcher{
		logger: log,
		sink:   sink,
		subs:   make(map[string]*Subscription),
	}
}

// Subscribe registers a new active subscription and returns it. The
// returned subscription is identified by a generated UUID; all later
// lifecycle changes go through the dispatcher by that identifier.
func (d *Dispatcher) Subscribe(filter Filter, cb Callback) (*Subscription, error) {
	if cb == nil {
		return nil, ErrNilCallback
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrStreamClosed
	}

	sub := newSubscription(uuid.New().String(), filter, cb)
	d.subs[sub.ID] = sub

	d.logger.WithFields(map[string]interface{}{
		"subscription_id": sub.ID,
		"industries":      len(filter.Industries),
		"regions":         len(filter.Regions),
	}).Info("Registered subscription")

	return sub, nil
}

// Get returns the subscription with the given identifier.
func (d *Dispatcher) Get(id string) (*Subscription, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sub, ok := d.subs[id]
	return sub, ok
}

// Pause suspends delivery for a subscription. Opportunities published
// while paused are dropped for it, not buffered; Resume does not replay
// them. Pausing an already-paused subscription is a no-op.
func (d *Dispatcher) Pause(id string) error {
	return d.transition(id, StatusPaused)
}

// Resume reactivates a paused subscription. Only opportunities published
// after the resume are delivered.
func (d *Dispatcher) Resume(id string) error {
	return d.transition(id, StatusActive)
}

func (d *Dispatcher) transition(id string, next Status) error {
	d.mu.RLock()
	sub, ok := d.subs[id]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, id)
	}

	sub.setStatus(next)

	d.logger.WithFields(map[string]interface{}{
		"subscription_id": id,
		"status":          string(next),
	}).Debug("Subscription lifecycle changed")

	return nil
}

// Unsubscribe removes a subscription permanently. Unsubscribing an
// unknown or already-removed identifier is a no-op, not an error.
func (d *Dispatcher) Unsubscribe(id string) error {
	d.mu.Lock()
	sub, ok := d.subs[id]
	if ok {
		delete(d.subs, id)
	}
	d.mu.Unlock()

	if !ok {
		return nil
	}

	sub.setStatus(StatusUnsubscribed)
	d.logger.WithField("subscription_id", id).Info("Removed subscription")
	return nil
}

// Publish broadcasts one opportunity to every matching active
// subscription, exactly once per (opportunity, subscription) pair across
// repeated publishes. The delivery decision is made before Publish
// returns; callbacks then run asynchronously and receive the publish
// context.
func (d *Dispatcher) Publish(ctx context.Context, opp *contracts.Opportunity) error {
	if opp == nil || opp.ID == "" {
		return ErrInvalidOpportunity
	}

	// Claims and wg.Add stay under the read lock: Stop flips closed under
	// the write lock before waiting, so no delivery can be added after its
	// Wait begins.
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrStreamClosed
	}

	total := len(d.subs)
	matched := 0
	for _, sub := range d.subs {
		if !sub.Filter.Matches(opp) {
			continue
		}
		if !sub.claim(opp.ID) {
			continue
		}

		matched++
		atomic.AddInt64(&d.deliveries, 1)

		d.wg.Add(1)
		go d.deliver(ctx, sub, opp)
	}
	d.mu.RUnlock()

	atomic.AddInt64(&d.published, 1)

	d.logger.WithFields(map[string]interface{}{
		"opportunity_id": opp.ID,
		"subscriptions":  total,
		"matched":        matched,
	}).Debug("Published opportunity")

	return nil
}

// deliver invokes one subscriber's callback and notifies the sink. The
// claim already committed this delivery, so failures here are logged and
// counted but never retried.
func (d *Dispatcher) deliver(ctx context.Context, sub *Subscription, opp *contracts.Opportunity) {
	defer d.wg.Done()

	if err := d.invoke(ctx, sub, opp); err != nil {
		atomic.AddInt64(&d.callbackFailures, 1)
		d.logger.WithError(err).WithFields(map[string]interface{}{
			"subscription_id": sub.ID,
			"opportunity_id":  opp.ID,
		}).Error("Subscriber callback failed")
	}

	if d.sink != nil {
		if err := d.sink.NotifyMatch(ctx, sub.ID, opp); err != nil {
			d.logger.WithError(err).WithField("subscription_id", sub.ID).Warn("Notification sink rejected delivery")
		}
	}
}

// invoke runs the callback, converting a panic into an error so one
// subscriber cannot take down the dispatcher.
func (d *Dispatcher) invoke(ctx context.Context, sub *Subscription, opp *contracts.Opportunity) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panic: %v", r)
		}
	}()
	return sub.callback(ctx, opp)
}

// Stop refuses further publishes and subscriptions, then waits for
// in-flight callback deliveries to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("Stream dispatcher stopped")
}

// DispatcherStats is a point-in-time snapshot of stream activity.
type DispatcherStats struct {
	ActiveSubscriptions int   `json:"active_subscriptions"`
	PausedSubscriptions int   `json:"paused_subscriptions"`
	Published           int64 `json:"published"`
	Deliveries          int64 `json:"deliveries"`
	CallbackFailures    int64 `json:"callback_failures"`
}

// Stats reports registry sizes and lifetime counters.
func (d *Dispatcher) Stats() DispatcherStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := DispatcherStats{
		Published:        atomic.LoadInt64(&d.published),
		Deliveries:       atomic.LoadInt64(&d.deliveries),
		CallbackFailures: atomic.LoadInt64(&d.callbackFailures),
	}
	for _, sub := range d.subs {
		switch sub.Status() {
		case StatusActive:
			stats.ActiveSubscriptions++
		case StatusPaused:
			stats.PausedSubscriptions++
		}
	}
	return stats
}
