package stream

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/scoring"
)

// Status is the lifecycle state of a subscription. Unsubscribed is
// terminal: no later operation leaves it.
type Status string

const (
	StatusActive       Status = "active"
	StatusPaused       Status = "paused"
	StatusUnsubscribed Status = "unsubscribed"
)

// Callback receives one opportunity per successful filter match. It runs
// on a dispatcher goroutine; a returned error or a panic is logged and
// isolated, never propagated to the publisher or to other subscribers.
type Callback func(ctx context.Context, opp *contracts.Opportunity) error

// Filter is the standing criteria of a subscription. Every populated
// criterion must pass; zero-valued criteria place no constraint.
type Filter struct {
	// Industries passes opportunities sharing at least one industry tag.
	Industries []string `json:"industries,omitempty"`

	// MinDiversityContent passes only opportunities whose diversity
	// requirement demands at least this ownership content, in percent.
	MinDiversityContent float64 `json:"min_diversity_content,omitempty"`

	// Regions passes opportunities performed in one of the named regions.
	// Remote-eligible opportunities pass regardless of region.
	Regions []string `json:"regions,omitempty"`

	// Value passes opportunities whose value band overlaps this range.
	Value contracts.ValueRange `json:"value,omitempty"`
}

// Matches reports whether an opportunity satisfies every populated
// criterion of the filter.
func (f Filter) Matches(opp *contracts.Opportunity) bool {
	if len(f.Industries) > 0 && !scoring.AnyOverlap(f.Industries, opp.Industries) {
		return false
	}

	if opp.Diversity.MinimumPercentage < f.MinDiversityContent {
		return false
	}

	if len(f.Regions) > 0 && !f.matchesRegion(opp.Location) {
		return false
	}

	// A zero range places no constraint.
	if (f.Value.Min != 0 || f.Value.Max != 0) && !f.Value.Overlaps(opp.Value) {
		return false
	}

	return true
}

func (f Filter) matchesRegion(loc contracts.Location) bool {
	if loc.Remote {
		return true
	}
	for _, region := range f.Regions {
		if strings.EqualFold(strings.TrimSpace(region), strings.TrimSpace(loc.Region)) {
			return true
		}
	}
	return false
}

// Subscription is a standing filter plus callback registered with a
// dispatcher. Lifecycle moves active -> paused -> active any number of
// times and ends at unsubscribed.
//
// A paused subscription buffers nothing: opportunities published while
// paused are skipped and are not replayed on resume.
type Subscription struct {
	ID        string    `json:"id"`
	Filter    Filter    `json:"filter"`
	CreatedAt time.Time `json:"created_at"`

	callback Callback

	mu        sync.Mutex
	status    Status
	delivered map[string]struct{}
}

func newSubscription(id string, filter Filter, cb Callback) *Subscription {
	return &Subscription{
		ID:        id,
		Filter:    filter,
		CreatedAt: time.Now(),
		callback:  cb,
		status:    StatusActive,
		delivered: make(map[string]struct{}),
	}
}

// Status returns the current lifecycle state.
func (s *Subscription) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// setStatus applies a lifecycle transition. Unsubscribed is terminal; a
// transition requested after it is silently dropped.
func (s *Subscription) setStatus(next Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusUnsubscribed {
		return
	}
	s.status = next
}

// claim atomically decides whether an opportunity is delivered to this
// subscription. It returns true at most once per opportunity, and only
// while the subscription is active. Opportunities refused while paused
// are not marked, so a later publish of the same opportunity can still
// reach the subscription once it is active again.
func (s *Subscription) claim(opportunityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return false
	}
	if _, seen := s.delivered[opportunityID]; seen {
		return false
	}

	s.delivered[opportunityID] = struct{}{}
	return true
}
