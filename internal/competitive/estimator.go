package competitive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/pkg/config"
	"github.com/unations/matchengine/pkg/httputil"
	"github.com/unations/matchengine/pkg/logger"
	"github.com/unations/matchengine/pkg/redis"
)

// ErrUnavailable wraps every remote-estimator failure so callers can treat
// them uniformly as a degradation signal rather than a hard error.
var ErrUnavailable = errors.New("competition estimator unavailable")

// RemoteEstimator calls an external competition-analysis service, with a
// local request-rate cap and a shared estimate cache in front of it.
type RemoteEstimator struct {
	cfg     config.EstimatorConfig
	client  *httputil.Client
	limiter *rate.Limiter
	cache   *redis.Cache
	log     *logger.Logger
}

// NewRemoteEstimator creates the client. The rate limiter is local to the
// process; the estimate cache is shared through Redis when enabled.
func NewRemoteEstimator(cfg config.EstimatorConfig, client *httputil.Client, cache *redis.Cache, log *logger.Logger) *RemoteEstimator {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &RemoteEstimator{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		cache:   cache,
		log:     log,
	}
}

// estimateRequest is the wire request for the estimation service.
type estimateRequest struct {
	OpportunityID  string   `json:"opportunity_id"`
	Industries     []string `json:"industries"`
	Region         string   `json:"region"`
	ValueMidpoint  float64  `json:"value_midpoint"`
	CandidateScore float64  `json:"candidate_score"`
}

// EstimateCompetition returns the service's landscape estimate for one
// opportunity, cached per opportunity and ten-point score band.
func (e *RemoteEstimator) EstimateCompetition(ctx context.Context, opp *contracts.Opportunity, candidateScore float64) (*contracts.CompetitiveAnalysis, error) {
	key := redis.EstimateKey(opp.ID, int(candidateScore)/10)

	var cached contracts.CompetitiveAnalysis
	if found, err := e.cache.Get(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req := estimateRequest{
		OpportunityID:  opp.ID,
		Industries:     opp.Industries,
		Region:         opp.Location.Region,
		ValueMidpoint:  opp.Value.Midpoint(),
		CandidateScore: candidateScore,
	}

	headers := map[string]string{}
	if e.cfg.APIKey != "" {
		headers["X-API-Key"] = e.cfg.APIKey
	}

	resp, err := e.client.PostJSONWithHeaders(ctx, e.cfg.BaseURL+"/v1/estimates", req, headers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var analysis contracts.CompetitiveAnalysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}

	if err := e.cache.Set(ctx, key, analysis, redis.TTLMedium); err != nil {
		e.log.WithError(err).Warn("Failed to cache competition estimate")
	}

	return &analysis, nil
}
