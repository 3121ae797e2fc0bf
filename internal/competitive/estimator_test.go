package competitive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/pkg/config"
	"github.com/unations/matchengine/pkg/httputil"
	"github.com/unations/matchengine/pkg/logger"
	"github.com/unations/matchengine/pkg/redis"
)

func newRemote(t *testing.T, baseURL string) *RemoteEstimator {
	t.Helper()

	cfg := &config.Config{Env: "test", LogLevel: "error"}
	log := logger.NewNop()
	client := httputil.NewWithTimeout(cfg, log, 0).DisableRetry()

	redisClient, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)

	estCfg := config.EstimatorConfig{
		BaseURL:           baseURL,
		APIKey:            "secret",
		RequestsPerSecond: 100,
	}
	return NewRemoteEstimator(estCfg, client, redis.NewCache(redisClient, "test"), log)
}

func estimatorOpportunity() *contracts.Opportunity {
	return &contracts.Opportunity{
		ID:         "opp-7",
		Industries: []string{"construction"},
		Location:   contracts.Location{Region: "Manitoba"},
		Value:      contracts.ValueRange{Min: 400_000, Max: 600_000},
	}
}

func TestRemoteEstimator_Success(t *testing.T) {
	var gotKey string
	var gotReq map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		json.NewEncoder(w).Encode(contracts.CompetitiveAnalysis{
			EstimatedCompetitors: 6,
			StrongerCompetitors:  2,
			Advantages:           []string{"regional track record"},
		})
	}))
	defer server.Close()

	e := newRemote(t, server.URL)
	analysis, err := e.EstimateCompetition(context.Background(), estimatorOpportunity(), 72)
	require.NoError(t, err)

	assert.Equal(t, 6, analysis.EstimatedCompetitors)
	assert.Equal(t, 2, analysis.StrongerCompetitors)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "opp-7", gotReq["opportunity_id"])
	assert.Equal(t, 500_000.0, gotReq["value_midpoint"])
}

func TestRemoteEstimator_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e := newRemote(t, server.URL)
	_, err := e.EstimateCompetition(context.Background(), estimatorOpportunity(), 72)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestRemoteEstimator_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Refuse connections from the start.

	e := newRemote(t, server.URL)
	_, err := e.EstimateCompetition(context.Background(), estimatorOpportunity(), 72)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestRemoteEstimator_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	e := newRemote(t, server.URL)
	_, err := e.EstimateCompetition(context.Background(), estimatorOpportunity(), 72)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}
