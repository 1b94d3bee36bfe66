package metrics

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reward-ledger/internal/core/domain"
)

func TestPublishUpdatesCollectors(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	report := domain.DistributionReport{
		CampaignID:       3,
		Allocations:      []domain.Allocation{{User: "GALICE", Balance: big.NewInt(1), Reward: big.NewInt(6)}},
		TotalDistributed: big.NewInt(6),
		Dust:             big.NewInt(4),
	}
	require.NoError(t, m.Publish(ctx, domain.RewardsDistributedEvent(report)))
	require.NoError(t, m.Publish(ctx, domain.RewardsClaimedEvent(3, "GALICE", "CTOKEN", big.NewInt(6))))
	require.NoError(t, m.Publish(ctx, domain.CampaignStatusEvent(3, false, "GADMIN")))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DistributionRounds))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.DistributedAmount.WithLabelValues("3")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RoundingDust.WithLabelValues("3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Claims))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.ClaimedAmount.WithLabelValues("CTOKEN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusUpdates.WithLabelValues("false")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/campaigns/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campaigns/9", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/campaigns/{id}", "404")))
}
