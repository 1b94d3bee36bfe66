// Package metrics exports ledger activity to Prometheus. Ledger counters are
// fed from committed events; HTTP counters come from a chi middleware.
package metrics

import (
	"context"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

const namespace = "reward_ledger"

type Metrics struct {
	CampaignsCreated   prometheus.Counter
	CampaignsShutdown  prometheus.Counter
	StatusUpdates      *prometheus.CounterVec
	DistributionRounds prometheus.Counter
	DistributedAmount  *prometheus.CounterVec
	RoundingDust       *prometheus.GaugeVec
	Claims             prometheus.Counter
	ClaimedAmount      *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CampaignsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaigns_created_total",
			Help:      "Number of campaigns created",
		}),
		CampaignsShutdown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaigns_shutdown_total",
			Help:      "Number of campaigns shut down by their creator",
		}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaign_status_updates_total",
			Help:      "Number of campaign activation changes",
		}, []string{"is_active"}),
		DistributionRounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "distribution_rounds_total",
			Help:      "Number of committed distribution rounds",
		}),
		DistributedAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "distributed_amount_total",
			Help:      "Reward base units accrued to participants",
		}, []string{"campaign_id"}),
		RoundingDust: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rounding_dust",
			Help:      "Daily budget left undistributed by floor rounding in the last round",
		}, []string{"campaign_id"}),
		Claims: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_total",
			Help:      "Number of reward payouts",
		}),
		ClaimedAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claimed_amount_total",
			Help:      "Reward base units paid out",
		}, []string{"reward_token"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	reg.MustRegister(
		m.CampaignsCreated,
		m.CampaignsShutdown,
		m.StatusUpdates,
		m.DistributionRounds,
		m.DistributedAmount,
		m.RoundingDust,
		m.Claims,
		m.ClaimedAmount,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

var _ port.EventPublisher = (*Metrics)(nil)

// Publish updates the ledger collectors for evt. It never fails.
func (m *Metrics) Publish(_ context.Context, evt domain.Event) error {
	campaign := strconv.FormatUint(uint64(evt.CampaignID), 10)
	switch evt.Type {
	case domain.EventCampaignCreated:
		m.CampaignsCreated.Inc()
	case domain.EventCampaignShutdown:
		m.CampaignsShutdown.Inc()
	case domain.EventCampaignStatusUpdated:
		m.StatusUpdates.WithLabelValues(evt.Attr("is_active")).Inc()
	case domain.EventRewardsDistributed:
		m.DistributionRounds.Inc()
		m.DistributedAmount.WithLabelValues(campaign).Add(amount(evt.Attr("total")))
		m.RoundingDust.WithLabelValues(campaign).Set(amount(evt.Attr("dust")))
	case domain.EventRewardsClaimed:
		m.Claims.Inc()
		m.ClaimedAmount.WithLabelValues(evt.Attr("reward_token")).Add(amount(evt.Attr("amount")))
	}
	return nil
}

// amount converts a decimal base-unit string to float64. Precision beyond
// 2^53 is lost.
func amount(s string) float64 {
	v, ok := new(big.Float).SetString(s)
	if !ok || v.Sign() < 0 {
		return 0
	}
	f, _ := v.Float64()
	return f
}

// Middleware returns a chi middleware that records HTTP metrics.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
