package metrics

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type RewardsMetrics struct {
	deposits    prometheus.Counter
	assignments *prometheus.CounterVec
	claims      *prometheus.CounterVec
	claimErrors *prometheus.CounterVec
	poolBalance prometheus.Gauge
	distributed prometheus.Gauge
}

var (
	rewardsOnce     sync.Once
	rewardsRegistry *RewardsMetrics
)

func Rewards() *RewardsMetrics {
	rewardsOnce.Do(func() {
		rewardsRegistry = &RewardsMetrics{
			deposits: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "rewards_deposits_total",
				Help: "Count of successful pool deposits.",
			}),
			assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "rewards_assignments_total",
				Help: "Count of assigned grants by reward kind.",
			}, []string{"kind"}),
			claims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "rewards_claims_total",
				Help: "Count of successful claims by reward kind.",
			}, []string{"kind"}),
			claimErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "rewards_claim_errors_total",
				Help: "Count of rejected claims by error kind.",
			}, []string{"reason"}),
			poolBalance: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "rewards_pool_balance",
				Help: "Current undistributed pool balance.",
			}),
			distributed: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "rewards_distributed_total_amount",
				Help: "Cumulative amount paid out across all claims.",
			}),
		}
		prometheus.MustRegister(
			rewardsRegistry.deposits,
			rewardsRegistry.assignments,
			rewardsRegistry.claims,
			rewardsRegistry.claimErrors,
			rewardsRegistry.poolBalance,
			rewardsRegistry.distributed,
		)
	})
	return rewardsRegistry
}

func (m *RewardsMetrics) ObserveDeposit() {
	if m == nil {
		return
	}
	m.deposits.Inc()
}

func (m *RewardsMetrics) ObserveAssignment(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.assignments.WithLabelValues(kind).Inc()
}

func (m *RewardsMetrics) ObserveClaim(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.claims.WithLabelValues(kind).Inc()
}

func (m *RewardsMetrics) ObserveClaimError(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.claimErrors.WithLabelValues(reason).Inc()
}

// UpdatePool refreshes the balance gauges from a committed pool snapshot.
func (m *RewardsMetrics) UpdatePool(balance, distributed *big.Int) {
	if m == nil {
		return
	}
	if balance != nil {
		value, _ := new(big.Float).SetInt(balance).Float64()
		m.poolBalance.Set(value)
	}
	if distributed != nil {
		value, _ := new(big.Float).SetInt(distributed).Float64()
		m.distributed.Set(value)
	}
}
