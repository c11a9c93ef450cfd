package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AutomationCyclesTotal counts full automation cycle runs by outcome
	AutomationCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_automation_cycles_total",
			Help: "Total number of automation cycle runs",
		},
		[]string{"outcome"},
	)

	// AutomationJobsTotal counts automation jobs by type, trigger and status
	AutomationJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_automation_jobs_total",
			Help: "Total number of automation jobs",
		},
		[]string{"job_type", "trigger", "status"},
	)

	// AutomationStepsTotal counts individual cycle steps by step and status
	AutomationStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_automation_steps_total",
			Help: "Total number of automation cycle steps executed",
		},
		[]string{"step", "status"},
	)

	// AutomationJobDuration tracks per-token job processing time
	AutomationJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platform_automation_job_duration_seconds",
			Help:    "Automation job processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job_type"},
	)

	// FeesClaimedAmount tracks claimed fee amounts in base units
	FeesClaimedAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "platform_fees_claimed_amount",
			Help:    "Amount of fees claimed per job in base units",
			Buckets: prometheus.ExponentialBuckets(1e6, 10, 10),
		},
	)

	// StakingOpsTotal counts staking operations by op and status
	StakingOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_staking_ops_total",
			Help: "Total number of staking operations",
		},
		[]string{"op", "status"},
	)

	// TokensGraduatedTotal counts bonding curve graduations
	TokensGraduatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platform_tokens_graduated_total",
			Help: "Total number of tokens graduated off the bonding curve",
		},
	)

	// ScheduledJobRuns counts scheduler-fired jobs by name and outcome
	ScheduledJobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_scheduled_job_runs_total",
			Help: "Total number of scheduler-fired job runs",
		},
		[]string{"job", "outcome"},
	)

	// ChainRequestsTotal counts Solana RPC submissions by operation and status
	ChainRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_chain_requests_total",
			Help: "Total number of chain transaction submissions",
		},
		[]string{"operation", "status"},
	)
)
