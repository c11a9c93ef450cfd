package jobdb

import (
	"time"
)

// JobStatus represents the current state of an automation job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobType identifies which automation operation a job performs
type JobType string

const (
	JobTypeClaimFees    JobType = "claim_fees"
	JobTypeBurn         JobType = "burn"
	JobTypeAddLp        JobType = "add_lp"
	JobTypePayDividends JobType = "pay_dividends"
	JobTypeFullCycle    JobType = "full_cycle"
)

// TriggerType records what started a job
type TriggerType string

const (
	TriggerScheduled TriggerType = "scheduled"
	TriggerManual    TriggerType = "manual"
)

// AutomationJob represents one fee automation run for a token
type AutomationJob struct {
	ID          string      `db:"id"`
	TokenMint   string      `db:"token_mint"`
	JobType     JobType     `db:"job_type"`
	TriggerType TriggerType `db:"trigger_type"`
	Status      JobStatus   `db:"status"`

	// Per-step amounts in base units, filled in as steps settle.
	FeesClaimed   uint64 `db:"fees_claimed"`
	TokensBurned  uint64 `db:"tokens_burned"`
	LpAdded       uint64 `db:"lp_added"`
	DividendsPaid uint64 `db:"dividends_paid"`

	// Transaction signatures per settled step.
	ClaimSignature     *string `db:"claim_signature"`
	BurnSignature      *string `db:"burn_signature"`
	LpSignature        *string `db:"lp_signature"`
	DividendsSignature *string `db:"dividends_signature"`

	ErrorMessage *string    `db:"error_message"`
	RetryCount   int        `db:"retry_count"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	StartedAt    *time.Time `db:"started_at"`
	CompletedAt  *time.Time `db:"completed_at"`
}
