// Package staking holds the domain model for the weighted-staking engine.
package staking

import "time"

// Staker represents the domain model for a staking account, keyed by wallet.
// Records are created on first stake and never hard-deleted; a fully unstaked
// account stays at StakedAmount 0.
type Staker struct {
	Wallet string
	// StakedAmount is the raw principal in base units.
	StakedAmount uint64
	// WeightedStake is the principal scaled by per-deposit lock multipliers.
	// It determines the staker's share of the reward pool.
	WeightedStake uint64
	// LockEndTime is set iff an active, unexpired lock exists.
	LockEndTime      *time.Time
	LockDurationDays int
	// Tier is derived from StakedAmount and recomputed on every mutation;
	// it is never authoritative on its own.
	Tier                string
	TotalRewardsClaimed uint64
	LastClaimTime       *time.Time
	StakeStartTime      time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// New creates a Staker for a wallet seeing its first deposit.
func New(wallet string, now time.Time) *Staker {
	return &Staker{
		Wallet:         wallet,
		StakeStartTime: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Locked reports whether an active lock blocks unstaking at the given time.
func (s *Staker) Locked(now time.Time) bool {
	return s.LockEndTime != nil && s.LockEndTime.After(now)
}

// StakeRequest is a request to add principal, optionally under a lock.
type StakeRequest struct {
	Wallet   string `json:"wallet" validate:"required"`
	Amount   uint64 `json:"amount" validate:"required,gt=0"`
	LockDays int    `json:"lock_days" validate:"min=0,max=365"`
}

// UnstakeRequest is a request to withdraw principal.
type UnstakeRequest struct {
	Wallet string `json:"wallet" validate:"required"`
	Amount uint64 `json:"amount" validate:"required,gt=0"`
}

// StakeResult reports the staker totals after a stake or unstake.
type StakeResult struct {
	Wallet        string     `json:"wallet"`
	StakedAmount  uint64     `json:"staked_amount"`
	WeightedStake uint64     `json:"weighted_stake"`
	Tier          string     `json:"tier"`
	LockEndTime   *time.Time `json:"lock_end_time,omitzero"`
}

// ClaimResult reports a settled reward claim.
type ClaimResult struct {
	Wallet              string `json:"wallet"`
	Amount              uint64 `json:"amount"`
	TotalRewardsClaimed uint64 `json:"total_rewards_claimed"`
	Signature           string `json:"signature,omitzero"`
}
