// Package service implements the stake ledger and reward accrual engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kr8tiv/platform-core/internal/metrics"
	apperrors "github.com/kr8tiv/platform-core/pkg/app/errors"
	"github.com/kr8tiv/platform-core/pkg/staking"
	"github.com/kr8tiv/platform-core/pkg/stakingstore"
	"github.com/kr8tiv/platform-core/pkg/tier"
)

// rewardYearDays is the straight-line annualization window for the reward pool.
const rewardYearDays = 365

var (
	ErrStakeLocked         = errors.New("stake is locked until lock period ends")
	ErrInsufficientBalance = errors.New("insufficient staked balance")
	ErrNoRewardsToClaim    = errors.New("no rewards to claim")
	ErrPoolPaused          = errors.New("staking pool is paused")
)

// Store is the narrow data-access interface for the staking service.
// Defined here to keep the service decoupled from stakingstore implementation
// details.
type Store interface {
	GetStaker(ctx context.Context, wallet string) (*staking.Staker, error)
	CreateStaker(ctx context.Context, staker *staking.Staker) error
	UpdateStaker(ctx context.Context, staker *staking.Staker) error
	TotalWeightedStake(ctx context.Context) (uint64, error)
	RewardPoolBalance(ctx context.Context) (uint64, error)
	DeductFromRewardPool(ctx context.Context, amount uint64) error
}

// DiscountUpdater propagates a staker's tier to the dependent creator
// discount record. It is an external collaborator; failures are logged and do
// not roll back the stake mutation.
type DiscountUpdater interface {
	UpdateCreatorDiscount(ctx context.Context, wallet, tierName string, discountPercent int) error
}

// RewardSettler submits reward payouts on chain.
type RewardSettler interface {
	SettleReward(ctx context.Context, wallet string, amount uint64) (signature string, err error)
}

// Service defines the staking engine business logic.
type Service interface {
	Stake(ctx context.Context, req *staking.StakeRequest) (*staking.StakeResult, error)
	Unstake(ctx context.Context, req *staking.UnstakeRequest) (*staking.StakeResult, error)
	Pending(ctx context.Context, wallet string) (uint64, error)
	Claim(ctx context.Context, wallet string) (*staking.ClaimResult, error)
	SetPaused(paused bool)
}

type stakingService struct {
	store     Store
	calc      *tier.Calculator
	settler   RewardSettler
	discounts DiscountUpdater
	logger    *zap.Logger
	now       func() time.Time
	paused    atomic.Bool
}

// Option customizes service construction.
type Option func(*stakingService)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *stakingService) {
		s.now = now
	}
}

// NewService creates a new staking service.
func NewService(
	store Store,
	calc *tier.Calculator,
	settler RewardSettler,
	discounts DiscountUpdater,
	logger *zap.Logger,
	opts ...Option,
) Service {
	s := &stakingService{
		store:     store,
		calc:      calc,
		settler:   settler,
		discounts: discounts,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPaused toggles the pool pause flag. A paused pool rejects new deposits;
// withdrawals, reads and claims stay available.
func (s *stakingService) SetPaused(paused bool) {
	s.paused.Store(paused)
}

// Stake adds principal for a wallet, creating the staker on first deposit.
//
// Lock policy is extend-only: the later of the existing lock end and the
// requested lock end wins. The lock multiplier applies only to the amount
// added by this call, under this call's lock duration; previously staked
// principal keeps the weight it was assigned at deposit time.
//
// Stake is not idempotent. A caller that retries after a transient failure
// will double-count; retry-capable callers must deduplicate on their side.
func (s *stakingService) Stake(ctx context.Context, req *staking.StakeRequest) (res *staking.StakeResult, err error) {
	defer func() { recordOp("stake", err) }()

	if req.Amount == 0 {
		return nil, apperrors.BadRequestError(nil, "stake amount must be greater than zero")
	}
	if !s.calc.ValidLockDays(req.LockDays) {
		return nil, apperrors.BadRequestError(nil, fmt.Sprintf("lock duration %d days is not offered", req.LockDays))
	}
	if s.paused.Load() {
		return nil, apperrors.ConflictError(ErrPoolPaused, "staking pool is paused")
	}

	now := s.now()

	staker, err := s.store.GetStaker(ctx, req.Wallet)
	created := false
	if errors.Is(err, stakingstore.ErrStakerNotFound) {
		staker = staking.New(req.Wallet, now)
		created = true
	} else if err != nil {
		return nil, fmt.Errorf("failed to load staker: %w", err)
	}

	if req.LockDays > 0 {
		candidate := now.Add(time.Duration(req.LockDays) * 24 * time.Hour)
		if staker.LockEndTime == nil || candidate.After(*staker.LockEndTime) {
			staker.LockEndTime = &candidate
			staker.LockDurationDays = req.LockDays
		}
	}

	weightedDelta := s.calc.WeightedDelta(req.Amount, req.LockDays)
	staker.StakedAmount += req.Amount
	staker.WeightedStake += weightedDelta
	staker.UpdatedAt = now

	newTier := s.calc.TierOf(staker.StakedAmount)
	staker.Tier = newTier.Name

	if created {
		err = s.store.CreateStaker(ctx, staker)
	} else {
		err = s.store.UpdateStaker(ctx, staker)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save staker: %w", err)
	}

	if err := s.discounts.UpdateCreatorDiscount(ctx, staker.Wallet, newTier.Name, newTier.DiscountPercent); err != nil {
		s.logger.Warn("Failed to propagate tier to creator discount",
			zap.String("wallet", staker.Wallet),
			zap.String("tier", newTier.Name),
			zap.Error(err))
	}

	s.logger.Info("Stake recorded",
		zap.String("wallet", staker.Wallet),
		zap.Uint64("amount", req.Amount),
		zap.Int("lock_days", req.LockDays),
		zap.Uint64("staked_amount", staker.StakedAmount),
		zap.Uint64("weighted_stake", staker.WeightedStake),
		zap.String("tier", staker.Tier))

	return stakeResult(staker), nil
}

// Unstake withdraws principal. An active lock blocks any withdrawal, full or
// partial. The weighted stake is reduced proportionally to the withdrawn
// share; this does not track which deposit's multiplier leaves and so drifts
// by rounding across many partial unstakes. Pausing the pool does not block
// withdrawals; principal is never trapped.
func (s *stakingService) Unstake(ctx context.Context, req *staking.UnstakeRequest) (res *staking.StakeResult, err error) {
	defer func() { recordOp("unstake", err) }()

	if req.Amount == 0 {
		return nil, apperrors.BadRequestError(nil, "unstake amount must be greater than zero")
	}

	staker, err := s.store.GetStaker(ctx, req.Wallet)
	if errors.Is(err, stakingstore.ErrStakerNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "staker not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load staker: %w", err)
	}

	now := s.now()
	if staker.Locked(now) {
		return nil, apperrors.LockedError(ErrStakeLocked, "stake is locked")
	}
	if req.Amount > staker.StakedAmount {
		return nil, apperrors.ConflictError(ErrInsufficientBalance, "insufficient staked balance")
	}

	staker.WeightedStake -= proportionalShare(staker.WeightedStake, req.Amount, staker.StakedAmount)
	staker.StakedAmount -= req.Amount
	if staker.StakedAmount == 0 {
		staker.LockEndTime = nil
		staker.LockDurationDays = 0
	}
	staker.Tier = s.calc.TierOf(staker.StakedAmount).Name
	staker.UpdatedAt = now

	if err := s.store.UpdateStaker(ctx, staker); err != nil {
		return nil, fmt.Errorf("failed to save staker: %w", err)
	}

	s.logger.Info("Unstake recorded",
		zap.String("wallet", staker.Wallet),
		zap.Uint64("amount", req.Amount),
		zap.Uint64("staked_amount", staker.StakedAmount),
		zap.Uint64("weighted_stake", staker.WeightedStake),
		zap.String("tier", staker.Tier))

	return stakeResult(staker), nil
}

// Pending computes the wallet's claimable reward as a point-in-time snapshot:
// the reward pool balance and the weighted-stake share are read at call time
// and are not integrated over the elapsed window. This mirrors the platform's
// accrual contract and is intentional.
//
//	pending = floor(pool/365 x days x weighted / totalWeighted)
func (s *stakingService) Pending(ctx context.Context, wallet string) (uint64, error) {
	staker, err := s.store.GetStaker(ctx, wallet)
	if errors.Is(err, stakingstore.ErrStakerNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load staker: %w", err)
	}
	return s.pendingFor(ctx, staker)
}

func (s *stakingService) pendingFor(ctx context.Context, staker *staking.Staker) (uint64, error) {
	if staker.StakedAmount == 0 || staker.WeightedStake == 0 {
		return 0, nil
	}

	totalWeighted, err := s.store.TotalWeightedStake(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read total weighted stake: %w", err)
	}
	if totalWeighted == 0 {
		return 0, nil
	}

	pool, err := s.store.RewardPoolBalance(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read reward pool: %w", err)
	}

	since := staker.StakeStartTime
	if staker.LastClaimTime != nil {
		since = *staker.LastClaimTime
	}
	days := int64(s.now().Sub(since) / (24 * time.Hour))
	if days <= 0 {
		return 0, nil
	}

	dailyRate := pool / rewardYearDays

	// floor(dailyRate x days x weighted / totalWeighted), in big.Int because
	// the triple product can exceed 64 bits.
	num := new(big.Int).SetUint64(dailyRate)
	num.Mul(num, big.NewInt(days))
	num.Mul(num, new(big.Int).SetUint64(staker.WeightedStake))
	num.Div(num, new(big.Int).SetUint64(totalWeighted))
	if !num.IsUint64() {
		return 0, fmt.Errorf("pending reward overflows uint64 for wallet %s", staker.Wallet)
	}
	return num.Uint64(), nil
}

// Claim settles the wallet's pending reward through the chain executor and
// folds it into the claimed total.
func (s *stakingService) Claim(ctx context.Context, wallet string) (res *staking.ClaimResult, err error) {
	defer func() { recordOp("claim", err) }()

	staker, err := s.store.GetStaker(ctx, wallet)
	if errors.Is(err, stakingstore.ErrStakerNotFound) {
		return nil, apperrors.ConflictError(ErrNoRewardsToClaim, "no rewards to claim")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load staker: %w", err)
	}

	pending, err := s.pendingFor(ctx, staker)
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		return nil, apperrors.ConflictError(ErrNoRewardsToClaim, "no rewards to claim")
	}

	signature, err := s.settler.SettleReward(ctx, wallet, pending)
	if err != nil {
		return nil, apperrors.DependencyFailureError(err, "reward settlement failed")
	}

	if err := s.store.DeductFromRewardPool(ctx, pending); err != nil {
		// The payout already settled; an undrained pool only overstates
		// future accrual, so log and move on.
		s.logger.Warn("Failed to deduct claim from reward pool",
			zap.String("wallet", wallet),
			zap.Uint64("amount", pending),
			zap.Error(err))
	}

	now := s.now()
	staker.TotalRewardsClaimed += pending
	staker.LastClaimTime = &now
	staker.UpdatedAt = now
	if err := s.store.UpdateStaker(ctx, staker); err != nil {
		// The payout went out; surface the bookkeeping failure loudly.
		s.logger.Error("Reward settled on chain but staker update failed",
			zap.String("wallet", wallet),
			zap.Uint64("amount", pending),
			zap.String("signature", signature),
			zap.Error(err))
		return nil, fmt.Errorf("failed to record claim: %w", err)
	}

	s.logger.Info("Rewards claimed",
		zap.String("wallet", wallet),
		zap.Uint64("amount", pending),
		zap.String("signature", signature))

	return &staking.ClaimResult{
		Wallet:              wallet,
		Amount:              pending,
		TotalRewardsClaimed: staker.TotalRewardsClaimed,
		Signature:           signature,
	}, nil
}

func stakeResult(staker *staking.Staker) *staking.StakeResult {
	return &staking.StakeResult{
		Wallet:        staker.Wallet,
		StakedAmount:  staker.StakedAmount,
		WeightedStake: staker.WeightedStake,
		Tier:          staker.Tier,
		LockEndTime:   staker.LockEndTime,
	}
}

// recordOp counts a staking operation outcome.
func recordOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.StakingOpsTotal.WithLabelValues(op, status).Inc()
}

// proportionalShare computes floor(weighted x amount / staked) in big.Int
// because the product can exceed 64 bits.
func proportionalShare(weighted, amount, staked uint64) uint64 {
	if staked == 0 {
		return 0
	}
	n := new(big.Int).SetUint64(weighted)
	n.Mul(n, new(big.Int).SetUint64(amount))
	n.Div(n, new(big.Int).SetUint64(staked))
	return n.Uint64()
}
