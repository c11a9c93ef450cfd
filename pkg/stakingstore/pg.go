package stakingstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/kr8tiv/platform-core/pkg/staking"
)

// rewardPoolRowID is the fixed primary key of the single reward pool row.
const rewardPoolRowID = 1

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the staking store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateStaker(ctx context.Context, st *staking.Staker) error {
	dao := toStakerDao(st)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create staker: %w", err)
	}

	return nil
}

func (s *pgStore) GetStaker(ctx context.Context, wallet string) (*staking.Staker, error) {
	dao := new(StakerDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("wallet = ?", wallet).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStakerNotFound
		}
		return nil, fmt.Errorf("failed to get staker: %w", err)
	}

	return toStaker(dao), nil
}

func (s *pgStore) UpdateStaker(ctx context.Context, st *staking.Staker) error {
	dao := toStakerDao(st)

	res, err := s.db.NewUpdate().
		Model(dao).
		Column("staked_amount", "weighted_stake", "lock_end_time", "lock_duration_days",
			"tier", "total_rewards_claimed", "last_claim_time", "updated_at").
		Where("wallet = ?", st.Wallet).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update staker: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrStakerNotFound
	}

	return nil
}

func (s *pgStore) ListStakers(ctx context.Context) ([]*staking.Staker, error) {
	var daos []StakerDao
	err := s.db.NewSelect().
		Model(&daos).
		Order("staked_amount DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stakers: %w", err)
	}
	stakers := make([]*staking.Staker, len(daos))
	for i := range daos {
		stakers[i] = toStaker(&daos[i])
	}
	return stakers, nil
}

func (s *pgStore) TotalWeightedStake(ctx context.Context) (uint64, error) {
	var total int64
	err := s.db.NewSelect().
		Model((*StakerDao)(nil)).
		ColumnExpr("COALESCE(SUM(weighted_stake), 0)").
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum weighted stake: %w", err)
	}
	return uint64(total), nil
}

func (s *pgStore) TotalStaked(ctx context.Context) (uint64, error) {
	var total int64
	err := s.db.NewSelect().
		Model((*StakerDao)(nil)).
		ColumnExpr("COALESCE(SUM(staked_amount), 0)").
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum staked amount: %w", err)
	}
	return uint64(total), nil
}

func (s *pgStore) RewardPoolBalance(ctx context.Context) (uint64, error) {
	dao := new(RewardPoolDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", rewardPoolRowID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get reward pool balance: %w", err)
	}
	return uint64(dao.Balance), nil
}

func (s *pgStore) AddToRewardPool(ctx context.Context, amount uint64) error {
	// Upsert so the pool row does not need seeding.
	_, err := s.db.NewInsert().
		Model(&RewardPoolDao{ID: rewardPoolRowID, Balance: int64(amount)}).
		On("CONFLICT (id) DO UPDATE").
		Set("balance = reward_pool.balance + EXCLUDED.balance").
		Set("updated_at = NOW()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add to reward pool: %w", err)
	}
	return nil
}

func (s *pgStore) DeductFromRewardPool(ctx context.Context, amount uint64) error {
	res, err := s.db.NewUpdate().
		Model((*RewardPoolDao)(nil)).
		Set("balance = balance - ?", int64(amount)).
		Set("updated_at = NOW()").
		Where("id = ? AND balance >= ?", rewardPoolRowID, int64(amount)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to deduct from reward pool: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("reward pool balance below %d", amount)
	}
	return nil
}
