package stakingstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/kr8tiv/platform-core/pkg/staking"
)

// StakerDao is a data access object that maps directly to the 'stakers' table in PostgreSQL.
// Amounts are stored as signed bigints; base-unit balances stay far below the
// int64 ceiling.
type StakerDao struct {
	bun.BaseModel       `bun:"table:stakers,alias:s"`
	ID                  int64      `bun:"id,pk,autoincrement"`
	Wallet              string     `bun:"wallet,unique,notnull,type:varchar(64)"`
	StakedAmount        int64      `bun:"staked_amount,notnull,default:0"`
	WeightedStake       int64      `bun:"weighted_stake,notnull,default:0"`
	LockEndTime         *time.Time `bun:"lock_end_time"`
	LockDurationDays    int        `bun:"lock_duration_days,notnull,default:0"`
	Tier                string     `bun:"tier,notnull,type:varchar(16)"`
	TotalRewardsClaimed int64      `bun:"total_rewards_claimed,notnull,default:0"`
	LastClaimTime       *time.Time `bun:"last_claim_time"`
	StakeStartTime      time.Time  `bun:"stake_start_time,notnull"`
	CreatedAt           time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt           time.Time  `bun:"updated_at,nullzero,default:current_timestamp"`
}

// toStakerDao converts a staking.Staker to StakerDao.
func toStakerDao(st *staking.Staker) *StakerDao {
	dao := &StakerDao{
		Wallet:              st.Wallet,
		StakedAmount:        int64(st.StakedAmount),
		WeightedStake:       int64(st.WeightedStake),
		LockDurationDays:    st.LockDurationDays,
		Tier:                st.Tier,
		TotalRewardsClaimed: int64(st.TotalRewardsClaimed),
		StakeStartTime:      st.StakeStartTime,
		CreatedAt:           st.CreatedAt,
		UpdatedAt:           st.UpdatedAt,
	}

	if st.LockEndTime != nil {
		dao.LockEndTime = st.LockEndTime
	}
	if st.LastClaimTime != nil {
		dao.LastClaimTime = st.LastClaimTime
	}

	return dao
}

// toStaker converts a StakerDao to staking.Staker.
func toStaker(dao *StakerDao) *staking.Staker {
	st := &staking.Staker{
		Wallet:              dao.Wallet,
		StakedAmount:        uint64(dao.StakedAmount),
		WeightedStake:       uint64(dao.WeightedStake),
		LockDurationDays:    dao.LockDurationDays,
		Tier:                dao.Tier,
		TotalRewardsClaimed: uint64(dao.TotalRewardsClaimed),
		StakeStartTime:      dao.StakeStartTime,
		CreatedAt:           dao.CreatedAt,
		UpdatedAt:           dao.UpdatedAt,
	}

	if dao.LockEndTime != nil {
		st.LockEndTime = dao.LockEndTime
	}
	if dao.LastClaimTime != nil {
		st.LastClaimTime = dao.LastClaimTime
	}

	return st
}

// RewardPoolDao is a data access object for the single-row 'reward_pool' table.
type RewardPoolDao struct {
	bun.BaseModel `bun:"table:reward_pool,alias:rp"`
	ID            int64     `bun:"id,pk"`
	Balance       int64     `bun:"balance,notnull,default:0"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}
