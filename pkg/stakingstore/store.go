package stakingstore

import (
	"context"
	"errors"

	"github.com/kr8tiv/platform-core/pkg/staking"
)

// ErrStakerNotFound is returned when a staker lookup finds no matching record.
var ErrStakerNotFound = errors.New("staker not found")

// RewardPoolStore defines the reward pool balance operations.
// The pool is funded by the dividends leg of fee automation and drawn down by
// reward claims.
type RewardPoolStore interface {
	RewardPoolBalance(ctx context.Context) (uint64, error)
	AddToRewardPool(ctx context.Context, amount uint64) error
	DeductFromRewardPool(ctx context.Context, amount uint64) error
}

// Store defines the interface for staking data persistence
type Store interface {
	RewardPoolStore
	CreateStaker(ctx context.Context, staker *staking.Staker) error
	GetStaker(ctx context.Context, wallet string) (*staking.Staker, error)
	UpdateStaker(ctx context.Context, staker *staking.Staker) error
	ListStakers(ctx context.Context) ([]*staking.Staker, error)
	TotalWeightedStake(ctx context.Context) (uint64, error)
	TotalStaked(ctx context.Context) (uint64, error)
}
