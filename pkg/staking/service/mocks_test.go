package service

import (
	"context"
	"errors"

	"github.com/kr8tiv/platform-core/pkg/staking"
	"github.com/kr8tiv/platform-core/pkg/stakingstore"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	GetStakerFunc            func(ctx context.Context, wallet string) (*staking.Staker, error)
	CreateStakerFunc         func(ctx context.Context, staker *staking.Staker) error
	UpdateStakerFunc         func(ctx context.Context, staker *staking.Staker) error
	TotalWeightedStakeFunc   func(ctx context.Context) (uint64, error)
	RewardPoolBalanceFunc    func(ctx context.Context) (uint64, error)
	DeductFromRewardPoolFunc func(ctx context.Context, amount uint64) error
}

func (m *MockStore) GetStaker(ctx context.Context, wallet string) (*staking.Staker, error) {
	if m.GetStakerFunc != nil {
		return m.GetStakerFunc(ctx, wallet)
	}
	return nil, stakingstore.ErrStakerNotFound
}

func (m *MockStore) CreateStaker(ctx context.Context, staker *staking.Staker) error {
	if m.CreateStakerFunc != nil {
		return m.CreateStakerFunc(ctx, staker)
	}
	return nil
}

func (m *MockStore) UpdateStaker(ctx context.Context, staker *staking.Staker) error {
	if m.UpdateStakerFunc != nil {
		return m.UpdateStakerFunc(ctx, staker)
	}
	return nil
}

func (m *MockStore) TotalWeightedStake(ctx context.Context) (uint64, error) {
	if m.TotalWeightedStakeFunc != nil {
		return m.TotalWeightedStakeFunc(ctx)
	}
	return 0, nil
}

func (m *MockStore) RewardPoolBalance(ctx context.Context) (uint64, error) {
	if m.RewardPoolBalanceFunc != nil {
		return m.RewardPoolBalanceFunc(ctx)
	}
	return 0, nil
}

func (m *MockStore) DeductFromRewardPool(ctx context.Context, amount uint64) error {
	if m.DeductFromRewardPoolFunc != nil {
		return m.DeductFromRewardPoolFunc(ctx, amount)
	}
	return nil
}

// memStore is an in-memory Store for flows that need real read-back.
type memStore struct {
	stakers map[string]*staking.Staker
	pool    uint64
}

func newMemStore() *memStore {
	return &memStore{stakers: make(map[string]*staking.Staker)}
}

func (m *memStore) GetStaker(_ context.Context, wallet string) (*staking.Staker, error) {
	s, ok := m.stakers[wallet]
	if !ok {
		return nil, stakingstore.ErrStakerNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) CreateStaker(_ context.Context, staker *staking.Staker) error {
	cp := *staker
	m.stakers[staker.Wallet] = &cp
	return nil
}

func (m *memStore) UpdateStaker(_ context.Context, staker *staking.Staker) error {
	cp := *staker
	m.stakers[staker.Wallet] = &cp
	return nil
}

func (m *memStore) TotalWeightedStake(_ context.Context) (uint64, error) {
	var total uint64
	for _, s := range m.stakers {
		total += s.WeightedStake
	}
	return total, nil
}

func (m *memStore) RewardPoolBalance(_ context.Context) (uint64, error) {
	return m.pool, nil
}

func (m *memStore) DeductFromRewardPool(_ context.Context, amount uint64) error {
	if amount > m.pool {
		return errors.New("insufficient reward pool balance")
	}
	m.pool -= amount
	return nil
}

// MockDiscountUpdater is a mock implementation of DiscountUpdater
type MockDiscountUpdater struct {
	UpdateCreatorDiscountFunc func(ctx context.Context, wallet, tierName string, discountPercent int) error
	Calls                     []string
}

func (m *MockDiscountUpdater) UpdateCreatorDiscount(ctx context.Context, wallet, tierName string, discountPercent int) error {
	m.Calls = append(m.Calls, tierName)
	if m.UpdateCreatorDiscountFunc != nil {
		return m.UpdateCreatorDiscountFunc(ctx, wallet, tierName, discountPercent)
	}
	return nil
}

// MockRewardSettler is a mock implementation of RewardSettler
type MockRewardSettler struct {
	SettleRewardFunc func(ctx context.Context, wallet string, amount uint64) (string, error)
}

func (m *MockRewardSettler) SettleReward(ctx context.Context, wallet string, amount uint64) (string, error) {
	if m.SettleRewardFunc != nil {
		return m.SettleRewardFunc(ctx, wallet, amount)
	}
	return "sig-mock", nil
}
