// Package tier maps staked principal to discount tiers and lock durations to
// weight multipliers. Both lookups are pure and total.
package tier

import (
	"fmt"
	"sort"
)

// BpsDenominator is the basis-point scale used for all multiplier math (10000 = 1x).
const BpsDenominator = 10000

// TierNone is the name of the zero-threshold tier every table must start with.
const TierNone = "NONE"

// Tier is a named staking bracket granting a platform fee discount.
type Tier struct {
	Name string
	// MinStake is the inclusive principal threshold in base units.
	MinStake uint64
	// DiscountPercent is the platform fee discount granted to stakers in this bracket.
	DiscountPercent int
	// PlatformFeeBps is the platform fee charged to creators in this bracket.
	PlatformFeeBps int
	// RewardMultiplierBps scales reward accrual for this bracket (10000 = 1x).
	RewardMultiplierBps uint64
}

// LockMultiplier maps a minimum lock duration to a stake weight multiplier.
type LockMultiplier struct {
	MinDays       int
	MultiplierBps uint64
}

// Calculator performs tier and multiplier lookups against validated tables.
type Calculator struct {
	tiers       []Tier
	multipliers []LockMultiplier
}

// NewCalculator validates the tables and returns a Calculator over them.
// Tiers must be strictly ascending by MinStake with the NONE tier at zero;
// lock multipliers must be strictly ascending by MinDays starting at zero
// with non-decreasing multipliers of at least 1x.
func NewCalculator(tiers []Tier, multipliers []LockMultiplier) (*Calculator, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("tier table is empty")
	}
	if tiers[0].MinStake != 0 || tiers[0].Name != TierNone {
		return nil, fmt.Errorf("tier table must start with %s at min_stake 0", TierNone)
	}
	for i, t := range tiers {
		if t.Name == "" {
			return nil, fmt.Errorf("tier %d has no name", i)
		}
		if t.DiscountPercent < 0 || t.DiscountPercent > 100 {
			return nil, fmt.Errorf("tier %s: discount_percent %d out of range", t.Name, t.DiscountPercent)
		}
		if t.PlatformFeeBps < 0 || t.PlatformFeeBps > BpsDenominator {
			return nil, fmt.Errorf("tier %s: platform_fee_bps %d out of range", t.Name, t.PlatformFeeBps)
		}
		if i > 0 && t.MinStake <= tiers[i-1].MinStake {
			return nil, fmt.Errorf("tier %s: min_stake must ascend strictly", t.Name)
		}
	}

	if len(multipliers) == 0 {
		return nil, fmt.Errorf("lock multiplier table is empty")
	}
	if multipliers[0].MinDays != 0 {
		return nil, fmt.Errorf("lock multiplier table must start at min_days 0")
	}
	for i, m := range multipliers {
		if m.MultiplierBps < BpsDenominator {
			return nil, fmt.Errorf("lock multiplier at %d days is below 1x", m.MinDays)
		}
		if i > 0 {
			if m.MinDays <= multipliers[i-1].MinDays {
				return nil, fmt.Errorf("lock multiplier min_days must ascend strictly")
			}
			if m.MultiplierBps < multipliers[i-1].MultiplierBps {
				return nil, fmt.Errorf("lock multipliers must be non-decreasing")
			}
		}
	}

	c := &Calculator{
		tiers:       make([]Tier, len(tiers)),
		multipliers: make([]LockMultiplier, len(multipliers)),
	}
	copy(c.tiers, tiers)
	copy(c.multipliers, multipliers)
	return c, nil
}

// Default returns a Calculator over the built-in tables for a 9-decimal token.
func Default() *Calculator {
	c, err := NewCalculator(DefaultTiers(), DefaultLockMultipliers())
	if err != nil {
		// The built-in tables are compile-time constants; failing to validate
		// them is a programming error.
		panic(err)
	}
	return c
}

// DefaultTiers returns the built-in staking tier table.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: TierNone, MinStake: 0, DiscountPercent: 0, PlatformFeeBps: 500, RewardMultiplierBps: 10000},
		{Name: "BRONZE", MinStake: 1_000_000_000, DiscountPercent: 10, PlatformFeeBps: 400, RewardMultiplierBps: 11000},
		{Name: "SILVER", MinStake: 10_000_000_000, DiscountPercent: 25, PlatformFeeBps: 200, RewardMultiplierBps: 12500},
		{Name: "GOLD", MinStake: 100_000_000_000, DiscountPercent: 50, PlatformFeeBps: 100, RewardMultiplierBps: 15000},
		{Name: "PLATINUM", MinStake: 1_000_000_000_000, DiscountPercent: 75, PlatformFeeBps: 0, RewardMultiplierBps: 20000},
	}
}

// DefaultLockMultipliers returns the built-in lock duration table.
// The allowed lock durations are 0, 30, 90, 180 and 365 days.
func DefaultLockMultipliers() []LockMultiplier {
	return []LockMultiplier{
		{MinDays: 0, MultiplierBps: 10000},   // 1.0x
		{MinDays: 30, MultiplierBps: 12000},  // 1.2x
		{MinDays: 90, MultiplierBps: 15000},  // 1.5x
		{MinDays: 180, MultiplierBps: 20000}, // 2.0x
		{MinDays: 365, MultiplierBps: 30000}, // 3.0x
	}
}

// TierOf returns the highest tier whose MinStake is at or below amount.
func (c *Calculator) TierOf(amount uint64) Tier {
	idx := sort.Search(len(c.tiers), func(i int) bool {
		return c.tiers[i].MinStake > amount
	})
	// idx is the first tier above amount; the one before it applies.
	// idx is never 0 because the NONE tier sits at MinStake 0.
	return c.tiers[idx-1]
}

// MultiplierOf returns the weight multiplier in basis points for the largest
// configured threshold at or below lockDays, defaulting to 1x.
func (c *Calculator) MultiplierOf(lockDays int) uint64 {
	mult := uint64(BpsDenominator)
	for _, m := range c.multipliers {
		if m.MinDays > lockDays {
			break
		}
		mult = m.MultiplierBps
	}
	return mult
}

// WeightedDelta returns floor(amount x multiplier) for the given lock duration.
func (c *Calculator) WeightedDelta(amount uint64, lockDays int) uint64 {
	return applyBps(amount, c.MultiplierOf(lockDays))
}

// ValidLockDays reports whether lockDays is one of the configured lock
// durations. Stake requests are restricted to the fixed set of thresholds.
func (c *Calculator) ValidLockDays(lockDays int) bool {
	for _, m := range c.multipliers {
		if m.MinDays == lockDays {
			return true
		}
	}
	return false
}

// Tiers returns a copy of the tier table, ascending by MinStake.
func (c *Calculator) Tiers() []Tier {
	out := make([]Tier, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// applyBps computes floor(amount*bps/10000) without overflowing uint64.
// Splitting amount at the denominator keeps every intermediate product small:
// floor((q*10000+r)*bps/10000) = q*bps + floor(r*bps/10000) for r < 10000.
func applyBps(amount, bps uint64) uint64 {
	q := amount / BpsDenominator
	r := amount % BpsDenominator
	return q*bps + r*bps/BpsDenominator
}
