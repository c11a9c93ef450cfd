package tier

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// tablesFile is the on-disk YAML shape for tier and multiplier overrides.
// Multipliers are written as decimal strings ("1.5") and converted to basis
// points here so that floating point never enters the weight math.
type tablesFile struct {
	Tiers []struct {
		Name                string `yaml:"name"`
		MinStake            uint64 `yaml:"min_stake"`
		DiscountPercent     int    `yaml:"discount_percent"`
		PlatformFeeBps      int    `yaml:"platform_fee_bps"`
		RewardMultiplierBps uint64 `yaml:"reward_multiplier_bps"`
	} `yaml:"tiers"`
	LockMultipliers []struct {
		MinDays    int    `yaml:"min_days"`
		Multiplier string `yaml:"multiplier"`
	} `yaml:"lock_multipliers"`
}

// LoadTables reads a tier/multiplier table file and returns a Calculator over
// it. The file must contain both tables in full; there is no partial override.
func LoadTables(path string) (*Calculator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}

	var file tablesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tables file: %w", err)
	}

	tiers := make([]Tier, 0, len(file.Tiers))
	for _, t := range file.Tiers {
		tiers = append(tiers, Tier{
			Name:                t.Name,
			MinStake:            t.MinStake,
			DiscountPercent:     t.DiscountPercent,
			PlatformFeeBps:      t.PlatformFeeBps,
			RewardMultiplierBps: t.RewardMultiplierBps,
		})
	}

	multipliers := make([]LockMultiplier, 0, len(file.LockMultipliers))
	for _, m := range file.LockMultipliers {
		bps, err := multiplierToBps(m.Multiplier)
		if err != nil {
			return nil, fmt.Errorf("lock multiplier at %d days: %w", m.MinDays, err)
		}
		multipliers = append(multipliers, LockMultiplier{
			MinDays:       m.MinDays,
			MultiplierBps: bps,
		})
	}

	return NewCalculator(tiers, multipliers)
}

// multiplierToBps converts a decimal multiplier string to basis points.
// The value must be expressible in whole basis points ("1.25" is fine,
// "1.00005" is not).
func multiplierToBps(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid multiplier %q: %w", s, err)
	}
	scaled := d.Mul(decimal.NewFromInt(BpsDenominator))
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("multiplier %q is finer than a basis point", s)
	}
	if scaled.Sign() < 0 {
		return 0, fmt.Errorf("multiplier %q is negative", s)
	}
	return uint64(scaled.IntPart()), nil
}
