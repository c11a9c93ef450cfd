// Package distribution plans the split of claimed trading fees into burn,
// liquidity and dividend allocations according to per-token basis-point
// configuration. All arithmetic is fixed-point integer.
package distribution

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// BpsDenominator is the basis-point scale (10000 = 100%).
const BpsDenominator = 10000

// ErrConfigInvalid is returned when the enabled basis points sum above 100%.
var ErrConfigInvalid = errors.New("enabled distribution bps exceed 10000")

var validate = validator.New()

// SplitConfig is the per-token fee disposition policy.
// The enabled legs need not sum to 10000 bps; any remainder stays with the
// platform treasury.
type SplitConfig struct {
	BurnEnabled      bool  `json:"burn_enabled"`
	BurnBps          int64 `json:"burn_bps" validate:"min=0,max=10000"`
	LpEnabled        bool  `json:"lp_enabled"`
	LpBps            int64 `json:"lp_bps" validate:"min=0,max=10000"`
	DividendsEnabled bool  `json:"dividends_enabled"`
	DividendsBps     int64 `json:"dividends_bps" validate:"min=0,max=10000"`
}

// Enabled reports whether at least one disposition leg is switched on.
func (c SplitConfig) Enabled() bool {
	return c.BurnEnabled || c.LpEnabled || c.DividendsEnabled
}

// EnabledBps returns the sum of basis points across enabled legs.
func (c SplitConfig) EnabledBps() int64 {
	var sum int64
	if c.BurnEnabled {
		sum += c.BurnBps
	}
	if c.LpEnabled {
		sum += c.LpBps
	}
	if c.DividendsEnabled {
		sum += c.DividendsBps
	}
	return sum
}

// Validate checks field ranges and the enabled-sum invariant.
func (c SplitConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid split config: %w", err)
	}
	if c.EnabledBps() > BpsDenominator {
		return ErrConfigInvalid
	}
	return nil
}

// Split holds the planned allocation of a claimed fee amount.
type Split struct {
	Burn      uint64
	Lp        uint64
	Dividends uint64
}

// Total returns the sum of all planned allocations.
func (s Split) Total() uint64 {
	return s.Burn + s.Lp + s.Dividends
}

// Plan allocates total across the enabled legs. Each leg is computed
// independently from the same total as floor(total*bps/10000); disabled legs
// get zero. A config whose enabled bps sum above 10000 would over-allocate,
// so it is rejected with ErrConfigInvalid rather than silently truncated.
func Plan(total uint64, cfg SplitConfig) (Split, error) {
	if err := cfg.Validate(); err != nil {
		return Split{}, err
	}

	var split Split
	if cfg.BurnEnabled {
		split.Burn = applyBps(total, uint64(cfg.BurnBps))
	}
	if cfg.LpEnabled {
		split.Lp = applyBps(total, uint64(cfg.LpBps))
	}
	if cfg.DividendsEnabled {
		split.Dividends = applyBps(total, uint64(cfg.DividendsBps))
	}
	return split, nil
}

// applyBps computes floor(amount*bps/10000) without overflowing uint64.
func applyBps(amount, bps uint64) uint64 {
	q := amount / BpsDenominator
	r := amount % BpsDenominator
	return q*bps + r*bps/BpsDenominator
}
