// Package token holds the domain model for platform-launched tokens.
package token

import (
	"time"

	"github.com/kr8tiv/platform-core/pkg/distribution"
)

// Status represents a token's lifecycle stage.
type Status string

const (
	// StatusCurve marks a token still trading on its bonding curve.
	StatusCurve Status = "CURVE"
	// StatusGraduated marks a token whose curve completed and moved to a DEX pool.
	StatusGraduated Status = "GRADUATED"
)

// Token represents a platform-launched token and its fee automation state.
type Token struct {
	Mint          string
	Name          string
	Symbol        string
	CreatorWallet string
	Status        Status
	GraduatedAt   *time.Time

	// AutomationEnabled gates the scheduled fee cycle; manual triggers work
	// regardless.
	AutomationEnabled bool
	Split             distribution.SplitConfig
	LastAutomationRun *time.Time

	// Creator tier state mirrored from the staking engine.
	CreatorTier            string
	CreatorDiscountPercent int

	// Lifetime automation aggregates in base units.
	FeesCollected uint64
	TokensBurned  uint64
	LpAdded       uint64
	DividendsPaid uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Graduated reports whether the token has left its bonding curve.
func (t *Token) Graduated() bool {
	return t.Status == StatusGraduated
}
