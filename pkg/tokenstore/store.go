package tokenstore

import (
	"context"
	"errors"

	"github.com/kr8tiv/platform-core/pkg/distribution"
	"github.com/kr8tiv/platform-core/pkg/token"
)

// ErrTokenNotFound is returned when a token lookup finds no matching record.
var ErrTokenNotFound = errors.New("token not found")

// AggregateStore defines the lifetime automation aggregate operations.
// Increments are atomic at the SQL level so concurrent cycle workers never
// lose updates.
type AggregateStore interface {
	IncrementFeesCollected(ctx context.Context, mint string, amount uint64) error
	IncrementTokensBurned(ctx context.Context, mint string, amount uint64) error
	IncrementLpAdded(ctx context.Context, mint string, amount uint64) error
	IncrementDividendsPaid(ctx context.Context, mint string, amount uint64) error
}

// Store defines the interface for token data persistence
type Store interface {
	AggregateStore
	CreateToken(ctx context.Context, tok *token.Token) error
	GetToken(ctx context.Context, mint string) (*token.Token, error)
	ListTokens(ctx context.Context) ([]*token.Token, error)
	ListAutomationEnabled(ctx context.Context) ([]*token.Token, error)
	ListByStatus(ctx context.Context, status token.Status) ([]*token.Token, error)
	UpdateSplitConfig(ctx context.Context, mint string, split distribution.SplitConfig) error
	SetAutomationEnabled(ctx context.Context, mint string, enabled bool) error
	MarkGraduated(ctx context.Context, mint string) error
	TouchAutomationRun(ctx context.Context, mint string) error
	UpdateCreatorDiscount(ctx context.Context, wallet, tierName string, discountPercent int) error
}
