// Package graduation moves tokens off their bonding curve once the curve
// completes.
package graduation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kr8tiv/platform-core/internal/metrics"
	"github.com/kr8tiv/platform-core/pkg/token"
)

// CurveState is a snapshot of a token's bonding curve.
type CurveState struct {
	SolRaised uint64
	TargetSol uint64
	Complete  bool
}

// CurveClient reads bonding curve state from chain.
type CurveClient interface {
	CurveState(ctx context.Context, mint string) (*CurveState, error)
}

// TokenStore provides the token persistence operations the checker needs.
type TokenStore interface {
	ListByStatus(ctx context.Context, status token.Status) ([]*token.Token, error)
	MarkGraduated(ctx context.Context, mint string) error
}

// Checker scans curve-stage tokens and graduates the completed ones.
type Checker struct {
	tokens TokenStore
	curve  CurveClient
	logger *zap.Logger
}

// New creates a new graduation checker
func New(tokens TokenStore, curve CurveClient, logger *zap.Logger) *Checker {
	return &Checker{
		tokens: tokens,
		curve:  curve,
		logger: logger,
	}
}

// CheckAll inspects every curve-stage token and graduates those whose curve
// completed. One token's chain read failing never blocks the rest of the
// scan.
func (c *Checker) CheckAll(ctx context.Context) (int, error) {
	start := time.Now()

	candidates, err := c.tokens.ListByStatus(ctx, token.StatusCurve)
	if err != nil {
		return 0, err
	}

	graduated := 0
	for _, tok := range candidates {
		state, err := c.curve.CurveState(ctx, tok.Mint)
		if err != nil {
			c.logger.Warn("Failed to read curve state",
				zap.String("mint", tok.Mint),
				zap.Error(err))
			continue
		}
		if !state.Complete {
			continue
		}

		if err := c.tokens.MarkGraduated(ctx, tok.Mint); err != nil {
			c.logger.Error("Failed to mark token graduated",
				zap.String("mint", tok.Mint),
				zap.Error(err))
			continue
		}
		graduated++
		metrics.TokensGraduatedTotal.Inc()
		c.logger.Info("Token graduated",
			zap.String("mint", tok.Mint),
			zap.Uint64("sol_raised", state.SolRaised),
			zap.Uint64("target_sol", state.TargetSol))
	}

	if len(candidates) > 0 {
		c.logger.Info("Graduation scan finished",
			zap.Int("candidates", len(candidates)),
			zap.Int("graduated", graduated),
			zap.Duration("duration", time.Since(start)))
	}
	return graduated, nil
}
