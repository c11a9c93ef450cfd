package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/kr8tiv/platform-core/pkg/distribution"
	"github.com/kr8tiv/platform-core/pkg/token"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the token store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateToken(ctx context.Context, tok *token.Token) error {
	dao := toTokenDao(tok)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

func (s *pgStore) GetToken(ctx context.Context, mint string) (*token.Token, error) {
	dao := new(TokenDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("mint = ?", mint).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return toToken(dao), nil
}

func (s *pgStore) ListTokens(ctx context.Context) ([]*token.Token, error) {
	var daos []TokenDao
	err := s.db.NewSelect().
		Model(&daos).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return toTokens(daos), nil
}

// ListAutomationEnabled returns graduated tokens opted into the scheduled fee
// cycle. Tokens still on the curve accrue no claimable fees, so they are
// excluded even when the flag is set.
func (s *pgStore) ListAutomationEnabled(ctx context.Context) ([]*token.Token, error) {
	var daos []TokenDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("automation_enabled = TRUE").
		Where("status = ?", string(token.StatusGraduated)).
		Order("last_automation_run ASC NULLS FIRST").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list automation-enabled tokens: %w", err)
	}
	return toTokens(daos), nil
}

func (s *pgStore) ListByStatus(ctx context.Context, status token.Status) ([]*token.Token, error) {
	var daos []TokenDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens by status: %w", err)
	}
	return toTokens(daos), nil
}

func (s *pgStore) UpdateSplitConfig(ctx context.Context, mint string, split distribution.SplitConfig) error {
	res, err := s.db.NewUpdate().
		Model((*TokenDao)(nil)).
		Set("burn_enabled = ?", split.BurnEnabled).
		Set("burn_bps = ?", split.BurnBps).
		Set("lp_enabled = ?", split.LpEnabled).
		Set("lp_bps = ?", split.LpBps).
		Set("dividends_enabled = ?", split.DividendsEnabled).
		Set("dividends_bps = ?", split.DividendsBps).
		Set("updated_at = NOW()").
		Where("mint = ?", mint).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update split config: %w", err)
	}
	return requireRow(res)
}

func (s *pgStore) SetAutomationEnabled(ctx context.Context, mint string, enabled bool) error {
	res, err := s.db.NewUpdate().
		Model((*TokenDao)(nil)).
		Set("automation_enabled = ?", enabled).
		Set("updated_at = NOW()").
		Where("mint = ?", mint).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set automation flag: %w", err)
	}
	return requireRow(res)
}

func (s *pgStore) MarkGraduated(ctx context.Context, mint string) error {
	res, err := s.db.NewUpdate().
		Model((*TokenDao)(nil)).
		Set("status = ?", string(token.StatusGraduated)).
		Set("graduated_at = NOW()").
		Set("updated_at = NOW()").
		Where("mint = ? AND status = ?", mint, string(token.StatusCurve)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark token graduated: %w", err)
	}
	return requireRow(res)
}

func (s *pgStore) TouchAutomationRun(ctx context.Context, mint string) error {
	_, err := s.db.NewUpdate().
		Model((*TokenDao)(nil)).
		Set("last_automation_run = NOW()").
		Set("updated_at = NOW()").
		Where("mint = ?", mint).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to touch automation run: %w", err)
	}
	return nil
}

// UpdateCreatorDiscount mirrors a staker's tier onto every token the wallet
// created.
func (s *pgStore) UpdateCreatorDiscount(ctx context.Context, wallet, tierName string, discountPercent int) error {
	_, err := s.db.NewUpdate().
		Model((*TokenDao)(nil)).
		Set("creator_tier = ?", tierName).
		Set("creator_discount_percent = ?", discountPercent).
		Set("updated_at = NOW()").
		Where("creator_wallet = ?", wallet).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update creator discount: %w", err)
	}
	return nil
}

func (s *pgStore) IncrementFeesCollected(ctx context.Context, mint string, amount uint64) error {
	return s.incrementAggregate(ctx, mint, "fees_collected", amount)
}

func (s *pgStore) IncrementTokensBurned(ctx context.Context, mint string, amount uint64) error {
	return s.incrementAggregate(ctx, mint, "tokens_burned", amount)
}

func (s *pgStore) IncrementLpAdded(ctx context.Context, mint string, amount uint64) error {
	return s.incrementAggregate(ctx, mint, "lp_added", amount)
}

func (s *pgStore) IncrementDividendsPaid(ctx context.Context, mint string, amount uint64) error {
	return s.incrementAggregate(ctx, mint, "dividends_paid", amount)
}

func (s *pgStore) incrementAggregate(ctx context.Context, mint, col string, amount uint64) error {
	_, err := s.db.NewUpdate().
		TableExpr("tokens").
		Set(col+" = COALESCE("+col+", 0) + ?", int64(amount)).
		Set("updated_at = NOW()").
		Where("mint = ?", mint).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", col, err)
	}
	return nil
}

func toTokens(daos []TokenDao) []*token.Token {
	tokens := make([]*token.Token, len(daos))
	for i := range daos {
		tokens[i] = toToken(&daos[i])
	}
	return tokens
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrTokenNotFound
	}
	return nil
}
