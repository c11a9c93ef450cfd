// Package service implements the token registry: launched tokens, their fee
// split configuration and automation flags.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/kr8tiv/platform-core/pkg/app/errors"
	"github.com/kr8tiv/platform-core/pkg/distribution"
	"github.com/kr8tiv/platform-core/pkg/token"
	"github.com/kr8tiv/platform-core/pkg/tokenstore"
)

var ErrTokenExists = errors.New("token already registered")

// Store is the data-access interface the registry needs.
type Store interface {
	CreateToken(ctx context.Context, tok *token.Token) error
	GetToken(ctx context.Context, mint string) (*token.Token, error)
	ListTokens(ctx context.Context) ([]*token.Token, error)
	UpdateSplitConfig(ctx context.Context, mint string, split distribution.SplitConfig) error
	SetAutomationEnabled(ctx context.Context, mint string, enabled bool) error
}

// Service defines the token registry business logic.
type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*token.Token, error)
	Get(ctx context.Context, mint string) (*token.Token, error)
	List(ctx context.Context) ([]*token.Token, error)
	UpdateSplit(ctx context.Context, mint string, split distribution.SplitConfig) (*token.Token, error)
	SetAutomation(ctx context.Context, mint string, enabled bool) (*token.Token, error)
}

// RegisterRequest describes a newly launched token.
type RegisterRequest struct {
	Mint          string                   `json:"mint" validate:"required"`
	Name          string                   `json:"name" validate:"required"`
	Symbol        string                   `json:"symbol" validate:"required"`
	CreatorWallet string                   `json:"creator_wallet" validate:"required"`
	Split         distribution.SplitConfig `json:"split"`
}

type tokenService struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new token registry service.
func NewService(store Store, logger *zap.Logger) Service {
	return &tokenService{
		store:  store,
		logger: logger,
	}
}

// Register records a freshly launched token. Tokens start on the bonding
// curve with automation off; the graduation checker flips them over.
func (s *tokenService) Register(ctx context.Context, req *RegisterRequest) (*token.Token, error) {
	if err := req.Split.Validate(); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid split config")
	}

	if _, err := s.store.GetToken(ctx, req.Mint); err == nil {
		return nil, apperrors.ConflictError(ErrTokenExists, "token already registered")
	} else if !errors.Is(err, tokenstore.ErrTokenNotFound) {
		return nil, fmt.Errorf("check existing token: %w", err)
	}

	tok := &token.Token{
		Mint:          req.Mint,
		Name:          req.Name,
		Symbol:        req.Symbol,
		CreatorWallet: req.CreatorWallet,
		Status:        token.StatusCurve,
		Split:         req.Split,
	}
	if err := s.store.CreateToken(ctx, tok); err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	s.logger.Info("Registered token",
		zap.String("mint", tok.Mint),
		zap.String("symbol", tok.Symbol),
		zap.String("creator", tok.CreatorWallet))

	return s.store.GetToken(ctx, tok.Mint)
}

func (s *tokenService) Get(ctx context.Context, mint string) (*token.Token, error) {
	tok, err := s.store.GetToken(ctx, mint)
	if err != nil {
		if errors.Is(err, tokenstore.ErrTokenNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "token not found")
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return tok, nil
}

func (s *tokenService) List(ctx context.Context) ([]*token.Token, error) {
	return s.store.ListTokens(ctx)
}

// UpdateSplit replaces the token's fee split. The new split applies from the
// next automation cycle; a cycle already in flight keeps the plan it started
// with.
func (s *tokenService) UpdateSplit(ctx context.Context, mint string, split distribution.SplitConfig) (*token.Token, error) {
	if err := split.Validate(); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid split config")
	}

	if err := s.store.UpdateSplitConfig(ctx, mint, split); err != nil {
		if errors.Is(err, tokenstore.ErrTokenNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "token not found")
		}
		return nil, fmt.Errorf("update split config: %w", err)
	}

	s.logger.Info("Updated split config",
		zap.String("mint", mint),
		zap.Int64("burn_bps", split.BurnBps),
		zap.Int64("lp_bps", split.LpBps),
		zap.Int64("dividends_bps", split.DividendsBps))

	return s.store.GetToken(ctx, mint)
}

func (s *tokenService) SetAutomation(ctx context.Context, mint string, enabled bool) (*token.Token, error) {
	if err := s.store.SetAutomationEnabled(ctx, mint, enabled); err != nil {
		if errors.Is(err, tokenstore.ErrTokenNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "token not found")
		}
		return nil, fmt.Errorf("set automation enabled: %w", err)
	}

	s.logger.Info("Toggled automation",
		zap.String("mint", mint),
		zap.Bool("enabled", enabled))

	return s.store.GetToken(ctx, mint)
}
