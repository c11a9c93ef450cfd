package tokenstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/kr8tiv/platform-core/pkg/distribution"
	"github.com/kr8tiv/platform-core/pkg/token"
)

// TokenDao is a data access object that maps directly to the 'tokens' table in PostgreSQL.
type TokenDao struct {
	bun.BaseModel `bun:"table:tokens,alias:t"`
	ID            int64      `bun:"id,pk,autoincrement"`
	Mint          string     `bun:"mint,unique,notnull,type:varchar(64)"`
	Name          string     `bun:"name,notnull,type:varchar(255)"`
	Symbol        string     `bun:"symbol,notnull,type:varchar(20)"`
	CreatorWallet string     `bun:"creator_wallet,notnull,type:varchar(64)"`
	Status        string     `bun:"status,notnull,type:varchar(16)"`
	GraduatedAt   *time.Time `bun:"graduated_at"`

	AutomationEnabled bool       `bun:"automation_enabled,notnull,default:false"`
	BurnEnabled       bool       `bun:"burn_enabled,notnull,default:false"`
	BurnBps           int64      `bun:"burn_bps,notnull,default:0"`
	LpEnabled         bool       `bun:"lp_enabled,notnull,default:false"`
	LpBps             int64      `bun:"lp_bps,notnull,default:0"`
	DividendsEnabled  bool       `bun:"dividends_enabled,notnull,default:false"`
	DividendsBps      int64      `bun:"dividends_bps,notnull,default:0"`
	LastAutomationRun *time.Time `bun:"last_automation_run"`

	CreatorTier            string `bun:"creator_tier,notnull,type:varchar(16),default:'NONE'"`
	CreatorDiscountPercent int    `bun:"creator_discount_percent,notnull,default:0"`

	FeesCollected int64 `bun:"fees_collected,notnull,default:0"`
	TokensBurned  int64 `bun:"tokens_burned,notnull,default:0"`
	LpAdded       int64 `bun:"lp_added,notnull,default:0"`
	DividendsPaid int64 `bun:"dividends_paid,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// toTokenDao converts a token.Token to TokenDao.
func toTokenDao(tok *token.Token) *TokenDao {
	dao := &TokenDao{
		Mint:                   tok.Mint,
		Name:                   tok.Name,
		Symbol:                 tok.Symbol,
		CreatorWallet:          tok.CreatorWallet,
		Status:                 string(tok.Status),
		AutomationEnabled:      tok.AutomationEnabled,
		BurnEnabled:            tok.Split.BurnEnabled,
		BurnBps:                tok.Split.BurnBps,
		LpEnabled:              tok.Split.LpEnabled,
		LpBps:                  tok.Split.LpBps,
		DividendsEnabled:       tok.Split.DividendsEnabled,
		DividendsBps:           tok.Split.DividendsBps,
		CreatorTier:            tok.CreatorTier,
		CreatorDiscountPercent: tok.CreatorDiscountPercent,
		FeesCollected:          int64(tok.FeesCollected),
		TokensBurned:           int64(tok.TokensBurned),
		LpAdded:                int64(tok.LpAdded),
		DividendsPaid:          int64(tok.DividendsPaid),
		CreatedAt:              tok.CreatedAt,
		UpdatedAt:              tok.UpdatedAt,
	}

	if tok.GraduatedAt != nil {
		dao.GraduatedAt = tok.GraduatedAt
	}
	if tok.LastAutomationRun != nil {
		dao.LastAutomationRun = tok.LastAutomationRun
	}

	return dao
}

// toToken converts a TokenDao to token.Token.
func toToken(dao *TokenDao) *token.Token {
	tok := &token.Token{
		Mint:              dao.Mint,
		Name:              dao.Name,
		Symbol:            dao.Symbol,
		CreatorWallet:     dao.CreatorWallet,
		Status:            token.Status(dao.Status),
		AutomationEnabled: dao.AutomationEnabled,
		Split: distribution.SplitConfig{
			BurnEnabled:      dao.BurnEnabled,
			BurnBps:          dao.BurnBps,
			LpEnabled:        dao.LpEnabled,
			LpBps:            dao.LpBps,
			DividendsEnabled: dao.DividendsEnabled,
			DividendsBps:     dao.DividendsBps,
		},
		CreatorTier:            dao.CreatorTier,
		CreatorDiscountPercent: dao.CreatorDiscountPercent,
		FeesCollected:          uint64(dao.FeesCollected),
		TokensBurned:           uint64(dao.TokensBurned),
		LpAdded:                uint64(dao.LpAdded),
		DividendsPaid:          uint64(dao.DividendsPaid),
		CreatedAt:              dao.CreatedAt,
		UpdatedAt:              dao.UpdatedAt,
	}

	if dao.GraduatedAt != nil {
		tok.GraduatedAt = dao.GraduatedAt
	}
	if dao.LastAutomationRun != nil {
		tok.LastAutomationRun = dao.LastAutomationRun
	}

	return tok
}
