package platformdb

import (
	"context"
	"log"

	mghelper "github.com/kr8tiv/platform-core/pkg/pgutil/migrations"

	"github.com/uptrace/bun"
)

// The jobs store reads this table through database/sql rather than bun, so
// the schema is spelled out here instead of derived from a model.
const createAutomationJobs = `
CREATE TABLE IF NOT EXISTS automation_jobs (
	id UUID PRIMARY KEY,
	token_mint VARCHAR(64) NOT NULL,
	job_type VARCHAR(20) NOT NULL,
	trigger_type VARCHAR(20) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	fees_claimed BIGINT NOT NULL DEFAULT 0,
	tokens_burned BIGINT NOT NULL DEFAULT 0,
	lp_added BIGINT NOT NULL DEFAULT 0,
	dividends_paid BIGINT NOT NULL DEFAULT 0,
	claim_signature VARCHAR(128),
	burn_signature VARCHAR(128),
	lp_signature VARCHAR(128),
	dividends_signature VARCHAR(128),
	error_message TEXT,
	retry_count INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	started_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ
)`

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating automation_jobs table...")
		if _, err := db.ExecContext(ctx, createAutomationJobs); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateIndexes(ctx, db, "automation_jobs", "token_mint", "status", "created_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping automation_jobs table...")
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS automation_jobs`)
		return err
	})
}
