package platformdb

import (
	"context"
	"log"

	mghelper "github.com/kr8tiv/platform-core/pkg/pgutil/migrations"
	"github.com/kr8tiv/platform-core/pkg/tokenstore"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating tokens table...")
		if err := mghelper.CreateSchema(ctx, db, &tokenstore.TokenDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &tokenstore.TokenDao{}, "status", "creator_wallet", "automation_enabled")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping tokens table...")
		return mghelper.DropTables(ctx, db, &tokenstore.TokenDao{})
	})
}
