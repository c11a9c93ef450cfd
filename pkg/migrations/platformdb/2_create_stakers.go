package platformdb

import (
	"context"
	"log"

	mghelper "github.com/kr8tiv/platform-core/pkg/pgutil/migrations"
	"github.com/kr8tiv/platform-core/pkg/stakingstore"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating stakers table...")
		if err := mghelper.CreateSchema(ctx, db, &stakingstore.StakerDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &stakingstore.StakerDao{}, "tier", "lock_end_time")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping stakers table...")
		return mghelper.DropTables(ctx, db, &stakingstore.StakerDao{})
	})
}
