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
		log.Println("creating reward_pool table...")
		if err := mghelper.CreateSchema(ctx, db, &stakingstore.RewardPoolDao{}); err != nil {
			return err
		}
		// Seed the singleton pool row so balance updates always have a target
		return mghelper.InsertEntry(ctx, db, &stakingstore.RewardPoolDao{ID: 1, Balance: 0})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping reward_pool table...")
		return mghelper.DropTables(ctx, db, &stakingstore.RewardPoolDao{})
	})
}
