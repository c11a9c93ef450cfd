// Package platformdb holds all the migrations for the platform database
package platformdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the platform database
var Migrations = migrate.NewMigrations()
