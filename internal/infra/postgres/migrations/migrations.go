// Package migrations holds the schema for stored quiz configs and course grade trees.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is applied by the migrate command and on server start.
var Migrations = migrate.NewMigrations()
