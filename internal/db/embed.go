package db

import "embed"

// EmbedMigrations contains the embedded query-log migration files.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS
