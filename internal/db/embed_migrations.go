package db

import "embed"

// MigrationFS embeds the trackings/traces schema migrations from internal/db/migrations.
// Used by the migrate runner (cmd/migrate) to apply migrations.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
