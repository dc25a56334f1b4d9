package data

import (
	"context"
	"database/sql"

	"github.com/danicastudios/studiodesk/internal/migrate"
)

// RunMigrations applies any pending schema migrations for the role grant
// and profile tables by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
