package main

import (
	"context"
	"fmt"

	"github.com/openbankly/consent-backend/infra"
	"github.com/openbankly/consent-backend/repositories"
	"github.com/openbankly/consent-backend/repositories/dialect"
	"github.com/openbankly/consent-backend/utils"
)

// runMigrations brings the postgres schema up to date before the service
// starts. Oracle deployments manage their schema out of band.
func runMigrations(ctx context.Context, dbEngine string, pgConfig infra.PgConfig) error {
	logger := utils.LoggerFromContext(ctx)

	if dbEngine != dialect.EnginePostgres {
		logger.InfoContext(ctx, "skipping migrations for non-postgres engine",
			"engine", dbEngine)
		return nil
	}

	if err := repositories.RunMigrations(pgConfig.GetConnectionString(), logger); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}
	return nil
}
