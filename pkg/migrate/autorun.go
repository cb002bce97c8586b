package migrate

import (
	"context"
	"fmt"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/config"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
)

// MaybeRun applies migrations on boot unless disabled. A POS terminal has no
// operator to run a migrate command, so the default is on.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithField(ctx, "db_path", cfg.DB.Path)
	logg.Info(ctx, "running local store migrations")

	if err := Up(ctx, sqlDB); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "local store migrations completed")
	return nil
}
