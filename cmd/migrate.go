package cmd

import (
	"context"
	"fmt"
	"time"

	"karaoke-booking/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		db, err := database.InitDB(config.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		applied, err := database.Migrate(ctx, db, logger)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		logger.Info("Migrations complete", zap.Int("applied", applied))
		return nil
	},
}
