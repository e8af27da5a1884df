package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/formation-kit/internal/config"
	"github.com/jonathan/formation-kit/internal/db"
	"github.com/jonathan/formation-kit/internal/types"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and optionally create a user",
	Long: `Create the users and documents tables if they do not exist.

With --email, also create a user on --tier and print the new user ID.`,
	RunE: runMigrate,
}

var (
	migrateDatabaseURL string
	migrateEmail       string
	migrateName        string
	migrateTier        string
)

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	migrateCmd.Flags().StringVar(&migrateEmail, "email", "", "Create a user with this email")
	migrateCmd.Flags().StringVar(&migrateName, "name", "", "Display name of the created user")
	migrateCmd.Flags().StringVar(&migrateTier, "tier", string(types.TierFree), "Subscription tier of the created user")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if migrateDatabaseURL != "" {
		cfg.DatabaseURL = migrateDatabaseURL
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	var tier types.Tier
	if migrateEmail != "" {
		if tier, err = types.ParseTier(migrateTier); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}
	logger.Info("schema applied")

	if migrateEmail == "" {
		return nil
	}
	id, err := database.CreateUser(ctx, migrateEmail, migrateName, tier)
	if err != nil {
		return err
	}
	logger.Info("user created", zap.String("user_id", id.String()), zap.String("tier", string(tier)))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
	return err
}
