package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projektcopilot/backend/internal/engine"
	"github.com/projektcopilot/backend/internal/seed"
	"github.com/projektcopilot/backend/internal/store"
	"github.com/projektcopilot/backend/pkg/config"
	"github.com/projektcopilot/backend/pkg/database"
	"github.com/projektcopilot/backend/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo dataset into the database",
	Long: `seed clears projects, scenarios, requirements, WRICEF items,
configuration items and test cases, then loads a demo dataset covering
three projects. Session working documents are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log := logger.New(engine.ServiceName, engine.Version)
		log.SetLevel(logger.ParseLevel(cfg.Logging.Level))

		ctx := cmd.Context()
		db, err := database.New(ctx, database.SQLiteConfig{Path: cfg.Database.Path})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		st := store.New(db, log)
		if err := st.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
		return seed.Run(ctx, st, log)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
