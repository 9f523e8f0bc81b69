package cmd

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/templui/vows/internal/config"
	"github.com/templui/vows/internal/db"
	"github.com/templui/vows/internal/logger"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(cfg *config.Config, conn *sqlx.DB) error {
				return db.RunMigrations(cmd.Context(), conn.DB, cfg.DBDriver)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(cfg *config.Config, conn *sqlx.DB) error {
				return db.MigrateDown(cmd.Context(), conn.DB, cfg.DBDriver)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(cfg *config.Config, conn *sqlx.DB) error {
				status, err := db.MigrationStatus(cmd.Context(), conn.DB, cfg.DBDriver)
				if err != nil {
					return err
				}
				for _, s := range status {
					applied := "pending"
					if !s.AppliedAt.IsZero() {
						applied = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%05d  %-8s  %s\n", s.Source.Version, s.State, applied)
				}
				return nil
			})
		},
	})

	return cmd
}

// withDB opens the configured database without wiring the rest of the app,
// so migrations run even when storage is unreachable.
func withDB(cmd *cobra.Command, fn func(cfg *config.Config, conn *sqlx.DB) error) error {
	cfg := config.Load()
	logger.Setup(logger.Options{Dev: cfg.IsDevelopment(), AppEnv: cfg.AppEnv, Output: os.Stderr})

	conn, err := db.Init(cmd.Context(), cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(conn) }()

	return fn(cfg, conn)
}
