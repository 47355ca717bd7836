package main

import (
	"github.com/spf13/cobra"

	dbembed "github.com/chiefduck/ratewatch/db"
	"github.com/chiefduck/ratewatch/internal/db"
	"github.com/chiefduck/ratewatch/internal/logger"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <up|down|version|force N>",
		Short: "Apply or roll back database migrations",
		Long: `Apply or roll back the embedded PostgreSQL migrations.

Examples:
  ratewatch migrate up
  ratewatch migrate down
  ratewatch migrate version
  ratewatch migrate force 1`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			if _, err := db.ParseMigrateCommand(args[0], args[1:]); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			migrations, err := dbembed.Migrations()
			if err != nil {
				return err
			}
			return db.RunMigrate(logger.L, cfg.Postgres, migrations, args[0], args[1:])
		},
	}
}
