package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"swim-admin/pkg/database"
)

var rollbackSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "数据库迁移",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "执行所有未应用的迁移",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(m migrator) error { return m.up() })
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "回滚最近的迁移",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(m migrator) error { return m.down(rollbackSteps) })
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "回滚的迁移数")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

type migrator struct {
	up   func() error
	down func(steps int) error
}

// withDB 迁移命令只需要数据库，不加载 Store
func withDB(fn func(m migrator) error) error {
	cfg, logger, err := loadBase()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.Database.Enabled {
		return errors.New("配置中未启用数据库（db.enabled=false）")
	}
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeDB(db)

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return fn(migrator{
		up:   func() error { return database.RunMigrations(sqlDB, logger) },
		down: func(steps int) error { return database.RollbackMigrations(sqlDB, steps, logger) },
	})
}
