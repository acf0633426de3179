package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"realdream/internal/config"
	"realdream/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := psqlAddr()
		if err != nil {
			return err
		}
		if err = db.Migrate(addr); err != nil {
			return err
		}
		fmt.Println("Migrations completed successfully")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := psqlAddr()
		if err != nil {
			return err
		}
		if err = db.Rollback(addr); err != nil {
			return err
		}
		fmt.Println("Migrations rolled back")
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := psqlAddr()
		if err != nil {
			return err
		}
		v, dirty, err := db.SchemaVersion(addr)
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

func psqlAddr() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.Psql.Addr.String(), nil
}
