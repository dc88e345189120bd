package main

import (
	"fmt"
	"log"
	"os"

	"github.com/flatfly/flatfly-api/internal/config"
	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flatfly",
		Short: "FlatFly listings and roommate matching API",
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := store.Open(cfg.DSN)
			if err != nil {
				return err
			}
			if err := store.Migrate(db); err != nil {
				return fmt.Errorf("failed to auto migrate models: %w", err)
			}
			log.Println("Database schema is up to date")
			return nil
		},
	}
}
