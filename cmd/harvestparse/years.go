package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/harvestparse/internal/config"
	"github.com/dgallion1/harvestparse/internal/store"
)

func yearsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "years",
		Short: "List the years held in a record store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath, _ = cmd.Flags().GetString("db")
			}
			if cmd.Flags().Changed("species") {
				cfg.Species, _ = cmd.Flags().GetString("species")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("--db or DB_PATH is required")
			}

			ctx := cmd.Context()
			db, err := store.Open(ctx, cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open record store: %w", err)
			}
			defer db.Close()

			years, err := db.Years(ctx, cfg.Species)
			if err != nil {
				return err
			}
			for _, y := range years {
				records, err := db.HarvestRecords(ctx, cfg.Species, y)
				if err != nil {
					return err
				}
				dau, err := db.DAUCount(ctx, cfg.Species, y)
				if err != nil {
					return err
				}
				fmt.Printf("%d\t%d harvest\t%d dau\n", y, len(records), dau)
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "SQLite record store")
	cmd.Flags().String("species", "", "Species to list (default elk)")
	return cmd
}
