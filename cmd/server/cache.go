package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/tubedrums/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the catalog cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached playlist listing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		db, err := store.NewSQLiteDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to init DB: %w", err)
		}
		defer db.Close()

		if err := db.ClearCache(); err != nil {
			return err
		}
		fmt.Println("Catalog cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}
