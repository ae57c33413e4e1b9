package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"elena-agent/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the profiles and buyerbrief_timelines tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := openPool(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := repository.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		zap.L().Info("migration complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
