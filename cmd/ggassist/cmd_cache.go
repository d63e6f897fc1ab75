package main

import (
	"fmt"
	"path/filepath"

	"github.com/locoxsoco/GG-Assist/internal/cache"
	"github.com/locoxsoco/GG-Assist/internal/projectconfig"
	"github.com/spf13/cobra"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the per-email result cache",
		Long: `Manage the per-email result cache.

When enabled, summaries, labels, and detected events are cached per email so
repeated batch runs over the same inbox skip redundant backend calls.`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the result cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cacheDir == "" {
				cfg, err := projectconfig.Load(".")
				if err != nil {
					return err
				}
				cacheDir = cfg.Cache.Dir
			}

			absDir, err := filepath.Abs(cacheDir)
			if err != nil {
				return fmt.Errorf("resolving cache directory: %w", err)
			}

			c := cache.New(absDir)
			if err := c.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			fmt.Printf("Cache cleared: %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache directory to clear (default from .ggassist.yaml)")

	return cmd
}
