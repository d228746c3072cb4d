package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kbbot/internal/config"
	"kbbot/internal/logger"
	"kbbot/internal/sanitize"
)

func cleanCmd(cfg *config.Settings) *cobra.Command {
	var inputDir string
	var dryRun bool
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean extracted Markdown files in place",
		Long: "Removes extraction noise from Markdown files: symbol-only lines, " +
			"runs of blank lines, consecutive duplicates and single-word line wraps. " +
			"Files shrink or stay untouched; originals get a .bak copy.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Section("Cleaning Markdown")
			stats := sanitize.CleanDir(inputDir, sanitize.Options{
				DryRun:   dryRun,
				NoBackup: noBackup,
			})

			logger.Stats("Files", stats.Files)
			logger.Stats("Changed", stats.Changed)
			logger.Stats("Unchanged", stats.Unchanged)
			if stats.Failed > 0 {
				logger.Stats("Failed", stats.Failed)
			}
			if stats.OriginalBytes > 0 {
				logger.Stats("Bytes", statsBytes(stats.OriginalBytes, stats.CleanedBytes))
			}
			// Cleaning is best-effort: per-file failures are reported above
			// and never fail the run.
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", cfg.MarkdownDir(), "directory with .md files to clean")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing files")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "overwrite files without keeping .bak copies")
	return cmd
}

func statsBytes(original, cleaned int) string {
	saved := original - cleaned
	pct := 0.0
	if original > 0 {
		pct = float64(saved) / float64(original) * 100
	}
	return fmt.Sprintf("%d -> %d (saved %.1f%%)", original, cleaned, pct)
}
