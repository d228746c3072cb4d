package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kbbot/internal/config"
	"kbbot/internal/extract"
	"kbbot/internal/logger"
)

func convertCmd(cfg *config.Settings) *cobra.Command {
	var inputDir string
	var outputDir string
	var workers int

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert PDF documents to page-delimited Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Section("Converting PDFs")
			stats, err := extract.ConvertDir(cmd.Context(), inputDir, outputDir, workers)
			if err != nil {
				return err
			}

			logger.Stats("PDFs", stats.Total)
			logger.Stats("Converted", stats.Converted)
			if stats.Empty > 0 {
				logger.Stats("No text", stats.Empty)
			}
			if stats.Failed > 0 {
				logger.Stats("Failed", stats.Failed)
				return fmt.Errorf("%d of %d PDFs failed to convert", stats.Failed, stats.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", cfg.PDFDir(), "directory with source PDFs")
	cmd.Flags().StringVar(&outputDir, "output-dir", cfg.MarkdownDir(), "directory for generated .md files")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent conversions")
	return cmd
}
