package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"kbbot/internal/config"
	"kbbot/internal/db"
	"kbbot/internal/llm"
	"kbbot/internal/logger"
	"kbbot/internal/rag"
)

// openService wires the chunk store, embedder and answer provider into the
// retrieval service. The caller must Close the returned DB.
func openService(ctx context.Context, cfg *config.Settings) (*rag.Service, *db.DB, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.DBPath, err)
	}

	embedder, err := llm.NewEmbedder(ctx, cfg)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	logger.Info("LLM", fmt.Sprintf("Embeddings: %s (%s)", embedder.Kind(), embedder.Model()))

	svc, err := rag.New(database, embedder, llm.NewAnswerer(embedder), cfg)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return svc, database, nil
}

func indexCmd(cfg *config.Settings) *cobra.Command {
	var inputDir string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index cleaned Markdown documents for retrieval",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Section("Indexing documents")
			svc, database, err := openService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			stats, err := svc.IndexDir(cmd.Context(), inputDir)
			if err != nil {
				return err
			}

			logger.Stats("Files", stats.Files)
			logger.Stats("Indexed", stats.Indexed)
			logger.Stats("Unchanged", stats.Skipped)
			logger.Stats("Chunks", stats.Chunks)
			if stats.Failed > 0 {
				logger.Stats("Failed", stats.Failed)
				return fmt.Errorf("%d of %d documents failed to index", stats.Failed, stats.Files)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", cfg.MarkdownDir(), "directory with cleaned .md files")
	return cmd
}
