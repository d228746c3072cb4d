package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kbbot/internal/bot"
	"kbbot/internal/config"
	"kbbot/internal/logger"
)

func botCmd(cfg *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.BotToken == "" {
				return fmt.Errorf("BOT_TOKEN is not set")
			}

			logger.Banner(version)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, database, err := openService(ctx, cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			docs, chunks := svc.Counts()
			logger.Stats("Documents", docs)
			logger.Stats("Chunks", chunks)

			b, err := bot.New(cfg.BotToken, svc, cfg.MarkdownDir())
			if err != nil {
				return err
			}

			err = b.Run(ctx)
			if errors.Is(err, context.Canceled) {
				logger.Info("BOT", "Shutting down")
				return nil
			}
			return err
		},
	}
	return cmd
}
