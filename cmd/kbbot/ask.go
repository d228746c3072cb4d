package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kbbot/internal/config"
)

func askCmd(cfg *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Query the knowledge base from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, database, err := openService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			answer, err := svc.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !answer.Found {
				fmt.Fprintln(cmd.OutOrStdout(), "Ничего не найдено. Проиндексируйте документы: kbbot index")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
			fmt.Fprintln(cmd.OutOrStdout())
			for _, r := range answer.Sources {
				label := r.Chunk.Source
				if r.Chunk.Page > 0 {
					label = fmt.Sprintf("%s, стр. %d", r.Chunk.Source, r.Chunk.Page)
				}
				if r.Chunk.Section != "" {
					label += " (" + r.Chunk.Section + ")"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  [%.4f] %s\n", r.HybridScore, label)
			}
			return nil
		},
	}
	return cmd
}
