package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kbbot/internal/config"
)

const version = "1.2.0"

func main() {
	cfg := config.Load()

	root := &cobra.Command{
		Use:     "kbbot",
		Short:   "Telegram knowledge-base bot over PDF documents",
		Version: version,
	}

	root.AddCommand(
		cleanCmd(cfg),
		convertCmd(cfg),
		indexCmd(cfg),
		askCmd(cfg),
		botCmd(cfg),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
