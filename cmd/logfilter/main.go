package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/hupe1980/logfilter/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cmd.PrintError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
