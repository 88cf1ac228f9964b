package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forPelevin/reelstitch/internal/pipeline"
)

func run(cmd *cobra.Command, _ []string) error {
	clips, _ := cmd.Flags().GetString("clips")
	output, _ := cmd.Flags().GetString("output")

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	out, err := pipeline.Run(ctx, pipeline.Config{
		ClipsPath:  clips,
		OutputPath: output,
		Settings:   cfg,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// commandContext is cancelled on SIGINT/SIGTERM. It carries no deadline:
// a long batch runs until it finishes or is interrupted.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
