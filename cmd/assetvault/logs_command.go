package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"assetvault/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines     int
		follow    bool
		requestID string
		assetID   int64
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent library log lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if lines < 0 {
				return fmt.Errorf("--lines must be zero or greater")
			}

			var filters []logs.Filter
			if requestID != "" {
				filters = append(filters, logs.MatchRequest(requestID))
			}
			if cmd.Flags().Changed("asset") {
				filters = append(filters, logs.MatchAsset(assetID))
			}
			var match logs.Filter
			if len(filters) > 0 {
				match = logs.All(filters...)
			}

			path := cfg.LogFilePath()
			recent, offset, err := logs.Last(path, lines, match)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range recent {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = logs.Follow(runCtx, path, offset, 250*time.Millisecond, match, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&requestID, "request", "", "Only lines for this request id")
	cmd.Flags().Int64Var(&assetID, "asset", 0, "Only lines for this asset id")
	return cmd
}
