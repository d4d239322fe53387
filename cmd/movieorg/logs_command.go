package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"movieorg/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the movieorg log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := cfg.LogPath()

			limit := max(lines, 0)
			offset := int64(-1)
			if limit == 0 {
				offset = 0
			}
			printed := false

			for {
				result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{
					Offset: offset,
					Limit:  limit,
					Follow: follow,
					Wait:   time.Second,
				})
				if err != nil {
					if follow && errors.Is(err, cmd.Context().Err()) {
						return nil
					}
					return fmt.Errorf("tail logs: %w", err)
				}
				for _, line := range result.Lines {
					fmt.Fprintln(out, line)
					printed = true
				}
				offset = result.Offset
				limit = 0
				if !follow {
					if !printed {
						if cfg.Logging.File {
							fmt.Fprintln(out, "No log entries available")
						} else {
							fmt.Fprintln(out, "No log entries available (set logging.file = true to write "+path+")")
						}
					}
					return nil
				}
				if cmd.Context().Err() != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "F", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show (0 for all)")
	return cmd
}
