package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"movieorg/internal/preflight"
)

type jsonCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the backend, state database, and local directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.backendClient()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg, client)
			failed := 0
			for _, r := range results {
				if !r.Passed {
					failed++
				}
			}

			if ctx.jsonOutput() {
				checks := make([]jsonCheck, 0, len(results))
				for _, r := range results {
					checks = append(checks, jsonCheck(r))
				}
				if err := writeJSON(cmd, checks); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(cfg, out)
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					state := paint(statusOK, "ok", colorize)
					if !r.Passed {
						state = paint(statusError, "fail", colorize)
					}
					rows = append(rows, []string{r.Name, state, r.Detail})
				}
				fmt.Fprint(out, renderTable(
					[]string{"Check", "Status", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
					fmt.Sprintf("%d of %d checks passed", len(results)-failed, len(results)),
				))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}
}
