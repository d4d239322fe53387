package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"movieorg/internal/services"
	"movieorg/internal/session"
	"movieorg/internal/suggestion"
)

func newGenresCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the genres offered in suggestion menus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(sess *session.Session) error {
				genres := sess.Genres()
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"folder": sess.Folder(), "genres": genres})
				}
				if len(genres) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No genres configured")
					return nil
				}
				for _, g := range genres {
					fmt.Fprintln(cmd.OutOrStdout(), g)
				}
				return nil
			})
		},
	}
}

func newAddGenreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add-genre <name>",
		Short: "Register a new genre with the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			genre := strings.TrimSpace(args[0])
			if genre == "" {
				return fmt.Errorf("%w: genre name is required", services.ErrValidation)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.backendClient()
			if err != nil {
				return err
			}
			if err := client.AddGenre(cmd.Context(), genre); err != nil {
				newTerminalAlerter(cmd.ErrOrStderr(), shouldColorize(cfg, cmd.ErrOrStderr())).
					Alert(cmd.Context(), suggestion.GenreUpdateFailure)
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"genre": genre, "added": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added genre %s\n", genre)
			return nil
		},
	}
}
