package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"movieorg/internal/movietable"
	"movieorg/internal/services"
	"movieorg/internal/session"
	"movieorg/internal/suggestion"
)

type jsonRow struct {
	Title          string `json:"title"`
	Path           string `json:"path"`
	BaseFolder     string `json:"base_folder"`
	CurrentGenre   string `json:"current_genre"`
	SuggestedGenre string `json:"suggested_genre,omitempty"`
	Move           string `json:"move,omitempty"`
	MoveState      string `json:"move_state,omitempty"`
}

type jsonSort struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

type jsonTable struct {
	Folder string    `json:"folder"`
	Sort   *jsonSort `json:"sort,omitempty"`
	Genres []string  `json:"genres"`
	Rows   []jsonRow `json:"rows"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the movie table of a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(sess *session.Session) error {
				return printMovieTable(cmd, ctx, sess)
			})
		},
	}
}

func newSortCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sort <column>",
		Short: "Sort the table by a column; sorting the same column again reverses it",
		Long: `Sort the movie table by a column, given by index (0-3) or name:
title, genre (current genre), suggested, actions.

Sorting the active column flips its direction; any other column sorts
ascending. The sort state is remembered for later invocations.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := movietable.ParseColumn(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(sess *session.Session) error {
				_, sortErr := sess.Sort(cmd.Context(), col)
				if sortErr != nil && !errors.Is(sortErr, movietable.ErrStateNotSaved) {
					return sortErr
				}
				if err := printMovieTable(cmd, ctx, sess); err != nil {
					return err
				}
				return sortErr
			})
		},
	}
}

func printMovieTable(cmd *cobra.Command, ctx *commandContext, sess *session.Session) error {
	table := sess.Table()
	state := table.State()
	rows := table.Rows()

	if ctx.jsonOutput() {
		out := jsonTable{Folder: sess.Folder(), Genres: sess.Genres(), Rows: make([]jsonRow, 0, len(rows))}
		if state.Active() {
			out.Sort = &jsonSort{Column: state.Column.String(), Direction: string(state.Direction)}
		}
		for _, row := range rows {
			jr := jsonRow{
				Title:          row.Title,
				Path:           row.Path,
				BaseFolder:     row.BaseFolder,
				CurrentGenre:   row.CurrentGenre,
				SuggestedGenre: row.SuggestedGenre,
			}
			if control, err := sess.Control(row.Path); err == nil {
				jr.Move = control.Target().Genre
				jr.MoveState = string(control.State())
			}
			out.Rows = append(out.Rows, jr)
		}
		return writeJSON(cmd, out)
	}

	if len(rows) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No movies in %s\n", sess.Folder())
		return nil
	}
	headers := movietable.Headers()
	if state.Active() {
		arrow := " ▲"
		if state.Direction == movietable.Descending {
			arrow = " ▼"
		}
		headers[state.Column] += arrow
	}
	headers = append([]string{"#"}, headers...)

	body := make([][]string, 0, len(rows))
	for i, row := range rows {
		body = append(body, []string{
			strconv.Itoa(i + 1),
			row.Title,
			row.CurrentGenre,
			row.SuggestedGenre,
			row.Action,
		})
	}
	footer := fmt.Sprintf("%s: %d movies", sess.Folder(), len(rows))
	if pending := len(sess.Controls()); pending > 0 {
		footer += fmt.Sprintf(", %d pending moves", pending)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderTable(headers, body,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}, footer))
	return nil
}

func newSuggestCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var showMenu bool

	cmd := &cobra.Command{
		Use:   "suggest [movie...]",
		Short: "Ask the backend for genre suggestions",
		Long: `Ask the backend to suggest a genre for each named movie (by path or title).

When the suggestion differs from the movie's current genre a move to that
genre is queued; run "movieorg move" or "movieorg apply" to perform it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("%w: name at least one movie or pass --all", services.ErrValidation)
			}
			return ctx.withSession(cmd, func(sess *session.Session) error {
				names := args
				if all {
					names = names[:0:0]
					for _, row := range sess.Table().Rows() {
						names = append(names, row.Path)
					}
				}
				return runSuggestions(cmd, ctx, sess, names, showMenu)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Suggest a genre for every movie in the folder")
	cmd.Flags().BoolVar(&showMenu, "menu", false, "Show the genre menu for each suggestion")
	return cmd
}

type jsonSuggestion struct {
	Path   string   `json:"path"`
	Genre  string   `json:"genre,omitempty"`
	Move   string   `json:"move,omitempty"`
	Error  string   `json:"error,omitempty"`
	Menu   []string `json:"menu,omitempty"`
	Status string   `json:"status"`
}

func runSuggestions(cmd *cobra.Command, ctx *commandContext, sess *session.Session, names []string, showMenu bool) error {
	cfg, _ := ctx.ensureConfig()
	out := cmd.OutOrStdout()
	colorize := shouldColorize(cfg, out)
	results := make([]jsonSuggestion, 0, len(names))
	failed := 0

	for _, name := range names {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		row, err := sess.Row(name)
		if err != nil {
			return err
		}
		result := jsonSuggestion{Path: row.Path}
		genre, err := sess.Suggest(cmd.Context(), row.Path)
		cell := sess.Suggestions().Cell(row)
		if err != nil && genre == "" {
			failed++
			result.Status = "error"
			result.Error = err.Error()
			if !ctx.jsonOutput() {
				printStatus(out, statusError, colorize, "%s: %s", row.Title, cell.Text())
			}
			results = append(results, result)
			continue
		}

		result.Genre = genre
		result.Status = "success"
		if control, cerr := sess.Control(row.Path); cerr == nil && !control.Done() {
			result.Move = control.Target().Genre
		}
		menu := cell.Menu()
		if showMenu {
			for _, entry := range menu {
				result.Menu = append(result.Menu, entry.Label)
			}
		}
		results = append(results, result)

		if ctx.jsonOutput() {
			continue
		}
		line := fmt.Sprintf("%s: %s", row.Title, genre)
		if result.Move != "" {
			line += fmt.Sprintf(" (queued: %s)", row.Action)
		}
		printStatus(out, statusOK, colorize, "%s", line)
		if showMenu {
			printMenu(out, menu)
		}
		if err != nil {
			failed++
			printStatus(out, statusError, colorize, "%s: %v", row.Title, err)
		}
	}

	if ctx.jsonOutput() {
		if err := writeJSON(cmd, results); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d suggestions failed", services.ErrBackend, failed, len(names))
	}
	return nil
}

func printMenu(out io.Writer, menu []suggestion.MenuEntry) {
	for i, entry := range menu {
		fmt.Fprintf(out, "    %d. %s\n", i+1, entry.Label)
	}
}

func newSelectCommand(ctx *commandContext) *cobra.Command {
	var add bool
	var custom bool

	cmd := &cobra.Command{
		Use:   "select <movie> [genre]",
		Short: "Choose the genre a movie should move to",
		Long: `Choose the genre for a movie from the suggestion menu.

  movieorg select "Heat (1995)" Action          pick a configured genre
  movieorg select "Heat (1995)" Noir --add      register Noir, then pick it
  movieorg select "Heat (1995)" --custom        prompt for a new genre name

When the genre differs from the movie's current genre a move is queued.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := suggestion.ActionSelect
			switch {
			case add && custom:
				return fmt.Errorf("%w: --add and --custom are mutually exclusive", services.ErrValidation)
			case custom:
				action = suggestion.ActionCustom
			case add:
				action = suggestion.ActionAdd
			}
			var genre string
			if len(args) > 1 {
				genre = args[1]
			}
			if action != suggestion.ActionCustom && strings.TrimSpace(genre) == "" {
				return fmt.Errorf("%w: a genre is required unless --custom is given", services.ErrValidation)
			}

			return ctx.withSession(cmd, func(sess *session.Session) error {
				applied, err := sess.Select(cmd.Context(), args[0], genre, action)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"path": args[0], "genre": applied, "applied": applied != ""})
				}
				out := cmd.OutOrStdout()
				if applied == "" {
					fmt.Fprintln(out, "Cancelled")
					return nil
				}
				row, err := sess.Row(args[0])
				if err != nil {
					return err
				}
				if control, cerr := sess.Control(row.Path); cerr == nil && control.Target().Genre == applied {
					fmt.Fprintf(out, "%s: %s (queued: %s)\n", row.Title, applied, control.Label())
					return nil
				}
				fmt.Fprintf(out, "%s: %s\n", row.Title, applied)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&add, "add", false, "Register the genre with the backend before selecting it")
	cmd.Flags().BoolVar(&custom, "custom", false, "Prompt for a custom genre name")
	return cmd
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <movie>",
		Short: "Move one movie into its queued genre folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(sess *session.Session) error {
				control, err := sess.Move(cmd.Context(), args[0])
				if control == nil {
					return err
				}
				target := control.Target()
				if ctx.jsonOutput() {
					result := map[string]any{
						"path":        target.Path,
						"base_folder": target.BaseFolder,
						"genre":       target.Genre,
						"state":       string(control.State()),
						"moved":       control.Done(),
					}
					if control.Done() {
						result["new_path"] = control.NewPath()
					}
					if jerr := writeJSON(cmd, result); jerr != nil {
						return jerr
					}
					return err
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", target.Path, target.Genre)
				return nil
			})
		},
	}
}
