package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"movieorg/internal/queue"
	"movieorg/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var status string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded moves, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter queue.Status
			if status != "" {
				parsed, ok := queue.ParseStatus(status)
				if !ok {
					return fmt.Errorf("%w: unknown status %q", services.ErrValidation, status)
				}
				filter = parsed
			}
			return ctx.withStore(func(store *queue.Store) error {
				items, err := store.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if filter != "" {
					kept := items[:0]
					for _, item := range items {
						if item.Status == filter {
							kept = append(kept, item)
						}
					}
					items = kept
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, historyJSON(items))
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No moves recorded")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Folder", "Movie", "Genre", "Status", "Attempts", "Updated", "Error"},
					buildHistoryRows(items, time.Now()),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
					"",
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of moves to show")
	cmd.Flags().StringVar(&status, "status", "", "Only show moves with this status (pending, moving, moved, failed)")
	return cmd
}

func buildHistoryRows(items []*queue.Item, now time.Time) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		updated := ""
		if !item.UpdatedAt.IsZero() {
			updated = humanize.RelTime(item.UpdatedAt, now, "ago", "from now")
		}
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			item.BaseFolder,
			item.Path,
			item.Genre,
			string(item.Status),
			strconv.Itoa(item.Attempts),
			updated,
			item.LastError,
		})
	}
	return rows
}

type jsonHistoryItem struct {
	ID         int64     `json:"id"`
	BaseFolder string    `json:"base_folder"`
	Path       string    `json:"path"`
	Genre      string    `json:"genre"`
	Status     string    `json:"status"`
	Attempts   int       `json:"attempts"`
	LastError  string    `json:"last_error,omitempty"`
	RunID      string    `json:"run_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func historyJSON(items []*queue.Item) []jsonHistoryItem {
	out := make([]jsonHistoryItem, 0, len(items))
	for _, item := range items {
		out = append(out, jsonHistoryItem{
			ID:         item.ID,
			BaseFolder: item.BaseFolder,
			Path:       item.Path,
			Genre:      item.Genre,
			Status:     string(item.Status),
			Attempts:   item.Attempts,
			LastError:  item.LastError,
			RunID:      item.RunID,
			CreatedAt:  item.CreatedAt,
			UpdatedAt:  item.UpdatedAt,
		})
	}
	return out
}
