package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/calendar/v3"

	"tidu/pkg/calsync"
	"tidu/pkg/config"
	"tidu/pkg/logging"
)

func newSyncCmd(app *App) *cobra.Command {
	var calendarName string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror tasks with due dates onto Google Calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := app.cfg.Calendar
			if calendarName != "" {
				name = calendarName
			}

			configDir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			idx, err := calsync.NewEventIndex(filepath.Join(configDir, "events.json"))
			if err != nil {
				return fmt.Errorf("could not load event index: %w", err)
			}
			colors, err := calsync.NewColorCache(filepath.Join(configDir, "category_colors.json"))
			if err != nil {
				return fmt.Errorf("could not load color cache: %w", err)
			}
			dueTable, err := calsync.NewDueTable(filepath.Join(configDir, "pending_tasks.json"))
			if err != nil {
				return fmt.Errorf("could not load due table: %w", err)
			}

			client, err := calsync.NewClient(cmd.Context(), name, configDir, idx, colors)
			if err != nil {
				return err
			}

			// Mark events whose due date passed since the last sync.
			for _, entry := range dueTable.Sweep(time.Now()) {
				patch := &calendar.Event{Summary: "! " + entry.Text}
				if _, err := client.PatchEvent(entry.EventID, patch); err != nil {
					logging.Info("cli", "sweep: could not patch event %s: %v", entry.EventID, err)
				}
			}

			synced := 0
			for _, t := range app.manager.GetAllTasks() {
				if t.DueDate == nil {
					continue
				}
				event, err := client.SyncTask(t)
				if err != nil {
					logging.Info("cli", "sync: skipping %s: %v", t.ID, err)
					continue
				}
				synced++
				if !t.Completed && !t.IsOverdue() {
					dueTable.Update(t.ID, event.Id, t.Text, *t.DueDate)
				} else {
					dueTable.Remove(t.ID)
				}
			}

			for _, state := range []interface{ Save() error }{idx, colors, dueTable} {
				if err := state.Save(); err != nil {
					logging.Info("cli", "could not save sync state: %v", err)
				}
			}

			fmt.Fprintf(app.out, "Synced %d task(s) to calendar %q\n", synced, name)
			return nil
		},
	}
	cmd.Flags().StringVar(&calendarName, "calendar", "", "calendar name (overrides config)")
	return cmd
}

func newAuthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := config.GetConfigDir()
			if err != nil {
				return err
			}

			// Drop any cached token so the flow runs fresh.
			tokenPath := filepath.Join(configDir, "token.json")
			if err := os.Remove(tokenPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("could not remove token file %s: %w", tokenPath, err)
			}

			scopes := []string{
				calendar.CalendarEventsScope,
				calendar.CalendarReadonlyScope,
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if _, err := calsync.GetClient(ctx, configDir, scopes); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(app.out, "Authentication successful, token saved to %s\n", tokenPath)
			return nil
		},
	}
}
