// Package cli is the command-line surface. Commands drive the collection
// manager and print through an injectable writer; confirmations for
// mutations come from event subscriptions so the output always reflects
// what actually happened.
package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"tidu/pkg/config"
	"tidu/pkg/events"
	"tidu/pkg/manager"
	"tidu/pkg/storage"
	"tidu/pkg/task"
)

// Version is stamped into export envelopes.
const Version = "1.0.0"

// App bundles the wired-up application for command execution.
type App struct {
	cfg     *config.Config
	bus     *events.Bus
	manager *manager.Manager
	out     io.Writer
	closer  func() error
}

// NewApp builds the storage adapter selected by cfg.Storage, restores the
// collection and subscribes the confirmation printers.
func NewApp(cfg *config.Config, out io.Writer) (*App, error) {
	app := &App{cfg: cfg, bus: events.NewBus(), out: out}

	var store storage.Adapter
	switch cfg.Storage {
	case config.StorageSQLite:
		db, err := storage.OpenSQLite(filepath.Join(cfg.DataDir, "tasks.db"))
		if err != nil {
			return nil, fmt.Errorf("could not open task database: %w", err)
		}
		store = db
		app.closer = db.Close
	default:
		fs, err := storage.NewFileStore(cfg.DataDir, cfg.Storage)
		if err != nil {
			return nil, err
		}
		store = fs
	}

	app.subscribeOutput()
	app.manager = manager.New(store, app.bus)
	return app, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

// subscribeOutput prints one confirmation line per collection mutation.
func (a *App) subscribeOutput() {
	a.bus.Subscribe(manager.EventTaskAdded, func(p any) {
		if r, ok := p.(task.Record); ok {
			fmt.Fprintf(a.out, "Added %s: %s\n", shortID(r.ID), r.Text)
		}
	})
	a.bus.Subscribe(manager.EventTaskRemoved, func(p any) {
		if r, ok := p.(task.Record); ok {
			fmt.Fprintf(a.out, "Removed %s: %s\n", shortID(r.ID), r.Text)
		}
	})
	a.bus.Subscribe(manager.EventCompletedCleared, func(p any) {
		if c, ok := p.(manager.CompletedClearedPayload); ok {
			fmt.Fprintf(a.out, "Cleared %d completed task(s)\n", c.Count)
		}
	})
	a.bus.Subscribe(manager.EventTasksImported, func(p any) {
		if c, ok := p.(manager.TasksImportedPayload); ok {
			fmt.Fprintf(a.out, "Imported %d task(s) (%s), %d total\n", c.Imported, c.Mode, c.Total)
		}
	})
	a.bus.Subscribe(manager.EventTasksReset, func(any) {
		fmt.Fprintln(a.out, "Collection reset")
	})
}

// NewRootCmd assembles the command tree.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tidu",
		Short:         "tidu is a to-do list manager",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAddCmd(app),
		newListCmd(app),
		newGetCmd(app),
		newUpdateCmd(app),
		newDoneCmd(app),
		newToggleCmd(app),
		newRemoveCmd(app),
		newClearCmd(app),
		newStatsCmd(app),
		newSearchCmd(app),
		newResetCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newSyncCmd(app),
		newAuthCmd(app),
	)
	return root
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
