package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tidu/pkg/orgmode"
	"tidu/pkg/storage"
	"tidu/pkg/task"
)

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export all tasks to a JSON envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := app.manager.GetAllTasks()
			records := make([]task.Record, len(tasks))
			for i, t := range tasks {
				records[i] = t.Record()
			}
			settings := map[string]any{
				"filter": string(app.manager.Filter()),
			}
			if err := storage.Export(args[0], Version, records, settings); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Exported %d task(s) to %s\n", len(records), args[0])
			return nil
		},
	}
}

func newImportCmd(app *App) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import tasks from JSON envelopes or Org-mode files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Non-nil so an empty envelope imports as zero tasks instead of
			// tripping the manager's nil-data validation.
			records := []task.Record{}
			for _, path := range args {
				if strings.HasSuffix(path, ".org") {
					parsed, err := orgmode.ParseFiles([]string{path})
					if err != nil {
						return fmt.Errorf("could not parse %s: %w", path, err)
					}
					records = append(records, parsed...)
					continue
				}
				data, err := storage.Import(path)
				if err != nil {
					return fmt.Errorf("could not import %s: %w", path, err)
				}
				records = append(records, data.Tasks...)
			}
			_, err := app.manager.ImportTasks(records, !replace)
			return err
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the collection instead of merging")
	return cmd
}
