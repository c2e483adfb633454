package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tidu/pkg/manager"
	"tidu/pkg/task"
)

// dueLayouts are the formats accepted by --due, tried in order.
var dueLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

func parseDue(value string) (time.Time, error) {
	for _, layout := range dueLayouts {
		if due, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return due, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse due date %q (want YYYY-MM-DD or RFC3339)", value)
}

func newAddCmd(app *App) *cobra.Command {
	var (
		priority    string
		category    string
		tags        []string
		due         string
		description string
	)
	cmd := &cobra.Command{
		Use:   "add <text>...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := task.Options{
				Priority:    task.Priority(priority),
				Category:    category,
				Tags:        tags,
				Description: description,
			}
			if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				opts.DueDate = &d
			}
			_, err := app.manager.AddTask(strings.Join(args, " "), opts)
			return err
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "priority: low, normal or high")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag (repeatable)")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date")
	cmd.Flags().StringVar(&description, "desc", "", "longer description")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var (
		filter string
		sortBy string
		order  string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filter != "" {
				app.manager.SetFilter(manager.Filter(filter))
			}
			if sortBy != "" || order != "" {
				app.manager.SetSorting(manager.SortField(sortBy), manager.SortOrder(order))
			}
			app.printTasks(app.manager.FilteredTasks())
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "filter: all, active or completed")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "sort field: createdAt, updatedAt, priority or text")
	cmd.Flags().StringVarP(&order, "order", "o", "", "sort order: asc or desc")
	return cmd
}

func newGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.manager.GetTask(args[0])
			if err != nil {
				return err
			}
			app.printTaskDetail(t)
			return nil
		},
	}
}

func newUpdateCmd(app *App) *cobra.Command {
	var (
		text        string
		priority    string
		category    string
		description string
		due         string
		clearDue    bool
		tags        []string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u manager.Update
			if cmd.Flags().Changed("text") {
				u.Text = &text
			}
			if cmd.Flags().Changed("priority") {
				p := task.Priority(priority)
				u.Priority = &p
			}
			if cmd.Flags().Changed("category") {
				u.Category = &category
			}
			if cmd.Flags().Changed("desc") {
				u.Description = &description
			}
			if cmd.Flags().Changed("tag") {
				u.Tags = tags
			}
			if clearDue {
				u.ClearDue = true
			} else if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				u.DueDate = &d
			}
			updated, err := app.manager.UpdateTask(args[0], u)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Updated %s: %s\n", shortID(updated.ID), updated.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "task text")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "priority: low, normal or high")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category")
	cmd.Flags().StringVar(&description, "desc", "", "longer description")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "replace tags (repeatable)")
	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>...",
		Short: "Mark tasks completed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := app.manager.BulkComplete(args)
			fmt.Fprintf(app.out, "Completed %d task(s)", len(result.Tasks))
			if len(result.Skipped) > 0 {
				fmt.Fprintf(app.out, ", skipped %d", len(result.Skipped))
			}
			fmt.Fprintln(app.out)
			return nil
		},
	}
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.manager.ToggleTask(args[0])
			if err != nil {
				return err
			}
			state := "active"
			if t.Completed {
				state = "completed"
			}
			fmt.Fprintf(app.out, "%s is now %s\n", shortID(t.ID), state)
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Remove tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				_, err := app.manager.RemoveTask(args[0])
				return err
			}
			result := app.manager.BulkDelete(args)
			if len(result.Skipped) > 0 {
				fmt.Fprintf(app.out, "Skipped %d missing id(s)\n", len(result.Skipped))
			}
			return nil
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.manager.ClearCompleted()
			return nil
		},
	}
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.manager.Stats()
			fmt.Fprintf(app.out, "Total:     %d\n", s.Total)
			fmt.Fprintf(app.out, "Active:    %d\n", s.Active)
			fmt.Fprintf(app.out, "Completed: %d (%d%%)\n", s.Completed, s.CompletionRate)
			fmt.Fprintf(app.out, "Overdue:   %d\n", s.Overdue)
			return nil
		},
	}
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search tasks by text, description or tag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.manager.SetSearchQuery(strings.Join(args, " "))
			app.printTasks(app.manager.FilteredTasks())
			return nil
		},
	}
}

func newResetCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every task and restore default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("reset deletes all tasks; re-run with --force")
			}
			app.manager.Reset()
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm the reset")
	return cmd
}

func (a *App) printTasks(tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks")
		return
	}
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %s  %s", mark, shortID(t.ID), t.Text)
		if t.Priority != task.PriorityNormal {
			line += fmt.Sprintf(" (%s)", t.Priority)
		}
		if t.DueDate != nil {
			suffix := ""
			if t.IsOverdue() {
				suffix = " OVERDUE"
			}
			line += fmt.Sprintf(" due %s%s", t.DueDate.Local().Format("2006-01-02 15:04"), suffix)
		}
		fmt.Fprintln(a.out, line)
	}
}

func (a *App) printTaskDetail(t *task.Task) {
	status := "active"
	if t.Completed {
		status = "completed"
	}
	fmt.Fprintf(a.out, "ID:        %s\n", t.ID)
	fmt.Fprintf(a.out, "Text:      %s\n", t.Text)
	fmt.Fprintf(a.out, "Status:    %s\n", status)
	fmt.Fprintf(a.out, "Priority:  %s\n", t.Priority)
	fmt.Fprintf(a.out, "Category:  %s\n", t.Category)
	if len(t.Tags) > 0 {
		fmt.Fprintf(a.out, "Tags:      %s\n", strings.Join(t.Tags, ", "))
	}
	if t.DueDate != nil {
		fmt.Fprintf(a.out, "Due:       %s\n", t.DueDate.Local().Format("2006-01-02 15:04"))
	}
	if t.Description != "" {
		fmt.Fprintf(a.out, "Notes:     %s\n", t.Description)
	}
	fmt.Fprintf(a.out, "Created:   %s\n", t.CreatedAt.Local().Format(time.RFC822))
	fmt.Fprintf(a.out, "Updated:   %s\n", t.UpdatedAt.Local().Format(time.RFC822))
	if t.CompletedAt != nil {
		fmt.Fprintf(a.out, "Completed: %s\n", t.CompletedAt.Local().Format(time.RFC822))
	}
	fmt.Fprintf(a.out, "Age:       %d day(s)\n", t.Age())
}
