package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/afontaine/blockday/internal/dateutil"
	"github.com/afontaine/blockday/internal/task"
)

func (a *App) taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(a.taskAddCmd())
	cmd.AddCommand(a.taskListCmd())
	cmd.AddCommand(a.taskDoneCmd())

	return cmd
}

func (a *App) taskAddCmd() *cobra.Command {
	var (
		taskType  string
		category  string
		priority  string
		estimated int
		due       string
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a new task",
		Example: `  blockday task add "Write quarterly report" --priority=high --estimate=90
  blockday task add "Ship v2" --type=milestone`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			t, err := task.New(a.user(), args[0], taskType, category, priority)
			if err != nil {
				return err
			}
			t.EstimatedTime = estimated

			if due != "" {
				d, err := dateutil.ParseDate(due)
				if err != nil {
					return fmt.Errorf("parsing due date: %w", err)
				}
				t.DueDate = &d
			}

			if err := a.store.CreateTask(cmd.Context(), t); err != nil {
				return fmt.Errorf("creating task: %w", err)
			}

			fmt.Printf("Created task %s: %s [%s, %s priority]\n", t.ID, t.Name, t.Type, t.Priority)
			if !t.Eligible() {
				fmt.Println(formatMuted("Note: milestones are deliverables and are never scheduled into slots."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&taskType, "type", "task", "Type: task, subtask, milestone, sub_milestone")
	cmd.Flags().StringVar(&category, "category", "", "Category label")
	cmd.Flags().StringVar(&priority, "priority", "medium", "Priority: high, medium, low")
	cmd.Flags().IntVar(&estimated, "estimate", 0, "Estimated minutes")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")

	return cmd
}

func (a *App) taskListCmd() *cobra.Command {
	var (
		status   string
		category string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List your tasks. By default milestones are included; schedulable
tasks are what generation draws from.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			filters := task.Filters{Status: task.Status(status), Category: category}

			var (
				tasks []*task.Task
				err   error
			)
			if all {
				tasks, err = a.store.ListTasks(cmd.Context(), a.user(), filters)
			} else {
				tasks, err = a.store.ListEligibleTasks(cmd.Context(), a.user(), filters)
			}
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}

			if len(tasks) == 0 {
				fmt.Println("No tasks found.")
				return nil
			}

			for _, t := range tasks {
				printTaskRow(t)
			}
			fmt.Printf("\n%s\n", formatStats(fmt.Sprintf("Total: %d tasks", len(tasks))))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: not_started, in_progress, completed")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().BoolVar(&all, "all", false, "Include milestones and sub-milestones")

	return cmd
}

func (a *App) taskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [task-id]",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			if err := a.store.UpdateTaskStatus(cmd.Context(), args[0], task.StatusCompleted); err != nil {
				return fmt.Errorf("completing task: %w", err)
			}
			fmt.Printf("Task %s marked completed.\n", args[0])
			return nil
		},
	}
}

func printTaskRow(t *task.Task) {
	symbol := statusSymbol(t.Status)

	name := t.Name
	if t.IsCompleted() {
		name = formatMuted(name)
	} else if t.Priority == task.PriorityHigh {
		name = formatActive(name)
	}

	extra := ""
	if t.EstimatedTime > 0 {
		extra = formatMuted(fmt.Sprintf("  ~%dm", t.EstimatedTime))
	}
	if t.DueDate != nil {
		extra += formatMuted("  due " + t.DueDate.Format("2006-01-02"))
	}

	fmt.Printf("  %s %s  [%s/%s]  %s%s\n", symbol, t.ID[:8], t.Type, t.Priority, name, extra)
}

func statusSymbol(s task.Status) string {
	switch s {
	case task.StatusNotStarted:
		return "○"
	case task.StatusInProgress:
		return "◐"
	case task.StatusCompleted:
		return "●"
	default:
		return "?"
	}
}
