package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"timekeep/internal/model"
	"timekeep/internal/operations"
)

var (
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	priorityStyle = map[string]lipgloss.Style{
		model.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		model.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
	metaStyle = lipgloss.NewStyle().Faint(true)
)

func newAddCmd(app **App) *cobra.Command {
	var input operations.TaskInput
	var subtasks []string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Title = strings.Join(args, " ")
			input.Subtasks = subtasks
			task, err := operations.AddTask((*app).engine, input)
			if err != nil {
				return err
			}
			fmt.Printf("Added %s (%s)\n", task.Title, task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input.Description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&input.DueDate, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&input.Priority, "priority", "p", "", "priority: low, medium, high")
	cmd.Flags().StringVarP(&input.Category, "category", "c", "", "free-form category")
	cmd.Flags().StringArrayVar(&subtasks, "subtask", nil, "subtask title (repeatable)")
	return cmd
}

func newListCmd(app **App) *cobra.Command {
	var showDone, showTodo bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := (*app).engine.Document()
			if len(doc.Tasks) == 0 {
				fmt.Println("No tasks yet. Add one with 'timekeep add'.")
				return nil
			}

			for _, task := range doc.Tasks {
				if showDone && task.Status != model.StatusDone {
					continue
				}
				if showTodo && task.Status != model.StatusTodo {
					continue
				}
				printTask(task)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showDone, "done", "d", false, "only done tasks")
	cmd.Flags().BoolVarP(&showTodo, "todo", "t", false, "only open tasks")
	return cmd
}

func printTask(task model.Task) {
	check := "[ ]"
	title := task.Title
	if task.Status == model.StatusDone {
		check = "[x]"
		title = doneStyle.Render(title)
	}

	prio := task.Priority
	if style, ok := priorityStyle[task.Priority]; ok {
		prio = style.Render(prio)
	}

	var meta []string
	if task.DueDate != "" {
		meta = append(meta, "due "+task.DueDate)
	}
	if task.Category != "" {
		meta = append(meta, task.Category)
	}
	if len(task.Subtasks) > 0 {
		done := 0
		for _, st := range task.Subtasks {
			if st.Done {
				done++
			}
		}
		meta = append(meta, fmt.Sprintf("subtasks %d/%d", done, len(task.Subtasks)))
	}
	meta = append(meta, task.ID)

	fmt.Printf("%s %s %s  %s\n", check, prio, title, metaStyle.Render(strings.Join(meta, " | ")))
}

func newDoneCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setDone(*app, args[0], true)
		},
	}
}

func newUndoneCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "undone <task>",
		Short: "Mark a task as not done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setDone(*app, args[0], false)
		},
	}
}

func setDone(app *App, search string, done bool) error {
	task, err := operations.FindTaskByTitle(app.engine.Document(), search)
	if err != nil {
		return err
	}
	if err := operations.SetTaskDone(app.engine, task.ID, done); err != nil {
		return err
	}
	if done {
		fmt.Printf("Done: %s\n", task.Title)
	} else {
		fmt.Printf("Reopened: %s\n", task.Title)
	}
	return nil
}

func newEditCmd(app **App) *cobra.Command {
	var input operations.TaskInput

	cmd := &cobra.Command{
		Use:   "edit <task>",
		Short: "Edit a task's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := operations.FindTaskByTitle((*app).engine.Document(), args[0])
			if err != nil {
				return err
			}
			updated, err := operations.UpdateTask((*app).engine, task.ID, input)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %s\n", updated.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Title, "title", "", "new title")
	cmd.Flags().StringVarP(&input.Description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&input.DueDate, "due", "", "new due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&input.Priority, "priority", "p", "", "new priority")
	cmd.Flags().StringVarP(&input.Category, "category", "c", "", "new category")
	return cmd
}

func newMoveCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task> <position>",
		Short: "Move a task to a new position in the list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := operations.FindTaskByTitle((*app).engine.Document(), args[0])
			if err != nil {
				return err
			}
			position, err := strconv.Atoi(args[1])
			if err != nil || position < 1 {
				return fmt.Errorf("position must be a number starting at 1")
			}
			if err := operations.MoveTask((*app).engine, task.ID, position-1); err != nil {
				return err
			}
			fmt.Printf("Moved %s to position %d\n", task.Title, position)
			return nil
		},
	}
}

func newRemoveCmd(app **App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "rm <task>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := operations.FindTaskByTitle((*app).engine.Document(), args[0])
			if err != nil {
				return err
			}
			if !force {
				fmt.Printf("Delete '%s'? Re-run with --force to confirm.\n", task.Title)
				return nil
			}
			if err := operations.DeleteTask((*app).engine, task.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", task.Title)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete without confirmation")
	return cmd
}
