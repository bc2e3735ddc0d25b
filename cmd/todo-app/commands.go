package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"taskboard/internal/client"
	"taskboard/internal/config"
	"taskboard/internal/models"
	"taskboard/internal/tui"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	envFile    string
	apiURL     string
	filterPath string

	api     *client.Client
	filters *client.FilterStore
	now     func() time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:           "todo-app",
		Short:         "Command-line client for the task board API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env", "", "path to a .env file (default ./.env)")
	root.PersistentFlags().StringVar(&a.apiURL, "api", "", "task API base URL (default $API_URL or http://localhost:3000/api)")
	root.PersistentFlags().StringVar(&a.filterPath, "filters", "", "file holding saved list filters (default $TASKS_STATE_FILE or user config dir)")

	root.AddCommand(
		a.listCmd(),
		a.filterCmd(),
		a.addCmd(),
		a.editCmd(),
		a.doneCmd(),
		a.deleteCmd(),
		a.tagsCmd(),
		a.uiCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.LoadClient(a.envFile)
	if err != nil {
		return err
	}
	if a.apiURL == "" {
		a.apiURL = cfg.APIURL
	}
	if a.filterPath == "" {
		a.filterPath = cfg.StateFile
	}
	if a.filterPath == "" {
		if a.filterPath, err = client.DefaultFilterPath(); err != nil {
			return err
		}
	}

	a.api = client.New(a.apiURL)
	a.filters = client.NewFilterStore(a.filterPath)
	return nil
}

func (a *app) listCmd() *cobra.Command {
	var (
		status string
		tags   []string
		from   string
		to     string
		sort   string
		order  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks; filter flags are remembered for the next run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.filters.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("status") {
				switch status {
				case "all":
					f.Completed = nil
				case "completed", "done":
					f.Completed = ptr(true)
				case "pending":
					f.Completed = ptr(false)
				default:
					return fmt.Errorf("--status must be all, completed or pending")
				}
			}
			if flags.Changed("tag") {
				f.Tags = client.SplitTags(strings.Join(tags, ","))
			}
			if flags.Changed("from") {
				f.DueDateStart = from
			}
			if flags.Changed("to") {
				f.DueDateEnd = to
			}
			if flags.Changed("sort") {
				f.SortField = sort
			}
			if flags.Changed("order") {
				f.SortOrder = order
			}

			tf, err := f.TaskFilter()
			if err != nil {
				return err
			}
			if err := a.filters.Save(f); err != nil {
				return err
			}

			tasks, err := a.api.ListTasks(cmd.Context(), tf)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Filter: "+f.Describe())
			printTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "all, completed or pending")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "show tasks with any of these tags (repeatable; empty to reset)")
	cmd.Flags().StringVar(&from, "from", "", "due on or after YYYY-MM-DD (empty to reset)")
	cmd.Flags().StringVar(&to, "to", "", "due on or before YYYY-MM-DD (empty to reset)")
	cmd.Flags().StringVar(&sort, "sort", "", "id, title, dueDate, createdAt or updatedAt")
	cmd.Flags().StringVar(&order, "order", "", "asc or desc")
	return cmd
}

func (a *app) filterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Show or clear the saved list filters",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:  "show",
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				f, err := a.filters.Load()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), f.Describe())
				return nil
			},
		},
		&cobra.Command{
			Use:  "clear",
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				f, err := a.filters.Clear()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Filters cleared: "+f.Describe())
				return nil
			},
		},
	)
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	var form client.TaskForm

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Title = strings.Join(args, " ")
			if err := formError(form.Validate(a.now())); err != nil {
				return err
			}

			task, err := a.api.CreateTask(cmd.Context(), form.ToCreate())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task #%d\n", task.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Description, "desc", "", "description")
	cmd.Flags().StringVar(&form.DueDate, "due", "", "due date YYYY-MM-DD")
	cmd.Flags().StringVar(&form.Tags, "tags", "", "comma-separated tags")
	cmd.Flags().BoolVar(&form.Completed, "done", false, "create already completed")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var values client.TaskForm

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change only the given fields of a task (--due \"\" clears the due date)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()

			current, err := a.api.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			form := client.FormFromTask(*current)
			var req models.UpdateTaskRequest
			changed := map[string]bool{}

			if flags.Changed("title") {
				form.Title = values.Title
				req.Title = ptr(strings.TrimSpace(values.Title))
				changed["title"] = true
			}
			if flags.Changed("desc") {
				form.Description = values.Description
				req.Description = models.OptionalDescription(values.Description)
				changed["description"] = true
			}
			if flags.Changed("due") {
				form.DueDate = values.DueDate
				req.DueDate = models.ClearedDate()
				if d, err := models.ParseDate(values.DueDate); err == nil {
					req.DueDate = models.DateOf(d)
				}
				changed["dueDate"] = true
			}
			if flags.Changed("tags") {
				req.Tags = ptr(client.SplitTags(values.Tags))
			}
			if flags.Changed("done") {
				req.Completed = ptr(values.Completed)
			}
			if req.Empty() {
				return errors.New("nothing to change; pass at least one of --title --desc --due --tags --done")
			}

			// Untouched fields are not re-validated.
			errs := form.Validate(a.now())
			for field := range errs {
				if !changed[field] {
					delete(errs, field)
				}
			}
			if err := formError(errs); err != nil {
				return err
			}

			task, err := a.api.UpdateTask(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d\n", task.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&values.Title, "title", "", "new title")
	cmd.Flags().StringVar(&values.Description, "desc", "", "new description")
	cmd.Flags().StringVar(&values.DueDate, "due", "", "new due date YYYY-MM-DD, empty to clear")
	cmd.Flags().StringVar(&values.Tags, "tags", "", "replace tags (comma-separated)")
	cmd.Flags().BoolVar(&values.Completed, "done", false, "completed state")
	return cmd
}

func (a *app) doneCmd() *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.api.UpdateTask(cmd.Context(), id, models.UpdateTaskRequest{Completed: ptr(!undo)}); err != nil {
				return err
			}
			state := "completed"
			if undo {
				state = "pending"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d marked %s\n", id, state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "mark pending again")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.api.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d deleted\n", id)
			return nil
		},
	}
}

func (a *app) tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every tag in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tags, err := a.api.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(tags, "\n"))
			return nil
		},
	}
}

func (a *app) uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := tea.NewProgram(tui.New(a.api, a.filters), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err := p.Run()
			return err
		},
	}
}

func printTasks(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DONE", "TITLE", "DUE", "TAGS")
	for _, task := range tasks {
		done := ""
		if task.Completed {
			done = "x"
		}
		due := ""
		if task.DueDate != nil {
			due = task.DueDate.Local().Format(time.DateOnly)
		}
		t.Row(strconv.FormatInt(task.ID, 10), done, task.Title, due, strings.Join(task.Tags, ", "))
	}
	fmt.Fprintln(w, t.String())
}

func formError(errs client.FormErrors) error {
	if errs.OK() {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, field := range []string{"title", "description", "dueDate"} {
		if msg, ok := errs[field]; ok {
			msgs = append(msgs, msg)
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("task id must be a positive number, got %q", s)
	}
	return id, nil
}

func ptr[T any](v T) *T {
	return &v
}
