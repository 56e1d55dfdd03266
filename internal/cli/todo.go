package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"usercontext/internal/domain"
)

func (a *app) todoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "todo",
		Aliases: []string{"todos"},
		Short:   "Manage contextual todos",
	}
	cmd.AddCommand(
		a.todoCreateCmd(),
		a.todoListCmd(),
		a.todoShowCmd(),
		a.todoUpdateCmd(),
		a.todoDeleteCmd(),
		a.todoStatusCmd("start", "Mark a todo in progress", domain.TodoStatusInProgress),
		a.todoStatusCmd("done", "Mark a todo completed", domain.TodoStatusCompleted),
		a.todoStatusCmd("block", "Mark a todo blocked", domain.TodoStatusBlocked),
		a.todoStatusCmd("reopen", "Move a todo back to pending", domain.TodoStatusPending),
	)
	return cmd
}

func (a *app) showTodo(t *domain.ContextualTodo) error {
	return a.emit(t, func() error { return a.render.Todos([]domain.ContextualTodo{*t}) })
}

func (a *app) todoCreateCmd() *cobra.Command {
	var (
		contextType string
		entityType  string
		entityID    string
		project     string
		assignee    string
		due         string
		priority    int
		fromChat    bool
	)
	cmd := &cobra.Command{
		Use:   "create <task>",
		Short: "Record a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.userID()
			if err != nil {
				return err
			}
			ct, err := domain.ParseTodoContextType(contextType)
			if err != nil {
				return err
			}

			t := domain.NewContextualTodo(user, args[0], ct).WithPriority(priority)
			if entityType != "" || entityID != "" {
				if entityType == "" || entityID == "" {
					return errors.New("--entity-type and --entity-id must be given together")
				}
				et, err := domain.ParseEntityType(entityType)
				if err != nil {
					return err
				}
				t.WithRelatedEntity(et, entityID)
			}
			if project != "" {
				t.WithProject(project)
			}
			if assignee != "" {
				t.WithAssignee(assignee)
			}
			if due != "" {
				d, err := parseDate("due", due)
				if err != nil {
					return err
				}
				t.WithDueDate(d)
			}
			if fromChat {
				t.FromConversation(domain.Now())
			}

			created, err := a.svc.CreateTodo(cmd.Context(), t)
			if err != nil {
				return err
			}
			return a.showTodo(created)
		},
	}
	cmd.Flags().StringVar(&contextType, "context", string(domain.TodoContextOther), "why the todo exists: "+enumHelp(domain.AllTodoContextTypes()))
	cmd.Flags().StringVar(&entityType, "entity-type", "", "type of the linked entity")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "id of the linked entity")
	cmd.Flags().StringVar(&project, "project", "", "related project id")
	cmd.Flags().StringVar(&assignee, "assignee", "", "who should do it")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&priority, "priority", domain.DefaultPriority, "priority 1 (low) to 5 (high)")
	cmd.Flags().BoolVar(&fromChat, "from-conversation", false, "stamp the todo as captured in conversation")
	return cmd
}

func (a *app) todoListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos, highest priority first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.userID()
			if err != nil {
				return err
			}
			filter := filterFrom(cmd, "status", "project", "entity-type", "entity-id")
			snap, err := a.svc.Query(cmd.Context(), user, domain.ContextKindTodos, filter, limit)
			if err != nil {
				return err
			}
			return a.emit(snap.Todos, func() error { return a.render.Todos(snap.Todos) })
		},
	}
	cmd.Flags().String("status", "", "only this status: "+enumHelp(domain.AllTodoStatuses()))
	cmd.Flags().String("project", "", "only this related project")
	cmd.Flags().String("entity-type", "", "only todos linked to this entity type")
	cmd.Flags().String("entity-id", "", "only todos linked to this entity")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (0 for all)")
	return cmd
}

func (a *app) todoShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.svc.GetTodo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.showTodo(t)
		},
	}
}

func (a *app) todoUpdateCmd() *cobra.Command {
	var (
		task     string
		project  string
		assignee string
		due      string
		priority int
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.svc.GetTodo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("task") {
				t.TaskDescription = task
			}
			if flags.Changed("project") {
				t.ProjectID = optional(project)
			}
			if flags.Changed("assignee") {
				t.AssignedTo = optional(assignee)
			}
			if flags.Changed("priority") {
				t.WithPriority(priority)
			}
			if flags.Changed("due") {
				if due == "" {
					t.DueDate = nil
				} else {
					d, err := parseDate("due", due)
					if err != nil {
						return err
					}
					t.WithDueDate(d)
				}
			}

			updated, err := a.svc.UpdateTodo(cmd.Context(), t)
			if err != nil {
				return err
			}
			return a.showTodo(updated)
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "task description")
	cmd.Flags().StringVar(&project, "project", "", "related project id (empty clears it)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "who should do it (empty clears it)")
	cmd.Flags().StringVar(&due, "due", "", "due date (empty clears it)")
	cmd.Flags().IntVar(&priority, "priority", 0, "priority 1 (low) to 5 (high)")
	return cmd
}

func (a *app) todoDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.svc.DeleteTodo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.deleted(cmd, "todo", args[0], ok)
		},
	}
}

func (a *app) todoStatusCmd(use, short string, status domain.TodoStatus) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.svc.SetTodoStatus(cmd.Context(), args[0], status, reason)
			if err != nil {
				return err
			}
			return a.showTodo(t)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the status changed (kept in the audit log)")
	return cmd
}
