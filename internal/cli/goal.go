package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"usercontext/internal/domain"
)

func (a *app) goalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goal",
		Aliases: []string{"goals"},
		Short:   "Manage user goals and their steps",
	}
	cmd.AddCommand(
		a.goalCreateCmd(),
		a.goalListCmd(),
		a.goalShowCmd(),
		a.goalUpdateCmd(),
		a.goalDeleteCmd(),
		a.goalStatusCmd("start", "Mark a goal in progress", domain.GoalStatusInProgress),
		a.goalStatusCmd("complete", "Mark a goal completed", domain.GoalStatusCompleted),
		a.goalStatusCmd("block", "Mark a goal blocked", domain.GoalStatusBlocked),
		a.goalAddStepCmd(),
		a.goalStepCmd(),
	)
	return cmd
}

func (a *app) showGoal(g *domain.UserGoal) error {
	return a.emit(g, func() error {
		if err := a.render.Goals([]domain.UserGoal{*g}); err != nil {
			return err
		}
		rows := make([][]string, 0, len(g.Steps))
		for _, s := range g.Steps {
			due := ""
			if s.DueDate != nil {
				due = s.DueDate.Format("2006-01-02")
			}
			rows = append(rows, []string{strconv.Itoa(s.StepNumber), s.Description, s.Status.Code(), due})
		}
		if len(rows) == 0 {
			return nil
		}
		return a.render.Table("", []string{"#", "Step", "Status", "Due"}, rows)
	})
}

func (a *app) goalCreateCmd() *cobra.Command {
	var (
		description string
		project     string
		priority    int
		target      string
		steps       []string
	)
	cmd := &cobra.Command{
		Use:   "create <text>",
		Short: "Record a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.userID()
			if err != nil {
				return err
			}

			g := domain.NewUserGoal(user, args[0]).WithPriority(priority)
			if description != "" {
				g.WithDescription(description)
			}
			if project != "" {
				g.WithProject(project)
			}
			if target != "" {
				t, err := parseDate("target", target)
				if err != nil {
					return err
				}
				g.WithTargetDate(t)
			}
			now := domain.Now()
			for _, step := range steps {
				g.AddStep(domain.NewGoalStep(0, step), now)
			}

			created, err := a.svc.CreateGoal(cmd.Context(), g)
			if err != nil {
				return err
			}
			return a.showGoal(created)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "longer description")
	cmd.Flags().StringVar(&project, "project", "", "related project id")
	cmd.Flags().IntVar(&priority, "priority", domain.DefaultPriority, "priority 1 (low) to 5 (high)")
	cmd.Flags().StringVar(&target, "target", "", "target completion date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "step description (repeatable, in order)")
	return cmd
}

func (a *app) goalListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals, highest priority first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.userID()
			if err != nil {
				return err
			}
			snap, err := a.svc.Query(cmd.Context(), user, domain.ContextKindGoals, filterFrom(cmd, "status", "project"), limit)
			if err != nil {
				return err
			}
			return a.emit(snap.Goals, func() error { return a.render.Goals(snap.Goals) })
		},
	}
	cmd.Flags().String("status", "", "only this status: "+enumHelp(domain.AllGoalStatuses()))
	cmd.Flags().String("project", "", "only this related project")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (0 for all)")
	return cmd
}

func (a *app) goalShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a goal with its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.svc.GetGoal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.showGoal(g)
		},
	}
}

func (a *app) goalUpdateCmd() *cobra.Command {
	var (
		text        string
		description string
		project     string
		priority    int
		target      string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.svc.GetGoal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("text") {
				g.GoalText = text
			}
			if flags.Changed("description") {
				g.Description = optional(description)
			}
			if flags.Changed("project") {
				g.ProjectID = optional(project)
			}
			if flags.Changed("priority") {
				g.WithPriority(priority)
			}
			if flags.Changed("target") {
				if target == "" {
					g.CompletionTargetDate = nil
				} else {
					t, err := parseDate("target", target)
					if err != nil {
						return err
					}
					g.WithTargetDate(t)
				}
			}

			updated, err := a.svc.UpdateGoal(cmd.Context(), g)
			if err != nil {
				return err
			}
			return a.showGoal(updated)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "goal text")
	cmd.Flags().StringVar(&description, "description", "", "longer description (empty clears it)")
	cmd.Flags().StringVar(&project, "project", "", "related project id (empty clears it)")
	cmd.Flags().IntVar(&priority, "priority", 0, "priority 1 (low) to 5 (high)")
	cmd.Flags().StringVar(&target, "target", "", "target completion date (empty clears it)")
	return cmd
}

func (a *app) goalDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.svc.DeleteGoal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.deleted(cmd, "goal", args[0], ok)
		},
	}
}

func (a *app) goalStatusCmd(use, short string, status domain.GoalStatus) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.svc.SetGoalStatus(cmd.Context(), args[0], status, reason)
			if err != nil {
				return err
			}
			return a.showGoal(g)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the status changed (kept in the audit log)")
	return cmd
}

func (a *app) goalAddStepCmd() *cobra.Command {
	var due string
	cmd := &cobra.Command{
		Use:   "add-step <id> <description>",
		Short: "Append a step to a goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dueDate *time.Time
			if due != "" {
				t, err := parseDate("due", due)
				if err != nil {
					return err
				}
				dueDate = &t
			}
			g, err := a.svc.AddGoalStep(cmd.Context(), args[0], args[1], dueDate)
			if err != nil {
				return err
			}
			return a.showGoal(g)
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "step due date (YYYY-MM-DD)")
	return cmd
}

func (a *app) goalStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "step <id> <step-number> <status>",
		Short: "Set the status of one goal step",
		Long:  "Set the status of one goal step. Status is one of: " + enumHelp(domain.AllGoalStatuses()),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("step number %q is not a number", args[1])
			}
			status, err := domain.ParseGoalStatus(args[2])
			if err != nil {
				return err
			}
			g, err := a.svc.SetGoalStepStatus(cmd.Context(), args[0], n, status)
			if err != nil {
				return err
			}
			return a.showGoal(g)
		},
	}
}
