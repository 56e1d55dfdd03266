package cli

import (
	"github.com/spf13/cobra"

	"usercontext/internal/domain"
)

func (a *app) decisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decision",
		Aliases: []string{"decisions"},
		Short:   "Manage user decisions",
	}
	cmd.AddCommand(
		a.decisionCreateCmd(),
		a.decisionListCmd(),
		a.decisionShowCmd(),
		a.decisionUpdateCmd(),
		a.decisionDeleteCmd(),
		a.decisionArchiveCmd(),
		a.decisionSupersedeCmd(),
		a.decisionApplyCmd(),
	)
	return cmd
}

func (a *app) showDecision(d *domain.UserDecision) error {
	return a.emit(d, func() error { return a.render.Decisions([]domain.UserDecision{*d}) })
}

func (a *app) decisionCreateCmd() *cobra.Command {
	var (
		category   string
		scope      string
		project    string
		reason     string
		confidence float64
		refs       []string
	)
	cmd := &cobra.Command{
		Use:   "create <text>",
		Short: "Record a decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.userID()
			if err != nil {
				return err
			}
			cat, err := domain.ParseDecisionCategory(category)
			if err != nil {
				return err
			}
			sc, err := parseScope(scope)
			if err != nil {
				return err
			}

			d := domain.NewUserDecision(user, args[0], cat, sc).WithReferencedItems(refs...)
			if reason != "" {
				d.WithReason(reason)
			}
			if project != "" {
				d.WithProject(project)
			}
			if cmd.Flags().Changed("confidence") {
				d.WithConfidence(confidence)
			}

			created, err := a.svc.CreateDecision(cmd.Context(), d)
			if err != nil {
				return err
			}
			return a.showDecision(created)
		},
	}
	cmd.Flags().StringVar(&category, "category", string(domain.DecisionCategoryOther), "category: "+enumHelp(domain.AllDecisionCategories()))
	cmd.Flags().StringVar(&scope, "scope", "global", "scope: global, project_id:<id> or workflow:<name>")
	cmd.Flags().StringVar(&project, "project", "", "related project id")
	cmd.Flags().StringVar(&reason, "reason", "", "why the decision was made")
	cmd.Flags().Float64Var(&confidence, "confidence", domain.DefaultConfidence, "confidence score between 0 and 1")
	cmd.Flags().StringSliceVar(&refs, "ref", nil, "referenced item (repeatable)")
	return cmd
}

func (a *app) decisionListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List decisions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.userID()
			if err != nil {
				return err
			}
			filter := filterFrom(cmd, "category", "scope", "status", "project")
			snap, err := a.svc.Query(cmd.Context(), user, domain.ContextKindDecisions, filter, limit)
			if err != nil {
				return err
			}
			return a.emit(snap.Decisions, func() error { return a.render.Decisions(snap.Decisions) })
		},
	}
	cmd.Flags().String("category", "", "only this category")
	cmd.Flags().String("scope", "", "only this scope")
	cmd.Flags().String("status", "", "only this status: "+enumHelp(domain.AllEntityStatuses()))
	cmd.Flags().String("project", "", "only this related project")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (0 for all)")
	return cmd
}

func (a *app) decisionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.svc.GetDecision(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.showDecision(d)
		},
	}
}

func (a *app) decisionUpdateCmd() *cobra.Command {
	var (
		text       string
		category   string
		scope      string
		project    string
		reason     string
		confidence float64
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.svc.GetDecision(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("text") {
				d.DecisionText = text
			}
			if flags.Changed("category") {
				if d.Category, err = domain.ParseDecisionCategory(category); err != nil {
					return err
				}
			}
			if flags.Changed("scope") {
				if d.Scope, err = parseScope(scope); err != nil {
					return err
				}
			}
			if flags.Changed("project") {
				d.WithProject(project)
			}
			if flags.Changed("reason") {
				d.WithReason(reason)
			}
			if flags.Changed("confidence") {
				d.WithConfidence(confidence)
			}

			updated, err := a.svc.UpdateDecision(cmd.Context(), d)
			if err != nil {
				return err
			}
			return a.showDecision(updated)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "decision text")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().StringVar(&scope, "scope", "", "scope")
	cmd.Flags().StringVar(&project, "project", "", "related project id")
	cmd.Flags().StringVar(&reason, "reason", "", "why the decision was made")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "confidence score between 0 and 1")
	return cmd
}

func (a *app) decisionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.svc.DeleteDecision(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.deleted(cmd, "decision", args[0], ok)
		},
	}
}

func (a *app) decisionArchiveCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a decision that no longer holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.svc.ArchiveDecision(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			return a.showDecision(d)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why it was archived")
	return cmd
}

func (a *app) decisionSupersedeCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "supersede <id>",
		Short: "Mark a decision as replaced by a newer one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.svc.SupersedeDecision(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			return a.showDecision(d)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "what replaced it")
	return cmd
}

func (a *app) decisionApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <id>",
		Short: "Count one more application of a decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.svc.ApplyDecision(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.showDecision(d)
		},
	}
}
