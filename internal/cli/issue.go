package cli

import (
	"github.com/spf13/cobra"

	"usercontext/internal/domain"
)

func (a *app) issueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "issue",
		Aliases: []string{"issues"},
		Short:   "Manage known issues",
	}
	cmd.AddCommand(
		a.issueCreateCmd(),
		a.issueListCmd(),
		a.issueShowCmd(),
		a.issueUpdateCmd(),
		a.issueDeleteCmd(),
		a.issueResolveCmd(),
		a.issueAddSymptomCmd(),
	)
	return cmd
}

func (a *app) showIssue(i *domain.KnownIssue) error {
	return a.emit(i, func() error { return a.render.Issues([]domain.KnownIssue{*i}) })
}

// issueFields are the free-text flags shared by create and update
type issueFields struct {
	rootCause  string
	workaround string
	solution   string
	prevention string
}

func (f *issueFields) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.rootCause, "root-cause", "", "what causes the issue")
	cmd.Flags().StringVar(&f.workaround, "workaround", "", "how to get around it")
	cmd.Flags().StringVar(&f.solution, "solution", "", "permanent solution")
	cmd.Flags().StringVar(&f.prevention, "prevention", "", "how to avoid it next time")
}

// apply copies the changed flags onto i; an empty value clears the field
func (f *issueFields) apply(cmd *cobra.Command, i *domain.KnownIssue) {
	flags := cmd.Flags()
	if flags.Changed("root-cause") {
		i.RootCause = optional(f.rootCause)
	}
	if flags.Changed("workaround") {
		i.Workaround = optional(f.workaround)
	}
	if flags.Changed("solution") {
		i.PermanentSolution = optional(f.solution)
	}
	if flags.Changed("prevention") {
		i.PreventionNotes = optional(f.prevention)
	}
}

func (a *app) issueCreateCmd() *cobra.Command {
	var (
		severity   string
		category   string
		symptoms   []string
		components []string
		projects   []string
		fields     issueFields
	)
	cmd := &cobra.Command{
		Use:   "create <description>",
		Short: "Record a known issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.userID()
			if err != nil {
				return err
			}
			sev, err := domain.ParseIssueSeverity(severity)
			if err != nil {
				return err
			}
			cat, err := domain.ParseIssueCategory(category)
			if err != nil {
				return err
			}

			i := domain.NewKnownIssue(user, args[0], sev, cat).WithProjectContexts(projects...)
			for _, s := range symptoms {
				i.AddSymptom(s)
			}
			for _, c := range components {
				i.AddAffectedComponent(c)
			}
			fields.apply(cmd, i)

			created, err := a.svc.CreateIssue(cmd.Context(), i)
			if err != nil {
				return err
			}
			return a.showIssue(created)
		},
	}
	cmd.Flags().StringVar(&severity, "severity", string(domain.IssueSeverityMedium), "severity: "+enumHelp(domain.AllIssueSeverities()))
	cmd.Flags().StringVar(&category, "category", string(domain.IssueCategoryOther), "category: "+enumHelp(domain.AllIssueCategories()))
	cmd.Flags().StringArrayVar(&symptoms, "symptom", nil, "observed symptom (repeatable)")
	cmd.Flags().StringSliceVar(&components, "component", nil, "affected component (repeatable)")
	cmd.Flags().StringSliceVar(&projects, "project", nil, "project the issue shows up in (repeatable)")
	fields.bind(cmd)
	return cmd
}

func (a *app) issueListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known issues, most severe first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.userID()
			if err != nil {
				return err
			}
			filter := filterFrom(cmd, "status", "severity", "category", "component", "project")
			snap, err := a.svc.Query(cmd.Context(), user, domain.ContextKindIssues, filter, limit)
			if err != nil {
				return err
			}
			return a.emit(snap.Issues, func() error { return a.render.Issues(snap.Issues) })
		},
	}
	cmd.Flags().String("status", "", "only this resolution status: "+enumHelp(domain.AllResolutionStatuses()))
	cmd.Flags().String("severity", "", "only this severity")
	cmd.Flags().String("category", "", "only this category")
	cmd.Flags().String("component", "", "only issues affecting this component")
	cmd.Flags().String("project", "", "only issues seen in this project")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (0 for all)")
	return cmd
}

func (a *app) issueShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one known issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := a.svc.GetIssue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.showIssue(i)
		},
	}
}

func (a *app) issueUpdateCmd() *cobra.Command {
	var (
		description string
		severity    string
		category    string
		fields      issueFields
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a known issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := a.svc.GetIssue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("description") {
				i.IssueDescription = description
			}
			if flags.Changed("severity") {
				if i.Severity, err = domain.ParseIssueSeverity(severity); err != nil {
					return err
				}
			}
			if flags.Changed("category") {
				if i.Category, err = domain.ParseIssueCategory(category); err != nil {
					return err
				}
			}
			fields.apply(cmd, i)

			updated, err := a.svc.UpdateIssue(cmd.Context(), i)
			if err != nil {
				return err
			}
			return a.showIssue(updated)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "issue description")
	cmd.Flags().StringVar(&severity, "severity", "", "severity")
	cmd.Flags().StringVar(&category, "category", "", "category")
	fields.bind(cmd)
	return cmd
}

func (a *app) issueDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a known issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.svc.DeleteIssue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.deleted(cmd, "issue", args[0], ok)
		},
	}
}

func (a *app) issueResolveCmd() *cobra.Command {
	var status, reason string
	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Set the resolution status of a known issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := domain.ParseResolutionStatus(status)
			if err != nil {
				return err
			}
			i, err := a.svc.ResolveIssue(cmd.Context(), args[0], rs, reason)
			if err != nil {
				return err
			}
			return a.showIssue(i)
		},
	}
	cmd.Flags().StringVar(&status, "status", string(domain.ResolutionStatusFixed), "resolution: "+enumHelp(domain.AllResolutionStatuses()))
	cmd.Flags().StringVar(&reason, "reason", "", "how it was resolved (kept in the audit log)")
	return cmd
}

func (a *app) issueAddSymptomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-symptom <id> <symptom>",
		Short: "Record another symptom of a known issue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := a.svc.AddIssueSymptom(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.showIssue(i)
		},
	}
}
