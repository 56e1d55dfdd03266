package cli

import (
	"github.com/spf13/cobra"

	"usercontext/internal/domain"
)

func (a *app) preferenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "preference",
		Aliases: []string{"preferences", "pref"},
		Short:   "Manage user preferences",
	}
	cmd.AddCommand(
		a.preferenceCreateCmd(),
		a.preferenceListCmd(),
		a.preferenceShowCmd(),
		a.preferenceUpdateCmd(),
		a.preferenceDeleteCmd(),
		a.preferenceObserveCmd(),
	)
	return cmd
}

func (a *app) showPreference(p *domain.UserPreference) error {
	return a.emit(p, func() error { return a.render.Preferences([]domain.UserPreference{*p}) })
}

func (a *app) preferenceCreateCmd() *cobra.Command {
	var (
		prefType     string
		scope        string
		rationale    string
		priority     int
		tags         []string
		noAutomation bool
	)
	cmd := &cobra.Command{
		Use:   "create <name> <value>",
		Short: "Record a preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.userID()
			if err != nil {
				return err
			}
			pt, err := domain.ParsePreferenceType(prefType)
			if err != nil {
				return err
			}
			sc, err := parseScope(scope)
			if err != nil {
				return err
			}

			p := domain.NewUserPreference(user, args[0], args[1], pt, sc).
				WithPriority(priority).
				WithTags(tags...).
				WithAutomation(!noAutomation)
			if rationale != "" {
				p.WithRationale(rationale)
			}

			created, err := a.svc.CreatePreference(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.showPreference(created)
		},
	}
	cmd.Flags().StringVar(&prefType, "type", string(domain.PreferenceTypeOther), "type: "+enumHelp(domain.AllPreferenceTypes()))
	cmd.Flags().StringVar(&scope, "scope", "global", "scope: global, project_id:<id> or workflow:<name>")
	cmd.Flags().StringVar(&rationale, "rationale", "", "why the user prefers this")
	cmd.Flags().IntVar(&priority, "priority", domain.DefaultPriority, "priority 1 (low) to 5 (high)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().BoolVar(&noAutomation, "no-automation", false, "do not apply this preference automatically")
	return cmd
}

func (a *app) preferenceListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List preferences, highest priority first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.userID()
			if err != nil {
				return err
			}
			snap, err := a.svc.Query(cmd.Context(), user, domain.ContextKindPreferences, filterFrom(cmd, "type", "scope", "project"), limit)
			if err != nil {
				return err
			}
			return a.emit(snap.Preferences, func() error { return a.render.Preferences(snap.Preferences) })
		},
	}
	cmd.Flags().String("type", "", "only this type: "+enumHelp(domain.AllPreferenceTypes()))
	cmd.Flags().String("scope", "", "only this scope")
	cmd.Flags().String("project", "", "only preferences scoped to this project")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (0 for all)")
	return cmd
}

func (a *app) preferenceShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.svc.GetPreference(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.showPreference(p)
		},
	}
}

func (a *app) preferenceUpdateCmd() *cobra.Command {
	var (
		value      string
		prefType   string
		scope      string
		rationale  string
		priority   int
		tags       []string
		automation bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.svc.GetPreference(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("value") {
				p.PreferenceValue = value
			}
			if flags.Changed("type") {
				if p.PreferenceType, err = domain.ParsePreferenceType(prefType); err != nil {
					return err
				}
			}
			if flags.Changed("scope") {
				if p.Scope, err = parseScope(scope); err != nil {
					return err
				}
			}
			if flags.Changed("rationale") {
				p.Rationale = optional(rationale)
			}
			if flags.Changed("priority") {
				p.WithPriority(priority)
			}
			if flags.Changed("tag") {
				p.Tags = []string{}
				p.WithTags(tags...)
			}
			if flags.Changed("automation") {
				p.WithAutomation(automation)
			}

			updated, err := a.svc.UpdatePreference(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.showPreference(updated)
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "preference value")
	cmd.Flags().StringVar(&prefType, "type", "", "type")
	cmd.Flags().StringVar(&scope, "scope", "", "scope")
	cmd.Flags().StringVar(&rationale, "rationale", "", "why the user prefers this (empty clears it)")
	cmd.Flags().IntVar(&priority, "priority", 0, "priority 1 (low) to 5 (high)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replace tags (repeatable)")
	cmd.Flags().BoolVar(&automation, "automation", true, "apply this preference automatically")
	return cmd
}

func (a *app) preferenceDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.svc.DeletePreference(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.deleted(cmd, "preference", args[0], ok)
		},
	}
}

func (a *app) preferenceObserveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "observe <id>",
		Short: "Count one more observation of a preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.svc.ObservePreference(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.showPreference(p)
		},
	}
}
