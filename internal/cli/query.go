package cli

import (
	"github.com/spf13/cobra"

	"usercontext/internal/domain"
	"usercontext/internal/service"
)

func (a *app) queryCmd() *cobra.Command {
	var (
		filter map[string]string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "query [kind]",
		Short: "Query one kind of context, or all of it",
		Long: `Query the stored context of a user.

Kind is one of: ` + enumHelp(domain.AllContextKinds()) + ` (default all).
Filters are key=value pairs; the keys a kind accepts are:

  decisions    category, status, scope, project_id
  goals        status, project_id
  preferences  type, scope, project_id
  issues       category, severity, status, component, project_id
  todos        status, project_id, entity_type, entity_id
  all          project_id`,
		Example: `  usercontext query
  usercontext query issues --filter severity=critical
  usercontext query todos --filter status=pending --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.userID()
			if err != nil {
				return err
			}
			kind := domain.ContextKindAll
			if len(args) == 1 {
				if kind, err = domain.ParseContextKind(args[0]); err != nil {
					return err
				}
			}

			snap, err := a.svc.Query(cmd.Context(), user, kind, service.Filter(filter), limit)
			if err != nil {
				return err
			}
			return a.emit(snap, func() error { return a.render.Snapshot(snap) })
		},
	}
	cmd.Flags().StringToStringVar(&filter, "filter", nil, "filter as key=value (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results per kind (0 for all)")
	return cmd
}
