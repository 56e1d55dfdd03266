package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [entity-id]",
		Short: "Show the audit log",
		Long: `Without an argument, show the most recent changes to the user's context.
With an entity id, show every recorded change to that entity, oldest first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				entries, err := a.svc.AuditTrail(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.emit(entries, func() error { return a.render.Audit(entries) })
			}

			user, err := a.userID()
			if err != nil {
				return err
			}
			entries, err := a.svc.RecentActivity(cmd.Context(), user, limit)
			if err != nil {
				return err
			}
			return a.emit(entries, func() error { return a.render.Audit(entries) })
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of recent entries (0 for all)")
	return cmd
}
