package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"usercontext/internal/domain"
	"usercontext/internal/service"
)

// IssueArgs are the arguments of manage_known_issue
type IssueArgs struct {
	Action             string   `json:"action" jsonschema:"required,enum=create,enum=read,enum=update,enum=delete,enum=list,enum=by_category,enum=by_severity,enum=by_status,enum=by_component,enum=mark_resolved,enum=add_symptom,description=Operation to perform"`
	UserID             string   `json:"user_id,omitempty"`
	ID                 string   `json:"id,omitempty" jsonschema:"description=Issue id"`
	IssueDescription   *string  `json:"issue_description,omitempty"`
	Severity           string   `json:"severity,omitempty" jsonschema:"enum=critical,enum=high,enum=medium,enum=low"`
	Category           string   `json:"issue_category,omitempty" jsonschema:"enum=integration,enum=performance,enum=deployment,enum=data,enum=workflow,enum=other"`
	ResolutionStatus   string   `json:"resolution_status,omitempty" jsonschema:"enum=unresolved,enum=workaround_available,enum=fixed,enum=no_action_needed"`
	Symptoms           []string `json:"symptoms,omitempty"`
	Symptom            string   `json:"symptom,omitempty" jsonschema:"description=Symptom to append with add_symptom"`
	RootCause          *string  `json:"root_cause,omitempty"`
	Workaround         *string  `json:"workaround,omitempty"`
	PermanentSolution  *string  `json:"permanent_solution,omitempty"`
	PreventionNotes    *string  `json:"prevention_notes,omitempty"`
	AffectedComponents []string `json:"affected_components,omitempty"`
	Component          string   `json:"component,omitempty" jsonschema:"description=Component to search with by_component"`
	ProjectContexts    []string `json:"project_contexts,omitempty"`
	Reason             string   `json:"reason,omitempty" jsonschema:"description=Why the issue was resolved"`
}

// RegisterIssueTools registers manage_known_issue
func RegisterIssueTools(s *server.MCPServer, svc *service.ContextService) {
	s.AddTool(mcp.NewTool("manage_known_issue",
		mcp.WithDescription(`Keep a record of problems the user has hit before.

Store symptoms and workarounds so the same issue is recognised next time.
by_status lists issues most severe first; mark_resolved stamps the resolution
date with the given resolution_status.`),
		mcp.WithInputSchema[IssueArgs](),
	), wrap(issueAction(svc)))
}

func issueAction(svc *service.ContextService) action[IssueArgs] {
	return func(ctx context.Context, args IssueArgs) (any, error) {
		switch args.Action {
		case "create":
			return createIssue(ctx, svc, args)
		case "read":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			return svc.GetIssue(ctx, args.ID)
		case "update":
			return updateIssue(ctx, svc, args)
		case "delete":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			ok, err := svc.DeleteIssue(ctx, args.ID)
			if err != nil {
				return nil, err
			}
			return deleted{ID: args.ID, Deleted: ok}, nil
		case "list":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			return orEmpty(svc.ListIssues(ctx, args.UserID))
		case "by_category":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			category, err := domain.ParseIssueCategory(args.Category)
			if err != nil {
				return nil, badArg(err)
			}
			return orEmpty(svc.IssuesByCategory(ctx, args.UserID, category))
		case "by_severity":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			severity, err := domain.ParseIssueSeverity(args.Severity)
			if err != nil {
				return nil, badArg(err)
			}
			return orEmpty(svc.IssuesBySeverity(ctx, args.UserID, severity))
		case "by_status":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			status, err := domain.ParseResolutionStatus(args.ResolutionStatus)
			if err != nil {
				return nil, badArg(err)
			}
			return orEmpty(svc.IssuesByStatus(ctx, args.UserID, status))
		case "by_component":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			if err := required("component", args.Component); err != nil {
				return nil, err
			}
			return orEmpty(svc.IssuesByComponent(ctx, args.UserID, args.Component))
		case "mark_resolved":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			status := domain.ResolutionStatusFixed
			if args.ResolutionStatus != "" {
				var err error
				if status, err = domain.ParseResolutionStatus(args.ResolutionStatus); err != nil {
					return nil, badArg(err)
				}
			}
			return svc.ResolveIssue(ctx, args.ID, status, args.Reason)
		case "add_symptom":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			return svc.AddIssueSymptom(ctx, args.ID, args.Symptom)
		default:
			return nil, unknownAction(args.Action)
		}
	}
}

func createIssue(ctx context.Context, svc *service.ContextService, args IssueArgs) (any, error) {
	severity, err := domain.ParseIssueSeverity(args.Severity)
	if err != nil {
		return nil, badArg(err)
	}
	category, err := domain.ParseIssueCategory(args.Category)
	if err != nil {
		return nil, badArg(err)
	}

	i := domain.NewKnownIssue(args.UserID, deref(args.IssueDescription), severity, category)
	i.RootCause = args.RootCause
	i.Workaround = args.Workaround
	i.PermanentSolution = args.PermanentSolution
	i.PreventionNotes = args.PreventionNotes
	for _, s := range args.Symptoms {
		i.AddSymptom(s)
	}
	for _, c := range args.AffectedComponents {
		i.AddAffectedComponent(c)
	}
	if len(args.ProjectContexts) > 0 {
		i.WithProjectContexts(args.ProjectContexts...)
	}
	return svc.CreateIssue(ctx, i)
}

func updateIssue(ctx context.Context, svc *service.ContextService, args IssueArgs) (any, error) {
	if err := required("id", args.ID); err != nil {
		return nil, err
	}
	i, err := svc.GetIssue(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	if args.IssueDescription != nil {
		i.IssueDescription = *args.IssueDescription
	}
	if args.Severity != "" {
		if i.Severity, err = domain.ParseIssueSeverity(args.Severity); err != nil {
			return nil, badArg(err)
		}
	}
	if args.Category != "" {
		if i.Category, err = domain.ParseIssueCategory(args.Category); err != nil {
			return nil, badArg(err)
		}
	}
	if args.Symptoms != nil {
		i.Symptoms = args.Symptoms
	}
	if args.RootCause != nil {
		i.RootCause = optional(*args.RootCause)
	}
	if args.Workaround != nil {
		i.Workaround = optional(*args.Workaround)
	}
	if args.PermanentSolution != nil {
		i.PermanentSolution = optional(*args.PermanentSolution)
	}
	if args.PreventionNotes != nil {
		i.PreventionNotes = optional(*args.PreventionNotes)
	}
	if args.AffectedComponents != nil {
		i.AffectedComponents = args.AffectedComponents
	}
	if args.ProjectContexts != nil {
		i.ProjectContexts = args.ProjectContexts
	}
	return svc.UpdateIssue(ctx, i)
}
