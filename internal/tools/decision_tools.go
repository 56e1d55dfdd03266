package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"usercontext/internal/domain"
	"usercontext/internal/service"
)

// DecisionArgs are the arguments of manage_user_decision
type DecisionArgs struct {
	Action          string   `json:"action" jsonschema:"required,enum=create,enum=read,enum=update,enum=delete,enum=list,enum=by_category,enum=by_scope,enum=archive,enum=supersede,enum=increment_applied,description=Operation to perform"`
	UserID          string   `json:"user_id,omitempty" jsonschema:"description=Owner of the decisions (create and list actions)"`
	ID              string   `json:"id,omitempty" jsonschema:"description=Decision id (read/update/delete/archive/supersede/increment_applied)"`
	DecisionText    *string  `json:"decision_text,omitempty" jsonschema:"description=What was decided"`
	Reason          *string  `json:"reason,omitempty" jsonschema:"description=Why it was decided; for archive and supersede the reason for the status change"`
	Category        string   `json:"decision_category,omitempty" jsonschema:"enum=architecture,enum=tool_choice,enum=constraint,enum=workflow,enum=performance,enum=security,enum=other"`
	Scope           string   `json:"context_scope,omitempty" jsonschema:"description=global or project_id:<id> or workflow:<name>"`
	ProjectID       *string  `json:"related_project_id,omitempty"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty" jsonschema:"minimum=0,maximum=1"`
	ReferencedItems []string `json:"referenced_items,omitempty"`
}

// RegisterDecisionTools registers manage_user_decision
func RegisterDecisionTools(s *server.MCPServer, svc *service.ContextService) {
	s.AddTool(mcp.NewTool("manage_user_decision",
		mcp.WithDescription(`Record and recall decisions the user has made.

Use create when the user settles a choice (a library, a convention, a constraint)
so it can be applied later without asking again. Call increment_applied each
time a stored decision is acted on. Archive decisions that no longer hold and
supersede those replaced by a newer one.`),
		mcp.WithInputSchema[DecisionArgs](),
	), wrap(decisionAction(svc)))
}

func decisionAction(svc *service.ContextService) action[DecisionArgs] {
	return func(ctx context.Context, args DecisionArgs) (any, error) {
		switch args.Action {
		case "create":
			return createDecision(ctx, svc, args)
		case "read":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			return svc.GetDecision(ctx, args.ID)
		case "update":
			return updateDecision(ctx, svc, args)
		case "delete":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			ok, err := svc.DeleteDecision(ctx, args.ID)
			if err != nil {
				return nil, err
			}
			return deleted{ID: args.ID, Deleted: ok}, nil
		case "list":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			return orEmpty(svc.ListDecisions(ctx, args.UserID))
		case "by_category":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			category, err := domain.ParseDecisionCategory(args.Category)
			if err != nil {
				return nil, badArg(err)
			}
			return orEmpty(svc.DecisionsByCategory(ctx, args.UserID, category))
		case "by_scope":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			scope, err := domain.ParseScope(args.Scope)
			if err != nil {
				return nil, badArg(err)
			}
			return orEmpty(svc.DecisionsByScope(ctx, args.UserID, scope))
		case "archive":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			return svc.ArchiveDecision(ctx, args.ID, deref(args.Reason))
		case "supersede":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			return svc.SupersedeDecision(ctx, args.ID, deref(args.Reason))
		case "increment_applied":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			return svc.ApplyDecision(ctx, args.ID)
		default:
			return nil, unknownAction(args.Action)
		}
	}
}

func createDecision(ctx context.Context, svc *service.ContextService, args DecisionArgs) (any, error) {
	category, err := domain.ParseDecisionCategory(args.Category)
	if err != nil {
		return nil, badArg(err)
	}
	scope := domain.GlobalScope()
	if args.Scope != "" {
		if scope, err = domain.ParseScope(args.Scope); err != nil {
			return nil, badArg(err)
		}
	}

	d := domain.NewUserDecision(args.UserID, deref(args.DecisionText), category, scope)
	d.Reason = args.Reason
	if args.ProjectID != nil {
		d.WithProject(*args.ProjectID)
	}
	if args.ConfidenceScore != nil {
		d.WithConfidence(*args.ConfidenceScore)
	}
	if len(args.ReferencedItems) > 0 {
		d.WithReferencedItems(args.ReferencedItems...)
	}
	return svc.CreateDecision(ctx, d)
}

func updateDecision(ctx context.Context, svc *service.ContextService, args DecisionArgs) (any, error) {
	if err := required("id", args.ID); err != nil {
		return nil, err
	}
	d, err := svc.GetDecision(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	if args.DecisionText != nil {
		d.DecisionText = *args.DecisionText
	}
	if args.Reason != nil {
		d.Reason = args.Reason
	}
	if args.Category != "" {
		if d.Category, err = domain.ParseDecisionCategory(args.Category); err != nil {
			return nil, badArg(err)
		}
	}
	if args.Scope != "" {
		if d.Scope, err = domain.ParseScope(args.Scope); err != nil {
			return nil, badArg(err)
		}
	}
	if args.ProjectID != nil {
		d.RelatedProjectID = optional(*args.ProjectID)
	}
	if args.ConfidenceScore != nil {
		d.WithConfidence(*args.ConfidenceScore)
	}
	if args.ReferencedItems != nil {
		d.ReferencedItems = args.ReferencedItems
	}
	return svc.UpdateDecision(ctx, d)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
