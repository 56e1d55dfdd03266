package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"usercontext/internal/domain"
	"usercontext/internal/service"
)

// PreferenceArgs are the arguments of manage_user_preference
type PreferenceArgs struct {
	Action              string   `json:"action" jsonschema:"required,enum=create,enum=read,enum=update,enum=delete,enum=list,enum=by_type,enum=by_scope,enum=automation_applicable,enum=observe,description=Operation to perform"`
	UserID              string   `json:"user_id,omitempty"`
	ID                  string   `json:"id,omitempty" jsonschema:"description=Preference id"`
	PreferenceName      *string  `json:"preference_name,omitempty"`
	PreferenceValue     *string  `json:"preference_value,omitempty"`
	PreferenceType      string   `json:"preference_type,omitempty" jsonschema:"enum=tool,enum=framework,enum=constraint,enum=pattern,enum=other"`
	Scope               string   `json:"scope,omitempty" jsonschema:"description=global or project_id:<id> or workflow:<name>"`
	AppliesToAutomation *bool    `json:"applies_to_automation,omitempty"`
	Rationale           *string  `json:"rationale,omitempty"`
	Priority            *int     `json:"priority,omitempty" jsonschema:"minimum=1,maximum=5"`
	Tags                []string `json:"tags,omitempty"`
}

// RegisterPreferenceTools registers manage_user_preference
func RegisterPreferenceTools(s *server.MCPServer, svc *service.ContextService) {
	s.AddTool(mcp.NewTool("manage_user_preference",
		mcp.WithDescription(`Remember how the user likes things done.

Preferences are name/value pairs scoped globally or to a project or workflow.
Call observe whenever a stored preference shows up again; automation_applicable
lists the ones safe to apply without asking, highest priority first.`),
		mcp.WithInputSchema[PreferenceArgs](),
	), wrap(preferenceAction(svc)))
}

func preferenceAction(svc *service.ContextService) action[PreferenceArgs] {
	return func(ctx context.Context, args PreferenceArgs) (any, error) {
		switch args.Action {
		case "create":
			return createPreference(ctx, svc, args)
		case "read":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			return svc.GetPreference(ctx, args.ID)
		case "update":
			return updatePreference(ctx, svc, args)
		case "delete":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			ok, err := svc.DeletePreference(ctx, args.ID)
			if err != nil {
				return nil, err
			}
			return deleted{ID: args.ID, Deleted: ok}, nil
		case "list":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			return orEmpty(svc.ListPreferences(ctx, args.UserID))
		case "by_type":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			prefType, err := domain.ParsePreferenceType(args.PreferenceType)
			if err != nil {
				return nil, badArg(err)
			}
			return orEmpty(svc.PreferencesByType(ctx, args.UserID, prefType))
		case "by_scope":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			scope, err := domain.ParseScope(args.Scope)
			if err != nil {
				return nil, badArg(err)
			}
			return orEmpty(svc.PreferencesByScope(ctx, args.UserID, scope))
		case "automation_applicable":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			return orEmpty(svc.AutomationPreferences(ctx, args.UserID))
		case "observe":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			return svc.ObservePreference(ctx, args.ID)
		default:
			return nil, unknownAction(args.Action)
		}
	}
}

func createPreference(ctx context.Context, svc *service.ContextService, args PreferenceArgs) (any, error) {
	prefType, err := domain.ParsePreferenceType(args.PreferenceType)
	if err != nil {
		return nil, badArg(err)
	}
	scope := domain.GlobalScope()
	if args.Scope != "" {
		if scope, err = domain.ParseScope(args.Scope); err != nil {
			return nil, badArg(err)
		}
	}

	p := domain.NewUserPreference(args.UserID, deref(args.PreferenceName), deref(args.PreferenceValue), prefType, scope)
	p.Rationale = args.Rationale
	if args.AppliesToAutomation != nil {
		p.WithAutomation(*args.AppliesToAutomation)
	}
	if args.Priority != nil {
		p.WithPriority(*args.Priority)
	}
	if len(args.Tags) > 0 {
		p.WithTags(args.Tags...)
	}
	return svc.CreatePreference(ctx, p)
}

func updatePreference(ctx context.Context, svc *service.ContextService, args PreferenceArgs) (any, error) {
	if err := required("id", args.ID); err != nil {
		return nil, err
	}
	p, err := svc.GetPreference(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	if args.PreferenceName != nil {
		p.PreferenceName = *args.PreferenceName
	}
	if args.PreferenceValue != nil {
		p.PreferenceValue = *args.PreferenceValue
	}
	if args.PreferenceType != "" {
		if p.PreferenceType, err = domain.ParsePreferenceType(args.PreferenceType); err != nil {
			return nil, badArg(err)
		}
	}
	if args.Scope != "" {
		if p.Scope, err = domain.ParseScope(args.Scope); err != nil {
			return nil, badArg(err)
		}
	}
	if args.AppliesToAutomation != nil {
		p.AppliesToAutomation = *args.AppliesToAutomation
	}
	if args.Rationale != nil {
		p.Rationale = optional(*args.Rationale)
	}
	if args.Priority != nil {
		p.WithPriority(*args.Priority)
	}
	if args.Tags != nil {
		p.Tags = args.Tags
	}
	return svc.UpdatePreference(ctx, p)
}
