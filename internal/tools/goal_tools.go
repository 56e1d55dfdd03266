package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"usercontext/internal/domain"
	"usercontext/internal/service"
)

// GoalArgs are the arguments of manage_user_goal
type GoalArgs struct {
	Action      string   `json:"action" jsonschema:"required,enum=create,enum=read,enum=update,enum=delete,enum=list,enum=list_by_status,enum=list_by_project,enum=update_status,enum=add_step,enum=update_step,description=Operation to perform"`
	UserID      string   `json:"user_id,omitempty"`
	ID          string   `json:"id,omitempty" jsonschema:"description=Goal id"`
	GoalText    *string  `json:"goal_text,omitempty"`
	Description *string  `json:"description,omitempty" jsonschema:"description=Goal description; for add_step the step description"`
	ProjectID   *string  `json:"project_id,omitempty"`
	Priority    *int     `json:"priority,omitempty" jsonschema:"minimum=1,maximum=5"`
	Status      string   `json:"status,omitempty" jsonschema:"enum=planned,enum=in_progress,enum=completed,enum=blocked"`
	Reason      string   `json:"reason,omitempty" jsonschema:"description=Why the status changed; kept in the audit log"`
	TargetDate  string   `json:"completion_target_date,omitempty" jsonschema:"description=RFC 3339 timestamp or YYYY-MM-DD"`
	Steps       []string `json:"steps,omitempty" jsonschema:"description=Step descriptions for create"`
	StepNumber  int      `json:"step_number,omitempty" jsonschema:"description=Step to change with update_step"`
	DueDate     string   `json:"due_date,omitempty" jsonschema:"description=Due date of a new step"`
}

// RegisterGoalTools registers manage_user_goal
func RegisterGoalTools(s *server.MCPServer, svc *service.ContextService) {
	s.AddTool(mcp.NewTool("manage_user_goal",
		mcp.WithDescription(`Track what the user is working towards.

Goals carry ordered steps; completion is the share of completed steps.
update_status moves the whole goal, add_step appends a step and update_step
changes the status of one step.`),
		mcp.WithInputSchema[GoalArgs](),
	), wrap(goalAction(svc)))
}

func goalAction(svc *service.ContextService) action[GoalArgs] {
	return func(ctx context.Context, args GoalArgs) (any, error) {
		switch args.Action {
		case "create":
			return createGoal(ctx, svc, args)
		case "read":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			return svc.GetGoal(ctx, args.ID)
		case "update":
			return updateGoal(ctx, svc, args)
		case "delete":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			ok, err := svc.DeleteGoal(ctx, args.ID)
			if err != nil {
				return nil, err
			}
			return deleted{ID: args.ID, Deleted: ok}, nil
		case "list":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			return orEmpty(svc.ListGoals(ctx, args.UserID))
		case "list_by_status":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			status, err := domain.ParseGoalStatus(args.Status)
			if err != nil {
				return nil, badArg(err)
			}
			return orEmpty(svc.GoalsByStatus(ctx, args.UserID, status))
		case "list_by_project":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			if err := required("project_id", deref(args.ProjectID)); err != nil {
				return nil, err
			}
			return orEmpty(svc.GoalsByProject(ctx, args.UserID, *args.ProjectID))
		case "update_status":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			status, err := domain.ParseGoalStatus(args.Status)
			if err != nil {
				return nil, badArg(err)
			}
			return svc.SetGoalStatus(ctx, args.ID, status, args.Reason)
		case "add_step":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			due, err := parseTime("due_date", args.DueDate)
			if err != nil {
				return nil, err
			}
			return svc.AddGoalStep(ctx, args.ID, deref(args.Description), due)
		case "update_step":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			status, err := domain.ParseGoalStatus(args.Status)
			if err != nil {
				return nil, badArg(err)
			}
			return svc.SetGoalStepStatus(ctx, args.ID, args.StepNumber, status)
		default:
			return nil, unknownAction(args.Action)
		}
	}
}

func createGoal(ctx context.Context, svc *service.ContextService, args GoalArgs) (any, error) {
	target, err := parseTime("completion_target_date", args.TargetDate)
	if err != nil {
		return nil, err
	}

	g := domain.NewUserGoal(args.UserID, deref(args.GoalText))
	g.Description = args.Description
	if args.ProjectID != nil {
		g.WithProject(*args.ProjectID)
	}
	if args.Priority != nil {
		g.WithPriority(*args.Priority)
	}
	if target != nil {
		g.WithTargetDate(*target)
	}
	now := domain.Now()
	for _, step := range args.Steps {
		g.AddStep(domain.NewGoalStep(0, step), now)
	}
	return svc.CreateGoal(ctx, g)
}

func updateGoal(ctx context.Context, svc *service.ContextService, args GoalArgs) (any, error) {
	if err := required("id", args.ID); err != nil {
		return nil, err
	}
	g, err := svc.GetGoal(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	if args.GoalText != nil {
		g.GoalText = *args.GoalText
	}
	if args.Description != nil {
		g.Description = optional(*args.Description)
	}
	if args.ProjectID != nil {
		g.ProjectID = optional(*args.ProjectID)
	}
	if args.Priority != nil {
		g.WithPriority(*args.Priority)
	}
	if args.TargetDate != "" {
		if g.CompletionTargetDate, err = parseTime("completion_target_date", args.TargetDate); err != nil {
			return nil, err
		}
	}
	return svc.UpdateGoal(ctx, g)
}
