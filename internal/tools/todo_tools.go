package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"usercontext/internal/domain"
	"usercontext/internal/service"
)

// TodoArgs are the arguments of manage_contextual_todo
type TodoArgs struct {
	Action            string  `json:"action" jsonschema:"required,enum=create,enum=read,enum=update,enum=delete,enum=list,enum=by_status,enum=by_project,enum=by_entity,enum=update_status,description=Operation to perform"`
	UserID            string  `json:"user_id,omitempty"`
	ID                string  `json:"id,omitempty" jsonschema:"description=Todo id"`
	TaskDescription   *string `json:"task_description,omitempty"`
	ContextType       string  `json:"context_type,omitempty" jsonschema:"enum=decision_implementation,enum=goal_step,enum=issue_resolution,enum=preference_adoption,enum=other"`
	RelatedEntityType string  `json:"related_entity_type,omitempty" jsonschema:"enum=user_decision,enum=user_goal,enum=known_issue,enum=user_preference"`
	RelatedEntityID   string  `json:"related_entity_id,omitempty"`
	ProjectID         *string `json:"project_id,omitempty"`
	AssignedTo        *string `json:"assigned_to,omitempty"`
	DueDate           string  `json:"due_date,omitempty" jsonschema:"description=RFC 3339 timestamp or YYYY-MM-DD"`
	Priority          *int    `json:"priority,omitempty" jsonschema:"minimum=1,maximum=5"`
	Status            string  `json:"status,omitempty" jsonschema:"enum=pending,enum=in_progress,enum=completed,enum=blocked"`
	FromConversation  bool    `json:"from_conversation,omitempty" jsonschema:"description=Stamp the todo as captured from the current conversation"`
	Reason            string  `json:"reason,omitempty"`
}

// RegisterTodoTools registers manage_contextual_todo
func RegisterTodoTools(s *server.MCPServer, svc *service.ContextService) {
	s.AddTool(mcp.NewTool("manage_contextual_todo",
		mcp.WithDescription(`Track follow-up tasks tied to the user's context.

A todo may point at a decision, goal, known issue or preference through
related_entity_type and related_entity_id; by_entity lists the todos for one
of those. Lists are ordered by priority then due date.`),
		mcp.WithInputSchema[TodoArgs](),
	), wrap(todoAction(svc)))
}

func todoAction(svc *service.ContextService) action[TodoArgs] {
	return func(ctx context.Context, args TodoArgs) (any, error) {
		switch args.Action {
		case "create":
			return createTodo(ctx, svc, args)
		case "read":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			return svc.GetTodo(ctx, args.ID)
		case "update":
			return updateTodo(ctx, svc, args)
		case "delete":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			ok, err := svc.DeleteTodo(ctx, args.ID)
			if err != nil {
				return nil, err
			}
			return deleted{ID: args.ID, Deleted: ok}, nil
		case "list":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			return orEmpty(svc.ListTodos(ctx, args.UserID))
		case "by_status":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			status, err := domain.ParseTodoStatus(args.Status)
			if err != nil {
				return nil, badArg(err)
			}
			return orEmpty(svc.TodosByStatus(ctx, args.UserID, status))
		case "by_project":
			if err := required("user_id", args.UserID); err != nil {
				return nil, err
			}
			if err := required("project_id", deref(args.ProjectID)); err != nil {
				return nil, err
			}
			return orEmpty(svc.TodosByProject(ctx, args.UserID, *args.ProjectID))
		case "by_entity":
			kind, err := domain.ParseEntityType(args.RelatedEntityType)
			if err != nil {
				return nil, badArg(err)
			}
			if err := required("related_entity_id", args.RelatedEntityID); err != nil {
				return nil, err
			}
			return orEmpty(svc.TodosByEntity(ctx, kind, args.RelatedEntityID))
		case "update_status":
			if err := required("id", args.ID); err != nil {
				return nil, err
			}
			status, err := domain.ParseTodoStatus(args.Status)
			if err != nil {
				return nil, badArg(err)
			}
			return svc.SetTodoStatus(ctx, args.ID, status, args.Reason)
		default:
			return nil, unknownAction(args.Action)
		}
	}
}

func createTodo(ctx context.Context, svc *service.ContextService, args TodoArgs) (any, error) {
	contextType := domain.TodoContextOther
	if args.ContextType != "" {
		var err error
		if contextType, err = domain.ParseTodoContextType(args.ContextType); err != nil {
			return nil, badArg(err)
		}
	}
	due, err := parseTime("due_date", args.DueDate)
	if err != nil {
		return nil, err
	}

	t := domain.NewContextualTodo(args.UserID, deref(args.TaskDescription), contextType)
	if args.RelatedEntityType != "" || args.RelatedEntityID != "" {
		kind, err := domain.ParseEntityType(args.RelatedEntityType)
		if err != nil {
			return nil, badArg(err)
		}
		t.WithRelatedEntity(kind, args.RelatedEntityID)
	}
	if args.ProjectID != nil {
		t.WithProject(*args.ProjectID)
	}
	if args.AssignedTo != nil {
		t.WithAssignee(*args.AssignedTo)
	}
	if due != nil {
		t.WithDueDate(*due)
	}
	if args.Priority != nil {
		t.WithPriority(*args.Priority)
	}
	if args.FromConversation {
		t.FromConversation(domain.Now())
	}
	return svc.CreateTodo(ctx, t)
}

func updateTodo(ctx context.Context, svc *service.ContextService, args TodoArgs) (any, error) {
	if err := required("id", args.ID); err != nil {
		return nil, err
	}
	t, err := svc.GetTodo(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	if args.TaskDescription != nil {
		t.TaskDescription = *args.TaskDescription
	}
	if args.ContextType != "" {
		if t.ContextType, err = domain.ParseTodoContextType(args.ContextType); err != nil {
			return nil, badArg(err)
		}
	}
	if args.RelatedEntityType != "" || args.RelatedEntityID != "" {
		kind, err := domain.ParseEntityType(args.RelatedEntityType)
		if err != nil {
			return nil, badArg(err)
		}
		t.WithRelatedEntity(kind, args.RelatedEntityID)
	}
	if args.ProjectID != nil {
		t.ProjectID = optional(*args.ProjectID)
	}
	if args.AssignedTo != nil {
		t.AssignedTo = optional(*args.AssignedTo)
	}
	if args.DueDate != "" {
		if t.DueDate, err = parseTime("due_date", args.DueDate); err != nil {
			return nil, err
		}
	}
	if args.Priority != nil {
		t.WithPriority(*args.Priority)
	}
	return svc.UpdateTodo(ctx, t)
}
