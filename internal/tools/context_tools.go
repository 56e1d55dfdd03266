package tools

import (
	"bytes"
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"usercontext/internal/codec"
	"usercontext/internal/domain"
	"usercontext/internal/service"
)

// QueryArgs are the arguments of query_user_context
type QueryArgs struct {
	UserID      string            `json:"user_id" jsonschema:"required"`
	ContextType string            `json:"context_type,omitempty" jsonschema:"enum=decisions,enum=goals,enum=preferences,enum=issues,enum=todos,enum=all,description=Kind of context to return (default all)"`
	Filter      map[string]string `json:"filter,omitempty" jsonschema:"description=Field filters such as category or status or project_id"`
	Limit       int               `json:"limit,omitempty" jsonschema:"minimum=0,description=Maximum entries per kind; 0 for no limit"`
}

// ExportArgs are the arguments of export_user_context
type ExportArgs struct {
	UserID  string   `json:"user_id" jsonschema:"required"`
	Format  string   `json:"format,omitempty" jsonschema:"enum=json,enum=yaml,enum=csv,enum=markdown,description=Output format (default json)"`
	Include []string `json:"include,omitempty" jsonschema:"description=Kinds to include; empty for all"`
}

// RegisterContextTools registers query_user_context and export_user_context
func RegisterContextTools(s *server.MCPServer, svc *service.ContextService) {
	s.AddTool(mcp.NewTool("query_user_context",
		mcp.WithDescription(`Look up what is known about the user before acting.

Returns decisions, goals, preferences, known issues and todos for one user,
optionally narrowed to one kind and filtered by field. With context_type all
only the project_id filter applies.`),
		mcp.WithInputSchema[QueryArgs](),
	), wrap(queryAction(svc)))

	s.AddTool(mcp.NewTool("export_user_context",
		mcp.WithDescription(`Export a user's stored context as json, yaml, csv or markdown.`),
		mcp.WithInputSchema[ExportArgs](),
	), wrap(exportAction(svc)))
}

func queryAction(svc *service.ContextService) action[QueryArgs] {
	return func(ctx context.Context, args QueryArgs) (any, error) {
		kind := domain.ContextKindAll
		if args.ContextType != "" {
			var err error
			if kind, err = domain.ParseContextKind(args.ContextType); err != nil {
				return nil, badArg(err)
			}
		}
		return svc.Query(ctx, args.UserID, kind, service.Filter(args.Filter), args.Limit)
	}
}

func exportAction(svc *service.ContextService) action[ExportArgs] {
	return func(ctx context.Context, args ExportArgs) (any, error) {
		exporter, err := codec.ForFormat(args.Format)
		if err != nil {
			return nil, badArg(err)
		}
		include := make([]domain.ContextKind, 0, len(args.Include))
		for _, name := range args.Include {
			kind, err := domain.ParseContextKind(name)
			if err != nil {
				return nil, badArg(err)
			}
			include = append(include, kind)
		}

		snap, err := svc.Export(ctx, args.UserID, include)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := exporter.Export(snap, &buf); err != nil {
			return nil, err
		}
		return text(buf.String()), nil
	}
}
