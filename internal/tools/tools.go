// Package tools exposes the context service as MCP tools.
//
// Each entity kind gets one manage_* tool whose "action" argument selects the
// operation. Results are JSON text; failures are tool error results so the
// calling model can read and react to them.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"usercontext/internal/repository"
	"usercontext/internal/service"
)

// Version is reported to MCP clients
const Version = "0.1.0"

// NewServer creates an MCP server with every context tool registered
func NewServer(name string, svc *service.ContextService) *server.MCPServer {
	s := server.NewMCPServer(name, Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	Register(s, svc)
	return s
}

// Register adds the context tools to s
func Register(s *server.MCPServer, svc *service.ContextService) {
	RegisterDecisionTools(s, svc)
	RegisterGoalTools(s, svc)
	RegisterPreferenceTools(s, svc)
	RegisterIssueTools(s, svc)
	RegisterTodoTools(s, svc)
	RegisterContextTools(s, svc)
}

// NotificationMethod is the method of the change notifications sent to clients
const NotificationMethod = "notifications/usercontext/changed"

// ForwardEvents relays service events to connected MCP clients until ctx ends
func ForwardEvents(ctx context.Context, s *server.MCPServer, bus *service.EventBus, log *slog.Logger) {
	events := make(chan service.Event, 64)
	bus.Subscribe(events)
	defer bus.Unsubscribe(events)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			log.Debug("entity changed",
				"event", ev.Type,
				"entity_type", ev.EntityType,
				"entity_id", ev.EntityID)
			s.SendNotificationToAllClients(NotificationMethod, map[string]any{
				"type":        string(ev.Type),
				"user_id":     ev.UserID,
				"entity_type": string(ev.EntityType),
				"entity_id":   ev.EntityID,
			})
		}
	}
}

// action is the body of one tool action. A nil error with a value produces
// a JSON text result.
type action[A any] func(ctx context.Context, args A) (any, error)

// text is returned by actions whose output is already rendered
type text string

// wrap binds arguments and translates the outcome into a tool result
func wrap[A any](run action[A]) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args A
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		out, err := run(ctx, args)
		if err != nil {
			return failure(err), nil
		}
		if t, ok := out.(text); ok {
			return mcp.NewToolResultText(string(t)), nil
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func failure(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// "decision abc: not found" reads better without the colon
		return mcp.NewToolResultError(strings.Replace(err.Error(), ": not found", " not found", 1))
	case errors.Is(err, repository.ErrConflict):
		return mcp.NewToolResultError(fmt.Sprintf("already exists: %v", err))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func unknownAction(name string) error {
	return fmt.Errorf("%w: unknown action %q", service.ErrInvalid, name)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", service.ErrInvalid, field)
	}
	return nil
}

// badArg wraps an enum or format parse failure as invalid input
func badArg(err error) error {
	return fmt.Errorf("%w: %w", service.ErrInvalid, err)
}

// deleted is the result of a delete action
type deleted struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// orEmpty keeps empty lists encoding as [] rather than null
func orEmpty[T any](items []T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// parseTime accepts RFC 3339 timestamps or plain dates
func parseTime(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q is not a date", service.ErrInvalid, field, s)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
