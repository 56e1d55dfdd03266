package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"usercontext/internal/codec"
	"usercontext/internal/domain"
	"usercontext/internal/repository"
	"usercontext/internal/service"
)

// ContextHandler serves context queries over HTTP
type ContextHandler struct {
	svc *service.ContextService
	log *slog.Logger
}

func NewContextHandler(svc *service.ContextService, log *slog.Logger) *ContextHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ContextHandler{svc: svc, log: log.With("component", "http")}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// reserved query parameters; everything else on /context is a filter
var reserved = map[string]bool{"kind": true, "limit": true}

// Health reports that the server is up
func (h *ContextHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// Query returns a context snapshot for one user
func (h *ContextHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := domain.ContextKindAll
	if k := q.Get("kind"); k != "" {
		var err error
		if kind, err = domain.ParseContextKind(k); err != nil {
			h.writeError(w, "Invalid kind", err.Error(), http.StatusBadRequest)
			return
		}
	}
	limit, ok := h.limit(w, r, 0)
	if !ok {
		return
	}

	filter := service.Filter{}
	for key, values := range q {
		if !reserved[key] && len(values) > 0 {
			filter[key] = values[0]
		}
	}

	snap, err := h.svc.Query(r.Context(), r.PathValue("user"), kind, filter, limit)
	if err != nil {
		h.fail(w, "Query failed", err)
		return
	}
	h.writeJSON(w, snap, http.StatusOK)
}

// Activity returns the newest audit entries of one user
func (h *ContextHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.limit(w, r, 50)
	if !ok {
		return
	}
	entries, err := h.svc.RecentActivity(r.Context(), r.PathValue("user"), limit)
	if err != nil {
		h.fail(w, "Failed to read activity", err)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	h.writeJSON(w, entries, http.StatusOK)
}

// History returns the audit trail of one entity
func (h *ContextHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.AuditTrail(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to read history", err)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	h.writeJSON(w, entries, http.StatusOK)
}

// Entity returns one entity of the kind named in the path
func (h *ContextHandler) Entity(w http.ResponseWriter, r *http.Request) {
	ctx, id := r.Context(), r.PathValue("id")

	var (
		v   any
		err error
	)
	switch r.PathValue("kind") {
	case "decisions":
		v, err = h.svc.GetDecision(ctx, id)
	case "goals":
		v, err = h.svc.GetGoal(ctx, id)
	case "preferences":
		v, err = h.svc.GetPreference(ctx, id)
	case "issues":
		v, err = h.svc.GetIssue(ctx, id)
	case "todos":
		v, err = h.svc.GetTodo(ctx, id)
	default:
		h.writeError(w, "Not found", "unknown entity kind "+r.PathValue("kind"), http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(w, "Failed to read entity", err)
		return
	}
	h.writeJSON(w, v, http.StatusOK)
}

// Export writes a user's context in the requested format
func (h *ContextHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	exporter, err := codec.ForFormat(q.Get("format"))
	if err != nil {
		h.writeError(w, "Invalid format", err.Error(), http.StatusBadRequest)
		return
	}
	var include []domain.ContextKind
	if raw := q.Get("include"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			kind, err := domain.ParseContextKind(strings.TrimSpace(name))
			if err != nil {
				h.writeError(w, "Invalid include", err.Error(), http.StatusBadRequest)
				return
			}
			include = append(include, kind)
		}
	}

	snap, err := h.svc.Export(r.Context(), r.PathValue("user"), include)
	if err != nil {
		h.fail(w, "Export failed", err)
		return
	}

	// buffer so an encoding failure can still become an error response
	var buf bytes.Buffer
	if err := exporter.Export(snap, &buf); err != nil {
		h.fail(w, "Export failed", err)
		return
	}
	w.Header().Set("Content-Type", contentType(exporter.Format()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func contentType(format string) string {
	switch format {
	case "yaml":
		return "application/x-yaml"
	case "csv":
		return "text/csv; charset=utf-8"
	case "markdown":
		return "text/markdown; charset=utf-8"
	default:
		return "application/json"
	}
}

func (h *ContextHandler) limit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		h.writeError(w, "Invalid limit", "limit must be a non-negative integer", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

// fail maps service errors onto status codes
func (h *ContextHandler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrInvalid):
		h.writeError(w, "Invalid request", err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrUnavailable):
		h.writeError(w, msg, err.Error(), http.StatusServiceUnavailable)
	default:
		h.log.Error(msg, "error", err)
		h.writeError(w, msg, err.Error(), http.StatusInternalServerError)
	}
}

func (h *ContextHandler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warn("failed to encode response", "error", err)
	}
}

func (h *ContextHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}
