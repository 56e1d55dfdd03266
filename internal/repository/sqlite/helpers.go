package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToStringPtr converts sql.NullString to *string
func nullToStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		s := ns.String
		return &s
	}
	return nil
}

// stringPtrToNull converts *string to sql.NullString
func stringPtrToNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// boolToInt stores a bool as 0 or 1
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// Timestamp Helpers
// ============================================================================

// timeLayout is RFC 3339 with a fixed nine digit fraction. Fixed width makes
// lexical order in SQL equal to time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func timePtrToNull(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// parseRequiredTime decodes a mandatory timestamp column. A bad value is an
// ErrEncoding error rather than a zero time.
func parseRequiredTime(column, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to decode %s %q: %w", column, s, repository.ErrEncoding)
	}
	return t.UTC(), nil
}

// parseOptionalTime decodes a nullable timestamp column; unparsable text is
// treated as absent.
func parseOptionalTime(log *slog.Logger, column string, ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		log.Warn("unparsable timestamp treated as absent", "column", column, "value", ns.String)
		return nil
	}
	t = t.UTC()
	return &t
}

// ============================================================================
// JSON List Helpers
// ============================================================================

// encodeList stores a list as a JSON array; nil is stored as "[]"
func encodeList[T any](items []T) (string, error) {
	if items == nil {
		return "[]", nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeList parses a JSON array column. NULL, empty or malformed text
// yields an empty list, never an error; malformed text is logged.
func decodeList[T any](log *slog.Logger, column string, ns sql.NullString) []T {
	items := []T{}
	if !ns.Valid || ns.String == "" {
		return items
	}
	if err := json.Unmarshal([]byte(ns.String), &items); err != nil || items == nil {
		log.Warn("malformed list column treated as empty", "column", column, "error", err)
		return []T{}
	}
	return items
}

// ============================================================================
// Enum Helpers
// ============================================================================

// decodeEnum parses a stored code strictly and, when that fails, falls back
// to the fromCode variant while logging the raw value that was dropped.
func decodeEnum[T ~string](log *slog.Logger, column, raw string, parse func(string) (T, error), fallback func(string) T) T {
	v, err := parse(raw)
	if err != nil {
		v = fallback(raw)
		log.Warn("unrecognized stored value", "column", column, "value", raw, "fallback", string(v))
	}
	return v
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to a table:
// 1. Add field to the xxxRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update the xxxColumns constant - APPEND to end
// 4. Update toDomain() to map the new field
// 5. Update xxxInsertArgs() and the UPDATE statement if it is writable
// 6. Add a schemaV2 step in schema.go and bump schemaVersion
// 7. Update relevant tests
//
// CRITICAL: Column order must match between:
// - xxxColumns constant
// - scanArgs() return slice
// - xxxInsertArgs() return slice and the INSERT placeholder count

// ============================================================================
// Decision Row Scanner
// ============================================================================

// decisionRow holds all columns from a decision query for scanning
type decisionRow struct {
	ID               string
	UserID           string
	DecisionText     string
	Reason           sql.NullString
	Category         string
	ScopeKind        string
	ScopeValue       string
	RelatedProjectID sql.NullString
	ConfidenceScore  float64
	ReferencedItems  sql.NullString
	CreatedAt        string
	UpdatedAt        sql.NullString
	AppliedCount     int
	LastApplied      sql.NullString
	Status           string
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match decisionColumns order exactly
func (r *decisionRow) scanArgs() []any {
	return []any{
		&r.ID,               // 1
		&r.UserID,           // 2
		&r.DecisionText,     // 3
		&r.Reason,           // 4
		&r.Category,         // 5
		&r.ScopeKind,        // 6
		&r.ScopeValue,       // 7
		&r.RelatedProjectID, // 8
		&r.ConfidenceScore,  // 9
		&r.ReferencedItems,  // 10
		&r.CreatedAt,        // 11
		&r.UpdatedAt,        // 12
		&r.AppliedCount,     // 13
		&r.LastApplied,      // 14
		&r.Status,           // 15
	}
}

// toDomain converts the scanned row to a domain.UserDecision
func (r *decisionRow) toDomain(log *slog.Logger) (*domain.UserDecision, error) {
	createdAt, err := parseRequiredTime("created_at", r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.UserDecision{
		ID:               r.ID,
		UserID:           r.UserID,
		DecisionText:     r.DecisionText,
		Reason:           nullToStringPtr(r.Reason),
		Category:         decodeEnum(log, "decision_category", r.Category, domain.ParseDecisionCategory, domain.DecisionCategoryFromCode),
		Scope:            domain.ScopeFromParts(r.ScopeKind, r.ScopeValue),
		RelatedProjectID: nullToStringPtr(r.RelatedProjectID),
		ConfidenceScore:  r.ConfidenceScore,
		ReferencedItems:  decodeList[string](log, "referenced_items", r.ReferencedItems),
		CreatedAt:        createdAt,
		UpdatedAt:        parseOptionalTime(log, "updated_at", r.UpdatedAt),
		AppliedCount:     r.AppliedCount,
		LastApplied:      parseOptionalTime(log, "last_applied", r.LastApplied),
		Status:           decodeEnum(log, "status", r.Status, domain.ParseEntityStatus, domain.EntityStatusFromCode),
	}, nil
}

const decisionColumns = `id, user_id, decision_text, reason, decision_category, scope_kind, scope_value,
	related_project_id, confidence_score, referenced_items, created_at, updated_at,
	applied_count, last_applied, status`

// decisionInsertArgs prepares arguments in decisionColumns order
func decisionInsertArgs(d *domain.UserDecision) ([]any, error) {
	items, err := encodeList(d.ReferencedItems)
	if err != nil {
		return nil, fmt.Errorf("marshal referenced_items: %w", err)
	}
	return []any{
		d.ID,
		d.UserID,
		d.DecisionText,
		stringPtrToNull(d.Reason),
		d.Category.Code(),
		string(d.Scope.Kind()),
		d.Scope.Value(),
		stringPtrToNull(d.RelatedProjectID),
		d.ConfidenceScore,
		items,
		formatTime(d.CreatedAt),
		timePtrToNull(d.UpdatedAt),
		d.AppliedCount,
		timePtrToNull(d.LastApplied),
		d.Status.Code(),
	}, nil
}

// ============================================================================
// Goal Row Scanner
// ============================================================================

type goalRow struct {
	ID                   string
	UserID               string
	GoalText             string
	Description          sql.NullString
	ProjectID            sql.NullString
	Status               string
	Priority             int
	Steps                sql.NullString
	CreatedAt            string
	UpdatedAt            sql.NullString
	CompletionTargetDate sql.NullString
	CompletionDate       sql.NullString
	Blockers             sql.NullString
	RelatedTodos         sql.NullString
}

// scanArgs MUST match goalColumns order exactly
func (r *goalRow) scanArgs() []any {
	return []any{
		&r.ID,                   // 1
		&r.UserID,               // 2
		&r.GoalText,             // 3
		&r.Description,          // 4
		&r.ProjectID,            // 5
		&r.Status,               // 6
		&r.Priority,             // 7
		&r.Steps,                // 8
		&r.CreatedAt,            // 9
		&r.UpdatedAt,            // 10
		&r.CompletionTargetDate, // 11
		&r.CompletionDate,       // 12
		&r.Blockers,             // 13
		&r.RelatedTodos,         // 14
	}
}

func (r *goalRow) toDomain(log *slog.Logger) (*domain.UserGoal, error) {
	createdAt, err := parseRequiredTime("created_at", r.CreatedAt)
	if err != nil {
		return nil, err
	}
	steps := decodeList[domain.GoalStep](log, "steps", r.Steps)
	for i := range steps {
		steps[i].Status = decodeEnum(log, "steps.status", string(steps[i].Status), domain.ParseGoalStatus, domain.GoalStatusFromCode)
	}
	return &domain.UserGoal{
		ID:                   r.ID,
		UserID:               r.UserID,
		GoalText:             r.GoalText,
		Description:          nullToStringPtr(r.Description),
		ProjectID:            nullToStringPtr(r.ProjectID),
		Status:               decodeEnum(log, "status", r.Status, domain.ParseGoalStatus, domain.GoalStatusFromCode),
		Priority:             r.Priority,
		Steps:                steps,
		CreatedAt:            createdAt,
		UpdatedAt:            parseOptionalTime(log, "updated_at", r.UpdatedAt),
		CompletionTargetDate: parseOptionalTime(log, "completion_target_date", r.CompletionTargetDate),
		CompletionDate:       parseOptionalTime(log, "completion_date", r.CompletionDate),
		Blockers:             decodeList[string](log, "blockers", r.Blockers),
		RelatedTodos:         decodeList[string](log, "related_todos", r.RelatedTodos),
	}, nil
}

const goalColumns = `id, user_id, goal_text, description, project_id, status, priority, steps,
	created_at, updated_at, completion_target_date, completion_date, blockers, related_todos`

func goalInsertArgs(g *domain.UserGoal) ([]any, error) {
	steps, err := encodeList(g.Steps)
	if err != nil {
		return nil, fmt.Errorf("marshal steps: %w", err)
	}
	blockers, err := encodeList(g.Blockers)
	if err != nil {
		return nil, fmt.Errorf("marshal blockers: %w", err)
	}
	todos, err := encodeList(g.RelatedTodos)
	if err != nil {
		return nil, fmt.Errorf("marshal related_todos: %w", err)
	}
	return []any{
		g.ID,
		g.UserID,
		g.GoalText,
		stringPtrToNull(g.Description),
		stringPtrToNull(g.ProjectID),
		g.Status.Code(),
		g.Priority,
		steps,
		formatTime(g.CreatedAt),
		timePtrToNull(g.UpdatedAt),
		timePtrToNull(g.CompletionTargetDate),
		timePtrToNull(g.CompletionDate),
		blockers,
		todos,
	}, nil
}

// ============================================================================
// Preference Row Scanner
// ============================================================================

type preferenceRow struct {
	ID                  string
	UserID              string
	PreferenceName      string
	PreferenceValue     string
	PreferenceType      string
	ScopeKind           string
	ScopeValue          string
	AppliesToAutomation bool
	Rationale           sql.NullString
	Priority            int
	FrequencyObserved   int
	Tags                sql.NullString
	CreatedAt           string
	UpdatedAt           sql.NullString
	LastReferenced      sql.NullString
}

// scanArgs MUST match preferenceColumns order exactly
func (r *preferenceRow) scanArgs() []any {
	return []any{
		&r.ID,                  // 1
		&r.UserID,              // 2
		&r.PreferenceName,      // 3
		&r.PreferenceValue,     // 4
		&r.PreferenceType,      // 5
		&r.ScopeKind,           // 6
		&r.ScopeValue,          // 7
		&r.AppliesToAutomation, // 8
		&r.Rationale,           // 9
		&r.Priority,            // 10
		&r.FrequencyObserved,   // 11
		&r.Tags,                // 12
		&r.CreatedAt,           // 13
		&r.UpdatedAt,           // 14
		&r.LastReferenced,      // 15
	}
}

func (r *preferenceRow) toDomain(log *slog.Logger) (*domain.UserPreference, error) {
	createdAt, err := parseRequiredTime("created_at", r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.UserPreference{
		ID:                  r.ID,
		UserID:              r.UserID,
		PreferenceName:      r.PreferenceName,
		PreferenceValue:     r.PreferenceValue,
		PreferenceType:      decodeEnum(log, "preference_type", r.PreferenceType, domain.ParsePreferenceType, domain.PreferenceTypeFromCode),
		Scope:               domain.ScopeFromParts(r.ScopeKind, r.ScopeValue),
		AppliesToAutomation: r.AppliesToAutomation,
		Rationale:           nullToStringPtr(r.Rationale),
		Priority:            r.Priority,
		FrequencyObserved:   r.FrequencyObserved,
		Tags:                decodeList[string](log, "tags", r.Tags),
		CreatedAt:           createdAt,
		UpdatedAt:           parseOptionalTime(log, "updated_at", r.UpdatedAt),
		LastReferenced:      parseOptionalTime(log, "last_referenced", r.LastReferenced),
	}, nil
}

const preferenceColumns = `id, user_id, preference_name, preference_value, preference_type, scope_kind,
	scope_value, applies_to_automation, rationale, priority, frequency_observed, tags,
	created_at, updated_at, last_referenced`

func preferenceInsertArgs(p *domain.UserPreference) ([]any, error) {
	tags, err := encodeList(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return []any{
		p.ID,
		p.UserID,
		p.PreferenceName,
		p.PreferenceValue,
		p.PreferenceType.Code(),
		string(p.Scope.Kind()),
		p.Scope.Value(),
		boolToInt(p.AppliesToAutomation),
		stringPtrToNull(p.Rationale),
		p.Priority,
		p.FrequencyObserved,
		tags,
		formatTime(p.CreatedAt),
		timePtrToNull(p.UpdatedAt),
		timePtrToNull(p.LastReferenced),
	}, nil
}

// ============================================================================
// Issue Row Scanner
// ============================================================================

type issueRow struct {
	ID                 string
	UserID             string
	IssueDescription   string
	Symptoms           sql.NullString
	RootCause          sql.NullString
	Workaround         sql.NullString
	PermanentSolution  sql.NullString
	AffectedComponents sql.NullString
	Severity           string
	Category           string
	LearnedDate        string
	ResolutionStatus   string
	ResolutionDate     sql.NullString
	PreventionNotes    sql.NullString
	ProjectContexts    sql.NullString
	CreatedAt          string
	UpdatedAt          sql.NullString
}

// scanArgs MUST match issueColumns order exactly
func (r *issueRow) scanArgs() []any {
	return []any{
		&r.ID,                 // 1
		&r.UserID,             // 2
		&r.IssueDescription,   // 3
		&r.Symptoms,           // 4
		&r.RootCause,          // 5
		&r.Workaround,         // 6
		&r.PermanentSolution,  // 7
		&r.AffectedComponents, // 8
		&r.Severity,           // 9
		&r.Category,           // 10
		&r.LearnedDate,        // 11
		&r.ResolutionStatus,   // 12
		&r.ResolutionDate,     // 13
		&r.PreventionNotes,    // 14
		&r.ProjectContexts,    // 15
		&r.CreatedAt,          // 16
		&r.UpdatedAt,          // 17
	}
}

func (r *issueRow) toDomain(log *slog.Logger) (*domain.KnownIssue, error) {
	learned, err := parseRequiredTime("learned_date", r.LearnedDate)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseRequiredTime("created_at", r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.KnownIssue{
		ID:                 r.ID,
		UserID:             r.UserID,
		IssueDescription:   r.IssueDescription,
		Symptoms:           decodeList[string](log, "symptoms", r.Symptoms),
		RootCause:          nullToStringPtr(r.RootCause),
		Workaround:         nullToStringPtr(r.Workaround),
		PermanentSolution:  nullToStringPtr(r.PermanentSolution),
		AffectedComponents: decodeList[string](log, "affected_components", r.AffectedComponents),
		Severity:           decodeEnum(log, "severity", r.Severity, domain.ParseIssueSeverity, domain.IssueSeverityFromCode),
		Category:           decodeEnum(log, "issue_category", r.Category, domain.ParseIssueCategory, domain.IssueCategoryFromCode),
		LearnedDate:        learned,
		ResolutionStatus:   decodeEnum(log, "resolution_status", r.ResolutionStatus, domain.ParseResolutionStatus, domain.ResolutionStatusFromCode),
		ResolutionDate:     parseOptionalTime(log, "resolution_date", r.ResolutionDate),
		PreventionNotes:    nullToStringPtr(r.PreventionNotes),
		ProjectContexts:    decodeList[string](log, "project_contexts", r.ProjectContexts),
		CreatedAt:          createdAt,
		UpdatedAt:          parseOptionalTime(log, "updated_at", r.UpdatedAt),
	}, nil
}

const issueColumns = `id, user_id, issue_description, symptoms, root_cause, workaround,
	permanent_solution, affected_components, severity, issue_category, learned_date,
	resolution_status, resolution_date, prevention_notes, project_contexts, created_at, updated_at`

func issueInsertArgs(i *domain.KnownIssue) ([]any, error) {
	symptoms, err := encodeList(i.Symptoms)
	if err != nil {
		return nil, fmt.Errorf("marshal symptoms: %w", err)
	}
	components, err := encodeList(i.AffectedComponents)
	if err != nil {
		return nil, fmt.Errorf("marshal affected_components: %w", err)
	}
	projects, err := encodeList(i.ProjectContexts)
	if err != nil {
		return nil, fmt.Errorf("marshal project_contexts: %w", err)
	}
	return []any{
		i.ID,
		i.UserID,
		i.IssueDescription,
		symptoms,
		stringPtrToNull(i.RootCause),
		stringPtrToNull(i.Workaround),
		stringPtrToNull(i.PermanentSolution),
		components,
		i.Severity.Code(),
		i.Category.Code(),
		formatTime(i.LearnedDate),
		i.ResolutionStatus.Code(),
		timePtrToNull(i.ResolutionDate),
		stringPtrToNull(i.PreventionNotes),
		projects,
		formatTime(i.CreatedAt),
		timePtrToNull(i.UpdatedAt),
	}, nil
}

// ============================================================================
// Todo Row Scanner
// ============================================================================

type todoRow struct {
	ID                          string
	UserID                      string
	TaskDescription             string
	ContextType                 string
	RelatedEntityID             sql.NullString
	RelatedEntityType           sql.NullString
	ProjectID                   sql.NullString
	AssignedTo                  sql.NullString
	DueDate                     sql.NullString
	Status                      string
	Priority                    int
	CreatedFromConversationDate sql.NullString
	CreatedAt                   string
	UpdatedAt                   sql.NullString
	CompletionDate              sql.NullString
}

// scanArgs MUST match todoColumns order exactly
func (r *todoRow) scanArgs() []any {
	return []any{
		&r.ID,                          // 1
		&r.UserID,                      // 2
		&r.TaskDescription,             // 3
		&r.ContextType,                 // 4
		&r.RelatedEntityID,             // 5
		&r.RelatedEntityType,           // 6
		&r.ProjectID,                   // 7
		&r.AssignedTo,                  // 8
		&r.DueDate,                     // 9
		&r.Status,                      // 10
		&r.Priority,                    // 11
		&r.CreatedFromConversationDate, // 12
		&r.CreatedAt,                   // 13
		&r.UpdatedAt,                   // 14
		&r.CompletionDate,              // 15
	}
}

func (r *todoRow) toDomain(log *slog.Logger) (*domain.ContextualTodo, error) {
	createdAt, err := parseRequiredTime("created_at", r.CreatedAt)
	if err != nil {
		return nil, err
	}
	t := &domain.ContextualTodo{
		ID:                          r.ID,
		UserID:                      r.UserID,
		TaskDescription:             r.TaskDescription,
		ContextType:                 decodeEnum(log, "context_type", r.ContextType, domain.ParseTodoContextType, domain.TodoContextTypeFromCode),
		RelatedEntityID:             nullToStringPtr(r.RelatedEntityID),
		ProjectID:                   nullToStringPtr(r.ProjectID),
		AssignedTo:                  nullToStringPtr(r.AssignedTo),
		DueDate:                     parseOptionalTime(log, "due_date", r.DueDate),
		Status:                      decodeEnum(log, "status", r.Status, domain.ParseTodoStatus, domain.TodoStatusFromCode),
		Priority:                    r.Priority,
		CreatedFromConversationDate: parseOptionalTime(log, "created_from_conversation_date", r.CreatedFromConversationDate),
		CreatedAt:                   createdAt,
		UpdatedAt:                   parseOptionalTime(log, "updated_at", r.UpdatedAt),
		CompletionDate:              parseOptionalTime(log, "completion_date", r.CompletionDate),
	}
	if r.RelatedEntityType.Valid {
		et := decodeEnum(log, "related_entity_type", r.RelatedEntityType.String, domain.ParseEntityType, domain.EntityTypeFromCode)
		t.RelatedEntityType = &et
	}
	return t, nil
}

const todoColumns = `id, user_id, task_description, context_type, related_entity_id,
	related_entity_type, project_id, assigned_to, due_date, status, priority,
	created_from_conversation_date, created_at, updated_at, completion_date`

func todoInsertArgs(t *domain.ContextualTodo) []any {
	var entityType sql.NullString
	if t.RelatedEntityType != nil {
		entityType = sql.NullString{String: t.RelatedEntityType.Code(), Valid: true}
	}
	return []any{
		t.ID,
		t.UserID,
		t.TaskDescription,
		t.ContextType.Code(),
		stringPtrToNull(t.RelatedEntityID),
		entityType,
		stringPtrToNull(t.ProjectID),
		stringPtrToNull(t.AssignedTo),
		timePtrToNull(t.DueDate),
		t.Status.Code(),
		t.Priority,
		timePtrToNull(t.CreatedFromConversationDate),
		formatTime(t.CreatedAt),
		timePtrToNull(t.UpdatedAt),
		timePtrToNull(t.CompletionDate),
	}
}

// ============================================================================
// Audit Row Scanner
// ============================================================================

type auditRow struct {
	ID         string
	UserID     string
	EntityType string
	EntityID   string
	Action     string
	OldValue   sql.NullString
	NewValue   sql.NullString
	ChangedBy  string
	ChangedAt  string
	Reason     sql.NullString
}

// scanArgs MUST match auditColumns order exactly
func (r *auditRow) scanArgs() []any {
	return []any{
		&r.ID,         // 1
		&r.UserID,     // 2
		&r.EntityType, // 3
		&r.EntityID,   // 4
		&r.Action,     // 5
		&r.OldValue,   // 6
		&r.NewValue,   // 7
		&r.ChangedBy,  // 8
		&r.ChangedAt,  // 9
		&r.Reason,     // 10
	}
}

func (r *auditRow) toDomain(log *slog.Logger) (*domain.AuditEntry, error) {
	changedAt, err := parseRequiredTime("changed_at", r.ChangedAt)
	if err != nil {
		return nil, err
	}
	return &domain.AuditEntry{
		ID:         r.ID,
		UserID:     r.UserID,
		EntityType: decodeEnum(log, "entity_type", r.EntityType, domain.ParseEntityType, domain.EntityTypeFromCode),
		EntityID:   r.EntityID,
		Action:     r.Action,
		OldValue:   nullToStringPtr(r.OldValue),
		NewValue:   nullToStringPtr(r.NewValue),
		ChangedBy:  r.ChangedBy,
		ChangedAt:  changedAt,
		Reason:     nullToStringPtr(r.Reason),
	}, nil
}

const auditColumns = `id, user_id, entity_type, entity_id, action, old_value, new_value,
	changed_by, changed_at, reason`

func auditInsertArgs(a *domain.AuditEntry) []any {
	return []any{
		a.ID,
		a.UserID,
		a.EntityType.Code(),
		a.EntityID,
		a.Action,
		stringPtrToNull(a.OldValue),
		stringPtrToNull(a.NewValue),
		a.ChangedBy,
		formatTime(a.ChangedAt),
		stringPtrToNull(a.Reason),
	}
}
