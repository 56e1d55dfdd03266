// Package render prints context entities for the terminal, either as
// lipgloss tables or as indented JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"usercontext/internal/domain"
)

const (
	idWidth   = 16
	textWidth = 40
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

// Renderer writes entities to w. Wide disables ID truncation.
type Renderer struct {
	w    io.Writer
	Wide bool
}

func New(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// JSON writes v as indented JSON
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table writes a bordered table. An empty row set prints empty instead.
func (r *Renderer) Table(empty string, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(r.w, empty)
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(r.w, t.Render())
	return err
}

func (r *Renderer) id(id string) string {
	if r.Wide {
		return id
	}
	return Truncate(id, idWidth)
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}

func (r *Renderer) Decisions(items []domain.UserDecision) error {
	rows := make([][]string, 0, len(items))
	for _, d := range items {
		rows = append(rows, []string{
			r.id(d.ID),
			Truncate(d.DecisionText, textWidth),
			d.Category.Code(),
			d.Scope.String(),
			strconv.FormatFloat(d.ConfidenceScore, 'f', 2, 64),
			strconv.Itoa(d.AppliedCount),
			d.Status.Code(),
		})
	}
	return r.Table("No decisions found.",
		[]string{"ID", "Decision", "Category", "Scope", "Confidence", "Applied", "Status"}, rows)
}

func (r *Renderer) Goals(items []domain.UserGoal) error {
	rows := make([][]string, 0, len(items))
	for _, g := range items {
		rows = append(rows, []string{
			r.id(g.ID),
			Truncate(g.GoalText, textWidth),
			g.Status.Code(),
			strconv.Itoa(g.Priority),
			fmt.Sprintf("%.0f%%", g.CompletionPercentage()),
			strconv.Itoa(len(g.Steps)),
		})
	}
	return r.Table("No goals found.",
		[]string{"ID", "Goal", "Status", "Priority", "Progress", "Steps"}, rows)
}

func (r *Renderer) Preferences(items []domain.UserPreference) error {
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		auto := "no"
		if p.AppliesToAutomation {
			auto = "yes"
		}
		rows = append(rows, []string{
			r.id(p.ID),
			Truncate(p.PreferenceName, textWidth/2),
			Truncate(p.PreferenceValue, textWidth/2),
			p.PreferenceType.Code(),
			p.Scope.String(),
			strconv.Itoa(p.FrequencyObserved),
			auto,
		})
	}
	return r.Table("No preferences found.",
		[]string{"ID", "Name", "Value", "Type", "Scope", "Seen", "Auto"}, rows)
}

func (r *Renderer) Issues(items []domain.KnownIssue) error {
	rows := make([][]string, 0, len(items))
	for _, i := range items {
		rows = append(rows, []string{
			r.id(i.ID),
			Truncate(i.IssueDescription, textWidth),
			i.Category.Code(),
			i.Severity.Code(),
			i.ResolutionStatus.Code(),
		})
	}
	return r.Table("No issues found.",
		[]string{"ID", "Issue", "Category", "Severity", "Resolution"}, rows)
}

func (r *Renderer) Todos(items []domain.ContextualTodo) error {
	rows := make([][]string, 0, len(items))
	for _, t := range items {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			r.id(t.ID),
			Truncate(t.TaskDescription, textWidth),
			t.Status.Code(),
			strconv.Itoa(t.Priority),
			t.ContextType.Code(),
			due,
		})
	}
	return r.Table("No todos found.",
		[]string{"ID", "Task", "Status", "Priority", "Context", "Due"}, rows)
}

// Snapshot prints one titled table per kind present in the snapshot
func (r *Renderer) Snapshot(s *domain.ContextSnapshot) error {
	sections := []struct {
		title   string
		present bool
		render  func() error
	}{
		{"Decisions", s.Decisions != nil, func() error { return r.Decisions(s.Decisions) }},
		{"Goals", s.Goals != nil, func() error { return r.Goals(s.Goals) }},
		{"Preferences", s.Preferences != nil, func() error { return r.Preferences(s.Preferences) }},
		{"Known issues", s.Issues != nil, func() error { return r.Issues(s.Issues) }},
		{"Todos", s.Todos != nil, func() error { return r.Todos(s.Todos) }},
	}
	for _, sec := range sections {
		if !sec.present {
			continue
		}
		if _, err := fmt.Fprintln(r.w, titleStyle.Render(sec.title)); err != nil {
			return err
		}
		if err := sec.render(); err != nil {
			return err
		}
	}
	return nil
}

// Audit prints audit entries in the order given
func (r *Renderer) Audit(entries []domain.AuditEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		change := ""
		if e.Action == domain.AuditActionStatusChange && e.OldValue != nil && e.NewValue != nil {
			change = *e.OldValue + " → " + *e.NewValue
		}
		reason := ""
		if e.Reason != nil {
			reason = Truncate(*e.Reason, textWidth)
		}
		rows = append(rows, []string{
			e.ChangedAt.Format("2006-01-02 15:04:05"),
			e.Action,
			e.EntityType.Code(),
			r.id(e.EntityID),
			change,
			reason,
			e.ChangedBy,
		})
	}
	return r.Table("No activity recorded.",
		[]string{"When", "Action", "Entity", "ID", "Change", "Reason", "By"}, rows)
}
