package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"usercontext/internal/domain"
)

// CSVCodec exports a flat table with one row per entity. Kind specific
// fields are folded into a few shared columns, so the format is export only.
type CSVCodec struct{}

// NewCSVCodec creates a new CSV codec
func NewCSVCodec() *CSVCodec {
	return &CSVCodec{}
}

// Format returns the codec format identifier
func (c *CSVCodec) Format() string {
	return "csv"
}

var csvHeader = []string{"kind", "id", "user_id", "summary", "category", "status", "priority", "scope", "project_id", "created_at"}

// Export writes every entity in the snapshot as a CSV row
func (c *CSVCodec) Export(snapshot *domain.ContextSnapshot, w io.Writer) error {
	cw := csv.NewWriter(w)
	rows := [][]string{csvHeader}

	for _, d := range snapshot.Decisions {
		rows = append(rows, []string{
			"decision", d.ID, d.UserID, d.DecisionText, d.Category.Code(), d.Status.Code(),
			"", d.Scope.String(), deref(d.RelatedProjectID), csvTime(d.CreatedAt),
		})
	}
	for _, g := range snapshot.Goals {
		rows = append(rows, []string{
			"goal", g.ID, g.UserID, g.GoalText, "", g.Status.Code(),
			strconv.Itoa(g.Priority), "", deref(g.ProjectID), csvTime(g.CreatedAt),
		})
	}
	for _, p := range snapshot.Preferences {
		rows = append(rows, []string{
			"preference", p.ID, p.UserID, p.PreferenceName + "=" + p.PreferenceValue, p.PreferenceType.Code(), "",
			strconv.Itoa(p.Priority), p.Scope.String(), "", csvTime(p.CreatedAt),
		})
	}
	for _, i := range snapshot.Issues {
		rows = append(rows, []string{
			"issue", i.ID, i.UserID, i.IssueDescription, i.Category.Code(), i.ResolutionStatus.Code(),
			i.Severity.Code(), "", strings.Join(i.ProjectContexts, ";"), csvTime(i.CreatedAt),
		})
	}
	for _, t := range snapshot.Todos {
		rows = append(rows, []string{
			"todo", t.ID, t.UserID, t.TaskDescription, t.ContextType.Code(), t.Status.Code(),
			strconv.Itoa(t.Priority), "", deref(t.ProjectID), csvTime(t.CreatedAt),
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to encode CSV: %w", err)
	}
	return nil
}

func csvTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
