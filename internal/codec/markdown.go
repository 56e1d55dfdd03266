package codec

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"usercontext/internal/domain"
)

// MarkdownCodec renders a snapshot as a human readable report
type MarkdownCodec struct{}

// NewMarkdownCodec creates a new Markdown codec
func NewMarkdownCodec() *MarkdownCodec {
	return &MarkdownCodec{}
}

// Format returns the codec format identifier
func (c *MarkdownCodec) Format() string {
	return "markdown"
}

// Export writes one section per non-empty kind
func (c *MarkdownCodec) Export(snapshot *domain.ContextSnapshot, w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# User context: %s\n\n", snapshot.UserID)
	fmt.Fprintf(bw, "_Generated %s_\n", snapshot.GeneratedAt.UTC().Format(time.RFC3339))

	if len(snapshot.Decisions) > 0 {
		section(bw, "Decisions")
		for _, d := range snapshot.Decisions {
			fmt.Fprintf(bw, "- **%s** (%s, %s, confidence %.2f)\n", d.DecisionText, d.Category, d.Scope, d.ConfidenceScore)
			if d.Reason != nil {
				fmt.Fprintf(bw, "  - Reason: %s\n", *d.Reason)
			}
			if d.Status != domain.EntityStatusActive {
				fmt.Fprintf(bw, "  - Status: %s\n", d.Status)
			}
		}
	}

	if len(snapshot.Goals) > 0 {
		section(bw, "Goals")
		for _, g := range snapshot.Goals {
			fmt.Fprintf(bw, "- **%s** (%s, priority %d, %.0f%% complete)\n", g.GoalText, g.Status, g.Priority, g.CompletionPercentage())
			for _, step := range g.Steps {
				box := " "
				if step.Status == domain.GoalStatusCompleted {
					box = "x"
				}
				fmt.Fprintf(bw, "  - [%s] %d. %s\n", box, step.StepNumber, step.Description)
			}
			for _, b := range g.Blockers {
				fmt.Fprintf(bw, "  - Blocked: %s\n", b)
			}
		}
	}

	if len(snapshot.Preferences) > 0 {
		section(bw, "Preferences")
		for _, p := range snapshot.Preferences {
			fmt.Fprintf(bw, "- **%s**: %s (%s, %s, seen %d times)\n", p.PreferenceName, p.PreferenceValue, p.PreferenceType, p.Scope, p.FrequencyObserved)
			if p.Rationale != nil {
				fmt.Fprintf(bw, "  - Rationale: %s\n", *p.Rationale)
			}
		}
	}

	if len(snapshot.Issues) > 0 {
		section(bw, "Known Issues")
		for _, i := range snapshot.Issues {
			fmt.Fprintf(bw, "- **%s** [%s] (%s, %s)\n", i.IssueDescription, i.Severity, i.Category, i.ResolutionStatus)
			if len(i.Symptoms) > 0 {
				fmt.Fprintf(bw, "  - Symptoms: %s\n", strings.Join(i.Symptoms, ", "))
			}
			if i.Workaround != nil {
				fmt.Fprintf(bw, "  - Workaround: %s\n", *i.Workaround)
			}
		}
	}

	if len(snapshot.Todos) > 0 {
		section(bw, "Todos")
		for _, t := range snapshot.Todos {
			box := " "
			if t.Status == domain.TodoStatusCompleted {
				box = "x"
			}
			fmt.Fprintf(bw, "- [%s] %s (priority %d", box, t.TaskDescription, t.Priority)
			if t.DueDate != nil {
				fmt.Fprintf(bw, ", due %s", t.DueDate.Format(time.DateOnly))
			}
			fmt.Fprintln(bw, ")")
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write Markdown: %w", err)
	}
	return nil
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n## %s\n\n", title)
}
