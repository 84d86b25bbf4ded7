package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/tracetriage/tracetriage/internal/framestats"
	"github.com/tracetriage/tracetriage/internal/longtask"
	"github.com/tracetriage/tracetriage/internal/report"
	"github.com/tracetriage/tracetriage/internal/workcat"
)

// The model input is a trimmed view of the report, not the whole thing:
// rankings are capped so the prompt stays small no matter how noisy the
// trace was.
const (
	maxLongTasks   = 10
	maxAppSections = 5
)

type (
	// Input is the JSON document handed to the model. Everything in it
	// comes from the assembled report; the explainer adds no analysis of
	// its own.
	Input struct {
		Current Section `json:"current"`
	}

	Section struct {
		Summary     report.Summary    `json:"summary"`
		Features    Features          `json:"features"`
		Assumptions map[string]string `json:"assumptions"`
	}

	Features struct {
		WorkBreakdownMs workcat.Breakdown `json:"workBreakdownMs"`
		LongTasks       []longtask.Task   `json:"longTasks"`
		AppSections     []workcat.Section `json:"appSections"`
		FrameFeatures   framestats.Stats  `json:"frameFeatures"`
	}

	// Output is the model's answer. The key names are part of the prompt
	// contract, so they stay snake_case regardless of the report schema.
	Output struct {
		Title       string `json:"title"`
		HighLevel   string `json:"high_level"`
		KeyFindings []Item `json:"key_findings"`
		Suspects    []Item `json:"suspects"`
		NextSteps   []Item `json:"next_steps"`
		Limitations []Item `json:"limitations"`
	}

	// Item is one claim with the JSON paths into Input backing it.
	Item struct {
		Text     string   `json:"text"`
		Evidence []string `json:"evidence"`
	}
)

// BuildInput shapes a report into the model input, trimming every ranking
// to its cap.
func BuildInput(rep report.Report) Input {
	return Input{
		Current: Section{
			Summary: rep.Summary,
			Features: Features{
				WorkBreakdownMs: rep.Features.CPUFeatures.WorkBreakdownMs,
				LongTasks:       trimTasks(rep.UIThreadTasks.Top, maxLongTasks),
				AppSections:     trimSections(rep.Features.AppSections.TopByDurMs, maxAppSections),
				FrameFeatures:   rep.Features.FrameFeatures,
			},
			Assumptions: rep.Assumptions,
		},
	}
}

func trimTasks(tasks []longtask.Task, limit int) []longtask.Task {
	if len(tasks) > limit {
		return tasks[:limit]
	}
	return tasks
}

func trimSections(sections []workcat.Section, limit int) []workcat.Section {
	if len(sections) > limit {
		return sections[:limit]
	}
	return sections
}

// Validate checks the model held to the output contract: a title, a
// high-level summary, and every list item carrying both text and at least
// one evidence path. It returns one problem string per violation.
func Validate(out Output) []string {
	var problems []string
	if out.Title == "" {
		problems = append(problems, "title missing")
	}
	if out.HighLevel == "" {
		problems = append(problems, "high_level missing")
	}
	lists := []struct {
		name  string
		items []Item
	}{
		{"key_findings", out.KeyFindings},
		{"suspects", out.Suspects},
		{"next_steps", out.NextSteps},
		{"limitations", out.Limitations},
	}
	for _, list := range lists {
		for i, item := range list.items {
			if item.Text == "" {
				problems = append(problems, fmt.Sprintf("%s[%d].text missing", list.name, i))
			}
			if len(item.Evidence) == 0 {
				problems = append(problems, fmt.Sprintf("%s[%d].evidence missing", list.name, i))
			}
		}
	}
	return problems
}

// RenderMarkdown lays the validated output out as a human-readable note
// with an evidence appendix mapping each claim back into the input.
func RenderMarkdown(out Output) string {
	var sb strings.Builder
	title := out.Title
	if title == "" {
		title = "Performance Summary"
	}
	fmt.Fprintf(&sb, "# %s\n\n%s\n\n", title, out.HighLevel)

	sections := []struct {
		title string
		items []Item
	}{
		{"Key Findings", out.KeyFindings},
		{"Suspects", out.Suspects},
		{"Next Steps", out.NextSteps},
		{"Limitations", out.Limitations},
	}
	for _, section := range sections {
		fmt.Fprintf(&sb, "## %s\n", section.title)
		for _, item := range section.items {
			fmt.Fprintf(&sb, "- %s\n", item.Text)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Evidence Appendix\n")
	for _, section := range sections {
		fmt.Fprintf(&sb, "### %s\n", section.title)
		for _, item := range section.items {
			if len(item.Evidence) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "- %s\n", item.Text)
			for _, path := range item.Evidence {
				fmt.Fprintf(&sb, "  - %s\n", path)
			}
		}
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String()) + "\n"
}

// Run shapes the report, asks the model to explain it, validates the
// answer and renders the markdown note.
func Run(ctx context.Context, c *Client, rep report.Report) (Output, string, error) {
	out, err := c.Explain(ctx, BuildInput(rep))
	if err != nil {
		return Output{}, "", err
	}
	if problems := Validate(out); len(problems) > 0 {
		return Output{}, "", fmt.Errorf("explanation failed validation: %s", strings.Join(problems, ", "))
	}
	return out, RenderMarkdown(out), nil
}
