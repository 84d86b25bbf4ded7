package explain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tracetriage/tracetriage/internal/longtask"
	"github.com/tracetriage/tracetriage/internal/report"
	"github.com/tracetriage/tracetriage/internal/testutil"
	"github.com/tracetriage/tracetriage/internal/types"
	"github.com/tracetriage/tracetriage/internal/workcat"
)

func TestBuildInputTrimsRankings(t *testing.T) {
	tasks := make([]longtask.Task, 0, 20)
	for i := 0; i < 20; i++ {
		tasks = append(tasks, longtask.Task{Name: fmt.Sprintf("slice%d", i), DurMs: 100})
	}
	sections := make([]workcat.Section, 0, 12)
	for i := 0; i < 12; i++ {
		sections = append(sections, workcat.Section{Name: fmt.Sprintf("UI#section%d", i), DurMs: 10})
	}

	rep := report.New(report.Inputs{
		LongTasks:   longtask.Result{ThresholdMs: 50, Count: 20, Top: tasks},
		AppSections: sections,
		Dominant:    types.NewString("app"),
		Assumptions: map[string]string{"classification": "token rules"},
	})

	in := BuildInput(rep)
	if len(in.Current.Features.LongTasks) != maxLongTasks {
		t.Fatalf("expected %d long tasks but was %d", maxLongTasks, len(in.Current.Features.LongTasks))
	}
	if len(in.Current.Features.AppSections) != maxAppSections {
		t.Fatalf("expected %d app sections but was %d", maxAppSections, len(in.Current.Features.AppSections))
	}
	if diff := testutil.Diff(in.Current.Summary, rep.Summary); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
	if in.Current.Assumptions["classification"] == "" {
		t.Fatal("expected assumptions to be carried into the input")
	}
}

func validOutput() Output {
	return Output{
		Title:     "Performance Summary",
		HighLevel: "Summary text.",
		KeyFindings: []Item{
			{Text: "Finding", Evidence: []string{"current.summary.dominantWorkCategory"}},
		},
		Suspects: []Item{
			{Text: "Suspect", Evidence: []string{"current.features.longTasks[0]"}},
		},
		NextSteps: []Item{
			{Text: "Inspect the main thread", Evidence: []string{"current.summary.mainThreadBlockedBy"}},
		},
		Limitations: []Item{
			{Text: "Classification is best-effort", Evidence: []string{"current.assumptions.classification"}},
		},
	}
}

func TestValidate(t *testing.T) {
	if problems := Validate(validOutput()); len(problems) != 0 {
		t.Fatalf("expected no problems but was %v", problems)
	}

	broken := validOutput()
	broken.Title = ""
	broken.KeyFindings = []Item{{Text: "Finding"}}
	broken.Suspects = []Item{{Evidence: []string{"current.summary"}}}
	problems := Validate(broken)
	for _, want := range []string{"title missing", "key_findings[0].evidence missing", "suspects[0].text missing"} {
		found := false
		for _, p := range problems {
			if p == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected problems to include %q, was %v", want, problems)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(validOutput())
	for _, want := range []string{
		"# Performance Summary",
		"## Key Findings",
		"## Suspects",
		"## Next Steps",
		"## Limitations",
		"## Evidence Appendix",
		"  - current.summary.dominantWorkCategory",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected rendered markdown to contain %q:\n%s", want, md)
		}
	}
	if !strings.HasSuffix(md, "\n") {
		t.Fatal("expected rendered markdown to end with a newline")
	}
}
