package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/scanpilot/internal/client/models"
)

func (a *App) Results(ctx context.Context) error {
	list, err := a.resultService.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No results yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSCORE\tCREATED\tINPUT")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Status, formatScore(r.ResultJSON.QualityScore), formatTime(r.CreatedAt), truncate(r.InputText, 40))
	}
	return tw.Flush()
}

func (a *App) Result(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("result <id>")
	}
	r, err := a.resultService.Get(ctx, args[0])
	if err != nil {
		return err
	}
	a.printResult(r)
	return nil
}

// Analyze reads pasted text and analyses it synchronously.
func (a *App) Analyze(ctx context.Context, args []string) error {
	model := ""
	if len(args) > 0 {
		model = args[0]
	}

	text, err := GetMultiline(a.reader, "Paste the text to analyse", a.out)
	if err != nil {
		return err
	}
	if text == "" {
		a.println("Nothing to analyse.")
		return nil
	}

	a.println("Analysing...")
	r, err := a.resultService.Analyze(ctx, models.ProcessRequest{Text: text, ModelName: model})
	if err != nil {
		return err
	}
	a.printResult(r)
	return nil
}

func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("export <id>")
	}
	loc, err := a.resultService.Export(ctx, args[0])
	if err != nil {
		return err
	}
	a.printf("Exported to %s\n", loc)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	s, err := a.resultService.Stats(ctx)
	if err != nil {
		return err
	}
	a.printf("Total documents: %d\n", s.Total)
	a.printf("Completed:       %d\n", s.Completed)
	a.printf("Pending:         %d\n", s.Pending)
	a.printf("Success rate:    %d%%\n", s.SuccessRate)
	return nil
}

func (a *App) printResult(r *models.AnalysisResult) {
	p := r.ResultJSON

	var b strings.Builder
	fmt.Fprintf(&b, "Result %s (%s, %s)\n", r.ID, r.Status, formatTime(r.CreatedAt))
	fmt.Fprintf(&b, "Quality score: %s\n", formatScore(p.QualityScore))
	if p.Analysis != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Analysis)
	}
	if len(p.Suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, s := range p.Suggestions {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}
	if m := p.DocumentMetrics; m != nil {
		b.WriteString("\nMetrics:\n")
		writeMetric(&b, "words", m.WordCount)
		writeMetric(&b, "characters", m.CharacterCount)
		writeMetric(&b, "lines", m.LineCount)
		writeMetric(&b, "sentences", m.SentenceCount)
		if m.ReadabilityScore != nil {
			fmt.Fprintf(&b, "  readability: %.1f\n", *m.ReadabilityScore)
		}
		for _, q := range m.QualityIssues {
			fmt.Fprintf(&b, "  issue: %s\n", q)
		}
	}

	a.printf("%s", b.String())
}

func writeMetric(b *strings.Builder, name string, v *int) {
	if v != nil {
		fmt.Fprintf(b, "  %s: %d\n", name, *v)
	}
}
