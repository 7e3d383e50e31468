package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/hebrewscanner/reconstruct/internal/maskedlm"
	"github.com/hebrewscanner/reconstruct/internal/metrics"
	"github.com/hebrewscanner/reconstruct/internal/svcctx"
)

func tsvRow(block, par, line, word int, left, top, width, height, conf float64, text string) string {
	return fmt.Sprintf("5\t1\t%d\t%d\t%d\t%d\t%v\t%v\t%v\t%v\t%v\t%s",
		block, par, line, word, left, top, width, height, conf, text)
}

func TestProcessPageProducesPlainText(t *testing.T) {
	input := tsvRow(1, 1, 1, 1, 0, 0, 40, 20, 95, "שלום") + "\n" +
		tsvRow(1, 1, 1, 2, 50, 0, 40, 20, 95, "עולם") + "\n"

	ctx := svcctx.WithServices(context.Background(), &svcctx.Services{Predictor: maskedlm.New(nil, nil), Metrics: metrics.New()})
	res, err := ProcessPage(ctx, 0, strings.NewReader(input))
	if err != nil {
		t.Fatalf("ProcessPage: %v", err)
	}
	if res.PlainText == "" {
		t.Fatal("expected non-empty plain text")
	}
}

func TestProcessPageCarriesMarginTextForward(t *testing.T) {
	var rows []string
	// Margin cluster near the left edge. Each word sits on its own
	// vertical position so duplicate-box suppression keeps all of them.
	for i := 0; i < 10; i++ {
		rows = append(rows, tsvRow(1, 1, 1, 1, float64(30+i), float64(i*30), 30, 20, 95, "שלום"))
	}
	// Main-text cluster past the gap.
	for i := 0; i < 10; i++ {
		rows = append(rows, tsvRow(1, 1, 2, 1, float64(350+i), float64(i*30), 30, 20, 95, "עולם"))
	}
	// A word further right establishes maxX so the search band covers
	// the gap between the two clusters above.
	rows = append(rows, tsvRow(1, 1, 3, 1, 500, 60, 30, 20, 95, "טוב"))

	ctx := svcctx.WithServices(context.Background(), &svcctx.Services{Predictor: maskedlm.New(nil, nil), Metrics: metrics.New()})
	res, err := ProcessPage(ctx, 0, strings.NewReader(strings.Join(rows, "\n")))
	if err != nil {
		t.Fatalf("ProcessPage: %v", err)
	}
	if !strings.Contains(res.MarginText, "שלום") {
		t.Fatalf("expected margin column text to carry the margin cluster's words forward, got %q", res.MarginText)
	}
	if strings.Contains(res.PlainText, "שלום") {
		t.Fatalf("expected margin words excluded from the main text, got %q", res.PlainText)
	}
}

func TestRunExportPreservesPageOrder(t *testing.T) {
	inputs := []string{
		tsvRow(1, 1, 1, 1, 0, 0, 40, 20, 95, "אחד"),
		tsvRow(1, 1, 1, 1, 0, 0, 40, 20, 95, "שתיים"),
		tsvRow(1, 1, 1, 1, 0, 0, 40, 20, 95, "שלוש"),
	}
	pages := make([]io.Reader, len(inputs))
	for i, in := range inputs {
		pages[i] = strings.NewReader(in)
	}

	results, err := RunExport(context.Background(), pages, maskedlm.New(nil, nil), metrics.New(), 2)
	if err != nil {
		t.Fatalf("RunExport: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Fatalf("result %d has Index %d, order not preserved", i, r.Index)
		}
	}
	if !strings.Contains(results[0].PlainText, "אחד") {
		t.Fatalf("page 0 text mismatch: %q", results[0].PlainText)
	}
}

func TestRunExportRemovesRecurringWatermark(t *testing.T) {
	// The watermark line is narrow relative to the body line, which
	// makes it a "short line" under the 80th-percentile reference
	// width and so closes its own paragraph rather than merging with
	// the line below.
	mk := func(extra string) string {
		return tsvRow(1, 1, 1, 1, 0, 0, 20, 20, 95, "חתימה") + "\n" +
			tsvRow(1, 1, 2, 1, 0, 40, 300, 20, 95, extra) + "\n"
	}
	inputs := []string{mk("ראשון"), mk("שני"), mk("שלישי")}
	pages := make([]io.Reader, len(inputs))
	for i, in := range inputs {
		pages[i] = strings.NewReader(in)
	}

	m := metrics.New()
	results, err := RunExport(context.Background(), pages, maskedlm.New(nil, nil), m, 2)
	if err != nil {
		t.Fatalf("RunExport: %v", err)
	}
	for i, r := range results {
		if strings.Contains(r.PlainText, "חתימה") {
			t.Fatalf("page %d: expected watermark removed, got %q", i, r.PlainText)
		}
	}
	if m.Snapshot().WatermarksRemoved == 0 {
		t.Fatal("expected watermark removal to be recorded in metrics")
	}
}
