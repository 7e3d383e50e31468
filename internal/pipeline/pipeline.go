// Package pipeline orchestrates the per-page and cross-page stages of
// one export: C2→C3→C6→C7 sequentially per page, C8→C9 once every page
// has finished, with up to four pages processed concurrently.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hebrewscanner/reconstruct/internal/assembler"
	"github.com/hebrewscanner/reconstruct/internal/correction"
	"github.com/hebrewscanner/reconstruct/internal/emit"
	"github.com/hebrewscanner/reconstruct/internal/layout"
	"github.com/hebrewscanner/reconstruct/internal/maskedlm"
	"github.com/hebrewscanner/reconstruct/internal/metrics"
	"github.com/hebrewscanner/reconstruct/internal/ocringest"
	"github.com/hebrewscanner/reconstruct/internal/svcctx"
	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

// defaultPageConcurrency is the soft cap on concurrently processed
// pages during a multi-page export, tuned to keep the LM queue full
// without unbounded memory growth.
const defaultPageConcurrency = 4

// PageResult is the per-page output of the sequential C2→C3→C6→C7
// stages.
type PageResult struct {
	Index      int
	Boxes      []wordbox.Box
	Structure  wordbox.PageStructure
	PlainText  string
	MarginText string
}

// ProcessPage runs one page's OCR TSV through ingest, margin detection
// (already folded into ingest), language-model correction and layout
// analysis. The masked-LM adapter and metrics counters are pulled from
// ctx (see svcctx); the adapter may be nil or not-ready, in which case
// C6's rule-based phase still runs.
func ProcessPage(ctx context.Context, index int, tsv io.Reader) (PageResult, error) {
	logger := svcctx.LoggerFrom(ctx)
	adapter := svcctx.PredictorFrom(ctx)
	m := svcctx.MetricsFrom(ctx)

	boxes := ocringest.ParseAndFilter(tsv)

	var nonMargin, margin []wordbox.Box
	for _, b := range boxes {
		if b.IsMargin {
			margin = append(margin, b)
		} else {
			nonMargin = append(nonMargin, b)
		}
	}

	corrected := correction.Run(ctx, adapter, nonMargin, m)
	for _, b := range corrected {
		if b.IsPlaceholder {
			m.IncPlaceholder()
		}
	}
	if err := ctx.Err(); err != nil {
		return PageResult{}, fmt.Errorf("page %d cancelled: %w", index, err)
	}

	structure := layout.Analyze(ctx, corrected)
	text := emit.PlainText(corrected, structure)
	marginText := emit.MarginText(margin)

	logger.Debug("page processed", "page", index, "words", len(corrected), "margin_words", len(margin))

	return PageResult{Index: index, Boxes: corrected, Structure: structure, PlainText: text, MarginText: marginText}, nil
}

// RunExport processes every page concurrently (bounded by
// pageConcurrency, or defaultPageConcurrency if <= 0), then runs the
// multi-page watermark assembler and returns the final per-page
// results in input order. Returns the first error encountered (or the
// context's cancellation cause); other in-flight pages are cancelled.
func RunExport(ctx context.Context, pages []io.Reader, adapter *maskedlm.Adapter, m *metrics.Counters, pageConcurrency int) ([]PageResult, error) {
	if pageConcurrency <= 0 {
		pageConcurrency = defaultPageConcurrency
	}

	ctx = svcctx.WithServices(ctx, &svcctx.Services{Logger: svcctx.LoggerFrom(ctx), Predictor: adapter, Metrics: m})

	results := make([]PageResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pageConcurrency)

	for i, tsv := range pages {
		i, tsv := i, tsv
		g.Go(func() error {
			res, err := ProcessPage(gctx, i, tsv)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return applyWatermarkRemoval(results, m), nil
}

// applyWatermarkRemoval runs the multi-page assembler over the
// finished page set and folds its output back into PageResult.
func applyWatermarkRemoval(results []PageResult, m *metrics.Counters) []PageResult {
	asmPages := make([]assembler.Page, len(results))
	for i, r := range results {
		asmPages[i] = assembler.Page{
			Paragraphs: splitBlankLines(r.PlainText),
			Structure:  r.Structure,
		}
	}

	before := countParagraphs(asmPages)
	cleaned := assembler.RemoveWatermarks(asmPages)
	after := countParagraphs(cleaned)
	if removed := before - after; removed > 0 {
		m.AddWatermarksRemoved(removed)
	}

	out := make([]PageResult, len(results))
	for i, r := range results {
		out[i] = r
		out[i].Structure = cleaned[i].Structure
		out[i].PlainText = joinParagraphs(cleaned[i].Paragraphs)
	}
	return out
}

func countParagraphs(pages []assembler.Page) int {
	n := 0
	for _, p := range pages {
		n += len(p.Paragraphs)
	}
	return n
}

// splitBlankLines splits text into paragraphs separated by one or more
// blank lines, trimming surrounding whitespace and dropping empty
// paragraphs.
func splitBlankLines(text string) []string {
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		if p := strings.TrimSpace(block); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinParagraphs(paragraphs []string) string {
	return strings.Join(paragraphs, "\n\n")
}
