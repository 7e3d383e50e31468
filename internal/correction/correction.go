// Package correction runs the masked-language-model post-processor
// (and its LM-absent fallback) over one page's WordBox sequence,
// rewriting garbled Latin and Hebrew tokens in place.
package correction

import (
	"context"
	"log/slog"
	"sort"
	"unicode/utf8"

	"github.com/hebrewscanner/reconstruct/internal/maskedlm"
	"github.com/hebrewscanner/reconstruct/internal/metrics"
	"github.com/hebrewscanner/reconstruct/internal/script"
	"github.com/hebrewscanner/reconstruct/internal/svcctx"
	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

// Probability thresholds from the post-processor's four phases.
const (
	latinReplaceThreshold   = 0.05
	hebrewNearMissThreshold = 0.15
)

// minHebrewContextCount is the minimum number of Hebrew words a line
// must contain to be treated as Hebrew context.
const minHebrewContextCount = 2

// minCorrectableLen is the minimum rune length a Hebrew word must have
// to be eligible for near-miss correction or confusion-pair fallback.
const minCorrectableLen = 3

// lineStats is the per-line composition computed during preparation,
// ignoring placeholder boxes.
type lineStats struct {
	hebrewCount  int
	latinIndices []int
	hebrewIndices []int
}

func isHebrewClass(c script.Class) bool {
	return c == script.Hebrew || c == script.HebrewMixed
}

// computeLineStats classifies every non-placeholder box in line and
// returns the resulting composition. indices are positions within
// line, which callers must keep sorted by WordNum beforehand.
func computeLineStats(line []wordbox.Box) lineStats {
	var st lineStats
	for i, b := range line {
		if b.IsPlaceholder {
			continue
		}
		class := script.Classify(b.Text)
		switch {
		case isHebrewClass(class):
			st.hebrewCount++
			st.hebrewIndices = append(st.hebrewIndices, i)
		case class == script.LatinOnly:
			st.latinIndices = append(st.latinIndices, i)
		}
	}
	return st
}

// Run applies all four phases of the language-model post-processor to
// boxes, which must all belong to a single page, and returns the
// corrected sequence. boxes is not mutated; a new slice is returned.
// m records every LM call/failure and confusion-pair correction; a nil
// m disables recording without otherwise changing behavior.
func Run(ctx context.Context, adapter *maskedlm.Adapter, boxes []wordbox.Box, m *metrics.Counters) []wordbox.Box {
	logger := svcctx.LoggerFrom(ctx)
	out := make([]wordbox.Box, len(boxes))
	copy(out, boxes)

	byLine := groupIndicesByLine(out)
	lineIDs := make([]int, 0, len(byLine))
	for id := range byLine {
		lineIDs = append(lineIDs, id)
	}
	sort.Ints(lineIDs)

	ready := adapter != nil && adapter.IsReady()
	if ready {
		for _, lineID := range lineIDs {
			idxs := byLine[lineID]
			sortIndicesByWordNum(out, idxs)
			stats := computeLineStatsByIndex(out, idxs)
			if stats.hebrewCount < minHebrewContextCount {
				continue
			}
			phase1LatinReplacement(ctx, adapter, out, idxs, stats, m, logger)
		}
		for _, lineID := range lineIDs {
			idxs := byLine[lineID]
			sortIndicesByWordNum(out, idxs)
			stats := computeLineStatsByIndex(out, idxs)
			if stats.hebrewCount < minHebrewContextCount {
				continue
			}
			phase2HebrewNearMiss(ctx, adapter, out, idxs, stats, m, logger)
		}
		phase3ConfusionFallback(adapter, out, m)
	}

	for _, lineID := range lineIDs {
		idxs := byLine[lineID]
		phase4RuleBasedCleanup(out, idxs)
	}

	return out
}

// groupIndicesByLine buckets box indices (not boxes) by LineID.
func groupIndicesByLine(boxes []wordbox.Box) map[int][]int {
	byLine := make(map[int][]int)
	for i, b := range boxes {
		byLine[b.LineID] = append(byLine[b.LineID], i)
	}
	return byLine
}

func sortIndicesByWordNum(boxes []wordbox.Box, idxs []int) {
	sort.Slice(idxs, func(i, j int) bool {
		return boxes[idxs[i]].WordNum < boxes[idxs[j]].WordNum
	})
}

// computeLineStatsByIndex mirrors computeLineStats but works over a
// set of global box indices in wordNum order.
func computeLineStatsByIndex(boxes []wordbox.Box, idxs []int) lineStats {
	var st lineStats
	for _, i := range idxs {
		b := boxes[i]
		if b.IsPlaceholder {
			continue
		}
		class := script.Classify(b.Text)
		switch {
		case isHebrewClass(class):
			st.hebrewCount++
			st.hebrewIndices = append(st.hebrewIndices, i)
		case class == script.LatinOnly:
			st.latinIndices = append(st.latinIndices, i)
		}
	}
	return st
}

func lineTextByIndex(boxes []wordbox.Box, idxs []int) string {
	line := make([]wordbox.Box, len(idxs))
	for i, idx := range idxs {
		line[i] = boxes[idx]
	}
	return wordbox.LineText(line)
}

// phase1LatinReplacement rewrites Latin boxes on a Hebrew-context line
// using the masked-LM prediction, falling back to a placeholder.
func phase1LatinReplacement(ctx context.Context, adapter *maskedlm.Adapter, boxes []wordbox.Box, idxs []int, stats lineStats, m *metrics.Counters, logger *slog.Logger) {
	lineText := lineTextByIndex(boxes, idxs)
	for _, i := range stats.latinIndices {
		m.IncLMCall()
		pred, err := adapter.PredictMasked(ctx, lineText, boxes[i].Text)
		if err != nil {
			m.IncLMFailure()
			logger.Warn("masked-LM call failed", "phase", 1, "word", boxes[i].Text, "error", err)
			continue
		}
		if pred == nil {
			continue
		}
		tok, ok := bestHebrewCandidate(pred, latinReplaceThreshold)
		if ok {
			boxes[i].Text = tok
			boxes[i].IsPlaceholder = false
		} else {
			boxes[i].SetPlaceholder()
		}
	}
}

// bestHebrewCandidate returns the highest-ranked top-K entry that is a
// Hebrew token, not a continuation piece, with probability at least
// threshold.
func bestHebrewCandidate(pred *wordbox.MaskPrediction, threshold float64) (string, bool) {
	for _, tp := range pred.TopK {
		if len(tp.Token) >= 2 && tp.Token[:2] == "##" {
			continue
		}
		if float64(tp.Probability) < threshold {
			continue
		}
		if !isHebrewTokenText(tp.Token) {
			continue
		}
		return tp.Token, true
	}
	return "", false
}

func isHebrewTokenText(s string) bool {
	for _, r := range s {
		if r >= 0x0590 && r <= 0x05FF {
			return true
		}
	}
	return false
}

// phase2HebrewNearMiss corrects Hebrew words of length >= 3 whose best
// qualifying top-K candidate is a single-edit-distance neighbor.
func phase2HebrewNearMiss(ctx context.Context, adapter *maskedlm.Adapter, boxes []wordbox.Box, idxs []int, stats lineStats, m *metrics.Counters, logger *slog.Logger) {
	lineText := lineTextByIndex(boxes, idxs)
	for _, i := range stats.hebrewIndices {
		box := &boxes[i]
		if box.IsPlaceholder || utf8.RuneCountInString(box.Text) < minCorrectableLen {
			continue
		}
		m.IncLMCall()
		pred, err := adapter.PredictMasked(ctx, lineText, box.Text)
		if err != nil {
			m.IncLMFailure()
			logger.Warn("masked-LM call failed", "phase", 2, "word", box.Text, "error", err)
			continue
		}
		if pred == nil {
			continue
		}
		for _, tp := range pred.TopK {
			if len(tp.Token) >= 2 && tp.Token[:2] == "##" {
				continue
			}
			if float64(tp.Probability) < hebrewNearMissThreshold {
				continue
			}
			if tp.Token == box.Text || !isHebrewTokenText(tp.Token) {
				continue
			}
			if utf8.RuneCountInString(tp.Token) != utf8.RuneCountInString(box.Text) {
				continue
			}
			if levenshtein(box.Text, tp.Token) == 1 {
				box.Text = tp.Token
				break
			}
		}
	}
}

// phase3ConfusionFallback applies the fixed confusion-pair correction
// to every non-placeholder Hebrew word of length >= 3 on the page.
func phase3ConfusionFallback(adapter *maskedlm.Adapter, boxes []wordbox.Box, m *metrics.Counters) {
	for i := range boxes {
		b := &boxes[i]
		if b.IsPlaceholder {
			continue
		}
		if !isHebrewClass(script.Classify(b.Text)) {
			continue
		}
		if utf8.RuneCountInString(b.Text) < minCorrectableLen {
			continue
		}
		if corrected, ok := adapter.CorrectByConfusion(b.Text, adapter.ConfusionPairs()); ok {
			b.Text = corrected
			m.IncConfusionApplied()
		}
	}
}

// minLatinForCleanup and maxHebrewForCleanup gate Phase 4's
// LM-independent Latin-garbage rule.
const (
	minLatinForCleanup  = 3
	maxHebrewForCleanup = 1
)

// phase4RuleBasedCleanup replaces every Latin box on a line with a
// placeholder when the line looks like OCR noise rather than real
// bilingual text: at most one Hebrew word and at least three Latin
// words. Runs regardless of LM availability.
func phase4RuleBasedCleanup(boxes []wordbox.Box, idxs []int) {
	var hebrewCount, latinCount int
	var latinIdxs []int
	for _, i := range idxs {
		b := boxes[i]
		if b.IsPlaceholder {
			continue
		}
		class := script.Classify(b.Text)
		switch {
		case isHebrewClass(class):
			hebrewCount++
		case class == script.LatinOnly:
			latinCount++
			latinIdxs = append(latinIdxs, i)
		}
	}
	if hebrewCount <= maxHebrewForCleanup && latinCount >= minLatinForCleanup {
		for _, i := range latinIdxs {
			boxes[i].SetPlaceholder()
		}
	}
}

// levenshtein returns the edit distance between a and b, operating on
// Unicode code points.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			cur[j] = min(del, min(ins, sub))
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}
