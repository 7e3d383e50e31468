package correction

import (
	"context"
	"strings"
	"testing"

	"github.com/hebrewscanner/reconstruct/internal/maskedlm"
	"github.com/hebrewscanner/reconstruct/internal/metrics"
	"github.com/hebrewscanner/reconstruct/internal/tokenizer"
	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

func testAdapter(t *testing.T, extra ...string) (*maskedlm.Adapter, *maskedlm.MockEngine, *tokenizer.Vocab) {
	t.Helper()
	lines := []string{
		"[PAD]", "[UNK]", "[CLS]", "[SEP]", "[MASK]",
		"שלום", "שדום", "hello",
	}
	lines = append(lines, extra...)
	v, err := tokenizer.LoadVocab(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("LoadVocab: %v", err)
	}
	tok := tokenizer.New(v)
	engine := maskedlm.NewMockEngine(v.Size())
	return maskedlm.New(engine, tok), engine, v
}

func mkBox(text string, lineID, wordNum int) wordbox.Box {
	return wordbox.NewBox(text, wordbox.Frame{Width: 10, Height: 10}, lineID, wordNum)
}

func TestPhase4CleanupWithoutLM(t *testing.T) {
	boxes := []wordbox.Box{
		mkBox("שלום", 1, 0),
		mkBox("Zeer", 1, 1),
		mkBox("sarees", 1, 2),
		mkBox("ergo", 1, 3),
		mkBox("loom", 1, 4),
	}

	out := Run(context.Background(), maskedlm.New(nil, tokenizer.New(mustVocab(t))), boxes, metrics.New())

	for i, b := range out {
		if i == 0 {
			if b.IsPlaceholder || b.Text != "שלום" {
				t.Fatalf("expected Hebrew word preserved, got %+v", b)
			}
			continue
		}
		if !b.IsPlaceholder || b.Text != wordbox.Placeholder {
			t.Fatalf("expected box %d to become a placeholder, got %+v", i, b)
		}
	}
}

func mustVocab(t *testing.T) *tokenizer.Vocab {
	t.Helper()
	v, err := tokenizer.LoadVocab(strings.NewReader("[PAD]\n[UNK]\n[CLS]\n[SEP]\n[MASK]\nשלום\n"))
	if err != nil {
		t.Fatalf("LoadVocab: %v", err)
	}
	return v
}

func TestPhase1LatinReplacement(t *testing.T) {
	adapter, engine, v := testAdapter(t)
	targetID, _ := v.ID("שלום")
	engine.LogitsFor = func(inputIDs []int) [][]float32 {
		rows := make([][]float32, len(inputIDs))
		for i := range rows {
			row := make([]float32, v.Size())
			row[targetID] = 10.0
			rows[i] = row
		}
		return rows
	}

	boxes := []wordbox.Box{
		mkBox("שדום", 1, 0),
		mkBox("שלום", 1, 1),
		mkBox("garbled", 1, 2),
	}

	out := Run(context.Background(), adapter, boxes, metrics.New())
	if out[2].IsPlaceholder {
		t.Fatalf("expected Latin word replaced with a high-confidence Hebrew candidate, got %+v", out[2])
	}
	if out[2].Text != "שלום" {
		t.Fatalf("expected replacement text שלום, got %q", out[2].Text)
	}
}

func TestPhase1LatinPlaceholderWhenNoConfidentCandidate(t *testing.T) {
	adapter, engine, v := testAdapter(t)
	helloID, _ := v.ID("hello")
	engine.LogitsFor = func(inputIDs []int) [][]float32 {
		rows := make([][]float32, len(inputIDs))
		for i := range rows {
			row := make([]float32, v.Size())
			row[helloID] = 10.0
			rows[i] = row
		}
		return rows
	}

	boxes := []wordbox.Box{
		mkBox("שלום", 1, 0),
		mkBox("שדום", 1, 1),
		mkBox("garbled", 1, 2),
	}

	out := Run(context.Background(), adapter, boxes, metrics.New())
	if !out[2].IsPlaceholder || out[2].Text != wordbox.Placeholder {
		t.Fatalf("expected Latin word to become placeholder when no candidate clears the threshold, got %+v", out[2])
	}
}

func TestPhase3ConfusionFallback(t *testing.T) {
	adapter, _, _ := testAdapter(t)
	boxes := []wordbox.Box{
		mkBox("שרום", 1, 0),
		mkBox("מילה", 1, 1),
	}
	m := metrics.New()
	out := Run(context.Background(), adapter, boxes, m)
	if out[0].Text != "שדום" {
		t.Fatalf("expected confusion-pair correction שרום -> שדום, got %q", out[0].Text)
	}
	if m.Snapshot().ConfusionApplied != 1 {
		t.Fatalf("expected 1 confusion-pair correction recorded, got %d", m.Snapshot().ConfusionApplied)
	}
}

func TestRunRecordsLMCallMetrics(t *testing.T) {
	adapter, engine, v := testAdapter(t)
	targetID, _ := v.ID("שלום")
	engine.LogitsFor = func(inputIDs []int) [][]float32 {
		rows := make([][]float32, len(inputIDs))
		for i := range rows {
			row := make([]float32, v.Size())
			row[targetID] = 10.0
			rows[i] = row
		}
		return rows
	}

	boxes := []wordbox.Box{
		mkBox("שלום", 1, 0),
		mkBox("שדום", 1, 1),
		mkBox("garbled", 1, 2),
	}

	m := metrics.New()
	Run(context.Background(), adapter, boxes, m)
	if m.Snapshot().LMCalls == 0 {
		t.Fatal("expected at least one LM call to be recorded")
	}
}

func TestRunIdempotent(t *testing.T) {
	adapter, engine, v := testAdapter(t)
	targetID, _ := v.ID("שלום")
	engine.LogitsFor = func(inputIDs []int) [][]float32 {
		rows := make([][]float32, len(inputIDs))
		for i := range rows {
			row := make([]float32, v.Size())
			row[targetID] = 10.0
			rows[i] = row
		}
		return rows
	}

	boxes := []wordbox.Box{
		mkBox("שלום", 1, 0),
		mkBox("שדום", 1, 1),
		mkBox("garbled", 1, 2),
	}

	once := Run(context.Background(), adapter, boxes, metrics.New())
	twice := Run(context.Background(), adapter, once, metrics.New())

	if len(once) != len(twice) {
		t.Fatalf("length changed across repeated runs: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Text != twice[i].Text || once[i].IsPlaceholder != twice[i].IsPlaceholder {
			t.Fatalf("box %d diverged across repeated runs: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"שלום", "שדום", 1},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"", "abc", 3},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
