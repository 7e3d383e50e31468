package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hebrewscanner/reconstruct/internal/config"
	"github.com/hebrewscanner/reconstruct/internal/corpus"
	"github.com/hebrewscanner/reconstruct/internal/emit"
	"github.com/hebrewscanner/reconstruct/internal/ingest"
	"github.com/hebrewscanner/reconstruct/internal/maskedlm"
	"github.com/hebrewscanner/reconstruct/internal/metrics"
	"github.com/hebrewscanner/reconstruct/internal/pipeline"
	"github.com/hebrewscanner/reconstruct/internal/svcctx"
	"github.com/hebrewscanner/reconstruct/internal/tokenizer"
)

var (
	processOutDir string
	processFormat string
	processPDF    bool
	processTitle  string
)

var processCmd = &cobra.Command{
	Use:   "process <ocr.tsv>...",
	Short: "Reconstruct one export from word-level OCR TSV pages",
	Long: `process reads one or more word-level OCR TSV files (one per page, Tesseract's
--tsv column schema), runs them through the reconstruction pipeline, and
writes the requested output to --out.

If --pdf is set, each positional argument is instead treated as a source PDF:
it is split into single-page PDFs under <out>/pages/ for an external
rasterizer/OCR step to consume, and process exits without reconstruction
(the OCR engine itself is outside this tool's scope).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processOutDir, "out", ".", "output directory")
	processCmd.Flags().StringVar(&processFormat, "format", "txt", "output format: txt or docx")
	processCmd.Flags().BoolVar(&processPDF, "pdf", false, "treat inputs as source PDFs and only split them into single pages")
	processCmd.Flags().StringVar(&processTitle, "title", "", "document title (docx format only; default: first input's base name)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger()

	if processPDF {
		return splitPDFs(logger, args)
	}

	cfgMgr, err := config.NewManager(cfgFile)
	if err != nil {
		logger.Warn("config not loaded, using defaults", "error", err)
	}
	cfg := config.DefaultConfig()
	if cfgMgr != nil {
		cfg = cfgMgr.Get()
		cfgMgr.OnChange(func(updated *config.Config) {
			logger.Info("config reloaded", "vocab_path", updated.VocabPath, "corpus_path", updated.CorpusPath)
		})
		cfgMgr.WatchConfig()
	}

	adapter, err := buildAdapter(cfg, logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	ctx = svcctx.WithServices(ctx, &svcctx.Services{Logger: logger, Predictor: adapter, Metrics: m})

	readers, closers, err := openPages(args)
	defer closeAll(closers)
	if err != nil {
		return err
	}

	results, err := pipeline.RunExport(ctx, readers, adapter, m, cfg.PageConcurrency)
	if err != nil {
		return fmt.Errorf("process export: %w", err)
	}

	if err := os.MkdirAll(processOutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	snap := m.Snapshot()
	logger.Info("export complete",
		"pages", len(results),
		"placeholders", snap.Placeholders,
		"watermarks_removed", snap.WatermarksRemoved,
	)

	switch processFormat {
	case "txt":
		return writePlainText(results)
	case "docx":
		return writeDocx(args, results)
	default:
		return fmt.Errorf("unknown format %q: must be txt or docx", processFormat)
	}
}

// buildAdapter wires a masked-LM adapter from the loaded config's
// vocabulary and HTTP endpoint. Returns a nil adapter (LM-unavailable)
// if the vocabulary cannot be loaded — Phase 4's rule-based cleanup
// still runs in that case, per spec.md §7.
func buildAdapter(cfg *config.Config, logger *slog.Logger) (*maskedlm.Adapter, error) {
	vocab, err := tokenizer.LoadVocabFile(cfg.VocabPath)
	if err != nil {
		logger.Warn("vocabulary not loaded, language-model phases disabled", "path", cfg.VocabPath, "error", err)
		return nil, nil
	}

	pairs, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	tok := tokenizer.New(vocab)
	engine := maskedlm.NewHTTPEngine(maskedlm.HTTPEngineConfig{
		BaseURL:    cfg.LM.Endpoint,
		Timeout:    cfg.LM.Timeout,
		MaxRetries: uint(cfg.LM.Retries),
	})
	engine.MarkReady()
	adapter := maskedlm.New(maskedlm.NewSerializingEngine(engine), tok)
	adapter.SetConfusionPairs(pairs)
	return adapter, nil
}

func openPages(args []string) ([]io.Reader, []io.Closer, error) {
	readers := make([]io.Reader, 0, len(args))
	closers := make([]io.Closer, 0, len(args))
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return nil, closers, fmt.Errorf("open %s: %w", path, err)
		}
		readers = append(readers, f)
		closers = append(closers, f)
	}
	return readers, closers, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}

func writePlainText(results []pipeline.PageResult) error {
	for _, r := range results {
		path := filepath.Join(processOutDir, fmt.Sprintf("page-%03d.txt", r.Index+1))
		if err := os.WriteFile(path, []byte(r.PlainText), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

func writeDocx(inputs []string, results []pipeline.PageResult) error {
	title := processTitle
	if title == "" && len(inputs) > 0 {
		base := filepath.Base(inputs[0])
		title = base[:len(base)-len(filepath.Ext(base))]
	}

	doc := emit.Document{Title: title}
	for _, r := range results {
		doc.Pages = append(doc.Pages, emit.PageContent{
			MainText:   r.PlainText,
			MarginText: r.MarginText,
			Structure:  r.Structure,
			Boxes:      r.Boxes,
		})
	}

	buf, err := emit.NewBuilder(doc).BuildToBuffer()
	if err != nil {
		return fmt.Errorf("build docx: %w", err)
	}

	path := filepath.Join(processOutDir, "export.docx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func splitPDFs(logger *slog.Logger, paths []string) error {
	pagesDir := filepath.Join(processOutDir, "pages")
	var allPages []string
	for _, path := range paths {
		pages, err := ingest.SplitToSinglePages(path, pagesDir)
		if err != nil {
			return fmt.Errorf("split %s: %w", path, err)
		}
		allPages = append(allPages, pages...)
		logger.Info("split pdf", "source", path, "pages", len(pages))
	}
	sort.Strings(allPages)
	fmt.Fprintf(os.Stdout, "wrote %d single-page PDFs to %s\n", len(allPages), pagesDir)
	return nil
}
