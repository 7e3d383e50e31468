// Package ingest sits at the PDF ingest boundary: it counts and splits
// a multi-page PDF into single-page PDFs so the (out-of-scope)
// external rasterizer/OCR step can consume one page at a time. It
// never rasterizes or OCRs a page itself — that belongs to collaborators
// outside the reconstruction core (spec.md §1, §6).
package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCount returns the number of pages in the PDF at path, mirroring
// the teacher's use of api.PageCount to build cumulative page ranges
// across a book's source PDFs.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("count pages in %s: %w", path, err)
	}
	return n, nil
}

// SplitToSinglePages splits the PDF at path into one single-page PDF
// per page, written into outDir, and returns their paths in page
// order. outDir is created if it does not already exist.
func SplitToSinglePages(path, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create split output dir %s: %w", outDir, err)
	}

	// span=1 splits the source PDF into single-page files named
	// "<basename>_<n>.pdf", one per page — the unit the downstream
	// rasterizer/OCR step expects.
	if err := api.SplitFile(path, outDir, 1, nil); err != nil {
		return nil, fmt.Errorf("split pdf %s: %w", path, err)
	}

	n, err := PageCount(path)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]

	paths := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		paths = append(paths, filepath.Join(outDir, fmt.Sprintf("%s_%d%s", stem, i, ext)))
	}
	return paths, nil
}
