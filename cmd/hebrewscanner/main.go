// Command hebrewscanner is a thin reference driver over the
// reconstruction core: it reads OCR word-level TSV exports (optionally
// pre-splitting a source PDF into single-page PDFs for an external
// rasterizer/OCR step to consume) and emits plain text, a selection
// rendering or a DOCX package. The core library in internal/ is
// equally usable without this binary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Manual signal handling (rather than signal.NotifyContext) so a
	// second Ctrl+C forces an exit instead of being swallowed once the
	// context is already cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nForced exit")
		os.Exit(1)
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
