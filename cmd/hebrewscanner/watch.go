package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchFormat string

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Watch a directory for new OCR TSV exports and process each one",
	Long: `watch follows a directory where an upstream OCR step drops one .tsv file
per completed page, running each new file through process as a single-page
export as soon as it is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&processOutDir, "out", ".", "output directory")
	watchCmd.Flags().StringVar(&watchFormat, "format", "txt", "output format: txt or docx")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	logger := newLogger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching for OCR TSV exports", "dir", dir)

	ctx := cmd.Context()
	processFormat = watchFormat
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".tsv") {
				continue
			}
			logger.Info("processing new export", "file", event.Name)
			if err := runProcess(cmd, []string{event.Name}); err != nil {
				logger.Error("process failed", "file", event.Name, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
