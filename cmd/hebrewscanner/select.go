package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hebrewscanner/reconstruct/internal/emit"
	"github.com/hebrewscanner/reconstruct/internal/ocringest"
)

var selectLines string

var selectCmd = &cobra.Command{
	Use:   "select <ocr.tsv>",
	Short: "Render a user-selected set of lines from one OCR TSV page",
	Long: `select reads one word-level OCR TSV page, restricts it to the lines named by
--lines (a comma-separated list of lineId values, or all lines if omitted), and
prints the selection model: main-column text grouped into paragraphs, followed
by a "[margin]" section for any selected margin-flagged words.`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().StringVar(&selectLines, "lines", "", "comma-separated lineId values to select (default: all lines)")
}

func runSelect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	boxes := ocringest.ParseAndFilter(f)

	wanted, err := parseLineIDs(selectLines)
	if err != nil {
		return err
	}

	selected := boxes
	if wanted != nil {
		selected = nil
		for _, b := range boxes {
			if wanted[b.LineID] {
				selected = append(selected, b)
			}
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), emit.Selection(selected))
	return nil
}

// parseLineIDs parses a comma-separated list of lineId values. Returns
// nil (meaning "no filter, select everything") when raw is empty.
func parseLineIDs(raw string) (map[int]bool, error) {
	if raw == "" {
		return nil, nil
	}
	ids := make(map[int]bool)
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid lineId %q: %w", field, err)
		}
		ids[id] = true
	}
	return ids, nil
}
