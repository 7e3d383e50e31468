package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// gitRelease and gitCommit are overridden at build time via
// -ldflags "-X main.gitRelease=... -X main.gitCommit=...".
var (
	gitRelease = "dev"
	gitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hebrewscanner %s\n", gitRelease)
		fmt.Printf("  Go:     %s\n", runtime.Version())
		fmt.Printf("  Commit: %s\n", gitCommit)
	},
}
