package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rawurls",
	Short: "Generate raw content URL manifests from a repo/directory",
	Long:  "Rawurls walks a directory tree, filters files by extension and ignore lists, and writes a newline-delimited manifest of raw content URLs (base URL + relative path).",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
