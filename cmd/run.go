package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rawurls/internal/tui"
)

func init() {
	runCmd := &cobra.Command{
		Use:   "run [root]",
		Short: "Walk a directory and write the URL manifest (TUI)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				root = args[0]
			}
			if fi, err := os.Stat(root); err != nil {
				return err
			} else if !fi.IsDir() {
				return fmt.Errorf("root %s is not a directory", root)
			}

			base, err := resolveBaseURL()
			if err != nil {
				return err
			}

			return tui.Run(root, buildOptions(base), outPath, mdOut, watchMode)
		},
	}

	addFilterFlags(runCmd)
	runCmd.Flags().StringVar(&mdOut, "md-out", "", "path to write a Markdown report of the run")
	runCmd.Flags().BoolVar(&watchMode, "watch", false, "regenerate the manifest when files change")
	rootCmd.AddCommand(runCmd)
}

var watchMode bool
