package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rawurls/internal/report"
	"rawurls/internal/urlgen"
)

func init() {
	generateCmd := &cobra.Command{
		Use:   "generate [root]",
		Short: "Walk a directory and write the URL manifest (headless)",
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

			opts := buildOptions(base)

			startedAt := time.Now()
			urls, err := urlgen.Collect(root, opts)
			if err != nil {
				return err
			}
			if err := urlgen.Write(outPath, urls); err != nil {
				return err
			}

			if mdOut != "" {
				summary := report.Summary{
					RootPath:   root,
					BaseURL:    base,
					OutPath:    outPath,
					StartedAt:  startedAt,
					FinishedAt: time.Now(),
					Emitted:    len(urls),
				}
				if _, err := report.WriteMarkdown(mdOut, urls, summary); err != nil {
					return err
				}
			}

			fmt.Printf("Saved %d URLs to %s\n", len(urls), outPath)
			return nil
		},
	}

	addFilterFlags(generateCmd)
	generateCmd.Flags().StringVar(&mdOut, "md-out", "", "path to write a Markdown report of the run")
	rootCmd.AddCommand(generateCmd)
}

var (
	owner            string
	repo             string
	branch           string
	baseURL          string
	outPath          string
	extensions       []string
	ignoreDirs       []string
	ignoreFiles      []string
	globPatterns     []string
	respectGitignore bool
	mdOut            string
)

// addFilterFlags registers the flags shared by generate and run.
func addFilterFlags(c *cobra.Command) {
	defaults := urlgen.Defaults()
	c.Flags().StringVar(&owner, "owner", "", "GitHub repository owner used to build the base URL")
	c.Flags().StringVar(&repo, "repo", "", "GitHub repository name used to build the base URL")
	c.Flags().StringVar(&branch, "branch", "main", "branch name used to build the base URL")
	c.Flags().StringVar(&baseURL, "base-url", "", "explicit base URL prefix (overrides --owner/--repo/--branch)")
	c.Flags().StringVar(&outPath, "out", urlgen.DefaultOutputFile, "output manifest path")
	c.Flags().StringSliceVar(&extensions, "ext", defaults.Extensions, "allowed file suffixes")
	c.Flags().StringSliceVar(&ignoreDirs, "ignore-dir", defaults.IgnoreDirs, "directory names pruned from the walk")
	c.Flags().StringSliceVar(&ignoreFiles, "ignore-file", defaults.IgnoreFiles, "exact file names excluded from the manifest")
	c.Flags().StringSliceVar(&globPatterns, "glob", nil, "optional include glob patterns (doublestar)")
	c.Flags().BoolVar(&respectGitignore, "respect-gitignore", false, "also exclude paths matched by .gitignore")
}

// resolveBaseURL picks the base URL from the explicit flag, the environment,
// or --owner/--repo/--branch, in that order.
func resolveBaseURL() (string, error) {
	if b := strings.TrimSpace(baseURL); b != "" {
		return b, nil
	}
	if b := strings.TrimSpace(os.Getenv("RAWURLS_BASE_URL")); b != "" {
		return b, nil
	}
	if strings.TrimSpace(owner) != "" && strings.TrimSpace(repo) != "" {
		return urlgen.BaseURL(owner, repo, branch), nil
	}
	return "", fmt.Errorf("no base URL: pass --base-url, set RAWURLS_BASE_URL, or pass --owner and --repo")
}

func buildOptions(base string) urlgen.Options {
	var gl []string
	for _, g := range globPatterns {
		for _, part := range strings.Split(g, ",") {
			p := strings.TrimSpace(part)
			if p != "" {
				gl = append(gl, toSlash(p))
			}
		}
	}
	return urlgen.Options{
		BaseURL:          base,
		Globs:            gl,
		IgnoreDirs:       ignoreDirs,
		IgnoreFiles:      ignoreFiles,
		Extensions:       extensions,
		RespectGitignore: respectGitignore,
	}
}

func toSlash(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return p
	}
	p = filepath.ToSlash(p)
	if after, ok := strings.CutPrefix(p, "./"); ok {
		p = after
	}
	return p
}
