package urlgen

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultOutputFile is where generate writes the manifest unless overridden.
const DefaultOutputFile = "raw_urls.txt"

// Options controls which files under the root contribute a URL record.
type Options struct {
	// BaseURL is prepended to each slash-normalized relative path.
	BaseURL string
	// Globs are optional doublestar include patterns, matched against the
	// relative path. Empty means every file is a candidate.
	Globs []string
	// IgnoreDirs are directory names pruned before descent.
	IgnoreDirs []string
	// IgnoreFiles are exact file names excluded from the manifest.
	IgnoreFiles []string
	// Extensions are the allowed file suffixes; a file qualifies only if its
	// name ends with one of them.
	Extensions []string
	// RespectGitignore additionally excludes paths matched by .gitignore
	// and .git/info/exclude at the root.
	RespectGitignore bool
}

// Defaults returns the stock filter sets: web-project source extensions,
// the usual dependency/editor directories pruned, and lockfiles excluded.
func Defaults() Options {
	return Options{
		IgnoreDirs:  []string{"node_modules", ".git", "dist", "__pycache__", ".idea", ".vscode"},
		IgnoreFiles: []string{"package-lock.json", "yarn.lock", ".DS_Store", ".gitignore"},
		Extensions:  []string{".svelte", ".ts", ".js", ".json", ".html", ".css", ".md"},
	}
}

// BaseURL builds the raw content base for a GitHub repository, with a
// trailing slash so relative paths append directly.
func BaseURL(owner, repo, branch string) string {
	if strings.TrimSpace(branch) == "" {
		branch = "main"
	}
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/", owner, repo, branch)
}

// Collect walks the tree rooted at rootPath and returns one URL record per
// qualifying file, in traversal order. Directories named in opts.IgnoreDirs
// are pruned entirely; unreadable entries are skipped the same way the walk
// skips non-matching ones.
func Collect(rootPath string, opts Options) ([]string, error) {
	return CollectProgress(rootPath, opts, nil)
}

// CollectProgress is like Collect but invokes onFile(relPath) for each file
// that makes it into the result.
func CollectProgress(rootPath string, opts Options, onFile func(string)) ([]string, error) {
	cleanRoot, ign, inc := prepare(rootPath, opts)

	var urls []string
	err := filepath.WalkDir(cleanRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, rerr := filepath.Rel(cleanRoot, path)
		if rerr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && nameInSet(d.Name(), opts.IgnoreDirs) {
				return filepath.SkipDir
			}
			return nil
		}
		if !inc(rel, d.Name()) {
			return nil
		}
		if ign != nil && ign.MatchesPath(rel) {
			return nil
		}
		if onFile != nil {
			onFile(rel)
		}
		urls = append(urls, opts.BaseURL+rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}

// Count walks the tree and returns how many files would contribute a URL
// record. Used to size progress reporting before a full collect.
func Count(rootPath string, opts Options) int {
	cleanRoot, ign, inc := prepare(rootPath, opts)

	n := 0
	_ = filepath.WalkDir(cleanRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, rerr := filepath.Rel(cleanRoot, path)
		if rerr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && nameInSet(d.Name(), opts.IgnoreDirs) {
				return filepath.SkipDir
			}
			return nil
		}
		if !inc(rel, d.Name()) {
			return nil
		}
		if ign != nil && ign.MatchesPath(rel) {
			return nil
		}
		n++
		return nil
	})
	return n
}

// Write replaces path with the records joined by newlines. The file is
// written atomically so a crash never leaves a half-written manifest; the
// previous contents are always fully overwritten. No trailing newline.
func Write(path string, urls []string) error {
	content := strings.Join(urls, "\n")
	return atomic.WriteFile(path, strings.NewReader(content))
}

// prepare resolves the root, loads ignore rules, and builds the per-file
// include predicate shared by Collect and Count.
func prepare(rootPath string, opts Options) (string, *ignore.GitIgnore, func(rel, name string) bool) {
	if strings.TrimSpace(rootPath) == "" {
		rootPath = "."
	}
	cleanRoot := filepath.Clean(rootPath)

	var ign *ignore.GitIgnore
	if opts.RespectGitignore {
		ign = loadGitIgnore(cleanRoot)
	}

	var patterns []string
	for _, g := range opts.Globs {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		patterns = append(patterns, g)
	}

	inc := func(rel, name string) bool {
		if nameInSet(name, opts.IgnoreFiles) {
			return false
		}
		if !hasAllowedSuffix(name, opts.Extensions) {
			return false
		}
		if len(patterns) == 0 {
			return true
		}
		for _, p := range patterns {
			ok, _ := doublestar.PathMatch(p, rel)
			if ok {
				return true
			}
		}
		return false
	}
	return cleanRoot, ign, inc
}

func nameInSet(name string, set []string) bool {
	for _, s := range set {
		if name == s {
			return true
		}
	}
	return false
}

// hasAllowedSuffix reports whether name ends with any of the suffixes. An
// empty suffix list admits everything.
func hasAllowedSuffix(name string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	for _, s := range suffixes {
		if s == "" {
			continue
		}
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func loadGitIgnore(root string) *ignore.GitIgnore {
	var lines []string
	gi := filepath.Join(root, ".gitignore")
	if b, err := os.ReadFile(gi); err == nil {
		lines = append(lines, strings.Split(string(b), "\n")...)
	}
	ge := filepath.Join(root, ".git", "info", "exclude")
	if b, err := os.ReadFile(ge); err == nil {
		lines = append(lines, strings.Split(string(b), "\n")...)
	}
	if len(lines) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(lines...)
}
