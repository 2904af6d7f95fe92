package report

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Summary captures high-level run details for the report.
type Summary struct {
	RootPath   string
	BaseURL    string
	OutPath    string
	StartedAt  time.Time
	FinishedAt time.Time
	Emitted    int
}

// WriteMarkdown writes a GitHub-flavored Markdown report of a generation run
// to path. If path is empty, it derives a safe filename from s.RootPath.
// URLs are grouped by the top-level directory of their relative path.
func WriteMarkdown(path string, urls []string, s Summary) (string, error) {
	if strings.TrimSpace(path) == "" {
		base := filepath.Base(s.RootPath)
		if strings.TrimSpace(base) == "" || base == "." || base == string(filepath.Separator) {
			base = "results"
		}
		var b strings.Builder
		for _, r := range strings.ToLower(base) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		}
		path = fmt.Sprintf("%s.md", b.String())
	}

	var buf bytes.Buffer
	buf.WriteString("## Raw URL Manifest Report\n\n")
	buf.WriteString(fmt.Sprintf("- **Root**: %s\n", escapeMD(s.RootPath)))
	buf.WriteString(fmt.Sprintf("- **Base URL**: %s\n", escapeMD(s.BaseURL)))
	buf.WriteString(fmt.Sprintf("- **Started**: %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST")))
	buf.WriteString(fmt.Sprintf("- **Finished**: %s\n", s.FinishedAt.Format("2006-01-02 15:04:05 MST")))
	buf.WriteString(fmt.Sprintf("- **URLs emitted**: %d\n", s.Emitted))
	if s.OutPath != "" {
		buf.WriteString(fmt.Sprintf("- **Manifest**: %s\n", escapeMD(filepath.Base(s.OutPath))))
	}
	buf.WriteString("\n")

	buf.WriteString("### URLs by directory\n\n")

	byDir := make(map[string][]string)
	for _, u := range urls {
		rel := strings.TrimPrefix(u, s.BaseURL)
		dir := "."
		if i := strings.Index(rel, "/"); i >= 0 {
			dir = rel[:i]
		}
		byDir[dir] = append(byDir[dir], u)
	}

	var dirs []string
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	for _, d := range dirs {
		list := byDir[d]
		sort.Strings(list)
		buf.WriteString(fmt.Sprintf("- `%s` (%d)\n", escapeMD(d), len(list)))
		buf.WriteString("  <details><summary>urls</summary>\n\n")
		for _, u := range list {
			buf.WriteString(fmt.Sprintf("  - %s\n", escapeMD(u)))
		}
		buf.WriteString("\n  </details>\n\n")
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

func escapeMD(s string) string {
	// Basic HTML escape to be safe in GitHub Markdown
	return html.EscapeString(s)
}
