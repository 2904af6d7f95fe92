package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteMarkdown_GroupsByDirectory(t *testing.T) {
	base := "https://raw.githubusercontent.com/acme/widgets/main/"
	urls := []string{
		base + "a.ts",
		base + "src/app.ts",
		base + "src/style.css",
	}
	s := Summary{
		RootPath:   ".",
		BaseURL:    base,
		OutPath:    "raw_urls.txt",
		StartedAt:  time.Now().Add(-time.Second),
		FinishedAt: time.Now(),
		Emitted:    len(urls),
	}

	path := filepath.Join(t.TempDir(), "report.md")
	got, err := WriteMarkdown(path, urls, s)
	if err != nil {
		t.Fatalf("WriteMarkdown error: %v", err)
	}
	if got != path {
		t.Fatalf("expected path %q, got %q", path, got)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	content := string(b)
	if !strings.Contains(content, "`src` (2)") {
		t.Fatalf("expected src group with 2 urls, got:\n%s", content)
	}
	if !strings.Contains(content, "`.` (1)") {
		t.Fatalf("expected root group with 1 url, got:\n%s", content)
	}
	if !strings.Contains(content, "**URLs emitted**: 3") {
		t.Fatalf("expected emitted count in summary, got:\n%s", content)
	}
}

func TestWriteMarkdown_DerivesFilename(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	s := Summary{RootPath: "My Project", StartedAt: time.Now(), FinishedAt: time.Now()}
	got, err := WriteMarkdown("", nil, s)
	if err != nil {
		t.Fatalf("WriteMarkdown error: %v", err)
	}
	if got != "my_project.md" {
		t.Fatalf("expected derived filename my_project.md, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, got)); err != nil {
		t.Fatalf("expected report file to exist: %v", err)
	}
}
