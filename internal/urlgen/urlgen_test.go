package urlgen

import (
	"os"
	"path/filepath"
	"testing"
)

const testBase = "https://raw.githubusercontent.com/acme/widgets/main/"

// writeTree creates the given relative files (with parent dirs) under root.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", f, err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
}

func asSet(urls []string) map[string]struct{} {
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set
}

func TestCollect_FiltersAndJoins(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"a.ts",
		"node_modules/b.ts",
		"notes.md",
		"package-lock.json",
		"image.png",
	)

	opts := Defaults()
	opts.BaseURL = testBase
	urls, err := Collect(root, opts)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	set := asSet(urls)
	want := []string{
		testBase + "a.ts",
		testBase + "notes.md",
	}
	for _, u := range want {
		if _, ok := set[u]; !ok {
			t.Fatalf("expected URL %q in output, got %v", u, urls)
		}
	}
	if len(urls) != len(want) {
		t.Fatalf("expected exactly %d URLs, got %v", len(want), urls)
	}
}

func TestCollect_PrunesIgnoredDirsAtAnyDepth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"src/app.ts",
		"src/node_modules/lib/index.js",
		"dist/bundle.js",
	)

	opts := Defaults()
	opts.BaseURL = testBase
	urls, err := Collect(root, opts)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	set := asSet(urls)
	if _, ok := set[testBase+"src/app.ts"]; !ok {
		t.Fatalf("expected src/app.ts to be emitted, got %v", urls)
	}
	for _, u := range urls {
		if u == testBase+"src/node_modules/lib/index.js" || u == testBase+"dist/bundle.js" {
			t.Fatalf("did not expect pruned-directory file in output: %q", u)
		}
	}
}

func TestCollect_IgnoredFileNameBeatsExtension(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "package-lock.json", "config.json")

	opts := Defaults()
	opts.BaseURL = testBase
	urls, err := Collect(root, opts)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(urls) != 1 || urls[0] != testBase+"config.json" {
		t.Fatalf("expected only config.json, got %v", urls)
	}
}

func TestCollect_RelativePathsUseForwardSlashes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "docs/guide/intro.md")

	opts := Defaults()
	opts.BaseURL = testBase
	urls, err := Collect(root, opts)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(urls) != 1 || urls[0] != testBase+"docs/guide/intro.md" {
		t.Fatalf("expected slash-joined URL, got %v", urls)
	}
}

func TestCollect_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.ts", "b/c.md", "b/d.css")

	opts := Defaults()
	opts.BaseURL = testBase
	first, err := Collect(root, opts)
	if err != nil {
		t.Fatalf("first Collect error: %v", err)
	}
	second, err := Collect(root, opts)
	if err != nil {
		t.Fatalf("second Collect error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ across runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("record %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestCollect_GlobsRestrict(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/app.ts", "src/style.css", "README.md")

	opts := Defaults()
	opts.BaseURL = testBase
	opts.Globs = []string{"src/**"}
	urls, err := Collect(root, opts)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	set := asSet(urls)
	if _, ok := set[testBase+"README.md"]; ok {
		t.Fatalf("did not expect README.md outside glob, got %v", urls)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 src URLs, got %v", urls)
	}
}

func TestCollect_RespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "keep.ts", "secret.ts")
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("secret.ts\n"), 0o644); err != nil {
		t.Fatalf("write .gitignore: %v", err)
	}

	opts := Defaults()
	opts.BaseURL = testBase
	opts.RespectGitignore = true
	urls, err := Collect(root, opts)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(urls) != 1 || urls[0] != testBase+"keep.ts" {
		t.Fatalf("expected only keep.ts, got %v", urls)
	}
}

func TestCount_MatchesCollect(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.ts", "b.md", "node_modules/c.ts", "skip.png")

	opts := Defaults()
	opts.BaseURL = testBase
	urls, err := Collect(root, opts)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if n := Count(root, opts); n != len(urls) {
		t.Fatalf("Count = %d, Collect emitted %d", n, len(urls))
	}
}

func TestCollectProgress_ReportsEachEmittedFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.ts", "b.md", "skip.png")

	opts := Defaults()
	opts.BaseURL = testBase
	var seen []string
	urls, err := CollectProgress(root, opts, func(rel string) {
		seen = append(seen, rel)
	})
	if err != nil {
		t.Fatalf("CollectProgress error: %v", err)
	}
	if len(seen) != len(urls) {
		t.Fatalf("callback fired %d times for %d records", len(seen), len(urls))
	}
	for _, rel := range seen {
		if rel == "skip.png" {
			t.Fatalf("callback fired for excluded file")
		}
	}
}

func TestWrite_NoTrailingNewlineAndOverwrites(t *testing.T) {
	out := filepath.Join(t.TempDir(), "raw_urls.txt")

	if err := Write(out, []string{testBase + "a.ts", testBase + "b.md"}); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := testBase + "a.ts\n" + testBase + "b.md"
	if string(b) != want {
		t.Fatalf("output = %q, want %q", string(b), want)
	}

	// A second write fully replaces the first.
	if err := Write(out, nil); err != nil {
		t.Fatalf("second Write error: %v", err)
	}
	b, err = os.ReadFile(out)
	if err != nil {
		t.Fatalf("re-read output: %v", err)
	}
	if string(b) != "" {
		t.Fatalf("expected empty file after overwrite, got %q", string(b))
	}
}

func TestCollect_EmptyTreeWritesEmptyManifest(t *testing.T) {
	root := t.TempDir()

	opts := Defaults()
	opts.BaseURL = testBase
	urls, err := Collect(root, opts)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(urls) != 0 {
		t.Fatalf("expected no URLs, got %v", urls)
	}

	out := filepath.Join(root, "raw_urls.txt")
	if err := Write(out, urls); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(b) != 0 {
		t.Fatalf("expected empty output file, got %q", string(b))
	}
}

func TestBaseURL(t *testing.T) {
	got := BaseURL("acme", "widgets", "main")
	if got != testBase {
		t.Fatalf("BaseURL = %q, want %q", got, testBase)
	}
	// Empty branch falls back to main.
	if BaseURL("acme", "widgets", "") != testBase {
		t.Fatalf("expected empty branch to default to main")
	}
}
