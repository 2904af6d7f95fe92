package tui

import (
	"rawurls/internal/urlgen"
)

// fsCollect is a tiny bridge to avoid importing urlgen directly in tui.go
func fsCollect(root string, opts urlgen.Options, onFile func(string)) ([]string, error) {
	return urlgen.CollectProgress(root, opts, onFile)
}

func fsCount(root string, opts urlgen.Options) int {
	return urlgen.Count(root, opts)
}
