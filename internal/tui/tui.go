package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"rawurls/internal/report"
	"rawurls/internal/urlgen"
)

type fileScannedMsg struct{ rel string }
type scanDoneMsg struct {
	urls []string
	err  error
}
type tickMsg struct{ t time.Time }
type fileChangedMsg struct{ path string }
type watchErrorMsg struct{ err error }

type model struct {
	rootPath  string
	opts      urlgen.Options
	outPath   string
	mdOut     string
	watchMode bool

	files    chan string
	doneCh   chan scanDoneMsg
	started  time.Time
	finished time.Time
	done     bool

	spin spinner.Model
	prog progress.Model
	vp   viewport.Model

	lines []string

	expected int
	scanned  int
	emitted  int
	urls     []string
	scanErr  error
	writeErr error
	mdPath   string

	// Context for canceling scans
	scanCtx    context.Context
	scanCancel context.CancelFunc
}

// Run walks rootPath with the given filters, shows progress, and writes the
// URL manifest (plus an optional Markdown report) when the scan completes.
func Run(rootPath string, opts urlgen.Options, outPath string, mdOut string, watchMode bool) error {
	m := &model{rootPath: rootPath, opts: opts, outPath: outPath, mdOut: mdOut, watchMode: watchMode}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *model) Init() tea.Cmd {
	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	m.prog = progress.New(progress.WithDefaultGradient())
	m.started = time.Now()
	m.files = make(chan string, 256)
	m.doneCh = make(chan scanDoneMsg, 1)

	m.startScan()

	if m.watchMode {
		return tea.Batch(m.spin.Tick, m.waitForEvent(), tickCmd(), m.startWatcher())
	}
	return tea.Batch(m.spin.Tick, m.waitForEvent(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg{t: t} })
}

func (m *model) startScan() {
	// Cancel previous scan if it exists
	if m.scanCancel != nil {
		m.scanCancel()
	}
	m.scanCtx, m.scanCancel = context.WithCancel(context.Background())

	ctx := m.scanCtx
	files := m.files
	doneCh := m.doneCh
	go func() {
		m.expected = fsCount(m.rootPath, m.opts)

		urls, err := fsCollect(m.rootPath, m.opts, func(rel string) {
			select {
			case <-ctx.Done():
				return
			case files <- rel:
			}
		})
		select {
		case <-ctx.Done():
		case doneCh <- scanDoneMsg{urls: urls, err: err}:
		}
	}()
}

func (m *model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case rel := <-m.files:
			return fileScannedMsg{rel: rel}
		case d := <-m.doneCh:
			return d
		}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.scanCancel != nil {
				m.scanCancel()
			}
			return m, tea.Quit
		case "r":
			// Manual rescan - only available when scan is done
			if m.done {
				m.lines = append(m.lines, "🔄 Manual rescan triggered")
				m.refreshViewport()
				m.resetAndRescan()
				return m, m.waitForEvent()
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		// Reserve space for header (1), stats (1), progress (1), spacer (1), footer (1)
		reserved := 5
		if m.vp.Width == 0 {
			m.vp = viewport.Model{Width: msg.Width, Height: max(msg.Height-reserved, 3)}
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = max(msg.Height-reserved, 3)
		}
		m.prog.Width = max(msg.Width-4, 10)
		m.refreshViewport()
		return m, nil
	case fileScannedMsg:
		m.scanned++
		m.lines = append(m.lines, fmt.Sprintf("📄 %s", msg.rel))
		m.refreshViewport()
		return m, m.waitForEvent()
	case scanDoneMsg:
		// Drain any file events still queued so counts stay consistent
		for {
			select {
			case rel := <-m.files:
				m.scanned++
				m.lines = append(m.lines, fmt.Sprintf("📄 %s", rel))
			default:
				m.finishScan(msg)
				return m, m.afterScan()
			}
		}
	case tickMsg:
		return m, tickCmd()
	case fileChangedMsg:
		m.lines = append(m.lines, fmt.Sprintf("🔄 File changed: %s", msg.path))
		m.refreshViewport()
		m.resetAndRescan()
		// The watcher command returned when it emitted this message; start a
		// fresh one alongside the new scan.
		return m, tea.Batch(m.waitForEvent(), m.startWatcher())
	case watchErrorMsg:
		m.lines = append(m.lines, fmt.Sprintf("❌ Watch error: %v", msg.err))
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.spin, cmd = m.spin.Update(msg)
	return m, cmd
}

// finishScan records the result and writes the manifest and report.
func (m *model) finishScan(msg scanDoneMsg) {
	m.done = true
	m.finished = time.Now()
	m.urls = msg.urls
	m.emitted = len(msg.urls)
	m.scanErr = msg.err

	if m.scanErr != nil {
		m.lines = append(m.lines, fmt.Sprintf("❌ Scan failed: %v", m.scanErr))
		m.refreshViewport()
		return
	}

	m.lines = append(m.lines, fmt.Sprintf("✅ Scan complete: %d URLs", m.emitted))
	m.writeErr = urlgen.Write(m.outPath, m.urls)
	if m.writeErr != nil {
		m.lines = append(m.lines, fmt.Sprintf("❌ Write failed: %v", m.writeErr))
	} else {
		m.lines = append(m.lines, fmt.Sprintf("💾 Saved %s", m.outPath))
	}
	if m.mdOut != "" && m.writeErr == nil {
		m.writeMarkdown()
	}
	m.refreshViewport()
}

func (m *model) afterScan() tea.Cmd {
	if m.watchMode {
		// In watch mode, stay up and wait for more changes
		return m.waitForEvent()
	}
	return tea.Quit
}

func (m *model) resetAndRescan() {
	if m.scanCancel != nil {
		m.scanCancel()
	}

	m.scanned = 0
	m.emitted = 0
	m.urls = nil
	m.scanErr = nil
	m.writeErr = nil
	m.started = time.Now()
	m.finished = time.Time{}
	m.done = false
	m.files = make(chan string, 256)
	m.doneCh = make(chan scanDoneMsg, 1)

	// Keep only the notification line that triggered the rescan
	if n := len(m.lines); n > 0 {
		m.lines = []string{m.lines[n-1]}
	}
	m.vp.SetContent("")
	m.vp.GotoTop()
	m.startScan()
}

func (m *model) startWatcher() tea.Cmd {
	return func() tea.Msg {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return watchErrorMsg{err: err}
		}
		defer watcher.Close()

		// Watch the root and every non-pruned subdirectory
		err = filepath.Walk(m.rootPath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return nil
			}
			for _, d := range m.opts.IgnoreDirs {
				if info.Name() == d && path != m.rootPath {
					return filepath.SkipDir
				}
			}
			return watcher.Add(path)
		})
		if err != nil {
			return watchErrorMsg{err: err}
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				// Only write events retrigger a scan
				if event.Op&fsnotify.Write != fsnotify.Write {
					continue
				}
				rel, err := filepath.Rel(m.rootPath, event.Name)
				if err != nil {
					continue
				}
				rel = filepath.ToSlash(rel)
				if m.matchesFilters(rel) {
					return fileChangedMsg{path: event.Name}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				return watchErrorMsg{err: err}
			}
		}
	}
}

// matchesFilters reports whether a changed file would appear in the manifest,
// so unrelated writes don't retrigger scans.
func (m *model) matchesFilters(rel string) bool {
	name := rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		name = rel[i+1:]
	}
	for _, f := range m.opts.IgnoreFiles {
		if name == f {
			return false
		}
	}
	allowed := len(m.opts.Extensions) == 0
	for _, ext := range m.opts.Extensions {
		if ext != "" && strings.HasSuffix(name, ext) {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}
	if len(m.opts.Globs) == 0 {
		return true
	}
	for _, pattern := range m.opts.Globs {
		if matched, _ := doublestar.PathMatch(pattern, rel); matched {
			return true
		}
	}
	return false
}

func (m *model) refreshViewport() {
	m.vp.SetContent(strings.Join(m.lines, "\n"))
	m.vp.GotoBottom()
}

func (m *model) writeMarkdown() {
	s := report.Summary{
		RootPath:   m.rootPath,
		BaseURL:    m.opts.BaseURL,
		OutPath:    m.outPath,
		StartedAt:  m.started,
		FinishedAt: m.finished,
		Emitted:    m.emitted,
	}
	p, err := report.WriteMarkdown(m.mdOut, m.urls, s)
	if err == nil {
		m.mdPath = p
	}
}

func (m *model) View() string {
	headerText := fmt.Sprintf(" Scanning %s ", m.rootPath)
	if m.watchMode {
		headerText = fmt.Sprintf(" Scanning %s (WATCH MODE) ", m.rootPath)
	}
	header := lipgloss.NewStyle().Bold(true).Render(headerText)
	if m.done && !m.watchMode {
		dur := time.Since(m.started)
		if !m.finished.IsZero() {
			dur = m.finished.Sub(m.started)
		}
		summary := []string{
			fmt.Sprintf("Duration: %s", dur.Truncate(time.Millisecond)),
			fmt.Sprintf("Files scanned: %d  URLs: %d", m.scanned, m.emitted),
		}
		if m.writeErr == nil && m.scanErr == nil {
			summary = append(summary, fmt.Sprintf("Manifest: %s", m.outPath))
		}
		if m.mdPath != "" {
			summary = append(summary, fmt.Sprintf("Markdown: %s", m.mdPath))
		}
		footerText := "Controls: [q] quit  [r] rescan"
		footer := lipgloss.NewStyle().Faint(true).Render(footerText)
		container := lipgloss.NewStyle().Padding(1)
		return container.Render(strings.Join(append([]string{header}, append(summary, footer)...), "\n"))
	}
	percent := 0.0
	if m.expected > 0 {
		percent = float64(m.scanned) / float64(m.expected)
		if percent > 1 {
			percent = 1
		}
	}
	progressLine := m.prog.ViewAs(percent)
	stats := fmt.Sprintf("%s  files:%d/%d  urls:%d", m.spin.View(), m.scanned, m.expected, m.emitted)
	body := m.vp.View()
	footerText := "Controls: [q] quit"
	if m.done {
		footerText = "Controls: [q] quit  [r] rescan"
	}
	footer := lipgloss.NewStyle().Faint(true).Render(footerText)
	container := lipgloss.NewStyle().Padding(1)
	return container.Render(strings.Join([]string{header, stats, progressLine, "", body, footer}, "\n"))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
