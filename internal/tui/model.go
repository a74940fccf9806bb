// Package tui provides the Bubble Tea cipher and attack menu.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/vigenere/internal/alphabet"
	"github.com/verte-zerg/vigenere/internal/attack"
	"github.com/verte-zerg/vigenere/internal/cipher"
	"github.com/verte-zerg/vigenere/internal/generator"
	"github.com/verte-zerg/vigenere/internal/model"
	statsPkg "github.com/verte-zerg/vigenere/internal/stats"
	"github.com/verte-zerg/vigenere/internal/store"
)

type tab int

const (
	tabEncrypt tab = iota
	tabDecrypt
	tabStatistical
	tabBrute
	tabCount
)

var tabNames = [tabCount]string{"Encrypt", "Decrypt", "Statistical", "Brute force"}

type field int

const (
	fieldText field = iota
	fieldParam
	fieldResults
	fieldHistogram
)

const (
	textHeight    = 6
	resultsHeight = 8
	previewWidth  = 40
	maxProgress   = 6
	randomKeyLen  = 6
)

type progressMsg attack.LengthReport

type logMsg string

type attackDoneMsg struct {
	mode       string
	candidates []model.Candidate
	elapsed    time.Duration
	err        error
	recordErr  error
}

// Model implements the Bubble Tea cipher menu.
type Model struct {
	config model.Config
	store  *store.Store
	freqs  alphabet.Table
	gen    *generator.Generator

	width  int
	height int

	tab   tab
	focus field

	text      textarea.Model
	key       textinput.Model
	statLen   textinput.Model
	bruteLen  textinput.Model
	results   table.Model
	histogram viewport.Model
	spinner   spinner.Model
	textCol   int

	output     string
	outputKey  int
	candidates []model.Candidate
	progress   []string
	status     string
	warning    string
	err        error

	running bool
	cancel  context.CancelFunc
	events  chan tea.Msg
}

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#8C8C8C"))
	activeTabStyle = tabStyle.Bold(true).Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#3A3A3A"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB020"))
	plainStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	columnStyles   = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#87D787")),
	}
)

// NewModel constructs the menu. The store may be nil when history is off.
func NewModel(cfg model.Config, freqs alphabet.Table, st *store.Store) *Model {
	text := textarea.New()
	text.Placeholder = "Text to encrypt, decrypt or attack"
	text.ShowLineNumbers = false
	text.CharLimit = 0
	text.SetHeight(textHeight)

	key := newInput("Key: ", "LEMON", "")
	statLen := newInput("Max key length: ", "", strconv.Itoa(cfg.MaxLen))
	bruteLen := newInput("Max key length: ", "", strconv.Itoa(cfg.BruteMaxLen))

	results := table.New(
		table.WithColumns(resultColumns(previewWidth)),
		table.WithHeight(resultsHeight),
	)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		config:    cfg,
		store:     st,
		freqs:     freqs,
		gen:       generator.New(),
		text:      text,
		key:       key,
		statLen:   statLen,
		bruteLen:  bruteLen,
		results:   results,
		histogram: viewport.New(60, resultsHeight),
		spinner:   spin,
		textCol:   previewWidth,
	}
	m.setFocus(fieldText)
	return m
}

func newInput(prompt, placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.SetValue(value)
	return in
}

func resultColumns(textWidth int) []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Score", Width: 10},
		{Title: "Len", Width: 4},
		{Title: "Key", Width: 12},
		{Title: "Text", Width: textWidth},
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progressMsg:
		m.appendProgress(formatProgress(attack.LengthReport(msg)))
		return m, waitForEvent(m.events)
	case logMsg:
		m.appendProgress(string(msg))
		return m, waitForEvent(m.events)
	case attackDoneMsg:
		m.finishAttack(msg)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, m.updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.stopAttack()
		return tea.Quit
	case "ctrl+right":
		return m.switchTab(1)
	case "ctrl+left":
		return m.switchTab(-1)
	case "tab":
		return m.cycleFocus(1)
	case "shift+tab":
		return m.cycleFocus(-1)
	case "ctrl+r":
		return m.run()
	case "ctrl+o":
		m.useOutput()
		return nil
	case "ctrl+g":
		if !m.isAttackTab() {
			m.key.SetValue(m.gen.Key(randomKeyLen))
		}
		return nil
	case "left", "right":
		if m.focus == fieldResults || m.focus == fieldHistogram {
			if msg.String() == "left" {
				return m.switchTab(-1)
			}
			return m.switchTab(1)
		}
	}
	return m.updateFocused(msg)
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case fieldText:
		m.text, cmd = m.text.Update(msg)
	case fieldParam:
		in := m.paramInput()
		*in, cmd = in.Update(msg)
	case fieldResults:
		before := m.results.Cursor()
		m.results, cmd = m.results.Update(msg)
		if m.results.Cursor() != before {
			m.refreshHistogram()
		}
	case fieldHistogram:
		m.histogram, cmd = m.histogram.Update(msg)
	}
	return cmd
}

func (m *Model) paramInput() *textinput.Model {
	switch m.tab {
	case tabStatistical:
		return &m.statLen
	case tabBrute:
		return &m.bruteLen
	default:
		return &m.key
	}
}

func (m *Model) isAttackTab() bool {
	return m.tab == tabStatistical || m.tab == tabBrute
}

func (m *Model) fieldCount() int {
	if m.isAttackTab() {
		return 4
	}
	return 2
}

func (m *Model) switchTab(delta int) tea.Cmd {
	if m.running {
		return nil
	}
	m.tab = tab((int(m.tab) + delta + int(tabCount)) % int(tabCount))
	m.output = ""
	m.candidates = nil
	m.progress = nil
	m.status = ""
	m.warning = ""
	m.err = nil
	m.results.SetRows(nil)
	m.histogram.SetContent("")
	return m.setFocus(fieldText)
}

func (m *Model) cycleFocus(delta int) tea.Cmd {
	n := m.fieldCount()
	return m.setFocus(field((int(m.focus) + delta + n) % n))
}

func (m *Model) setFocus(f field) tea.Cmd {
	m.focus = f
	m.text.Blur()
	m.key.Blur()
	m.statLen.Blur()
	m.bruteLen.Blur()
	m.results.Blur()
	switch f {
	case fieldText:
		return m.text.Focus()
	case fieldParam:
		return m.paramInput().Focus()
	case fieldResults:
		m.results.Focus()
	}
	return nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	m.text.SetWidth(inner)
	m.key.Width = inner - len(m.key.Prompt)
	textCol := inner - 45
	if textCol < 10 {
		textCol = 10
	}
	m.textCol = textCol
	m.results.SetColumns(resultColumns(textCol))
	m.results.SetRows(candidateRows(m.candidates, textCol))
	m.histogram.Width = inner
	m.histogram.Height = max(resultsHeight, height-textHeight-resultsHeight-12)
	m.refreshHistogram()
}

// useOutput moves the last cipher output into the text area.
func (m *Model) useOutput() {
	if m.output == "" {
		return
	}
	m.text.SetValue(m.output)
	m.status = "output copied to input"
}

func (m *Model) run() tea.Cmd {
	if m.running {
		return nil
	}
	m.err = nil
	m.status = ""
	m.warning = ""
	switch m.tab {
	case tabEncrypt, tabDecrypt:
		m.transform()
		return nil
	default:
		return m.startAttack()
	}
}

func (m *Model) transform() {
	var (
		out string
		err error
	)
	key := m.key.Value()
	if m.tab == tabEncrypt {
		out, err = cipher.EncodeText(m.text.Value(), key)
	} else {
		out, err = cipher.DecodeText(m.text.Value(), key)
	}
	if err != nil {
		m.err = err
		m.output = ""
		return
	}
	m.output = out
	m.outputKey = len(alphabet.Normalize(key))
}

func (m *Model) startAttack() tea.Cmd {
	maxLen, err := strconv.Atoi(strings.TrimSpace(m.paramInput().Value()))
	if err != nil || maxLen < 1 {
		m.err = fmt.Errorf("max key length must be a positive integer")
		return nil
	}
	mode := model.ModeStatistical
	if m.tab == tabBrute {
		mode = model.ModeBruteForce
	}
	text := m.text.Value()
	if mode == model.ModeBruteForce {
		if err := attack.CheckBruteForceLength(maxLen); err != nil {
			m.err = err
			return nil
		}
	}
	m.warning = attackWarning(mode, maxLen, len(alphabet.Normalize(text)))
	cfg := m.config
	freqs := m.freqs
	st := m.store

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan tea.Msg)
	m.cancel = cancel
	m.events = events
	m.running = true
	m.progress = nil
	m.candidates = nil
	m.results.SetRows(nil)
	m.histogram.SetContent("")

	go func() {
		defer close(events)
		send := func(msg tea.Msg) {
			select {
			case events <- msg:
			case <-ctx.Done():
			}
		}
		a := attack.New(
			attack.WithWorkers(cfg.Workers),
			attack.WithTable(freqs),
			attack.WithTopK(cfg.Top),
			attack.WithProgress(func(r attack.LengthReport) { send(progressMsg(r)) }),
			attack.WithLogger(func(format string, args ...any) {
				send(logMsg(strings.TrimSpace(fmt.Sprintf(format, args...))))
			}),
		)
		started := time.Now()
		var cands []model.Candidate
		var err error
		if mode == model.ModeBruteForce {
			cands, err = a.BruteForce(ctx, text, maxLen)
		} else {
			cands, err = a.Statistical(ctx, text, maxLen)
		}
		ended := time.Now()
		done := attackDoneMsg{mode: mode, candidates: cands, elapsed: ended.Sub(started), err: err}
		if err == nil && cfg.Record && st != nil {
			run := model.RunRecord{
				StartedAt:  started,
				EndedAt:    ended,
				Mode:       mode,
				Lang:       cfg.Lang,
				MaxLen:     maxLen,
				Workers:    a.Workers(),
				TextLen:    len(alphabet.Normalize(text)),
				DurationMs: ended.Sub(started).Milliseconds(),
			}
			_, done.recordErr = st.InsertRun(context.Background(), run, cands)
		}
		send(done)
	}()
	return tea.Batch(m.spinner.Tick, waitForEvent(events))
}

// attackWarning describes a run that is likely to be slow or unreliable.
func attackWarning(mode string, maxLen, letters int) string {
	switch {
	case mode == model.ModeBruteForce && maxLen > attack.BruteForceWarnLength:
		return fmt.Sprintf("length %d means %d keys for the last length alone; this can take a very long time",
			maxLen, attack.KeyspaceSize(maxLen))
	case mode == model.ModeStatistical && letters < attack.MinStatisticalLetters:
		return fmt.Sprintf("only %d letters; frequency analysis is unreliable on short texts", letters)
	}
	return ""
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) stopAttack() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) finishAttack(msg attackDoneMsg) {
	m.running = false
	m.stopAttack()
	m.events = nil
	if msg.err != nil {
		m.err = msg.err
		return
	}
	m.candidates = msg.candidates
	m.results.SetRows(candidateRows(m.candidates, m.textCol))
	m.results.GotoTop()
	m.refreshHistogram()
	m.status = fmt.Sprintf("%d candidates in %s", len(msg.candidates), statsPkg.FormatDuration(msg.elapsed.Seconds()))
	if msg.recordErr != nil {
		m.err = fmt.Errorf("failed to record run: %w", msg.recordErr)
	}
}

func candidateRows(cands []model.Candidate, textWidth int) []table.Row {
	rows := make([]table.Row, 0, len(cands))
	for i, c := range cands {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			statsPkg.FormatScore(c.Score),
			strconv.Itoa(len(c.Key)),
			c.Key,
			statsPkg.Preview(c.Text, textWidth),
		})
	}
	return rows
}

func (m *Model) refreshHistogram() {
	if len(m.candidates) == 0 {
		m.histogram.SetContent("")
		return
	}
	idx := m.results.Cursor()
	if idx < 0 || idx >= len(m.candidates) {
		idx = 0
	}
	var buf bytes.Buffer
	if err := statsPkg.RenderHistogram(&buf, m.candidates[idx].Text, m.freqs, m.histogram.Width); err != nil {
		m.err = err
		return
	}
	m.histogram.SetContent(buf.String())
	m.histogram.GotoTop()
}

func (m *Model) appendProgress(line string) {
	if line == "" {
		return
	}
	m.progress = append(m.progress, line)
	if len(m.progress) > maxProgress {
		m.progress = m.progress[len(m.progress)-maxProgress:]
	}
}

func formatProgress(r attack.LengthReport) string {
	line := fmt.Sprintf("length %d: %d keys in %s", r.Length, r.Keys, statsPkg.FormatDuration(r.Elapsed.Seconds()))
	if r.Found {
		line += fmt.Sprintf(", best %s (%s)", r.Best.Key, statsPkg.FormatScore(r.Best.Score))
	}
	return line
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{
		m.renderTabs(),
		labelStyle.Render("Text"),
		m.text.View(),
		m.paramInput().View(),
		"",
		m.renderBody(),
	}
	if m.warning != "" {
		sections = append(sections, warningStyle.Render("Warning: "+m.warning))
	}
	if m.err != nil {
		sections = append(sections, errorStyle.Render("Error: "+m.err.Error()))
	}
	sections = append(sections, m.renderFooter())
	return lipgloss.NewStyle().Padding(0, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == m.tab {
			parts = append(parts, activeTabStyle.Render(name))
		} else {
			parts = append(parts, tabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderBody() string {
	if !m.isAttackTab() {
		if m.output == "" {
			return ""
		}
		width := m.width - 4
		wrapped := wrapStyledRunes(buildStyledRunes([]rune(m.output), m.outputKey), width)
		return lipgloss.JoinVertical(lipgloss.Left, labelStyle.Render("Result"), wrapped)
	}
	if m.running {
		lines := append([]string{m.spinner.View() + " attacking..."}, m.progress...)
		return strings.Join(lines, "\n")
	}
	if len(m.candidates) == 0 {
		return strings.Join(m.progress, "\n")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("Candidates"),
		m.results.View(),
		"",
		m.histogram.View(),
	)
}

func (m *Model) renderFooter() string {
	segments := []string{tabNames[m.tab]}
	if m.status != "" {
		segments = append(segments, m.status)
	}
	keys := "ctrl+r run · tab field · ctrl+←/→ tab · esc quit"
	if !m.isAttackTab() {
		keys = "ctrl+r run · ctrl+g random key · ctrl+o use result · tab field · ctrl+←/→ tab · esc quit"
	}
	segments = append(segments, keys)
	return footerStyle.Render(strings.Join(segments, "  "))
}

// Run starts the menu on the alternate screen and blocks until it exits.
func Run(cfg model.Config, freqs alphabet.Table, st *store.Store) error {
	m := NewModel(cfg, freqs, st)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	m.stopAttack()
	return err
}
