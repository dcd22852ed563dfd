package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	enginedto "veil/internal/modules/engine/dto"
	historydto "veil/internal/modules/history/dto"
	presetdto "veil/internal/modules/preset/dto"
	"veil/internal/ui/components"
	"veil/internal/ui/theme"
	analyzeview "veil/internal/ui/views/analyze"
	presetsview "veil/internal/ui/views/presets"
	runsview "veil/internal/ui/views/runs"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type enginePort interface {
	AnalyzeText(ctx context.Context, input enginedto.AnalyzeTextInput) (enginedto.AnalyzeTextOutput, error)
	AnalyzeFile(ctx context.Context, input enginedto.AnalyzeFileInput) (enginedto.AnalyzeFileOutput, error)
	AnalyzeBatch(ctx context.Context, input enginedto.AnalyzeBatchInput) (enginedto.AnalyzeBatchOutput, error)
	SupportedExtensions(ctx context.Context) (enginedto.ExtensionsOutput, error)
	Doctor(ctx context.Context) (enginedto.DoctorOutput, error)
}

type presetPort interface {
	List(ctx context.Context) ([]presetdto.PresetOutput, error)
	Get(ctx context.Context, id string) (presetdto.PresetOutput, error)
}

type historyPort interface {
	List(ctx context.Context, limit int) ([]historydto.RunOutput, error)
	Get(ctx context.Context, id string) (historydto.RunOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabAnalyze tabID = iota
	tabPresets
	tabRuns
	tabCount
)

var tabLabels = [tabCount]string{
	"Analyze", "Presets", "Runs",
}

// ─── async messages ───────────────────────────────────────────────────────────

type fileAnalyzedMsg struct {
	out enginedto.AnalyzeFileOutput
	err error
}

type batchAnalyzedMsg struct {
	out enginedto.AnalyzeBatchOutput
	err error
}

type doctorMsg struct {
	out enginedto.DoctorOutput
	err error
}

type extensionsMsg struct {
	out enginedto.ExtensionsOutput
	err error
}

type presetActivatedMsg struct {
	preset presetdto.PresetOutput
	err    error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Run     key.Binding
	Use     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Run:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "anonymize")),
		Use:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "use preset")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Run, k.Use},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the active preset,
// the global help overlay, and the command palette. All business logic is
// delegated to port interfaces; all rendering is delegated to sub-views.
type Model struct {
	workspacePath string

	engine  enginePort
	preset  presetPort
	history historyPort

	analyzeView analyzeview.Model
	presetView  presetsview.Model
	runsView    runsview.Model

	activeTab    tabID
	keys         keyMap
	help         help.Model
	showHelp     bool
	palette      components.Palette
	activePreset presetdto.PresetOutput
	status       string
	width        int
	height       int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(
	workspacePath string,
	engine enginePort,
	preset presetPort,
	history historyPort,
) Model {
	return Model{
		workspacePath: workspacePath,
		engine:        engine,
		preset:        preset,
		history:       history,
		analyzeView:   analyzeview.New(enginePortBridge{p: engine}),
		presetView:    presetsview.New(presetPortBridge{p: preset}),
		runsView:      runsview.New(historyPortBridge{p: history}),
		activeTab:     tabAnalyze,
		keys:          defaultKeys(),
		help:          help.New(),
		palette:       components.NewPalette(),
		status:        "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.analyzeView.Init(),
		m.presetView.Init(),
		m.runsView.Init(),
		m.activateDefaultPresetCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case presetActivatedMsg:
		if msg.err != nil {
			m.status = "preset load: " + msg.err.Error()
		} else {
			m.setActivePreset(msg.preset)
			m.status = "preset: " + msg.preset.Name
		}

	case presetsview.SelectedMsg:
		m.setActivePreset(msg.Preset)
		m.status = "preset: " + msg.Preset.Name

	// AnalyzedMsg is produced by the analyze view but bubbles up through the
	// top level so we can refresh the Runs tab alongside the result.
	case analyzeview.AnalyzedMsg:
		if msg.Err != nil {
			m.status = "analyze: " + msg.Err.Error()
		} else {
			m.status = fmt.Sprintf("analyzed: %d findings (%s)", msg.Out.FindingsCount, msg.Out.Language)
		}
		var cmd tea.Cmd
		m.analyzeView, cmd = m.analyzeView.Update(msg)
		return m, tea.Batch(cmd, m.runsView.Reload())

	case fileAnalyzedMsg:
		if msg.err != nil {
			m.status = "analyze file: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("file done: %d findings → %s", msg.out.FindingsCount, msg.out.OutputPath)
			m.activeTab = tabRuns
		}
		return m, m.runsView.Reload()

	case batchAnalyzedMsg:
		if msg.err != nil {
			m.status = "analyze batch: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("batch done: %d processed, %d skipped → %s",
				msg.out.ProcessedFiles, msg.out.SkippedFiles, msg.out.OutputFolder)
			m.activeTab = tabRuns
		}
		return m, m.runsView.Reload()

	case doctorMsg:
		switch {
		case msg.err != nil:
			m.status = "doctor: " + msg.err.Error()
		case msg.out.BinaryReachable && msg.out.ContractOK:
			m.status = "doctor: engine healthy, extensions " + strings.Join(msg.out.Extensions, " ")
		default:
			m.status = fmt.Sprintf("doctor: binary=%t contract=%t %s",
				msg.out.BinaryReachable, msg.out.ContractOK, msg.out.Error)
		}

	case extensionsMsg:
		if msg.err != nil {
			m.status = "extensions: " + msg.err.Error()
		} else {
			m.status = "extensions: " + strings.Join(msg.out.Extensions, " ")
		}

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its filter or editor is consuming keys.
		if m.subViewTyping() {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "tab":
				m.activeTab = (m.activeTab + 1) % tabCount
				return m, nil
			}
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabAnalyze:
		m.analyzeView, tabCmd = m.analyzeView.Update(msg)
	case tabPresets:
		m.presetView, tabCmd = m.presetView.Update(msg)
	case tabRuns:
		m.runsView, tabCmd = m.runsView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabAnalyze:
		return m.analyzeView.View()
	case tabPresets:
		return m.presetView.View()
	case tabRuns:
		return m.runsView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "veil  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.activePreset.ID != "" {
		left = theme.Hot.Render("◆ "+m.activePreset.ID) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  ctrl+c:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "analyze:file":
		if len(parts) < 2 {
			m.status = "usage: analyze:file <path>"
			return m, nil
		}
		if m.activePreset.ID == "" {
			m.status = "no preset active"
			return m, nil
		}
		m.status = "analyzing file…"
		return m, m.analyzeFileCmd(parts[1])

	case "analyze:batch":
		if len(parts) < 2 {
			m.status = "usage: analyze:batch <folder> [max-files]"
			return m, nil
		}
		if m.activePreset.ID == "" {
			m.status = "no preset active"
			return m, nil
		}
		maxFiles := 0
		if len(parts) >= 3 {
			if n, err := strconv.Atoi(parts[2]); err == nil {
				maxFiles = n
			}
		}
		m.status = "analyzing folder…"
		return m, m.analyzeBatchCmd(parts[1], maxFiles)

	case "preset:use":
		if len(parts) < 2 {
			m.status = "usage: preset:use <id>"
			return m, nil
		}
		return m, m.activatePresetCmd(parts[1])

	case "runs:refresh":
		m.activeTab = tabRuns
		return m, m.runsView.Reload()

	case "engine:doctor":
		m.status = "running doctor…"
		return m, m.doctorCmd()

	case "engine:extensions":
		return m, m.extensionsCmd()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewTyping reports whether the active tab currently owns free-text input
// (a list filter or the analyze editor), in which case global single-key
// bindings must yield.
func (m Model) subViewTyping() bool {
	switch m.activeTab {
	case tabAnalyze:
		return m.analyzeView.Editing()
	case tabPresets:
		return m.presetView.Filtering()
	case tabRuns:
		return m.runsView.Filtering()
	}
	return false
}

func (m *Model) setActivePreset(p presetdto.PresetOutput) {
	m.activePreset = p
	m.analyzeView.SetPreset(toWirePreset(p))
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.analyzeView, _ = m.analyzeView.Update(sz)
	m.presetView, _ = m.presetView.Update(sz)
	m.runsView, _ = m.runsView.Update(sz)
}

// toWirePreset converts the stored preset into the wire shape the engine
// worker expects. Language stays nil unless a fixed language is set.
func toWirePreset(p presetdto.PresetOutput) enginedto.Preset {
	var language *string
	if p.Language != "" {
		language = &p.Language
	}
	return enginedto.Preset{
		PresetID:          p.ID,
		Name:              p.Name,
		Layer:             p.Layer,
		MinimumConfidence: p.MinimumConfidence,
		UncertaintyPolicy: p.UncertaintyPolicy,
		PseudonymStyle:    p.PseudonymStyle,
		LanguageMode:      p.LanguageMode,
		Language:          language,
		EntitiesEnabled:   p.EntitiesEnabled,
	}
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) activateDefaultPresetCmd() tea.Cmd {
	return func() tea.Msg {
		presets, err := m.preset.List(context.Background())
		if err != nil {
			return presetActivatedMsg{err: err}
		}
		if len(presets) == 0 {
			return presetActivatedMsg{err: fmt.Errorf("no presets configured")}
		}
		return presetActivatedMsg{preset: presets[0]}
	}
}

func (m Model) activatePresetCmd(id string) tea.Cmd {
	return func() tea.Msg {
		preset, err := m.preset.Get(context.Background(), id)
		return presetActivatedMsg{preset: preset, err: err}
	}
}

func (m Model) analyzeFileCmd(path string) tea.Cmd {
	preset := toWirePreset(m.activePreset)
	return func() tea.Msg {
		out, err := m.engine.AnalyzeFile(context.Background(), enginedto.AnalyzeFileInput{
			InputPath: path,
			Preset:    preset,
		})
		return fileAnalyzedMsg{out: out, err: err}
	}
}

func (m Model) analyzeBatchCmd(folder string, maxFiles int) tea.Cmd {
	preset := toWirePreset(m.activePreset)
	return func() tea.Msg {
		out, err := m.engine.AnalyzeBatch(context.Background(), enginedto.AnalyzeBatchInput{
			InputFolder: folder,
			Preset:      preset,
			Recursive:   true,
			MaxFiles:    maxFiles,
		})
		return batchAnalyzedMsg{out: out, err: err}
	}
}

func (m Model) doctorCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.engine.Doctor(context.Background())
		return doctorMsg{out: out, err: err}
	}
}

func (m Model) extensionsCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.engine.SupportedExtensions(context.Background())
		return extensionsMsg{out: out, err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view, keeping view packages free of knowledge about the wider
// port surface.

type enginePortBridge struct{ p enginePort }

func (b enginePortBridge) AnalyzeText(ctx context.Context, input enginedto.AnalyzeTextInput) (enginedto.AnalyzeTextOutput, error) {
	return b.p.AnalyzeText(ctx, input)
}

type presetPortBridge struct{ p presetPort }

func (b presetPortBridge) List(ctx context.Context) ([]presetdto.PresetOutput, error) {
	return b.p.List(ctx)
}

type historyPortBridge struct{ p historyPort }

func (b historyPortBridge) List(ctx context.Context, limit int) ([]historydto.RunOutput, error) {
	return b.p.List(ctx, limit)
}
func (b historyPortBridge) Get(ctx context.Context, id string) (historydto.RunOutput, error) {
	return b.p.Get(ctx, id)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
