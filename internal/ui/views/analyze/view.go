package analyze

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	enginedto "veil/internal/modules/engine/dto"
	"veil/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type EnginePort interface {
	AnalyzeText(ctx context.Context, input enginedto.AnalyzeTextInput) (enginedto.AnalyzeTextOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// AnalyzedMsg bubbles through the app model so it can refresh the Runs tab
// before handing the message back to this view.
type AnalyzedMsg struct {
	Out enginedto.AnalyzeTextOutput
	Err error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    EnginePort
	preset  enginedto.Preset
	input   textarea.Model
	result  viewport.Model
	spinner spinner.Model
	running bool
	last    enginedto.AnalyzeTextOutput
	lastErr error
	hasRun  bool
	width   int
	height  int
}

func New(port EnginePort) Model {
	ta := textarea.New()
	ta.Placeholder = "Paste text to anonymize, then press ctrl+r…"
	ta.ShowLineNumbers = false
	ta.Focus()

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, input: ta, result: vp, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// SetPreset swaps the preset used for subsequent runs.
func (m *Model) SetPreset(p enginedto.Preset) {
	m.preset = p
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case AnalyzedMsg:
		m.running = false
		m.hasRun = true
		m.last = msg.Out
		m.lastErr = msg.Err
		m.result.SetContent(m.renderResult())
		return m, nil

	case spinner.TickMsg:
		if m.running {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+r":
			if m.running {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.running = true
			return m, tea.Batch(m.spinner.Tick, m.analyzeCmd(text))
		case "ctrl+l":
			m.input.Reset()
			return m, nil
		}
	}

	var iCmd tea.Cmd
	m.input, iCmd = m.input.Update(msg)
	cmds = append(cmds, iCmd)

	var vCmd tea.Cmd
	m.result, vCmd = m.result.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	inputW := m.width / 2
	resultW := m.width - inputW

	header := theme.Title.Render("Input") + "  " +
		theme.Muted.Render("preset: "+m.presetLabel()+"  ctrl+r: run  ctrl+l: clear")

	inputPane := lipgloss.NewStyle().
		Width(inputW).
		Height(m.height).
		Render(header + "\n" + m.input.View())

	var body string
	if m.running {
		body = lipgloss.Place(resultW-2, m.height-2, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Anonymizing…")
	} else {
		body = m.result.View()
	}

	resultPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(resultW - 2).
		Height(m.height - 2).
		Render(body)

	return lipgloss.JoinHorizontal(lipgloss.Top, inputPane, resultPane)
}

// Editing reports whether the textarea owns the keyboard, in which case the
// app model must not consume plain keys like "q".
func (m Model) Editing() bool {
	return m.input.Focused()
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	inputW := m.width / 2
	resultW := m.width - inputW
	m.input.SetWidth(inputW - 2)
	m.input.SetHeight(m.height - 2)
	m.result.Width = resultW - 4
	m.result.Height = m.height - 4
}

func (m Model) presetLabel() string {
	if m.preset.PresetID == "" {
		return "none"
	}
	return m.preset.PresetID
}

func (m Model) renderResult() string {
	if !m.hasRun {
		return theme.Muted.Render("Results appear here")
	}
	if m.lastErr != nil {
		return theme.Bad.Render("analyze failed") + "\n\n" + m.lastErr.Error()
	}
	out := m.last

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Redacted") + "  " +
		theme.Muted.Render(fmt.Sprintf("run=%s  language=%s  findings=%d", out.RunID, out.Language, out.FindingsCount)) + "\n\n")
	sb.WriteString(out.RedactedText + "\n")
	if len(out.Summary) > 0 {
		sb.WriteString("\n" + theme.Title.Render("Summary") + "\n")
		entities := make([]string, 0, len(out.Summary))
		for entity := range out.Summary {
			entities = append(entities, entity)
		}
		sort.Strings(entities)
		for _, entity := range entities {
			sb.WriteString(fmt.Sprintf("  %s %d\n", theme.Muted.Render(entity+":"), out.Summary[entity]))
		}
	}
	if out.RunFolder != "" {
		sb.WriteString("\n" + theme.Muted.Render("folder: "+out.RunFolder))
	}
	return sb.String()
}

func (m Model) analyzeCmd(text string) tea.Cmd {
	preset := m.preset
	return func() tea.Msg {
		out, err := m.port.AnalyzeText(context.Background(), enginedto.AnalyzeTextInput{
			Text:   text,
			Preset: preset,
		})
		return AnalyzedMsg{Out: out, Err: err}
	}
}
