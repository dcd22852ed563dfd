package presets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	presetdto "veil/internal/modules/preset/dto"
	"veil/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type PresetPort interface {
	List(ctx context.Context) ([]presetdto.PresetOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type PresetsLoadedMsg struct {
	Presets []presetdto.PresetOutput
	Err     error
}

// SelectedMsg bubbles to the app model when the user picks a preset with
// enter, so the Analyze tab uses it for subsequent runs.
type SelectedMsg struct {
	Preset presetdto.PresetOutput
}

// ─── list item ───────────────────────────────────────────────────────────────

type presetItem struct {
	preset presetdto.PresetOutput
}

func (i presetItem) Title() string { return i.preset.Name }
func (i presetItem) Description() string {
	return fmt.Sprintf("layer %d  confidence ≥%d  %s", i.preset.Layer, i.preset.MinimumConfidence, i.preset.UncertaintyPolicy)
}
func (i presetItem) FilterValue() string { return i.preset.Name + " " + i.preset.ID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     PresetPort
	list     list.Model
	activeID string
	width    int
	height   int
}

func New(port PresetPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Presets"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return Model{port: port, list: l}
}

func (m Model) Init() tea.Cmd {
	return m.loadPresetsCmd()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case PresetsLoadedMsg:
		if msg.Err != nil {
			m.list.Title = "Presets — " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Presets))
		for i, p := range msg.Presets {
			items[i] = presetItem{preset: p}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if m.activeID == "" && len(msg.Presets) > 0 {
			m.activeID = msg.Presets[0].ID
		}

	case tea.KeyMsg:
		if msg.String() == "enter" && !m.Filtering() {
			if item, ok := m.list.SelectedItem().(presetItem); ok {
				m.activeID = item.preset.ID
				return m, func() tea.Msg { return SelectedMsg{Preset: item.preset} }
			}
		}
	}

	var lCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Padding(1).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.renderDetail())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// ActivePresetID returns the preset runs should use.
func (m Model) ActivePresetID() string { return m.activeID }

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	m.list.SetSize(m.width*4/10, m.height)
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(presetItem)
	if !ok {
		return theme.Muted.Render("No presets loaded")
	}
	p := item.preset

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(p.Name) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:          ") + p.ID)
	if p.ID == m.activeID {
		sb.WriteString("  " + theme.Hot.Render("● active"))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("layer:       "), p.Layer))
	sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("confidence:  "), p.MinimumConfidence))
	sb.WriteString(theme.Muted.Render("uncertainty: ") + p.UncertaintyPolicy + "\n")
	sb.WriteString(theme.Muted.Render("pseudonyms:  ") + p.PseudonymStyle + "\n")
	language := p.LanguageMode
	if p.LanguageMode == "fixed" {
		language += " (" + p.Language + ")"
	}
	sb.WriteString(theme.Muted.Render("language:    ") + language + "\n")

	sb.WriteString("\n" + theme.Title.Render("Entities") + "\n")
	entities := make([]string, 0, len(p.EntitiesEnabled))
	for entity := range p.EntitiesEnabled {
		entities = append(entities, entity)
	}
	sort.Strings(entities)
	for _, entity := range entities {
		mark := theme.Bad.Render("✗")
		if p.EntitiesEnabled[entity] {
			mark = theme.OK.Render("✓")
		}
		sb.WriteString("  " + mark + " " + entity + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: use for analyze runs"))
	return sb.String()
}

func (m Model) loadPresetsCmd() tea.Cmd {
	return func() tea.Msg {
		presets, err := m.port.List(context.Background())
		return PresetsLoadedMsg{Presets: presets, Err: err}
	}
}
