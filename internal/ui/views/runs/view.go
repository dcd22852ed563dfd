package runs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	historydto "veil/internal/modules/history/dto"
	"veil/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	List(ctx context.Context, limit int) ([]historydto.RunOutput, error)
	Get(ctx context.Context, id string) (historydto.RunOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type RunsLoadedMsg struct {
	Runs []historydto.RunOutput
	Err  error
}

type DetailLoadedMsg struct {
	Run historydto.RunOutput
	Err error
}

// ─── list item ───────────────────────────────────────────────────────────────

type runItem struct {
	run historydto.RunOutput
}

func (i runItem) Title() string {
	return fmt.Sprintf("%s  %s", i.run.StartedAt.Local().Format("02 Jan 15:04"), i.run.Command)
}

func (i runItem) Description() string {
	if i.run.Status == "error" {
		return "error  " + i.run.Error
	}
	return fmt.Sprintf("ok  %d findings  preset=%s", i.run.FindingsCount, i.run.PresetID)
}

func (i runItem) FilterValue() string { return i.run.Command + " " + i.run.PresetID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    HistoryPort
	list    list.Model
	detail  historydto.RunOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port HistoryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Runs"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload refetches the run list. The app model calls this after each analyze
// so the tab reflects the new record without restarting.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		runs, err := m.port.List(context.Background(), 100)
		return RunsLoadedMsg{Runs: runs, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case RunsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Runs — " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Runs))
		for i, r := range msg.Runs {
			items[i] = runItem{run: r}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Runs) > 0 {
			cmds = append(cmds, m.loadDetailCmd(msg.Runs[0].ID))
		} else {
			m.detail = historydto.RunOutput{}
			m.preview.SetContent(m.renderDetail())
		}

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Run
			m.preview.SetContent(m.renderDetail())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(runItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.run.ID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading runs…")
	}

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
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
// The app model checks this to avoid consuming global keys during a search.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	r := m.detail
	if r.ID == "" {
		return theme.Muted.Render("No runs yet — anonymize something on the Analyze tab")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(r.Command) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:       ") + r.ID + "\n")
	if r.RunID != "" {
		sb.WriteString(theme.Muted.Render("run:      ") + r.RunID + "\n")
	}
	sb.WriteString(theme.Muted.Render("preset:   ") + r.PresetID + "\n")
	if r.Status == "error" {
		sb.WriteString(theme.Muted.Render("status:   ") + theme.Bad.Render(r.Status) + "\n")
		sb.WriteString(theme.Muted.Render("error:    ") + r.Error + "\n")
	} else {
		sb.WriteString(theme.Muted.Render("status:   ") + theme.OK.Render(r.Status) + "\n")
		sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("findings: "), r.FindingsCount))
	}
	sb.WriteString(theme.Muted.Render("started:  ") + r.StartedAt.Local().Format(time.RFC822) + "\n")
	if !r.FinishedAt.IsZero() {
		sb.WriteString(theme.Muted.Render("took:     ") + r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String() + "\n")
	}
	if r.Language != "" {
		sb.WriteString(theme.Muted.Render("language: ") + r.Language + "\n")
	}
	if r.RunFolder != "" {
		sb.WriteString(theme.Muted.Render("folder:   ") + r.RunFolder + "\n")
	}
	if r.OutputPath != "" {
		sb.WriteString(theme.Muted.Render("output:   ") + r.OutputPath + "\n")
	}
	if len(r.Summary) > 0 {
		sb.WriteString("\n" + theme.Title.Render("Summary") + "\n")
		entities := make([]string, 0, len(r.Summary))
		for entity := range r.Summary {
			entities = append(entities, entity)
		}
		sort.Strings(entities)
		for _, entity := range entities {
			sb.WriteString(fmt.Sprintf("  %s %d\n", theme.Muted.Render(entity+":"), r.Summary[entity]))
		}
	}
	return sb.String()
}

func (m Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		run, err := m.port.Get(context.Background(), id)
		return DetailLoadedMsg{Run: run, Err: err}
	}
}
