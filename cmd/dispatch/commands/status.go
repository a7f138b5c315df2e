package commands

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/marcus/dispatch/internal/db"
	"github.com/marcus/dispatch/internal/registry"
	"github.com/marcus/dispatch/internal/taskgraph"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Interactive dashboard over the registry, task graphs, and runs",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reg, graph, err := buildToolkit(cfg)
	if err != nil {
		return err
	}

	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	m := newStatusModel(reg, graph, store)
	_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
	return err
}

// refreshInterval is how often the runs panel reloads.
const refreshInterval = 5 * time.Second

type runsMsg struct {
	runs []db.Run
	err  error
}

type tickMsg time.Time

// statusModel holds the dashboard state.
type statusModel struct {
	reg   *registry.Registry
	graph *taskgraph.Graph
	store *db.DB

	runs    []db.Run
	loadErr error
	width   int

	styles statusStyles
}

type statusStyles struct {
	title  lipgloss.Style
	header lipgloss.Style
	muted  lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
	panel  lipgloss.Style
}

func newStatusModel(reg *registry.Registry, graph *taskgraph.Graph, store *db.DB) statusModel {
	return statusModel{
		reg:   reg,
		graph: graph,
		store: store,
		styles: statusStyles{
			title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
			header: lipgloss.NewStyle().Bold(true),
			muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			good:   lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
			bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
			panel:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		},
	}
}

func (m statusModel) Init() tea.Cmd {
	return tea.Batch(m.loadRuns, tick())
}

func (m statusModel) loadRuns() tea.Msg {
	runs, err := m.store.RecentRuns(10)
	return runsMsg{runs: runs, err: err}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.loadRuns
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case runsMsg:
		m.runs = msg.runs
		m.loadErr = msg.err
	case tickMsg:
		return m, tea.Batch(m.loadRuns, tick())
	}
	return m, nil
}

func (m statusModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("dispatch") + "\n\n")
	b.WriteString(m.styles.panel.Render(m.toolsView()) + "\n")
	b.WriteString(m.styles.panel.Render(m.graphView()) + "\n")
	b.WriteString(m.styles.panel.Render(m.runsView()) + "\n")
	b.WriteString(m.styles.muted.Render("r refresh · q quit") + "\n")

	return b.String()
}

func (m statusModel) toolsView() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)\n", m.styles.header.Render("Tools"), m.reg.Len())
	for _, fn := range m.reg.List() {
		fmt.Fprintf(&b, "  %-22s %s\n", fn.Name, m.styles.muted.Render(fn.Doc))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m statusModel) graphView() string {
	var b strings.Builder
	b.WriteString(m.styles.header.Render("Task graphs") + "\n")
	for _, task := range m.graph.TaskList() {
		steps, err := m.graph.For(task)
		if err != nil {
			continue
		}
		names := make([]string, len(steps))
		for i, fn := range steps {
			names[i] = fn.Name
		}
		fmt.Fprintf(&b, "  %-10s %s\n", task, m.styles.muted.Render(strings.Join(names, " → ")))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m statusModel) runsView() string {
	var b strings.Builder
	b.WriteString(m.styles.header.Render("Recent runs") + "\n")

	if m.loadErr != nil {
		b.WriteString("  " + m.styles.bad.Render(m.loadErr.Error()))
		return b.String()
	}
	if len(m.runs) == 0 {
		b.WriteString("  " + m.styles.muted.Render("none recorded"))
		return b.String()
	}

	for _, r := range m.runs {
		status := r.Status
		switch r.Status {
		case db.StatusCompleted:
			status = m.styles.good.Render(status)
		case db.StatusFailed:
			status = m.styles.bad.Render(status)
		}
		fmt.Fprintf(&b, "  %-5d %-10s %-20s %s\n",
			r.ID, r.Task, status,
			m.styles.muted.Render(r.StartedAt.Local().Format("2006-01-02 15:04:05")))
	}
	return strings.TrimRight(b.String(), "\n")
}
