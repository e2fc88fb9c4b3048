package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/internal/core/services"
	"github.com/kamal-hamza/vpnadm/pkg/ui"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Launch interactive dashboard (alias: dash)",
	Long: `Launch a full-screen dashboard for managing clients.

Keyboard Shortcuts:
  Navigation:
    ↑/k         Move up
    ↓/j         Move down
    g / G       Jump to top / bottom
    PgUp/PgDn   Scroll preview

  Actions:
    Enter       Full-screen profile preview
    n           Create new client
    d           Delete client
    c           Copy profile to clipboard
    r           Refresh

  General:
    /           Search
    ?           Show help
    q           Quit`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

// clientManager is the part of the lifecycle service the dashboard drives
type clientManager interface {
	ListClients(ctx context.Context) (*services.ListResponse, error)
	CreateClient(ctx context.Context, req services.CreateClientRequest) (*services.CreateClientResponse, error)
	DeleteClient(ctx context.Context, name string) error
	GetArtifact(ctx context.Context, name string) (*domain.ArtifactContent, error)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(getContext())
	defer cancel()

	m := newDashboardModel(ctx, lifecycleService)
	m.storeDir = displayPath(clientStore.Dir())
	m.dateFormat = appConfig.DateFormat

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}

	return nil
}

type viewMode int

const (
	modeList viewMode = iota
	modeSearch
	modeNew
	modeConfirmDelete
	modePreview
	modeHelp
)

type previewState struct {
	name     string
	content  string
	viewport viewport.Model
}

type dashboardModel struct {
	ctx     context.Context
	svc     clientManager
	clients []domain.ClientRecord
	// filtered is clients narrowed by the search query
	filtered []domain.ClientRecord

	cursor int
	offset int
	mode   viewMode

	searchInput textinput.Model
	nameInput   textinput.Model
	help        help.Model
	keys        keyMap

	width  int
	height int
	ready  bool

	storeDir   string
	dateFormat string

	// busy is the name being provisioned, empty when idle
	busy      string
	quitArmed bool

	message       string
	messageStyle  lipgloss.Style
	messageExpiry time.Time

	deleteTarget *domain.ClientRecord
	preview      previewState
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Preview key.Binding
	New     key.Binding
	Delete  key.Binding
	Copy    key.Binding
	Refresh key.Binding
	Search  key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Preview, k.New, k.Delete, k.Copy, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Preview, k.New, k.Delete, k.Copy, k.Refresh},
		{k.Search, k.Help, k.Escape, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Preview: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "preview"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new client"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

func newDashboardModel(ctx context.Context, svc clientManager) dashboardModel {
	si := textinput.New()
	si.Placeholder = "Search clients..."
	si.CharLimit = 64
	si.Width = 40

	ni := textinput.New()
	ni.Placeholder = "client-name"
	ni.CharLimit = 64
	ni.Width = 40

	vp := viewport.New(80, 20)

	return dashboardModel{
		ctx:         ctx,
		svc:         svc,
		mode:        modeList,
		searchInput: si,
		nameInput:   ni,
		help:        help.New(),
		keys:        keys,
		dateFormat:  domain.DisplayTimeFormat,
		preview: previewState{
			viewport: vp,
		},
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.loadClients()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resizePreview()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeNew:
			return m.updateNew(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modePreview:
			return m.updatePreview(msg)
		case modeHelp:
			return m.updateHelp(msg)
		default:
			return m.updateList(msg)
		}

	case clientsLoadedMsg:
		if msg.err != nil {
			statusCmd := m.setStatus(describeError(msg.err), ui.StyleError)
			return m, statusCmd
		}
		m.clients = msg.clients
		m.applySearch()
		if msg.selectName != "" {
			m.selectName(msg.selectName)
		}
		return m, m.previewSelected()

	case previewLoadedMsg:
		if msg.name != m.selectedName() {
			return m, nil
		}
		m.preview.name = msg.name
		if msg.err != nil {
			m.preview.content = ui.StyleError.Render(describeError(msg.err))
		} else {
			m.preview.content = msg.content
		}
		m.preview.viewport.SetContent(m.preview.content)
		m.preview.viewport.GotoTop()
		return m, nil

	case clientCreatedMsg:
		m.busy = ""
		m.quitArmed = false
		if msg.err != nil {
			statusCmd := m.setStatus(describeError(msg.err), ui.StyleError)
			return m, statusCmd
		}
		text := fmt.Sprintf("%s Client '%s' created successfully!", ui.IconSuccess, msg.name)
		if !msg.verified {
			text += " (profile not verified)"
		}
		statusCmd := tea.Batch(m.setStatus(text, ui.StyleSuccess), m.reloadClients(msg.name))
		return m, statusCmd

	case clientDeletedMsg:
		if msg.err != nil {
			statusCmd := tea.Batch(m.setStatus(describeError(msg.err), ui.StyleError), m.loadClients())
			return m, statusCmd
		}
		statusCmd := tea.Batch(
			m.setStatus(fmt.Sprintf("%s Client '%s' deleted successfully!", ui.IconSuccess, msg.name), ui.StyleSuccess),
			m.loadClients(),
		)
		return m, statusCmd

	case statusMsg:
		statusCmd := m.setStatus(msg.message, msg.style)
		return m, statusCmd

	case clearMessageMsg:
		if !time.Now().Before(m.messageExpiry) {
			m.message = ""
		}
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.busy != "" && !m.quitArmed {
			m.quitArmed = true
			statusCmd := m.setStatus(fmt.Sprintf("Provisioning '%s' in progress; press q again to abort", m.busy), ui.StyleWarning)
			return m, statusCmd
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.adjustViewport()
			return m, m.previewSelected()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.adjustViewport()
			return m, m.previewSelected()
		}

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.offset = 0
		return m, m.previewSelected()

	case key.Matches(msg, m.keys.Bottom):
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
			m.adjustViewport()
			return m, m.previewSelected()
		}

	case msg.Type == tea.KeyPgUp:
		m.preview.viewport.ViewUp()

	case msg.Type == tea.KeyPgDown:
		m.preview.viewport.ViewDown()

	case key.Matches(msg, m.keys.Preview):
		if len(m.filtered) > 0 {
			m.mode = modePreview
			m.resizePreview()
		}

	case key.Matches(msg, m.keys.New):
		if m.busy != "" {
			statusCmd := m.setStatus(fmt.Sprintf("Still provisioning '%s'", m.busy), ui.StyleWarning)
			return m, statusCmd
		}
		m.mode = modeNew
		m.nameInput.SetValue("")
		focusCmd := m.nameInput.Focus()
		return m, focusCmd

	case key.Matches(msg, m.keys.Delete):
		if len(m.filtered) > 0 {
			target := m.filtered[m.cursor]
			m.deleteTarget = &target
			m.mode = modeConfirmDelete
		}

	case key.Matches(msg, m.keys.Copy):
		if len(m.filtered) > 0 {
			return m, m.copyClient(m.filtered[m.cursor].Name)
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadClients()

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		focusCmd := m.searchInput.Focus()
		return m, focusCmd

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
	}

	return m, nil
}

func (m dashboardModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.applySearch()
		return m, m.previewSelected()

	case msg.Type == tea.KeyEnter:
		m.mode = modeList
		m.searchInput.Blur()
		return m, nil

	// Arrow keys only; j/k are part of the query
	case msg.Type == tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
			m.adjustViewport()
			return m, m.previewSelected()
		}

	case msg.Type == tea.KeyDown:
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.adjustViewport()
			return m, m.previewSelected()
		}

	default:
		oldQuery := m.searchInput.Value()
		m.searchInput, cmd = m.searchInput.Update(msg)
		if m.searchInput.Value() != oldQuery {
			m.applySearch()
			return m, tea.Batch(cmd, m.previewSelected())
		}
		return m, cmd
	}

	return m, nil
}

func (m dashboardModel) updateNew(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		m.nameInput.Blur()
		return m, nil

	case msg.Type == tea.KeyEnter:
		name := domain.NormalizeName(m.nameInput.Value())
		m.mode = modeList
		m.nameInput.Blur()
		m.busy = name
		if name == "" {
			m.busy = "client"
		}
		statusCmd := tea.Batch(
			m.setStatus(fmt.Sprintf("Provisioning '%s'...", name), ui.StyleInfo),
			m.createClient(m.nameInput.Value()),
		)
		return m, statusCmd
	}

	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m dashboardModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		target := m.deleteTarget
		m.deleteTarget = nil
		m.mode = modeList
		if target == nil {
			return m, nil
		}
		return m, m.deleteClient(target.Name)

	case key.Matches(msg, m.keys.Cancel):
		m.deleteTarget = nil
		m.mode = modeList
	}
	return m, nil
}

func (m dashboardModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Preview):
		m.mode = modeList
		m.resizePreview()
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		m.mode = modeList
		m.resizePreview()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if m.preview.name != "" {
			return m, m.copyClient(m.preview.name)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.preview.viewport, cmd = m.preview.viewport.Update(msg)
	return m, cmd
}

func (m dashboardModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit):
		m.mode = modeList
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if !m.ready {
		return "\n  Loading dashboard..."
	}

	switch m.mode {
	case modeHelp:
		return m.viewHelp()
	case modeConfirmDelete:
		return m.viewConfirmDelete()
	case modeNew:
		return m.viewNew()
	case modePreview:
		return m.viewPreview()
	default:
		return m.viewList()
	}
}

func (m dashboardModel) viewList() string {
	listWidth := int(float64(m.width) * 0.4)
	if listWidth < 30 {
		listWidth = 30
	}
	previewWidth := m.width - listWidth - 2

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	if m.mode == modeSearch || m.searchInput.Value() != "" {
		s.WriteString(m.renderSearchBar())
		s.WriteString("\n")
	}
	s.WriteString("\n")

	listContent := m.renderClientList(listWidth)

	// Narrow terminals get the list only
	if previewWidth < 30 {
		s.WriteString(listContent)
	} else {
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			padBlock(listContent, listWidth),
			"  ",
			m.renderPreview(previewWidth),
		))
	}

	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m dashboardModel) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Padding(1, 2)

	h := m.help
	h.ShowAll = true

	return titleStyle.Render("Keyboard Shortcuts") + "\n" +
		lipgloss.NewStyle().Padding(0, 2).Render(h.View(m.keys)) + "\n\n" +
		lipgloss.NewStyle().Padding(0, 2).Render(ui.StyleMuted.Render("Press ? or esc to return"))
}

func (m dashboardModel) viewConfirmDelete() string {
	if m.deleteTarget == nil {
		return ""
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorWarning).
		Padding(1, 2).
		Width(60).
		Align(lipgloss.Center)

	content := fmt.Sprintf("%s\n\n%s\n%s\n\n%s",
		ui.StyleWarning.Render(ui.IconWarning+"  Delete client?"),
		ui.StylePrimary.Render(m.deleteTarget.Name),
		ui.StyleMuted.Render(fmt.Sprintf("%s, created %s",
			humanSize(m.deleteTarget.SizeBytes),
			m.deleteTarget.GetDisplayDate(m.dateFormat))),
		"This action cannot be undone.\nPress 'y' to confirm, 'n' or ESC to cancel",
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(content))
}

func (m dashboardModel) viewNew() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(1, 2).
		Width(60)

	content := fmt.Sprintf("%s\n\n%s\n\n%s",
		ui.StylePrimary.Render(ui.IconKey+"  New client"),
		m.nameInput.View(),
		ui.StyleMuted.Render(fmt.Sprintf("Letters, digits, - and _; at least %d characters.\nenter to create, esc to cancel", domain.MinNameLength)),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(content))
}

func (m dashboardModel) viewPreview() string {
	var s strings.Builder
	s.WriteString(ui.StylePrimary.Render(m.preview.name))
	s.WriteString("  ")
	s.WriteString(ui.StyleMuted.Render(fmt.Sprintf("%d%%  esc back  c copy", int(m.preview.viewport.ScrollPercent()*100))))
	s.WriteString("\n\n")
	s.WriteString(m.preview.viewport.View())
	return s.String()
}

func (m dashboardModel) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ui.ColorPrimary).
		Bold(true).
		Padding(0, 1).
		Render(ui.IconShield + " vpnadm")

	stats := ui.StyleMuted.Render(fmt.Sprintf("%d clients  %s", len(m.filtered), m.storeDir))

	spacer := m.width - lipgloss.Width(title) - lipgloss.Width(stats)
	if spacer < 1 {
		spacer = 1
	}

	return title + strings.Repeat(" ", spacer) + stats
}

func (m dashboardModel) renderSearchBar() string {
	borderColor := ui.ColorMuted
	if m.mode == modeSearch {
		borderColor = ui.ColorPrimary
	}

	width := m.width - 4
	if width < 20 {
		width = 20
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(width).
		Render(m.searchInput.View())
}

func (m dashboardModel) renderClientList(width int) string {
	if len(m.filtered) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Padding(1, 2).
			Width(width)

		if m.searchInput.Value() != "" {
			return emptyStyle.Render("No clients match your search.")
		}
		return emptyStyle.Render("No clients found. Press 'n' to create one.")
	}

	var s strings.Builder
	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		s.WriteString(m.renderClientItem(m.filtered[i], i == m.cursor, width))
		s.WriteString("\n")
	}
	return strings.TrimRight(s.String(), "\n")
}

func (m dashboardModel) renderClientItem(c domain.ClientRecord, selected bool, width int) string {
	cursor := "  "
	nameStyle := lipgloss.NewStyle().Foreground(ui.ColorDefault)
	if selected {
		cursor = ui.StylePrimary.Render("▶ ")
		nameStyle = ui.StylePrimary
	}

	meta := humanize.Time(c.CreatedAt)
	maxName := width - lipgloss.Width(meta) - 4
	if maxName < 8 {
		maxName = 8
	}

	line := cursor + padRight(nameStyle.Render(ui.Truncate(c.Name, maxName)), maxName) + " " + ui.StyleMuted.Render(meta)
	return padRight(line, width)
}

func (m dashboardModel) renderPreview(width int) string {
	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMuted).
		Width(width - 2)

	placeholder := lipgloss.NewStyle().Foreground(ui.ColorMuted).Italic(true).Padding(1)

	if len(m.filtered) == 0 {
		return borderStyle.Render(placeholder.Render("No client selected"))
	}
	if m.preview.name == "" {
		return borderStyle.Render(placeholder.Render("Loading preview..."))
	}

	var s strings.Builder
	s.WriteString(ui.StylePrimary.Render(m.preview.name))
	if c := m.selected(); c != nil && c.Name == m.preview.name {
		s.WriteString("  ")
		s.WriteString(ui.StyleMuted.Render(fmt.Sprintf("%s  %s", humanSize(c.SizeBytes), c.GetDisplayDate(m.dateFormat))))
	}
	s.WriteString("\n\n")
	s.WriteString(m.preview.viewport.View())

	return borderStyle.Render(s.String())
}

func (m dashboardModel) renderFooter() string {
	statusLine := ui.StyleMuted.Render("Ready")
	if m.busy != "" {
		statusLine = ui.StyleInfo.Render(fmt.Sprintf("%s Provisioning '%s'...", ui.IconClock, m.busy))
	}
	if m.message != "" && time.Now().Before(m.messageExpiry) {
		statusLine = m.messageStyle.Render(m.message)
	}

	return lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, statusLine, m.help.View(m.keys)))
}

// listHeight is the number of client rows that fit on screen
func (m dashboardModel) listHeight() int {
	h := m.height - 8
	if h < 3 {
		h = 3
	}
	return h
}

func (m dashboardModel) visibleRange() (int, int) {
	start := m.offset
	end := start + m.listHeight()
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	return start, end
}

func (m *dashboardModel) adjustViewport() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

func (m *dashboardModel) resizePreview() {
	if m.mode == modePreview {
		m.preview.viewport.Width = m.width
		m.preview.viewport.Height = m.height - 3
		return
	}

	listWidth := int(float64(m.width) * 0.4)
	if listWidth < 30 {
		listWidth = 30
	}
	w := m.width - listWidth - 6
	h := m.height - 12
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	m.preview.viewport.Width = w
	m.preview.viewport.Height = h
}

// applySearch filters clients by the search query, keeping the selection when possible
func (m *dashboardModel) applySearch() {
	selected := m.selectedName()
	query := strings.ToLower(strings.TrimSpace(m.searchInput.Value()))

	if query == "" {
		m.filtered = m.clients
	} else {
		m.filtered = make([]domain.ClientRecord, 0, len(m.clients))
		for _, c := range m.clients {
			if strings.Contains(strings.ToLower(c.Name), query) {
				m.filtered = append(m.filtered, c)
			}
		}
	}

	m.cursor = 0
	m.offset = 0
	if selected != "" {
		m.selectName(selected)
	}
}

func (m *dashboardModel) selectName(name string) {
	for i, c := range m.filtered {
		if c.Name == name {
			m.cursor = i
			m.adjustViewport()
			return
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = 0
		m.offset = 0
	}
}

func (m dashboardModel) selected() *domain.ClientRecord {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	return &m.filtered[m.cursor]
}

func (m dashboardModel) selectedName() string {
	if c := m.selected(); c != nil {
		return c.Name
	}
	return ""
}

func (m *dashboardModel) setStatus(message string, style lipgloss.Style) tea.Cmd {
	m.message = message
	m.messageStyle = style
	m.messageExpiry = time.Now().Add(4 * time.Second)
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearMessageMsg{}
	})
}

// padRight pads s to width terminal cells
func padRight(s string, width int) string {
	realLen := lipgloss.Width(s)
	if realLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-realLen)
}

// padBlock pads every line of a multi-line block to width
func padBlock(block string, width int) string {
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		lines[i] = padRight(l, width)
	}
	return strings.Join(lines, "\n")
}

// Messages

type statusMsg struct {
	message string
	style   lipgloss.Style
}

type clearMessageMsg struct{}

type clientsLoadedMsg struct {
	clients    []domain.ClientRecord
	selectName string
	err        error
}

type previewLoadedMsg struct {
	name    string
	content string
	err     error
}

type clientCreatedMsg struct {
	name     string
	verified bool
	err      error
}

type clientDeletedMsg struct {
	name string
	err  error
}

// Commands

func (m dashboardModel) loadClients() tea.Cmd {
	return m.reloadClients("")
}

func (m dashboardModel) reloadClients(selectName string) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		resp, err := svc.ListClients(ctx)
		if err != nil {
			return clientsLoadedMsg{err: err}
		}
		return clientsLoadedMsg{clients: resp.Clients, selectName: selectName}
	}
}

func (m dashboardModel) previewSelected() tea.Cmd {
	name := m.selectedName()
	if name == "" {
		return nil
	}
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		content, err := svc.GetArtifact(ctx, name)
		if err != nil {
			return previewLoadedMsg{name: name, err: err}
		}
		return previewLoadedMsg{name: name, content: ui.Highlight(content.String())}
	}
}

func (m dashboardModel) createClient(raw string) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		resp, err := svc.CreateClient(ctx, services.CreateClientRequest{Name: raw})
		if err != nil {
			return clientCreatedMsg{name: domain.NormalizeName(raw), err: err}
		}
		return clientCreatedMsg{name: resp.Record.Name, verified: resp.Verified}
	}
}

func (m dashboardModel) deleteClient(name string) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return clientDeletedMsg{name: name, err: svc.DeleteClient(ctx, name)}
	}
}

func (m dashboardModel) copyClient(name string) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		content, err := svc.GetArtifact(ctx, name)
		if err != nil {
			return statusMsg{message: describeError(err), style: ui.StyleError}
		}
		if err := clipboard.WriteAll(content.String()); err != nil {
			return statusMsg{message: "Failed to copy: " + err.Error(), style: ui.StyleError}
		}
		return statusMsg{message: fmt.Sprintf("%s Copied '%s' to the clipboard", ui.IconSuccess, name), style: ui.StyleSuccess}
	}
}
