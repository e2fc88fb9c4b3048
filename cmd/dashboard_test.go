package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/internal/core/ports/mocks"
	"github.com/kamal-hamza/vpnadm/internal/core/services"
	"github.com/kamal-hamza/vpnadm/pkg/ui"
)

// newTestDashboard builds a dashboard over an in-memory store holding count clients
func newTestDashboard(t testing.TB, count int) (dashboardModel, *mocks.MockStore) {
	t.Helper()
	ui.DisableColor()

	store := mocks.NewMockStore()
	for i := 0; i < count; i++ {
		store.Put(fmt.Sprintf("client-%02d", i), []byte(fmt.Sprintf("client\nremote vpn.example.com %d\n", i)))
	}
	svc := services.NewLifecycleService(store, mocks.NewMockProvisioner(store))

	m := newDashboardModel(context.Background(), svc)
	m.clients = createTestClients(count)
	m.filtered = m.clients
	return m, store
}

func createTestClients(count int) []domain.ClientRecord {
	clients := make([]domain.ClientRecord, count)
	for i := 0; i < count; i++ {
		clients[i] = domain.NewClientRecord(
			fmt.Sprintf("client-%02d", i),
			time.Now().Add(-time.Duration(i)*24*time.Hour),
			int64(100+i),
		)
	}
	return clients
}

// runCmd executes a tea.Cmd synchronously and returns its message
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("Expected a command, got nil")
	}
	return cmd()
}

func TestDashboardModelInitialization(t *testing.T) {
	m, _ := newTestDashboard(t, 0)

	if m.cursor != 0 {
		t.Errorf("Expected cursor at 0, got %d", m.cursor)
	}
	if m.offset != 0 {
		t.Errorf("Expected offset at 0, got %d", m.offset)
	}
	if m.mode != modeList {
		t.Errorf("Expected mode to be modeList, got %v", m.mode)
	}
	if m.ready {
		t.Error("Expected ready to be false initially")
	}
	if m.dateFormat != domain.DisplayTimeFormat {
		t.Errorf("Expected default date format, got %q", m.dateFormat)
	}
}

func TestDashboardInitLoadsClients(t *testing.T) {
	m, _ := newTestDashboard(t, 3)
	m.clients = nil
	m.filtered = nil

	msg := runCmd(t, m.Init())
	loaded, ok := msg.(clientsLoadedMsg)
	if !ok {
		t.Fatalf("Expected clientsLoadedMsg, got %T", msg)
	}
	if loaded.err != nil {
		t.Fatalf("Unexpected error: %v", loaded.err)
	}

	updated, cmd := m.Update(loaded)
	m = updated.(dashboardModel)

	if len(m.clients) != 3 {
		t.Errorf("Expected 3 clients, got %d", len(m.clients))
	}
	if len(m.filtered) != 3 {
		t.Errorf("Expected 3 filtered clients, got %d", len(m.filtered))
	}
	if cmd == nil {
		t.Error("Expected a preview command after loading")
	}
}

func TestDashboardLoadError(t *testing.T) {
	m, store := newTestDashboard(t, 0)
	store.ListErr = domain.NewStoreFailure("", fmt.Errorf("permission denied"))

	msg := runCmd(t, m.loadClients())
	updated, _ := m.Update(msg)
	m = updated.(dashboardModel)

	if !strings.Contains(m.message, "Client directory error") {
		t.Errorf("Expected store failure message, got %q", m.message)
	}
}

func TestDashboardNavigation(t *testing.T) {
	tests := []struct {
		name   string
		start  int
		key    tea.KeyMsg
		expect int
	}{
		{"up", 2, tea.KeyMsg{Type: tea.KeyUp}, 1},
		{"down", 2, tea.KeyMsg{Type: tea.KeyDown}, 3},
		{"k", 2, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, 1},
		{"j", 2, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, 3},
		{"up at top", 0, tea.KeyMsg{Type: tea.KeyUp}, 0},
		{"down at bottom", 4, tea.KeyMsg{Type: tea.KeyDown}, 4},
		{"top", 3, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}}, 0},
		{"bottom", 1, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestDashboard(t, 5)
			m.cursor = tt.start

			updated, _ := m.updateList(tt.key)
			m = updated.(dashboardModel)

			if m.cursor != tt.expect {
				t.Errorf("Expected cursor at %d, got %d", tt.expect, m.cursor)
			}
		})
	}
}

func TestDashboardModeTransitions(t *testing.T) {
	tests := []struct {
		name   string
		key    tea.KeyMsg
		expect viewMode
	}{
		{"search", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}}, modeSearch},
		{"help", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}}, modeHelp},
		{"new", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}}, modeNew},
		{"delete", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}}, modeConfirmDelete},
		{"preview", tea.KeyMsg{Type: tea.KeyEnter}, modePreview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestDashboard(t, 3)

			updated, _ := m.updateList(tt.key)
			m = updated.(dashboardModel)

			if m.mode != tt.expect {
				t.Errorf("Expected mode %v, got %v", tt.expect, m.mode)
			}
		})
	}
}

func TestDashboardEscapeReturnsToList(t *testing.T) {
	m, _ := newTestDashboard(t, 3)
	esc := tea.KeyMsg{Type: tea.KeyEsc}

	m.mode = modeHelp
	updated, _ := m.updateHelp(esc)
	m = updated.(dashboardModel)
	if m.mode != modeList {
		t.Errorf("Expected modeList after help, got %v", m.mode)
	}

	m.mode = modeNew
	updated, _ = m.updateNew(esc)
	m = updated.(dashboardModel)
	if m.mode != modeList {
		t.Errorf("Expected modeList after new, got %v", m.mode)
	}

	m.mode = modePreview
	updated, _ = m.updatePreview(esc)
	m = updated.(dashboardModel)
	if m.mode != modeList {
		t.Errorf("Expected modeList after preview, got %v", m.mode)
	}
}

func TestDashboardEmptyListIgnoresActions(t *testing.T) {
	m, _ := newTestDashboard(t, 0)

	for _, r := range []rune{'d', 'c'} {
		updated, cmd := m.updateList(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(dashboardModel)
		if m.mode != modeList {
			t.Errorf("%q: expected modeList, got %v", r, m.mode)
		}
		if cmd != nil {
			t.Errorf("%q: expected no command on empty list", r)
		}
	}

	updated, _ := m.updateList(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(dashboardModel)
	if m.mode != modeList {
		t.Errorf("Expected preview to be refused on empty list, got %v", m.mode)
	}
}

func TestDashboardDeleteConfirmation(t *testing.T) {
	m, store := newTestDashboard(t, 3)
	m.cursor = 1

	updated, _ := m.updateList(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = updated.(dashboardModel)

	if m.deleteTarget == nil || m.deleteTarget.Name != "client-01" {
		t.Fatalf("Expected delete target client-01, got %+v", m.deleteTarget)
	}

	updated, cmd := m.updateConfirmDelete(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = updated.(dashboardModel)

	if m.mode != modeList {
		t.Errorf("Expected modeList after confirm, got %v", m.mode)
	}
	if m.deleteTarget != nil {
		t.Error("Expected delete target to be cleared")
	}

	msg := runCmd(t, cmd)
	deleted, ok := msg.(clientDeletedMsg)
	if !ok {
		t.Fatalf("Expected clientDeletedMsg, got %T", msg)
	}
	if deleted.err != nil {
		t.Fatalf("Unexpected delete error: %v", deleted.err)
	}
	if store.Has("client-01") {
		t.Error("Expected client-01 to be removed from the store")
	}

	updated, _ = m.Update(deleted)
	m = updated.(dashboardModel)
	if !strings.Contains(m.message, "deleted successfully") {
		t.Errorf("Expected success message, got %q", m.message)
	}
}

func TestDashboardDeleteCancel(t *testing.T) {
	m, store := newTestDashboard(t, 3)

	updated, _ := m.updateList(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = updated.(dashboardModel)

	updated, cmd := m.updateConfirmDelete(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = updated.(dashboardModel)

	if cmd != nil {
		t.Error("Expected no command on cancel")
	}
	if m.mode != modeList || m.deleteTarget != nil {
		t.Error("Expected cancel to return to list and clear the target")
	}
	if !store.Has("client-00") {
		t.Error("Expected client-00 to be kept")
	}
}

func TestDashboardCreateClient(t *testing.T) {
	m, store := newTestDashboard(t, 0)

	updated, _ := m.updateList(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = updated.(dashboardModel)
	m.nameInput.SetValue("  laptop  ")

	updated, cmd := m.updateNew(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(dashboardModel)

	if m.busy != "laptop" {
		t.Errorf("Expected busy to be 'laptop', got %q", m.busy)
	}

	// The batch holds the status tick and the create call; run the create directly
	msg := runCmd(t, m.createClient("  laptop  "))
	created, ok := msg.(clientCreatedMsg)
	if !ok {
		t.Fatalf("Expected clientCreatedMsg, got %T", msg)
	}
	if created.err != nil {
		t.Fatalf("Unexpected error: %v", created.err)
	}
	if created.name != "laptop" || !created.verified {
		t.Errorf("Expected verified laptop, got %+v", created)
	}
	if !store.Has("laptop") {
		t.Error("Expected laptop in the store")
	}
	if cmd == nil {
		t.Error("Expected a batch command from enter")
	}

	updated, _ = m.Update(created)
	m = updated.(dashboardModel)
	if m.busy != "" {
		t.Errorf("Expected busy to be cleared, got %q", m.busy)
	}
	if !strings.Contains(m.message, "created successfully") {
		t.Errorf("Expected success message, got %q", m.message)
	}
}

func TestDashboardCreateInvalidName(t *testing.T) {
	m, store := newTestDashboard(t, 0)

	msg := runCmd(t, m.createClient("ab"))
	created := msg.(clientCreatedMsg)
	if created.err == nil {
		t.Fatal("Expected an error for a short name")
	}

	updated, _ := m.Update(created)
	m = updated.(dashboardModel)
	if !strings.Contains(m.message, "at least 3 characters") {
		t.Errorf("Expected name rule message, got %q", m.message)
	}
	if store.Has("ab") {
		t.Error("Expected the store to be untouched")
	}
}

func TestDashboardQuitWhileBusy(t *testing.T) {
	m, _ := newTestDashboard(t, 1)
	m.busy = "laptop"
	q := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}

	updated, _ := m.updateList(q)
	m = updated.(dashboardModel)
	if !m.quitArmed {
		t.Fatal("Expected the first q to arm quit")
	}

	_, cmd := m.updateList(q)
	if cmd == nil {
		t.Fatal("Expected quit command on the second q")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestDashboardNewRefusedWhileBusy(t *testing.T) {
	m, _ := newTestDashboard(t, 1)
	m.busy = "laptop"

	updated, _ := m.updateList(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = updated.(dashboardModel)

	if m.mode != modeList {
		t.Errorf("Expected to stay in list mode, got %v", m.mode)
	}
	if !strings.Contains(m.message, "Still provisioning") {
		t.Errorf("Expected busy message, got %q", m.message)
	}
}

func TestDashboardSearchFiltering(t *testing.T) {
	m, _ := newTestDashboard(t, 12)

	m.searchInput.SetValue("CLIENT-1")
	m.applySearch()

	// client-10 and client-11
	if len(m.filtered) != 2 {
		t.Errorf("Expected 2 filtered clients, got %d", len(m.filtered))
	}

	m.searchInput.SetValue("nothing")
	m.applySearch()
	if len(m.filtered) != 0 {
		t.Errorf("Expected 0 filtered clients, got %d", len(m.filtered))
	}
	if m.cursor != 0 {
		t.Errorf("Expected cursor reset, got %d", m.cursor)
	}
}

func TestDashboardSearchKeepsSelection(t *testing.T) {
	m, _ := newTestDashboard(t, 12)
	m.cursor = 10 // client-10

	m.searchInput.SetValue("client-1")
	m.applySearch()

	if got := m.selectedName(); got != "client-10" {
		t.Errorf("Expected client-10 to stay selected, got %q", got)
	}
}

func TestDashboardSearchModeTyping(t *testing.T) {
	m, _ := newTestDashboard(t, 5)
	m.mode = modeSearch
	m.searchInput.Focus()

	// j and k are query text in search mode
	updated, _ := m.updateSearch(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = updated.(dashboardModel)

	if m.searchInput.Value() != "j" {
		t.Errorf("Expected query 'j', got %q", m.searchInput.Value())
	}
	if len(m.filtered) != 0 {
		t.Errorf("Expected no matches for 'j', got %d", len(m.filtered))
	}
}

func TestDashboardSearchModeArrowKeys(t *testing.T) {
	m, _ := newTestDashboard(t, 5)
	m.mode = modeSearch

	updated, _ := m.updateSearch(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(dashboardModel)
	if m.cursor != 1 {
		t.Errorf("Expected cursor at 1, got %d", m.cursor)
	}

	updated, _ = m.updateSearch(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(dashboardModel)
	if m.cursor != 0 {
		t.Errorf("Expected cursor at 0, got %d", m.cursor)
	}
}

func TestDashboardSearchEnterKeepsFilter(t *testing.T) {
	m, _ := newTestDashboard(t, 12)
	m.mode = modeSearch
	m.searchInput.SetValue("client-1")
	m.applySearch()

	updated, _ := m.updateSearch(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(dashboardModel)

	if m.mode != modeList {
		t.Errorf("Expected modeList, got %v", m.mode)
	}
	if m.searchInput.Value() != "client-1" {
		t.Errorf("Expected query to be kept, got %q", m.searchInput.Value())
	}
	if len(m.filtered) != 2 {
		t.Errorf("Expected filter to be kept, got %d", len(m.filtered))
	}
}

func TestDashboardSearchClearOnEscape(t *testing.T) {
	m, _ := newTestDashboard(t, 12)
	m.mode = modeSearch
	m.searchInput.SetValue("client-1")
	m.applySearch()

	updated, _ := m.updateSearch(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(dashboardModel)

	if m.searchInput.Value() != "" {
		t.Errorf("Expected empty query, got %q", m.searchInput.Value())
	}
	if len(m.filtered) != 12 {
		t.Errorf("Expected all clients after escape, got %d", len(m.filtered))
	}
}

func TestDashboardViewportAdjustment(t *testing.T) {
	m, _ := newTestDashboard(t, 50)
	m.height = 20
	h := m.listHeight()

	m.cursor = h + 5
	m.adjustViewport()
	if m.offset != m.cursor-h+1 {
		t.Errorf("Expected offset %d, got %d", m.cursor-h+1, m.offset)
	}

	m.cursor = 2
	m.adjustViewport()
	if m.offset != 2 {
		t.Errorf("Expected offset 2, got %d", m.offset)
	}

	start, end := m.visibleRange()
	if end-start != h {
		t.Errorf("Expected %d visible rows, got %d", h, end-start)
	}
}

func TestDashboardPreviewLoaded(t *testing.T) {
	m, _ := newTestDashboard(t, 3)
	m.cursor = 1

	msg := runCmd(t, m.previewSelected())
	loaded, ok := msg.(previewLoadedMsg)
	if !ok {
		t.Fatalf("Expected previewLoadedMsg, got %T", msg)
	}
	if loaded.name != "client-01" {
		t.Errorf("Expected preview for client-01, got %q", loaded.name)
	}
	if !strings.Contains(loaded.content, "remote vpn.example.com 1") {
		t.Errorf("Expected artifact content, got %q", loaded.content)
	}

	updated, _ := m.Update(loaded)
	m = updated.(dashboardModel)
	if m.preview.name != "client-01" {
		t.Errorf("Expected preview state for client-01, got %q", m.preview.name)
	}
}

func TestDashboardStalePreviewIgnored(t *testing.T) {
	m, _ := newTestDashboard(t, 3)
	m.cursor = 2

	updated, _ := m.Update(previewLoadedMsg{name: "client-00", content: "old"})
	m = updated.(dashboardModel)

	if m.preview.name != "" {
		t.Errorf("Expected stale preview to be dropped, got %q", m.preview.name)
	}
}

func TestDashboardPreviewMissingClient(t *testing.T) {
	m, _ := newTestDashboard(t, 0)
	m.clients = createTestClients(1)
	m.filtered = m.clients

	msg := runCmd(t, m.previewSelected())
	loaded := msg.(previewLoadedMsg)
	if !errors.Is(loaded.err, domain.ErrNotFound) {
		t.Errorf("Expected not found, got %v", loaded.err)
	}
}

func TestDashboardStatusMessage(t *testing.T) {
	m, _ := newTestDashboard(t, 0)

	cmd := m.setStatus("hello", ui.StyleInfo)
	if cmd == nil {
		t.Error("Expected a clear tick command")
	}
	if m.message != "hello" {
		t.Errorf("Expected message 'hello', got %q", m.message)
	}

	// A clear that arrives before expiry keeps the message
	updated, _ := m.Update(clearMessageMsg{})
	m = updated.(dashboardModel)
	if m.message != "hello" {
		t.Error("Expected message to survive an early clear")
	}

	m.messageExpiry = time.Now().Add(-time.Second)
	updated, _ = m.Update(clearMessageMsg{})
	m = updated.(dashboardModel)
	if m.message != "" {
		t.Errorf("Expected message to be cleared, got %q", m.message)
	}
}

func TestDashboardWindowResize(t *testing.T) {
	m, _ := newTestDashboard(t, 3)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(dashboardModel)

	if m.width != 120 || m.height != 40 {
		t.Errorf("Expected 120x40, got %dx%d", m.width, m.height)
	}
	if !m.ready {
		t.Error("Expected ready after resize")
	}
	if m.preview.viewport.Width <= 0 || m.preview.viewport.Height <= 0 {
		t.Error("Expected preview viewport to be sized")
	}
}

func TestDashboardViews(t *testing.T) {
	m, _ := newTestDashboard(t, 3)

	if !strings.Contains(m.View(), "Loading") {
		t.Error("Expected loading view before the first resize")
	}

	m.width = 120
	m.height = 40
	m.ready = true
	m.storeDir = "/etc/openvpn/clients"

	view := m.View()
	for _, want := range []string{"vpnadm", "client-00", "3 clients", "/etc/openvpn/clients"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected list view to contain %q", want)
		}
	}

	target := m.filtered[0]
	m.deleteTarget = &target
	m.mode = modeConfirmDelete
	if !strings.Contains(m.View(), "Delete client?") {
		t.Error("Expected delete confirmation view")
	}

	m.mode = modeNew
	if !strings.Contains(m.View(), "New client") {
		t.Error("Expected new client view")
	}

	m.mode = modeHelp
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("Expected help view")
	}
}

func TestDashboardEmptyState(t *testing.T) {
	m, _ := newTestDashboard(t, 0)
	m.width = 100
	m.height = 30
	m.ready = true

	if !strings.Contains(m.View(), "No clients found") {
		t.Error("Expected empty state message")
	}

	m.searchInput.SetValue("zzz")
	if !strings.Contains(m.View(), "No clients match") {
		t.Error("Expected no-match message")
	}
}

func TestDashboardPadRight(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"abc", 6, "abc   "},
		{"abcdef", 3, "abcdef"},
		{"日本", 6, "日本  "},
		{"", 2, "  "},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.width); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
		}
	}
}

func BenchmarkDashboardRendering(b *testing.B) {
	m, _ := newTestDashboard(b, 100)
	m.width = 100
	m.height = 40
	m.ready = true

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.View()
	}
}

func BenchmarkDashboardNavigation(b *testing.B) {
	m, _ := newTestDashboard(b, 1000)
	msg := tea.KeyMsg{Type: tea.KeyDown}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		updated, _ := m.updateList(msg)
		m = updated.(dashboardModel)
		if m.cursor == len(m.filtered)-1 {
			m.cursor = 0
		}
	}
}
