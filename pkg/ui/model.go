package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/depthlog/pkg/debug"
	"github.com/vanderheijden86/depthlog/pkg/divelog"
	"github.com/vanderheijden86/depthlog/pkg/metrics"
	"github.com/vanderheijden86/depthlog/pkg/models"
	"github.com/vanderheijden86/depthlog/pkg/watcher"
)

// Minimum width before the notes pane is hidden entirely.
const minNotesPaneWidth = 40

// view selects the active screen.
type view int

const (
	viewDives view = iota
	viewStats
	viewDevices
)

func (v view) String() string {
	switch v {
	case viewDives:
		return "Dives"
	case viewStats:
		return "Statistics"
	case viewDevices:
		return "Devices"
	default:
		return "Unknown"
	}
}

// FileChangedMsg is sent when the logbook file changes on disk.
type FileChangedMsg struct{}

// reloadedMsg carries the result of an async reload.
type reloadedMsg struct {
	store   *divelog.DiveList
	devices *divelog.DeviceMap
	err     error
}

// ReloadFunc re-reads the logbook from its source. Wired by the caller so
// the UI stays ignorant of which data source is behind it.
type ReloadFunc func() (*divelog.DiveList, *divelog.DeviceMap, error)

// Options configures the UI model.
type Options struct {
	Units     divelog.Units
	Autogroup bool
	Layout    models.Layout
	StartView string // "dives", "stats" or "devices"
	Reload    ReloadFunc
	Watcher   *watcher.Watcher
}

// Model is the top-level bubbletea model: three grids over the view
// models, a notes pane for the selected dive, and an edit line shared by
// the dive number and device nickname edits.
type Model struct {
	theme   Theme
	opts    Options
	store   *divelog.DiveList
	devices *divelog.DeviceMap

	diveModel   *models.DiveTripModel
	statsModel  *models.YearlyStatsModel
	deviceModel *models.DeviceModel

	diveGrid   *grid
	statsGrid  *grid
	deviceGrid *grid

	active    view
	width     int
	height    int
	showNotes bool
	status    string

	editing    bool
	editIx     models.Index
	editTarget models.Model
	input      textinput.Model

	notes         viewport.Model
	notesRenderer *glamour.TermRenderer
	notesFor      int // dive id last rendered into the pane

	quitting bool
}

// NewModel builds the UI over a loaded store and device map.
func NewModel(store *divelog.DiveList, devices *divelog.DeviceMap, opts Options) *Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	m := &Model{
		theme:     theme,
		opts:      opts,
		store:     store,
		devices:   devices,
		showNotes: true,
		input:     textinput.New(),
		notes:     viewport.New(0, 0),
	}
	m.input.CharLimit = 64
	m.buildModels()

	switch opts.StartView {
	case "stats":
		m.active = viewStats
	case "devices":
		m.active = viewDevices
	default:
		m.active = viewDives
	}
	return m
}

// buildModels (re)creates the three view models and their grids from the
// current store.
func (m *Model) buildModels() {
	defer metrics.Timer(metrics.ModelRebuild)()

	if m.diveGrid != nil {
		m.diveGrid.detach()
		m.statsGrid.detach()
		m.deviceGrid.detach()
	}

	m.diveModel = models.NewDiveTripModel(m.store, m.opts.Units, m.opts.Autogroup)
	if m.opts.Layout == models.LayoutList {
		m.diveModel.SetLayout(models.LayoutList)
	}
	m.statsModel = models.NewYearlyStatsModel(
		divelog.YearlyStats(m.store),
		divelog.MonthlyStats(m.store),
		divelog.TripStats(m.store),
		m.opts.Units,
	)
	if m.devices == nil {
		m.devices = &divelog.DeviceMap{}
	}
	m.deviceModel = models.NewDeviceModel(m.devices, m.store)

	m.diveGrid = newGrid(m.diveModel, m.theme)
	m.statsGrid = newGrid(m.statsModel, m.theme)
	m.deviceGrid = newGrid(m.deviceModel, m.theme)
	m.layoutGrids()
	m.notesFor = 0
}

// Init starts the file-change wait when a watcher is wired.
func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

// waitForChange blocks on the watcher channel and turns a notification
// into a FileChangedMsg. Re-issued after every receipt.
func (m *Model) waitForChange() tea.Cmd {
	w := m.opts.Watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

func (m *Model) reload() tea.Cmd {
	if m.opts.Reload == nil {
		return nil
	}
	reload := m.opts.Reload
	return func() tea.Msg {
		store, devices, err := reload()
		return reloadedMsg{store: store, devices: devices, err: err}
	}
}

// Update is the bubbletea message loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutGrids()
		m.notesRenderer = nil // word wrap depends on pane width
		m.notesFor = 0
		return m, nil

	case FileChangedMsg:
		debug.Log("logbook changed on disk, reloading")
		return m, tea.Batch(m.reload(), m.waitForChange())

	case reloadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("reload failed: %v", msg.err)
			return m, nil
		}
		// The rebuild detaches every model the edit was bound to, so an
		// in-flight edit would write into the discarded store.
		edited := m.editing
		if edited {
			m.editing = false
			m.editTarget = nil
			m.input.Blur()
		}
		m.store = msg.store
		if msg.devices != nil {
			m.devices = msg.devices
		}
		m.buildModels()
		m.status = "logbook reloaded"
		if edited {
			m.status = "logbook reloaded, edit cancelled"
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.activeGrid()

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.active = (m.active + 1) % 3
		m.status = ""
	case "1":
		m.active = viewDives
	case "2":
		m.active = viewStats
	case "3":
		m.active = viewDevices

	case "j", "down":
		g.MoveCursor(1)
		m.status = ""
	case "k", "up":
		g.MoveCursor(-1)
		m.status = ""
	case "ctrl+d", "pgdown":
		g.MoveCursor(g.height)
	case "ctrl+u", "pgup":
		g.MoveCursor(-g.height)
	case "g", "home":
		g.CursorToStart()
	case "G", "end":
		g.CursorToEnd()

	case "enter", " ":
		g.Toggle()

	case "l":
		if m.active == viewDives {
			if m.diveModel.Layout() == models.LayoutTree {
				m.diveModel.SetLayout(models.LayoutList)
			} else {
				m.diveModel.SetLayout(models.LayoutTree)
			}
		}

	case "n":
		m.showNotes = !m.showNotes
		m.layoutGrids()

	case "e":
		return m.startEdit()

	case "y":
		m.yankSelection()

	case "x", "delete":
		if m.active == viewDevices {
			m.deviceModel.Remove(m.deviceGrid.CurrentIndex(models.ColDeviceRemove))
			m.status = "device removed (w to commit, u to undo)"
		}

	case "w":
		if m.active == viewDevices {
			m.deviceModel.Commit()
			m.status = "device changes committed"
		}
	case "u":
		if m.active == viewDevices {
			m.deviceModel.Discard()
			m.status = "device changes discarded"
		}

	case "r":
		return m, m.reload()
	}

	return m, nil
}

// startEdit opens the edit line over the editable cell of the cursor row:
// the dive number in the dive view, the nickname in the device view.
func (m *Model) startEdit() (tea.Model, tea.Cmd) {
	var (
		ix     models.Index
		target models.Model
	)
	switch m.active {
	case viewDives:
		ix = m.diveGrid.CurrentIndex(models.ColNr)
		target = m.diveModel
	case viewDevices:
		ix = m.deviceGrid.CurrentIndex(models.ColDeviceNickname)
		target = m.deviceModel
	default:
		return m, nil
	}
	if !ix.IsValid() || target.Flags(ix)&models.FlagEditable == 0 {
		m.status = "nothing editable here"
		return m, nil
	}

	m.editing = true
	m.editIx = ix
	m.editTarget = target
	current := cellString(target.Data(ix, models.RoleEdit))
	if current == "" {
		current = cellString(target.Data(ix, models.RoleDisplay))
	}
	m.input.SetValue(current)
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

func (m *Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		m.status = "edit cancelled"
		return m, nil
	case "enter":
		m.editing = false
		m.input.Blur()
		m.applyEdit(strings.TrimSpace(m.input.Value()))
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyEdit writes the edit through the model's SetData. The dive number
// column takes an int; everything else takes the raw string.
func (m *Model) applyEdit(value string) {
	var v any = value
	if m.active == viewDives {
		n := 0
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			m.status = fmt.Sprintf("not a number: %q", value)
			return
		}
		v = n
	}
	if m.editTarget.SetData(m.editIx, v, models.RoleEdit) {
		m.status = "saved"
	} else {
		m.status = fmt.Sprintf("rejected: %q", value)
	}
}

// yankSelection copies a one-line summary of the selected dive to the
// clipboard.
func (m *Model) yankSelection() {
	if m.active != viewDives {
		return
	}
	dive := m.selectedDive()
	if dive == nil {
		return
	}
	u := m.opts.Units
	summary := fmt.Sprintf("Dive #%d, %s, %s %s, %s min, %s",
		dive.Number, u.Date(dive.When),
		u.Depth(dive.MaxDepthMM), u.DepthUnit(),
		u.Duration(dive.DurationS, dive.Freedive),
		dive.Location)
	if err := clipboard.WriteAll(summary); err != nil {
		m.status = fmt.Sprintf("clipboard: %v", err)
		return
	}
	m.status = "dive summary copied"
}

// selectedDive resolves the dive handle of the cursor row, or nil on a
// trip row.
func (m *Model) selectedDive() *divelog.Dive {
	ix := m.diveGrid.CurrentIndex(models.ColNr)
	if !ix.IsValid() {
		return nil
	}
	dive, _ := m.diveModel.Data(ix, models.RoleDive).(*divelog.Dive)
	return dive
}

func (m *Model) activeGrid() *grid {
	switch m.active {
	case viewStats:
		return m.statsGrid
	case viewDevices:
		return m.deviceGrid
	default:
		return m.diveGrid
	}
}

// --- layout and rendering --------------------------------------------------

func (m *Model) notesPaneWidth() int {
	if !m.showNotes || m.active != viewDives {
		return 0
	}
	w := m.width / 3
	if w < minNotesPaneWidth {
		return 0
	}
	return w
}

func (m *Model) layoutGrids() {
	if m.width == 0 {
		return
	}
	gridH := m.height - 4 // tab line, header, status line, edit line
	if gridH < 1 {
		gridH = 1
	}
	notesW := m.notesPaneWidth()
	gridW := m.width - notesW
	if notesW > 0 {
		gridW -= 1 // pane divider
	}
	if m.diveGrid != nil {
		m.diveGrid.SetSize(gridW, gridH)
		m.statsGrid.SetSize(m.width, gridH)
		m.deviceGrid.SetSize(m.width, gridH)
	}
	m.notes.Width = notesW
	m.notes.Height = gridH
}

// View renders the active screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	defer metrics.Timer(metrics.UIRender)()

	g := m.activeGrid()
	body := g.View()

	if m.active == viewDives {
		if notesW := m.notesPaneWidth(); notesW > 0 {
			m.renderNotes(notesW)
			divider := m.theme.MutedText.Render("│")
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, divider, m.notes.View())
		}
	}

	var b strings.Builder
	b.WriteString(m.tabLine())
	b.WriteByte('\n')
	b.WriteString(g.HeaderView())
	b.WriteByte('\n')
	b.WriteString(body)
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	if m.editing {
		b.WriteByte('\n')
		b.WriteString(m.theme.PrimaryBold.Render("edit: ") + m.input.View())
	}
	return b.String()
}

func (m *Model) tabLine() string {
	tabs := make([]string, 0, 3)
	for v := viewDives; v <= viewDevices; v++ {
		label := fmt.Sprintf(" %d %s ", int(v)+1, v)
		if v == m.active {
			tabs = append(tabs, m.theme.Header.Render(label))
		} else {
			tabs = append(tabs, m.theme.MutedText.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (m *Model) statusLine() string {
	parts := []string{
		m.theme.SecondaryText.Render(fmt.Sprintf("%d dives", m.store.Len())),
	}
	if m.store.Changed() {
		parts = append(parts, m.theme.DirtyMark.Render("● unsaved"))
	}
	if m.status != "" {
		parts = append(parts, m.theme.Base.Render(m.status))
	}
	hints := "j/k move · enter expand · e edit · y yank · n notes · tab view · q quit"
	line := strings.Join(parts, "  ")
	pad := m.width - lipgloss.Width(line) - lipgloss.Width(hints)
	if pad > 1 {
		line += strings.Repeat(" ", pad) + m.theme.MutedText.Render(hints)
	}
	return line
}

// renderNotes fills the notes viewport with the selected dive's notes,
// markdown-rendered. Re-rendered only when the selection changes.
func (m *Model) renderNotes(width int) {
	dive := m.selectedDive()
	if dive == nil {
		m.notes.SetContent(m.theme.MutedText.Render("select a dive"))
		m.notesFor = 0
		return
	}
	if dive.UniqID == m.notesFor {
		return
	}

	body := dive.Notes
	if body == "" {
		body = "*no notes*"
	}
	md := fmt.Sprintf("# Dive #%d\n\n**%s**\n\n%s\n\n%s\n",
		dive.Number, dive.Location, stars(dive.Rating), body)

	if m.notesRenderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width-2),
		)
		if err != nil {
			m.notes.SetContent(dive.Notes)
			m.notesFor = dive.UniqID
			return
		}
		m.notesRenderer = r
	}

	out, err := m.notesRenderer.Render(md)
	if err != nil {
		out = dive.Notes
	}
	m.notes.SetContent(out)
	m.notes.GotoTop()
	m.notesFor = dive.UniqID
}
