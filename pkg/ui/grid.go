package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/depthlog/pkg/models"
)

// gridRow is one flattened, navigable row of a view model: the column-0
// address, tree depth, and whether it owns children.
type gridRow struct {
	ix       models.Index
	depth    int
	hasKids  bool
	expanded bool
}

// grid is the shared renderer over a models.Model. It flattens the tree
// into navigable rows (respecting per-parent expansion), tracks the
// cursor, and re-flattens after any structural bracket. The model owns
// the data; the grid only ever reads through Data and the role
// vocabulary.
type grid struct {
	models.BaseObserver

	model    models.Model
	theme    Theme
	rows     []gridRow
	cursor   int
	offset   int // first visible row
	height   int // visible row budget
	width    int
	colWidth []int
	stale    bool

	// Collapsed top-level rows by row number. Only depth-0 rows can
	// collapse; the dive and stats trees are two levels deep.
	collapsed map[int]bool
}

func newGrid(m models.Model, theme Theme) *grid {
	g := &grid{
		model:     m,
		theme:     theme,
		collapsed: make(map[int]bool),
	}
	m.Subscribe(g)
	g.reflatten()
	return g
}

// detach unsubscribes from the model; the grid must not be used after.
func (g *grid) detach() {
	g.model.Unsubscribe(g)
}

// Structural brackets invalidate the flat row list; the next render
// re-flattens. Single-cell changes keep the structure, so only the cell
// cache (column widths) needs refreshing.
func (g *grid) RowsInserted(models.Index, int, int) { g.stale = true }
func (g *grid) RowsRemoved(models.Index, int, int)  { g.stale = true }
func (g *grid) ModelReset()                         { g.stale = true }
func (g *grid) DataChanged(models.Index, models.Index) {
	g.colWidth = nil
}

// reflatten rebuilds the visible row list from the model structure.
func (g *grid) reflatten() {
	g.stale = false
	g.rows = g.rows[:0]
	root := models.Index{}
	top := g.model.RowCount(root)
	for row := 0; row < top; row++ {
		ix := g.model.Index(row, 0, root)
		if !ix.IsValid() {
			continue
		}
		kids := g.model.RowCount(ix)
		expanded := kids > 0 && !g.collapsed[row]
		g.rows = append(g.rows, gridRow{ix: ix, depth: 0, hasKids: kids > 0, expanded: expanded})
		if !expanded {
			continue
		}
		for child := 0; child < kids; child++ {
			cix := g.model.Index(child, 0, ix)
			if cix.IsValid() {
				g.rows = append(g.rows, gridRow{ix: cix, depth: 1})
			}
		}
	}
	if g.cursor >= len(g.rows) {
		g.cursor = len(g.rows) - 1
	}
	if g.cursor < 0 {
		g.cursor = 0
	}
	g.colWidth = nil
}

func (g *grid) ensureFresh() {
	if g.stale {
		g.reflatten()
	}
}

// Len returns the number of navigable rows.
func (g *grid) Len() int {
	g.ensureFresh()
	return len(g.rows)
}

// Current returns the row under the cursor, or nil when the grid is
// empty.
func (g *grid) Current() *gridRow {
	g.ensureFresh()
	if len(g.rows) == 0 {
		return nil
	}
	return &g.rows[g.cursor]
}

// CurrentIndex returns the model address of the cursor row's given
// column.
func (g *grid) CurrentIndex(column int) models.Index {
	r := g.Current()
	if r == nil {
		return models.Index{}
	}
	return g.indexAt(*r, column)
}

func (g *grid) indexAt(r gridRow, column int) models.Index {
	return g.model.Index(r.ix.Row(), column, g.model.Parent(r.ix))
}

// MoveCursor moves by delta, clamped, and scrolls the window to keep the
// cursor visible.
func (g *grid) MoveCursor(delta int) {
	g.ensureFresh()
	g.cursor += delta
	if g.cursor < 0 {
		g.cursor = 0
	}
	if g.cursor >= len(g.rows) {
		g.cursor = len(g.rows) - 1
	}
	g.scrollIntoView()
}

func (g *grid) CursorToStart() {
	g.cursor = 0
	g.offset = 0
}

func (g *grid) CursorToEnd() {
	g.ensureFresh()
	g.cursor = len(g.rows) - 1
	if g.cursor < 0 {
		g.cursor = 0
	}
	g.scrollIntoView()
}

func (g *grid) scrollIntoView() {
	if g.height <= 0 {
		return
	}
	if g.cursor < g.offset {
		g.offset = g.cursor
	}
	if g.cursor >= g.offset+g.height {
		g.offset = g.cursor - g.height + 1
	}
}

// Toggle flips expansion of the cursor row when it has children.
func (g *grid) Toggle() {
	r := g.Current()
	if r == nil || !r.hasKids || r.depth != 0 {
		return
	}
	row := r.ix.Row()
	g.collapsed[row] = !g.collapsed[row]
	g.reflatten()
	g.scrollIntoView()
}

// SetSize sets the render budget in cells.
func (g *grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.scrollIntoView()
}

// columnWidths measures headers and every flattened row, capping each
// column so wide free-text columns cannot starve the numeric ones.
func (g *grid) columnWidths() []int {
	if g.colWidth != nil {
		return g.colWidth
	}
	cols := g.model.ColumnCount()
	widths := make([]int, cols)
	for c := 0; c < cols; c++ {
		if h, ok := g.model.Header(c, models.Horizontal, models.RoleDisplay).(string); ok {
			for _, line := range strings.Split(h, "\n") {
				if w := len([]rune(strings.TrimSpace(line))); w > widths[c] {
					widths[c] = w
				}
			}
		}
	}
	for _, r := range g.rows {
		for c := 0; c < cols; c++ {
			text := cellString(g.model.Data(g.indexAt(r, c), models.RoleDisplay))
			w := len([]rune(text))
			if c == 0 {
				w += r.depth * 2
			}
			if w > widths[c] {
				widths[c] = w
			}
		}
	}
	const maxColWidth = 40
	for c := range widths {
		if widths[c] > maxColWidth {
			widths[c] = maxColWidth
		}
	}
	g.colWidth = widths
	return widths
}

// HeaderView renders the single-line column header.
func (g *grid) HeaderView() string {
	g.ensureFresh()
	widths := g.columnWidths()
	cells := make([]string, 0, len(widths))
	for c := range widths {
		h, _ := g.model.Header(c, models.Horizontal, models.RoleDisplay).(string)
		h = strings.TrimSpace(strings.ReplaceAll(h, "\n", " "))
		cells = append(cells, padRight(truncate(h, widths[c]), widths[c]))
	}
	line := strings.Join(cells, " ")
	if g.width > 0 {
		line = truncate(line, g.width)
	}
	return g.theme.Header.Render(line)
}

// View renders the visible window of rows.
func (g *grid) View() string {
	g.ensureFresh()
	if len(g.rows) == 0 {
		return g.theme.MutedText.Render("  (empty)")
	}

	widths := g.columnWidths()
	end := len(g.rows)
	if g.height > 0 && g.offset+g.height < end {
		end = g.offset + g.height
	}

	var b strings.Builder
	for i := g.offset; i < end; i++ {
		if i > g.offset {
			b.WriteByte('\n')
		}
		b.WriteString(g.renderRow(i, widths))
	}
	return b.String()
}

func (g *grid) renderRow(i int, widths []int) string {
	r := g.rows[i]
	cells := make([]string, 0, len(widths))
	bold := false

	for c := range widths {
		ix := g.indexAt(r, c)
		text := cellString(g.model.Data(ix, models.RoleDisplay))

		if c == 0 {
			prefix := strings.Repeat("  ", r.depth)
			if r.hasKids {
				if r.expanded {
					prefix += "▾ "
				} else {
					prefix += "▸ "
				}
			}
			text = prefix + text
		}

		if f, ok := g.model.Data(ix, models.RoleFont).(models.Font); ok && f.Bold {
			bold = true
		}

		if icon, ok := g.model.Data(ix, models.RoleDecoration).(models.Icon); ok && text == "" {
			text = icon.Glyph
		}
		if n, ok := g.model.Data(ix, models.RoleStarRating).(int); ok && text == "" && n > 0 {
			text = stars(n)
		}

		text = truncate(text, widths[c])
		if a, ok := g.model.Data(ix, models.RoleAlignment).(models.Alignment); ok && a == models.AlignRight {
			text = padLeft(text, widths[c])
		} else {
			text = padRight(text, widths[c])
		}
		cells = append(cells, text)
	}

	line := strings.Join(cells, " ")
	if g.width > 0 {
		line = truncate(line, g.width)
	}

	style := g.rowStyle(r, bold)
	if i == g.cursor {
		return g.theme.Selected.Render(line)
	}
	return style.Render(line)
}

func (g *grid) rowStyle(r gridRow, bold bool) lipgloss.Style {
	switch {
	case r.hasKids && bold:
		return g.theme.YearRow
	case r.hasKids:
		return g.theme.TripHeader
	case bold:
		return g.theme.PrimaryBold
	}
	return g.theme.Base
}
