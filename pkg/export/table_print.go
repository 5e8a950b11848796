package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
	"github.com/vanderheijden86/depthlog/pkg/metrics"
	"github.com/vanderheijden86/depthlog/pkg/models"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

// Row backgrounds used when populating the table. Everything after
// population flows through the model's background role.
const (
	bgHeader   models.RGB = 0xdde3ea
	bgTrip     models.RGB = 0xcfe0f0
	bgEvenDive models.RGB = 0xffffff
	bgOddDive  models.RGB = 0xf2f6fa
)

// TableOptions controls dive table export.
type TableOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Title  string // Optional page title
	Model  *models.TablePrintModel
}

// BuildDiveTable fills a print table from the store: a header row, a
// separator row per trip, and one row per visible dive in store order.
// Dive rows alternate backgrounds for readability on paper.
func BuildDiveTable(store *divelog.DiveList, units divelog.Units) *models.TablePrintModel {
	m := models.NewTablePrintModel()

	m.InsertRow(-1)
	setRow(m, 0, "#", "Date", "Depth ("+units.DepthUnit()+")", "Duration", "Divemaster", "Buddy", "Location")
	setBackground(m, 0, bgHeader)

	row := 1
	var lastTrip *divelog.Trip
	stripe := 0
	for i := 0; i < store.Len(); i++ {
		d := store.At(i)
		if store.Hidden(d) {
			continue
		}
		if trip := store.TripFor(d); trip != nil && trip != lastTrip {
			m.InsertRow(-1)
			setRow(m, row, "", "", "", "", "", "", units.TripDate(trip.When, store.ShownCount(trip))+" "+trip.Location)
			setBackground(m, row, bgTrip)
			row++
			stripe = 0
		}
		lastTrip = store.TripFor(d)

		m.InsertRow(-1)
		setRow(m, row,
			fmt.Sprintf("%d", d.Number),
			units.Date(d.When),
			units.Depth(d.MaxDepthMM),
			units.Duration(d.DurationS, d.Freedive),
			d.Divemaster,
			d.Buddy,
			d.Location,
		)
		if stripe%2 == 0 {
			setBackground(m, row, bgEvenDive)
		} else {
			setBackground(m, row, bgOddDive)
		}
		stripe++
		row++
	}
	return m
}

func setRow(m *models.TablePrintModel, row int, cells ...string) {
	for col, text := range cells {
		m.SetData(m.Index(row, col, models.Index{}), text, models.RoleDisplay)
	}
}

func setBackground(m *models.TablePrintModel, row int, c models.RGB) {
	m.SetData(m.Index(row, 0, models.Index{}), c, models.RoleBackground)
}

// SaveDiveTable renders a populated print table to SVG or PNG.
func SaveDiveTable(opts TableOptions) error {
	defer metrics.Timer(metrics.SnapshotRender)()

	if opts.Model == nil {
		return fmt.Errorf("table model is required")
	}
	if opts.Model.RowCount(models.Index{}) == 0 {
		return fmt.Errorf("no rows to export")
	}

	path, format, err := resolveFormat(opts.Path, opts.Format)
	if err != nil {
		return err
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}

	layout := buildTableLayout(opts.Model, opts.Title)

	switch format {
	case "svg":
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		return renderTableSVG(file, layout)
	case "png":
		return renderTablePNG(path, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// --- layout computation ----------------------------------------------------

const (
	charW    = 7.0  // basicfont.Face7x13 advance
	lineH    = 15.0 // line pitch inside a cell
	cellPadX = 6.0
	cellPadY = 4.0
	pageMarg = 24.0
	titleH   = 34.0
)

// Column widths in characters; the renderer clamps cell text to these.
var tableColChars = [7]int{6, 12, 10, 10, 16, 16, 36}

type tableCell struct {
	Lines      []string
	Bold       bool
	Background models.RGB
}

type tableLayout struct {
	Title  string
	Rows   [][7]tableCell
	RowY   []float64 // top edge per row
	RowH   []float64
	ColX   []float64 // left edge per column
	ColW   []float64
	Width  int
	Height int
}

func buildTableLayout(m *models.TablePrintModel, title string) tableLayout {
	rowCount := m.RowCount(models.Index{})

	var l tableLayout
	l.Title = strings.TrimSpace(title)

	l.ColX = make([]float64, 7)
	l.ColW = make([]float64, 7)
	x := pageMarg
	for col := 0; col < 7; col++ {
		w := float64(tableColChars[col])*charW + 2*cellPadX
		l.ColX[col] = x
		l.ColW[col] = w
		x += w
	}
	width := int(x + pageMarg)

	header := 0.0
	if l.Title != "" {
		header = titleH
	}

	l.Rows = make([][7]tableCell, rowCount)
	l.RowY = make([]float64, rowCount)
	l.RowH = make([]float64, rowCount)
	y := pageMarg + header
	for row := 0; row < rowCount; row++ {
		maxLines := 1
		bg := models.RGB(0xffffff)
		if v := m.Data(m.Index(row, 0, models.Index{}), models.RoleBackground); v != nil {
			bg = v.(models.RGB)
		}
		for col := 0; col < 7; col++ {
			ix := m.Index(row, col, models.Index{})
			text, _ := m.Data(ix, models.RoleDisplay).(string)
			bold := false
			if f, ok := m.Data(ix, models.RoleFont).(models.Font); ok {
				bold = f.Bold
			}
			lines := splitCellLines(text, tableColChars[col])
			if len(lines) > maxLines {
				maxLines = len(lines)
			}
			l.Rows[row][col] = tableCell{Lines: lines, Bold: bold, Background: bg}
		}
		h := float64(maxLines)*lineH + 2*cellPadY
		l.RowY[row] = y
		l.RowH[row] = h
		y += h
	}

	l.Width = width
	if l.Width < 640 {
		l.Width = 640
	}
	l.Height = int(y + pageMarg)
	return l
}

// splitCellLines splits cell text on newlines and clamps each line to the
// column's character budget.
func splitCellLines(s string, maxChars int) []string {
	if s == "" {
		return []string{""}
	}
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		parts[i] = clampRunes(p, maxChars)
	}
	return parts
}

// --- rendering -------------------------------------------------------------

func renderTablePNG(path string, layout tableLayout) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorPaper)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if layout.Title != "" {
		dc.SetColor(colorText)
		drawText(dc, layout.Title, pageMarg, pageMarg+14, true)
	}

	tableW := layout.ColX[6] + layout.ColW[6] - layout.ColX[0]
	for row := range layout.Rows {
		y := layout.RowY[row]
		h := layout.RowH[row]

		dc.SetColor(rgbaOf(uint32(layout.Rows[row][0].Background)))
		dc.DrawRectangle(layout.ColX[0], y, tableW, h)
		dc.Fill()

		for col, cell := range layout.Rows[row] {
			dc.SetColor(colorText)
			for li, line := range cell.Lines {
				drawText(dc, line, layout.ColX[col]+cellPadX, y+cellPadY+float64(li)*lineH+10, cell.Bold)
			}
		}

		dc.SetColor(colorStroke)
		dc.SetLineWidth(0.6)
		dc.DrawLine(layout.ColX[0], y+h, layout.ColX[0]+tableW, y+h)
		dc.Stroke()
	}

	// Outer frame and column rules.
	top := layout.RowY[0]
	bottom := layout.RowY[len(layout.RowY)-1] + layout.RowH[len(layout.RowH)-1]
	dc.SetColor(colorStroke)
	dc.SetLineWidth(1)
	dc.DrawRectangle(layout.ColX[0], top, tableW, bottom-top)
	dc.Stroke()
	for col := 1; col < 7; col++ {
		dc.DrawLine(layout.ColX[col], top, layout.ColX[col], bottom)
		dc.Stroke()
	}

	return dc.SavePNG(path)
}

// drawText approximates bold by overstriking half a pixel to the right;
// basicfont has no bold face.
func drawText(dc *gg.Context, s string, x, y float64, bold bool) {
	dc.DrawStringAnchored(s, x, y, 0, 0)
	if bold {
		dc.DrawStringAnchored(s, x+0.5, y, 0, 0)
	}
}

func renderTableSVG(w io.Writer, layout tableLayout) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorPaper)))

	if layout.Title != "" {
		canvas.Text(int(pageMarg), int(pageMarg)+14, layout.Title,
			fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	}

	tableW := layout.ColX[6] + layout.ColW[6] - layout.ColX[0]
	for row := range layout.Rows {
		y := layout.RowY[row]
		h := layout.RowH[row]

		canvas.Rect(int(layout.ColX[0]), int(y), int(tableW), int(h),
			fmt.Sprintf("fill:%s", css(rgbaOf(uint32(layout.Rows[row][0].Background)))))

		for col, cell := range layout.Rows[row] {
			weight := ""
			if cell.Bold {
				weight = ";font-weight:bold"
			}
			for li, line := range cell.Lines {
				if line == "" {
					continue
				}
				canvas.Text(int(layout.ColX[col]+cellPadX), int(y+cellPadY+float64(li)*lineH+10), line,
					fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace%s", css(colorText), weight))
			}
		}

		canvas.Line(int(layout.ColX[0]), int(y+h), int(layout.ColX[0]+tableW), int(y+h),
			fmt.Sprintf("stroke:%s;stroke-width:0.6", css(colorStroke)))
	}

	top := layout.RowY[0]
	bottom := layout.RowY[len(layout.RowY)-1] + layout.RowH[len(layout.RowH)-1]
	canvas.Rect(int(layout.ColX[0]), int(top), int(tableW), int(bottom-top),
		fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", css(colorStroke)))
	for col := 1; col < 7; col++ {
		canvas.Line(int(layout.ColX[col]), int(top), int(layout.ColX[col]), int(bottom),
			fmt.Sprintf("stroke:%s;stroke-width:1", css(colorStroke)))
	}

	canvas.End()
	return nil
}
