package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vanderheijden86/depthlog/pkg/metrics"
	"github.com/vanderheijden86/depthlog/pkg/models"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

// ProfileOptions controls fact sheet export for a single dive.
type ProfileOptions struct {
	Path   string
	Format string // "svg" or "png" (case-insensitive)
	Model  *models.ProfilePrintModel
}

const (
	sheetColChars = 24
	sheetCols     = 5
)

type sheetCell struct {
	Lines      []string
	Bold       bool
	AlignRight bool
}

type sheetLayout struct {
	Rows   []([sheetCols]sheetCell)
	RowY   []float64
	RowH   []float64
	ColW   float64
	Width  int
	Height int
}

// SaveDiveSheet renders the 12x5 fact sheet to SVG or PNG. The model must
// have a dive selected; a sheet whose every cell is empty is refused.
func SaveDiveSheet(opts ProfileOptions) error {
	defer metrics.Timer(metrics.SnapshotRender)()

	if opts.Model == nil {
		return fmt.Errorf("profile model is required")
	}

	path, format, err := resolveFormat(opts.Path, opts.Format)
	if err != nil {
		return err
	}

	layout, empty := buildSheetLayout(opts.Model)
	if empty {
		return fmt.Errorf("no dive selected for fact sheet")
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	switch format {
	case "svg":
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		return renderSheetSVG(file, layout)
	case "png":
		return renderSheetPNG(path, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

func buildSheetLayout(m *models.ProfilePrintModel) (sheetLayout, bool) {
	rowCount := m.RowCount(models.Index{})

	var l sheetLayout
	l.ColW = float64(sheetColChars)*charW + 2*cellPadX
	l.Rows = make([]([sheetCols]sheetCell), rowCount)
	l.RowY = make([]float64, rowCount)
	l.RowH = make([]float64, rowCount)

	empty := true
	y := pageMarg
	for row := 0; row < rowCount; row++ {
		maxLines := 1
		for col := 0; col < sheetCols; col++ {
			ix := m.Index(row, col, models.Index{})
			text, _ := m.Data(ix, models.RoleDisplay).(string)
			if text != "" {
				empty = false
			}
			bold := false
			if f, ok := m.Data(ix, models.RoleFont).(models.Font); ok {
				bold = f.Bold
			}
			right := false
			if a, ok := m.Data(ix, models.RoleAlignment).(models.Alignment); ok {
				right = a == models.AlignRight
			}
			lines := splitCellLines(text, sheetColChars)
			if len(lines) > maxLines {
				maxLines = len(lines)
			}
			l.Rows[row][col] = sheetCell{Lines: lines, Bold: bold, AlignRight: right}
		}
		h := float64(maxLines)*lineH + 2*cellPadY
		l.RowY[row] = y
		l.RowH[row] = h
		y += h
	}

	l.Width = int(pageMarg*2 + l.ColW*sheetCols)
	l.Height = int(y + pageMarg)
	return l, empty
}

func renderSheetPNG(path string, layout sheetLayout) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorPaper)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)

	for row := range layout.Rows {
		y := layout.RowY[row]
		for col, cell := range layout.Rows[row] {
			x := pageMarg + float64(col)*layout.ColW + cellPadX
			for li, line := range cell.Lines {
				if line == "" {
					continue
				}
				lx := x
				if cell.AlignRight {
					lx = pageMarg + float64(col+1)*layout.ColW - cellPadX - float64(len([]rune(line)))*charW
				}
				drawText(dc, line, lx, y+cellPadY+float64(li)*lineH+10, cell.Bold)
			}
		}
	}

	return dc.SavePNG(path)
}

func renderSheetSVG(w io.Writer, layout sheetLayout) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorPaper)))

	for row := range layout.Rows {
		y := layout.RowY[row]
		for col, cell := range layout.Rows[row] {
			style := []string{
				fmt.Sprintf("fill:%s", css(colorText)),
				"font-size:13px",
				"font-family:monospace",
			}
			if cell.Bold {
				style = append(style, "font-weight:bold")
			}
			x := int(pageMarg + float64(col)*layout.ColW + cellPadX)
			if cell.AlignRight {
				x = int(pageMarg + float64(col+1)*layout.ColW - cellPadX)
				style = append(style, "text-anchor:end")
			}
			for li, line := range cell.Lines {
				if line == "" {
					continue
				}
				canvas.Text(x, int(y+cellPadY+float64(li)*lineH+10), line, strings.Join(style, ";"))
			}
		}
	}

	canvas.End()
	return nil
}
