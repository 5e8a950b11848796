package models

import (
	"fmt"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
)

// Columns of the table print layout.
const (
	ColPrintNr = iota
	ColPrintDate
	ColPrintDepth
	ColPrintDuration
	ColPrintDivemaster
	ColPrintBuddy
	ColPrintLocation
	printColumns
)

// maxLocationLines bounds the location/notes cell so a single row can
// never outgrow a print page.
const maxLocationLines = 15

// printRow is one pre-rendered row of the table print layout.
type printRow struct {
	number     string
	date       string
	depth      string
	duration   string
	divemaster string
	buddy      string
	location   string
	background RGB
}

// TablePrintModel is the flat, explicitly row-managed grid behind the
// print table: seven pre-rendered text columns plus a per-row background.
// Rows are only ever appended or inserted; bulk refresh goes through a
// reset bracket.
type TablePrintModel struct {
	TableModel
	list []*printRow
	rows int
}

// NewTablePrintModel creates an empty print grid.
func NewTablePrintModel() *TablePrintModel {
	return &TablePrintModel{
		TableModel: NewTableModel([]string{"#", "Date", "Depth", "Duration", "Divemaster", "Buddy", "Location"}),
	}
}

// RowCount returns the number of inserted rows.
func (m *TablePrintModel) RowCount(parent Index) int {
	if parent.IsValid() {
		return 0
	}
	return m.rows
}

// Index resolves a (row, column) address.
func (m *TablePrintModel) Index(row, column int, parent Index) Index {
	return m.index(row, column, m.rows, parent)
}

// InsertRow inserts an empty white row at the given index, inside a
// single-row insert bracket. Indexes outside [0, RowCount] append, so -1 is
// the idiomatic "add at the end".
func (m *TablePrintModel) InsertRow(index int) {
	if index < 0 || index > m.rows {
		index = m.rows
	}
	row := &printRow{background: 0xffffff}
	m.beginInsertRows(Index{}, index, index)
	m.list = append(m.list, nil)
	copy(m.list[index+1:], m.list[index:])
	m.list[index] = row
	m.rows++
	m.endInsertRows(Index{}, index, index)
}

// CallReset fires a manual reset bracket for bulk refresh without a
// row-count change.
func (m *TablePrintModel) CallReset() {
	m.beginReset()
	m.endReset()
}

// Data answers cell text, per-row background and the print font (bold in
// the top-left cell). Everything else is "no value".
func (m *TablePrintModel) Data(ix Index, role Role) any {
	if !ix.IsValid() || ix.Row() >= len(m.list) {
		return nil
	}
	row := m.list[ix.Row()]
	switch role {
	case RoleBackground:
		return row.background
	case RoleDisplay:
		switch ix.Column() {
		case ColPrintNr:
			return row.number
		case ColPrintDate:
			return row.date
		case ColPrintDepth:
			return row.depth
		case ColPrintDuration:
			return row.duration
		case ColPrintDivemaster:
			return row.divemaster
		case ColPrintBuddy:
			return row.buddy
		case ColPrintLocation:
			return row.location
		}
	case RoleFont:
		return Font{Size: 7.5, Bold: ix.Row() == 0 && ix.Column() == 0}
	}
	return nil
}

// SetData writes cell text in the display role or the row background in
// the background role; those are the only supported mutations. The
// location column is truncated to at most maxLocationLines newline
// delimited lines, cutting at the character before the next newline.
func (m *TablePrintModel) SetData(ix Index, value any, role Role) bool {
	if !ix.IsValid() || ix.Row() >= len(m.list) {
		return false
	}
	row := m.list[ix.Row()]
	switch role {
	case RoleDisplay:
		s, ok := value.(string)
		if !ok {
			return false
		}
		switch ix.Column() {
		case ColPrintNr:
			row.number = s
		case ColPrintDate:
			row.date = s
		case ColPrintDepth:
			row.depth = s
		case ColPrintDuration:
			row.duration = s
		case ColPrintDivemaster:
			row.divemaster = s
		case ColPrintBuddy:
			row.buddy = s
		case ColPrintLocation:
			row.location = truncateLines(s, maxLocationLines)
		}
		return true
	case RoleBackground:
		c, ok := value.(RGB)
		if !ok {
			return false
		}
		row.background = c
		return true
	}
	return false
}

// truncateLines cuts s at the character before the (maxLines+1)-th
// newline, bounding the rendered height.
func truncateLines(s string, maxLines int) string {
	count := 0
	runes := []rune(s)
	for i, r := range runes {
		if r != '\n' {
			continue
		}
		count++
		if count > maxLines {
			if i == 0 {
				return ""
			}
			return string(runes[:i-1])
		}
	}
	return s
}

// Rows of the profile print fact sheet.
const (
	profileRows    = 12
	profileColumns = 5
)

// ProfilePrintModel is a fixed 12×5 fact sheet for a single dive. Cells
// are synthesized from the resolved dive on every query; there is no row
// buffer. Unused cells answer the empty string.
type ProfilePrintModel struct {
	TableModel
	store    *divelog.DiveList
	units    divelog.Units
	diveID   int
	fontSize float64
}

// NewProfilePrintModel creates the fact sheet bound to a store.
func NewProfilePrintModel(store *divelog.DiveList, units divelog.Units) *ProfilePrintModel {
	return &ProfilePrintModel{
		TableModel: NewTableModel(make([]string, profileColumns)),
		store:      store,
		units:      units,
		fontSize:   10,
	}
}

// SetDive selects the dive to describe.
func (m *ProfilePrintModel) SetDive(d *divelog.Dive) { m.diveID = d.UniqID }

// SetFontSize sets the point size answered by the font role.
func (m *ProfilePrintModel) SetFontSize(size float64) { m.fontSize = size }

// RowCount is fixed.
func (m *ProfilePrintModel) RowCount(parent Index) int {
	if parent.IsValid() {
		return 0
	}
	return profileRows
}

// Index resolves a (row, column) address.
func (m *ProfilePrintModel) Index(row, column int, parent Index) Index {
	return m.index(row, column, profileRows, parent)
}

// Data synthesizes the fact sheet cell by cell.
func (m *ProfilePrintModel) Data(ix Index, role Role) any {
	if !ix.IsValid() {
		return nil
	}
	row, col := ix.Row(), ix.Column()

	switch role {
	case RoleFont:
		return Font{Size: m.fontSize, Bold: row == 0 && col == 0}
	case RoleAlignment:
		// Depth and duration in the header rows sit flush right.
		if row < 2 && col == 3 {
			return AlignRight
		}
		return AlignLeft
	case RoleDisplay:
		return m.cellText(row, col)
	}
	return nil
}

func (m *ProfilePrintModel) cellText(row, col int) any {
	dive := m.store.ByUniqID(m.diveID)
	if dive == nil {
		return nil
	}
	u := m.units

	switch row {
	case 0:
		if col == 0 {
			return fmt.Sprintf("Dive #%d - %s", dive.Number, u.Date(dive.When))
		}
		if col == 3 {
			return fmt.Sprintf("Max depth: %s %s", u.Depth(dive.MaxDepthMM), u.DepthUnit())
		}
	case 1:
		if col == 0 {
			return dive.Location
		}
		if col == 3 {
			return fmt.Sprintf("Duration: %s min", u.Duration(dive.DurationS, dive.Freedive))
		}
	case 2:
		switch col {
		case 0:
			return "Gas used:"
		case 2:
			return "Tags:"
		case 3:
			return "SAC:"
		case 4:
			return "Weights:"
		}
	case 3:
		switch col {
		case 0:
			return dive.GasString()
		case 2:
			return tagString(dive.Tags)
		case 3:
			return u.SAC(dive.SacMLMin)
		case 4:
			return u.Weight(dive.WeightG)
		}
	case 4:
		switch col {
		case 0:
			return "Divemaster:"
		case 1:
			return "Buddy:"
		case 2:
			return "Suit:"
		case 3:
			return "Viz:"
		case 4:
			return "Rating:"
		}
	case 5:
		switch col {
		case 0:
			return dive.Divemaster
		case 1:
			return dive.Buddy
		case 2:
			return dive.Suit
		case 3:
			return outOfFive(dive.Visibility)
		case 4:
			return outOfFive(dive.Rating)
		}
	case 6:
		if col == 0 {
			return "Notes:"
		}
	case 7:
		if col == 0 {
			return dive.Notes
		}
	}
	return ""
}

func outOfFive(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d / 5", v)
}

func tagString(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ", "
		}
		out += t
	}
	return out
}
