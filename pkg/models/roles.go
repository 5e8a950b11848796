// Package models implements the tree/table models behind every depthlog
// view: the grouped dive list, the device table, yearly statistics and the
// two print layouts. All of them sit on a small generic engine (TreeItem /
// TreeModel / TableModel) that exposes an addressable, observable grid with
// role-multiplexed cell access.
package models

import "github.com/charmbracelet/lipgloss"

// Role selects which facet of a cell to retrieve. A nil return from Data
// means "no value" for that (column, role) pair and is never an error.
type Role int

const (
	RoleDisplay Role = iota
	RoleEdit
	RoleSort
	RoleTooltip
	RoleFont
	RoleAlignment
	RoleBackground
	RoleDecoration
	RoleSizeHint

	// View-specific roles start here.
	RoleDive        // *divelog.Dive handle
	RoleTrip        // *divelog.Trip handle
	RoleStarRating  // dive rating shortcut
	RoleDiveOrdinal // position of the dive in store order
)

// ItemFlags is the capability set of a cell.
type ItemFlags uint8

const (
	FlagEnabled ItemFlags = 1 << iota
	FlagSelectable
	FlagEditable
)

// Orientation selects header rows versus header columns.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Alignment is the value type of RoleAlignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Font is the value type of RoleFont. The zero value is the regular view
// font; views substitute their default point size when Size is 0.
type Font struct {
	Bold bool
	Size float64
}

// Icon is the value type of RoleDecoration: a terminal glyph plus the cell
// width it wants (RoleSizeHint answers the same number).
type Icon struct {
	Glyph string
	Width int
}

// RGB is the value type of RoleBackground, 0xRRGGBB.
type RGB uint32

// TerminalColor converts the color for lipgloss rendering.
func (c RGB) TerminalColor() lipgloss.TerminalColor {
	return lipgloss.Color(c.Hex())
}

// Hex renders the color as "#rrggbb".
func (c RGB) Hex() string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i := 0; i < 6; i++ {
		b[6-i] = digits[(c>>(4*i))&0xf]
	}
	return string(b)
}
