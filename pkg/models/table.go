package models

// TableModel is the flat (non-hierarchical) counterpart of TreeModel: rows
// addressed directly by number, no parent/child structure, and a plain
// string list for horizontal headers. Concrete tables embed it and provide
// RowCount/Data/SetData themselves.
type TableModel struct {
	notifier
	columns int
	headers []string
}

// NewTableModel creates a table engine with the given header strings; the
// column count is their number.
func NewTableModel(headers []string) TableModel {
	return TableModel{columns: len(headers), headers: headers}
}

// ColumnCount returns the fixed column count.
func (m *TableModel) ColumnCount() int { return m.columns }

// index resolves a (row, column) pair against rowCount. Flat tables have
// no valid parent; any valid parent index yields the invalid index.
func (m *TableModel) index(row, column, rowCount int, parent Index) Index {
	if parent.IsValid() {
		return Index{}
	}
	if row < 0 || row >= rowCount || column < 0 || column >= m.columns {
		return Index{}
	}
	return Index{row: row, column: column, valid: true}
}

// Parent of any table cell is the "no parent" sentinel.
func (m *TableModel) Parent(ix Index) Index { return Index{} }

// Header answers display text for horizontal sections; everything else is
// "no value".
func (m *TableModel) Header(section int, orientation Orientation, role Role) any {
	if orientation != Horizontal || role != RoleDisplay {
		return nil
	}
	if section < 0 || section >= len(m.headers) {
		return nil
	}
	return m.headers[section]
}

// Flags on the base table allows selection only.
func (m *TableModel) Flags(ix Index) ItemFlags {
	if !ix.IsValid() {
		return 0
	}
	return FlagEnabled | FlagSelectable
}

// SetData on the base table rejects every edit.
func (m *TableModel) SetData(ix Index, value any, role Role) bool { return false }

// EmitDataChanged publishes a single-cell change.
func (m *TableModel) EmitDataChanged(ix Index) {
	m.dataChanged(ix, ix)
}
