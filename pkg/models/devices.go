package models

import (
	"fmt"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
)

// Columns of the device table. The remove column carries no underlying
// data; it renders a fixed removal affordance.
const (
	ColDeviceRemove = iota
	ColDeviceModel
	ColDeviceID
	ColDeviceNickname
	deviceColumns
)

// removeIcon is the removal affordance shared by every row.
var removeIcon = Icon{Glyph: "✗", Width: 2}

// DeviceModel is a flat table over a working copy of the device map. Edits
// stay in the working copy until Commit writes them back to the store's
// map; Discard simply drops the working copy.
type DeviceModel struct {
	TableModel
	working   divelog.DeviceMap
	committed *divelog.DeviceMap
	store     *divelog.DiveList
	numRows   int
}

// NewDeviceModel builds the model over a clone of committed. The store is
// only touched to flip the dirty flag on a real commit.
func NewDeviceModel(committed *divelog.DeviceMap, store *divelog.DiveList) *DeviceModel {
	m := &DeviceModel{
		TableModel: NewTableModel([]string{"", "Model", "Device ID", "Nickname"}),
		working:    committed.Clone(),
		committed:  committed,
		store:      store,
	}
	m.Update()
	return m
}

// RowCount is the row count announced by the last Update, not the live
// working-map size.
func (m *DeviceModel) RowCount(parent Index) int {
	if parent.IsValid() {
		return 0
	}
	return m.numRows
}

// Index resolves a (row, column) address.
func (m *DeviceModel) Index(row, column int, parent Index) Index {
	return m.index(row, column, m.numRows, parent)
}

// Data answers the device fields and the fixed remove affordance.
func (m *DeviceModel) Data(ix Index, role Role) any {
	if !ix.IsValid() || ix.Row() >= m.working.Len() {
		return nil
	}
	node := m.working.Values()[ix.Row()]

	if role == RoleDisplay || role == RoleEdit {
		switch ix.Column() {
		case ColDeviceID:
			return fmt.Sprintf("0x%x", node.DeviceID)
		case ColDeviceModel:
			return node.Model
		case ColDeviceNickname:
			return node.Nickname
		}
	}

	if ix.Column() == ColDeviceRemove {
		switch role {
		case RoleDecoration:
			return removeIcon
		case RoleSizeHint:
			return removeIcon.Width
		case RoleTooltip:
			return "Clicking here will remove this dive computer."
		}
	}
	return nil
}

// Flags marks the nickname column editable.
func (m *DeviceModel) Flags(ix Index) ItemFlags {
	f := m.TableModel.Flags(ix)
	if f != 0 && ix.Column() == ColDeviceNickname {
		f |= FlagEditable
	}
	return f
}

// SetData renames a device: the entry is removed and reinserted under its
// model key with the new nickname, and a single-cell change goes out. No
// structural bracket fires because the row count is unchanged.
func (m *DeviceModel) SetData(ix Index, value any, role Role) bool {
	if !ix.IsValid() || role != RoleEdit || ix.Column() != ColDeviceNickname {
		return false
	}
	nick, ok := value.(string)
	if !ok || ix.Row() >= m.working.Len() {
		return false
	}
	node := m.working.Values()[ix.Row()]
	m.working.Remove(node)
	node.Nickname = nick
	m.working.Insert(node)
	m.EmitDataChanged(ix)
	return true
}

// Update recomputes the row count by fully removing and re-inserting the
// rows, even when the count is unchanged.
func (m *DeviceModel) Update() {
	count := m.working.Len()

	if m.numRows > 0 {
		last := m.numRows - 1
		m.beginRemoveRows(Index{}, 0, last)
		m.numRows = 0
		m.endRemoveRows(Index{}, 0, last)
	}

	if count > 0 {
		m.beginInsertRows(Index{}, 0, count-1)
		m.numRows = count
		m.endInsertRows(Index{}, 0, count-1)
	}
}

// Remove deletes the entry behind the given address and refreshes the
// rows.
func (m *DeviceModel) Remove(ix Index) {
	if !ix.IsValid() || ix.Row() >= m.working.Len() {
		return
	}
	node := m.working.Values()[ix.Row()]
	m.working.Remove(node)
	m.Update()
}

// Commit replaces the committed map with the working copy, marking the
// store dirty only when they actually differ.
func (m *DeviceModel) Commit() {
	if !m.committed.Equal(&m.working) {
		m.store.MarkChanged(true)
	}
	*m.committed = m.working.Clone()
}

// Discard drops the working copy without touching the committed map or the
// dirty flag; the memory goes away with the model.
func (m *DeviceModel) Discard() {
	m.working = m.committed.Clone()
	m.Update()
}
