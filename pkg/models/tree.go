package models

// Index is an opaque (row, column, item) address into a model. The zero
// value is the invalid index, which doubles as the root for RowCount and
// Index queries and as the "no parent" sentinel from Parent.
//
// An index is only good until the next structural-change bracket; observers
// must drop or re-resolve cached indexes between the announce-before and
// announce-after notifications.
type Index struct {
	row    int
	column int
	item   Item // nil for flat table models
	valid  bool
}

// IsValid reports whether the index addresses a cell.
func (ix Index) IsValid() bool { return ix.valid }

// Row returns the row of the index.
func (ix Index) Row() int { return ix.row }

// Column returns the column of the index.
func (ix Index) Column() int { return ix.column }

// Model is the addressable-grid contract every view model implements; it
// is what the rendering layer consumes.
type Model interface {
	RowCount(parent Index) int
	ColumnCount() int
	Index(row, column int, parent Index) Index
	Parent(ix Index) Index
	Data(ix Index, role Role) any
	SetData(ix Index, value any, role Role) bool
	Flags(ix Index) ItemFlags
	Header(section int, orientation Orientation, role Role) any
	Subscribe(o Observer)
	Unsubscribe(o Observer)
}

// Observer receives structural-change brackets and single-cell change
// notifications. The AboutTo half always fires before the mutation and the
// matching second half after it, so observers can precompute row mappings
// while the structure is still stable.
type Observer interface {
	RowsAboutToBeInserted(parent Index, first, last int)
	RowsInserted(parent Index, first, last int)
	RowsAboutToBeRemoved(parent Index, first, last int)
	RowsRemoved(parent Index, first, last int)
	ModelAboutToBeReset()
	ModelReset()
	DataChanged(topLeft, bottomRight Index)
}

// BaseObserver is a no-op Observer for embedding, so consumers implement
// only the notifications they need.
type BaseObserver struct{}

func (BaseObserver) RowsAboutToBeInserted(Index, int, int) {}
func (BaseObserver) RowsInserted(Index, int, int)          {}
func (BaseObserver) RowsAboutToBeRemoved(Index, int, int)  {}
func (BaseObserver) RowsRemoved(Index, int, int)           {}
func (BaseObserver) ModelAboutToBeReset()                  {}
func (BaseObserver) ModelReset()                           {}
func (BaseObserver) DataChanged(Index, Index)              {}

// notifier fans notifications out to subscribers. Embedded by TreeModel
// and TableModel.
type notifier struct {
	observers []Observer
}

// Subscribe registers an observer for change notifications.
func (n *notifier) Subscribe(o Observer) {
	n.observers = append(n.observers, o)
}

// Unsubscribe removes a previously registered observer.
func (n *notifier) Unsubscribe(o Observer) {
	for i, e := range n.observers {
		if e == o {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}

func (n *notifier) beginInsertRows(parent Index, first, last int) {
	for _, o := range n.observers {
		o.RowsAboutToBeInserted(parent, first, last)
	}
}

func (n *notifier) endInsertRows(parent Index, first, last int) {
	for _, o := range n.observers {
		o.RowsInserted(parent, first, last)
	}
}

func (n *notifier) beginRemoveRows(parent Index, first, last int) {
	for _, o := range n.observers {
		o.RowsAboutToBeRemoved(parent, first, last)
	}
}

func (n *notifier) endRemoveRows(parent Index, first, last int) {
	for _, o := range n.observers {
		o.RowsRemoved(parent, first, last)
	}
}

func (n *notifier) beginReset() {
	for _, o := range n.observers {
		o.ModelAboutToBeReset()
	}
}

func (n *notifier) endReset() {
	for _, o := range n.observers {
		o.ModelReset()
	}
}

func (n *notifier) dataChanged(topLeft, bottomRight Index) {
	for _, o := range n.observers {
		o.DataChanged(topLeft, bottomRight)
	}
}

// TreeModel is the generic hierarchy engine: a single implicit root item
// plus a column count fixed at construction. Concrete models embed it,
// populate the tree between brackets, and override Data/SetData/Header as
// needed.
type TreeModel struct {
	notifier
	root        *TreeItem
	columns     int
	defaultFont Font
}

// NewTreeModel creates an engine with the given fixed column count.
func NewTreeModel(columns int) TreeModel {
	return TreeModel{
		root:        &TreeItem{},
		columns:     columns,
		defaultFont: Font{Size: 8},
	}
}

// Root returns the implicit root item. The root itself is never reachable
// through an Index.
func (m *TreeModel) Root() *TreeItem { return m.root }

// SetDefaultFont sets the font substituted for unanswered RoleFont queries.
func (m *TreeModel) SetDefaultFont(f Font) { m.defaultFont = f }

// DefaultFont returns the view default font.
func (m *TreeModel) DefaultFont() Font { return m.defaultFont }

// ColumnCount returns the fixed column count.
func (m *TreeModel) ColumnCount() int { return m.columns }

// RowCount returns the number of children under parent, or under the root
// for an invalid parent.
func (m *TreeModel) RowCount(parent Index) int {
	if !parent.IsValid() {
		return m.root.ChildCount()
	}
	return parent.item.base().ChildCount()
}

// Index resolves (row, column, parent) to an address. Out-of-range rows or
// columns yield the invalid index.
func (m *TreeModel) Index(row, column int, parent Index) Index {
	if row < 0 || column < 0 || column >= m.columns {
		return Index{}
	}
	parentItem := Item(m.root)
	if parent.IsValid() {
		if parent.item == nil {
			return Index{}
		}
		parentItem = parent.item
	}
	kids := parentItem.base().children
	if row >= len(kids) {
		return Index{}
	}
	return Index{row: row, column: column, item: kids[row], valid: true}
}

// Parent returns the address of the owning parent, or the invalid index
// when the item sits directly under the root.
func (m *TreeModel) Parent(ix Index) Index {
	if !ix.IsValid() || ix.item == nil {
		return Index{}
	}
	p := ix.item.base().parent
	if p == nil || p.base() == m.root {
		return Index{}
	}
	return Index{row: p.base().Row(), column: 0, item: p, valid: true}
}

// IndexOf builds an address for an item already linked into the tree.
func (m *TreeModel) IndexOf(it Item, column int) Index {
	if it == nil || it.base() == m.root {
		return Index{}
	}
	return Index{row: it.base().Row(), column: column, item: it, valid: true}
}

// Data delegates to the item, substituting the view default font for
// unanswered font queries.
func (m *TreeModel) Data(ix Index, role Role) any {
	if !ix.IsValid() || ix.item == nil {
		return nil
	}
	v := ix.item.Data(ix.column, role)
	if role == RoleFont && v == nil {
		return m.defaultFont
	}
	return v
}

// SetData routes the edit to the item's own SetData.
func (m *TreeModel) SetData(ix Index, value any, role Role) bool {
	if !ix.IsValid() || ix.item == nil {
		return false
	}
	return ix.item.SetData(ix, value, role)
}

// Flags delegates to the item.
func (m *TreeModel) Flags(ix Index) ItemFlags {
	if !ix.IsValid() || ix.item == nil {
		return 0
	}
	return ix.item.Flags(ix)
}

// Header on the base engine answers "no value"; concrete models override.
func (m *TreeModel) Header(section int, orientation Orientation, role Role) any {
	return nil
}

// RemoveAllRows tears down every root-level subtree inside a single
// remove bracket. No-op on an empty model.
func (m *TreeModel) RemoveAllRows() {
	n := m.root.ChildCount()
	if n == 0 {
		return
	}
	m.beginRemoveRows(Index{}, 0, n-1)
	for _, c := range m.root.children {
		c.base().parent = nil
	}
	m.root.children = nil
	m.endRemoveRows(Index{}, 0, n-1)
}

// RemoveRows tears down the child range [first, last] under parent (the
// root for an invalid parent) inside a single remove bracket. Out-of-range
// requests are rejected.
func (m *TreeModel) RemoveRows(parent Index, first, last int) bool {
	parentItem := m.root
	if parent.IsValid() {
		parentItem = parent.item.base()
	}
	if first < 0 || last < first || last >= len(parentItem.children) {
		return false
	}
	m.beginRemoveRows(parent, first, last)
	for _, c := range parentItem.children[first : last+1] {
		c.base().parent = nil
	}
	parentItem.children = append(parentItem.children[:first], parentItem.children[last+1:]...)
	m.endRemoveRows(parent, first, last)
	return true
}

// InsertSubtrees links the given items (with their already-built children)
// under the root inside a single insert bracket.
func (m *TreeModel) InsertSubtrees(items []Item) {
	if len(items) == 0 {
		return
	}
	first := m.root.ChildCount()
	last := first + len(items) - 1
	m.beginInsertRows(Index{}, first, last)
	for _, it := range items {
		Append(m.root, it)
	}
	m.endInsertRows(Index{}, first, last)
}

// EmitDataChanged publishes a single-cell change.
func (m *TreeModel) EmitDataChanged(ix Index) {
	m.dataChanged(ix, ix)
}
