package models

// Item is one element of an owned hierarchy. Concrete kinds (dive, trip,
// statistics interval) embed TreeItem for the structure and override the
// data methods they care about.
type Item interface {
	// base exposes the embedded TreeItem so the engine can walk the tree
	// without knowing concrete kinds.
	base() *TreeItem

	// Data returns the value for a (column, role) pair, or nil for "no
	// value".
	Data(column int, role Role) any

	// SetData applies an edit. The base implementation is read-only.
	SetData(ix Index, value any, role Role) bool

	// Flags returns the capability set for the cell.
	Flags(ix Index) ItemFlags
}

// TreeItem is the embeddable tree node: it owns its children and keeps a
// non-owning back-reference to its parent. The zero value is a valid
// childless root.
type TreeItem struct {
	parent   Item
	children []Item
}

func (t *TreeItem) base() *TreeItem { return t }

// ChildCount returns the number of owned children.
func (t *TreeItem) ChildCount() int { return len(t.children) }

// Child returns the child at row i.
func (t *TreeItem) Child(i int) Item { return t.children[i] }

// Row returns this item's index within its parent's children, or 0 for an
// item with no parent.
func (t *TreeItem) Row() int {
	if t.parent == nil {
		return 0
	}
	for i, c := range t.parent.base().children {
		if c.base() == t {
			return i
		}
	}
	return 0
}

// Append links child as the last child of parent. The child must not
// already have a parent.
func Append(parent, child Item) {
	child.base().parent = parent
	parent.base().children = append(parent.base().children, child)
}

// Data on the base item answers "no value" for every combination.
func (t *TreeItem) Data(column int, role Role) any { return nil }

// SetData on the base item rejects every edit.
func (t *TreeItem) SetData(ix Index, value any, role Role) bool { return false }

// Flags on the base item allows selection only.
func (t *TreeItem) Flags(ix Index) ItemFlags { return FlagEnabled | FlagSelectable }
