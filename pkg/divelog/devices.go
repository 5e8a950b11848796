package divelog

// DeviceNode is one known dive computer: the hardware id, its model name
// and the user-assigned nickname.
type DeviceNode struct {
	Model    string `json:"model"`
	DeviceID uint32 `json:"device_id"`
	Nickname string `json:"nickname,omitempty"`
}

// DeviceMap is a model-keyed multimap of dive computers. Values() returns
// entries grouped by model in key order, matching the row order the device
// table shows. The zero value is ready to use.
type DeviceMap struct {
	nodes []DeviceNode
}

// Insert adds a device under its model key. Entries stay grouped by model
// in key order; within a group the newest insertion comes first.
func (m *DeviceMap) Insert(n DeviceNode) {
	at := len(m.nodes)
	for i, e := range m.nodes {
		if e.Model >= n.Model {
			at = i
			break
		}
	}
	m.nodes = append(m.nodes, DeviceNode{})
	copy(m.nodes[at+1:], m.nodes[at:])
	m.nodes[at] = n
}

// Remove deletes the first entry equal to n. Returns whether a removal
// happened.
func (m *DeviceMap) Remove(n DeviceNode) bool {
	for i, e := range m.nodes {
		if e == n {
			m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)
			return true
		}
	}
	return false
}

// Values returns the entries in row order.
func (m *DeviceMap) Values() []DeviceNode { return m.nodes }

// Len returns the number of entries.
func (m *DeviceMap) Len() int { return len(m.nodes) }

// Clone returns a deep copy for use as a working map.
func (m *DeviceMap) Clone() DeviceMap {
	out := DeviceMap{nodes: make([]DeviceNode, len(m.nodes))}
	copy(out.nodes, m.nodes)
	return out
}

// Equal reports whether two maps hold the same entries in the same order.
func (m *DeviceMap) Equal(o *DeviceMap) bool {
	if len(m.nodes) != len(o.nodes) {
		return false
	}
	for i := range m.nodes {
		if m.nodes[i] != o.nodes[i] {
			return false
		}
	}
	return true
}
