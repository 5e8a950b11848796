package models

import (
	"fmt"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
)

// Columns of the dive list, fixed order.
const (
	ColNr = iota
	ColDate
	ColRating
	ColDepth
	ColDuration
	ColTemperature
	ColTotalWeight
	ColSuit
	ColCylinder
	ColGas
	ColSac
	ColOTU
	ColMaxCNS
	ColLocation
	diveColumns
)

// Layout selects between the flat dive list and the trip-grouped tree.
type Layout int

const (
	LayoutList Layout = iota
	LayoutTree
)

// diveTableAlignment right-aligns the numeric columns. ColNr stays left
// aligned because it is also the indent marker for trips.
func diveTableAlignment(column int) any {
	switch column {
	case ColDepth, ColDuration, ColTemperature, ColTotalWeight, ColSac, ColOTU, ColMaxCNS:
		return AlignRight
	case ColNr, ColDate, ColRating, ColSuit, ColCylinder, ColGas, ColLocation:
		return AlignLeft
	}
	return nil
}

var diveColumnLabels = [diveColumns]string{
	"#", "Date", "Rating", "Depth", "Duration", "Temp", "Weight",
	"Suit", "Cyl", "Gas", "SAC", "OTU", "Max CNS", "Location",
}

// TripItem is the trip grouping node; its only display cell is the trip
// label in the number column.
type TripItem struct {
	TreeItem
	trip  *divelog.Trip
	store *divelog.DiveList
	units divelog.Units
}

// Data answers the trip handle, a timestamp sort key, and the trip label
// with a hidden-dive-count suffix when the filter hides part of the trip.
func (t *TripItem) Data(column int, role Role) any {
	switch role {
	case RoleTrip:
		return t.trip
	case RoleSort:
		return t.trip.When.Unix()
	case RoleDisplay:
		if column != ColNr {
			return nil
		}
		shown := t.store.ShownCount(t.trip)
		suffix := ""
		if shown < t.trip.NrDives {
			suffix = fmt.Sprintf(" (%d shown)", shown)
		}
		label := t.units.TripDate(t.trip.When, t.trip.NrDives) + suffix
		if t.trip.Location != "" {
			label = t.trip.Location + ", " + label
		}
		return label
	}
	return nil
}

// DiveItem is the leaf node of the dive list. It stores the dive's unique
// id and re-resolves it against the store on every query, so a store
// mutation between rebuilds can never leave it pointing at freed data; an
// id that no longer resolves renders as "no value".
type DiveItem struct {
	TreeItem
	diveID int
	store  *divelog.DiveList
	units  divelog.Units
}

func (d *DiveItem) dive() *divelog.Dive { return d.store.ByUniqID(d.diveID) }

// Data answers display text, numeric sort proxies, tooltips, alignment and
// the custom dive roles.
func (d *DiveItem) Data(column int, role Role) any {
	dive := d.dive()
	if dive == nil {
		return nil
	}

	switch role {
	case RoleAlignment:
		return diveTableAlignment(column)
	case RoleSort:
		return d.sortValue(dive, column)
	case RoleDisplay:
		return d.displayValue(dive, column)
	case RoleTooltip:
		return diveColumnTooltip(column, d.units)
	case RoleStarRating:
		if column == ColRating {
			return dive.Rating
		}
	case RoleDive:
		return dive
	case RoleDiveOrdinal:
		return d.store.Ordinal(dive)
	case RoleEdit:
		if column == ColNr {
			return dive.Number
		}
	}
	return nil
}

// sortValue returns a numeric or string proxy per column so consumers can
// sort without parsing display strings.
func (d *DiveItem) sortValue(dive *divelog.Dive, column int) any {
	switch column {
	case ColNr, ColDate:
		return dive.When.Unix()
	case ColRating:
		return dive.Rating
	case ColDepth:
		return dive.MaxDepthMM
	case ColDuration:
		return dive.DurationS
	case ColTemperature:
		return dive.TempMK
	case ColTotalWeight:
		return dive.WeightG
	case ColSuit:
		return dive.Suit
	case ColCylinder:
		return dive.FirstCylinder()
	case ColGas:
		return dive.NitroxSortValue()
	case ColSac:
		return dive.SacMLMin
	case ColOTU:
		return dive.OTU
	case ColMaxCNS:
		return dive.MaxCNS
	case ColLocation:
		return dive.Location
	}
	return nil
}

func (d *DiveItem) displayValue(dive *divelog.Dive, column int) any {
	switch column {
	case ColNr:
		return dive.Number
	case ColDate:
		return d.units.Date(dive.When)
	case ColDepth:
		return d.units.Depth(dive.MaxDepthMM)
	case ColDuration:
		return d.units.Duration(dive.DurationS, dive.Freedive)
	case ColTemperature:
		return d.units.Temperature(dive.TempMK)
	case ColTotalWeight:
		return d.units.Weight(dive.WeightG)
	case ColSuit:
		return dive.Suit
	case ColCylinder:
		return dive.FirstCylinder()
	case ColGas:
		return dive.GasString()
	case ColSac:
		return d.units.SAC(dive.SacMLMin)
	case ColOTU:
		return dive.OTU
	case ColMaxCNS:
		return dive.MaxCNS
	case ColLocation:
		return dive.Location
	}
	return nil
}

func diveColumnTooltip(column int, u divelog.Units) any {
	switch column {
	case ColNr:
		return "#"
	case ColDate:
		return "Date"
	case ColRating:
		return "Rating"
	case ColDepth:
		return fmt.Sprintf("Depth(%s)", u.DepthUnit())
	case ColDuration:
		return "Duration"
	case ColTemperature:
		return fmt.Sprintf("Temp(°%s)", u.TempUnit())
	case ColTotalWeight:
		return fmt.Sprintf("Weight(%s)", u.WeightUnit())
	case ColSuit:
		return "Suit"
	case ColCylinder:
		return "Cyl"
	case ColGas:
		return "Gas"
	case ColSac:
		return fmt.Sprintf("SAC(%s/min)", u.VolumeUnit())
	case ColOTU:
		return "OTU"
	case ColMaxCNS:
		return "Max CNS"
	case ColLocation:
		return "Location"
	}
	return nil
}

// Flags marks the number column editable.
func (d *DiveItem) Flags(ix Index) ItemFlags {
	if ix.Column() == ColNr {
		return d.TreeItem.Flags(ix) | FlagEditable
	}
	return d.TreeItem.Flags(ix)
}

// SetData accepts a new dive number in the edit role. Zero and numbers
// already used by another dive are rejected and leave the store untouched.
func (d *DiveItem) SetData(ix Index, value any, role Role) bool {
	if role != RoleEdit || ix.Column() != ColNr {
		return false
	}
	v, ok := value.(int)
	if !ok || v == 0 {
		return false
	}
	if d.store.NumberInUse(v, d.diveID) {
		return false
	}
	dive := d.dive()
	if dive == nil {
		return false
	}
	dive.Number = v
	d.store.MarkChanged(true)
	return true
}

// DiveTripModel is the grouped dive list: trip nodes containing their
// dives, or a flat list of dives, depending on the layout.
type DiveTripModel struct {
	TreeModel
	store     *divelog.DiveList
	units     divelog.Units
	layout    Layout
	autogroup bool
}

// NewDiveTripModel builds the model and populates it from the store.
func NewDiveTripModel(store *divelog.DiveList, units divelog.Units, autogroup bool) *DiveTripModel {
	m := &DiveTripModel{
		TreeModel: NewTreeModel(diveColumns),
		store:     store,
		units:     units,
		layout:    LayoutTree,
		autogroup: autogroup,
	}
	m.SetupModelData()
	return m
}

// Layout returns the current layout.
func (m *DiveTripModel) Layout() Layout { return m.layout }

// SetLayout switches layout and rebuilds.
func (m *DiveTripModel) SetLayout(l Layout) {
	m.layout = l
	m.SetupModelData()
}

// SetupModelData rebuilds the whole tree from the store. The rebuild is
// not incremental: all rows go out in one remove bracket, the dive
// collection is walked in reverse index order bucketing consecutive dives
// into their trip node, and the result goes in as one insert bracket.
func (m *DiveTripModel) SetupModelData() {
	m.RemoveAllRows()

	if m.autogroup {
		m.store.Autogroup()
	}

	var rows []Item
	tripNodes := make(map[*divelog.Trip]*TripItem)
	for i := m.store.Len() - 1; i >= 0; i-- {
		dive := m.store.At(i)
		diveItem := &DiveItem{diveID: dive.UniqID, store: m.store, units: m.units}

		trip := m.store.TripFor(dive)
		if trip == nil || m.layout == LayoutList {
			rows = append(rows, diveItem)
			continue
		}

		tripItem, ok := tripNodes[trip]
		if !ok {
			tripItem = &TripItem{trip: trip, store: m.store, units: m.units}
			tripNodes[trip] = tripItem
			rows = append(rows, tripItem)
		}
		Append(tripItem, diveItem)
	}

	m.InsertSubtrees(rows)
}

// Header answers label, tooltip, alignment and font for horizontal
// sections.
func (m *DiveTripModel) Header(section int, orientation Orientation, role Role) any {
	if orientation == Vertical || section < 0 || section >= diveColumns {
		return nil
	}
	switch role {
	case RoleDisplay:
		return diveColumnLabels[section]
	case RoleTooltip:
		return diveColumnTooltip(section, m.units)
	case RoleAlignment:
		return diveTableAlignment(section)
	case RoleFont:
		return m.DefaultFont()
	}
	return nil
}

// SetData routes edits to dive items and publishes the cell change on
// success. Trip rows have no editable cells.
func (m *DiveTripModel) SetData(ix Index, value any, role Role) bool {
	if !m.TreeModel.SetData(ix, value, role) {
		return false
	}
	m.EmitDataChanged(ix)
	return true
}
