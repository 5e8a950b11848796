// Package divelog holds the dive-log domain store: dives, trips, dive
// computers and pre-aggregated statistics intervals. The view models in
// pkg/models consume this store read/write but never own it.
package divelog

import (
	"fmt"
	"sort"
	"time"
)

// Cylinder describes one tank used on a dive.
type Cylinder struct {
	Description string `json:"description,omitempty"` // e.g. "AL80", "D12"
	O2Permille  int    `json:"o2,omitempty"`          // oxygen fraction in permille (0 = air)
	HePermille  int    `json:"he,omitempty"`          // helium fraction in permille
}

// Dive is a single logged dive. Records are identified by UniqID, which is
// stable across renumbering; Number is the user-visible dive number.
type Dive struct {
	UniqID     int        `json:"id"`
	Number     int        `json:"number"`
	When       time.Time  `json:"when"`
	DurationS  int        `json:"duration_s"`
	MaxDepthMM int        `json:"max_depth_mm"`
	TempMK     int        `json:"water_temp_mk,omitempty"` // millikelvin, 0 = not recorded
	Rating     int        `json:"rating,omitempty"`        // 0-5
	Visibility int        `json:"visibility,omitempty"`    // 0-5
	Suit       string     `json:"suit,omitempty"`
	Cylinders  []Cylinder `json:"cylinders,omitempty"`
	SacMLMin   int        `json:"sac_ml_min,omitempty"`
	OTU        int        `json:"otu,omitempty"`
	MaxCNS     int        `json:"max_cns,omitempty"`
	WeightG    int        `json:"weight_g,omitempty"` // total weight carried
	Location   string     `json:"location,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Divemaster string     `json:"divemaster,omitempty"`
	Buddy      string     `json:"buddy,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	TripID     string     `json:"trip_id,omitempty"` // empty = not part of a trip
	Freedive   bool       `json:"freedive,omitempty"`
}

// Validate checks the fields a dive record cannot do without.
func (d *Dive) Validate() error {
	if d.UniqID <= 0 {
		return fmt.Errorf("dive has no id")
	}
	if d.When.IsZero() {
		return fmt.Errorf("dive %d has no timestamp", d.UniqID)
	}
	if d.DurationS < 0 {
		return fmt.Errorf("dive %d has negative duration", d.UniqID)
	}
	return nil
}

// Trip groups a contiguous run of dives.
type Trip struct {
	ID       string
	Location string
	When     time.Time // time of the first dive in the trip
	NrDives  int
}

// FilterFunc reports whether a dive is hidden by the current filter.
type FilterFunc func(*Dive) bool

// DiveList is the in-memory dive store. All access is single-threaded;
// mutations flip the dirty flag so callers know the log needs saving.
type DiveList struct {
	dives  []*Dive
	byID   map[int]*Dive
	trips  map[string]*Trip
	filter FilterFunc
	dirty  bool
}

// NewDiveList builds a store over the given dives. Trips referenced by
// TripID are materialized with location/when taken from their first dive.
func NewDiveList(dives []*Dive) *DiveList {
	dl := &DiveList{
		byID:  make(map[int]*Dive),
		trips: make(map[string]*Trip),
	}
	for _, d := range dives {
		dl.append(d)
	}
	return dl
}

func (dl *DiveList) append(d *Dive) {
	dl.dives = append(dl.dives, d)
	dl.byID[d.UniqID] = d
	if d.TripID == "" {
		return
	}
	t, ok := dl.trips[d.TripID]
	if !ok {
		t = &Trip{ID: d.TripID, Location: d.Location, When: d.When}
		dl.trips[d.TripID] = t
	}
	t.NrDives++
	if d.When.Before(t.When) {
		t.When = d.When
	}
}

// Len returns the number of dives in store order.
func (dl *DiveList) Len() int { return len(dl.dives) }

// At returns the dive at store index i.
func (dl *DiveList) At(i int) *Dive { return dl.dives[i] }

// ByUniqID resolves a dive by its unique id, or nil if the record is gone.
// Views re-resolve on every query instead of caching the pointer.
func (dl *DiveList) ByUniqID(id int) *Dive { return dl.byID[id] }

// Ordinal returns the position of the dive in store order, or -1.
func (dl *DiveList) Ordinal(d *Dive) int {
	for i, e := range dl.dives {
		if e == d {
			return i
		}
	}
	return -1
}

// TripFor returns the trip a dive belongs to, or nil.
func (dl *DiveList) TripFor(d *Dive) *Trip {
	if d.TripID == "" {
		return nil
	}
	return dl.trips[d.TripID]
}

// Trips returns all trips sorted by their first-dive time.
func (dl *DiveList) Trips() []*Trip {
	out := make([]*Trip, 0, len(dl.trips))
	for _, t := range dl.trips {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].When.Before(out[j].When) })
	return out
}

// NumberInUse reports whether another dive already carries the given number.
func (dl *DiveList) NumberInUse(n int, exceptID int) bool {
	for _, d := range dl.dives {
		if d.Number == n && d.UniqID != exceptID {
			return true
		}
	}
	return false
}

// MarkChanged flips the dirty flag.
func (dl *DiveList) MarkChanged(changed bool) { dl.dirty = changed }

// Changed reports whether the store has unsaved edits.
func (dl *DiveList) Changed() bool { return dl.dirty }

// SetFilter installs the hidden-by-filter predicate. A nil filter hides
// nothing.
func (dl *DiveList) SetFilter(f FilterFunc) { dl.filter = f }

// Hidden reports whether the current filter hides the dive.
func (dl *DiveList) Hidden(d *Dive) bool {
	if dl.filter == nil {
		return false
	}
	return dl.filter(d)
}

// ShownCount returns the number of dives in the trip that pass the filter.
func (dl *DiveList) ShownCount(t *Trip) int {
	n := 0
	for _, d := range dl.dives {
		if d.TripID == t.ID && !dl.Hidden(d) {
			n++
		}
	}
	return n
}

// autogroupWindow is the maximum gap between consecutive dives that still
// lands them in the same automatic trip.
const autogroupWindow = 48 * time.Hour

// Autogroup assigns tripless dives to automatic trips. Consecutive dives in
// store order whose start times are within autogroupWindow of each other
// share a trip; dives that already belong to a trip break the run.
func (dl *DiveList) Autogroup() {
	var cur *Trip
	var last time.Time
	for _, d := range dl.dives {
		if d.TripID != "" {
			cur = nil
			last = d.When
			continue
		}
		if cur == nil || d.When.Sub(last) > autogroupWindow {
			cur = &Trip{
				ID:       "auto-" + d.When.Format("2006-01-02"),
				Location: d.Location,
				When:     d.When,
			}
			dl.trips[cur.ID] = cur
		}
		d.TripID = cur.ID
		cur.NrDives++
		last = d.When
	}
}
