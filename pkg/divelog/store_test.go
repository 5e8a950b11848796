package divelog

import (
	"testing"
	"time"
)

func at(day, hour int) time.Time {
	return time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC).AddDate(0, 0, day)
}

func TestDiveListLookups(t *testing.T) {
	dl := NewDiveList([]*Dive{
		{UniqID: 1, Number: 1, When: at(0, 9), TripID: "T1"},
		{UniqID: 2, Number: 2, When: at(0, 14), TripID: "T1"},
		{UniqID: 3, Number: 3, When: at(5, 9)},
	})

	if dl.Len() != 3 {
		t.Fatalf("Len = %d", dl.Len())
	}
	if d := dl.ByUniqID(2); d == nil || d.Number != 2 {
		t.Fatalf("ByUniqID(2) = %+v", d)
	}
	if d := dl.ByUniqID(99); d != nil {
		t.Fatalf("ByUniqID(99) = %+v, want nil", d)
	}
	if got := dl.Ordinal(dl.ByUniqID(3)); got != 2 {
		t.Fatalf("Ordinal = %d, want 2", got)
	}

	trip := dl.TripFor(dl.ByUniqID(1))
	if trip == nil || trip.NrDives != 2 {
		t.Fatalf("TripFor = %+v", trip)
	}
	if dl.TripFor(dl.ByUniqID(3)) != nil {
		t.Fatal("tripless dive resolved a trip")
	}

	if !dl.NumberInUse(2, 1) {
		t.Fatal("NumberInUse missed dive 2")
	}
	if dl.NumberInUse(2, 2) {
		t.Fatal("NumberInUse counted the dive itself")
	}
	if dl.NumberInUse(7, 1) {
		t.Fatal("NumberInUse found unused number")
	}
}

func TestDiveListFilter(t *testing.T) {
	dl := NewDiveList([]*Dive{
		{UniqID: 1, When: at(0, 9), TripID: "T1", MaxDepthMM: 30000},
		{UniqID: 2, When: at(0, 14), TripID: "T1", MaxDepthMM: 10000},
	})
	trip := dl.TripFor(dl.ByUniqID(1))

	if got := dl.ShownCount(trip); got != 2 {
		t.Fatalf("unfiltered ShownCount = %d", got)
	}
	dl.SetFilter(func(d *Dive) bool { return d.MaxDepthMM > 20000 })
	if got := dl.ShownCount(trip); got != 1 {
		t.Fatalf("filtered ShownCount = %d, want 1", got)
	}
	if !dl.Hidden(dl.ByUniqID(1)) || dl.Hidden(dl.ByUniqID(2)) {
		t.Fatal("filter predicate misapplied")
	}
}

func TestAutogroup(t *testing.T) {
	dl := NewDiveList([]*Dive{
		{UniqID: 1, When: at(0, 9), Location: "Red Sea"},
		{UniqID: 2, When: at(0, 14), Location: "Red Sea"},
		{UniqID: 3, When: at(1, 9), Location: "Red Sea"},
		{UniqID: 4, When: at(30, 9), Location: "Quarry"},
	})
	dl.Autogroup()

	t1 := dl.TripFor(dl.ByUniqID(1))
	if t1 == nil || t1.NrDives != 3 {
		t.Fatalf("first auto trip = %+v, want 3 dives", t1)
	}
	if dl.TripFor(dl.ByUniqID(3)) != t1 {
		t.Fatal("third dive not grouped with first")
	}
	t2 := dl.TripFor(dl.ByUniqID(4))
	if t2 == nil || t2 == t1 {
		t.Fatalf("distant dive grouped into the same trip")
	}
	if t2.Location != "Quarry" {
		t.Fatalf("second trip location = %q", t2.Location)
	}
}

func TestStatsAggregation(t *testing.T) {
	dl := NewDiveList([]*Dive{
		{UniqID: 1, When: at(0, 9), DurationS: 1800, MaxDepthMM: 20000, TempMK: 283150, TripID: "T1"},
		{UniqID: 2, When: at(0, 14), DurationS: 3600, MaxDepthMM: 30000, TempMK: 285150, TripID: "T1"},
		{UniqID: 3, When: time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC), DurationS: 1200, MaxDepthMM: 10000},
	})

	yearly := YearlyStats(dl)
	if len(yearly) != 2 {
		t.Fatalf("yearly intervals = %d, want 2", len(yearly))
	}
	if yearly[0].Period != "2024" || !yearly[0].IsYear {
		t.Fatalf("first yearly = %+v", yearly[0])
	}
	if yearly[0].Count != 2 || yearly[0].TotalSec != 5400 {
		t.Fatalf("2024 aggregate = %+v", yearly[0])
	}
	if yearly[0].AvgDepthMM != 25000 {
		t.Fatalf("2024 avg depth = %d, want 25000", yearly[0].AvgDepthMM)
	}
	if yearly[0].ShortestSec != 1800 || yearly[0].LongestSec != 3600 {
		t.Fatalf("2024 min/max duration = %+v", yearly[0])
	}
	if yearly[0].CombinedCount != 2 || yearly[0].AvgTempMK() != 284150 {
		t.Fatalf("2024 temperature = %+v", yearly[0])
	}

	monthly := MonthlyStats(dl)
	if len(monthly) != 2 {
		t.Fatalf("monthly intervals = %d", len(monthly))
	}
	if monthly[0].Period != "Mar 2024" {
		t.Fatalf("first monthly = %q", monthly[0].Period)
	}

	byTrip := TripStats(dl)
	if len(byTrip) != 2 {
		t.Fatalf("trip intervals = %d, want header + one trip", len(byTrip))
	}
	if !byTrip[0].IsTrip || byTrip[0].Count != 2 {
		t.Fatalf("trip header = %+v", byTrip[0])
	}

	// No temperature samples means a zero combined count, never a fault.
	empty := NewDiveList([]*Dive{{UniqID: 9, When: at(0, 9), DurationS: 600}})
	y := YearlyStats(empty)
	if y[0].CombinedCount != 0 || y[0].AvgTempMK() != 0 {
		t.Fatalf("no-sample aggregate = %+v", y[0])
	}
}

func TestDeviceMapOrdering(t *testing.T) {
	m := &DeviceMap{}
	m.Insert(DeviceNode{Model: "B", DeviceID: 1})
	m.Insert(DeviceNode{Model: "A", DeviceID: 2})
	m.Insert(DeviceNode{Model: "B", DeviceID: 3})

	got := m.Values()
	if got[0].Model != "A" {
		t.Fatalf("values not grouped by key: %+v", got)
	}
	// Newest insertion first within a model group.
	if got[1].DeviceID != 3 || got[2].DeviceID != 1 {
		t.Fatalf("within-group order = %+v", got)
	}

	if !m.Remove(DeviceNode{Model: "B", DeviceID: 3}) {
		t.Fatal("remove failed")
	}
	if m.Remove(DeviceNode{Model: "B", DeviceID: 3}) {
		t.Fatal("double remove succeeded")
	}
	if m.Len() != 2 {
		t.Fatalf("Len after remove = %d", m.Len())
	}

	clone := m.Clone()
	if !clone.Equal(m) {
		t.Fatal("clone not equal")
	}
	clone.Insert(DeviceNode{Model: "C", DeviceID: 4})
	if clone.Equal(m) {
		t.Fatal("diverged clone still equal")
	}
	if m.Len() != 2 {
		t.Fatal("clone mutation leaked into original")
	}
}
