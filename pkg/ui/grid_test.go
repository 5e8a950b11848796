package ui

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
	"github.com/vanderheijden86/depthlog/pkg/models"
	"github.com/vanderheijden86/depthlog/pkg/testutil"
)

func newDiveGrid(t *testing.T, trips, perTrip int) (*grid, *models.DiveTripModel) {
	t.Helper()
	store := divelog.NewDiveList(testutil.QuickTrips(trips, perTrip))
	m := models.NewDiveTripModel(store, divelog.Units{}, false)
	return newGrid(m, TestTheme()), m
}

func TestGridFlattensTree(t *testing.T) {
	g, _ := newDiveGrid(t, 2, 3)

	// 2 trip rows, each expanded with 3 dives.
	if got := g.Len(); got != 8 {
		t.Fatalf("expected 8 flat rows, got %d", got)
	}
	rows := g.rows
	if !rows[0].hasKids || rows[0].depth != 0 {
		t.Error("row 0 should be an expanded trip node")
	}
	if rows[1].hasKids || rows[1].depth != 1 {
		t.Error("row 1 should be a dive leaf at depth 1")
	}
}

func TestGridToggleCollapse(t *testing.T) {
	g, _ := newDiveGrid(t, 2, 3)

	g.Toggle() // collapse first trip
	if got := g.Len(); got != 5 {
		t.Fatalf("expected 5 rows after collapse, got %d", got)
	}
	if g.rows[0].expanded {
		t.Error("collapsed trip should not be marked expanded")
	}

	g.Toggle() // expand again
	if got := g.Len(); got != 8 {
		t.Fatalf("expected 8 rows after expand, got %d", got)
	}
}

func TestGridToggleOnLeafIsNoop(t *testing.T) {
	g, _ := newDiveGrid(t, 1, 2)

	g.MoveCursor(1) // onto a dive leaf
	g.Toggle()
	if got := g.Len(); got != 3 {
		t.Errorf("toggling a leaf changed the row count to %d", got)
	}
}

func TestGridCursorClamps(t *testing.T) {
	g, _ := newDiveGrid(t, 1, 2)

	g.MoveCursor(-5)
	if g.cursor != 0 {
		t.Errorf("cursor should clamp at 0, got %d", g.cursor)
	}
	g.MoveCursor(100)
	if g.cursor != g.Len()-1 {
		t.Errorf("cursor should clamp at last row, got %d", g.cursor)
	}
	g.CursorToStart()
	if g.cursor != 0 {
		t.Errorf("CursorToStart left cursor at %d", g.cursor)
	}
	g.CursorToEnd()
	if g.cursor != g.Len()-1 {
		t.Errorf("CursorToEnd left cursor at %d", g.cursor)
	}
}

func TestGridResyncsAfterRebuild(t *testing.T) {
	g, m := newDiveGrid(t, 2, 3)
	if g.Len() != 8 {
		t.Fatalf("precondition: expected 8 rows, got %d", g.Len())
	}

	// A layout switch rebuilds the whole tree under remove/insert
	// brackets; the grid must notice and re-flatten.
	m.SetLayout(models.LayoutList)
	if !g.stale {
		t.Fatal("structural rebuild should mark the grid stale")
	}
	if got := g.Len(); got != 6 {
		t.Fatalf("expected 6 flat rows in list layout, got %d", got)
	}
}

func TestGridScrollWindow(t *testing.T) {
	g, _ := newDiveGrid(t, 1, 20)
	g.SetSize(120, 5)

	g.CursorToEnd()
	if g.offset != g.Len()-5 {
		t.Errorf("expected offset %d, got %d", g.Len()-5, g.offset)
	}

	view := g.View()
	if lines := strings.Count(view, "\n") + 1; lines != 5 {
		t.Errorf("expected 5 visible lines, got %d", lines)
	}
}

func TestGridViewShowsTripAndDiveRows(t *testing.T) {
	g, _ := newDiveGrid(t, 1, 2)
	g.SetSize(200, 10)

	view := g.View()
	if !strings.Contains(view, "▾") {
		t.Error("expanded trip row should carry the expansion marker")
	}
	if !strings.Contains(view, "dives)") {
		t.Error("trip row should show the trip label with its dive count")
	}
}

func TestGridHeaderView(t *testing.T) {
	g, _ := newDiveGrid(t, 1, 2)
	g.SetSize(300, 10)

	header := g.HeaderView()
	for _, label := range []string{"Date", "Depth", "Duration", "Location"} {
		if !strings.Contains(header, label) {
			t.Errorf("header missing %q", label)
		}
	}
}

func TestGridDeviceTable(t *testing.T) {
	store := divelog.NewDiveList(nil)
	committed := &divelog.DeviceMap{}
	committed.Insert(divelog.DeviceNode{Model: "Perdix 2", DeviceID: 0xcafe, Nickname: "mine"})
	committed.Insert(divelog.DeviceNode{Model: "D5", DeviceID: 0xbeef})
	m := models.NewDeviceModel(committed, store)

	g := newGrid(m, TestTheme())
	g.SetSize(120, 10)

	if got := g.Len(); got != 2 {
		t.Fatalf("expected 2 device rows, got %d", got)
	}
	view := g.View()
	if !strings.Contains(view, "Perdix 2") || !strings.Contains(view, "0xcafe") {
		t.Errorf("device view missing expected fields:\n%s", view)
	}
	if !strings.Contains(view, "✗") {
		t.Error("device rows should render the remove affordance")
	}

	// Removing through the model refreshes the grid via the brackets.
	m.Remove(m.Index(0, 0, models.Index{}))
	if got := g.Len(); got != 1 {
		t.Errorf("expected 1 row after removal, got %d", got)
	}
}

func TestGridStatsTree(t *testing.T) {
	store := divelog.NewDiveList(testutil.QuickTrips(2, 4))
	m := models.NewYearlyStatsModel(
		divelog.YearlyStats(store),
		divelog.MonthlyStats(store),
		divelog.TripStats(store),
		divelog.Units{},
	)
	g := newGrid(m, TestTheme())
	g.SetSize(400, 40)

	if g.Len() == 0 {
		t.Fatal("stats grid should not be empty")
	}
	view := g.View()
	if !strings.Contains(view, "8") {
		t.Errorf("stats view should show the total dive count:\n%s", view)
	}
}
