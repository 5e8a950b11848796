package models

import (
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
)

func TestTablePrintModelRows(t *testing.T) {
	m := NewTablePrintModel()
	if got := m.ColumnCount(); got != 7 {
		t.Fatalf("ColumnCount = %d, want 7", got)
	}

	rec := &tableBracketRecorder{}
	m.Subscribe(rec)

	m.InsertRow(-1) // append
	m.InsertRow(-1)
	m.InsertRow(1) // insert between

	if got := m.RowCount(Index{}); got != 3 {
		t.Fatalf("RowCount = %d, want 3", got)
	}
	want := []string{
		"beforeInsert", "afterInsert",
		"beforeInsert", "afterInsert",
		"beforeInsert", "afterInsert",
	}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v", rec.events)
	}

	// Mark rows, then check the explicit insert landed in the middle.
	m.SetData(m.Index(0, ColPrintNr, Index{}), "first", RoleDisplay)
	m.SetData(m.Index(1, ColPrintNr, Index{}), "middle", RoleDisplay)
	m.SetData(m.Index(2, ColPrintNr, Index{}), "second", RoleDisplay)
	if got := m.Data(m.Index(1, ColPrintNr, Index{}), RoleDisplay); got != "middle" {
		t.Fatalf("row 1 = %v, want middle", got)
	}
}

func TestTablePrintModelInsertOutOfRange(t *testing.T) {
	m := NewTablePrintModel()

	m.InsertRow(5) // empty model: clamps to append
	if got := m.RowCount(Index{}); got != 1 {
		t.Fatalf("RowCount = %d, want 1", got)
	}

	m.SetData(m.Index(0, ColPrintNr, Index{}), "first", RoleDisplay)
	m.InsertRow(99)
	m.InsertRow(-3)
	if got := m.RowCount(Index{}); got != 3 {
		t.Fatalf("RowCount = %d, want 3", got)
	}
	if got := m.Data(m.Index(0, ColPrintNr, Index{}), RoleDisplay); got != "first" {
		t.Fatalf("row 0 = %v, want first", got)
	}
}

func TestTablePrintModelLocationTruncation(t *testing.T) {
	m := NewTablePrintModel()
	m.InsertRow(-1)
	ix := m.Index(0, ColPrintLocation, Index{})

	long := strings.Repeat("line\n", 20)
	if !m.SetData(ix, long, RoleDisplay) {
		t.Fatal("location write rejected")
	}
	got, _ := m.Data(ix, RoleDisplay).(string)
	if n := strings.Count(got, "\n"); n != 15 {
		t.Fatalf("truncated location has %d newlines, want 15", n)
	}
	// The cut lands on the character before the 16th newline.
	if !strings.HasSuffix(got, "\nlin") {
		t.Fatalf("unexpected truncation boundary: %q", got[len(got)-8:])
	}

	short := "one\ntwo"
	m.SetData(ix, short, RoleDisplay)
	if got, _ := m.Data(ix, RoleDisplay).(string); got != short {
		t.Fatalf("short location altered: %q", got)
	}
}

func TestTablePrintModelBackgroundAndFont(t *testing.T) {
	m := NewTablePrintModel()
	m.InsertRow(-1)
	m.InsertRow(-1)

	ix := m.Index(1, 0, Index{})
	if got := m.Data(ix, RoleBackground); got != RGB(0xffffff) {
		t.Fatalf("default background = %v, want white", got)
	}
	if !m.SetData(ix, RGB(0xffcc00), RoleBackground) {
		t.Fatal("background write rejected")
	}
	if got := m.Data(ix, RoleBackground); got != RGB(0xffcc00) {
		t.Fatalf("background = %v, want 0xffcc00", got)
	}
	// The whole row shares the color.
	if got := m.Data(m.Index(1, ColPrintBuddy, Index{}), RoleBackground); got != RGB(0xffcc00) {
		t.Fatalf("row background not shared: %v", got)
	}

	if f, _ := m.Data(m.Index(0, 0, Index{}), RoleFont).(Font); !f.Bold || f.Size != 7.5 {
		t.Fatalf("top-left font = %+v, want bold 7.5", f)
	}
	if f, _ := m.Data(ix, RoleFont).(Font); f.Bold {
		t.Fatalf("row 1 font = %+v, want regular", f)
	}

	// Reads outside the defined roles answer no value.
	if got := m.Data(ix, RoleTooltip); got != nil {
		t.Fatalf("tooltip = %v, want nil", got)
	}
	// Edits outside the two supported roles are rejected.
	if m.SetData(ix, "x", RoleEdit) {
		t.Fatal("edit role accepted")
	}
}

func TestTablePrintModelReset(t *testing.T) {
	m := NewTablePrintModel()
	m.InsertRow(-1)

	resets := 0
	rec := &resetRecorder{resets: &resets}
	m.Subscribe(rec)
	m.CallReset()
	if resets != 1 {
		t.Fatalf("resets = %d, want 1", resets)
	}
	if got := m.RowCount(Index{}); got != 1 {
		t.Fatalf("RowCount after reset = %d, want 1", got)
	}
}

type resetRecorder struct {
	BaseObserver
	began  bool
	resets *int
}

func (r *resetRecorder) ModelAboutToBeReset() { r.began = true }
func (r *resetRecorder) ModelReset() {
	if r.began {
		*r.resets++
	}
}

func TestProfilePrintModel(t *testing.T) {
	store := divelog.NewDiveList([]*divelog.Dive{{
		UniqID:     11,
		Number:     42,
		When:       time.Date(2024, 7, 3, 9, 30, 0, 0, time.UTC),
		DurationS:  2700,
		MaxDepthMM: 18000,
		Rating:     4,
		Visibility: 3,
		Suit:       "drysuit",
		Location:   "Blue Hole",
		Notes:      "strong current",
		Divemaster: "Ada",
		Buddy:      "Linus",
		Tags:       []string{"wreck", "deep"},
		Cylinders:  []divelog.Cylinder{{Description: "AL80", O2Permille: 320}},
		SacMLMin:   14000,
		WeightG:    6000,
	}})
	m := NewProfilePrintModel(store, divelog.Units{})
	m.SetDive(store.ByUniqID(11))

	if m.RowCount(Index{}) != 12 || m.ColumnCount() != 5 {
		t.Fatalf("geometry = %dx%d, want 12x5", m.RowCount(Index{}), m.ColumnCount())
	}

	cell := func(row, col int) any {
		return m.Data(m.Index(row, col, Index{}), RoleDisplay)
	}

	if got, _ := cell(0, 0).(string); !strings.HasPrefix(got, "Dive #42") {
		t.Fatalf("header = %q", got)
	}
	if got, _ := cell(0, 3).(string); !strings.HasPrefix(got, "Max depth: 18.0") {
		t.Fatalf("depth cell = %q", got)
	}
	if got := cell(1, 0); got != "Blue Hole" {
		t.Fatalf("location = %v", got)
	}
	if got := cell(2, 0); got != "Gas used:" {
		t.Fatalf("gas heading = %v", got)
	}
	if got := cell(3, 0); got != "AL80 EAN32" {
		t.Fatalf("gas value = %v", got)
	}
	if got := cell(3, 2); got != "wreck, deep" {
		t.Fatalf("tags = %v", got)
	}
	if got := cell(5, 3); got != "3 / 5" {
		t.Fatalf("viz = %v", got)
	}
	if got := cell(5, 4); got != "4 / 5" {
		t.Fatalf("rating = %v", got)
	}
	if got := cell(7, 0); got != "strong current" {
		t.Fatalf("notes = %v", got)
	}
	// Unused cells answer the empty string, not nil.
	if got := cell(11, 4); got != "" {
		t.Fatalf("unused cell = %v, want empty", got)
	}

	if f, _ := m.Data(m.Index(0, 0, Index{}), RoleFont).(Font); !f.Bold {
		t.Fatal("top-left cell not bold")
	}
	if got := m.Data(m.Index(0, 3, Index{}), RoleAlignment); got != AlignRight {
		t.Fatalf("depth alignment = %v, want AlignRight", got)
	}
	if got := m.Data(m.Index(4, 0, Index{}), RoleAlignment); got != AlignLeft {
		t.Fatalf("body alignment = %v, want AlignLeft", got)
	}
}
