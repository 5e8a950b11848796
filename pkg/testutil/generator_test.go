package testutil

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
)

func TestLogbook(t *testing.T) {
	gen := NewDefault()

	tests := []struct {
		name string
		size int
	}{
		{"logbook_1", 1},
		{"logbook_5", 5},
		{"logbook_50", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dives := gen.Logbook(tt.size)

			AssertDiveCount(t, dives, tt.size)
			AssertNoDuplicateIDs(t, dives)
			AssertAllValid(t, dives)
			AssertChronological(t, dives)

			for i, d := range dives {
				if d.Number != i+1 {
					t.Errorf("dive %d numbered %d", i, d.Number)
				}
				if d.TripID != "" {
					t.Errorf("plain logbook dive %d has trip %q", i, d.TripID)
				}
			}
		})
	}
}

func TestLogbookDeterminism(t *testing.T) {
	a := New(GeneratorConfig{Seed: 7}).Logbook(20)
	b := New(GeneratorConfig{Seed: 7}).Logbook(20)

	for i := range a {
		if a[i].DurationS != b[i].DurationS || a[i].MaxDepthMM != b[i].MaxDepthMM {
			t.Fatalf("dive %d differs across identically seeded generators", i)
		}
	}
}

func TestTripLog(t *testing.T) {
	dives := QuickTrips(3, 4)

	AssertDiveCount(t, dives, 12)
	AssertNoDuplicateIDs(t, dives)
	AssertChronological(t, dives)

	dl := divelog.NewDiveList(dives)
	AssertTripSizes(t, dl, map[string]int{
		"trip-1": 4,
		"trip-2": 4,
		"trip-3": 4,
	})
}

func TestMixedLog(t *testing.T) {
	gen := NewDefault()
	dives := gen.MixedLog(3, 2)

	AssertDiveCount(t, dives, 5)

	grouped, loose := 0, 0
	for _, d := range dives {
		if d.TripID == "" {
			loose++
		} else {
			grouped++
		}
	}
	if grouped != 3 || loose != 2 {
		t.Errorf("grouped=%d loose=%d, want 3/2", grouped, loose)
	}
}

func TestFreediveLog(t *testing.T) {
	gen := NewDefault()
	dives := gen.FreediveLog(5)

	for i, d := range dives {
		if !d.Freedive {
			t.Errorf("dive %d not marked freedive", i)
		}
		if d.DurationS >= 900 {
			t.Errorf("freedive %d implausibly long: %ds", i, d.DurationS)
		}
		if len(d.Cylinders) != 0 {
			t.Errorf("freedive %d carries cylinders", i)
		}
	}
}

func TestGases(t *testing.T) {
	gen := New(GeneratorConfig{Seed: 42, IncludeGases: true})
	dives := gen.Logbook(10)

	for i, d := range dives {
		if len(d.Cylinders) != 1 {
			t.Fatalf("dive %d cylinders = %d", i, len(d.Cylinders))
		}
	}
}

func TestToJSONL(t *testing.T) {
	dives := QuickLogbook(3)
	out := ToJSONL(dives)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var d divelog.Dive
		if err := json.Unmarshal([]byte(line), &d); err != nil {
			t.Fatalf("line %d not valid JSON: %v", i, err)
		}
		if d.UniqID != dives[i].UniqID {
			t.Errorf("line %d id = %d, want %d", i, d.UniqID, dives[i].UniqID)
		}
	}
}

func TestSingleAndEmpty(t *testing.T) {
	if len(Empty()) != 0 {
		t.Error("Empty not empty")
	}
	single := Single()
	if len(single) != 1 || single[0].UniqID != 1 {
		t.Errorf("Single = %+v", single)
	}
}
