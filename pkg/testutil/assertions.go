package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
)

// AssertDiveCount verifies the expected number of dives.
func AssertDiveCount(t *testing.T, dives []*divelog.Dive, expected int) {
	t.Helper()
	if len(dives) != expected {
		t.Errorf("expected %d dives, got %d", expected, len(dives))
	}
}

// AssertNoDuplicateIDs verifies all dive ids are unique.
func AssertNoDuplicateIDs(t *testing.T, dives []*divelog.Dive) {
	t.Helper()
	seen := make(map[int]bool)
	for _, d := range dives {
		if seen[d.UniqID] {
			t.Errorf("duplicate dive id: %d", d.UniqID)
		}
		seen[d.UniqID] = true
	}
}

// AssertAllValid verifies all dives pass validation.
func AssertAllValid(t *testing.T, dives []*divelog.Dive) {
	t.Helper()
	for i, d := range dives {
		if err := d.Validate(); err != nil {
			t.Errorf("dive %d (id %d) invalid: %v", i, d.UniqID, err)
		}
	}
}

// AssertChronological verifies dives are ordered oldest first.
func AssertChronological(t *testing.T, dives []*divelog.Dive) {
	t.Helper()
	for i := 1; i < len(dives); i++ {
		if dives[i].When.Before(dives[i-1].When) {
			t.Errorf("dive %d (id %d) is earlier than its predecessor", i, dives[i].UniqID)
		}
	}
}

// AssertTripSizes verifies the per-trip dive counts of a store.
func AssertTripSizes(t *testing.T, dl *divelog.DiveList, want map[string]int) {
	t.Helper()
	got := make(map[string]int)
	for _, trip := range dl.Trips() {
		got[trip.ID] = trip.NrDives
	}
	for id, n := range want {
		if got[id] != n {
			t.Errorf("trip %s: %d dives, want %d", id, got[id], n)
		}
	}
	for id, n := range got {
		if _, ok := want[id]; !ok {
			t.Errorf("unexpected trip %s with %d dives", id, n)
		}
	}
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != actual {
		// Find first difference for helpful error message
		expectedLines := strings.Split(string(expected), "\n")
		actualLines := strings.Split(actual, "\n")

		for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
			var expLine, actLine string
			if i < len(expectedLines) {
				expLine = expectedLines[i]
			}
			if i < len(actualLines) {
				actLine = actualLines[i]
			}
			if expLine != actLine {
				g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s",
					i+1, expLine, actLine)
				return
			}
		}
		g.t.Errorf("golden file mismatch (length differs)")
	}
}

// AssertJSON compares actual value as JSON against the golden file.
func (g *GoldenFile) AssertJSON(actual interface{}) {
	g.t.Helper()

	data, err := json.MarshalIndent(actual, "", "  ")
	if err != nil {
		g.t.Fatalf("failed to marshal actual value: %v", err)
	}

	g.Assert(string(data))
}

// TempDir helpers

// TempLogbookDir creates a temporary directory with a .depthlog subdirectory
// and returns the path. The directory is cleaned up after the test.
func TempLogbookDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	logDir := filepath.Join(dir, ".depthlog")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatalf("failed to create .depthlog dir: %v", err)
	}
	return dir
}

// WriteLogbookFile writes dives to a dives.jsonl file in the given directory.
func WriteLogbookFile(t *testing.T, dir string, dives []*divelog.Dive) string {
	t.Helper()

	path := filepath.Join(dir, ".depthlog", "dives.jsonl")
	content := ToJSONL(dives)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write logbook file: %v", err)
	}
	return path
}

// WriteDivesFile writes dives to a custom path.
func WriteDivesFile(t *testing.T, path string, dives []*divelog.Dive) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}

	content := ToJSONL(dives)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write dives file: %v", err)
	}
}

// FindDive returns the dive with the given id, or nil if not found.
func FindDive(dives []*divelog.Dive, id int) *divelog.Dive {
	for _, d := range dives {
		if d.UniqID == id {
			return d
		}
	}
	return nil
}
