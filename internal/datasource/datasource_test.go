package datasource

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
)

const sampleLog = `{"id":1,"number":1,"when":"2024-03-01T09:00:00Z","duration_s":2400,"max_depth_mm":18000}
{"id":2,"number":2,"when":"2024-03-01T14:30:00Z","duration_s":3000,"max_depth_mm":24000}
`

func writeSampleJSONL(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(sampleLog), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func createSampleDB(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "logbook.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	schema := `
		CREATE TABLE dives (
			id INTEGER PRIMARY KEY,
			number INTEGER,
			when_utc TIMESTAMP,
			duration_s INTEGER,
			max_depth_mm INTEGER,
			water_temp_mk INTEGER,
			rating INTEGER,
			visibility INTEGER,
			suit TEXT,
			sac_ml_min INTEGER,
			otu INTEGER,
			max_cns INTEGER,
			weight_g INTEGER,
			location TEXT,
			notes TEXT,
			divemaster TEXT,
			buddy TEXT,
			tags TEXT,
			cylinders TEXT,
			trip_id TEXT,
			freedive BOOLEAN
		);
		CREATE TABLE devices (
			model TEXT,
			device_id INTEGER,
			nickname TEXT
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}

	when := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err = db.Exec(`INSERT INTO dives
		(id, number, when_utc, duration_s, max_depth_mm, water_temp_mk, location, tags, cylinders, trip_id, freedive)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1, 1, when, 2400, 18000, 283150, "Blue Hole",
		`["wreck","deep"]`, `[{"description":"AL80","o2":320}]`, "egypt-2024", false)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`INSERT INTO dives (id, number, when_utc, duration_s, max_depth_mm) VALUES (?, ?, ?, ?, ?)`,
		2, 5, when.Add(5*time.Hour), 3000, 24000)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO devices (model, device_id, nickname) VALUES (?, ?, ?)`,
		"Shearwater Perdix", 0xdeadbeef, "mine"); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiscoverSources_JSONLOnly(t *testing.T) {
	dir := t.TempDir()
	writeSampleJSONL(t, dir, "dives.jsonl")

	sources, err := DiscoverSources(DiscoveryOptions{
		LogbookDir:             dir,
		ValidateAfterDiscovery: true,
	})
	if err != nil {
		t.Fatalf("DiscoverSources failed: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	if sources[0].Type != SourceTypeJSONL || !sources[0].Valid {
		t.Errorf("source = %+v", sources[0])
	}
	if sources[0].DiveCount != 2 {
		t.Errorf("dive count = %d, want 2", sources[0].DiveCount)
	}
}

func TestDiscoverSources_PrefersSQLiteOnTie(t *testing.T) {
	dir := t.TempDir()
	jsonl := writeSampleJSONL(t, dir, "dives.jsonl")
	db := createSampleDB(t, dir)

	// Force identical mtimes so priority decides.
	now := time.Now()
	for _, p := range []string{jsonl, db} {
		if err := os.Chtimes(p, now, now); err != nil {
			t.Fatal(err)
		}
	}

	sources, err := DiscoverSources(DiscoveryOptions{LogbookDir: dir})
	if err != nil {
		t.Fatalf("DiscoverSources failed: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Type != SourceTypeSQLite {
		t.Errorf("expected SQLite first on equal mtimes, got %s", sources[0].Type)
	}
}

func TestSQLiteReader_LoadDives(t *testing.T) {
	dir := t.TempDir()
	createSampleDB(t, dir)

	sources, err := DiscoverSources(DiscoveryOptions{LogbookDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	var src DataSource
	for _, s := range sources {
		if s.Type == SourceTypeSQLite {
			src = s
		}
	}
	if src.Path == "" {
		t.Fatal("no SQLite source discovered")
	}

	reader, err := NewSQLiteReader(src)
	if err != nil {
		t.Fatalf("NewSQLiteReader failed: %v", err)
	}
	defer reader.Close()

	dives, err := reader.LoadDives()
	if err != nil {
		t.Fatalf("LoadDives failed: %v", err)
	}
	if len(dives) != 2 {
		t.Fatalf("expected 2 dives, got %d", len(dives))
	}

	first := dives[0]
	if first.UniqID != 1 || first.Location != "Blue Hole" || first.TripID != "egypt-2024" {
		t.Errorf("first dive = %+v", first)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "wreck" {
		t.Errorf("tags = %v", first.Tags)
	}
	if len(first.Cylinders) != 1 || first.Cylinders[0].O2Permille != 320 {
		t.Errorf("cylinders = %+v", first.Cylinders)
	}

	count, err := reader.CountDives()
	if err != nil || count != 2 {
		t.Errorf("CountDives = %d, %v", count, err)
	}

	d, err := reader.GetDiveByID(2)
	if err != nil || d.Number != 5 {
		t.Errorf("GetDiveByID(2) = %+v, %v", d, err)
	}
	if _, err := reader.GetDiveByID(99); err == nil {
		t.Error("expected error for missing dive")
	}
}

func TestSQLiteReader_LoadDevices(t *testing.T) {
	dir := t.TempDir()
	createSampleDB(t, dir)

	devices, err := LoadDevices(dir)
	if err != nil {
		t.Fatalf("LoadDevices failed: %v", err)
	}
	if devices.Len() != 1 {
		t.Fatalf("expected 1 device, got %d", devices.Len())
	}
	node := devices.Values()[0]
	if node.Model != "Shearwater Perdix" || node.Nickname != "mine" {
		t.Errorf("device = %+v", node)
	}
}

func TestLoadDivesFromDir(t *testing.T) {
	dir := t.TempDir()
	writeSampleJSONL(t, dir, "dives.jsonl")

	dives, err := LoadDivesFromDir(dir)
	if err != nil {
		t.Fatalf("LoadDivesFromDir failed: %v", err)
	}
	if len(dives) != 2 {
		t.Fatalf("expected 2 dives, got %d", len(dives))
	}
}

func TestDetectInconsistencies(t *testing.T) {
	when := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	divesA := []*divelog.Dive{
		{UniqID: 1, Number: 1, When: when},
		{UniqID: 2, Number: 2, When: when},
	}
	divesB := []*divelog.Dive{
		{UniqID: 1, Number: 7, When: when},
		{UniqID: 3, Number: 3, When: when},
	}

	diff := DetectInconsistencies(divesA, divesB, "a", "b", DefaultDiffOptions())
	if !diff.HasInconsistencies() {
		t.Fatal("expected inconsistencies")
	}
	if len(diff.MissingInB) != 1 || diff.MissingInB[0] != 2 {
		t.Errorf("MissingInB = %v", diff.MissingInB)
	}
	if len(diff.MissingInA) != 1 || diff.MissingInA[0] != 3 {
		t.Errorf("MissingInA = %v", diff.MissingInA)
	}
	if len(diff.NumberMismatch) != 1 || diff.NumberMismatch[0].NumberB != 7 {
		t.Errorf("NumberMismatch = %+v", diff.NumberMismatch)
	}

	same := DetectInconsistencies(divesA, divesA, "a", "a", DefaultDiffOptions())
	if same.HasInconsistencies() {
		t.Errorf("identical sets flagged: %s", same.Summary())
	}
}

func TestCheckLogbookConsistency(t *testing.T) {
	dir := t.TempDir()
	writeSampleJSONL(t, dir, "dives.jsonl")
	createSampleDB(t, dir)

	diffs, err := CheckLogbookConsistency(dir, DefaultDiffOptions())
	if err != nil {
		t.Fatalf("CheckLogbookConsistency failed: %v", err)
	}
	// The JSONL fixture numbers dive 2 as #2, the database as #5.
	if len(diffs) != 1 {
		t.Fatalf("expected 1 diff, got %d", len(diffs))
	}
	if len(diffs[0].NumberMismatch) != 1 || diffs[0].NumberMismatch[0].ID != 2 {
		t.Errorf("NumberMismatch = %+v", diffs[0].NumberMismatch)
	}
	if s := diffs[0].Summary(); s == "" {
		t.Error("expected a non-empty summary")
	}
}

func TestCheckLogbookConsistency_SingleSource(t *testing.T) {
	dir := t.TempDir()
	writeSampleJSONL(t, dir, "dives.jsonl")

	diffs, err := CheckLogbookConsistency(dir, DefaultDiffOptions())
	if err != nil {
		t.Fatalf("CheckLogbookConsistency failed: %v", err)
	}
	if len(diffs) != 0 {
		t.Errorf("single source reported diffs: %+v", diffs)
	}
}

func TestSelectBestSource(t *testing.T) {
	sources := []DataSource{
		{Path: "stale", Valid: false},
		{Path: "fresh", Valid: true},
	}
	best, err := SelectBestSource(sources)
	if err != nil || best.Path != "fresh" {
		t.Errorf("best = %+v, %v", best, err)
	}

	if _, err := SelectBestSource(nil); err == nil {
		t.Error("expected error for empty list")
	}
	if _, err := SelectBestSource([]DataSource{{Valid: false}}); err == nil {
		t.Error("expected error when nothing valid")
	}
}
