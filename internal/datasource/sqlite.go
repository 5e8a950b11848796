package datasource

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
)

// SQLiteReader provides read access to a SQLite logbook database
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	// Open in read-only mode with various pragmas for read performance
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000&_journal_mode=WAL", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA cache_size = -64000",   // 64MB cache
		"PRAGMA mmap_size = 268435456", // 256MB mmap
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		db.Exec(pragma) // non-fatal
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadDives reads all dives from the database
func (r *SQLiteReader) LoadDives() ([]*divelog.Dive, error) {
	return r.LoadDivesFiltered(nil)
}

// LoadDivesFiltered reads dives matching the filter function
func (r *SQLiteReader) LoadDivesFiltered(filter func(*divelog.Dive) bool) ([]*divelog.Dive, error) {
	query := `
		SELECT
			id, number, when_utc, duration_s, max_depth_mm, water_temp_mk,
			rating, visibility, suit, sac_ml_min, otu, max_cns, weight_g,
			location, notes, divemaster, buddy, tags, cylinders, trip_id,
			freedive
		FROM dives
		ORDER BY when_utc
	`

	rows, err := r.db.Query(query)
	if err != nil {
		// Try simpler query if some columns don't exist
		return r.loadDivesSimple(filter)
	}
	defer rows.Close()

	var dives []*divelog.Dive
	for rows.Next() {
		var dive divelog.Dive
		var when sql.NullTime
		var tempMK, rating, visibility, sac, otu, maxCNS, weightG sql.NullInt64
		var suit, location, notes, divemaster, buddy, tripID sql.NullString
		var tagsJSON, cylindersJSON sql.NullString
		var freedive sql.NullBool

		err := rows.Scan(
			&dive.UniqID, &dive.Number, &when, &dive.DurationS, &dive.MaxDepthMM, &tempMK,
			&rating, &visibility, &suit, &sac, &otu, &maxCNS, &weightG,
			&location, &notes, &divemaster, &buddy, &tagsJSON, &cylindersJSON, &tripID,
			&freedive,
		)
		if err != nil {
			continue
		}

		if when.Valid {
			dive.When = when.Time
		}
		if tempMK.Valid {
			dive.TempMK = int(tempMK.Int64)
		}
		if rating.Valid {
			dive.Rating = int(rating.Int64)
		}
		if visibility.Valid {
			dive.Visibility = int(visibility.Int64)
		}
		if suit.Valid {
			dive.Suit = suit.String
		}
		if sac.Valid {
			dive.SacMLMin = int(sac.Int64)
		}
		if otu.Valid {
			dive.OTU = int(otu.Int64)
		}
		if maxCNS.Valid {
			dive.MaxCNS = int(maxCNS.Int64)
		}
		if weightG.Valid {
			dive.WeightG = int(weightG.Int64)
		}
		if location.Valid {
			dive.Location = location.String
		}
		if notes.Valid {
			dive.Notes = notes.String
		}
		if divemaster.Valid {
			dive.Divemaster = divemaster.String
		}
		if buddy.Valid {
			dive.Buddy = buddy.String
		}
		if tripID.Valid {
			dive.TripID = tripID.String
		}
		if freedive.Valid {
			dive.Freedive = freedive.Bool
		}

		// Tags are stored as a JSON array of strings
		if tagsJSON.Valid && tagsJSON.String != "" && tagsJSON.String != "null" {
			dive.Tags = parseJSONStringArray(tagsJSON.String)
		}

		// Cylinders are stored as a JSON array of objects
		if cylindersJSON.Valid && cylindersJSON.String != "" && cylindersJSON.String != "null" {
			var cyls []divelog.Cylinder
			if err := json.Unmarshal([]byte(cylindersJSON.String), &cyls); err == nil {
				dive.Cylinders = cyls
			}
		}

		if filter != nil && !filter(&dive) {
			continue
		}

		dives = append(dives, &dive)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dives: %w", err)
	}

	return dives, nil
}

// loadDivesSimple is a fallback for databases with fewer columns
func (r *SQLiteReader) loadDivesSimple(filter func(*divelog.Dive) bool) ([]*divelog.Dive, error) {
	query := `
		SELECT id, number, when_utc, duration_s, max_depth_mm, location
		FROM dives
		ORDER BY when_utc
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var dives []*divelog.Dive
	for rows.Next() {
		var dive divelog.Dive
		var when sql.NullTime
		var location sql.NullString

		err := rows.Scan(
			&dive.UniqID, &dive.Number, &when, &dive.DurationS, &dive.MaxDepthMM, &location,
		)
		if err != nil {
			continue
		}

		if when.Valid {
			dive.When = when.Time
		}
		if location.Valid {
			dive.Location = location.String
		}

		if filter != nil && !filter(&dive) {
			continue
		}

		dives = append(dives, &dive)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dives: %w", err)
	}

	return dives, nil
}

// LoadDevices reads the known dive computers from the database.
// Missing table is not an error; older logbooks predate it.
func (r *SQLiteReader) LoadDevices() (divelog.DeviceMap, error) {
	var m divelog.DeviceMap

	rows, err := r.db.Query(`SELECT model, device_id, nickname FROM devices`)
	if err != nil {
		return m, nil
	}
	defer rows.Close()

	for rows.Next() {
		var node divelog.DeviceNode
		var nickname sql.NullString
		if err := rows.Scan(&node.Model, &node.DeviceID, &nickname); err != nil {
			continue
		}
		if nickname.Valid {
			node.Nickname = nickname.String
		}
		m.Insert(node)
	}
	if err := rows.Err(); err != nil {
		return m, fmt.Errorf("error iterating devices: %w", err)
	}

	return m, nil
}

// CountDives returns the number of dives in the database
func (r *SQLiteReader) CountDives() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM dives").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetDiveByID retrieves a single dive by unique id
func (r *SQLiteReader) GetDiveByID(id int) (*divelog.Dive, error) {
	dives, err := r.LoadDivesFiltered(func(d *divelog.Dive) bool {
		return d.UniqID == id
	})
	if err != nil {
		return nil, err
	}
	if len(dives) == 0 {
		return nil, fmt.Errorf("dive not found: %d", id)
	}
	return dives[0], nil
}

// GetLastModified returns the most recent dive timestamp
func (r *SQLiteReader) GetLastModified() (time.Time, error) {
	var when sql.NullTime
	err := r.db.QueryRow("SELECT MAX(when_utc) FROM dives").Scan(&when)
	if err != nil {
		return time.Time{}, err
	}
	if !when.Valid {
		return time.Time{}, nil
	}
	return when.Time, nil
}

// parseJSONStringArray parses a JSON array of strings
func parseJSONStringArray(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" || s == "[]" {
		return nil
	}

	// Use proper JSON unmarshaling to handle edge cases like commas in tags
	var result []string
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		// Fallback to simple parser for malformed JSON
		s = strings.TrimPrefix(s, "[")
		s = strings.TrimSuffix(s, "]")
		if s == "" {
			return nil
		}
		for _, item := range strings.Split(s, ",") {
			item = strings.TrimSpace(item)
			item = strings.Trim(item, `"`)
			if item != "" {
				result = append(result, item)
			}
		}
	}
	return result
}
