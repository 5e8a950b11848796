package datasource

import (
	"fmt"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
	"github.com/vanderheijden86/depthlog/pkg/loader"
	"github.com/vanderheijden86/depthlog/pkg/metrics"
)

// LoadDives performs smart multi-source detection and loading.
// It discovers all available sources (SQLite, JSONL), validates them, selects
// the freshest valid source, and loads dives from it. SQLite is preferred
// over JSONL when both exist at comparable freshness, since the database
// reflects the most recent sync from the dive computer.
//
// Falls back to plain JSONL loading via loader.LoadDives if smart detection
// finds no valid sources.
func LoadDives(basePath string) ([]*divelog.Dive, error) {
	defer metrics.Timer(metrics.LogLoad)()

	dir, err := loader.GetLogbookDir(basePath)
	if err != nil {
		return nil, err
	}

	dives, smartErr := loadSmart(dir)
	if smartErr == nil {
		return dives, nil
	}

	return loader.LoadDives(basePath)
}

// LoadDivesFromDir performs smart source detection within a known logbook
// directory. This is useful when the caller already knows the .depthlog path.
func LoadDivesFromDir(dir string) ([]*divelog.Dive, error) {
	defer metrics.Timer(metrics.LogLoad)()

	dives, smartErr := loadSmart(dir)
	if smartErr == nil {
		return dives, nil
	}

	path, err := loader.FindJSONLPath(dir)
	if err != nil {
		return nil, err
	}
	return loader.LoadDivesFromFile(path)
}

// loadSmart discovers sources, validates, selects the best, and loads from it.
func loadSmart(dir string) ([]*divelog.Dive, error) {
	sources, err := DiscoverSources(DiscoveryOptions{
		LogbookDir:             dir,
		ValidateAfterDiscovery: true,
		IncludeInvalid:         false,
	})
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no valid sources discovered")
	}

	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, err
	}

	return LoadFromSource(best)
}

// LoadFromSource loads dives from a specific DataSource, dispatching to the
// appropriate reader based on source type.
func LoadFromSource(source DataSource) ([]*divelog.Dive, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadDives()

	case SourceTypeJSONL:
		return loader.LoadDivesFromFile(source.Path)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}

// LoadDevices reads the dive computer table from the best SQLite source in
// the logbook directory. Returns an empty map when no database exists.
func LoadDevices(dir string) (divelog.DeviceMap, error) {
	var m divelog.DeviceMap

	sources, err := DiscoverSources(DiscoveryOptions{LogbookDir: dir})
	if err != nil {
		return m, err
	}
	for _, s := range sources {
		if s.Type != SourceTypeSQLite {
			continue
		}
		reader, err := NewSQLiteReader(s)
		if err != nil {
			return m, err
		}
		defer reader.Close()
		return reader.LoadDevices()
	}
	return m, nil
}
