package datasource

import (
	"fmt"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
	"github.com/vanderheijden86/depthlog/pkg/loader"
)

// SourceDiff represents differences between two data sources
type SourceDiff struct {
	// SourceA is the path of the first source
	SourceA string
	// SourceB is the path of the second source
	SourceB string
	// MissingInA contains dive ids present in B but not in A
	MissingInA []int
	// MissingInB contains dive ids present in A but not in B
	MissingInB []int
	// NumberMismatch contains dives whose user-visible number differs
	NumberMismatch []NumberDifference
	// CountA is the number of dives in source A
	CountA int
	// CountB is the number of dives in source B
	CountB int
}

// NumberDifference represents a dive-number mismatch for a single dive
type NumberDifference struct {
	ID      int `json:"id"`
	NumberA int `json:"number_a"`
	NumberB int `json:"number_b"`
}

// HasInconsistencies returns true if there are any differences between sources
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 || len(d.NumberMismatch) > 0
}

// Summary returns a human-readable summary of the differences
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d dives each)", d.CountA)
	}

	summary := fmt.Sprintf("Inconsistencies found between %s and %s:\n", d.SourceA, d.SourceB)

	if d.CountA != d.CountB {
		summary += fmt.Sprintf("  - Count mismatch: %d vs %d\n", d.CountA, d.CountB)
	}

	if len(d.MissingInA) > 0 {
		summary += fmt.Sprintf("  - %d dives in %s but not %s\n", len(d.MissingInA), d.SourceB, d.SourceA)
		if len(d.MissingInA) <= 5 {
			for _, id := range d.MissingInA {
				summary += fmt.Sprintf("    - %d\n", id)
			}
		}
	}

	if len(d.MissingInB) > 0 {
		summary += fmt.Sprintf("  - %d dives in %s but not %s\n", len(d.MissingInB), d.SourceA, d.SourceB)
		if len(d.MissingInB) <= 5 {
			for _, id := range d.MissingInB {
				summary += fmt.Sprintf("    - %d\n", id)
			}
		}
	}

	if len(d.NumberMismatch) > 0 {
		summary += fmt.Sprintf("  - %d dives with different numbers\n", len(d.NumberMismatch))
		if len(d.NumberMismatch) <= 5 {
			for _, m := range d.NumberMismatch {
				summary += fmt.Sprintf("    - %d: #%d vs #%d\n", m.ID, m.NumberA, m.NumberB)
			}
		}
	}

	return summary
}

// DiffOptions configures the diff operation
type DiffOptions struct {
	// MaxDifferences limits the number of differences tracked (0 = unlimited)
	MaxDifferences int
}

// DefaultDiffOptions returns sensible default diff options
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		MaxDifferences: 100,
	}
}

// DetectInconsistencies compares two sets of dives and returns differences
func DetectInconsistencies(divesA, divesB []*divelog.Dive, sourceA, sourceB string, opts DiffOptions) SourceDiff {
	diff := SourceDiff{
		SourceA: sourceA,
		SourceB: sourceB,
	}

	mapA := make(map[int]*divelog.Dive)
	for _, d := range divesA {
		mapA[d.UniqID] = d
	}

	mapB := make(map[int]*divelog.Dive)
	for _, d := range divesB {
		mapB[d.UniqID] = d
	}

	diff.CountA = len(mapA)
	diff.CountB = len(mapB)

	// Find dives in A but not in B
	for id := range mapA {
		if _, exists := mapB[id]; !exists {
			if opts.MaxDifferences == 0 || len(diff.MissingInB) < opts.MaxDifferences {
				diff.MissingInB = append(diff.MissingInB, id)
			}
		}
	}

	// Find dives in B but not in A, and number mismatches
	for id, diveB := range mapB {
		diveA, exists := mapA[id]
		if !exists {
			if opts.MaxDifferences == 0 || len(diff.MissingInA) < opts.MaxDifferences {
				diff.MissingInA = append(diff.MissingInA, id)
			}
		} else if diveA.Number != diveB.Number {
			if opts.MaxDifferences == 0 || len(diff.NumberMismatch) < opts.MaxDifferences {
				diff.NumberMismatch = append(diff.NumberMismatch, NumberDifference{
					ID:      id,
					NumberA: diveA.Number,
					NumberB: diveB.Number,
				})
			}
		}
	}

	return diff
}

// CompareSources loads and compares two data sources
func CompareSources(sourceA, sourceB DataSource, opts DiffOptions) (*SourceDiff, error) {
	divesA, err := loadDivesFromSource(sourceA)
	if err != nil {
		return nil, fmt.Errorf("failed to load source A (%s): %w", sourceA.Path, err)
	}

	divesB, err := loadDivesFromSource(sourceB)
	if err != nil {
		return nil, fmt.Errorf("failed to load source B (%s): %w", sourceB.Path, err)
	}

	diff := DetectInconsistencies(divesA, divesB, sourceA.Path, sourceB.Path, opts)
	return &diff, nil
}

// loadDivesFromSource loads dives from any source type
func loadDivesFromSource(source DataSource) ([]*divelog.Dive, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return reader.LoadDives()
	case SourceTypeJSONL:
		return loader.LoadDivesFromFile(source.Path)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", source.Type)
	}
}

// CheckLogbookConsistency discovers every valid source in the logbook
// directory and cross-compares them. An empty result means all sources agree.
func CheckLogbookConsistency(dir string, opts DiffOptions) ([]SourceDiff, error) {
	sources, err := DiscoverSources(DiscoveryOptions{
		LogbookDir:             dir,
		ValidateAfterDiscovery: true,
	})
	if err != nil {
		return nil, err
	}
	return CheckAllSourcesConsistent(sources, opts)
}

// CheckAllSourcesConsistent compares all sources and reports any inconsistencies
func CheckAllSourcesConsistent(sources []DataSource, opts DiffOptions) ([]SourceDiff, error) {
	var diffs []SourceDiff

	// Compare each valid source with every other valid source
	for i := 0; i < len(sources); i++ {
		if !sources[i].Valid {
			continue
		}
		for j := i + 1; j < len(sources); j++ {
			if !sources[j].Valid {
				continue
			}

			diff, err := CompareSources(sources[i], sources[j], opts)
			if err != nil {
				continue
			}

			if diff.HasInconsistencies() {
				diffs = append(diffs, *diff)
			}
		}
	}

	return diffs, nil
}
