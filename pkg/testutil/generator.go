// Package testutil provides test fixture generators for dive logs.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
)

// GeneratorConfig controls dive generation.
type GeneratorConfig struct {
	Seed            int64     // Random seed for determinism (0 = use current time)
	BaseTime        time.Time // Time of the first dive (default: fixed time)
	Locations       []string  // Site names to cycle through
	IncludeTemps    bool      // Generate water temperatures
	IncludeGases    bool      // Generate nitrox cylinders
	IncludeSAC      bool      // Generate SAC rates
	SurfaceInterval time.Duration // Gap between consecutive dives (default 4h)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42, // Deterministic
		BaseTime: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		Locations: []string{
			"Blue Hole", "Shark Reef", "Thistlegorm", "Canyon", "Ras Mohammed",
		},
		SurfaceInterval: 4 * time.Hour,
	}
}

// Generator creates dive fixtures with various shapes.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	}
	if len(cfg.Locations) == 0 {
		cfg.Locations = DefaultConfig().Locations
	}
	if cfg.SurfaceInterval == 0 {
		cfg.SurfaceInterval = 4 * time.Hour
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Logbook creates n sequential dives with no trips. Dives are spaced by the
// configured surface interval and numbered 1..n in chronological order.
func (g *Generator) Logbook(n int) []*divelog.Dive {
	dives := make([]*divelog.Dive, n)
	when := g.cfg.BaseTime
	for i := 0; i < n; i++ {
		dives[i] = g.dive(i+1, when)
		when = when.Add(g.cfg.SurfaceInterval)
	}
	return dives
}

// TripLog creates trips*divesPerTrip dives grouped into trips. Trips are a
// month apart so autogrouping cannot merge them.
func (g *Generator) TripLog(trips, divesPerTrip int) []*divelog.Dive {
	var dives []*divelog.Dive
	num := 1
	when := g.cfg.BaseTime
	for t := 0; t < trips; t++ {
		tripID := fmt.Sprintf("trip-%d", t+1)
		for i := 0; i < divesPerTrip; i++ {
			d := g.dive(num, when)
			d.TripID = tripID
			dives = append(dives, d)
			num++
			when = when.Add(g.cfg.SurfaceInterval)
		}
		when = when.AddDate(0, 1, 0)
	}
	return dives
}

// MixedLog creates grouped dives followed by ungrouped ones, exercising both
// trip and top-level rows in the dive list.
func (g *Generator) MixedLog(tripDives, looseDives int) []*divelog.Dive {
	dives := g.TripLog(1, tripDives)
	when := g.cfg.BaseTime.AddDate(0, 2, 0)
	for i := 0; i < looseDives; i++ {
		dives = append(dives, g.dive(tripDives+i+1, when))
		when = when.AddDate(0, 0, 7)
	}
	return dives
}

// FreediveLog creates n short breath-hold dives.
func (g *Generator) FreediveLog(n int) []*divelog.Dive {
	dives := make([]*divelog.Dive, n)
	when := g.cfg.BaseTime
	for i := 0; i < n; i++ {
		d := g.dive(i+1, when)
		d.Freedive = true
		d.DurationS = 60 + g.rng.Intn(120)
		d.Cylinders = nil
		dives[i] = d
		when = when.Add(15 * time.Minute)
	}
	return dives
}

func (g *Generator) dive(number int, when time.Time) *divelog.Dive {
	d := &divelog.Dive{
		UniqID:     number,
		Number:     number,
		When:       when,
		DurationS:  1800 + g.rng.Intn(2400),
		MaxDepthMM: 8000 + g.rng.Intn(32000),
		Rating:     g.rng.Intn(6),
		Location:   g.cfg.Locations[(number-1)%len(g.cfg.Locations)],
	}
	if g.cfg.IncludeTemps {
		// 10-30 degrees C in millikelvin
		d.TempMK = 283150 + g.rng.Intn(20)*1000
	}
	if g.cfg.IncludeGases {
		o2 := []int{0, 320, 360, 210}[g.rng.Intn(4)]
		d.Cylinders = []divelog.Cylinder{{Description: "AL80", O2Permille: o2}}
	}
	if g.cfg.IncludeSAC {
		d.SacMLMin = 12000 + g.rng.Intn(10000)
	}
	return d
}

// ToJSONL converts dives to JSONL format (one JSON object per line).
func ToJSONL(dives []*divelog.Dive) string {
	var sb strings.Builder
	for _, d := range dives {
		data, err := json.Marshal(d)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Convenience functions

// QuickLogbook creates a plain logbook with default settings.
func QuickLogbook(n int) []*divelog.Dive {
	return NewDefault().Logbook(n)
}

// QuickTrips creates a trip-grouped logbook with default settings.
func QuickTrips(trips, divesPerTrip int) []*divelog.Dive {
	return NewDefault().TripLog(trips, divesPerTrip)
}

// Empty returns an empty dive slice for edge case testing.
func Empty() []*divelog.Dive {
	return []*divelog.Dive{}
}

// Single returns a single dive with no trip.
func Single() []*divelog.Dive {
	gen := NewDefault()
	return []*divelog.Dive{gen.dive(1, gen.cfg.BaseTime)}
}
