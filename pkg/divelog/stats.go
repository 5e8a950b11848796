package divelog

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Stats is one pre-aggregated statistics interval: a year, a month, a trip,
// or the all-trips header row. The yearly statistics view embeds copies of
// these records; it never reaches back into the dive list.
type Stats struct {
	Period   string // "2024", "Jan 2024", ...
	Location string // trip intervals only
	IsYear   bool
	IsTrip   bool

	Count       int
	TotalSec    int
	ShortestSec int
	LongestSec  int

	AvgDepthMM int
	MinDepthMM int
	MaxDepthMM int

	AvgSacMLMin int
	MinSacMLMin int
	MaxSacMLMin int

	// Temperature is kept as a running sum plus sample count so the view
	// can detect a zero denominator instead of dividing blindly.
	CombinedTempMK int
	CombinedCount  int
	MinTempMK      int
	MaxTempMK      int
}

// AvgTempMK returns the mean water temperature, or 0 when no dive in the
// interval recorded one.
func (s Stats) AvgTempMK() int {
	if s.CombinedCount == 0 {
		return 0
	}
	return s.CombinedTempMK / s.CombinedCount
}

func accumulate(dives []*Dive) Stats {
	var s Stats
	var depths, sacs []float64
	for _, d := range dives {
		s.Count++
		s.TotalSec += d.DurationS
		if s.ShortestSec == 0 || d.DurationS < s.ShortestSec {
			s.ShortestSec = d.DurationS
		}
		if d.DurationS > s.LongestSec {
			s.LongestSec = d.DurationS
		}
		if d.MaxDepthMM > 0 {
			depths = append(depths, float64(d.MaxDepthMM))
			if s.MinDepthMM == 0 || d.MaxDepthMM < s.MinDepthMM {
				s.MinDepthMM = d.MaxDepthMM
			}
			if d.MaxDepthMM > s.MaxDepthMM {
				s.MaxDepthMM = d.MaxDepthMM
			}
		}
		if d.SacMLMin > 0 {
			sacs = append(sacs, float64(d.SacMLMin))
			if s.MinSacMLMin == 0 || d.SacMLMin < s.MinSacMLMin {
				s.MinSacMLMin = d.SacMLMin
			}
			if d.SacMLMin > s.MaxSacMLMin {
				s.MaxSacMLMin = d.SacMLMin
			}
		}
		if d.TempMK > 0 {
			s.CombinedTempMK += d.TempMK
			s.CombinedCount++
			if s.MinTempMK == 0 || d.TempMK < s.MinTempMK {
				s.MinTempMK = d.TempMK
			}
			if d.TempMK > s.MaxTempMK {
				s.MaxTempMK = d.TempMK
			}
		}
	}
	if len(depths) > 0 {
		s.AvgDepthMM = int(stat.Mean(depths, nil))
	}
	if len(sacs) > 0 {
		s.AvgSacMLMin = int(stat.Mean(sacs, nil))
	}
	return s
}

func groupBy(dl *DiveList, key func(*Dive) string) ([]string, map[string][]*Dive) {
	var order []string
	buckets := make(map[string][]*Dive)
	for _, d := range dl.dives {
		k := key(d)
		if k == "" {
			continue
		}
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], d)
	}
	return order, buckets
}

// YearlyStats aggregates one interval per calendar year, newest first.
func YearlyStats(dl *DiveList) []Stats {
	order, buckets := groupBy(dl, func(d *Dive) string {
		return d.When.Format("2006")
	})
	sort.Sort(sort.Reverse(sort.StringSlice(order)))
	out := make([]Stats, 0, len(order))
	for _, y := range order {
		s := accumulate(buckets[y])
		s.Period = y
		s.IsYear = true
		out = append(out, s)
	}
	return out
}

// MonthlyStats aggregates one interval per calendar month, ordered to match
// YearlyStats: newest year first, months newest first within the year.
func MonthlyStats(dl *DiveList) []Stats {
	order, buckets := groupBy(dl, func(d *Dive) string {
		return d.When.Format("2006-01")
	})
	sort.Sort(sort.Reverse(sort.StringSlice(order)))
	out := make([]Stats, 0, len(order))
	for _, m := range order {
		s := accumulate(buckets[m])
		if t, err := time.Parse("2006-01", m); err == nil {
			s.Period = t.Format("Jan 2006")
		} else {
			s.Period = m
		}
		out = append(out, s)
	}
	return out
}

// TripStats aggregates one interval per trip, preceded by an all-trips
// header interval. Returns nil when the log has no trips.
func TripStats(dl *DiveList) []Stats {
	trips := dl.Trips()
	if len(trips) == 0 {
		return nil
	}
	var all []*Dive
	perTrip := make([][]*Dive, len(trips))
	index := make(map[string]int, len(trips))
	for i, t := range trips {
		index[t.ID] = i
	}
	for _, d := range dl.dives {
		i, ok := index[d.TripID]
		if !ok {
			continue
		}
		perTrip[i] = append(perTrip[i], d)
		all = append(all, d)
	}
	header := accumulate(all)
	header.Period = fmt.Sprintf("Trips (%d)", len(trips))
	header.IsTrip = true
	out := []Stats{header}
	for i, t := range trips {
		s := accumulate(perTrip[i])
		s.Period = t.When.Format("Jan 2006")
		s.Location = t.Location
		s.IsTrip = true
		out = append(out, s)
	}
	return out
}
