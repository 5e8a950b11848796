package models

import (
	"fmt"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
)

// Columns of the yearly statistics view.
const (
	ColStatsPeriod = iota
	ColStatsDives
	ColStatsTotalTime
	ColStatsAvgTime
	ColStatsShortestTime
	ColStatsLongestTime
	ColStatsAvgDepth
	ColStatsMinDepth
	ColStatsMaxDepth
	ColStatsAvgSac
	ColStatsMinSac
	ColStatsMaxSac
	ColStatsAvgTemp
	ColStatsMinTemp
	ColStatsMaxTemp
	statsColumns
)

// YearStatsItem embeds one pre-aggregated interval record. The copy is
// deliberate: the view must not chase the stats arrays after a rebuild.
type YearStatsItem struct {
	TreeItem
	interval divelog.Stats
	units    divelog.Units
}

// Data renders the interval. Year rows answer a bold font; cells whose
// denominator is zero answer "no value" instead of dividing.
func (y *YearStatsItem) Data(column int, role Role) any {
	if role == RoleFont {
		return Font{Bold: y.interval.IsYear}
	}
	if role != RoleDisplay {
		return nil
	}
	s := y.interval
	u := y.units
	switch column {
	case ColStatsPeriod:
		if s.IsTrip && s.Location != "" {
			return s.Location
		}
		return s.Period
	case ColStatsDives:
		return s.Count
	case ColStatsTotalTime:
		return u.Minutes(s.TotalSec)
	case ColStatsAvgTime:
		if s.Count == 0 {
			return nil
		}
		return u.Minutes(s.TotalSec / s.Count)
	case ColStatsShortestTime:
		return u.Minutes(s.ShortestSec)
	case ColStatsLongestTime:
		return u.Minutes(s.LongestSec)
	case ColStatsAvgDepth:
		return u.Depth(s.AvgDepthMM)
	case ColStatsMinDepth:
		return u.Depth(s.MinDepthMM)
	case ColStatsMaxDepth:
		return u.Depth(s.MaxDepthMM)
	case ColStatsAvgSac:
		return u.SAC(s.AvgSacMLMin)
	case ColStatsMinSac:
		return u.SAC(s.MinSacMLMin)
	case ColStatsMaxSac:
		return u.SAC(s.MaxSacMLMin)
	case ColStatsAvgTemp:
		if s.CombinedCount == 0 {
			return nil
		}
		return u.Temperature(s.AvgTempMK())
	case ColStatsMinTemp:
		return u.Temperature(s.MinTempMK)
	case ColStatsMaxTemp:
		return u.Temperature(s.MaxTempMK)
	}
	return nil
}

// YearlyStatsModel presents yearly intervals with their months as
// children, plus one separate top-level node holding the per-trip
// intervals. Trips are never nested under years.
type YearlyStatsModel struct {
	TreeModel
	units divelog.Units
}

// NewYearlyStatsModel builds the tree from flat yearly/monthly/trip
// interval arrays. Months are consumed greedily: each year takes months
// until their cumulative dive count reaches the year's total.
func NewYearlyStatsModel(yearly, monthly, byTrip []divelog.Stats, units divelog.Units) *YearlyStatsModel {
	m := &YearlyStatsModel{
		TreeModel: NewTreeModel(statsColumns),
		units:     units,
	}

	var rows []Item
	month := 0
	for _, ys := range yearly {
		year := &YearStatsItem{interval: ys, units: units}
		combined := 0
		for combined < ys.Count && month < len(monthly) {
			combined += monthly[month].Count
			Append(year, &YearStatsItem{interval: monthly[month], units: units})
			month++
		}
		rows = append(rows, year)
	}

	if len(byTrip) > 0 && byTrip[0].IsTrip {
		trips := &YearStatsItem{interval: byTrip[0], units: units}
		for _, ts := range byTrip[1:] {
			if !ts.IsTrip {
				break
			}
			Append(trips, &YearStatsItem{interval: ts, units: units})
		}
		rows = append(rows, trips)
	}

	m.InsertSubtrees(rows)
	return m
}

// Header answers the two-line column labels and the default font.
func (m *YearlyStatsModel) Header(section int, orientation Orientation, role Role) any {
	if role == RoleFont {
		return m.DefaultFont()
	}
	if role != RoleDisplay || orientation != Horizontal {
		return nil
	}
	u := m.units
	switch section {
	case ColStatsPeriod:
		return "Year \n > Month / Trip"
	case ColStatsDives:
		return "#"
	case ColStatsTotalTime:
		return "Duration \n Total"
	case ColStatsAvgTime:
		return "\nAverage"
	case ColStatsShortestTime:
		return "\nShortest"
	case ColStatsLongestTime:
		return "\nLongest"
	case ColStatsAvgDepth:
		return fmt.Sprintf("Depth (%s)\n Average", u.DepthUnit())
	case ColStatsMinDepth:
		return "\nMinimum"
	case ColStatsMaxDepth:
		return "\nMaximum"
	case ColStatsAvgSac:
		return fmt.Sprintf("SAC (%s)\n Average", u.VolumeUnit())
	case ColStatsMinSac:
		return "\nMinimum"
	case ColStatsMaxSac:
		return "\nMaximum"
	case ColStatsAvgTemp:
		return fmt.Sprintf("Temp. (%s)\n Average", u.TempUnit())
	case ColStatsMinTemp:
		return "\nMinimum"
	case ColStatsMaxTemp:
		return "\nMaximum"
	}
	return nil
}
