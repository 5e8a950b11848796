package divelog

import (
	"fmt"
	"strings"
	"time"
)

// UnitSystem selects metric or imperial rendering.
type UnitSystem int

const (
	Metric UnitSystem = iota
	Imperial
)

// Units renders domain quantities as display strings. The view models call
// these helpers so every view renders quantities the same way.
type Units struct {
	System UnitSystem
}

const (
	mmPerFoot    = 304.8
	gramsPerLb   = 453.592
	mkelvinZeroC = 273150 // 0°C in millikelvin
)

// DepthUnit returns "m" or "ft".
func (u Units) DepthUnit() string {
	if u.System == Imperial {
		return "ft"
	}
	return "m"
}

// TempUnit returns "C" or "F".
func (u Units) TempUnit() string {
	if u.System == Imperial {
		return "F"
	}
	return "C"
}

// WeightUnit returns "kg" or "lbs".
func (u Units) WeightUnit() string {
	if u.System == Imperial {
		return "lbs"
	}
	return "kg"
}

// VolumeUnit returns "ℓ" or "cuft".
func (u Units) VolumeUnit() string {
	if u.System == Imperial {
		return "cuft"
	}
	return "ℓ"
}

// Depth renders a depth in millimetres, one decimal.
func (u Units) Depth(mm int) string {
	if mm == 0 {
		return ""
	}
	if u.System == Imperial {
		return fmt.Sprintf("%.1f", float64(mm)/mmPerFoot)
	}
	return fmt.Sprintf("%.1f", float64(mm)/1000.0)
}

// Duration renders a duration in seconds the way the dive list shows it:
// "h:mm" above an hour, "Nm:SSs" for short or freedive entries, plain
// minutes otherwise.
func (u Units) Duration(seconds int, freedive bool) string {
	mins := (seconds + 59) / 60
	fullmins := seconds / 60
	secs := seconds - 60*fullmins
	hrs := mins / 60
	mins -= hrs * 60
	switch {
	case hrs > 0:
		return fmt.Sprintf("%d:%02d", hrs, mins)
	case fullmins < 15 || freedive:
		return fmt.Sprintf("%dm%02ds", fullmins, secs)
	default:
		return fmt.Sprintf("%d", mins)
	}
}

// Minutes renders a duration in seconds as "m:ss".
func (u Units) Minutes(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// TempValue converts millikelvin to the configured temperature unit.
func (u Units) TempValue(mk int) float64 {
	c := float64(mk-mkelvinZeroC) / 1000.0
	if u.System == Imperial {
		return c*9.0/5.0 + 32.0
	}
	return c
}

// Temperature renders a water temperature in millikelvin, one decimal.
// Zero (not recorded) renders empty.
func (u Units) Temperature(mk int) string {
	if mk == 0 {
		return ""
	}
	return fmt.Sprintf("%.1f", u.TempValue(mk))
}

// SAC renders surface air consumption in ml/min. Metric shows litres per
// minute, imperial cubic feet per minute.
func (u Units) SAC(mlMin int) string {
	if mlMin == 0 {
		return ""
	}
	if u.System == Imperial {
		return fmt.Sprintf("%.2f", float64(mlMin)/28316.846)
	}
	return fmt.Sprintf("%.1f", float64(mlMin)/1000.0)
}

// Weight renders a weight in grams.
func (u Units) Weight(grams int) string {
	if grams == 0 {
		return ""
	}
	if u.System == Imperial {
		return fmt.Sprintf("%.1f", float64(grams)/gramsPerLb)
	}
	return fmt.Sprintf("%.1f", float64(grams)/1000.0)
}

// Date renders a dive timestamp for the list view.
func (u Units) Date(t time.Time) string {
	return t.Format("Mon, Jan 2, 2006 15:04")
}

// TripDate renders a trip header date with its dive count.
func (u Units) TripDate(t time.Time, nrDives int) string {
	return fmt.Sprintf("%s (%d dives)", t.Format("Jan 2006"), nrDives)
}

// GasName renders a gas mix: "air", "EAN32" for nitrox, "O₂" for pure
// oxygen, or "He/O2" percentages for trimix.
func GasName(o2Permille, hePermille int) string {
	o2 := (o2Permille + 5) / 10
	he := (hePermille + 5) / 10
	switch {
	case he > 0:
		return fmt.Sprintf("%d/%d", o2, he)
	case o2 >= 100:
		return "oxygen"
	case o2 == 0 || o2 == 21:
		return "air"
	default:
		return fmt.Sprintf("EAN%d", o2)
	}
}

// GasString renders the dive's cylinder gases as a deduplicated
// slash-separated list, e.g. "AL80 EAN32 / D12 air".
func (d *Dive) GasString() string {
	var gases []string
	for _, c := range d.Cylinders {
		gas := c.Description
		name := GasName(c.O2Permille, c.HePermille)
		if gas != "" {
			gas += " " + name
		} else {
			gas = name
		}
		dup := false
		for _, g := range gases {
			if g == gas {
				dup = true
				break
			}
		}
		if !dup {
			gases = append(gases, gas)
		}
	}
	return strings.Join(gases, " / ")
}

// NitroxSortValue is a numeric proxy for sorting the gas column without
// parsing the display string.
func (d *Dive) NitroxSortValue() int {
	var o2, he int
	for _, c := range d.Cylinders {
		co2 := c.O2Permille
		if co2 == 0 {
			co2 = 209 // air
		}
		if c.HePermille > he || (c.HePermille == he && co2 > o2) {
			o2, he = co2, c.HePermille
		}
	}
	if o2 == 0 {
		o2 = 209
	}
	return he*1000 + o2
}

// FirstCylinder returns the description of the primary cylinder.
func (d *Dive) FirstCylinder() string {
	if len(d.Cylinders) == 0 {
		return ""
	}
	return d.Cylinders[0].Description
}
