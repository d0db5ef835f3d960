package simulation

import "math"

const (
	// Gaussian day shape centered on solar noon (13:00 local with DST).
	dayShapeCenterHour = 13.0
	dayShapeSigmaHours = 3.5

	// Outside this window production is forced to zero regardless of shape.
	daylightStartHour = 5
	daylightEndHour   = 21

	// baseCapacityFactor scales the normalized day/season shape so the
	// pre-loss annual production of 1 kW integrates to the 1,150 kWh/kWp
	// baseline at YieldFactor 1.0.
	baseCapacityFactor = 0.366

	// Cell temperature rises above ambient proportionally to irradiance,
	// peaking at this delta at the top of the day shape.
	cellTempRiseMaxC = 25.0
	cellTempSTCC     = 25.0
)

// Monthly average daytime ambient temperature (degrees C) for southern
// Québec, used by the cell-temperature derate.
var ambientTempC = [12]float64{
	-10.5, -8.5, -2.5, 5.5, 13.0, 18.5, 21.0, 19.5, 14.5, 7.5, 0.5, -7.0,
}

// SnowProfiles holds the calibrated monthly production-loss fractions for the
// supported racking styles. Flat roofs shed snow slowest.
var SnowProfiles = map[string][12]float64{
	"flat":      {0.35, 0.30, 0.15, 0.02, 0, 0, 0, 0, 0, 0, 0.05, 0.25},
	"tilted":    {0.20, 0.15, 0.05, 0.01, 0, 0, 0, 0, 0, 0, 0.02, 0.12},
	"ballasted": {0.28, 0.22, 0.10, 0.02, 0, 0, 0, 0, 0, 0, 0.04, 0.18},
}

// dayShape returns the normalized production weight for an hour of day,
// zero outside the daylight window.
func dayShape(hour int) float64 {
	if hour < daylightStartHour || hour > daylightEndHour {
		return 0
	}
	d := float64(hour) - dayShapeCenterHour
	return math.Exp(-(d * d) / (2 * dayShapeSigmaHours * dayShapeSigmaHours))
}

// seasonalFactor peaks mid-year: June/July production in Québec runs at
// roughly 2.3x December. month is 1-12.
func seasonalFactor(month int) float64 {
	return 1.0 - 0.4*math.Cos(2*math.Pi*float64(month)/12.0)
}

// cellTempDerate returns the temperature correction multiplier relative to
// 25C STC. In a Québec winter this can exceed 1.
func cellTempDerate(month, hour int, tempCoeffPerC float64) float64 {
	cellT := ambientTempC[month-1] + cellTempRiseMaxC*dayShape(hour)
	return 1.0 + tempCoeffPerC*(cellT-cellTempSTCC)
}
