package simulation

import "math"

// gridChargeStartHour is the first hour at which the battery may
// opportunistically top up from the grid (late-evening off-peak).
const gridChargeStartHour = 22

// HourState is everything a dispatch strategy may look at for one hour.
// The surrounding loop computes the daily priority peak and the forward
// lookahead so strategies stay pure.
type HourState struct {
	Index int // index in the year sequence
	Hour  int // 0-23

	NetPeakKW   float64 // demand after solar, before battery
	SurplusKWH  float64 // production in excess of consumption this hour
	ThresholdKW float64 // demand-shaving target

	SOCKWH      float64
	CapacityKWH float64
	PowerKW     float64

	// IsPriorityPeak marks the single highest-demand hour of the calendar day.
	IsPriorityPeak bool
	// HigherPeakAhead is true when a higher net peak occurs within the next
	// six hours.
	HigherPeakAhead bool
}

// Action is a battery decision for one hour. At most one of the three fields
// is nonzero.
type Action struct {
	DischargeKWH   float64
	SolarChargeKWH float64
	GridChargeKWH  float64
}

// Strategy decides the battery action for an hour. It must never return an
// action that would take state of charge outside [0, CapacityKWH] or exceed
// the power rating.
type Strategy interface {
	Decide(s HourState) Action
}

// GreedyShaving is the default dispatch heuristic: discharge to cap demand
// at the threshold, preferring the day's priority peak; charge from solar
// surplus; top up from the grid late in the evening. It deliberately
// simplifies what is really an optimal-control problem and is isolated here
// so it can be swapped for an optimization-based dispatcher.
type GreedyShaving struct{}

func (GreedyShaving) Decide(s HourState) Action {
	if s.CapacityKWH <= 0 {
		return Action{}
	}

	if s.NetPeakKW > s.ThresholdKW && s.SOCKWH > 0 {
		available := s.SOCKWH
		// Hold half the charge back for a bigger peak later in the day,
		// unless this is the priority peak or nothing higher is coming soon.
		if !s.IsPriorityPeak && s.HigherPeakAhead {
			available = s.SOCKWH / 2
		}
		want := s.NetPeakKW - s.ThresholdKW
		return Action{DischargeKWH: math.Min(math.Min(want, available), s.PowerKW)}
	}

	headroom := s.CapacityKWH - s.SOCKWH
	if s.SurplusKWH > 0 && headroom > 0 {
		return Action{SolarChargeKWH: math.Min(math.Min(s.SurplusKWH, headroom), s.PowerKW)}
	}

	// Late-evening top-up from the grid, but never past the shaving
	// threshold: charging must not create the peak it exists to shave.
	if s.Hour >= gridChargeStartHour && headroom > 0 && s.NetPeakKW < s.ThresholdKW {
		room := s.ThresholdKW - s.NetPeakKW
		return Action{GridChargeKWH: math.Min(math.Min(headroom, s.PowerKW), room)}
	}

	return Action{}
}
