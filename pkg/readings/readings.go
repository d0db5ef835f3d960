// Package readings turns irregular metered data into the canonical hourly
// consumption grid the simulation consumes.
package readings

import (
	"context"
	"log/slog"
	"time"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/log"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

// hourSample is the per-calendar-hour reduction of raw readings.
type hourSample struct {
	energyKWH float64
	hasEnergy bool
	demandKW  float64
	hasDemand bool
}

// Aggregate deduplicates raw readings to one value per calendar hour, then
// averages them into the 288 canonical (hour-of-day, month) buckets. Within a
// single calendar hour, sub-hourly energy samples are summed and the maximum
// demand sample is kept. Months with no readings at all are filled by
// interpolating between the nearest populated months, wrapping around the
// year boundary.
//
// An empty input returns 288 all-zero buckets rather than an error: "no data
// yet" is a legitimate analysis state.
func Aggregate(ctx context.Context, raw []types.RawReading) []types.HourlyBucket {
	byHour := make(map[time.Time]*hourSample)
	for _, r := range raw {
		if r.Timestamp.IsZero() {
			continue
		}
		h := r.Timestamp.Truncate(time.Hour)
		s, ok := byHour[h]
		if !ok {
			s = &hourSample{}
			byHour[h] = s
		}
		if r.EnergyKWH != nil {
			s.energyKWH += *r.EnergyKWH
			s.hasEnergy = true
		}
		if r.DemandKW != nil {
			s.hasDemand = true
			if *r.DemandKW > s.demandKW {
				s.demandKW = *r.DemandKW
			}
		}
	}

	// Average per (hour, month) cell across however many years of data we got.
	var sumEnergy, countEnergy [12][24]float64
	var maxDemand [12][24]float64
	monthPopulated := [12]bool{}
	for ts, s := range byHour {
		m := int(ts.Month()) - 1
		h := ts.Hour()
		if s.hasEnergy {
			sumEnergy[m][h] += s.energyKWH
			countEnergy[m][h]++
			monthPopulated[m] = true
		}
		if s.hasDemand {
			monthPopulated[m] = true
			if s.demandKW > maxDemand[m][h] {
				maxDemand[m][h] = s.demandKW
			}
		}
	}

	buckets := make([]types.HourlyBucket, 0, 288)
	for m := 0; m < 12; m++ {
		for h := 0; h < 24; h++ {
			b := types.HourlyBucket{Hour: h, Month: m + 1}
			if countEnergy[m][h] > 0 {
				b.ConsumptionKWH = sumEnergy[m][h] / countEnergy[m][h]
			}
			b.PeakKW = maxDemand[m][h]
			buckets = append(buckets, b)
		}
	}

	filled := fillMissingMonths(buckets, monthPopulated)
	if n := countMissing(monthPopulated); n > 0 && n < 12 {
		log.Ctx(ctx).DebugContext(ctx, "interpolated months with no readings", slog.Int("months", n))
	}
	return filled
}

func countMissing(populated [12]bool) int {
	n := 0
	for _, p := range populated {
		if !p {
			n++
		}
	}
	return n
}

// fillMissingMonths interpolates every cell of an unpopulated month from the
// nearest populated months before and after it, cyclically. If no month has
// data the buckets are returned unchanged (all zero).
func fillMissingMonths(buckets []types.HourlyBucket, populated [12]bool) []types.HourlyBucket {
	if countMissing(populated) == 0 || countMissing(populated) == 12 {
		return buckets
	}

	cell := func(m, h int) *types.HourlyBucket {
		return &buckets[m*24+h]
	}

	for m := 0; m < 12; m++ {
		if populated[m] {
			continue
		}
		// nearest populated month walking backward and forward, wrapping
		prev, prevDist := m, 0
		for i := 1; i <= 12; i++ {
			c := ((m-i)%12 + 12) % 12
			if populated[c] {
				prev, prevDist = c, i
				break
			}
		}
		next, nextDist := m, 0
		for i := 1; i <= 12; i++ {
			c := (m + i) % 12
			if populated[c] {
				next, nextDist = c, i
				break
			}
		}
		// linear weight by distance; a single populated month degenerates to a copy
		total := prevDist + nextDist
		wPrev := float64(nextDist) / float64(total)
		wNext := float64(prevDist) / float64(total)
		for h := 0; h < 24; h++ {
			c := cell(m, h)
			c.ConsumptionKWH = cell(prev, h).ConsumptionKWH*wPrev + cell(next, h).ConsumptionKWH*wNext
			c.PeakKW = cell(prev, h).PeakKW*wPrev + cell(next, h).PeakKW*wNext
		}
	}
	return buckets
}

// ExpandCalendar expands the 288 canonical buckets into the 8,760-hour
// sequence of the reference non-leap year, ordered January 1 hour 0 onward.
func ExpandCalendar(buckets []types.HourlyBucket) []types.HourlyBucket {
	cell := func(m, h int) types.HourlyBucket {
		return buckets[m*24+h]
	}
	out := make([]types.HourlyBucket, 0, types.HoursPerYear)
	for m := 0; m < 12; m++ {
		for d := 0; d < types.MonthDays[m]; d++ {
			for h := 0; h < 24; h++ {
				out = append(out, cell(m, h))
			}
		}
	}
	return out
}

// AnnualConsumptionKWH sums consumption over an expanded calendar sequence.
func AnnualConsumptionKWH(hours []types.HourlyBucket) float64 {
	var total float64
	for _, h := range hours {
		total += h.ConsumptionKWH
	}
	return total
}

// PeakDemandKW returns the highest demand seen across the sequence, falling
// back to the highest consumption when no demand meter data exists.
func PeakDemandKW(hours []types.HourlyBucket) float64 {
	var peak, peakEnergy float64
	for _, h := range hours {
		if h.PeakKW > peak {
			peak = h.PeakKW
		}
		if h.ConsumptionKWH > peakEnergy {
			peakEnergy = h.ConsumptionKWH
		}
	}
	if peak > 0 {
		return peak
	}
	return peakEnergy
}
