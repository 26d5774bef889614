package weather

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// MaxForecastDays caps the number of day buckets returned by AggregateDays.
const MaxForecastDays = 7

const dateKeyLayout = "2006-01-02"

// ErrInvalidSample is returned when a sample violates the aggregator's
// preconditions (non-finite temperatures, missing time, out-of-order input).
var ErrInvalidSample = errors.New("invalid forecast sample")

// AggregateDays groups time-ordered samples into local calendar days.
// Min/Max are running extrema over TempMin/TempMax; the representative is the
// sample nearest to local noon, first seen winning ties. Buckets come back
// sorted by date and truncated to MaxForecastDays.
func AggregateDays(samples []ForecastSample, offset TimezoneOffset) ([]DayBucket, error) {
	index := make(map[string]int)
	buckets := make([]DayBucket, 0, MaxForecastDays)

	var prev time.Time
	for i, s := range samples {
		if err := checkSample(s, prev); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		prev = s.Time

		key := offset.Wall(s.Time).Format(dateKeyLayout)
		pos, seen := index[key]
		if !seen {
			index[key] = len(buckets)
			buckets = append(buckets, DayBucket{
				Date:           key,
				Samples:        []ForecastSample{s},
				Min:            s.TempMin,
				Max:            s.TempMax,
				Representative: s,
			})
			continue
		}

		b := &buckets[pos]
		b.Min = math.Min(b.Min, s.TempMin)
		b.Max = math.Max(b.Max, s.TempMax)
		if noonDistance(s.Time, offset) < noonDistance(b.Representative.Time, offset) {
			b.Representative = s
		}
		b.Samples = append(b.Samples, s)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})
	if len(buckets) > MaxForecastDays {
		buckets = buckets[:MaxForecastDays]
	}
	return buckets, nil
}

// UpcomingSamples returns at most n samples whose time is not before from.
func UpcomingSamples(samples []ForecastSample, from time.Time, n int) []ForecastSample {
	out := make([]ForecastSample, 0, n)
	for _, s := range samples {
		if len(out) >= n {
			break
		}
		if s.Time.Before(from) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// noonDistance is the distance in hours between the sample's local time of
// day and 12:00. Minutes count, so 11:30 is closer than 14:30.
func noonDistance(t time.Time, offset TimezoneOffset) float64 {
	wall := offset.Wall(t)
	hour := float64(wall.Hour()) + float64(wall.Minute())/60
	return math.Abs(hour - 12)
}

func checkSample(s ForecastSample, prev time.Time) error {
	if s.Time.IsZero() {
		return fmt.Errorf("%w: missing time", ErrInvalidSample)
	}
	if !prev.IsZero() && s.Time.Before(prev) {
		return fmt.Errorf("%w: time %s before previous sample %s", ErrInvalidSample,
			s.Time.Format(time.RFC3339), prev.Format(time.RFC3339))
	}
	for _, v := range [...]float64{s.Temperature, s.TempMin, s.TempMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite temperature", ErrInvalidSample)
		}
	}
	return nil
}
