package metrics

import (
	"fmt"

	"github.com/san-kum/popsim/internal/sim"
)

// Unabsorbed is the fixation time of a line that still segregates.
const Unabsorbed = -1

// FractionAbsorbed is added by Summarise next to fixation_time.
const FractionAbsorbed = "fraction_absorbed"

// conditional metrics are only defined on some lines and average over those.
var conditional = map[string]bool{
	"fixation_time": true,
}

// Mean averages the named metric across replicates. For conditional metrics
// it skips lines without a value and returns Unabsorbed when none has one.
// n is the number of lines averaged.
func Mean(results []*sim.Result, name string) (mean float64, n int, err error) {
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no results for metric %s", name)
	}
	total := 0.0
	for _, res := range results {
		v, ok := res.Metrics[name]
		if !ok {
			return 0, 0, fmt.Errorf("unknown metric: %s", name)
		}
		if conditional[name] && v < 0 {
			continue
		}
		total += v
		n++
	}
	if n == 0 {
		return Unabsorbed, 0, nil
	}
	return total / float64(n), n, nil
}

// Summarise averages every metric the first result reports. Where fixation
// time is present it also reports the fraction of lines that absorbed.
func Summarise(results []*sim.Result) (map[string]float64, error) {
	out := make(map[string]float64)
	if len(results) == 0 {
		return out, nil
	}
	for name := range results[0].Metrics {
		mean, n, err := Mean(results, name)
		if err != nil {
			return nil, err
		}
		out[name] = mean
		if conditional[name] {
			out[FractionAbsorbed] = float64(n) / float64(len(results))
		}
	}
	return out, nil
}
