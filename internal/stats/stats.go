// Package stats summarizes fitness samples and keeps a file based index of
// sampling runs.
package stats

import "math"

// FitnessStats describes a batch of fitness values. Lower is better.
type FitnessStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	// Cleared counts zero fitness entries.
	Cleared int `json:"cleared"`
}

func Summarize(values []float64) FitnessStats {
	if len(values) == 0 {
		return FitnessStats{}
	}
	avg, std := avgStd(values)
	out := FitnessStats{
		Count:  len(values),
		Mean:   avg,
		StdDev: std,
		Min:    minFloat(values),
		Max:    maxFloat(values),
	}
	for _, v := range values {
		if v == 0 {
			out.Cleared++
		}
	}
	return out
}

func avgStd(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - avg
		sq += d * d
	}
	return avg, math.Sqrt(sq / float64(len(values)))
}

func maxFloat(values []float64) float64 {
	max := values[0]
	for _, value := range values[1:] {
		if value > max {
			max = value
		}
	}
	return max
}

func minFloat(values []float64) float64 {
	min := values[0]
	for _, value := range values[1:] {
		if value < min {
			min = value
		}
	}
	return min
}
