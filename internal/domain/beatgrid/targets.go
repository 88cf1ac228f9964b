// Package beatgrid derives beat-aligned segment durations.
package beatgrid

import "sort"

// Targets returns one target duration per narration duration so that every
// segment boundary lands on a beat. Each segment ends on the first beat at or
// after the point where its narration would finish; once beats run out the
// raw duration is used. Durations <= 0 yield a target of 0.
func Targets(durations, beats []float64) []float64 {
	grid := append([]float64(nil), beats...)
	sort.Float64s(grid)

	out := make([]float64, len(durations))
	elapsed := 0.0
	for i, d := range durations {
		if d <= 0 {
			continue
		}
		end := elapsed + d
		j := sort.SearchFloat64s(grid, end)
		if j < len(grid) {
			end = grid[j]
		}
		out[i] = end - elapsed
		elapsed = end
	}
	return out
}
