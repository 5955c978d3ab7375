package complexity

import "math"

// MaintainabilityIndex returns
// clamp(0, 100, 171 - 5.2*ln(avg+1) - 0.23*avg - 16.2*ln(loc+1)).
func MaintainabilityIndex(avgComplexity float64, linesOfCode int) float64 {
	if avgComplexity < 0 {
		avgComplexity = 0
	}
	if linesOfCode < 0 {
		linesOfCode = 0
	}
	mi := 171 -
		5.2*math.Log(avgComplexity+1) -
		0.23*avgComplexity -
		16.2*math.Log(float64(linesOfCode)+1)
	return math.Max(0, math.Min(100, mi))
}
