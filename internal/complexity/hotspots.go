package complexity

import "sort"

// Priority ranks a hotspot.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	}
	return 0
}

// Thresholds configures hotspot detection.
type Thresholds struct {
	// Threshold is the cyclomatic complexity at which a function is a hotspot.
	Threshold int
	// MIFloor flags files whose maintainability index falls below it.
	MIFloor            float64
	MediumMultiplier   float64
	HighMultiplier     float64
	CriticalMultiplier float64
}

// DefaultThresholds returns threshold 10 with 1.5x/2x/3x multipliers.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Threshold:          10,
		MIFloor:            20,
		MediumMultiplier:   1.5,
		HighMultiplier:     2,
		CriticalMultiplier: 3,
	}
}

func (t Thresholds) normalized() Thresholds {
	d := DefaultThresholds()
	if t.Threshold <= 0 {
		t.Threshold = d.Threshold
	}
	if t.MediumMultiplier <= 0 {
		t.MediumMultiplier = d.MediumMultiplier
	}
	if t.HighMultiplier <= 0 {
		t.HighMultiplier = d.HighMultiplier
	}
	if t.CriticalMultiplier <= 0 {
		t.CriticalMultiplier = d.CriticalMultiplier
	}
	return t
}

// PriorityFor maps a complexity value to a priority by its multiple of the
// threshold.
func (t Thresholds) PriorityFor(value int) Priority {
	t = t.normalized()
	ratio := float64(value) / float64(t.Threshold)
	switch {
	case ratio >= t.CriticalMultiplier:
		return PriorityCritical
	case ratio >= t.HighMultiplier:
		return PriorityHigh
	case ratio >= t.MediumMultiplier:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// FunctionHotspot is a function at or above the threshold.
type FunctionHotspot struct {
	Path       string   `json:"path"`
	Name       string   `json:"name"`
	Line       int      `json:"line"`
	Cyclomatic int      `json:"cyclomatic"`
	Priority   Priority `json:"priority"`
}

// FileHotspot is a file whose total complexity is at least twice the
// threshold or whose maintainability index is below the floor.
type FileHotspot struct {
	Path                 string   `json:"path"`
	Total                int      `json:"total"`
	MaintainabilityIndex float64  `json:"maintainabilityIndex"`
	Reasons              []string `json:"reasons"`
	Priority             Priority `json:"priority"`
}

// FunctionHotspots lists hotspot functions, most complex first.
func FunctionHotspots(files []FileComplexity, t Thresholds) []FunctionHotspot {
	t = t.normalized()
	var out []FunctionHotspot
	for _, fc := range files {
		for _, fn := range fc.Functions {
			if fn.Cyclomatic < t.Threshold {
				continue
			}
			out = append(out, FunctionHotspot{
				Path:       fc.Path,
				Name:       fn.Name,
				Line:       fn.StartLine,
				Cyclomatic: fn.Cyclomatic,
				Priority:   t.PriorityFor(fn.Cyclomatic),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Cyclomatic != out[j].Cyclomatic {
			return out[i].Cyclomatic > out[j].Cyclomatic
		}
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// FileHotspots lists hotspot files, highest priority first. A file flagged
// only for its maintainability index is at least medium priority.
func FileHotspots(files []FileComplexity, t Thresholds) []FileHotspot {
	t = t.normalized()
	var out []FileHotspot
	for _, fc := range files {
		var reasons []string
		if fc.Total >= 2*t.Threshold {
			reasons = append(reasons, "total complexity")
		}
		lowMI := fc.MaintainabilityIndex < t.MIFloor
		if lowMI {
			reasons = append(reasons, "maintainability index")
		}
		if len(reasons) == 0 {
			continue
		}
		p := t.PriorityFor(fc.Total)
		if lowMI && p.rank() < PriorityMedium.rank() {
			p = PriorityMedium
		}
		out = append(out, FileHotspot{
			Path:                 fc.Path,
			Total:                fc.Total,
			MaintainabilityIndex: fc.MaintainabilityIndex,
			Reasons:              reasons,
			Priority:             p,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority.rank() != out[j].Priority.rank() {
			return out[i].Priority.rank() > out[j].Priority.rank()
		}
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Summary buckets function counts relative to the threshold.
type Summary struct {
	Files       int     `json:"files"`
	Functions   int     `json:"functions"`
	Low         int     `json:"low"`
	Moderate    int     `json:"moderate"`
	High        int     `json:"high"`
	VeryHigh    int     `json:"veryHigh"`
	AverageMI   float64 `json:"averageMaintainabilityIndex"`
	MaxFunction int     `json:"maxFunctionComplexity"`
	TotalLOC    int     `json:"totalLinesOfCode"`
}

// Summarize buckets every function: low (< threshold/2), moderate
// (< threshold), high (< 2*threshold), very high (>= 2*threshold).
func Summarize(files []FileComplexity, t Thresholds) Summary {
	t = t.normalized()
	s := Summary{Files: len(files)}
	half := float64(t.Threshold) / 2
	var miSum float64
	for _, fc := range files {
		miSum += fc.MaintainabilityIndex
		s.TotalLOC += fc.LinesOfCode
		for _, fn := range fc.Functions {
			s.Functions++
			if fn.Cyclomatic > s.MaxFunction {
				s.MaxFunction = fn.Cyclomatic
			}
			c := fn.Cyclomatic
			switch {
			case float64(c) < half:
				s.Low++
			case c < t.Threshold:
				s.Moderate++
			case c < 2*t.Threshold:
				s.High++
			default:
				s.VeryHigh++
			}
		}
	}
	if len(files) > 0 {
		s.AverageMI = miSum / float64(len(files))
	}
	return s
}
