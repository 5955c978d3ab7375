// Package complexity aggregates per-function complexity into file metrics,
// the maintainability index and hotspot reports.
package complexity

// FunctionComplexity contains complexity metrics for a single function or method.
type FunctionComplexity struct {
	// Name is the function/method name, "<anonymous>" when it has none
	Name string `json:"name"`

	// StartLine is the 1-based line where the function starts
	StartLine int `json:"startLine"`

	// EndLine is the 1-based line where the function ends
	EndLine int `json:"endLine"`

	// Cyclomatic is the number of decision points + 1
	Cyclomatic int `json:"cyclomatic"`

	// Params is the number of declared parameters
	Params int `json:"params"`

	// MaxNesting is the deepest nesting of control-flow blocks
	MaxNesting int `json:"maxNesting"`
}

// Lines returns the number of lines the function spans.
func (f FunctionComplexity) Lines() int {
	if f.EndLine < f.StartLine {
		return 0
	}
	return f.EndLine - f.StartLine + 1
}

// FileComplexity contains complexity metrics for an entire file.
type FileComplexity struct {
	Path     string `json:"path"`
	Language string `json:"language"`

	// Functions contains complexity for each function/method
	Functions []FunctionComplexity `json:"functions"`

	// Total is the sum of function cyclomatic complexities, 1 for a file
	// without functions
	Total int `json:"total"`

	Average       float64 `json:"average"`
	Max           int     `json:"max"`
	FunctionCount int     `json:"functionCount"`

	// LinesOfCode counts non-blank, non-comment lines
	LinesOfCode int `json:"linesOfCode"`

	// MaintainabilityIndex is within [0,100]
	MaintainabilityIndex float64 `json:"maintainabilityIndex"`
}

// Aggregate computes Total, Average, Max, FunctionCount and the
// maintainability index from Functions and LinesOfCode.
func (fc *FileComplexity) Aggregate() {
	fc.FunctionCount = len(fc.Functions)
	fc.Total, fc.Max = 0, 0
	for _, f := range fc.Functions {
		fc.Total += f.Cyclomatic
		if f.Cyclomatic > fc.Max {
			fc.Max = f.Cyclomatic
		}
	}
	if fc.FunctionCount == 0 {
		fc.Total = 1
		fc.Average = 1
	} else {
		fc.Average = float64(fc.Total) / float64(fc.FunctionCount)
	}
	fc.MaintainabilityIndex = MaintainabilityIndex(fc.Average, fc.LinesOfCode)
}
