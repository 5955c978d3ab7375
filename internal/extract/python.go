package extract

import (
	"context"
	"regexp"
	"strings"

	"depscope/internal/complexity"
	"depscope/internal/lang"
)

var (
	pyImportRe   = regexp.MustCompile(`^import\s+(.+)$`)
	pyFromRe     = regexp.MustCompile(`^from\s+(\.*[\w.]*)\s+import\s+(.+)$`)
	pyDefRe      = regexp.MustCompile(`^(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	pyClassRe    = regexp.MustCompile(`^class\s+([A-Za-z_]\w*)`)
	pyConstRe    = regexp.MustCompile(`^([A-Z][A-Z0-9_]*)\s*(?::[^=]*)?=[^=]`)
	pyAllRe      = regexp.MustCompile(`^__all__\s*\+?=\s*(.*)$`)
	pyQuotedRe   = regexp.MustCompile(`['"]([A-Za-z_]\w*)['"]`)
	pyBranchRe   = regexp.MustCompile(`^(?:if|elif|while|for|async\s+for|except)\b`)
	pyBlockRe    = regexp.MustCompile(`^(?:if|elif|else|for|async\s+for|while|try|except|finally|with|async\s+with|match|case)\b`)
	pyIfRe       = regexp.MustCompile(`\bif\b`)
	pyElseRe     = regexp.MustCompile(`\belse\b`)
	pyBoolRe     = regexp.MustCompile(`\b(?:and|or)\b`)
	pyLeadIfRe   = regexp.MustCompile(`^if\b`)
	pyLeadElseRe = regexp.MustCompile(`^else\b`)
)

// Python extracts Python files with a line-oriented scanner. No grammar is
// involved, so any input produces a result.
type Python struct{}

// NewPython creates the Python extractor.
func NewPython() *Python {
	return &Python{}
}

type pyFrame struct {
	idx    int
	indent int
	blocks []int
}

// ExtractSource scans src statement by statement.
func (p *Python) ExtractSource(ctx context.Context, rel string, src []byte) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := newCollector()
	var (
		functions []complexity.FunctionComplexity
		frames    []*pyFrame
		all       []string
		hasAll    bool
		topLevel  []string
	)

	for _, ll := range splitLogical(string(src)) {
		code := codeOnly(ll.text)

		for len(frames) > 0 && frames[len(frames)-1].indent >= ll.indent {
			frames = frames[:len(frames)-1]
		}
		for _, fr := range frames {
			functions[fr.idx].EndLine = ll.endLine
		}

		if ll.indent == 0 {
			if m := pyAllRe.FindStringSubmatch(ll.text); m != nil {
				hasAll = true
				for _, q := range pyQuotedRe.FindAllStringSubmatch(m[1], -1) {
					all = append(all, q[1])
				}
				continue
			}
		}

		switch {
		case pyImportRe.MatchString(code):
			for _, item := range splitTopLevel(pyImportRe.FindStringSubmatch(code)[1]) {
				c.addImport(strings.Fields(item)[0], KindImport, 1, ll.line)
			}
			continue
		case pyFromRe.MatchString(code):
			m := pyFromRe.FindStringSubmatch(code)
			addFromImport(c, m[1], m[2], ll.line)
			continue
		}

		if m := pyDefRe.FindStringSubmatch(code); m != nil {
			if ll.indent == 0 {
				topLevel = append(topLevel, m[1])
			}
			functions = append(functions, complexity.FunctionComplexity{
				Name:       m[1],
				StartLine:  ll.line,
				EndLine:    ll.endLine,
				Cyclomatic: 1,
				Params:     pyParamCount(code),
			})
			fr := &pyFrame{idx: len(functions) - 1, indent: ll.indent}
			frames = append(frames, fr)
			if body := inlineBody(code); body != "" {
				countBranches(&functions[fr.idx], fr, body, ll.indent+1)
			}
			continue
		}

		if ll.indent == 0 {
			if m := pyClassRe.FindStringSubmatch(code); m != nil {
				topLevel = append(topLevel, m[1])
			} else if m := pyConstRe.FindStringSubmatch(code); m != nil {
				c.addExport(m[1])
			}
		}

		if len(frames) > 0 {
			fr := frames[len(frames)-1]
			countBranches(&functions[fr.idx], fr, code, ll.indent)
		}
	}

	if hasAll {
		c.exports = make(map[string]bool)
		for _, name := range all {
			c.addExport(name)
		}
	} else {
		for _, name := range topLevel {
			if !strings.HasPrefix(name, "_") {
				c.addExport(name)
			}
		}
	}

	if functions == nil {
		functions = []complexity.FunctionComplexity{}
	}
	fc := complexity.FileComplexity{
		Path:        rel,
		Language:    string(lang.Python),
		Functions:   functions,
		LinesOfCode: complexity.CountLOC(src, complexity.HashStyle),
	}
	fc.Aggregate()

	return &FileResult{
		Module: ModuleInfo{
			Path:     rel,
			Language: lang.Python,
			Imports:  c.importList(),
			Exports:  c.sortedExports(),
			Size:     int64(len(src)),
			Lines:    countLines(src),
		},
		Complexity: fc,
	}, nil
}

// addFromImport records `from X import a, b`. When X is only dots the
// imported names are sibling modules, so each becomes its own specifier.
func addFromImport(c *collector, module, names string, line int) {
	names = strings.TrimSpace(names)
	names = strings.TrimSuffix(strings.TrimPrefix(names, "("), ")")
	items := splitTopLevel(names)

	if module != "" && strings.Trim(module, ".") == "" {
		for _, item := range items {
			name := strings.Fields(item)[0]
			if name == "*" {
				c.addImport(module, KindImport, 1, line)
				continue
			}
			c.addImport(module+name, KindImport, 1, line)
		}
		return
	}

	c.addImport(module, KindImport, len(items), line)
}

// countBranches adds the decision points and nesting of one statement to fn.
func countBranches(fn *complexity.FunctionComplexity, fr *pyFrame, code string, indent int) {
	for len(fr.blocks) > 0 && fr.blocks[len(fr.blocks)-1] >= indent {
		fr.blocks = fr.blocks[:len(fr.blocks)-1]
	}
	if pyBlockRe.MatchString(code) {
		fr.blocks = append(fr.blocks, indent)
		if len(fr.blocks) > fn.MaxNesting {
			fn.MaxNesting = len(fr.blocks)
		}
	}

	if pyBranchRe.MatchString(code) {
		fn.Cyclomatic++
	}
	ifs := len(pyIfRe.FindAllStringIndex(code, -1))
	if pyLeadIfRe.MatchString(code) {
		ifs--
	}
	elses := len(pyElseRe.FindAllStringIndex(code, -1))
	if pyLeadElseRe.MatchString(code) {
		elses--
	}
	fn.Cyclomatic += min(ifs, elses)
	fn.Cyclomatic += len(pyBoolRe.FindAllStringIndex(code, -1))
}

// pyParamCount counts parameters in a def header, ignoring self/cls and
// the bare * and / separators.
func pyParamCount(code string) int {
	open := strings.Index(code, "(")
	if open < 0 {
		return 0
	}
	depth, end := 0, -1
	for i := open; i < len(code); i++ {
		switch code[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return 0
	}
	count := 0
	for i, p := range splitTopLevel(code[open+1 : end]) {
		name := strings.TrimSpace(strings.SplitN(strings.SplitN(p, ":", 2)[0], "=", 2)[0])
		if name == "*" || name == "/" {
			continue
		}
		if i == 0 && (name == "self" || name == "cls") {
			continue
		}
		count++
	}
	return count
}

// inlineBody returns the statement after the header colon of a one-line
// def, e.g. `def f(x): return x`.
func inlineBody(code string) string {
	depth := 0
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return strings.TrimSpace(code[i+1:])
			}
		}
	}
	return ""
}
