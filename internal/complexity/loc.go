package complexity

import (
	"bytes"
	"strings"
)

// CommentStyle selects the comment syntax CountLOC recognizes.
type CommentStyle int

const (
	// CStyle is // line and /* */ block comments.
	CStyle CommentStyle = iota
	// HashStyle is # line comments; standalone triple-quoted strings
	// (docstrings) are treated as comments.
	HashStyle
)

// CountLOC counts non-blank, non-comment lines. Lines have no length
// limit.
func CountLOC(source []byte, style CommentStyle) int {
	count := 0
	inBlock := false
	blockEnd := ""
	for _, raw := range bytes.Split(source, []byte("\n")) {
		line := strings.TrimSpace(string(raw))
		if inBlock {
			idx := strings.Index(line, blockEnd)
			if idx < 0 {
				continue
			}
			inBlock = false
			line = strings.TrimSpace(line[idx+len(blockEnd):])
		}
		if line == "" {
			continue
		}

		switch style {
		case CStyle:
			code, open := stripCBlock(line)
			if open {
				inBlock, blockEnd = true, "*/"
			}
			if code != "" && !strings.HasPrefix(code, "//") {
				count++
			}
		case HashStyle:
			if strings.HasPrefix(line, "#") {
				continue
			}
			if q, ok := docstringOpen(line); ok {
				rest := line[3:]
				if !strings.Contains(rest, q) {
					inBlock, blockEnd = true, q
				}
				continue
			}
			count++
		}
	}
	return count
}

// stripCBlock removes /* */ comments from one line. It reports whether an
// unterminated block comment remains open at the end of the line.
func stripCBlock(line string) (string, bool) {
	var b strings.Builder
	for {
		start := strings.Index(line, "/*")
		if start < 0 {
			b.WriteString(line)
			return strings.TrimSpace(b.String()), false
		}
		b.WriteString(line[:start])
		end := strings.Index(line[start+2:], "*/")
		if end < 0 {
			return strings.TrimSpace(b.String()), true
		}
		line = line[start+2+end+2:]
	}
}

func docstringOpen(line string) (string, bool) {
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(line, q) {
			return q, true
		}
	}
	return "", false
}
