package extract

import "strings"

// logicalLine is one Python statement after joining continuation lines and
// removing comments. String literals are kept intact.
type logicalLine struct {
	text    string
	line    int
	endLine int
	indent  int
}

// splitLogical joins backslash and bracket continuations, drops comments
// and splits top-level semicolons. Multi-line strings stay inside the
// statement that opened them.
func splitLogical(src string) []logicalLine {
	var (
		out       []logicalLine
		b         strings.Builder
		depth     int
		quote     string
		lineNo    = 1
		start     = 1
		indent    = 0
		atStart   = true
		inComment bool
	)

	flush := func(end int) {
		text := strings.TrimSpace(b.String())
		b.Reset()
		if text != "" {
			out = append(out, logicalLine{text: text, line: start, endLine: end, indent: indent})
		}
		depth = 0
		atStart = true
		indent = 0
	}

	for i := 0; i < len(src); i++ {
		ch := src[i]

		if inComment {
			if ch != '\n' {
				continue
			}
			inComment = false
		}

		if quote != "" {
			switch {
			case ch == '\\' && i+1 < len(src):
				b.WriteByte(ch)
				b.WriteByte(src[i+1])
				if src[i+1] == '\n' {
					lineNo++
				}
				i++
			case strings.HasPrefix(src[i:], quote):
				b.WriteString(quote)
				i += len(quote) - 1
				quote = ""
			case ch == '\n':
				lineNo++
				if len(quote) == 1 {
					// Unterminated single-line string: recover at end of line.
					quote = ""
					flush(lineNo - 1)
					start = lineNo
				} else {
					b.WriteByte(ch)
				}
			default:
				b.WriteByte(ch)
			}
			continue
		}

		if atStart {
			switch ch {
			case ' ':
				indent++
				continue
			case '\t':
				indent = (indent/8 + 1) * 8
				continue
			case '\r':
				continue
			case '\n':
				lineNo++
				indent = 0
				continue
			}
			atStart = false
			start = lineNo
		}

		switch ch {
		case '#':
			inComment = true
		case '"', '\'':
			if strings.HasPrefix(src[i:], strings.Repeat(string(ch), 3)) {
				quote = strings.Repeat(string(ch), 3)
				i += 2
			} else {
				quote = string(ch)
			}
			b.WriteString(quote)
		case '\\':
			if i+1 < len(src) && src[i+1] == '\n' {
				b.WriteByte(' ')
				lineNo++
				i++
			} else if i+2 < len(src) && src[i+1] == '\r' && src[i+2] == '\n' {
				b.WriteByte(' ')
				lineNo++
				i += 2
			} else {
				b.WriteByte(ch)
			}
		case '(', '[', '{':
			depth++
			b.WriteByte(ch)
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
			b.WriteByte(ch)
		case ';':
			if depth == 0 {
				keep := indent
				flush(lineNo)
				indent = keep
				atStart = false
				start = lineNo
			} else {
				b.WriteByte(ch)
			}
		case '\r':
		case '\n':
			lineNo++
			if depth == 0 {
				flush(lineNo - 1)
			} else {
				b.WriteByte(' ')
			}
		default:
			b.WriteByte(ch)
		}
	}
	flush(lineNo)
	return out
}

// codeOnly replaces string literal contents with empty strings so keyword
// counting ignores text inside strings.
func codeOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '"' && ch != '\'' {
			b.WriteByte(ch)
			continue
		}
		q := string(ch)
		if strings.HasPrefix(s[i:], strings.Repeat(q, 3)) {
			q = strings.Repeat(q, 3)
		}
		end := -1
		for j := i + len(q); j < len(s); j++ {
			if s[j] == '\\' {
				j++
				continue
			}
			if strings.HasPrefix(s[j:], q) {
				end = j
				break
			}
		}
		b.WriteString(`""`)
		if end < 0 {
			break
		}
		i = end + len(q) - 1
	}
	return b.String()
}

// splitTopLevel splits s on commas outside brackets.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		last  int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
