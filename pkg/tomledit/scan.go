package tomledit

import "strings"

// statement is one line-aligned slice of the source. Trivia statements hold
// blank or comment-only lines; all other statements are a table header or a
// key/value pair, including any trailing comment and the terminating newline.
type statement struct {
	text   string
	trivia bool
}

// split cuts src into statements without losing a single byte:
// concatenating the text of every statement yields src again.
func split(src string) []statement {
	var out []statement
	for i := 0; i < len(src); {
		j := i
		for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
			j++
		}
		if j == len(src) || src[j] == '\n' || src[j] == '\r' || src[j] == '#' {
			end := lineEnd(src, j)
			out = append(out, statement{text: src[i:end], trivia: true})
			i = end
			continue
		}
		end := scanStatement(src, j)
		out = append(out, statement{text: src[i:end]})
		i = end
	}
	return out
}

// lineEnd returns the offset just past the next newline at or after i.
func lineEnd(src string, i int) int {
	if k := strings.IndexByte(src[i:], '\n'); k >= 0 {
		return i + k + 1
	}
	return len(src)
}

// scanStatement finds the end of the statement starting at i. A statement
// ends at the first newline that is outside of strings, arrays and inline
// tables.
func scanStatement(src string, i int) int {
	depth := 0
	for i < len(src) {
		switch c := src[i]; c {
		case '#':
			i = lineEnd(src, i)
			if depth == 0 {
				return i
			}
		case '\n':
			i++
			if depth == 0 {
				return i
			}
		case '"', '\'':
			i = skipString(src, i)
		case '[', '{':
			depth++
			i++
		case ']', '}':
			depth--
			i++
		default:
			i++
		}
	}
	return i
}

// skipString returns the offset just past the string literal opening at i.
func skipString(src string, i int) int {
	q := src[i]
	delim := strings.Repeat(string(q), 3)
	if strings.HasPrefix(src[i:], delim) {
		j := i + 3
		for j < len(src) {
			if q == '"' && src[j] == '\\' {
				j += 2
				continue
			}
			if strings.HasPrefix(src[j:], delim) {
				j += 3
				// Up to two quotes may sit directly before the closing delimiter.
				for k := 0; k < 2 && j < len(src) && src[j] == q; k++ {
					j++
				}
				return j
			}
			j++
		}
		return len(src)
	}

	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			if q == '"' {
				j += 2
				continue
			}
		case q:
			return j + 1
		case '\n':
			return j
		}
		j++
	}
	return len(src)
}
