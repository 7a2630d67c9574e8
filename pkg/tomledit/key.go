package tomledit

import (
	"regexp"
	"strings"
)

var bareKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var keyEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// renderKey writes a dotted key, quoting the parts that are not bare keys.
func renderKey(parts []string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		if bareKeyPattern.MatchString(p) {
			out[i] = p
			continue
		}
		out[i] = `"` + keyEscaper.Replace(p) + `"`
	}
	return strings.Join(out, ".")
}

func equalPath(a, b []string) bool {
	return len(a) == len(b) && hasPrefix(a, b)
}

func hasPrefix(path, prefix []string) bool {
	if len(path) < len(prefix) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

func clonePath(path []string) []string {
	return append([]string(nil), path...)
}

// pathKey joins a path for use as a map key.
func pathKey(path []string) string {
	return strings.Join(path, "\x00")
}

func splitPathKey(key string) []string {
	return strings.Split(key, "\x00")
}
