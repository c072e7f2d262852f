package sourcemap

import (
	"strconv"
	"strings"
)

// markDelim brackets an inline line marker. Generated text never contains it.
const markDelim = "\x00"

// Marker returns the inline token a generator writes in front of the text
// that came from source line nuLine.
func Marker(nuLine int) string {
	return markDelim + strconv.Itoa(nuLine) + markDelim
}

// Extract strips the markers from text and returns the clean text with one
// mapping per marked output line. The first marker on a line wins.
func Extract(text string) (string, []Mapping) {
	if !strings.Contains(text, markDelim) {
		return text, nil
	}
	m := &SourceMap{}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		first := 0
		for {
			start := strings.Index(l, markDelim)
			if start < 0 {
				break
			}
			end := strings.Index(l[start+1:], markDelim)
			if end < 0 {
				break
			}
			end += start + 1
			if n, err := strconv.Atoi(l[start+1 : end]); err == nil && first == 0 {
				first = n
			}
			l = l[:start] + l[end+1:]
		}
		lines[i] = l
		m.Add(i+1, first)
	}
	return strings.Join(lines, "\n"), m.Mappings
}
