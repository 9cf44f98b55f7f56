package emit

import (
	"regexp"
	"strings"
)

var regionMarker = regexp.MustCompile(`^//\s*#(?:end)?region`)

// IsRegionMarker reports whether a line is a region start or end marker.
func IsRegionMarker(line string) bool {
	return regionMarker.MatchString(strings.TrimSpace(line))
}

// RemoveRegions deletes every region marker line along with the blank lines
// that follow it. Blank lines before a marker are dropped too when the marker
// is followed only by a closing brace or the end of the text. Other lines are
// kept byte for byte, including the line terminator style.
func RemoveRegions(src string) string {
	suffix := ""

	switch {
	case strings.HasSuffix(src, "\r\n"):
		suffix = "\r\n"
	case strings.HasSuffix(src, "\n"):
		suffix = "\n"
	}

	lines := strings.Split(strings.TrimSuffix(src, suffix), "\n")
	out := make([]string, 0, len(lines))
	removed := false

	for i := 0; i < len(lines); i++ {
		if !IsRegionMarker(lines[i]) {
			out = append(out, lines[i])
			continue
		}

		removed = true

		next := i + 1
		for next < len(lines) && isBlank(lines[next]) {
			next++
		}

		if next == len(lines) || isClosing(lines[next]) {
			for len(out) > 0 && isBlank(out[len(out)-1]) {
				out = out[:len(out)-1]
			}
		}

		i = next - 1
	}

	if !removed {
		return src
	}

	if len(out) == 0 {
		return ""
	}

	return strings.Join(out, "\n") + suffix
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isClosing(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "}")
}
