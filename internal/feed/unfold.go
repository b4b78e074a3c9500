package feed

import "strings"

// UnfoldLines splits raw feed text into logical lines, joining folded
// continuations. A physical line beginning with a single space or tab
// continues the previous logical line with that first character
// stripped. CRLF and LF endings are both accepted.
//
// A continuation with no preceding logical line has nothing to attach
// to and is dropped. Trailing whitespace of each logical line is
// trimmed.
func UnfoldLines(raw string) []string {
	if raw == "" {
		return nil
	}

	physical := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(physical))

	for _, line := range physical {
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if len(out) == 0 {
				// Orphan continuation at the top of the feed.
				continue
			}
			out[len(out)-1] += line[1:]
			continue
		}
		out = append(out, line)
	}

	for i, line := range out {
		out[i] = strings.TrimRight(line, " \t\r")
	}

	// Drop logical lines that ended up empty.
	trimmed := out[:0]
	for _, line := range out {
		if line != "" {
			trimmed = append(trimmed, line)
		}
	}
	return trimmed
}
