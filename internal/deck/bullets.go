package deck

import "strings"

// MaxBullets caps the quick-note annotations kept on a client card.
const MaxBullets = 5

// NormalizeBullets trims each line, drops blanks, and keeps at most
// MaxBullets lines. Returns "" when nothing survives.
func NormalizeBullets(notes string) string {
	lines := SplitBullets(notes)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// SplitBullets returns the bounded bullet list for display.
func SplitBullets(notes string) []string {
	if notes == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(notes, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == MaxBullets {
			break
		}
	}
	return lines
}
