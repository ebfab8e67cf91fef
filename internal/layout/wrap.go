package layout

import (
	"strings"
	"unicode/utf8"
)

// Metrics measures rendered text widths in millimetres.
type Metrics interface {
	Width(f Font, s string) float64
}

// FixedMetrics treats every rune as Advance millimetres wide, whatever the
// font. It keeps layouts predictable where real glyph metrics are not needed.
type FixedMetrics struct {
	Advance float64
}

// Width implements Metrics.
func (m FixedMetrics) Width(_ Font, s string) float64 {
	return float64(utf8.RuneCountInString(s)) * m.Advance
}

// Wrap breaks text into lines no wider than maxWidth when set in f.
// Newlines are hard breaks; words are packed greedily and a word wider than
// maxWidth gets a line of its own. The result always has at least one line.
func Wrap(text string, maxWidth float64, f Font, m Metrics) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		for _, w := range words[1:] {
			candidate := current + " " + w
			if m.Width(f, candidate) > maxWidth {
				lines = append(lines, current)
				current = w
				continue
			}
			current = candidate
		}
		lines = append(lines, current)
	}
	return lines
}

// breakRunes cuts s into pieces no wider than maxWidth, between any two
// runes. Every piece holds at least one rune.
func breakRunes(s string, maxWidth float64, f Font, m Metrics) []string {
	var (
		lines   []string
		current []rune
	)
	for _, r := range s {
		if len(current) > 0 && m.Width(f, string(append(current, r))) > maxWidth {
			lines = append(lines, string(current))
			current = current[:0]
		}
		current = append(current, r)
	}
	return append(lines, string(current))
}
