package stimulus

import (
	"fmt"
	"strings"
)

// grid renders a size×size grid with row letters and column numbers. marks
// maps positions to glyphs; other cells show fill.
func grid(size int, marks map[int]string, fill string) []string {
	var header strings.Builder
	header.WriteString("   ")
	for c := range size {
		fmt.Fprintf(&header, "%-2d", c+1)
	}
	lines := []string{strings.TrimRight(header.String(), " ")}
	for r := range size {
		row := []string{string(rune('a' + r)) + " "}
		for c := range size {
			glyph := fill
			if m, ok := marks[r*size+c]; ok {
				glyph = m
			}
			row = append(row, glyph)
		}
		lines = append(lines, strings.Join(row, " "))
	}
	return lines
}

// compassSlots places the peripheral slots on a 3×3 layout around the
// centre: row, column per direction.
var compassSlots = [][2]int{{0, 1}, {0, 2}, {1, 2}, {2, 2}, {2, 1}, {2, 0}, {1, 0}, {0, 0}}

// compass renders center in the middle and a star at the peripheral slot,
// if any.
func compass(center string, slot int) []string {
	const width = 9
	cells := [3][3]string{}
	cells[1][1] = center
	if slot >= 0 && slot < len(compassSlots) {
		rc := compassSlots[slot]
		cells[rc[0]][rc[1]] = "*"
	}
	lines := make([]string, 0, 5)
	for r := range 3 {
		var b strings.Builder
		for c := range 3 {
			b.WriteString(centered(cells[r][c], width))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
		if r < 2 {
			lines = append(lines, "")
		}
	}
	return lines
}

func centered(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

var arrows = []string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}

func compassArrow(slot int) string {
	if slot < 0 || slot >= len(arrows) {
		return "?"
	}
	return arrows[slot]
}

func mask() []string {
	line := strings.Repeat("▓", 27)
	return []string{line, line, line, line, line}
}
