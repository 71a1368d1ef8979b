package stimulus

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Compass directions of the peripheral slots, clockwise from north.
var directions = []string{"n", "ne", "e", "se", "s", "sw", "w", "nw"}

// fields splits an answer on whitespace and commas.
func fields(answer string) []string {
	return strings.FieldsFunc(strings.ToLower(answer), func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

// cellName renders a grid position as row letter and column number: "b3".
func cellName(pos, size int) string {
	return fmt.Sprintf("%c%d", 'a'+pos/size, pos%size+1)
}

// parseCell is the inverse of cellName. It returns -1 for anything that is
// not a cell of a size×size grid.
func parseCell(s string, size int) int {
	if len(s) < 2 {
		return -1
	}
	row := int(s[0] - 'a')
	col, err := strconv.Atoi(s[1:])
	if err != nil || row < 0 || row >= size || col < 1 || col > size {
		return -1
	}
	return row*size + col - 1
}

// parseDirection accepts a compass name or a slot number 1-8, returning the
// slot index or -1.
func parseDirection(s string) int {
	for i, d := range directions {
		if s == d {
			return i
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(directions) {
		return n - 1
	}
	return -1
}

// token returns the i-th answer field or "".
func token(toks []string, i int) string {
	if i < len(toks) {
		return toks[i]
	}
	return ""
}
