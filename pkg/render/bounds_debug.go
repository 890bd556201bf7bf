//go:build debug

package render

import "fmt"

// checkIndex panics when (x, y) lies outside a w×h grid.
func checkIndex(what string, x, y, w, h int) (cx, cy int, ok bool) {
	if x < 0 || x >= w || y < 0 || y >= h {
		panic(fmt.Sprintf("render: %s index (%d, %d) out of range %dx%d", what, x, y, w, h))
	}
	return x, y, true
}
