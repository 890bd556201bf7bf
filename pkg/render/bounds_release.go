//go:build !debug

package render

// checkIndex clamps (x, y) to the nearest cell of a w×h grid. ok is false
// only when the grid is empty.
// Build with -tags debug to turn out-of-range access into a panic.
func checkIndex(_ string, x, y, w, h int) (cx, cy int, ok bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return min(max(x, 0), w-1), min(max(y, 0), h-1), true
}
