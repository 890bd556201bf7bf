package render

import "math"

// DepthBuffer stores one depth value per pixel. Larger values are nearer
// the camera.
type DepthBuffer struct {
	Width  int
	Height int
	Values []float64 // Row-major, bottom-left origin
}

// NewDepthBuffer creates a cleared depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
	d.Clear()
	return d
}

// Size returns the buffer dimensions.
func (d *DepthBuffer) Size() (width, height int) {
	return d.Width, d.Height
}

// Clear resets every value to the farthest representable depth.
func (d *DepthBuffer) Clear() {
	n := len(d.Values)
	if n == 0 {
		return
	}
	d.Values[0] = -math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(d.Values[i:], d.Values[:i])
	}
}

// At returns the depth at (x, y).
func (d *DepthBuffer) At(x, y int) float64 {
	x, y, ok := checkIndex("depth", x, y, d.Width, d.Height)
	if !ok {
		return -math.MaxFloat64
	}
	return d.Values[y*d.Width+x]
}

// Set stores z at (x, y).
func (d *DepthBuffer) Set(x, y int, z float64) {
	if x, y, ok := checkIndex("depth", x, y, d.Width, d.Height); ok {
		d.Values[y*d.Width+x] = z
	}
}

// Contains reports whether (x, y) is inside the buffer.
func (d *DepthBuffer) Contains(x, y int) bool {
	return x >= 0 && x < d.Width && y >= 0 && y < d.Height
}

// Grayscale renders the buffer into fb, mapping depth 0 to black and
// maxDepth to white. Pixels never written stay black.
func (d *DepthBuffer) Grayscale(fb *Framebuffer, maxDepth float64) {
	for i, z := range d.Values {
		if i >= len(fb.Pixels) {
			break
		}
		if z == -math.MaxFloat64 {
			fb.Pixels[i] = ColorBlack
			continue
		}
		fb.Pixels[i] = MultiplyColor(ColorWhite, z/maxDepth)
	}
}
