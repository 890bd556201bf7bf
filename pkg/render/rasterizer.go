package render

import (
	"fmt"
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// DepthWritePolicy controls when the rasterizer stores a fragment's depth.
type DepthWritePolicy int

const (
	// DepthWriteBeforeFragment stores depth as soon as the depth test
	// passes, before the fragment stage runs. Discarded fragments still
	// occlude whatever is drawn after them.
	DepthWriteBeforeFragment DepthWritePolicy = iota

	// DepthWriteOnKeep stores depth only for fragments that were not
	// discarded.
	DepthWriteOnKeep
)

func (p DepthWritePolicy) String() string {
	switch p {
	case DepthWriteBeforeFragment:
		return "before-fragment"
	case DepthWriteOnKeep:
		return "on-keep"
	default:
		return fmt.Sprintf("DepthWritePolicy(%d)", int(p))
	}
}

// Stats counts what happened to the triangles of a draw call.
type Stats struct {
	Triangles int // Triangles submitted
	Culled    int // Back-facing or degenerate triangles rejected
	Fragments int // Pixels that passed the depth test
	Discarded int // Fragments the shader discarded
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Triangles += o.Triangles
	s.Culled += o.Culled
	s.Fragments += o.Fragments
	s.Discarded += o.Discarded
}

// Rasterizer fills screen-space triangles. The zero value writes depth
// before the fragment stage.
type Rasterizer struct {
	DepthWrite DepthWritePolicy
}

// Barycentric returns the weights (u, v, w) of a point p relative to the
// triangle (a, b, c), given ab = b-a, ac = c-a and ap = p-a. The weights
// sum to 1, and a negative weight means p lies outside the edge opposite
// that vertex. A zero-area triangle yields (-1, 1, 1).
func Barycentric(ab, ac, ap math3d.Vec2) math3d.Vec3 {
	u := math3d.V3(ac.X, ab.X, -ap.X).Cross(math3d.V3(ac.Y, ab.Y, -ap.Y))
	if math.Abs(u.Z) < math3d.Epsilon {
		return math3d.V3(-1, 1, 1)
	}
	return math3d.V3(1-(u.X+u.Y)/u.Z, u.Y/u.Z, u.X/u.Z)
}

// DrawTriangle rasterizes the screen-space triangle pts into target.
//
// Triangles that are wound clockwise or have zero area are rejected
// before any per-pixel work. Every integer pixel inside the clamped
// bounding box with non-negative barycentric weights whose interpolated z
// is strictly greater than the stored depth is handed to sh.Fragment.
//
// depth must have the same dimensions as target.
func (r Rasterizer) DrawTriangle(pts [3]math3d.Vec3, sh Shader, target Target, depth *DepthBuffer) Stats {
	stats := Stats{Triangles: 1}

	width, height := target.Size()
	if depth.Width != width || depth.Height != height {
		panic(fmt.Sprintf("render: depth buffer %dx%d does not match target %dx%d",
			depth.Width, depth.Height, width, height))
	}

	a, b, c := pts[0], pts[1], pts[2]
	ab := b.Sub(a)
	ac := c.Sub(a)

	// Also catches NaN coordinates.
	if !(ab.Cross(ac).Z > 0) {
		stats.Culled = 1
		return stats
	}
	if width == 0 || height == 0 {
		return stats
	}

	lo := a.Min(b).Min(c)
	hi := a.Max(b).Max(c)
	if lo.X > float64(width-1) || lo.Y > float64(height-1) || hi.X < 0 || hi.Y < 0 {
		return stats
	}
	// Clamp before converting so far off-screen coordinates cannot overflow int.
	minX := int(math.Max(math.Floor(lo.X), 0))
	minY := int(math.Max(math.Floor(lo.Y), 0))
	maxX := int(math.Min(math.Ceil(hi.X), float64(width-1)))
	maxY := int(math.Min(math.Ceil(hi.Y), float64(height-1)))

	ab2, ac2 := ab.XY(), ac.XY()
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bar := Barycentric(ab2, ac2, math3d.V2(float64(x)-a.X, float64(y)-a.Y))
			if bar.X < 0 || bar.Y < 0 || bar.Z < 0 {
				continue
			}

			z := a.Z*bar.X + b.Z*bar.Y + c.Z*bar.Z
			idx := y*width + x
			if z <= depth.Values[idx] {
				continue
			}
			if r.DepthWrite == DepthWriteBeforeFragment {
				depth.Values[idx] = z
			}
			stats.Fragments++

			col, discard := sh.Fragment(bar)
			if discard {
				stats.Discarded++
				continue
			}
			if r.DepthWrite == DepthWriteOnKeep {
				depth.Values[idx] = z
			}
			target.SetPixel(x, y, col)
		}
	}
	return stats
}
