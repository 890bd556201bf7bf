package render

import (
	"math"
	"testing"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// constShader colors every fragment the same and records the weights it
// was called with.
type constShader struct {
	c       Color
	discard bool
	calls   int
	invalid int
}

func (s *constShader) Vertex(int, int) (math3d.Vec3, error) { return math3d.Vec3{}, nil }

func (s *constShader) Fragment(bar math3d.Vec3) (Color, bool) {
	s.calls++
	if bar.X < 0 || bar.Y < 0 || bar.Z < 0 || math.Abs(bar.Sum()-1) > 1e-9 {
		s.invalid++
	}
	return s.c, s.discard
}

func approxVec3(a, b math3d.Vec3, eps float64) bool {
	return a.ApproxEqual(b, eps)
}

func TestBarycentric(t *testing.T) {
	triangles := []struct {
		name    string
		a, b, c math3d.Vec2
	}{
		{"unit", math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0, 1)},
		{"scalene", math3d.V2(3, 2), math3d.V2(17, 5), math3d.V2(6, 14)},
		{"thin", math3d.V2(0, 0), math3d.V2(100, 1), math3d.V2(50, 2)},
	}

	for _, tc := range triangles {
		t.Run(tc.name, func(t *testing.T) {
			ab, ac := tc.b.Sub(tc.a), tc.c.Sub(tc.a)
			at := func(p math3d.Vec2) math3d.Vec3 { return Barycentric(ab, ac, p.Sub(tc.a)) }

			if got := at(tc.a); got != math3d.V3(1, 0, 0) {
				t.Errorf("weights at a = %v, want (1, 0, 0)", got)
			}
			if got := at(tc.b); got != math3d.V3(0, 1, 0) {
				t.Errorf("weights at b = %v, want (0, 1, 0)", got)
			}
			if got := at(tc.c); got != math3d.V3(0, 0, 1) {
				t.Errorf("weights at c = %v, want (0, 0, 1)", got)
			}

			centroid := tc.a.Add(tc.b).Add(tc.c).Scale(1.0 / 3)
			if got := at(centroid); !approxVec3(got, math3d.V3(1.0/3, 1.0/3, 1.0/3), 1e-9) {
				t.Errorf("weights at centroid = %v, want thirds", got)
			}

			// Interior: convex combinations with all weights positive.
			for _, w := range []math3d.Vec3{
				math3d.V3(0.2, 0.3, 0.5),
				math3d.V3(0.01, 0.01, 0.98),
				math3d.V3(0.7, 0.2, 0.1),
			} {
				p := tc.a.Scale(w.X).Add(tc.b.Scale(w.Y)).Add(tc.c.Scale(w.Z))
				got := at(p)
				if got.X <= 0 || got.Y <= 0 || got.Z <= 0 {
					t.Errorf("interior point %v has weights %v", p, got)
				}
				if !approxVec3(got, w, 1e-9) {
					t.Errorf("weights at %v = %v, want %v", p, got, w)
				}
			}

			// Exterior: one weight negative, sum still 1.
			for _, w := range []math3d.Vec3{
				math3d.V3(-0.5, 0.75, 0.75),
				math3d.V3(1.2, -0.1, -0.1),
				math3d.V3(0.4, 0.8, -0.2),
			} {
				p := tc.a.Scale(w.X).Add(tc.b.Scale(w.Y)).Add(tc.c.Scale(w.Z))
				got := at(p)
				if got.X >= 0 && got.Y >= 0 && got.Z >= 0 {
					t.Errorf("exterior point %v has weights %v", p, got)
				}
				if math.Abs(got.Sum()-1) > 1e-9 {
					t.Errorf("weights at %v sum to %v", p, got.Sum())
				}
			}
		})
	}
}

func TestBarycentricDegenerate(t *testing.T) {
	got := Barycentric(math3d.V2(1, 1), math3d.V2(2, 2), math3d.V2(0.5, 0.5))
	if got.X >= 0 {
		t.Errorf("degenerate triangle weights = %v, want a negative weight", got)
	}
	for _, v := range []float64{got.X, got.Y, got.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("degenerate triangle weights = %v", got)
		}
	}
}

func TestDrawTriangleCoversExactPixels(t *testing.T) {
	const size = 20
	fb := NewFramebuffer(size, size)
	depth := NewDepthBuffer(size, size)
	sh := &constShader{c: ColorRed}

	pts := [3]math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(10, 0, 0), math3d.V3(0, 10, 0)}
	stats := Rasterizer{}.DrawTriangle(pts, sh, fb, depth)

	drawn := 0
	for y := range size {
		for x := range size {
			inside := x+y <= 10
			got := fb.GetPixel(x, y)
			if inside && got != ColorRed {
				t.Errorf("pixel (%d, %d) = %v, want red", x, y, got)
			}
			if !inside && got != (Color{}) {
				t.Errorf("pixel (%d, %d) = %v, want untouched", x, y, got)
			}
			if got == ColorRed {
				drawn++
			}
		}
	}
	if drawn != 66 {
		t.Errorf("drew %d pixels, want 66", drawn)
	}
	if stats.Fragments != 66 || stats.Culled != 0 || stats.Triangles != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if sh.invalid != 0 {
		t.Errorf("fragment stage saw %d invalid weight sets", sh.invalid)
	}
}

func TestDrawTriangleCulling(t *testing.T) {
	tests := []struct {
		name string
		pts  [3]math3d.Vec3
	}{
		{"clockwise", [3]math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(0, 10, 0), math3d.V3(10, 0, 0)}},
		{"collinear", [3]math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(5, 5, 0), math3d.V3(10, 10, 0)}},
		{"point", [3]math3d.Vec3{math3d.V3(3, 3, 0), math3d.V3(3, 3, 0), math3d.V3(3, 3, 0)}},
		{"nan", [3]math3d.Vec3{math3d.V3(math.NaN(), 0, 0), math3d.V3(10, 0, 0), math3d.V3(0, 10, 0)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(20, 20)
			depth := NewDepthBuffer(20, 20)
			sh := &constShader{c: ColorRed}

			stats := Rasterizer{}.DrawTriangle(tc.pts, sh, fb, depth)
			if stats.Culled != 1 || sh.calls != 0 {
				t.Errorf("stats = %+v, fragment calls = %d, want culled", stats, sh.calls)
			}
			for i, p := range fb.Pixels {
				if p != (Color{}) {
					t.Fatalf("pixel %d written by a culled triangle", i)
				}
			}
		})
	}
}

func TestDrawTriangleClampsToTarget(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	depth := NewDepthBuffer(8, 8)
	sh := &constShader{c: ColorGreen}

	// Much larger than the target in every direction.
	pts := [3]math3d.Vec3{math3d.V3(-50, -50, 1), math3d.V3(100, -50, 1), math3d.V3(-50, 100, 1)}
	stats := Rasterizer{}.DrawTriangle(pts, sh, fb, depth)

	if stats.Fragments != 64 {
		t.Errorf("fragments = %d, want 64", stats.Fragments)
	}
}

func TestDrawTriangleFarOffScreen(t *testing.T) {
	tests := []struct {
		name string
		pts  [3]math3d.Vec3
	}{
		{"right", [3]math3d.Vec3{math3d.V3(1e19, 0, 0), math3d.V3(2e19, 0, 0), math3d.V3(1e19, 1e19, 0)}},
		{"above", [3]math3d.Vec3{math3d.V3(0, 1e19, 0), math3d.V3(1e19, 1e19, 0), math3d.V3(0, 2e19, 0)}},
		{"left", [3]math3d.Vec3{math3d.V3(-2e19, 0, 0), math3d.V3(-1e19, 0, 0), math3d.V3(-2e19, 1e19, 0)}},
		{"below", [3]math3d.Vec3{math3d.V3(0, -2e19, 0), math3d.V3(1e19, -2e19, 0), math3d.V3(0, -1e19, 0)}},
		{"just outside", [3]math3d.Vec3{math3d.V3(8.5, 0, 0), math3d.V3(20, 0, 0), math3d.V3(8.5, 10, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFramebuffer(8, 8)
			depth := NewDepthBuffer(8, 8)
			sh := &constShader{c: ColorRed}

			stats := Rasterizer{}.DrawTriangle(tt.pts, sh, fb, depth)
			if stats.Fragments != 0 || sh.calls != 0 {
				t.Errorf("off-screen triangle produced fragments: %+v", stats)
			}
			if stats.Culled != 0 {
				t.Errorf("triangle culled instead of skipped: %+v", stats)
			}
		})
	}
}

func TestDepthTestIsStrict(t *testing.T) {
	fb := NewFramebuffer(20, 20)
	depth := NewDepthBuffer(20, 20)
	pts := [3]math3d.Vec3{math3d.V3(0, 0, 5), math3d.V3(10, 0, 5), math3d.V3(0, 10, 5)}

	Rasterizer{}.DrawTriangle(pts, &constShader{c: ColorRed}, fb, depth)
	second := &constShader{c: ColorBlue}
	stats := Rasterizer{}.DrawTriangle(pts, second, fb, depth)

	if stats.Fragments != 0 || second.calls != 0 {
		t.Errorf("equal depth passed the test: %+v", stats)
	}
	if fb.GetPixel(1, 1) != ColorRed {
		t.Errorf("pixel overwritten at equal depth")
	}
}

func TestDepthOrderIndependence(t *testing.T) {
	const size = 20
	tris := [][3]math3d.Vec3{
		{math3d.V3(0, 0, 10), math3d.V3(19, 0, 50), math3d.V3(0, 19, 100)},
		{math3d.V3(2, 1, 80), math3d.V3(18, 3, 20), math3d.V3(5, 18, 40)},
		{math3d.V3(1, 1, 60), math3d.V3(17, 2, 60), math3d.V3(3, 17, 60)},
	}

	// Per-pixel maximum over the triangles drawn one at a time.
	want := NewDepthBuffer(size, size)
	for _, tri := range tris {
		single := NewDepthBuffer(size, size)
		Rasterizer{}.DrawTriangle(tri, &constShader{}, NewFramebuffer(size, size), single)
		for i, z := range single.Values {
			want.Values[i] = math.Max(want.Values[i], z)
		}
	}

	perms := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for _, perm := range perms {
		fb := NewFramebuffer(size, size)
		depth := NewDepthBuffer(size, size)
		for _, i := range perm {
			Rasterizer{}.DrawTriangle(tris[i], &constShader{c: ColorWhite}, fb, depth)
		}
		for i := range depth.Values {
			if depth.Values[i] != want.Values[i] {
				t.Fatalf("order %v: depth at pixel %d = %v, want %v", perm, i, depth.Values[i], want.Values[i])
			}
		}
	}
}

func TestDepthWritePolicy(t *testing.T) {
	pts := [3]math3d.Vec3{math3d.V3(0, 0, 7), math3d.V3(10, 0, 7), math3d.V3(0, 10, 7)}

	tests := []struct {
		policy    DepthWritePolicy
		wantDepth float64
	}{
		{DepthWriteBeforeFragment, 7},
		{DepthWriteOnKeep, -math.MaxFloat64},
	}

	for _, tc := range tests {
		t.Run(tc.policy.String(), func(t *testing.T) {
			fb := NewFramebuffer(20, 20)
			depth := NewDepthBuffer(20, 20)
			stats := Rasterizer{DepthWrite: tc.policy}.DrawTriangle(pts, &constShader{c: ColorRed, discard: true}, fb, depth)

			if stats.Discarded != stats.Fragments || stats.Fragments != 66 {
				t.Errorf("stats = %+v, want 66 discarded fragments", stats)
			}
			if got := depth.At(2, 2); got != tc.wantDepth && math.Abs(got-tc.wantDepth) > 1e-9 {
				t.Errorf("depth after discard = %v, want %v", got, tc.wantDepth)
			}
			if fb.GetPixel(2, 2) != (Color{}) {
				t.Error("discarded fragment wrote a color")
			}
		})
	}
}

func TestDrawTriangleDepthSizeMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mismatched depth buffer should panic")
		}
	}()
	pts := [3]math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(10, 0, 0), math3d.V3(0, 10, 0)}
	Rasterizer{}.DrawTriangle(pts, &constShader{}, NewFramebuffer(20, 20), NewDepthBuffer(10, 10))
}

func BenchmarkDrawTriangle(b *testing.B) {
	fb := NewFramebuffer(256, 256)
	depth := NewDepthBuffer(256, 256)
	sh := &constShader{c: ColorWhite}
	pts := [3]math3d.Vec3{math3d.V3(10, 10, 1), math3d.V3(240, 30, 1), math3d.V3(60, 230, 1)}

	for b.Loop() {
		depth.Clear()
		Rasterizer{}.DrawTriangle(pts, sh, fb, depth)
	}
}
