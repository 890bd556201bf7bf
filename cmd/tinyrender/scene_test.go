package main

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/models"
	"github.com/taigrr/tinyrender/pkg/render"
)

// A floor with a smaller quad floating above it, both facing +y.
const testOBJ = `v -1 0 1
v 1 0 1
v 1 0 -1
v -1 0 -1
v -0.3 0.5 0.3
v 0.3 0.5 0.3
v 0.3 0.5 -0.3
v -0.3 0.5 -0.3
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 1 0
f 1/1/1 2/2/1 3/3/1 4/4/1
f 5/1/1 6/2/1 7/3/1 8/4/1
`

func testScene(t *testing.T, m renderMode) *scene {
	t.Helper()
	mesh, err := models.ReadOBJ(strings.NewReader(testOBJ), "test")
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	sc := newScene(mesh, render.Maps{}, m)
	sc.lighting.Dir = math3d.V3(0, 1, 0)
	return sc
}

func TestParseMode(t *testing.T) {
	for _, m := range modes {
		got, err := parseMode(string(m))
		if err != nil || got != m {
			t.Errorf("parseMode(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := parseMode("raytrace"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestParseVec3(t *testing.T) {
	tests := []struct {
		in      string
		want    math3d.Vec3
		wantErr bool
	}{
		{"1,2,3", math3d.V3(1, 2, 3), false},
		{"-0.5,1e-3,0", math3d.V3(-0.5, 0.001, 0), false},
		{"1,2", math3d.Vec3{}, true},
		{"a,b,c", math3d.Vec3{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseVec3(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	c, err := parseColor("30,30,40")
	if err != nil || c != render.RGB(30, 30, 40) {
		t.Errorf("parseColor = %v, %v", c, err)
	}
	if _, err := parseColor("30,30"); err == nil {
		t.Error("expected error for two channels")
	}
}

func TestParseDepthWrite(t *testing.T) {
	if p, err := parseDepthWrite("keep"); err != nil || p != render.DepthWriteOnKeep {
		t.Errorf("keep = %v, %v", p, err)
	}
	if p, err := parseDepthWrite("before"); err != nil || p != render.DepthWriteBeforeFragment {
		t.Errorf("before = %v, %v", p, err)
	}
	if _, err := parseDepthWrite("never"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestParseSampling(t *testing.T) {
	if f, err := parseFilter("bilinear"); err != nil || f != render.FilterBilinear {
		t.Errorf("bilinear = %v, %v", f, err)
	}
	if f, err := parseFilter("nearest"); err != nil || f != render.FilterNearest {
		t.Errorf("nearest = %v, %v", f, err)
	}
	if _, err := parseFilter("trilinear"); err == nil {
		t.Error("expected error for unknown filter")
	}
	if w, err := parseWrap("clamp"); err != nil || w != render.WrapClamp {
		t.Errorf("clamp = %v, %v", w, err)
	}
	if w, err := parseWrap("repeat"); err != nil || w != render.WrapRepeat {
		t.Errorf("repeat = %v, %v", w, err)
	}
	if _, err := parseWrap("mirror"); err == nil {
		t.Error("expected error for unknown wrap mode")
	}
}

func TestSceneCheckerDiffuse(t *testing.T) {
	const size = 64
	maps := render.Maps{Diffuse: render.NewCheckerTexture(checkerSize, checkerSize, 64, render.ColorWhite, render.ColorGray)}
	maps.SetSampling(render.FilterBilinear, render.WrapClamp)

	sc := testScene(t, modeGouraud)
	sc.maps = maps
	cam := render.NewCamera(math3d.V3(0, 3, 3), math3d.V3(0, 0, 0), math3d.Up())
	fb := render.NewFramebuffer(size, size)
	if _, err := sc.draw(cam, fb, render.NewDepthBuffer(size, size)); err != nil {
		t.Fatalf("draw: %v", err)
	}

	colors := map[render.Color]bool{}
	for _, p := range fb.Pixels {
		if p != sc.background {
			colors[p] = true
		}
	}
	if len(colors) < 2 {
		t.Errorf("checker diffuse drew %d distinct colors, want at least 2", len(colors))
	}
}

func TestOrbitRoundTrip(t *testing.T) {
	home := math3d.V3(1, 1, 3)
	o := newOrbit(30, home)
	if got := o.Offset(); !got.ApproxEqual(home, 1e-9) {
		t.Errorf("Offset = %v, want %v", got, home)
	}

	o.Rotate(math.Pi/2, 10)
	o.Zoom(100)
	if o.Pitch.Target != maxPitch || o.Dist.Target != maxDist {
		t.Errorf("targets not clamped: pitch %v dist %v", o.Pitch.Target, o.Dist.Target)
	}

	for range 300 {
		o.Update()
	}
	if math.Abs(o.Dist.Position-maxDist) > 1e-3 || math.Abs(o.Pitch.Position-maxPitch) > 1e-3 {
		t.Errorf("spring did not settle: pitch %v dist %v", o.Pitch.Position, o.Dist.Position)
	}

	o.Reset()
	if got := o.Offset(); !got.ApproxEqual(home, 1e-9) {
		t.Errorf("after Reset Offset = %v, want %v", got, home)
	}
}

func TestLightUp(t *testing.T) {
	if got := lightUp(math3d.V3(0, 1, 0)); got != math3d.V3(0, 0, -1) {
		t.Errorf("overhead light up = %v", got)
	}
	if got := lightUp(math3d.V3(1, 1, 1).Normalize()); got != math3d.Up() {
		t.Errorf("oblique light up = %v", got)
	}
}

func TestSceneDrawModes(t *testing.T) {
	const size = 64
	for _, m := range modes {
		t.Run(string(m), func(t *testing.T) {
			sc := testScene(t, m)
			cam := render.NewCamera(math3d.V3(0, 3, 3), math3d.V3(0, 0, 0), math3d.Up())
			fb := render.NewFramebuffer(size, size)
			depth := render.NewDepthBuffer(size, size)

			sm, err := sc.draw(cam, fb, depth)
			if err != nil {
				t.Fatalf("draw: %v", err)
			}
			if (sm != nil) != (m == modeShadow) {
				t.Errorf("shadow map returned = %v", sm != nil)
			}

			lit := 0
			for _, p := range fb.Pixels {
				if p != sc.background {
					lit++
				}
			}
			if lit == 0 {
				t.Error("nothing drawn")
			}
		})
	}
}

func TestSceneShadowDarkensFloor(t *testing.T) {
	const size = 64
	cam := render.NewCamera(math3d.V3(0, 3, 3), math3d.V3(0, 0, 0), math3d.Up())
	cam.SetProjection(0)

	draw := func(m renderMode) *render.Framebuffer {
		sc := testScene(t, m)
		fb := render.NewFramebuffer(size, size)
		if _, err := sc.draw(cam, fb, render.NewDepthBuffer(size, size)); err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		return fb
	}
	plain, shadowed := draw(modePhong), draw(modeShadow)

	// Project a floor point just outside the occluder and one under it.
	frame, err := cam.Frame()
	if err != nil {
		t.Fatal(err)
	}
	px := func(p math3d.Vec3) (int, int) {
		s, _, err := frame.Project(p)
		if err != nil {
			t.Fatal(err)
		}
		return int(math.Round(s.X)), int(math.Round(s.Y))
	}

	// From the eye at 45 degrees the occluder hides floor z in
	// [-0.8, -0.2], so z = 0.2 is in shadow yet visible.
	lx, ly := px(math3d.V3(0, 0, 0.6))
	sx, sy := px(math3d.V3(0, 0, 0.2))

	if got := plain.GetPixel(lx, ly); got.R != 255 {
		t.Errorf("phong lit floor = %v, want 255", got)
	}
	if got := plain.GetPixel(sx, sy); got.R != 255 {
		t.Errorf("phong floor under occluder = %v, want 255", got)
	}
	if got := shadowed.GetPixel(lx, ly); got.R != 255 {
		t.Errorf("shadow lit floor = %v, want 255", got)
	}
	if got := shadowed.GetPixel(sx, sy); got.R < 100 || got.R > 130 {
		t.Errorf("shadowed floor = %v, want about 113", got)
	}
}

func TestRenderImage(t *testing.T) {
	dir := t.TempDir()
	sc := testScene(t, modeShadow)
	cam := render.NewCamera(math3d.V3(0, 3, 3), math3d.V3(0, 0, 0), math3d.Up())

	out := filepath.Join(dir, "out.png")
	shadow := filepath.Join(dir, "shadow.bmp")
	if err := renderImage(sc, cam, 32, 32, out, shadow); err != nil {
		t.Fatalf("renderImage: %v", err)
	}
	for _, p := range []string{out, shadow} {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Errorf("%s not written: %v", p, err)
		}
	}

	if err := renderImage(sc, cam, 0, 32, out, ""); err == nil {
		t.Error("expected error for empty image")
	}
}
