package render

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

const shadowSize = 64

// shadowScene is a floor at y=0 with a smaller square floating above its
// center, lit from straight above.
func shadowScene(t *testing.T) (mesh *triMesh, eye, light *Camera) {
	t.Helper()
	mesh = merge(quadXZ(0.8, 0), quadXZ(0.3, 0.5))

	light = NewCamera(math3d.V3(0, 5, 0), math3d.Zero3(), math3d.V3(0, 0, -1))
	light.SetProjection(0)
	light.SetViewport(0, 0, shadowSize, shadowSize)

	eye = NewCamera(math3d.V3(0, 3, 3), math3d.Zero3(), math3d.Up())
	eye.SetViewport(0, 0, shadowSize, shadowSize)
	return mesh, eye, light
}

var overheadLighting = Lighting{
	Dir:       math3d.V3(0, 1, 0),
	Ambient:   20,
	Diffuse:   1.2,
	Specular:  0,
	Shininess: 10,
}

func pixelOf(t *testing.T, cam *Camera, p math3d.Vec3) (int, int) {
	t.Helper()
	frame, err := cam.Frame()
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	s, _, err := frame.Project(p)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	return int(math.Round(s.X)), int(math.Round(s.Y))
}

func renderShadowScene(t *testing.T, bias float64) (*Framebuffer, *ShadowMap, *Camera) {
	t.Helper()
	mesh, eye, light := shadowScene(t)
	r := NewShadowRenderer(eye, light)
	r.Bias = bias

	fb := NewFramebuffer(shadowSize, shadowSize)
	depth := NewDepthBuffer(shadowSize, shadowSize)
	sm, err := r.Render(mesh, func(frame Frame, sm *ShadowMap) (Shader, error) {
		return NewShadowShader(mesh, frame, overheadLighting, Maps{}, sm)
	}, fb, depth)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return fb, sm, eye
}

func TestShadowRendererDarkensOccludedFloor(t *testing.T) {
	fb, sm, eye := renderShadowScene(t, DefaultShadowBias)

	shadowed := fb.GetPixel(pixelOf(t, eye, math3d.V3(0, 0, 0.15)))
	lit := fb.GetPixel(pixelOf(t, eye, math3d.V3(0.6, 0, 0.6)))
	top := fb.GetPixel(pixelOf(t, eye, math3d.V3(0, 0.5, 0)))

	// 20 + 255·1.2 saturates; 20 + 255·0.3·1.2 = 111.8.
	if lit.R != 255 {
		t.Errorf("lit floor = %v, want 255", lit)
	}
	if top.R != 255 {
		t.Errorf("occluder top = %v, want 255", top)
	}
	if shadowed.R != 111 {
		t.Errorf("shadowed floor = %v, want 111", shadowed)
	}

	if got := sm.Depth.At(shadowSize/2, shadowSize/2); math.Abs(got-191.25) > 1e-9 {
		t.Errorf("shadow depth under occluder = %v, want 191.25", got)
	}
	if sm.Image.GetPixel(shadowSize/2, shadowSize/2) == (Color{}) {
		t.Error("shadow map image left empty")
	}
}

func TestShadowBiasIsTunable(t *testing.T) {
	fb, _, eye := renderShadowScene(t, 1000)
	if got := fb.GetPixel(pixelOf(t, eye, math3d.V3(0, 0, 0.15))); got.R != 255 {
		t.Errorf("floor with a huge bias = %v, want lit", got)
	}
}

func TestShadowMapOccluded(t *testing.T) {
	_, sm, _ := renderShadowScene(t, DefaultShadowBias)

	tests := []struct {
		name string
		p    math3d.Vec3
		want bool
	}{
		{"under occluder", math3d.V3(0, 0, 0), true},
		{"open floor", math3d.V3(0.6, 0, 0.6), false},
		{"occluder surface", math3d.V3(0.1, 0.5, 0.1), false},
		{"outside map", math3d.V3(5, 0, 5), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sm.Occluded(tc.p, sm.Bias); got != tc.want {
				t.Errorf("Occluded(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestShadowRendererErrors(t *testing.T) {
	mesh, eye, _ := shadowScene(t)
	noViewport := NewCamera(math3d.V3(0, 5, 0), math3d.Zero3(), math3d.V3(0, 0, -1))

	r := NewShadowRenderer(eye, noViewport)
	shade := func(frame Frame, sm *ShadowMap) (Shader, error) {
		return NewShadowShader(mesh, frame, overheadLighting, Maps{}, sm)
	}
	fb := NewFramebuffer(shadowSize, shadowSize)
	if _, err := r.Render(mesh, shade, fb, NewDepthBuffer(shadowSize, shadowSize)); !errors.Is(err, ErrEmptyViewport) {
		t.Errorf("Render() error = %v, want ErrEmptyViewport", err)
	}

	_, eye, light := shadowScene(t)
	errShade := errors.New("no shader")
	r = NewShadowRenderer(eye, light)
	_, err := r.Render(mesh, func(Frame, *ShadowMap) (Shader, error) { return nil, errShade }, fb, NewDepthBuffer(shadowSize, shadowSize))
	if !errors.Is(err, errShade) {
		t.Errorf("Render() error = %v, want the shade error", err)
	}
}
