package render

import (
	"fmt"
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// DefaultShadowBias is the depth tolerance used by shadow tests, in the
// units of DefaultDepth.
const DefaultShadowBias = 5.0

// ShadowMap is the result of rendering the scene from the light.
type ShadowMap struct {
	Depth     *DepthBuffer // Depth as seen from the light
	Image     *Framebuffer // Depth rendered as gray levels
	Transform math3d.Mat4  // World to light screen space
	Bias      float64
}

// NewShadowMap allocates an empty shadow map.
func NewShadowMap(width, height int, transform math3d.Mat4, bias float64) *ShadowMap {
	return &ShadowMap{
		Depth:     NewDepthBuffer(width, height),
		Image:     NewFramebuffer(width, height),
		Transform: transform,
		Bias:      bias,
	}
}

// Occluded reports whether something nearer the light covers the world
// point p by more than bias. Points outside the map are lit.
func (m *ShadowMap) Occluded(p math3d.Vec3, bias float64) bool {
	s, err := m.Transform.MulVec3(p)
	if err != nil {
		return false
	}
	x, y := int(math.Round(s.X)), int(math.Round(s.Y))
	if !m.Depth.Contains(x, y) {
		return false
	}
	return m.Depth.At(x, y) > s.Z+bias
}

// ShadowRenderer runs the two shadow mapping passes. The first renders
// depth from Light into a fresh ShadowMap; the second renders the shader
// returned by shade from Eye into the caller's buffers.
type ShadowRenderer struct {
	Pipeline Pipeline
	Eye      *Camera
	Light    *Camera
	Bias     float64
}

// NewShadowRenderer creates a renderer with DefaultShadowBias.
func NewShadowRenderer(eye, light *Camera) *ShadowRenderer {
	return &ShadowRenderer{
		Eye:   eye,
		Light: light,
		Bias:  DefaultShadowBias,
	}
}

// Render draws mesh with shadows into target and depth and returns the
// shadow map it built. The shadow map has the size of target.
func (r *ShadowRenderer) Render(
	mesh MeshSource,
	shade func(eye Frame, sm *ShadowMap) (Shader, error),
	target Target,
	depth *DepthBuffer,
) (*ShadowMap, error) {
	lightFrame, err := r.Light.Frame()
	if err != nil {
		return nil, fmt.Errorf("shadow pass: light %w", err)
	}
	eyeFrame, err := r.Eye.Frame()
	if err != nil {
		return nil, fmt.Errorf("shadow pass: eye %w", err)
	}

	w, h := target.Size()
	sm := NewShadowMap(w, h, lightFrame.Transform(), r.Bias)

	// The light pass keeps every fragment, so either depth policy
	// leaves a complete shadow map.
	lightStats, err := r.Pipeline.Draw(mesh, NewDepthShader(mesh, lightFrame), sm.Image, sm.Depth)
	if err != nil {
		return nil, fmt.Errorf("shadow pass: light: %w", err)
	}

	sh, err := shade(eyeFrame, sm)
	if err != nil {
		return nil, fmt.Errorf("shadow pass: shader: %w", err)
	}
	eyeStats, err := r.Pipeline.Draw(mesh, sh, target, depth)
	if err != nil {
		return sm, fmt.Errorf("shadow pass: eye: %w", err)
	}

	Logger().Debug("shadow render complete",
		"bias", r.Bias,
		"lightFragments", lightStats.Fragments,
		"eyeFragments", eyeStats.Fragments,
	)
	return sm, nil
}
