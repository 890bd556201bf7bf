package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/models"
	"github.com/taigrr/tinyrender/pkg/render"
)

// renderMode selects the shader a scene is drawn with.
type renderMode string

const (
	modeFlat      renderMode = "flat"
	modeGouraud   renderMode = "gouraud"
	modePhong     renderMode = "phong"
	modeTangent   renderMode = "tangent"
	modeShadow    renderMode = "shadow"
	modeWireframe renderMode = "wireframe"
	modeDepth     renderMode = "depth"
)

// modes is the order of the preview's number keys.
var modes = []renderMode{modeFlat, modeGouraud, modePhong, modeTangent, modeShadow, modeWireframe, modeDepth}

func modeList() string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func parseMode(s string) (renderMode, error) {
	for _, m := range modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid mode %q: want one of %s", s, modeList())
}

// usesMaps reports whether the mode samples texture maps.
func (m renderMode) usesMaps() bool {
	switch m {
	case modeGouraud, modePhong, modeTangent, modeShadow:
		return true
	}
	return false
}

// scene is everything needed to draw a frame except the camera and the
// buffers.
type scene struct {
	mesh       *models.Mesh
	maps       render.Maps
	mode       renderMode
	lighting   render.Lighting
	color      render.Color
	background render.Color
	bias       float64
	pipeline   render.Pipeline
}

func newScene(mesh *models.Mesh, maps render.Maps, m renderMode) *scene {
	return &scene{
		mesh:       mesh,
		maps:       maps,
		mode:       m,
		lighting:   lightingFor(m),
		color:      render.ColorWhite,
		background: render.ColorBlack,
		bias:       render.DefaultShadowBias,
	}
}

func lightingFor(m renderMode) render.Lighting {
	if m == modeShadow {
		return render.DefaultShadowLighting
	}
	return render.DefaultLighting
}

// setMode switches modes, keeping the light direction.
func (s *scene) setMode(m renderMode) {
	dir := s.lighting.Dir
	s.mode = m
	s.lighting = lightingFor(m)
	s.lighting.Dir = dir
}

// draw clears fb and depth and renders the scene through eye, whose
// viewport is fitted to fb. In shadow mode the light pass result is
// returned, otherwise the shadow map is nil.
func (s *scene) draw(eye *render.Camera, fb *render.Framebuffer, depth *render.DepthBuffer) (*render.ShadowMap, error) {
	fb.Clear(s.background)
	depth.Clear()
	eye.FitViewport(fb.Size())

	if s.mode == modeShadow {
		return s.drawShadow(eye, fb, depth)
	}

	frame, err := eye.Frame()
	if err != nil {
		return nil, err
	}

	var sh render.Shader
	switch s.mode {
	case modeWireframe:
		return nil, render.DrawWireframe(s.mesh, frame, fb, s.color)
	case modeFlat:
		sh = render.NewFlatShader(s.mesh, frame, s.lighting.Dir, s.color)
	case modeGouraud:
		sh = render.NewGouraudShader(s.mesh, frame, s.lighting.Dir, s.color, s.maps.Diffuse)
	case modePhong:
		sh, err = render.NewPhongShader(s.mesh, frame, s.lighting, s.maps)
	case modeTangent:
		sh, err = render.NewTangentShader(s.mesh, frame, s.lighting, s.maps)
	case modeDepth:
		sh = render.NewDepthShader(s.mesh, frame)
	default:
		return nil, fmt.Errorf("invalid mode %q", s.mode)
	}
	if err != nil {
		return nil, err
	}

	_, err = s.pipeline.Draw(s.mesh, sh, fb, depth)
	return nil, err
}

func (s *scene) drawShadow(eye *render.Camera, fb *render.Framebuffer, depth *render.DepthBuffer) (*render.ShadowMap, error) {
	dir := s.lighting.Dir.Normalize()
	light := render.NewCamera(eye.Target().Add(dir), eye.Target(), lightUp(dir))
	light.SetProjection(0)
	light.FitViewport(fb.Size())

	r := render.NewShadowRenderer(eye, light)
	r.Pipeline = s.pipeline
	r.Bias = s.bias

	return r.Render(s.mesh, func(frame render.Frame, sm *render.ShadowMap) (render.Shader, error) {
		sh, err := render.NewShadowShader(s.mesh, frame, s.lighting, s.maps, sm)
		if err != nil {
			return nil, err
		}
		return sh, nil
	}, fb, depth)
}

// lightUp picks an up vector for a camera looking along -dir.
func lightUp(dir math3d.Vec3) math3d.Vec3 {
	if math.Abs(dir.Y) > 0.99 {
		return math3d.V3(0, 0, -1)
	}
	return math3d.Up()
}
