package render

import (
	"fmt"
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// FlatShader lights each face with a single intensity computed from its
// geometric normal. Faces turned away from the light are discarded.
type FlatShader struct {
	Mesh  MeshSource
	Color Color
	Light math3d.Vec3 // Unit direction towards the light, world space

	transform math3d.Mat4
	world     [3]math3d.Vec3
	intensity float64
}

// NewFlatShader creates a flat shader for mesh as seen through frame.
func NewFlatShader(mesh MeshSource, frame Frame, light math3d.Vec3, c Color) *FlatShader {
	return &FlatShader{
		Mesh:      mesh,
		Color:     c,
		Light:     light.Normalize(),
		transform: frame.Transform(),
	}
}

// Vertex projects a corner and, on the last corner, computes the face intensity.
func (s *FlatShader) Vertex(face, vert int) (math3d.Vec3, error) {
	p := s.Mesh.Position(face, vert)
	s.world[vert] = p
	if vert == 2 {
		n := s.world[1].Sub(s.world[0]).Cross(s.world[2].Sub(s.world[0])).Normalize()
		s.intensity = n.Dot(s.Light)
	}
	screen, _, err := project(s.transform, p)
	return screen, err
}

// Fragment returns the face color, discarding faces lit from behind.
func (s *FlatShader) Fragment(math3d.Vec3) (Color, bool) {
	if s.intensity <= 0 {
		return Color{}, true
	}
	return MultiplyColor(s.Color, s.intensity), false
}

// GouraudShader computes a diffuse intensity per vertex and interpolates
// it across the face.
type GouraudShader struct {
	Mesh    MeshSource
	Color   Color
	Diffuse TextureSource // Optional, modulates Color
	Light   math3d.Vec3   // Unit direction towards the light, world space

	transform math3d.Mat4
	intensity [3]float64
	uv        [3]math3d.Vec2
	w         [3]float64
}

// NewGouraudShader creates a Gouraud shader for mesh as seen through
// frame. diffuse may be nil.
func NewGouraudShader(mesh MeshSource, frame Frame, light math3d.Vec3, c Color, diffuse TextureSource) *GouraudShader {
	return &GouraudShader{
		Mesh:      mesh,
		Color:     c,
		Diffuse:   diffuse,
		Light:     light.Normalize(),
		transform: frame.Transform(),
	}
}

// Vertex records the corner's diffuse intensity and texture coordinate.
func (s *GouraudShader) Vertex(face, vert int) (math3d.Vec3, error) {
	s.intensity[vert] = math.Max(0, s.Mesh.Normal(face, vert).Normalize().Dot(s.Light))
	s.uv[vert] = s.Mesh.TexCoord(face, vert)
	screen, w, err := project(s.transform, s.Mesh.Position(face, vert))
	s.w[vert] = w
	return screen, err
}

// Fragment interpolates the vertex intensities over the diffuse color.
func (s *GouraudShader) Fragment(bar math3d.Vec3) (Color, bool) {
	bc := perspective(bar, s.w)
	c := s.Color
	if s.Diffuse != nil {
		c = ModulateColor(SampleUV(s.Diffuse, lerp2(s.uv, bc)), c)
	}
	return MultiplyColor(c, lerp1(s.intensity, bc)), false
}

// PhongShader lights every fragment with ambient, diffuse and specular
// terms. Normals come from Maps.Normal when present and from the
// interpolated vertex normals otherwise.
type PhongShader struct {
	Mesh MeshSource
	surface

	transform math3d.Mat4
	normalMat math3d.Mat4
	light     math3d.Vec3
	uv        [3]math3d.Vec2
	normal    [3]math3d.Vec3
	w         [3]float64
}

// NewPhongShader creates a Phong shader for mesh as seen through frame.
// It fails if the modelview matrix cannot be inverted.
func NewPhongShader(mesh MeshSource, frame Frame, lighting Lighting, maps Maps) (*PhongShader, error) {
	normalMat, err := frame.ModelView.InverseTranspose()
	if err != nil {
		return nil, fmt.Errorf("phong shader: normal matrix: %w", err)
	}
	return &PhongShader{
		Mesh:      mesh,
		surface:   surface{maps: maps, lighting: lighting},
		transform: frame.Transform(),
		normalMat: normalMat,
		light:     frame.ModelView.MulDir(lighting.Dir).Normalize(),
	}, nil
}

// Vertex records the corner's normal and texture coordinate.
func (s *PhongShader) Vertex(face, vert int) (math3d.Vec3, error) {
	s.uv[vert] = s.Mesh.TexCoord(face, vert)
	s.normal[vert] = s.Mesh.Normal(face, vert)
	screen, w, err := project(s.transform, s.Mesh.Position(face, vert))
	s.w[vert] = w
	return screen, err
}

// Fragment shades with the interpolated or mapped normal.
func (s *PhongShader) Fragment(bar math3d.Vec3) (Color, bool) {
	bc := perspective(bar, s.w)
	uv := lerp2(s.uv, bc)

	var n math3d.Vec3
	if s.maps.Normal != nil {
		n = decodeNormal(SampleUV(s.maps.Normal, uv))
	} else {
		n = lerp3(s.normal, bc)
	}
	n = s.normalMat.MulDir(n).Normalize()

	return s.lighting.shade(s.diffuse(uv), n, s.light, s.shininess(uv), 1), false
}

// TangentShader is a Phong shader reading Maps.Tangent, a normal map in
// tangent space. The tangent frame is rebuilt per fragment from the
// triangle's edges, its UV deltas and the interpolated normal.
type TangentShader struct {
	Mesh MeshSource
	surface

	transform math3d.Mat4
	modelView math3d.Mat4
	normalMat math3d.Mat4
	light     math3d.Vec3
	uv        [3]math3d.Vec2
	normal    [3]math3d.Vec3 // Camera space
	view      [3]math3d.Vec3 // Camera space
	w         [3]float64
}

// NewTangentShader creates a tangent-space normal mapping shader. Without
// a tangent map it shades with the interpolated vertex normals.
func NewTangentShader(mesh MeshSource, frame Frame, lighting Lighting, maps Maps) (*TangentShader, error) {
	normalMat, err := frame.ModelView.InverseTranspose()
	if err != nil {
		return nil, fmt.Errorf("tangent shader: normal matrix: %w", err)
	}
	return &TangentShader{
		Mesh:      mesh,
		surface:   surface{maps: maps, lighting: lighting},
		transform: frame.Transform(),
		modelView: frame.ModelView,
		normalMat: normalMat,
		light:     frame.ModelView.MulDir(lighting.Dir).Normalize(),
	}, nil
}

// Vertex records the corner's camera-space position, normal and texture coordinate.
func (s *TangentShader) Vertex(face, vert int) (math3d.Vec3, error) {
	p := s.Mesh.Position(face, vert)
	s.uv[vert] = s.Mesh.TexCoord(face, vert)
	s.normal[vert] = s.normalMat.MulDir(s.Mesh.Normal(face, vert))
	s.view[vert] = s.modelView.MulVec4(math3d.V4FromV3(p, 1)).Vec3()
	screen, w, err := project(s.transform, p)
	s.w[vert] = w
	return screen, err
}

// Fragment shades with the tangent-space normal mapped into camera space.
func (s *TangentShader) Fragment(bar math3d.Vec3) (Color, bool) {
	bc := perspective(bar, s.w)
	uv := lerp2(s.uv, bc)
	bn := lerp3(s.normal, bc).Normalize()

	n := bn
	if s.maps.Tangent != nil {
		if darboux, ok := s.tangentFrame(bn); ok {
			n = darboux.MulVec3(decodeNormal(SampleUV(s.maps.Tangent, uv))).Normalize()
		}
	}

	return s.lighting.shade(s.diffuse(uv), n, s.light, s.shininess(uv), 1), false
}

// tangentFrame returns the matrix whose columns are the tangent, the
// bitangent and bn. It reports false when the triangle's UV mapping is
// degenerate.
func (s *TangentShader) tangentFrame(bn math3d.Vec3) (math3d.Mat3, bool) {
	a := math3d.Mat3FromRows(
		s.view[1].Sub(s.view[0]),
		s.view[2].Sub(s.view[0]),
		bn,
	)
	ai, err := a.Inverse()
	if err != nil {
		return math3d.Mat3{}, false
	}
	i := ai.MulVec3(math3d.V3(s.uv[1].X-s.uv[0].X, s.uv[2].X-s.uv[0].X, 0))
	j := ai.MulVec3(math3d.V3(s.uv[1].Y-s.uv[0].Y, s.uv[2].Y-s.uv[0].Y, 0))
	return math3d.Mat3FromCols(i.Normalize(), j.Normalize(), bn), true
}

// DepthShader renders screen-space depth. Fragments are gray levels from
// black (far) to white (near) unless DepthOnly is set, in which case
// every fragment is discarded and only the depth buffer is written. That
// requires the DepthWriteBeforeFragment policy.
type DepthShader struct {
	Mesh      MeshSource
	DepthOnly bool

	transform math3d.Mat4
	depth     float64
	z         [3]float64
}

// NewDepthShader creates a depth shader for mesh as seen through frame.
func NewDepthShader(mesh MeshSource, frame Frame) *DepthShader {
	depth := frame.Depth
	if depth == 0 {
		depth = DefaultDepth
	}
	return &DepthShader{
		Mesh:      mesh,
		transform: frame.Transform(),
		depth:     depth,
	}
}

// Vertex projects a corner and keeps its screen depth.
func (s *DepthShader) Vertex(face, vert int) (math3d.Vec3, error) {
	screen, _, err := project(s.transform, s.Mesh.Position(face, vert))
	s.z[vert] = screen.Z
	return screen, err
}

// Fragment returns the interpolated depth as a gray level.
func (s *DepthShader) Fragment(bar math3d.Vec3) (Color, bool) {
	if s.DepthOnly {
		return Color{}, true
	}
	return MultiplyColor(ColorWhite, lerp1(s.z, bar)/s.depth), false
}

// DefaultOcclusion is the light factor applied to fragments in shadow.
const DefaultOcclusion = 0.3

// ShadowShader is a Phong shader that darkens fragments the light cannot
// see according to a ShadowMap.
type ShadowShader struct {
	Mesh MeshSource
	surface

	Shadow    *ShadowMap
	Bias      float64 // Depth tolerance against self-shadowing
	Occlusion float64 // Light factor for occluded fragments

	transform math3d.Mat4
	normalMat math3d.Mat4
	light     math3d.Vec3
	uv        [3]math3d.Vec2
	normal    [3]math3d.Vec3
	world     [3]math3d.Vec3
	w         [3]float64
}

// NewShadowShader creates a shadow-receiving shader for mesh as seen
// through frame. Bias is taken from sm.
func NewShadowShader(mesh MeshSource, frame Frame, lighting Lighting, maps Maps, sm *ShadowMap) (*ShadowShader, error) {
	normalMat, err := frame.ModelView.InverseTranspose()
	if err != nil {
		return nil, fmt.Errorf("shadow shader: normal matrix: %w", err)
	}
	return &ShadowShader{
		Mesh:      mesh,
		surface:   surface{maps: maps, lighting: lighting},
		Shadow:    sm,
		Bias:      sm.Bias,
		Occlusion: DefaultOcclusion,
		transform: frame.Transform(),
		normalMat: normalMat,
		light:     frame.ModelView.MulDir(lighting.Dir).Normalize(),
	}, nil
}

// Vertex records the corner's normal, texture coordinate and model position.
func (s *ShadowShader) Vertex(face, vert int) (math3d.Vec3, error) {
	p := s.Mesh.Position(face, vert)
	s.uv[vert] = s.Mesh.TexCoord(face, vert)
	s.normal[vert] = s.Mesh.Normal(face, vert)
	s.world[vert] = p
	screen, w, err := project(s.transform, p)
	s.w[vert] = w
	return screen, err
}

// Fragment shades like PhongShader, scaled down where the ShadowMap is occluded.
func (s *ShadowShader) Fragment(bar math3d.Vec3) (Color, bool) {
	bc := perspective(bar, s.w)
	uv := lerp2(s.uv, bc)

	shadow := 1.0
	if s.Shadow.Occluded(lerp3(s.world, bc), s.Bias) {
		shadow = s.Occlusion
	}

	var n math3d.Vec3
	if s.maps.Normal != nil {
		n = decodeNormal(SampleUV(s.maps.Normal, uv))
	} else {
		n = lerp3(s.normal, bc)
	}
	n = s.normalMat.MulDir(n).Normalize()

	return s.lighting.shade(s.diffuse(uv), n, s.light, s.shininess(uv), shadow), false
}
