package render

import (
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// MeshSource supplies per-corner vertex attributes for triangle faces.
// vert is always 0, 1 or 2.
type MeshSource interface {
	FaceCount() int
	Position(face, vert int) math3d.Vec3
	TexCoord(face, vert int) math3d.Vec2
	Normal(face, vert int) math3d.Vec3
}

// Shader is the programmable part of the pipeline.
//
// For each triangle Vertex is called for vert 0, 1 and 2, followed by
// zero or more Fragment calls. Vertex returns the screen-space position
// of the corner and records whatever the fragment stage needs in slot
// vert. Fragment receives barycentric weights that are non-negative and
// sum to 1, and returns the pixel color or discard = true to leave the
// pixel untouched.
//
// A shader keeps state for the current triangle only and is not safe for
// concurrent use.
type Shader interface {
	Vertex(face, vert int) (math3d.Vec3, error)
	Fragment(bar math3d.Vec3) (c Color, discard bool)
}

// Lighting parameterizes the shading of lit surfaces:
//
//	channel = min(Ambient + c·shadow·(Diffuse·diff + Specular·spec), 255)
//
// where diff = max(n·l, 0) and spec = max(r.z, 0)^shininess.
type Lighting struct {
	Dir       math3d.Vec3 // Direction towards the light, world space
	Ambient   float64     // Added to every channel
	Diffuse   float64     // Weight of the diffuse term
	Specular  float64     // Weight of the specular term
	Shininess float64     // Specular exponent when there is no specular map
}

// DefaultLighting is the lighting used by the Phong shaders.
var DefaultLighting = Lighting{
	Dir:       math3d.V3(1, 1, 1),
	Ambient:   5,
	Diffuse:   1,
	Specular:  0.6,
	Shininess: 10,
}

// DefaultShadowLighting is brighter to make up for occluded regions.
var DefaultShadowLighting = Lighting{
	Dir:       math3d.V3(1, 1, 1),
	Ambient:   20,
	Diffuse:   1.2,
	Specular:  0.6,
	Shininess: 10,
}

// shade applies the lighting equation to a surface color. n and l must be
// unit vectors in the same space, with the viewer along +z.
func (lt Lighting) shade(c Color, n, l math3d.Vec3, shininess, shadow float64) Color {
	diff := math.Max(n.Dot(l), 0)
	r := n.Scale(2 * n.Dot(l)).Sub(l).Normalize()
	spec := math.Pow(math.Max(r.Z, 0), shininess)
	k := shadow * (lt.Diffuse*diff + lt.Specular*spec)
	return Color{
		R: uint8(math.Min(lt.Ambient+float64(c.R)*k, 255)),
		G: uint8(math.Min(lt.Ambient+float64(c.G)*k, 255)),
		B: uint8(math.Min(lt.Ambient+float64(c.B)*k, 255)),
		A: c.A,
	}
}

// perspective turns screen-space weights into weights for attributes
// that vary linearly in world space, given the clip-space w of each
// corner.
func perspective(bar math3d.Vec3, w [3]float64) math3d.Vec3 {
	c := math3d.V3(bar.X/w[0], bar.Y/w[1], bar.Z/w[2])
	s := c.Sum()
	if math.Abs(s) < math3d.Epsilon {
		return bar
	}
	return c.Scale(1 / s)
}

func lerp3(v [3]math3d.Vec3, bar math3d.Vec3) math3d.Vec3 {
	return v[0].Scale(bar.X).Add(v[1].Scale(bar.Y)).Add(v[2].Scale(bar.Z))
}

func lerp2(v [3]math3d.Vec2, bar math3d.Vec3) math3d.Vec2 {
	return v[0].Scale(bar.X).Add(v[1].Scale(bar.Y)).Add(v[2].Scale(bar.Z))
}

func lerp1(v [3]float64, bar math3d.Vec3) float64 {
	return v[0]*bar.X + v[1]*bar.Y + v[2]*bar.Z
}

// decodeNormal maps a normal-map texel from [0,255] to [-1,1].
func decodeNormal(c Color) math3d.Vec3 {
	return math3d.V3(
		float64(c.R)/255*2-1,
		float64(c.G)/255*2-1,
		float64(c.B)/255*2-1,
	)
}

// surface holds the texture lookups shared by the lit shaders.
type surface struct {
	maps     Maps
	lighting Lighting
}

func (s surface) diffuse(uv math3d.Vec2) Color {
	if s.maps.Diffuse == nil {
		return ColorWhite
	}
	return SampleUV(s.maps.Diffuse, uv)
}

func (s surface) shininess(uv math3d.Vec2) float64 {
	if s.maps.Specular == nil {
		return s.lighting.Shininess
	}
	return float64(SampleUV(s.maps.Specular, uv).R)
}
