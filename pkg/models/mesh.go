// Package models loads triangle meshes from Wavefront OBJ and glTF/GLB
// files and exposes them through per-face vertex accessors.
package models

import (
	"image"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    []Face

	// Texture is the first embedded base-colour image of a glTF file,
	// or nil.
	Texture image.Image

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face is a triangle; V indexes Mesh.Vertices in counter-clockwise order
// when seen from the front.
type Face struct {
	V [3]int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// Position returns the object-space position of corner vert of face.
func (m *Mesh) Position(face, vert int) math3d.Vec3 {
	return m.corner(face, vert).Position
}

// TexCoord returns the texture coordinate of corner vert of face.
func (m *Mesh) TexCoord(face, vert int) math3d.Vec2 {
	return m.corner(face, vert).UV
}

// Normal returns the vertex normal of corner vert of face.
func (m *Mesh) Normal(face, vert int) math3d.Vec3 {
	return m.corner(face, vert).Normal
}

func (m *Mesh) corner(face, vert int) *MeshVertex {
	return &m.Vertices[m.Faces[face].V[vert]]
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// HasNormals reports whether any vertex carries a non-zero normal.
func (m *Mesh) HasNormals() bool {
	for _, v := range m.Vertices {
		if v.Normal.Len() > 0.001 {
			return true
		}
	}
	return false
}

// CalculateNormals assigns each face normal to its vertices. Vertices
// shared between faces keep the normal of the last face that uses them.
func (m *Mesh) CalculateNormals() {
	for _, f := range m.Faces {
		normal := m.faceNormal(f).Normalize()
		for _, i := range f.V {
			m.Vertices[i].Normal = normal
		}
	}
}

// CalculateSmoothNormals computes area-weighted averaged normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	// Unnormalized cross products weight each face by its area.
	for _, f := range m.Faces {
		normal := m.faceNormal(f)
		for _, i := range f.V {
			m.Vertices[i].Normal = m.Vertices[i].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// Transform applies mat to every position and its inverse transpose to
// every normal. The mesh is left untouched when mat is singular or sends
// a vertex to infinity.
func (m *Mesh) Transform(mat math3d.Mat4) error {
	normalMat, err := mat.InverseTranspose()
	if err != nil {
		return err
	}

	out := make([]MeshVertex, len(m.Vertices))
	for i, v := range m.Vertices {
		p, err := mat.MulVec3(v.Position)
		if err != nil {
			return err
		}
		out[i] = MeshVertex{
			Position: p,
			Normal:   normalMat.MulDir(v.Normal).Normalize(),
			UV:       v.UV,
		}
	}
	m.Vertices = out
	m.CalculateBounds()
	return nil
}

// FitUnitCube centers the mesh at the origin and scales it uniformly so
// its largest dimension spans [-1, 1].
func (m *Mesh) FitUnitCube() error {
	size := m.Size()
	extent := max(size.X, size.Y, size.Z)
	if extent == 0 {
		return nil
	}
	s := 2 / extent
	return m.Transform(math3d.Scale(math3d.V3(s, s, s)).Mul(math3d.Translate(m.Center().Negate())))
}

// Clone creates a deep copy of the mesh. Texture is shared.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Texture:   m.Texture,
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	return clone
}
