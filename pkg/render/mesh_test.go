package render

import "github.com/taigrr/tinyrender/pkg/math3d"

// triMesh is a MeshSource over explicit triangles. Missing normals
// default to the face normal and missing texture coordinates to zero.
type triMesh struct {
	faces   [][3]math3d.Vec3
	normals [][3]math3d.Vec3
	uvs     [][3]math3d.Vec2
}

func (m *triMesh) FaceCount() int { return len(m.faces) }

func (m *triMesh) Position(face, vert int) math3d.Vec3 { return m.faces[face][vert] }

func (m *triMesh) TexCoord(face, vert int) math3d.Vec2 {
	if m.uvs == nil {
		return math3d.Vec2{}
	}
	return m.uvs[face][vert]
}

func (m *triMesh) Normal(face, vert int) math3d.Vec3 {
	if m.normals != nil {
		return m.normals[face][vert]
	}
	f := m.faces[face]
	return f[1].Sub(f[0]).Cross(f[2].Sub(f[0])).Normalize()
}

// quadXY returns a square in the z plane facing +z, with UVs spanning
// [0,1]².
func quadXY(half, z float64) *triMesh {
	a := math3d.V3(-half, -half, z)
	b := math3d.V3(half, -half, z)
	c := math3d.V3(half, half, z)
	d := math3d.V3(-half, half, z)
	return &triMesh{
		faces: [][3]math3d.Vec3{{a, b, c}, {a, c, d}},
		uvs: [][3]math3d.Vec2{
			{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1)},
			{math3d.V2(0, 0), math3d.V2(1, 1), math3d.V2(0, 1)},
		},
	}
}

// quadXZ returns a square in the y plane facing +y.
func quadXZ(half, y float64) *triMesh {
	a := math3d.V3(-half, y, half)
	b := math3d.V3(half, y, half)
	c := math3d.V3(half, y, -half)
	d := math3d.V3(-half, y, -half)
	return &triMesh{faces: [][3]math3d.Vec3{{a, b, c}, {a, c, d}}}
}

func merge(meshes ...*triMesh) *triMesh {
	out := &triMesh{}
	for _, m := range meshes {
		out.faces = append(out.faces, m.faces...)
	}
	return out
}
