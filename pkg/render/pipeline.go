package render

import (
	"fmt"
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// Pipeline draws whole meshes: it runs the vertex stage for each face and
// hands the projected triangle to the rasterizer.
type Pipeline struct {
	Rasterizer Rasterizer
}

// Draw renders every face of mesh with sh into target, depth testing
// against depth. Faces are drawn in index order. A vertex stage error
// aborts the pass; pixels of earlier faces stay drawn.
func (p Pipeline) Draw(mesh MeshSource, sh Shader, target Target, depth *DepthBuffer) (Stats, error) {
	var stats Stats
	faces := mesh.FaceCount()
	for face := range faces {
		var pts [3]math3d.Vec3
		for vert := range 3 {
			pt, err := sh.Vertex(face, vert)
			if err != nil {
				return stats, fmt.Errorf("face %d vertex %d: %w", face, vert, err)
			}
			pts[vert] = pt
		}
		stats.Add(p.Rasterizer.DrawTriangle(pts, sh, target, depth))
	}

	Logger().Debug("pass complete",
		"shader", fmt.Sprintf("%T", sh),
		"faces", faces,
		"culled", stats.Culled,
		"fragments", stats.Fragments,
		"discarded", stats.Discarded,
		"depthWrite", p.Rasterizer.DepthWrite,
	)
	return stats, nil
}

// DrawWireframe draws the edges of every face of mesh into fb. No depth
// test or culling is applied.
func DrawWireframe(mesh MeshSource, frame Frame, fb *Framebuffer, c Color) error {
	m := frame.Transform()
	for face := range mesh.FaceCount() {
		var pts [3]math3d.Vec3
		for vert := range 3 {
			pt, _, err := project(m, mesh.Position(face, vert))
			if err != nil {
				return fmt.Errorf("wireframe face %d: %w", face, err)
			}
			pts[vert] = pt
		}
		for i := range 3 {
			a, b := pts[i], pts[(i+1)%3]
			fb.DrawLine(
				int(math.Round(a.X)), int(math.Round(a.Y)),
				int(math.Round(b.X)), int(math.Round(b.Y)),
				c,
			)
		}
	}
	return nil
}
