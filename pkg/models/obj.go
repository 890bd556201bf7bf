package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

var (
	// ErrMalformed is returned for an OBJ statement that cannot be parsed.
	ErrMalformed = errors.New("models: malformed statement")

	// ErrIndexRange is returned when a face references a vertex,
	// texture coordinate or normal that does not exist.
	ErrIndexRange = errors.New("models: index out of range")

	// ErrUnsupportedFormat is returned by Load for unknown extensions.
	ErrUnsupportedFormat = errors.New("models: unsupported format")
)

// Load reads a mesh, choosing the loader by file extension.
func Load(path string) (*Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLB(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// LoadOBJ reads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ReadOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mesh, nil
}

// ReadOBJ parses Wavefront OBJ geometry: v, vt, vn and f statements.
// Face corners may be written v, v/vt, v//vn or v/vt/vn with 1-based or
// negative (relative) indices. Polygons are fan-triangulated. Other
// statements are ignored. Normals are computed when the file has none.
func ReadOBJ(r io.Reader, name string) (*Mesh, error) {
	p := objParser{
		mesh:  NewMesh(name),
		index: make(map[math3d.Vec3i]int),
	}

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		if err := p.statement(sc.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	if !p.normals {
		p.mesh.CalculateSmoothNormals()
	}
	p.mesh.CalculateBounds()
	return p.mesh, nil
}

type objParser struct {
	mesh *Mesh

	positions []math3d.Vec3
	uvs       []math3d.Vec2
	norms     []math3d.Vec3
	normals   bool

	// index maps a (position, uv, normal) triple to its Mesh vertex;
	// missing attributes are -1.
	index map[math3d.Vec3i]int
}

func (p *objParser) statement(text string) error {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return fmt.Errorf("v: %w", err)
		}
		p.positions = append(p.positions, math3d.V3(v[0], v[1], v[2]))
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return fmt.Errorf("vt: %w", err)
		}
		p.uvs = append(p.uvs, math3d.V2(v[0], v[1]))
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return fmt.Errorf("vn: %w", err)
		}
		p.norms = append(p.norms, math3d.V3(v[0], v[1], v[2]))
	case "f":
		if err := p.face(fields[1:]); err != nil {
			return fmt.Errorf("f: %w", err)
		}
	}
	return nil
}

func (p *objParser) face(corners []string) error {
	if len(corners) < 3 {
		return fmt.Errorf("%d corners: %w", len(corners), ErrMalformed)
	}

	verts := make([]int, len(corners))
	for i, c := range corners {
		key, err := p.corner(c)
		if err != nil {
			return err
		}
		verts[i] = p.vertex(key)
	}

	for i := 1; i+1 < len(verts); i++ {
		p.mesh.Faces = append(p.mesh.Faces, Face{V: [3]int{verts[0], verts[i], verts[i+1]}})
	}
	return nil
}

// corner resolves one "v/vt/vn" reference to 0-based indices.
func (p *objParser) corner(s string) (math3d.Vec3i, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 || parts[0] == "" {
		return math3d.Vec3i{}, fmt.Errorf("corner %q: %w", s, ErrMalformed)
	}

	key := math3d.V3i(-1, -1, -1)
	var err error
	if key.X, err = resolve(parts[0], len(p.positions)); err != nil {
		return key, fmt.Errorf("corner %q: %w", s, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.Y, err = resolve(parts[1], len(p.uvs)); err != nil {
			return key, fmt.Errorf("corner %q: %w", s, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.Z, err = resolve(parts[2], len(p.norms)); err != nil {
			return key, fmt.Errorf("corner %q: %w", s, err)
		}
		p.normals = true
	}
	return key, nil
}

func (p *objParser) vertex(key math3d.Vec3i) int {
	if i, ok := p.index[key]; ok {
		return i
	}

	v := MeshVertex{Position: p.positions[key.X]}
	if key.Y >= 0 {
		v.UV = p.uvs[key.Y]
	}
	if key.Z >= 0 {
		v.Normal = p.norms[key.Z]
	}

	i := len(p.mesh.Vertices)
	p.mesh.Vertices = append(p.mesh.Vertices, v)
	p.index[key] = i
	return i
}

// resolve converts a 1-based or negative OBJ index into a 0-based one
// against a list of length n.
func resolve(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrMalformed
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	default:
		return 0, fmt.Errorf("%d of %d: %w", i, n, ErrIndexRange)
	}
}

// parseFloats parses the first want fields; extra fields such as the
// optional w component are ignored.
func parseFloats(fields []string, want int) ([]float64, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("want %d values, got %d: %w", want, len(fields), ErrMalformed)
	}
	v := make([]float64, want)
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", fields[i], ErrMalformed)
		}
		v[i] = f
	}
	return v, nil
}
