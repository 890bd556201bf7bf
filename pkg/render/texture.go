package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"math"
	"os"

	"github.com/taigrr/tinyrender/pkg/math3d"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// TextureSource is read by shaders through integer texel coordinates,
// with (0, 0) at the bottom-left.
type TextureSource interface {
	Size() (width, height int)
	Texel(x, y int) Color
}

// Sampler is implemented by texture sources that filter UV lookups
// themselves. SampleUV prefers it over nearest-texel lookup.
type Sampler interface {
	Sample(u, v float64) Color
}

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Texture holds a 2D image for texture mapping. Row 0 is the bottom row,
// so v = 0 addresses the bottom of the image.
type Texture struct {
	Width      int
	Height     int
	Pixels     []Color    // Row-major pixel data, bottom-left origin
	WrapU      WrapMode   // Horizontal wrap mode
	WrapV      WrapMode   // Vertical wrap mode
	FilterMode FilterMode // Sampling filter mode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:      width,
		Height:     height,
		Pixels:     make([]Color, width*height),
		WrapU:      WrapRepeat,
		WrapV:      WrapRepeat,
		FilterMode: FilterNearest,
	}
}

// LoadTexture loads a texture from an image file (PNG, JPEG, BMP, TIFF
// or WebP).
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image, flipping it so
// the bottom image row becomes texel row 0.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	tex := NewTexture(width, height)

	for y := range height {
		for x := range width {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			r, g, b, a := c.RGBA()
			// RGBA returns 16-bit values, scale to 8-bit
			tex.Pixels[(height-1-y)*width+x] = Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			}
		}
	}

	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			cx := x / checkSize
			cy := y / checkSize
			if (cx+cy)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// NewSolidTexture creates a 1×1 texture of a single color.
func NewSolidTexture(c Color) *Texture {
	tex := NewTexture(1, 1)
	tex.Pixels[0] = c
	return tex
}

// Size returns the texture dimensions.
func (t *Texture) Size() (width, height int) {
	return t.Width, t.Height
}

// SetPixel sets a texel.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x, y, ok := checkIndex("texel", x, y, t.Width, t.Height); ok {
		t.Pixels[y*t.Width+x] = c
	}
}

// Texel returns the texel at (x, y).
func (t *Texture) Texel(x, y int) Color {
	x, y, ok := checkIndex("texel", x, y, t.Width, t.Height)
	if !ok {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at UV coordinates (0-1 range).
func (t *Texture) Sample(u, v float64) Color {
	if t.Width <= 0 || t.Height <= 0 {
		return Color{}
	}
	u = t.wrapCoord(u, t.WrapU)
	v = t.wrapCoord(v, t.WrapV)

	switch t.FilterMode {
	case FilterBilinear:
		return t.sampleBilinear(u, v)
	default:
		return t.sampleNearest(u, v)
	}
}

// wrapCoord applies the wrap mode to a coordinate.
func (t *Texture) wrapCoord(coord float64, mode WrapMode) float64 {
	switch mode {
	case WrapRepeat:
		coord = coord - math.Floor(coord) // fmod to [0,1)
	case WrapClamp:
		coord = math.Max(0, math.Min(1, coord))
	}
	return coord
}

// sampleNearest returns the nearest texel.
func (t *Texture) sampleNearest(u, v float64) Color {
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.Pixels[y*t.Width+x]
}

// sampleBilinear returns bilinearly interpolated color.
func (t *Texture) sampleBilinear(u, v float64) Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1 := x0 + 1
	y1 := y0 + 1

	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x0 = wrapPixelCoord(x0, t.Width, t.WrapU)
	x1 = wrapPixelCoord(x1, t.Width, t.WrapU)
	y0 = wrapPixelCoord(y0, t.Height, t.WrapV)
	y1 = wrapPixelCoord(y1, t.Height, t.WrapV)

	c00 := t.Pixels[y0*t.Width+x0]
	c10 := t.Pixels[y0*t.Width+x1]
	c01 := t.Pixels[y1*t.Width+x0]
	c11 := t.Pixels[y1*t.Width+x1]

	bot := lerpColor(c00, c10, tx)
	top := lerpColor(c01, c11, tx)
	return lerpColor(bot, top, ty)
}

// wrapPixelCoord wraps a pixel coordinate.
func wrapPixelCoord(x, size int, mode WrapMode) int {
	switch mode {
	case WrapRepeat:
		x = x % size
		if x < 0 {
			x += size
		}
	case WrapClamp:
		x = min(max(x, 0), size-1)
	}
	return x
}

// SampleUV looks up src at texture coordinate uv. Sources implementing
// Sampler filter the lookup themselves; others return the texel
// containing uv, clamped to the edge.
func SampleUV(src TextureSource, uv math3d.Vec2) Color {
	if s, ok := src.(Sampler); ok {
		return s.Sample(uv.X, uv.Y)
	}
	w, h := src.Size()
	x := min(max(int(uv.X*float64(w)), 0), w-1)
	y := min(max(int(uv.Y*float64(h)), 0), h-1)
	return src.Texel(x, y)
}

// Maps groups the optional texture maps of a model. A nil map falls back
// to white diffuse, interpolated vertex normals, or Lighting.Shininess.
type Maps struct {
	Diffuse  TextureSource
	Normal   TextureSource // Normals in model space
	Tangent  TextureSource // Normals in tangent space
	Specular TextureSource // Specular exponent in the red channel
}

// SetSampling applies filter and wrap to every map that is a *Texture.
// Other sources keep their own sampling.
func (m Maps) SetSampling(filter FilterMode, wrap WrapMode) {
	for _, src := range []TextureSource{m.Diffuse, m.Normal, m.Tangent, m.Specular} {
		if t, ok := src.(*Texture); ok {
			t.FilterMode = filter
			t.WrapU, t.WrapV = wrap, wrap
		}
	}
}

// MapExtensions lists the extensions LoadMaps tries, in order.
var MapExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// LoadMaps loads the texture maps named after base:
// base_diffuse, base_nm, base_nm_tangent and base_spec, each with any of
// MapExtensions. Missing maps are left nil and logged; other errors abort.
func LoadMaps(base string) (Maps, error) {
	var m Maps
	for _, slot := range []struct {
		suffix string
		dst    *TextureSource
	}{
		{"_diffuse", &m.Diffuse},
		{"_nm", &m.Normal},
		{"_nm_tangent", &m.Tangent},
		{"_spec", &m.Specular},
	} {
		tex, err := loadMap(base + slot.suffix)
		if errors.Is(err, ErrNoTexture) {
			Logger().Warn("texture map missing", "map", base+slot.suffix)
			continue
		}
		if err != nil {
			return Maps{}, err
		}
		*slot.dst = tex
	}
	return m, nil
}

func loadMap(stem string) (*Texture, error) {
	for _, ext := range MapExtensions {
		tex, err := LoadTexture(stem + ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		Logger().Debug("texture map loaded", "path", stem+ext, "width", tex.Width, "height", tex.Height)
		return tex, nil
	}
	return nil, fmt.Errorf("%s: %w", stem, ErrNoTexture)
}
