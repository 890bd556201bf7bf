// Package render implements a software rasterization pipeline: camera
// frames, programmable shaders, a barycentric triangle rasterizer with a
// depth buffer, and two-pass shadow mapping.
//
// Buffers use a bottom-left origin while rendering. Call
// Framebuffer.FlipVertically before writing an image or drawing to a
// terminal, both of which put row 0 at the top.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Target is the pixel sink the rasterizer writes to.
type Target interface {
	Size() (width, height int)
	SetPixel(x, y int, c Color)
}

// Framebuffer is a 2D array of pixels.
type Framebuffer struct {
	Width  int          // Width in pixels
	Height int          // Height in pixels
	Pixels []color.RGBA // Row-major pixel data
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int) {
	return fb.Width, fb.Height
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x, y, ok := checkIndex("pixel", x, y, fb.Width, fb.Height); ok {
		fb.Pixels[y*fb.Width+x] = c
	}
}

// GetPixel returns the color at (x, y).
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	x, y, ok := checkIndex("pixel", x, y, fb.Width, fb.Height)
	if !ok {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

func (fb *Framebuffer) contains(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// FlipVertically mirrors the rows in place, converting between the
// renderer's bottom-left origin and the top-left origin of images.
func (fb *Framebuffer) FlipVertically() {
	w := fb.Width
	tmp := make([]color.RGBA, w)
	for top, bot := 0, fb.Height-1; top < bot; top, bot = top+1, bot-1 {
		a := fb.Pixels[top*w : (top+1)*w]
		b := fb.Pixels[bot*w : (bot+1)*w]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's
// algorithm. Points outside the framebuffer are skipped.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if fb.contains(x0, y0) {
			fb.Pixels[y0*fb.Width+x0] = c
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the framebuffer to a standard Go image.RGBA, row for
// row. Flip first to get an upright image.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// Encode writes the framebuffer to w. Format is one of "png", "bmp",
// "tiff" or "tif".
func (fb *Framebuffer) Encode(w io.Writer, format string) error {
	img := fb.ToImage()
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	case "tif", "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
}

// Save writes the framebuffer to path, picking the encoder from the file
// extension.
func (fb *Framebuffer) Save(path string) (err error) {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		return fmt.Errorf("save %s: %w", path, ErrUnsupportedFormat)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("save %s: %w", path, cerr)
		}
	}()

	if err := fb.Encode(f, format); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
