package render

import "errors"

var (
	// ErrEmptyViewport is returned by Camera.Frame when no viewport with a
	// positive size has been set.
	ErrEmptyViewport = errors.New("render: empty viewport")

	// ErrNoTexture is returned when a texture map cannot be found under
	// any supported extension.
	ErrNoTexture = errors.New("render: texture not found")

	// ErrUnsupportedFormat is returned by Framebuffer.Save for an unknown
	// file extension.
	ErrUnsupportedFormat = errors.New("render: unsupported image format")
)
