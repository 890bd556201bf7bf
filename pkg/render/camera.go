package render

import (
	"fmt"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// DefaultDepth is the depth range the viewport maps z onto.
const DefaultDepth = 255.0

// Frame is an immutable snapshot of the camera matrices used for one
// render pass.
type Frame struct {
	ModelView  math3d.Mat4 // World to camera
	Projection math3d.Mat4 // Camera to clip
	Viewport   math3d.Mat4 // Clip to screen
	Depth      float64     // Depth range of Viewport
}

// Transform returns Viewport · Projection · ModelView.
func (f Frame) Transform() math3d.Mat4 {
	return f.Viewport.Mul(f.Projection).Mul(f.ModelView)
}

// Clip returns Projection · ModelView.
func (f Frame) Clip() math3d.Mat4 {
	return f.Projection.Mul(f.ModelView)
}

// Project maps a world point to screen space. It also returns the clip
// space w, which shaders need for perspective-correct interpolation.
func (f Frame) Project(p math3d.Vec3) (math3d.Vec3, float64, error) {
	return project(f.Transform(), p)
}

func project(m math3d.Mat4, p math3d.Vec3) (math3d.Vec3, float64, error) {
	h := m.MulVec4(math3d.V4FromV3(p, 1))
	screen, err := h.PerspectiveDivide()
	if err != nil {
		return math3d.Vec3{}, 0, fmt.Errorf("project %v: %w", p, err)
	}
	return screen, h.W, nil
}

// Camera builds Frames from an eye, a target, an up vector, a projection
// coefficient and a viewport. The matrices are rebuilt lazily after a
// setter changes them.
type Camera struct {
	eye    math3d.Vec3
	target math3d.Vec3
	up     math3d.Vec3
	coeff  float64

	viewX, viewY          int
	viewWidth, viewHeight int
	depth                 float64

	frame Frame
	dirty bool
}

// NewCamera creates a camera at eye looking at target, with the focal
// distance set to |eye - target|. A viewport must be set before Frame
// succeeds.
func NewCamera(eye, target, up math3d.Vec3) *Camera {
	c := &Camera{
		eye:    eye,
		target: target,
		up:     up,
		depth:  DefaultDepth,
		dirty:  true,
	}
	c.SetFocalDistance()
	return c
}

// Eye returns the camera position.
func (c *Camera) Eye() math3d.Vec3 { return c.eye }

// Target returns the point the camera looks at.
func (c *Camera) Target() math3d.Vec3 { return c.target }

// Up returns the up vector.
func (c *Camera) Up() math3d.Vec3 { return c.up }

// Coeff returns the projection coefficient.
func (c *Camera) Coeff() float64 { return c.coeff }

// SetEye moves the camera.
func (c *Camera) SetEye(eye math3d.Vec3) {
	c.eye = eye
	c.dirty = true
}

// SetTarget changes the point the camera looks at.
func (c *Camera) SetTarget(target math3d.Vec3) {
	c.target = target
	c.dirty = true
}

// SetUp changes the up vector.
func (c *Camera) SetUp(up math3d.Vec3) {
	c.up = up
	c.dirty = true
}

// SetProjection sets the projection coefficient, -1/c for a focal
// distance c. Zero selects an orthographic projection.
func (c *Camera) SetProjection(coeff float64) {
	c.coeff = coeff
	c.dirty = true
}

// SetFocalDistance sets the projection coefficient from the current
// distance between eye and target. When they coincide the projection
// becomes orthographic.
func (c *Camera) SetFocalDistance() {
	d := c.eye.Sub(c.target).Len()
	if d < math3d.Epsilon {
		c.SetProjection(0)
		return
	}
	c.SetProjection(-1 / d)
}

// SetViewport sets the pixel rectangle the [-1,1] cube maps onto.
func (c *Camera) SetViewport(x, y, width, height int) {
	c.viewX, c.viewY = x, y
	c.viewWidth, c.viewHeight = width, height
	c.dirty = true
}

// FitViewport centers a viewport covering three quarters of a
// width×height target.
func (c *Camera) FitViewport(width, height int) {
	c.SetViewport(width/8, height/8, width*3/4, height*3/4)
}

// SetDepth sets the depth range of the viewport.
func (c *Camera) SetDepth(depth float64) {
	c.depth = depth
	c.dirty = true
}

// Frame returns the current matrices, rebuilding them if a setter ran
// since the last call. It fails with math3d.ErrDegenerateBasis when up is
// parallel to the view direction and with ErrEmptyViewport when no
// viewport is set.
func (c *Camera) Frame() (Frame, error) {
	if !c.dirty {
		return c.frame, nil
	}
	if c.viewWidth <= 0 || c.viewHeight <= 0 {
		return Frame{}, ErrEmptyViewport
	}
	modelView, err := math3d.LookAt(c.eye, c.target, c.up)
	if err != nil {
		return Frame{}, fmt.Errorf("camera: %w", err)
	}
	c.frame = Frame{
		ModelView:  modelView,
		Projection: math3d.Projection(c.coeff),
		Viewport:   math3d.Viewport(c.viewX, c.viewY, c.viewWidth, c.viewHeight, c.depth),
		Depth:      c.depth,
	}
	c.dirty = false
	return c.frame, nil
}
