package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/render"
)

const (
	maxPitch = 1.4 // Keeps the eye off the up axis
	minDist  = 1.0
	maxDist  = 20.0

	yawStep   = math.Pi / 12
	pitchStep = math.Pi / 18
	distStep  = 0.5
)

// springAxis animates one orbit coordinate towards its target with a
// critically damped harmonica spring.
type springAxis struct {
	Position float64
	Target   float64
	velocity float64
	spring   harmonica.Spring
}

func newSpringAxis(fps int, pos float64) springAxis {
	return springAxis{
		Position: pos,
		Target:   pos,
		// Frequency 6.0 = quick settle, damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

func (a *springAxis) Update() {
	a.Position, a.velocity = a.spring.Update(a.Position, a.velocity, a.Target)
}

// orbit places the eye on a sphere around the camera target.
type orbit struct {
	Yaw, Pitch, Dist springAxis

	fps  int
	home math3d.Vec3 // Initial eye offset from the target
}

// newOrbit starts an orbit at the current eye position of a camera.
func newOrbit(fps int, offset math3d.Vec3) *orbit {
	o := &orbit{fps: fps, home: offset}
	o.Reset()
	return o
}

// Reset jumps back to the initial eye offset.
func (o *orbit) Reset() {
	d := o.home.Len()
	pitch := 0.0
	if d > 0 {
		pitch = math.Asin(o.home.Y / d)
	}
	o.Yaw = newSpringAxis(o.fps, math.Atan2(o.home.X, o.home.Z))
	o.Pitch = newSpringAxis(o.fps, clamp(pitch, -maxPitch, maxPitch))
	o.Dist = newSpringAxis(o.fps, clamp(d, minDist, maxDist))
}

func (o *orbit) Update() {
	o.Yaw.Update()
	o.Pitch.Update()
	o.Dist.Update()
}

func (o *orbit) Rotate(dyaw, dpitch float64) {
	o.Yaw.Target += dyaw
	o.Pitch.Target = clamp(o.Pitch.Target+dpitch, -maxPitch, maxPitch)
}

func (o *orbit) Zoom(d float64) {
	o.Dist.Target = clamp(o.Dist.Target+d, minDist, maxDist)
}

// Offset returns the eye position relative to the target.
func (o *orbit) Offset() math3d.Vec3 {
	y, p, d := o.Yaw.Position, o.Pitch.Position, o.Dist.Position
	return math3d.V3(
		d*math.Cos(p)*math.Sin(y),
		d*math.Sin(p),
		d*math.Cos(p)*math.Cos(y),
	)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// previewKey maps a key press to a change of the preview state.
type previewKey int

const (
	keyNone previewKey = iota
	keyQuit
	keyLeft
	keyRight
	keyUp
	keyDown
	keyCloser
	keyFurther
	keyProjection
	keyReset
	keyMode // keyMode + i selects modes[i]
)

func keyFor(ev uv.KeyPressEvent) previewKey {
	switch {
	case ev.MatchString("escape", "ctrl+c"):
		return keyQuit
	case ev.MatchString("a", "left"):
		return keyLeft
	case ev.MatchString("d", "right"):
		return keyRight
	case ev.MatchString("w", "up"):
		return keyUp
	case ev.MatchString("s", "down"):
		return keyDown
	case ev.MatchString("+", "="):
		return keyCloser
	case ev.MatchString("-", "_"):
		return keyFurther
	case ev.MatchString("p"):
		return keyProjection
	case ev.MatchString("r"):
		return keyReset
	}
	for i := range modes {
		if ev.MatchString(fmt.Sprint(i + 1)) {
			return keyMode + previewKey(i)
		}
	}
	return keyNone
}

// runPreview renders sc to the terminal until the user quits. Terminal
// events are translated on their own goroutine and applied by the render
// loop between frames.
func runPreview(sc *scene, cam *render.Camera, fps int) error {
	if fps <= 0 {
		return fmt.Errorf("invalid fps %d", fps)
	}

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Two pixel rows per terminal cell.
	fb := render.NewFramebuffer(width, height*2)
	depth := render.NewDepthBuffer(width, height*2)

	target := cam.Target()
	view := newOrbit(fps, cam.Eye().Sub(target))
	perspective := cam.Coeff() != 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	keys := make(chan previewKey, 16)
	sizes := make(chan uv.WindowSizeEvent, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-term.Events():
				if !ok {
					cancel()
					return
				}
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					// Only the latest size matters.
					select {
					case <-sizes:
					default:
					}
					sizes <- ev
				case uv.KeyPressEvent:
					if k := keyFor(ev); k != keyNone {
						select {
						case keys <- k:
						default:
						}
					}
				}
			}
		}
	}()

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	targetDuration := time.Second / time.Duration(fps)

	for {
		now := time.Now()

	drain:
		for {
			select {
			case <-ctx.Done():
				cleanup()
				return nil
			case ev := <-sizes:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				fb = render.NewFramebuffer(width, height*2)
				depth = render.NewDepthBuffer(width, height*2)
			case k := <-keys:
				switch k {
				case keyQuit:
					cancel()
				case keyLeft:
					view.Rotate(-yawStep, 0)
				case keyRight:
					view.Rotate(yawStep, 0)
				case keyUp:
					view.Rotate(0, pitchStep)
				case keyDown:
					view.Rotate(0, -pitchStep)
				case keyCloser:
					view.Zoom(-distStep)
				case keyFurther:
					view.Zoom(distStep)
				case keyProjection:
					perspective = !perspective
				case keyReset:
					view.Reset()
				default:
					sc.setMode(modes[k-keyMode])
				}
			default:
				break drain
			}
		}

		view.Update()
		cam.SetEye(target.Add(view.Offset()))
		if perspective {
			cam.SetFocalDistance()
		} else {
			cam.SetProjection(0)
		}

		if width > 0 && height > 0 {
			if _, err := sc.draw(cam, fb, depth); err != nil {
				cleanup()
				return fmt.Errorf("render: %w", err)
			}
			fb.FlipVertically()
			term.Draw(fb)
			if err := term.Display(); err != nil {
				cleanup()
				return fmt.Errorf("display: %w", err)
			}
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
