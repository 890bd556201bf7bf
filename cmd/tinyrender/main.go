// tinyrender - software rasterizer
// Renders OBJ and GLB models to an image file or, with -preview, to the
// terminal.
//
// Preview controls:
//
//	A/D, Left/Right - Orbit around the target
//	W/S, Up/Down    - Raise/lower the eye
//	+/-             - Move closer/further
//	1-7             - Render mode (flat, gouraud, phong, tangent, shadow, wireframe, depth)
//	P               - Toggle perspective/orthographic
//	R               - Reset view
//	Esc, Ctrl+C     - Quit
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/models"
	"github.com/taigrr/tinyrender/pkg/render"
)

var (
	modeName   = flag.String("mode", "phong", "Render mode: "+modeList())
	outPath    = flag.String("o", "output.png", "Output image (.png, .bmp, .tif, .tiff)")
	width      = flag.Int("width", 800, "Image width in pixels")
	height     = flag.Int("height", 800, "Image height in pixels")
	mapsBase   = flag.String("maps", "", "Texture map base path (default: model path without extension)")
	eyeFlag    = flag.String("eye", "1,1,3", "Camera position (X,Y,Z)")
	targetFlag = flag.String("target", "0,0,0", "Point the camera looks at (X,Y,Z)")
	upFlag     = flag.String("up", "0,1,0", "Camera up vector (X,Y,Z)")
	lightFlag  = flag.String("light", "1,1,1", "Direction towards the light (X,Y,Z)")
	colorFlag  = flag.String("color", "255,255,255", "Base color for flat, gouraud and wireframe modes (R,G,B)")
	bgFlag     = flag.String("bg", "0,0,0", "Background color (R,G,B)")
	ortho      = flag.Bool("ortho", false, "Orthographic projection")
	bias       = flag.Float64("bias", render.DefaultShadowBias, "Shadow depth bias")
	depthWrite = flag.String("depth-write", "before", "When depth is written: before (the fragment stage) or keep (only kept fragments)")
	shadowOut  = flag.String("shadowmap", "", "Also save the shadow map image (shadow mode)")
	filterFlag = flag.String("filter", "nearest", "Texture filter: nearest or bilinear")
	wrapFlag   = flag.String("wrap", "repeat", "Texture wrap outside [0,1]: repeat or clamp")
	checker    = flag.Int("checker", 0, "Replace the diffuse map with a checker pattern of this many texels per square (0: off)")
	fit        = flag.Bool("fit", true, "Center and scale the model into [-1,1]")
	preview    = flag.Bool("preview", false, "Show an interactive view in the terminal instead of writing an image")
	targetFPS  = flag.Int("fps", 30, "Target FPS for -preview")
	verbose    = flag.Bool("v", false, "Log debug output")
)

const checkerSize = 256 // Texels per side of the -checker texture

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tinyrender - software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tinyrender [options] <model.obj|model.glb>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nTexture maps are looked up as <base>_diffuse, _nm, _nm_tangent and _spec\n")
		fmt.Fprintf(os.Stderr, "with any of: %s\n", strings.Join(render.MapExtensions, " "))
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(modelPath string) error {
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	render.SetLogger(logger)

	m, err := parseMode(*modeName)
	if err != nil {
		return err
	}
	policy, err := parseDepthWrite(*depthWrite)
	if err != nil {
		return err
	}
	filter, err := parseFilter(*filterFlag)
	if err != nil {
		return err
	}
	wrap, err := parseWrap(*wrapFlag)
	if err != nil {
		return err
	}

	vecs := make([]math3d.Vec3, 4)
	for i, s := range []string{*eyeFlag, *targetFlag, *upFlag, *lightFlag} {
		if vecs[i], err = parseVec3(s); err != nil {
			return err
		}
	}
	eyePos, target, up, lightDir := vecs[0], vecs[1], vecs[2], vecs[3]

	fg, err := parseColor(*colorFlag)
	if err != nil {
		return err
	}
	bg, err := parseColor(*bgFlag)
	if err != nil {
		return err
	}

	mesh, err := models.Load(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	if *fit {
		if err := mesh.FitUnitCube(); err != nil {
			return fmt.Errorf("fit model: %w", err)
		}
	}
	logger.Info("model loaded",
		"path", filepath.Base(modelPath),
		"vertices", mesh.VertexCount(),
		"faces", mesh.FaceCount(),
	)

	var maps render.Maps
	if m.usesMaps() {
		base := *mapsBase
		if base == "" {
			base = strings.TrimSuffix(modelPath, filepath.Ext(modelPath))
		}
		if maps, err = render.LoadMaps(base); err != nil {
			return fmt.Errorf("load maps: %w", err)
		}
	}
	if maps.Diffuse == nil && mesh.Texture != nil {
		maps.Diffuse = render.TextureFromImage(mesh.Texture)
		logger.Info("using embedded texture",
			"width", mesh.Texture.Bounds().Dx(),
			"height", mesh.Texture.Bounds().Dy(),
		)
	}

	if *checker > 0 {
		maps.Diffuse = render.NewCheckerTexture(checkerSize, checkerSize, *checker, render.ColorWhite, render.ColorGray)
	}
	maps.SetSampling(filter, wrap)

	sc := newScene(mesh, maps, m)
	sc.lighting.Dir = lightDir
	sc.color = fg
	sc.background = bg
	sc.bias = *bias
	sc.pipeline.Rasterizer.DepthWrite = policy

	cam := render.NewCamera(eyePos, target, up)
	if *ortho {
		cam.SetProjection(0)
	}

	if *preview {
		return runPreview(sc, cam, *targetFPS)
	}
	return renderImage(sc, cam, *width, *height, *outPath, *shadowOut)
}

// renderImage renders one frame and writes it, and optionally the shadow
// map, to disk.
func renderImage(sc *scene, cam *render.Camera, w, h int, path, shadowPath string) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("image size %dx%d: %w", w, h, render.ErrEmptyViewport)
	}

	fb := render.NewFramebuffer(w, h)
	depth := render.NewDepthBuffer(w, h)
	sm, err := sc.draw(cam, fb, depth)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	fb.FlipVertically()
	if err := fb.Save(path); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	render.Logger().Info("image written", "path", path, "mode", sc.mode, "width", w, "height", h)

	if sm != nil && shadowPath != "" {
		sm.Image.FlipVertically()
		if err := sm.Image.Save(shadowPath); err != nil {
			return fmt.Errorf("save shadow map: %w", err)
		}
		render.Logger().Info("shadow map written", "path", shadowPath)
	}
	return nil
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) (math3d.Vec3, error) {
	var v math3d.Vec3
	if n, err := fmt.Sscanf(s, "%g,%g,%g", &v.X, &v.Y, &v.Z); err != nil || n != 3 {
		return v, fmt.Errorf("invalid vector %q: want X,Y,Z", s)
	}
	return v, nil
}

// parseColor parses "r,g,b" with 0-255 channels.
func parseColor(s string) (render.Color, error) {
	var r, g, b uint8
	if n, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil || n != 3 {
		return render.Color{}, fmt.Errorf("invalid color %q: want R,G,B", s)
	}
	return render.RGB(r, g, b), nil
}

func parseDepthWrite(s string) (render.DepthWritePolicy, error) {
	switch s {
	case "before":
		return render.DepthWriteBeforeFragment, nil
	case "keep":
		return render.DepthWriteOnKeep, nil
	default:
		return 0, fmt.Errorf("invalid depth write policy %q: want before or keep", s)
	}
}

func parseFilter(s string) (render.FilterMode, error) {
	switch s {
	case "nearest":
		return render.FilterNearest, nil
	case "bilinear":
		return render.FilterBilinear, nil
	default:
		return 0, fmt.Errorf("invalid filter %q: want nearest or bilinear", s)
	}
}

func parseWrap(s string) (render.WrapMode, error) {
	switch s {
	case "repeat":
		return render.WrapRepeat, nil
	case "clamp":
		return render.WrapClamp, nil
	default:
		return 0, fmt.Errorf("invalid wrap mode %q: want repeat or clamp", s)
	}
}
