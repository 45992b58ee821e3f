// raytrace - offline Monte Carlo path tracer for triangle meshes.
//
// Loads an OBJ (or glTF) scene, builds a SAH-binned BVH over it, and
// renders it to a PPM or PNG image (chosen by the output file's extension)
// using a parallel pixel-sampling driver.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/taigrr/raytracer/pkg/bvh"
	"github.com/taigrr/raytracer/pkg/math3d"
	"github.com/taigrr/raytracer/pkg/pathtrace"
	"github.com/taigrr/raytracer/pkg/render"
	"github.com/taigrr/raytracer/pkg/scene"
)

const (
	defaultWidth      = 800
	defaultHeight     = 600
	defaultSamples    = 50
	defaultMaxBounces = 3
)

var (
	width      = flag.Int("width", defaultWidth, "Output image width")
	height     = flag.Int("height", defaultHeight, "Output image height")
	samples    = flag.Int("samples", defaultSamples, "Samples per pixel")
	maxBounces = flag.Int("bounces", defaultMaxBounces, "Maximum bounce count")
	debugBVH   = flag.Bool("debug-bvh", false, "Render a false-color BVH traversal visualization instead of shading")
	outPath    = flag.String("o", "output.ppm", "Output image path (.ppm or .png)")
	cameraPos  = flag.String("camera-pos", "0,0,8", "Camera position as \"x,y,z\"")
	cameraAt   = flag.String("camera-target", "0,0,0", "Camera look-at target as \"x,y,z\"")
	workers    = flag.Int("workers", 0, "Worker goroutines (0 = number of CPUs)")
	progress   = flag.Bool("progress", true, "Show a live progress bar on stderr")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "raytrace - offline path tracer for triangle meshes\n\n")
		fmt.Fprintf(os.Stderr, "Usage: raytrace [options] <model.obj|model.gltf|model.glb>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

func run(scenePath string) error {
	logInfo("Parameters")
	logInfo("- Width:        %d", *width)
	logInfo("- Height:       %d", *height)
	logInfo("- Sample count: %d", *samples)
	logInfo("- Max bounces:  %d", *maxBounces)
	logInfo("- BVH debug:    %v", *debugBVH)
	logInfo("- Input file:   %s", scenePath)

	camPos, err := parseVec3(*cameraPos)
	if err != nil {
		return fmt.Errorf("camera-pos: %w", err)
	}
	camTarget, err := parseVec3(*cameraAt)
	if err != nil {
		return fmt.Errorf("camera-target: %w", err)
	}

	logInfo("Loading scene...")
	s, err := loadScene(scenePath)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	logInfo("Loaded %d triangles, %d materials, %d textures", len(s.Triangles), len(s.Materials), len(s.Textures))

	buildStart := time.Now()
	stats := bvh.Build(s)
	logInfo("BVH statistics")
	logInfo("- Build time:    %s", time.Since(buildStart))
	logInfo("- Total nodes:   %d", stats.TotalNodes)
	logInfo("- Leaf nodes:    %d", stats.LeafNodes)
	logInfo("- Avg leaf tris: %.2f", stats.AvgLeafTris)
	logInfo("- Min leaf tris: %d", stats.MinLeafTris)
	logInfo("- Max leaf tris: %d", stats.MaxLeafTris)

	camera := pathtrace.NewCamera(camPos, camTarget, math3d.V3(0, 1, 0))
	driver := pathtrace.NewDriver(s)

	var bar *render.Progress
	total := *width * *height
	if *progress {
		bar = render.NewProgress(30)
	}
	var done int

	renderStart := time.Now()
	out, err := driver.Render(context.Background(), pathtrace.DriverParams{
		Width:      *width,
		Height:     *height,
		Samples:    *samples,
		MaxBounces: *maxBounces,
		DebugBVH:   *debugBVH,
		Camera:     camera,
		NumWorkers: *workers,
		OnBlockDone: func(first, count int) {
			if bar == nil {
				return
			}
			done += count
			bar.Set(float64(done) / float64(total))
			bar.Update()
			fmt.Fprintf(os.Stderr, "\r%s", bar.Bar(30))
		},
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if *progress {
		fmt.Fprintln(os.Stderr)
	}
	logInfo("Rendering completed in %s", time.Since(renderStart))

	return writeImage(*outPath, *width, *height, out)
}

func loadScene(path string) (*scene.Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return scene.LoadOBJ(path)
	case ".gltf", ".glb":
		return scene.LoadGLTF(path)
	default:
		return nil, fmt.Errorf("unrecognized scene format %q", path)
	}
}

func writeImage(path string, width, height int, rgb []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return render.SaveRGBPNG(path, width, height, rgb)
	default:
		return render.SaveRGBPPM(path, width, height, rgb)
	}
}

func parseVec3(s string) (math3d.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math3d.Vec3{}, fmt.Errorf("expected \"x,y,z\", got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("bad component %q: %w", p, err)
		}
		v[i] = f
	}
	return math3d.V3(v[0], v[1], v[2]), nil
}

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\n\x1b[38;5;14m[INFO]\x1b[0m "+format, args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\n\x1b[38;5;196m[ERROR]\x1b[0m "+format, args...)
}
