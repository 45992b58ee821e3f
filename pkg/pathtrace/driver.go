package pathtrace

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/taigrr/raytracer/pkg/math3d"
	"github.com/taigrr/raytracer/pkg/scene"
)

// DriverParams configures a full-frame render.
type DriverParams struct {
	Width, Height int
	Samples       int
	MaxBounces    int
	DebugBVH      bool
	Camera        Camera
	// NumWorkers defaults to runtime.NumCPU() when zero.
	NumWorkers int
	// OnBlockDone, if set, is called after each block finishes, with the
	// block's first pixel index and pixel count, for progress reporting.
	OnBlockDone func(firstPixel, count int)
}

// Driver renders frames against a fixed scene, guarding against concurrent
// renders the way the reference application's UI thread does.
type Driver struct {
	scene *scene.Scene

	mu          sync.Mutex
	isRendering bool
}

// NewDriver returns a driver bound to s. s must not be mutated (including
// by a BVH rebuild) while a render is in flight.
func NewDriver(s *scene.Scene) *Driver {
	return &Driver{scene: s}
}

// IsRendering reports whether a render is currently in progress.
func (d *Driver) IsRendering() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isRendering
}

type block struct {
	first int
	count int
}

// Render produces a width*height RGB framebuffer (row-major, top-left
// origin, 3 bytes per pixel) by sampling params.Samples primary rays per
// pixel across a pool of worker goroutines. It returns an error rather
// than rendering if another render is already in flight on this driver.
// Cancellation of ctx is checked only between blocks, not per-ray: once a
// block starts it runs to completion.
func (d *Driver) Render(ctx context.Context, params DriverParams) ([]byte, error) {
	d.mu.Lock()
	if d.isRendering {
		d.mu.Unlock()
		return nil, fmt.Errorf("pathtrace: render already in progress")
	}
	d.isRendering = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.isRendering = false
		d.mu.Unlock()
	}()

	numWorkers := params.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}

	total := params.Width * params.Height
	out := make([]byte, total*3)

	blockSize := total / numWorkers
	if blockSize <= 0 {
		blockSize = total
	}

	blocks := make(chan block, numWorkers*4)
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range blocks {
				if ctx.Err() != nil {
					continue
				}
				d.renderBlock(params, out, b.first, b.count)
				if params.OnBlockDone != nil {
					params.OnBlockDone(b.first, b.count)
				}
			}
		}()
	}

	for first := 0; first < total; first += blockSize {
		if ctx.Err() != nil {
			break
		}
		count := blockSize
		if first+count > total {
			count = total - first
		}
		blocks <- block{first: first, count: count}
	}
	close(blocks)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("pathtrace: render canceled: %w", err)
	}
	return out, nil
}

// renderBlock samples every pixel in [first, first+count) and writes its
// encoded color into out.
func (d *Driver) renderBlock(params DriverParams, out []byte, first, count int) {
	width, height := params.Width, params.Height

	for index := first; index < first+count; index++ {
		rng := math3d.SeedForPixel(index)

		x := index % width
		y := height - index/width

		aspect := float64(width) / float64(height)
		screenX := (((float64(x) / float64(width)) * 2) - 1) * aspect
		screenY := ((float64(y) / float64(height)) * 2) - 1

		finalColor := math3d.Zero3()
		samples := params.Samples
		if samples < 1 {
			samples = 1
		}

		for s := 0; s < samples; s++ {
			baseRay := params.Camera.RayThroughScreen(screenX, screenY)

			jitterX := (rng.Float64()*2 - 1) * 5e-4
			jitterY := (rng.Float64()*2 - 1) * 5e-4
			dir := math3d.V3(
				baseRay.Direction.X+jitterX,
				baseRay.Direction.Y+jitterY,
				baseRay.Direction.Z,
			).Normalize()

			ray := Ray{Origin: baseRay.Origin, Direction: dir}

			finalColor = finalColor.Add(Trace(&ray, Params{
				MaxBounces: params.MaxBounces,
				DebugBVH:   params.DebugBVH,
			}, d.scene, &rng))

			if params.DebugBVH {
				break
			}
		}

		if !params.DebugBVH {
			finalColor = finalColor.Scale(1.0 / float64(samples))
		}
		finalColor = LinearToGamma(finalColor)
		rgb := ToRGB8(finalColor)

		out[index*3+0] = rgb.R
		out[index*3+1] = rgb.G
		out[index*3+2] = rgb.B
	}
}
