// Package render provides framebuffer types and image output (PPM, PNG) for
// rendered frames.
package render

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Framebuffer is a 2D array of RGBA pixels that can be saved as PNG or PPM.
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

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
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
		fb.SetPixel(x0, y0, c)
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

// DrawRect draws a filled rectangle.
func (fb *Framebuffer) DrawRect(x, y, w, h int, c color.RGBA) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			fb.SetPixel(px, py, c)
		}
	}
}

// DrawRectOutline draws a rectangle outline.
func (fb *Framebuffer) DrawRectOutline(x, y, w, h int, c color.RGBA) {
	// Top and bottom
	for px := x; px < x+w; px++ {
		fb.SetPixel(px, y, c)
		fb.SetPixel(px, y+h-1, c)
	}
	// Left and right
	for py := y; py < y+h; py++ {
		fb.SetPixel(x, py, c)
		fb.SetPixel(x+w-1, py, c)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, fb.ToImage())
}

// SaveRGBPNG writes a row-major RGB byte buffer (3 bytes per pixel) as a PNG
// file.
func SaveRGBPNG(path string, width, height int, rgb []byte) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		img.SetRGBA(i%width, i/width, color.RGBA{
			R: rgb[i*3+0],
			G: rgb[i*3+1],
			B: rgb[i*3+2],
			A: 255,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png %q: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png %q: %w", path, err)
	}
	return nil
}

// SavePPM saves the framebuffer as an ASCII P3 PPM file.
func (fb *Framebuffer) SavePPM(path string) error {
	rgb := make([]byte, fb.Width*fb.Height*3)
	for i, p := range fb.Pixels {
		rgb[i*3+0] = p.R
		rgb[i*3+1] = p.G
		rgb[i*3+2] = p.B
	}
	return SaveRGBPPM(path, fb.Width, fb.Height, rgb)
}

// SaveRGBPPM writes a row-major RGB byte buffer (3 bytes per pixel) as an
// ASCII P3 PPM file: a "P3\n<width> <height>\n255\n" header followed by
// "r g b " triples, with a line break written after each triple whose
// starting byte offset is a nonzero multiple of width (matching the
// reference writer's check against the byte index rather than the pixel
// index, so breaks fall roughly, not exactly, on row boundaries).
func SaveRGBPPM(path string, width, height int, rgb []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ppm %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "P3\n%d %d\n255\n", width, height); err != nil {
		return fmt.Errorf("write ppm header %q: %w", path, err)
	}

	for index := 0; index < len(rgb); index += 3 {
		if _, err := fmt.Fprintf(w, "%d %d %d ", rgb[index], rgb[index+1], rgb[index+2]); err != nil {
			return fmt.Errorf("write ppm pixel %q: %w", path, err)
		}
		if index%width == 0 && index != 0 {
			if _, err := w.Write([]byte("\n")); err != nil {
				return fmt.Errorf("write ppm newline %q: %w", path, err)
			}
		}
	}

	return w.Flush()
}
