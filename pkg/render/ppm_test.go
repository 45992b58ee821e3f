package render

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"testing"
)

func TestSaveRGBPPMWritesHeaderAndPixels(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/out.ppm"

	rgb := []byte{
		255, 0, 0,
		0, 255, 0,
		0, 0, 255,
		255, 255, 255,
	}
	if err := SaveRGBPPM(path, 2, 2, rgb); err != nil {
		t.Fatalf("SaveRGBPPM: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if !bytes.HasPrefix(data, []byte("P3\n2 2\n255\n")) {
		t.Fatalf("unexpected header: %q", data[:min(20, len(data))])
	}
	if !bytes.Contains(data, []byte("255 0 0 ")) {
		t.Errorf("expected first pixel triple in output, got %q", data)
	}
}

func TestFramebufferSavePPMRoundTrips(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Clear(color.RGBA{R: 10, G: 20, B: 30, A: 255})

	path := t.TempDir() + "/fb.ppm"
	if err := fb.SavePPM(path); err != nil {
		t.Fatalf("SavePPM: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Contains(data, []byte("10 20 30")) {
		t.Errorf("expected cleared color in output, got %q", data)
	}
}

func TestSaveRGBPNGDecodesBackToSamePixels(t *testing.T) {
	rgb := []byte{
		255, 0, 0,
		0, 255, 0,
		0, 0, 255,
		10, 20, 30,
	}
	path := t.TempDir() + "/out.png"
	if err := SaveRGBPNG(path, 2, 2, rgb); err != nil {
		t.Fatalf("SaveRGBPNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 2 || bounds.Dy() != 2 {
		t.Fatalf("decoded image size = %dx%d, want 2x2", bounds.Dx(), bounds.Dy())
	}

	r, g, b, _ := img.At(0, 0).RGBA()
	want := color.RGBA{R: 255, G: 0, B: 0, A: 255}
	if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B {
		t.Errorf("pixel (0,0) = (%d,%d,%d), want (%d,%d,%d)", r>>8, g>>8, b>>8, want.R, want.G, want.B)
	}

	r, g, b, _ = img.At(1, 1).RGBA()
	if uint8(r>>8) != 10 || uint8(g>>8) != 20 || uint8(b>>8) != 30 {
		t.Errorf("pixel (1,1) = (%d,%d,%d), want (10,20,30)", r>>8, g>>8, b>>8)
	}
}
