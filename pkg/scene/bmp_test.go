package scene

import (
	"encoding/binary"
	"os"
	"testing"
)

// writeTestBMP synthesizes a minimal uncompressed 24-bit BMP: a standard
// 14-byte file header plus a 40-byte BITMAPINFOHEADER (only the fields
// LoadBMP reads are given real values), followed by raw BGR pixel bytes
// with no row padding.
func writeTestBMP(t *testing.T, path string, width, height int32, bgr []byte) {
	t.Helper()

	const dataOffset = 54
	buf := make([]byte, dataOffset+len(bgr))

	buf[0], buf[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(buf[2:6], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[10:14], uint32(dataOffset))

	binary.LittleEndian.PutUint32(buf[14:18], 40) // biSize
	binary.LittleEndian.PutUint32(buf[18:22], uint32(width))
	binary.LittleEndian.PutUint32(buf[22:26], uint32(height))
	binary.LittleEndian.PutUint16(buf[26:28], 1)  // planes
	binary.LittleEndian.PutUint16(buf[28:30], 24) // bitcount
	binary.LittleEndian.PutUint32(buf[30:34], 0)  // compression (BI_RGB)
	binary.LittleEndian.PutUint32(buf[34:38], uint32(len(bgr)))

	copy(buf[dataOffset:], bgr)

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write test bmp: %v", err)
	}
}

func TestLoadBMPRoundTripsPixelsAndSwapsChannels(t *testing.T) {
	path := t.TempDir() + "/test.bmp"

	// Two pixels, stored BGR: (B,G,R) = (0,0,255) then (0,255,0).
	bgr := []byte{
		0, 0, 255,
		0, 255, 0,
	}
	writeTestBMP(t, path, 2, 1, bgr)

	tex, err := LoadBMP(path)
	if err != nil {
		t.Fatalf("LoadBMP: %v", err)
	}

	if tex.Width != 2 || tex.Height != 1 {
		t.Fatalf("dimensions = %dx%d, want 2x1", tex.Width, tex.Height)
	}
	if len(tex.Pixels) != 2 {
		t.Fatalf("pixel count = %d, want 2", len(tex.Pixels))
	}

	want := []RGB8{
		{R: 255, G: 0, B: 0},
		{R: 0, G: 255, B: 0},
	}
	for i, w := range want {
		if tex.Pixels[i] != w {
			t.Errorf("pixel %d = %+v, want %+v", i, tex.Pixels[i], w)
		}
	}
}

func TestLoadBMPRejectsCompressed(t *testing.T) {
	path := t.TempDir() + "/compressed.bmp"
	writeTestBMP(t, path, 1, 1, []byte{0, 0, 0})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	binary.LittleEndian.PutUint32(data[30:34], 1) // mark as compressed
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadBMP(path); err == nil {
		t.Error("expected an error loading a compressed bitmap")
	}
}

func TestLoadBMPMissingFileErrors(t *testing.T) {
	if _, err := LoadBMP("/nonexistent/path/does-not-exist.bmp"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
