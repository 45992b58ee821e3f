package scene

import (
	"math"
	"testing"
)

func TestLoadOBJFanTriangulatesQuad(t *testing.T) {
	s, err := LoadOBJ("testdata/cube.obj")
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}

	if len(s.Triangles) != 2 {
		t.Fatalf("quad face should fan-triangulate into 2 triangles, got %d", len(s.Triangles))
	}

	for i, tri := range s.Triangles {
		sum := tri.V[0].Normal.Add(tri.V[1].Normal).Add(tri.V[2].Normal)
		if sum.X == 0 && sum.Y == 0 && sum.Z == 0 {
			t.Errorf("triangle %d: expected generated face normal, got zero", i)
		}
	}
}

func TestLoadOBJResolvesMaterial(t *testing.T) {
	s, err := LoadOBJ("testdata/cube.obj")
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}

	if len(s.Materials) != 1 {
		t.Fatalf("expected 1 material from cube.mtl, got %d", len(s.Materials))
	}
	mat := s.Materials[0]
	if mat.Name != "red" {
		t.Errorf("material name = %q, want %q", mat.Name, "red")
	}
	if math.Abs(mat.BaseColor.X-0.8) > 1e-9 {
		t.Errorf("BaseColor.X = %v, want 0.8", mat.BaseColor.X)
	}
	if math.Abs(mat.IOR-1.5) > 1e-9 {
		t.Errorf("IOR = %v, want 1.5", mat.IOR)
	}

	for _, tri := range s.Triangles {
		if tri.MaterialID != 0 {
			t.Errorf("triangle material id = %d, want 0 (only material defined)", tri.MaterialID)
		}
	}
}

func TestLoadOBJMissingFileErrors(t *testing.T) {
	if _, err := LoadOBJ("testdata/does-not-exist.obj"); err == nil {
		t.Error("expected error loading nonexistent OBJ file")
	}
}

func TestLoadOBJTexCoordsPreserved(t *testing.T) {
	s, err := LoadOBJ("testdata/cube.obj")
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	first := s.Triangles[0].V[0]
	if first.TexCoord.U != 0 || first.TexCoord.V != 0 {
		t.Errorf("first vertex texcoord = %v, want (0,0)", first.TexCoord)
	}
}
