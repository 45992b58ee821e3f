package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/raytracer/pkg/math3d"
)

// objVertexBuffer holds the flat v/vt/vn arrays an OBJ file declares before
// any face references them by 1-based index.
type objVertexBuffer struct {
	positions []math3d.Vec3
	texCoords []math3d.Vec2
	normals   []math3d.Vec3
}

// objFace is one triangle's index triples into the vertex buffer, 0-based
// after translation from the file's 1-based indices. An unset
// tex-coord/normal slot holds -1 (absent).
type objFace struct {
	positions  [3]int
	texCoords  [3]int
	normals    [3]int
	materialID int
}

// LoadOBJ loads a Wavefront OBJ scene (with its companion MTL, if any) into
// a baked Scene: triangles carry their vertex data by value, not by index,
// matching the engine's cache-friendly Triangle layout.
func LoadOBJ(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read obj %q: %w", path, err)
	}

	dir := filepath.Dir(path)
	lines := nonCommentLines(string(data))

	materials, textures, err := loadMaterialLib(dir, lines)
	if err != nil {
		return nil, fmt.Errorf("load obj %q: %w", path, err)
	}

	var buf objVertexBuffer
	var faces []objFace
	activeMaterial := 0
	materialByName := map[string]int{}
	for i, m := range materials {
		materialByName[m.Name] = i
	}

	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			buf.positions = append(buf.positions, parseVec3(fields[1:]))
		case "vt":
			buf.texCoords = append(buf.texCoords, parseVec2(fields[1:]))
		case "vn":
			buf.normals = append(buf.normals, parseVec3(fields[1:]))
		case "usemtl":
			name := strings.TrimSpace(strings.TrimPrefix(line, "usemtl"))
			if id, ok := materialByName[name]; ok {
				activeMaterial = id
			} else {
				activeMaterial = 0
			}
		case "f":
			fs, ferr := parseFace(fields[1:])
			if ferr != nil {
				return nil, fmt.Errorf("parse obj %q: %w", path, ferr)
			}
			for i := range fs {
				fs[i].materialID = activeMaterial
			}
			faces = append(faces, fs...)
		}
	}

	s := &Scene{Materials: materials, Textures: textures}

	hasNormals := len(buf.normals) > 0
	for _, f := range faces {
		var tri Triangle
		tri.MaterialID = f.materialID
		for i := 0; i < 3; i++ {
			v := Vertex{}
			if p := f.positions[i]; p >= 0 && p < len(buf.positions) {
				v.Position = buf.positions[p]
			}
			if t := f.texCoords[i]; t >= 0 && t < len(buf.texCoords) {
				v.TexCoord = buf.texCoords[t]
			}
			if n := f.normals[i]; n >= 0 && n < len(buf.normals) {
				v.Normal = buf.normals[n]
			}
			tri.V[i] = v
		}
		if !hasNormals {
			edge1 := tri.V[1].Position.Sub(tri.V[0].Position)
			edge2 := tri.V[2].Position.Sub(tri.V[0].Position)
			n := edge1.Cross(edge2).Normalize()
			tri.V[0].Normal, tri.V[1].Normal, tri.V[2].Normal = n, n, n
		}
		s.Triangles = append(s.Triangles, tri)
	}

	if len(s.Materials) == 0 {
		s.Materials = []Material{DefaultMaterial()}
	}

	return s, nil
}

func nonCommentLines(data string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func parseVec3(fields []string) math3d.Vec3 {
	var v [3]float64
	for i := 0; i < len(fields) && i < 3; i++ {
		v[i], _ = strconv.ParseFloat(fields[i], 64)
	}
	return math3d.V3(v[0], v[1], v[2])
}

func parseVec2(fields []string) math3d.Vec2 {
	var v [2]float64
	for i := 0; i < len(fields) && i < 2; i++ {
		v[i], _ = strconv.ParseFloat(fields[i], 64)
	}
	return math3d.V2(v[0], v[1])
}

// parseFace parses one "f ..." line's vertex tokens (each in v, v/vt,
// v//vn, or v/vt/vn form), fan-triangulating around the first vertex when
// more than three are present. Negative OBJ indices are not supported.
func parseFace(tokens []string) ([]objFace, error) {
	type idx struct{ p, t, n int }
	verts := make([]idx, len(tokens))
	for i, tok := range tokens {
		parts := strings.Split(tok, "/")
		v := idx{p: -1, t: -1, n: -1}
		var err error
		if v.p, err = readObjIndex(parts[0]); err != nil {
			return nil, err
		}
		if len(parts) >= 2 && parts[1] != "" {
			if v.t, err = readObjIndex(parts[1]); err != nil {
				return nil, err
			}
		}
		if len(parts) >= 3 && parts[2] != "" {
			if v.n, err = readObjIndex(parts[2]); err != nil {
				return nil, err
			}
		}
		verts[i] = v
	}

	if len(verts) < 3 {
		return nil, fmt.Errorf("face has fewer than 3 vertices")
	}

	var faces []objFace
	for i := 1; i+1 < len(verts); i++ {
		a, b, c := verts[0], verts[i], verts[i+1]
		faces = append(faces, objFace{
			positions: [3]int{a.p, b.p, c.p},
			texCoords: [3]int{a.t, b.t, c.t},
			normals:   [3]int{a.n, b.n, c.n},
		})
	}
	return faces, nil
}

func readObjIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1, fmt.Errorf("bad obj index %q: %w", s, err)
	}
	if n < 1 {
		return -1, fmt.Errorf("negative indices are not supported for OBJ (got %d)", n)
	}
	return n - 1, nil
}

// loadMaterialLib finds an "mtllib" directive among lines and, if present,
// loads the referenced MTL file relative to the OBJ's directory. Absent a
// directive or a missing file, a single default material is returned.
func loadMaterialLib(dir string, lines []string) ([]Material, []Texture, error) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "mtllib") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(trimmed, "mtllib"))
		mtlPath := filepath.Join(dir, name)
		if _, err := os.Stat(mtlPath); err != nil {
			logWarning("could not find material file %q, using defaults", mtlPath)
			return []Material{DefaultMaterial()}, nil, nil
		}
		return loadMTL(mtlPath)
	}
	return []Material{DefaultMaterial()}, nil, nil
}

func loadMTL(path string) ([]Material, []Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read mtl %q: %w", path, err)
	}
	dir := filepath.Dir(path)

	var materials []Material
	var textures []Texture
	var cur *Material

	for _, line := range nonCommentLines(string(data)) {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "newmtl" {
			if cur != nil {
				materials = append(materials, *cur)
			}
			m := DefaultMaterial()
			m.Name = strings.Join(fields[1:], " ")
			cur = &m
			continue
		}
		if cur == nil {
			continue
		}
		switch fields[0] {
		case "Kd":
			cur.BaseColor = parseVec3(fields[1:])
		case "Ks":
			cur.SpecularTint = parseVec3(fields[1:])
		case "Ke":
			cur.Emission = parseVec3(fields[1:])
		case "Ni":
			if len(fields) > 1 {
				cur.IOR, _ = strconv.ParseFloat(fields[1], 64)
			}
		case "Pr":
			if len(fields) > 1 {
				cur.Roughness, _ = strconv.ParseFloat(fields[1], 64)
			}
		case "Pm":
			if len(fields) > 1 {
				cur.Metallic, _ = strconv.ParseFloat(fields[1], 64)
			}
		case "Tf":
			if len(fields) > 1 {
				cur.Transmission, _ = strconv.ParseFloat(fields[1], 64)
			}
		case "map_Kd":
			if len(fields) > 1 {
				texPath := filepath.Join(dir, fields[1])
				tex, terr := loadTextureFile(texPath)
				if terr != nil {
					logWarning("could not load base color texture %q, using base color: %v", texPath, terr)
				} else {
					textures = append(textures, tex)
					cur.BaseColorTexID = len(textures) - 1
				}
			}
		case "map_Ke":
			if len(fields) > 1 {
				texPath := filepath.Join(dir, fields[1])
				tex, terr := loadTextureFile(texPath)
				if terr != nil {
					logWarning("could not load emission texture %q, using emission color: %v", texPath, terr)
				} else {
					textures = append(textures, tex)
					cur.EmissionTexID = len(textures) - 1
				}
			}
		}
	}
	if cur != nil {
		materials = append(materials, *cur)
	}
	if len(materials) == 0 {
		materials = []Material{DefaultMaterial()}
	}
	return materials, textures, nil
}

// loadTextureFile dispatches on extension; only BMP is a supported texture
// format, matching the reference renderer.
func loadTextureFile(path string) (Texture, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".bmp" {
		return Texture{}, fmt.Errorf("unsupported texture format %q at %q", ext, path)
	}
	return LoadBMP(path)
}
