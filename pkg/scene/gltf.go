package scene

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/raytracer/pkg/math3d"
)

// LoadGLTF loads a glTF document directly into a baked Scene, with no
// indexed-mesh intermediate: each primitive's triangles are unpacked
// straight into Scene.Triangles. Only buffers embedded in a binary (.glb)
// file are read; a document whose geometry buffers are referenced by URI,
// as in a typical JSON (.gltf) file, is rejected with an error. One Material
// is emitted per glTF material (or a single default material if the
// document defines none), using only base color information; no
// metallic-roughness shading is derived from it.
func LoadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %q: %w", path, err)
	}

	s := &Scene{}
	if err := loadGLTFMaterials(doc, s); err != nil {
		return nil, fmt.Errorf("load gltf materials %q: %w", path, err)
	}

	for _, m := range doc.Meshes {
		if err := appendGLTFMesh(doc, m, s); err != nil {
			return nil, fmt.Errorf("gltf mesh %q: %w", m.Name, err)
		}
	}

	if len(s.Materials) == 0 {
		s.Materials = []Material{DefaultMaterial()}
	}

	return s, nil
}

func loadGLTFMaterials(doc *gltf.Document, s *Scene) error {
	for _, m := range doc.Materials {
		mat := DefaultMaterial()
		mat.Name = m.Name

		if m.PBRMetallicRoughness != nil {
			pbr := m.PBRMetallicRoughness
			if pbr.BaseColorFactor != nil {
				c := pbr.BaseColorFactor
				mat.BaseColor = math3d.V3(float64(c[0]), float64(c[1]), float64(c[2]))
			}
			if pbr.MetallicFactor != nil {
				mat.Metallic = float64(*pbr.MetallicFactor)
			}
			if pbr.RoughnessFactor != nil {
				mat.Roughness = float64(*pbr.RoughnessFactor)
			}
			if pbr.BaseColorTexture != nil {
				tex, err := loadGLTFTexture(doc, pbr.BaseColorTexture.Index)
				if err == nil {
					s.Textures = append(s.Textures, tex)
					mat.BaseColorTexID = len(s.Textures) - 1
				}
			}
		}

		if len(m.EmissiveFactor) == 3 {
			mat.Emission = math3d.V3(float64(m.EmissiveFactor[0]), float64(m.EmissiveFactor[1]), float64(m.EmissiveFactor[2]))
		}

		s.Materials = append(s.Materials, mat)
	}
	return nil
}

func loadGLTFTexture(doc *gltf.Document, textureIndex int) (Texture, error) {
	tex := doc.Textures[textureIndex]
	if tex.Source == nil {
		return Texture{}, fmt.Errorf("texture %d has no image source", textureIndex)
	}
	img := doc.Images[*tex.Source]

	var data []byte
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	} else {
		return Texture{}, fmt.Errorf("external glTF image URIs are not supported")
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Texture{}, fmt.Errorf("decode embedded image: %w", err)
	}

	bounds := decoded.Bounds()
	out := Texture{Width: bounds.Dx(), Height: bounds.Dy()}
	out.Pixels = make([]RGB8, 0, out.Width*out.Height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := decoded.At(x, y).RGBA()
			out.Pixels = append(out.Pixels, RGB8{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)})
		}
	}
	return out, nil
}

func appendGLTFMesh(doc *gltf.Document, m *gltf.Mesh, s *Scene) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readGLTFVec3(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readGLTFVec3(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readGLTFVec2(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		materialID := 0
		if prim.Material != nil {
			materialID = *prim.Material
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readGLTFIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			tri := Triangle{MaterialID: materialID}
			idx := [3]int{indices[i], indices[i+1], indices[i+2]}
			for k, vi := range idx {
				v := Vertex{Position: positions[vi]}
				if vi < len(normals) {
					v.Normal = normals[vi]
				}
				if vi < len(uvs) {
					v.TexCoord = uvs[vi]
				}
				tri.V[k] = v
			}
			if len(normals) == 0 {
				edge1 := tri.V[1].Position.Sub(tri.V[0].Position)
				edge2 := tri.V[2].Position.Sub(tri.V[0].Position)
				n := edge1.Cross(edge2).Normalize()
				tri.V[0].Normal, tri.V[1].Normal, tri.V[2].Normal = n, n, n
			}
			s.Triangles = append(s.Triangles, tri)
		}
	}
	return nil
}

func readGLTFVec3(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	data, err := readGLTFAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	floats, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC3")
	}
	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return result, nil
}

func readGLTFVec2(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}
	data, err := readGLTFAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	floats, ok := data.([][2]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC2")
	}
	result := make([]math3d.Vec2, len(floats))
	for i, f := range floats {
		result[i] = math3d.V2(float64(f[0]), float64(f[1]))
	}
	return result, nil
}

func readGLTFIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]
	data, err := readGLTFAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case []uint8:
		result := make([]int, len(v))
		for i, x := range v {
			result[i] = int(x)
		}
		return result, nil
	case []uint16:
		result := make([]int, len(v))
		for i, x := range v {
			result[i] = int(x)
		}
		return result, nil
	case []uint32:
		result := make([]int, len(v))
		for i, x := range v {
			result[i] = int(x)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unexpected index type: %T", data)
	}
}

// readGLTFAccessorData reads raw component data out of an accessor's
// backing buffer view, for the embedded-buffer (.glb) case only.
func readGLTFAccessorData(doc *gltf.Document, accessor *gltf.Accessor) (any, error) {
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]

	if buffer.URI != "" {
		return nil, fmt.Errorf("external glTF buffers are not supported")
	}
	bufData := buffer.Data
	if bufData == nil {
		return nil, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	count := accessor.Count

	switch accessor.Type {
	case gltf.AccessorVec3:
		if stride == 0 {
			stride = 12
		}
		result := make([][3]float32, count)
		for i := 0; i < count; i++ {
			offset := start + i*stride
			for j := 0; j < 3; j++ {
				result[i][j] = readGLTFFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil

	case gltf.AccessorVec2:
		if stride == 0 {
			stride = 8
		}
		result := make([][2]float32, count)
		for i := 0; i < count; i++ {
			offset := start + i*stride
			for j := 0; j < 2; j++ {
				result[i][j] = readGLTFFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil

	case gltf.AccessorScalar:
		if stride == 0 {
			switch accessor.ComponentType {
			case gltf.ComponentUbyte:
				stride = 1
			case gltf.ComponentUshort:
				stride = 2
			case gltf.ComponentUint:
				stride = 4
			}
		}
		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			result := make([]uint8, count)
			for i := 0; i < count; i++ {
				result[i] = bufData[start+i*stride]
			}
			return result, nil
		case gltf.ComponentUshort:
			result := make([]uint16, count)
			for i := 0; i < count; i++ {
				offset := start + i*stride
				result[i] = uint16(bufData[offset]) | uint16(bufData[offset+1])<<8
			}
			return result, nil
		case gltf.ComponentUint:
			result := make([]uint32, count)
			for i := 0; i < count; i++ {
				offset := start + i*stride
				result[i] = uint32(bufData[offset]) |
					uint32(bufData[offset+1])<<8 |
					uint32(bufData[offset+2])<<16 |
					uint32(bufData[offset+3])<<24
			}
			return result, nil
		}
	}

	return nil, fmt.Errorf("unsupported accessor type: %v / %v", accessor.Type, accessor.ComponentType)
}

func readGLTFFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
