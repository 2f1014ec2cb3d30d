package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/jscad-view/common"
)

// GPUCameraUniformSource is the WGSL declaration of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (80 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Size: 80 bytes (WGSL uniform aligned).
type GPUCameraUniform struct {
	ViewProj  [16]float32 // offset  0: view-projection matrix with 0..1 depth (mat4x4<f32>)
	Eye       [3]float32  // offset 64: world-space camera position (vec3<f32>)
	PointSize float32     // offset 76: rasterized line width hint in pixels
}

// NewGPUCameraUniform packs a camera for upload. The projection is converted to the WebGPU
// depth range.
//
// Parameters:
//   - c: the camera to pack
//
// Returns:
//   - GPUCameraUniform: the uniform contents
func NewGPUCameraUniform(c Camera) GPUCameraUniform {
	return GPUCameraUniform{
		ViewProj:  common.DepthZeroToOne(c.Projection).Mul4(c.View),
		Eye:       c.Position,
		PointSize: 1,
	}
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Eye[i]))
	}
	binary.LittleEndian.PutUint32(buf[76:], math.Float32bits(g.PointSize))
	return buf
}
