package gfx

import "fmt"

// ResourceID names a frame-scoped temporary texture. Every ID is declared up
// front; nothing is synthesized from strings at runtime.
type ResourceID uint8

const (
	// ResourceNone marks an unused attachment slot.
	ResourceNone ResourceID = iota

	// CameraTarget is the presentation target owned by the caller. It is never
	// acquired or released by the pipeline.
	CameraTarget

	DirectionalShadowAtlas
	SpotPointShadowAtlas

	MotionVectorMap
	ColorAttachment
	DepthAttachment
	ColorMap
	DepthMap

	BloomPrefilter
	BloomPyramid0
	BloomPyramid1
	BloomPyramid2
	BloomPyramid3
	BloomPyramid4
	BloomPyramid5
	BloomPyramid6
	BloomPyramid7
	BloomResult

	ColorGradingLUT
	ColorLUTResult
	AATexture
	MotionBlurResult
	FinalTexture

	// GraphColor and GraphDepth are the declared textures of the render graph executor.
	GraphColor
	GraphDepth

	resourceCount
)

// MaxBloomPyramidLevels is the deepest bloom pyramid the compositor builds.
const MaxBloomPyramidLevels = 4

// bloomPyramid holds two handles per level: the horizontal-blur intermediate at
// 2*level and the fully blurred result at 2*level+1.
var bloomPyramid = [2 * MaxBloomPyramidLevels]ResourceID{
	BloomPyramid0, BloomPyramid1, BloomPyramid2, BloomPyramid3,
	BloomPyramid4, BloomPyramid5, BloomPyramid6, BloomPyramid7,
}

var resourceNames = [resourceCount]string{
	ResourceNone:           "None",
	CameraTarget:           "CameraTarget",
	DirectionalShadowAtlas: "_DirectionalShadowAtlas",
	SpotPointShadowAtlas:   "_SpotPointShadowAtlas",
	MotionVectorMap:        "_MotionVectorMap",
	ColorAttachment:        "_CameraFrameBuffer",
	DepthAttachment:        "_DepthBuffer",
	ColorMap:               "_ColorMap",
	DepthMap:               "_DepthMap",
	BloomPrefilter:         "_BloomPrefilter",
	BloomPyramid0:          "_BloomPyramid0",
	BloomPyramid1:          "_BloomPyramid1",
	BloomPyramid2:          "_BloomPyramid2",
	BloomPyramid3:          "_BloomPyramid3",
	BloomPyramid4:          "_BloomPyramid4",
	BloomPyramid5:          "_BloomPyramid5",
	BloomPyramid6:          "_BloomPyramid6",
	BloomPyramid7:          "_BloomPyramid7",
	BloomResult:            "_BloomResult",
	ColorGradingLUT:        "_ColorGradingLUT",
	ColorLUTResult:         "_ColorLUTResult",
	AATexture:              "_AATexture",
	MotionBlurResult:       "_MotionBlurResult",
	FinalTexture:           "_FinalTexture",
	GraphColor:             "Color Texture",
	GraphDepth:             "Depth",
}

// BloomPyramidIntermediate returns the horizontal-blur handle for a pyramid level.
//
// Parameters:
//   - level: pyramid level in [0, MaxBloomPyramidLevels)
//
// Returns:
//   - ResourceID: the intermediate handle
func BloomPyramidIntermediate(level int) ResourceID {
	return bloomPyramid[2*level]
}

// BloomPyramidResult returns the fully blurred handle for a pyramid level.
//
// Parameters:
//   - level: pyramid level in [0, MaxBloomPyramidLevels)
//
// Returns:
//   - ResourceID: the result handle
func BloomPyramidResult(level int) ResourceID {
	return bloomPyramid[2*level+1]
}

// String returns the shader-facing name of the resource.
func (id ResourceID) String() string {
	if id < resourceCount {
		return resourceNames[id]
	}
	return fmt.Sprintf("ResourceID(%d)", uint8(id))
}

// Temporary reports whether the resource is acquired and released by the pipeline.
func (id ResourceID) Temporary() bool {
	return id > CameraTarget && id < resourceCount
}

// AllResources returns every temporary resource ID in declaration order.
func AllResources() []ResourceID {
	out := make([]ResourceID, 0, resourceCount)
	for id := CameraTarget + 1; id < resourceCount; id++ {
		out = append(out, id)
	}
	return out
}

// Format identifies the storage format of a temporary texture.
type Format uint8

const (
	// FormatDefault is an 8-bit-per-channel RGBA color format.
	FormatDefault Format = iota
	// FormatDefaultHDR is a 16-bit float RGBA color format.
	FormatDefaultHDR
	// FormatDepth is a depth-only format.
	FormatDepth
	// FormatShadowmap is a depth format sampled with comparison.
	FormatShadowmap
)

func (f Format) String() string {
	switch f {
	case FormatDefault:
		return "Default"
	case FormatDefaultHDR:
		return "DefaultHDR"
	case FormatDepth:
		return "Depth"
	case FormatShadowmap:
		return "Shadowmap"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// IsDepth reports whether the format stores depth rather than color.
func (f Format) IsDepth() bool {
	return f == FormatDepth || f == FormatShadowmap
}

// FilterMode selects texture sampling.
type FilterMode uint8

const (
	FilterPoint FilterMode = iota
	FilterBilinear
)

func (f FilterMode) String() string {
	if f == FilterBilinear {
		return "Bilinear"
	}
	return "Point"
}

// TextureDesc describes a temporary texture request.
type TextureDesc struct {
	Width       int
	Height      int
	DepthBits   int
	Filter      FilterMode
	Format      Format
	RandomWrite bool
}

// Validate reports an error for non-positive dimensions.
func (d TextureDesc) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("invalid texture size %dx%d", d.Width, d.Height)
	}
	return nil
}
