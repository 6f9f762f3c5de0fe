package gfx

import "fmt"

// Material identifies a full-screen or override material known to the device.
type Material uint8

const (
	MaterialPostProcess Material = iota
	MaterialMotionBlur
	MaterialMotionVector
	MaterialDebug
	materialCount
)

func (m Material) String() string {
	switch m {
	case MaterialPostProcess:
		return "PostProcess"
	case MaterialMotionBlur:
		return "MotionBlur"
	case MaterialMotionVector:
		return "MotionVector"
	case MaterialDebug:
		return "Debug"
	default:
		return fmt.Sprintf("Material(%d)", uint8(m))
	}
}

// PassKind names a shader pass independent of the material that hosts it.
type PassKind uint8

const (
	PassCopy PassKind = iota
	PassBloomPrefilter
	PassBloomHorizontal
	PassBloomVertical
	PassBloomCombine
	PassToneMapping
	PassFinal
	PassFXAA
	PassMotionBlur
	PassMotionVector
	PassWireframe
	PassUnlit
	passKindCount
)

var passKindNames = [passKindCount]string{
	PassCopy:            "Copy",
	PassBloomPrefilter:  "BloomPrefilter",
	PassBloomHorizontal: "BloomHorizontal",
	PassBloomVertical:   "BloomVertical",
	PassBloomCombine:    "BloomCombine",
	PassToneMapping:     "ToneMapping",
	PassFinal:           "Final",
	PassFXAA:            "FXAA",
	PassMotionBlur:      "MotionBlur",
	PassMotionVector:    "MotionVector",
	PassWireframe:       "Wireframe",
	PassUnlit:           "Unlit",
}

func (k PassKind) String() string {
	if k < passKindCount {
		return passKindNames[k]
	}
	return fmt.Sprintf("PassKind(%d)", uint8(k))
}

// passTable lists, per material, the pass kinds in shader pass index order.
// The array length is fixed by materialCount so a new material without a table
// entry fails to compile.
var passTable = [materialCount][]PassKind{
	MaterialPostProcess: {
		PassCopy,
		PassBloomPrefilter,
		PassBloomHorizontal,
		PassBloomVertical,
		PassBloomCombine,
		PassToneMapping,
		PassFinal,
		PassFXAA,
	},
	MaterialMotionBlur:   {PassMotionBlur},
	MaterialMotionVector: {PassMotionVector},
	MaterialDebug:        {PassWireframe, PassUnlit},
}

// Pass selects one shader pass of a material.
type Pass struct {
	Material Material
	Kind     PassKind
}

var (
	CopyPass            = Pass{MaterialPostProcess, PassCopy}
	BloomPrefilterPass  = Pass{MaterialPostProcess, PassBloomPrefilter}
	BloomHorizontalPass = Pass{MaterialPostProcess, PassBloomHorizontal}
	BloomVerticalPass   = Pass{MaterialPostProcess, PassBloomVertical}
	BloomCombinePass    = Pass{MaterialPostProcess, PassBloomCombine}
	ToneMappingPass     = Pass{MaterialPostProcess, PassToneMapping}
	FinalPass           = Pass{MaterialPostProcess, PassFinal}
	FXAAPass            = Pass{MaterialPostProcess, PassFXAA}
	MotionBlurPass      = Pass{MaterialMotionBlur, PassMotionBlur}
	MotionVectorPass    = Pass{MaterialMotionVector, PassMotionVector}
	WireframePass       = Pass{MaterialDebug, PassWireframe}
	UnlitPass           = Pass{MaterialDebug, PassUnlit}
)

// Index returns the shader pass index of p within its material.
//
// Returns:
//   - int: the pass index
//   - bool: false if the material does not host the pass kind
func (p Pass) Index() (int, bool) {
	if p.Material >= materialCount {
		return 0, false
	}
	for i, k := range passTable[p.Material] {
		if k == p.Kind {
			return i, true
		}
	}
	return 0, false
}

func (p Pass) String() string {
	return p.Material.String() + "/" + p.Kind.String()
}
