package gfx

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/game_object"
)

// Op identifies the kind of a recorded command.
type Op uint8

const (
	OpGetTemporary Op = iota
	OpRelease
	OpSetRenderTarget
	OpClear
	OpSetViewport
	OpSetViewProjection
	OpSetupCamera
	OpDrawRenderers
	OpDrawShadows
	OpDrawSkybox
	OpDrawFullscreen
	OpCopy
	OpBlit
	OpDispatch
	OpBeginSample
	OpEndSample
)

var opNames = [...]string{
	OpGetTemporary:      "GetTemporary",
	OpRelease:           "Release",
	OpSetRenderTarget:   "SetRenderTarget",
	OpClear:             "Clear",
	OpSetViewport:       "SetViewport",
	OpSetViewProjection: "SetViewProjection",
	OpSetupCamera:       "SetupCamera",
	OpDrawRenderers:     "DrawRenderers",
	OpDrawShadows:       "DrawShadows",
	OpDrawSkybox:        "DrawSkybox",
	OpDrawFullscreen:    "DrawFullscreen",
	OpCopy:              "Copy",
	OpBlit:              "Blit",
	OpDispatch:          "Dispatch",
	OpBeginSample:       "BeginSample",
	OpEndSample:         "EndSample",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// SortMode selects how DrawRenderers orders its object list.
type SortMode uint8

const (
	SortNone SortMode = iota
	// SortCommonOpaque orders front to back.
	SortCommonOpaque
	// SortCommonTransparent orders back to front.
	SortCommonTransparent
)

// Command is one recorded device operation.
type Command interface {
	Op() Op
}

// GetTemporary acquires a named temporary texture for the rest of the frame.
type GetTemporary struct {
	ID   ResourceID
	Desc TextureDesc
}

// Release returns a named temporary texture.
type Release struct {
	ID ResourceID
}

// SetRenderTarget binds color and depth attachments. Either may be ResourceNone.
type SetRenderTarget struct {
	Color ResourceID
	Depth ResourceID
}

// Clear clears the bound attachments.
type Clear struct {
	Depth bool
	Color bool
	Value common.Color
}

// SetViewport restricts rasterization to a pixel rectangle of the bound target.
type SetViewport struct {
	Rect common.Rect
}

// SetViewProjection sets the active view and projection matrices.
type SetViewProjection struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// SetupCamera binds the built-in per-camera shader state.
type SetupCamera struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Position   mgl32.Vec3
	Skybox     common.Color
}

// DrawRenderers draws an already filtered and sorted object list once per pass tag.
// Override, when set, replaces each object's own material.
type DrawRenderers struct {
	Objects  []game_object.GameObject
	Queue    game_object.QueueRange
	Sort     SortMode
	PassTags []string
	Override *Pass
}

// DrawShadows draws the shadow casters of one light into the bound depth target.
// Split is the cascade index for directional lights and the cube face for point
// lights.
type DrawShadows struct {
	LightIndex int
	Split      int
	Casters    []game_object.GameObject
}

// DrawSkybox draws the camera background.
type DrawSkybox struct {
	Color common.Color
}

// DrawFullscreen draws a full-screen triangle with a material pass. Sources are
// bound in order as the pass inputs.
type DrawFullscreen struct {
	Pass    Pass
	Sources []ResourceID
	Target  ResourceID
}

// Copy copies src into dst texel for texel. Sizes must match.
type Copy struct {
	Src ResourceID
	Dst ResourceID
}

// Blit copies src into dst resampling as needed.
type Blit struct {
	Src ResourceID
	Dst ResourceID
}

// Dispatch runs a compute kernel that reads and writes Target in place.
type Dispatch struct {
	Kernel  string
	Target  ResourceID
	GroupsX int
	GroupsY int
	GroupsZ int
}

// BeginSample opens a named profiling scope.
type BeginSample struct {
	Name string
}

// EndSample closes the matching profiling scope.
type EndSample struct {
	Name string
}

func (GetTemporary) Op() Op      { return OpGetTemporary }
func (Release) Op() Op           { return OpRelease }
func (SetRenderTarget) Op() Op   { return OpSetRenderTarget }
func (Clear) Op() Op             { return OpClear }
func (SetViewport) Op() Op       { return OpSetViewport }
func (SetViewProjection) Op() Op { return OpSetViewProjection }
func (SetupCamera) Op() Op       { return OpSetupCamera }
func (DrawRenderers) Op() Op     { return OpDrawRenderers }
func (DrawShadows) Op() Op       { return OpDrawShadows }
func (DrawSkybox) Op() Op        { return OpDrawSkybox }
func (DrawFullscreen) Op() Op    { return OpDrawFullscreen }
func (Copy) Op() Op              { return OpCopy }
func (Blit) Op() Op              { return OpBlit }
func (Dispatch) Op() Op          { return OpDispatch }
func (BeginSample) Op() Op       { return OpBeginSample }
func (EndSample) Op() Op         { return OpEndSample }

// CommandBuffer records commands in submission order. It is not safe for
// concurrent use; a frame records on one goroutine.
type CommandBuffer struct {
	name     string
	commands []Command
}

// NewCommandBuffer creates an empty command buffer.
//
// Parameters:
//   - name: a label used in logs and profiling scopes
//
// Returns:
//   - *CommandBuffer: the new buffer
func NewCommandBuffer(name string) *CommandBuffer {
	return &CommandBuffer{name: name, commands: make([]Command, 0, 64)}
}

// Name returns the buffer label.
func (cb *CommandBuffer) Name() string { return cb.name }

// Commands returns the recorded commands. The slice is owned by the buffer.
func (cb *CommandBuffer) Commands() []Command { return cb.commands }

// Len returns the number of recorded commands.
func (cb *CommandBuffer) Len() int { return len(cb.commands) }

// Reset drops all recorded commands, keeping capacity.
func (cb *CommandBuffer) Reset() {
	clear(cb.commands)
	cb.commands = cb.commands[:0]
}

func (cb *CommandBuffer) add(c Command) {
	cb.commands = append(cb.commands, c)
}

// GetTemporary records acquisition of a temporary texture.
func (cb *CommandBuffer) GetTemporary(id ResourceID, desc TextureDesc) {
	cb.add(GetTemporary{ID: id, Desc: desc})
}

// Release records release of a temporary texture.
func (cb *CommandBuffer) Release(id ResourceID) {
	cb.add(Release{ID: id})
}

// SetRenderTarget records an attachment binding.
func (cb *CommandBuffer) SetRenderTarget(color, depth ResourceID) {
	cb.add(SetRenderTarget{Color: color, Depth: depth})
}

// Clear records a clear of the bound attachments.
func (cb *CommandBuffer) Clear(depth, color bool, value common.Color) {
	cb.add(Clear{Depth: depth, Color: color, Value: value})
}

// SetViewport records a viewport change.
func (cb *CommandBuffer) SetViewport(r common.Rect) {
	cb.add(SetViewport{Rect: r})
}

// SetViewProjection records a view/projection change.
func (cb *CommandBuffer) SetViewProjection(view, projection mgl32.Mat4) {
	cb.add(SetViewProjection{View: view, Projection: projection})
}

// SetupCamera records the per-camera shader state setup.
func (cb *CommandBuffer) SetupCamera(c SetupCamera) {
	cb.add(c)
}

// DrawRenderers records a geometry draw.
func (cb *CommandBuffer) DrawRenderers(d DrawRenderers) {
	cb.add(d)
}

// DrawShadows records a shadow caster draw.
func (cb *CommandBuffer) DrawShadows(lightIndex, split int, casters []game_object.GameObject) {
	cb.add(DrawShadows{LightIndex: lightIndex, Split: split, Casters: casters})
}

// DrawSkybox records a skybox draw.
func (cb *CommandBuffer) DrawSkybox(color common.Color) {
	cb.add(DrawSkybox{Color: color})
}

// DrawFullscreen records a full-screen pass from sources into target.
func (cb *CommandBuffer) DrawFullscreen(pass Pass, target ResourceID, sources ...ResourceID) {
	cb.add(DrawFullscreen{Pass: pass, Sources: sources, Target: target})
}

// Copy records a texel-exact copy.
func (cb *CommandBuffer) Copy(src, dst ResourceID) {
	cb.add(Copy{Src: src, Dst: dst})
}

// Blit records a resampling copy.
func (cb *CommandBuffer) Blit(src, dst ResourceID) {
	cb.add(Blit{Src: src, Dst: dst})
}

// Dispatch records a compute dispatch.
func (cb *CommandBuffer) Dispatch(kernel string, target ResourceID, x, y, z int) {
	cb.add(Dispatch{Kernel: kernel, Target: target, GroupsX: x, GroupsY: y, GroupsZ: z})
}

// BeginSample opens a profiling scope.
func (cb *CommandBuffer) BeginSample(name string) {
	cb.add(BeginSample{Name: name})
}

// EndSample closes a profiling scope.
func (cb *CommandBuffer) EndSample(name string) {
	cb.add(EndSample{Name: name})
}

// Count returns how many recorded commands have the given op.
func (cb *CommandBuffer) Count(op Op) int {
	n := 0
	for _, c := range cb.commands {
		if c.Op() == op {
			n++
		}
	}
	return n
}

// Access lists the resources a command reads and writes. Draw commands write
// whatever target is currently bound, which the caller tracks; they are
// reported here with no explicit writes.
//
// Parameters:
//   - c: the command
//
// Returns:
//   - reads: resources sampled or copied from
//   - writes: resources written to
func Access(c Command) (reads, writes []ResourceID) {
	switch c := c.(type) {
	case SetRenderTarget:
		for _, id := range []ResourceID{c.Color, c.Depth} {
			if id != ResourceNone {
				writes = append(writes, id)
			}
		}
		return nil, writes
	case DrawFullscreen:
		return c.Sources, []ResourceID{c.Target}
	case Copy:
		return []ResourceID{c.Src}, []ResourceID{c.Dst}
	case Blit:
		return []ResourceID{c.Src}, []ResourceID{c.Dst}
	case Dispatch:
		return []ResourceID{c.Target}, []ResourceID{c.Target}
	}
	return nil, nil
}
