// Package rendergraph records passes that declare the textures they read and
// write, and derives each texture's lifetime from those declarations: a
// texture is acquired (and optionally cleared) right before the first pass
// that uses it and released right after the last one.
package rendergraph

import (
	"errors"
	"fmt"

	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/gfx"
)

var (
	// ErrUnknownTexture is returned when a pass uses a texture the graph never created.
	ErrUnknownTexture = errors.New("texture not created in graph")
	// ErrDuplicateTexture is returned when a texture is created twice.
	ErrDuplicateTexture = errors.New("texture already created in graph")
)

// TextureDesc describes a graph-owned texture.
type TextureDesc struct {
	gfx.TextureDesc
	// Clear clears the texture before its first use.
	Clear      bool
	ClearColor common.Color
}

// RenderFunc records the body of a pass.
type RenderFunc func(cb *gfx.CommandBuffer)

// PassBuilder collects the declarations of one pass.
type PassBuilder struct {
	graph *Graph
	pass  *pass
}

// Read declares that the pass samples id.
func (b *PassBuilder) Read(id gfx.ResourceID) *PassBuilder {
	b.pass.reads = append(b.pass.reads, id)
	return b
}

// Write declares that the pass renders into id.
func (b *PassBuilder) Write(id gfx.ResourceID) *PassBuilder {
	b.pass.writes = append(b.pass.writes, id)
	return b
}

// SetRenderFunc sets the pass body.
func (b *PassBuilder) SetRenderFunc(fn RenderFunc) {
	b.pass.render = fn
}

type pass struct {
	name   string
	reads  []gfx.ResourceID
	writes []gfx.ResourceID
	render RenderFunc
}

type texture struct {
	id    gfx.ResourceID
	desc  TextureDesc
	first int
	last  int
}

// Graph is a single-frame render graph. Build it, Execute it once, then
// Reset before recording the next frame.
type Graph struct {
	textures []*texture
	byID     map[gfx.ResourceID]*texture
	passes   []*pass
}

// New creates an empty Graph.
//
// Returns:
//   - *Graph: the graph
func New() *Graph {
	return &Graph{byID: make(map[gfx.ResourceID]*texture)}
}

// Reset drops every texture and pass.
func (g *Graph) Reset() {
	g.textures = g.textures[:0]
	g.passes = g.passes[:0]
	clear(g.byID)
}

// CreateTexture declares a graph-owned texture.
//
// Parameters:
//   - id: the texture handle
//   - desc: the texture description
//
// Returns:
//   - error: ErrDuplicateTexture when id was already created
func (g *Graph) CreateTexture(id gfx.ResourceID, desc TextureDesc) error {
	if _, ok := g.byID[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTexture, id)
	}
	t := &texture{id: id, desc: desc, first: -1, last: -1}
	g.textures = append(g.textures, t)
	g.byID[id] = t
	return nil
}

// AddPass appends a pass and returns its builder.
//
// Parameters:
//   - name: the profiling scope name of the pass
//
// Returns:
//   - *PassBuilder: the builder for the pass declarations
func (g *Graph) AddPass(name string) *PassBuilder {
	p := &pass{name: name}
	g.passes = append(g.passes, p)
	return &PassBuilder{graph: g, pass: p}
}

// compile resolves first and last use of every texture.
func (g *Graph) compile() error {
	for _, t := range g.textures {
		t.first, t.last = -1, -1
	}
	for i, p := range g.passes {
		for _, id := range append(append([]gfx.ResourceID{}, p.reads...), p.writes...) {
			if !id.Temporary() {
				continue
			}
			t, ok := g.byID[id]
			if !ok {
				return fmt.Errorf("pass %q: %w: %s", p.name, ErrUnknownTexture, id)
			}
			if t.first < 0 {
				t.first = i
			}
			t.last = i
		}
	}
	return nil
}

// Execute records every pass into cb with the derived acquires, clears and
// releases around them. Textures no pass uses are never acquired.
//
// Parameters:
//   - cb: the command buffer to record into
//
// Returns:
//   - error: a pass used an undeclared texture; nothing is recorded
func (g *Graph) Execute(cb *gfx.CommandBuffer) error {
	if err := g.compile(); err != nil {
		return err
	}
	for i, p := range g.passes {
		for _, t := range g.textures {
			if t.first != i {
				continue
			}
			cb.GetTemporary(t.id, t.desc.TextureDesc)
			if t.desc.Clear {
				if t.desc.Format.IsDepth() {
					cb.SetRenderTarget(gfx.ResourceNone, t.id)
					cb.Clear(true, false, t.desc.ClearColor)
				} else {
					cb.SetRenderTarget(t.id, gfx.ResourceNone)
					cb.Clear(false, true, t.desc.ClearColor)
				}
			}
		}

		cb.BeginSample(p.name)
		if p.render != nil {
			p.render(cb)
		}
		cb.EndSample(p.name)

		for _, t := range g.textures {
			if t.last == i {
				cb.Release(t.id)
			}
		}
	}
	return nil
}

// Lifetime returns the first and last pass index that use id, or -1, -1.
// Valid after Execute.
func (g *Graph) Lifetime(id gfx.ResourceID) (first, last int) {
	if t, ok := g.byID[id]; ok {
		return t.first, t.last
	}
	return -1, -1
}
