// Package baker resolves vertex bindings and attributes for a visual (L7b):
// the layout helper consumed by the concrete visual library, which is out
// of scope for this core.
package baker

import (
	"fmt"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/dual"
	"github.com/datoviz/datoviz-sub007/request"
)

// Binding is one vertex binding slot: a stride plus the Dual backing it.
// Shared bindings reference an externally-managed dat instead of owning one.
type Binding struct {
	Stride uint32
	Dual   *dual.Dual
	Shared bool
	SharedDatID core.ID
}

// Attribute is one vertex attribute assigned to a binding.
type Attribute struct {
	BindingIdx uint32
	Offset     uint32
	ItemSize   uint32
	Format     uint32
}

// Baker lays out vertex bindings/attributes and owns the (non-shared)
// index and indirect duals for one visual.
type Baker struct {
	batch *request.Batch

	bindings   []Binding
	attributes []Attribute

	vertexCount uint32
	indexCount  uint32

	index    *dual.Dual
	indirect *dual.Dual
}

// New creates an empty baker wired to append its duals' requests into batch.
func New(batch *request.Batch) *Baker {
	return &Baker{batch: batch}
}

// AddBinding declares vertex binding idx with the given stride. shared
// bindings do not allocate a dual; SetSharedDat must be called before Create.
func (b *Baker) AddBinding(stride uint32, shared bool) uint32 {
	b.bindings = append(b.bindings, Binding{Stride: stride, Shared: shared})
	return uint32(len(b.bindings) - 1)
}

// AddAttribute assigns an attribute to bindingIdx.
func (b *Baker) AddAttribute(bindingIdx, offset, itemSize, format uint32) {
	b.attributes = append(b.attributes, Attribute{
		BindingIdx: bindingIdx, Offset: offset, ItemSize: itemSize, Format: format,
	})
}

// SetSharedDat substitutes an externally-managed dat for a shared binding.
func (b *Baker) SetSharedDat(bindingIdx uint32, datID core.ID) {
	b.bindings[bindingIdx].SharedDatID = datID
}

// checkStrides enforces P4: for every binding, the sum of its attributes'
// item sizes must not exceed the binding's stride. A violation is a
// programming error in the calling visual, not a runtime condition, so it
// panics the way the source's assert() would.
func (b *Baker) checkStrides() {
	sums := make(map[uint32]uint32)
	for _, a := range b.attributes {
		sums[a.BindingIdx] += a.ItemSize
	}
	for idx, sum := range sums {
		if int(idx) >= len(b.bindings) {
			panic(fmt.Sprintf("baker: attribute references unknown binding %d", idx))
		}
		if sum > b.bindings[idx].Stride {
			panic(fmt.Sprintf("baker: binding %d attributes sum to %d bytes, exceeds stride %d", idx, sum, b.bindings[idx].Stride))
		}
	}
}

// Create allocates the non-shared duals for indexCount indices and
// vertexCount vertices, emitting their creation requests.
func (b *Baker) Create(indexCount, vertexCount uint32) {
	b.checkStrides()
	b.vertexCount = vertexCount
	b.indexCount = indexCount
	for i := range b.bindings {
		if b.bindings[i].Shared {
			continue
		}
		b.bindings[i].Dual = dual.New(b.batch, request.BufferTypeVertex, vertexCount, b.bindings[i].Stride, request.FlagNone)
	}
	if indexCount > 0 {
		b.index = dual.New(b.batch, request.BufferTypeIndex, indexCount, 4, request.FlagNone)
	}
}

// Data writes count elements of colSize bytes at colOffset within
// bindingIdx's stride, starting at vertex index first.
func (b *Baker) Data(bindingIdx uint32, colOffset, colSize, first, count uint32, buf []byte) {
	bd := b.bindings[bindingIdx].Dual
	bd.Column(colOffset, colSize, first, count, 1, buf)
}

// Repeat is Data with each source element replicated `repeats` times, used
// for per-vertex attributes that vary per-primitive (e.g. flat shading).
func (b *Baker) Repeat(bindingIdx uint32, colOffset, colSize, first, count, repeats uint32, buf []byte) {
	bd := b.bindings[bindingIdx].Dual
	bd.Column(colOffset, colSize, first, count, repeats, buf)
}

// Quads expands `count` quads (4 vertices each, 2 triangles) starting at
// vertex index first into bindingIdx, writing the same colSize-byte column
// 4 times per quad — the common instancing pattern for billboards/markers.
func (b *Baker) Quads(bindingIdx uint32, colOffset, colSize, first, count uint32, buf []byte) {
	b.Repeat(bindingIdx, colOffset, colSize, first, count, 4, buf)
}

// Index writes `count` index values starting at position first.
func (b *Baker) Index(first, count uint32, buf []byte) {
	if b.index == nil {
		panic("baker: Index called but no index dual was allocated")
	}
	b.index.Data(first, count, buf)
}

// Update calls Dual.Update on every non-shared dual owned by the baker.
func (b *Baker) Update() {
	for _, bind := range b.bindings {
		if !bind.Shared && bind.Dual != nil {
			bind.Dual.Update()
		}
	}
	if b.index != nil {
		b.index.Update()
	}
	if b.indirect != nil {
		b.indirect.Update()
	}
}

// Bindings returns the resolved bindings (read-only snapshot).
func (b *Baker) Bindings() []Binding { return b.bindings }

// Attributes returns the resolved attributes (read-only snapshot).
func (b *Baker) Attributes() []Attribute { return b.attributes }

// VertexCount / IndexCount report the counts passed to Create.
func (b *Baker) VertexCount() uint32 { return b.vertexCount }
func (b *Baker) IndexCount() uint32  { return b.indexCount }
