// Package dual implements the CPU-shadow/GPU-dat pairing (L7a): the only
// mechanism through which visual data reaches the GPU.
package dual

import (
	"math"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/request"
)

// Dual pairs a CPU-side byte array with a GPU dat id, tracking the single
// contiguous dirty interval touched since the last Update (spec.md §4.4,
// §9: "non-contiguous writes coalesce to the covering range").
type Dual struct {
	batch *request.Batch
	datID core.ID

	itemSize uint32 // bytes per element
	data     []byte // CPU shadow, len == count*itemSize

	dirtyFirst uint32 // element index, math.MaxUint32 when clean
	dirtyLast  uint32 // element index (exclusive), 0 when clean
}

// New creates a Dual of count elements of itemSize bytes, wired to emit its
// creation/resize/upload requests into batch. bufType selects the backing
// Dat's Vulkan buffer usage (vertex/index/storage/uniform).
func New(batch *request.Batch, bufType request.BufferType, count uint32, itemSize uint32, flags request.Flags) *Dual {
	id := core.NewID()
	batch.Append(request.CreateDat(id, bufType, count, itemSize, flags))
	return &Dual{
		batch:      batch,
		datID:      id,
		itemSize:   itemSize,
		data:       make([]byte, uint64(count)*uint64(itemSize)),
		dirtyFirst: math.MaxUint32,
		dirtyLast:  0,
	}
}

// DatID returns the id of the backing GPU dat.
func (d *Dual) DatID() core.ID { return d.datID }

// IsClean reports the P2 sentinel: dirtyFirst == MaxUint32 && dirtyLast == 0.
func (d *Dual) IsClean() bool {
	return d.dirtyFirst == math.MaxUint32 && d.dirtyLast == 0
}

func (d *Dual) markDirty(first, count uint32) {
	last := first + count
	if first < d.dirtyFirst {
		d.dirtyFirst = first
	}
	if last > d.dirtyLast {
		d.dirtyLast = last
	}
}

// Data copies count elements from buf into the CPU shadow starting at
// index first, enlarging the dirty interval to cover it.
func (d *Dual) Data(first, count uint32, buf []byte) {
	byteOffset := uint64(first) * uint64(d.itemSize)
	byteLen := uint64(count) * uint64(d.itemSize)
	copy(d.data[byteOffset:byteOffset+byteLen], buf)
	d.markDirty(first, count)
}

// Column scatters a column into a strided layout: used for vertex
// interleaving, where colSize bytes are written every stride bytes,
// repeated `repeats` times per source element.
func (d *Dual) Column(colOffsetBytes, colSizeBytes uint32, first, count, repeats uint32, buf []byte) {
	srcOff := uint32(0)
	for i := uint32(0); i < count; i++ {
		for rep := uint32(0); rep < repeats; rep++ {
			elemIdx := first + i*repeats + rep
			base := uint64(elemIdx)*uint64(d.itemSize) + uint64(colOffsetBytes)
			copy(d.data[base:base+uint64(colSizeBytes)], buf[srcOff:srcOff+colSizeBytes])
		}
		srcOff += colSizeBytes
	}
	d.markDirty(first, count*repeats)
}

// Resize grows (or shrinks) the CPU array to count elements and emits a
// resize dat request. Existing bytes are preserved up to min(old,new) len
// in the CPU shadow. The resize request carries no flags, and the renderer
// copies the old GPU contents into the resized dat only when the request
// itself has FlagKeepOnResize, so the GPU side does not keep its contents
// whatever flags the dat was created with.
func (d *Dual) Resize(count uint32) {
	newLen := uint64(count) * uint64(d.itemSize)
	newData := make([]byte, newLen)
	copy(newData, d.data)
	d.data = newData
	// The renderer sizes a resized dat as width*height*depth bytes.
	d.batch.Append(request.Resize(request.ObjectTypeDat, d.datID, count, d.itemSize, 1))
}

// Update emits exactly one upload request covering the minimal interval
// [dirtyFirst*itemSize, dirtyLast*itemSize) when dirty, then resets to the
// clean sentinel (P2). No-op on a clean dual.
func (d *Dual) Update() {
	if d.IsClean() {
		return
	}
	offset := uint64(d.dirtyFirst) * uint64(d.itemSize)
	size := uint64(d.dirtyLast-d.dirtyFirst) * uint64(d.itemSize)
	payload := make([]byte, size)
	copy(payload, d.data[offset:offset+size])
	d.batch.Append(request.Upload(request.ObjectTypeDat, d.datID, offset, size, payload))
	d.dirtyFirst = math.MaxUint32
	d.dirtyLast = 0
}

// Len returns the element count backing the CPU shadow.
func (d *Dual) Len() uint32 {
	if d.itemSize == 0 {
		return 0
	}
	return uint32(uint64(len(d.data)) / uint64(d.itemSize))
}
