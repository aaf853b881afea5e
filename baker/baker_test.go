package baker

import (
	"testing"

	"github.com/datoviz/datoviz-sub007/request"
)

// P4: for every vertex binding, sum(attr.item_size) <= binding.stride.
func TestBakerStrideCheckPasses(t *testing.T) {
	batch := request.NewBatch(request.FlagNone)
	b := New(batch)
	idx := b.AddBinding(28, false) // vec3 pos + vec4 color = 12+16 = 28
	b.AddAttribute(idx, 0, 12, 0)
	b.AddAttribute(idx, 12, 16, 0)

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("expected no panic for a valid stride layout, got %v", r)
		}
	}()
	b.Create(0, 3)
}

func TestBakerStrideCheckPanicsOnOverflow(t *testing.T) {
	batch := request.NewBatch(request.FlagNone)
	b := New(batch)
	idx := b.AddBinding(8, false)
	b.AddAttribute(idx, 0, 12, 0) // 12 > stride 8

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected a panic when attributes overflow the binding stride")
		}
	}()
	b.Create(0, 1)
}

func TestBakerCreateAllocatesVertexAndIndexDuals(t *testing.T) {
	batch := request.NewBatch(request.FlagNone)
	b := New(batch)
	idx := b.AddBinding(4, false)
	b.AddAttribute(idx, 0, 4, 0)
	b.Create(6, 4)

	if b.VertexCount() != 4 || b.IndexCount() != 6 {
		t.Fatalf("unexpected counts: vertex=%d index=%d", b.VertexCount(), b.IndexCount())
	}
	// two create-dat requests: one vertex binding, one index buffer.
	count := 0
	for _, r := range batch.Requests() {
		if r.Action == request.ActionCreate && r.ObjectType == request.ObjectTypeDat {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 create-dat requests, got %d", count)
	}
}

func TestBakerSharedBindingSkipsAllocation(t *testing.T) {
	batch := request.NewBatch(request.FlagNone)
	b := New(batch)
	b.AddBinding(4, true)
	b.Create(0, 4)
	for _, r := range batch.Requests() {
		if r.Action == request.ActionCreate && r.ObjectType == request.ObjectTypeDat {
			t.Fatalf("shared binding must not allocate a dat")
		}
	}
}
