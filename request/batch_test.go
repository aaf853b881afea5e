package request

import (
	"testing"

	"github.com/datoviz/datoviz-sub007/core"
)

func TestBatchAppendClear(t *testing.T) {
	b := NewBatch(FlagNone)
	b.Append(CreateCanvas(core.NoID, 800, 600, FlagNone))
	if b.Size() != 1 {
		t.Fatalf("expected size 1, got %d", b.Size())
	}
	b.Clear()
	if b.Size() != 0 {
		t.Fatalf("expected size 0 after clear, got %d", b.Size())
	}
}

func TestBatchCopyPreservesCountOrderAndBytes(t *testing.T) {
	b := NewBatch(FlagNone)
	id := core.NewID()
	b.Append(CreateDat(id, BufferTypeVertex, 1024, 4, FlagNone))
	payload := []byte{1, 2, 3, 4}
	b.Append(Upload(ObjectTypeDat, id, 0, 4, payload))

	clone := b.Copy()
	if clone.Size() != b.Size() {
		t.Fatalf("copy changed size: %d vs %d", clone.Size(), b.Size())
	}
	for i, r := range clone.Requests() {
		orig := b.Requests()[i]
		if r.Action != orig.Action || r.ObjectType != orig.ObjectType || r.ID != orig.ID {
			t.Fatalf("copy request %d mismatched: %+v vs %+v", i, r, orig)
		}
	}
	// mutating the original payload must not affect the copy.
	payload[0] = 99
	if clone.Requests()[1].Content.Data[0] == 99 {
		t.Fatalf("batch copy aliased payload bytes instead of cloning them")
	}
}

func TestBatchCopyIsIndependentStorage(t *testing.T) {
	b := NewBatch(FlagNone)
	b.Append(CreateCanvas(core.NoID, 10, 10, FlagNone))
	clone := b.Copy()
	b.Append(CreateCanvas(core.NoID, 20, 20, FlagNone))
	if clone.Size() != 1 {
		t.Fatalf("mutating original after copy affected the clone: size=%d", clone.Size())
	}
}

func TestEmptyBatchIsEmpty(t *testing.T) {
	b := NewBatch(FlagNone)
	if b.Size() != 0 {
		t.Fatalf("fresh batch should be empty")
	}
	if len(b.Requests()) != 0 {
		t.Fatalf("fresh batch should have no requests")
	}
}
