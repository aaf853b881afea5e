package dual

import (
	"math"
	"testing"

	"github.com/datoviz/datoviz-sub007/request"
)

// Scenario 3: allocate a dual of 1024 u32, write 50 elements at offset 100,
// then update: expect exactly one upload request with
// offset = 100*4, size = 50*4; after update the dual is clean.
func TestDualPartialUpload(t *testing.T) {
	batch := request.NewBatch(request.FlagNone)
	d := New(batch, request.BufferTypeVertex, 1024, 4, request.FlagNone)
	batch.Clear() // drop the create request so we only observe the upload

	buf := make([]byte, 50*4)
	d.Data(100, 50, buf)
	d.Update()

	reqs := batch.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected exactly one upload request, got %d", len(reqs))
	}
	r := reqs[0]
	if r.Action != request.ActionUpload {
		t.Fatalf("expected an upload request, got %v", r.Action)
	}
	if r.Content.Offset != 100*4 || r.Content.Size != 50*4 {
		t.Fatalf("got offset=%d size=%d, want offset=%d size=%d",
			r.Content.Offset, r.Content.Size, 100*4, 50*4)
	}
	if !d.IsClean() {
		t.Fatalf("expected dual to be clean after Update")
	}
}

// P2: after Update, dirtyFirst == MaxUint32 and dirtyLast == 0.
func TestDualCleanSentinel(t *testing.T) {
	batch := request.NewBatch(request.FlagNone)
	d := New(batch, request.BufferTypeVertex, 16, 4, request.FlagNone)
	if !d.IsClean() {
		t.Fatalf("freshly created dual should start clean")
	}
	if d.dirtyFirst != math.MaxUint32 || d.dirtyLast != 0 {
		t.Fatalf("unexpected internal dirty sentinel: first=%d last=%d", d.dirtyFirst, d.dirtyLast)
	}
}

func TestDualUpdateNoOpWhenClean(t *testing.T) {
	batch := request.NewBatch(request.FlagNone)
	d := New(batch, request.BufferTypeVertex, 16, 4, request.FlagNone)
	batch.Clear()
	d.Update()
	if batch.Size() != 0 {
		t.Fatalf("Update on a clean dual must not append any request")
	}
}

func TestDualNonContiguousWritesCoalesce(t *testing.T) {
	batch := request.NewBatch(request.FlagNone)
	d := New(batch, request.BufferTypeVertex, 1024, 4, request.FlagNone)
	batch.Clear()

	d.Data(10, 1, make([]byte, 4))
	d.Data(100, 1, make([]byte, 4))
	d.Update()

	r := batch.Requests()[0]
	if r.Content.Offset != 10*4 {
		t.Fatalf("expected coalesced offset 40, got %d", r.Content.Offset)
	}
	if r.Content.Size != (101-10)*4 {
		t.Fatalf("expected coalesced covering size, got %d", r.Content.Size)
	}
}
