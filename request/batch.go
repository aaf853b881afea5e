package request

// Batch is an ordered, growable, single-producer buffer of requests. It is
// never read and written concurrently (spec.md §3.3): all mutation happens
// on the producing thread; Copy is the only hand-off point to another
// thread (spec.md §5 "Shared mutable state").
type Batch struct {
	requests []Request
	descs    []string
	flags    Flags
}

// NewBatch constructs an empty batch carrying the given app-wide flags
// (vsync, offscreen, imgui, white-background, ...).
func NewBatch(flags Flags) *Batch {
	return &Batch{flags: flags}
}

// Append adds a request to the end of the batch, in FIFO order.
func (b *Batch) Append(r Request) {
	b.requests = append(b.requests, r)
	b.descs = append(b.descs, r.Desc)
}

// Size returns the number of requests currently buffered.
func (b *Batch) Size() int {
	return len(b.requests)
}

// Requests returns the buffered requests in FIFO order. The returned slice
// aliases the batch's internal storage and must not be retained past a
// Clear/Destroy.
func (b *Batch) Requests() []Request {
	return b.requests
}

// Flags returns the app-wide flags carried by this batch.
func (b *Batch) Flags() Flags {
	return b.flags
}

// Clear empties the batch back to its post-construction state, keeping the
// flags. Per P5/the round-trip property: Append then Clear leaves the
// batch indistinguishable from a fresh NewBatch.
func (b *Batch) Clear() {
	b.requests = b.requests[:0]
	b.descs = b.descs[:0]
}

// Copy produces a deep clone: every request's Content.Data byte slice is
// copied so the original batch may keep mutating while the clone is in
// flight to the presenter (spec.md §4.1).
func (b *Batch) Copy() *Batch {
	out := &Batch{
		flags:    b.flags,
		requests: make([]Request, len(b.requests)),
		descs:    append([]string(nil), b.descs...),
	}
	copy(out.requests, b.requests)
	for i, r := range b.requests {
		if r.Content.Data != nil {
			cloned := make([]byte, len(r.Content.Data))
			copy(cloned, r.Content.Data)
			out.requests[i].Content.Data = cloned
		}
	}
	return out
}

// Writeback copies renderer-populated fields — an auto-assigned ID, a
// `download`'s returned Content.Data — from src back into b, request by
// request. src must be a Copy of b that has since been run through
// Renderer.Requests: Submit takes this path so a caller can read the id
// the renderer assigned to an id==0 `create` request once Submit returns
// (spec.md §4.2), even though the renderer itself only ever touches the
// cloned batch.
func (b *Batch) Writeback(src *Batch) {
	n := len(b.requests)
	if len(src.requests) < n {
		n = len(src.requests)
	}
	for i := 0; i < n; i++ {
		b.requests[i].ID = src.requests[i].ID
		if src.requests[i].Content.Data != nil {
			b.requests[i].Content.Data = src.requests[i].Content.Data
		}
	}
}

// Destroy releases the batch's storage. Requests must not be submitted to
// a renderer referencing this batch's Content.Data after Destroy.
func (b *Batch) Destroy() {
	b.requests = nil
	b.descs = nil
}
