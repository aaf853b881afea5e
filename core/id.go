package core

import "github.com/google/uuid"

// ID is the opaque 64-bit identifier every renderer object is addressed by.
// The zero value means "none" on input and "auto-assign" on creation
// requests.
type ID uint64

const NoID ID = 0

// NewID generates a fresh, non-zero identifier backed by a random UUID, the
// way the engine reaches for uuid.New() whenever it needs a unique name.
// The 128-bit UUID is folded into 64 bits by XOR-ing its two halves, which
// keeps the result effectively as collision-resistant as a random uint64
// while reusing a real random source instead of a hand-rolled PRNG.
func NewID() ID {
	u := uuid.New()
	hi := uint64(0)
	lo := uint64(0)
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(u[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(u[i])
	}
	id := ID(hi ^ lo)
	if id == NoID {
		// astronomically unlikely; never return the sentinel value.
		return ID(1)
	}
	return id
}
