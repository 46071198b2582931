/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package arena implements the string arena of spec §3.6/§4.3: an
// append-only, bump-allocated byte store handing out stable 32-bit
// handles, with optional interning for high-duplication strings (object
// keys).
package arena

// ID is an opaque handle into an Arena. It is an offset, not a pointer;
// it stays valid for the lifetime of the Arena that produced it and
// means nothing to any other Arena.
type ID uint32

// defaultHintDivisor divides input length to size the initial buffer,
// per spec §4.3's growth policy ("≈¼ of input length").
const defaultHintDivisor = 4

// Arena is an append-only bump allocator of bytes plus an optional intern
// map. It never shrinks during a parse; Reset clears it for pool reuse.
type Arena struct {
	buf       []byte
	lens      []uint32 // length of the string at each ID, indexed by ID
	offs      []uint32 // start offset of the string at each ID
	intern    map[string]ID
	internMax int // 0 means unlimited; longer keys fall back to Push
}

// New allocates an Arena sized from inputLen, the caller's estimate of
// total input bytes (§4.3: growth starts at roughly a quarter of input size).
func New(inputLen int) *Arena {
	cap := inputLen / defaultHintDivisor
	if cap < 64 {
		cap = 64
	}
	return &Arena{
		buf: make([]byte, 0, cap),
	}
}

// NewInterning is like New but enables intern for keys; callers disable
// interning for large value strings per spec §4.3.
func NewInterning(inputLen int) *Arena {
	a := New(inputLen)
	a.intern = make(map[string]ID, 64)
	return a
}

// Push appends b and returns a fresh handle; duplicates are not
// deduplicated even if interning is enabled (use Intern for that).
func (a *Arena) Push(b []byte) ID {
	off := uint32(len(a.buf))
	a.buf = append(a.buf, b...)
	id := ID(len(a.offs))
	a.offs = append(a.offs, off)
	a.lens = append(a.lens, uint32(len(b)))
	return id
}

// SetInternThreshold caps which keys Intern deduplicates by length: a
// key longer than n bypasses the intern map and behaves like Push. n <=
// 0 means unlimited (the default), matching ParseOptions' intern
// threshold knob -- most object keys are short and highly repeated, so
// a caller processing documents with a few huge dynamic key names can
// keep those out of the intern map entirely.
func (a *Arena) SetInternThreshold(n int) {
	if n < 0 {
		n = 0
	}
	a.internMax = n
}

// Intern looks up b in the intern map; on a miss it appends and records
// the new id. Arenas created with New (not NewInterning) always miss and
// behave like Push, as does any key longer than SetInternThreshold.
func (a *Arena) Intern(b []byte) ID {
	if a.intern == nil {
		return a.Push(b)
	}
	if a.internMax > 0 && len(b) > a.internMax {
		return a.Push(b)
	}
	if id, ok := a.intern[string(b)]; ok {
		return id
	}
	id := a.Push(b)
	a.intern[string(a.buf[a.offs[id]:a.offs[id]+a.lens[id]])] = id
	return id
}

// Resolve reconstitutes the borrowed slice for id. The returned slice
// aliases the arena's internal buffer and is invalid after Reset.
func (a *Arena) Resolve(id ID) []byte {
	off := a.offs[id]
	l := a.lens[id]
	return a.buf[off : off+l]
}

// Len returns the number of bytes currently held in the arena, the value
// stored in the tape header's arena length field (§3.3).
func (a *Arena) Len() int {
	return len(a.buf)
}

// Count returns the number of distinct handles issued.
func (a *Arena) Count() int {
	return len(a.offs)
}

// Reset clears the arena for reuse by a tape pool (§6.1) without
// releasing the underlying backing array.
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
	a.offs = a.offs[:0]
	a.lens = a.lens[:0]
	if a.intern != nil {
		for k := range a.intern {
			delete(a.intern, k)
		}
	}
}
