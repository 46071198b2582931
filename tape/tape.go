/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package tape

import (
	"fmt"
	"math"

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/internal/arena"
)

// Encoding is the tape header's text-encoding tag (spec §3.3).
type Encoding uint8

const (
	UTF8 Encoding = iota
	Other
)

// Header carries the per-parse metadata every tape stores (spec §3.3).
type Header struct {
	Format     errs.Format
	Version    uint8
	Encoding   Encoding
	HasSidecar bool

	// DebugID is an optional provenance tag a pool can stamp onto an
	// acquired tape in debug builds; empty unless requested.
	DebugID string
}

const tapeVersion = 1

// SidecarKind enumerates the surface-syntax facts the normalised tape
// would otherwise discard (spec §3.4).
type SidecarKind uint8

const (
	TomlDottedKey SidecarKind = iota
	TomlTripleQuoted
	YamlAnchorName
	YamlAliasTarget
	YamlFlowStyle
	CsvQuoting
	IsonReferenceKind
	ToonFoldedKeyPath
	ToonArrayHeaderText
)

// SidecarRecord preserves one piece of surface syntax against a tape
// index, per spec §3.4.
type SidecarRecord struct {
	TapeIndex int
	Kind      SidecarKind
	Text      string
}

// Tape is the unified skip tape (spec §3): a node vector, a string
// arena, an optional sidecar, and a header. It exclusively owns all
// four (spec §3.7); nothing else writes to its Nodes slice.
type Tape struct {
	Header  Header
	Nodes   []Node
	Arena   *arena.Arena
	Sidecar []SidecarRecord
}

// New allocates a Tape for f sized from hintNodes, the caller's estimate
// of the node count the parse will produce.
func New(f errs.Format, hintNodes int) *Tape {
	if hintNodes < 16 {
		hintNodes = 16
	}
	return &Tape{
		Header: Header{Format: f, Version: tapeVersion, Encoding: UTF8},
		Nodes:  make([]Node, 0, hintNodes),
		Arena:  arena.NewInterning(hintNodes * 8),
	}
}

// Init reinitialises t's header for format f, discarding any prior
// header fields (including a stale DebugID). A pool calls this when
// handing a Reset tape back out under a new format, since Reset
// zeroes the header along with the node/arena length.
func (t *Tape) Init(f errs.Format) {
	t.Header = Header{Format: f, Version: tapeVersion, Encoding: UTF8}
}

// Len reports the number of tape slots written so far.
func (t *Tape) Len() int { return len(t.Nodes) }

// Reset truncates the tape for reuse by a pool (spec §6.1's
// release: "resets length/arena-length to zero"), keeping backing
// arrays so the next acquire avoids reallocating.
func (t *Tape) Reset() {
	t.Nodes = t.Nodes[:0]
	t.Sidecar = t.Sidecar[:0]
	t.Arena.Reset()
	t.Header = Header{}
}

// PushStart opens an ObjectStart/ArrayStart/table-start node and
// returns its slot index; the caller must later pass that index to
// PushEnd so the sibling-skip offset can be back-patched (spec §4.5).
func (t *Tape) PushStart(kind Kind, depth int) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Kind: kind, Depth: uint8(depth)})
	return idx
}

// PushEnd closes the container opened at openIndex, back-patching its
// sibling-skip offset to "current_index - open_index + 1" (spec §4.5).
func (t *Tape) PushEnd(kind Kind, depth int, openIndex int) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Kind: kind, Depth: uint8(depth)})
	t.Nodes[openIndex].Payload = uint64(idx - openIndex + 1)
	return idx
}

// PushSkipMarker inserts a single slot standing in for a subtree the
// schema rejected; payload is the number of input bytes bypassed.
func (t *Tape) PushSkipMarker(depth int, skippedBytes int) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Kind: SkipMarker, Depth: uint8(depth), Payload: uint64(skippedBytes)})
	return idx
}

// PushKey records a field name, interned in the arena (object keys are
// exactly the high-duplication case spec §4.3 calls out for interning).
func (t *Tape) PushKey(depth int, name []byte) int {
	id := t.Arena.Intern(name)
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Kind: Key, Depth: uint8(depth), Payload: uint64(id)})
	return idx
}

// PushString records a string value. Large value strings should not be
// interned (spec §4.3); callers needing that distinction use t.Arena
// directly and PushStringID.
func (t *Tape) PushString(depth int, value []byte) int {
	id := t.Arena.Push(value)
	return t.PushStringID(depth, id)
}

// PushStringID records a string value whose bytes are already in the
// arena under id.
func (t *Tape) PushStringID(depth int, id arena.ID) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Kind: String, Depth: uint8(depth), Payload: uint64(id)})
	return idx
}

// PushNumber records a numeric value as its IEEE-754 bit pattern.
func (t *Tape) PushNumber(depth int, v float64) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Kind: Number, Depth: uint8(depth), Payload: math.Float64bits(v)})
	return idx
}

// PushBool records a boolean value.
func (t *Tape) PushBool(depth int, v bool) int {
	var p uint64
	if v {
		p = 1
	}
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Kind: Bool, Depth: uint8(depth), Payload: p})
	return idx
}

// PushNull records a null/nil value.
func (t *Tape) PushNull(depth int) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Kind: Null, Depth: uint8(depth)})
	return idx
}

// PushMarker records a format-specific marker carrying an arbitrary
// payload (arena handle, flag bits, or a raw count depending on kind).
func (t *Tape) PushMarker(kind Kind, depth int, payload uint64) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Kind: kind, Depth: uint8(depth), Payload: payload})
	return idx
}

// AppendSubtape copies every node of src onto the end of t, remapping
// Key/String arena handles into t's own arena and offsetting sidecar
// indices. Container sibling-skip offsets are relative distances and
// need no adjustment. This is how line-oriented adapters (JSONL,
// ISONL) concatenate one tape per input line into a single tape (spec
// §4.6.2).
func (t *Tape) AppendSubtape(src *Tape) {
	base := len(t.Nodes)
	idMap := make(map[arena.ID]arena.ID, len(src.Nodes))
	for _, n := range src.Nodes {
		if n.Kind == Key || n.Kind == String {
			if _, ok := idMap[arena.ID(n.Payload)]; !ok {
				bs := src.Arena.Resolve(arena.ID(n.Payload))
				var id arena.ID
				if n.Kind == Key {
					id = t.Arena.Intern(bs)
				} else {
					id = t.Arena.Push(bs)
				}
				idMap[arena.ID(n.Payload)] = id
			}
			n.Payload = uint64(idMap[arena.ID(n.Payload)])
		}
		t.Nodes = append(t.Nodes, n)
	}
	for _, sc := range src.Sidecar {
		t.Sidecar = append(t.Sidecar, SidecarRecord{TapeIndex: sc.TapeIndex + base, Kind: sc.Kind, Text: sc.Text})
	}
	if len(src.Sidecar) > 0 {
		t.Header.HasSidecar = true
	}
}

// AddSidecar appends a surface-syntax record against idx, enabling
// Header.HasSidecar.
func (t *Tape) AddSidecar(idx int, kind SidecarKind, text string) {
	t.Sidecar = append(t.Sidecar, SidecarRecord{TapeIndex: idx, Kind: kind, Text: text})
	t.Header.HasSidecar = true
}

// Validate checks the structural invariants of spec §3.2/§4.5: every
// *Start has a matching *End whose sibling-skip offset is positive and
// in bounds, no container is left open at the end of the tape, and no
// Key is the last slot. Depth bytes are not examined, and an *End is
// not checked against the kind of the *Start it closes. It is not called on the
// normal parse path (the invariants are "checked in debug; exploitable
// in release" per spec §4.5); callers wire it into tests or a debug
// build tag as needed.
func (t *Tape) Validate() error {
	var stack []int
	for i, n := range t.Nodes {
		switch {
		case n.Kind.IsStart():
			stack = append(stack, i)
		case n.Kind == ObjectEnd || n.Kind == ArrayEnd:
			if len(stack) == 0 {
				return fmt.Errorf("tape: unmatched %s at slot %d", n.Kind, i)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			want := uint64(i - open + 1)
			if t.Nodes[open].Payload != want {
				return fmt.Errorf("tape: bad sibling-skip offset at slot %d: got %d want %d", open, t.Nodes[open].Payload, want)
			}
			if t.Nodes[open].Payload == 0 || open+int(t.Nodes[open].Payload) > len(t.Nodes) {
				return fmt.Errorf("tape: sibling-skip offset out of bounds at slot %d", open)
			}
		case n.Kind == Key:
			if i+1 >= len(t.Nodes) {
				return fmt.Errorf("tape: dangling key at slot %d", i)
			}
		}
	}
	if len(stack) != 0 {
		return fmt.Errorf("tape: %d unclosed container(s) at end of tape", len(stack))
	}
	return nil
}
