/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package tape

import (
	"bytes"

	"github.com/gravwell/skiptape/internal/arena"
	"github.com/gravwell/skiptape/schema"
)

// Reader is a cheap, copyable view over a Tape (spec §3.7, §4.7). It
// holds no state of its own beyond the Tape pointer, so resolve/skip
// operations never re-parse input bytes -- everything walks the node
// vector via sibling-skip offsets.
type Reader struct {
	t *Tape
}

// NewReader wraps t for traversal.
func NewReader(t *Tape) Reader { return Reader{t: t} }

// Len is the number of tape slots.
func (r Reader) Len() int { return len(r.t.Nodes) }

// NodeAt returns the node at slot i.
func (r Reader) NodeAt(i int) Node { return r.t.Nodes[i] }

// ValueKind classifies slot i; SkipMarker is returned as its own kind
// rather than unwrapped, per spec §4.7.
func (r Reader) ValueKind(i int) Kind { return r.t.Nodes[i].Kind }

// ResolveString returns the arena bytes backing a Key or String node.
func (r Reader) ResolveString(i int) []byte {
	return r.t.Arena.Resolve(arena.ID(r.t.Nodes[i].Payload))
}

// SkipValue returns the slot index immediately after the value at i,
// O(1) via the sibling-skip offset for containers and O(1) by
// construction for every other node kind (spec §4.7's contract).
func (r Reader) SkipValue(i int) int {
	n := r.t.Nodes[i]
	if n.Kind.IsStart() {
		return i + int(n.Payload)
	}
	return i + 1
}

// ResolvePath walks from the tape root along p, using SkipValue to
// bypass non-matching siblings without re-parsing input bytes (spec
// §4.7). It reports false if p does not address a live node.
func (r Reader) ResolvePath(p schema.Path) (int, bool) {
	if len(r.t.Nodes) == 0 {
		return 0, false
	}
	idx := 0
	for _, seg := range p {
		if idx >= len(r.t.Nodes) {
			return 0, false
		}
		switch r.t.Nodes[idx].Kind {
		case ObjectStart, TomlTableStart:
			idx++
			found := false
			for idx < len(r.t.Nodes) {
				if r.t.Nodes[idx].Kind == IsonBlockHeader {
					idx++ // an ISON block header sits before its block's Key
					continue
				}
				if r.t.Nodes[idx].Kind != Key {
					break
				}
				valueIdx := idx + 1
				if valueIdx < len(r.t.Nodes) && r.t.Nodes[valueIdx].Kind == ToonArrayHeader {
					valueIdx++ // a TOON tabular header sits between Key and value
				}
				if !seg.IsIndex && bytes.Equal(r.ResolveString(idx), []byte(seg.Key)) {
					idx = valueIdx
					found = true
					break
				}
				idx = r.SkipValue(valueIdx)
			}
			if !found {
				return 0, false
			}
		case ArrayStart, TomlArrayTableStart:
			idx++
			if !seg.IsIndex {
				return 0, false
			}
			for k := 0; k < seg.Index; k++ {
				if idx >= len(r.t.Nodes) || r.t.Nodes[idx].Kind == ArrayEnd {
					return 0, false
				}
				idx = r.SkipValue(idx)
			}
			if idx >= len(r.t.Nodes) || r.t.Nodes[idx].Kind == ArrayEnd {
				return 0, false
			}
		default:
			return 0, false
		}
	}
	return idx, true
}

// Equals reports whether the subtrees rooted at i and j (possibly in
// different tapes read through different Readers, provided both share
// arena semantics) are structurally equal, short-circuiting on a
// sibling-skip length mismatch before comparing children (spec §4.7).
func (r Reader) Equals(i, j int) bool { return r.equalsWith(r, i, j) }

// EqualsAcross is Equals against a subtree living in another tape.
func (r Reader) EqualsAcross(i int, other Reader, j int) bool { return r.equalsWith(other, i, j) }

func (r Reader) equalsWith(other Reader, i, j int) bool {
	ni, nj := r.t.Nodes[i], other.t.Nodes[j]
	if ni.Kind != nj.Kind {
		return false
	}
	switch {
	case ni.Kind.IsStart():
		if ni.Payload != nj.Payload {
			return false
		}
		endI := i + int(ni.Payload) - 1
		ci, cj := i+1, j+1
		for ci < endI {
			if !r.equalsWith(other, ci, cj) {
				return false
			}
			ci = r.SkipValue(ci)
			cj = other.SkipValue(cj)
		}
		return true
	case ni.Kind == Key || ni.Kind == String:
		return bytes.Equal(r.ResolveString(i), other.ResolveString(j))
	default:
		return ni.Payload == nj.Payload
	}
}

// subtreeEnd returns the slot index one past the full subtree rooted at
// i, including the value a Key precedes.
func (r Reader) subtreeEnd(i int) int {
	n := r.t.Nodes[i]
	switch {
	case n.Kind.IsStart():
		return i + int(n.Payload)
	case n.Kind == Key:
		return r.subtreeEnd(i + 1)
	default:
		return i + 1
	}
}

// DeepClone copies the subtree rooted at i into a freshly allocated
// Tape with its own arena, rebasing depth to start at zero and carrying
// across any sidecar records whose tape index falls inside the subtree
// (spec §4.7).
func (r Reader) DeepClone(i int) *Tape {
	end := r.subtreeEnd(i)
	out := New(r.t.Header.Format, end-i)
	out.Header = r.t.Header
	out.Header.HasSidecar = false
	baseDepth := r.t.Nodes[i].Depth

	idMap := make(map[arena.ID]arena.ID, end-i)
	remap := func(id arena.ID) arena.ID {
		if nid, ok := idMap[id]; ok {
			return nid
		}
		nid := out.Arena.Push(r.t.Arena.Resolve(id))
		idMap[id] = nid
		return nid
	}

	for k := i; k < end; k++ {
		n := r.t.Nodes[k]
		n.Depth -= baseDepth
		if n.Kind == Key || n.Kind == String {
			n.Payload = uint64(remap(arena.ID(n.Payload)))
		}
		out.Nodes = append(out.Nodes, n)
	}
	for _, sc := range r.t.Sidecar {
		if sc.TapeIndex >= i && sc.TapeIndex < end {
			out.Sidecar = append(out.Sidecar, SidecarRecord{TapeIndex: sc.TapeIndex - i, Kind: sc.Kind, Text: sc.Text})
			out.Header.HasSidecar = true
		}
	}
	return out
}
