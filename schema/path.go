/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package schema compiles the path patterns of spec §4.4 into a matcher
// that an adapter consults at every value boundary: an exact-path hash
// set for the common no-wildcard case, plus a small set of compiled
// wildcard patterns for everything else.
package schema

import "strconv"

// Segment is one step of a path: either an object field or an array
// index. Adapters push a Segment when they descend into a container and
// pop it on the way back out, so Path never needs string concatenation
// on the hot path.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key builds an object-field segment.
func Key(k string) Segment { return Segment{Key: k} }

// Index builds an array-index segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

func (s Segment) canon() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// Path is a root-to-node sequence of segments, cheapest represented as a
// slice an adapter grows and shrinks as a stack.
type Path []Segment

// String renders a diagnostic dotted form, e.g. "a.b[2].c".
func (p Path) String() string {
	out := make([]byte, 0, len(p)*8)
	for i, s := range p {
		if s.IsIndex {
			out = append(out, '[')
			out = strconv.AppendInt(out, int64(s.Index), 10)
			out = append(out, ']')
			continue
		}
		if i > 0 {
			out = append(out, '.')
		}
		out = append(out, s.Key...)
	}
	return string(out)
}

// hash is the FNV-1a of the path's canonical form, segments joined by a
// NUL separator (spec §4.4.2), used as the key for the exact-path and
// ancestor hash sets.
func (p Path) hash() uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for _, s := range p {
		c := s.canon()
		for i := 0; i < len(c); i++ {
			h ^= uint64(c[i])
			h *= prime64
		}
		h ^= 0 // NUL separator between segments
		h *= prime64
	}
	return h
}
