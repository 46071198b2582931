/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package strategy

import (
	"math/bits"

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/internal/scan"
)

// BracketCount is the nest-heavy strategy: per chunk it computes
// open_bits/close_bits outside strings and updates a running signed depth
// via popcount, only falling back to a bit-by-bit walk (via
// math/bits.TrailingZeros64, spec §4.2) on the rare chunk where depth
// could actually reach zero -- a chunk with at least as many closers as
// the current depth. This
// keeps the common wide-but-shallow case to one popcount pair per chunk.
type BracketCount struct{}

func (b BracketCount) SkipValue(data []byte, pos int, f errs.Format) (end int, escapedSeen bool, err error) {
	if pos >= len(data) {
		return pos, false, errs.TruncatedAt(f, int64(pos))
	}
	switch data[pos] {
	case '"':
		return b.SkipString(data, pos+1, f)
	case '{':
		return b.SkipContainer(data, pos+1, '{', '}', f)
	case '[':
		return b.SkipContainer(data, pos+1, '[', ']', f)
	default:
		return scalarLiteral(data, pos, f)
	}
}

func (BracketCount) SkipString(data []byte, pos int, f errs.Format) (end int, escapedSeen bool, err error) {
	// Delegates to the same chunked in-string scan XorPrefix uses; string
	// skipping has no notion of "nesting" to batch-count over.
	return XorPrefix{}.SkipString(data, pos, f)
}

func (BracketCount) SkipContainer(data []byte, pos int, open, close byte, f errs.Format) (end int, escapedSeen bool, err error) {
	depth := 1
	i := pos
	var carryEsc bool
	var carryStr bool
	openTbl := scan.NewClassTable(string(open))
	closeTbl := scan.NewClassTable(string(close))
	for i < len(data) {
		stop := i + scan.ChunkSize
		if stop > len(data) {
			stop = len(data)
		}
		raw := data[i:stop]
		chunk := scan.Pad(raw)
		q := scan.QuoteMask(chunk[:])
		bs := scan.BackslashMask(chunk[:])
		if bs != 0 {
			escapedSeen = true
		}
		esc, escOut := scan.EscapePrefix(bs, carryEsc)
		carryEsc = escOut
		inStr, strOut := scan.InStringMask(q, esc, carryStr)
		carryStr = strOut

		openMask := scan.StructMask(chunk[:], openTbl) &^ inStr
		closeMask := scan.StructMask(chunk[:], closeTbl) &^ inStr
		closeCount := bits.OnesCount64(closeMask)
		openCount := bits.OnesCount64(openMask)

		if closeCount == 0 || depth > closeCount {
			// Safe fast path: even if every close in this chunk preceded
			// every open, depth stays positive throughout, so the batch
			// update alone is correct -- no need to locate an exact
			// crossing point.
			depth += openCount - closeCount
			i = stop
			continue
		}

		// Slow path: depth could reach zero somewhere in this chunk;
		// walk events in byte order to find the exact position.
		events := openMask | closeMask
		for events != 0 {
			k := bits.TrailingZeros64(events)
			if k >= len(raw) {
				break
			}
			bit := uint64(1) << uint(k)
			events &^= bit
			if closeMask&bit != 0 {
				depth--
				if depth == 0 {
					return i + k + 1, escapedSeen, nil
				}
			} else if openMask&bit != 0 {
				depth++
			}
		}
		i = stop
	}
	return i, escapedSeen, errs.TruncatedAt(f, int64(pos))
}
