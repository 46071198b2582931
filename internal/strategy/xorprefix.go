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

// XorPrefix is the string-heavy strategy: it leans on scan.InStringMask
// and a structural mask, stopping at the first unescaped `"` (for
// SkipString) or the position where nesting depth returns to zero (for
// SkipContainer).
type XorPrefix struct{}

func (x XorPrefix) SkipValue(data []byte, pos int, f errs.Format) (end int, escapedSeen bool, err error) {
	if pos >= len(data) {
		return pos, false, errs.TruncatedAt(f, int64(pos))
	}
	switch data[pos] {
	case '"':
		return x.SkipString(data, pos+1, f)
	case '{':
		return x.SkipContainer(data, pos+1, '{', '}', f)
	case '[':
		return x.SkipContainer(data, pos+1, '[', ']', f)
	default:
		return scalarLiteral(data, pos, f)
	}
}

func (XorPrefix) SkipString(data []byte, pos int, f errs.Format) (end int, escapedSeen bool, err error) {
	i := pos
	var carryEsc bool
	carryStr := true // SkipString is always called already inside the string
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
		// in_string_mask is consulted per the strategy contract; the exact
		// close position is the first unescaped quote, which is where
		// in_string flips back to false.
		_, strOut := scan.InStringMask(q, esc, carryStr)
		unescaped := q &^ esc
		if unescaped != 0 {
			k := bits.TrailingZeros64(unescaped)
			if k < len(raw) {
				return i + k + 1, escapedSeen, nil
			}
		}
		carryStr = strOut
		i = stop
	}
	return i, escapedSeen, errs.TruncatedAt(f, int64(pos))
}

func (x XorPrefix) SkipContainer(data []byte, pos int, open, close byte, f errs.Format) (end int, escapedSeen bool, err error) {
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
