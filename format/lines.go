/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package format

import (
	"math/bits"

	"github.com/gravwell/skiptape/internal/scan"
)

// splitLines locates '\n' bytes that lie outside string state, reusing
// in_string_mask with chunk-threaded carries exactly as spec §4.6.2
// describes for JSONL/ISONL line boundary detection. It returns the
// byte ranges of each line with trailing '\n'/'\r' stripped.
func splitLines(data []byte) [][2]int {
	var lines [][2]int
	var carryEsc, carryStr bool
	lineStart := 0
	nlTbl := scan.NewClassTable("\n")

	for i := 0; i < len(data); i += scan.ChunkSize {
		stop := i + scan.ChunkSize
		if stop > len(data) {
			stop = len(data)
		}
		raw := data[i:stop]
		chunk := scan.Pad(raw)
		q := scan.QuoteMask(chunk[:])
		bs := scan.BackslashMask(chunk[:])
		esc, escOut := scan.EscapePrefix(bs, carryEsc)
		carryEsc = escOut
		inStr, strOut := scan.InStringMask(q, esc, carryStr)
		carryStr = strOut

		nlMask := scan.StructMask(chunk[:], nlTbl) &^ inStr
		for nlMask != 0 {
			k := bits.TrailingZeros64(nlMask)
			if k >= len(raw) {
				break
			}
			nlMask &^= 1 << uint(k)
			pos := i + k
			end := pos
			if end > lineStart && data[end-1] == '\r' {
				end--
			}
			lines = append(lines, [2]int{lineStart, end})
			lineStart = pos + 1
		}
	}
	if lineStart < len(data) {
		end := len(data)
		if end > lineStart && data[end-1] == '\r' {
			end--
		}
		lines = append(lines, [2]int{lineStart, end})
	}
	return lines
}
