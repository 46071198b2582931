/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package strategy

import "github.com/gravwell/skiptape/errs"

// Scalar is the byte-by-byte reference implementation: no chunking, no
// bitmasks. It is always correct and is what the other three strategies
// are tested against.
type Scalar struct{}

func (Scalar) SkipValue(data []byte, pos int, f errs.Format) (end int, escapedSeen bool, err error) {
	if pos >= len(data) {
		return pos, false, errs.TruncatedAt(f, int64(pos))
	}
	switch data[pos] {
	case '"':
		return Scalar{}.SkipString(data, pos+1, f)
	case '{':
		return Scalar{}.SkipContainer(data, pos+1, '{', '}', f)
	case '[':
		return Scalar{}.SkipContainer(data, pos+1, '[', ']', f)
	default:
		return scalarLiteral(data, pos, f)
	}
}

func scalarLiteral(data []byte, pos int, f errs.Format) (end int, escapedSeen bool, err error) {
	i := pos
	for i < len(data) {
		switch data[i] {
		case ',', '}', ']', ' ', '\t', '\n', '\r':
			return i, false, nil
		}
		i++
	}
	return i, false, nil
}

func (Scalar) SkipString(data []byte, pos int, f errs.Format) (end int, escapedSeen bool, err error) {
	i := pos
	for i < len(data) {
		switch data[i] {
		case '\\':
			escapedSeen = true
			if i+1 < len(data) && data[i+1] == 'u' {
				i += 6
			} else {
				i += 2
			}
		case '"':
			return i + 1, escapedSeen, nil
		default:
			i++
		}
	}
	return i, escapedSeen, errs.TruncatedAt(f, int64(pos))
}

func (s Scalar) SkipContainer(data []byte, pos int, open, close byte, f errs.Format) (end int, escapedSeen bool, err error) {
	depth := 1
	i := pos
	for i < len(data) {
		switch data[i] {
		case '"':
			var strEnd int
			var strEsc bool
			if strEnd, strEsc, err = s.SkipString(data, i+1, f); err != nil {
				return strEnd, escapedSeen || strEsc, err
			}
			escapedSeen = escapedSeen || strEsc
			i = strEnd
			continue
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1, escapedSeen, nil
			}
		}
		i++
	}
	return i, escapedSeen, errs.TruncatedAt(f, int64(pos))
}
