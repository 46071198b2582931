/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package format

import (
	"strconv"
	"unicode/utf8"

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/schema"
	"github.com/gravwell/skiptape/tape"
)

// jsonFrame is one entry of the explicit container stack ParseJSON
// drives instead of recursing per nesting level (spec §8 property 13:
// "no recursion on document depth" -- S5's 1000-deep bracket test must
// not grow the native call stack).
type jsonFrame struct {
	isObj     bool
	openIdx   int
	depth     int
	parentLen int // len(path) before this container's own segment
	arrIdx    int
	started   bool // whether an element has already been consumed
}

// ParseJSON implements the JSON adapter of spec §4.6.1.
func ParseJSON(data []byte, opt Options) (*tape.Tape, error) {
	tp := opt.newTape(errs.Json)
	sch := opt.Schema

	pos := skipWS(data, 0)
	if pos >= len(data) {
		return nil, errs.TruncatedAt(errs.Json, int64(pos))
	}

	var path schema.Path
	var stack []jsonFrame

	log := opt.logger()
	enter := func(d decision, depth int) (int, error) {
		if d == decideSkip {
			return skipValue(data, pos, errs.Json, tp, depth, log)
		}
		if data[pos] == '{' || data[pos] == '[' {
			isObj := data[pos] == '{'
			kind := tape.ArrayStart
			if isObj {
				kind = tape.ObjectStart
			}
			idx := tp.PushStart(kind, depth)
			stack = append(stack, jsonFrame{isObj: isObj, openIdx: idx, depth: depth, parentLen: len(path)})
			return pos + 1, nil
		}
		return parseJSONScalar(data, pos, depth, tp)
	}

	var err error
	if pos, err = enter(decide(sch, path), 0); err != nil {
		return nil, err
	}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		pos = skipWS(data, pos)
		if pos >= len(data) {
			return nil, errs.TruncatedAt(errs.Json, int64(pos))
		}
		closeByte := byte(']')
		closeKind := tape.ArrayEnd
		if top.isObj {
			closeByte, closeKind = '}', tape.ObjectEnd
		}
		if data[pos] == closeByte {
			tp.PushEnd(closeKind, top.depth, top.openIdx)
			pos++
			path = path[:top.parentLen]
			stack = stack[:len(stack)-1]
			continue
		}

		if top.started {
			if data[pos] != ',' {
				return nil, errs.MalformedAt(errs.Json, int64(pos), "expected ',' or closing bracket")
			}
			pos = skipWS(data, pos+1)
			if pos >= len(data) {
				return nil, errs.TruncatedAt(errs.Json, int64(pos))
			}
		}
		top.started = true

		parentLen := len(path)
		var childPath schema.Path
		if top.isObj {
			if data[pos] != '"' {
				return nil, errs.MalformedAt(errs.Json, int64(pos), "expected object key")
			}
			keyBytes, np, kerr := parseJSONStringContent(data, pos+1)
			if kerr != nil {
				return nil, kerr
			}
			tp.PushKey(top.depth, keyBytes)
			pos = skipWS(data, np)
			if pos >= len(data) || data[pos] != ':' {
				return nil, errs.MalformedAt(errs.Json, int64(pos), "expected ':'")
			}
			pos = skipWS(data, pos+1)
			childPath = append(path[:len(path):len(path)], schema.Key(string(keyBytes)))
		} else {
			childPath = append(path[:len(path):len(path)], schema.Index(top.arrIdx))
			top.arrIdx++
		}
		if pos >= len(data) {
			return nil, errs.TruncatedAt(errs.Json, int64(pos))
		}

		d := decide(sch, childPath)
		if d == decideParse && (data[pos] == '{' || data[pos] == '[') {
			path = childPath
			isObj := data[pos] == '{'
			kind := tape.ArrayStart
			if isObj {
				kind = tape.ObjectStart
			}
			idx := tp.PushStart(kind, top.depth+1)
			stack = append(stack, jsonFrame{isObj: isObj, openIdx: idx, depth: top.depth + 1, parentLen: parentLen})
			pos++
			continue
		}
		if pos, err = enter(d, top.depth+1); err != nil {
			return nil, err
		}
	}

	pos = skipWS(data, pos)
	if pos != len(data) {
		return nil, errs.MalformedAt(errs.Json, int64(pos), "trailing data after document")
	}
	return tp, nil
}

func skipWS(data []byte, pos int) int {
	for pos < len(data) {
		switch data[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		default:
			return pos
		}
	}
	return pos
}

func hasLiteral(data []byte, pos int, lit string) bool {
	return pos+len(lit) <= len(data) && string(data[pos:pos+len(lit)]) == lit
}

func parseJSONScalar(data []byte, pos int, depth int, tp *tape.Tape) (int, error) {
	if pos >= len(data) {
		return pos, errs.TruncatedAt(errs.Json, int64(pos))
	}
	switch {
	case data[pos] == '"':
		content, np, err := parseJSONStringContent(data, pos+1)
		if err != nil {
			return pos, err
		}
		tp.PushString(depth, content)
		return np, nil
	case data[pos] == 't':
		if !hasLiteral(data, pos, "true") {
			return pos, errs.MalformedAt(errs.Json, int64(pos), "invalid literal")
		}
		tp.PushBool(depth, true)
		return pos + 4, nil
	case data[pos] == 'f':
		if !hasLiteral(data, pos, "false") {
			return pos, errs.MalformedAt(errs.Json, int64(pos), "invalid literal")
		}
		tp.PushBool(depth, false)
		return pos + 5, nil
	case data[pos] == 'n':
		if !hasLiteral(data, pos, "null") {
			return pos, errs.MalformedAt(errs.Json, int64(pos), "invalid literal")
		}
		tp.PushNull(depth)
		return pos + 4, nil
	case data[pos] == '-' || (data[pos] >= '0' && data[pos] <= '9'):
		v, np, err := parseJSONNumber(data, pos)
		if err != nil {
			return pos, err
		}
		tp.PushNumber(depth, v)
		return np, nil
	default:
		return pos, errs.MalformedAt(errs.Json, int64(pos), "unexpected byte")
	}
}

func parseJSONNumber(data []byte, pos int) (float64, int, error) {
	start := pos
	if pos < len(data) && data[pos] == '-' {
		pos++
	}
	for pos < len(data) && data[pos] >= '0' && data[pos] <= '9' {
		pos++
	}
	if pos < len(data) && data[pos] == '.' {
		pos++
		for pos < len(data) && data[pos] >= '0' && data[pos] <= '9' {
			pos++
		}
	}
	if pos < len(data) && (data[pos] == 'e' || data[pos] == 'E') {
		pos++
		if pos < len(data) && (data[pos] == '+' || data[pos] == '-') {
			pos++
		}
		for pos < len(data) && data[pos] >= '0' && data[pos] <= '9' {
			pos++
		}
	}
	v, err := strconv.ParseFloat(string(data[start:pos]), 64)
	if err != nil {
		return 0, pos, errs.MalformedAt(errs.Json, int64(start), "invalid number")
	}
	return v, pos, nil
}

// parseJSONStringContent decodes a JSON string body starting just past
// the opening quote, returning the unescaped content and the position
// just past the closing quote.
func parseJSONStringContent(data []byte, pos int) ([]byte, int, error) {
	start := pos
	var buf []byte
	for pos < len(data) {
		c := data[pos]
		if c == '"' {
			if buf != nil {
				return buf, pos + 1, nil
			}
			return data[start:pos], pos + 1, nil
		}
		if c == '\\' {
			if buf == nil {
				buf = append(buf, data[start:pos]...)
			}
			pos++
			if pos >= len(data) {
				return nil, pos, errs.TruncatedAt(errs.Json, int64(pos))
			}
			switch data[pos] {
			case '"':
				buf = append(buf, '"')
			case '\\':
				buf = append(buf, '\\')
			case '/':
				buf = append(buf, '/')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'u':
				if pos+4 >= len(data) {
					return nil, pos, errs.TruncatedAt(errs.Json, int64(pos))
				}
				r, herr := parseHex4(data[pos+1 : pos+5])
				if herr != nil {
					return nil, pos, errs.MalformedAt(errs.Json, int64(pos), "bad \\u escape")
				}
				pos += 4
				if r >= 0xD800 && r <= 0xDFFF {
					buf = utf8.AppendRune(buf, utf8.RuneError)
				} else {
					buf = utf8.AppendRune(buf, rune(r))
				}
			default:
				return nil, pos, errs.MalformedAt(errs.Json, int64(pos), "bad escape")
			}
			pos++
			continue
		}
		if buf != nil {
			buf = append(buf, c)
		}
		pos++
	}
	return nil, pos, errs.TruncatedAt(errs.Json, int64(pos))
}

func parseHex4(b []byte) (int, error) {
	v := 0
	for _, c := range b {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= int(c - '0')
		case c >= 'a' && c <= 'f':
			v |= int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= int(c-'A') + 10
		default:
			return 0, errs.MalformedAt(errs.Json, 0, "bad hex digit")
		}
	}
	return v, nil
}
