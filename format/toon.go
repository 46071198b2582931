/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package format

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/schema"
	"github.com/gravwell/skiptape/tape"
)

// toonFrame is one open container on the indentation stack. Closing a
// tabular frame checks its declared row count against rowsSeen,
// producing Malformed{length_mismatch} on a miss (spec §4.6.7).
type toonFrame struct {
	indent    int
	openIdx   int
	depth     int
	tabular   bool
	skipping  bool
	fields    []string
	delim     byte
	declaredN int
	rowsSeen  int
	path      schema.Path
}

// ParseTOON implements the indentation-based TOON adapter of spec
// §4.6.7: plain "key: value" / "key:" lines build nested objects the
// way YAML block mappings do, "name[N]{f1,f2}:" headers declare a
// tabular array of N rows whose comma- or pipe-delimited values map
// positionally onto the named fields, and dotted "folded" keys
// ("a.b.c: v") normalise to the equivalent nested-object chain inline,
// with the original form kept in the sidecar. No native recursion is
// used for nesting: an explicit indent-keyed frame stack drives the
// whole parse, the same shape format/json.go uses for container depth.
func ParseTOON(data []byte, opt Options) (*tape.Tape, error) {
	lines := splitLines(data)
	tp := opt.newTape(errs.Toon)
	sch := opt.Schema

	rootIdx := tp.PushStart(tape.ObjectStart, 0)
	stack := []toonFrame{{indent: -1, openIdx: rootIdx, depth: 0, path: schema.Path{}}}

	closeFrame := func(f toonFrame) error {
		if f.skipping {
			return nil
		}
		if f.tabular {
			tp.PushEnd(tape.ArrayEnd, f.depth, f.openIdx)
			if f.rowsSeen != f.declaredN {
				return errs.New(errs.Toon, errs.Malformed, -1, "declared row count does not match actual rows")
			}
		} else {
			tp.PushEnd(tape.ObjectEnd, f.depth, f.openIdx)
		}
		return nil
	}

	for _, ln := range lines {
		raw := data[ln[0]:ln[1]]
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		if hasLeadingTab(raw) {
			return nil, errs.MalformedAt(errs.Toon, int64(ln[0]), "tab in leading indentation")
		}
		indent := leadingSpaceCount(raw)
		content := strings.TrimSpace(string(raw))

		for len(stack) > 1 && stack[len(stack)-1].indent >= indent {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if err := closeFrame(top); err != nil {
				return nil, err
			}
		}
		parent := &stack[len(stack)-1]

		if parent.skipping {
			continue
		}

		if parent.tabular {
			fields := splitToonRow(content, parent.delim)
			if len(fields) != len(parent.fields) {
				return nil, errs.New(errs.Toon, errs.Malformed, int64(ln[0]), "row field count does not match header")
			}
			rowPath := append(parent.path[:len(parent.path):len(parent.path)], schema.Index(parent.rowsSeen))
			parent.rowsSeen++
			if decide(sch, rowPath) == decideSkip {
				tp.PushSkipMarker(parent.depth+1, len(content))
				continue
			}
			objIdx := tp.PushStart(tape.ObjectStart, parent.depth+1)
			for i, fname := range parent.fields {
				tp.PushKey(parent.depth+1, []byte(fname))
				fieldPath := append(rowPath[:len(rowPath):len(rowPath)], schema.Key(fname))
				if decide(sch, fieldPath) == decideSkip {
					tp.PushSkipMarker(parent.depth+2, len(fields[i]))
					continue
				}
				pushToonScalar(tp, parent.depth+2, fields[i])
			}
			tp.PushEnd(tape.ObjectEnd, parent.depth+1, objIdx)
			continue
		}

		if name, n, fields, delim, ok := parseToonArrayHeader(content); ok {
			tp.PushKey(parent.depth+1, []byte(name))
			childPath := append(parent.path[:len(parent.path):len(parent.path)], schema.Key(name))
			hdrIdx := tp.PushMarker(tape.ToonArrayHeader, parent.depth+1, uint64(n))
			tp.AddSidecar(hdrIdx, tape.ToonArrayHeaderText, content)
			if decide(sch, childPath) == decideSkip {
				tp.PushSkipMarker(parent.depth+1, len(content))
				stack = append(stack, toonFrame{indent: indent, skipping: true, path: childPath})
				continue
			}
			arrIdx := tp.PushStart(tape.ArrayStart, parent.depth+1)
			stack = append(stack, toonFrame{
				indent: indent, openIdx: arrIdx, depth: parent.depth + 1,
				tabular: true, fields: fields, delim: delim, declaredN: n, path: childPath,
			})
			continue
		}

		key, value, hasValue := splitToonKeyValue(content)
		if strings.Contains(key, ".") && hasValue {
			segs := strings.Split(key, ".")
			openIdxs := make([]int, 0, len(segs)-1)
			path := parent.path[:len(parent.path):len(parent.path)]
			for _, s := range segs[:len(segs)-1] {
				tp.PushKey(parent.depth+1, []byte(s))
				oi := tp.PushStart(tape.ObjectStart, parent.depth+1)
				openIdxs = append(openIdxs, oi)
				path = append(path[:len(path):len(path)], schema.Key(s))
			}
			leafPath := append(path[:len(path):len(path)], schema.Key(segs[len(segs)-1]))
			tp.PushKey(parent.depth+1, []byte(segs[len(segs)-1]))
			if decide(sch, leafPath) == decideSkip {
				tp.PushSkipMarker(parent.depth+1, len(value))
			} else {
				pushToonScalar(tp, parent.depth+1, value)
			}
			for k := len(openIdxs) - 1; k >= 0; k-- {
				tp.PushEnd(tape.ObjectEnd, parent.depth+1, openIdxs[k])
			}
			if len(openIdxs) > 0 {
				tp.AddSidecar(openIdxs[0], tape.ToonFoldedKeyPath, key)
			}
			continue
		}

		childPath := append(parent.path[:len(parent.path):len(parent.path)], schema.Key(key))
		tp.PushKey(parent.depth+1, []byte(key))
		if !hasValue {
			if decide(sch, childPath) == decideSkip {
				tp.PushSkipMarker(parent.depth+1, len(content))
				stack = append(stack, toonFrame{indent: indent, skipping: true, path: childPath})
				continue
			}
			oi := tp.PushStart(tape.ObjectStart, parent.depth+1)
			stack = append(stack, toonFrame{indent: indent, openIdx: oi, depth: parent.depth + 1, path: childPath})
			continue
		}
		if decide(sch, childPath) == decideSkip {
			tp.PushSkipMarker(parent.depth+1, len(value))
		} else {
			pushToonScalar(tp, parent.depth+1, value)
		}
	}

	for len(stack) > 1 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := closeFrame(top); err != nil {
			return nil, err
		}
	}
	tp.PushEnd(tape.ObjectEnd, 0, rootIdx)
	return tp, nil
}

func leadingSpaceCount(line []byte) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

func hasLeadingTab(line []byte) bool {
	for _, b := range line {
		if b == ' ' {
			continue
		}
		return b == '\t'
	}
	return false
}

// parseToonArrayHeader recognizes "name[N]{f1,f2}:" or the pipe-delimited
// form "name[N|]{f1,f2}:".
func parseToonArrayHeader(content string) (name string, n int, fields []string, delim byte, ok bool) {
	lb := strings.IndexByte(content, '[')
	if lb < 0 {
		return
	}
	rb := strings.IndexByte(content, ']')
	if rb < lb {
		return
	}
	lc := strings.IndexByte(content, '{')
	rc := strings.IndexByte(content, '}')
	if lc < rb || rc < lc {
		return
	}
	if !strings.HasSuffix(content, ":") {
		return
	}
	name = content[:lb]
	if name == "" {
		return
	}
	count := content[lb+1 : rb]
	delim = ','
	if strings.HasSuffix(count, "|") {
		delim = '|'
		count = strings.TrimSuffix(count, "|")
	}
	parsedN, err := strconv.Atoi(count)
	if err != nil {
		return
	}
	n = parsedN
	fieldList := content[lc+1 : rc]
	for _, f := range strings.Split(fieldList, ",") {
		fields = append(fields, strings.TrimSpace(f))
	}
	ok = true
	return
}

func splitToonRow(content string, delim byte) []string {
	parts := strings.Split(content, string(delim))
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func splitToonKeyValue(content string) (key, value string, hasValue bool) {
	i := strings.IndexByte(content, ':')
	if i < 0 {
		return content, "", false
	}
	key = strings.TrimSpace(content[:i])
	rest := strings.TrimSpace(content[i+1:])
	if rest == "" {
		return key, "", false
	}
	return key, rest, true
}

func pushToonScalar(tp *tape.Tape, depth int, raw string) {
	switch raw {
	case "null", "~":
		tp.PushNull(depth)
		return
	case "true":
		tp.PushBool(depth, true)
		return
	case "false":
		tp.PushBool(depth, false)
		return
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		tp.PushNumber(depth, n)
		return
	}
	unquoted := raw
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		unquoted = raw[1 : len(raw)-1]
	}
	tp.PushString(depth, []byte(unquoted))
}
