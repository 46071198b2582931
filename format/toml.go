/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/schema"
	"github.com/gravwell/skiptape/tape"
)

// tomlFrame is one currently-open table context. The stack always holds
// the root frame at index 0; table headers pop back to their common
// prefix with the new path before pushing whatever additional segments
// are needed, the single-pass "buffered pending keys" approach spec
// §4.6.4 permits in place of a two-pass forward-reference resolution.
type tomlFrame struct {
	seg     string // the segment name this frame represents ("" for root)
	openIdx int
	depth   int
	arrayOf bool // this frame is the ArrayStart of an array-of-tables
	skipped bool // schema-excluded: no tape container was opened for it
	path    schema.Path
}

// ParseTOML implements the reference single-pass TOML adapter of spec
// §4.6.4: table headers and array-of-table headers open/close frames on
// an explicit stack (no native recursion), dotted keys normalise inline
// to nested objects with the original form kept in the sidecar, and
// triple-quoted strings are joined across physical lines before the main
// per-line scan. Redefining a plain table produces Malformed.
func ParseTOML(data []byte, opt Options) (*tape.Tape, error) {
	rawLines := joinTomlTripleQuotedLines(splitLines(data), data)
	tp := opt.newTape(errs.Toml)
	sch := opt.Schema

	rootIdx := tp.PushStart(tape.ObjectStart, 0)
	stack := []tomlFrame{{openIdx: rootIdx, depth: 0, path: schema.Path{}}}
	seenTables := map[string]bool{}

	popTo := func(commonLen int) error {
		for len(stack)-1 > commonLen {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.skipped {
				continue
			}
			if top.arrayOf {
				tp.PushEnd(tape.ArrayEnd, top.depth, top.openIdx)
			} else {
				tp.PushEnd(tape.ObjectEnd, top.depth, top.openIdx)
			}
		}
		return nil
	}

	for _, line := range rawLines {
		content := stripTomlComment(line)
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}

		if strings.HasPrefix(content, "[[") && strings.HasSuffix(content, "]]") {
			segs := strings.Split(strings.TrimSuffix(strings.TrimPrefix(content, "[["), "]]"), ".")
			for i := range segs {
				segs[i] = strings.TrimSpace(segs[i])
			}
			namedIdx, consumed := commonPrefixLen(stack, segs)
			trailingElem := namedIdx+1 < len(stack) && stack[namedIdx+1].seg == "#elem"
			// A "[[...]]" naming the array already open at namedIdx (with
			// its element directly on top) reenters it: close the current
			// element and open a fresh one. Otherwise any open element
			// under the matched prefix stays open, since the remaining
			// segments nest inside it.
			if consumed == len(segs) && trailingElem {
				// Sub-tables of the previous element may be defined
				// again under the fresh one.
				prefix := strings.Join(segs, ".") + "."
				for k := range seenTables {
					if strings.HasPrefix(k, prefix) {
						delete(seenTables, k)
					}
				}
				if err := popTo(namedIdx); err != nil {
					return nil, err
				}
				top := stack[len(stack)-1]
				if top.skipped {
					stack = append(stack, tomlFrame{seg: "#elem", skipped: true, depth: top.depth + 1, path: top.path})
					continue
				}
				elemIdx := tp.PushStart(tape.ObjectStart, top.depth+1)
				stack = append(stack, tomlFrame{seg: "#elem", openIdx: elemIdx, depth: top.depth + 1, path: top.path})
				continue
			}
			popKeep := namedIdx
			if trailingElem {
				popKeep = namedIdx + 1
			}
			if err := popTo(popKeep); err != nil {
				return nil, err
			}
			if err := pushTomlPathFrames(tp, sch, &stack, segs[consumed:len(segs)-1]); err != nil {
				return nil, err
			}
			last := segs[len(segs)-1]
			parent := &stack[len(stack)-1]
			if parent.skipped {
				stack = append(stack, tomlFrame{seg: last, arrayOf: true, skipped: true, depth: parent.depth + 1, path: parent.path})
				stack = append(stack, tomlFrame{seg: "#elem", skipped: true, depth: parent.depth + 2, path: parent.path})
				continue
			}
			tp.PushKey(parent.depth+1, []byte(last))
			childPath := append(parent.path[:len(parent.path):len(parent.path)], schema.Key(last))
			if decide(sch, childPath) == decideSkip {
				tp.PushSkipMarker(parent.depth+1, len(last))
				stack = append(stack, tomlFrame{seg: last, arrayOf: true, skipped: true, depth: parent.depth + 1, path: childPath})
				stack = append(stack, tomlFrame{seg: "#elem", skipped: true, depth: parent.depth + 2, path: childPath})
				continue
			}
			arrIdx := tp.PushStart(tape.TomlArrayTableStart, parent.depth+1)
			stack = append(stack, tomlFrame{seg: last, openIdx: arrIdx, depth: parent.depth + 1, arrayOf: true, path: childPath})
			elemIdx := tp.PushStart(tape.ObjectStart, parent.depth+2)
			stack = append(stack, tomlFrame{seg: "#elem", openIdx: elemIdx, depth: parent.depth + 2, path: childPath})
			continue
		}

		if strings.HasPrefix(content, "[") && strings.HasSuffix(content, "]") {
			segs := strings.Split(strings.TrimSuffix(strings.TrimPrefix(content, "["), "]"), ".")
			for i := range segs {
				segs[i] = strings.TrimSpace(segs[i])
			}
			full := strings.Join(segs, ".")
			if seenTables[full] {
				return nil, errs.MalformedAt(errs.Toml, 0, "table "+full+" redefined")
			}
			seenTables[full] = true
			namedIdx, consumed := commonPrefixLen(stack, segs)
			popKeep := namedIdx
			if namedIdx+1 < len(stack) && stack[namedIdx+1].seg == "#elem" {
				popKeep = namedIdx + 1
			}
			if err := popTo(popKeep); err != nil {
				return nil, err
			}
			if err := pushTomlPathFrames(tp, sch, &stack, segs[consumed:]); err != nil {
				return nil, err
			}
			continue
		}

		key, value, ok := strings.Cut(content, "=")
		if !ok {
			return nil, errs.MalformedAt(errs.Toml, 0, "expected key = value, got "+content)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		parent := &stack[len(stack)-1]
		if parent.skipped {
			continue
		}

		if strings.Contains(key, ".") {
			segs := strings.SplitN(key, ".", -1)
			if err := pushTomlDottedKey(tp, sch, *parent, segs, value); err != nil {
				return nil, err
			}
			continue
		}

		tp.PushKey(parent.depth+1, []byte(key))
		fieldPath := append(parent.path[:len(parent.path):len(parent.path)], schema.Key(key))
		if decide(sch, fieldPath) == decideSkip {
			tp.PushSkipMarker(parent.depth+1, len(value))
			continue
		}
		if err := pushTomlValue(tp, parent.depth+1, value); err != nil {
			return nil, errs.New(errs.Toml, errs.Malformed, 0, err.Error())
		}
	}

	if err := popTo(0); err != nil {
		return nil, err
	}
	tp.PushEnd(tape.ObjectEnd, 0, rootIdx)
	return tp, nil
}

// commonPrefixLen walks the stack's non-root named frames against segs,
// skipping over "#elem" frames (the currently open element of an
// array-of-tables) rather than matching them against a segment, and
// reports namedIdx (the stack index of the last matched named frame,
// 0 if none) and segsConsumed (how many leading segs are already
// open). Callers use stack[namedIdx+1] to check whether an open
// element sits directly below the matched prefix, since whether that
// element should stay open (a nested table/array under it) or be
// closed (a fresh "[[...]]" occurrence of the same array) depends on
// the header kind, not on this walk alone.
func commonPrefixLen(stack []tomlFrame, segs []string) (namedIdx, segsConsumed int) {
	si := 0
	i := 1
	for i < len(stack) {
		f := stack[i]
		if f.seg == "#elem" {
			i++
			continue
		}
		if si < len(segs) && f.seg == segs[si] {
			si++
			namedIdx = i
			i++
			continue
		}
		break
	}
	return namedIdx, si
}

// pushTomlPathFrames opens a plain object frame for every segment in
// segs, which the caller has already trimmed to exclude whatever prefix
// is still open on the stack (see commonPrefixLen).
func pushTomlPathFrames(tp *tape.Tape, sch *schema.Schema, stack *[]tomlFrame, segs []string) error {
	s := *stack
	for _, seg := range segs {
		parent := &s[len(s)-1]
		tp.PushKey(parent.depth+1, []byte(seg))
		childPath := append(parent.path[:len(parent.path):len(parent.path)], schema.Key(seg))
		if decide(sch, childPath) == decideSkip {
			tp.PushSkipMarker(parent.depth+1, len(seg))
			// A schema-excluded table still needs a frame on the stack so
			// its body's lines are consumed without emitting anything
			// further; its openIdx is never used since no End is pushed
			// for it (there is no container to close).
			s = append(s, tomlFrame{seg: seg, skipped: true, depth: parent.depth + 1, path: childPath})
			*stack = s
			return nil
		}
		oi := tp.PushStart(tape.TomlTableStart, parent.depth+1)
		s = append(s, tomlFrame{seg: seg, openIdx: oi, depth: parent.depth + 1, path: childPath})
	}
	*stack = s
	return nil
}

func pushTomlDottedKey(tp *tape.Tape, sch *schema.Schema, parent tomlFrame, segs []string, value string) error {
	openIdxs := make([]int, 0, len(segs)-1)
	path := parent.path[:len(parent.path):len(parent.path)]
	depth := parent.depth
	for _, s := range segs[:len(segs)-1] {
		tp.PushKey(depth+1, []byte(s))
		oi := tp.PushStart(tape.ObjectStart, depth+1)
		openIdxs = append(openIdxs, oi)
		path = append(path[:len(path):len(path)], schema.Key(s))
		depth++
	}
	leaf := segs[len(segs)-1]
	tp.PushKey(depth+1, []byte(leaf))
	leafPath := append(path[:len(path):len(path)], schema.Key(leaf))
	var err error
	if decide(sch, leafPath) == decideSkip {
		tp.PushSkipMarker(depth+1, len(value))
	} else {
		err = pushTomlValue(tp, depth+1, value)
	}
	for k := len(openIdxs) - 1; k >= 0; k-- {
		tp.PushEnd(tape.ObjectEnd, depth, openIdxs[k])
		depth--
	}
	if len(openIdxs) > 0 {
		tp.AddSidecar(openIdxs[0], tape.TomlDottedKey, strings.Join(segs, "."))
	}
	return err
}

func pushTomlValue(tp *tape.Tape, depth int, raw string) error {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "true":
		tp.PushBool(depth, true)
		return nil
	case raw == "false":
		tp.PushBool(depth, false)
		return nil
	case strings.HasPrefix(raw, `"""`) && strings.HasSuffix(raw, `"""`) && len(raw) >= 6:
		idx := tp.PushString(depth, []byte(raw[3:len(raw)-3]))
		tp.AddSidecar(idx, tape.TomlTripleQuoted, raw)
		return nil
	case (strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) && len(raw) >= 2) ||
		(strings.HasPrefix(raw, `'`) && strings.HasSuffix(raw, `'`) && len(raw) >= 2):
		tp.PushString(depth, []byte(raw[1:len(raw)-1]))
		return nil
	case strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
		arrIdx := tp.PushStart(tape.ArrayStart, depth)
		inner := strings.TrimSpace(raw[1 : len(raw)-1])
		if inner != "" {
			for _, item := range splitTomlCommaList(inner) {
				if err := pushTomlValue(tp, depth+1, strings.TrimSpace(item)); err != nil {
					return err
				}
			}
		}
		tp.PushEnd(tape.ArrayEnd, depth, arrIdx)
		return nil
	case strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
		objIdx := tp.PushStart(tape.ObjectStart, depth)
		inner := strings.TrimSpace(raw[1 : len(raw)-1])
		if inner != "" {
			for _, pair := range splitTomlCommaList(inner) {
				k, v, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("bad inline table pair %q", pair)
				}
				tp.PushKey(depth+1, []byte(strings.TrimSpace(k)))
				if err := pushTomlValue(tp, depth+1, strings.TrimSpace(v)); err != nil {
					return err
				}
			}
		}
		tp.PushEnd(tape.ObjectEnd, depth, objIdx)
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		tp.PushNumber(depth, float64(n))
		return nil
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		tp.PushNumber(depth, n)
		return nil
	}
	return fmt.Errorf("unrecognized TOML value %q", raw)
}

// splitTomlCommaList splits a flat (non-nested) comma list, honoring
// quoted commas.
func splitTomlCommaList(s string) []string {
	var out []string
	depth := 0
	inQuote := byte(0)
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote != 0:
			if c == inQuote {
				inQuote = 0
			}
		case c == '"' || c == '\'':
			inQuote = c
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
		case c == ',' && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// stripTomlComment removes a trailing "# ..." comment, honoring quoted
// '#' characters via the same toggle-scan idiom splitCSVRows uses.
func stripTomlComment(line string) string {
	inQuote := byte(0)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote != 0:
			if c == inQuote {
				inQuote = 0
			}
		case c == '"' || c == '\'':
			inQuote = c
		case c == '#':
			return line[:i]
		}
	}
	return line
}

// joinTomlTripleQuotedLines merges any line range that opens a """
// block but does not close it on the same physical line with however
// many following lines are needed to find the closing """, so the main
// per-line scan never has to track multi-line string state itself.
func joinTomlTripleQuotedLines(lines [][2]int, data []byte) []string {
	var out []string
	i := 0
	for i < len(lines) {
		text := string(data[lines[i][0]:lines[i][1]])
		if cnt := strings.Count(text, `"""`); cnt%2 == 1 {
			j := i + 1
			joined := text
			for j < len(lines) {
				next := string(data[lines[j][0]:lines[j][1]])
				joined += "\n" + next
				j++
				if strings.Count(next, `"""`) > 0 {
					break
				}
			}
			out = append(out, joined)
			i = j
			continue
		}
		out = append(out, text)
		i++
	}
	return out
}
