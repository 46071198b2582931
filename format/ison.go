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
	"fmt"
	"strconv"
	"strings"

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/schema"
	"github.com/gravwell/skiptape/tape"
)

// isonField is one "name:type" pair off a block's schema line.
type isonField struct {
	name string
	typ  string
}

// ParseISON implements the block-style ISON adapter of spec §4.6.6: a
// header line ("table.name" or "object.name") introduces a block whose
// next line is a typed schema ("id:int name:string"), followed by data
// rows until a blank line or end of input. Blocks are emitted as fields
// of a single root object, keyed by their header text.
func ParseISON(data []byte, opt Options) (*tape.Tape, error) {
	lines := splitLines(data)
	tp := opt.newTape(errs.Ison)
	sch := opt.Schema

	rootIdx := tp.PushStart(tape.ObjectStart, 0)
	i := 0
	for i < len(lines) {
		header := bytes.TrimSpace(data[lines[i][0]:lines[i][1]])
		if len(header) == 0 {
			i++
			continue
		}
		if bytes.ContainsRune(header, ':') {
			return nil, errs.MalformedAt(errs.Ison, int64(lines[i][0]), "expected block header, found schema-like line")
		}
		blockName := string(header)
		i++
		if i >= len(lines) {
			return nil, errs.TruncatedAt(errs.Ison, int64(len(data)))
		}
		schemaLine := bytes.TrimSpace(data[lines[i][0]:lines[i][1]])
		fields, err := parseIsonSchema(string(schemaLine))
		if err != nil {
			return nil, errs.New(errs.Ison, errs.Malformed, int64(lines[i][0]), err.Error())
		}
		i++

		headerIdx := tp.PushMarker(tape.IsonBlockHeader, 1, 0)
		tp.AddSidecar(headerIdx, tape.IsonReferenceKind, blockName)
		tp.PushKey(1, []byte(blockName))

		blockPath := schema.Path{schema.Key(blockName)}
		if decide(sch, blockPath) == decideSkip {
			start := lines[i-2][0]
			end := i
			for end < len(lines) && lines[end][1] != lines[end][0] {
				end++
			}
			skipEnd := len(data)
			if end > 0 && end-1 < len(lines) {
				skipEnd = lines[end-1][1]
			}
			tp.PushSkipMarker(1, skipEnd-start)
			i = end
			if i < len(lines) {
				i++
			}
			continue
		}

		arrIdx := tp.PushStart(tape.ArrayStart, 1)
		rowNum := 0
		for i < len(lines) {
			row := bytes.TrimSpace(data[lines[i][0]:lines[i][1]])
			if len(row) == 0 {
				i++
				break
			}
			rowPath := append(blockPath[:len(blockPath):len(blockPath)], schema.Index(rowNum))
			vals := splitIsonRow(row)
			if len(vals) != len(fields) {
				return nil, errs.New(errs.Ison, errs.Malformed, int64(lines[i][0]),
					fmt.Sprintf("row has %d fields, schema declares %d", len(vals), len(fields)))
			}
			if decide(sch, rowPath) == decideSkip {
				tp.PushSkipMarker(2, len(row))
				i++
				rowNum++
				continue
			}
			objIdx := tp.PushStart(tape.ObjectStart, 2)
			for fi, f := range fields {
				tp.PushKey(2, []byte(f.name))
				fieldPath := append(rowPath[:len(rowPath):len(rowPath)], schema.Key(f.name))
				if decide(sch, fieldPath) == decideSkip {
					tp.PushSkipMarker(3, len(vals[fi]))
					continue
				}
				if err := pushIsonValue(tp, 3, vals[fi], f.typ); err != nil {
					return nil, errs.New(errs.Ison, errs.Malformed, int64(lines[i][0]), err.Error())
				}
			}
			tp.PushEnd(tape.ObjectEnd, 2, objIdx)
			i++
			rowNum++
		}
		tp.PushEnd(tape.ArrayEnd, 1, arrIdx)
	}
	tp.PushEnd(tape.ObjectEnd, 0, rootIdx)
	return tp, nil
}

func parseIsonSchema(line string) ([]isonField, error) {
	toks := strings.Fields(line)
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty schema line")
	}
	fields := make([]isonField, 0, len(toks))
	for _, t := range toks {
		name, typ, ok := strings.Cut(t, ":")
		if !ok {
			return nil, fmt.Errorf("schema token %q missing type", t)
		}
		fields = append(fields, isonField{name: name, typ: typ})
	}
	return fields, nil
}

// splitIsonRow splits a data row on '|' if present, otherwise on
// whitespace (spec §4.6.6: "space- or pipe-delimited").
func splitIsonRow(row []byte) []string {
	if bytes.ContainsRune(row, '|') {
		parts := strings.Split(string(row), "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return strings.Fields(string(row))
}

// pushIsonValue converts a raw field value per its declared schema type
// and pushes the resulting node. A value of the form ":type:id" is a
// cross-record reference (spec §4.6.6); it is pushed as its literal text
// with a sidecar record preserving the reference shape.
func pushIsonValue(tp *tape.Tape, depth int, raw string, typ string) error {
	if strings.HasPrefix(raw, ":") {
		idx := tp.PushString(depth, []byte(raw))
		tp.AddSidecar(idx, tape.IsonReferenceKind, raw)
		return nil
	}
	switch typ {
	case "int":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("bad int %q: %w", raw, err)
		}
		tp.PushNumber(depth, float64(n))
	case "float", "number":
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("bad float %q: %w", raw, err)
		}
		tp.PushNumber(depth, n)
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("bad bool %q: %w", raw, err)
		}
		tp.PushBool(depth, b)
	case "string":
		tp.PushString(depth, []byte(raw))
	default:
		return fmt.Errorf("unknown ison type %q", typ)
	}
	return nil
}
