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
	"strings"

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/schema"
	"github.com/gravwell/skiptape/tape"
)

// ParseISONL implements the streaming pipe-delimited flavour of spec
// §4.6.6: each line carries its own schema prefix ("id:int,name:string"),
// letting the schema evolve line to line, followed by that many
// pipe-delimited values. Line boundaries reuse splitLines exactly as
// JSONL does (spec §4.6.2), and per-line rows concatenate with a
// document-boundary marker between them, the same convention ParseJSONL
// uses.
func ParseISONL(data []byte, opt Options) (*tape.Tape, error) {
	lines := splitLines(data)
	out := opt.newTape(errs.Ison)
	sch := opt.Schema
	seen := 0
	for _, ln := range lines {
		line := bytes.TrimSpace(data[ln[0]:ln[1]])
		if len(line) == 0 {
			continue
		}
		sub, err := parseIsonlLine(line, sch)
		if err != nil {
			return nil, err
		}
		if seen > 0 {
			out.PushMarker(tape.YamlDocumentStart, 0, uint64(seen))
		}
		seen++
		out.AppendSubtape(sub)
	}
	return out, nil
}

func parseIsonlLine(line []byte, sch *schema.Schema) (*tape.Tape, error) {
	parts := strings.Split(string(line), "|")
	if len(parts) == 0 {
		return nil, errs.MalformedAt(errs.Ison, 0, "empty ISONL line")
	}
	fields, err := parseIsonSchema(strings.ReplaceAll(parts[0], ",", " "))
	if err != nil {
		return nil, errs.New(errs.Ison, errs.Malformed, 0, err.Error())
	}
	vals := parts[1:]
	if len(vals) != len(fields) {
		return nil, errs.New(errs.Ison, errs.Malformed, 0,
			fmt.Sprintf("row has %d fields, schema prefix declares %d", len(vals), len(fields)))
	}

	tp := tape.New(errs.Ison, len(fields)*2+2)
	objIdx := tp.PushStart(tape.ObjectStart, 0)
	for i, f := range fields {
		tp.PushKey(0, []byte(f.name))
		path := schema.Path{schema.Key(f.name)}
		if decide(sch, path) == decideSkip {
			tp.PushSkipMarker(1, len(vals[i]))
			continue
		}
		if err := pushIsonValue(tp, 1, strings.TrimSpace(vals[i]), f.typ); err != nil {
			return nil, errs.New(errs.Ison, errs.Malformed, 0, err.Error())
		}
	}
	tp.PushEnd(tape.ObjectEnd, 0, objIdx)
	return tp, nil
}
