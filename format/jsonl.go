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

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/tape"
)

// ParseJSONL implements the JSONL adapter of spec §4.6.2: each line is
// an independent JSON document, boundaries found outside string state
// via splitLines, and the resulting per-line tapes are concatenated
// with a document-boundary marker between them. Blank lines are
// skipped, matching common JSONL tooling's tolerance for trailing
// newlines.
func ParseJSONL(data []byte, opt Options) (*tape.Tape, error) {
	lines := splitLines(data)
	out := opt.newTape(errs.Json)
	seen := 0
	for _, ln := range lines {
		line := bytes.TrimSpace(data[ln[0]:ln[1]])
		if len(line) == 0 {
			continue
		}
		if seen > 0 {
			out.PushMarker(tape.YamlDocumentStart, 0, uint64(seen))
		}
		seen++
		sub, err := ParseJSON(line, opt)
		if err != nil {
			return nil, err
		}
		out.AppendSubtape(sub)
	}
	return out, nil
}
