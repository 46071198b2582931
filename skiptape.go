/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package skiptape is the engine's top-level entry point: format
// detection for callers that don't already know their input's shape,
// and per-parse statistics alongside the tape C5 produces.
package skiptape

import (
	"bytes"

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/tape"
)

// Detect sniffs data's leading bytes for a best-effort format guess.
// It never fully parses; callers that need certainty should attempt
// the adapter for the guessed format and fall back on error. Unknown
// is returned when nothing recognisable is found, grounded on the
// teacher's content-prefix sniffing idiom for upload type detection.
func Detect(data []byte) errs.Format {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return errs.Unknown
	}
	if bytes.HasPrefix(data, []byte("---")) {
		return errs.Yaml
	}
	if data[0] == '{' {
		return errs.Json
	}
	line := firstLine(data)
	if bytes.HasPrefix(data, []byte("[[")) || looksLikeToml(line) {
		return errs.Toml
	}
	if data[0] == '[' {
		return errs.Json
	}
	if looksLikeYamlKey(line) {
		return errs.Yaml
	}
	if looksLikeCsv(line) {
		return errs.Csv
	}
	return errs.Unknown
}

func firstLine(data []byte) []byte {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[:i]
	}
	return data
}

// looksLikeToml reports whether line is a bare "[table.name]" header: a
// JSON array's first line never closes on the same line without a
// comma (or is empty/a scalar), so rejecting both tells the two apart
// without a full parse.
func looksLikeToml(line []byte) bool {
	if len(line) < 3 || line[0] != '[' || line[len(line)-1] != ']' {
		return false
	}
	inner := bytes.TrimSpace(line[1 : len(line)-1])
	if len(inner) == 0 || bytes.ContainsAny(inner, ",\"{}[]") {
		return false
	}
	return true
}

func looksLikeYamlKey(line []byte) bool {
	i := bytes.IndexByte(line, ':')
	return i > 0 && i < len(line)-1
}

func looksLikeCsv(line []byte) bool {
	return bytes.ContainsRune(line, ',') && bytes.IndexByte(line, '{') < 0
}

// Stats summarises one parse: how many tape slots were written, how
// many input bytes a schema caused to be skipped rather than parsed,
// and the resulting selectivity (skipped / total input bytes, 0 when
// nothing was skipped). It generalises the ad hoc extraction counters
// the teacher's processors keep into a first-class result callers can
// log or export.
type Stats struct {
	Nodes        int
	SkippedBytes int64
	InputBytes   int64
}

// Selectivity reports the fraction of input bytes a schema skipped,
// in [0, 1]. An InputBytes of zero reports 0 rather than dividing by
// zero.
func (s Stats) Selectivity() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.SkippedBytes) / float64(s.InputBytes)
}

// CollectStats walks tp and reports Stats against an input of
// inputBytes length.
func CollectStats(tp *tape.Tape, inputBytes int) Stats {
	st := Stats{Nodes: tp.Len(), InputBytes: int64(inputBytes)}
	for _, n := range tp.Nodes {
		if n.Kind == tape.SkipMarker {
			st.SkippedBytes += int64(n.Payload)
		}
	}
	return st
}
