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
	"encoding/csv"
	"fmt"

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/schema"
	"github.com/gravwell/skiptape/tape"
)

// ParseCSV implements the CSV adapter of spec §4.6.5. Row boundaries
// (unescaped '\n', CRLF normalised) are found with a scalar
// quote-toggle: field content itself is handed to the standard
// library's encoding/csv reader, the same package the teacher reaches
// for in its own CSV route processor, rather than re-deriving its
// quoting/escaping rules by hand.
func ParseCSV(data []byte, opt Options) (*tape.Tape, error) {
	data = stripBOM(data)
	rows := splitCSVRows(data)
	tp := opt.newTape(errs.Csv)
	if len(rows) == 0 {
		arrIdx := tp.PushStart(tape.ArrayStart, 0)
		tp.PushEnd(tape.ArrayEnd, 0, arrIdx)
		return tp, nil
	}

	delim := opt.Delimiter
	if delim == 0 {
		delim = detectDelimiter(data[rows[0][0]:rows[0][1]])
	}
	sch := opt.Schema

	var header []string
	rowStart := 0
	if !opt.NoHeader {
		hdr, err := parseCSVRow(data[rows[0][0]:rows[0][1]], delim)
		if err != nil {
			return nil, errs.New(errs.Csv, errs.Malformed, int64(rows[0][0]), "bad header row: "+err.Error())
		}
		header = hdr
		rowStart = 1
	}

	arrIdx := tp.PushStart(tape.ArrayStart, 0)
	rowNum := 0
	for _, rng := range rows[rowStart:] {
		start, end := rng[0], rng[1]
		rowBytes := data[start:end]
		if len(bytes.TrimSpace(rowBytes)) == 0 {
			continue
		}
		rowPath := schema.Path{schema.Index(rowNum)}
		if decide(sch, rowPath) == decideSkip {
			tp.PushSkipMarker(1, end-start)
			rowNum++
			continue
		}

		fields, err := parseCSVRow(rowBytes, delim)
		if err != nil {
			return nil, errs.New(errs.Csv, errs.Malformed, int64(start), "malformed row: "+err.Error())
		}
		if header != nil && len(fields) != len(header) {
			return nil, errs.New(errs.Csv, errs.Malformed, int64(start),
				fmt.Sprintf("row %d has %d fields, header has %d", rowNum, len(fields), len(header)))
		}

		objIdx := tp.PushStart(tape.ObjectStart, 1)
		for fi, val := range fields {
			key := colName(header, fi)
			tp.PushKey(1, []byte(key))
			fieldPath := schema.Path{schema.Index(rowNum), schema.Key(key)}
			if decide(sch, fieldPath) == decideSkip {
				tp.PushSkipMarker(2, len(val))
			} else {
				tp.PushString(2, []byte(val))
			}
		}
		tp.PushEnd(tape.ObjectEnd, 1, objIdx)
		rowNum++
	}
	tp.PushEnd(tape.ArrayEnd, 0, arrIdx)
	return tp, nil
}

func colName(header []string, i int) string {
	if header != nil && i < len(header) {
		return header[i]
	}
	return fmt.Sprintf("col_%d", i)
}

func parseCSVRow(row []byte, delim byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(row))
	r.Comma = rune(delim)
	r.FieldsPerRecord = -1
	r.LazyQuotes = false
	return r.Read()
}

func detectDelimiter(firstLine []byte) byte {
	candidates := []byte{',', ';', '\t', '|'}
	best := byte(',')
	bestCount := -1
	for _, c := range candidates {
		n := bytes.Count(firstLine, []byte{c})
		if n > bestCount {
			bestCount = n
			best = c
		}
	}
	return best
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// splitCSVRows locates unescaped '\n' bytes via a scalar quote-toggle
// (CSV's own quoting convention, "" for a literal quote, toggles the
// in-quotes flag an even number of times per well-formed field, so a
// simple per-byte toggle is exact -- unlike JSON's backslash-escaped
// strings, there is no odd/even escape-run carry to thread).
func splitCSVRows(data []byte) [][2]int {
	var rows [][2]int
	inQuotes := false
	start := 0
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				end := i
				if end > start && data[end-1] == '\r' {
					end--
				}
				rows = append(rows, [2]int{start, end})
				start = i + 1
			}
		}
	}
	if start < len(data) {
		end := len(data)
		if end > start && data[end-1] == '\r' {
			end--
		}
		rows = append(rows, [2]int{start, end})
	}
	return rows
}
