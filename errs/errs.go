/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package errs defines the diagnostic values returned by the skiptape
// parse engine. Every failure is a single *errs.Error carrying enough
// context to render a readable message without re-scanning the input.
package errs

import "fmt"

// Format tags the textual surface syntax a tape (or an error) came from.
type Format uint8

const (
	Unknown Format = iota
	Json
	Yaml
	Toml
	Csv
	Ison
	Toon
)

func (f Format) String() string {
	switch f {
	case Json:
		return "json"
	case Yaml:
		return "yaml"
	case Toml:
		return "toml"
	case Csv:
		return "csv"
	case Ison:
		return "ison"
	case Toon:
		return "toon"
	default:
		return "unknown"
	}
}

// Kind classifies a parse failure per spec §7.
type Kind uint8

const (
	// Truncated means the input ended mid-value.
	Truncated Kind = iota
	// Malformed means a structural violation was found at a concrete position.
	Malformed
	// Encoding means invalid UTF-8 was found where UTF-8 is required.
	Encoding
	// SchemaFormat means a caller-supplied path pattern failed to compile.
	SchemaFormat
	// Overflow means a numeric literal exceeded representable range in strict mode.
	Overflow
	// LossRejected means strict fidelity mode rejected a lossy cross-format transform.
	LossRejected
)

func (k Kind) String() string {
	switch k {
	case Truncated:
		return "Truncated"
	case Malformed:
		return "Malformed"
	case Encoding:
		return "Encoding"
	case SchemaFormat:
		return "SchemaFormat"
	case Overflow:
		return "Overflow"
	case LossRejected:
		return "LossRejected"
	default:
		return "Unknown"
	}
}

// Error is the single structured diagnostic value the engine ever returns.
// The parse halts on the first Error; there is no partial recovery.
type Error struct {
	Format Format
	Kind   Kind
	Offset int64  // byte offset of the defect, -1 if not applicable
	Line   int    // 1-based, 0 if the format does not track lines
	Column int    // 1-based, 0 if the format does not track columns
	Path   string // schema path context at time of failure, empty if none
	Detail string // short human-readable message
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s at offset %d", e.Format, e.Kind, e.Offset)
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d, col %d)", e.Line, e.Column)
	}
	if e.Path != `` {
		msg += fmt.Sprintf(" [path %s]", e.Path)
	}
	if e.Detail != `` {
		msg += ": " + e.Detail
	}
	return msg
}

// New builds an *Error with no line/column/path context, the common case
// for the scalar-level skip strategies that only know a byte offset.
func New(f Format, k Kind, offset int64, detail string) *Error {
	return &Error{Format: f, Kind: k, Offset: offset, Detail: detail}
}

// WithPos returns a copy of e with line/column attached, used by
// indentation-sensitive adapters (YAML, TOON) that track logical lines.
func (e *Error) WithPos(line, col int) *Error {
	if e == nil {
		return nil
	}
	ne := *e
	ne.Line = line
	ne.Column = col
	return &ne
}

// WithPath returns a copy of e with the schema path context attached.
func (e *Error) WithPath(path string) *Error {
	if e == nil {
		return nil
	}
	ne := *e
	ne.Path = path
	return &ne
}

// TruncatedAt builds a Truncated error at the given offset.
func TruncatedAt(f Format, offset int64) *Error {
	return New(f, Truncated, offset, "input ended mid-value")
}

// MalformedAt builds a Malformed error with a short detail string.
func MalformedAt(f Format, offset int64, detail string) *Error {
	return New(f, Malformed, offset, detail)
}
