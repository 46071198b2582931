/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package tape implements the unified skip tape of spec §3/§4.5: a flat,
// format-agnostic node sequence that every adapter in package format
// writes into and that Reader walks in O(depth) via sibling-skip
// offsets, never by re-parsing input bytes.
package tape

import "math"

// Kind classifies a Node. ObjectStart/ObjectEnd and ArrayStart/ArrayEnd
// are always paired at the same depth; Key only ever precedes a value
// node at the same depth as its parent container.
type Kind uint8

const (
	ObjectStart Kind = iota
	ObjectEnd
	ArrayStart
	ArrayEnd
	Key
	String
	Number
	Bool
	Null
	SkipMarker

	// Format-specific markers, opaque to the core but carried through
	// (spec §3.2's "format-specific markers" row).
	YamlDocumentStart
	YamlAnchor
	YamlAlias
	TomlTableStart
	TomlArrayTableStart
	CsvRowStart
	IsonBlockHeader
	ToonFoldedKey
	ToonArrayHeader
)

func (k Kind) String() string {
	switch k {
	case ObjectStart:
		return "ObjectStart"
	case ObjectEnd:
		return "ObjectEnd"
	case ArrayStart:
		return "ArrayStart"
	case ArrayEnd:
		return "ArrayEnd"
	case Key:
		return "Key"
	case String:
		return "String"
	case Number:
		return "Number"
	case Bool:
		return "Bool"
	case Null:
		return "Null"
	case SkipMarker:
		return "SkipMarker"
	case YamlDocumentStart:
		return "YamlDocumentStart"
	case YamlAnchor:
		return "YamlAnchor"
	case YamlAlias:
		return "YamlAlias"
	case TomlTableStart:
		return "TomlTableStart"
	case TomlArrayTableStart:
		return "TomlArrayTableStart"
	case CsvRowStart:
		return "CsvRowStart"
	case IsonBlockHeader:
		return "IsonBlockHeader"
	case ToonFoldedKey:
		return "ToonFoldedKey"
	case ToonArrayHeader:
		return "ToonArrayHeader"
	default:
		return "Unknown"
	}
}

// IsStart reports whether k opens a container that a later *End pairs
// with, i.e. whether its Payload is a sibling-skip offset rather than a
// plain value.
func (k Kind) IsStart() bool {
	switch k {
	case ObjectStart, ArrayStart, TomlTableStart, TomlArrayTableStart:
		return true
	default:
		return false
	}
}

// Node is one tape slot. Kind and Depth take one byte each and Payload
// eight, padded to 16 bytes so token_count * sizeof(Node) matches the
// 16-byte-per-token figure in spec §5's memory budget.
type Node struct {
	Kind    Kind
	Depth   uint8
	_       [6]byte
	Payload uint64
}

// Float64 decodes a Number node's IEEE-754 payload.
func (n Node) Float64() float64 { return math.Float64frombits(n.Payload) }

// Bool decodes a Bool node's 0/1 payload.
func (n Node) Bool() bool { return n.Payload != 0 }
