/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package strategy implements the four skip-value strategies of spec
// §4.2: Scalar, XorPrefix, BracketCount and Wide. All four satisfy the
// same Strategy contract; Scalar is the semantic reference and the
// others must agree with it byte-for-byte (spec property 9).
package strategy

import "github.com/gravwell/skiptape/errs"

// Strategy is the contract every skip implementation satisfies. pos
// points at the first byte inside the value: the byte after an opening
// quote for SkipString, after an opening bracket for SkipContainer.
// SkipValue is the general entry point and dispatches to one of the
// other two based on the byte at pos.
type Strategy interface {
	SkipValue(data []byte, pos int, f errs.Format) (end int, escapedSeen bool, err error)
	SkipString(data []byte, pos int, f errs.Format) (end int, escapedSeen bool, err error)
	SkipContainer(data []byte, pos int, open, close byte, f errs.Format) (end int, escapedSeen bool, err error)
}

// Kind names the four concrete strategies for logging/selection.
type Kind uint8

const (
	KindScalar Kind = iota
	KindXorPrefix
	KindBracketCount
	KindWide
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindXorPrefix:
		return "xor-prefix"
	case KindBracketCount:
		return "bracket-count"
	case KindWide:
		return "wide-simd"
	default:
		return "unknown"
	}
}

const (
	scalarThreshold = 64
	wideThreshold   = 4096
)

// Select implements spec §4.2's selection policy: inputs under 64 bytes
// always use the scalar reference; inputs of 4096 bytes or more use the
// wide strategy when the runtime CPU supports it; everything else uses
// bracket-count.
func Select(length int) Kind {
	if length < scalarThreshold {
		return KindScalar
	}
	if length >= wideThreshold && WideAvailable() {
		return KindWide
	}
	return KindBracketCount
}

// For looks up the concrete Strategy for a Kind.
func For(k Kind) Strategy {
	switch k {
	case KindScalar:
		return Scalar{}
	case KindXorPrefix:
		return XorPrefix{}
	case KindWide:
		return Wide{}
	default:
		return BracketCount{}
	}
}

// ForLength is a convenience combining Select and For.
func ForLength(length int) (Kind, Strategy) {
	k := Select(length)
	return k, For(k)
}
