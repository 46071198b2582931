/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package format implements the six per-format adapters of spec §4.6:
// each drives C1 (internal/scan) and C2 (internal/strategy) over the
// input bytes, consults C4 (schema) at every value boundary, and writes
// C3/C5 (internal/arena, tape) records.
package format

import (
	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/internal/pool"
	"github.com/gravwell/skiptape/internal/slog"
	"github.com/gravwell/skiptape/schema"
	"github.com/gravwell/skiptape/tape"
)

// Fidelity controls how an adapter's output transformation (not input
// parsing, which always accepts as much as the format allows per spec
// §4.6) handles surface syntax the unified tape cannot represent.
type Fidelity uint8

const (
	Strict Fidelity = iota
	Warning
	Lossy
)

// AliasStrategy selects how a YAML adapter resolves `*alias` references
// against their anchors (spec §4.6.3).
type AliasStrategy uint8

const (
	AliasInline AliasStrategy = iota
	AliasPreserve
	AliasLazy
)

// Options configures a single adapter invocation.
type Options struct {
	// Schema gates which paths parse fully versus collapse to a
	// SkipMarker (spec §4.6's on_value). Nil means accept-all.
	Schema *schema.Schema

	// TapeHint sizes the tape's initial node-slot capacity.
	TapeHint int

	Fidelity Fidelity
	Alias    AliasStrategy

	// Delimiter overrides CSV's delimiter auto-detection; zero means
	// detect from the first line.
	Delimiter byte

	// NoHeader tells the CSV adapter the first row is data, not field
	// names; rows are then keyed "col_0", "col_1", ... (spec §4.6.5).
	NoHeader bool

	// Pool, if set, supplies tapes via Acquire instead of a fresh
	// tape.New allocation per call (spec §6.1). Nil means allocate
	// directly, which is also what Release would do on a capped pool.
	Pool *pool.Pool

	// Log receives DEBUG-level narration of strategy selection and
	// other adapter-internal decisions. A nil Log discards silently.
	Log *slog.Logger

	// InternThreshold caps which object keys the tape's arena
	// deduplicates by length; 0 means unlimited (every key interned).
	InternThreshold int
}

func (o Options) schemaOrAcceptAll() *schema.Schema { return o.Schema }

func (o Options) tapeHint() int {
	if o.TapeHint > 0 {
		return o.TapeHint
	}
	return 64
}

// newTape allocates (or, with a Pool configured, acquires) the tape an
// adapter writes into for format f.
func (o Options) newTape(f errs.Format) *tape.Tape {
	var tp *tape.Tape
	if o.Pool != nil {
		tp = o.Pool.Acquire(f, o.tapeHint())
	} else {
		tp = tape.New(f, o.tapeHint())
	}
	if o.InternThreshold > 0 {
		tp.Arena.SetInternThreshold(o.InternThreshold)
	}
	return tp
}

func (o Options) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.NewDiscard()
}
