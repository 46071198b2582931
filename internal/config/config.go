/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package config assembles a ParseOptions struct -- the engine's
// programmatic configuration surface, built by the embedding caller
// rather than read from a config file the way the ingest package's
// IngestConfig is, since skiptape is a library with no process of its
// own to hand a file to. Defaults and environment-variable overrides
// follow the same load-then-validate shape ingest/config uses for its
// own settings.
package config

import (
	"fmt"

	"github.com/gravwell/skiptape/format"
	"github.com/gravwell/skiptape/internal/pool"
	"github.com/gravwell/skiptape/internal/slog"
	"github.com/gravwell/skiptape/schema"
)

// ParseOptions is a plain struct the caller assembles programmatically
// -- no CLI flag parsing, no config file -- and then turns into a
// format.Options via ToOptions for a single adapter call.
type ParseOptions struct {
	// Fidelity controls lossy-construct handling on output (spec
	// §4.6's fidelity mode). Defaults to format.Strict.
	Fidelity format.Fidelity

	// Alias selects the YAML adapter's anchor/alias resolution
	// strategy (spec §4.6.3). Ignored by every other adapter.
	Alias format.AliasStrategy

	// CSVDelimiter overrides CSV's delimiter auto-detection; zero
	// keeps auto-detection from the first line.
	CSVDelimiter byte

	// InternThreshold caps which object keys get deduplicated in the
	// tape's string arena by length; 0 means unlimited.
	InternThreshold int

	// TapeHint sizes the tape's initial node-slot capacity; 0 picks
	// the adapter's built-in default.
	TapeHint int

	// NoHeader tells the CSV adapter the first row is data.
	NoHeader bool

	// SchemaPatterns and SchemaMode compile into the Schema that
	// gates which paths parse fully versus collapse to a SkipMarker
	// (spec §4.4). A nil/empty pattern list means accept-all.
	SchemaPatterns []string
	SchemaMode     schema.Mode

	// Pool, if set, is shared across ToOptions calls so repeated
	// parses reuse tapes instead of allocating fresh ones each time
	// (spec §6.1).
	Pool *pool.Pool

	// Log receives the engine's internal DEBUG narration.
	Log *slog.Logger
}

// Default returns a ParseOptions with the engine's defaults: strict
// fidelity, inline alias resolution, auto-detected CSV delimiter,
// unlimited interning, accept-all schema, a discard logger, and no
// shared pool.
func Default() ParseOptions {
	return ParseOptions{
		Fidelity: format.Strict,
		Alias:    format.AliasInline,
	}
}

// ToOptions compiles o's schema patterns (if any) and returns the
// format.Options a ParseXXX call consumes. It is the one place
// ParseOptions and format.Options' drift would surface, so adapter
// code never needs to know ParseOptions exists.
func (o ParseOptions) ToOptions() (format.Options, error) {
	opt := format.Options{
		TapeHint:        o.TapeHint,
		Fidelity:        o.Fidelity,
		Alias:           o.Alias,
		Delimiter:       o.CSVDelimiter,
		NoHeader:        o.NoHeader,
		Pool:            o.Pool,
		Log:             o.Log,
		InternThreshold: o.InternThreshold,
	}
	if len(o.SchemaPatterns) == 0 {
		return opt, nil
	}
	sch, err := schema.CompileLogged(o.SchemaPatterns, o.SchemaMode, o.Log)
	if err != nil {
		return format.Options{}, fmt.Errorf("config: compiling schema: %w", err)
	}
	opt.Schema = sch
	return opt, nil
}

// Validate reports a descriptive error for a ParseOptions combination
// the engine cannot act on -- an unset delimiter is legal (it means
// auto-detect), so this only rejects contradictions, not omissions.
func (o ParseOptions) Validate() error {
	if o.Fidelity > format.Lossy {
		return fmt.Errorf("config: unknown fidelity mode %d", o.Fidelity)
	}
	if o.Alias > format.AliasLazy {
		return fmt.Errorf("config: unknown alias strategy %d", o.Alias)
	}
	if o.InternThreshold < 0 {
		return fmt.Errorf("config: intern threshold must be >= 0, got %d", o.InternThreshold)
	}
	return nil
}
