/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package format

import (
	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/internal/slog"
	"github.com/gravwell/skiptape/internal/strategy"
	"github.com/gravwell/skiptape/schema"
	"github.com/gravwell/skiptape/tape"
)

// decision is the outcome of spec §4.6's on_value: whether to parse a
// value fully (because it matches, or a descendant might) or to skip it
// wholesale and emit a single SkipMarker.
type decision uint8

const (
	decideParse decision = iota
	decideSkip
)

// decide implements on_value's branch without performing any I/O: a nil
// schema always parses (accept-all), a matching path always parses, and
// a path whose children could still match also parses (the adapter
// recurses and lets nested on_value calls decide for the children).
func decide(sch *schema.Schema, path schema.Path) decision {
	if sch == nil {
		return decideParse
	}
	if sch.Matches(path) {
		return decideParse
	}
	if sch.CouldMatchChildren(path) {
		return decideParse
	}
	return decideSkip
}

// skipValue runs the size-appropriate strategy over data[pos:], records
// a single SkipMarker at depth, and returns the position immediately
// after the skipped value.
func skipValue(data []byte, pos int, f errs.Format, tp *tape.Tape, depth int, log *slog.Logger) (int, error) {
	kind, strat := strategy.ForLength(len(data) - pos)
	if log != nil {
		log.Debug("strategy selected",
			slog.F("kind", kind),
			slog.F("format", f),
			slog.F("remaining", len(data)-pos),
			slog.F("wide_available", strategy.WideAvailable()),
		)
	}
	end, _, err := strat.SkipValue(data, pos, f)
	if err != nil {
		return pos, err
	}
	tp.PushSkipMarker(depth, end-pos)
	return end, nil
}
