/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package schema

import "github.com/gravwell/skiptape/internal/slog"

// Stats summarises the shape of a compiled Schema for diagnostics.
type Stats struct {
	Patterns  int
	Exact     int
	Ancestors int
	Wildcards int
	MaxDepth  int
}

// Stats reports s's compiled shape.
func (s *Schema) Stats() Stats {
	return Stats{
		Patterns:  s.patternCnt,
		Exact:     len(s.exact),
		Ancestors: len(s.ancestors),
		Wildcards: len(s.wildcards),
		MaxDepth:  s.maxDepth,
	}
}

// CompileLogged is Compile with the resulting Schema's Stats narrated
// to log at DEBUG, for callers that want schema-compile visibility
// without touching every existing Compile call site.
func CompileLogged(patterns []string, mode Mode, log *slog.Logger) (*Schema, error) {
	s, err := Compile(patterns, mode)
	if err != nil {
		return nil, err
	}
	if log != nil {
		st := s.Stats()
		log.Debug("schema compiled",
			slog.F("patterns", st.Patterns),
			slog.F("exact", st.Exact),
			slog.F("ancestors", st.Ancestors),
			slog.F("wildcards", st.Wildcards),
			slog.F("max_depth", st.MaxDepth),
		)
	}
	return s, nil
}
