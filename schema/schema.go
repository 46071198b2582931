/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package schema

// Mode selects whether a Schema's patterns name the paths to keep
// (Include) or the paths to drop (Exclude), per spec §4.4.
type Mode uint8

const (
	Include Mode = iota
	Exclude
)

// wildcardPattern is a compiled pattern that contains at least one of
// *, **, or [*] and so cannot be resolved by a single hash lookup.
type wildcardPattern struct {
	segs []patSeg
	raw  string
}

// Schema is a compiled set of path patterns plus the mode they apply
// under. Adapters build one per parse (or reuse one across parses of
// the same configuration) and consult it via Matches and
// CouldMatchChildren at every value boundary.
type Schema struct {
	mode       Mode
	exact      map[uint64]struct{} // no-wildcard patterns, O(1) lookup
	ancestors  map[uint64]struct{} // every proper prefix of an exact pattern
	wildcards  []wildcardPattern
	maxDepth   int
	patternCnt int
}

// Compile parses patterns and builds a Schema for mode. An empty
// pattern list is legal: in Include mode it matches nothing, in Exclude
// mode it excludes nothing (i.e. passes everything through).
func Compile(patterns []string, mode Mode) (*Schema, error) {
	s := &Schema{
		mode:      mode,
		exact:     make(map[uint64]struct{}, len(patterns)),
		ancestors: make(map[uint64]struct{}, len(patterns)*2),
	}
	for _, raw := range patterns {
		segs, err := parsePattern(raw)
		if err != nil {
			return nil, err
		}
		if len(segs) > s.maxDepth {
			s.maxDepth = len(segs)
		}
		if hasWildcard(segs) {
			s.wildcards = append(s.wildcards, wildcardPattern{segs: segs, raw: raw})
			continue
		}
		s.exact[exactHash(segs)] = struct{}{}
		for i := 0; i < len(segs); i++ {
			s.ancestors[exactHash(segs[:i])] = struct{}{}
		}
	}
	s.patternCnt = len(patterns)
	return s, nil
}

// exactHash hashes a no-wildcard segment sequence the same way Path
// hashes a concrete path, so the two are directly comparable.
func exactHash(segs []patSeg) uint64 {
	p := make(Path, len(segs))
	for i, sg := range segs {
		if sg.kind == segLiteralIndex {
			p[i] = Index(sg.literalIndex)
		} else {
			p[i] = Key(sg.literalKey)
		}
	}
	return p.hash()
}

// Matches reports whether path should be kept, honoring mode.
func (s *Schema) Matches(path Path) bool {
	raw := s.rawMatches(path)
	if s.mode == Exclude {
		return !raw
	}
	return raw
}

func (s *Schema) rawMatches(path Path) bool {
	if _, ok := s.exact[path.hash()]; ok {
		return true
	}
	segs := make([]Segment, len(path))
	copy(segs, path)
	for _, wp := range s.wildcards {
		if matchFrom(wp.segs, segs) {
			return true
		}
	}
	return false
}

// CouldMatchChildren reports whether descending past path could still
// produce a kept value -- the decision point an adapter uses to choose
// skip-whole-subtree versus descend-and-inspect (spec §4.4, §4.6).
//
// In Exclude mode this is deliberately conservative: it returns true
// (keep descending) unless path matches the non-recursive prefix of a
// "prefix.**" pattern, which unambiguously excludes the entire subtree.
// Anything short of that proof errs toward descending, never toward a
// wrongly-skipped include.
func (s *Schema) CouldMatchChildren(path Path) bool {
	segs := make([]Segment, len(path))
	copy(segs, path)
	if s.mode == Include {
		if _, ok := s.ancestors[path.hash()]; ok {
			return true
		}
		for _, wp := range s.wildcards {
			if couldExtend(wp.segs, segs) {
				return true
			}
		}
		return false
	}
	for _, wp := range s.wildcards {
		n := len(wp.segs)
		if n == 0 || wp.segs[n-1].kind != segRecursive {
			continue
		}
		if matchFrom(wp.segs[:n-1], segs) {
			return false
		}
	}
	return true
}

// PatternCount returns the number of source patterns compiled into s.
func (s *Schema) PatternCount() int { return s.patternCnt }

// MaxDepth returns the deepest pattern's segment count, a hint callers
// can use to preallocate a Path stack.
func (s *Schema) MaxDepth() int { return s.maxDepth }
