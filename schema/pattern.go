/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
)

type segKind uint8

const (
	segLiteralKey segKind = iota
	segLiteralIndex
	segWildcard     // *  matches exactly one segment, key or index
	segIndexWildcard // [*] matches exactly one array index
	segRecursive    // ** matches zero or more segments
)

// patSeg is one compiled step of a pattern. segLiteralKey and segWildcard
// carry a compiled glob.Glob, following the exact-list/glob-list split
// ingest/processors/tags/tags.go uses for its own field matching: a
// literal segment compiles to a glob with no metacharacters and so
// matches itself exactly, while the wildcard segment compiles "*" once
// and is shared by every pattern that uses it.
type patSeg struct {
	kind         segKind
	g            glob.Glob
	literalKey   string
	literalIndex int
}

var anySegmentGlob = glob.MustCompile("*")

// parsePattern tokenizes a path pattern of the form
// "$.a.b[2].c[*].**" into its segment sequence. The grammar: an optional
// leading "$", then a sequence of ".name", "[n]", "[*]" steps where name
// is a literal key, "*", or "**".
func parsePattern(s string) ([]patSeg, error) {
	i := 0
	if len(s) > 0 && s[0] == '$' {
		i = 1
	}
	var segs []patSeg
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
		case '[':
			j := strings.IndexByte(s[i:], ']')
			if j < 0 {
				return nil, fmt.Errorf("schema: unterminated %q in pattern %q", "[", s)
			}
			j += i
			inner := s[i+1 : j]
			if inner == "*" {
				segs = append(segs, patSeg{kind: segIndexWildcard})
			} else {
				n, err := strconv.Atoi(inner)
				if err != nil {
					return nil, fmt.Errorf("schema: bad index %q in pattern %q", inner, s)
				}
				segs = append(segs, patSeg{kind: segLiteralIndex, literalIndex: n})
			}
			i = j + 1
		default:
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			name := s[i:j]
			switch name {
			case "**":
				segs = append(segs, patSeg{kind: segRecursive})
			case "*":
				segs = append(segs, patSeg{kind: segWildcard, g: anySegmentGlob})
			case "":
				return nil, fmt.Errorf("schema: empty segment in pattern %q", s)
			default:
				g, err := glob.Compile(name)
				if err != nil {
					return nil, fmt.Errorf("schema: bad segment %q in pattern %q: %w", name, s, err)
				}
				segs = append(segs, patSeg{kind: segLiteralKey, g: g, literalKey: name})
			}
			i = j
		}
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("schema: empty pattern %q", s)
	}
	return segs, nil
}

// hasWildcard reports whether segs contains anything beyond plain
// literal keys/indices, i.e. whether the pattern needs the wildcard
// matcher rather than a plain hash lookup.
func hasWildcard(segs []patSeg) bool {
	for _, s := range segs {
		if s.kind != segLiteralKey && s.kind != segLiteralIndex {
			return true
		}
	}
	return false
}

func matchOne(p patSeg, a Segment) bool {
	switch p.kind {
	case segLiteralKey:
		return !a.IsIndex && p.g.Match(a.Key)
	case segLiteralIndex:
		return a.IsIndex && p.literalIndex == a.Index
	case segWildcard:
		return true
	case segIndexWildcard:
		return a.IsIndex
	default:
		return false
	}
}

// matchFrom reports whether pat matches path exactly, segment for
// segment, with ** consuming zero or more path segments.
func matchFrom(pat []patSeg, path []Segment) bool {
	if len(pat) == 0 {
		return len(path) == 0
	}
	head := pat[0]
	if head.kind == segRecursive {
		for k := 0; k <= len(path); k++ {
			if matchFrom(pat[1:], path[k:]) {
				return true
			}
		}
		return false
	}
	if len(path) == 0 || !matchOne(head, path[0]) {
		return false
	}
	return matchFrom(pat[1:], path[1:])
}

// couldExtend reports whether path could be a strict prefix of some
// longer path that matches pat -- the wildcard half of
// could_match_children (spec §4.4): "is there any way a not-yet-seen
// child could complete this pattern".
func couldExtend(pat []patSeg, path []Segment) bool {
	n := len(pat)
	if len(path) < n {
		n = len(path)
	}
	for i := 0; i < n; i++ {
		if pat[i].kind == segRecursive {
			// ** can absorb the rest of path and still have capacity to
			// match whatever comes after it, so any path reaching a **
			// at its current alignment is compatible.
			return true
		}
		if !matchOne(pat[i], path[i]) {
			return false
		}
	}
	if len(path) >= len(pat) {
		// Pattern fully consumed; nothing left for a descendant to
		// realize unless the last consumed segment was **, already
		// handled above.
		return false
	}
	return true
}
