/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func path(segs ...Segment) Path { return Path(segs) }

func TestExactPatternMatches(t *testing.T) {
	s, err := Compile([]string{"a.b[2].c"}, Include)
	require.NoError(t, err)
	require.True(t, s.Matches(path(Key("a"), Key("b"), Index(2), Key("c"))))
	require.False(t, s.Matches(path(Key("a"), Key("b"), Index(3), Key("c"))))
}

func TestExactPatternAncestorsMatchChildren(t *testing.T) {
	s, err := Compile([]string{"a.b.c"}, Include)
	require.NoError(t, err)
	require.True(t, s.CouldMatchChildren(path()))
	require.True(t, s.CouldMatchChildren(path(Key("a"))))
	require.True(t, s.CouldMatchChildren(path(Key("a"), Key("b"))))
	require.False(t, s.CouldMatchChildren(path(Key("a"), Key("b"), Key("c"))))
	require.False(t, s.CouldMatchChildren(path(Key("x"))))
}

func TestWildcardSingleSegment(t *testing.T) {
	s, err := Compile([]string{"a.*.c"}, Include)
	require.NoError(t, err)
	require.True(t, s.Matches(path(Key("a"), Key("anything"), Key("c"))))
	require.True(t, s.Matches(path(Key("a"), Index(5), Key("c"))))
	require.False(t, s.Matches(path(Key("a"), Key("x"), Key("y"), Key("c"))))
}

func TestIndexWildcard(t *testing.T) {
	s, err := Compile([]string{"items[*].name"}, Include)
	require.NoError(t, err)
	require.True(t, s.Matches(path(Key("items"), Index(0), Key("name"))))
	require.False(t, s.Matches(path(Key("items"), Key("notanindex"), Key("name"))))
}

func TestRecursiveWildcard(t *testing.T) {
	s, err := Compile([]string{"a.**.z"}, Include)
	require.NoError(t, err)
	require.True(t, s.Matches(path(Key("a"), Key("z"))))
	require.True(t, s.Matches(path(Key("a"), Key("b"), Key("c"), Key("z"))))
	require.False(t, s.Matches(path(Key("a"), Key("z"), Key("extra"))))
}

func TestRecursiveWildcardCouldMatchChildrenAlwaysTrue(t *testing.T) {
	s, err := Compile([]string{"a.**.z"}, Include)
	require.NoError(t, err)
	require.True(t, s.CouldMatchChildren(path(Key("a"))))
	require.True(t, s.CouldMatchChildren(path(Key("a"), Key("deep"), Key("deeper"), Key("deepest"))))
}

func TestExcludeModeInverts(t *testing.T) {
	s, err := Compile([]string{"secret"}, Exclude)
	require.NoError(t, err)
	require.False(t, s.Matches(path(Key("secret"))))
	require.True(t, s.Matches(path(Key("public"))))
}

func TestExcludeModeConservativeByDefault(t *testing.T) {
	s, err := Compile([]string{"secret"}, Exclude)
	require.NoError(t, err)
	// "secret" alone excludes just that one node, not its subtree: a
	// descendant of "secret" could still be kept, so descending remains
	// worthwhile.
	require.True(t, s.CouldMatchChildren(path(Key("secret"))))
}

func TestExcludeModeDeepWildcardPrunesSubtree(t *testing.T) {
	s, err := Compile([]string{"secret.**"}, Exclude)
	require.NoError(t, err)
	require.False(t, s.Matches(path(Key("secret"), Key("inner"))))
	require.False(t, s.CouldMatchChildren(path(Key("secret"))))
	require.True(t, s.CouldMatchChildren(path(Key("public"))))
}

func TestEmptyPatternListInclude(t *testing.T) {
	s, err := Compile(nil, Include)
	require.NoError(t, err)
	require.False(t, s.Matches(path(Key("a"))))
	require.False(t, s.CouldMatchChildren(path()))
}

func TestEmptyPatternListExclude(t *testing.T) {
	s, err := Compile(nil, Exclude)
	require.NoError(t, err)
	require.True(t, s.Matches(path(Key("a"))))
	require.True(t, s.CouldMatchChildren(path()))
}

func TestCompileRejectsMalformedPattern(t *testing.T) {
	_, err := Compile([]string{"a[unterminated"}, Include)
	require.Error(t, err)
	_, err = Compile([]string{"a[notanumber]"}, Include)
	require.Error(t, err)
	_, err = Compile([]string{""}, Include)
	require.Error(t, err)
}

func TestMaxDepthAndPatternCount(t *testing.T) {
	s, err := Compile([]string{"a", "a.b.c", "x.*.y.z"}, Include)
	require.NoError(t, err)
	require.Equal(t, 3, s.PatternCount())
	require.Equal(t, 4, s.MaxDepth())
}
