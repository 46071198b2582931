/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package format

import (
	"testing"

	"github.com/gravwell/skiptape/schema"
	"github.com/gravwell/skiptape/tape"
	"github.com/stretchr/testify/require"
)

func TestParseTOONNestedObject(t *testing.T) {
	in := "a:\n" +
		"  b: 1\n" +
		"  c: hello\n"
	tp, err := ParseTOON([]byte(in), Options{})
	require.NoError(t, err)
	require.NoError(t, tp.Validate())

	r := tape.NewReader(tp)
	idx, ok := r.ResolvePath(schema.Path{schema.Key("a"), schema.Key("b")})
	require.True(t, ok)
	require.Equal(t, float64(1), r.NodeAt(idx).Float64())

	idx, ok = r.ResolvePath(schema.Path{schema.Key("a"), schema.Key("c")})
	require.True(t, ok)
	require.Equal(t, "hello", string(r.ResolveString(idx)))
}

func TestParseTOONTabularArray(t *testing.T) {
	in := "people[2]{id,name}:\n" +
		"  1,alice\n" +
		"  2,bob\n"
	tp, err := ParseTOON([]byte(in), Options{})
	require.NoError(t, err)
	require.NoError(t, tp.Validate())

	r := tape.NewReader(tp)
	idx, ok := r.ResolvePath(schema.Path{schema.Key("people"), schema.Index(1), schema.Key("name")})
	require.True(t, ok)
	require.Equal(t, "bob", string(r.ResolveString(idx)))
}

func TestParseTOONTabularArrayPipeDelimited(t *testing.T) {
	in := "people[1|]{id,name}:\n" +
		"  1|alice smith\n"
	tp, err := ParseTOON([]byte(in), Options{})
	require.NoError(t, err)
	require.NoError(t, tp.Validate())

	r := tape.NewReader(tp)
	idx, ok := r.ResolvePath(schema.Path{schema.Key("people"), schema.Index(0), schema.Key("name")})
	require.True(t, ok)
	require.Equal(t, "alice smith", string(r.ResolveString(idx)))
}

func TestParseTOONTabularArrayLengthMismatch(t *testing.T) {
	in := "people[3]{id,name}:\n" +
		"  1,alice\n" +
		"  2,bob\n"
	_, err := ParseTOON([]byte(in), Options{})
	require.Error(t, err)
}

func TestParseTOONFoldedKey(t *testing.T) {
	in := "a.b.c: 42\n"
	tp, err := ParseTOON([]byte(in), Options{})
	require.NoError(t, err)
	require.NoError(t, tp.Validate())
	require.True(t, tp.Header.HasSidecar)

	r := tape.NewReader(tp)
	idx, ok := r.ResolvePath(schema.Path{schema.Key("a"), schema.Key("b"), schema.Key("c")})
	require.True(t, ok)
	require.Equal(t, float64(42), r.NodeAt(idx).Float64())
}

func TestParseTOONTabInIndentIsMalformed(t *testing.T) {
	in := "a:\n\t b: 1\n"
	_, err := ParseTOON([]byte(in), Options{})
	require.Error(t, err)
}

func TestParseTOONSchemaSkipsNestedObject(t *testing.T) {
	in := "a:\n" +
		"  b: 1\n" +
		"c: 2\n"
	sch, err := schema.Compile([]string{"c"}, schema.Include)
	require.NoError(t, err)

	tp, err := ParseTOON([]byte(in), Options{Schema: sch})
	require.NoError(t, err)
	require.NoError(t, tp.Validate())

	r := tape.NewReader(tp)
	idx, ok := r.ResolvePath(schema.Path{schema.Key("a")})
	require.True(t, ok)
	require.Equal(t, tape.SkipMarker, r.ValueKind(idx))

	idx, ok = r.ResolvePath(schema.Path{schema.Key("c")})
	require.True(t, ok)
	require.Equal(t, float64(2), r.NodeAt(idx).Float64())
}
