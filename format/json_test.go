/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package format

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/internal/pool"
	"github.com/gravwell/skiptape/internal/slog"
	"github.com/gravwell/skiptape/schema"
	"github.com/gravwell/skiptape/tape"
	"github.com/stretchr/testify/require"
)

func TestParseJSONAcceptAll(t *testing.T) {
	tp, err := ParseJSON([]byte(`{"a":1,"b":[2,3,{"c":4}],"d":null,"e":true,"f":"hi\n"}`), Options{})
	require.NoError(t, err)
	require.NoError(t, tp.Validate())

	r := tape.NewReader(tp)
	i, ok := r.ResolvePath(schema.Path{schema.Key("b"), schema.Index(2), schema.Key("c")})
	require.True(t, ok)
	require.Equal(t, float64(4), r.NodeAt(i).Float64())

	i, ok = r.ResolvePath(schema.Path{schema.Key("f")})
	require.True(t, ok)
	require.Equal(t, "hi\n", string(r.ResolveString(i)))
}

// TestParseJSONSchemaSkipsNonMatching is spec §8's worked example (S1):
// with a schema matching "a" and "c.d" only, "b" collapses to a single
// SkipMarker.
func TestParseJSONSchemaSkipsNonMatching(t *testing.T) {
	sch, err := schema.Compile([]string{"a", "c.d"}, schema.Include)
	require.NoError(t, err)
	in := `{"a":1,"b":[2,3,4,5,6],"c":{"d":5}}`
	tp, err := ParseJSON([]byte(in), Options{Schema: sch})
	require.NoError(t, err)
	require.NoError(t, tp.Validate())

	var kinds []tape.Kind
	for i := 0; i < tp.Len(); i++ {
		kinds = append(kinds, tp.Nodes[i].Kind)
	}
	require.Contains(t, kinds, tape.SkipMarker)

	r := tape.NewReader(tp)
	bIdx, ok := r.ResolvePath(schema.Path{schema.Key("b")})
	require.True(t, ok)
	require.Equal(t, tape.SkipMarker, r.ValueKind(bIdx), "non-matching subtree collapses to a single SkipMarker")

	i, ok := r.ResolvePath(schema.Path{schema.Key("c"), schema.Key("d")})
	require.True(t, ok)
	require.Equal(t, float64(5), r.NodeAt(i).Float64())
}

// TestParseJSONDeepNestingNoStackOverflow is property 13 / scenario S5:
// 2000 levels of nesting must parse without native recursion.
func TestParseJSONDeepNestingNoStackOverflow(t *testing.T) {
	const depth = 2000
	in := `{"x":` + repeat("[", depth) + repeat("]", depth) + `}`
	sch, err := schema.Compile([]string{"$.y"}, schema.Include)
	require.NoError(t, err)
	tp, err := ParseJSON([]byte(in), Options{Schema: sch})
	require.NoError(t, err)
	require.NoError(t, tp.Validate())
	// schema matches nothing under $.x, so the whole nested value
	// collapses to one SkipMarker; the tape should be tiny.
	require.Equal(t, 4, tp.Len(), "ObjectStart, Key(x), SkipMarker, ObjectEnd")
	require.Equal(t, tape.SkipMarker, tp.Nodes[2].Kind)
}

func TestParseJSONDeepNestingFullyParsed(t *testing.T) {
	const depth = 2000
	in := repeat("[", depth) + "1" + repeat("]", depth)
	tp, err := ParseJSON([]byte(in), Options{})
	require.NoError(t, err)
	require.NoError(t, tp.Validate())
	require.Equal(t, depth*2+1, tp.Len())
}

func TestParseJSONMalformedTrailingComma(t *testing.T) {
	_, err := ParseJSON([]byte(`{"a":1,}`), Options{})
	require.Error(t, err)
	pe, ok := err.(*errs.Error)
	require.True(t, ok)
	require.Equal(t, errs.Malformed, pe.Kind)
}

func TestParseJSONTruncated(t *testing.T) {
	_, err := ParseJSON([]byte(`{"a":1`), Options{})
	require.Error(t, err)
	pe, ok := err.(*errs.Error)
	require.True(t, ok)
	require.Equal(t, errs.Truncated, pe.Kind)
}

func TestParseJSONStringEscapes(t *testing.T) {
	tp, err := ParseJSON([]byte(`"a\tbA\"c"`), Options{})
	require.NoError(t, err)
	require.Equal(t, "a\tbA\"c", string(tape.NewReader(tp).ResolveString(0)))
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n*len(s))
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func TestParseJSONArrayTopLevel(t *testing.T) {
	tp, err := ParseJSON([]byte(`[1,2,3]`), Options{})
	require.NoError(t, err)
	require.NoError(t, tp.Validate())
	require.Equal(t, fmt.Sprintf("%v", []tape.Kind{tape.ArrayStart, tape.Number, tape.Number, tape.Number, tape.ArrayEnd}),
		fmt.Sprintf("%v", kindsOf(tp)))
}

func kindsOf(tp *tape.Tape) []tape.Kind {
	out := make([]tape.Kind, tp.Len())
	for i := range tp.Nodes {
		out[i] = tp.Nodes[i].Kind
	}
	return out
}

// TestParseJSONLogsStrategySelectionOnSkip confirms a schema-driven
// skip actually narrates its strategy choice through Options.Log
// rather than only having a logger field that nothing writes to.
func TestParseJSONLogsStrategySelectionOnSkip(t *testing.T) {
	sch, err := schema.Compile([]string{"a"}, schema.Include)
	require.NoError(t, err)

	var buf bytes.Buffer
	log := slog.New(&buf, slog.DEBUG)

	in := `{"a":1,"b":[2,3,4,5,6]}`
	tp, err := ParseJSON([]byte(in), Options{Schema: sch, Log: log})
	require.NoError(t, err)
	require.NoError(t, tp.Validate())

	require.Contains(t, buf.String(), "strategy selected")
}

func TestParseJSONNoLogWithoutSkip(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(&buf, slog.DEBUG)

	tp, err := ParseJSON([]byte(`{"a":1}`), Options{Log: log})
	require.NoError(t, err)
	require.NoError(t, tp.Validate())
	require.Zero(t, buf.Len())
}

// TestParseJSONReusesTapeFromPool confirms a configured Options.Pool
// is actually drawn from (and given back to by the caller) rather than
// every ParseJSON call silently allocating fresh regardless.
func TestParseJSONReusesTapeFromPool(t *testing.T) {
	p := pool.New()

	first, err := ParseJSON([]byte(`{"a":1}`), Options{Pool: p})
	require.NoError(t, err)
	p.Release(first)
	require.Equal(t, 1, p.Idle(errs.Json))

	second, err := ParseJSON([]byte(`{"b":2}`), Options{Pool: p})
	require.NoError(t, err)
	require.Equal(t, 0, p.Idle(errs.Json), "acquiring for the same format must draw from the pool")
	require.NoError(t, second.Validate())
}
