/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package strategy

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/gravwell/skiptape/errs"
	"github.com/stretchr/testify/require"
)

var allStrategies = []Strategy{Scalar{}, XorPrefix{}, BracketCount{}, Wide{}}

func TestSkipValueScalarTypes(t *testing.T) {
	cases := []struct {
		in  string
		end int
	}{
		{`42,`, 2},
		{`true}`, 4},
		{`null]`, 4},
		{`"hello",`, 7},
	}
	for _, c := range cases {
		for _, s := range allStrategies {
			end, _, err := s.SkipValue([]byte(c.in), 0, errs.Json)
			require.NoError(t, err)
			require.Equal(t, c.end, end, "%T on %q", s, c.in)
		}
	}
}

func TestSkipContainerNested(t *testing.T) {
	in := []byte(`{"a":1,"b":[2,3,{"c":4}]},"next"`)
	for _, s := range allStrategies {
		end, _, err := s.SkipContainer(in, 1, '{', '}', errs.Json)
		require.NoError(t, err)
		require.Equal(t, len(`{"a":1,"b":[2,3,{"c":4}]}`), end, "%T", s)
	}
}

func TestSkipContainerBracketInString(t *testing.T) {
	in := []byte(`{"a":"}}}","b":1}`)
	for _, s := range allStrategies {
		end, _, err := s.SkipContainer(in, 1, '{', '}', errs.Json)
		require.NoError(t, err, "%T", s)
		require.Equal(t, len(in), end, "%T", s)
	}
}

func TestSkipContainerDeepNesting(t *testing.T) {
	const depth = 1024
	in := make([]byte, 0, depth*2+8)
	in = append(in, '{')
	for i := 0; i < depth; i++ {
		in = append(in, '[')
	}
	for i := 0; i < depth; i++ {
		in = append(in, ']')
	}
	in = append(in, '}')
	for _, s := range allStrategies {
		end, _, err := s.SkipContainer(in, 1, '{', '}', errs.Json)
		require.NoError(t, err, "%T", s)
		require.Equal(t, len(in), end, "%T", s)
	}
}

func TestSkipStringTruncated(t *testing.T) {
	for _, s := range allStrategies {
		_, _, err := s.SkipString([]byte(`unterminated`), 0, errs.Json)
		require.Error(t, err, "%T", s)
		pe, ok := err.(*errs.Error)
		require.True(t, ok)
		require.Equal(t, errs.Truncated, pe.Kind)
	}
}

// TestStrategyEquivalence is spec property 9: all four strategies must
// agree byte-for-byte with the scalar reference across randomly
// generated well-formed JSON-shaped inputs of varying size, including
// sizes on both sides of the 64-byte chunk width.
func TestStrategyEquivalence(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		depth := r.Intn(3)
		width := r.Intn(4) + 1
		doc := genValue(r, depth, width)
		full := []byte(fmt.Sprintf("%s,X", doc))
		refEnd, refEsc, refErr := Scalar{}.SkipValue(full, 0, errs.Json)
		for _, s := range allStrategies[1:] {
			end, esc, err := s.SkipValue(full, 0, errs.Json)
			require.Equal(t, refErr, err, "%T on %q", s, full)
			if refErr == nil {
				require.Equal(t, refEnd, end, "%T on %q", s, full)
				require.Equal(t, refEsc, esc, "%T on %q", s, full)
			}
		}
	}
}

func genValue(r *rand.Rand, depth, width int) string {
	if depth <= 0 {
		switch r.Intn(4) {
		case 0:
			return fmt.Sprintf("%d", r.Intn(100000))
		case 1:
			return `"a string with \"escapes\" and \\backslashes"`
		case 2:
			return "true"
		default:
			return "null"
		}
	}
	if r.Intn(2) == 0 {
		s := "["
		for i := 0; i < width; i++ {
			if i > 0 {
				s += ","
			}
			s += genValue(r, depth-1, width)
		}
		return s + "]"
	}
	s := "{"
	for i := 0; i < width; i++ {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf(`"k%d":%s`, i, genValue(r, depth-1, width))
	}
	return s + "}"
}

func TestSelectPolicy(t *testing.T) {
	require.Equal(t, KindScalar, Select(10))
	require.Equal(t, KindScalar, Select(63))
	require.Equal(t, KindBracketCount, Select(64))
	require.Equal(t, KindBracketCount, Select(4095))
	if WideAvailable() {
		require.Equal(t, KindWide, Select(4096))
	} else {
		require.Equal(t, KindBracketCount, Select(4096))
	}
}
