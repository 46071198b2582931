/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package schema

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gravwell/skiptape/internal/slog"
)

func TestStatsReflectsCompiledShape(t *testing.T) {
	s, err := Compile([]string{"a.b", "a.*", "c[*]"}, Include)
	require.NoError(t, err)
	st := s.Stats()
	require.Equal(t, 3, st.Patterns)
	require.Equal(t, 1, st.Exact)
	require.Equal(t, 2, st.Wildcards)
}

func TestCompileLoggedEmitsDebugLine(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(&buf, slog.DEBUG)

	s, err := CompileLogged([]string{"a.b"}, Include, log)
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Contains(t, buf.String(), "schema compiled")
}

func TestCompileLoggedPropagatesCompileError(t *testing.T) {
	_, err := CompileLogged([]string{"a[unterminated"}, Include, nil)
	require.Error(t, err)
}
