/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package tape

import (
	"testing"

	"github.com/gravwell/skiptape/errs"
	"github.com/stretchr/testify/require"
)

// buildSample builds the tape for {"a":1,"b":[2,3,{"c":4}]}.
func buildSample(t *Tape) {
	root := t.PushStart(ObjectStart, 0)
	t.PushKey(0, []byte("a"))
	t.PushNumber(1, 1)
	t.PushKey(0, []byte("b"))
	arr := t.PushStart(ArrayStart, 1)
	t.PushNumber(2, 2)
	t.PushNumber(2, 3)
	obj2 := t.PushStart(ObjectStart, 2)
	t.PushKey(2, []byte("c"))
	t.PushNumber(3, 4)
	t.PushEnd(ObjectEnd, 2, obj2)
	t.PushEnd(ArrayEnd, 1, arr)
	t.PushEnd(ObjectEnd, 0, root)
}

func TestPushStartEndBackpatch(t *testing.T) {
	tp := New(errs.Json, 0)
	buildSample(tp)
	require.NoError(t, tp.Validate())
	require.Equal(t, uint64(len(tp.Nodes)), tp.Nodes[0].Payload, "root sibling-skip spans the whole tape")
}

func TestPushScalarsRoundTrip(t *testing.T) {
	tp := New(errs.Json, 0)
	tp.PushNumber(0, 3.5)
	tp.PushBool(0, true)
	tp.PushBool(0, false)
	tp.PushNull(0)
	require.Equal(t, 3.5, tp.Nodes[0].Float64())
	require.True(t, tp.Nodes[1].Bool())
	require.False(t, tp.Nodes[2].Bool())
	require.Equal(t, Null, tp.Nodes[3].Kind)
}

func TestPushKeyInterns(t *testing.T) {
	tp := New(errs.Json, 0)
	tp.PushKey(0, []byte("dup"))
	tp.PushNumber(1, 1)
	tp.PushKey(0, []byte("dup"))
	tp.PushNumber(1, 2)
	require.Equal(t, tp.Nodes[0].Payload, tp.Nodes[2].Payload, "interned keys share an arena id")
}

func TestValidateCatchesUnmatchedEnd(t *testing.T) {
	tp := New(errs.Json, 0)
	tp.PushMarker(ObjectEnd, 0, 0)
	require.Error(t, tp.Validate())
}

func TestValidateCatchesUnclosedContainer(t *testing.T) {
	tp := New(errs.Json, 0)
	tp.PushStart(ObjectStart, 0)
	require.Error(t, tp.Validate())
}

func TestResetClearsTapeAndArena(t *testing.T) {
	tp := New(errs.Json, 0)
	buildSample(tp)
	require.Greater(t, tp.Len(), 0)
	tp.Reset()
	require.Equal(t, 0, tp.Len())
	require.Equal(t, 0, tp.Arena.Len())
}

func TestSidecarTracksSubtreeOnClone(t *testing.T) {
	tp := New(errs.Toml, 0)
	root := tp.PushStart(TomlTableStart, 0)
	idx := tp.PushKey(0, []byte("a.b"))
	tp.PushNumber(1, 1)
	tp.PushEnd(ObjectEnd, 0, root)
	tp.AddSidecar(idx, TomlDottedKey, "a.b")
	require.True(t, tp.Header.HasSidecar)
	require.Len(t, tp.Sidecar, 1)

	r := NewReader(tp)
	clone := r.DeepClone(root)
	require.True(t, clone.Header.HasSidecar)
	require.Len(t, clone.Sidecar, 1)
	require.Equal(t, idx-root, clone.Sidecar[0].TapeIndex)
}
