/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package slog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerSuppressesBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WARN)
	l.Debugf("strategy=%s", "scalar")
	l.Infof("compiled %d paths", 3)
	require.Zero(t, buf.Len())

	l.Warnf("capability probe: wide unavailable")
	require.NotZero(t, buf.Len())
}

func TestLoggerEmitsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DEBUG)
	l.Debug("selected strategy", F("kind", "bracket_count"), F("length", 128))
	require.Contains(t, buf.String(), "bracket_count")
	require.Contains(t, buf.String(), "128")
}

func TestNewDiscardDropsEverything(t *testing.T) {
	l := NewDiscard()
	l.Debugf("never written")
	l.Warnf("never written either")
	// no sink configured; enabled() must short-circuit rather than panic
	require.False(t, l.enabled(ERROR))
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	require.NotPanics(t, func() {
		l.Debugf("nil receiver")
	})
}
