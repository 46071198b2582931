/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gravwell/skiptape/format"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestToOptionsCompilesSchema(t *testing.T) {
	o := Default()
	o.SchemaPatterns = []string{"a.b"}
	o.SchemaMode = 0 // Include

	opt, err := o.ToOptions()
	require.NoError(t, err)
	require.NotNil(t, opt.Schema)
}

func TestToOptionsRejectsBadPattern(t *testing.T) {
	o := Default()
	o.SchemaPatterns = []string{"a[unterminated"}

	_, err := o.ToOptions()
	require.Error(t, err)
}

func TestValidateRejectsUnknownFidelity(t *testing.T) {
	o := Default()
	o.Fidelity = format.Fidelity(99)
	require.Error(t, o.Validate())
}

func TestValidateRejectsNegativeInternThreshold(t *testing.T) {
	o := Default()
	o.InternThreshold = -1
	require.Error(t, o.Validate())
}

func TestApplyEnvOverridesFidelity(t *testing.T) {
	t.Setenv(EnvFidelity, "lossy")
	o, err := Default().ApplyEnv()
	require.NoError(t, err)
	require.Equal(t, format.Lossy, o.Fidelity)
}

func TestApplyEnvOverridesCSVDelimiter(t *testing.T) {
	t.Setenv(EnvCSVDelimiter, ";")
	o, err := Default().ApplyEnv()
	require.NoError(t, err)
	require.Equal(t, byte(';'), o.CSVDelimiter)
}

func TestApplyEnvRejectsUnknownAlias(t *testing.T) {
	t.Setenv(EnvAlias, "bogus")
	_, err := Default().ApplyEnv()
	require.Error(t, err)
}

func TestApplyEnvLeavesUnsetFieldsAlone(t *testing.T) {
	o, err := Default().ApplyEnv()
	require.NoError(t, err)
	require.Equal(t, Default(), o)
}
