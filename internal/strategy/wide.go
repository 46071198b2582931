/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package strategy

import "github.com/gravwell/skiptape/errs"

// Wide is the large-input strategy selected when WideAvailable reports a
// capable CPU. It executes BracketCount's exact algorithm; see the
// commentary on WideAvailable for why that is the honest Go-only
// rendering of "vector hardware when present, scalar-equivalent
// otherwise" -- it guarantees spec property 9 (bit-identical strategies)
// without asm.
type Wide struct{}

func (Wide) SkipValue(data []byte, pos int, f errs.Format) (int, bool, error) {
	return BracketCount{}.SkipValue(data, pos, f)
}

func (Wide) SkipString(data []byte, pos int, f errs.Format) (int, bool, error) {
	return BracketCount{}.SkipString(data, pos, f)
}

func (Wide) SkipContainer(data []byte, pos int, open, close byte, f errs.Format) (int, bool, error) {
	return BracketCount{}.SkipContainer(data, pos, open, close, f)
}
