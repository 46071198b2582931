/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package strategy

import "golang.org/x/sys/cpu"

// WideAvailable probes the runtime CPU for the feature the Wide strategy
// would use to process more than one ChunkSize window per instruction.
// The teacher gates its asm-backed compression paths the same way
// (runtime capability check, scalar-equivalent fallback when absent); a
// Go port without hand-written assembly cannot issue real AVX2
// instructions, so Wide executes the identical word-parallel arithmetic
// as BracketCount -- the capability probe still exists and still gates
// the selection policy in Select, it just can't change the underlying
// math, which keeps property 9 (bit-identical strategies) true by
// construction rather than by coincidence.
func WideAvailable() bool {
	return cpu.X86.HasAVX2
}
