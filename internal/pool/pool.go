/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package pool implements the external tape pool of spec §6.1: a
// mutex-guarded cache of reset, reusable *tape.Tape values keyed by
// the format they were last used for, bounded by a per-format entry
// cap the way the ingest logger's file rotator bounds history by
// count rather than by never evicting.
package pool

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/tape"
)

const defaultMaxPerFormat = 8

// Pool hands out reset *tape.Tape values and takes them back, avoiding
// a fresh Nodes/Arena allocation on every parse call in a hot loop.
// Acquire/Release are safe for concurrent use; Pool synchronises
// access itself (spec §6.1: "the pool is required to synchronise").
type Pool struct {
	mtx          sync.Mutex
	maxPerFmt    int
	free         map[errs.Format][]*tape.Tape
	tagOnAcquire bool
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithMaxPerFormat caps how many idle tapes are retained per format
// before Release starts discarding instead of caching. n <= 0 leaves
// the cap unchanged.
func WithMaxPerFormat(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.maxPerFmt = n
		}
	}
}

// WithDebugIDs tags every acquired tape's Header.DebugID with a fresh
// UUID, the debug-build provenance marker spec's ambient tooling calls
// for when tracing a tape back to the Acquire call that produced it.
func WithDebugIDs() Option {
	return func(p *Pool) { p.tagOnAcquire = true }
}

// New builds an empty Pool. Nothing is preallocated; the pool only
// starts holding tapes once Release gives it one.
func New(opts ...Option) *Pool {
	p := &Pool{
		maxPerFmt: defaultMaxPerFormat,
		free:      make(map[errs.Format][]*tape.Tape),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Acquire returns a Tape ready to receive a fresh parse for format f,
// sized from hint if a new allocation is needed. A reused tape is
// already Reset and has at least hint node-slot capacity remaining
// from its prior life, satisfying spec §6.1's "zeroed-capacity, >=hint
// node slots preallocated" in the amortised case.
func (p *Pool) Acquire(f errs.Format, hint int) *tape.Tape {
	p.mtx.Lock()
	var t *tape.Tape
	if q := p.free[f]; len(q) > 0 {
		t = q[len(q)-1]
		p.free[f] = q[:len(q)-1]
	}
	tag := p.tagOnAcquire
	p.mtx.Unlock()

	if t == nil {
		t = tape.New(f, hint)
	} else {
		if cap(t.Nodes) < hint {
			t.Nodes = make([]tape.Node, 0, hint)
		}
		t.Init(f)
	}
	if tag {
		t.Header.DebugID = uuid.NewString()
	}
	return t
}

// Release resets t and returns it to the pool for its own format,
// unless the per-format cap has been reached, in which case t is
// dropped and left for the garbage collector (spec §6.1 permits a
// byte-size-cap or LRU eviction policy; a fixed per-format count is
// this pool's choice of the two).
func (p *Pool) Release(t *tape.Tape) {
	if t == nil {
		return
	}
	f := t.Header.Format
	t.Reset()

	p.mtx.Lock()
	defer p.mtx.Unlock()
	if len(p.free[f]) >= p.maxPerFmt {
		return
	}
	p.free[f] = append(p.free[f], t)
}

// Idle reports how many tapes are currently cached for format f, for
// tests and diagnostics.
func (p *Pool) Idle(f errs.Format) int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return len(p.free[f])
}
