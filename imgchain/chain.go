// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package imgchain

import (
	"errors"
	"fmt"
)

// Phase of an image load.
type Phase int

const (
	Loading Phase = iota
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrNotFailed    = errors.New("retry is only allowed after the chain failed")
	ErrAttemptRange = errors.New("attempt out of range")
)

// Chain walks an ordered list of candidate URLs. It starts Loading on the
// first candidate; Fail moves to the next one until none are left.
// A Chain is not safe for concurrent use.
type Chain struct {
	candidates []string
	idx        int
	phase      Phase
}

func New(primary string, fallbacks ...string) *Chain {
	return &Chain{candidates: append([]string{primary}, fallbacks...)}
}

// Current is the candidate being tried, or the one that loaded.
func (c *Chain) Current() string { return c.candidates[c.idx] }

// Attempt is the 1-based position of Current.
func (c *Chain) Attempt() int { return c.idx + 1 }

// Total is the number of candidates.
func (c *Chain) Total() int { return len(c.candidates) }

func (c *Chain) Phase() Phase { return c.phase }

func (c *Chain) Candidates() []string {
	return append([]string(nil), c.candidates...)
}

// Indicator is the progress text shown while loading.
func (c *Chain) Indicator() string {
	return fmt.Sprintf("attempt %d of %d", c.Attempt(), c.Total())
}

// Fail records a load failure of Current. It reports whether another
// candidate is left; when none is, the chain becomes Failed.
func (c *Chain) Fail() bool {
	if c.phase != Loading {
		return false
	}
	if c.idx+1 < len(c.candidates) {
		c.idx++
		return true
	}
	c.phase = Failed
	return false
}

// Succeed marks Current as loaded.
func (c *Chain) Succeed() {
	if c.phase == Loading {
		c.phase = Loaded
	}
}

// Retry restarts a failed chain from the primary candidate.
func (c *Chain) Retry() error {
	if c.phase != Failed {
		return ErrNotFailed
	}
	c.idx = 0
	c.phase = Loading
	return nil
}

// Seek moves a chain to the 1-based attempt n and marks it Loading. A page
// that walks the candidates itself resumes the chain this way, one request
// per candidate.
func (c *Chain) Seek(n int) error {
	if n < 1 || n > len(c.candidates) {
		return fmt.Errorf("%w: %d not in 1..%d", ErrAttemptRange, n, len(c.candidates))
	}
	c.idx = n - 1
	c.phase = Loading
	return nil
}

func (c *Chain) abort() {
	if c.phase == Loading {
		c.phase = Failed
	}
}
