// Package identity issues process-wide unique activity identifiers.
package identity

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

// ErrIDExhausted is returned when no free id can be found.
var ErrIDExhausted = errors.New("activity ids exhausted")

// Strategy selects how candidate ids are produced.
type Strategy string

const (
	// StrategySequence issues max(issued)+1.
	StrategySequence Strategy = "sequence"
	// StrategyRandom draws from a fixed range and retries on collision.
	StrategyRandom Strategy = "random"
)

const (
	DefaultRange      = 1000
	DefaultMaxRetries = 64
)

// Options configures an Allocator.
type Options struct {
	Strategy   Strategy
	Range      int // candidate range [0, Range) for StrategyRandom
	MaxRetries int // draws per Allocate for StrategyRandom

	// IntN returns a uniform int in [0, n). Defaults to math/rand/v2.
	IntN func(n int) int
}

// Allocator owns the set of issued ids. It is not safe for concurrent use.
type Allocator struct {
	opts   Options
	issued map[int]struct{}
	max    int
}

// New creates an Allocator with an empty issued set.
func New(opts Options) *Allocator {
	if opts.Strategy == "" {
		opts.Strategy = StrategySequence
	}
	if opts.Range <= 0 {
		opts.Range = DefaultRange
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.IntN == nil {
		opts.IntN = rand.IntN
	}

	return &Allocator{
		opts:   opts,
		issued: make(map[int]struct{}),
		max:    -1,
	}
}

// Allocate returns an id that has not been issued before and records it.
func (a *Allocator) Allocate() (int, error) {
	switch a.opts.Strategy {
	case StrategyRandom:
		return a.allocateRandom()
	case StrategySequence:
		return a.allocateSequence()
	default:
		return 0, fmt.Errorf("unknown id strategy %q", a.opts.Strategy)
	}
}

func (a *Allocator) allocateSequence() (int, error) {
	if a.max == math.MaxInt {
		return 0, ErrIDExhausted
	}

	id := a.max + 1
	a.Reserve(id)
	return id, nil
}

func (a *Allocator) allocateRandom() (int, error) {
	if a.issuedInRange() >= a.opts.Range {
		return 0, fmt.Errorf("%w: all %d ids in range issued", ErrIDExhausted, a.opts.Range)
	}

	for range a.opts.MaxRetries {
		id := a.opts.IntN(a.opts.Range)
		if _, taken := a.issued[id]; taken {
			continue
		}
		a.Reserve(id)
		return id, nil
	}

	return 0, fmt.Errorf("%w: no free id after %d draws", ErrIDExhausted, a.opts.MaxRetries)
}

func (a *Allocator) issuedInRange() int {
	n := 0
	for id := range a.issued {
		if id >= 0 && id < a.opts.Range {
			n++
		}
	}
	return n
}

// Reserve marks id as issued without drawing it.
func (a *Allocator) Reserve(id int) {
	a.issued[id] = struct{}{}
	if id > a.max {
		a.max = id
	}
}

// IsIssued reports whether id has been issued.
func (a *Allocator) IsIssued(id int) bool {
	_, ok := a.issued[id]
	return ok
}

// Len returns the number of issued ids.
func (a *Allocator) Len() int {
	return len(a.issued)
}

// Issued returns the issued ids in ascending order.
func (a *Allocator) Issued() []int {
	ids := make([]int, 0, len(a.issued))
	for id := range a.issued {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Restore replaces the issued set with ids.
func (a *Allocator) Restore(ids []int) {
	a.Reset()
	for _, id := range ids {
		a.Reserve(id)
	}
}

// Reset clears the issued set.
func (a *Allocator) Reset() {
	a.issued = make(map[int]struct{})
	a.max = -1
}
