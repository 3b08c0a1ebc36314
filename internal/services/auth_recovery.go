package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand"
	"time"
	"truck-dispatch-agent/internal/domain"
	"truck-dispatch-agent/internal/ports"
)

const (
	// Longest authorization string recovered by full enumeration.
	DefaultExhaustiveMaxLength = 3
	// Random guesses tried before giving up for this turn.
	DefaultRandomAttempts = 5000
)

// Outcome of one recovery attempt for one truck.
type RecoveryResult struct {
	Found    bool
	Guess    string
	Attempts int
	// Random is set when the match (or failure) came from random probing.
	Random bool
}

// AuthRecoverer recovers per-truck authorization strings through oracles.
//
// Truck i always talks to oracles[i % len(oracles)]. Every guess is one
// blocking round-trip; the recoverer never imposes its own timeout.
type AuthRecoverer struct {
	oracles             []ports.Oracle
	rng                 *rand.Rand
	exhaustiveMaxLength int
	randomAttempts      int
}

type RecovererOption func(*AuthRecoverer)

// WithRand sets the random source used for probing.
func WithRand(rng *rand.Rand) RecovererOption {
	return func(r *AuthRecoverer) { r.rng = rng }
}

// WithRandomAttempts overrides the random probing budget.
func WithRandomAttempts(n int) RecovererOption {
	return func(r *AuthRecoverer) { r.randomAttempts = n }
}

// WithExhaustiveMaxLength overrides the longest length searched exhaustively.
func WithExhaustiveMaxLength(n int) RecovererOption {
	return func(r *AuthRecoverer) { r.exhaustiveMaxLength = n }
}

func NewAuthRecoverer(oracles []ports.Oracle, opts ...RecovererOption) (*AuthRecoverer, error) {
	if len(oracles) == 0 {
		return nil, errors.New("new auth recoverer: at least one oracle is required")
	}
	for i, o := range oracles {
		if o == nil {
			return nil, fmt.Errorf("new auth recoverer: oracle %d is nil", i)
		}
	}

	r := &AuthRecoverer{
		oracles:             oracles,
		rng:                 rand.New(rand.NewSource(time.Now().UnixNano())),
		exhaustiveMaxLength: DefaultExhaustiveMaxLength,
		randomAttempts:      DefaultRandomAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// OracleIndex returns which oracle serves the given truck.
func (r *AuthRecoverer) OracleIndex(truckID int) int {
	return truckID % len(r.oracles)
}

// Recover searches for the truck's authorization string of the given length.
//
// Short strings are enumerated exhaustively in alphabet order (u, d, l, r),
// leftmost position varying slowest. Longer strings, or a short string whose
// enumeration found nothing, fall back to random probing. On a match the
// string is written into the truck's command slot in mem.
//
// A failed search is not an error. Errors are returned only when an oracle
// round-trip itself fails; the attempts made so far are still reported.
func (r *AuthRecoverer) Recover(
	ctx context.Context,
	truckID int,
	length int,
	mem *domain.SharedMemory,
) (RecoveryResult, error) {
	if length < 1 || length > domain.MaxAuthLength {
		return RecoveryResult{}, fmt.Errorf("recover auth truck=%d: invalid length %d", truckID, length)
	}
	if truckID < 0 || truckID >= len(mem.Commands) {
		return RecoveryResult{}, fmt.Errorf("recover auth truck=%d: no command slot", truckID)
	}

	oracle := r.oracles[r.OracleIndex(truckID)]
	if sel, ok := oracle.(ports.TruckSelector); ok {
		if err := sel.SelectTruck(ctx, truckID); err != nil {
			return RecoveryResult{}, fmt.Errorf("recover auth truck=%d: select truck: %w", truckID, err)
		}
	}

	var res RecoveryResult

	if length <= r.exhaustiveMaxLength {
		for guess := range Candidates(length) {
			res.Attempts++
			ok, err := oracle.Verify(ctx, truckID, guess)
			if err != nil {
				return res, fmt.Errorf("recover auth truck=%d: verify %q: %w", truckID, guess, err)
			}
			if ok {
				return r.found(res, guess, truckID, mem), nil
			}
		}
	}

	// Only reachable for short strings if the oracle rejected every candidate.
	res.Random = true
	buf := make([]byte, length)
	for attempt := 0; attempt < r.randomAttempts; attempt++ {
		for i := range buf {
			buf[i] = byte(domain.AuthAlphabet[r.rng.Intn(len(domain.AuthAlphabet))])
		}
		guess := string(buf)

		res.Attempts++
		ok, err := oracle.Verify(ctx, truckID, guess)
		if err != nil {
			return res, fmt.Errorf("recover auth truck=%d: verify %q: %w", truckID, guess, err)
		}
		if ok {
			return r.found(res, guess, truckID, mem), nil
		}
	}

	return res, nil
}

func (r *AuthRecoverer) found(res RecoveryResult, guess string, truckID int, mem *domain.SharedMemory) RecoveryResult {
	res.Found = true
	res.Guess = guess
	mem.Commands[truckID].AuthString = guess
	return res
}

// Candidates yields every authorization string of the given length in
// enumeration order: alphabet order per position, leftmost position slowest.
func Candidates(length int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if length <= 0 {
			return
		}

		idx := make([]int, length)
		buf := make([]byte, length)
		n := len(domain.AuthAlphabet)

		for {
			for i, v := range idx {
				buf[i] = byte(domain.AuthAlphabet[v])
			}
			if !yield(string(buf)) {
				return
			}

			// Odometer increment from the rightmost position.
			pos := length - 1
			for pos >= 0 {
				idx[pos]++
				if idx[pos] < n {
					break
				}
				idx[pos] = 0
				pos--
			}
			if pos < 0 {
				return
			}
		}
	}
}
