package services

import (
	"context"
	"math/rand"
	"testing"
	"truck-dispatch-agent/internal/adapters/oracle"
	"truck-dispatch-agent/internal/domain"
	"truck-dispatch-agent/internal/ports"
)

func TestCandidatesOrder(t *testing.T) {
	var got []string
	for c := range Candidates(2) {
		got = append(got, c)
	}

	if len(got) != 16 {
		t.Fatalf("candidates = %d, want 16", len(got))
	}
	want := []string{"uu", "ud", "ul", "ur", "du"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("candidate %d = %q, want %q", i, got[i], w)
		}
	}
	if got[15] != "rr" {
		t.Fatalf("last candidate = %q, want %q", got[15], "rr")
	}

	n := 0
	for range Candidates(3) {
		n++
	}
	if n != 64 {
		t.Fatalf("length-3 candidates = %d, want 64", n)
	}
}

func TestRecoverExhaustiveStopsOnMatch(t *testing.T) {
	mock := oracle.NewMockOracle(map[int]string{0: "dl"})
	rec, err := NewAuthRecoverer([]ports.Oracle{mock})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mem := domain.NewSharedMemory(1)

	res, err := rec.Recover(context.Background(), 0, 2, mem)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Found || res.Guess != "dl" {
		t.Fatalf("result = %+v, want found dl", res)
	}
	// uu ud ul ur du dd dl
	if res.Attempts != 7 || len(mock.Guesses) != 7 {
		t.Fatalf("attempts = %d (oracle saw %d), want 7", res.Attempts, len(mock.Guesses))
	}
	if res.Random {
		t.Fatalf("match should come from enumeration")
	}
	if mem.Commands[0].AuthString != "dl" {
		t.Fatalf("auth = %q, want %q", mem.Commands[0].AuthString, "dl")
	}
	if len(mock.Selected) != 1 || mock.Selected[0] != 0 {
		t.Fatalf("selected = %v, want [0]", mock.Selected)
	}
}

func TestRecoverExhaustiveBoundedBySearchSpace(t *testing.T) {
	mock := oracle.NewMockOracle(map[int]string{0: "rr"})
	rec, _ := NewAuthRecoverer([]ports.Oracle{mock})

	res, err := rec.Recover(context.Background(), 0, 2, domain.NewSharedMemory(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found || res.Attempts != 16 {
		t.Fatalf("result = %+v, want found on attempt 16", res)
	}
}

func TestRecoverFallsBackToRandomAfterExhaustion(t *testing.T) {
	// no string over the alphabet matches, so every phase runs to exhaustion
	mock := oracle.NewMockOracle(map[int]string{0: "xx"})
	rec, _ := NewAuthRecoverer([]ports.Oracle{mock},
		WithRandomAttempts(10),
		WithRand(rand.New(rand.NewSource(1))),
	)
	mem := domain.NewSharedMemory(1)

	res, err := rec.Recover(context.Background(), 0, 2, mem)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Found {
		t.Fatalf("result = %+v, want not found", res)
	}
	if res.Attempts != 26 || !res.Random {
		t.Fatalf("attempts = %d random=%v, want 26 random=true", res.Attempts, res.Random)
	}
	if mem.Commands[0].AuthString != "" {
		t.Fatalf("auth = %q, want empty on failure", mem.Commands[0].AuthString)
	}
}

func TestRecoverLongStringUsesRandomProbing(t *testing.T) {
	mock := oracle.NewMockOracle(map[int]string{0: "rdlu"})
	rec, _ := NewAuthRecoverer([]ports.Oracle{mock}, WithRand(rand.New(rand.NewSource(7))))
	mem := domain.NewSharedMemory(1)

	res, err := rec.Recover(context.Background(), 0, 4, mem)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Random {
		t.Fatalf("length 4 should skip enumeration")
	}
	if !res.Found || mem.Commands[0].AuthString != "rdlu" {
		t.Fatalf("result = %+v auth=%q, want found rdlu", res, mem.Commands[0].AuthString)
	}
	if res.Attempts > DefaultRandomAttempts {
		t.Fatalf("attempts = %d exceeds budget %d", res.Attempts, DefaultRandomAttempts)
	}
	for _, g := range mock.Guesses {
		if len(g) != 4 {
			t.Fatalf("guess %q has length %d, want 4", g, len(g))
		}
	}
}

func TestRecoverUsesOracleByTruckIndex(t *testing.T) {
	first := oracle.NewMockOracle(nil)
	second := oracle.NewMockOracle(map[int]string{3: "u"})
	rec, _ := NewAuthRecoverer([]ports.Oracle{first, second})

	if got := rec.OracleIndex(3); got != 1 {
		t.Fatalf("oracle index = %d, want 1", got)
	}

	res, err := rec.Recover(context.Background(), 3, 1, domain.NewSharedMemory(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found || res.Attempts != 1 {
		t.Fatalf("result = %+v, want found on first attempt", res)
	}
	if len(first.Guesses) != 0 {
		t.Fatalf("oracle 0 received %d guesses, want 0", len(first.Guesses))
	}
}

func TestRecoverRejectsInvalidLength(t *testing.T) {
	rec, _ := NewAuthRecoverer([]ports.Oracle{oracle.NewMockOracle(nil)})
	if _, err := rec.Recover(context.Background(), 0, 0, domain.NewSharedMemory(1)); err == nil {
		t.Fatalf("length 0 should be rejected")
	}
	if _, err := rec.Recover(context.Background(), 0, domain.MaxAuthLength+1, domain.NewSharedMemory(1)); err == nil {
		t.Fatalf("length above the maximum should be rejected")
	}
}

func TestRecoverReportsOracleErrors(t *testing.T) {
	mock := oracle.NewMockOracle(map[int]string{0: "rrr"})
	mock.FailAfter = 5
	rec, _ := NewAuthRecoverer([]ports.Oracle{mock})

	res, err := rec.Recover(context.Background(), 0, 3, domain.NewSharedMemory(1))
	if err == nil {
		t.Fatalf("expected oracle error")
	}
	if res.Attempts != 6 || res.Found {
		t.Fatalf("result = %+v, want 6 attempts not found", res)
	}
}
