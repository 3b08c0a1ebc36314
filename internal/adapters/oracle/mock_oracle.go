package oracle

import (
	"context"
	"fmt"
)

// MockOracle answers guesses from a fixed table of per-truck secrets and
// records every call it receives.
type MockOracle struct {
	secrets map[int]string

	Selected []int
	Guesses  []string
	// FailAfter makes Verify return an error once this many guesses were made (0 disables).
	FailAfter int
}

func NewMockOracle(secrets map[int]string) *MockOracle {
	m := make(map[int]string, len(secrets))
	for truck, s := range secrets {
		m[truck] = s
	}
	return &MockOracle{secrets: m}
}

func (m *MockOracle) SelectTruck(ctx context.Context, truckID int) error {
	m.Selected = append(m.Selected, truckID)
	return nil
}

func (m *MockOracle) Verify(ctx context.Context, truckID int, guess string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if m.FailAfter > 0 && len(m.Guesses) >= m.FailAfter {
		return false, fmt.Errorf("mock oracle: unavailable after %d guesses", m.FailAfter)
	}

	m.Guesses = append(m.Guesses, guess)

	secret, ok := m.secrets[truckID]
	if !ok {
		return false, fmt.Errorf("mock oracle: no secret for truck %d", truckID)
	}
	return guess == secret, nil
}

// Reset forgets recorded calls.
func (m *MockOracle) Reset() {
	m.Selected = nil
	m.Guesses = nil
}
