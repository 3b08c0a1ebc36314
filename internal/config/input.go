package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"truck-dispatch-agent/internal/domain"
)

// SimulationInput is the run description handed to the agent by the simulator.
type SimulationInput struct {
	GridSize        int
	Trucks          int
	Solvers         int
	LastRequestTurn int
	TollBooths      int
	SnapshotKey     int
	MainQueueKey    int
	SolverKeys      []int
}

// LoadSimulationInput reads the whitespace-separated input file.
func LoadSimulationInput(path string) (*SimulationInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load simulation input: %w", err)
	}
	defer f.Close()

	in, err := ParseSimulationInput(f)
	if err != nil {
		return nil, fmt.Errorf("load simulation input %s: %w", path, err)
	}
	return in, nil
}

// ParseSimulationInput reads
//
//	N D S T B snapshotKey mainQueueKey solverKey_1 .. solverKey_S
//
// and validates the counts.
func ParseSimulationInput(r io.Reader) (*SimulationInput, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	next := func(name string) (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, fmt.Errorf("read %s: %w", name, err)
			}
			return 0, fmt.Errorf("read %s: unexpected end of input", name)
		}
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", name, err)
		}
		return v, nil
	}

	var in SimulationInput
	fields := []struct {
		name string
		dst  *int
	}{
		{"grid size", &in.GridSize},
		{"truck count", &in.Trucks},
		{"solver count", &in.Solvers},
		{"last request turn", &in.LastRequestTurn},
		{"toll booth count", &in.TollBooths},
		{"snapshot key", &in.SnapshotKey},
		{"main queue key", &in.MainQueueKey},
	}
	for _, f := range fields {
		v, err := next(f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	if err := in.validateCounts(); err != nil {
		return nil, err
	}

	in.SolverKeys = make([]int, in.Solvers)
	for i := range in.SolverKeys {
		v, err := next(fmt.Sprintf("solver key %d", i+1))
		if err != nil {
			return nil, err
		}
		in.SolverKeys[i] = v
	}

	return &in, nil
}

func (in *SimulationInput) validateCounts() error {
	if in.GridSize <= 0 {
		return fmt.Errorf("grid size must be positive, got %d", in.GridSize)
	}
	if in.Trucks < 1 || in.Trucks > domain.MaxTrucks {
		return fmt.Errorf("truck count %d outside [1, %d]", in.Trucks, domain.MaxTrucks)
	}
	if in.Solvers < 1 || in.Solvers > domain.MaxTrucks {
		return fmt.Errorf("solver count %d outside [1, %d]", in.Solvers, domain.MaxTrucks)
	}
	if in.TollBooths < 0 {
		return fmt.Errorf("toll booth count cannot be negative, got %d", in.TollBooths)
	}
	return nil
}
