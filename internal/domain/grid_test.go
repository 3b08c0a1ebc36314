package domain

import "testing"

func TestManhattan(t *testing.T) {
	if got := Manhattan(Cell{X: 1, Y: 2}, Cell{X: 4, Y: -2}); got != 7 {
		t.Fatalf("Manhattan = %d, want 7", got)
	}
	if got := Manhattan(Cell{X: 3, Y: 3}, Cell{X: 3, Y: 3}); got != 0 {
		t.Fatalf("Manhattan = %d, want 0", got)
	}
}

func TestStepToward(t *testing.T) {
	cases := []struct {
		name     string
		from, to Cell
		want     Direction
	}{
		{"right dominates", Cell{0, 0}, Cell{5, 2}, Right},
		{"left dominates", Cell{5, 0}, Cell{0, 1}, Left},
		{"down dominates", Cell{0, 0}, Cell{1, 4}, Down},
		{"up dominates", Cell{0, 9}, Cell{2, 1}, Up},
		{"tie goes vertical", Cell{0, 0}, Cell{3, 3}, Down},
		{"tie goes vertical up", Cell{3, 3}, Cell{0, 0}, Up},
		{"same cell stays", Cell{2, 2}, Cell{2, 2}, Stay},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StepToward(tc.from, tc.to); got != tc.want {
				t.Fatalf("StepToward(%v, %v) = %s, want %s", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestRefFromWire(t *testing.T) {
	if _, ok := RefFromWire(NoPackage).Get(); ok {
		t.Fatalf("NoPackage should decode to None")
	}
	if id, ok := RefFromWire(0).Get(); !ok || id != 0 {
		t.Fatalf("RefFromWire(0) = %d (ok=%v), want 0", id, ok)
	}
}
