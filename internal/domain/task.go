package domain

import "fmt"

// TaskState is the phase of a truck's current assignment.
type TaskState int

const (
	SeekingPickup TaskState = iota
	SeekingDropoff
)

func (s TaskState) String() string {
	switch s {
	case SeekingPickup:
		return "seeking-pickup"
	case SeekingDropoff:
		return "seeking-dropoff"
	}
	return fmt.Sprintf("TaskState(%d)", int(s))
}

// Per-truck assignment record. One TruckTask exists per truck slot for the
// lifetime of the agent and is mutated in place every turn.
//
// A nil Package means the truck is idle; State is then SeekingPickup.
type TruckTask struct {
	TruckID  int
	Package  *PackageRequest
	State    TaskState
	Priority int64
}

// NewTruckTasks allocates one idle task per truck slot.
func NewTruckTasks(trucks int) []TruckTask {
	tasks := make([]TruckTask, trucks)
	for i := range tasks {
		tasks[i] = TruckTask{TruckID: i, State: SeekingPickup}
	}
	return tasks
}

// Idle reports whether the truck has no assigned package.
func (t *TruckTask) Idle() bool { return t.Package == nil }

// PackageRef returns the assigned package identifier, if any.
func (t *TruckTask) PackageRef() PackageRef {
	if t.Package == nil {
		return None()
	}
	return Ref(t.Package.ID)
}

// Assign gives an idle truck a package to fetch.
func (t *TruckTask) Assign(pkg PackageRequest, priority int64) error {
	if t.Package != nil {
		return fmt.Errorf("assign truck %d: already holds package %d", t.TruckID, t.Package.ID)
	}
	p := pkg
	t.Package = &p
	t.State = SeekingPickup
	t.Priority = priority
	return nil
}

// PickedUp moves a task from SeekingPickup to SeekingDropoff.
func (t *TruckTask) PickedUp() error {
	if t.Package == nil || t.State != SeekingPickup {
		return fmt.Errorf("pickup truck %d: task is %s with package %v", t.TruckID, t.State, t.PackageRef().Wire())
	}
	t.State = SeekingDropoff
	return nil
}

// Reset returns the task to idle after a dropoff.
func (t *TruckTask) Reset() {
	t.Package = nil
	t.State = SeekingPickup
	t.Priority = 0
}

// Target returns the cell the truck is currently heading for.
func (t *TruckTask) Target() (Cell, bool) {
	if t.Package == nil {
		return Cell{}, false
	}
	if t.State == SeekingDropoff {
		return t.Package.Dropoff, true
	}
	return t.Package.Pickup, true
}
