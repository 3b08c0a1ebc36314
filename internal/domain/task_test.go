package domain

import "testing"

func TestTruckTaskLifecycle(t *testing.T) {
	// build test data
	pkg := PackageRequest{
		ID:         7,
		Pickup:     Cell{X: 1, Y: 1},
		Dropoff:    Cell{X: 4, Y: 5},
		ExpiryTurn: 30,
	}
	tasks := NewTruckTasks(2)
	task := &tasks[1]

	if !task.Idle() {
		t.Fatalf("new task should be idle")
	}
	if task.TruckID != 1 {
		t.Fatalf("TruckID = %d, want 1", task.TruckID)
	}

	// call the methods under test
	if err := task.Assign(pkg, -42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := task.Assign(pkg, 0); err == nil {
		t.Fatalf("second assign should fail while a package is held")
	}

	target, ok := task.Target()
	if !ok || target != pkg.Pickup {
		t.Fatalf("target = %v (ok=%v), want pickup %v", target, ok, pkg.Pickup)
	}

	if err := task.PickedUp(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.State != SeekingDropoff {
		t.Fatalf("state = %s, want %s", task.State, SeekingDropoff)
	}
	if id, ok := task.PackageRef().Get(); !ok || id != 7 {
		t.Fatalf("package ref = %d (ok=%v), want 7", id, ok)
	}

	target, _ = task.Target()
	if target != pkg.Dropoff {
		t.Fatalf("target = %v, want dropoff %v", target, pkg.Dropoff)
	}

	// verify behavior after dropoff
	task.Reset()
	if !task.Idle() || task.State != SeekingPickup {
		t.Fatalf("reset task = %+v, want idle seeking-pickup", task)
	}
	if task.PackageRef().Wire() != NoPackage {
		t.Fatalf("wire ref = %d, want %d", task.PackageRef().Wire(), NoPackage)
	}
}

func TestTruckTaskPickedUpRequiresPackage(t *testing.T) {
	task := TruckTask{TruckID: 3}
	if err := task.PickedUp(); err == nil {
		t.Fatalf("pickup on idle task should fail")
	}
	if task.State != SeekingPickup {
		t.Fatalf("state = %s, want %s", task.State, SeekingPickup)
	}
}

func TestSharedMemoryResetCommands(t *testing.T) {
	mem := NewSharedMemory(3)
	mem.Commands[1] = TruckCommand{Move: Left, Pickup: Ref(4), Dropoff: Ref(9), AuthString: "udl"}

	mem.ResetCommands()

	for i, c := range mem.Commands {
		if c.Move != Stay {
			t.Errorf("truck %d move = %s, want %s", i, c.Move, Stay)
		}
		if c.Pickup.Wire() != NoPackage || c.Dropoff.Wire() != NoPackage {
			t.Errorf("truck %d pickup/dropoff = %d/%d, want none", i, c.Pickup.Wire(), c.Dropoff.Wire())
		}
		if c.AuthString != "" {
			t.Errorf("truck %d auth = %q, want empty", i, c.AuthString)
		}
	}
}
