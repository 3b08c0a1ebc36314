package domain

// PackageID identifies a package request across its whole lifetime.
type PackageID int

// NoPackage is the wire value for "no package" in pickup/dropoff commands.
const NoPackage PackageID = -1

// Represents a single pickup-and-deliver request announced by the simulator.
// A PackageRequest is immutable once ingested; delivery progress is tracked
// by the pending pool and truck tasks, never on the request itself.
type PackageRequest struct {
	ID          PackageID
	Pickup      Cell
	Dropoff     Cell
	ArrivalTurn int
	ExpiryTurn  int
}

// DeliverDistance is the manhattan distance from pickup to dropoff.
func (p PackageRequest) DeliverDistance() int {
	return Manhattan(p.Pickup, p.Dropoff)
}

// TurnsLeft returns how many turns remain before expiry at the given turn.
func (p PackageRequest) TurnsLeft(turn int) int {
	return p.ExpiryTurn - turn
}

// PackageRef is an optional package identifier.
type PackageRef struct {
	id PackageID
	ok bool
}

// Ref wraps id as a present PackageRef.
func Ref(id PackageID) PackageRef { return PackageRef{id: id, ok: true} }

// None is the absent PackageRef.
func None() PackageRef { return PackageRef{} }

// Get returns the identifier and whether it is present.
func (r PackageRef) Get() (PackageID, bool) { return r.id, r.ok }

// Wire returns the identifier, or NoPackage when absent.
func (r PackageRef) Wire() PackageID {
	if !r.ok {
		return NoPackage
	}
	return r.id
}

// RefFromWire converts a wire value back into a PackageRef.
func RefFromWire(id PackageID) PackageRef {
	if id < 0 {
		return None()
	}
	return Ref(id)
}
