package domain

// Fixed sizes of the shared snapshot region.
const (
	MaxTrucks        = 250
	TruckCapacity    = 20
	MaxNewRequests   = 50
	MaxTotalPackages = 5000
	MaxAuthLength    = TruckCapacity
)
