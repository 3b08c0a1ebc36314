package dto

import "truck-dispatch-agent/internal/domain"

type EventResponse struct {
	Truck    int    `json:"truck"`
	Package  int    `json:"package"`
	Kind     string `json:"kind"`
	Attempts int    `json:"attempts,omitempty"`
}

type TurnResponse struct {
	Turn                  int             `json:"turn"`
	NewRequests           int             `json:"new_requests"`
	OpportunisticAssigned int             `json:"opportunistic_assigned"`
	ScheduledAssigned     int             `json:"scheduled_assigned"`
	Pickups               int             `json:"pickups"`
	Dropoffs              int             `json:"dropoffs"`
	RecoveriesSucceeded   int             `json:"recoveries_succeeded"`
	RecoveriesFailed      int             `json:"recoveries_failed"`
	OracleAttempts        int             `json:"oracle_attempts"`
	PoolSize              int             `json:"pool_size"`
	PoolActive            int             `json:"pool_active"`
	DurationMillis        float64         `json:"duration_ms"`
	Events                []EventResponse `json:"events"`
}

type TotalsResponse struct {
	Turns               int `json:"turns"`
	Assigned            int `json:"assigned"`
	Pickups             int `json:"pickups"`
	Dropoffs            int `json:"dropoffs"`
	RecoveriesSucceeded int `json:"recoveries_succeeded"`
	RecoveriesFailed    int `json:"recoveries_failed"`
	OracleAttempts      int `json:"oracle_attempts"`
}

type StatusResponse struct {
	Started  bool           `json:"started"`
	Totals   TotalsResponse `json:"totals"`
	LastTurn *TurnResponse  `json:"last_turn,omitempty"`
}

func TurnFromSummary(s domain.TurnSummary) TurnResponse {
	res := TurnResponse{
		Turn:                  s.Turn,
		NewRequests:           s.NewRequests,
		OpportunisticAssigned: s.OpportunisticAssigned,
		ScheduledAssigned:     s.ScheduledAssigned,
		Pickups:               s.Pickups,
		Dropoffs:              s.Dropoffs,
		RecoveriesSucceeded:   s.RecoveriesSucceeded,
		RecoveriesFailed:      s.RecoveriesFailed,
		OracleAttempts:        s.OracleAttempts,
		PoolSize:              s.PoolSize,
		PoolActive:            s.PoolActive,
		DurationMillis:        float64(s.Duration.Microseconds()) / 1000,
		Events:                make([]EventResponse, 0, len(s.Events)),
	}
	for _, e := range s.Events {
		res.Events = append(res.Events, EventResponse{
			Truck:    e.TruckID,
			Package:  int(e.PackageID),
			Kind:     string(e.Kind),
			Attempts: e.Attempts,
		})
	}
	return res
}
