// Package queue defines message payloads exchanged over the message broker
// and the background consumers that drain them.
package queue

// OTPEmailEvent is published when a user requests a one-time login
// code.  A downstream mailer consumes it; the API server itself never
// talks SMTP.
type OTPEmailEvent struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Code        string `json:"code"`
	ExpiresAt   string `json:"expires_at"`
	RequestedAt string `json:"requested_at"`
}

// SlotFinalizedEvent is published after a ride slot is finalized.  It
// carries enough information for downstream consumers to log, notify
// riders, or feed analytics without querying the primary database.
type SlotFinalizedEvent struct {
	SlotID       uint64 `json:"slot_id"`
	CreatorID    uint64 `json:"creator_id"`
	VehicleID    uint64 `json:"vehicle_id"`
	LicensePlate string `json:"license_plate"`
	StartLoc     string `json:"start_loc"`
	DestLoc      string `json:"dest_loc"`
	RideTime     string `json:"ride_time"`
	Riders       uint32 `json:"riders"`
	FareCents    int64  `json:"fare_cents"`
	FinalizedAt  string `json:"finalized_at"`
}
