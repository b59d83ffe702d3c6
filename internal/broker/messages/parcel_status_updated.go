package messages

import "time"

// ParcelStatusUpdated is published after a status transition has been
// committed to the store. Best effort: a publish failure never rolls the
// transition back.
type ParcelStatusUpdated struct {
	ParcelID       uint64    `json:"parcel_id"`
	TrackingNumber string    `json:"tracking_number"`
	OldStatus      string    `json:"old_status"`
	NewStatus      string    `json:"new_status"`
	ChangedAt      time.Time `json:"changed_at"`
}
