package models

// CreateMissionRequest is the dispatch-surface payload for a new mission.
type CreateMissionRequest struct {
	DriverID      int64              `json:"driver_id"`
	ShipperID     int64              `json:"shipper_id"`
	ScheduledDate string             `json:"scheduled_date"` // YYYY-MM-DD
	Parcels       []ParcelAssignment `json:"parcels"`
}

// ParcelAssignment names one parcel to place on the manifest.
type ParcelAssignment struct {
	ParcelID       int64  `json:"parcel_id"`
	TrackingNumber string `json:"tracking_number"`
}

// TransitionRequest asks the state machine to move a mission to a target
// status. Code is consulted only when the target is completed.
type TransitionRequest struct {
	TargetStatus string `json:"target_status"`
	Code         string `json:"code,omitempty"`
}

// ScanRequest carries one raw barcode read from the driver's device.
type ScanRequest struct {
	RawCode string `json:"raw_code"`
}
