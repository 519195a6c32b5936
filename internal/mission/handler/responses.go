package handler

import (
	"time"

	"pickup-gateway/internal/mission/models"
)

// MissionResponse is the wire shape of a mission with its manifest.
type MissionResponse struct {
	ID            string                  `json:"id"`
	MissionNumber string                  `json:"mission_number"`
	DriverID      int64                   `json:"driver_id"`
	ShipperID     int64                   `json:"shipper_id"`
	ScheduledDate string                  `json:"scheduled_date"`
	Status        string                  `json:"status"`
	StatusLabel   string                  `json:"status_label"`
	Collected     int                     `json:"collected"`
	Total         int                     `json:"total"`
	Manifest      []ManifestEntryResponse `json:"manifest"`
	CreatedAt     string                  `json:"created_at"`
	UpdatedAt     string                  `json:"updated_at"`
}

// ManifestEntryResponse is one parcel on the manifest with its collected flag.
type ManifestEntryResponse struct {
	ParcelID       int64  `json:"parcel_id"`
	TrackingNumber string `json:"tracking_number"`
	Collected      bool   `json:"collected"`
}

// MissionListResponse wraps a driver's missions.
type MissionListResponse struct {
	Missions []MissionResponse `json:"missions"`
}

// ScanResponse reports one scan outcome plus running progress.
type ScanResponse struct {
	Outcome string `json:"outcome"`
	Scanned int    `json:"scanned"`
	Total   int    `json:"total"`
	Message string `json:"message,omitempty"`
}

// CodeResponse carries the completion code for the dispatcher surface.
type CodeResponse struct {
	Code string `json:"code"`
}

func toMissionResponse(m *models.Mission) MissionResponse {
	resp := MissionResponse{
		ID:            m.ID.String(),
		MissionNumber: m.MissionNumber,
		DriverID:      int64(m.DriverID),
		ShipperID:     int64(m.ShipperID),
		ScheduledDate: m.ScheduledDate.Format("2006-01-02"),
		Status:        string(m.Status),
		StatusLabel:   m.Status.Label(),
		Collected:     m.CollectedCount(),
		Total:         len(m.Manifest),
		Manifest:      make([]ManifestEntryResponse, 0, len(m.Manifest)),
		CreatedAt:     m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     m.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for i := range m.Manifest {
		entry := m.Manifest[i]
		resp.Manifest = append(resp.Manifest, ManifestEntryResponse{
			ParcelID:       int64(entry.ParcelID),
			TrackingNumber: entry.TrackingNumber,
			Collected:      entry.Status == models.ParcelStatusCollected,
		})
	}
	return resp
}
