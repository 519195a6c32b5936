// Package models holds the mission aggregate and its lifecycle rules.
package models

import (
	"time"

	id "pickup-gateway/pkg/domain"
)

// ParcelStatus is the per-mission status of a manifest entry. It is owned
// by the mission, not by the parcel record itself.
type ParcelStatus string

const (
	ParcelStatusPending   ParcelStatus = "pending"
	ParcelStatusCollected ParcelStatus = "collected"
)

// ManifestEntry is one parcel on a mission's collection manifest.
type ManifestEntry struct {
	MissionID      id.MissionID
	ParcelID       id.ParcelID
	TrackingNumber string
	Status         ParcelStatus
}

// Mission is a single driver assignment to collect a set of parcels from
// one shipper location.
type Mission struct {
	ID            id.MissionID
	MissionNumber string
	DriverID      id.DriverID
	ShipperID     id.ShipperID
	ScheduledDate time.Time
	Status        Status
	Manifest      []ManifestEntry

	// Version supports the optimistic check on transition writes. Two
	// devices racing the same transition cannot both win.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entry returns the manifest entry for the given parcel, or nil.
func (m *Mission) Entry(parcelID id.ParcelID) *ManifestEntry {
	for i := range m.Manifest {
		if m.Manifest[i].ParcelID == parcelID {
			return &m.Manifest[i]
		}
	}
	return nil
}

// ManifestCollected reports whether every manifest entry has been collected.
// This is the durable-state check behind the in_progress -> at_depot guard;
// it never trusts a client-held scan session.
func (m *Mission) ManifestCollected() bool {
	for i := range m.Manifest {
		if m.Manifest[i].Status != ParcelStatusCollected {
			return false
		}
	}
	return true
}

// CollectedCount returns how many manifest entries have been collected.
func (m *Mission) CollectedCount() int {
	n := 0
	for i := range m.Manifest {
		if m.Manifest[i].Status == ParcelStatusCollected {
			n++
		}
	}
	return n
}

// Clone deep-copies the mission so stores never hand out aliased manifests.
func (m *Mission) Clone() *Mission {
	cloned := *m
	cloned.Manifest = append([]ManifestEntry(nil), m.Manifest...)
	return &cloned
}
