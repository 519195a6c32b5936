// Package reconcile implements the manifest scan session a driver runs to
// prove which parcels were physically collected. A session is only ever a
// cache of server-known truth: completion here is a precondition for the
// in_progress -> at_depot transition, not the authority for it.
package reconcile

import (
	"fmt"
	"strings"
	"time"

	"pickup-gateway/internal/mission/models"
	id "pickup-gateway/pkg/domain"
)

// Outcome classifies a single scan. All three values are ordinary results
// of the scan loop, never errors: the driver client renders each one
// immediately so the operator can recover from a misread without losing
// prior progress.
type Outcome string

const (
	OutcomeScanned        Outcome = "scanned"
	OutcomeAlreadyScanned Outcome = "already_scanned"
	OutcomeNotFound       Outcome = "not_found"
)

// ManifestItem is the session's snapshot of one manifest entry.
type ManifestItem struct {
	ParcelID       id.ParcelID `json:"parcel_id"`
	TrackingNumber string      `json:"tracking_number"`
}

// Session holds the in-flight reconciliation state for one mission and one
// driver's device. It is JSON-serializable so the redis-backed store can
// share it across gateway instances.
type Session struct {
	MissionID   id.MissionID         `json:"mission_id"`
	Manifest    []ManifestItem       `json:"manifest"`
	Scanned     map[id.ParcelID]bool `json:"scanned"`
	LastMessage string               `json:"last_message,omitempty"`
	StartedAt   time.Time            `json:"started_at"`
}

// NewSession snapshots the mission's manifest; scanned starts empty except
// for parcels the durable state already marks collected, so a driver whose
// device restarts mid-run does not rescan everything.
func NewSession(m *models.Mission, now time.Time) *Session {
	s := &Session{
		MissionID: m.ID,
		Manifest:  make([]ManifestItem, 0, len(m.Manifest)),
		Scanned:   make(map[id.ParcelID]bool),
		StartedAt: now,
	}
	for i := range m.Manifest {
		entry := m.Manifest[i]
		s.Manifest = append(s.Manifest, ManifestItem{
			ParcelID:       entry.ParcelID,
			TrackingNumber: entry.TrackingNumber,
		})
		if entry.Status == models.ParcelStatusCollected {
			s.Scanned[entry.ParcelID] = true
		}
	}
	return s
}

// Submit matches one raw barcode read against the manifest snapshot.
//
// Matching order, first match wins: exact tracking number, exact numeric
// parcel id, substring against a tracking number, substring against an id.
// The graduated fallback exists because physical barcodes are not always
// printed identically to the stored tracking string; an exact match is
// never skipped in favor of a weaker one. A scan is never destructive.
func (s *Session) Submit(rawCode string) (Outcome, *ManifestItem) {
	normalized := Normalize(rawCode)
	if normalized == "" {
		s.LastMessage = "empty scan"
		return OutcomeNotFound, nil
	}

	item := s.match(normalized)
	if item == nil {
		s.LastMessage = fmt.Sprintf("no parcel on this manifest matches %q", normalized)
		return OutcomeNotFound, nil
	}
	if s.Scanned[item.ParcelID] {
		s.LastMessage = fmt.Sprintf("parcel %s already scanned", item.TrackingNumber)
		return OutcomeAlreadyScanned, item
	}
	s.Scanned[item.ParcelID] = true
	s.LastMessage = fmt.Sprintf("parcel %s collected (%d/%d)", item.TrackingNumber, len(s.Scanned), len(s.Manifest))
	return OutcomeScanned, item
}

func (s *Session) match(normalized string) *ManifestItem {
	// Exact tracking number.
	for i := range s.Manifest {
		if Normalize(s.Manifest[i].TrackingNumber) == normalized {
			return &s.Manifest[i]
		}
	}
	// Exact internal id, numeric codes only.
	if isDigits(normalized) {
		for i := range s.Manifest {
			if s.Manifest[i].ParcelID.String() == normalized {
				return &s.Manifest[i]
			}
		}
	}
	// Substring of a tracking number.
	for i := range s.Manifest {
		if strings.Contains(Normalize(s.Manifest[i].TrackingNumber), normalized) {
			return &s.Manifest[i]
		}
	}
	// Substring of an internal id.
	for i := range s.Manifest {
		if strings.Contains(s.Manifest[i].ParcelID.String(), normalized) {
			return &s.Manifest[i]
		}
	}
	return nil
}

// Progress returns scanned and total manifest counts.
func (s *Session) Progress() (scanned, total int) {
	return len(s.Scanned), len(s.Manifest)
}

// IsComplete reports whether every manifest entry has been matched at
// least once.
func (s *Session) IsComplete() bool {
	return len(s.Scanned) == len(s.Manifest)
}

// Normalize trims whitespace and strips non-alphanumeric characters, then
// upper-cases, so hyphenated or framed barcode reads still match.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
