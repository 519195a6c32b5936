// Package domain defines the typed identifiers shared across the gateway.
// Distinct types keep a driver id from ever being passed where a parcel id
// is expected; the compiler enforces what code review would otherwise catch.
package domain

import (
	"strconv"

	"github.com/google/uuid"

	dErrors "pickup-gateway/pkg/domain-errors"
)

// MissionID identifies a pickup mission. Assigned at creation, never reused.
type MissionID uuid.UUID

// DriverID and ShipperID reference records owned by external collaborators
// (personnel and shipper administration are outside this core). They are
// numeric in the upstream systems.
type (
	DriverID  int64
	ShipperID int64
)

// ParcelID is the internal numeric identifier of a parcel. Parcels also
// carry a tracking number; barcodes may encode either.
type ParcelID int64

// NewMissionID generates a fresh mission identifier.
func NewMissionID() MissionID {
	return MissionID(uuid.New())
}

// ParseMissionID validates an external string as a mission id.
func ParseMissionID(s string) (MissionID, error) {
	if s == "" {
		return MissionID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "mission id must not be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return MissionID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "mission id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return MissionID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "mission id must not be the nil UUID")
	}
	return MissionID(parsed), nil
}

func (id MissionID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether the id is the nil UUID.
func (id MissionID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText lets MissionID serialize as its canonical string form.
func (id MissionID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the canonical string form.
func (id *MissionID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = MissionID(parsed)
	return nil
}

// ParseDriverID validates an external string as a driver id.
func ParseDriverID(s string) (DriverID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "driver id must be a positive integer")
	}
	return DriverID(n), nil
}

// String returns the canonical form used in completion-code derivation.
func (id DriverID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseParcelID validates an external string as a parcel id.
func ParseParcelID(s string) (ParcelID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "parcel id must be a positive integer")
	}
	return ParcelID(n), nil
}

func (id ParcelID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id ShipperID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
