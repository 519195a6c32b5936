// Package store is the only component permitted to read or write durable
// mission and manifest state. Everything above it is pure or in-memory.
package store

import (
	"context"

	"pickup-gateway/internal/mission/models"
	id "pickup-gateway/pkg/domain"
	dErrors "pickup-gateway/pkg/domain-errors"
)

var (
	// ErrNotFound keeps mission 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "mission not found")

	// ErrConcurrentModification is surfaced to the loser of two racing
	// transition writes. The caller reloads and re-validates; it never
	// blindly re-submits the stale transition.
	ErrConcurrentModification = dErrors.New(dErrors.CodeConcurrentModification, "mission was modified concurrently")
)

// Store loads and persists mission snapshots. Update applies a validated
// transition with an optimistic version check and cascades linked manifest
// statuses in the same logical operation.
type Store interface {
	Create(ctx context.Context, mission *models.Mission) error
	FindByID(ctx context.Context, missionID id.MissionID) (*models.Mission, error)
	ListByDriver(ctx context.Context, driverID id.DriverID) ([]*models.Mission, error)

	// Update persists the mission's status, updatedAt and manifest as one
	// atomic unit. The write succeeds only if the stored version equals
	// mission.Version; on success the stored version is incremented and
	// mission.Version is updated to match.
	Update(ctx context.Context, mission *models.Mission) error

	// MarkCollected records that a parcel on the mission's manifest was
	// physically scanned. Monotonic (pending -> collected only) and
	// idempotent, so it is not guarded by the mission version.
	MarkCollected(ctx context.Context, missionID id.MissionID, parcelID id.ParcelID) error

	// Ping reports store health for the /healthz endpoint.
	Ping(ctx context.Context) error
}
