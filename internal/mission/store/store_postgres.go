package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"pickup-gateway/internal/mission/models"
	id "pickup-gateway/pkg/domain"
	dErrors "pickup-gateway/pkg/domain-errors"
)

// PostgresStore persists missions and their manifests in PostgreSQL. All
// timestamps ride on the aggregate; the store never invents them.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed mission store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the mission tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS missions (
			id             UUID PRIMARY KEY,
			mission_number TEXT NOT NULL UNIQUE,
			driver_id      BIGINT NOT NULL,
			shipper_id     BIGINT NOT NULL,
			scheduled_date TIMESTAMPTZ NOT NULL,
			status         TEXT NOT NULL,
			version        BIGINT NOT NULL DEFAULT 0,
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS mission_manifest (
			mission_id      UUID NOT NULL REFERENCES missions (id),
			parcel_id       BIGINT NOT NULL,
			tracking_number TEXT NOT NULL,
			status          TEXT NOT NULL DEFAULT 'pending',
			PRIMARY KEY (mission_id, parcel_id)
		);
		CREATE INDEX IF NOT EXISTS idx_missions_driver ON missions (driver_id);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure mission schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, mission *models.Mission) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err, "begin create mission")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO missions (id, mission_number, driver_id, shipper_id, scheduled_date, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, mission.ID.String(), mission.MissionNumber, int64(mission.DriverID), int64(mission.ShipperID),
		mission.ScheduledDate, string(mission.Status), mission.Version, mission.CreatedAt, mission.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.New(dErrors.CodeConflict, "mission number already in use")
		}
		return storageErr(err, "insert mission")
	}

	for i := range mission.Manifest {
		entry := mission.Manifest[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO mission_manifest (mission_id, parcel_id, tracking_number, status)
			VALUES ($1, $2, $3, $4)
		`, mission.ID.String(), int64(entry.ParcelID), entry.TrackingNumber, string(entry.Status))
		if err != nil {
			return storageErr(err, "insert manifest entry")
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr(err, "commit create mission")
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, missionID id.MissionID) (*models.Mission, error) {
	mission := &models.Mission{}
	var missionIDStr, status string
	var driverID, shipperID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, mission_number, driver_id, shipper_id, scheduled_date, status, version, created_at, updated_at
		FROM missions WHERE id = $1
	`, missionID.String()).Scan(&missionIDStr, &mission.MissionNumber, &driverID, &shipperID,
		&mission.ScheduledDate, &status, &mission.Version, &mission.CreatedAt, &mission.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr(err, "find mission")
	}
	parsedID, err := id.ParseMissionID(missionIDStr)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored mission id is malformed")
	}
	mission.ID = parsedID
	mission.DriverID = id.DriverID(driverID)
	mission.ShipperID = id.ShipperID(shipperID)
	mission.Status = models.Status(status)

	if err := s.loadManifest(ctx, mission); err != nil {
		return nil, err
	}
	return mission, nil
}

func (s *PostgresStore) ListByDriver(ctx context.Context, driverID id.DriverID) ([]*models.Mission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM missions WHERE driver_id = $1 ORDER BY created_at
	`, int64(driverID))
	if err != nil {
		return nil, storageErr(err, "list missions by driver")
	}
	defer rows.Close()

	var ids []id.MissionID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, storageErr(err, "scan mission id")
		}
		parsed, err := id.ParseMissionID(raw)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored mission id is malformed")
		}
		ids = append(ids, parsed)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "iterate missions")
	}

	missions := make([]*models.Mission, 0, len(ids))
	for _, missionID := range ids {
		mission, err := s.FindByID(ctx, missionID)
		if err != nil {
			return nil, err
		}
		missions = append(missions, mission)
	}
	return missions, nil
}

// Update applies a validated transition with an optimistic version check
// and cascades manifest statuses inside the same transaction. The loser of
// a race gets ErrConcurrentModification, never a silent last-writer-wins.
func (s *PostgresStore) Update(ctx context.Context, mission *models.Mission) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err, "begin update mission")
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, `
		UPDATE missions
		SET status = $1, updated_at = $2, version = version + 1
		WHERE id = $3 AND version = $4
	`, string(mission.Status), mission.UpdatedAt, mission.ID.String(), mission.Version)
	if err != nil {
		return storageErr(err, "update mission")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr(err, "update mission rows")
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM missions WHERE id = $1)`, mission.ID.String()).Scan(&exists); err != nil {
			return storageErr(err, "check mission existence")
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConcurrentModification
	}

	// Cascade per-mission parcel statuses carried on the aggregate.
	collected := make([]int64, 0, len(mission.Manifest))
	for i := range mission.Manifest {
		if mission.Manifest[i].Status == models.ParcelStatusCollected {
			collected = append(collected, int64(mission.Manifest[i].ParcelID))
		}
	}
	if len(collected) > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE mission_manifest SET status = $1
			WHERE mission_id = $2 AND parcel_id = ANY($3)
		`, string(models.ParcelStatusCollected), mission.ID.String(), pq.Array(collected))
		if err != nil {
			return storageErr(err, "cascade manifest statuses")
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr(err, "commit update mission")
	}
	mission.Version++
	return nil
}

func (s *PostgresStore) MarkCollected(ctx context.Context, missionID id.MissionID, parcelID id.ParcelID) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE mission_manifest SET status = $1
		WHERE mission_id = $2 AND parcel_id = $3
	`, string(models.ParcelStatusCollected), missionID.String(), int64(parcelID))
	if err != nil {
		return storageErr(err, "mark parcel collected")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr(err, "mark parcel collected rows")
	}
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "parcel not on mission manifest")
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storageErr(err, "ping mission store")
	}
	return nil
}

func (s *PostgresStore) loadManifest(ctx context.Context, mission *models.Mission) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT parcel_id, tracking_number, status
		FROM mission_manifest WHERE mission_id = $1
		ORDER BY parcel_id
	`, mission.ID.String())
	if err != nil {
		return storageErr(err, "load manifest")
	}
	defer rows.Close()

	mission.Manifest = mission.Manifest[:0]
	for rows.Next() {
		var parcelID int64
		var tracking, status string
		if err := rows.Scan(&parcelID, &tracking, &status); err != nil {
			return storageErr(err, "scan manifest entry")
		}
		mission.Manifest = append(mission.Manifest, models.ManifestEntry{
			MissionID:      mission.ID,
			ParcelID:       id.ParcelID(parcelID),
			TrackingNumber: tracking,
			Status:         models.ParcelStatus(status),
		})
	}
	if err := rows.Err(); err != nil {
		return storageErr(err, "iterate manifest")
	}
	return nil
}

// storageErr keeps connectivity and driver failures distinguishable from
// invalid-request errors so callers know "try again later" from "fix input".
func storageErr(err error, op string) error {
	return dErrors.Wrap(fmt.Errorf("%s: %w", op, err), dErrors.CodeStorageUnavailable, "mission storage failure")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
