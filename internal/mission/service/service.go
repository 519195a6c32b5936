// Package service owns the mission state machine. All status mutations go
// through Transition; there is no other write path for the status field.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"pickup-gateway/internal/mission/code"
	"pickup-gateway/internal/mission/metrics"
	"pickup-gateway/internal/mission/models"
	"pickup-gateway/internal/mission/reconcile"
	"pickup-gateway/internal/mission/store"
	"pickup-gateway/internal/platform/events"
	id "pickup-gateway/pkg/domain"
	dErrors "pickup-gateway/pkg/domain-errors"
)

const missionNumberPrefix = "PIK"

// ScanResult is what the driver client renders after each barcode read.
type ScanResult struct {
	Outcome reconcile.Outcome
	Scanned int
	Total   int
	Message string
}

// Service coordinates the state machine, the reconciler and the store
// gateway. It is the only caller of store.Update.
type Service struct {
	store     store.Store
	sessions  reconcile.SessionStore
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	clock     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithPublisher sets the event publisher (defaults to a no-op).
func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithMetrics attaches mission metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(missionStore store.Store, sessions reconcile.SessionStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     missionStore,
		sessions:  sessions,
		publisher: events.NoopPublisher{},
		logger:    logger,
		tracer:    otel.Tracer("pickup-gateway/mission"),
		clock:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateMissionParams carries the dispatch-surface inputs for a new mission.
type CreateMissionParams struct {
	DriverID      id.DriverID
	ShipperID     id.ShipperID
	ScheduledDate time.Time
	Parcels       []models.ManifestEntry
}

// Create builds a scheduled mission with a non-empty manifest. Mission
// numbers are derived from the creation instant; a same-second collision is
// retried with an adjusted suffix.
func (s *Service) Create(ctx context.Context, params CreateMissionParams) (*models.Mission, error) {
	ctx, span := s.tracer.Start(ctx, "mission.Create")
	defer span.End()

	if params.DriverID <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "driver id is required")
	}
	if params.ShipperID <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "shipper id is required")
	}
	if params.ScheduledDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "scheduled date is required")
	}
	if len(params.Parcels) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "mission manifest must not be empty")
	}
	seen := make(map[id.ParcelID]struct{}, len(params.Parcels))
	for _, parcel := range params.Parcels {
		if parcel.ParcelID <= 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "parcel id must be positive")
		}
		if strings.TrimSpace(parcel.TrackingNumber) == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "parcel tracking number is required")
		}
		if _, dup := seen[parcel.ParcelID]; dup {
			return nil, dErrors.New(dErrors.CodeValidation, "duplicate parcel on manifest: "+parcel.ParcelID.String())
		}
		seen[parcel.ParcelID] = struct{}{}
	}

	now := s.clock()
	var mission *models.Mission
	for attempt := int64(0); attempt < 3; attempt++ {
		mission = s.buildMission(params, now, attempt)
		err := s.store.Create(ctx, mission)
		if err == nil {
			s.logger.InfoContext(ctx, "mission created",
				"mission_id", mission.ID.String(),
				"mission_number", mission.MissionNumber,
				"driver_id", mission.DriverID.String(),
				"parcels", len(mission.Manifest),
			)
			return mission, nil
		}
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil, err
		}
	}
	return nil, dErrors.New(dErrors.CodeConflict, "could not allocate a unique mission number")
}

func (s *Service) buildMission(params CreateMissionParams, now time.Time, attempt int64) *models.Mission {
	missionID := id.NewMissionID()
	mission := &models.Mission{
		ID:            missionID,
		MissionNumber: missionNumberPrefix + strconv.FormatInt(now.Unix()+attempt, 10),
		DriverID:      params.DriverID,
		ShipperID:     params.ShipperID,
		ScheduledDate: params.ScheduledDate,
		Status:        models.StatusScheduled,
		Manifest:      make([]models.ManifestEntry, 0, len(params.Parcels)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, parcel := range params.Parcels {
		mission.Manifest = append(mission.Manifest, models.ManifestEntry{
			MissionID:      missionID,
			ParcelID:       parcel.ParcelID,
			TrackingNumber: strings.TrimSpace(parcel.TrackingNumber),
			Status:         models.ParcelStatusPending,
		})
	}
	return mission
}

// Get returns the mission with its manifest and per-parcel statuses.
func (s *Service) Get(ctx context.Context, missionID id.MissionID) (*models.Mission, error) {
	return s.store.FindByID(ctx, missionID)
}

// ListByDriver returns the driver's missions, oldest first.
func (s *Service) ListByDriver(ctx context.Context, driverID id.DriverID) ([]*models.Mission, error) {
	if driverID <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "driver id is required")
	}
	return s.store.ListByDriver(ctx, driverID)
}

// CompletionCode returns the derived completion code for the mission. The
// transport layer restricts this to the dispatcher role; the code is never
// included in any driver-visible response or log.
func (s *Service) CompletionCode(ctx context.Context, missionID id.MissionID) (string, error) {
	mission, err := s.store.FindByID(ctx, missionID)
	if err != nil {
		return "", err
	}
	return code.Compute(mission.MissionNumber, mission.DriverID, mission.ScheduledDate), nil
}

// Transition moves a mission to the target status when the transition
// table and its guards allow it. On success the status, updatedAt and any
// cascaded manifest statuses are persisted as one atomic unit.
func (s *Service) Transition(ctx context.Context, missionID id.MissionID, target models.Status, suppliedCode string) (*models.Mission, error) {
	ctx, span := s.tracer.Start(ctx, "mission.Transition")
	defer span.End()
	start := s.clock()
	defer func() {
		s.metrics.ObserveTransitionLatency(time.Since(start).Seconds())
	}()

	if !target.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown mission status: "+string(target))
	}

	mission, err := s.store.FindByID(ctx, missionID)
	if err != nil {
		return nil, err
	}

	if err := s.guardTransition(mission, target, suppliedCode); err != nil {
		s.metrics.RecordTransitionFailure(string(dErrors.CodeOf(err)))
		s.logger.WarnContext(ctx, "mission transition rejected",
			"mission_id", missionID.String(),
			"from", string(mission.Status),
			"to", string(target),
			"code", string(dErrors.CodeOf(err)),
		)
		return nil, err
	}

	from := mission.Status
	mission.Status = target
	mission.UpdatedAt = s.clock()
	if target == models.StatusCompleted {
		// Cascade: every manifest parcel leaves the mission as collected,
		// persisted in the same logical operation as the status write.
		for i := range mission.Manifest {
			mission.Manifest[i].Status = models.ParcelStatusCollected
		}
	}

	if err := s.store.Update(ctx, mission); err != nil {
		s.metrics.RecordTransitionFailure(string(dErrors.CodeOf(err)))
		return nil, err
	}

	s.metrics.RecordTransition(string(target))
	s.logger.InfoContext(ctx, "mission transitioned",
		"mission_id", missionID.String(),
		"mission_number", mission.MissionNumber,
		"from", string(from),
		"to", string(target),
	)

	if target.Terminal() {
		if err := s.sessions.Delete(ctx, missionID); err != nil {
			s.logger.WarnContext(ctx, "failed to drop scan session", "mission_id", missionID.String(), "error", err)
		}
	}

	event := events.StatusChange{
		MissionID:     mission.ID.String(),
		MissionNumber: mission.MissionNumber,
		DriverID:      int64(mission.DriverID),
		From:          string(from),
		To:            string(target),
		OccurredAt:    mission.UpdatedAt,
	}
	if err := s.publisher.PublishStatusChange(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish status change", "mission_id", missionID.String(), "error", err)
	}

	return mission, nil
}

func (s *Service) guardTransition(mission *models.Mission, target models.Status, suppliedCode string) error {
	if !models.CanTransition(mission.Status, target) {
		return dErrors.New(dErrors.CodeIllegalTransition,
			"cannot move mission from "+string(mission.Status)+" to "+string(target))
	}
	if mission.Status == models.StatusScheduled && len(mission.Manifest) == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "mission manifest must not be empty")
	}
	if target == models.StatusAtDepot && !mission.ManifestCollected() {
		// Re-verified against durable state; a client-held scan session is
		// never trusted for this guard.
		return dErrors.New(dErrors.CodeIllegalTransition, "manifest is not fully reconciled")
	}
	if target == models.StatusCompleted {
		if strings.TrimSpace(suppliedCode) == "" {
			return dErrors.New(dErrors.CodeCompletionCodeRequired, "completion code is required")
		}
		if !code.Verify(mission, suppliedCode) {
			s.metrics.RecordCodeMismatch()
			// The expected code must never appear in this message.
			return dErrors.New(dErrors.CodeCompletionCodeMismatch, "completion code does not match")
		}
	}
	return nil
}

// Scan submits one raw barcode read against the mission's manifest. A
// first-time match is persisted durably before the session is saved, so a
// lost session never loses a collected parcel.
func (s *Service) Scan(ctx context.Context, missionID id.MissionID, rawCode string) (*ScanResult, error) {
	ctx, span := s.tracer.Start(ctx, "mission.Scan")
	defer span.End()

	mission, err := s.store.FindByID(ctx, missionID)
	if err != nil {
		return nil, err
	}
	if mission.Status != models.StatusInProgress {
		return nil, dErrors.New(dErrors.CodeIllegalTransition, "scans are only accepted while collection is in progress")
	}

	session, err := s.sessions.Get(ctx, missionID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, err
		}
		session = reconcile.NewSession(mission, s.clock())
	}

	outcome, item := session.Submit(rawCode)
	if outcome == reconcile.OutcomeScanned {
		if err := s.store.MarkCollected(ctx, missionID, item.ParcelID); err != nil {
			// Durable write failed; the session is not saved so the scan
			// can be retried without corrupting prior progress.
			return nil, err
		}
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.metrics.RecordScan(string(outcome))
	scanned, total := session.Progress()
	s.logger.InfoContext(ctx, "manifest scan",
		"mission_id", missionID.String(),
		"outcome", string(outcome),
		"progress", strconv.Itoa(scanned)+"/"+strconv.Itoa(total),
	)

	return &ScanResult{
		Outcome: outcome,
		Scanned: scanned,
		Total:   total,
		Message: session.LastMessage,
	}, nil
}
