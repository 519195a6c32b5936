// Package handler is the thin HTTP layer over the mission service. It
// validates transport concerns and delegates; the state machine itself
// lives in the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pickup-gateway/internal/mission/models"
	"pickup-gateway/internal/mission/service"
	"pickup-gateway/internal/platform/middleware"
	"pickup-gateway/internal/transport/http/shared"
	id "pickup-gateway/pkg/domain"
	dErrors "pickup-gateway/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mission_mocks.go -package=mocks Service

// Service defines the mission operations the handler exposes.
type Service interface {
	Create(ctx context.Context, params service.CreateMissionParams) (*models.Mission, error)
	Get(ctx context.Context, missionID id.MissionID) (*models.Mission, error)
	ListByDriver(ctx context.Context, driverID id.DriverID) ([]*models.Mission, error)
	Transition(ctx context.Context, missionID id.MissionID, target models.Status, code string) (*models.Mission, error)
	Scan(ctx context.Context, missionID id.MissionID, rawCode string) (*service.ScanResult, error)
	CompletionCode(ctx context.Context, missionID id.MissionID) (string, error)
}

// Handler handles mission endpoints.
type Handler struct {
	logger    *slog.Logger
	missions  Service
	validator middleware.TokenValidator
}

// New creates a mission Handler.
func New(missions Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		missions:  missions,
		validator: validator,
	}
}

// Register mounts the mission routes on the chi router.
func (h *Handler) Register(r chi.Router) {
	missionRouter := chi.NewRouter()
	missionRouter.Use(middleware.Recovery(h.logger))
	missionRouter.Use(middleware.RequestID)
	missionRouter.Use(middleware.Logger(h.logger))
	missionRouter.Use(middleware.Timeout(30 * time.Second))
	missionRouter.Use(middleware.ContentTypeJSON)
	missionRouter.Use(middleware.Device)
	if h.validator != nil {
		missionRouter.Use(middleware.RequireAuth(h.validator, h.logger))
	}

	missionRouter.Get("/", h.handleList)
	missionRouter.Get("/{missionID}", h.handleGet)
	missionRouter.Post("/{missionID}/transition", h.handleTransition)
	missionRouter.Post("/{missionID}/scan", h.handleScan)

	// Dispatcher-only surface: mission creation and completion codes. The
	// code never reaches the driver's own client.
	dispatcher := missionRouter.With(middleware.RequireRole(middleware.RoleDispatcher, h.logger))
	dispatcher.Post("/", h.handleCreate)
	dispatcher.Get("/{missionID}/code", h.handleCode)

	r.Mount("/missions", missionRouter)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateMissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	scheduled, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "scheduled_date must be YYYY-MM-DD"))
		return
	}
	params := service.CreateMissionParams{
		DriverID:      id.DriverID(req.DriverID),
		ShipperID:     id.ShipperID(req.ShipperID),
		ScheduledDate: scheduled,
	}
	for _, parcel := range req.Parcels {
		params.Parcels = append(params.Parcels, models.ManifestEntry{
			ParcelID:       id.ParcelID(parcel.ParcelID),
			TrackingNumber: parcel.TrackingNumber,
		})
	}

	mission, err := h.missions.Create(ctx, params)
	if err != nil {
		h.logWarn(ctx, "create mission rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toMissionResponse(mission))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID, err := id.ParseDriverID(r.URL.Query().Get("driver_id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "driver_id query parameter is required"))
		return
	}
	missions, err := h.missions.ListByDriver(ctx, driverID)
	if err != nil {
		h.logWarn(ctx, "list missions failed", err)
		shared.WriteError(w, err)
		return
	}
	responses := make([]MissionResponse, 0, len(missions))
	for _, mission := range missions {
		responses = append(responses, toMissionResponse(mission))
	}
	shared.WriteJSON(w, http.StatusOK, MissionListResponse{Missions: responses})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	missionID, err := id.ParseMissionID(chi.URLParam(r, "missionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	mission, err := h.missions.Get(ctx, missionID)
	if err != nil {
		h.logWarn(ctx, "get mission failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toMissionResponse(mission))
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	missionID, err := id.ParseMissionID(chi.URLParam(r, "missionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	// Unknown status strings are rejected here, before any storage access.
	target, err := models.ParseStatus(req.TargetStatus)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	mission, err := h.missions.Transition(ctx, missionID, target, req.Code)
	if err != nil {
		h.logWarn(ctx, "mission transition rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toMissionResponse(mission))
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	missionID, err := id.ParseMissionID(chi.URLParam(r, "missionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req models.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.missions.Scan(ctx, missionID, req.RawCode)
	if err != nil {
		h.logWarn(ctx, "scan rejected", err)
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "scan handled",
		"mission_id", missionID.String(),
		"outcome", string(result.Outcome),
		"device", middleware.GetDevice(ctx),
		"request_id", middleware.GetRequestID(ctx),
	)
	shared.WriteJSON(w, http.StatusOK, ScanResponse{
		Outcome: string(result.Outcome),
		Scanned: result.Scanned,
		Total:   result.Total,
		Message: result.Message,
	})
}

func (h *Handler) handleCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	missionID, err := id.ParseMissionID(chi.URLParam(r, "missionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	completionCode, err := h.missions.CompletionCode(ctx, missionID)
	if err != nil {
		h.logWarn(ctx, "completion code lookup failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, CodeResponse{Code: completionCode})
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}
