package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pickup-gateway/internal/mission/handler"
	"pickup-gateway/internal/mission/handler/mocks"
	"pickup-gateway/internal/mission/models"
	"pickup-gateway/internal/mission/reconcile"
	"pickup-gateway/internal/mission/service"
	"pickup-gateway/internal/mission/store"
	"pickup-gateway/internal/platform/middleware"
	"pickup-gateway/internal/transport/http/shared"
	id "pickup-gateway/pkg/domain"
	dErrors "pickup-gateway/pkg/domain-errors"
	"pickup-gateway/pkg/testutil"
)

func newTestRouter(t *testing.T) (*mocks.MockService, chi.Router) {
	t.Helper()
	ctrl := gomock.NewController(t)
	missions := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.New(missions, logger, nil)
	router := chi.NewRouter()
	h.Register(router)
	return missions, router
}

func sampleMission() *models.Mission {
	missionID := id.NewMissionID()
	created := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
	return &models.Mission{
		ID:            missionID,
		MissionNumber: "PIK1741944600",
		DriverID:      7,
		ShipperID:     3,
		ScheduledDate: time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
		Status:        models.StatusInProgress,
		Manifest: []models.ManifestEntry{
			{MissionID: missionID, ParcelID: 101, TrackingNumber: "TRK-A", Status: models.ParcelStatusCollected},
			{MissionID: missionID, ParcelID: 102, TrackingNumber: "TRK-B", Status: models.ParcelStatusPending},
		},
		Version:   2,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestHandleGet(t *testing.T) {
	missions, router := newTestRouter(t)
	mission := sampleMission()
	missions.EXPECT().Get(gomock.Any(), mission.ID).Return(mission, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(t, http.MethodGet, "/missions/"+mission.ID.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.MissionResponse
	testutil.DecodeJSON(t, rec.Body, &resp)
	assert.Equal(t, mission.ID.String(), resp.ID)
	assert.Equal(t, "in_progress", resp.Status)
	assert.Equal(t, "Collection in progress", resp.StatusLabel)
	assert.Equal(t, 1, resp.Collected)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Manifest, 2)
	assert.True(t, resp.Manifest[0].Collected)
	assert.False(t, resp.Manifest[1].Collected)
	assert.Equal(t, "2025-03-14", resp.ScheduledDate)
}

func TestHandleGet_NotFound(t *testing.T) {
	missions, router := newTestRouter(t)
	missionID := id.NewMissionID()
	missions.EXPECT().Get(gomock.Any(), missionID).Return(nil, store.ErrNotFound)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(t, http.MethodGet, "/missions/"+missionID.String()))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGet_BadMissionID(t *testing.T) {
	_, router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(t, http.MethodGet, "/missions/not-a-uuid"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleList(t *testing.T) {
	missions, router := newTestRouter(t)
	mission := sampleMission()
	missions.EXPECT().ListByDriver(gomock.Any(), id.DriverID(7)).Return([]*models.Mission{mission}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(t, http.MethodGet, "/missions/?driver_id=7"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.MissionListResponse
	testutil.DecodeJSON(t, rec.Body, &resp)
	require.Len(t, resp.Missions, 1)
	assert.Equal(t, mission.MissionNumber, resp.Missions[0].MissionNumber)
}

func TestHandleList_MissingDriverID(t *testing.T) {
	_, router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(t, http.MethodGet, "/missions/"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTransition(t *testing.T) {
	missions, router := newTestRouter(t)
	mission := sampleMission()
	mission.Status = models.StatusAtDepot
	missions.EXPECT().
		Transition(gomock.Any(), mission.ID, models.StatusAtDepot, "").
		Return(mission, nil)

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/missions/"+mission.ID.String()+"/transition",
		models.TransitionRequest{TargetStatus: "at_depot"})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.MissionResponse
	testutil.DecodeJSON(t, rec.Body, &resp)
	assert.Equal(t, "at_depot", resp.Status)
}

func TestHandleTransition_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"illegal transition", dErrors.New(dErrors.CodeIllegalTransition, "cannot move mission from scheduled to completed"), http.StatusConflict},
		{"code required", dErrors.New(dErrors.CodeCompletionCodeRequired, "completion code is required"), http.StatusUnprocessableEntity},
		{"code mismatch", dErrors.New(dErrors.CodeCompletionCodeMismatch, "completion code does not match"), http.StatusUnprocessableEntity},
		{"concurrent modification", store.ErrConcurrentModification, http.StatusConflict},
		{"storage unavailable", dErrors.New(dErrors.CodeStorageUnavailable, "mission store unavailable"), http.StatusServiceUnavailable},
		{"not found", store.ErrNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			missions, router := newTestRouter(t)
			missionID := id.NewMissionID()
			missions.EXPECT().
				Transition(gomock.Any(), missionID, models.StatusCompleted, "460070314").
				Return(nil, tc.err)

			rec := httptest.NewRecorder()
			req := testutil.NewJSONRequest(t, http.MethodPost, "/missions/"+missionID.String()+"/transition",
				models.TransitionRequest{TargetStatus: "completed", Code: "460070314"})
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			var resp shared.ErrorResponse
			testutil.DecodeJSON(t, rec.Body, &resp)
			assert.Equal(t, string(dErrors.CodeOf(tc.err)), resp.Error)
		})
	}
}

func TestHandleTransition_UnknownStatus(t *testing.T) {
	// Rejected at the transport edge; the service is never called.
	_, router := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/missions/"+id.NewMissionID().String()+"/transition",
		models.TransitionRequest{TargetStatus: "delivered"})
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTransition_InvalidBody(t *testing.T) {
	_, router := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/missions/"+id.NewMissionID().String()+"/transition",
		nil)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleScan(t *testing.T) {
	missions, router := newTestRouter(t)
	missionID := id.NewMissionID()
	missions.EXPECT().
		Scan(gomock.Any(), missionID, "TRK-B").
		Return(&service.ScanResult{
			Outcome: reconcile.OutcomeScanned,
			Scanned: 2,
			Total:   2,
			Message: "parcel TRK-B collected (2/2)",
		}, nil)

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/missions/"+missionID.String()+"/scan",
		models.ScanRequest{RawCode: "TRK-B"})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.ScanResponse
	testutil.DecodeJSON(t, rec.Body, &resp)
	assert.Equal(t, "scanned", resp.Outcome)
	assert.Equal(t, 2, resp.Scanned)
	assert.Equal(t, 2, resp.Total)
	assert.NotEmpty(t, resp.Message)
}

func TestHandleScan_NotFoundOutcomeIsOK(t *testing.T) {
	// A no-match scan is an outcome, not an error status.
	missions, router := newTestRouter(t)
	missionID := id.NewMissionID()
	missions.EXPECT().
		Scan(gomock.Any(), missionID, "NOPE").
		Return(&service.ScanResult{Outcome: reconcile.OutcomeNotFound, Scanned: 1, Total: 2}, nil)

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/missions/"+missionID.String()+"/scan",
		models.ScanRequest{RawCode: "NOPE"})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.ScanResponse
	testutil.DecodeJSON(t, rec.Body, &resp)
	assert.Equal(t, "not_found", resp.Outcome)
}

func TestHandleCreate_RequiresDispatcherRole(t *testing.T) {
	_, router := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/missions/", models.CreateMissionRequest{})
	req = testutil.WithRole(req, "driver-7", middleware.RoleDriver)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleCreate(t *testing.T) {
	missions, router := newTestRouter(t)
	mission := sampleMission()
	mission.Status = models.StatusScheduled
	missions.EXPECT().
		Create(gomock.Any(), service.CreateMissionParams{
			DriverID:      7,
			ShipperID:     3,
			ScheduledDate: time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
			Parcels: []models.ManifestEntry{
				{ParcelID: 101, TrackingNumber: "TRK-A"},
				{ParcelID: 102, TrackingNumber: "TRK-B"},
			},
		}).
		Return(mission, nil)

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/missions/", models.CreateMissionRequest{
		DriverID:      7,
		ShipperID:     3,
		ScheduledDate: "2025-03-14",
		Parcels: []models.ParcelAssignment{
			{ParcelID: 101, TrackingNumber: "TRK-A"},
			{ParcelID: 102, TrackingNumber: "TRK-B"},
		},
	})
	req = testutil.WithRole(req, "dispatch-1", middleware.RoleDispatcher)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp handler.MissionResponse
	testutil.DecodeJSON(t, rec.Body, &resp)
	assert.Equal(t, "scheduled", resp.Status)
	assert.Equal(t, mission.MissionNumber, resp.MissionNumber)
}

func TestHandleCreate_BadDate(t *testing.T) {
	_, router := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/missions/", models.CreateMissionRequest{
		DriverID:      7,
		ShipperID:     3,
		ScheduledDate: "14/03/2025",
	})
	req = testutil.WithRole(req, "dispatch-1", middleware.RoleDispatcher)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCode(t *testing.T) {
	missions, router := newTestRouter(t)
	missionID := id.NewMissionID()
	missions.EXPECT().CompletionCode(gomock.Any(), missionID).Return("460070314", nil)

	rec := httptest.NewRecorder()
	req := testutil.NewRequest(t, http.MethodGet, "/missions/"+missionID.String()+"/code")
	req = testutil.WithRole(req, "dispatch-1", middleware.RoleDispatcher)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.CodeResponse
	testutil.DecodeJSON(t, rec.Body, &resp)
	assert.Equal(t, "460070314", resp.Code)
}

func TestHandleCode_DriverForbidden(t *testing.T) {
	_, router := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := testutil.NewRequest(t, http.MethodGet, "/missions/"+id.NewMissionID().String()+"/code")
	req = testutil.WithRole(req, "driver-7", middleware.RoleDriver)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestContentTypeRejected(t *testing.T) {
	_, router := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/missions/"+id.NewMissionID().String()+"/scan", nil)
	req.Header.Set("Content-Type", "text/plain")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
