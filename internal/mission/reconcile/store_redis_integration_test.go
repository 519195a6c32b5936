//go:build integration

package reconcile_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pickup-gateway/internal/mission/models"
	"pickup-gateway/internal/mission/reconcile"
	id "pickup-gateway/pkg/domain"
	"pickup-gateway/pkg/testutil/containers"
)

type RedisSessionStoreSuite struct {
	suite.Suite
	ctx   context.Context
	redis *containers.RedisContainer
	store *reconcile.RedisSessionStore
}

func TestRedisSessionStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSessionStoreSuite))
}

func (s *RedisSessionStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
	s.store = reconcile.NewRedisSessionStore(s.redis.Client, time.Hour)
}

func (s *RedisSessionStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisSessionStoreSuite) newSession() *reconcile.Session {
	missionID := id.NewMissionID()
	mission := &models.Mission{
		ID:            missionID,
		MissionNumber: "PIK1700000000",
		DriverID:      7,
		Status:        models.StatusInProgress,
		Manifest: []models.ManifestEntry{
			{MissionID: missionID, ParcelID: 101, TrackingNumber: "TRK-A", Status: models.ParcelStatusPending},
			{MissionID: missionID, ParcelID: 102, TrackingNumber: "TRK-B", Status: models.ParcelStatusPending},
		},
	}
	return reconcile.NewSession(mission, time.Now().UTC())
}

func (s *RedisSessionStoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, id.NewMissionID())
	s.ErrorIs(err, reconcile.ErrSessionNotFound)
}

func (s *RedisSessionStoreSuite) TestSaveGetRoundTrip() {
	session := s.newSession()
	outcome, _ := session.Submit("TRK-A")
	s.Require().Equal(reconcile.OutcomeScanned, outcome)
	s.Require().NoError(s.store.Save(s.ctx, session))

	loaded, err := s.store.Get(s.ctx, session.MissionID)
	s.Require().NoError(err)
	s.Equal(session.MissionID, loaded.MissionID)
	s.Require().Len(loaded.Manifest, 2)
	s.True(loaded.Scanned[101])
	s.False(loaded.Scanned[102])
	s.NotEmpty(loaded.LastMessage)

	// The loaded session keeps working where the saved one left off.
	outcome, _ = loaded.Submit("TRK-A")
	s.Equal(reconcile.OutcomeAlreadyScanned, outcome)
	outcome, _ = loaded.Submit("TRK-B")
	s.Equal(reconcile.OutcomeScanned, outcome)
	s.True(loaded.IsComplete())
}

func (s *RedisSessionStoreSuite) TestDelete() {
	session := s.newSession()
	s.Require().NoError(s.store.Save(s.ctx, session))
	s.Require().NoError(s.store.Delete(s.ctx, session.MissionID))
	_, err := s.store.Get(s.ctx, session.MissionID)
	s.ErrorIs(err, reconcile.ErrSessionNotFound)
}

func (s *RedisSessionStoreSuite) TestExpiry() {
	shortLived := reconcile.NewRedisSessionStore(s.redis.Client, 500*time.Millisecond)
	session := s.newSession()
	s.Require().NoError(shortLived.Save(s.ctx, session))

	time.Sleep(time.Second)
	_, err := shortLived.Get(s.ctx, session.MissionID)
	s.ErrorIs(err, reconcile.ErrSessionNotFound)
}
