package store

import (
	"context"
	"sort"
	"sync"

	"pickup-gateway/internal/mission/models"
	id "pickup-gateway/pkg/domain"
	dErrors "pickup-gateway/pkg/domain-errors"
)

// InMemoryStore holds missions in process memory. It honors the same
// version semantics as the postgres store so service tests exercise the
// real concurrency contract.
type InMemoryStore struct {
	mu       sync.RWMutex
	missions map[id.MissionID]*models.Mission
	numbers  map[string]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		missions: make(map[id.MissionID]*models.Mission),
		numbers:  make(map[string]struct{}),
	}
}

func (s *InMemoryStore) Create(_ context.Context, mission *models.Mission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.missions[mission.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "mission already exists")
	}
	if _, exists := s.numbers[mission.MissionNumber]; exists {
		return dErrors.New(dErrors.CodeConflict, "mission number already in use")
	}
	s.missions[mission.ID] = mission.Clone()
	s.numbers[mission.MissionNumber] = struct{}{}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, missionID id.MissionID) (*models.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mission, ok := s.missions[missionID]
	if !ok {
		return nil, ErrNotFound
	}
	return mission.Clone(), nil
}

func (s *InMemoryStore) ListByDriver(_ context.Context, driverID id.DriverID) ([]*models.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var missions []*models.Mission
	for _, mission := range s.missions {
		if mission.DriverID == driverID {
			missions = append(missions, mission.Clone())
		}
	}
	sort.Slice(missions, func(i, j int) bool {
		return missions[i].CreatedAt.Before(missions[j].CreatedAt)
	})
	return missions, nil
}

func (s *InMemoryStore) Update(_ context.Context, mission *models.Mission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.missions[mission.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != mission.Version {
		return ErrConcurrentModification
	}
	updated := mission.Clone()
	updated.Version++
	s.missions[mission.ID] = updated
	mission.Version = updated.Version
	return nil
}

func (s *InMemoryStore) MarkCollected(_ context.Context, missionID id.MissionID, parcelID id.ParcelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mission, ok := s.missions[missionID]
	if !ok {
		return ErrNotFound
	}
	entry := mission.Entry(parcelID)
	if entry == nil {
		return dErrors.New(dErrors.CodeNotFound, "parcel not on mission manifest")
	}
	entry.Status = models.ParcelStatusCollected
	return nil
}

func (s *InMemoryStore) Ping(context.Context) error {
	return nil
}
