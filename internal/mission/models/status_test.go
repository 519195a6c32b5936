package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{
		"scheduled", "accepted", "in_progress", "at_depot",
		"completed", "refused", "cancelled",
	} {
		status, err := ParseStatus(valid)
		require.NoError(t, err, valid)
		assert.Equal(t, Status(valid), status)
	}

	for _, invalid := range []string{"", "SCHEDULED", "done", "in-progress"} {
		_, err := ParseStatus(invalid)
		assert.Error(t, err, "%q must be rejected", invalid)
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusScheduled.Terminal())
	assert.False(t, StatusAccepted.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.False(t, StatusAtDepot.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusRefused.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusScheduled, StatusAccepted},
		{StatusScheduled, StatusRefused},
		{StatusScheduled, StatusCancelled},
		{StatusAccepted, StatusInProgress},
		{StatusAccepted, StatusCancelled},
		{StatusInProgress, StatusAtDepot},
		{StatusInProgress, StatusCancelled},
		{StatusAtDepot, StatusCompleted},
		{StatusAtDepot, StatusCancelled},
	}
	for _, edge := range allowed {
		assert.True(t, CanTransition(edge.from, edge.to), "%s -> %s", edge.from, edge.to)
	}

	denied := []struct{ from, to Status }{
		{StatusScheduled, StatusInProgress},
		{StatusScheduled, StatusCompleted},
		{StatusAccepted, StatusRefused},
		{StatusAccepted, StatusAtDepot},
		{StatusInProgress, StatusCompleted},
		{StatusInProgress, StatusRefused},
		{StatusAtDepot, StatusInProgress},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusAtDepot},
		{StatusRefused, StatusAccepted},
		{StatusCancelled, StatusScheduled},
		{StatusAccepted, StatusAccepted},
	}
	for _, edge := range denied {
		assert.False(t, CanTransition(edge.from, edge.to), "%s -> %s", edge.from, edge.to)
	}
}

func TestMission_ManifestCollected(t *testing.T) {
	mission := &Mission{Manifest: []ManifestEntry{
		{ParcelID: 1, Status: ParcelStatusPending},
		{ParcelID: 2, Status: ParcelStatusCollected},
	}}
	assert.False(t, mission.ManifestCollected())
	assert.Equal(t, 1, mission.CollectedCount())

	mission.Manifest[0].Status = ParcelStatusCollected
	assert.True(t, mission.ManifestCollected())
	assert.Equal(t, 2, mission.CollectedCount())

	empty := &Mission{}
	assert.True(t, empty.ManifestCollected())
}

func TestMission_Clone(t *testing.T) {
	mission := &Mission{Manifest: []ManifestEntry{{ParcelID: 1, Status: ParcelStatusPending}}}
	cloned := mission.Clone()
	cloned.Manifest[0].Status = ParcelStatusCollected
	assert.Equal(t, ParcelStatusPending, mission.Manifest[0].Status)
}
