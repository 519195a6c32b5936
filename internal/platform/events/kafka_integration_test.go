//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"pickup-gateway/internal/platform/events"
	"pickup-gateway/pkg/testutil/containers"
)

func TestKafkaPublisherPublishesStatusChanges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	redpanda := containers.NewRedpandaContainer(t)
	redpanda.CreateTopic(t, events.DefaultTopic)

	publisher, err := events.NewKafkaPublisher([]string{redpanda.Broker}, events.DefaultTopic)
	require.NoError(t, err)
	defer publisher.Close()

	occurred := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	event := events.StatusChange{
		MissionID:     "8e2e0a6e-7e3e-4b8f-9f3f-0d6f7a1b2c3d",
		MissionNumber: "PIK1741944600",
		DriverID:      7,
		From:          "at_depot",
		To:            "completed",
		OccurredAt:    occurred,
	}
	require.NoError(t, publisher.PublishStatusChange(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Broker),
		kgo.ConsumeTopics(events.DefaultTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, event.MissionID, string(records[0].Key))

	var decoded events.StatusChange
	require.NoError(t, json.Unmarshal(records[0].Value, &decoded))
	assert.Equal(t, event.MissionNumber, decoded.MissionNumber)
	assert.Equal(t, "at_depot", decoded.From)
	assert.Equal(t, "completed", decoded.To)
	assert.True(t, decoded.OccurredAt.Equal(occurred))
}
