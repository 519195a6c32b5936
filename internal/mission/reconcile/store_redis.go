package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	id "pickup-gateway/pkg/domain"
	dErrors "pickup-gateway/pkg/domain-errors"
)

const sessionKeyPrefix = "scan:session:"

// RedisSessionStore shares scan sessions across gateway instances. Sessions
// expire after the configured TTL; an expired session is simply restarted
// from durable state, so expiry never loses collected parcels.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, missionID id.MissionID) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+missionID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "load scan session")
	}
	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode scan session")
	}
	if session.Scanned == nil {
		session.Scanned = make(map[id.ParcelID]bool)
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode scan session")
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.MissionID.String(), payload, s.ttl).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "save scan session")
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, missionID id.MissionID) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+missionID.String()).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "delete scan session")
	}
	return nil
}
