package reconcile

import (
	"context"

	id "pickup-gateway/pkg/domain"
	dErrors "pickup-gateway/pkg/domain-errors"
)

// ErrSessionNotFound is returned when no scan session is active for a
// mission. Callers start a fresh session from durable state.
var ErrSessionNotFound = dErrors.New(dErrors.CodeNotFound, "no active scan session for mission")

// SessionStore persists in-flight scan sessions. One session per mission;
// the session is scoped to a single collection run.
type SessionStore interface {
	Get(ctx context.Context, missionID id.MissionID) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, missionID id.MissionID) error
}
