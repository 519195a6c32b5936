// Package code derives the human-copyable completion code that gates the
// terminal mission transition. The derivation is a shared secret computed
// from mission attributes, not a cryptographic credential: it guards
// against fat-fingered or stale completions, not against an adversary who
// knows the mission details.
package code

import (
	"strings"
	"time"

	"pickup-gateway/internal/mission/models"
	id "pickup-gateway/pkg/domain"
)

// Compute derives the completion code from the mission number suffix, the
// driver id, and the scheduled date. Pure and total: identical inputs
// always yield identical output.
//
// Derivation: last 4 characters of the mission number, then the driver id
// in canonical form, then the last 4 digits of the date as YYYYMMDD (the
// month and day), all upper-cased.
func Compute(missionNumber string, driverID id.DriverID, scheduled time.Time) string {
	suffix := missionNumber
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	datePart := scheduled.Format("20060102")
	datePart = datePart[len(datePart)-4:]
	return strings.ToUpper(suffix + driverID.String() + datePart)
}

// Verify recomputes the code for the mission and compares it with the
// supplied value, ignoring case and surrounding whitespace.
func Verify(m *models.Mission, supplied string) bool {
	supplied = strings.ToUpper(strings.TrimSpace(supplied))
	if supplied == "" {
		return false
	}
	return supplied == Compute(m.MissionNumber, m.DriverID, m.ScheduledDate)
}
