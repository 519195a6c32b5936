package models

import (
	dErrors "pickup-gateway/pkg/domain-errors"
)

// Status is the lifecycle state of a mission. It only changes through the
// transition table below; there is no generic partial-update path.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusAtDepot    Status = "at_depot"
	StatusCompleted  Status = "completed"
	StatusRefused    Status = "refused"
	StatusCancelled  Status = "cancelled"
)

// StatusInfo is the single enum-to-metadata table. Presentation layers
// consume it; they do not duplicate it.
type StatusInfo struct {
	Label    string
	Terminal bool
}

var statusInfo = map[Status]StatusInfo{
	StatusScheduled:  {Label: "Scheduled", Terminal: false},
	StatusAccepted:   {Label: "Accepted by driver", Terminal: false},
	StatusInProgress: {Label: "Collection in progress", Terminal: false},
	StatusAtDepot:    {Label: "Arrived at depot", Terminal: false},
	StatusCompleted:  {Label: "Completed", Terminal: true},
	StatusRefused:    {Label: "Refused by driver", Terminal: true},
	StatusCancelled:  {Label: "Cancelled", Terminal: true},
}

// transitions encodes every legal edge of the state machine. cancelled is
// the administrative override and is reachable from any non-terminal state.
var transitions = map[Status][]Status{
	StatusScheduled:  {StatusAccepted, StatusRefused, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusAtDepot, StatusCancelled},
	StatusAtDepot:    {StatusCompleted, StatusCancelled},
}

// ParseStatus validates an external status string. Unknown strings are
// rejected, never silently accepted.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := statusInfo[status]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "unknown mission status: "+s)
	}
	return status, nil
}

// Valid reports whether the status is one of the defined enum values.
func (s Status) Valid() bool {
	_, ok := statusInfo[s]
	return ok
}

// Label returns the display label for the status.
func (s Status) Label() string {
	return statusInfo[s].Label
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return statusInfo[s].Terminal
}

// CanTransition reports whether the edge from -> to exists in the table.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
