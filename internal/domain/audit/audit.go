package audit

import (
	"errors"
	"strings"
	"time"
)

// Action is the catalog change that was recorded.
type Action string

const (
	ActionCreate Action = "created"
	ActionUpdate Action = "updated"
	ActionDelete Action = "deleted"
)

// Domain errors
var (
	ErrInvalidAction = errors.New("action must be one of: created, updated, deleted")
	ErrEmptyActor    = errors.New("actor cannot be empty")
)

// Event is one admin change to the activity catalog.
type Event struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Action        Action    `json:"action"`
	Actor         string    `json:"actor"`
	ActivityID    int       `json:"activity_id"`
	ActivityTitle string    `json:"activity_title"`
	RequestID     string    `json:"request_id,omitempty"`
}

// ParseAction maps a free-form action name to an Action.
// POST: ok is false for unknown names
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return a, true
	}
	return "", false
}

// Validate checks that the event can be stored.
// PRE: none
// POST: Returns nil if valid, or the first failing rule
func (e Event) Validate() error {
	if _, ok := ParseAction(string(e.Action)); !ok {
		return ErrInvalidAction
	}
	if strings.TrimSpace(e.Actor) == "" {
		return ErrEmptyActor
	}
	return nil
}
