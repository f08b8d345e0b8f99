package domain

import "time"

// AccountState is the activation state of an identity.
type AccountState string

const (
	StateActive   AccountState = "active"
	StateInactive AccountState = "inactive"
)

// validTransitions defines the allowed activation transitions.
var validTransitions = map[AccountState]map[Action]AccountState{
	StateActive:   {ActionDeactivate: StateInactive},
	StateInactive: {ActionActivate: StateActive},
}

// StateOf returns the activation state of an identity.
func StateOf(i *Identity) AccountState {
	if i.Active {
		return StateActive
	}
	return StateInactive
}

// Apply returns the state reached by applying action from s. Applying an
// action whose target state is already current is a no-op (changed=false).
func (s AccountState) Apply(action Action) (next AccountState, changed bool, err error) {
	if to, ok := validTransitions[s][action]; ok {
		return to, true, nil
	}
	switch action {
	case ActionActivate:
		return StateActive, false, nil
	case ActionDeactivate:
		return StateInactive, false, nil
	default:
		return s, false, ErrInvalidOperation
	}
}

// EventType names a committed lifecycle change.
type EventType string

const (
	EventRegistered  EventType = "user.registered"
	EventUpdated     EventType = "user.updated"
	EventActivated   EventType = "user.activated"
	EventDeactivated EventType = "user.deactivated"
	EventDeleted     EventType = "user.deleted"
)

// LifecycleEvent records a committed change to an identity.
type LifecycleEvent struct {
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
