package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSubmit  EventType = "submit"
	EventResolve EventType = "resolve"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Token     uint64    `json:"token"`
}

// SubmitEvent is fired when a submission enters Pending.
type SubmitEvent struct {
	EventBase
	URL string `json:"url"`
}

// ResolveEvent is fired when a submission leaves Pending.
type ResolveEvent struct {
	EventBase
	URL      string        `json:"url"`
	Phase    Phase         `json:"phase"`
	Kind     FailureKind   `json:"kind,omitempty"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
	Days     int           `json:"days"`
	// Stale is set when the resolution arrived after a newer submission started
	// and was therefore discarded.
	Stale bool `json:"stale,omitempty"`
}

// LifecycleHooks defines callbacks for controller observability.
type LifecycleHooks struct {
	OnSubmit  func(context.Context, *SubmitEvent)
	OnResolve func(context.Context, *ResolveEvent)
}
