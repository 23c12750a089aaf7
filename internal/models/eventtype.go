package models

import (
	"encoding/json"
	"time"
)

// EventType is a bookable offering owned by a user (or a team, which this service
// does not resolve). Position drives display order; Metadata is schema-validated
// before an event type may appear on a public page.
type EventType struct {
	ID                   int64           `json:"id"`
	UserID               *int64          `json:"user_id"`
	TeamID               *int64          `json:"team_id"`
	Title                string          `json:"title"`
	Slug                 string          `json:"slug"`
	Description          *string         `json:"description"`
	Length               int             `json:"length"`
	Hidden               bool            `json:"hidden"`
	Position             int             `json:"position"`
	RequiresConfirmation bool            `json:"requires_confirmation"`
	Price                int             `json:"price"`
	Currency             string          `json:"currency"`
	RecurringEvent       json.RawMessage `json:"recurring_event"`
	Metadata             json.RawMessage `json:"metadata"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// EventTypeMetadata is the structured metadata carried by an event type.
// Validation tags are enforced by eventtypes.DecodeMetadata.
type EventTypeMetadata struct {
	DisableGuests                 *bool                  `json:"disableGuests,omitempty"`
	DisableStandardEmails         *bool                  `json:"disableStandardEmails,omitempty"`
	SmartContractAddress          *string                `json:"smartContractAddress,omitempty"`
	MultipleDuration              []int                  `json:"multipleDuration,omitempty" validate:"omitempty,dive,min=1,max=1440"`
	RequiresConfirmationThreshold *ConfirmationThreshold `json:"requiresConfirmationThreshold,omitempty"`
}

// ConfirmationThreshold delays auto-confirmation until a booking is closer than
// the given duration.
type ConfirmationThreshold struct {
	Time int    `json:"time" validate:"min=1"`
	Unit string `json:"unit" validate:"oneof=minutes hours"`
}
