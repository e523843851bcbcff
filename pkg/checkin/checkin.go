package checkin

import (
	"time"

	"github.com/google/uuid"
)

// Status represents where a check-in is in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusResponded Status = "responded"
	StatusOverdue   Status = "overdue"
	StatusExpired   Status = "expired"
)

// ResponseKind tags how the recipient answered.
type ResponseKind string

const (
	ResponseStandard ResponseKind = "standard" // positive/negative token
	ResponsePhoto    ResponseKind = "photo"    // media reference
	ResponseVoice    ResponseKind = "voice"    // media reference
	ResponseLocation ResponseKind = "location" // shared coordinates
	ResponseStatus   ResponseKind = "status"   // free-form status with expiry
)

// Default response tokens used when the contact has no custom ones.
const (
	DefaultPositiveToken = "YES"
	DefaultNegativeToken = "NO"
)

// CheckIn represents one outstanding request for a response. The positive
// and negative tokens are snapshotted from the contact at creation time and
// are authoritative for this check-in regardless of later contact edits.
type CheckIn struct {
	ID              uuid.UUID    `json:"id"`
	SenderID        uuid.UUID    `json:"sender_id"`
	RecipientID     uuid.UUID    `json:"recipient_id"` // contact relationship, not a person identity
	SenderName      string       `json:"sender_name,omitempty"`
	RecipientName   string       `json:"recipient_name,omitempty"`
	Question        string       `json:"question"`
	PositiveToken   string       `json:"positive_token"`
	NegativeToken   string       `json:"negative_token"`
	Status          Status       `json:"status"`
	Response        string       `json:"response,omitempty"`
	ResponseKind    ResponseKind `json:"response_kind,omitempty"`
	StatusExpiresAt *time.Time   `json:"status_expires_at,omitempty"` // only meaningful for ResponseStatus
	CreatedAt       time.Time    `json:"created_at"`
	RespondedAt     *time.Time   `json:"responded_at,omitempty"` // set iff Status == StatusResponded
}

// IsTerminal reports whether the check-in can accept no further response.
// Overdue is terminal for responses even though it is a warning sub-state.
func (c *CheckIn) IsTerminal() bool {
	return c.Status != StatusPending
}

// IsNegativeResponse reports whether the recipient answered with this
// check-in's negative token.
func (c *CheckIn) IsNegativeResponse() bool {
	return c.Status == StatusResponded &&
		c.ResponseKind == ResponseStandard &&
		c.Response == c.NegativeToken
}

// HasActiveStatus reports whether a status-kind response is still current.
func (c *CheckIn) HasActiveStatus(now time.Time) bool {
	return c.ResponseKind == ResponseStatus &&
		c.StatusExpiresAt != nil &&
		now.Before(*c.StatusExpiresAt)
}

// Preferences are the sender's notification opt-ins, read at trigger time.
type Preferences struct {
	NotifyOnAllResponses bool `json:"notify_on_all_responses"`
	NotifyOnNoResponse   bool `json:"notify_on_no_response"`
}
