package alert

import (
	"context"

	"github.com/google/uuid"
)

// Recipient describes where a single person can be reached. Either address
// may be empty; the Engine picks the best available channel.
type Recipient struct {
	ContactID   uuid.UUID `json:"contact_id"`
	Name        string    `json:"name,omitempty"`
	PushToken   string    `json:"push_token,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
}

// HasPushAddress reports whether the recipient can receive push notifications.
func (r Recipient) HasPushAddress() bool {
	return r.PushToken != ""
}

// HasPhoneNumber reports whether the recipient can receive SMS.
func (r Recipient) HasPhoneNumber() bool {
	return r.PhoneNumber != ""
}

// PushChannel sends one push notification to one push address.
// Implementations own their wire protocol and should return
// ErrChannelUnavailable or ErrDeliveryFailed (wrapped as needed).
type PushChannel interface {
	Send(ctx context.Context, pushToken, title, body string, payload map[string]any) error
}

// SMSChannel sends one text message to one phone number.
type SMSChannel interface {
	Send(ctx context.Context, phoneNumber, text string) error

	// Available reports whether SMS can be attempted on this device class
	// at all. It does not guarantee a subsequent Send will succeed.
	Available(ctx context.Context) bool
}
