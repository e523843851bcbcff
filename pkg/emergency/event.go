package emergency

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// LatLng is a shared location attached to an emergency.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MapsURL renders the location as a Google Maps link for message bodies.
func (l LatLng) MapsURL() string {
	return fmt.Sprintf("https://maps.google.com/?q=%v,%v", l.Latitude, l.Longitude)
}

// Event is the initiating record of an emergency. RecipientContactIDs is a
// snapshot taken at creation time: later contact edits must not change who
// was already notified.
type Event struct {
	ID                  uuid.UUID   `json:"id"`
	OriginatorID        uuid.UUID   `json:"originator_id"`
	OriginatorName      string      `json:"originator_name,omitempty"`
	Location            *LatLng     `json:"location,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	RecipientContactIDs []uuid.UUID `json:"recipient_contact_ids"`
}

// NewEvent creates an emergency event, copying the recipient list so the
// snapshot cannot be mutated through the caller's slice.
func NewEvent(originatorID uuid.UUID, originatorName string, location *LatLng, recipientContactIDs []uuid.UUID) Event {
	return Event{
		ID:                  uuid.New(),
		OriginatorID:        originatorID,
		OriginatorName:      originatorName,
		Location:            location,
		CreatedAt:           time.Now(),
		RecipientContactIDs: slices.Clone(recipientContactIDs),
	}
}

// Title and body of the alert sent to every recipient.
func (e Event) title() string {
	return "EMERGENCY ALERT"
}

func (e Event) body() string {
	name := e.OriginatorName
	if name == "" {
		name = "Your contact"
	}
	body := name + " needs help!"
	if e.Location != nil {
		body += " Location: " + e.Location.MapsURL()
	}
	return body
}
