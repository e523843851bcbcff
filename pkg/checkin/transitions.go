package checkin

// Event triggers a status transition.
type Event string

const (
	EventRespond     Event = "respond"
	EventMarkOverdue Event = "mark_overdue"
	EventExpire      Event = "expire"
)

// transitions is the full state machine as a [from][event] lookup.
// Responded and Expired are terminal and deliberately absent: nothing
// transitions out of them, and nothing ever re-enters Pending.
var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventRespond:     StatusResponded,
		EventMarkOverdue: StatusOverdue,
		EventExpire:      StatusExpired,
	},
	StatusOverdue: {
		// A longer horizon than Overdue; carries no further notification
		// obligation.
		EventExpire: StatusExpired,
	},
}

// nextStatus resolves the target status for an event, or nil-safe failure
// when the transition is not in the table.
func nextStatus(from Status, event Event) (Status, bool) {
	byEvent, ok := transitions[from]
	if !ok {
		return "", false
	}
	to, ok := byEvent[event]
	return to, ok
}

// CanApply reports whether the event is legal in the given status.
func CanApply(from Status, event Event) bool {
	_, ok := nextStatus(from, event)
	return ok
}
