package logger

import (
	"log/slog"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// CheckInID records the check-in identifier under the key "check_in_id".
// If id is nil, it returns an empty Attr.
func CheckInID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("check_in_id", id)
}

// ContactID records the contact identifier under the key "contact_id".
// If id is nil, it returns an empty Attr.
func ContactID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("contact_id", id)
}

// EmergencyID records the emergency event identifier under the key "emergency_id".
// If id is nil, it returns an empty Attr.
func EmergencyID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("emergency_id", id)
}

// MessageID records the queued message identifier under the key "message_id".
// If id is nil, it returns an empty Attr.
func MessageID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("message_id", id)
}

// Channel records the delivery channel name under the key "channel".
func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

// Attempts records a retry attempt count under the key "attempts".
func Attempts(n int) slog.Attr {
	return slog.Int("attempts", n)
}
