package alert

import "errors"

var (
	// ErrChannelUnavailable is returned by a channel adapter that cannot
	// attempt delivery at all (no capability on this device class, adapter
	// not configured). Triggers fallback, never surfaced to callers.
	ErrChannelUnavailable = errors.New("channel unavailable")

	// ErrDeliveryFailed is returned by a channel adapter that attempted
	// delivery and failed. Triggers fallback, never surfaced to callers.
	ErrDeliveryFailed = errors.New("delivery attempt failed")

	// ErrMonitorNil is returned when constructing an Engine without a
	// connectivity monitor.
	ErrMonitorNil = errors.New("connectivity monitor cannot be nil")

	// ErrPushChannelNil is returned when constructing an Engine without a
	// push channel.
	ErrPushChannelNil = errors.New("push channel cannot be nil")

	// ErrQueueNil is returned when constructing an Engine without an offline
	// queue.
	ErrQueueNil = errors.New("offline queue cannot be nil")
)
