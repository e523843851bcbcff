// Package alert delivers one notification to one recipient with channel
// fallback: push first, SMS second, durable offline queue as the backstop.
//
// The Engine owns the single authoritative fallback decision. Callers never
// pick a channel themselves; they hand the Engine a recipient and a message
// and get back an Outcome naming the channel that accepted the message.
// Handing the message to the offline queue counts as a successful outcome:
// the delivery obligation has been handed off, not dropped. Only a queue
// persistence failure yields Success=false, because at that point the message
// has no delivery path at all.
//
// Channels are tried strictly in order, never concurrently: racing SMS
// against an in-flight push would risk duplicate delivery. Push is preferred
// because it is cheaper and carries a structured payload; SMS is the
// resilience fallback for connectivity loss.
//
// PushChannel and SMSChannel are capability abstractions. Adapters own their
// wire protocols (Expo push, Twilio, carrier SMS, ...); the Engine only cares
// about success, ErrChannelUnavailable, or ErrDeliveryFailed.
package alert
