package alert

// Channel identifies which delivery path accepted a message.
type Channel string

const (
	ChannelPush   Channel = "push"
	ChannelSMS    Channel = "sms"
	ChannelQueued Channel = "queued"
)

// Outcome is the result of one Engine.Deliver invocation. It is transient:
// callers log it or aggregate it, nothing persists it.
type Outcome struct {
	Channel Channel
	Success bool
	Err     error
}
