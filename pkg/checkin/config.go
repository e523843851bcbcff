package checkin

import "time"

// Config carries the time-based policy for unanswered check-ins. The grace
// period drives the Overdue warning; the horizon drives final expiry.
type Config struct {
	OverdueGracePeriod time.Duration `env:"CHECKIN_OVERDUE_GRACE_PERIOD" envDefault:"4h"` // OverdueGracePeriod is how long a check-in may stay unanswered before it is marked overdue.
	ExpiryHorizon      time.Duration `env:"CHECKIN_EXPIRY_HORIZON" envDefault:"24h"`      // ExpiryHorizon is how long until an unanswered check-in expires for good.
}
