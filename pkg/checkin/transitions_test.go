package checkin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/safecheck/pkg/checkin"
)

func TestCanApply(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from  checkin.Status
		event checkin.Event
		want  bool
	}{
		{checkin.StatusPending, checkin.EventRespond, true},
		{checkin.StatusPending, checkin.EventMarkOverdue, true},
		{checkin.StatusPending, checkin.EventExpire, true},
		{checkin.StatusOverdue, checkin.EventExpire, true},
		{checkin.StatusOverdue, checkin.EventRespond, false},
		{checkin.StatusOverdue, checkin.EventMarkOverdue, false},
		{checkin.StatusResponded, checkin.EventRespond, false},
		{checkin.StatusResponded, checkin.EventMarkOverdue, false},
		{checkin.StatusResponded, checkin.EventExpire, false},
		{checkin.StatusExpired, checkin.EventRespond, false},
		{checkin.StatusExpired, checkin.EventExpire, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, checkin.CanApply(tc.from, tc.event),
			"from %s on %s", tc.from, tc.event)
	}
}
