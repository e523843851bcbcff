// Package checkin implements the check-in lifecycle: a single
// question/response exchange between a sender and a recipient, governed by a
// strict state machine.
//
// A check-in starts Pending and reaches exactly one terminal outcome:
//
//	Pending ──respond──▶ Responded   (terminal)
//	Pending ──mark overdue──▶ Overdue
//	Pending / Overdue ──expire──▶ Expired  (terminal)
//
// Transitions are monotonic: nothing ever re-enters Pending, and a response
// is accepted exactly once. When respond and the overdue timer race, the
// transition applied to the store first is authoritative; the loser is
// rejected with InvalidStateError (respond) or silently dropped (mark
// overdue). There is no last-write-wins on status.
//
// The Lifecycle service owns the trigger points that hand notifications to
// the alert delivery engine:
//
//   - creation notifies the recipient ("New Check-In")
//   - a response notifies the sender only when it matches the check-in's
//     negative token or the sender opted into all-response notifications
//   - the overdue transition notifies the sender only when they opted into
//     no-response notifications, and at most once per check-in
//   - expiry never notifies
//
// The status flip is persisted before any notification fires, and no lock is
// held across channel I/O. Notification delivery is best effort: a channel
// failure is absorbed by the delivery engine's own fallback chain and never
// fails the lifecycle operation.
//
// Per-check-in tokens are authoritative: Create snapshots the contact's
// custom positive/negative tokens (defaulting "YES"/"NO") into the record,
// and Respond compares against that snapshot, never against the live
// contact configuration.
package checkin
