// Package emergency notifies every contact of an emergency event
// independently: one recipient's failure never blocks or masks another's.
//
// The recipient list is snapshotted into the Event at creation time, so
// contact edits made after the alarm was raised cannot change who was
// already notified. Fanout resolves the snapshot to reachable recipients up
// front (recipient resolution is the only error that fails the whole call)
// and then invokes the alert delivery engine concurrently per recipient,
// collecting one Delivery per contact regardless of individual outcomes.
// A recipient whose channels all fail simply ends up queued; the batch call
// itself does not raise.
package emergency
