// Package offlinequeue provides durable at-least-once-attempt retry for
// messages that could not be delivered through any synchronous channel.
//
// The package is organised around three pieces:
//
//   - Queue    appends messages durably; enqueue fails only on persistence
//     failure, which the delivery engine surfaces as a terminal error
//   - Store    is the persistence interface (MemoryStore for tests and local
//     development, RedisStore for production)
//   - Drainer  subscribes to a connectivity.Monitor and redelivers queued
//     messages through the push channel whenever connectivity returns
//
// Queued messages are redelivered through push only. SMS is the synchronous
// last resort at send time; a message that reached the queue is waiting
// specifically for network recovery.
//
// Each failed redelivery increments the message's attempt count. Once the
// count reaches MaxAttempts the message is removed and a RetryExhausted event
// is emitted exactly once; the message is never retried again. No message
// leaves the store until its delivery, or its drop, has been durably
// recorded. A drain interrupted by shutdown leaves undelivered messages in
// place for the next drain.
package offlinequeue
