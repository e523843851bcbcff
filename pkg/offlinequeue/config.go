package offlinequeue

// Config carries the environment-driven settings for the offline queue.
type Config struct {
	KeyPrefix   string `env:"OFFLINE_QUEUE_KEY_PREFIX" envDefault:"safecheck:queue"` // KeyPrefix namespaces the Redis keys of the durable store.
	MaxAttempts int    `env:"OFFLINE_QUEUE_MAX_ATTEMPTS" envDefault:"3"`            // MaxAttempts is the number of failed redeliveries before a message is dropped.
}
