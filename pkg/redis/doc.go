// Package redis provides helpers for connecting to a Redis server.
//
// Connect wraps the go-redis client with retry logic driven by the Config
// struct, whose fields are populated from environment variables via
// github.com/caarlos0/env. The offline queue's durable store
// (offlinequeue.RedisStore) builds on the client returned from here.
//
//	cfg := redis.Config{ConnectionURL: "redis://localhost:6379/0"}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // handle error, probably terminate the application
//	}
//	defer client.Close()
package redis
