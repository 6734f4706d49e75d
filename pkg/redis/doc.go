// Package redis connects the service to Redis, which backs sessions and rate limit buckets
// when several instances share state.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := session.NewRedisStore(client, "sess")
//
// Healthcheck returns a readiness probe for the client.
package redis
