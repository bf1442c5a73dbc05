package redis

// Config holds Redis connection settings for the session store.
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	PoolSize     int
	MinIdleConns int
}

func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379/0",
		PoolSize:     10,
		MinIdleConns: 2,
	}
}
