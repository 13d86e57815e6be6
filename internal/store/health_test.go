package store

var (
	_ HealthChecker = (*RedisStore)(nil)
	_ HealthChecker = (*PostgresStore)(nil)
)
