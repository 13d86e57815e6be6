package store

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options selects and configures a PlayerStore backend.
type Options struct {
	Backend     string
	DynamoTable string
	RedisURL    string
	RedisKey    string
	PostgresDSN string
}

// Open connects the configured backend.
func Open(ctx context.Context, opts Options) (PlayerStore, error) {
	switch opts.Backend {
	case BackendDynamoDB:
		return NewDynamoStore(ctx, opts.DynamoTable)
	case BackendRedis:
		return NewRedisStore(opts.RedisURL, opts.RedisKey)
	case BackendPostgres:
		return NewPostgresStore(opts.PostgresDSN)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
