package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// ScrapeRunsStream receives one entry per finished scrape run
const ScrapeRunsStream = "courtside.scrape.runs"

// RunSummary describes one scrape run
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Trigger    string    `json:"trigger"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Games      int       `json:"games"`
	Records    int       `json:"records"`
	Written    int       `json:"written"`
	Replaced   int       `json:"replaced"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Succeeded reports whether the run finished without error
func (s RunSummary) Succeeded() bool {
	return s.Error == ""
}

// Publisher records finished scrape runs
type Publisher interface {
	PublishRun(ctx context.Context, summary RunSummary) error
}

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: ScrapeRunsStream,
		maxLen: 1000,
	}
}

// NewRedisPublisher creates a new Redis stream publisher with its own connection
func NewRedisPublisher(redisURL string) (*RedisStreamPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewRedisStreamPublisher(client), nil
}

// Close closes the Redis connection
func (p *RedisStreamPublisher) Close() error {
	return p.client.Close()
}

// PublishRun appends the run summary to the scrape runs stream
func (p *RedisStreamPublisher) PublishRun(ctx context.Context, summary RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"run_id":    summary.RunID,
			"data":      string(data),
			"timestamp": summary.FinishedAt.Unix(),
		},
	}).Err()
}

// RecentRuns reads the newest count summaries, newest first
func (p *RedisStreamPublisher) RecentRuns(ctx context.Context, count int64) ([]RunSummary, error) {
	entries, err := p.client.XRevRangeN(ctx, p.stream, "+", "-", count).Result()
	if err != nil {
		return nil, err
	}

	runs := make([]RunSummary, 0, len(entries))
	for _, entry := range entries {
		raw, ok := entry.Values["data"].(string)
		if !ok {
			continue
		}
		var summary RunSummary
		if err := json.Unmarshal([]byte(raw), &summary); err != nil {
			continue
		}
		runs = append(runs, summary)
	}
	return runs, nil
}
