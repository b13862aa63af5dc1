// Package events publishes tournament events to Redis streams for the
// external notifier.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/nations-cup/services"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultStream = "tournament.matches.completed"

	typeMatchCompleted = "match_completed"
)

// StreamPublisher publishes completed matches to a Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

// NewStreamPublisher creates a publisher writing to stream, or to
// DefaultStream when stream is empty.
func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{client: client, stream: stream}
}

// NewClient parses a redis:// URL and checks the connection.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

func (p *StreamPublisher) Stream() string {
	return p.stream
}

// OnMatchCompleted adds one entry per completed match.
func (p *StreamPublisher) OnMatchCompleted(ctx context.Context, event services.MatchCompletedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling match event: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":          string(data),
			"type":          typeMatchCompleted,
			"match_id":      event.Match.ID.String(),
			"tournament_id": event.TournamentID.String(),
		},
	}).Err()
}
