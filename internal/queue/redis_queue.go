package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scrimworks/quartermaster/internal/events"

	"github.com/redis/go-redis/v9"
)

// RosterEventStream is the stream every roster event is published to.
const RosterEventStream = "roster:events"

// RedisQueueService provides queue functionality using Redis Streams
type RedisQueueService struct {
	client *redis.Client
}

// NewRedisQueueService creates a new Redis queue service
func NewRedisQueueService(client *redis.Client) *RedisQueueService {
	return &RedisQueueService{
		client: client,
	}
}

// Publish adds a roster event to the stream. Implements events.Publisher.
func (s *RedisQueueService) Publish(ctx context.Context, event *events.RosterEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal roster event: %w", err)
	}

	// XADD stream * data <json>
	args := &redis.XAddArgs{
		Stream: RosterEventStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}

	_, err = s.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}

	return nil
}

// Dequeue reads one roster event using a consumer group.
// Returns (event, messageID, error); a nil event means the block timed out.
func (s *RedisQueueService) Dequeue(ctx context.Context, groupName, consumerName string, blockTime time.Duration) (*events.RosterEvent, string, error) {
	// XREADGROUP GROUP group consumer BLOCK milliseconds COUNT 1 STREAMS stream >
	args := &redis.XReadGroupArgs{
		Group:    groupName,
		Consumer: consumerName,
		Streams:  []string{RosterEventStream, ">"}, // ">" means new messages only
		Count:    1,
		Block:    blockTime,
	}

	streams, err := s.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if err == redis.Nil {
			// No messages available (timeout)
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := streams[0].Messages[0]

	dataStr, ok := msg.Values["data"].(string)
	if !ok {
		return nil, "", fmt.Errorf("invalid message format: data field missing")
	}

	var event events.RosterEvent
	if err := json.Unmarshal([]byte(dataStr), &event); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal roster event: %w", err)
	}

	return &event, msg.ID, nil
}

// Ack acknowledges successful processing of a message
func (s *RedisQueueService) Ack(ctx context.Context, groupName, messageID string) error {
	return s.client.XAck(ctx, RosterEventStream, groupName, messageID).Err()
}

// CreateConsumerGroup creates a consumer group for the stream if it doesn't exist
func (s *RedisQueueService) CreateConsumerGroup(ctx context.Context, groupName string) error {
	// XGROUP CREATE stream group 0 MKSTREAM
	err := s.client.XGroupCreateMkStream(ctx, RosterEventStream, groupName, "0").Err()
	if err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists" {
		// Group already exists, this is fine
		return nil
	}
	return err
}
