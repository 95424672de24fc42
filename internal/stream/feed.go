package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Feed is a per-principal notification feed backed by a capped Redis list.
// Push and Drain are both O(feed length); entries expire with the feed key so
// an idle principal's feed does not linger.
type Feed struct {
	client *redis.Client
	maxLen int
	ttl    time.Duration
}

// NewFeed builds a feed over the given Redis client.
func NewFeed(client *redis.Client, maxLen int) *Feed {
	if maxLen <= 0 {
		maxLen = 100
	}
	return &Feed{client: client, maxLen: maxLen, ttl: 24 * time.Hour}
}

func feedKey(principalID string) string {
	return fmt.Sprintf("notify:feed:%s", principalID)
}

// Push appends a serialized notification to the principal's feed, trimming to
// the configured cap.
func (f *Feed) Push(ctx context.Context, principalID string, payload []byte) error {
	key := feedKey(principalID)
	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(f.maxLen-1))
	pipe.Expire(ctx, key, f.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Drain pops every pending entry from the principal's feed, oldest first.
// Returns nil with no error when the feed is empty.
func (f *Feed) Drain(ctx context.Context, principalID string) ([][]byte, error) {
	key := feedKey(principalID)
	var drained [][]byte
	for {
		val, err := f.client.RPop(ctx, key).Bytes()
		if err == redis.Nil {
			return drained, nil
		}
		if err != nil {
			return drained, err
		}
		drained = append(drained, val)
	}
}
