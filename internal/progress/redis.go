// internal/progress/redis.go
//
// Redis-backed Tracker. Each language is one set keyed "<prefix>:progress:<lang>".
// SADD reports whether a member was new, which gives Mark compare-and-set
// semantics across server processes sharing the same Redis.

package progress

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/emojiquest/internal/puzzles"
)

type redisTracker struct {
	client *redis.Client
	prefix string
}

// NewRedisTracker creates a Tracker storing sets under prefix.
func NewRedisTracker(client *redis.Client, prefix string) Tracker {
	if prefix == "" {
		prefix = "emojiquest"
	}
	return &redisTracker{client: client, prefix: prefix}
}

func (t *redisTracker) key(lang puzzles.Lang) string {
	return fmt.Sprintf("%s:progress:%s", t.prefix, lang)
}

func (t *redisTracker) Consumed(ctx context.Context, lang puzzles.Lang) ([]int, error) {
	members, err := t.client.SMembers(ctx, t.key(lang)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(members))
	for _, m := range members {
		n, err := strconv.Atoi(m)
		if err != nil {
			// foreign member; not one of ours
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (t *redisTracker) Mark(ctx context.Context, lang puzzles.Lang, index int) (bool, error) {
	added, err := t.client.SAdd(ctx, t.key(lang), strconv.Itoa(index)).Result()
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

func (t *redisTracker) Reset(ctx context.Context, lang puzzles.Lang) error {
	return t.client.Del(ctx, t.key(lang)).Err()
}
