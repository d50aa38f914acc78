package store

import (
	"context"
	"encoding/json"
	"path"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
)

// The redis store keeps the session transcripts in Redis lists.
// The keys namespace is organized as follows:
// - `<prefix>/chatstore/<sessionID>/messages` for the session messages
// - `<prefix>/chatstore/sessions` for the set of session IDs

type redisStore struct {
	client      *redis.Client
	prefix      string
	maxMessages int
}

// NewRedisStore returns a store backed by Redis
func NewRedisStore(client *redis.Client, prefix string, opts ...Option) MessageStore {
	o := newOptions(opts)
	return &redisStore{
		client:      client,
		prefix:      prefix,
		maxMessages: o.maxMessages,
	}
}

func (m *redisStore) messagesKey(sessionID string) string {
	return path.Join(m.prefix, "chatstore", sessionID, "messages")
}

func (m *redisStore) sessionsKey() string {
	return path.Join(m.prefix, "chatstore", "sessions")
}

func (m *redisStore) Messages(ctx context.Context, sessionID string) ([]llms.Message, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	data, err := m.client.LRange(ctx, m.messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get messages from Redis")
	}

	msgs := make([]llms.Message, 0, len(data))
	for _, item := range data {
		var r record
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			logger.ContextKV(ctx, xlog.ERROR,
				"reason", "unmarshal_message",
				"session", sessionID,
				"err", err.Error())
			continue
		}
		msgs = append(msgs, r.message())
	}
	return msgs, nil
}

func (m *redisStore) Add(ctx context.Context, sessionID string, msgs ...llms.Message) error {
	if sessionID == "" {
		return ErrInvalidSession
	}
	if len(msgs) == 0 {
		return nil
	}

	values := make([]any, 0, len(msgs))
	for _, msg := range msgs {
		data, err := json.Marshal(toRecord(msg))
		if err != nil {
			return errors.Wrap(err, "failed to marshal message")
		}
		values = append(values, data)
	}

	key := m.messagesKey(sessionID)
	pipe := m.client.Pipeline()
	pipe.RPush(ctx, key, values...)
	if m.maxMessages > 0 {
		pipe.LTrim(ctx, key, int64(-m.maxMessages), -1)
	}
	pipe.SAdd(ctx, m.sessionsKey(), sessionID)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to store message in Redis")
	}
	return nil
}

func (m *redisStore) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSession
	}

	pipe := m.client.Pipeline()
	pipe.Del(ctx, m.messagesKey(sessionID))
	pipe.SRem(ctx, m.sessionsKey(), sessionID)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to reset session in Redis")
	}
	return nil
}

func (m *redisStore) Sessions(ctx context.Context) ([]string, error) {
	ids, err := m.client.SMembers(ctx, m.sessionsKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to list sessions from Redis")
	}
	slices.Sort(ids)
	return ids, nil
}
