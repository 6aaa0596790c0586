package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stacks-chat-assistant/server/internal/assistant/model"
	errx "github.com/stacks-chat-assistant/server/internal/core/error"
	logx "github.com/stacks-chat-assistant/server/pkg/logger"
)

type RedisChatRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisChatRepository(rdb redis.Cmdable, ttl time.Duration) *RedisChatRepository {
	return &RedisChatRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisChatRepository) conversationKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:turns", conversationID)
}

func (r *RedisChatRepository) AddTurn(ctx context.Context, conversationID string, turn model.ConversationTurn) error {
	b, err := json.Marshal(turn)
	if err != nil {
		logx.Error().Err(err).Str("conversationID", conversationID).Msg("failed to marshal turn")
		return fmt.Errorf("marshal turn: %w", err)
	}
	key := r.conversationKey(conversationID)

	// append turn
	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push turn to redis")
		return errx.WrapRedis(err)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on conversation key")
		}
	}
	return nil
}

func (r *RedisChatRepository) LoadHistory(ctx context.Context, conversationID string) (*model.ChatHistory, error) {
	key := r.conversationKey(conversationID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return &model.ChatHistory{ConversationID: conversationID, Turns: []model.ConversationTurn{}}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation history from redis")
		return nil, errx.WrapRedis(err)
	}

	turns := make([]model.ConversationTurn, 0, len(rows))
	for i, s := range rows {
		var t model.ConversationTurn
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			logx.Error().Err(err).Str("conversationID", conversationID).Int("index", i).Msg("failed to unmarshal turn")
			return nil, fmt.Errorf("unmarshal turn at index %d: %w", i, err)
		}
		turns = append(turns, t)
	}
	return &model.ChatHistory{ConversationID: conversationID, Turns: turns}, nil
}

func (r *RedisChatRepository) ClearHistory(ctx context.Context, conversationID string) error {
	key := r.conversationKey(conversationID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete conversation history from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisChatRepository) GetTurnCount(ctx context.Context, conversationID string) (int, error) {
	key := r.conversationKey(conversationID)
	n, err := r.rdb.LLen(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to get turn count from redis")
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

var _ model.ChatRepository = (*RedisChatRepository)(nil)
