package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stacks-chat-assistant/server/internal/assistant/model"
	errx "github.com/stacks-chat-assistant/server/internal/core/error"
	logx "github.com/stacks-chat-assistant/server/pkg/logger"
)

// RedisTransferRepository stores transfer records per sender. Records are
// plain bookkeeping for the history view; transaction status tracking
// belongs to the wallet layer.
type RedisTransferRepository struct {
	rdb redis.Cmdable
}

func NewRedisTransferRepository(rdb redis.Cmdable) *RedisTransferRepository {
	return &RedisTransferRepository{rdb: rdb}
}

func (r *RedisTransferRepository) transferKey(sender string) string {
	return fmt.Sprintf("transfers:%s", sender)
}

func (r *RedisTransferRepository) RecordTransfer(ctx context.Context, rec model.TransferRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		logx.Error().Err(err).Str("sender", rec.Sender).Msg("failed to marshal transfer record")
		return fmt.Errorf("marshal transfer record: %w", err)
	}
	if err := r.rdb.RPush(ctx, r.transferKey(rec.Sender), b).Err(); err != nil {
		logx.Error().Err(err).Str("sender", rec.Sender).Msg("failed to push transfer record to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisTransferRepository) ListTransfers(ctx context.Context, sender string) ([]model.TransferRecord, error) {
	key := r.transferKey(sender)
	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.TransferRecord{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load transfer records from redis")
		return nil, errx.WrapRedis(err)
	}

	records := make([]model.TransferRecord, 0, len(rows))
	for i, s := range rows {
		var rec model.TransferRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			logx.Error().Err(err).Str("sender", sender).Int("index", i).Msg("failed to unmarshal transfer record")
			return nil, fmt.Errorf("unmarshal transfer record at index %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

var _ model.TransferRepository = (*RedisTransferRepository)(nil)
