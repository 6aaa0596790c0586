package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacks-chat-assistant/server/internal/assistant/model"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestChatRepositoryRoundTrip(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewRedisChatRepository(rdb, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.AddTurn(ctx, "conv-1", model.UserTurn("what's my balance?")))
	require.NoError(t, repo.AddTurn(ctx, "conv-1", model.AssistantTurn("Your balance is 100 STX.")))

	history, err := repo.LoadHistory(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, history.Turns, 2)
	assert.Equal(t, model.RoleUser, history.Turns[0].Role)
	assert.Equal(t, "what's my balance?", history.Turns[0].Content)
	assert.Equal(t, model.RoleAssistant, history.Turns[1].Role)

	count, err := repo.GetTurnCount(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestChatRepositoryLoadHistoryEmpty(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewRedisChatRepository(rdb, time.Hour)

	history, err := repo.LoadHistory(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, "never-seen", history.ConversationID)
	assert.Empty(t, history.Turns)
}

func TestChatRepositorySetsTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := NewRedisChatRepository(rdb, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.AddTurn(ctx, "conv-ttl", model.UserTurn("hi")))

	ttl := mr.TTL("conversation:conv-ttl:turns")
	assert.Equal(t, 30*time.Minute, ttl)
}

func TestChatRepositoryTTLRefreshedOnTouch(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := NewRedisChatRepository(rdb, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.AddTurn(ctx, "conv-ttl", model.UserTurn("hi")))
	mr.FastForward(20 * time.Minute)
	require.NoError(t, repo.AddTurn(ctx, "conv-ttl", model.AssistantTurn("hello")))

	assert.Equal(t, 30*time.Minute, mr.TTL("conversation:conv-ttl:turns"))
}

func TestChatRepositoryClearHistory(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewRedisChatRepository(rdb, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.AddTurn(ctx, "conv-2", model.UserTurn("hello")))
	require.NoError(t, repo.ClearHistory(ctx, "conv-2"))

	history, err := repo.LoadHistory(ctx, "conv-2")
	require.NoError(t, err)
	assert.Empty(t, history.Turns)

	count, err := repo.GetTurnCount(ctx, "conv-2")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestChatRepositoryIsolatesConversations(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewRedisChatRepository(rdb, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.AddTurn(ctx, "conv-a", model.UserTurn("first")))
	require.NoError(t, repo.AddTurn(ctx, "conv-b", model.UserTurn("second")))

	a, err := repo.LoadHistory(ctx, "conv-a")
	require.NoError(t, err)
	require.Len(t, a.Turns, 1)
	assert.Equal(t, "first", a.Turns[0].Content)
}
