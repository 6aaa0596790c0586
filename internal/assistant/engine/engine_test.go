package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacks-chat-assistant/server/internal/assistant/model"
	"github.com/stacks-chat-assistant/server/internal/assistant/openrouter"
	errx "github.com/stacks-chat-assistant/server/internal/core/error"
)

// mockCompleter scripts per-model outcomes and records every attempt.
type mockCompleter struct {
	replies map[string]string
	errs    map[string]error
	calls   []string
}

func (m *mockCompleter) ChatCompletion(_ context.Context, req openrouter.CompletionRequest) (string, error) {
	m.calls = append(m.calls, req.Model)
	if err, ok := m.errs[req.Model]; ok {
		return "", err
	}
	if reply, ok := m.replies[req.Model]; ok {
		return reply, nil
	}
	return "", fmt.Errorf("model %s: %w", req.Model, errx.ErrModelUnavailable)
}

func testConfig() model.EngineConfig {
	var cfg model.EngineConfig
	cfg.APIKey = "test-key"
	cfg.Model = "model-a"
	cfg.RequestTimeoutSec = 1
	cfg.Breaker.MaxFailures = 5
	cfg.Breaker.CooldownSec = 300
	return cfg
}

func newTestEngine(mock *mockCompleter, opts ...Option) *Engine {
	opts = append([]Option{WithKnownModels([]string{"model-a", "model-b", "model-c"})}, opts...)
	return New(testConfig(), mock, opts...)
}

func TestGenerateResponseQuickPathSkipsTransport(t *testing.T) {
	mock := &mockCompleter{}
	eng := newTestEngine(mock)

	resp, err := eng.GenerateResponse(context.Background(), GenerateRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "Stacks blockchain assistant")
	assert.Empty(t, mock.calls, "quick responses must not issue network calls")
}

func TestGenerateResponseNoAPIKeyUsesFallback(t *testing.T) {
	mock := &mockCompleter{}
	cfg := testConfig()
	cfg.APIKey = ""
	eng := New(cfg, mock, WithKnownModels([]string{"model-a"}))

	resp, err := eng.GenerateResponse(context.Background(), GenerateRequest{Message: "what's my balance"})
	require.NoError(t, err)
	require.NotNil(t, resp.Action)
	assert.Equal(t, model.ActionBalance, resp.Action.Type)
	assert.Empty(t, mock.calls)
}

func TestGenerateResponseSuccess(t *testing.T) {
	mock := &mockCompleter{replies: map[string]string{"model-a": "Sure, checking your balance."}}
	eng := newTestEngine(mock)

	resp, err := eng.GenerateResponse(context.Background(), GenerateRequest{
		Message: "what's my balance",
		Network: "testnet",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sure, checking your balance.", resp.Message)
	// Action comes from the user's message, not the model's reply.
	require.NotNil(t, resp.Action)
	assert.Equal(t, model.ActionBalance, resp.Action.Type)
	assert.Equal(t, []string{"model-a"}, mock.calls)
	assert.Equal(t, 0, eng.Breaker().Failures())
}

func TestGenerateResponseStickyModelAdoption(t *testing.T) {
	mock := &mockCompleter{
		errs:    map[string]error{"model-a": errx.ErrModelUnavailable},
		replies: map[string]string{"model-b": "hi!"},
	}
	eng := newTestEngine(mock)

	_, err := eng.GenerateResponse(context.Background(), GenerateRequest{Message: "tell me about stacks"})
	require.NoError(t, err)
	assert.Equal(t, []string{"model-a", "model-b"}, mock.calls)
	assert.Equal(t, "model-b", eng.Model(), "first working candidate becomes the default")

	// The next call starts from the adopted model.
	mock.calls = nil
	_, err = eng.GenerateResponse(context.Background(), GenerateRequest{Message: "tell me more"})
	require.NoError(t, err)
	assert.Equal(t, []string{"model-b"}, mock.calls)
}

func TestGenerateResponseMalformedReplyAdvancesCandidate(t *testing.T) {
	mock := &mockCompleter{
		errs:    map[string]error{"model-a": errx.ErrBadResponse},
		replies: map[string]string{"model-b": "ok"},
	}
	eng := newTestEngine(mock)

	resp, err := eng.GenerateResponse(context.Background(), GenerateRequest{Message: "tell me about stacks"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Message)
}

func TestGenerateResponseExhaustedBelowThreshold(t *testing.T) {
	mock := &mockCompleter{} // every candidate fails
	eng := newTestEngine(mock)

	resp, err := eng.GenerateResponse(context.Background(), GenerateRequest{Message: "tell me about stacks"})
	require.Error(t, err, "below the threshold the caller sees a retry-able error")
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, errx.ErrAllModelsFailed)

	var appErr *errx.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 1, eng.Breaker().Failures())
	assert.Equal(t, []string{"model-a", "model-b", "model-c"}, mock.calls, "every candidate is tried once")
}

func TestGenerateResponseBreakerOpensAfterMaxFailures(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	breaker := NewCircuitBreaker(5, 5*time.Minute).withClock(clock.now)
	mock := &mockCompleter{}
	eng := newTestEngine(mock, WithBreaker(breaker))

	// The first maxFailures-1 exhausted calls surface errors.
	for i := 0; i < 4; i++ {
		_, err := eng.GenerateResponse(context.Background(), GenerateRequest{Message: "tell me about stacks"})
		require.Error(t, err)
	}
	// The call that reaches the threshold degrades silently.
	resp, err := eng.GenerateResponse(context.Background(), GenerateRequest{Message: "what's my balance"})
	require.NoError(t, err)
	require.NotNil(t, resp.Action)
	assert.Equal(t, model.ActionBalance, resp.Action.Type)

	// Breaker is now open: remote path skipped entirely.
	mock.calls = nil
	resp, err = eng.GenerateResponse(context.Background(), GenerateRequest{Message: "what's my balance"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Action)
	assert.Empty(t, mock.calls, "open breaker must skip remote calls")

	// After the cool-down the remote path is attempted again.
	clock.advance(5 * time.Minute)
	mock.replies = map[string]string{"model-a": "back online"}
	mock.errs = nil
	resp, err = eng.GenerateResponse(context.Background(), GenerateRequest{Message: "tell me about stacks"})
	require.NoError(t, err)
	assert.Equal(t, "back online", resp.Message)
	assert.NotEmpty(t, mock.calls, "elapsed cool-down must re-enable the remote path")
}

func TestGenerateResponseContextEchoed(t *testing.T) {
	mock := &mockCompleter{replies: map[string]string{"model-a": "Who should receive it?"}}
	eng := newTestEngine(mock)

	resp, err := eng.GenerateResponse(context.Background(), GenerateRequest{Message: "I want to send 3 stx"})
	require.NoError(t, err)
	require.NotNil(t, resp.Context)
	require.NotNil(t, resp.Context.PendingTransfer)
	assert.Equal(t, 3.0, resp.Context.PendingTransfer.Amount)
}

func TestGenerateResponseHistoryWindow(t *testing.T) {
	var seen []openrouter.Message
	mock := &recordingCompleter{reply: "ok", record: func(req openrouter.CompletionRequest) { seen = req.Messages }}
	eng := New(testConfig(), mock, WithKnownModels([]string{"model-a"}))

	history := make([]model.ConversationTurn, 0, 10)
	for i := 0; i < 10; i++ {
		history = append(history, model.UserTurn(fmt.Sprintf("message %d", i)))
	}
	_, err := eng.GenerateResponse(context.Background(), GenerateRequest{
		Message: "tell me about stacks",
		History: history,
	})
	require.NoError(t, err)

	// system + trailing 6 turns + new user message
	require.Len(t, seen, 8)
	assert.Equal(t, "system", seen[0].Role)
	assert.Equal(t, "message 4", seen[1].Content)
	assert.Equal(t, "tell me about stacks", seen[7].Content)
}

type recordingCompleter struct {
	reply  string
	record func(openrouter.CompletionRequest)
}

func (r *recordingCompleter) ChatCompletion(_ context.Context, req openrouter.CompletionRequest) (string, error) {
	r.record(req)
	return r.reply, nil
}

func TestGenerateResponseErrorIsNotSilentlySwallowed(t *testing.T) {
	mock := &mockCompleter{}
	eng := newTestEngine(mock)

	_, err := eng.GenerateResponse(context.Background(), GenerateRequest{Message: "tell me about stacks"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}
