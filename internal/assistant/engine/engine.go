package engine

import (
	"context"
	"sync"
	"time"

	"github.com/stacks-chat-assistant/server/internal/assistant/model"
	"github.com/stacks-chat-assistant/server/internal/assistant/openrouter"
	"github.com/stacks-chat-assistant/server/internal/assistant/prompts"
	errx "github.com/stacks-chat-assistant/server/internal/core/error"
	logx "github.com/stacks-chat-assistant/server/pkg/logger"
)

const historyWindow = 6

// ChatCompleter is the slice of the OpenRouter client the engine needs.
// Tests substitute a mock transport here.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, req openrouter.CompletionRequest) (string, error)
}

// GenerateRequest is one "generate response" invocation. Address, Balance
// and Network are collaborator inputs the engine depends on but does not
// own; any of them may be absent.
type GenerateRequest struct {
	Message string
	History []model.ConversationTurn
	Address string
	Balance *float64
	Network string
}

// Engine turns free-form user input into an EngineResponse: a reply message
// plus an optional structured action for the caller to execute. It performs
// no blockchain operation itself and never fabricates one.
//
// The engine is stateless between calls except for two deliberate pieces of
// shared state: the circuit breaker and the sticky current model.
type Engine struct {
	cfg     model.EngineConfig
	client  ChatCompleter
	breaker *CircuitBreaker
	metrics *Metrics

	mu      sync.Mutex
	current string
	known   []string
}

// Option customises engine construction.
type Option func(*Engine)

// WithMetrics attaches prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithKnownModels overrides the candidate model list. Tests use it to
// control candidate ordering.
func WithKnownModels(models []string) Option {
	return func(e *Engine) { e.known = models }
}

// WithBreaker injects a pre-built breaker (e.g. with a test clock).
func WithBreaker(b *CircuitBreaker) Option {
	return func(e *Engine) { e.breaker = b }
}

// New builds an Engine around the given chat-completion client.
func New(cfg model.EngineConfig, client ChatCompleter, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		client:  client,
		current: cfg.Model,
		known:   model.KnownModels,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.breaker == nil {
		e.breaker = NewCircuitBreaker(cfg.Breaker.MaxFailures, time.Duration(cfg.Breaker.CooldownSec)*time.Second)
	}
	return e
}

// Model returns the current sticky model.
func (e *Engine) Model() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// SetModel overrides the current model for subsequent calls.
func (e *Engine) SetModel(m string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = m
}

// Breaker exposes the failure-tracking gate, mainly for tests and the
// health endpoint.
func (e *Engine) Breaker() *CircuitBreaker {
	return e.breaker
}

// GenerateResponse resolves one user message. Quick-path inputs return a
// canned reply with zero network calls. Otherwise the remote model path is
// tried when the breaker allows it, and the deterministic local responder
// covers every degraded case. An error is returned only for an
// exhausted-candidates failure below the breaker threshold, so the caller
// can show a retry-able error state.
func (e *Engine) GenerateResponse(ctx context.Context, req GenerateRequest) (*model.EngineResponse, error) {
	if quick := QuickResponse(req.Message); quick != nil {
		logx.Debug().Str("message", req.Message).Msg("quick response")
		e.metrics.quickHit()
		return quick, nil
	}

	convCtx := AnalyzeContext(req.History, req.Message)

	if e.cfg.APIKey == "" {
		logx.Debug().Msg("no API key configured, using local responder")
		e.metrics.fallbackReply()
		return FallbackResponse(req.Message, convCtx), nil
	}

	if !e.breaker.Allow() {
		logx.Warn().Int("failures", e.breaker.Failures()).Msg("circuit breaker open, using local responder")
		e.metrics.breakerOpen()
		e.metrics.fallbackReply()
		return FallbackResponse(req.Message, convCtx), nil
	}

	resp, err := e.callModels(ctx, req, convCtx)
	if err != nil {
		thresholdReached := e.breaker.RecordFailure()
		if thresholdReached {
			logx.Warn().Err(err).Msg("remote path confirmed unavailable, degrading to local responder")
			e.metrics.fallbackReply()
			return FallbackResponse(req.Message, convCtx), nil
		}
		// Below the threshold the caller gets an explicit, retry-able error
		// instead of a silently canned reply.
		return nil, errx.WrapUpstream(err)
	}

	e.breaker.RecordSuccess()
	return resp, nil
}

// callModels tries each candidate in order until one yields a usable reply.
// Every per-candidate failure (timeout, transport error, HTTP error,
// malformed payload) advances to the next candidate; only full exhaustion
// is surfaced.
func (e *Engine) callModels(ctx context.Context, req GenerateRequest, convCtx model.ConversationContext) (*model.EngineResponse, error) {
	systemPrompt, err := prompts.RenderSystem(prompts.SystemVars{
		Address: req.Address,
		Balance: req.Balance,
		Network: req.Network,
	})
	if err != nil {
		return nil, err
	}

	messages := make([]openrouter.Message, 0, historyWindow+2)
	messages = append(messages, openrouter.Message{Role: string(model.RoleSystem), Content: systemPrompt})
	for _, turn := range lastTurns(req.History, historyWindow) {
		messages = append(messages, openrouter.Message{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, openrouter.Message{Role: string(model.RoleUser), Content: req.Message})

	timeout := time.Duration(e.cfg.RequestTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	for _, candidate := range e.candidates() {
		e.metrics.remoteAttempt(candidate)

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		content, err := e.client.ChatCompletion(attemptCtx, openrouter.CompletionRequest{
			Model:       candidate,
			Messages:    messages,
			Temperature: e.cfg.Temperature,
			MaxTokens:   e.cfg.MaxTokens,
			TopP:        e.cfg.TopP,
		})
		cancel()

		if err != nil {
			e.metrics.remoteFailure(candidate)
			logx.Warn().Err(err).Str("model", candidate).Msg("candidate model failed")
			continue
		}

		e.adoptModel(candidate)

		// The action is extracted from the user's original message, never
		// from the model's prose, so a chatty reply cannot invent a
		// transfer.
		return &model.EngineResponse{
			Message: content,
			Action:  ExtractAction(req.Message, &convCtx),
			Context: &convCtx,
		}, nil
	}

	return nil, errx.ErrAllModelsFailed
}

// candidates returns the current model first, then the remaining known
// models in order.
func (e *Engine) candidates() []string {
	e.mu.Lock()
	current := e.current
	e.mu.Unlock()

	out := make([]string, 0, len(e.known)+1)
	if current != "" {
		out = append(out, current)
	}
	for _, m := range e.known {
		if m != current {
			out = append(out, m)
		}
	}
	return out
}

// adoptModel makes the first working candidate the default for subsequent
// calls. Sticky on purpose: it keeps later calls on a model known to
// answer.
func (e *Engine) adoptModel(m string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != m {
		logx.Info().Str("model", m).Msg("switching to working model")
		e.current = m
	}
}
