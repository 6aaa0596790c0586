package model

// ================ Config ================

// EngineConfig configures the intent-resolution engine and its remote
// model caller.
type EngineConfig struct {
	APIKey  string `envconfig:"OPENROUTER_API_KEY"`
	BaseURL string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	Model   string `envconfig:"OPENROUTER_MODEL" default:"alibaba/tongyi-deepresearch-30b-a3b:free"`

	RequestTimeoutSec int     `envconfig:"ENGINE_REQUEST_TIMEOUT_SEC" default:"30"`
	Temperature       float64 `envconfig:"ENGINE_TEMPERATURE" default:"0.3"`
	MaxTokens         int     `envconfig:"ENGINE_MAX_TOKENS" default:"150"`
	TopP              float64 `envconfig:"ENGINE_TOP_P" default:"0.9"`

	Breaker struct {
		MaxFailures int `envconfig:"ENGINE_BREAKER_MAX_FAILURES" default:"5"`
		CooldownSec int `envconfig:"ENGINE_BREAKER_COOLDOWN_SEC" default:"300"`
	}
}

// KnownModels is the candidate list tried in order after the configured
// model. The first candidate that answers becomes the new default.
var KnownModels = []string{
	"alibaba/tongyi-deepresearch-30b-a3b:free",
	"meituan/longcat-flash-chat:free",
	"nvidia/nemotron-nano-9b-v2:free",
	"anthropic/claude-3.5-sonnet",
}

// ConversationConfig bounds how long conversation history is kept.
type ConversationConfig struct {
	TTL string `envconfig:"CONVERSATION_TTL" default:"720h"`
}

// StacksConfig selects the chain network the assistant talks about.
type StacksConfig struct {
	Network string `envconfig:"STACKS_NETWORK" default:"testnet"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `envconfig:"SERVER_ADDR" default:":8080"`
}
