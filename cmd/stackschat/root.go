package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/stacks-chat-assistant/server/internal/assistant/model"
	"github.com/stacks-chat-assistant/server/internal/core"
	logx "github.com/stacks-chat-assistant/server/pkg/logger"
	pkgredis "github.com/stacks-chat-assistant/server/pkg/redis"
)

var rootCmd = &cobra.Command{
	Use:   "stackschat",
	Short: "Chat assistant for operating a Stacks wallet in natural language",
	Long: "stackschat resolves free-form chat messages into structured wallet\n" +
		"actions (transfer, balance, address, history) using a remote language\n" +
		"model with a deterministic local fallback.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, chatCmd, modelsCmd)
}

// AppConfig defines all configurable parameters for the service, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// Engine + collaborators
	Engine       model.EngineConfig
	Conversation model.ConversationConfig
	Stacks       model.StacksConfig
	Server       model.ServerConfig
}

func loadAppConfig() (*AppConfig, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})
	return &cfg, nil
}

// loadEngineConfig loads only what the engine needs, for commands that run
// without Redis.
func loadEngineConfig() (*model.EngineConfig, *model.StacksConfig, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var engineCfg model.EngineConfig
	if err := envconfig.Process("", &engineCfg); err != nil {
		return nil, nil, err
	}
	var stacksCfg model.StacksConfig
	if err := envconfig.Process("", &stacksCfg); err != nil {
		return nil, nil, err
	}

	logx.Init()
	return &engineCfg, &stacksCfg, nil
}
