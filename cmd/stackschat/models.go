package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacks-chat-assistant/server/internal/assistant/model"
	"github.com/stacks-chat-assistant/server/internal/assistant/openrouter"
)

var modelsFreeOnly bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models reachable with the configured API key",
	Long:  "Doubles as a connection test: a failure here means the key or endpoint is misconfigured.",
	RunE: func(cmd *cobra.Command, args []string) error {
		engineCfg, _, err := loadEngineConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if engineCfg.APIKey == "" {
			return fmt.Errorf("no API key configured (set OPENROUTER_API_KEY)")
		}

		client := openrouter.NewClient(openrouter.Config{
			APIKey:  engineCfg.APIKey,
			BaseURL: engineCfg.BaseURL,
		}, nil)

		fmt.Printf("configured model: %s\n", engineCfg.Model)
		fmt.Printf("known candidates: %v\n\n", model.KnownModels)

		if modelsFreeOnly {
			free, err := client.FreeModels(cmd.Context(), 10)
			if err != nil {
				return fmt.Errorf("list free models: %w", err)
			}
			for _, id := range free {
				fmt.Println(id)
			}
			return nil
		}

		all, err := client.ListModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("list models: %w", err)
		}
		for _, m := range all {
			fmt.Println(m.ID)
		}
		return nil
	},
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsFreeOnly, "free", false, "only list zero-cost models")
}
