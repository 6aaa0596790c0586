package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stacks-chat-assistant/server/internal/assistant/engine"
	"github.com/stacks-chat-assistant/server/internal/assistant/model"
	"github.com/stacks-chat-assistant/server/internal/assistant/openrouter"
	"github.com/stacks-chat-assistant/server/internal/stacks"
	logx "github.com/stacks-chat-assistant/server/pkg/logger"
)

var chatAddress string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant on the terminal",
	Long:  "Runs an interactive session against the engine with in-memory history. No Redis required.",
	RunE: func(cmd *cobra.Command, args []string) error {
		engineCfg, stacksCfg, err := loadEngineConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		network := stacks.ParseNetwork(stacksCfg.Network)
		eng := engine.New(*engineCfg, openrouter.NewClient(openrouter.Config{
			APIKey:  engineCfg.APIKey,
			BaseURL: engineCfg.BaseURL,
		}, nil))
		balances := stacks.NewBalanceClient(network, nil)

		fmt.Println("Stacks chat assistant. Type a message, or \"exit\" to quit.")

		var history []model.ConversationTurn
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return nil
			}

			var balance *float64
			if chatAddress != "" {
				if v, err := balances.GetSTXBalance(cmd.Context(), chatAddress); err == nil {
					balance = &v
				} else {
					logx.Warn().Err(err).Msg("balance lookup failed")
				}
			}

			resp, err := eng.GenerateResponse(cmd.Context(), engine.GenerateRequest{
				Message: line,
				History: history,
				Address: chatAddress,
				Balance: balance,
				Network: network.Name(),
			})
			if err != nil {
				fmt.Printf("error: %v (try again)\n", err)
				continue
			}

			fmt.Println(resp.Message)
			if resp.Action != nil {
				fmt.Printf("[action: %s", resp.Action.Type)
				if resp.Action.Params != nil {
					fmt.Printf(" %v STX -> %s", resp.Action.Params.Amount, resp.Action.Params.Recipient)
				}
				fmt.Println("]")
			}

			history = append(history, model.UserTurn(line), model.AssistantTurn(resp.Message))
		}
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatAddress, "address", "", "wallet address used for balance lookups and prompts")
}
