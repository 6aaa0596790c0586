package engine

import (
	"strings"

	"github.com/stacks-chat-assistant/server/internal/assistant/model"
)

const greetingMessage = "Hi there! I'm your Stacks blockchain assistant. I can help you:\n\n" +
	"• Send STX to addresses\n" +
	"• Check your balance\n" +
	"• View your wallet address\n" +
	"• Show transaction history\n\n" +
	"What would you like to do?"

const helpMessage = "I can help you with Stacks blockchain operations:\n\n" +
	"• **Send STX**: \"Send 0.01 STX to [address]\"\n" +
	"• **Check Balance**: \"What's my balance?\"\n" +
	"• **View Address**: \"What's my address?\"\n" +
	"• **Transaction History**: \"Show my transactions\"\n\n" +
	"Just tell me what you'd like to do in plain English!"

// QuickResponse answers a small fixed vocabulary of trivial inputs without
// touching the context analyzer or the remote model, keeping small-talk
// latency near zero and saving API quota. A nil return means the message
// needs real processing.
func QuickResponse(userMessage string) *model.EngineResponse {
	switch strings.ToLower(strings.TrimSpace(userMessage)) {
	case "hi", "hello", "hey", "hi!", "hello!", "hey!":
		return &model.EngineResponse{Message: greetingMessage}
	case "help", "help me", "what can you do":
		return &model.EngineResponse{
			Message: helpMessage,
			Action:  &model.Action{Type: model.ActionHelp},
		}
	}
	return nil
}
