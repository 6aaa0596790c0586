package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/stacks-chat-assistant/server/internal/assistant/model"
)

var sendNamePattern = regexp.MustCompile(`(?i)to\s+([a-zA-Z]+)`)

// FallbackResponse is the deterministic rule-based responder used when the
// remote model path is unavailable or exhausted. Rules are evaluated in a
// fixed priority order and the first match wins; the ordering is part of
// the engine's observable contract, so do not reorder without updating the
// tests that pin it.
func FallbackResponse(userMessage string, ctx model.ConversationContext) *model.EngineResponse {
	lower := strings.ToLower(userMessage)

	// 1..3: contextual transfer completion.
	if ctx.PendingTransfer != nil {
		if resp := completePendingTransfer(userMessage, ctx); resp != nil {
			return resp
		}
	}

	// 4: direct informational intents.
	if strings.Contains(lower, "balance") {
		return &model.EngineResponse{
			Message: "Let me check your current STX balance.",
			Action:  &model.Action{Type: model.ActionBalance},
		}
	}
	if strings.Contains(lower, "address") {
		return &model.EngineResponse{
			Message: "Here's your Stacks wallet address:",
			Action:  &model.Action{Type: model.ActionAddress},
		}
	}
	if strings.Contains(lower, "help") || strings.Contains(lower, "what can you do") {
		return &model.EngineResponse{
			Message: "I can help you with Stacks blockchain operations!",
			Action:  &model.Action{Type: model.ActionHelp},
		}
	}
	if strings.Contains(lower, "history") || strings.Contains(lower, "transactions") {
		return &model.EngineResponse{
			Message: "Let me show you your transaction history.",
			Action:  &model.Action{Type: model.ActionHistory},
		}
	}

	// 5: troubleshooting questions about sending. These must never be
	// misread as a send request.
	if (strings.Contains(lower, "why") || strings.Contains(lower, "how") ||
		strings.Contains(lower, "cant") || strings.Contains(lower, "can't")) &&
		strings.Contains(lower, "send") {
		return &model.EngineResponse{
			Message: "I can help you troubleshoot sending issues! Common reasons you might not be able to send STX:\n\n" +
				"• **Insufficient Balance**: Make sure you have enough STX plus fees (~0.0001 STX)\n" +
				"• **Invalid Address**: STX addresses start with 'ST' (testnet) or 'SP' (mainnet)\n" +
				"• **Network Mismatch**: Ensure your wallet and the app are on the same network\n" +
				"• **Wallet Connection**: Try reconnecting your wallet\n\n" +
				"What specific issue are you experiencing?",
		}
	}

	// 6: contextual send mention.
	isQuestion := strings.Contains(lower, "why") || strings.Contains(lower, "how") ||
		strings.Contains(lower, "can i") || strings.Contains(lower, "cant") ||
		strings.Contains(lower, "can't") || strings.Contains(lower, "?")

	if !isQuestion && strings.Contains(lower, "send") &&
		(strings.Contains(lower, "money") || strings.Contains(lower, "stx") || strings.Contains(lower, "to")) {
		return sendMentionResponse(userMessage)
	}

	// 7: standalone answers to a previously asked question.
	if addr, ok := matchStandaloneAddress(userMessage); ok {
		return &model.EngineResponse{
			Message: fmt.Sprintf("Got the address: %s ✅\n\n"+
				"Now I need to know how much STX you want to send to this address.\n\n"+
				"Example: \"Send 0.01 STX\" or just \"0.01\"", addr),
		}
	}
	if amount, ok := matchStandaloneAmount(userMessage); ok {
		return &model.EngineResponse{
			Message: fmt.Sprintf("Got the amount: %v STX ✅\n\n"+
				"Now I need the recipient's STX address. STX addresses start with \"ST\" (testnet) or \"SP\" (mainnet).\n\n"+
				"What's the recipient's address?", amount),
		}
	}

	// 8: confusion markers.
	if strings.Contains(lower, "don't understand") || strings.Contains(lower, "confused") ||
		strings.Contains(lower, "help me") {
		return &model.EngineResponse{
			Message: "No problem! I'm here to help. 😊\n\n" +
				"To send STX, I need:\n" +
				"1. **Amount**: How much STX to send (e.g., \"0.01\")\n" +
				"2. **Recipient**: Their STX address (starts with \"ST\" or \"SP\")\n\n" +
				"You can say something like:\n\"Send 0.01 STX to ST1ABC...\"\n\n" +
				"Or I can guide you step by step. What would you like to do?",
		}
	}

	// 9: default capability summary.
	return &model.EngineResponse{
		Message: "I can help you with Stacks blockchain operations! Try:\n\n" +
			"• **Send STX**: \"Send 0.01 STX to [address]\"\n" +
			"• **Check Balance**: \"What's my balance?\"\n" +
			"• **Get Address**: \"What's my address?\"\n" +
			"• **Transaction History**: \"Show my transactions\"\n" +
			"• **Help**: \"What can you do?\"\n\n" +
			"Just talk to me naturally - I understand conversational requests! 😊",
	}
}

// completePendingTransfer handles the three context-driven rules: both
// pieces now known, an awaited amount arriving, or an awaited address
// arriving. Context-carried values were written before current-message
// values during analysis, so the pending transfer already reflects the
// current message when both exist.
func completePendingTransfer(userMessage string, ctx model.ConversationContext) *model.EngineResponse {
	pending := ctx.PendingTransfer

	msgAmount, hasMsgAmount := ExtractAmount(userMessage)
	msgAddress, hasMsgAddress := ExtractAddress(userMessage)

	finalAmount := pending.Amount
	if finalAmount == 0 {
		finalAmount = msgAmount
	}
	finalRecipient := pending.Recipient
	if finalRecipient == "" {
		finalRecipient = msgAddress
	}

	if finalAmount > 0 && finalRecipient != "" {
		return &model.EngineResponse{
			Message: fmt.Sprintf("Perfect! I'll help you send %v STX to %s. Let me prepare the transaction for your review.",
				finalAmount, finalRecipient),
			Action: transferAction(finalAmount, finalRecipient),
			Context: &model.ConversationContext{
				PendingTransfer: &model.PendingTransfer{
					Amount:    finalAmount,
					Recipient: finalRecipient,
				},
			},
		}
	}

	if hasMsgAmount && ctx.LastAction == model.AskedForAmount {
		question := "What's the recipient's STX address?"
		if pending.RecipientName != "" {
			question = fmt.Sprintf("What's %s's STX address?", pending.RecipientName)
		}
		next := *pending
		next.Amount = msgAmount
		return &model.EngineResponse{
			Message: fmt.Sprintf("Got it! %v STX ✅\n\nNow I need the recipient's STX address. %s", msgAmount, question),
			Context: &model.ConversationContext{
				PendingTransfer: &next,
				LastAction:      model.AskedForAddress,
			},
		}
	}

	if hasMsgAddress && ctx.LastAction == model.AskedForAddress {
		followUp := "How much STX do you want to send?"
		lastAction := model.AskedForAmount
		if pending.Amount > 0 {
			followUp = fmt.Sprintf("I'll send %v STX to this address.", pending.Amount)
			lastAction = model.ReadyToSend
		}
		next := *pending
		next.Recipient = msgAddress
		return &model.EngineResponse{
			Message: fmt.Sprintf("Great! I have the address: %s ✅\n\n%s", msgAddress, followUp),
			Context: &model.ConversationContext{
				PendingTransfer: &next,
				LastAction:      lastAction,
			},
		}
	}

	return nil
}

// sendMentionResponse branches on which transfer pieces a non-question send
// mention carries. A transfer action is only produced for an amount plus a
// format-valid address; a bare human name is never treated as a recipient.
func sendMentionResponse(userMessage string) *model.EngineResponse {
	amount, hasAmount := ExtractAmount(userMessage)
	address, hasAddress := ExtractAddress(userMessage)

	var name string
	if m := sendNamePattern.FindStringSubmatch(userMessage); m != nil {
		name = m[1]
	}

	switch {
	case hasAmount && hasAddress:
		return &model.EngineResponse{
			Message: fmt.Sprintf("I'll help you send %v STX to %s. Let me prepare the transaction for your review.",
				amount, address),
			Action: transferAction(amount, address),
		}
	case hasAmount && name != "":
		return &model.EngineResponse{
			Message: fmt.Sprintf("I can help you send %v STX to %s! 💰\n\n"+
				"I'll need %s's STX address to complete the transfer. STX addresses start with \"ST\" (testnet) or \"SP\" (mainnet).\n\n"+
				"Can you provide %s's STX address?", amount, name, name, name),
		}
	case name != "" && !hasAmount:
		return &model.EngineResponse{
			Message: fmt.Sprintf("I can help you send STX to %s! 💰\n\n"+
				"I need two things:\n1. How much STX do you want to send?\n2. %s's STX address (starts with \"ST\" or \"SP\")\n\n"+
				"Can you provide both details?", name, name),
		}
	case hasAmount:
		return &model.EngineResponse{
			Message: fmt.Sprintf("I can help you send %v STX! 💰\n\n"+
				"I just need the recipient's STX address. STX addresses start with \"ST\" (testnet) or \"SP\" (mainnet).\n\n"+
				"What's the recipient's address?", amount),
		}
	default:
		return &model.EngineResponse{
			Message: "I can help you send STX! 💰\n\n" +
				"I need two things:\n1. How much STX do you want to send?\n2. The recipient's STX address (starts with \"ST\" or \"SP\")\n\n" +
				"Example: \"Send 0.01 STX to ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM\"",
		}
	}
}
