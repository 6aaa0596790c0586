package engine

import (
	"regexp"
	"strings"

	"github.com/stacks-chat-assistant/server/internal/assistant/model"
)

// recipientNamePattern pulls a human name out of an earlier assistant turn
// like "I can help you send 5 STX to bob".
var recipientNamePattern = regexp.MustCompile(`(?i)send.*to\s+([a-zA-Z]+)`)

const contextWindow = 4

// AnalyzeContext rebuilds the conversation context from the recent turn
// window plus the current message. It is pure: the same inputs always
// produce the same context, and it cannot fail — absent matches simply
// leave the context partial.
//
// The scan over assistant turns is last-match-wins: a later turn that asked
// for an amount overwrites an earlier turn that asked for an address. Tests
// pin this ordering; callers rely on the most recent question winning.
func AnalyzeContext(history []model.ConversationTurn, currentMessage string) model.ConversationContext {
	var ctx model.ConversationContext

	recent := lastTurns(history, contextWindow)
	for _, turn := range recent {
		if turn.Role != model.RoleAssistant {
			continue
		}
		if strings.Contains(turn.Content, "How much STX") || strings.Contains(turn.Content, "amount") {
			ctx.LastAction = model.AskedForAmount
		}
		if strings.Contains(turn.Content, "STX address") || strings.Contains(turn.Content, "recipient") {
			ctx.LastAction = model.AskedForAddress
		}
		if m := recipientNamePattern.FindStringSubmatch(turn.Content); m != nil {
			ensurePending(&ctx).RecipientName = m[1]
		}
	}

	// Current-message values are written last, so they win over anything
	// carried from history.
	if amount, ok := ExtractAmount(currentMessage); ok {
		ensurePending(&ctx).Amount = amount
	}
	if addr, ok := ExtractAddress(currentMessage); ok {
		ensurePending(&ctx).Recipient = addr
	}

	return ctx
}

func ensurePending(ctx *model.ConversationContext) *model.PendingTransfer {
	if ctx.PendingTransfer == nil {
		ctx.PendingTransfer = &model.PendingTransfer{}
	}
	return ctx.PendingTransfer
}

// lastTurns returns a copy of the trailing maxTurns entries.
func lastTurns(turns []model.ConversationTurn, maxTurns int) []model.ConversationTurn {
	if len(turns) <= maxTurns {
		result := make([]model.ConversationTurn, len(turns))
		copy(result, turns)
		return result
	}
	source := turns[len(turns)-maxTurns:]
	result := make([]model.ConversationTurn, len(source))
	copy(result, source)
	return result
}
