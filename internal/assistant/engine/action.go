package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/stacks-chat-assistant/server/internal/assistant/model"
)

var (
	completeTransferPattern = regexp.MustCompile(`(?i)send\s+([0-9.]+)\s*(?:stx)?\s+to\s+(ST[a-zA-Z0-9]{39}|SP[a-zA-Z0-9]{39})`)
	partialTransferPattern  = regexp.MustCompile(`(?i)send\s+([0-9.]+)\s*(?:stx)?\s+to\s+([a-zA-Z]+)`)
)

// ExtractAction derives a structured action from raw text plus optional
// context, regardless of whether the text came from the user or was echoed
// by the remote model. Informational intents run first and are mutually
// exclusive; the transfer checks only run when none of them hit.
func ExtractAction(userMessage string, ctx *model.ConversationContext) *model.Action {
	lower := strings.ToLower(userMessage)

	if strings.Contains(lower, "balance") {
		return &model.Action{Type: model.ActionBalance}
	}
	if strings.Contains(lower, "address") {
		return &model.Action{Type: model.ActionAddress}
	}
	if strings.Contains(lower, "help") {
		return &model.Action{Type: model.ActionHelp}
	}
	if strings.Contains(lower, "history") || strings.Contains(lower, "transactions") {
		return &model.Action{Type: model.ActionHistory}
	}

	// Complete command: amount plus a format-valid address.
	if m := completeTransferPattern.FindStringSubmatch(userMessage); m != nil {
		amount, err := strconv.ParseFloat(m[1], 64)
		if err == nil && amount > 0 {
			return transferAction(amount, m[2])
		}
	}

	// "send 5 stx to bob" — a name, not an address. The engine must never
	// guess an address, so this yields no action and the follow-up question
	// path handles it.
	if partialTransferPattern.MatchString(userMessage) {
		return nil
	}

	// Context completion: one part carried over, the other in this message.
	if ctx != nil && ctx.PendingTransfer != nil {
		amount := ctx.PendingTransfer.Amount
		if amount == 0 {
			amount, _ = ExtractAmount(userMessage)
		}
		recipient := ctx.PendingTransfer.Recipient
		if recipient == "" {
			recipient, _ = ExtractAddress(userMessage)
		}
		if amount > 0 && recipient != "" {
			return transferAction(amount, recipient)
		}
	}

	return nil
}

func transferAction(amount float64, recipient string) *model.Action {
	return &model.Action{
		Type: model.ActionTransfer,
		Params: &model.TransferParams{
			Amount:    amount,
			Recipient: recipient,
			Memo:      DefaultMemo,
		},
	}
}
