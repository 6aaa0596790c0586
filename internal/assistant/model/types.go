package model

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ConversationTurn is a single message in the chat history. Turns are
// immutable once created; the caller supplies them and the engine never
// mutates them.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserTurn builds a user-authored turn.
func UserTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleUser, Content: content}
}

// AssistantTurn builds an assistant-authored turn.
func AssistantTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleAssistant, Content: content}
}

// LastAction values recorded in a ConversationContext. They name the most
// recent question the assistant asked so a bare answer ("0.5", an address)
// can be tied back to it.
const (
	AskedForAmount  = "asked_for_amount"
	AskedForAddress = "asked_for_address"
	ReadyToSend     = "ready_to_send"
)

// PendingTransfer carries the transfer fragments collected so far across
// turns. RecipientName holds a human name that still needs resolving to a
// real address.
type PendingTransfer struct {
	Amount        float64 `json:"amount,omitempty"`
	Recipient     string  `json:"recipient,omitempty"`
	RecipientName string  `json:"recipientName,omitempty"`
}

// ConversationContext is rebuilt fresh on every engine call from the turn
// window plus the current message. The engine is stateless between calls;
// the caller may echo a returned context into the next call if it wants to
// retain state.
type ConversationContext struct {
	PendingTransfer *PendingTransfer `json:"pendingTransfer,omitempty"`
	LastAction      string           `json:"lastAction,omitempty"`
}

// ActionType enumerates the structured actions the engine can hand back to
// the caller.
type ActionType string

const (
	ActionTransfer ActionType = "transfer"
	ActionBalance  ActionType = "balance"
	ActionAddress  ActionType = "address"
	ActionHelp     ActionType = "help"
	ActionHistory  ActionType = "history"
)

// TransferParams describes a transfer the caller should confirm and execute.
// The engine never executes anything on-chain itself.
type TransferParams struct {
	Amount    float64 `json:"amount"`
	Recipient string  `json:"recipient"`
	Memo      string  `json:"memo,omitempty"`
}

// Action is the optional structured outcome of a call. Absence means the
// reply is informational only.
type Action struct {
	Type   ActionType      `json:"type"`
	Params *TransferParams `json:"params,omitempty"`
}

// EngineResponse is the sole output type of the engine. A transfer action
// always carries a positive amount and a format-valid recipient.
type EngineResponse struct {
	Message string               `json:"message"`
	Action  *Action              `json:"action,omitempty"`
	Context *ConversationContext `json:"context,omitempty"`
}
