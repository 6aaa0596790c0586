package model

import (
	"context"
	"time"
)

// ChatRepository stores per-conversation chat history. The engine itself
// stays stateless; the serving layer loads history here to hand the engine
// its turn window.
type ChatRepository interface {
	// AddTurn appends a turn to the conversation history
	AddTurn(ctx context.Context, conversationID string, turn ConversationTurn) error

	// LoadHistory retrieves the conversation history for a conversation
	LoadHistory(ctx context.Context, conversationID string) (*ChatHistory, error)

	// ClearHistory removes all conversation history for a conversation
	ClearHistory(ctx context.Context, conversationID string) error

	// GetTurnCount returns the number of turns in the conversation
	GetTurnCount(ctx context.Context, conversationID string) (int, error)
}

// ChatHistory represents loaded conversation data with metadata.
type ChatHistory struct {
	ConversationID string
	Turns          []ConversationTurn
}

// TransferRecord is a transfer the caller reported back after the engine
// produced a transfer action. Status tracking beyond "pending" belongs to
// the wallet layer.
type TransferRecord struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Amount    float64   `json:"amount"`
	Memo      string    `json:"memo,omitempty"`
	Network   string    `json:"network"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// TransferRepository stores transfer records per sender address.
type TransferRepository interface {
	// RecordTransfer appends a transfer record for the sender
	RecordTransfer(ctx context.Context, rec TransferRecord) error

	// ListTransfers returns the sender's transfer records, newest last
	ListTransfers(ctx context.Context, sender string) ([]TransferRecord, error)
}
