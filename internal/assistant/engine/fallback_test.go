package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacks-chat-assistant/server/internal/assistant/model"
)

func TestFallbackContextCompletion(t *testing.T) {
	ctx := model.ConversationContext{
		PendingTransfer: &model.PendingTransfer{Amount: 5},
		LastAction:      model.AskedForAddress,
	}
	resp := FallbackResponse(testnetAddr, ctx)
	require.NotNil(t, resp.Action)
	assert.Equal(t, model.ActionTransfer, resp.Action.Type)
	assert.Equal(t, 5.0, resp.Action.Params.Amount)
	assert.Equal(t, testnetAddr, resp.Action.Params.Recipient)
	require.NotNil(t, resp.Context)
	assert.Equal(t, 5.0, resp.Context.PendingTransfer.Amount)
	assert.Equal(t, testnetAddr, resp.Context.PendingTransfer.Recipient)
}

func TestFallbackAwaitingAmount(t *testing.T) {
	ctx := model.ConversationContext{
		PendingTransfer: &model.PendingTransfer{RecipientName: "bob"},
		LastAction:      model.AskedForAmount,
	}
	resp := FallbackResponse("5", ctx)
	assert.Nil(t, resp.Action)
	assert.Contains(t, resp.Message, "bob's STX address")
	require.NotNil(t, resp.Context)
	assert.Equal(t, model.AskedForAddress, resp.Context.LastAction)
	assert.Equal(t, 5.0, resp.Context.PendingTransfer.Amount)
	assert.Equal(t, "bob", resp.Context.PendingTransfer.RecipientName)
}

func TestFallbackAwaitingAddressWithAmountPending(t *testing.T) {
	// Amount already collected: the new address concludes with ready_to_send.
	ctx := model.ConversationContext{
		PendingTransfer: &model.PendingTransfer{Amount: 2},
		LastAction:      model.AskedForAddress,
	}
	resp := FallbackResponse("it's "+testnetAddr+" thanks", ctx)
	// Both pieces resolve, so the completion rule wins before the
	// acknowledgment rule.
	require.NotNil(t, resp.Action)
	assert.Equal(t, model.ActionTransfer, resp.Action.Type)
}

func TestFallbackAwaitingAddressWithoutAmount(t *testing.T) {
	ctx := model.ConversationContext{
		PendingTransfer: &model.PendingTransfer{RecipientName: "alice"},
		LastAction:      model.AskedForAddress,
	}
	resp := FallbackResponse(testnetAddr, ctx)
	assert.Nil(t, resp.Action)
	assert.Contains(t, resp.Message, "How much STX")
	require.NotNil(t, resp.Context)
	assert.Equal(t, model.AskedForAmount, resp.Context.LastAction)
	assert.Equal(t, testnetAddr, resp.Context.PendingTransfer.Recipient)
}

func TestFallbackDirectIntents(t *testing.T) {
	tests := []struct {
		input string
		want  model.ActionType
	}{
		{"what's my balance?", model.ActionBalance},
		{"check balance", model.ActionBalance},
		{"what's my address?", model.ActionAddress},
		{"help", model.ActionHelp},
		{"show my transactions", model.ActionHistory},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			resp := FallbackResponse(tt.input, model.ConversationContext{})
			require.NotNil(t, resp.Action)
			assert.Equal(t, tt.want, resp.Action.Type)
		})
	}
}

func TestFallbackTroubleshootingQuestion(t *testing.T) {
	for _, input := range []string{
		"why can't I send stx?",
		"how do I send money",
		"why cant i send",
	} {
		resp := FallbackResponse(input, model.ConversationContext{})
		assert.Nil(t, resp.Action, "input %q must not be misread as a send request", input)
		assert.Contains(t, resp.Message, "troubleshoot")
	}
}

func TestFallbackSendWithAmountAndAddress(t *testing.T) {
	resp := FallbackResponse("send 1.5 stx to "+testnetAddr, model.ConversationContext{})
	require.NotNil(t, resp.Action)
	assert.Equal(t, model.ActionTransfer, resp.Action.Type)
	assert.Equal(t, 1.5, resp.Action.Params.Amount)
	assert.Equal(t, testnetAddr, resp.Action.Params.Recipient)
}

func TestFallbackSendToName(t *testing.T) {
	resp := FallbackResponse("send 5 stx to bob", model.ConversationContext{})
	assert.Nil(t, resp.Action, "a bare name is never a valid recipient")
	assert.Contains(t, resp.Message, "bob's STX address")
}

func TestFallbackSendToNameWithoutAmount(t *testing.T) {
	resp := FallbackResponse("send stx to alice", model.ConversationContext{})
	assert.Nil(t, resp.Action)
	assert.Contains(t, resp.Message, "alice")
	assert.Contains(t, resp.Message, "How much STX")
}

func TestFallbackSendAmountOnly(t *testing.T) {
	resp := FallbackResponse("send 3 stx", model.ConversationContext{})
	assert.Nil(t, resp.Action)
	assert.Contains(t, resp.Message, "recipient's STX address")
}

func TestFallbackSendWithoutDetails(t *testing.T) {
	resp := FallbackResponse("send money", model.ConversationContext{})
	assert.Nil(t, resp.Action)
	assert.Contains(t, resp.Message, "I need two things")
}

func TestFallbackStandaloneAddress(t *testing.T) {
	resp := FallbackResponse(testnetAddr, model.ConversationContext{})
	assert.Nil(t, resp.Action)
	assert.Contains(t, resp.Message, "Got the address")
	assert.Contains(t, resp.Message, "how much STX")
}

func TestFallbackStandaloneAmount(t *testing.T) {
	resp := FallbackResponse("0.5", model.ConversationContext{})
	assert.Nil(t, resp.Action)
	assert.Contains(t, resp.Message, "Got the amount")
}

func TestFallbackConfusion(t *testing.T) {
	resp := FallbackResponse("I'm confused", model.ConversationContext{})
	assert.Nil(t, resp.Action)
	assert.Contains(t, resp.Message, "step by step")
}

func TestFallbackDefault(t *testing.T) {
	resp := FallbackResponse("tell me a story", model.ConversationContext{})
	assert.Nil(t, resp.Action)
	assert.Contains(t, resp.Message, "Stacks blockchain operations")
}
