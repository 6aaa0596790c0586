package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testnetAddr = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"
	mainnetAddr = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
		ok   bool
	}{
		{"bare amount", "0.01", 0.01, true},
		{"amount with unit", "send 5 stx please", 5, true},
		{"amount with uppercase unit", "2.5 STX", 2.5, true},
		{"amount inside sentence", "I want to send 10 to someone", 10, true},
		{"no amount", "what's my balance", 0, false},
		{"zero amount treated as absent", "send 0 stx", 0, false},
		{"digits inside address are not an amount", testnetAddr, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAmount(tt.text)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractAddress(t *testing.T) {
	addr, ok := ExtractAddress("send 0.01 stx to " + testnetAddr)
	require.True(t, ok)
	assert.Equal(t, testnetAddr, addr)

	addr, ok = ExtractAddress(mainnetAddr + " is my friend")
	require.True(t, ok)
	assert.Equal(t, mainnetAddr, addr)

	_, ok = ExtractAddress("send 5 stx to bob")
	assert.False(t, ok)

	// 38 trailing characters is one short of a full principal
	_, ok = ExtractAddress("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPG")
	assert.False(t, ok)
}

func TestAddressWinsOverEmbeddedDigits(t *testing.T) {
	// The digit runs inside the address must not leak out as an amount,
	// while the explicit amount before it still parses.
	text := "send 0.01 stx to " + testnetAddr

	amount, ok := ExtractAmount(text)
	require.True(t, ok)
	assert.Equal(t, 0.01, amount)

	addr, ok := ExtractAddress(text)
	require.True(t, ok)
	assert.Equal(t, testnetAddr, addr)
}

func TestMatchStandalone(t *testing.T) {
	addr, ok := matchStandaloneAddress(testnetAddr)
	require.True(t, ok)
	assert.Equal(t, testnetAddr, addr)

	_, ok = matchStandaloneAddress("here: " + testnetAddr)
	assert.False(t, ok)

	amount, ok := matchStandaloneAmount("0.5")
	require.True(t, ok)
	assert.Equal(t, 0.5, amount)

	amount, ok = matchStandaloneAmount("3 stx")
	require.True(t, ok)
	assert.Equal(t, 3.0, amount)

	_, ok = matchStandaloneAmount("send 3 stx")
	assert.False(t, ok)
}
