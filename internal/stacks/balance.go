package stacks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	logx "github.com/stacks-chat-assistant/server/pkg/logger"
)

const microStxPerStx = 1_000_000

// BalanceClient fetches STX balances from the Hiro API for the configured
// network.
type BalanceClient struct {
	httpClient *http.Client
	baseURL    string
	network    Network
}

// NewBalanceClient builds a client for the given network. A nil httpClient
// gets a default with a 10s timeout.
func NewBalanceClient(network Network, httpClient *http.Client) *BalanceClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &BalanceClient{
		httpClient: httpClient,
		baseURL:    network.APIURL(),
		network:    network,
	}
}

// WithBaseURL overrides the API base URL. Used by tests.
func (c *BalanceClient) WithBaseURL(url string) *BalanceClient {
	c.baseURL = url
	return c
}

type balancesResponse struct {
	STX struct {
		Balance string `json:"balance"`
	} `json:"stx"`
}

// GetSTXBalance returns the spendable STX balance for the address,
// converted from microSTX.
func (c *BalanceClient) GetSTXBalance(ctx context.Context, address string) (float64, error) {
	url := fmt.Sprintf("%s/extended/v1/address/%s/balances", c.baseURL, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build balance request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logx.Error().Err(err).Str("address", address).Msg("balance request failed")
		return 0, fmt.Errorf("fetch balance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch balance: unexpected status %d", resp.StatusCode)
	}

	var body balancesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode balance response: %w", err)
	}

	micro, err := strconv.ParseInt(body.STX.Balance, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance %q: %w", body.STX.Balance, err)
	}

	return float64(micro) / microStxPerStx, nil
}
