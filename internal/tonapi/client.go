// Package tonapi provides a client for the tonapi.io REST API.
package tonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
)

const (
	DefaultBaseURL = "https://tonapi.io"

	DefaultTimeout = 10 * time.Second
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = &ClientConfig{}
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, apiKey: config.APIKey}
}

type ratesResponse struct {
	Rates map[string]struct {
		Prices map[string]json.Number `json:"prices"`
	} `json:"rates"`
}

// TokenRate prices one token in TON. The rate is exact, taken from the
// API's decimal string without a float round trip.
func (c *Client) TokenRate(ctx context.Context, tokenAddress string) (*big.Rat, error) {
	query := url.Values{}
	query.Set("tokens", tokenAddress)
	query.Set("currencies", "ton")

	body, err := c.get(ctx, "/v2/rates?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var decoded ratesResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}
	for _, entry := range decoded.Rates {
		price, ok := entry.Prices["TON"]
		if !ok {
			continue
		}
		rate, ok := new(big.Rat).SetString(price.String())
		if !ok || rate.Sign() <= 0 {
			return nil, fmt.Errorf("bad TON rate %q", price.String())
		}
		return rate, nil
	}
	return nil, fmt.Errorf("no TON rate for %s", tokenAddress)
}

// JettonInfo is the master contract metadata tonapi exposes.
type JettonInfo struct {
	Metadata struct {
		Name     string `json:"name"`
		Symbol   string `json:"symbol"`
		Decimals string `json:"decimals"`
	} `json:"metadata"`
	TotalSupply  string `json:"total_supply"`
	Verification string `json:"verification"`
}

func (c *Client) GetJettonInfo(ctx context.Context, masterAddress string) (*JettonInfo, error) {
	body, err := c.get(ctx, "/v2/jettons/"+url.PathEscape(masterAddress))
	if err != nil {
		return nil, err
	}
	var info JettonInfo
	if err := sonic.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode jetton info: %w", err)
	}
	return &info, nil
}

type walletAddressResponse struct {
	Decoded struct {
		JettonWalletAddress string `json:"jetton_wallet_address"`
	} `json:"decoded"`
}

// GetJettonWalletAddress resolves the jetton wallet a master contract
// assigns to an owner, via the get_wallet_address get-method.
func (c *Client) GetJettonWalletAddress(ctx context.Context, masterAddress, ownerAddress string) (string, error) {
	path := fmt.Sprintf("/v2/blockchain/accounts/%s/methods/get_wallet_address?args=%s",
		url.PathEscape(masterAddress), url.QueryEscape(ownerAddress))
	body, err := c.get(ctx, path)
	if err != nil {
		return "", err
	}
	var decoded walletAddressResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode get_wallet_address: %w", err)
	}
	if decoded.Decoded.JettonWalletAddress == "" {
		return "", fmt.Errorf("get_wallet_address returned no address")
	}
	return decoded.Decoded.JettonWalletAddress, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tonapi returned %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
