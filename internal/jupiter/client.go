// Package jupiter provides a client for the Jupiter aggregator API on Solana.
package jupiter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
)

const (
	// LiteBaseURL is the free-tier endpoint.
	LiteBaseURL = "https://lite-api.jup.ag/swap/v1"

	// ProBaseURL requires an API key.
	ProBaseURL = "https://api.jup.ag/swap/v1"

	DefaultTimeout = 30 * time.Second

	SwapModeExactIn  = "ExactIn"
	SwapModeExactOut = "ExactOut"
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
		if config.APIKey != "" {
			baseURL = ProBaseURL
		} else {
			baseURL = LiteBaseURL
		}
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     config.APIKey,
	}
}

// GetQuote fetches a swap quote.
func (c *Client) GetQuote(ctx context.Context, params *QuoteParams) (*QuoteResponse, error) {
	if params.InputMint == "" || params.OutputMint == "" {
		return nil, fmt.Errorf("inputMint and outputMint are required")
	}
	if params.AmountRaw == 0 {
		return nil, fmt.Errorf("amount is required")
	}

	query := url.Values{}
	query.Set("inputMint", params.InputMint)
	query.Set("outputMint", params.OutputMint)
	query.Set("amount", strconv.FormatUint(params.AmountRaw, 10))
	if params.SlippageBps > 0 {
		query.Set("slippageBps", strconv.Itoa(int(params.SlippageBps)))
	}
	if params.SwapMode != "" {
		query.Set("swapMode", params.SwapMode)
	}

	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/quote?%s", c.baseURL, query.Encode()), nil)
	if err != nil {
		return nil, err
	}

	var quote QuoteResponse
	if err := sonic.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("failed to decode quote: %w", err)
	}
	quote.Raw = body
	return &quote, nil
}

// BuildSwap asks Jupiter to build the unsigned swap transaction for a quote.
func (c *Client) BuildSwap(ctx context.Context, params *SwapParams) (*SwapResponse, error) {
	if params.Quote == nil || len(params.Quote.Raw) == 0 {
		return nil, fmt.Errorf("quote is required")
	}
	if params.UserPublicKey == "" {
		return nil, fmt.Errorf("userPublicKey is required")
	}

	reqBody, err := sonic.Marshal(swapRequestBody{
		QuoteResponse:    params.Quote.Raw,
		UserPublicKey:    params.UserPublicKey,
		WrapAndUnwrapSol: params.WrapUnwrapSol,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode swap request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/swap", reqBody)
	if err != nil {
		return nil, err
	}

	var swap SwapResponse
	if err := sonic.Unmarshal(body, &swap); err != nil {
		return nil, fmt.Errorf("failed to decode swap response: %w", err)
	}
	if swap.SwapTransaction == "" {
		return nil, fmt.Errorf("swap response missing transaction")
	}
	return &swap, nil
}

func (c *Client) do(ctx context.Context, method, requestURL string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jupiter API returned %d: %s", resp.StatusCode, respBody)
	}
	return respBody, nil
}
