// Package stonfi provides a client for the STON.fi DEX HTTP API on TON.
package stonfi

import (
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
	DefaultBaseURL = "https://api.ston.fi"

	DefaultTimeout = 10 * time.Second
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

type ClientConfig struct {
	BaseURL    string
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
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// SimulateParams describe one side of a swap for /v1/swap/simulate.
// Units are smallest units of the offered asset.
type SimulateParams struct {
	OfferAddress string
	AskAddress   string
	UnitsRaw     uint64
	SlippageBps  uint16
}

type simulateResponse struct {
	RouterAddress string `json:"router_address"`
	AskUnits      string `json:"ask_units"`
	MinAskUnits   string `json:"min_ask_units"`
	OfferUnits    string `json:"offer_units"`
	SwapRate      string `json:"swap_rate"`
}

// SimulateResult is the decoded simulation with amounts parsed to integers.
type SimulateResult struct {
	RouterAddress  string
	AskUnitsRaw    uint64
	MinAskUnitsRaw uint64
	OfferUnitsRaw  uint64
}

// Simulate asks STON.fi to price a swap and to name the router that would
// execute it. The slippage tolerance parameter is a percentage, matching
// the API's contract (bps / 100).
func (c *Client) Simulate(ctx context.Context, params *SimulateParams) (*SimulateResult, error) {
	if params.OfferAddress == "" || params.AskAddress == "" {
		return nil, fmt.Errorf("offer and ask addresses are required")
	}
	if params.UnitsRaw == 0 {
		return nil, fmt.Errorf("units are required")
	}

	query := url.Values{}
	query.Set("offer_address", params.OfferAddress)
	query.Set("ask_address", params.AskAddress)
	query.Set("units", strconv.FormatUint(params.UnitsRaw, 10))
	query.Set("slippage_tolerance", formatSlippagePct(params.SlippageBps))
	query.Set("dex_v2", "true")

	requestURL := fmt.Sprintf("%s/v1/swap/simulate?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

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
		return nil, fmt.Errorf("ston.fi API returned %d: %s", resp.StatusCode, body)
	}

	var decoded simulateResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode simulation: %w", err)
	}
	if decoded.RouterAddress == "" {
		return nil, fmt.Errorf("simulation response missing router address")
	}

	result := &SimulateResult{RouterAddress: decoded.RouterAddress}
	if result.AskUnitsRaw, err = parseUnits(decoded.AskUnits); err != nil {
		return nil, fmt.Errorf("bad ask_units: %w", err)
	}
	if result.MinAskUnitsRaw, err = parseUnits(decoded.MinAskUnits); err != nil {
		return nil, fmt.Errorf("bad min_ask_units: %w", err)
	}
	if decoded.OfferUnits != "" {
		if result.OfferUnitsRaw, err = parseUnits(decoded.OfferUnits); err != nil {
			return nil, fmt.Errorf("bad offer_units: %w", err)
		}
	}
	return result, nil
}

func parseUnits(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty units")
	}
	return strconv.ParseUint(s, 10, 64)
}

// formatSlippagePct renders bps as the percentage string the API expects,
// without going through a float.
func formatSlippagePct(bps uint16) string {
	whole := bps / 100
	frac := bps % 100
	if frac == 0 {
		return strconv.Itoa(int(whole))
	}
	return fmt.Sprintf("%d.%02d", whole, frac)
}
