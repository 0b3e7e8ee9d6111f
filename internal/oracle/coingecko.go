package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/notcotrader/swap-engine/internal/domain"
)

const coingeckoBaseURL = "https://api.coingecko.com"

var coingeckoIDs = map[domain.Chain]string{
	domain.ChainSolana: "solana",
	domain.ChainTON:    "the-open-network",
}

// Coingecko serves the native coin's USD price for display math. It is
// not a swap quote source.
type Coingecko struct {
	httpClient *http.Client
	baseURL    string
}

func NewCoingecko(httpClient *http.Client, baseURL string) *Coingecko {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	return &Coingecko{httpClient: httpClient, baseURL: baseURL}
}

func (c *Coingecko) NativeUsdPrice(ctx context.Context, chain domain.Chain) (*big.Rat, error) {
	id, ok := coingeckoIDs[chain]
	if !ok {
		return nil, fmt.Errorf("no coingecko id for chain %q", chain)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd", c.baseURL, id), nil)
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
		return nil, fmt.Errorf("coingecko returned %d", resp.StatusCode)
	}

	var decoded map[string]map[string]json.Number
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode price: %w", err)
	}
	raw, ok := decoded[id]["usd"]
	if !ok {
		return nil, fmt.Errorf("no usd price for %s", id)
	}
	price, ok := new(big.Rat).SetString(raw.String())
	if !ok || price.Sign() <= 0 {
		return nil, fmt.Errorf("bad usd price %q", raw.String())
	}
	return price, nil
}
