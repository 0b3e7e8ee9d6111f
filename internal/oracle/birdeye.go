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

	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
)

const birdeyeBaseURL = "https://public-api.birdeye.so"

// Birdeye is a keyed Solana price feed used as the last fallback.
// Output is derived from the USD price ratio of the two mints.
type Birdeye struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewBirdeye(httpClient *http.Client, baseURL, apiKey string) *Birdeye {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = birdeyeBaseURL
	}
	return &Birdeye{httpClient: httpClient, baseURL: baseURL, apiKey: apiKey}
}

func (b *Birdeye) Name() string { return "birdeye" }

func (b *Birdeye) Supports(chain domain.Chain) bool {
	return chain == domain.ChainSolana && b.apiKey != ""
}

type birdeyePriceResponse struct {
	Data struct {
		Value json.Number `json:"value"`
	} `json:"data"`
	Success bool `json:"success"`
}

func (b *Birdeye) TryQuote(ctx context.Context, q *Query) (*domain.Quote, error) {
	tokenUsd, err := b.price(ctx, q.CounterAsset)
	if err != nil {
		return nil, err
	}
	solUsd, err := b.price(ctx, common.WrappedSolMint.String())
	if err != nil {
		return nil, err
	}

	amount := new(big.Rat).SetUint64(q.AmountRaw)
	var out *big.Rat
	if q.Direction == domain.NativeToToken {
		out = new(big.Rat).Mul(amount, new(big.Rat).Quo(solUsd, tokenUsd))
	} else {
		out = new(big.Rat).Mul(amount, new(big.Rat).Quo(tokenUsd, solUsd))
	}

	return &domain.Quote{
		OutputAmountRaw: ratFloorUint64(out),
		Source:          b.Name(),
		FetchedAt:       time.Now(),
	}, nil
}

func (b *Birdeye) price(ctx context.Context, mint string) (*big.Rat, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/defi/price?address=%s", b.baseURL, mint), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-KEY", b.apiKey)
	req.Header.Set("x-chain", "solana")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("birdeye returned %d", resp.StatusCode)
	}

	var decoded birdeyePriceResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode price: %w", err)
	}
	price, ok := new(big.Rat).SetString(decoded.Data.Value.String())
	if !ok || price.Sign() <= 0 {
		return nil, fmt.Errorf("no usable price for %s", mint)
	}
	return price, nil
}
