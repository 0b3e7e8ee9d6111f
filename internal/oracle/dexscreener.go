package oracle

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/notcotrader/swap-engine/internal/domain"
)

const dexscreenerBaseURL = "https://api.dexscreener.com"

// Dexscreener is the primary quote source on both chains. Pair prices
// come back as decimal strings and are kept exact through big.Rat.
type Dexscreener struct {
	httpClient *http.Client
	baseURL    string
}

func NewDexscreener(httpClient *http.Client, baseURL string) *Dexscreener {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = dexscreenerBaseURL
	}
	return &Dexscreener{httpClient: httpClient, baseURL: baseURL}
}

func (d *Dexscreener) Name() string { return "dexscreener" }

func (d *Dexscreener) Supports(chain domain.Chain) bool { return chain.Valid() }

type dexscreenerPair struct {
	ChainID     string `json:"chainId"`
	PriceNative string `json:"priceNative"`
	PriceUsd    string `json:"priceUsd"`
	Liquidity   struct {
		Usd float64 `json:"usd"`
	} `json:"liquidity"`
	MarketCap float64 `json:"marketCap"`
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
}

type dexscreenerResponse struct {
	Pairs []dexscreenerPair `json:"pairs"`
}

func (d *Dexscreener) TryQuote(ctx context.Context, q *Query) (*domain.Quote, error) {
	pair, err := d.bestPair(ctx, q.Chain, q.CounterAsset)
	if err != nil {
		return nil, err
	}

	priceNative, ok := new(big.Rat).SetString(pair.PriceNative)
	if !ok || priceNative.Sign() <= 0 {
		return nil, fmt.Errorf("pair has no native price")
	}

	// Input and output both use 9 decimals, so the raw amounts scale
	// through the price ratio directly.
	amount := new(big.Rat).SetUint64(q.AmountRaw)
	var out *big.Rat
	if q.Direction == domain.NativeToToken {
		out = new(big.Rat).Quo(amount, priceNative)
	} else {
		out = new(big.Rat).Mul(amount, priceNative)
	}

	return &domain.Quote{
		OutputAmountRaw: ratFloorUint64(out),
		PriceImpactPct:  approxPriceImpact(q, pair, priceNative),
		Source:          d.Name(),
		FetchedAt:       time.Now(),
	}, nil
}

func (d *Dexscreener) TokenMarket(ctx context.Context, chain domain.Chain, asset string) (*domain.TokenMarket, error) {
	pair, err := d.bestPair(ctx, chain, asset)
	if err != nil {
		return nil, err
	}
	priceUsd, _ := strconv.ParseFloat(pair.PriceUsd, 64)
	return &domain.TokenMarket{
		Name:         pair.BaseToken.Name,
		Symbol:       pair.BaseToken.Symbol,
		Address:      pair.BaseToken.Address,
		Chain:        chain,
		PriceUsd:     priceUsd,
		LiquidityUsd: pair.Liquidity.Usd,
		MarketCapUsd: pair.MarketCap,
		Source:       d.Name(),
	}, nil
}

// bestPair picks the deepest pool for the token on the requested chain.
func (d *Dexscreener) bestPair(ctx context.Context, chain domain.Chain, asset string) (*dexscreenerPair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/latest/dex/tokens/%s", d.baseURL, asset), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dexscreener returned %d", resp.StatusCode)
	}

	var decoded dexscreenerResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode pairs: %w", err)
	}

	var best *dexscreenerPair
	for i := range decoded.Pairs {
		pair := &decoded.Pairs[i]
		if pair.ChainID != string(chain) {
			continue
		}
		if best == nil || pair.Liquidity.Usd > best.Liquidity.Usd {
			best = pair
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no %s pairs for %s", chain, asset)
	}
	return best, nil
}

// approxPriceImpact estimates the trade's share of pool depth. Display
// only, so float math is fine here.
func approxPriceImpact(q *Query, pair *dexscreenerPair, priceNative *big.Rat) float64 {
	if pair.Liquidity.Usd <= 0 {
		return 0
	}
	priceUsd, ok := new(big.Rat).SetString(pair.PriceUsd)
	if !ok || priceUsd.Sign() <= 0 {
		return 0
	}

	inputUsd := priceUsd
	if q.Direction == domain.NativeToToken {
		inputUsd = new(big.Rat).Quo(priceUsd, priceNative)
	}
	human := new(big.Rat).SetFrac(new(big.Int).SetUint64(q.AmountRaw), big.NewInt(1_000_000_000))
	tradeUsdRat := new(big.Rat).Mul(human, inputUsd)
	tradeUsd, _ := tradeUsdRat.Float64()

	impact := tradeUsd / (pair.Liquidity.Usd + tradeUsd) * 100
	if impact > 100 {
		impact = 100
	}
	if impact < 0 {
		impact = 0
	}
	return impact
}

func ratFloorUint64(r *big.Rat) uint64 {
	if r.Sign() <= 0 {
		return 0
	}
	q := new(big.Int).Quo(r.Num(), r.Denom())
	if !q.IsUint64() {
		return 0
	}
	return q.Uint64()
}
