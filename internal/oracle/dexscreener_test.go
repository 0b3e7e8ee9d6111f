package oracle

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/notcotrader/swap-engine/internal/domain"
)

const pairsBody = `{"pairs":[
	{"chainId":"ton","priceNative":"9.9","priceUsd":"30.0","liquidity":{"usd":1000}},
	{"chainId":"solana","priceNative":"0.5","priceUsd":"75.0","liquidity":{"usd":50000},
	 "marketCap":1000000,"baseToken":{"address":"MintX","name":"Token X","symbol":"TX"}},
	{"chainId":"solana","priceNative":"0.49","priceUsd":"74.0","liquidity":{"usd":100}}
]}`

func newTestDexscreener(t *testing.T, body string) *Dexscreener {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewDexscreener(srv.Client(), srv.URL)
}

func TestDexscreenerBuyQuote(t *testing.T) {
	d := newTestDexscreener(t, pairsBody)

	// 1 native at a native price of 0.5 buys exactly 2 tokens. The
	// deepest solana pool must be the one picked.
	quote, err := d.TryQuote(context.Background(), &Query{
		Chain:        domain.ChainSolana,
		Direction:    domain.NativeToToken,
		CounterAsset: "MintX",
		AmountRaw:    1_000_000_000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if quote.OutputAmountRaw != 2_000_000_000 {
		t.Errorf("output = %d, want 2000000000", quote.OutputAmountRaw)
	}
	if quote.Source != "dexscreener" {
		t.Errorf("source = %q", quote.Source)
	}
	if quote.PriceImpactPct < 0 || quote.PriceImpactPct > 100 {
		t.Errorf("impact out of range: %f", quote.PriceImpactPct)
	}
}

func TestDexscreenerSellQuote(t *testing.T) {
	d := newTestDexscreener(t, pairsBody)

	quote, err := d.TryQuote(context.Background(), &Query{
		Chain:        domain.ChainSolana,
		Direction:    domain.TokenToNative,
		CounterAsset: "MintX",
		AmountRaw:    4_000_000_000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if quote.OutputAmountRaw != 2_000_000_000 {
		t.Errorf("output = %d, want 2000000000", quote.OutputAmountRaw)
	}
}

func TestDexscreenerNoPairsForChain(t *testing.T) {
	d := newTestDexscreener(t, `{"pairs":[{"chainId":"bsc","priceNative":"1","liquidity":{"usd":1}}]}`)

	if _, err := d.TryQuote(context.Background(), &Query{
		Chain:        domain.ChainSolana,
		Direction:    domain.NativeToToken,
		CounterAsset: "MintX",
		AmountRaw:    1,
	}); err == nil {
		t.Fatal("expected error when no pairs match the chain")
	}
}

func TestDexscreenerTokenMarket(t *testing.T) {
	d := newTestDexscreener(t, pairsBody)

	market, err := d.TokenMarket(context.Background(), domain.ChainSolana, "MintX")
	if err != nil {
		t.Fatal(err)
	}
	if market.Symbol != "TX" || market.LiquidityUsd != 50000 || market.MarketCapUsd != 1000000 {
		t.Errorf("market = %+v", market)
	}
}

func TestRatFloorUint64(t *testing.T) {
	tests := []struct {
		num, den int64
		want     uint64
	}{
		{7, 2, 3},
		{9, 3, 3},
		{1, 3, 0},
		{-5, 2, 0},
		{0, 1, 0},
	}
	for _, tt := range tests {
		r := big.NewRat(tt.num, tt.den)
		if got := ratFloorUint64(r); got != tt.want {
			t.Errorf("ratFloorUint64(%d/%d) = %d, want %d", tt.num, tt.den, got, tt.want)
		}
	}
}
