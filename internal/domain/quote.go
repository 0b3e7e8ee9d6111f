package domain

import "time"

// Quote is a provider's estimate of output for a given input amount.
// Quotes are ephemeral: fetched fresh per swap request and never cached.
type Quote struct {
	OutputAmountRaw uint64

	// PriceImpactPct is a display-only estimate in percent. When the
	// provider does not report it, it is approximated from pool liquidity.
	PriceImpactPct float64

	Source    string
	FetchedAt time.Time
}

// TokenMarket carries the market metadata shown in the bot's token view.
type TokenMarket struct {
	Name    string  `json:"name"`
	Symbol  string  `json:"symbol"`
	Address string  `json:"address"`
	Chain   Chain   `json:"chain"`

	PriceUsd     float64 `json:"priceUsd"`
	LiquidityUsd float64 `json:"liquidityUsd"`
	MarketCapUsd float64 `json:"marketCapUsd"`

	Source string `json:"source"`
}
