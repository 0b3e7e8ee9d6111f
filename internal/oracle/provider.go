// Package oracle turns third party price sources into exact swap
// quotes. Providers are consulted in a fixed priority order and the
// first one with usable liquidity data wins.
package oracle

import (
	"context"

	"github.com/notcotrader/swap-engine/internal/domain"
)

// Query is one pricing request. AmountRaw is the input side in
// smallest units.
type Query struct {
	Chain        domain.Chain
	Direction    domain.Direction
	CounterAsset string
	AmountRaw    uint64
	SlippageBps  uint16
}

// Provider is a single price source. TryQuote returns an error when
// the source cannot answer; the router then moves to the next one.
type Provider interface {
	Name() string
	Supports(chain domain.Chain) bool
	TryQuote(ctx context.Context, q *Query) (*domain.Quote, error)
}

// MarketProvider additionally serves token metadata and market stats.
type MarketProvider interface {
	Provider
	TokenMarket(ctx context.Context, chain domain.Chain, asset string) (*domain.TokenMarket, error)
}
