package oracle

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/metrics"
)

// Router walks its providers in order and returns the first usable
// quote. A provider error or a zero output moves on to the next.
type Router struct {
	providers []Provider
	timeout   time.Duration
}

func NewRouter(timeout time.Duration, providers ...Provider) *Router {
	return &Router{providers: providers, timeout: timeout}
}

func (r *Router) Quote(ctx context.Context, q *Query) (*domain.Quote, error) {
	tried := 0
	for _, provider := range r.providers {
		if !provider.Supports(q.Chain) {
			continue
		}
		tried++

		quote, err := r.tryOne(ctx, provider, q)
		if err != nil {
			metrics.QuoteRequests.WithLabelValues(provider.Name(), "error").Inc()
			log.Debug().Err(err).Str("provider", provider.Name()).
				Str("asset", q.CounterAsset).Msg("quote provider failed")
			continue
		}
		if quote.OutputAmountRaw == 0 {
			metrics.QuoteRequests.WithLabelValues(provider.Name(), "empty").Inc()
			continue
		}

		metrics.QuoteRequests.WithLabelValues(provider.Name(), "ok").Inc()
		metrics.ProviderFallbackDepth.Observe(float64(tried))
		return quote, nil
	}
	return nil, common.NoLiquidityData("no provider could price " + q.CounterAsset)
}

// TokenMarket serves metadata from the first provider that carries it.
func (r *Router) TokenMarket(ctx context.Context, chain domain.Chain, asset string) (*domain.TokenMarket, error) {
	for _, provider := range r.providers {
		mp, ok := provider.(MarketProvider)
		if !ok || !provider.Supports(chain) {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		market, err := mp.TokenMarket(callCtx, chain, asset)
		cancel()
		if err != nil {
			continue
		}
		return market, nil
	}
	return nil, common.NoLiquidityData("no market data for " + asset)
}

func (r *Router) tryOne(ctx context.Context, provider Provider, q *Query) (*domain.Quote, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return provider.TryQuote(callCtx, q)
}
