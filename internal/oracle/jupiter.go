package oracle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/jupiter"
)

// Jupiter quotes against the aggregator's routing engine, so its
// output already reflects real route depth.
type Jupiter struct {
	client *jupiter.Client
	name   string
}

// NewJupiter wraps a configured client. The name distinguishes the
// free and the authenticated tier in metrics and quote sources.
func NewJupiter(client *jupiter.Client, name string) *Jupiter {
	if name == "" {
		name = "jupiter"
	}
	return &Jupiter{client: client, name: name}
}

func (j *Jupiter) Name() string { return j.name }

func (j *Jupiter) Supports(chain domain.Chain) bool { return chain == domain.ChainSolana }

func (j *Jupiter) TryQuote(ctx context.Context, q *Query) (*domain.Quote, error) {
	inputMint, outputMint := common.WrappedSolMint.String(), q.CounterAsset
	if q.Direction == domain.TokenToNative {
		inputMint, outputMint = q.CounterAsset, common.WrappedSolMint.String()
	}

	quote, err := j.client.GetQuote(ctx, &jupiter.QuoteParams{
		InputMint:   inputMint,
		OutputMint:  outputMint,
		AmountRaw:   q.AmountRaw,
		SlippageBps: q.SlippageBps,
		SwapMode:    jupiter.SwapModeExactIn,
	})
	if err != nil {
		return nil, err
	}

	outRaw, err := strconv.ParseUint(quote.OutAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad outAmount %q: %w", quote.OutAmount, err)
	}
	impact, _ := strconv.ParseFloat(quote.PriceImpactPct, 64)

	return &domain.Quote{
		OutputAmountRaw: outRaw,
		PriceImpactPct:  impact * 100,
		Source:          j.name,
		FetchedAt:       time.Now(),
	}, nil
}
