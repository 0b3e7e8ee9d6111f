package oracle

import (
	"context"
	"math/big"
	"time"

	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/tonapi"
)

// TonAPI prices jettons from the indexer's TON-denominated rate feed.
type TonAPI struct {
	client *tonapi.Client
}

func NewTonAPI(client *tonapi.Client) *TonAPI {
	return &TonAPI{client: client}
}

func (t *TonAPI) Name() string { return "tonapi" }

func (t *TonAPI) Supports(chain domain.Chain) bool { return chain == domain.ChainTON }

func (t *TonAPI) TryQuote(ctx context.Context, q *Query) (*domain.Quote, error) {
	// rate is TON per token.
	rate, err := t.client.TokenRate(ctx, q.CounterAsset)
	if err != nil {
		return nil, err
	}

	amount := new(big.Rat).SetUint64(q.AmountRaw)
	var out *big.Rat
	if q.Direction == domain.NativeToToken {
		out = new(big.Rat).Quo(amount, rate)
	} else {
		out = new(big.Rat).Mul(amount, rate)
	}

	return &domain.Quote{
		OutputAmountRaw: ratFloorUint64(out),
		Source:          t.Name(),
		FetchedAt:       time.Now(),
	}, nil
}
