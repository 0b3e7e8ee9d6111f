package oracle

import (
	"context"
	"time"

	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/stonfi"
)

// Stonfi quotes through the DEX's own simulator, the same engine the
// execution path routes through.
type Stonfi struct {
	client *stonfi.Client
}

func NewStonfi(client *stonfi.Client) *Stonfi {
	return &Stonfi{client: client}
}

func (s *Stonfi) Name() string { return "stonfi" }

func (s *Stonfi) Supports(chain domain.Chain) bool { return chain == domain.ChainTON }

func (s *Stonfi) TryQuote(ctx context.Context, q *Query) (*domain.Quote, error) {
	offer, ask := common.PTONMasterMainnet, q.CounterAsset
	if q.Direction == domain.TokenToNative {
		offer, ask = q.CounterAsset, common.PTONMasterMainnet
	}

	sim, err := s.client.Simulate(ctx, &stonfi.SimulateParams{
		OfferAddress: offer,
		AskAddress:   ask,
		UnitsRaw:     q.AmountRaw,
		SlippageBps:  q.SlippageBps,
	})
	if err != nil {
		return nil, err
	}

	return &domain.Quote{
		OutputAmountRaw: sim.AskUnitsRaw,
		Source:          s.Name(),
		FetchedAt:       time.Now(),
	}, nil
}
