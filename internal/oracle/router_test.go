package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
)

type fakeProvider struct {
	name  string
	chain domain.Chain
	quote *domain.Quote
	err   error
	calls int
}

func (f *fakeProvider) Name() string                     { return f.name }
func (f *fakeProvider) Supports(chain domain.Chain) bool { return chain == f.chain }
func (f *fakeProvider) TryQuote(ctx context.Context, q *Query) (*domain.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

func solQuery() *Query {
	return &Query{
		Chain:        domain.ChainSolana,
		Direction:    domain.NativeToToken,
		CounterAsset: "MintX",
		AmountRaw:    1_000_000_000,
	}
}

func TestRouterFirstProviderWins(t *testing.T) {
	first := &fakeProvider{name: "first", chain: domain.ChainSolana,
		quote: &domain.Quote{OutputAmountRaw: 100, Source: "first"}}
	second := &fakeProvider{name: "second", chain: domain.ChainSolana,
		quote: &domain.Quote{OutputAmountRaw: 200, Source: "second"}}

	r := NewRouter(time.Second, first, second)
	quote, err := r.Quote(context.Background(), solQuery())
	if err != nil {
		t.Fatal(err)
	}
	if quote.Source != "first" {
		t.Errorf("source = %q, want first", quote.Source)
	}
	if second.calls != 0 {
		t.Errorf("second provider called %d times, want 0", second.calls)
	}
}

func TestRouterFallsThroughErrors(t *testing.T) {
	broken := &fakeProvider{name: "broken", chain: domain.ChainSolana, err: errors.New("down")}
	empty := &fakeProvider{name: "empty", chain: domain.ChainSolana,
		quote: &domain.Quote{OutputAmountRaw: 0}}
	good := &fakeProvider{name: "good", chain: domain.ChainSolana,
		quote: &domain.Quote{OutputAmountRaw: 42, Source: "good"}}

	r := NewRouter(time.Second, broken, empty, good)
	quote, err := r.Quote(context.Background(), solQuery())
	if err != nil {
		t.Fatal(err)
	}
	if quote.Source != "good" {
		t.Errorf("source = %q, want good", quote.Source)
	}
	if broken.calls != 1 || empty.calls != 1 || good.calls != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/1/1", broken.calls, empty.calls, good.calls)
	}
}

func TestRouterSkipsOtherChains(t *testing.T) {
	tonOnly := &fakeProvider{name: "ton", chain: domain.ChainTON,
		quote: &domain.Quote{OutputAmountRaw: 1}}

	r := NewRouter(time.Second, tonOnly)
	_, err := r.Quote(context.Background(), solQuery())
	if common.KindOf(err) != common.KindNoLiquidityData {
		t.Errorf("kind = %v, want NO_LIQUIDITY_DATA", common.KindOf(err))
	}
	if tonOnly.calls != 0 {
		t.Errorf("ton provider called for solana query")
	}
}

func TestRouterAllFail(t *testing.T) {
	a := &fakeProvider{name: "a", chain: domain.ChainSolana, err: errors.New("down")}
	b := &fakeProvider{name: "b", chain: domain.ChainSolana, err: errors.New("down")}

	r := NewRouter(time.Second, a, b)
	_, err := r.Quote(context.Background(), solQuery())
	if common.KindOf(err) != common.KindNoLiquidityData {
		t.Errorf("kind = %v, want NO_LIQUIDITY_DATA", common.KindOf(err))
	}
}

// Quoting must leave no trace: repeated quotes hit providers afresh
// and never mutate shared state.
func TestRouterQuoteIdempotent(t *testing.T) {
	p := &fakeProvider{name: "p", chain: domain.ChainSolana,
		quote: &domain.Quote{OutputAmountRaw: 7, Source: "p"}}

	r := NewRouter(time.Second, p)
	for i := 0; i < 3; i++ {
		quote, err := r.Quote(context.Background(), solQuery())
		if err != nil {
			t.Fatal(err)
		}
		if quote.OutputAmountRaw != 7 {
			t.Errorf("output = %d, want 7", quote.OutputAmountRaw)
		}
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
}
