package executor

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/notcotrader/swap-engine/internal/chains"
	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/config"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/oracle"
	"github.com/notcotrader/swap-engine/internal/secret"
	"github.com/notcotrader/swap-engine/internal/services"
)

type submitOutcome struct {
	txID string
	err  error
}

type fakeAdapter struct {
	chain   domain.Chain
	reserve uint64

	balances    []uint64
	balanceErrs []error
	balanceIdx  int

	buildTx    *chains.UnsignedTx
	buildErr   error
	buildCalls int

	submits     []submitOutcome
	submitCalls int
}

func (f *fakeAdapter) Chain() domain.Chain { return f.chain }

func (f *fakeAdapter) ValidateAddress(addr string) bool { return addr != "" && addr != "bad" }

func (f *fakeAdapter) NativeBalance(ctx context.Context, addr string) (uint64, error) {
	i := f.balanceIdx
	if i >= len(f.balances) {
		i = len(f.balances) - 1
	}
	f.balanceIdx++
	if i < len(f.balanceErrs) && f.balanceErrs[i] != nil {
		return 0, f.balanceErrs[i]
	}
	return f.balances[i], nil
}

func (f *fakeAdapter) BuildSwapTransaction(ctx context.Context, p *chains.BuildParams) (*chains.UnsignedTx, error) {
	f.buildCalls++
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	if f.buildTx != nil {
		return f.buildTx, nil
	}
	return &chains.UnsignedTx{Chain: f.chain}, nil
}

func (f *fakeAdapter) BuildTransferTransaction(ctx context.Context, p *chains.TransferParams) (*chains.UnsignedTx, error) {
	f.buildCalls++
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return &chains.UnsignedTx{Chain: f.chain, To: p.ToAddress, ValueRaw: p.AmountRaw}, nil
}

func (f *fakeAdapter) SignAndSubmit(ctx context.Context, tx *chains.UnsignedTx, sec []byte) (string, error) {
	i := f.submitCalls
	f.submitCalls++
	if i >= len(f.submits) {
		return "tx-default", nil
	}
	return f.submits[i].txID, f.submits[i].err
}

func (f *fakeAdapter) GasReserveRaw() uint64 { return f.reserve }

func (f *fakeAdapter) ExplorerTxURL(txID string) string { return "https://example.test/" + txID }

type fakeQuoter struct {
	quote *domain.Quote
	err   error
	calls int
}

func (f *fakeQuoter) Quote(ctx context.Context, q *oracle.Query) (*domain.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

func (f *fakeQuoter) TokenMarket(ctx context.Context, chain domain.Chain, asset string) (*domain.TokenMarket, error) {
	return nil, common.NoLiquidityData("not implemented")
}

func newTestService(t *testing.T, adapter *fakeAdapter, quoter Quoter) (*Service, *secret.Codec) {
	t.Helper()
	codec, err := secret.NewCodec(bytes.Repeat([]byte{7}, 32))
	if err != nil {
		t.Fatal(err)
	}
	journal, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { journal.Close() })

	svc := &Service{
		swapCfg: &config.SwapConfig{
			ProviderTimeout:   time.Second,
			SubmitTimeout:     time.Second,
			MaxSubmitAttempts: 3,
		},
		codec:    codec,
		adapters: map[domain.Chain]chains.Adapter{adapter.chain: adapter},
		quoter:   quoter,
		journal:  journal,
		locks:    newWalletLocks(),
	}
	svc.logger = services.NewServiceLogger(svc)
	return svc, codec
}

func buyRequest(t *testing.T, codec *secret.Codec, amountRaw uint64) *domain.SwapRequest {
	t.Helper()
	enc, err := codec.Encrypt([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	return &domain.SwapRequest{
		Chain:        domain.ChainSolana,
		Wallet:       domain.WalletHandle{Address: "wallet1", EncryptedSecret: enc},
		Direction:    domain.NativeToToken,
		CounterAsset: "MintX",
		AmountRaw:    amountRaw,
		SlippageBps:  500,
	}
}

func TestExecuteHappyPath(t *testing.T) {
	adapter := &fakeAdapter{
		chain:    domain.ChainSolana,
		reserve:  1_000_000,
		balances: []uint64{2_000_000_000, 995_000_000},
		submits:  []submitOutcome{{txID: "sig1"}},
	}
	quoter := &fakeQuoter{quote: &domain.Quote{OutputAmountRaw: 1_000_000_000, Source: "test"}}
	svc, codec := newTestService(t, adapter, quoter)

	res, err := svc.Execute(context.Background(), buyRequest(t, codec, 1_000_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.TxID != "sig1" {
		t.Fatalf("result = %+v", res)
	}
	// spent 1_005_000_000 total, of which 1_000_000_000 was the swap input
	if !res.GasKnown || res.GasConsumedRaw != 5_000_000 {
		t.Errorf("gas = %d known=%v, want 5000000 known", res.GasConsumedRaw, res.GasKnown)
	}

	intent, err := svc.GetIntent(res.Ref)
	if err != nil {
		t.Fatal(err)
	}
	if intent.State != IntentConfirmed || intent.TxID != "sig1" {
		t.Errorf("intent = %+v", intent)
	}
}

func sellRequest(t *testing.T, codec *secret.Codec, amountRaw uint64) *domain.SwapRequest {
	t.Helper()
	req := buyRequest(t, codec, amountRaw)
	req.Direction = domain.TokenToNative
	return req
}

func TestExecuteSellReportsRealizedOutput(t *testing.T) {
	// Selling raises the native balance. The realized output comes from
	// the balance delta, and because fees are folded into that delta the
	// gas share stays unknown.
	adapter := &fakeAdapter{
		chain:    domain.ChainSolana,
		reserve:  1_000_000,
		balances: []uint64{1_000_000_000, 1_494_000_000},
		submits:  []submitOutcome{{txID: "sig1"}},
	}
	quoter := &fakeQuoter{quote: &domain.Quote{OutputAmountRaw: 500_000_000, Source: "test"}}
	svc, codec := newTestService(t, adapter, quoter)

	res, err := svc.Execute(context.Background(), sellRequest(t, codec, 2_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.OutputAmountRaw != 494_000_000 {
		t.Errorf("output = %d, want realized 494000000, not the quoted estimate", res.OutputAmountRaw)
	}
	if res.GasKnown {
		t.Error("gas share of a sell delta cannot be isolated, must stay unknown")
	}
	if res.GasConsumedRaw != 0 {
		t.Errorf("gas = %d, want 0 when unknown", res.GasConsumedRaw)
	}
}

func TestExecuteInsufficientFundsShortfall(t *testing.T) {
	adapter := &fakeAdapter{
		chain:    domain.ChainSolana,
		reserve:  1_000_000,
		balances: []uint64{500_000_000},
	}
	quoter := &fakeQuoter{quote: &domain.Quote{OutputAmountRaw: 1}}
	svc, codec := newTestService(t, adapter, quoter)

	_, err := svc.Execute(context.Background(), buyRequest(t, codec, 1_000_000_000))
	e := common.AsError(err)
	if e == nil || e.Kind != common.KindInsufficientFunds {
		t.Fatalf("err = %v", err)
	}
	// required 1_001_000_000 minus held 500_000_000
	if e.ShortfallRaw != 501_000_000 {
		t.Errorf("shortfall = %d, want 501000000", e.ShortfallRaw)
	}
	if adapter.buildCalls != 0 || adapter.submitCalls != 0 {
		t.Errorf("pipeline progressed past the balance check")
	}
}

func TestExecuteValidatesBeforeIO(t *testing.T) {
	adapter := &fakeAdapter{chain: domain.ChainSolana, balances: []uint64{1}}
	quoter := &fakeQuoter{quote: &domain.Quote{OutputAmountRaw: 1}}
	svc, codec := newTestService(t, adapter, quoter)

	req := buyRequest(t, codec, 1_000_000_000)
	req.Wallet.Address = "bad"

	_, err := svc.Execute(context.Background(), req)
	if common.KindOf(err) != common.KindInvalidInput {
		t.Fatalf("err = %v", err)
	}
	if quoter.calls != 0 || adapter.balanceIdx != 0 {
		t.Errorf("I/O happened before validation finished")
	}
}

func TestExecuteSecondBalanceCheckOnAttachedValue(t *testing.T) {
	// The built message attaches more than the request amount; the
	// fresh check must catch that the wallet cannot cover it.
	adapter := &fakeAdapter{
		chain:    domain.ChainTON,
		reserve:  50_000_000,
		balances: []uint64{1_100_000_000, 1_100_000_000},
		buildTx:  &chains.UnsignedTx{Chain: domain.ChainTON, ValueRaw: 1_240_000_000},
	}
	quoter := &fakeQuoter{quote: &domain.Quote{OutputAmountRaw: 1}}
	svc, codec := newTestService(t, adapter, quoter)

	req := buyRequest(t, codec, 1_000_000_000)
	req.Chain = domain.ChainTON

	_, err := svc.Execute(context.Background(), req)
	e := common.AsError(err)
	if e == nil || e.Kind != common.KindInsufficientFunds {
		t.Fatalf("err = %v", err)
	}
	if adapter.submitCalls != 0 {
		t.Errorf("submitted despite failed second balance check")
	}
}

func TestExecuteRetriesBoundedOnRejection(t *testing.T) {
	reject := common.SubmissionFailed(context.Canceled)
	adapter := &fakeAdapter{
		chain:    domain.ChainSolana,
		reserve:  1_000_000,
		balances: []uint64{2_000_000_000},
		submits: []submitOutcome{
			{err: reject}, {err: reject}, {err: reject}, {err: reject},
		},
	}
	quoter := &fakeQuoter{quote: &domain.Quote{OutputAmountRaw: 1}}
	svc, codec := newTestService(t, adapter, quoter)

	started := time.Now()
	_, err := svc.Execute(context.Background(), buyRequest(t, codec, 1_000_000_000))
	if common.KindOf(err) != common.KindSubmissionFailed {
		t.Fatalf("err = %v", err)
	}
	if adapter.submitCalls != 3 {
		t.Errorf("submit attempts = %d, want 3", adapter.submitCalls)
	}
	if adapter.buildCalls != 3 {
		t.Errorf("each retry must rebuild, builds = %d", adapter.buildCalls)
	}
	// two retries back off 200ms + 400ms
	if elapsed := time.Since(started); elapsed < 600*time.Millisecond {
		t.Errorf("retries finished in %v, want backoff between attempts", elapsed)
	}
}

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := retryBackoff(tt.attempt); got != tt.want {
			t.Errorf("retryBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestExecuteBroadcastTimeoutNeverResubmits(t *testing.T) {
	adapter := &fakeAdapter{
		chain:    domain.ChainSolana,
		reserve:  1_000_000,
		balances: []uint64{2_000_000_000},
		submits:  []submitOutcome{{err: common.NetworkTimeout(context.DeadlineExceeded)}},
	}
	quoter := &fakeQuoter{quote: &domain.Quote{OutputAmountRaw: 1}}
	svc, codec := newTestService(t, adapter, quoter)

	res, err := svc.Execute(context.Background(), buyRequest(t, codec, 1_000_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Unknown || res.Success {
		t.Fatalf("result = %+v, want unknown", res)
	}
	if adapter.submitCalls != 1 {
		t.Errorf("submit attempts = %d, a timed-out broadcast must never be resent", adapter.submitCalls)
	}

	intent, err := svc.GetIntent(res.Ref)
	if err != nil {
		t.Fatal(err)
	}
	if intent.State != IntentUnknown {
		t.Errorf("intent state = %s, want unknown", intent.State)
	}
}

func TestExecuteReconcileFailureKeepsSuccess(t *testing.T) {
	adapter := &fakeAdapter{
		chain:       domain.ChainSolana,
		reserve:     1_000_000,
		balances:    []uint64{2_000_000_000, 0},
		balanceErrs: []error{nil, common.RpcUnavailable(context.Canceled)},
		submits:     []submitOutcome{{txID: "sig1"}},
	}
	quoter := &fakeQuoter{quote: &domain.Quote{OutputAmountRaw: 1}}
	svc, codec := newTestService(t, adapter, quoter)

	res, err := svc.Execute(context.Background(), buyRequest(t, codec, 1_000_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Fatal("swap must stay successful when only reconciliation fails")
	}
	if res.GasKnown {
		t.Error("gas must be unknown when the post-swap balance read fails")
	}
}

func TestExecuteKeyDecryptionFailure(t *testing.T) {
	adapter := &fakeAdapter{
		chain:    domain.ChainSolana,
		reserve:  1_000_000,
		balances: []uint64{2_000_000_000},
	}
	quoter := &fakeQuoter{quote: &domain.Quote{OutputAmountRaw: 1}}
	svc, codec := newTestService(t, adapter, quoter)

	req := buyRequest(t, codec, 1_000_000_000)
	req.Wallet.EncryptedSecret = []byte("garbage that never came from the codec")

	_, err := svc.Execute(context.Background(), req)
	if common.KindOf(err) != common.KindKeyDecryptionFailed {
		t.Fatalf("err = %v", err)
	}
	if adapter.submitCalls != 0 {
		t.Error("nothing may be submitted after a decryption failure")
	}
}

func TestExecuteNoLiquidity(t *testing.T) {
	adapter := &fakeAdapter{chain: domain.ChainSolana, balances: []uint64{1}}
	quoter := &fakeQuoter{err: common.NoLiquidityData("nothing trades this")}
	svc, codec := newTestService(t, adapter, quoter)

	_, err := svc.Execute(context.Background(), buyRequest(t, codec, 1_000_000_000))
	if common.KindOf(err) != common.KindNoLiquidityData {
		t.Fatalf("err = %v", err)
	}
	if adapter.balanceIdx != 0 {
		t.Error("balance read before a quote existed")
	}
}
