package executor

import (
	"context"
	"testing"

	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/secret"
)

func withdrawRequest(t *testing.T, codec *secret.Codec, amountRaw uint64) *domain.WithdrawRequest {
	t.Helper()
	enc, err := codec.Encrypt([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	return &domain.WithdrawRequest{
		Chain:     domain.ChainSolana,
		Wallet:    domain.WalletHandle{Address: "wallet1", EncryptedSecret: enc},
		ToAddress: "dest1",
		AmountRaw: amountRaw,
	}
}

func TestWithdrawHappyPath(t *testing.T) {
	adapter := &fakeAdapter{
		chain:    domain.ChainSolana,
		reserve:  1_000_000,
		balances: []uint64{2_000_000_000, 995_000_000},
		submits:  []submitOutcome{{txID: "sig1"}},
	}
	svc, codec := newTestService(t, adapter, &fakeQuoter{})

	res, err := svc.Withdraw(context.Background(), withdrawRequest(t, codec, 1_000_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.TxID != "sig1" {
		t.Fatalf("result = %+v", res)
	}
	// spent 1_005_000_000 total, of which 1_000_000_000 left the wallet
	if !res.GasKnown || res.GasConsumedRaw != 5_000_000 {
		t.Errorf("gas = %d known=%v, want 5000000 known", res.GasConsumedRaw, res.GasKnown)
	}

	intent, err := svc.GetIntent(res.Ref)
	if err != nil {
		t.Fatal(err)
	}
	if intent.Kind != IntentKindWithdrawal || intent.ToAddress != "dest1" {
		t.Errorf("intent = %+v", intent)
	}
	if intent.State != IntentConfirmed {
		t.Errorf("intent state = %s, want confirmed", intent.State)
	}
}

func TestWithdrawReservesGas(t *testing.T) {
	adapter := &fakeAdapter{
		chain:    domain.ChainSolana,
		reserve:  1_000_000,
		balances: []uint64{1_000_000_000},
	}
	svc, codec := newTestService(t, adapter, &fakeQuoter{})

	// The full balance cannot leave, the reserve must stay behind.
	_, err := svc.Withdraw(context.Background(), withdrawRequest(t, codec, 1_000_000_000))
	e := common.AsError(err)
	if e == nil || e.Kind != common.KindInsufficientFunds {
		t.Fatalf("err = %v", err)
	}
	if e.ShortfallRaw != 1_000_000 {
		t.Errorf("shortfall = %d, want 1000000", e.ShortfallRaw)
	}
	if adapter.buildCalls != 0 || adapter.submitCalls != 0 {
		t.Error("pipeline progressed past the balance check")
	}
}

func TestWithdrawValidatesBeforeIO(t *testing.T) {
	adapter := &fakeAdapter{chain: domain.ChainSolana, balances: []uint64{1}}
	svc, codec := newTestService(t, adapter, &fakeQuoter{})

	req := withdrawRequest(t, codec, 1_000_000_000)
	req.ToAddress = "bad"

	_, err := svc.Withdraw(context.Background(), req)
	if common.KindOf(err) != common.KindInvalidInput {
		t.Fatalf("err = %v", err)
	}
	if adapter.balanceIdx != 0 {
		t.Error("I/O happened before validation finished")
	}
}

func TestWithdrawBroadcastTimeoutNeverResubmits(t *testing.T) {
	adapter := &fakeAdapter{
		chain:    domain.ChainSolana,
		reserve:  1_000_000,
		balances: []uint64{2_000_000_000},
		submits:  []submitOutcome{{err: common.NetworkTimeout(context.DeadlineExceeded)}},
	}
	svc, codec := newTestService(t, adapter, &fakeQuoter{})

	res, err := svc.Withdraw(context.Background(), withdrawRequest(t, codec, 1_000_000_000))
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
