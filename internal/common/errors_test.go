package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := InsufficientFunds(42, "not enough TON")
	if KindOf(err) != KindInsufficientFunds {
		t.Fatalf("KindOf = %q, want %q", KindOf(err), KindInsufficientFunds)
	}

	wrapped := fmt.Errorf("execute: %w", err)
	if !IsKind(wrapped, KindInsufficientFunds) {
		t.Error("kind lost through wrapping")
	}
	if e := AsError(wrapped); e == nil || e.ShortfallRaw != 42 {
		t.Errorf("shortfall lost through wrapping: %+v", e)
	}

	if KindOf(errors.New("plain")) != "" {
		t.Error("untyped error should report empty kind")
	}
}

func TestRetryableBeforeBroadcast(t *testing.T) {
	retryable := []Kind{KindRpcUnavailable, KindNetworkTimeout, KindSubmissionFailed}
	fatal := []Kind{KindInvalidInput, KindInsufficientFunds, KindKeyDecryptionFailed, KindNoLiquidityData}

	for _, k := range retryable {
		if !RetryableBeforeBroadcast(k) {
			t.Errorf("%s should be retryable before broadcast", k)
		}
	}
	for _, k := range fatal {
		if RetryableBeforeBroadcast(k) {
			t.Errorf("%s must never be retried", k)
		}
	}
}
