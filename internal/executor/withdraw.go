package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/notcotrader/swap-engine/internal/chains"
	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/metrics"
	"github.com/notcotrader/swap-engine/internal/secret"
)

// Withdraw sends native coin from a custodial wallet to an external
// address. It shares the swap pipeline's journal, per-wallet lock and
// broadcast rules: journaled before the network sees anything, never
// resent once the fate is unknown.
func (svc *Service) Withdraw(ctx context.Context, req *domain.WithdrawRequest) (*domain.WithdrawResult, error) {
	started := time.Now()

	adapter, err := svc.validateWithdraw(req)
	if err != nil {
		metrics.WithdrawTotal.WithLabelValues(string(req.Chain), "invalid").Inc()
		return nil, err
	}

	unlock := svc.locks.lock(req.Wallet.Address)
	defer unlock()

	result, err := svc.withdraw(ctx, req, adapter)

	status := "failed"
	if err == nil && result.Success {
		status = "confirmed"
	} else if err == nil && result.Unknown {
		status = "unknown"
	}
	metrics.WithdrawTotal.WithLabelValues(string(req.Chain), status).Inc()
	metrics.SwapDuration.WithLabelValues(string(req.Chain)).Observe(time.Since(started).Seconds())
	return result, err
}

func (svc *Service) withdraw(ctx context.Context, req *domain.WithdrawRequest, adapter chains.Adapter) (*domain.WithdrawResult, error) {
	balanceBefore, err := adapter.NativeBalance(ctx, req.Wallet.Address)
	if err != nil {
		return nil, err
	}
	required := req.AmountRaw + adapter.GasReserveRaw()
	if balanceBefore < required {
		return nil, common.InsufficientFunds(required-balanceBefore,
			fmt.Sprintf("need %s, have %s", common.FromRaw(required), common.FromRaw(balanceBefore)))
	}

	seed, err := svc.codec.Decrypt(req.Wallet.EncryptedSecret)
	if err != nil {
		return nil, common.KeyDecryptionFailed(err)
	}
	defer secret.Zero(seed)

	ref := NewWithdrawalRef()
	intent := &Intent{
		Ref:           ref,
		Kind:          IntentKindWithdrawal,
		Chain:         req.Chain,
		WalletAddress: req.Wallet.Address,
		ToAddress:     req.ToAddress,
		AmountRaw:     req.AmountRaw,
		State:         IntentPending,
		CreatedAt:     time.Now(),
	}

	txID, unknown, err := svc.submitLoop(ctx, adapter, intent, seed,
		func(ctx context.Context) (*chains.UnsignedTx, error) {
			return adapter.BuildTransferTransaction(ctx, &chains.TransferParams{
				WalletAddress: req.Wallet.Address,
				ToAddress:     req.ToAddress,
				AmountRaw:     req.AmountRaw,
			})
		}, nil)
	if err != nil {
		return nil, err
	}
	if unknown {
		return &domain.WithdrawResult{Ref: ref, Unknown: true}, nil
	}

	intent.State = IntentSubmitted
	intent.TxID = txID
	intent.ExplorerURL = adapter.ExplorerTxURL(txID)
	svc.journal.Put(intent)

	result := &domain.WithdrawResult{
		Ref:         ref,
		TxID:        txID,
		ExplorerURL: intent.ExplorerURL,
		Success:     true,
	}
	if balanceAfter, err := adapter.NativeBalance(ctx, req.Wallet.Address); err == nil {
		spent := uint64(0)
		if balanceBefore > balanceAfter {
			spent = balanceBefore - balanceAfter
		}
		gas := spent
		if spent > req.AmountRaw {
			gas = spent - req.AmountRaw
		}
		result.GasConsumedRaw = gas
		result.GasKnown = true
	} else {
		svc.logger.Warn().Str("ref", ref).Err(err).
			Msg("post-withdrawal balance read failed, gas unknown")
	}

	intent.State = IntentConfirmed
	intent.GasConsumedRaw = result.GasConsumedRaw
	intent.GasKnown = result.GasKnown
	svc.journal.Put(intent)

	return result, nil
}

func (svc *Service) validateWithdraw(req *domain.WithdrawRequest) (chains.Adapter, error) {
	adapter, ok := svc.adapters[req.Chain]
	if !ok {
		return nil, common.InvalidInput("unsupported chain %q", req.Chain)
	}
	if req.AmountRaw == 0 {
		return nil, common.InvalidInput("amount must be positive")
	}
	if !adapter.ValidateAddress(req.Wallet.Address) {
		return nil, common.InvalidInput("bad %s wallet address %q", req.Chain, req.Wallet.Address)
	}
	if !adapter.ValidateAddress(req.ToAddress) {
		return nil, common.InvalidInput("bad %s destination address %q", req.Chain, req.ToAddress)
	}
	if len(req.Wallet.EncryptedSecret) == 0 {
		return nil, common.InvalidInput("missing wallet secret")
	}
	return adapter, nil
}
