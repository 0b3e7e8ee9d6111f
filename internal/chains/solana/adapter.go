// Package solana executes swaps on Solana through the Jupiter
// aggregator and a failover list of RPC endpoints.
package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/notcotrader/swap-engine/internal/chains"
	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/jupiter"
)

const seedSize = 32

type Adapter struct {
	clients       []*rpc.Client
	jupiter       *jupiter.Client
	gasReserveRaw uint64
}

type Config struct {
	RPCEndpoints  []string
	Jupiter       *jupiter.Client
	GasReserveRaw uint64
}

func New(cfg *Config) (*Adapter, error) {
	if len(cfg.RPCEndpoints) == 0 {
		return nil, fmt.Errorf("at least one solana rpc endpoint is required")
	}
	if cfg.Jupiter == nil {
		return nil, fmt.Errorf("jupiter client is required")
	}
	clients := make([]*rpc.Client, 0, len(cfg.RPCEndpoints))
	for _, endpoint := range cfg.RPCEndpoints {
		clients = append(clients, rpc.New(endpoint))
	}
	return &Adapter{
		clients:       clients,
		jupiter:       cfg.Jupiter,
		gasReserveRaw: cfg.GasReserveRaw,
	}, nil
}

func (a *Adapter) Chain() domain.Chain { return domain.ChainSolana }

func (a *Adapter) ValidateAddress(addr string) bool {
	_, err := solanago.PublicKeyFromBase58(addr)
	return err == nil
}

// NativeBalance tries each endpoint in order and returns the first
// answer. Only when every endpoint fails is the call unavailable.
func (a *Adapter) NativeBalance(ctx context.Context, addr string) (uint64, error) {
	owner, err := solanago.PublicKeyFromBase58(addr)
	if err != nil {
		return 0, common.InvalidInput("bad solana address %q", addr)
	}

	var lastErr error
	for _, client := range a.clients {
		res, err := client.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return 0, common.NetworkTimeout(err)
			}
			lastErr = err
			continue
		}
		return res.Value, nil
	}
	return 0, common.RpcUnavailable(fmt.Errorf("all solana endpoints failed: %w", lastErr))
}

func (a *Adapter) BuildSwapTransaction(ctx context.Context, params *chains.BuildParams) (*chains.UnsignedTx, error) {
	inputMint, outputMint := common.WrappedSolMint.String(), params.CounterAsset
	if params.Direction == domain.TokenToNative {
		inputMint, outputMint = params.CounterAsset, common.WrappedSolMint.String()
	}

	quote, err := a.jupiter.GetQuote(ctx, &jupiter.QuoteParams{
		InputMint:   inputMint,
		OutputMint:  outputMint,
		AmountRaw:   params.AmountRaw,
		SlippageBps: params.SlippageBps,
		SwapMode:    jupiter.SwapModeExactIn,
	})
	if err != nil {
		return nil, classifyBuildErr(err)
	}

	swap, err := a.jupiter.BuildSwap(ctx, &jupiter.SwapParams{
		Quote:         quote,
		UserPublicKey: params.WalletAddress,
		WrapUnwrapSol: true,
	})
	if err != nil {
		return nil, classifyBuildErr(err)
	}

	payload, err := base64.StdEncoding.DecodeString(swap.SwapTransaction)
	if err != nil {
		return nil, common.SubmissionFailed(fmt.Errorf("bad swap transaction encoding: %w", err))
	}

	return &chains.UnsignedTx{
		Chain:                domain.ChainSolana,
		Payload:              payload,
		LastValidBlockHeight: swap.LastValidBlockHeight,
	}, nil
}

// BuildTransferTransaction assembles a system-program transfer for a
// native withdrawal. The blockhash comes from the first endpoint that
// answers.
func (a *Adapter) BuildTransferTransaction(ctx context.Context, params *chains.TransferParams) (*chains.UnsignedTx, error) {
	from, err := solanago.PublicKeyFromBase58(params.WalletAddress)
	if err != nil {
		return nil, common.InvalidInput("bad solana address %q", params.WalletAddress)
	}
	to, err := solanago.PublicKeyFromBase58(params.ToAddress)
	if err != nil {
		return nil, common.InvalidInput("bad solana destination %q", params.ToAddress)
	}

	var recent *rpc.GetLatestBlockhashResult
	var lastErr error
	for _, client := range a.clients {
		recent, err = client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
		if err == nil {
			break
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, common.NetworkTimeout(err)
		}
		lastErr = err
		recent = nil
	}
	if recent == nil {
		return nil, common.RpcUnavailable(fmt.Errorf("all solana endpoints failed: %w", lastErr))
	}

	tx, err := solanago.NewTransaction(
		[]solanago.Instruction{
			system.NewTransferInstruction(params.AmountRaw, from, to).Build(),
		},
		recent.Value.Blockhash,
		solanago.TransactionPayer(from),
	)
	if err != nil {
		return nil, common.SubmissionFailed(fmt.Errorf("failed to build transfer: %w", err))
	}
	payload, err := tx.MarshalBinary()
	if err != nil {
		return nil, common.SubmissionFailed(fmt.Errorf("failed to serialize transfer: %w", err))
	}

	return &chains.UnsignedTx{
		Chain:                domain.ChainSolana,
		Payload:              payload,
		LastValidBlockHeight: recent.Value.LastValidBlockHeight,
	}, nil
}

// SignAndSubmit decodes the serialized transaction, signs it with the
// ed25519 key derived from the 32-byte seed, and broadcasts once.
func (a *Adapter) SignAndSubmit(ctx context.Context, unsigned *chains.UnsignedTx, secret []byte) (string, error) {
	if len(secret) < seedSize {
		return "", common.KeyDecryptionFailed(fmt.Errorf("secret shorter than %d bytes", seedSize))
	}

	tx, err := solanago.TransactionFromDecoder(bin.NewBinDecoder(unsigned.Payload))
	if err != nil {
		return "", common.SubmissionFailed(fmt.Errorf("failed to decode transaction: %w", err))
	}

	key := solanago.PrivateKey(ed25519.NewKeyFromSeed(secret[:seedSize]))
	signer := key.PublicKey()
	if _, err := tx.Sign(func(pub solanago.PublicKey) *solanago.PrivateKey {
		if pub.Equals(signer) {
			return &key
		}
		return nil
	}); err != nil {
		return "", common.SubmissionFailed(fmt.Errorf("failed to sign: %w", err))
	}

	// Broadcast through the primary endpoint only. Resending through a
	// fallback could double-spend if the first send actually landed.
	sig, err := a.clients[0].SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", classifySubmitErr(err)
	}
	return sig.String(), nil
}

func (a *Adapter) GasReserveRaw() uint64 { return a.gasReserveRaw }

func (a *Adapter) ExplorerTxURL(txID string) string {
	return common.SolscanTxURL + txID
}

func classifyBuildErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return common.NetworkTimeout(err)
	}
	return common.RpcUnavailable(err)
}

// classifySubmitErr decides the broadcast outcome. Cancellation during
// a send is fate-unknown exactly like a timeout: the request may have
// reached the node, so it must never look safely retryable.
func classifySubmitErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return common.NetworkTimeout(err)
	}
	return common.SubmissionFailed(err)
}
