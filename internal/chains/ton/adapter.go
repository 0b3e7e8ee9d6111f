// Package ton executes swaps on TON through STON.fi v2 routers over a
// liteserver connection.
package ton

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/tlb"
	tonsdk "github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"

	"github.com/notcotrader/swap-engine/internal/chains"
	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/stonfi"
	"github.com/notcotrader/swap-engine/internal/tonapi"
)

const (
	mnemonicWords = 24

	withdrawalComment = "Withdrawal via Not-Cotrader"
)

type Adapter struct {
	pool          *liteclient.ConnectionPool
	api           tonsdk.APIClientWrapped
	stonfi        *stonfi.Client
	tonapi        *tonapi.Client
	configURL     string
	gasReserveRaw uint64
}

type Config struct {
	ConfigURL     string
	Stonfi        *stonfi.Client
	TonAPI        *tonapi.Client
	GasReserveRaw uint64
}

func New(cfg *Config) (*Adapter, error) {
	if cfg.ConfigURL == "" {
		return nil, fmt.Errorf("liteserver config url is required")
	}
	if cfg.Stonfi == nil || cfg.TonAPI == nil {
		return nil, fmt.Errorf("stonfi and tonapi clients are required")
	}
	return &Adapter{
		stonfi:        cfg.Stonfi,
		tonapi:        cfg.TonAPI,
		configURL:     cfg.ConfigURL,
		gasReserveRaw: cfg.GasReserveRaw,
	}, nil
}

// Connect dials the liteserver pool. Must be called before any
// balance or submit operation.
func (a *Adapter) Connect(ctx context.Context) error {
	pool := liteclient.NewConnectionPool()
	if err := pool.AddConnectionsFromConfigUrl(ctx, a.configURL); err != nil {
		return fmt.Errorf("failed to connect to liteservers: %w", err)
	}
	a.pool = pool
	a.api = tonsdk.NewAPIClient(pool).WithRetry()
	return nil
}

func (a *Adapter) Close() {
	if a.pool != nil {
		a.pool.Stop()
	}
}

func (a *Adapter) Chain() domain.Chain { return domain.ChainTON }

// ValidateAddress accepts bounceable and non-bounceable friendly form
// plus the raw workchain:hex form.
func (a *Adapter) ValidateAddress(addr string) bool {
	if _, err := address.ParseAddr(addr); err == nil {
		return true
	}
	_, err := address.ParseRawAddr(addr)
	return err == nil
}

func (a *Adapter) NativeBalance(ctx context.Context, addr string) (uint64, error) {
	if a.api == nil {
		return 0, common.RpcUnavailable(fmt.Errorf("liteserver pool not connected"))
	}
	owner, err := parseAddr(addr)
	if err != nil {
		return 0, common.InvalidInput("bad ton address %q", addr)
	}

	block, err := a.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return 0, classifyRPCErr(err)
	}
	account, err := a.api.GetAccount(ctx, block, owner)
	if err != nil {
		return 0, classifyRPCErr(err)
	}
	// Uninitialized wallets simply hold nothing.
	if !account.IsActive {
		return 0, nil
	}
	return account.State.Balance.Nano().Uint64(), nil
}

// BuildSwapTransaction simulates the route on STON.fi to learn the
// router, resolves the jetton wallets involved, and assembles the
// outgoing message. The attached value is re-checked against the live
// balance by the caller before signing.
func (a *Adapter) BuildSwapTransaction(ctx context.Context, params *chains.BuildParams) (*chains.UnsignedTx, error) {
	owner, err := parseAddr(params.WalletAddress)
	if err != nil {
		return nil, common.InvalidInput("bad ton address %q", params.WalletAddress)
	}

	offer, ask := common.PTONMasterMainnet, params.CounterAsset
	if params.Direction == domain.TokenToNative {
		offer, ask = params.CounterAsset, common.PTONMasterMainnet
	}

	sim, err := a.stonfi.Simulate(ctx, &stonfi.SimulateParams{
		OfferAddress: offer,
		AskAddress:   ask,
		UnitsRaw:     params.AmountRaw,
		SlippageBps:  params.SlippageBps,
	})
	if err != nil {
		return nil, classifyRPCErr(err)
	}

	routerAskWallet, err := a.tonapi.GetJettonWalletAddress(ctx, ask, sim.RouterAddress)
	if err != nil {
		return nil, classifyRPCErr(err)
	}
	askWallet, err := parseAddr(routerAskWallet)
	if err != nil {
		return nil, common.RpcUnavailable(fmt.Errorf("router returned bad ask wallet %q", routerAskWallet))
	}

	minOutput := params.MinOutputRaw
	if sim.MinAskUnitsRaw > 0 && sim.MinAskUnitsRaw < minOutput {
		minOutput = sim.MinAskUnitsRaw
	}
	swapBody := buildSwapBody(askWallet, owner, minOutput)

	if params.Direction == domain.NativeToToken {
		routerPtonWallet, err := a.tonapi.GetJettonWalletAddress(ctx, common.PTONMasterMainnet, sim.RouterAddress)
		if err != nil {
			return nil, classifyRPCErr(err)
		}
		return &chains.UnsignedTx{
			Chain:    domain.ChainTON,
			To:       routerPtonWallet,
			ValueRaw: params.AmountRaw + swapForwardGasRaw,
			Body:     buildTonTransferBody(params.AmountRaw, owner, swapBody),
		}, nil
	}

	userJettonWallet, err := a.tonapi.GetJettonWalletAddress(ctx, params.CounterAsset, params.WalletAddress)
	if err != nil {
		return nil, classifyRPCErr(err)
	}
	router, err := parseAddr(sim.RouterAddress)
	if err != nil {
		return nil, common.RpcUnavailable(fmt.Errorf("bad router address %q", sim.RouterAddress))
	}
	return &chains.UnsignedTx{
		Chain:    domain.ChainTON,
		To:       userJettonWallet,
		ValueRaw: jettonTransferValueRaw,
		Body:     buildJettonTransferBody(params.AmountRaw, router, owner, swapBody),
	}, nil
}

// BuildTransferTransaction assembles a plain TON transfer for a
// withdrawal. No network round trip is needed to build it.
func (a *Adapter) BuildTransferTransaction(ctx context.Context, params *chains.TransferParams) (*chains.UnsignedTx, error) {
	if _, err := parseAddr(params.WalletAddress); err != nil {
		return nil, common.InvalidInput("bad ton address %q", params.WalletAddress)
	}
	if _, err := parseAddr(params.ToAddress); err != nil {
		return nil, common.InvalidInput("bad ton destination %q", params.ToAddress)
	}

	body, err := wallet.CreateCommentCell(withdrawalComment)
	if err != nil {
		return nil, common.SubmissionFailed(fmt.Errorf("failed to build comment: %w", err))
	}
	return &chains.UnsignedTx{
		Chain:    domain.ChainTON,
		To:       params.ToAddress,
		ValueRaw: params.AmountRaw,
		Body:     body,
	}, nil
}

// SignAndSubmit derives the wallet from the decrypted mnemonic and
// sends the message once, waiting for the transaction to land.
func (a *Adapter) SignAndSubmit(ctx context.Context, unsigned *chains.UnsignedTx, secret []byte) (string, error) {
	if a.api == nil {
		return "", common.RpcUnavailable(fmt.Errorf("liteserver pool not connected"))
	}
	words := strings.Fields(string(secret))
	if len(words) != mnemonicWords {
		return "", common.KeyDecryptionFailed(fmt.Errorf("expected %d-word mnemonic, got %d words", mnemonicWords, len(words)))
	}

	w, err := wallet.FromSeed(a.api, words, wallet.V4R2)
	if err != nil {
		return "", common.KeyDecryptionFailed(err)
	}

	to, err := parseAddr(unsigned.To)
	if err != nil {
		return "", common.SubmissionFailed(fmt.Errorf("bad destination %q", unsigned.To))
	}

	msg := wallet.SimpleMessage(to, tlb.FromNanoTONU(unsigned.ValueRaw), unsigned.Body)
	tx, _, err := w.SendWaitTransaction(ctx, msg)
	if err != nil {
		return "", classifySubmitErr(err)
	}
	return hex.EncodeToString(tx.Hash), nil
}

func (a *Adapter) GasReserveRaw() uint64 { return a.gasReserveRaw }

func (a *Adapter) ExplorerTxURL(txID string) string {
	return common.TonviewerTxURL + txID
}

func parseAddr(s string) (*address.Address, error) {
	if addr, err := address.ParseAddr(s); err == nil {
		return addr, nil
	}
	return address.ParseRawAddr(s)
}

func classifyRPCErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return common.NetworkTimeout(err)
	}
	return common.RpcUnavailable(err)
}

// classifySubmitErr decides the broadcast outcome. Cancellation during
// a send is fate-unknown exactly like a timeout: the message may have
// reached a liteserver, so it must never look safely retryable.
func classifySubmitErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return common.NetworkTimeout(err)
	}
	return common.SubmissionFailed(err)
}
