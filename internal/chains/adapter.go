// Package chains defines the per-chain execution surface the swap
// pipeline runs against.
package chains

import (
	"context"

	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/notcotrader/swap-engine/internal/domain"
)

// BuildParams carry everything a chain needs to assemble an unsigned
// swap transaction. MinOutputRaw is already slippage-adjusted.
type BuildParams struct {
	Direction     domain.Direction
	CounterAsset  string
	WalletAddress string
	AmountRaw     uint64
	MinOutputRaw  uint64
	SlippageBps   uint16
}

// TransferParams describe a plain native-coin withdrawal from a
// custodial wallet to an external address.
type TransferParams struct {
	WalletAddress string
	ToAddress     string
	AmountRaw     uint64
}

// UnsignedTx is a chain-specific transaction awaiting signature.
// Payload holds serialized bytes on Solana; To, ValueRaw and Body
// describe the outgoing message on TON.
type UnsignedTx struct {
	Chain domain.Chain

	Payload              []byte
	LastValidBlockHeight uint64

	To       string
	ValueRaw uint64
	Body     *cell.Cell
}

// Adapter is one chain's view of the swap pipeline. Implementations
// never retry a broadcast: SignAndSubmit is called at most once per
// built transaction.
type Adapter interface {
	Chain() domain.Chain

	// ValidateAddress reports whether addr is well-formed for this
	// chain. It never performs I/O.
	ValidateAddress(addr string) bool

	// NativeBalance returns the wallet's spendable native balance in
	// smallest units.
	NativeBalance(ctx context.Context, addr string) (uint64, error)

	BuildSwapTransaction(ctx context.Context, params *BuildParams) (*UnsignedTx, error)

	// BuildTransferTransaction assembles a plain native transfer for a
	// withdrawal.
	BuildTransferTransaction(ctx context.Context, params *TransferParams) (*UnsignedTx, error)

	// SignAndSubmit signs with the raw secret and broadcasts, returning
	// the transaction id. The caller owns wiping the secret.
	SignAndSubmit(ctx context.Context, tx *UnsignedTx, secret []byte) (string, error)

	// GasReserveRaw is the native amount kept back from every spend to
	// cover fees.
	GasReserveRaw() uint64

	ExplorerTxURL(txID string) string
}
