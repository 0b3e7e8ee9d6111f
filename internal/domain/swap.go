package domain

// Chain identifies which blockchain a wallet or asset lives on.
type Chain string

const (
	ChainSolana Chain = "solana"
	ChainTON    Chain = "ton"
)

func (c Chain) Valid() bool {
	return c == ChainSolana || c == ChainTON
}

// NativeSymbol returns the display symbol of the chain's native asset.
func (c Chain) NativeSymbol() string {
	switch c {
	case ChainSolana:
		return "SOL"
	case ChainTON:
		return "TON"
	default:
		return ""
	}
}

// Direction describes which side of the pair is the native asset.
type Direction string

const (
	NativeToToken Direction = "native_to_token"
	TokenToNative Direction = "token_to_native"
)

func (d Direction) Valid() bool {
	return d == NativeToToken || d == TokenToNative
}

// WalletHandle is a borrowed reference to a custodial wallet. The encrypted
// secret decrypts to a 32-byte seed (Solana) or a mnemonic phrase (TON).
// Handles are owned by the calling service and never persisted here.
type WalletHandle struct {
	Address         string
	EncryptedSecret []byte
}

type SwapRequest struct {
	Chain        Chain
	Wallet       WalletHandle
	Direction    Direction
	CounterAsset string

	// AmountRaw is the input amount in smallest units (lamports / nanoTON
	// for the native side, base units for the token side).
	AmountRaw uint64

	SlippageBps uint16
}

// SwapResult is produced once a transaction has been handed to the network.
type SwapResult struct {
	Ref         string `json:"ref"`
	TxID        string `json:"txId,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`

	OutputAmountRaw uint64 `json:"outputAmountRaw,omitempty"`

	GasConsumedRaw uint64 `json:"gasConsumedRaw,omitempty"`
	GasKnown       bool   `json:"gasKnown"`

	Success bool `json:"success"`

	// Unknown marks the broadcast-then-timeout case: the transaction was
	// handed to the network but its fate could not be observed. The caller
	// resolves it later through the journal, never by re-submitting.
	Unknown bool `json:"unknown,omitempty"`
}

// WithdrawRequest moves native coin from a custodial wallet to an
// external address. The gas reserve is withheld on top of the amount.
type WithdrawRequest struct {
	Chain     Chain
	Wallet    WalletHandle
	ToAddress string

	// AmountRaw is the withdrawal amount in smallest units.
	AmountRaw uint64
}

// WithdrawResult mirrors SwapResult for a plain native transfer.
type WithdrawResult struct {
	Ref         string `json:"ref"`
	TxID        string `json:"txId,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`

	GasConsumedRaw uint64 `json:"gasConsumedRaw,omitempty"`
	GasKnown       bool   `json:"gasKnown"`

	Success bool `json:"success"`
	Unknown bool `json:"unknown,omitempty"`
}

// Balance is a point-in-time native balance. Always fetched fresh, never cached.
type Balance struct {
	AvailableRaw uint64
}
