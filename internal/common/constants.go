// Package common contains common constants and variables used across services
package common

import "github.com/gagliardetto/solana-go"

var (
	// WrappedSolMint is the mint Jupiter uses for the native SOL side of a swap.
	WrappedSolMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	SystemProgramID = solana.SystemProgramID
)

const (
	// PTONMasterMainnet is the pTON v2.1 proxy master STON.fi routers swap
	// against for the native TON side.
	PTONMasterMainnet = "EQBnGWMCf3-FZZq1W4IWcWiGAc3PHuZ0_H-7sad2oY00o83S"

	SolscanTxURL   = "https://solscan.io/tx/"
	TonviewerTxURL = "https://tonviewer.com/transaction/"
)
