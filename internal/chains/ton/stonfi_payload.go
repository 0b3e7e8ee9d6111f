package ton

import (
	"time"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// STON.fi v2 op codes.
const (
	opPTONTransfer   = 0x01f3835d
	opSwapV2         = 0x6664de2a
	opJettonTransfer = 0x0f8a7ea5
)

const (
	// swapForwardGasRaw covers router execution on a TON-side swap.
	swapForwardGasRaw = 240_000_000

	// jettonTransferValueRaw is attached to a jetton transfer so the
	// wallet contract can forward the swap to the router.
	jettonTransferValueRaw = 300_000_000

	swapDeadline = 15 * time.Minute
)

// buildSwapBody is the forward payload every STON.fi v2 route carries.
// tokenWallet1 is the router's wallet for the asked asset.
func buildSwapBody(tokenWallet1, receiver *address.Address, minOutputRaw uint64) *cell.Cell {
	params := cell.BeginCell().
		MustStoreCoins(minOutputRaw).
		MustStoreAddr(receiver).
		MustStoreCoins(0).          // fwd_gas
		MustStoreMaybeRef(nil).     // custom_payload
		MustStoreCoins(0).          // refund_fwd_gas
		MustStoreMaybeRef(nil).     // refund_payload
		MustStoreUInt(0, 16).       // ref_fee
		MustStoreAddr(nil).         // referral
		EndCell()

	return cell.BeginCell().
		MustStoreUInt(opSwapV2, 32).
		MustStoreAddr(tokenWallet1).
		MustStoreAddr(receiver). // refund_address
		MustStoreAddr(receiver). // excesses_address
		MustStoreUInt(uint64(time.Now().Add(swapDeadline).Unix()), 64).
		MustStoreRef(params).
		EndCell()
}

// buildTonTransferBody wraps a swap body for the router's pTON wallet,
// which converts the attached TON into the offered side of the trade.
func buildTonTransferBody(amountRaw uint64, refund *address.Address, swapBody *cell.Cell) *cell.Cell {
	return cell.BeginCell().
		MustStoreUInt(opPTONTransfer, 32).
		MustStoreUInt(queryID(), 64).
		MustStoreCoins(amountRaw).
		MustStoreAddr(refund).
		MustStoreBoolBit(true). // forward_payload in ref
		MustStoreRef(swapBody).
		EndCell()
}

// buildJettonTransferBody moves jettons to the router with the swap
// body as the forward payload (token to TON direction).
func buildJettonTransferBody(amountRaw uint64, router, responseTo *address.Address, swapBody *cell.Cell) *cell.Cell {
	return cell.BeginCell().
		MustStoreUInt(opJettonTransfer, 32).
		MustStoreUInt(queryID(), 64).
		MustStoreCoins(amountRaw).
		MustStoreAddr(router).
		MustStoreAddr(responseTo).
		MustStoreMaybeRef(nil). // custom_payload
		MustStoreCoins(swapForwardGasRaw).
		MustStoreBoolBit(true). // forward_payload in ref
		MustStoreRef(swapBody).
		EndCell()
}

func queryID() uint64 {
	return uint64(time.Now().UnixNano())
}
