package http

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"

	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/executor"
	"github.com/notcotrader/swap-engine/internal/http/httputil"
)

type SwapHandler struct {
	executorSvc *executor.Service
}

func NewSwapHandler(executorSvc *executor.Service) *SwapHandler {
	return &SwapHandler{executorSvc: executorSvc}
}

func (h *SwapHandler) Root() string {
	return "/swap"
}

func (h *SwapHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("", h.executeSwap)
	pub.GET("/:ref", h.getSwap)
}

// SwapExecuteRequest executes one custodial swap.
type SwapExecuteRequest struct {
	// Chain the wallet lives on
	Chain string `json:"chain" binding:"required" enums:"solana,ton" example:"solana"`

	// Swap direction relative to the native asset
	Direction string `json:"direction" binding:"required" enums:"native_to_token,token_to_native" example:"native_to_token"`

	// Custodial wallet address
	WalletAddress string `json:"walletAddress" binding:"required" example:"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"`

	// Wallet secret, encrypted with the engine's key, base64
	EncryptedSecret string `json:"encryptedSecret" binding:"required"`

	// Token mint (Solana) or jetton master (TON) on the other side
	CounterAsset string `json:"counterAsset" binding:"required" example:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`

	// Input amount as a human decimal string, at most 9 decimal places
	Amount string `json:"amount" binding:"required" example:"0.5"`

	// Slippage tolerance in basis points, default 50 (0.5%)
	SlippageBps uint16 `json:"slippageBps" example:"50"`
}

// executeSwap godoc
// @Summary Execute a swap
// @Description Runs the full custodial swap pipeline and returns the broadcast result. Blocks while another swap for the same wallet is in flight.
// @Tags swap
// @Accept json
// @Produce json
// @Param request body SwapExecuteRequest true "Swap parameters"
// @Success 200 {object} httputil.Response{data=domain.SwapResult}
// @Failure 400 {object} httputil.Response
// @Failure 422 {object} httputil.Response "Insufficient funds"
// @Failure 502 {object} httputil.Response "Rejected by network"
// @Failure 504 {object} httputil.Response "Broadcast fate unknown"
// @Router /api/v1/swap [post]
func (h *SwapHandler) executeSwap(c *gin.Context) {
	var req SwapExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	amountRaw, err := common.ToRaw(req.Amount)
	if err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}
	if amountRaw == 0 {
		httputil.BadRequest(c, "amount must be positive")
		return
	}
	encSecret, err := base64.StdEncoding.DecodeString(req.EncryptedSecret)
	if err != nil {
		httputil.BadRequest(c, "encryptedSecret is not valid base64")
		return
	}

	result, err := h.executorSvc.Execute(c.Request.Context(), &domain.SwapRequest{
		Chain: domain.Chain(req.Chain),
		Wallet: domain.WalletHandle{
			Address:         req.WalletAddress,
			EncryptedSecret: encSecret,
		},
		Direction:    domain.Direction(req.Direction),
		CounterAsset: req.CounterAsset,
		AmountRaw:    amountRaw,
		SlippageBps:  req.SlippageBps,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	httputil.Success(c, result)
}

// getSwap godoc
// @Summary Look up a swap by reference
// @Description Returns the journaled state of a swap, including ones whose broadcast fate is unknown.
// @Tags swap
// @Produce json
// @Param ref path string true "Swap reference" example(swp_1f2e3d4c5b6a7988)
// @Success 200 {object} httputil.Response{data=executor.Intent}
// @Failure 404 {object} httputil.Response
// @Router /api/v1/swap/{ref} [get]
func (h *SwapHandler) getSwap(c *gin.Context) {
	intent, err := h.executorSvc.GetIntent(c.Param("ref"))
	if err != nil {
		httputil.NotFound(c, "no swap with that reference")
		return
	}
	httputil.Success(c, intent)
}
