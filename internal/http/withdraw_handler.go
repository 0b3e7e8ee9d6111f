package http

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"

	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/executor"
	"github.com/notcotrader/swap-engine/internal/http/httputil"
)

type WithdrawHandler struct {
	executorSvc *executor.Service
}

func NewWithdrawHandler(executorSvc *executor.Service) *WithdrawHandler {
	return &WithdrawHandler{executorSvc: executorSvc}
}

func (h *WithdrawHandler) Root() string {
	return "/withdraw"
}

func (h *WithdrawHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("", h.executeWithdraw)
}

// WithdrawExecuteRequest sends native coin out of a custodial wallet.
type WithdrawExecuteRequest struct {
	// Chain the wallet lives on
	Chain string `json:"chain" binding:"required" enums:"solana,ton" example:"ton"`

	// Custodial wallet address
	WalletAddress string `json:"walletAddress" binding:"required" example:"EQBnGWMCf3-FZZq1W4IWcWiGAc3PHuZ0_H-7sad2oY00o83S"`

	// Wallet secret, encrypted with the engine's key, base64
	EncryptedSecret string `json:"encryptedSecret" binding:"required"`

	// Destination address on the same chain
	ToAddress string `json:"toAddress" binding:"required"`

	// Amount as a human decimal string, at most 9 decimal places
	Amount string `json:"amount" binding:"required" example:"1.5"`
}

// executeWithdraw godoc
// @Summary Withdraw native coin
// @Description Sends SOL or TON from a custodial wallet to an external address. The gas reserve is withheld on top of the amount. Blocks while another operation for the same wallet is in flight.
// @Tags withdraw
// @Accept json
// @Produce json
// @Param request body WithdrawExecuteRequest true "Withdrawal parameters"
// @Success 200 {object} httputil.Response{data=domain.WithdrawResult}
// @Failure 400 {object} httputil.Response
// @Failure 422 {object} httputil.Response "Insufficient funds"
// @Failure 502 {object} httputil.Response "Rejected by network"
// @Failure 504 {object} httputil.Response "Broadcast fate unknown"
// @Router /api/v1/withdraw [post]
func (h *WithdrawHandler) executeWithdraw(c *gin.Context) {
	var req WithdrawExecuteRequest
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

	result, err := h.executorSvc.Withdraw(c.Request.Context(), &domain.WithdrawRequest{
		Chain: domain.Chain(req.Chain),
		Wallet: domain.WalletHandle{
			Address:         req.WalletAddress,
			EncryptedSecret: encSecret,
		},
		ToAddress: req.ToAddress,
		AmountRaw: amountRaw,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	httputil.Success(c, result)
}
