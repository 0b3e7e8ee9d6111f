package http

import (
	"math/big"

	"github.com/gin-gonic/gin"

	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/executor"
	"github.com/notcotrader/swap-engine/internal/http/httputil"
)

type BalanceHandler struct {
	executorSvc *executor.Service
}

func NewBalanceHandler(executorSvc *executor.Service) *BalanceHandler {
	return &BalanceHandler{executorSvc: executorSvc}
}

func (h *BalanceHandler) Root() string {
	return "/balance"
}

func (h *BalanceHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getBalance)
}

type BalanceRequest struct {
	Chain   string `form:"chain" binding:"required" enums:"solana,ton" example:"solana"`
	Address string `form:"address" binding:"required" example:"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"`
}

type BalanceView struct {
	// Native balance in smallest units
	AvailableRaw uint64 `json:"availableRaw" example:"1500000000"`

	// Native balance as a human decimal string
	Available string `json:"available" example:"1.5"`

	Symbol string `json:"symbol" example:"SOL"`

	// Approximate USD value; omitted when the price feed is down
	UsdValue float64 `json:"usdValue,omitempty" example:"312.45"`
}

// getBalance godoc
// @Summary Live native balance
// @Description Reads the wallet's native balance straight from the chain. Never cached.
// @Tags balance
// @Produce json
// @Param chain query string true "Chain" Enums(solana, ton)
// @Param address query string true "Wallet address"
// @Success 200 {object} httputil.Response{data=BalanceView}
// @Failure 400 {object} httputil.Response
// @Failure 503 {object} httputil.Response "RPC unavailable"
// @Router /api/v1/balance [get]
func (h *BalanceHandler) getBalance(c *gin.Context) {
	var req BalanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	chain := domain.Chain(req.Chain)
	balance, err := h.executorSvc.GetBalance(c.Request.Context(), chain, req.Address)
	if err != nil {
		respondError(c, err)
		return
	}

	view := BalanceView{
		AvailableRaw: balance.AvailableRaw,
		Available:    common.FromRaw(balance.AvailableRaw),
		Symbol:       chain.NativeSymbol(),
	}
	if price, err := h.executorSvc.NativeUsdPrice(c.Request.Context(), chain); err == nil {
		human := new(big.Rat).SetFrac(new(big.Int).SetUint64(balance.AvailableRaw), big.NewInt(int64(common.UnitScale)))
		view.UsdValue, _ = new(big.Rat).Mul(human, price).Float64()
	}
	httputil.Success(c, view)
}
