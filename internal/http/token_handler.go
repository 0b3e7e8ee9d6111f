package http

import (
	"github.com/gin-gonic/gin"

	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/executor"
	"github.com/notcotrader/swap-engine/internal/http/httputil"
)

type TokenHandler struct {
	executorSvc *executor.Service
}

func NewTokenHandler(executorSvc *executor.Service) *TokenHandler {
	return &TokenHandler{executorSvc: executorSvc}
}

func (h *TokenHandler) Root() string {
	return "/token"
}

func (h *TokenHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getToken)
}

type TokenRequest struct {
	Chain   string `form:"chain" binding:"required" enums:"solana,ton" example:"solana"`
	Address string `form:"address" binding:"required" example:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`
}

// getToken godoc
// @Summary Token metadata and market stats
// @Description Looks up name, symbol, USD price, liquidity and market cap for a token mint or jetton master.
// @Tags tokens
// @Produce json
// @Param chain query string true "Chain" Enums(solana, ton)
// @Param address query string true "Token mint or jetton master"
// @Success 200 {object} httputil.Response{data=domain.TokenMarket}
// @Failure 400 {object} httputil.Response
// @Failure 503 {object} httputil.Response "No market data"
// @Router /api/v1/token [get]
func (h *TokenHandler) getToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	market, err := h.executorSvc.GetTokenMarket(c.Request.Context(), domain.Chain(req.Chain), req.Address)
	if err != nil {
		respondError(c, err)
		return
	}
	httputil.Success(c, market)
}
