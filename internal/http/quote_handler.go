package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/executor"
	"github.com/notcotrader/swap-engine/internal/http/httputil"
	"github.com/notcotrader/swap-engine/internal/oracle"
)

type QuoteHandler struct {
	executorSvc *executor.Service
}

func NewQuoteHandler(executorSvc *executor.Service) *QuoteHandler {
	return &QuoteHandler{executorSvc: executorSvc}
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getQuote)
}

// QuoteRequest asks what a prospective swap would return.
type QuoteRequest struct {
	Chain string `form:"chain" binding:"required" enums:"solana,ton" example:"solana"`

	Direction string `form:"direction" binding:"required" enums:"native_to_token,token_to_native" example:"native_to_token"`

	// Token mint (Solana) or jetton master (TON) on the other side
	CounterAsset string `form:"counterAsset" binding:"required" example:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`

	// Input amount as a human decimal string, at most 9 decimal places
	Amount string `form:"amount" binding:"required" example:"0.5"`

	SlippageBps uint16 `form:"slippageBps" example:"50"`
}

// QuoteView is the API rendering of a quote.
type QuoteView struct {
	// Estimated output in smallest units
	OutputAmountRaw uint64 `json:"outputAmountRaw" example:"950000000"`

	// Estimated output as a human decimal string
	OutputAmount string `json:"outputAmount" example:"0.95"`

	// Slippage-adjusted floor the swap would enforce
	MinOutputRaw uint64 `json:"minOutputRaw" example:"902500000"`

	// Display-only price impact estimate
	PriceImpactPct float64 `json:"priceImpactPct" example:"0.12"`

	// Which provider served the quote
	Source string `json:"source" example:"dexscreener"`
}

// getQuote godoc
// @Summary Quote a prospective swap
// @Description Prices a swap through the provider chain without touching wallet state. Quotes are fetched fresh and never cached.
// @Tags quote
// @Produce json
// @Param chain query string true "Chain" Enums(solana, ton)
// @Param direction query string true "Direction" Enums(native_to_token, token_to_native)
// @Param counterAsset query string true "Token mint or jetton master"
// @Param amount query string true "Input amount, human decimal"
// @Param slippageBps query int false "Slippage tolerance in bps" default(50)
// @Success 200 {object} httputil.Response{data=QuoteView}
// @Failure 400 {object} httputil.Response
// @Failure 503 {object} httputil.Response "No liquidity data"
// @Router /api/v1/quote [get]
func (h *QuoteHandler) getQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}
	amountRaw, err := common.ToRaw(req.Amount)
	if err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}
	if req.SlippageBps > uint16(common.BpsDenominator) {
		httputil.BadRequest(c, fmt.Sprintf("slippage %d bps out of range", req.SlippageBps))
		return
	}

	quote, err := h.executorSvc.GetQuote(c.Request.Context(), &oracle.Query{
		Chain:        domain.Chain(req.Chain),
		Direction:    domain.Direction(req.Direction),
		CounterAsset: req.CounterAsset,
		AmountRaw:    amountRaw,
		SlippageBps:  req.SlippageBps,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httputil.Success(c, QuoteView{
		OutputAmountRaw: quote.OutputAmountRaw,
		OutputAmount:    common.FromRaw(quote.OutputAmountRaw),
		MinOutputRaw:    common.MinOutput(quote.OutputAmountRaw, req.SlippageBps),
		PriceImpactPct:  quote.PriceImpactPct,
		Source:          quote.Source,
	})
}
