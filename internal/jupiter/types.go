package jupiter

import "encoding/json"

// QuoteParams are the inputs to the /quote endpoint.
type QuoteParams struct {
	InputMint   string
	OutputMint  string
	AmountRaw   uint64
	SlippageBps uint16
	SwapMode    string
}

// QuoteResponse is a Jupiter quote. Raw keeps the untouched body because
// the /swap endpoint wants the quote echoed back verbatim.
type QuoteResponse struct {
	InputMint      string `json:"inputMint"`
	OutputMint     string `json:"outputMint"`
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`

	Raw json.RawMessage `json:"-"`
}

// SwapParams are the inputs to the /swap endpoint.
type SwapParams struct {
	Quote         *QuoteResponse
	UserPublicKey string
	WrapUnwrapSol bool
}

type swapRequestBody struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

// SwapResponse carries the unsigned transaction built by Jupiter.
type SwapResponse struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}
