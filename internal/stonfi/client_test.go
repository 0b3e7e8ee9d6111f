package stonfi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSimulate(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"offer":    r.URL.Query().Get("offer_address"),
			"units":    r.URL.Query().Get("units"),
			"slippage": r.URL.Query().Get("slippage_tolerance"),
			"dex_v2":   r.URL.Query().Get("dex_v2"),
		}
		w.Write([]byte(`{"router_address":"EQRouter","ask_units":"1000000000","min_ask_units":"950000000","offer_units":"500000000"}`))
	}))
	defer srv.Close()

	c := NewClient(&ClientConfig{BaseURL: srv.URL})
	res, err := c.Simulate(context.Background(), &SimulateParams{
		OfferAddress: "EQOffer",
		AskAddress:   "EQAsk",
		UnitsRaw:     500_000_000,
		SlippageBps:  500,
	})
	if err != nil {
		t.Fatal(err)
	}

	if gotQuery["offer"] != "EQOffer" || gotQuery["units"] != "500000000" || gotQuery["dex_v2"] != "true" {
		t.Errorf("query = %+v", gotQuery)
	}
	if gotQuery["slippage"] != "5" {
		t.Errorf("slippage_tolerance = %q, want 5", gotQuery["slippage"])
	}
	if res.RouterAddress != "EQRouter" || res.AskUnitsRaw != 1_000_000_000 || res.MinAskUnitsRaw != 950_000_000 {
		t.Errorf("result = %+v", res)
	}
}

func TestSimulateMissingRouter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ask_units":"1"}`))
	}))
	defer srv.Close()

	c := NewClient(&ClientConfig{BaseURL: srv.URL})
	if _, err := c.Simulate(context.Background(), &SimulateParams{
		OfferAddress: "a", AskAddress: "b", UnitsRaw: 1,
	}); err == nil {
		t.Fatal("expected error when router address missing")
	}
}

func TestFormatSlippagePct(t *testing.T) {
	tests := []struct {
		bps  uint16
		want string
	}{
		{0, "0"},
		{50, "0.50"},
		{100, "1"},
		{125, "1.25"},
		{500, "5"},
		{10_000, "100"},
	}
	for _, tt := range tests {
		if got := formatSlippagePct(tt.bps); got != tt.want {
			t.Errorf("formatSlippagePct(%d) = %q, want %q", tt.bps, got, tt.want)
		}
	}
}
