package tonapi

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/rates" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("currencies"); got != "ton" {
			t.Errorf("currencies = %q", got)
		}
		w.Write([]byte(`{"rates":{"EQToken":{"prices":{"TON":"0.0025"}}}}`))
	}))
	defer srv.Close()

	c := NewClient(&ClientConfig{BaseURL: srv.URL})
	rate, err := c.TokenRate(context.Background(), "EQToken")
	if err != nil {
		t.Fatal(err)
	}
	want := big.NewRat(25, 10000)
	if rate.Cmp(want) != 0 {
		t.Errorf("rate = %s, want %s", rate.RatString(), want.RatString())
	}
}

func TestTokenRateMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{}}`))
	}))
	defer srv.Close()

	c := NewClient(&ClientConfig{BaseURL: srv.URL})
	if _, err := c.TokenRate(context.Background(), "EQToken"); err == nil {
		t.Fatal("expected error for missing rate")
	}
}

func TestGetJettonWalletAddress(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if got := r.URL.Query().Get("args"); got != "EQOwner" {
			t.Errorf("args = %q", got)
		}
		w.Write([]byte(`{"decoded":{"jetton_wallet_address":"0:abcdef"}}`))
	}))
	defer srv.Close()

	c := NewClient(&ClientConfig{BaseURL: srv.URL, APIKey: "secret"})
	addr, err := c.GetJettonWalletAddress(context.Background(), "EQMaster", "EQOwner")
	if err != nil {
		t.Fatal(err)
	}
	if addr != "0:abcdef" {
		t.Errorf("address = %q", addr)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestGetJettonInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"metadata":{"name":"Notcoin","symbol":"NOT","decimals":"9"},"total_supply":"1000","verification":"whitelist"}`))
	}))
	defer srv.Close()

	c := NewClient(&ClientConfig{BaseURL: srv.URL})
	info, err := c.GetJettonInfo(context.Background(), "EQMaster")
	if err != nil {
		t.Fatal(err)
	}
	if info.Metadata.Symbol != "NOT" || info.Metadata.Decimals != "9" {
		t.Errorf("info = %+v", info)
	}
}
