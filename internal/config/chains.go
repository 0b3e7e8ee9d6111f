package config

import (
	"errors"
	"strings"

	"github.com/andrew-solarstorm/go-packages/common"
)

// ChainsConfig holds the RPC endpoints and API credentials for both chains.
// Endpoint lists are read-only after Load and safe for concurrent use.
type ChainsConfig struct {
	// SolanaRPCEndpoints is the failover list, tried in order.
	SolanaRPCEndpoints []string

	// TonConfigURL points at the liteserver global config.
	TonConfigURL string

	TonAPIBase string
	TonAPIKey  string

	Testnet bool
}

func (c *ChainsConfig) Key() string {
	return CHAINS_CONFIG_KEY
}

func (c *ChainsConfig) Load() error {
	endpoints := common.GetEnvOrDefault("SOLANA_RPC_ENDPOINTS", "https://api.mainnet-beta.solana.com")
	for _, e := range strings.Split(endpoints, ",") {
		if e = strings.TrimSpace(e); e != "" {
			c.SolanaRPCEndpoints = append(c.SolanaRPCEndpoints, e)
		}
	}

	c.TonConfigURL = common.GetEnvOrDefault("TON_CONFIG_URL", "https://ton.org/global.config.json")
	c.TonAPIBase = common.GetEnvOrDefault("TONAPI_BASE", "https://tonapi.io")
	c.TonAPIKey = common.GetEnvOrDefault("TONAPI_KEY", "")
	c.Testnet = common.GetEnvOrDefault("IS_TESTNET", "false") == "true"

	return c.Validate()
}

func (c *ChainsConfig) Validate() error {
	if len(c.SolanaRPCEndpoints) == 0 {
		return errors.New("chains config: no solana rpc endpoints")
	}
	if c.TonConfigURL == "" {
		return errors.New("chains config: ton config url missing")
	}
	return nil
}
