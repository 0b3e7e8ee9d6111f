package config

import (
	"errors"
	"time"

	"github.com/andrew-solarstorm/go-packages/common"
)

// SwapConfig tunes the swap pipeline. Gas reserves are deliberately
// conservative fixed amounts in smallest units; the TON side additionally
// re-checks the exact attached value after the router message is built.
type SwapConfig struct {
	// ProviderTimeout bounds each price/metadata provider call.
	ProviderTimeout time.Duration

	// SubmitTimeout bounds transaction submission and confirmation wait.
	SubmitTimeout time.Duration

	// MaxSubmitAttempts bounds rebuild-and-retry after an explicit
	// pre-broadcast rejection.
	MaxSubmitAttempts int

	// SolanaGasReserveRaw is lamports withheld from a swap (fee + ATA rent).
	SolanaGasReserveRaw uint64

	// TonGasReserveRaw is nanoTON withheld ahead of the simulate step.
	TonGasReserveRaw uint64

	DefaultSlippageBps uint16

	JournalDBPath string

	JupiterAPIKey string
	BirdeyeAPIKey string
}

func (c *SwapConfig) Key() string {
	return SWAP_CONFIG_KEY
}

func (c *SwapConfig) Load() error {
	c.ProviderTimeout = time.Duration(common.GetEnvOrDefaultInt("PROVIDER_TIMEOUT_SECONDS", 5)) * time.Second
	c.SubmitTimeout = time.Duration(common.GetEnvOrDefaultInt("SUBMIT_TIMEOUT_SECONDS", 30)) * time.Second
	c.MaxSubmitAttempts = common.GetEnvOrDefaultInt("MAX_SUBMIT_ATTEMPTS", 3)

	c.SolanaGasReserveRaw = uint64(common.GetEnvOrDefaultInt("SOLANA_GAS_RESERVE_LAMPORTS", 1_000_000))
	c.TonGasReserveRaw = uint64(common.GetEnvOrDefaultInt("TON_GAS_RESERVE_NANOTON", 50_000_000))

	c.DefaultSlippageBps = uint16(common.GetEnvOrDefaultInt("DEFAULT_SLIPPAGE_BPS", 50))

	c.JournalDBPath = common.GetEnvOrDefault("SWAP_JOURNAL_DB_PATH", "./data/swap-journal.db")

	c.JupiterAPIKey = common.GetEnvOrDefault("JUPITER_API_KEY", "")
	c.BirdeyeAPIKey = common.GetEnvOrDefault("BIRDEYE_API_KEY", "")

	return c.Validate()
}

func (c *SwapConfig) Validate() error {
	if c.ProviderTimeout <= 0 || c.SubmitTimeout <= 0 {
		return errors.New("swap config: timeouts must be positive")
	}
	if c.MaxSubmitAttempts < 1 {
		return errors.New("swap config: at least one submit attempt required")
	}
	if c.DefaultSlippageBps > 10_000 {
		return errors.New("swap config: default slippage out of range")
	}
	return nil
}
