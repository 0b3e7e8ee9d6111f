package main

import (
	"strings"

	pkgcommon "github.com/andrew-solarstorm/go-packages/common"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/notcotrader/swap-engine/internal/config"
	"github.com/notcotrader/swap-engine/internal/executor"
	"github.com/notcotrader/swap-engine/internal/http"
)

// @title Swap Engine API
// @version 1.0
// @description Custodial swap execution and quoting for Solana and TON.
// @description
// @description ## Pipeline
// @description Every swap runs validate, quote, balance check, build, sign, submit, reconcile.
// @description A submission intent is journaled before any broadcast; a timed-out broadcast is
// @description never resent and must be settled through GET /api/v1/swap/{ref}.
// @description
// @description ## Amounts
// @description Request amounts are human decimal strings with at most 9 decimal places.
// @description Responses carry both smallest units (lamports / nanoTON) and decimal strings.
// @description
// @description ## Price sources
// @description Solana: Dexscreener, Jupiter (free then keyed), Birdeye.
// @description TON: Dexscreener, TonAPI, STON.fi simulator.
// @BasePath /
// @schemes http https

// @tag.name quote
// @tag.description Price a prospective swap without touching wallet state
// @tag.name swap
// @tag.description Execute swaps and look up journaled results
// @tag.name withdraw
// @tag.description Send native coin out of a custodial wallet
// @tag.name balance
// @tag.description Live native balances
// @tag.name tokens
// @tag.description Token metadata and market stats

func main() {
	// load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}

	applyLogLevel()

	// di container config
	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.ChainsConfig{},
		&config.SwapConfig{},
		&config.SecretConfig{},
	)

	// di container
	dic, err := container.New(
		conf,

		&executor.Service{},
		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}

func applyLogLevel() {
	level := strings.ToLower(pkgcommon.GetEnvOrDefault("LOG_LEVEL", "info"))
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
