// Package executor runs the custodial swap pipeline: validate, quote,
// check funds, build, sign, submit, reconcile. One swap per wallet at
// a time; a submission intent is journaled before any broadcast.
package executor

import (
	"context"
	"fmt"
	"math/big"
	"time"

	container "github.com/thehyperflames/dicontainer-go"

	"github.com/notcotrader/swap-engine/internal/chains"
	solanachain "github.com/notcotrader/swap-engine/internal/chains/solana"
	tonchain "github.com/notcotrader/swap-engine/internal/chains/ton"
	"github.com/notcotrader/swap-engine/internal/common"
	"github.com/notcotrader/swap-engine/internal/config"
	"github.com/notcotrader/swap-engine/internal/domain"
	"github.com/notcotrader/swap-engine/internal/jupiter"
	"github.com/notcotrader/swap-engine/internal/metrics"
	"github.com/notcotrader/swap-engine/internal/oracle"
	"github.com/notcotrader/swap-engine/internal/secret"
	"github.com/notcotrader/swap-engine/internal/services"
	"github.com/notcotrader/swap-engine/internal/stonfi"
	"github.com/notcotrader/swap-engine/internal/tonapi"
)

const SWAP_EXECUTOR_SERVICE = "swap-executor-svc"

// Quoter is the slice of the oracle router the executor needs.
type Quoter interface {
	Quote(ctx context.Context, q *oracle.Query) (*domain.Quote, error)
	TokenMarket(ctx context.Context, chain domain.Chain, asset string) (*domain.TokenMarket, error)
}

type Service struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	swapCfg   *config.SwapConfig
	chainsCfg *config.ChainsConfig

	codec     *secret.Codec
	adapters  map[domain.Chain]chains.Adapter
	quoter    Quoter
	journal   *Journal
	locks     *walletLocks
	coingecko *oracle.Coingecko

	tonAdapter *tonchain.Adapter
}

func (svc *Service) ID() string {
	return SWAP_EXECUTOR_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	svc.swapCfg = c.GetConfig(config.SWAP_CONFIG_KEY).(*config.SwapConfig)
	svc.chainsCfg = c.GetConfig(config.CHAINS_CONFIG_KEY).(*config.ChainsConfig)
	secretCfg := c.GetConfig(config.SECRET_CONFIG_KEY).(*config.SecretConfig)

	codec, err := secret.NewCodec(secretCfg.EncryptionKey)
	if err != nil {
		return err
	}
	svc.codec = codec
	svc.locks = newWalletLocks()

	jupiterClient := jupiter.NewClient(&jupiter.ClientConfig{
		APIKey:  svc.swapCfg.JupiterAPIKey,
		Timeout: svc.swapCfg.SubmitTimeout,
	})
	stonfiClient := stonfi.NewClient(&stonfi.ClientConfig{Timeout: svc.swapCfg.ProviderTimeout})
	tonapiClient := tonapi.NewClient(&tonapi.ClientConfig{
		BaseURL: svc.chainsCfg.TonAPIBase,
		APIKey:  svc.chainsCfg.TonAPIKey,
		Timeout: svc.swapCfg.ProviderTimeout,
	})

	solAdapter, err := solanachain.New(&solanachain.Config{
		RPCEndpoints:  svc.chainsCfg.SolanaRPCEndpoints,
		Jupiter:       jupiterClient,
		GasReserveRaw: svc.swapCfg.SolanaGasReserveRaw,
	})
	if err != nil {
		return err
	}
	tonAdapter, err := tonchain.New(&tonchain.Config{
		ConfigURL:     svc.chainsCfg.TonConfigURL,
		Stonfi:        stonfiClient,
		TonAPI:        tonapiClient,
		GasReserveRaw: svc.swapCfg.TonGasReserveRaw,
	})
	if err != nil {
		return err
	}
	svc.tonAdapter = tonAdapter
	svc.adapters = map[domain.Chain]chains.Adapter{
		domain.ChainSolana: solAdapter,
		domain.ChainTON:    tonAdapter,
	}

	// Provider priority is fixed: free sources first, keyed fallbacks
	// last. Jupiter appears once per tier.
	providers := []oracle.Provider{
		oracle.NewDexscreener(nil, ""),
		oracle.NewJupiter(jupiter.NewClient(nil), "jupiter-lite"),
	}
	if svc.swapCfg.JupiterAPIKey != "" {
		providers = append(providers, oracle.NewJupiter(jupiterClient, "jupiter-pro"))
	}
	if svc.swapCfg.BirdeyeAPIKey != "" {
		providers = append(providers, oracle.NewBirdeye(nil, "", svc.swapCfg.BirdeyeAPIKey))
	}
	providers = append(providers,
		oracle.NewTonAPI(tonapiClient),
		oracle.NewStonfi(stonfiClient),
	)
	svc.quoter = oracle.NewRouter(svc.swapCfg.ProviderTimeout, providers...)
	svc.coingecko = oracle.NewCoingecko(nil, "")

	return nil
}

func (svc *Service) Start() error {
	journal, err := OpenJournal(svc.swapCfg.JournalDBPath)
	if err != nil {
		return err
	}
	svc.journal = journal

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := svc.tonAdapter.Connect(ctx); err != nil {
		// Solana swaps still work without liteservers.
		svc.logger.Warn().Err(err).Msg("ton liteserver connection failed, ton swaps unavailable")
	}

	if unsettled, err := journal.Unsettled(); err == nil && len(unsettled) > 0 {
		svc.logger.Warn().Int("count", len(unsettled)).
			Msg("unsettled submission intents found, review before resuming affected wallets")
	}
	return nil
}

func (svc *Service) Stop() error {
	if svc.tonAdapter != nil {
		svc.tonAdapter.Close()
	}
	if svc.journal != nil {
		return svc.journal.Close()
	}
	return nil
}

// GetQuote prices a prospective swap without touching wallet state.
func (svc *Service) GetQuote(ctx context.Context, q *oracle.Query) (*domain.Quote, error) {
	if err := svc.validateQuery(q); err != nil {
		return nil, err
	}
	return svc.quoter.Quote(ctx, q)
}

// GetBalance fetches the live native balance. Never cached.
func (svc *Service) GetBalance(ctx context.Context, chain domain.Chain, addr string) (*domain.Balance, error) {
	adapter, ok := svc.adapters[chain]
	if !ok {
		return nil, common.InvalidInput("unsupported chain %q", chain)
	}
	if !adapter.ValidateAddress(addr) {
		return nil, common.InvalidInput("bad %s address %q", chain, addr)
	}
	raw, err := adapter.NativeBalance(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &domain.Balance{AvailableRaw: raw}, nil
}

// NativeUsdPrice returns the chain's native coin price in USD, for
// display math only. A nil price means the feed was unreachable.
func (svc *Service) NativeUsdPrice(ctx context.Context, chain domain.Chain) (*big.Rat, error) {
	if !chain.Valid() {
		return nil, common.InvalidInput("unsupported chain %q", chain)
	}
	callCtx, cancel := context.WithTimeout(ctx, svc.swapCfg.ProviderTimeout)
	defer cancel()
	return svc.coingecko.NativeUsdPrice(callCtx, chain)
}

// GetTokenMarket serves token metadata and market stats.
func (svc *Service) GetTokenMarket(ctx context.Context, chain domain.Chain, asset string) (*domain.TokenMarket, error) {
	adapter, ok := svc.adapters[chain]
	if !ok {
		return nil, common.InvalidInput("unsupported chain %q", chain)
	}
	if !adapter.ValidateAddress(asset) {
		return nil, common.InvalidInput("bad %s asset address %q", chain, asset)
	}
	return svc.quoter.TokenMarket(ctx, chain, asset)
}

// GetIntent looks up a journaled swap by reference.
func (svc *Service) GetIntent(ref string) (*Intent, error) {
	return svc.journal.Get(ref)
}

// Execute runs one swap end to end. It blocks while another swap for
// the same wallet is in flight.
func (svc *Service) Execute(ctx context.Context, req *domain.SwapRequest) (*domain.SwapResult, error) {
	started := time.Now()

	adapter, err := svc.validateRequest(req)
	if err != nil {
		metrics.SwapTotal.WithLabelValues(string(req.Chain), "invalid").Inc()
		return nil, err
	}

	unlock := svc.locks.lock(req.Wallet.Address)
	defer unlock()

	result, err := svc.execute(ctx, req, adapter)

	status := "failed"
	if err == nil && result.Success {
		status = "confirmed"
	} else if err == nil && result.Unknown {
		status = "unknown"
	}
	metrics.SwapTotal.WithLabelValues(string(req.Chain), status).Inc()
	metrics.SwapDuration.WithLabelValues(string(req.Chain)).Observe(time.Since(started).Seconds())
	return result, err
}

func (svc *Service) execute(ctx context.Context, req *domain.SwapRequest, adapter chains.Adapter) (*domain.SwapResult, error) {
	quote, err := svc.quoter.Quote(ctx, &oracle.Query{
		Chain:        req.Chain,
		Direction:    req.Direction,
		CounterAsset: req.CounterAsset,
		AmountRaw:    req.AmountRaw,
		SlippageBps:  req.SlippageBps,
	})
	if err != nil {
		return nil, err
	}
	minOutput := common.MinOutput(quote.OutputAmountRaw, req.SlippageBps)

	balanceBefore, err := adapter.NativeBalance(ctx, req.Wallet.Address)
	if err != nil {
		return nil, err
	}
	required := adapter.GasReserveRaw()
	if req.Direction == domain.NativeToToken {
		required += req.AmountRaw
	}
	if balanceBefore < required {
		return nil, common.InsufficientFunds(required-balanceBefore,
			fmt.Sprintf("need %s, have %s", common.FromRaw(required), common.FromRaw(balanceBefore)))
	}

	seed, err := svc.codec.Decrypt(req.Wallet.EncryptedSecret)
	if err != nil {
		return nil, common.KeyDecryptionFailed(err)
	}
	defer secret.Zero(seed)

	ref := NewRef()
	intent := &Intent{
		Ref:           ref,
		Kind:          IntentKindSwap,
		Chain:         req.Chain,
		WalletAddress: req.Wallet.Address,
		Direction:     string(req.Direction),
		CounterAsset:  req.CounterAsset,
		AmountRaw:     req.AmountRaw,
		MinOutputRaw:  minOutput,
		State:         IntentPending,
		CreatedAt:     time.Now(),
	}

	txID, unknown, err := svc.submitLoop(ctx, adapter, intent, seed,
		func(ctx context.Context) (*chains.UnsignedTx, error) {
			return adapter.BuildSwapTransaction(ctx, &chains.BuildParams{
				Direction:     req.Direction,
				CounterAsset:  req.CounterAsset,
				WalletAddress: req.Wallet.Address,
				AmountRaw:     req.AmountRaw,
				MinOutputRaw:  minOutput,
				SlippageBps:   req.SlippageBps,
			})
		},
		func(ctx context.Context, tx *chains.UnsignedTx) error {
			// Building can raise the real cost above the estimate (TON
			// attaches forward gas). Re-check against the exact value.
			if tx.ValueRaw == 0 {
				return nil
			}
			fresh, err := adapter.NativeBalance(ctx, req.Wallet.Address)
			if err != nil {
				return err
			}
			needed := tx.ValueRaw + adapter.GasReserveRaw()
			if fresh < needed {
				return common.InsufficientFunds(needed-fresh,
					fmt.Sprintf("need %s, have %s", common.FromRaw(needed), common.FromRaw(fresh)))
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	if unknown {
		return &domain.SwapResult{Ref: ref, Unknown: true}, nil
	}

	intent.State = IntentSubmitted
	intent.TxID = txID
	intent.ExplorerURL = adapter.ExplorerTxURL(txID)
	svc.journal.Put(intent)

	result := &domain.SwapResult{
		Ref:             ref,
		TxID:            txID,
		ExplorerURL:     intent.ExplorerURL,
		OutputAmountRaw: quote.OutputAmountRaw,
		Success:         true,
	}
	svc.reconcile(ctx, req, adapter, balanceBefore, intent, result)

	intent.State = IntentConfirmed
	intent.OutputAmountRaw = result.OutputAmountRaw
	intent.GasConsumedRaw = result.GasConsumedRaw
	intent.GasKnown = result.GasKnown
	svc.journal.Put(intent)

	return result, nil
}

const retryBackoffBase = 200 * time.Millisecond

// retryBackoff spaces rebuild attempts: 200ms, 400ms, 800ms...
func retryBackoff(attempt int) time.Duration {
	return retryBackoffBase << uint(attempt-2)
}

// submitLoop drives build, journal, sign and broadcast with bounded
// retries. Only an explicit pre-broadcast rejection is retried, after
// a backoff; a timed-out or cancelled broadcast is fate-unknown and is
// never resent. Terminal intent states are journaled here.
func (svc *Service) submitLoop(
	ctx context.Context,
	adapter chains.Adapter,
	intent *Intent,
	seed []byte,
	build func(context.Context) (*chains.UnsignedTx, error),
	recheck func(context.Context, *chains.UnsignedTx) error,
) (string, bool, error) {
	var lastErr error
	for attempt := 1; attempt <= svc.swapCfg.MaxSubmitAttempts; attempt++ {
		if attempt > 1 {
			metrics.SubmitRetries.WithLabelValues(string(intent.Chain)).Inc()
			svc.logger.Warn().Str("ref", intent.Ref).Int("attempt", attempt).
				Msg("rebuilding after rejected broadcast")
			select {
			case <-time.After(retryBackoff(attempt)):
			case <-ctx.Done():
				intent.State = IntentFailed
				intent.Error = ctx.Err().Error()
				svc.journal.Put(intent)
				return "", false, common.NetworkTimeout(ctx.Err())
			}
		}

		tx, err := build(ctx)
		if err != nil {
			lastErr = err
			if !common.RetryableBeforeBroadcast(common.KindOf(err)) {
				return "", false, err
			}
			continue
		}
		if recheck != nil {
			if err := recheck(ctx, tx); err != nil {
				return "", false, err
			}
		}

		// The intent hits disk before the network sees anything.
		if err := svc.journal.Put(intent); err != nil {
			return "", false, fmt.Errorf("failed to journal intent: %w", err)
		}

		submitCtx, cancel := context.WithTimeout(ctx, svc.swapCfg.SubmitTimeout)
		txID, err := adapter.SignAndSubmit(submitCtx, tx, seed)
		cancel()
		if err == nil {
			return txID, false, nil
		}
		lastErr = err

		if common.KindOf(err) == common.KindNetworkTimeout {
			// Broadcast fate unknown. Never resubmit; record and stop.
			intent.State = IntentUnknown
			intent.Error = err.Error()
			svc.journal.Put(intent)
			svc.logger.Error().Str("ref", intent.Ref).Err(err).
				Msg("broadcast fate unknown, manual reconciliation required")
			return "", true, nil
		}
		if common.KindOf(err) != common.KindSubmissionFailed {
			intent.State = IntentFailed
			intent.Error = err.Error()
			svc.journal.Put(intent)
			return "", false, err
		}
	}

	intent.State = IntentFailed
	intent.Error = lastErr.Error()
	svc.journal.Put(intent)
	return "", false, lastErr
}

// reconcile settles the result against the post-swap balance. Buying
// spends native, so the delta above the input is the gas paid. Selling
// raises the balance: the delta is the realized output net of fees, so
// it replaces the estimate while the gas share stays unknown. A failed
// read never fails the swap.
func (svc *Service) reconcile(ctx context.Context, req *domain.SwapRequest, adapter chains.Adapter, balanceBefore uint64, intent *Intent, result *domain.SwapResult) {
	balanceAfter, err := adapter.NativeBalance(ctx, req.Wallet.Address)
	if err != nil {
		svc.logger.Warn().Str("ref", intent.Ref).Err(err).
			Msg("post-swap balance read failed, gas unknown")
		return
	}

	if req.Direction == domain.TokenToNative {
		if balanceAfter > balanceBefore {
			result.OutputAmountRaw = balanceAfter - balanceBefore
		}
		return
	}

	spent := uint64(0)
	if balanceBefore > balanceAfter {
		spent = balanceBefore - balanceAfter
	}
	gas := spent
	if spent > req.AmountRaw {
		gas = spent - req.AmountRaw
	}
	result.GasConsumedRaw = gas
	result.GasKnown = true
}

func (svc *Service) validateRequest(req *domain.SwapRequest) (chains.Adapter, error) {
	adapter, ok := svc.adapters[req.Chain]
	if !ok {
		return nil, common.InvalidInput("unsupported chain %q", req.Chain)
	}
	if !req.Direction.Valid() {
		return nil, common.InvalidInput("bad direction %q", req.Direction)
	}
	if req.AmountRaw == 0 {
		return nil, common.InvalidInput("amount must be positive")
	}
	if req.SlippageBps > uint16(common.BpsDenominator) {
		return nil, common.InvalidInput("slippage %d bps out of range", req.SlippageBps)
	}
	if !adapter.ValidateAddress(req.Wallet.Address) {
		return nil, common.InvalidInput("bad %s wallet address %q", req.Chain, req.Wallet.Address)
	}
	if !adapter.ValidateAddress(req.CounterAsset) {
		return nil, common.InvalidInput("bad %s asset address %q", req.Chain, req.CounterAsset)
	}
	if len(req.Wallet.EncryptedSecret) == 0 {
		return nil, common.InvalidInput("missing wallet secret")
	}
	return adapter, nil
}

func (svc *Service) validateQuery(q *oracle.Query) error {
	adapter, ok := svc.adapters[q.Chain]
	if !ok {
		return common.InvalidInput("unsupported chain %q", q.Chain)
	}
	if !q.Direction.Valid() {
		return common.InvalidInput("bad direction %q", q.Direction)
	}
	if q.AmountRaw == 0 {
		return common.InvalidInput("amount must be positive")
	}
	if !adapter.ValidateAddress(q.CounterAsset) {
		return common.InvalidInput("bad %s asset address %q", q.Chain, q.CounterAsset)
	}
	return nil
}
