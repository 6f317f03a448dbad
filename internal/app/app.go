// Package app wires the Executor's configured dependencies -- chain
// adapters, the price cache, the registry, the relay worker, and the HTTP
// surface -- into a single runnable service. It replaces the teacher's
// interactive-CLI `cmd/arcsign` entrypoint with the long-running-process
// idiom the rest of this corpus's server-shaped repos use: a single `New`
// that builds everything up front and a `Run` that blocks until its
// context is cancelled.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tzrpc "blockwatch.cc/tzgo/rpc"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/stellar/go/clients/horizonclient"
	"go.uber.org/zap"

	"github.com/example/executor/internal/config"
	"github.com/example/executor/src/executor/audit"
	"github.com/example/executor/src/executor/chainadapter"
	execevm "github.com/example/executor/src/executor/chainadapter/ethereum"
	"github.com/example/executor/src/executor/chainadapter/metrics"
	execsvm "github.com/example/executor/src/executor/chainadapter/svm"
	execstellar "github.com/example/executor/src/executor/chainadapter/stellar"
	exectezos "github.com/example/executor/src/executor/chainadapter/tezos"
	"github.com/example/executor/src/executor/httpapi"
	"github.com/example/executor/src/executor/priceoracle"
	"github.com/example/executor/src/executor/registry"
	"github.com/example/executor/src/executor/worker"
)

// App is the fully-wired Executor process: an HTTP listener and a relay
// worker sharing one registry, adapter set, and price cache.
type App struct {
	logger  *zap.Logger
	server  *http.Server
	worker  *worker.Worker
	metrics *metrics.PrometheusMetrics
}

// New builds every layer of the service from cfg: one chain adapter per
// configured chain (dispatched by runtimeFamily), the shared registry and
// price cache, the relay worker, and the HTTP surface.
func New(cfg *config.Config) (*App, error) {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	chainMetrics := metrics.NewPrometheusMetrics()

	adapters := make(map[uint16]chainadapter.Adapter, len(cfg.Chains))
	httpChains := make(map[uint16]httpapi.ChainConfig, len(cfg.Chains))
	assetIDs := make([]priceoracle.AssetID, 0, len(cfg.Chains))

	for chainID, entry := range cfg.Chains {
		adapter, err := buildAdapter(chainID, entry, cfg, chainMetrics)
		if err != nil {
			return nil, fmt.Errorf("app: chain %d: %w", chainID, err)
		}
		if adapter != nil {
			adapters[chainID] = adapter
		}

		payee, err := parseUniversalAddress(entry.PayeeAddress)
		if err != nil {
			return nil, fmt.Errorf("app: chain %d: %w", chainID, err)
		}
		executorAddr, err := parseAddressBytes(entry.RuntimeFamily, entry.ExecutorAddress)
		if err != nil {
			return nil, fmt.Errorf("app: chain %d: %w", chainID, err)
		}

		httpChains[chainID] = httpapi.ChainConfig{
			ChainID:          chainID,
			BaseFee:          entry.BaseFee,
			PayeeAddress:     payee,
			GasPriceDecimals: entry.GasPriceDecimals,
			NativeDecimals:   entry.NativeDecimals,
			ExecutorAddress:  executorAddr,
			RuntimeFamily:    entry.RuntimeFamily,
			AssetID:          priceoracle.AssetID(entry.AssetID),
		}
		if entry.AssetID != "" {
			assetIDs = append(assetIDs, priceoracle.AssetID(entry.AssetID))
		}
	}

	priceSource := priceoracle.NewHTTPSource(cfg.PriceFeedURL, nil)
	priceCache := priceoracle.New(priceSource)
	if len(assetIDs) > 0 {
		// Warm the cache synchronously so the first /v0/quote request
		// after startup doesn't pay the fetch latency inline.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := priceCache.UpdatePriceCache(ctx, assetIDs); err != nil {
			logger.Warn("initial price cache warm-up failed", zap.Error(err))
		}
		cancel()
	}

	var vaaFetcher worker.VAAFetcher
	if cfg.GuardianURL != "" {
		vaaFetcher = worker.NewGuardianVAAFetcher(cfg.GuardianURL, nil)
	}

	var auditLog *audit.Logger
	if cfg.AuditLogPath != "" {
		auditLog, err = audit.NewLogger(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("app: audit log: %w", err)
		}
	}
	relayWorker := worker.New(reg, adapters, vaaFetcher, chainMetrics, logger.Named("worker"), auditLog)

	allowedQuoters := map[string]bool{
		strings.ToLower(crypto.PubkeyToAddress(cfg.QuoterKey.PublicKey).Hex()): true,
	}
	httpServer := httpapi.New(reg, adapters, httpChains, priceCache, cfg.QuoterKey, allowedQuoters, logger.Named("httpapi"), auditLog)

	mux := http.NewServeMux()
	mux.Handle("/", httpServer)
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte(chainMetrics.Export()))
	})

	return &App{
		logger: logger,
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		worker:  relayWorker,
		metrics: chainMetrics,
	}, nil
}

// Run starts the HTTP listener and the relay worker loop, blocking until
// ctx is cancelled, then shuts both down.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http listener starting", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("app: http server: %w", err)
			return
		}
		errCh <- nil
	}()

	go a.worker.Run(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	a.worker.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}

// buildAdapter dispatches on entry.RuntimeFamily, returning nil (no error)
// for any family with no adapter wired -- such chains are simply absent
// from the dispatch table, and requests against them resolve to
// ChainUnsupportedError at the HTTP surface.
func buildAdapter(chainID uint16, entry config.ChainEntry, cfg *config.Config, m metrics.ChainMetrics) (chainadapter.Adapter, error) {
	switch entry.RuntimeFamily {
	case "evm":
		rpcClient, err := newHTTPRPCClient(entry.RPC, m)
		if err != nil {
			return nil, err
		}
		relayKey := cfg.EVMRelayKeys[chainID]
		if relayKey == nil {
			return execevm.NewAdapter(chainID, entry.EVMChainID, entry.ExecutorAddress, rpcClient, nil), nil
		}
		signer, err := execevm.NewRelaySignerFromPrivateKey(crypto.FromECDSA(relayKey), entry.EVMChainID)
		if err != nil {
			return nil, fmt.Errorf("relay signer: %w", err)
		}
		return execevm.NewAdapter(chainID, entry.EVMChainID, entry.ExecutorAddress, rpcClient, signer), nil

	case "svm":
		rpcClient, err := newHTTPRPCClient(entry.RPC, m)
		if err != nil {
			return nil, err
		}
		program, err := solana.PublicKeyFromBase58(entry.ExecutorAddress)
		if err != nil {
			return nil, fmt.Errorf("executorAddress: %w", err)
		}
		relayKey := cfg.SVMRelayKeys[chainID]
		return execsvm.NewAdapter(chainID, program, rpcClient, relayKey), nil

	case "tezos":
		client, err := tzrpc.NewClient(entry.RPC, nil)
		if err != nil {
			return nil, fmt.Errorf("tezos rpc client: %w", err)
		}
		return exectezos.NewAdapter(chainID, client), nil

	case "stellar":
		client := &horizonclient.Client{HorizonURL: entry.RPC}
		return execstellar.NewAdapter(chainID, client), nil

	default:
		return nil, nil
	}
}
