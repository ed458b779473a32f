package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/flasharb-go/cmd/arbd/config"
	"github.com/defistate/flasharb-go/engine"
	"github.com/defistate/flasharb-go/gateway/memdex"
	tokenregistry "github.com/defistate/flasharb-go/protocols/tokenregistry"
	"github.com/defistate/flasharb-go/risk"
	"github.com/defistate/flasharb-go/routes"
	"github.com/defistate/flasharb-go/streams/events"
)

const defaultEventBufferSize = 100

func main() {
	rootLogHandler := slog.NewJSONHandler(os.Stdout, nil)
	close := func() {
		os.Exit(1)
	}

	rootLogger := slog.New(rootLogHandler)
	prometheusRegistry := prometheus.DefaultRegisterer
	cfg, err := loadConfig()
	if err != nil {
		rootLogger.Error("Failed to load configuration", "error", err)
		close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := buildTokenRegistry(cfg)
	if err != nil {
		rootLogger.Error("Failed to build token registry", "error", err)
		close()
	}

	host := memdex.New(memdex.Config{
		FactoryAddr:  config.Address(cfg.FactoryAddress),
		InitCodeHash: common.HexToHash(cfg.InitCodeHash),
	})
	for _, token := range registry.All() {
		if token.TakesTransferFee() {
			host.Ledger().SetTransferFee(token.Address, token.FeeOnTransferBps)
		}
	}
	if err := seedPools(host, cfg); err != nil {
		rootLogger.Error("Failed to seed pools", "error", err)
		close()
	}

	controller, err := buildRiskController(cfg)
	if err != nil {
		rootLogger.Error("Failed to initialize risk controller", "error", err)
		close()
	}

	bufferSize := cfg.EventBufferSize
	if bufferSize == 0 {
		bufferSize = defaultEventBufferSize
	}
	processor, err := events.NewProcessor(events.Config{
		Logger:        rootLogger.With("component", "events"),
		BufferSize:    bufferSize,
		PrometheusReg: prometheusRegistry,
	})
	if err != nil {
		rootLogger.Error("Failed to initialize event processor", "error", err)
		close()
	}

	eng, err := buildEngine(cfg, host, controller, processor, rootLogger, prometheusRegistry)
	if err != nil {
		rootLogger.Error("Failed to initialize engine", "error", err)
		close()
	}

	rootLogger.Info("arbd running",
		"assets", len(cfg.Assets),
		"pools", len(cfg.Pools),
		"owner", eng.Owner(),
	)

	var scan <-chan time.Time
	if cfg.ScanIntervalSeconds > 0 {
		ticker := time.NewTicker(time.Duration(cfg.ScanIntervalSeconds) * time.Second)
		defer ticker.Stop()
		scan = ticker.C
	}

	for {
		select {
		case ev := <-processor.Events():
			rootLogger.Info("engine event",
				"kind", ev.Kind,
				"asset", ev.Asset,
				"reason", ev.Reason,
			)
		case <-scan:
			runScan(cfg, eng, registry, rootLogger)
		case <-ctx.Done():
			rootLogger.Info("shutting down")
			return
		}
	}
}

// seedPools creates every configured pool in the in-memory exchange.
func seedPools(host *memdex.Host, cfg *config.ArbdConfig) error {
	for _, pool := range cfg.Pools {
		reserveA, err := config.ParseAmount(pool.ReserveA)
		if err != nil {
			return err
		}
		reserveB, err := config.ParseAmount(pool.ReserveB)
		if err != nil {
			return err
		}
		if _, err := host.CreatePool(
			config.Address(pool.TokenA),
			config.Address(pool.TokenB),
			reserveA, reserveB,
			pool.FeeBps,
		); err != nil {
			return err
		}
	}
	return nil
}

func buildRiskController(cfg *config.ArbdConfig) (*risk.Controller, error) {
	maxDaily, err := config.ParseAmount(cfg.MaxDailyVolume)
	if err != nil {
		return nil, err
	}
	controller, err := risk.NewController(risk.Config{
		MaxDailyVolume:   maxDaily,
		DeviationTripBps: cfg.DeviationTripBps,
	})
	if err != nil {
		return nil, err
	}
	for _, asset := range cfg.Assets {
		maxLoan, err := config.ParseAmount(asset.MaxLoanAmount)
		if err != nil {
			return nil, err
		}
		if err := controller.SetAssetConfig(config.Address(asset.Address), risk.AssetConfig{
			MaxLoanAmount: maxLoan,
			LTVRatioBps:   asset.LTVRatioBps,
			RiskScore:     asset.RiskScore,
			Active:        asset.Active,
		}); err != nil {
			return nil, err
		}
	}
	return controller, nil
}

func buildEngine(
	cfg *config.ArbdConfig,
	host *memdex.Host,
	controller *risk.Controller,
	processor *events.Processor,
	logger *slog.Logger,
	prometheusRegistry prometheus.Registerer,
) (*engine.Engine, error) {
	minLoan, err := config.ParseAmount(cfg.MinLoanAmount)
	if err != nil {
		return nil, err
	}
	maxLoan, err := config.ParseAmount(cfg.MaxLoanAmount)
	if err != nil {
		return nil, err
	}

	engineRoutes := make(map[common.Address]engine.Route, len(cfg.Assets))
	for _, asset := range cfg.Assets {
		path := make([]common.Address, len(asset.Route))
		for i, hop := range asset.Route {
			path[i] = config.Address(hop)
		}
		engineRoutes[config.Address(asset.Address)] = engine.Route{
			LoanCounterAsset: config.Address(asset.LoanCounterAsset),
			Path:             path,
		}
	}

	eng, err := engine.New(engine.Config{
		Self:                  config.Address(cfg.Self),
		Owner:                 config.Address(cfg.Owner),
		FeeRecipient:          config.Address(cfg.FeeRecipient),
		ProtocolFeeBps:        cfg.ProtocolFeeBps,
		MinLoanAmount:         minLoan,
		MaxLoanAmount:         maxLoan,
		PriceImpactCeilingBps: cfg.PriceImpactCeilingBps,
		AnomalyBps:            cfg.AnomalyBps,
		DeadlineBuffer:        time.Duration(cfg.DeadlineSeconds) * time.Second,
		MaxCallDepth:          cfg.MaxCallDepth,
		Routes:                engineRoutes,
		Graph:                 routes.NewGraph(host.Pools()),
		Factory:               host,
		Router:                host.Router(),
		Ledger:                host.Ledger(),
		Deriver:               host.Deriver(),
		Risk:                  controller,
		Logger:                logger.With("component", "engine"),
		Emitter:               processor,
		PrometheusReg:         prometheusRegistry,
	})
	if err != nil {
		return nil, err
	}

	host.RegisterBorrower(config.Address(cfg.Self), eng)
	return eng, nil
}

// runScan quotes every configured asset at the scan amount. Quotes are the
// pre-flight signal an initiator acts on; the daemon only reports them.
func runScan(cfg *config.ArbdConfig, eng *engine.Engine, registry *tokenregistry.Registry, logger *slog.Logger) {
	scanAmount, err := config.ParseAmount(cfg.ScanAmount)
	if err != nil {
		logger.Error("Invalid scan amount", "error", err)
		return
	}
	for _, asset := range cfg.Assets {
		addr := config.Address(asset.Address)
		symbol := asset.Address
		if token, ok := registry.ByAddress(addr); ok {
			symbol = token.Symbol
		}

		quote, err := eng.Simulate(engine.LoanRequest{
			Asset:                addr,
			Amount:               scanAmount,
			SlippageToleranceBps: 500,
			Initiator:            config.Address(cfg.Owner),
		})
		if err != nil {
			logger.Warn("Quote failed", "asset", symbol, "error", err)
			continue
		}
		logger.Info("quote",
			"asset", symbol,
			"profitable", quote.Profitable,
			"repay", quote.RepayAmount.String(),
			"expectedOutput", quote.ExpectedOutput.String(),
			"netProfit", quote.NetProfit.String(),
		)
	}
}

func buildTokenRegistry(cfg *config.ArbdConfig) (*tokenregistry.Registry, error) {
	tokens := make([]tokenregistry.Token, len(cfg.Tokens))
	for i, token := range cfg.Tokens {
		tokens[i] = tokenregistry.Token{
			Address:          config.Address(token.Address),
			Name:             token.Name,
			Symbol:           token.Symbol,
			Decimals:         token.Decimals,
			FeeOnTransferBps: token.FeeOnTransferBps,
		}
	}
	return tokenregistry.NewRegistry(tokens)
}

func loadConfig() (*config.ArbdConfig, error) {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file.")
	flag.Parse()
	log.Printf("Loading configuration from: %s", *configPath)
	return config.LoadConfig(*configPath)
}
