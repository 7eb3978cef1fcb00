package cmd

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/gaze-network/ordbridge/core/datasources"
	"github.com/gaze-network/ordbridge/core/indexer"
	"github.com/gaze-network/ordbridge/internal/config"
	"github.com/gaze-network/ordbridge/internal/postgres"
	"github.com/gaze-network/ordbridge/modules/bridge"
	bridgehttphandler "github.com/gaze-network/ordbridge/modules/bridge/api/httphandler"
	"github.com/gaze-network/ordbridge/modules/bridge/collection"
	"github.com/gaze-network/ordbridge/modules/bridge/contract"
	bridgepostgres "github.com/gaze-network/ordbridge/modules/bridge/repository/postgres"
	"github.com/gaze-network/ordbridge/modules/bridge/worker"
	"github.com/gaze-network/ordbridge/modules/inscriptions"
	inscriptionshttphandler "github.com/gaze-network/ordbridge/modules/inscriptions/api/httphandler"
	inscriptionspostgres "github.com/gaze-network/ordbridge/modules/inscriptions/repository/postgres"
	"github.com/gaze-network/ordbridge/pkg/automaxprocs"
	"github.com/gaze-network/ordbridge/pkg/errorhandler"
	"github.com/gaze-network/ordbridge/pkg/logger"
	"github.com/gaze-network/ordbridge/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
)

func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the ordbridge indexer",
		Run:   runHandler,
	}
}

func runHandler(cmd *cobra.Command, _ []string) {
	conf, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", slogx.Error(err))
	}
	if err := logger.Init(logger.Config{Output: "TEXT", Debug: conf.Debug}); err != nil {
		logger.Fatal("Failed to initialize logger", slogx.Error(err))
	}
	if err := automaxprocs.Init(); err != nil {
		logger.Warn("Failed to set GOMAXPROCS", slogx.Error(err))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, slogx.Stringer("network", conf.Network))

	// Bitcoin Core RPC client
	btcClient, err := rpcclient.New(rpcConnConfig(conf.RpcUrl), nil)
	if err != nil {
		logger.FatalContext(ctx, "Failed to create Bitcoin RPC client", slogx.Error(err))
	}
	defer btcClient.Shutdown()
	if err := btcClient.Ping(); err != nil {
		logger.FatalContext(ctx, "Failed to ping Bitcoin RPC server", slogx.Error(err))
	}

	pg, err := postgres.NewPool(ctx, postgres.Config{URL: conf.DatabaseUrl, Debug: conf.Debug})
	if err != nil {
		logger.FatalContext(ctx, "Failed to create Postgres connection pool", slogx.Error(err))
	}
	defer pg.Close()

	inscriptionRepository := inscriptionspostgres.NewRepository(pg)

	// bridge subsystem
	var bridgeService *bridge.Service
	var hook inscriptions.TransactionHook
	if conf.Bridge.Enabled() {
		coll, err := collection.LoadFromFile(conf.Bridge.CollectionFile, conf.Bridge.CollectionName, conf.Bridge.CollectionSymbol)
		if err != nil {
			logger.FatalContext(ctx, "Failed to load collection file", slogx.Error(err))
		}
		logger.InfoContext(ctx, "Loaded bridge collection",
			slogx.String("name", coll.Name()),
			slogx.Int("size", coll.Size()),
		)
		bridgeRepository := bridgepostgres.NewRepository(pg)
		bridgeService = bridge.NewService(bridgeRepository, coll, conf.Network, bridge.Config{
			BurnAddress:           conf.Bridge.BurnAddress,
			OracleFeeAddress:      conf.Bridge.OracleFeeAddress,
			RequiredConfirmations: conf.Bridge.Confirmations,
			MinFeeSats:            conf.Bridge.MinFeeSats,
		})
		hook = bridgeService
	}

	processor := inscriptions.NewProcessor(inscriptionRepository, conf.Network, hook)
	datasource := datasources.NewBitcoinNode(btcClient)
	indexerInstance := indexer.New(datasource, processor, conf.StartHeight)

	go func() {
		logger.InfoContext(ctx, "Starting indexer")
		if err := indexerInstance.Run(ctx); err != nil {
			logger.ErrorContext(ctx, "Indexer stopped with error", slogx.Error(err))
			stop()
		}
	}()

	// attestation worker
	var attestor *worker.Attestor
	if conf.Bridge.WorkerEnabled() {
		wallet, err := contract.NewWalletFromMnemonic(conf.Bridge.DeployerMnemonic, conf.Network)
		if err != nil {
			logger.FatalContext(ctx, "Failed to derive deployer wallet", slogx.Error(err))
		}
		contractClient, err := contract.NewHttpClient(conf.BridgeRpcUrl(), conf.Bridge.ContractAddress)
		if err != nil {
			logger.FatalContext(ctx, "Failed to create contract client", slogx.Error(err))
		}
		attestor = worker.NewAttestor(bridgeService, contractClient, wallet, conf.Network, conf.Bridge.WorkerInterval)
		go func() {
			logger.InfoContext(ctx, "Starting attestation worker")
			if err := attestor.Run(ctx); err != nil {
				logger.ErrorContext(ctx, "Attestation worker stopped with error", slogx.Error(err))
			}
		}()
	}

	// HTTP API
	var app *fiber.App
	if conf.EnableApi {
		app = fiber.New(fiber.Config{
			AppName:      "ordbridge",
			ErrorHandler: errorhandler.NewHTTPErrorHandler(),
		})
		app.Use(requestid.New())
		app.Use(recover.New())
		app.Use(cors.New())
		app.Use(compress.New())
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(map[string]string{"status": "ok"})
		})

		inscriptionHandler := inscriptionshttphandler.New(conf.Network, inscriptionRepository)
		if err := inscriptionHandler.Mount(app); err != nil {
			logger.FatalContext(ctx, "Failed to mount inscription handlers", slogx.Error(err))
		}
		if bridgeService != nil {
			bridgeHandler := bridgehttphandler.New(bridgeService)
			if err := bridgeHandler.Mount(app); err != nil {
				logger.FatalContext(ctx, "Failed to mount bridge handlers", slogx.Error(err))
			}
		}

		go func() {
			logger.InfoContext(ctx, "Starting HTTP server", slogx.Int("port", conf.ApiPort))
			if err := app.Listen(fmt.Sprintf(":%d", conf.ApiPort)); err != nil {
				logger.ErrorContext(ctx, "HTTP server stopped with error", slogx.Error(err))
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Shutting down")

	indexerInstance.Shutdown()
	if attestor != nil {
		attestor.Shutdown()
	}
	if app != nil {
		if err := app.Shutdown(); err != nil {
			logger.ErrorContext(ctx, "Failed to shut down HTTP server", slogx.Error(err))
		}
	}
	logger.InfoContext(ctx, "Shutdown complete")
}

// rpcConnConfig converts an http(s) url into a btcd rpcclient config.
func rpcConnConfig(rpcUrl string) *rpcclient.ConnConfig {
	conf := &rpcclient.ConnConfig{
		Host:         rpcUrl,
		HTTPPostMode: true,
		DisableTLS:   true,
	}
	parsed, err := url.Parse(rpcUrl)
	if err != nil || parsed.Host == "" {
		return conf
	}
	conf.Host = parsed.Host + strings.TrimSuffix(parsed.Path, "/")
	conf.DisableTLS = parsed.Scheme != "https"
	if parsed.User != nil {
		conf.User = parsed.User.Username()
		if pass, ok := parsed.User.Password(); ok {
			conf.Pass = pass
		}
	}
	return conf
}
