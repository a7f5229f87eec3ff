package cli

import (
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stakelab-io/stake-ledger/internal/api"
	"github.com/stakelab-io/stake-ledger/internal/config"
	"github.com/stakelab-io/stake-ledger/internal/db"
	dbmodel "github.com/stakelab-io/stake-ledger/internal/db/model"
	"github.com/stakelab-io/stake-ledger/internal/ledger"
	"github.com/stakelab-io/stake-ledger/internal/observability/metrics"
	"github.com/stakelab-io/stake-ledger/internal/observability/tracing"
	"github.com/stakelab-io/stake-ledger/internal/queue"
	"github.com/stakelab-io/stake-ledger/internal/services"
	"github.com/stakelab-io/stake-ledger/internal/token"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the stake ledger server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msgf("error while loading config file: %s", cfgPath)
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up stake ledger db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	// Create a basic zap logger
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating zap logger")
	}
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			log.Error().Err(err).Msg("error while syncing zap logger")
		}
	}()

	queueManager, err := queue.NewQueueManager(&cfg.Queue, zapLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize queue manager")
	}
	defer queueManager.Shutdown()

	// the asset ledger lives in process; the initial supply goes to the owner
	assetLedger := token.NewLedger(cfg.Token.Name, cfg.Token.Symbol)
	initialSupply, err := cfg.Token.ParseInitialSupply()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid token initial supply")
	}
	if initialSupply.IsPositive() {
		if err := assetLedger.Mint(cfg.Ledger.OwnerAddress, initialSupply); err != nil {
			log.Fatal().Err(err).Msg("failed to mint initial token supply")
		}
	}

	service, err := services.NewService(cfg, dbClient, assetLedger, queueManager, ledger.SystemClock())
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating service")
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	service.StartMaturityChecker(ctx)

	apiServer := api.New(&cfg.API, service)
	return apiServer.Start(ctx)
}
