package application

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"p2p_market/internal/config"
	"p2p_market/internal/domain/entity"
	"p2p_market/internal/domain/service/acceptance"
	"p2p_market/internal/domain/service/board"
	"p2p_market/internal/infrastructure/icons"
	"p2p_market/internal/infrastructure/listing"
	"p2p_market/internal/infrastructure/notifier"
	"p2p_market/internal/infrastructure/persistence"
	"p2p_market/internal/infrastructure/settlement"
	"p2p_market/internal/server"
	"p2p_market/internal/worker"
	"p2p_market/pkg/application/connectors"
	"p2p_market/pkg/application/modules"
	"p2p_market/pkg/contextx"
	"p2p_market/pkg/logx"
	"p2p_market/pkg/middlewarex"
)

const (
	appName    = "p2p-market"
	appVersion = "dev"

	logFieldMaxLen     = 4096
	acceptedChanBuffer = 100
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func Run(ctx context.Context) error {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	// 2. Database
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	// 3. Redis: проверяем доступность до старта очередей.
	rd := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	rd.Client(ctx)
	defer rd.Close(ctx)

	// 4. Доска офферов
	offerRepo := persistence.NewOfferRepository(db)
	listingClient := listing.NewClient(cfg.Listing.BaseURL, cfg.Listing.Token)
	iconResolver := icons.NewResolver("https://static.p2p-market.io/icons")
	boardService := board.NewService(offerRepo, listingClient, iconResolver)

	// 5. Очередь расчётов
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DatabaseNumber,
	}

	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	enqueuer := settlement.NewEnqueuer(asynqClient)
	acceptanceService := acceptance.NewService(enqueuer)

	accepted := make(chan entity.AcceptIntent, acceptedChanBuffer)
	settlementHandler := settlement.NewHandler(cfg.Settlement.BaseURL, accepted)

	g, ctx := errgroup.WithContext(ctx)

	// 6. Бот с алертами (опционален)
	if cfg.Bot.Token != "" {
		alertBot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return fmt.Errorf("notifier bot: %w", err)
		}

		g.Go(func() error {
			if err := alertBot.Run(ctx, accepted); err != nil && ctx.Err() == nil {
				return fmt.Errorf("alertBot.Run: %w", err)
			}

			return nil
		})
	}

	// 7. Фоновый синк доски
	refresher := worker.NewBoardRefresher(boardService).
		WithSyncInterval(cfg.Listing.SyncInterval)

	if err := refresher.Start(ctx); err != nil {
		return fmt.Errorf("refresher.Start: %w", err)
	}
	defer refresher.Stop()

	// 8. HTTP API
	router := chi.NewRouter()

	masker := logx.NewSensitiveDataMasker()
	router.Use(
		middlewarex.TraceID,
		middlewarex.TraderID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
	)

	restServer := server.NewServer(
		server.NewOfferServer(boardService),
		server.NewDraftServer(boardService, acceptanceService),
	)
	restServer.RegisterRoutes(router)

	httpServer := &http.Server{ //nolint:exhaustruct
		Addr:    cfg.Server.ListenAddress,
		Handler: router,
	}

	modules.HTTPServer{ShutdownTimeout: cfg.Server.ShutdownTimeout}.Run(ctx, g, httpServer)

	modules.ProbeServer{
		Name:          appName,
		Version:       appVersion,
		ListenAddress: cfg.Server.ProbeListenAddress,
	}.Run(ctx, g)

	modules.MetricServer{ListenAddress: cfg.Server.MetricsListenAddress}.Run(ctx, g)

	modules.AsynqServer{
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisAddress:  cfg.Redis.Address,
		RedisDB:       cfg.Redis.DatabaseNumber,
	}.Run(ctx, g,
		modules.AsynqQueues{settlement.QueueName: 10},
		modules.AsynqHandler{
			Pattern: settlement.TaskTypeAccept,
			Handle:  settlementHandler.HandleAcceptTask,
		},
	)

	logger(ctx).Info("application started")

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	logger(ctx).Info("application stopped")

	return nil
}
