package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/inventory-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/inventory-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/inventory-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/inventory-backend/internal/infrastructure/kafka"
	"github.com/DRSN-tech/inventory-backend/internal/infrastructure/telemetry"
	"github.com/DRSN-tech/inventory-backend/internal/repository/pgdb"
	"github.com/DRSN-tech/inventory-backend/internal/repository/sqlite"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/closer"
	"github.com/DRSN-tech/inventory-backend/pkg/clients"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/DRSN-tech/inventory-backend/pkg/postgres"
	"github.com/DRSN-tech/inventory-backend/pkg/ratelimit"
	"github.com/DRSN-tech/inventory-backend/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout     = 10 * time.Second
	kafkaTopicTimeout   = 10 * time.Second
	dependencyPingLimit = 5 * time.Second
)

// App собирает и запускает все компоненты сервиса.
type App struct {
	cfg      *config.Config
	logger   logger.Logger
	closer   *closer.Closer
	httpSrv  *v1Http.Server
	grpcSrv  *v1Grpc.GRPCServer
	worker   *kafka.OutboxWorker
	listener *pgdb.OutboxListener
}

// storage собирает репозитории выбранного драйвера БД.
type storage struct {
	products  usecase.ProductRepository
	sales     usecase.SaleRepository
	outbox    usecase.OutboxRepository
	txManager usecase.Transactor
	health    v1Http.Pinger
	listener  *pgdb.OutboxListener
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	ctx := context.Background()
	c := closer.NewCloser(0)

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	c.Add("telemetry", providers.Shutdown)

	st, err := initStorage(cfg.Db, log, c)
	if err != nil {
		_ = c.Close(ctx)
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var (
		recorder usecase.EventRecorder
		worker   *kafka.OutboxWorker
	)
	if cfg.Kafka != nil {
		producer := kafka.NewProducer(log, cfg.Kafka)
		c.Add("kafka producer", func(context.Context) error { return producer.Close() })

		if err := producer.EnsureTopic(kafkaTopicTimeout); err != nil {
			log.Warnf("failed to ensure kafka topic, events stay in outbox until it is available: %v", err)
		}

		recorder = usecase.NewOutboxRecorder(st.outbox)
		worker = kafka.NewOutboxWorker(st.outbox, producer, log, cfg.Outbox)
	} else {
		log.Infof("KAFKA_BROKERS is not set, stock events are not published")
	}

	invUC, err := usecase.NewInventoryUC(
		st.products,
		st.sales,
		st.txManager,
		recorder,
		log,
		providers.Tracer(),
		providers.Meter(),
	)
	if err != nil {
		_ = c.Close(ctx)
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var limiter v1Http.RateLimiter
	if cfg.Redis.RateLimit.Enabled {
		redisClient := clients.NewRedisClient(cfg.Redis)
		c.Add("redis", redisClient.Close)

		pingCtx, cancel := context.WithTimeout(ctx, dependencyPingLimit)
		if err := redisClient.Ping(pingCtx); err != nil {
			log.Warnf("redis is unavailable, rate limiter fails open: %v", err)
		}
		cancel()

		limiter = ratelimit.NewLimiter(redisClient.Client, ratelimit.DefaultKeyPrefix, cfg.Redis.RateLimit.Limit, cfg.Redis.RateLimit.Window)
	}

	r := chi.NewRouter()
	v1Http.NewRouter(r, cfg.Http, log).Init(invUC, st.health, limiter)

	grpcSrv := v1Grpc.NewGRPCServer(cfg.Grpc, log)
	grpcSrv.RegisterServices(invUC)

	app := &App{
		cfg:     cfg,
		logger:  log,
		closer:  c,
		httpSrv: v1Http.NewServer(r, cfg.Http),
		grpcSrv: grpcSrv,
		worker:  worker,
	}
	if worker != nil {
		app.listener = st.listener
	}

	return app, nil
}

// Run блокируется до SIGINT/SIGTERM или падения одного из серверов.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			return e.Wrap("http server", err)
		}
		return nil
	})

	g.Go(func() error {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			return e.Wrap("grpc server", err)
		}
		return nil
	})

	if a.worker != nil {
		g.Go(func() error {
			return a.worker.Run(gctx)
		})
	}

	if a.listener != nil {
		g.Go(func() error {
			a.listener.Listen(gctx, a.worker.Wake())
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Infof("Stopping gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := a.httpSrv.Stop(shutdownCtx); err != nil {
			a.logger.Errorf(err, "HTTP server shutdown error")
		} else {
			a.logger.Infof("HTTP server stopped")
		}

		if err := a.grpcSrv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			a.logger.Errorf(err, "gRPC server shutdown error")
		}

		return nil
	})

	runErr := g.Wait()
	if runErr != nil {
		a.logger.Errorf(runErr, "server fatal error")
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(closeCtx); err != nil {
		a.logger.Errorf(err, "failed to release resources")
	}

	a.logger.Infof("Application shutdown complete")
	return runErr
}

func initStorage(cfg *config.DBCfg, log logger.Logger, c *closer.Closer) (*storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := initPGDB(log, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		c.AddFunc("postgres", db.Close)

		return &storage{
			products:  pgdb.NewProductRepo(db.Pool),
			sales:     pgdb.NewSaleRepo(db.Pool),
			outbox:    pgdb.NewOutboxEventRepo(db.Pool),
			txManager: tr.NewPgxTransactor(db.Pool),
			health:    db,
			listener:  pgdb.NewOutboxListener(db.Dsn, log),
		}, nil
	case config.DriverSqlite:
		db, err := sqlite.Open(cfg.SqlitePath)
		if err != nil {
			log.Errorf(err, "failed to open sqlite database %s", cfg.SqlitePath)
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		c.Add("sqlite", func(context.Context) error { return sqlite.Close(db) })
		log.Infof("using sqlite database %s", cfg.SqlitePath)

		return &storage{
			products:  sqlite.NewProductRepo(db),
			sales:     sqlite.NewSaleRepo(db),
			outbox:    sqlite.NewOutboxEventRepo(db),
			txManager: sqlite.NewTransactor(db),
			health:    pingFunc(func(ctx context.Context) error {
				return sqlite.Ping(ctx, db)
			}),
		}, nil
	default:
		return nil, e.Wrap(cfg.Driver, e.ErrUnknownDBDriver)
	}
}

func initPGDB(logger logger.Logger, cfg *config.PGDBCfg) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
