package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"chamber/internal/access"
	accesshandler "chamber/internal/access/handler"
	"chamber/internal/audit"
	audithandler "chamber/internal/audit/handler"
	auditmemory "chamber/internal/audit/store/memory"
	auditpostgres "chamber/internal/audit/store/postgres"
	"chamber/internal/audit/worker"
	"chamber/internal/communication"
	commmemory "chamber/internal/communication/store/memory"
	commpostgres "chamber/internal/communication/store/postgres"
	"chamber/internal/conflict"
	"chamber/internal/firm"
	firmhandler "chamber/internal/firm/handler"
	firmmemory "chamber/internal/firm/store/memory"
	firmpostgres "chamber/internal/firm/store/postgres"
	"chamber/internal/jwttoken"
	"chamber/internal/platform/config"
	"chamber/internal/platform/httpserver"
	"chamber/internal/platform/logger"
	"chamber/internal/platform/metrics"
	platformredis "chamber/internal/platform/redis"
	"chamber/internal/privilege"
	"chamber/internal/relationship"
	relationshiphandler "chamber/internal/relationship/handler"
	relmemory "chamber/internal/relationship/store/memory"
	relpostgres "chamber/internal/relationship/store/postgres"
	"chamber/internal/session"
	sessionhandler "chamber/internal/session/handler"
	sessionmemory "chamber/internal/session/store/memory"
	sessionredis "chamber/internal/session/store/redis"
	httptransport "chamber/internal/transport/http"
)

const (
	auditInboxSize       = 1024
	sessionSweepInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	var cipher *privilege.Cipher
	if len(cfg.PrivilegeKey) > 0 {
		cipher, err = privilege.NewCipher(cfg.PrivilegeKey)
	} else {
		// Load already refused a missing key outside dev mode.
		cipher, err = privilege.NewEphemeralCipher(log)
	}
	if err != nil {
		log.Error("failed to initialize privilege cipher", "error", err)
		os.Exit(1)
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = db.PingContext(pingCtx)
			cancel()
		}
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		log.Warn("no database configured, using in-memory stores")
	}

	redisCtx, cancelRedis := context.WithTimeout(context.Background(), 5*time.Second)
	redisClient, err := platformredis.New(redisCtx, cfg.Redis)
	cancelRedis()
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var auditStore audit.Store = auditmemory.NewInMemoryStore()
	if db != nil {
		auditStore = auditpostgres.New(db)
	}
	inbox := make(chan audit.Event, auditInboxSize)
	publisher := audit.NewPublisher(auditStore, log,
		audit.WithMetrics(m),
		audit.WithAsyncInbox(inbox),
	)
	auditWorker := worker.NewWorker(auditStore, inbox, log)
	auditService := audit.NewService(auditStore)

	var sessionStore session.Store = sessionmemory.NewStore()
	if redisClient != nil {
		sessionStore = sessionredis.NewStore(redisClient.Client)
	}
	sessions := session.NewService(sessionStore, publisher, m, log, cfg.SessionTTL)

	var (
		attorneys firm.AttorneyStore   = firmmemory.NewAttorneyStore()
		clients   firm.ClientStore     = firmmemory.NewClientStore()
		relStore  relationship.Store   = relmemory.NewStore()
		relTx     relationship.StoreTx = relationship.NewShardedTx()
		commStore communication.Store  = commmemory.NewStore()
	)
	if db != nil {
		attorneys = firmpostgres.NewAttorneyStore(db)
		clients = firmpostgres.NewClientStore(db)
		relStore = relpostgres.New(db)
		relTx = newRelationshipPostgresTx(db)
		commStore = commpostgres.New(db)
	}

	screener := conflict.NewScreener(
		relationship.NewEngagementSource(relStore, clients),
		clients,
		publisher,
		m,
		log,
	)
	relationships := relationship.NewService(relStore, relTx, screener, publisher, log)
	gate := access.NewGate(sessions, relationships, cipher, commStore, publisher, m, log, cfg.RetentionYears)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "chamber", "chamber")

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        m,
		Cipher:         cipher,
		JWTValidator:   jwtService,
		ServiceKeyHash: cfg.ServiceKeyHash,
		Auditor:        publisher,
		Sessions:       sessionhandler.New(sessions, log),
		Relationships:  relationshiphandler.New(relationships, log),
		Access:         accesshandler.New(gate, log),
		Audit:          audithandler.New(auditService, log),
		Firm:           firmhandler.New(attorneys, clients, log),
		DB:             db,
		Redis:          redisClient,
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting chamber", "addr", cfg.Addr, "dev_mode", cfg.DevMode)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return auditWorker.Run(gctx)
	})
	g.Go(func() error {
		return sessions.RunSweeper(gctx, sessionSweepInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("chamber stopped")
}
