// Package platform implements app.Runner for the platform daemon process.
package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apperrors "github.com/kr8tiv/platform-core/pkg/app/errors"
	apphttp "github.com/kr8tiv/platform-core/pkg/app/http"
	"github.com/kr8tiv/platform-core/pkg/automation"
	solanaexec "github.com/kr8tiv/platform-core/pkg/chain/solana"
	"github.com/kr8tiv/platform-core/pkg/config"
	"github.com/kr8tiv/platform-core/pkg/graduation"
	"github.com/kr8tiv/platform-core/pkg/jobdb"
	"github.com/kr8tiv/platform-core/pkg/pgutil"
	"github.com/kr8tiv/platform-core/pkg/scheduler"
	stakingservice "github.com/kr8tiv/platform-core/pkg/staking/service"
	"github.com/kr8tiv/platform-core/pkg/stakingstore"
	"github.com/kr8tiv/platform-core/pkg/tier"
	tokenservice "github.com/kr8tiv/platform-core/pkg/token/service"
	"github.com/kr8tiv/platform-core/pkg/tokenstore"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 60 * time.Second

// Server holds cfg to init the platform daemon.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new platform daemon.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("platform config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting platform daemon",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	dbBun, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer dbBun.Close()
	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	jobStore, err := jobdb.NewStore(cfg.Database.GetConnectionString())
	if err != nil {
		return fmt.Errorf("connect job db: %w", err)
	}
	defer func() { _ = jobStore.Close() }()

	tokenStore := tokenstore.NewStore(dbBun)
	stakeStore := stakingstore.NewStore(dbBun)

	calc, err := s.loadTierTables()
	if err != nil {
		return err
	}

	executor, err := solanaexec.NewExecutor(solanaexec.ClientConfig{
		RPCURL:           cfg.Solana.RPCURL,
		Commitment:       cfg.Solana.Commitment,
		FeeProgramID:     cfg.Solana.FeeProgramID,
		StakingProgramID: cfg.Solana.StakingProgramID,
		TreasuryAccount:  cfg.Solana.TreasuryAccount,
		AuthorityKeyFile: cfg.Solana.AuthorityKeyFile,
		RequestTimeout:   cfg.Solana.RequestTimeout,
		SkipPreflight:    cfg.Solana.SkipPreflight,
	}, logger)
	if err != nil {
		return fmt.Errorf("create solana executor: %w", err)
	}
	logger.Info("Connected to Solana", zap.String("rpc_url", cfg.Solana.RPCURL))

	stakingSvc := stakingservice.NewService(stakeStore, calc, executor, tokenStore, logger)
	tokenSvc := tokenservice.NewService(tokenStore, logger)
	orchestrator := automation.NewOrchestrator(cfg.Automation, executor, jobStore, tokenStore, stakeStore, logger)
	checker := graduation.New(tokenStore, executor, logger)

	sched, err := s.setupScheduler(orchestrator, checker, logger)
	if err != nil {
		return fmt.Errorf("setup scheduler: %w", err)
	}
	sched.Start()
	// We will call sched.Stop explicitly after ServeAndWait returns for deterministic shutdown order.
	// Keep this defer as a safety net.
	defer sched.Stop()

	router := s.setupRouter(stakingSvc, tokenSvc, orchestrator, jobStore, sched, logger)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// Stop background work before deferred DB closes kick in.
	sched.Stop()

	return err
}

func (s *Server) loadTierTables() (*tier.Calculator, error) {
	if s.cfg.Staking.TablesPath == "" {
		return tier.Default(), nil
	}
	calc, err := tier.LoadTables(s.cfg.Staking.TablesPath)
	if err != nil {
		return nil, fmt.Errorf("load tier tables: %w", err)
	}
	return calc, nil
}

func (s *Server) setupScheduler(
	orchestrator *automation.Orchestrator,
	checker *graduation.Checker,
	logger *zap.Logger,
) (*scheduler.Scheduler, error) {
	sched := scheduler.New(logger)

	err := sched.Register("automation", s.cfg.Scheduler.AutomationSchedule, func(ctx context.Context) error {
		_, err := orchestrator.RunCycle(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = sched.Register("graduation", s.cfg.Scheduler.GraduationSchedule, func(ctx context.Context) error {
		_, err := checker.CheckAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = sched.Register("cleanup", s.cfg.Scheduler.CleanupSchedule, func(ctx context.Context) error {
		_, err := orchestrator.Cleanup(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return sched, nil
}

func (s *Server) setupRouter(
	stakingSvc stakingservice.Service,
	tokenSvc tokenservice.Service,
	orchestrator *automation.Orchestrator,
	jobStore *jobdb.Store,
	sched *scheduler.Scheduler,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		tokenservice.RegisterRoutes(r, tokenSvc, logger)
		stakingservice.RegisterRoutes(r, stakingSvc, logger)
		automation.RegisterRoutes(r, orchestrator, jobStore, logger)
	})

	// Manual firing of the scheduled jobs, mainly for operators
	r.Post("/admin/jobs/{name}/run", apphttp.HandleError(func(w http.ResponseWriter, req *http.Request) error {
		name := chi.URLParam(req, "name")
		if err := sched.RunJob(req.Context(), name); err != nil {
			if errors.Is(err, scheduler.ErrUnknownJob) {
				return apperrors.ResourceNotFoundError(err, err.Error())
			}
			return err
		}
		w.WriteHeader(http.StatusAccepted)
		return nil
	}))

	return r
}
