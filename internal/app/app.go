package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	pb "github.com/godilite/evalreport/api/v1"
	"github.com/godilite/evalreport/internal/config"
	handler "github.com/godilite/evalreport/internal/grpc"
	"github.com/godilite/evalreport/internal/repository"
	"github.com/godilite/evalreport/internal/service"
	"github.com/godilite/evalreport/pkg/cache"
	dbbuilder "github.com/godilite/evalreport/pkg/database"
	grpcsrv "github.com/godilite/evalreport/pkg/grpc/server"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const uploadOverhead = 1 << 20

// maxRequestSize bounds a GenerateReports request carrying two uploads of at
// most uploadBytes each. Uploads travel base64-encoded in JSON.
func maxRequestSize(uploadBytes int) int {
	return 2*uploadBytes/3*4 + uploadOverhead
}

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
}

// OpenRunStore opens the run-history database and applies its schema.
func OpenRunStore(cfg *config.Config) (*sql.DB, error) {
	if cfg.DBPath != ":memory:" && !strings.Contains(cfg.DBPath, "mode=memory") {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithInitStatements(repository.Schema),
	)
}

// NewReportService wires the report service onto the run store and the
// survey layout named by the config.
func NewReportService(cfg *config.Config, dbPool *sql.DB, logger *zap.Logger) (*service.ReportService, error) {
	layout, err := config.LoadSurveyConfig(cfg.SurveyConfigPath)
	if err != nil {
		return nil, err
	}
	return service.NewReportService(repository.NewRunRepository(dbPool), layout, logger), nil
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := OpenRunStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	reportService, err := NewReportService(cfg, dbPool, logger)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("survey config: %w", err)
	}

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
		cache.WithPassword(cfg.RedisPassword),
		cache.WithDB(cfg.RedisDB),
	)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

	grpcHandlers := handler.NewGRPCHandlers(reportService, cacheClient, logger, cfg.CacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithMaxRecvMsgSize(maxRequestSize(cfg.MaxUploadBytes)),
	)
	if err != nil {
		cacheClient.Close()
		dbPool.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(pb.Reporting_ServiceName, func(s *grpc.Server) {
		pb.RegisterReportingServer(s, grpcHandlers)
	})

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		grpcServer: grpcServer,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.grpcServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Warn("gRPC shutdown incomplete", zap.Error(err))
	}

	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	a.logger.Info("graceful shutdown completed")
	_ = a.logger.Sync()
	return nil
}
