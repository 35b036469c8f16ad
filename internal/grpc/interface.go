package grpc

import (
	"context"
	"time"

	"github.com/godilite/evalreport/internal/repository/models"
	"github.com/godilite/evalreport/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type ReportService interface {
	Generate(ctx context.Context, req service.Request) (*service.Result, error)
	RecentRuns(ctx context.Context, limit int) ([]models.RunSummary, error)
}
