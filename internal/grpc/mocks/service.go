package mocks

import (
	"context"
	"errors"

	"github.com/godilite/evalreport/internal/repository/models"
	"github.com/godilite/evalreport/internal/service"
)

// MockReportService is a function-based mock of the handler's ReportService.
type MockReportService struct {
	GenerateFunc   func(ctx context.Context, req service.Request) (*service.Result, error)
	RecentRunsFunc func(ctx context.Context, limit int) ([]models.RunSummary, error)
}

func (m *MockReportService) Generate(ctx context.Context, req service.Request) (*service.Result, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return nil, errors.New("GenerateFunc not implemented")
}

func (m *MockReportService) RecentRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	if m.RecentRunsFunc != nil {
		return m.RecentRunsFunc(ctx, limit)
	}
	return nil, errors.New("RecentRunsFunc not implemented")
}
