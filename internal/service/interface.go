package service

import (
	"context"

	"github.com/godilite/evalreport/internal/repository/models"
)

// RunRepository defines the storage operations the report service needs.
type RunRepository interface {
	SaveRun(ctx context.Context, run models.RunSummary) error
	ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error)
}
