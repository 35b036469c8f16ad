package grpc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	pb "github.com/godilite/evalreport/api/v1"
	"github.com/godilite/evalreport/internal/ingest"
	"github.com/godilite/evalreport/internal/render"
	"github.com/godilite/evalreport/internal/repository/models"
	"github.com/godilite/evalreport/internal/service"
	"github.com/godilite/evalreport/pkg/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	defaultCacheDuration = 30 * time.Minute
	defaultGRPCTimeout   = 60 * time.Second
	defaultRunsLimit     = 20
	maxRunsLimit         = 200

	cacheKeyReports = "grpc:reports"
)

var errRenderFailed = errors.New("rendering failed")

type GRPCHandlers struct {
	pb.UnimplementedReportingServer
	reports  ReportService
	cache    Cacher
	logger   *zap.Logger
	sfGroup  singleflight.Group
	cacheTTL time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(reports ReportService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if reports == nil {
		panic("nil ReportService provided to NewGRPCHandlers")
	}
	if cache == nil {
		panic("nil Cacher provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		reports:  reports,
		cache:    cache,
		logger:   logger.Named("grpc-handler"),
		cacheTTL: ttl,
	}
}

func (s *GRPCHandlers) parseAndValidate(req *pb.GenerateReportsRequest) (service.Request, error) {
	inst, mod := req.GetInstructors(), req.GetModules()
	if len(inst.GetContent()) == 0 || len(mod.GetContent()) == 0 {
		return service.Request{}, status.Error(codes.InvalidArgument, "instructor and module uploads are required")
	}
	for _, u := range []*pb.Upload{inst, mod} {
		if !ingest.Supported(u.GetFilename()) {
			return service.Request{}, status.Errorf(codes.InvalidArgument, "unsupported file %q: expected .csv or .xlsx", u.GetFilename())
		}
	}

	return service.Request{
		Instructors: service.Source{Filename: inst.GetFilename(), Content: inst.GetContent()},
		Modules:     service.Source{Filename: mod.GetFilename(), Content: mod.GetContent()},
		Year:        optionalInt(req.GetYear()),
		Module:      optionalInt(req.GetModule()),
	}, nil
}

func optionalInt(v *wrapperspb.Int32Value) *int {
	if v == nil {
		return nil
	}
	n := int(v.GetValue())
	return &n
}

func optionalBytes(v *int) []byte {
	if v == nil {
		return nil
	}
	return []byte(strconv.Itoa(*v))
}

// reportKey addresses a generation by its inputs. The transform is
// deterministic, so equal inputs always render the same archive.
func reportKey(req service.Request) string {
	return cache.Key(cacheKeyReports,
		[]byte(req.Instructors.Filename), req.Instructors.Content,
		[]byte(req.Modules.Filename), req.Modules.Content,
		optionalBytes(req.Year), optionalBytes(req.Module),
	)
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrInvalidCriteria):
		s.logger.Info("invalid criteria", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNoReports):
		s.logger.Warn("no report produced", zap.String("op", op), zap.Error(err))
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) GenerateReports(ctx context.Context, req *pb.GenerateReportsRequest) (*pb.GenerateReportsResponse, error) {
	sreq, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := reportKey(sreq)

	resp, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) (*pb.GenerateReportsResponse, error) {
		res, err := s.reports.Generate(fetchCtx, sreq)
		if err != nil {
			return nil, err
		}
		archive, err := render.ArchiveBytes(res)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errRenderFailed, err)
		}
		return toProtoResponse(res, archive), nil
	})
	if err != nil {
		return nil, s.handleError(ctx, "GenerateReports", err)
	}

	return resp, nil
}

func (s *GRPCHandlers) ListRuns(ctx context.Context, req *pb.ListRunsRequest) (*pb.ListRunsResponse, error) {
	limit := int(req.GetLimit())
	switch {
	case limit < 0:
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	case limit == 0:
		limit = defaultRunsLimit
	case limit > maxRunsLimit:
		limit = maxRunsLimit
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	runs, err := s.reports.RecentRuns(ctx, limit)
	if err != nil {
		return nil, s.handleError(ctx, "ListRuns", err)
	}

	out := make([]*pb.Run, len(runs))
	for i, r := range runs {
		out[i] = toProtoRun(r)
	}
	return &pb.ListRunsResponse{Runs: out}, nil
}

func toProtoResponse(res *service.Result, archive []byte) *pb.GenerateReportsResponse {
	resp := &pb.GenerateReportsResponse{
		RunId:   res.RunID,
		Archive: archive,
	}
	for _, w := range res.Warnings {
		resp.Warnings = append(resp.Warnings, &pb.Warning{Dataset: w.Dataset, Message: w.Message})
	}
	if res.Instructors != nil {
		resp.InstructorCount = int32(len(res.Instructors.Reports))
	}
	if res.Modules != nil {
		resp.LevelCounts = make(map[string]int32, len(res.Modules.Reports))
		for _, r := range res.Modules.Reports {
			resp.LevelCounts[r.Level] = int32(r.Records)
		}
	}
	if res.InstructorErr != nil {
		resp.InstructorError = res.InstructorErr.Error()
	}
	if res.ModuleErr != nil {
		resp.ModuleError = res.ModuleErr.Error()
	}
	return resp
}

func toProtoRun(r models.RunSummary) *pb.Run {
	run := &pb.Run{
		RunId:           r.ID,
		CreatedAt:       timestamppb.New(r.CreatedAt),
		Year:            int32(r.Year),
		Module:          int32(r.Module),
		InstructorCount: int32(r.InstructorCount),
		WarningCount:    int32(r.WarningCount),
		InstructorError: r.InstructorError,
		ModuleError:     r.ModuleError,
	}
	if len(r.LevelCounts) > 0 {
		run.LevelCounts = make(map[string]int32, len(r.LevelCounts))
		for level, n := range r.LevelCounts {
			run.LevelCounts[level] = int32(n)
		}
	}
	return run
}
