package http

import (
	"context"

	"leadlens/internal/dataprocessing"
	"leadlens/internal/services"
	"leadlens/pkg/contracts/domain"
)

// AnalysisServiceInterface defines the analyses the API exposes
type AnalysisServiceInterface interface {
	Load(ctx context.Context) (*dataprocessing.Dataset, error)
	Profile(ctx context.Context, ds *dataprocessing.Dataset) (*domain.Profile, error)
	Aggregate(ctx context.Context, ds *dataprocessing.Dataset, column string, subset domain.Subset, top int) (*domain.Aggregate, error)
	Analyze(ctx context.Context, ds *dataprocessing.Dataset) (*services.AnalyzeResult, error)
	Active(ctx context.Context, ds *dataprocessing.Dataset, opts services.Options) (*services.ActiveResult, error)
	Bounced(ctx context.Context, ds *dataprocessing.Dataset, opts services.Options) (*services.BouncedResult, error)
	Roles(ctx context.Context, ds *dataprocessing.Dataset) (*services.RolesResult, error)
	Regions(ctx context.Context, ds *dataprocessing.Dataset, labels ...string) (*services.RegionsResult, error)
	Deck(ctx context.Context, ds *dataprocessing.Dataset) (*services.DeckResult, error)
	All(ctx context.Context, ds *dataprocessing.Dataset, opts services.Options) (*services.RunResult, error)
}

// ReportServiceInterface defines the report catalogue the API exposes
type ReportServiceInterface interface {
	List(ctx context.Context) ([]services.ReportFile, error)
	Resolve(ctx context.Context, name string) (string, error)
}

// HealthServiceInterface defines the probes the API exposes
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	Version() services.VersionInfo
}
