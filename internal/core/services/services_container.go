package services

import (
	portsrepo "github.com/SscSPs/finanalysis/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finanalysis/internal/core/ports/services"
	"github.com/SscSPs/finanalysis/internal/core/statement"
	"github.com/SscSPs/finanalysis/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, kw statement.Keywords, generator portssvc.SummaryGenerator) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Reporting = NewReportingService(
		repos.SessionRepo,
		WithKeywords(kw),
		WithImmaterialThreshold(cfg.ImmaterialThreshold),
		WithSessionTTL(cfg.SessionTTL),
	)
	container.Summary = NewSummaryService(container.Reporting, generator, cfg.SummaryTimeout)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.ReportingSvcFacade = (*reportingService)(nil)
	_ portssvc.SummarySvc         = (*summaryService)(nil)
)
