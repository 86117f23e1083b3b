package services

// ServiceContainer holds instances of all the application services.
// It is the main entry point for the handlers.
type ServiceContainer struct {
	Reporting ReportingSvcFacade
	Summary   SummarySvc
}
