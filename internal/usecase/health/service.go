package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a failing component.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	// Backend names the configured document store.
	Backend string
	Checks  map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	backend string
}

// New creates a Service for the store named backend.
func New(db DBPinger, backend string) *Service {
	return &Service{db: db, backend: backend}
}

// Check pings the document store.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"database": CheckOK}
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Degraded
	}

	return Report{Status: status, Backend: s.backend, Checks: checks}
}
