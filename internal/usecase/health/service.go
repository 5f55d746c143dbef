package health

import (
	"context"
	"fmt"
)

// Status represents the aggregated readiness status.
type Status string

const (
	// Ready indicates the service can answer recommendations.
	Ready Status = "ready"
	// NotReady indicates at least one required check failed.
	NotReady Status = "not_ready"
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
	Checks map[string]CheckResult
}

// Service coordinates readiness checks.
type Service struct {
	index      IndexPinger
	colls      CollectionDescriber
	collection string
	embedding  ProviderChecker
	generation ProviderChecker
}

// New creates a Service. embedding and generation can be nil.
func New(
	index IndexPinger, colls CollectionDescriber, collection string, embedding, generation ProviderChecker,
) *Service {
	return &Service{
		index:      index,
		colls:      colls,
		collection: collection,
		embedding:  embedding,
		generation: generation,
	}
}

// Check runs every readiness check.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["index"] = result(s.index.Ping(ctx))
	if checks["index"] == CheckOK {
		checks["collection"] = result(s.collectionExists(ctx))
	} else {
		checks["collection"] = CheckError
	}

	if s.embedding != nil {
		checks["embedding"] = result(s.embedding.HealthCheck(ctx))
	}
	if s.generation != nil {
		checks["generation"] = result(s.generation.HealthCheck(ctx))
	}

	status := Ready
	for _, v := range checks {
		if v == CheckError {
			status = NotReady
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) collectionExists(ctx context.Context) error {
	c, err := s.colls.Describe(ctx, s.collection)
	if err != nil {
		return err
	}
	if !c.Exists {
		return fmt.Errorf("collection %s does not exist", s.collection)
	}
	return nil
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
