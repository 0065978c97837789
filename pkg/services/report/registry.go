package report

import (
	"fmt"
	"net/url"
	"slices"
	"sync"

	"github.com/de-tools/research-reports/pkg/models/domain"
)

// Factory validates raw request parameters and binds them to a Report
type Factory func(deps Dependencies, raw url.Values) (Report, error)

// Registry maps report type tokens to factories
type Registry interface {
	// Register adds a new report factory
	Register(reportType domain.ReportType, factory Factory) error
	// Create validates raw and instantiates the report registered under token
	Create(token string, deps Dependencies, raw url.Values) (Report, error)
	// ListTypes returns the registered report types in lexical order
	ListTypes() []domain.ReportType
}

type registry struct {
	mu        sync.RWMutex
	factories map[domain.ReportType]Factory
}

func NewRegistry() Registry {
	return &registry{
		factories: make(map[domain.ReportType]Factory),
	}
}

// DefaultRegistry holds every built-in report type
func DefaultRegistry() Registry {
	r := NewRegistry()
	builtins := map[domain.ReportType]Factory{
		domain.ReportTypeSite:      NewSiteReport,
		domain.ReportTypeProject:   NewProjectReport,
		domain.ReportTypeAccessLog: NewAccessLogReport,
		domain.ReportTypeUsage:     NewUsageReport,
	}
	for reportType, factory := range builtins {
		if err := r.Register(reportType, factory); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *registry) Register(reportType domain.ReportType, factory Factory) error {
	if reportType == "" {
		return fmt.Errorf("report type cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[reportType]; exists {
		return fmt.Errorf("report type %q is already registered", reportType)
	}

	r.factories[reportType] = factory
	return nil
}

func (r *registry) Create(token string, deps Dependencies, raw url.Values) (Report, error) {
	r.mu.RLock()
	factory, exists := r.factories[domain.ReportType(token)]
	r.mu.RUnlock()

	if !exists {
		return nil, requestError(ErrUnsupportedReportType, "Report type %q is not supported.", token)
	}

	return factory(deps, raw)
}

func (r *registry) ListTypes() []domain.ReportType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.ReportType, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
