package report

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/de-tools/research-reports/pkg/metrics"
	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/rs/zerolog"
)

type Dispatcher struct {
	registry Registry
	deps     Dependencies
}

func NewDispatcher(registry Registry, deps Dependencies) *Dispatcher {
	return &Dispatcher{registry: registry, deps: deps}
}

// ResolvePrincipal marks userID as superuser when elevation was requested and the user holds the root flag.
func (d *Dispatcher) ResolvePrincipal(ctx context.Context, userID string, rootRequested bool) (domain.Principal, error) {
	principal := domain.Principal{ID: userID}
	if !rootRequested || userID == "" {
		return principal, nil
	}

	root, err := d.deps.Containers.IsRoot(ctx, userID)
	if err != nil {
		return principal, fmt.Errorf("resolve principal: %w", err)
	}
	principal.Superuser = root
	return principal, nil
}

// Dispatch validates raw for the report named by token, checks the principal may see it and builds it.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	token string,
	principal domain.Principal,
	raw url.Values,
) (any, error) {
	logger := zerolog.Ctx(ctx)

	report, err := d.registry.Create(token, d.deps, raw)
	if err != nil {
		d.record(token, err)
		return nil, err
	}

	if !principal.Superuser {
		allowed, err := report.CanGenerate(ctx, principal.ID)
		if err != nil {
			err = fmt.Errorf("check permissions: %w", err)
			d.record(token, err)
			return nil, err
		}
		if !allowed {
			err = requestError(ErrForbidden, "User %s does not have required permissions to generate report", principal.ID)
			d.record(token, err)
			return nil, err
		}
	}

	start := time.Now()
	result, err := report.Build(ctx)
	metrics.ReportBuildDuration.WithLabelValues(string(report.Type())).Observe(time.Since(start).Seconds())
	d.record(token, err)
	if err != nil {
		return nil, fmt.Errorf("build %s report: %w", report.Type(), err)
	}

	logger.Debug().
		Str("report_type", string(report.Type())).
		Str("user", principal.ID).
		Bool("superuser", principal.Superuser).
		Dur("elapsed", time.Since(start)).
		Msg("report built")
	return result, nil
}

func (d *Dispatcher) Types() []domain.ReportType {
	return d.registry.ListTypes()
}

func (d *Dispatcher) record(token string, err error) {
	label := token
	if errors.Is(err, ErrUnsupportedReportType) {
		label = "unsupported"
	}
	metrics.ReportBuildsTotal.WithLabelValues(label, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrUnsupportedReportType):
		return "unsupported"
	case errors.Is(err, ErrReportModeNotImplemented):
		return "not_implemented"
	default:
		return "error"
	}
}
