package report

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/de-tools/research-reports/pkg/adapters"
	"github.com/de-tools/research-reports/pkg/models/api"
	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/de-tools/research-reports/pkg/server/middleware"
	"github.com/de-tools/research-reports/pkg/services/report"
	"github.com/de-tools/research-reports/pkg/store/mongodb"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, token string, principal domain.Principal, raw url.Values) (any, error)
	Types() []domain.ReportType
}

type Handler struct {
	dispatcher Dispatcher
}

func NewHandler(dispatcher Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

func (h *Handler) ListReportTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, adapters.MapDomainReportTypesToAPI(h.dispatcher.Types()))
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	reportType := chi.URLParam(r, "type")

	principal, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		writeJSON(ctx, w, http.StatusUnauthorized, api.Error{Status: http.StatusUnauthorized, Message: "missing user identity"})
		return
	}

	result, err := h.dispatcher.Dispatch(ctx, reportType, principal, r.URL.Query())
	if err != nil {
		status, message := describeError(err)
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Err(err).
			Str("report_type", reportType).
			Int("status", status).
			Msg("report request failed")
		writeJSON(ctx, w, status, api.Error{Status: status, Message: message})
		return
	}

	response, err := adapters.MapDomainReportToAPI(result)
	if err != nil {
		logger.Error().Err(err).Str("report_type", reportType).Msg("failed to map report")
		writeJSON(ctx, w, http.StatusInternalServerError, api.Error{Status: http.StatusInternalServerError, Message: "internal error"})
		return
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

// describeError maps report failures to a status and a client-safe message.
func describeError(err error) (int, string) {
	var paramErr *report.ParamError
	switch {
	case errors.As(err, &paramErr):
		return http.StatusBadRequest, paramErr.Message
	case errors.Is(err, report.ErrInvalidParameter):
		return http.StatusBadRequest, requestMessage(err, "invalid report parameter")
	case errors.Is(err, report.ErrForbidden):
		return http.StatusForbidden, requestMessage(err, "forbidden")
	case errors.Is(err, report.ErrUnsupportedReportType), errors.Is(err, report.ErrReportModeNotImplemented):
		return http.StatusNotImplemented, requestMessage(err, "not implemented")
	case mongodb.IsUnavailable(err):
		return http.StatusServiceUnavailable, "store unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// requestMessage returns the client-facing message carried by err, or fallback.
func requestMessage(err error, fallback string) string {
	var reqErr *report.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	return fallback
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
