package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sinuca-magalhaes/caixa/internal/auth"
	"github.com/sinuca-magalhaes/caixa/internal/service"
)

// ReportHandler serves PDF statements.
type ReportHandler struct {
	reportService *service.ReportService
	logger        zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger.With().Str("handler", "report").Logger(),
	}
}

// Get handles GET /report?date_from&date_to.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUser(r.Context())
	if err != nil {
		writeError(w, mapError(err))
		return
	}

	period, err := periodFromQuery(r)
	if err != nil {
		handleError(w, h.logger, err, "invalid period")
		return
	}

	out, err := h.reportService.Generate(r.Context(), user, period)
	if err != nil {
		handleError(w, h.logger, err, "report generation failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Document.Bytes)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Document.Bytes); err != nil {
		h.logger.Debug().Err(err).Msg("failed to write report body")
	}
}
