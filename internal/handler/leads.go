package handler

import (
	"net/http"

	"github.com/DeepakChander/leadmaster-ai-web/internal/export"
	"github.com/DeepakChander/leadmaster-ai-web/internal/ingest"
	"github.com/DeepakChander/leadmaster-ai-web/internal/model"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/logger"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/metrics"
)

// LeadHandler handles lead listing and export endpoints.
type LeadHandler struct {
	ingest *ingest.Manager
	logger *logger.Logger
}

// NewLeadHandler creates a new lead handler.
func NewLeadHandler(ing *ingest.Manager, log *logger.Logger) *LeadHandler {
	return &LeadHandler{
		ingest: ing,
		logger: log,
	}
}

// List handles GET /api/v1/leads
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads := h.ingest.Leads()
	writeJSON(w, http.StatusOK, &model.ListLeadsResponse{
		Leads: leads,
		Total: len(leads),
	})
}

// Export handles GET /api/v1/leads/export?format=csv|tsv
//
// CSV is served as a file download. TSV is served as pasteable text for the
// clipboard with the spreadsheet creation URL in X-Sheet-URL; the header is
// set unconditionally so the open-sheet step stays independent of whatever
// the client does with the body.
func (h *LeadHandler) Export(w http.ResponseWriter, r *http.Request) {
	leads := h.ingest.Leads()

	format := r.URL.Query().Get("format")
	switch format {
	case "", "csv":
		metrics.ExportsTotal.WithLabelValues("csv").Inc()
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
		w.WriteHeader(http.StatusOK)
		w.Write(export.ToCSV(leads))
	case "tsv":
		metrics.ExportsTotal.WithLabelValues("tsv").Inc()
		w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
		w.Header().Set("X-Sheet-URL", export.SheetURL)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(export.ToTSV(leads)))
	default:
		writeError(w, http.StatusBadRequest, "unsupported export format")
	}
}
