package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/de-tools/maritime-atlas/pkg/adapters"
	"github.com/de-tools/maritime-atlas/pkg/exporters"
	"github.com/de-tools/maritime-atlas/pkg/services/filter"
	"github.com/de-tools/maritime-atlas/pkg/services/render"
	reportsvc "github.com/de-tools/maritime-atlas/pkg/services/report"
	"github.com/rs/zerolog"
)

type Handler struct {
	assembler reportsvc.Assembler
	document  *exporters.Document
}

func NewHandler(assembler reportsvc.Assembler) *Handler {
	return &Handler{
		assembler: assembler,
		document:  exporters.NewDocument(),
	}
}

// GetReport serves the live view: aggregated sections and chart URLs as JSON.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	params := filter.ParamsFromValues(r.URL.Query())

	dataset, err := h.assembler.Live(ctx, params)
	if err != nil {
		logger.Error().Err(err).Msg("failed to assemble live report")
		http.Error(w, "report could not be generated", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(adapters.MapReportDomainToApi(dataset))
	if err != nil {
		logger.Error().
			Err(err).
			Str("summary", dataset.Summary).
			Msg("failed to encode report")
	}
}

// ExportReport serves the rendered report as an HTML attachment.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	params := filter.ParamsFromValues(r.URL.Query())

	dataset, err := h.assembler.Export(ctx, params)
	if err != nil {
		var batchErr *render.BatchError
		if errors.As(err, &batchErr) {
			logger.Error().Err(err).Int("failed", len(batchErr.Failed)).Msg("chart rendering failed")
			http.Error(w, "chart rendering failed, please retry later", http.StatusBadGateway)
			return
		}
		logger.Error().Err(err).Msg("failed to assemble report export")
		http.Error(w, "report could not be generated", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.document.Render(&buf, dataset); err != nil {
		logger.Error().Err(err).Msg("failed to render report document")
		http.Error(w, "report could not be generated", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", exporters.DocumentContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporters.FileName(dataset.Summary)))
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error().Err(err).Msg("failed to write report document")
	}
}
