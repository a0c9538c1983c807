package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/excel"
	"github.com/construtivo/construtivo-api/internal/service"
	"go.uber.org/zap"
)

type FinanceiroHandler struct {
	financeiroService *service.FinanceiroService
	excelGenerator    *excel.Generator
	logger            *zap.Logger
}

func NewFinanceiroHandler(financeiroService *service.FinanceiroService, excelGenerator *excel.Generator, logger *zap.Logger) *FinanceiroHandler {
	return &FinanceiroHandler{
		financeiroService: financeiroService,
		excelGenerator:    excelGenerator,
		logger:            logger,
	}
}

func parseDateQuery(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// Contas godoc
// @Summary Accounts payable summary
// @Description Parcelas of approved pedidos de compra and medições, merged and ordered by due date, with pending and paid totals
// @Tags Financeiro
// @Produce json
// @Param de query string false "Start date (YYYY-MM-DD)"
// @Param ate query string false "End date (YYYY-MM-DD)"
// @Param status query string false "Filter by status (pendente, pago)"
// @Success 200 {object} domain.FinanceiroResumoDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /financeiro/contas [get]
func (h *FinanceiroHandler) Contas(w http.ResponseWriter, r *http.Request) {
	de, err := parseDateQuery(r, "de")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid 'de' date, expected YYYY-MM-DD")
		return
	}
	ate, err := parseDateQuery(r, "ate")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid 'ate' date, expected YYYY-MM-DD")
		return
	}
	status := domain.ParcelaStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status, expected 'pendente' or 'pago'")
		return
	}

	resumo, err := h.financeiroService.Resumo(r.Context(), de, ate, status)
	if err != nil {
		h.logger.Error("failed to build financial summary", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resumo)
}

// PagarParcela godoc
// @Summary Mark parcela as paid
// @Tags Financeiro
// @Produce json
// @Param origem path string true "Parcela origin (pedido_compra or medicao)"
// @Param id path string true "Parcela ID"
// @Success 200 {object} domain.MutationResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /financeiro/parcelas/{origem}/{id}/pagar [post]
func (h *FinanceiroHandler) PagarParcela(w http.ResponseWriter, r *http.Request) {
	origem := chi.URLParam(r, "origem")
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid parcela ID")
		return
	}

	feedback, err := h.financeiroService.PagarParcela(r.Context(), origem, id)
	if err != nil {
		h.logger.Error("failed to pay parcela",
			zap.String("origem", origem),
			zap.String("parcela_id", id.String()),
			zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{Feedback: feedback})
}

// Export godoc
// @Summary Export accounts to Excel
// @Tags Financeiro
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param de query string false "Start date (YYYY-MM-DD)"
// @Param ate query string false "End date (YYYY-MM-DD)"
// @Param status query string false "Filter by status (pendente, pago)"
// @Success 200 {file} binary
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /financeiro/export [get]
func (h *FinanceiroHandler) Export(w http.ResponseWriter, r *http.Request) {
	de, err := parseDateQuery(r, "de")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid 'de' date, expected YYYY-MM-DD")
		return
	}
	ate, err := parseDateQuery(r, "ate")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid 'ate' date, expected YYYY-MM-DD")
		return
	}
	status := domain.ParcelaStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status, expected 'pendente' or 'pago'")
		return
	}

	resumo, err := h.financeiroService.Resumo(r.Context(), de, ate, status)
	if err != nil {
		h.logger.Error("failed to build financial summary", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	content, err := h.excelGenerator.Generate(*resumo)
	if err != nil {
		h.logger.Error("failed to generate Excel export", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Erro ao gerar planilha")
		return
	}

	filename := fmt.Sprintf("financeiro-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
