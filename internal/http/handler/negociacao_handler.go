package handler

import (
	"net/http"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/service"
	"go.uber.org/zap"
)

type NegociacaoHandler struct {
	negociacaoService *service.NegociacaoService
	medicaoService    *service.MedicaoService
	logger            *zap.Logger
}

func NewNegociacaoHandler(negociacaoService *service.NegociacaoService, medicaoService *service.MedicaoService, logger *zap.Logger) *NegociacaoHandler {
	return &NegociacaoHandler{
		negociacaoService: negociacaoService,
		medicaoService:    medicaoService,
		logger:            logger,
	}
}

// List godoc
// @Summary List negociações
// @Tags Negociações
// @Produce json
// @Param obraId query string false "Filter by obra"
// @Param fornecedorId query string false "Filter by fornecedor"
// @Success 200 {array} domain.NegociacaoDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /negociacoes [get]
func (h *NegociacaoHandler) List(w http.ResponseWriter, r *http.Request) {
	obraID, err := parseUUIDQuery(r, "obraId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid obra ID")
		return
	}
	fornecedorID, err := parseUUIDQuery(r, "fornecedorId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid fornecedor ID")
		return
	}

	negociacoes, err := h.negociacaoService.List(r.Context(), obraID, fornecedorID)
	if err != nil {
		h.logger.Error("failed to list negociações", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, negociacoes)
}

// Get godoc
// @Summary Get negociação
// @Tags Negociações
// @Produce json
// @Param id path string true "Negociação ID"
// @Success 200 {object} domain.NegociacaoDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /negociacoes/{id} [get]
func (h *NegociacaoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid negociação ID")
		return
	}

	negociacao, err := h.negociacaoService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, negociacao)
}

// Create godoc
// @Summary Create negociação
// @Tags Negociações
// @Accept json
// @Produce json
// @Param negociacao body domain.CreateNegociacaoRequest true "Negociação data"
// @Success 201 {object} domain.MutationResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /negociacoes [post]
func (h *NegociacaoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNegociacaoRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	negociacao, err := h.negociacaoService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create negociação", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.MutationResponse{
		Data:     negociacao,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Negociação criada", "Negociação criada com sucesso"),
	})
}

// Update godoc
// @Summary Update negociação
// @Description Replaces the negotiation's data. Contracted quantities cannot drop below the measured totals of approved medições.
// @Tags Negociações
// @Accept json
// @Produce json
// @Param id path string true "Negociação ID"
// @Param negociacao body domain.UpdateNegociacaoRequest true "Negociação data"
// @Success 200 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /negociacoes/{id} [put]
func (h *NegociacaoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid negociação ID")
		return
	}

	var req domain.UpdateNegociacaoRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	negociacao, err := h.negociacaoService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Data:     negociacao,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Negociação atualizada", "Negociação atualizada com sucesso"),
	})
}

// Delete godoc
// @Summary Delete negociação
// @Tags Negociações
// @Produce json
// @Param id path string true "Negociação ID"
// @Success 200 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /negociacoes/{id} [delete]
func (h *NegociacaoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid negociação ID")
		return
	}

	if err := h.negociacaoService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Negociação removida", "Negociação removida com sucesso"),
	})
}

// Report godoc
// @Summary Contract execution report
// @Description Measurement history with the execution percentage accumulated across approved medições in chronological order
// @Tags Negociações
// @Produce json
// @Param id path string true "Negociação ID"
// @Success 200 {object} domain.NegociacaoReportDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /negociacoes/{id}/relatorio [get]
func (h *NegociacaoHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid negociação ID")
		return
	}

	report, err := h.negociacaoService.Report(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ListMedicoes godoc
// @Summary List medições of a negociação
// @Tags Negociações
// @Produce json
// @Param id path string true "Negociação ID"
// @Success 200 {array} domain.MedicaoDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /negociacoes/{id}/medicoes [get]
func (h *NegociacaoHandler) ListMedicoes(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid negociação ID")
		return
	}

	medicoes, err := h.medicaoService.ListByNegociacao(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicoes)
}
