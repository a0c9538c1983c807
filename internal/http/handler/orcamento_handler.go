package handler

import (
	"net/http"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/service"
	"go.uber.org/zap"
)

// OrcamentoHandler serves the budget tree endpoints: centros de custo, grupos
// and itens de custo
type OrcamentoHandler struct {
	orcamentoService *service.OrcamentoService
	logger           *zap.Logger
}

func NewOrcamentoHandler(orcamentoService *service.OrcamentoService, logger *zap.Logger) *OrcamentoHandler {
	return &OrcamentoHandler{orcamentoService: orcamentoService, logger: logger}
}

// ListCentros godoc
// @Summary List centros de custo
// @Description Get the budget stages of an obra with their aggregate totals
// @Tags Orçamento
// @Produce json
// @Param id path string true "Obra ID"
// @Success 200 {array} domain.CentroCustoDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /obras/{id}/centros-custo [get]
func (h *OrcamentoHandler) ListCentros(w http.ResponseWriter, r *http.Request) {
	obraID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid obra ID")
		return
	}

	centros, err := h.orcamentoService.ListCentrosCusto(r.Context(), obraID)
	if err != nil {
		h.logger.Error("failed to list centros de custo", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, centros)
}

// CreateCentro godoc
// @Summary Create centro de custo
// @Tags Orçamento
// @Accept json
// @Produce json
// @Param centro body domain.CreateCentroCustoRequest true "Centro de custo data"
// @Success 201 {object} domain.MutationResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /centros-custo [post]
func (h *OrcamentoHandler) CreateCentro(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCentroCustoRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	centro, err := h.orcamentoService.CreateCentroCusto(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.MutationResponse{
		Data:     centro,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Centro de custo criado", "Centro de custo criado com sucesso"),
	})
}

// GetCentro godoc
// @Summary Get centro de custo
// @Description Get a budget stage with its grupos and itens
// @Tags Orçamento
// @Produce json
// @Param id path string true "Centro de custo ID"
// @Success 200 {object} domain.CentroCustoDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /centros-custo/{id} [get]
func (h *OrcamentoHandler) GetCentro(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid centro de custo ID")
		return
	}

	centro, err := h.orcamentoService.GetCentroCusto(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, centro)
}

// UpdateCentro godoc
// @Summary Update centro de custo
// @Tags Orçamento
// @Accept json
// @Produce json
// @Param id path string true "Centro de custo ID"
// @Param centro body domain.UpdateCentroCustoRequest true "Centro de custo data"
// @Success 200 {object} domain.MutationResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /centros-custo/{id} [put]
func (h *OrcamentoHandler) UpdateCentro(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid centro de custo ID")
		return
	}

	var req domain.UpdateCentroCustoRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	centro, err := h.orcamentoService.UpdateCentroCusto(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Data:     centro,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Centro de custo atualizado", "Centro de custo atualizado com sucesso"),
	})
}

// DeleteCentro godoc
// @Summary Delete centro de custo
// @Tags Orçamento
// @Produce json
// @Param id path string true "Centro de custo ID"
// @Success 200 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /centros-custo/{id} [delete]
func (h *OrcamentoHandler) DeleteCentro(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid centro de custo ID")
		return
	}

	if err := h.orcamentoService.DeleteCentroCusto(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Centro de custo removido", "Centro de custo removido com sucesso"),
	})
}

// CreateGrupo godoc
// @Summary Create grupo
// @Tags Orçamento
// @Accept json
// @Produce json
// @Param id path string true "Centro de custo ID"
// @Param grupo body domain.CreateGrupoRequest true "Grupo data"
// @Success 201 {object} domain.MutationResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /centros-custo/{id}/grupos [post]
func (h *OrcamentoHandler) CreateGrupo(w http.ResponseWriter, r *http.Request) {
	centroID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid centro de custo ID")
		return
	}

	var req domain.CreateGrupoRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	grupo, err := h.orcamentoService.CreateGrupo(r.Context(), centroID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.MutationResponse{
		Data:     grupo,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Grupo criado", "Grupo criado com sucesso"),
	})
}

// GetGrupo godoc
// @Summary Get grupo
// @Tags Orçamento
// @Produce json
// @Param id path string true "Grupo ID"
// @Success 200 {object} domain.GrupoDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /grupos/{id} [get]
func (h *OrcamentoHandler) GetGrupo(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid grupo ID")
		return
	}

	grupo, err := h.orcamentoService.GetGrupo(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, grupo)
}

// UpdateGrupo godoc
// @Summary Update grupo
// @Tags Orçamento
// @Accept json
// @Produce json
// @Param id path string true "Grupo ID"
// @Param grupo body domain.UpdateGrupoRequest true "Grupo data"
// @Success 200 {object} domain.MutationResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /grupos/{id} [put]
func (h *OrcamentoHandler) UpdateGrupo(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid grupo ID")
		return
	}

	var req domain.UpdateGrupoRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	grupo, err := h.orcamentoService.UpdateGrupo(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Data:     grupo,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Grupo atualizado", "Grupo atualizado com sucesso"),
	})
}

// DeleteGrupo godoc
// @Summary Delete grupo
// @Tags Orçamento
// @Produce json
// @Param id path string true "Grupo ID"
// @Success 200 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /grupos/{id} [delete]
func (h *OrcamentoHandler) DeleteGrupo(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid grupo ID")
		return
	}

	if err := h.orcamentoService.DeleteGrupo(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Grupo removido", "Grupo removido com sucesso"),
	})
}

// CreateItem godoc
// @Summary Create item de custo
// @Tags Orçamento
// @Accept json
// @Produce json
// @Param id path string true "Grupo ID"
// @Param item body domain.CreateItemCustoRequest true "Item data"
// @Success 201 {object} domain.MutationResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /grupos/{id}/itens [post]
func (h *OrcamentoHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	grupoID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid grupo ID")
		return
	}

	var req domain.CreateItemCustoRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.orcamentoService.CreateItemCusto(r.Context(), grupoID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.MutationResponse{
		Data:     item,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Item criado", "Item de custo criado com sucesso"),
	})
}

// ListItensByObra godoc
// @Summary List itens de custo of an obra
// @Description Flat list of budget items across the obra's centros de custo. Use disponiveis=true to list only items still open for new commitments.
// @Tags Orçamento
// @Produce json
// @Param id path string true "Obra ID"
// @Param disponiveis query bool false "Only items under 100% realization"
// @Success 200 {array} domain.ItemCustoDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /obras/{id}/itens-custo [get]
func (h *OrcamentoHandler) ListItensByObra(w http.ResponseWriter, r *http.Request) {
	obraID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid obra ID")
		return
	}

	apenasDisponiveis := r.URL.Query().Get("disponiveis") == "true"
	itens, err := h.orcamentoService.ListItensByObra(r.Context(), obraID, apenasDisponiveis)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, itens)
}

// GetItem godoc
// @Summary Get item de custo
// @Tags Orçamento
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} domain.ItemCustoDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /itens-custo/{id} [get]
func (h *OrcamentoHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.orcamentoService.GetItemCusto(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// UpdateItem godoc
// @Summary Update item de custo
// @Description Updates a budget item. The contracted quantity cannot drop below the quantity already realized by approved documents.
// @Tags Orçamento
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param item body domain.UpdateItemCustoRequest true "Item data"
// @Success 200 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /itens-custo/{id} [put]
func (h *OrcamentoHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req domain.UpdateItemCustoRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.orcamentoService.UpdateItemCusto(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Data:     item,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Item atualizado", "Item de custo atualizado com sucesso"),
	})
}

// DeleteItem godoc
// @Summary Delete item de custo
// @Tags Orçamento
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /itens-custo/{id} [delete]
func (h *OrcamentoHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	if err := h.orcamentoService.DeleteItemCusto(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Item removido", "Item de custo removido com sucesso"),
	})
}

// Refresh godoc
// @Summary Recompute budget aggregates
// @Description Rebuild every grupo and centro de custo total from the underlying itens
// @Tags Orçamento
// @Produce json
// @Success 200 {object} domain.MutationResponse
// @Security BearerAuth
// @Router /orcamento/refresh [post]
func (h *OrcamentoHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.orcamentoService.RefreshAll(r.Context()); err != nil {
		h.logger.Error("failed to refresh budget totals", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Totais recalculados", "Totais do orçamento recalculados com sucesso"),
	})
}
