package handler

import (
	"net/http"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/service"
	"go.uber.org/zap"
)

type ObraHandler struct {
	obraService *service.ObraService
	logger      *zap.Logger
}

func NewObraHandler(obraService *service.ObraService, logger *zap.Logger) *ObraHandler {
	return &ObraHandler{obraService: obraService, logger: logger}
}

// List godoc
// @Summary List obras
// @Description Get all construction projects
// @Tags Obras
// @Produce json
// @Success 200 {array} domain.ObraDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /obras [get]
func (h *ObraHandler) List(w http.ResponseWriter, r *http.Request) {
	obras, err := h.obraService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list obras", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, obras)
}

// Get godoc
// @Summary Get obra
// @Tags Obras
// @Produce json
// @Param id path string true "Obra ID"
// @Success 200 {object} domain.ObraDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /obras/{id} [get]
func (h *ObraHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid obra ID")
		return
	}

	obra, err := h.obraService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, obra)
}

// Create godoc
// @Summary Create obra
// @Tags Obras
// @Accept json
// @Produce json
// @Param obra body domain.CreateObraRequest true "Obra data"
// @Success 201 {object} domain.MutationResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /obras [post]
func (h *ObraHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateObraRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	obra, err := h.obraService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create obra", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.MutationResponse{
		Data:     obra,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Obra criada", "Obra criada com sucesso"),
	})
}

// Update godoc
// @Summary Update obra
// @Tags Obras
// @Accept json
// @Produce json
// @Param id path string true "Obra ID"
// @Param obra body domain.UpdateObraRequest true "Obra data"
// @Success 200 {object} domain.MutationResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /obras/{id} [put]
func (h *ObraHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid obra ID")
		return
	}

	var req domain.UpdateObraRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	obra, err := h.obraService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Data:     obra,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Obra atualizada", "Obra atualizada com sucesso"),
	})
}

// Delete godoc
// @Summary Delete obra
// @Tags Obras
// @Produce json
// @Param id path string true "Obra ID"
// @Success 200 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /obras/{id} [delete]
func (h *ObraHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid obra ID")
		return
	}

	if err := h.obraService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Obra removida", "Obra removida com sucesso"),
	})
}
