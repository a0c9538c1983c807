package handler

import (
	"net/http"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/service"
	"go.uber.org/zap"
)

type FornecedorHandler struct {
	fornecedorService *service.FornecedorService
	logger            *zap.Logger
}

func NewFornecedorHandler(fornecedorService *service.FornecedorService, logger *zap.Logger) *FornecedorHandler {
	return &FornecedorHandler{fornecedorService: fornecedorService, logger: logger}
}

// List godoc
// @Summary List fornecedores
// @Description Get suppliers with optional name or CNPJ search
// @Tags Fornecedores
// @Produce json
// @Param search query string false "Search by razão social, nome fantasia or CNPJ"
// @Success 200 {array} domain.FornecedorDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /fornecedores [get]
func (h *FornecedorHandler) List(w http.ResponseWriter, r *http.Request) {
	fornecedores, err := h.fornecedorService.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("failed to list fornecedores", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fornecedores)
}

// Get godoc
// @Summary Get fornecedor
// @Tags Fornecedores
// @Produce json
// @Param id path string true "Fornecedor ID"
// @Success 200 {object} domain.FornecedorDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /fornecedores/{id} [get]
func (h *FornecedorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid fornecedor ID")
		return
	}

	fornecedor, err := h.fornecedorService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fornecedor)
}

// Create godoc
// @Summary Create fornecedor
// @Tags Fornecedores
// @Accept json
// @Produce json
// @Param fornecedor body domain.CreateFornecedorRequest true "Fornecedor data"
// @Success 201 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /fornecedores [post]
func (h *FornecedorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFornecedorRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	fornecedor, err := h.fornecedorService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create fornecedor", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.MutationResponse{
		Data:     fornecedor,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Fornecedor criado", "Fornecedor criado com sucesso"),
	})
}

// Update godoc
// @Summary Update fornecedor
// @Tags Fornecedores
// @Accept json
// @Produce json
// @Param id path string true "Fornecedor ID"
// @Param fornecedor body domain.UpdateFornecedorRequest true "Fornecedor data"
// @Success 200 {object} domain.MutationResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /fornecedores/{id} [put]
func (h *FornecedorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid fornecedor ID")
		return
	}

	var req domain.UpdateFornecedorRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	fornecedor, err := h.fornecedorService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Data:     fornecedor,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Fornecedor atualizado", "Fornecedor atualizado com sucesso"),
	})
}

// Delete godoc
// @Summary Delete fornecedor
// @Tags Fornecedores
// @Produce json
// @Param id path string true "Fornecedor ID"
// @Success 200 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /fornecedores/{id} [delete]
func (h *FornecedorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid fornecedor ID")
		return
	}

	if err := h.fornecedorService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Fornecedor removido", "Fornecedor removido com sucesso"),
	})
}
