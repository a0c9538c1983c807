package handler

import (
	"fmt"
	"net/http"

	"github.com/construtivo/construtivo-api/internal/auth"
	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/pdf"
	"github.com/construtivo/construtivo-api/internal/service"
	"go.uber.org/zap"
)

type PedidoHandler struct {
	pedidoService *service.PedidoService
	pdfGenerator  *pdf.Generator
	logger        *zap.Logger
}

func NewPedidoHandler(pedidoService *service.PedidoService, pdfGenerator *pdf.Generator, logger *zap.Logger) *PedidoHandler {
	return &PedidoHandler{
		pedidoService: pedidoService,
		pdfGenerator:  pdfGenerator,
		logger:        logger,
	}
}

// List godoc
// @Summary List pedidos de compra
// @Tags Pedidos
// @Produce json
// @Param obraId query string false "Filter by obra"
// @Param fornecedorId query string false "Filter by fornecedor"
// @Param status query string false "Filter by status" Enums(pendente, aprovado)
// @Success 200 {array} domain.PedidoCompraDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /pedidos [get]
func (h *PedidoHandler) List(w http.ResponseWriter, r *http.Request) {
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

	pedidos, err := h.pedidoService.List(r.Context(), obraID, fornecedorID, domain.Status(r.URL.Query().Get("status")))
	if err != nil {
		h.logger.Error("failed to list pedidos", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pedidos)
}

// Get godoc
// @Summary Get pedido de compra
// @Tags Pedidos
// @Produce json
// @Param id path string true "Pedido ID"
// @Success 200 {object} domain.PedidoCompraDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /pedidos/{id} [get]
func (h *PedidoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid pedido ID")
		return
	}

	pedido, err := h.pedidoService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pedido)
}

// Create godoc
// @Summary Create pedido de compra
// @Description Creates a purchase order in pendente status. Nothing is committed against the budget until approval.
// @Tags Pedidos
// @Accept json
// @Produce json
// @Param pedido body domain.CreatePedidoCompraRequest true "Pedido data"
// @Success 201 {object} domain.MutationResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /pedidos [post]
func (h *PedidoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePedidoCompraRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	pedido, err := h.pedidoService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create pedido", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.MutationResponse{
		Data:     pedido,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Pedido criado", fmt.Sprintf("Pedido %s criado com sucesso", pedido.Numero)),
	})
}

// Update godoc
// @Summary Update pedido de compra
// @Description Replaces a pending pedido's data. Approved pedidos are immutable.
// @Tags Pedidos
// @Accept json
// @Produce json
// @Param id path string true "Pedido ID"
// @Param pedido body domain.UpdatePedidoCompraRequest true "Pedido data"
// @Success 200 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /pedidos/{id} [put]
func (h *PedidoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid pedido ID")
		return
	}

	var req domain.UpdatePedidoCompraRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	pedido, err := h.pedidoService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Data:     pedido,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Pedido atualizado", "Pedido atualizado com sucesso"),
	})
}

// Approve godoc
// @Summary Approve pedido de compra
// @Description Approves the pedido and consumes its quantities against the budget items. Approving an already approved pedido is a no-op with a warning feedback.
// @Tags Pedidos
// @Accept json
// @Produce json
// @Param id path string true "Pedido ID"
// @Param approval body domain.ApproveRequest false "Approval data"
// @Success 200 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /pedidos/{id}/aprovar [post]
func (h *PedidoHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid pedido ID")
		return
	}

	var req domain.ApproveRequest
	if r.ContentLength > 0 {
		if err := decodeAndValidate(r, &req); err != nil {
			respondValidationError(w, err)
			return
		}
	}
	if req.AprovadoPor == "" {
		if user, ok := auth.FromContext(r.Context()); ok {
			req.AprovadoPor = user.Nome()
		}
	}

	pedido, feedback, err := h.pedidoService.Approve(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{Data: pedido, Feedback: feedback})
}

// Delete godoc
// @Summary Delete pedido de compra
// @Description Removes the pedido. An approved pedido has its consumption reversed on every budget item before removal.
// @Tags Pedidos
// @Produce json
// @Param id path string true "Pedido ID"
// @Success 200 {object} domain.MutationResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /pedidos/{id} [delete]
func (h *PedidoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid pedido ID")
		return
	}

	feedback, err := h.pedidoService.Delete(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{Feedback: feedback})
}

// PDF godoc
// @Summary Download pedido as PDF
// @Tags Pedidos
// @Produce application/pdf
// @Param id path string true "Pedido ID"
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /pedidos/{id}/pdf [get]
func (h *PedidoHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid pedido ID")
		return
	}

	pedido, err := h.pedidoService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	data, err := h.pdfGenerator.GeneratePedido(*pedido)
	if err != nil {
		h.logger.Error("failed to generate pedido PDF", zap.Error(err), zap.String("pedidoID", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Erro ao gerar o PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="pedido-%s.pdf"`, pedido.Numero))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
