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

type MedicaoHandler struct {
	medicaoService    *service.MedicaoService
	negociacaoService *service.NegociacaoService
	pdfGenerator      *pdf.Generator
	logger            *zap.Logger
}

func NewMedicaoHandler(medicaoService *service.MedicaoService, negociacaoService *service.NegociacaoService, pdfGenerator *pdf.Generator, logger *zap.Logger) *MedicaoHandler {
	return &MedicaoHandler{
		medicaoService:    medicaoService,
		negociacaoService: negociacaoService,
		pdfGenerator:      pdfGenerator,
		logger:            logger,
	}
}

// Get godoc
// @Summary Get medição
// @Tags Medições
// @Produce json
// @Param id path string true "Medição ID"
// @Success 200 {object} domain.MedicaoDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /medicoes/{id} [get]
func (h *MedicaoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid medição ID")
		return
	}

	medicao, err := h.medicaoService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicao)
}

// Create godoc
// @Summary Create medição
// @Description Registers a pending measurement against a negociação. Measured quantities are validated against the remaining contracted balance.
// @Tags Medições
// @Accept json
// @Produce json
// @Param medicao body domain.CreateMedicaoRequest true "Medição data"
// @Success 201 {object} domain.MutationResponse
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /medicoes [post]
func (h *MedicaoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMedicaoRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	medicao, err := h.medicaoService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create medição", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.MutationResponse{
		Data:     medicao,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Medição criada", "Medição criada com sucesso"),
	})
}

// Update godoc
// @Summary Update medição
// @Description Only pending medições can be edited. Approved medições must be deleted and recreated.
// @Tags Medições
// @Accept json
// @Produce json
// @Param id path string true "Medição ID"
// @Param medicao body domain.UpdateMedicaoRequest true "Medição data"
// @Success 200 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /medicoes/{id} [put]
func (h *MedicaoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid medição ID")
		return
	}

	var req domain.UpdateMedicaoRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	medicao, err := h.medicaoService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{
		Data:     medicao,
		Feedback: domain.NewFeedback(domain.FeedbackSuccess, "Medição atualizada", "Medição atualizada com sucesso"),
	})
}

// Approve godoc
// @Summary Approve medição
// @Description Approves the measurement, consuming the contracted balance of each item and, for items linked to the budget, the budget availability. Approving an already approved medição is a no-op.
// @Tags Medições
// @Accept json
// @Produce json
// @Param id path string true "Medição ID"
// @Param approval body domain.ApproveRequest false "Approval data"
// @Success 200 {object} domain.MutationResponse
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /medicoes/{id}/aprovar [post]
func (h *MedicaoHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid medição ID")
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

	medicao, feedback, err := h.medicaoService.Approve(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to approve medição", zap.String("medicao_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{Data: medicao, Feedback: feedback})
}

// Delete godoc
// @Summary Delete medição
// @Description Deleting an approved medição returns the measured quantities to the contracted and budget balances.
// @Tags Medições
// @Produce json
// @Param id path string true "Medição ID"
// @Success 200 {object} domain.MutationResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /medicoes/{id} [delete]
func (h *MedicaoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid medição ID")
		return
	}

	feedback, err := h.medicaoService.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete medição", zap.String("medicao_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MutationResponse{Feedback: feedback})
}

// PDF godoc
// @Summary Medição report PDF
// @Tags Medições
// @Produce application/pdf
// @Param id path string true "Medição ID"
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /medicoes/{id}/pdf [get]
func (h *MedicaoHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid medição ID")
		return
	}

	medicao, err := h.medicaoService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	negociacao, err := h.negociacaoService.GetByID(r.Context(), medicao.NegociacaoID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	content, err := h.pdfGenerator.GenerateMedicao(*medicao, *negociacao)
	if err != nil {
		h.logger.Error("failed to generate medição PDF", zap.String("medicao_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Erro ao gerar PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=medicao-%s-%d.pdf", negociacao.Numero, medicao.Numero))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
