package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/ledger"
	"github.com/construtivo/construtivo-api/internal/mapper"
	"github.com/construtivo/construtivo-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MedicaoService handles business logic for progress measurements. A medição
// records quantities executed against a negotiation's contracted items; only
// approval makes those quantities count, accruing them on the negotiation
// items and, when an item is bound to the budget, on the item de custo as
// well. Deletion of an approved medição reverses both.
type MedicaoService struct {
	medicaoRepo    *repository.MedicaoRepository
	negociacaoRepo *repository.NegociacaoRepository
	logger         *zap.Logger
	db             *gorm.DB
}

// NewMedicaoService creates a new MedicaoService instance
func NewMedicaoService(
	medicaoRepo *repository.MedicaoRepository,
	negociacaoRepo *repository.NegociacaoRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *MedicaoService {
	return &MedicaoService{
		medicaoRepo:    medicaoRepo,
		negociacaoRepo: negociacaoRepo,
		logger:         logger,
		db:             db,
	}
}

// Create creates a medição in pendente status. Quantities are checked against
// the contracted balance at creation for early feedback; the binding check is
// the one at approval time.
func (s *MedicaoService) Create(ctx context.Context, req *domain.CreateMedicaoRequest) (*domain.MedicaoDTO, error) {
	if req.DataFim.Before(req.DataInicio) {
		return nil, ErrInvalidInput
	}
	if req.Desconto.IsNegative() {
		return nil, ErrInvalidInput
	}

	negociacao, err := s.negociacaoRepo.GetByID(ctx, req.NegociacaoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get negociação: %w", err)
	}

	itensNegociacao := make(map[uuid.UUID]*domain.ItemNegociacao, len(negociacao.Itens))
	for i := range negociacao.Itens {
		itensNegociacao[negociacao.Itens[i].ID] = &negociacao.Itens[i]
	}

	var bruto decimal.Decimal
	itens := make([]domain.MedicaoItem, 0, len(req.Itens))
	for _, itemReq := range req.Itens {
		if !itemReq.QuantidadeMedida.IsPositive() {
			return nil, ErrInvalidInput
		}
		contratado, ok := itensNegociacao[itemReq.ItemNegociacaoID]
		if !ok {
			return nil, ErrNotFound
		}
		if ledger.ExcedeContratado(contratado.Quantidade, contratado.QuantidadeMedida, itemReq.QuantidadeMedida) {
			return nil, ErrOrcamentoExcedido
		}
		itens = append(itens, domain.MedicaoItem{
			ItemNegociacaoID: itemReq.ItemNegociacaoID,
			QuantidadeMedida: itemReq.QuantidadeMedida,
			ValorUnitario:    contratado.PrecoUnitario,
		})
		bruto = bruto.Add(itemReq.QuantidadeMedida.Mul(contratado.PrecoUnitario))
	}

	total := bruto.Sub(req.Desconto)
	if total.IsNegative() {
		return nil, ErrInvalidInput
	}
	if err := validateParcelas(req.Parcelas, total); err != nil {
		return nil, err
	}
	parcelas := make([]domain.ParcelaMedicao, 0, len(req.Parcelas))
	for _, p := range req.Parcelas {
		parcelas = append(parcelas, domain.ParcelaMedicao{
			DataPrevista: p.DataPrevista,
			Valor:        p.Valor,
			Status:       domain.ParcelaPendente,
		})
	}

	numero, err := s.medicaoRepo.NextNumero(ctx, req.NegociacaoID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate medição number: %w", err)
	}

	medicao := &domain.Medicao{
		NegociacaoID: req.NegociacaoID,
		Numero:       numero,
		Status:       domain.StatusPendente,
		DataInicio:   req.DataInicio,
		DataFim:      req.DataFim,
		Desconto:     req.Desconto,
		ValorTotal:   total,
		Observacoes:  req.Observacoes,
		Itens:        itens,
		Parcelas:     parcelas,
	}
	if err := s.medicaoRepo.Create(ctx, medicao); err != nil {
		return nil, fmt.Errorf("failed to create medição: %w", err)
	}

	s.logger.Info("medição created",
		zap.String("medicaoID", medicao.ID.String()),
		zap.String("negociacaoID", req.NegociacaoID.String()),
		zap.Int("numero", numero))

	return s.GetByID(ctx, medicao.ID)
}

// GetByID returns a medição with its itens, parcelas and negotiation context
func (s *MedicaoService) GetByID(ctx context.Context, id uuid.UUID) (*domain.MedicaoDTO, error) {
	medicao, err := s.medicaoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get medição: %w", err)
	}
	dto := mapper.ToMedicaoDTO(medicao)
	return &dto, nil
}

// ListByNegociacao returns a negotiation's medições in chronological order
func (s *MedicaoService) ListByNegociacao(ctx context.Context, negociacaoID uuid.UUID) ([]domain.MedicaoDTO, error) {
	medicoes, err := s.medicaoRepo.ListByNegociacao(ctx, negociacaoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medições: %w", err)
	}
	dtos := make([]domain.MedicaoDTO, 0, len(medicoes))
	for i := range medicoes {
		dtos = append(dtos, mapper.ToMedicaoDTO(&medicoes[i]))
	}
	return dtos, nil
}

// Update replaces a pending medição's period, itens and parcelas. Approved
// medições are immutable.
func (s *MedicaoService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateMedicaoRequest) (*domain.MedicaoDTO, error) {
	if req.DataFim.Before(req.DataInicio) {
		return nil, ErrInvalidInput
	}
	if req.Desconto.IsNegative() {
		return nil, ErrInvalidInput
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var medicao domain.Medicao
		if err := tx.Where("id = ?", id).First(&medicao).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get medição: %w", err)
		}
		if medicao.Status == domain.StatusAprovado {
			return ErrMedicaoJaAprovada
		}

		var bruto decimal.Decimal
		itens := make([]domain.MedicaoItem, 0, len(req.Itens))
		for _, itemReq := range req.Itens {
			if !itemReq.QuantidadeMedida.IsPositive() {
				return ErrInvalidInput
			}
			var contratado domain.ItemNegociacao
			if err := tx.Where("id = ? AND negociacao_id = ?", itemReq.ItemNegociacaoID, medicao.NegociacaoID).
				First(&contratado).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return fmt.Errorf("failed to verify item de negociação: %w", err)
			}
			if ledger.ExcedeContratado(contratado.Quantidade, contratado.QuantidadeMedida, itemReq.QuantidadeMedida) {
				return ErrOrcamentoExcedido
			}
			itens = append(itens, domain.MedicaoItem{
				MedicaoID:        id,
				ItemNegociacaoID: itemReq.ItemNegociacaoID,
				QuantidadeMedida: itemReq.QuantidadeMedida,
				ValorUnitario:    contratado.PrecoUnitario,
			})
			bruto = bruto.Add(itemReq.QuantidadeMedida.Mul(contratado.PrecoUnitario))
		}

		total := bruto.Sub(req.Desconto)
		if total.IsNegative() {
			return ErrInvalidInput
		}
		if err := validateParcelas(req.Parcelas, total); err != nil {
			return err
		}

		if err := tx.Where("medicao_id = ?", id).Delete(&domain.MedicaoItem{}).Error; err != nil {
			return fmt.Errorf("failed to replace itens: %w", err)
		}
		if err := tx.Where("medicao_id = ?", id).Delete(&domain.ParcelaMedicao{}).Error; err != nil {
			return fmt.Errorf("failed to replace parcelas: %w", err)
		}
		for i := range itens {
			if err := tx.Create(&itens[i]).Error; err != nil {
				return fmt.Errorf("failed to create item: %w", err)
			}
		}
		for _, p := range req.Parcelas {
			parcela := domain.ParcelaMedicao{
				MedicaoID:    id,
				DataPrevista: p.DataPrevista,
				Valor:        p.Valor,
				Status:       domain.ParcelaPendente,
			}
			if err := tx.Create(&parcela).Error; err != nil {
				return fmt.Errorf("failed to create parcela: %w", err)
			}
		}

		updates := map[string]interface{}{
			"data_inicio": req.DataInicio,
			"data_fim":    req.DataFim,
			"desconto":    req.Desconto,
			"observacoes": req.Observacoes,
			"valor_total": total,
		}
		return tx.Model(&domain.Medicao{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Approve approves a pending medição. Every quantity is re-validated against
// the contracted balance inside the transaction before it accrues; an item
// bound to the budget also consumes quantity and value on its item de custo.
// Approving an already approved medição changes nothing and reports a
// warning.
func (s *MedicaoService) Approve(ctx context.Context, id uuid.UUID, req *domain.ApproveRequest) (*domain.MedicaoDTO, domain.Feedback, error) {
	var feedback domain.Feedback

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var medicao domain.Medicao
		if err := tx.Preload("Itens").Where("id = ?", id).First(&medicao).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get medição: %w", err)
		}

		if medicao.Status == domain.StatusAprovado {
			feedback = domain.NewFeedback(domain.FeedbackWarning, "Medição já aprovada", "Esta medição já está aprovada")
			return nil
		}

		gruposAfetados := make(map[uuid.UUID]struct{})
		for _, linha := range medicao.Itens {
			var contratado domain.ItemNegociacao
			if err := tx.Where("id = ?", linha.ItemNegociacaoID).First(&contratado).Error; err != nil {
				return fmt.Errorf("failed to load item de negociação: %w", err)
			}
			if ledger.ExcedeContratado(contratado.Quantidade, contratado.QuantidadeMedida, linha.QuantidadeMedida) {
				return ErrOrcamentoExcedido
			}

			novaMedida := contratado.QuantidadeMedida.Add(linha.QuantidadeMedida)
			if err := tx.Model(&domain.ItemNegociacao{}).Where("id = ?", contratado.ID).
				Update("quantidade_medida", novaMedida).Error; err != nil {
				return fmt.Errorf("failed to accrue item de negociação: %w", err)
			}

			if contratado.ItemCustoID != nil {
				var item domain.ItemCusto
				if err := tx.Where("id = ?", *contratado.ItemCustoID).First(&item).Error; err != nil {
					return fmt.Errorf("failed to load item de custo: %w", err)
				}
				if !ledger.ItemDisponivel(item.RealizadoPercentual()) {
					return ErrItemIndisponivel
				}
				if ledger.ExcedeContratado(item.Quantidade, item.QuantidadeRealizada, linha.QuantidadeMedida) {
					return ErrOrcamentoExcedido
				}
				atual := ledger.Realizacao{Quantidade: item.QuantidadeRealizada, Valor: item.ValorRealizado}
				nova := atual.Acrescentar(linha.QuantidadeMedida, linha.ValorUnitario)
				if err := writeItemRealizacao(tx, &item, nova); err != nil {
					return err
				}
				gruposAfetados[item.GrupoID] = struct{}{}
			}
		}

		agora := time.Now().UTC()
		updates := map[string]interface{}{
			"status":       domain.StatusAprovado,
			"aprovada_por": req.AprovadoPor,
			"aprovada_em":  agora,
		}
		if err := tx.Model(&domain.Medicao{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to approve medição: %w", err)
		}

		for grupoID := range gruposAfetados {
			if err := recomputeGrupo(tx, grupoID); err != nil {
				return err
			}
		}

		feedback = domain.NewFeedback(domain.FeedbackSuccess, "Medição aprovada",
			fmt.Sprintf("Medição nº %d aprovada com sucesso", medicao.Numero))
		s.logger.Info("medição approved",
			zap.String("medicaoID", id.String()),
			zap.Int("numero", medicao.Numero),
			zap.String("aprovadaPor", req.AprovadoPor))
		return nil
	})
	if err != nil {
		return nil, domain.Feedback{}, err
	}

	dto, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Feedback{}, err
	}
	return dto, feedback, nil
}

// Delete removes a medição. Deleting an approved medição reverses its accrual
// on every item de negociação and on any bound item de custo.
func (s *MedicaoService) Delete(ctx context.Context, id uuid.UUID) (domain.Feedback, error) {
	var feedback domain.Feedback

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var medicao domain.Medicao
		if err := tx.Preload("Itens").Where("id = ?", id).First(&medicao).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get medição: %w", err)
		}

		gruposAfetados := make(map[uuid.UUID]struct{})
		if medicao.Status == domain.StatusAprovado {
			for _, linha := range medicao.Itens {
				var contratado domain.ItemNegociacao
				if err := tx.Where("id = ?", linha.ItemNegociacaoID).First(&contratado).Error; err != nil {
					return fmt.Errorf("failed to load item de negociação: %w", err)
				}
				novaMedida := contratado.QuantidadeMedida.Sub(linha.QuantidadeMedida)
				if novaMedida.IsNegative() {
					novaMedida = decimal.Zero
				}
				if err := tx.Model(&domain.ItemNegociacao{}).Where("id = ?", contratado.ID).
					Update("quantidade_medida", novaMedida).Error; err != nil {
					return fmt.Errorf("failed to reverse item de negociação: %w", err)
				}

				if contratado.ItemCustoID != nil {
					var item domain.ItemCusto
					if err := tx.Where("id = ?", *contratado.ItemCustoID).First(&item).Error; err != nil {
						return fmt.Errorf("failed to load item de custo: %w", err)
					}
					atual := ledger.Realizacao{Quantidade: item.QuantidadeRealizada, Valor: item.ValorRealizado}
					nova := atual.Estornar(linha.QuantidadeMedida, linha.ValorUnitario)
					if err := writeItemRealizacao(tx, &item, nova); err != nil {
						return err
					}
					gruposAfetados[item.GrupoID] = struct{}{}
				}
			}
		}

		if err := tx.Where("medicao_id = ?", id).Delete(&domain.MedicaoItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete itens: %w", err)
		}
		if err := tx.Where("medicao_id = ?", id).Delete(&domain.ParcelaMedicao{}).Error; err != nil {
			return fmt.Errorf("failed to delete parcelas: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Medicao{}).Error; err != nil {
			return fmt.Errorf("failed to delete medição: %w", err)
		}

		for grupoID := range gruposAfetados {
			if err := recomputeGrupo(tx, grupoID); err != nil {
				return err
			}
		}

		feedback = domain.NewFeedback(domain.FeedbackSuccess, "Medição removida",
			fmt.Sprintf("Medição nº %d removida com sucesso", medicao.Numero))
		s.logger.Info("medição deleted",
			zap.String("medicaoID", id.String()),
			zap.Int("numero", medicao.Numero),
			zap.Bool("estornada", medicao.Status == domain.StatusAprovado))
		return nil
	})
	if err != nil {
		return domain.Feedback{}, err
	}
	return feedback, nil
}
