package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
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

// NegociacaoService handles business logic for contracts and rental
// agreements
type NegociacaoService struct {
	negociacaoRepo *repository.NegociacaoRepository
	medicaoRepo    *repository.MedicaoRepository
	itemRepo       *repository.ItemCustoRepository
	obraRepo       *repository.ObraRepository
	fornRepo       *repository.FornecedorRepository
	logger         *zap.Logger
	db             *gorm.DB
}

// NewNegociacaoService creates a new NegociacaoService instance
func NewNegociacaoService(
	negociacaoRepo *repository.NegociacaoRepository,
	medicaoRepo *repository.MedicaoRepository,
	itemRepo *repository.ItemCustoRepository,
	obraRepo *repository.ObraRepository,
	fornRepo *repository.FornecedorRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *NegociacaoService {
	return &NegociacaoService{
		negociacaoRepo: negociacaoRepo,
		medicaoRepo:    medicaoRepo,
		itemRepo:       itemRepo,
		obraRepo:       obraRepo,
		fornRepo:       fornRepo,
		logger:         logger,
		db:             db,
	}
}

// nextNumero generates the sequential negotiation number for the start year,
// e.g. NEG-2026-0001. The sequence continues from the highest existing number
// so deleted negociações never cause a numero to be reissued.
func (s *NegociacaoService) nextNumero(ctx context.Context, inicio time.Time) (string, error) {
	prefix := fmt.Sprintf("NEG-%d-", inicio.Year())
	ultimo, err := s.negociacaoRepo.MaxNumeroByPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to query last negociação numero: %w", err)
	}
	seq := 0
	if ultimo != "" {
		seq, err = strconv.Atoi(strings.TrimPrefix(ultimo, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed negociação numero %q: %w", ultimo, err)
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// Create creates a negociação with its contracted items. Items may reference
// a budget item, in which case approved medições will consume against it.
func (s *NegociacaoService) Create(ctx context.Context, req *domain.CreateNegociacaoRequest) (*domain.NegociacaoDTO, error) {
	if !req.Tipo.IsValid() {
		return nil, ErrInvalidInput
	}
	if _, err := s.obraRepo.GetByID(ctx, req.ObraID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to verify obra: %w", err)
	}
	if _, err := s.fornRepo.GetByID(ctx, req.FornecedorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to verify fornecedor: %w", err)
	}

	var total decimal.Decimal
	itens := make([]domain.ItemNegociacao, 0, len(req.Itens))
	for _, itemReq := range req.Itens {
		if !itemReq.Quantidade.IsPositive() || itemReq.PrecoUnitario.IsNegative() {
			return nil, ErrInvalidInput
		}
		if itemReq.ItemCustoID != nil {
			if _, err := s.itemRepo.GetByID(ctx, *itemReq.ItemCustoID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrNotFound
				}
				return nil, fmt.Errorf("failed to verify item de custo: %w", err)
			}
		}
		itens = append(itens, domain.ItemNegociacao{
			ItemCustoID:   itemReq.ItemCustoID,
			Descricao:     itemReq.Descricao,
			Unidade:       itemReq.Unidade,
			Quantidade:    itemReq.Quantidade,
			PrecoUnitario: itemReq.PrecoUnitario,
		})
		total = total.Add(itemReq.Quantidade.Mul(itemReq.PrecoUnitario))
	}

	numero, err := s.nextNumero(ctx, req.DataInicio)
	if err != nil {
		return nil, err
	}

	negociacao := &domain.Negociacao{
		Numero:       numero,
		ObraID:       req.ObraID,
		FornecedorID: req.FornecedorID,
		Tipo:         req.Tipo,
		DataInicio:   req.DataInicio,
		DataFim:      req.DataFim,
		ValorTotal:   total,
		Observacoes:  req.Observacoes,
		Itens:        itens,
	}
	if err := s.negociacaoRepo.Create(ctx, negociacao); err != nil {
		return nil, fmt.Errorf("failed to create negociação: %w", err)
	}

	s.logger.Info("negociação created",
		zap.String("negociacaoID", negociacao.ID.String()),
		zap.String("numero", negociacao.Numero),
		zap.String("tipo", string(negociacao.Tipo)))

	return s.GetByID(ctx, negociacao.ID)
}

// GetByID returns a negociação with its items and related names
func (s *NegociacaoService) GetByID(ctx context.Context, id uuid.UUID) (*domain.NegociacaoDTO, error) {
	negociacao, err := s.negociacaoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get negociação: %w", err)
	}
	dto := mapper.ToNegociacaoDTO(negociacao)
	return &dto, nil
}

// List returns negociações filtered by obra and fornecedor
func (s *NegociacaoService) List(ctx context.Context, obraID, fornecedorID *uuid.UUID) ([]domain.NegociacaoDTO, error) {
	negociacoes, err := s.negociacaoRepo.List(ctx, obraID, fornecedorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list negociações: %w", err)
	}
	dtos := make([]domain.NegociacaoDTO, 0, len(negociacoes))
	for i := range negociacoes {
		dtos = append(dtos, mapper.ToNegociacaoDTO(&negociacoes[i]))
	}
	return dtos, nil
}

// Update replaces a negociação's header and items. An item that already has
// measured quantity can have its contracted quantity raised but never reduced
// below what was measured; removing such an item is refused.
func (s *NegociacaoService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateNegociacaoRequest) (*domain.NegociacaoDTO, error) {
	if !req.Tipo.IsValid() {
		return nil, ErrInvalidInput
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var negociacao domain.Negociacao
		if err := tx.Preload("Itens").Where("id = ?", id).First(&negociacao).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get negociação: %w", err)
		}

		// Map existing items by id so measured history survives the replace
		existentes := make(map[uuid.UUID]*domain.ItemNegociacao, len(negociacao.Itens))
		for i := range negociacao.Itens {
			existentes[negociacao.Itens[i].ID] = &negociacao.Itens[i]
		}

		mantidos := make(map[uuid.UUID]struct{}, len(req.Itens))
		var total decimal.Decimal
		for _, itemReq := range req.Itens {
			if !itemReq.Quantidade.IsPositive() || itemReq.PrecoUnitario.IsNegative() {
				return ErrInvalidInput
			}
			total = total.Add(itemReq.Quantidade.Mul(itemReq.PrecoUnitario))
		}

		for _, itemReq := range req.Itens {
			var match *domain.ItemNegociacao
			for _, existente := range existentes {
				if _, kept := mantidos[existente.ID]; kept {
					continue
				}
				if existente.Descricao == itemReq.Descricao {
					match = existente
					break
				}
			}

			if match != nil {
				if itemReq.Quantidade.LessThan(match.QuantidadeMedida) {
					return ErrInvalidInput
				}
				mantidos[match.ID] = struct{}{}
				updates := map[string]interface{}{
					"item_custo_id":  itemReq.ItemCustoID,
					"unidade":        itemReq.Unidade,
					"quantidade":     itemReq.Quantidade,
					"preco_unitario": itemReq.PrecoUnitario,
				}
				if err := tx.Model(&domain.ItemNegociacao{}).Where("id = ?", match.ID).Updates(updates).Error; err != nil {
					return fmt.Errorf("failed to update item: %w", err)
				}
				continue
			}

			novo := domain.ItemNegociacao{
				NegociacaoID:  id,
				ItemCustoID:   itemReq.ItemCustoID,
				Descricao:     itemReq.Descricao,
				Unidade:       itemReq.Unidade,
				Quantidade:    itemReq.Quantidade,
				PrecoUnitario: itemReq.PrecoUnitario,
			}
			if err := tx.Create(&novo).Error; err != nil {
				return fmt.Errorf("failed to create item: %w", err)
			}
			mantidos[novo.ID] = struct{}{}
		}

		for itemID, existente := range existentes {
			if _, kept := mantidos[itemID]; kept {
				continue
			}
			if existente.QuantidadeMedida.IsPositive() {
				return ErrPossuiDependencias
			}
			if err := tx.Where("id = ?", itemID).Delete(&domain.ItemNegociacao{}).Error; err != nil {
				return fmt.Errorf("failed to delete item: %w", err)
			}
		}

		updates := map[string]interface{}{
			"obra_id":       req.ObraID,
			"fornecedor_id": req.FornecedorID,
			"tipo":          req.Tipo,
			"data_inicio":   req.DataInicio,
			"data_fim":      req.DataFim,
			"observacoes":   req.Observacoes,
			"valor_total":   total,
		}
		return tx.Model(&domain.Negociacao{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a negociação. Refused while medições exist; they must be
// deleted first so any approved consumption gets reversed through the medição
// flow.
func (s *NegociacaoService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var negociacao domain.Negociacao
		if err := tx.Where("id = ?", id).First(&negociacao).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get negociação: %w", err)
		}

		var medicoes int64
		if err := tx.Model(&domain.Medicao{}).Where("negociacao_id = ?", id).Count(&medicoes).Error; err != nil {
			return fmt.Errorf("failed to check medições: %w", err)
		}
		if medicoes > 0 {
			return ErrPossuiDependencias
		}

		if err := tx.Where("negociacao_id = ?", id).Delete(&domain.ItemNegociacao{}).Error; err != nil {
			return fmt.Errorf("failed to delete itens: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Negociacao{}).Error; err != nil {
			return fmt.Errorf("failed to delete negociação: %w", err)
		}

		s.logger.Info("negociação deleted",
			zap.String("negociacaoID", id.String()),
			zap.String("numero", negociacao.Numero))
		return nil
	})
}

// Report builds the contract execution report. The accumulated percentage of
// every measurement line is recomputed from the full chronological history of
// the negotiation's medições; no stored counter is trusted.
func (s *NegociacaoService) Report(ctx context.Context, id uuid.UUID) (*domain.NegociacaoReportDTO, error) {
	negociacao, err := s.negociacaoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get negociação: %w", err)
	}

	medicoes, err := s.medicaoRepo.ListByNegociacao(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list medições: %w", err)
	}

	contratadas := make(map[uuid.UUID]decimal.Decimal, len(negociacao.Itens))
	descricoes := make(map[uuid.UUID]string, len(negociacao.Itens))
	for _, item := range negociacao.Itens {
		contratadas[item.ID] = item.Quantidade
		descricoes[item.ID] = item.Descricao
	}

	var linhas []ledger.LinhaMedicao
	for _, medicao := range medicoes {
		for _, item := range medicao.Itens {
			linhas = append(linhas, ledger.LinhaMedicao{
				MedicaoID:        medicao.ID,
				MedicaoNumero:    medicao.Numero,
				CriadaEm:         medicao.CreatedAt,
				Aprovada:         medicao.Status == domain.StatusAprovado,
				ItemNegociacaoID: item.ItemNegociacaoID,
				Quantidade:       item.QuantidadeMedida,
			})
		}
	}

	acumulados := ledger.PercentuaisAcumulados(linhas, contratadas)
	report := &domain.NegociacaoReportDTO{
		Negociacao: mapper.ToNegociacaoDTO(negociacao),
		Linhas:     make([]domain.NegociacaoReportItemDTO, 0, len(acumulados)),
	}
	for _, acc := range acumulados {
		report.Linhas = append(report.Linhas, domain.NegociacaoReportItemDTO{
			MedicaoID:           acc.MedicaoID,
			MedicaoNumero:       acc.MedicaoNumero,
			ItemNegociacaoID:    acc.ItemNegociacaoID,
			Descricao:           descricoes[acc.ItemNegociacaoID],
			QuantidadeMedida:    acc.Quantidade,
			PercentualAcumulado: acc.PercentualAcumulado,
		})
	}
	return report, nil
}
