package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/mapper"
	"github.com/construtivo/construtivo-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrcamentoService handles business logic for the budget tree: centros de
// custo, grupos and itens de custo. All stored aggregates are recomputed
// inside the same transaction as the write that invalidates them.
type OrcamentoService struct {
	centroRepo *repository.CentroCustoRepository
	grupoRepo  *repository.GrupoRepository
	itemRepo   *repository.ItemCustoRepository
	obraRepo   *repository.ObraRepository
	logger     *zap.Logger
	db         *gorm.DB
}

// NewOrcamentoService creates a new OrcamentoService instance
func NewOrcamentoService(
	centroRepo *repository.CentroCustoRepository,
	grupoRepo *repository.GrupoRepository,
	itemRepo *repository.ItemCustoRepository,
	obraRepo *repository.ObraRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *OrcamentoService {
	return &OrcamentoService{
		centroRepo: centroRepo,
		grupoRepo:  grupoRepo,
		itemRepo:   itemRepo,
		obraRepo:   obraRepo,
		logger:     logger,
		db:         db,
	}
}

// CreateCentroCusto creates a new centro de custo under an obra
func (s *OrcamentoService) CreateCentroCusto(ctx context.Context, req *domain.CreateCentroCustoRequest) (*domain.CentroCustoDTO, error) {
	if _, err := s.obraRepo.GetByID(ctx, req.ObraID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to verify obra: %w", err)
	}
	if req.BDIPercentual.IsNegative() {
		return nil, ErrInvalidInput
	}

	centro := &domain.CentroCusto{
		ObraID:        req.ObraID,
		Nome:          req.Nome,
		Descricao:     req.Descricao,
		BDIPercentual: req.BDIPercentual,
	}
	if err := s.centroRepo.Create(ctx, centro); err != nil {
		return nil, fmt.Errorf("failed to create centro de custo: %w", err)
	}

	s.logger.Info("centro de custo created",
		zap.String("centroCustoID", centro.ID.String()),
		zap.String("obraID", req.ObraID.String()))

	dto := mapper.ToCentroCustoDTO(centro)
	return &dto, nil
}

// GetCentroCusto returns a centro de custo with its grupos and itens
func (s *OrcamentoService) GetCentroCusto(ctx context.Context, id uuid.UUID) (*domain.CentroCustoDTO, error) {
	centro, err := s.centroRepo.GetWithGrupos(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get centro de custo: %w", err)
	}
	dto := mapper.ToCentroCustoDTO(centro)
	return &dto, nil
}

// ListCentrosCusto returns the centros de custo of an obra
func (s *OrcamentoService) ListCentrosCusto(ctx context.Context, obraID uuid.UUID) ([]domain.CentroCustoDTO, error) {
	centros, err := s.centroRepo.ListByObra(ctx, obraID)
	if err != nil {
		return nil, fmt.Errorf("failed to list centros de custo: %w", err)
	}
	dtos := make([]domain.CentroCustoDTO, 0, len(centros))
	for i := range centros {
		dtos = append(dtos, mapper.ToCentroCustoDTO(&centros[i]))
	}
	return dtos, nil
}

// UpdateCentroCusto updates a centro de custo. A BDI change invalidates the
// valor_com_bdi aggregates, so the recompute runs in the same transaction.
func (s *OrcamentoService) UpdateCentroCusto(ctx context.Context, id uuid.UUID, req *domain.UpdateCentroCustoRequest) (*domain.CentroCustoDTO, error) {
	if req.BDIPercentual.IsNegative() {
		return nil, ErrInvalidInput
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var centro domain.CentroCusto
		if err := tx.Where("id = ?", id).First(&centro).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get centro de custo: %w", err)
		}

		bdiChanged := !centro.BDIPercentual.Equal(req.BDIPercentual)
		updates := map[string]interface{}{
			"nome":           req.Nome,
			"descricao":      req.Descricao,
			"bdi_percentual": req.BDIPercentual,
		}
		if err := tx.Model(&domain.CentroCusto{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update centro de custo: %w", err)
		}

		if bdiChanged {
			var grupos []domain.Grupo
			if err := tx.Where("centro_custo_id = ?", id).Find(&grupos).Error; err != nil {
				return fmt.Errorf("failed to load grupos: %w", err)
			}
			for _, grupo := range grupos {
				if err := recomputeGrupo(tx, grupo.ID); err != nil {
					return err
				}
			}
			if len(grupos) == 0 {
				if err := recomputeCentro(tx, id); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCentroCusto(ctx, id)
}

// DeleteCentroCusto removes a centro de custo. Deletion is refused while any
// of its items carries realized quantity, since that history backs approved
// pedidos and medições.
func (s *OrcamentoService) DeleteCentroCusto(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var centro domain.CentroCusto
		if err := tx.Where("id = ?", id).First(&centro).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get centro de custo: %w", err)
		}

		var comRealizacao int64
		err := tx.Model(&domain.ItemCusto{}).
			Joins("JOIN grupos ON grupos.id = itens_custo.grupo_id").
			Where("grupos.centro_custo_id = ? AND itens_custo.quantidade_realizada > 0", id).
			Count(&comRealizacao).Error
		if err != nil {
			return fmt.Errorf("failed to check item realization: %w", err)
		}
		if comRealizacao > 0 {
			return ErrPossuiDependencias
		}

		if err := tx.Where("grupo_id IN (?)",
			tx.Model(&domain.Grupo{}).Select("id").Where("centro_custo_id = ?", id),
		).Delete(&domain.ItemCusto{}).Error; err != nil {
			return fmt.Errorf("failed to delete itens: %w", err)
		}
		if err := tx.Where("centro_custo_id = ?", id).Delete(&domain.Grupo{}).Error; err != nil {
			return fmt.Errorf("failed to delete grupos: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&domain.CentroCusto{}).Error; err != nil {
			return fmt.Errorf("failed to delete centro de custo: %w", err)
		}

		s.logger.Info("centro de custo deleted", zap.String("centroCustoID", id.String()))
		return nil
	})
}

// CreateGrupo creates a grupo under a centro de custo
func (s *OrcamentoService) CreateGrupo(ctx context.Context, centroCustoID uuid.UUID, req *domain.CreateGrupoRequest) (*domain.GrupoDTO, error) {
	if _, err := s.centroRepo.GetByID(ctx, centroCustoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to verify centro de custo: %w", err)
	}

	grupo := &domain.Grupo{
		CentroCustoID: centroCustoID,
		Nome:          req.Nome,
	}
	if err := s.grupoRepo.Create(ctx, grupo); err != nil {
		return nil, fmt.Errorf("failed to create grupo: %w", err)
	}

	dto := mapper.ToGrupoDTO(grupo)
	return &dto, nil
}

// GetGrupo returns a grupo with its itens
func (s *OrcamentoService) GetGrupo(ctx context.Context, id uuid.UUID) (*domain.GrupoDTO, error) {
	grupo, err := s.grupoRepo.GetWithItens(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get grupo: %w", err)
	}
	dto := mapper.ToGrupoDTO(grupo)
	return &dto, nil
}

// UpdateGrupo renames a grupo
func (s *OrcamentoService) UpdateGrupo(ctx context.Context, id uuid.UUID, req *domain.UpdateGrupoRequest) (*domain.GrupoDTO, error) {
	grupo, err := s.grupoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get grupo: %w", err)
	}

	grupo.Nome = req.Nome
	if err := s.grupoRepo.Update(ctx, grupo); err != nil {
		return nil, fmt.Errorf("failed to update grupo: %w", err)
	}

	dto := mapper.ToGrupoDTO(grupo)
	return &dto, nil
}

// DeleteGrupo removes a grupo and its itens. Refused while any item carries
// realized quantity.
func (s *OrcamentoService) DeleteGrupo(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var grupo domain.Grupo
		if err := tx.Where("id = ?", id).First(&grupo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get grupo: %w", err)
		}

		var comRealizacao int64
		err := tx.Model(&domain.ItemCusto{}).
			Where("grupo_id = ? AND quantidade_realizada > 0", id).
			Count(&comRealizacao).Error
		if err != nil {
			return fmt.Errorf("failed to check item realization: %w", err)
		}
		if comRealizacao > 0 {
			return ErrPossuiDependencias
		}

		if err := tx.Where("grupo_id = ?", id).Delete(&domain.ItemCusto{}).Error; err != nil {
			return fmt.Errorf("failed to delete itens: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Grupo{}).Error; err != nil {
			return fmt.Errorf("failed to delete grupo: %w", err)
		}

		return recomputeCentro(tx, grupo.CentroCustoID)
	})
}

// CreateItemCusto creates a budget item under a grupo and refreshes the
// aggregates that now include it
func (s *OrcamentoService) CreateItemCusto(ctx context.Context, grupoID uuid.UUID, req *domain.CreateItemCustoRequest) (*domain.ItemCustoDTO, error) {
	if !req.Quantidade.IsPositive() || req.PrecoUnitario.IsNegative() {
		return nil, ErrInvalidInput
	}

	item := &domain.ItemCusto{
		GrupoID:       grupoID,
		Descricao:     req.Descricao,
		Unidade:       req.Unidade,
		Quantidade:    req.Quantidade,
		PrecoUnitario: req.PrecoUnitario,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var grupo domain.Grupo
		if err := tx.Where("id = ?", grupoID).First(&grupo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to verify grupo: %w", err)
		}
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("failed to create item de custo: %w", err)
		}
		return recomputeGrupo(tx, grupoID)
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToItemCustoDTO(item)
	return &dto, nil
}

// GetItemCusto returns a single budget item
func (s *OrcamentoService) GetItemCusto(ctx context.Context, id uuid.UUID) (*domain.ItemCustoDTO, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item de custo: %w", err)
	}
	dto := mapper.ToItemCustoDTO(item)
	return &dto, nil
}

// ListItensByObra returns every budget item of an obra, optionally filtered
// to those still available for new commitments
func (s *OrcamentoService) ListItensByObra(ctx context.Context, obraID uuid.UUID, apenasDisponiveis bool) ([]domain.ItemCustoDTO, error) {
	itens, err := s.itemRepo.ListByObra(ctx, obraID)
	if err != nil {
		return nil, fmt.Errorf("failed to list itens: %w", err)
	}
	dtos := make([]domain.ItemCustoDTO, 0, len(itens))
	for i := range itens {
		dto := mapper.ToItemCustoDTO(&itens[i])
		if apenasDisponiveis && !dto.Disponivel {
			continue
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// UpdateItemCusto updates a budget item. The contracted quantity can never be
// reduced below what approved documents already consumed.
func (s *OrcamentoService) UpdateItemCusto(ctx context.Context, id uuid.UUID, req *domain.UpdateItemCustoRequest) (*domain.ItemCustoDTO, error) {
	if !req.Quantidade.IsPositive() || req.PrecoUnitario.IsNegative() {
		return nil, ErrInvalidInput
	}

	var updated *domain.ItemCusto
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item domain.ItemCusto
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get item de custo: %w", err)
		}

		if req.Quantidade.LessThan(item.QuantidadeRealizada) {
			return ErrInvalidInput
		}

		result := tx.Model(&domain.ItemCusto{}).
			Where("id = ? AND version = ?", item.ID, item.Version).
			Updates(map[string]interface{}{
				"descricao":      req.Descricao,
				"unidade":        req.Unidade,
				"quantidade":     req.Quantidade,
				"preco_unitario": req.PrecoUnitario,
				"version":        item.Version + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update item de custo: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConflitoVersao
		}

		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return fmt.Errorf("failed to reload item de custo: %w", err)
		}
		updated = &item
		return recomputeGrupo(tx, item.GrupoID)
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToItemCustoDTO(updated)
	return &dto, nil
}

// DeleteItemCusto removes a budget item. Refused once the item carries any
// realized quantity.
func (s *OrcamentoService) DeleteItemCusto(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item domain.ItemCusto
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get item de custo: %w", err)
		}
		if item.QuantidadeRealizada.IsPositive() {
			return ErrPossuiDependencias
		}

		var vinculos int64
		if err := tx.Model(&domain.PedidoCompraItem{}).Where("item_custo_id = ?", id).Count(&vinculos).Error; err != nil {
			return fmt.Errorf("failed to check pedido links: %w", err)
		}
		if vinculos > 0 {
			return ErrPossuiDependencias
		}

		if err := tx.Where("id = ?", id).Delete(&domain.ItemCusto{}).Error; err != nil {
			return fmt.Errorf("failed to delete item de custo: %w", err)
		}
		return recomputeGrupo(tx, item.GrupoID)
	})
}

// RefreshAll recomputes every grupo and centro de custo aggregate from the
// underlying items. The nightly reconciliation job runs this to surface any
// drift; request handlers never need it because writes recompute in-line.
func (s *OrcamentoService) RefreshAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var grupos []domain.Grupo
		if err := tx.Find(&grupos).Error; err != nil {
			return fmt.Errorf("failed to list grupos: %w", err)
		}
		for _, grupo := range grupos {
			if err := recomputeGrupo(tx, grupo.ID); err != nil {
				return err
			}
		}
		return nil
	})
}
