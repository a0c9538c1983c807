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

// ObraService handles business logic for construction projects
type ObraService struct {
	obraRepo *repository.ObraRepository
	logger   *zap.Logger
	db       *gorm.DB
}

// NewObraService creates a new ObraService instance
func NewObraService(obraRepo *repository.ObraRepository, logger *zap.Logger, db *gorm.DB) *ObraService {
	return &ObraService{obraRepo: obraRepo, logger: logger, db: db}
}

// Create creates a new obra
func (s *ObraService) Create(ctx context.Context, req *domain.CreateObraRequest) (*domain.ObraDTO, error) {
	obra := &domain.Obra{
		Nome:         req.Nome,
		Endereco:     req.Endereco,
		Cidade:       req.Cidade,
		Estado:       req.Estado,
		Responsavel:  req.Responsavel,
		DataInicio:   req.DataInicio,
		DataPrevista: req.DataPrevista,
	}
	if err := s.obraRepo.Create(ctx, obra); err != nil {
		return nil, fmt.Errorf("failed to create obra: %w", err)
	}

	s.logger.Info("obra created", zap.String("obraID", obra.ID.String()), zap.String("nome", obra.Nome))

	dto := mapper.ToObraDTO(obra)
	return &dto, nil
}

// GetByID returns a single obra
func (s *ObraService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ObraDTO, error) {
	obra, err := s.obraRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get obra: %w", err)
	}
	dto := mapper.ToObraDTO(obra)
	return &dto, nil
}

// List returns all obras
func (s *ObraService) List(ctx context.Context) ([]domain.ObraDTO, error) {
	obras, err := s.obraRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list obras: %w", err)
	}
	dtos := make([]domain.ObraDTO, 0, len(obras))
	for i := range obras {
		dtos = append(dtos, mapper.ToObraDTO(&obras[i]))
	}
	return dtos, nil
}

// Update updates an obra
func (s *ObraService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateObraRequest) (*domain.ObraDTO, error) {
	obra, err := s.obraRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get obra: %w", err)
	}

	obra.Nome = req.Nome
	obra.Endereco = req.Endereco
	obra.Cidade = req.Cidade
	obra.Estado = req.Estado
	obra.Responsavel = req.Responsavel
	obra.DataInicio = req.DataInicio
	obra.DataPrevista = req.DataPrevista

	if err := s.obraRepo.Update(ctx, obra); err != nil {
		return nil, fmt.Errorf("failed to update obra: %w", err)
	}

	dto := mapper.ToObraDTO(obra)
	return &dto, nil
}

// Delete removes an obra. Refused while the obra still owns centros de custo,
// pedidos or negociações.
func (s *ObraService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var obra domain.Obra
		if err := tx.Where("id = ?", id).First(&obra).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get obra: %w", err)
		}

		for _, check := range []struct {
			model interface{}
			query string
		}{
			{&domain.CentroCusto{}, "obra_id = ?"},
			{&domain.PedidoCompra{}, "obra_id = ?"},
			{&domain.Negociacao{}, "obra_id = ?"},
		} {
			var count int64
			if err := tx.Model(check.model).Where(check.query, id).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check obra links: %w", err)
			}
			if count > 0 {
				return ErrPossuiDependencias
			}
		}

		if err := tx.Where("id = ?", id).Delete(&domain.Obra{}).Error; err != nil {
			return fmt.Errorf("failed to delete obra: %w", err)
		}

		s.logger.Info("obra deleted", zap.String("obraID", id.String()))
		return nil
	})
}
