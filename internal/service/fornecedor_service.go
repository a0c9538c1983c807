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

// FornecedorService handles business logic for suppliers
type FornecedorService struct {
	fornecedorRepo *repository.FornecedorRepository
	logger         *zap.Logger
	db             *gorm.DB
}

// NewFornecedorService creates a new FornecedorService instance
func NewFornecedorService(fornecedorRepo *repository.FornecedorRepository, logger *zap.Logger, db *gorm.DB) *FornecedorService {
	return &FornecedorService{fornecedorRepo: fornecedorRepo, logger: logger, db: db}
}

// Create creates a new fornecedor. CNPJ is unique across suppliers.
func (s *FornecedorService) Create(ctx context.Context, req *domain.CreateFornecedorRequest) (*domain.FornecedorDTO, error) {
	if req.CNPJ != "" {
		existing, err := s.fornecedorRepo.GetByCNPJ(ctx, req.CNPJ)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check CNPJ: %w", err)
		}
		if existing != nil {
			return nil, ErrCNPJDuplicado
		}
	}

	fornecedor := &domain.Fornecedor{
		RazaoSocial:  req.RazaoSocial,
		NomeFantasia: req.NomeFantasia,
		CNPJ:         req.CNPJ,
		Email:        req.Email,
		Telefone:     req.Telefone,
		Endereco:     req.Endereco,
		Cidade:       req.Cidade,
		Estado:       req.Estado,
	}
	if err := s.fornecedorRepo.Create(ctx, fornecedor); err != nil {
		return nil, fmt.Errorf("failed to create fornecedor: %w", err)
	}

	s.logger.Info("fornecedor created",
		zap.String("fornecedorID", fornecedor.ID.String()),
		zap.String("razaoSocial", fornecedor.RazaoSocial))

	dto := mapper.ToFornecedorDTO(fornecedor)
	return &dto, nil
}

// GetByID returns a single fornecedor
func (s *FornecedorService) GetByID(ctx context.Context, id uuid.UUID) (*domain.FornecedorDTO, error) {
	fornecedor, err := s.fornecedorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get fornecedor: %w", err)
	}
	dto := mapper.ToFornecedorDTO(fornecedor)
	return &dto, nil
}

// List returns suppliers, optionally filtered by a name/CNPJ search term
func (s *FornecedorService) List(ctx context.Context, search string) ([]domain.FornecedorDTO, error) {
	fornecedores, err := s.fornecedorRepo.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list fornecedores: %w", err)
	}
	dtos := make([]domain.FornecedorDTO, 0, len(fornecedores))
	for i := range fornecedores {
		dtos = append(dtos, mapper.ToFornecedorDTO(&fornecedores[i]))
	}
	return dtos, nil
}

// Update updates a fornecedor
func (s *FornecedorService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateFornecedorRequest) (*domain.FornecedorDTO, error) {
	fornecedor, err := s.fornecedorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get fornecedor: %w", err)
	}

	if req.CNPJ != "" && req.CNPJ != fornecedor.CNPJ {
		existing, err := s.fornecedorRepo.GetByCNPJ(ctx, req.CNPJ)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check CNPJ: %w", err)
		}
		if existing != nil {
			return nil, ErrCNPJDuplicado
		}
	}

	fornecedor.RazaoSocial = req.RazaoSocial
	fornecedor.NomeFantasia = req.NomeFantasia
	fornecedor.CNPJ = req.CNPJ
	fornecedor.Email = req.Email
	fornecedor.Telefone = req.Telefone
	fornecedor.Endereco = req.Endereco
	fornecedor.Cidade = req.Cidade
	fornecedor.Estado = req.Estado

	if err := s.fornecedorRepo.Update(ctx, fornecedor); err != nil {
		return nil, fmt.Errorf("failed to update fornecedor: %w", err)
	}

	dto := mapper.ToFornecedorDTO(fornecedor)
	return &dto, nil
}

// Delete removes a fornecedor. Refused while pedidos or negociações still
// reference it.
func (s *FornecedorService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fornecedor domain.Fornecedor
		if err := tx.Where("id = ?", id).First(&fornecedor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get fornecedor: %w", err)
		}

		var pedidos, negociacoes int64
		if err := tx.Model(&domain.PedidoCompra{}).Where("fornecedor_id = ?", id).Count(&pedidos).Error; err != nil {
			return fmt.Errorf("failed to check pedido links: %w", err)
		}
		if err := tx.Model(&domain.Negociacao{}).Where("fornecedor_id = ?", id).Count(&negociacoes).Error; err != nil {
			return fmt.Errorf("failed to check negociação links: %w", err)
		}
		if pedidos > 0 || negociacoes > 0 {
			return ErrPossuiDependencias
		}

		if err := tx.Where("id = ?", id).Delete(&domain.Fornecedor{}).Error; err != nil {
			return fmt.Errorf("failed to delete fornecedor: %w", err)
		}

		s.logger.Info("fornecedor deleted", zap.String("fornecedorID", id.String()))
		return nil
	})
}
