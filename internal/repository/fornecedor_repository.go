package repository

import (
	"context"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FornecedorRepository handles database operations for fornecedores
type FornecedorRepository struct {
	db *gorm.DB
}

// NewFornecedorRepository creates a new FornecedorRepository instance
func NewFornecedorRepository(db *gorm.DB) *FornecedorRepository {
	return &FornecedorRepository{db: db}
}

// Create inserts a new fornecedor
func (r *FornecedorRepository) Create(ctx context.Context, fornecedor *domain.Fornecedor) error {
	return r.db.WithContext(ctx).Create(fornecedor).Error
}

// GetByID retrieves a fornecedor by its ID
func (r *FornecedorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Fornecedor, error) {
	var fornecedor domain.Fornecedor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&fornecedor).Error
	if err != nil {
		return nil, err
	}
	return &fornecedor, nil
}

// GetByCNPJ retrieves a fornecedor by CNPJ
func (r *FornecedorRepository) GetByCNPJ(ctx context.Context, cnpj string) (*domain.Fornecedor, error) {
	var fornecedor domain.Fornecedor
	err := r.db.WithContext(ctx).Where("cnpj = ?", cnpj).First(&fornecedor).Error
	if err != nil {
		return nil, err
	}
	return &fornecedor, nil
}

// Update saves changes to an existing fornecedor
func (r *FornecedorRepository) Update(ctx context.Context, fornecedor *domain.Fornecedor) error {
	return r.db.WithContext(ctx).Save(fornecedor).Error
}

// Delete removes a fornecedor
func (r *FornecedorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Fornecedor{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns fornecedores, optionally filtered by a search term on the
// razão social or nome fantasia
func (r *FornecedorRepository) List(ctx context.Context, search string) ([]domain.Fornecedor, error) {
	var fornecedores []domain.Fornecedor
	query := r.db.WithContext(ctx).Order("razao_social ASC")
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("razao_social ILIKE ? OR nome_fantasia ILIKE ?", like, like)
	}
	err := query.Find(&fornecedores).Error
	return fornecedores, err
}
