package repository

import (
	"context"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemCustoRepository handles database operations for itens de custo
type ItemCustoRepository struct {
	db *gorm.DB
}

// NewItemCustoRepository creates a new ItemCustoRepository instance
func NewItemCustoRepository(db *gorm.DB) *ItemCustoRepository {
	return &ItemCustoRepository{db: db}
}

// Create inserts a new item de custo
func (r *ItemCustoRepository) Create(ctx context.Context, item *domain.ItemCusto) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID retrieves an item de custo by its ID
func (r *ItemCustoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ItemCusto, error) {
	var item domain.ItemCusto
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update saves changes to an existing item de custo
func (r *ItemCustoRepository) Update(ctx context.Context, item *domain.ItemCusto) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes an item de custo. Items referenced by pedido lines fail
// with a foreign key violation surfaced to the caller.
func (r *ItemCustoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.ItemCusto{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByGrupo returns all items of a grupo
func (r *ItemCustoRepository) ListByGrupo(ctx context.Context, grupoID uuid.UUID) ([]domain.ItemCusto, error) {
	var itens []domain.ItemCusto
	err := r.db.WithContext(ctx).
		Where("grupo_id = ?", grupoID).
		Order("created_at ASC").
		Find(&itens).Error
	return itens, err
}

// ListByObra returns every item of an obra, joined through grupo and centro
// de custo. Used by the forms that offer items for selection.
func (r *ItemCustoRepository) ListByObra(ctx context.Context, obraID uuid.UUID) ([]domain.ItemCusto, error) {
	var itens []domain.ItemCusto
	err := r.db.WithContext(ctx).
		Joins("JOIN grupos ON grupos.id = itens_custo.grupo_id").
		Joins("JOIN centros_custo ON centros_custo.id = grupos.centro_custo_id").
		Where("centros_custo.obra_id = ?", obraID).
		Order("itens_custo.created_at ASC").
		Find(&itens).Error
	return itens, err
}
