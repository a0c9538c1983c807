package repository

import (
	"context"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CentroCustoRepository handles database operations for centros de custo
type CentroCustoRepository struct {
	db *gorm.DB
}

// NewCentroCustoRepository creates a new CentroCustoRepository instance
func NewCentroCustoRepository(db *gorm.DB) *CentroCustoRepository {
	return &CentroCustoRepository{db: db}
}

// Create inserts a new centro de custo
func (r *CentroCustoRepository) Create(ctx context.Context, centro *domain.CentroCusto) error {
	return r.db.WithContext(ctx).Create(centro).Error
}

// GetByID retrieves a centro de custo by its ID
func (r *CentroCustoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CentroCusto, error) {
	var centro domain.CentroCusto
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&centro).Error
	if err != nil {
		return nil, err
	}
	return &centro, nil
}

// GetWithGrupos retrieves a centro de custo with grupos and their items
func (r *CentroCustoRepository) GetWithGrupos(ctx context.Context, id uuid.UUID) (*domain.CentroCusto, error) {
	var centro domain.CentroCusto
	err := r.db.WithContext(ctx).
		Preload("Grupos", func(db *gorm.DB) *gorm.DB { return db.Order("grupos.nome ASC") }).
		Preload("Grupos.Itens", func(db *gorm.DB) *gorm.DB { return db.Order("itens_custo.created_at ASC") }).
		Where("id = ?", id).
		First(&centro).Error
	if err != nil {
		return nil, err
	}
	return &centro, nil
}

// Update saves changes to an existing centro de custo
func (r *CentroCustoRepository) Update(ctx context.Context, centro *domain.CentroCusto) error {
	return r.db.WithContext(ctx).Save(centro).Error
}

// Delete removes a centro de custo. Grupos are not cascaded: a centro with
// dependents fails with a foreign key violation surfaced to the caller.
func (r *CentroCustoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.CentroCusto{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByObra returns all centros de custo of an obra
func (r *CentroCustoRepository) ListByObra(ctx context.Context, obraID uuid.UUID) ([]domain.CentroCusto, error) {
	var centros []domain.CentroCusto
	err := r.db.WithContext(ctx).
		Where("obra_id = ?", obraID).
		Order("nome ASC").
		Find(&centros).Error
	return centros, err
}
