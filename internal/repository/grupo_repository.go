package repository

import (
	"context"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GrupoRepository handles database operations for grupos
type GrupoRepository struct {
	db *gorm.DB
}

// NewGrupoRepository creates a new GrupoRepository instance
func NewGrupoRepository(db *gorm.DB) *GrupoRepository {
	return &GrupoRepository{db: db}
}

// Create inserts a new grupo
func (r *GrupoRepository) Create(ctx context.Context, grupo *domain.Grupo) error {
	return r.db.WithContext(ctx).Create(grupo).Error
}

// GetByID retrieves a grupo by its ID
func (r *GrupoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Grupo, error) {
	var grupo domain.Grupo
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&grupo).Error
	if err != nil {
		return nil, err
	}
	return &grupo, nil
}

// GetWithItens retrieves a grupo with its items
func (r *GrupoRepository) GetWithItens(ctx context.Context, id uuid.UUID) (*domain.Grupo, error) {
	var grupo domain.Grupo
	err := r.db.WithContext(ctx).
		Preload("Itens", func(db *gorm.DB) *gorm.DB { return db.Order("itens_custo.created_at ASC") }).
		Where("id = ?", id).
		First(&grupo).Error
	if err != nil {
		return nil, err
	}
	return &grupo, nil
}

// Update saves changes to an existing grupo
func (r *GrupoRepository) Update(ctx context.Context, grupo *domain.Grupo) error {
	return r.db.WithContext(ctx).Save(grupo).Error
}

// Delete removes a grupo
func (r *GrupoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Grupo{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByCentroCusto returns all grupos of a centro de custo
func (r *GrupoRepository) ListByCentroCusto(ctx context.Context, centroCustoID uuid.UUID) ([]domain.Grupo, error) {
	var grupos []domain.Grupo
	err := r.db.WithContext(ctx).
		Where("centro_custo_id = ?", centroCustoID).
		Order("nome ASC").
		Find(&grupos).Error
	return grupos, err
}
