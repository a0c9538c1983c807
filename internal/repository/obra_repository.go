package repository

import (
	"context"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ObraRepository handles database operations for obras
type ObraRepository struct {
	db *gorm.DB
}

// NewObraRepository creates a new ObraRepository instance
func NewObraRepository(db *gorm.DB) *ObraRepository {
	return &ObraRepository{db: db}
}

// Create inserts a new obra
func (r *ObraRepository) Create(ctx context.Context, obra *domain.Obra) error {
	return r.db.WithContext(ctx).Create(obra).Error
}

// GetByID retrieves an obra by its ID
func (r *ObraRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Obra, error) {
	var obra domain.Obra
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&obra).Error
	if err != nil {
		return nil, err
	}
	return &obra, nil
}

// Update saves changes to an existing obra
func (r *ObraRepository) Update(ctx context.Context, obra *domain.Obra) error {
	return r.db.WithContext(ctx).Save(obra).Error
}

// Delete removes an obra
func (r *ObraRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Obra{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns all obras ordered by name
func (r *ObraRepository) List(ctx context.Context) ([]domain.Obra, error) {
	var obras []domain.Obra
	err := r.db.WithContext(ctx).Order("nome ASC").Find(&obras).Error
	return obras, err
}
