package repository

import (
	"context"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MedicaoRepository handles database operations for medições
type MedicaoRepository struct {
	db *gorm.DB
}

// NewMedicaoRepository creates a new MedicaoRepository instance
func NewMedicaoRepository(db *gorm.DB) *MedicaoRepository {
	return &MedicaoRepository{db: db}
}

// Create inserts a new medição with its items and parcelas
func (r *MedicaoRepository) Create(ctx context.Context, medicao *domain.Medicao) error {
	return r.db.WithContext(ctx).Create(medicao).Error
}

// GetByID retrieves a medição with items and parcelas
func (r *MedicaoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Medicao, error) {
	var medicao domain.Medicao
	err := r.db.WithContext(ctx).
		Preload("Itens").
		Preload("Itens.ItemNegociacao").
		Preload("Parcelas", func(db *gorm.DB) *gorm.DB { return db.Order("parcelas_medicao.data_prevista ASC") }).
		Preload("Negociacao").
		Preload("Negociacao.Fornecedor").
		Preload("Negociacao.Obra").
		Where("id = ?", id).
		First(&medicao).Error
	if err != nil {
		return nil, err
	}
	return &medicao, nil
}

// Update saves the medição header
func (r *MedicaoRepository) Update(ctx context.Context, medicao *domain.Medicao) error {
	return r.db.WithContext(ctx).Omit("Itens", "Parcelas", "Negociacao").Save(medicao).Error
}

// ListByNegociacao returns a negotiation's medições in chronological order
// (creation time). The accumulated-percentage report depends on this order.
func (r *MedicaoRepository) ListByNegociacao(ctx context.Context, negociacaoID uuid.UUID) ([]domain.Medicao, error) {
	var medicoes []domain.Medicao
	err := r.db.WithContext(ctx).
		Preload("Itens").
		Where("negociacao_id = ?", negociacaoID).
		Order("created_at ASC, numero ASC").
		Find(&medicoes).Error
	return medicoes, err
}

// NextNumero returns the next sequential measurement number within a
// negotiation
func (r *MedicaoRepository) NextNumero(ctx context.Context, negociacaoID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&domain.Medicao{}).
		Where("negociacao_id = ?", negociacaoID).
		Select("MAX(numero)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}
