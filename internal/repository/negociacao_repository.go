package repository

import (
	"context"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NegociacaoRepository handles database operations for negociações
type NegociacaoRepository struct {
	db *gorm.DB
}

// NewNegociacaoRepository creates a new NegociacaoRepository instance
func NewNegociacaoRepository(db *gorm.DB) *NegociacaoRepository {
	return &NegociacaoRepository{db: db}
}

// Create inserts a new negociação with its items
func (r *NegociacaoRepository) Create(ctx context.Context, negociacao *domain.Negociacao) error {
	return r.db.WithContext(ctx).Create(negociacao).Error
}

// GetByID retrieves a negociação with items, fornecedor and obra
func (r *NegociacaoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Negociacao, error) {
	var negociacao domain.Negociacao
	err := r.db.WithContext(ctx).
		Preload("Itens", func(db *gorm.DB) *gorm.DB { return db.Order("itens_negociacao.created_at ASC") }).
		Preload("Itens.ItemCusto").
		Preload("Fornecedor").
		Preload("Obra").
		Where("id = ?", id).
		First(&negociacao).Error
	if err != nil {
		return nil, err
	}
	return &negociacao, nil
}

// Update saves the negociação header
func (r *NegociacaoRepository) Update(ctx context.Context, negociacao *domain.Negociacao) error {
	return r.db.WithContext(ctx).Omit("Itens", "Medicoes", "Fornecedor", "Obra").Save(negociacao).Error
}

// List returns negociações filtered by obra and/or fornecedor
func (r *NegociacaoRepository) List(ctx context.Context, obraID, fornecedorID *uuid.UUID) ([]domain.Negociacao, error) {
	var negociacoes []domain.Negociacao
	query := r.db.WithContext(ctx).
		Preload("Fornecedor").
		Preload("Obra").
		Order("data_inicio DESC, numero DESC")
	if obraID != nil {
		query = query.Where("obra_id = ?", *obraID)
	}
	if fornecedorID != nil {
		query = query.Where("fornecedor_id = ?", *fornecedorID)
	}
	err := query.Find(&negociacoes).Error
	return negociacoes, err
}

// GetItem retrieves a single item de negociação
func (r *NegociacaoRepository) GetItem(ctx context.Context, id uuid.UUID) (*domain.ItemNegociacao, error) {
	var item domain.ItemNegociacao
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// MaxNumeroByPrefix returns the highest numero starting with the given
// prefix, or empty when none exists
func (r *NegociacaoRepository) MaxNumeroByPrefix(ctx context.Context, prefix string) (string, error) {
	var numeros []string
	err := r.db.WithContext(ctx).
		Model(&domain.Negociacao{}).
		Where("numero LIKE ?", prefix+"%").
		Order("numero DESC").
		Limit(1).
		Pluck("numero", &numeros).Error
	if err != nil || len(numeros) == 0 {
		return "", err
	}
	return numeros[0], nil
}
