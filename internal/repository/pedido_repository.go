package repository

import (
	"context"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PedidoRepository handles database operations for pedidos de compra
type PedidoRepository struct {
	db *gorm.DB
}

// NewPedidoRepository creates a new PedidoRepository instance
func NewPedidoRepository(db *gorm.DB) *PedidoRepository {
	return &PedidoRepository{db: db}
}

// Create inserts a new pedido with its items and parcelas
func (r *PedidoRepository) Create(ctx context.Context, pedido *domain.PedidoCompra) error {
	return r.db.WithContext(ctx).Create(pedido).Error
}

// GetByID retrieves a pedido with items, parcelas, fornecedor and obra
func (r *PedidoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PedidoCompra, error) {
	var pedido domain.PedidoCompra
	err := r.db.WithContext(ctx).
		Preload("Itens").
		Preload("Itens.ItemCusto").
		Preload("Parcelas", func(db *gorm.DB) *gorm.DB { return db.Order("parcelas_pedido_compra.data_prevista ASC") }).
		Preload("Fornecedor").
		Preload("Obra").
		Where("id = ?", id).
		First(&pedido).Error
	if err != nil {
		return nil, err
	}
	return &pedido, nil
}

// Update saves the pedido header
func (r *PedidoRepository) Update(ctx context.Context, pedido *domain.PedidoCompra) error {
	return r.db.WithContext(ctx).Omit("Itens", "Parcelas", "Fornecedor", "Obra").Save(pedido).Error
}

// List returns pedidos filtered by obra, fornecedor and/or status
func (r *PedidoRepository) List(ctx context.Context, obraID, fornecedorID *uuid.UUID, status domain.Status) ([]domain.PedidoCompra, error) {
	var pedidos []domain.PedidoCompra
	query := r.db.WithContext(ctx).
		Preload("Fornecedor").
		Preload("Obra").
		Order("data_emissao DESC, numero DESC")
	if obraID != nil {
		query = query.Where("obra_id = ?", *obraID)
	}
	if fornecedorID != nil {
		query = query.Where("fornecedor_id = ?", *fornecedorID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Find(&pedidos).Error
	return pedidos, err
}

// MaxNumeroByPrefix returns the highest numero starting with the given
// prefix, or empty when none exists. The zero-padded suffix makes the
// lexicographic order match the numeric one within a year.
func (r *PedidoRepository) MaxNumeroByPrefix(ctx context.Context, prefix string) (string, error) {
	var numeros []string
	err := r.db.WithContext(ctx).
		Model(&domain.PedidoCompra{}).
		Where("numero LIKE ?", prefix+"%").
		Order("numero DESC").
		Limit(1).
		Pluck("numero", &numeros).Error
	if err != nil || len(numeros) == 0 {
		return "", err
	}
	return numeros[0], nil
}
