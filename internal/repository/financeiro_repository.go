package repository

import (
	"context"
	"sort"
	"time"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Origins of a parcela in the financial report
const (
	OrigemPedidoCompra = "pedido_compra"
	OrigemMedicao      = "medicao"
)

// ContaRow is one accounts payable/receivable row sourced from a parcela of
// a pedido de compra or a medição
type ContaRow struct {
	ParcelaID      uuid.UUID
	Origem         string
	OrigemID       uuid.UUID
	Numero         string
	FornecedorNome string
	ObraNome       string
	DataPrevista   time.Time
	Valor          decimal.Decimal
	Status         domain.ParcelaStatus
}

// FinanceiroRepository reads parcelas across pedidos and medições for the
// accounts payable/receivable report
type FinanceiroRepository struct {
	db *gorm.DB
}

// NewFinanceiroRepository creates a new FinanceiroRepository instance
func NewFinanceiroRepository(db *gorm.DB) *FinanceiroRepository {
	return &FinanceiroRepository{db: db}
}

// ListContas returns every parcela in the period, merged across origins and
// sorted by due date. Both origins are fetched with their own query and
// merged in memory; the result sets are small (one row per installment).
func (r *FinanceiroRepository) ListContas(ctx context.Context, de, ate *time.Time, status domain.ParcelaStatus) ([]ContaRow, error) {
	pedidos, err := r.contasPedidos(ctx, de, ate, status)
	if err != nil {
		return nil, err
	}
	medicoes, err := r.contasMedicoes(ctx, de, ate, status)
	if err != nil {
		return nil, err
	}

	contas := append(pedidos, medicoes...)
	sort.SliceStable(contas, func(a, b int) bool {
		return contas[a].DataPrevista.Before(contas[b].DataPrevista)
	})
	return contas, nil
}

func (r *FinanceiroRepository) contasPedidos(ctx context.Context, de, ate *time.Time, status domain.ParcelaStatus) ([]ContaRow, error) {
	var parcelas []domain.ParcelaPedidoCompra
	query := r.db.WithContext(ctx).Order("data_prevista ASC")
	if de != nil {
		query = query.Where("data_prevista >= ?", *de)
	}
	if ate != nil {
		query = query.Where("data_prevista <= ?", *ate)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&parcelas).Error; err != nil {
		return nil, err
	}

	contas := make([]ContaRow, 0, len(parcelas))
	for _, parcela := range parcelas {
		var pedido domain.PedidoCompra
		err := r.db.WithContext(ctx).
			Preload("Fornecedor").
			Preload("Obra").
			Where("id = ?", parcela.PedidoCompraID).
			First(&pedido).Error
		if err != nil {
			return nil, err
		}
		row := ContaRow{
			ParcelaID:    parcela.ID,
			Origem:       OrigemPedidoCompra,
			OrigemID:     pedido.ID,
			Numero:       pedido.Numero,
			DataPrevista: parcela.DataPrevista,
			Valor:        parcela.Valor,
			Status:       parcela.Status,
		}
		if pedido.Fornecedor != nil {
			row.FornecedorNome = pedido.Fornecedor.RazaoSocial
		}
		if pedido.Obra != nil {
			row.ObraNome = pedido.Obra.Nome
		}
		contas = append(contas, row)
	}
	return contas, nil
}

func (r *FinanceiroRepository) contasMedicoes(ctx context.Context, de, ate *time.Time, status domain.ParcelaStatus) ([]ContaRow, error) {
	var parcelas []domain.ParcelaMedicao
	query := r.db.WithContext(ctx).Order("data_prevista ASC")
	if de != nil {
		query = query.Where("data_prevista >= ?", *de)
	}
	if ate != nil {
		query = query.Where("data_prevista <= ?", *ate)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&parcelas).Error; err != nil {
		return nil, err
	}

	contas := make([]ContaRow, 0, len(parcelas))
	for _, parcela := range parcelas {
		var medicao domain.Medicao
		err := r.db.WithContext(ctx).
			Preload("Negociacao").
			Preload("Negociacao.Fornecedor").
			Preload("Negociacao.Obra").
			Where("id = ?", parcela.MedicaoID).
			First(&medicao).Error
		if err != nil {
			return nil, err
		}
		row := ContaRow{
			ParcelaID:    parcela.ID,
			Origem:       OrigemMedicao,
			OrigemID:     medicao.ID,
			DataPrevista: parcela.DataPrevista,
			Valor:        parcela.Valor,
			Status:       parcela.Status,
		}
		if medicao.Negociacao != nil {
			row.Numero = medicao.Negociacao.Numero
			if medicao.Negociacao.Fornecedor != nil {
				row.FornecedorNome = medicao.Negociacao.Fornecedor.RazaoSocial
			}
			if medicao.Negociacao.Obra != nil {
				row.ObraNome = medicao.Negociacao.Obra.Nome
			}
		}
		contas = append(contas, row)
	}
	return contas, nil
}

// PagarParcelaPedido marks a pedido installment as paid
func (r *FinanceiroRepository) PagarParcelaPedido(ctx context.Context, id uuid.UUID, quando time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.ParcelaPedidoCompra{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": domain.ParcelaPaga, "paga_em": quando})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PagarParcelaMedicao marks a medição installment as paid
func (r *FinanceiroRepository) PagarParcelaMedicao(ctx context.Context, id uuid.UUID, quando time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.ParcelaMedicao{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": domain.ParcelaPaga, "paga_em": quando})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
