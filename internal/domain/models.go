package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the ID client-side so the same models work against
// Postgres and the in-memory SQLite used in tests.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Status represents the approval status of a pedido de compra or medição
type Status string

const (
	StatusPendente Status = "pendente"
	StatusAprovado Status = "aprovado"
)

// IsValid checks if the Status is a valid enum value
func (s Status) IsValid() bool {
	switch s {
	case StatusPendente, StatusAprovado:
		return true
	}
	return false
}

// ParcelaStatus represents the payment status of an installment
type ParcelaStatus string

const (
	ParcelaPendente ParcelaStatus = "pendente"
	ParcelaPaga     ParcelaStatus = "pago"
)

// IsValid checks if the ParcelaStatus is a valid enum value
func (s ParcelaStatus) IsValid() bool {
	switch s {
	case ParcelaPendente, ParcelaPaga:
		return true
	}
	return false
}

// NegociacaoTipo classifies a negotiation as a service contract or an
// equipment-rental agreement
type NegociacaoTipo string

const (
	NegociacaoServico NegociacaoTipo = "servico"
	NegociacaoLocacao NegociacaoTipo = "locacao"
)

// IsValid checks if the NegociacaoTipo is a valid enum value
func (t NegociacaoTipo) IsValid() bool {
	switch t {
	case NegociacaoServico, NegociacaoLocacao:
		return true
	}
	return false
}

// Obra represents a construction project
type Obra struct {
	BaseModel
	Nome         string        `gorm:"type:varchar(200);not null;index"`
	Endereco     string        `gorm:"type:varchar(500)"`
	Cidade       string        `gorm:"type:varchar(100)"`
	Estado       string        `gorm:"type:varchar(2)"`
	Responsavel  string        `gorm:"type:varchar(200)"`
	DataInicio   *time.Time    `gorm:"type:date;column:data_inicio"`
	DataPrevista *time.Time    `gorm:"type:date;column:data_prevista"`
	CentrosCusto []CentroCusto `gorm:"foreignKey:ObraID"`
}

// TableName overrides the default pluralization
func (Obra) TableName() string {
	return "obras"
}

// Fornecedor represents a supplier
type Fornecedor struct {
	BaseModel
	RazaoSocial  string `gorm:"type:varchar(200);not null;index;column:razao_social"`
	NomeFantasia string `gorm:"type:varchar(200);column:nome_fantasia"`
	CNPJ         string `gorm:"type:varchar(18);unique;index;column:cnpj"`
	Email        string `gorm:"type:varchar(255)"`
	Telefone     string `gorm:"type:varchar(50)"`
	Endereco     string `gorm:"type:varchar(500)"`
	Cidade       string `gorm:"type:varchar(100)"`
	Estado       string `gorm:"type:varchar(2)"`
}

// TableName overrides the default pluralization
func (Fornecedor) TableName() string {
	return "fornecedores"
}

// CentroCusto represents a top-level budget stage (e.g. "Fundação").
// The valor_* columns are aggregates recomputed from the underlying grupos;
// they are never written directly by request handlers.
type CentroCusto struct {
	BaseModel
	ObraID         uuid.UUID       `gorm:"type:uuid;not null;index;column:obra_id"`
	Obra           *Obra           `gorm:"foreignKey:ObraID"`
	Nome           string          `gorm:"type:varchar(200);not null;index"`
	Descricao      string          `gorm:"type:text"`
	BDIPercentual  decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0;column:bdi_percentual"`
	ValorOrcado    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:valor_orcado"`
	ValorCusto     decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:valor_custo"`
	ValorRealizado decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:valor_realizado"`
	ValorComBDI    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:valor_com_bdi"`
	Grupos         []Grupo         `gorm:"foreignKey:CentroCustoID"`
}

// TableName overrides the default pluralization
func (CentroCusto) TableName() string {
	return "centros_custo"
}

// Grupo represents a sub-category of a centro de custo
type Grupo struct {
	BaseModel
	CentroCustoID  uuid.UUID       `gorm:"type:uuid;not null;index;column:centro_custo_id"`
	CentroCusto    *CentroCusto    `gorm:"foreignKey:CentroCustoID"`
	Nome           string          `gorm:"type:varchar(200);not null"`
	ValorOrcado    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:valor_orcado"`
	ValorCusto     decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:valor_custo"`
	ValorRealizado decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:valor_realizado"`
	ValorComBDI    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:valor_com_bdi"`
	Itens          []ItemCusto     `gorm:"foreignKey:GrupoID"`
}

// ItemCusto is the budget item ledger entry: a costed line item with a
// contracted quantity/price and a running realized total. Version is the
// optimistic concurrency token; every reconciling write checks and bumps it.
type ItemCusto struct {
	BaseModel
	GrupoID             uuid.UUID       `gorm:"type:uuid;not null;index;column:grupo_id"`
	Grupo               *Grupo          `gorm:"foreignKey:GrupoID"`
	Descricao           string          `gorm:"type:varchar(500);not null"`
	Unidade             string          `gorm:"type:varchar(20);not null"`
	Quantidade          decimal.Decimal `gorm:"type:numeric(15,4);not null"`
	PrecoUnitario       decimal.Decimal `gorm:"type:numeric(15,4);not null;column:preco_unitario"`
	QuantidadeRealizada decimal.Decimal `gorm:"type:numeric(15,4);not null;default:0;column:quantidade_realizada"`
	ValorRealizado      decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:valor_realizado"`
	Version             int             `gorm:"not null;default:0"`
}

// TableName overrides the default pluralization
func (ItemCusto) TableName() string {
	return "itens_custo"
}

// ValorOrcado returns quantidade × preço unitário
func (i *ItemCusto) ValorOrcado() decimal.Decimal {
	return i.Quantidade.Mul(i.PrecoUnitario)
}

// RealizadoPercentual returns (realized quantity / contracted quantity) × 100,
// or zero when the contracted quantity is zero
func (i *ItemCusto) RealizadoPercentual() decimal.Decimal {
	if i.Quantidade.IsZero() {
		return decimal.Zero
	}
	return i.QuantidadeRealizada.Div(i.Quantidade).Mul(decimal.NewFromInt(100))
}

// PedidoCompra represents a purchase order against one or more budget items
type PedidoCompra struct {
	BaseModel
	Numero       string                `gorm:"type:varchar(50);unique;index"`
	ObraID       uuid.UUID             `gorm:"type:uuid;not null;index;column:obra_id"`
	Obra         *Obra                 `gorm:"foreignKey:ObraID"`
	FornecedorID uuid.UUID             `gorm:"type:uuid;not null;index;column:fornecedor_id"`
	Fornecedor   *Fornecedor           `gorm:"foreignKey:FornecedorID"`
	Status       Status                `gorm:"type:varchar(20);not null;default:'pendente';index"`
	DataEmissao  time.Time             `gorm:"type:date;not null;column:data_emissao"`
	ValorTotal   decimal.Decimal       `gorm:"type:numeric(15,2);not null;default:0;column:valor_total"`
	Observacoes  string                `gorm:"type:text"`
	AprovadoPor  string                `gorm:"type:varchar(200);column:aprovado_por"`
	AprovadoEm   *time.Time            `gorm:"column:aprovado_em"`
	Itens        []PedidoCompraItem    `gorm:"foreignKey:PedidoCompraID;constraint:OnDelete:CASCADE"`
	Parcelas     []ParcelaPedidoCompra `gorm:"foreignKey:PedidoCompraID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the default pluralization
func (PedidoCompra) TableName() string {
	return "pedidos_compra"
}

// PedidoCompraItem is a purchase order line referencing a budget item
type PedidoCompraItem struct {
	BaseModel
	PedidoCompraID uuid.UUID       `gorm:"type:uuid;not null;index;column:pedido_compra_id"`
	ItemCustoID    uuid.UUID       `gorm:"type:uuid;not null;index;column:item_custo_id"`
	ItemCusto      *ItemCusto      `gorm:"foreignKey:ItemCustoID"`
	Descricao      string          `gorm:"type:varchar(500)"`
	Unidade        string          `gorm:"type:varchar(20)"`
	Quantidade     decimal.Decimal `gorm:"type:numeric(15,4);not null"`
	ValorUnitario  decimal.Decimal `gorm:"type:numeric(15,4);not null;column:valor_unitario"`
}

// TableName overrides the default pluralization
func (PedidoCompraItem) TableName() string {
	return "pedido_compra_itens"
}

// ValorTotal returns quantidade × valor unitário
func (i *PedidoCompraItem) ValorTotal() decimal.Decimal {
	return i.Quantidade.Mul(i.ValorUnitario)
}

// ParcelaPedidoCompra is a forecast disbursement installment of a pedido
type ParcelaPedidoCompra struct {
	BaseModel
	PedidoCompraID uuid.UUID       `gorm:"type:uuid;not null;index;column:pedido_compra_id"`
	DataPrevista   time.Time       `gorm:"type:date;not null;column:data_prevista"`
	Valor          decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Status         ParcelaStatus   `gorm:"type:varchar(20);not null;default:'pendente'"`
	PagaEm         *time.Time      `gorm:"column:paga_em"`
}

// TableName overrides the default pluralization
func (ParcelaPedidoCompra) TableName() string {
	return "parcelas_pedido_compra"
}

// Negociacao represents a contract or equipment-rental agreement
type Negociacao struct {
	BaseModel
	Numero       string           `gorm:"type:varchar(50);unique;index"`
	ObraID       uuid.UUID        `gorm:"type:uuid;not null;index;column:obra_id"`
	Obra         *Obra            `gorm:"foreignKey:ObraID"`
	FornecedorID uuid.UUID        `gorm:"type:uuid;not null;index;column:fornecedor_id"`
	Fornecedor   *Fornecedor      `gorm:"foreignKey:FornecedorID"`
	Tipo         NegociacaoTipo   `gorm:"type:varchar(20);not null;default:'servico'"`
	DataInicio   time.Time        `gorm:"type:date;not null;column:data_inicio"`
	DataFim      *time.Time       `gorm:"type:date;column:data_fim"`
	ValorTotal   decimal.Decimal  `gorm:"type:numeric(15,2);not null;default:0;column:valor_total"`
	Observacoes  string           `gorm:"type:text"`
	Itens        []ItemNegociacao `gorm:"foreignKey:NegociacaoID;constraint:OnDelete:CASCADE"`
	Medicoes     []Medicao        `gorm:"foreignKey:NegociacaoID"`
}

// TableName overrides the default pluralization
func (Negociacao) TableName() string {
	return "negociacoes"
}

// ItemNegociacao is a contracted line of a negotiation, optionally backed by
// a budget item. QuantidadeMedida is the running total accrued from approved
// medições.
type ItemNegociacao struct {
	BaseModel
	NegociacaoID     uuid.UUID       `gorm:"type:uuid;not null;index;column:negociacao_id"`
	ItemCustoID      *uuid.UUID      `gorm:"type:uuid;index;column:item_custo_id"`
	ItemCusto        *ItemCusto      `gorm:"foreignKey:ItemCustoID"`
	Descricao        string          `gorm:"type:varchar(500);not null"`
	Unidade          string          `gorm:"type:varchar(20)"`
	Quantidade       decimal.Decimal `gorm:"type:numeric(15,4);not null"`
	PrecoUnitario    decimal.Decimal `gorm:"type:numeric(15,4);not null;column:preco_unitario"`
	QuantidadeMedida decimal.Decimal `gorm:"type:numeric(15,4);not null;default:0;column:quantidade_medida"`
}

// TableName overrides the default pluralization
func (ItemNegociacao) TableName() string {
	return "itens_negociacao"
}

// QuantidadeDisponivel returns contracted − already-measured, floored at zero
func (i *ItemNegociacao) QuantidadeDisponivel() decimal.Decimal {
	disponivel := i.Quantidade.Sub(i.QuantidadeMedida)
	if disponivel.IsNegative() {
		return decimal.Zero
	}
	return disponivel
}

// Medicao represents a progress measurement against a negotiation
type Medicao struct {
	BaseModel
	NegociacaoID uuid.UUID        `gorm:"type:uuid;not null;index;column:negociacao_id"`
	Negociacao   *Negociacao      `gorm:"foreignKey:NegociacaoID"`
	Numero       int              `gorm:"not null"`
	Status       Status           `gorm:"type:varchar(20);not null;default:'pendente';index"`
	DataInicio   time.Time        `gorm:"type:date;not null;column:data_inicio"`
	DataFim      time.Time        `gorm:"type:date;not null;column:data_fim"`
	Desconto     decimal.Decimal  `gorm:"type:numeric(15,2);not null;default:0"`
	ValorTotal   decimal.Decimal  `gorm:"type:numeric(15,2);not null;default:0;column:valor_total"`
	Observacoes  string           `gorm:"type:text"`
	AprovadaPor  string           `gorm:"type:varchar(200);column:aprovada_por"`
	AprovadaEm   *time.Time       `gorm:"column:aprovada_em"`
	Itens        []MedicaoItem    `gorm:"foreignKey:MedicaoID;constraint:OnDelete:CASCADE"`
	Parcelas     []ParcelaMedicao `gorm:"foreignKey:MedicaoID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the default pluralization
func (Medicao) TableName() string {
	return "medicoes"
}

// MedicaoItem records this measurement's quantity against a contracted item
type MedicaoItem struct {
	BaseModel
	MedicaoID        uuid.UUID       `gorm:"type:uuid;not null;index;column:medicao_id"`
	ItemNegociacaoID uuid.UUID       `gorm:"type:uuid;not null;index;column:item_negociacao_id"`
	ItemNegociacao   *ItemNegociacao `gorm:"foreignKey:ItemNegociacaoID"`
	QuantidadeMedida decimal.Decimal `gorm:"type:numeric(15,4);not null;column:quantidade_medida"`
	ValorUnitario    decimal.Decimal `gorm:"type:numeric(15,4);not null;column:valor_unitario"`
}

// TableName overrides the default pluralization
func (MedicaoItem) TableName() string {
	return "medicao_itens"
}

// ValorTotal returns quantidade medida × valor unitário
func (i *MedicaoItem) ValorTotal() decimal.Decimal {
	return i.QuantidadeMedida.Mul(i.ValorUnitario)
}

// ParcelaMedicao is a forecast receipt installment of a medição
type ParcelaMedicao struct {
	BaseModel
	MedicaoID    uuid.UUID       `gorm:"type:uuid;not null;index;column:medicao_id"`
	DataPrevista time.Time       `gorm:"type:date;not null;column:data_prevista"`
	Valor        decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Status       ParcelaStatus   `gorm:"type:varchar(20);not null;default:'pendente'"`
	PagaEm       *time.Time      `gorm:"column:paga_em"`
}

// TableName overrides the default pluralization
func (ParcelaMedicao) TableName() string {
	return "parcelas_medicao"
}
