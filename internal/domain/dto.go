package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs for API responses. Monetary and quantity fields are serialized as
// decimal strings so the browser never works with binary floats.

// FeedbackType classifies a user-facing notification
type FeedbackType string

const (
	FeedbackSuccess FeedbackType = "success"
	FeedbackWarning FeedbackType = "warning"
	FeedbackError   FeedbackType = "error"
	FeedbackInfo    FeedbackType = "info"
)

// Feedback is the notification tuple the browser client displays after a
// mutation
type Feedback struct {
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Type     FeedbackType `json:"type"`
	Duration int          `json:"duration"` // milliseconds
}

// NewFeedback builds a feedback tuple with the default display duration
func NewFeedback(tipo FeedbackType, title, message string) Feedback {
	return Feedback{Title: title, Message: message, Type: tipo, Duration: 5000}
}

type ObraDTO struct {
	ID           uuid.UUID `json:"id"`
	Nome         string    `json:"nome"`
	Endereco     string    `json:"endereco,omitempty"`
	Cidade       string    `json:"cidade,omitempty"`
	Estado       string    `json:"estado,omitempty"`
	Responsavel  string    `json:"responsavel,omitempty"`
	DataInicio   *string   `json:"dataInicio,omitempty"`
	DataPrevista *string   `json:"dataPrevista,omitempty"`
	CreatedAt    string    `json:"createdAt"` // ISO 8601
	UpdatedAt    string    `json:"updatedAt"` // ISO 8601
}

type FornecedorDTO struct {
	ID           uuid.UUID `json:"id"`
	RazaoSocial  string    `json:"razaoSocial"`
	NomeFantasia string    `json:"nomeFantasia,omitempty"`
	CNPJ         string    `json:"cnpj,omitempty"`
	Email        string    `json:"email,omitempty"`
	Telefone     string    `json:"telefone,omitempty"`
	Endereco     string    `json:"endereco,omitempty"`
	Cidade       string    `json:"cidade,omitempty"`
	Estado       string    `json:"estado,omitempty"`
	CreatedAt    string    `json:"createdAt"`
	UpdatedAt    string    `json:"updatedAt"`
}

type CentroCustoDTO struct {
	ID             uuid.UUID       `json:"id"`
	ObraID         uuid.UUID       `json:"obraId"`
	Nome           string          `json:"nome"`
	Descricao      string          `json:"descricao,omitempty"`
	BDIPercentual  decimal.Decimal `json:"bdiPercentual"`
	ValorOrcado    decimal.Decimal `json:"valorOrcado"`
	ValorCusto     decimal.Decimal `json:"valorCusto"`
	ValorRealizado decimal.Decimal `json:"valorRealizado"`
	ValorComBDI    decimal.Decimal `json:"valorComBdi"`
	Grupos         []GrupoDTO      `json:"grupos,omitempty"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

type GrupoDTO struct {
	ID             uuid.UUID       `json:"id"`
	CentroCustoID  uuid.UUID       `json:"centroCustoId"`
	Nome           string          `json:"nome"`
	ValorOrcado    decimal.Decimal `json:"valorOrcado"`
	ValorCusto     decimal.Decimal `json:"valorCusto"`
	ValorRealizado decimal.Decimal `json:"valorRealizado"`
	ValorComBDI    decimal.Decimal `json:"valorComBdi"`
	Itens          []ItemCustoDTO  `json:"itens,omitempty"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

type ItemCustoDTO struct {
	ID                  uuid.UUID       `json:"id"`
	GrupoID             uuid.UUID       `json:"grupoId"`
	Descricao           string          `json:"descricao"`
	Unidade             string          `json:"unidade"`
	Quantidade          decimal.Decimal `json:"quantidade"`
	PrecoUnitario       decimal.Decimal `json:"precoUnitario"`
	ValorOrcado         decimal.Decimal `json:"valorOrcado"`
	QuantidadeRealizada decimal.Decimal `json:"quantidadeRealizada"`
	ValorRealizado      decimal.Decimal `json:"valorRealizado"`
	RealizadoPercentual decimal.Decimal `json:"realizadoPercentual"`
	Disponivel          bool            `json:"disponivel"`
	CreatedAt           string          `json:"createdAt"`
	UpdatedAt           string          `json:"updatedAt"`
}

type ParcelaDTO struct {
	ID           uuid.UUID       `json:"id"`
	DataPrevista string          `json:"dataPrevista"`
	Valor        decimal.Decimal `json:"valor"`
	Status       ParcelaStatus   `json:"status"`
	PagaEm       *string         `json:"pagaEm,omitempty"`
}

type PedidoCompraItemDTO struct {
	ID            uuid.UUID       `json:"id"`
	ItemCustoID   uuid.UUID       `json:"itemCustoId"`
	Descricao     string          `json:"descricao,omitempty"`
	Unidade       string          `json:"unidade,omitempty"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	ValorUnitario decimal.Decimal `json:"valorUnitario"`
	ValorTotal    decimal.Decimal `json:"valorTotal"`
}

type PedidoCompraDTO struct {
	ID             uuid.UUID             `json:"id"`
	Numero         string                `json:"numero"`
	ObraID         uuid.UUID             `json:"obraId"`
	ObraNome       string                `json:"obraNome,omitempty"`
	FornecedorID   uuid.UUID             `json:"fornecedorId"`
	FornecedorNome string                `json:"fornecedorNome,omitempty"`
	Status         Status                `json:"status"`
	DataEmissao    string                `json:"dataEmissao"`
	ValorTotal     decimal.Decimal       `json:"valorTotal"`
	Observacoes    string                `json:"observacoes,omitempty"`
	AprovadoPor    string                `json:"aprovadoPor,omitempty"`
	AprovadoEm     *string               `json:"aprovadoEm,omitempty"`
	Itens          []PedidoCompraItemDTO `json:"itens,omitempty"`
	Parcelas       []ParcelaDTO          `json:"parcelas,omitempty"`
	CreatedAt      string                `json:"createdAt"`
	UpdatedAt      string                `json:"updatedAt"`
}

type ItemNegociacaoDTO struct {
	ID                   uuid.UUID       `json:"id"`
	ItemCustoID          *uuid.UUID      `json:"itemCustoId,omitempty"`
	Descricao            string          `json:"descricao"`
	Unidade              string          `json:"unidade,omitempty"`
	Quantidade           decimal.Decimal `json:"quantidade"`
	PrecoUnitario        decimal.Decimal `json:"precoUnitario"`
	QuantidadeMedida     decimal.Decimal `json:"quantidadeJaMedida"`
	QuantidadeDisponivel decimal.Decimal `json:"quantidadeDisponivel"`
	PercentualExecutado  decimal.Decimal `json:"percentualExecutado"`
}

type NegociacaoDTO struct {
	ID             uuid.UUID           `json:"id"`
	Numero         string              `json:"numero"`
	ObraID         uuid.UUID           `json:"obraId"`
	ObraNome       string              `json:"obraNome,omitempty"`
	FornecedorID   uuid.UUID           `json:"fornecedorId"`
	FornecedorNome string              `json:"fornecedorNome,omitempty"`
	Tipo           NegociacaoTipo      `json:"tipo"`
	DataInicio     string              `json:"dataInicio"`
	DataFim        *string             `json:"dataFim,omitempty"`
	ValorTotal     decimal.Decimal     `json:"valorTotal"`
	Observacoes    string              `json:"observacoes,omitempty"`
	Itens          []ItemNegociacaoDTO `json:"itens,omitempty"`
	CreatedAt      string              `json:"createdAt"`
	UpdatedAt      string              `json:"updatedAt"`
}

type MedicaoItemDTO struct {
	ID                   uuid.UUID       `json:"id"`
	ItemNegociacaoID     uuid.UUID       `json:"itemNegociacaoId"`
	Descricao            string          `json:"descricao,omitempty"`
	QuantidadeMedida     decimal.Decimal `json:"quantidadeMedida"`
	QuantidadeJaMedida   decimal.Decimal `json:"quantidadeJaMedida"`
	QuantidadeDisponivel decimal.Decimal `json:"quantidadeDisponivel"`
	PercentualExecutado  decimal.Decimal `json:"percentualExecutado"`
	ValorUnitario        decimal.Decimal `json:"valorUnitario"`
	ValorTotal           decimal.Decimal `json:"valorTotal"`
}

type MedicaoDTO struct {
	ID           uuid.UUID        `json:"id"`
	NegociacaoID uuid.UUID        `json:"negociacaoId"`
	Numero       int              `json:"numero"`
	Status       Status           `json:"status"`
	DataInicio   string           `json:"dataInicio"`
	DataFim      string           `json:"dataFim"`
	Desconto     decimal.Decimal  `json:"desconto"`
	ValorTotal   decimal.Decimal  `json:"valorTotal"`
	Observacoes  string           `json:"observacoes,omitempty"`
	AprovadaPor  string           `json:"aprovadaPor,omitempty"`
	AprovadaEm   *string          `json:"aprovadaEm,omitempty"`
	Itens        []MedicaoItemDTO `json:"itens,omitempty"`
	Parcelas     []ParcelaDTO     `json:"parcelas,omitempty"`
	CreatedAt    string           `json:"createdAt"`
	UpdatedAt    string           `json:"updatedAt"`
}

// NegociacaoReportItemDTO is one row of the contract execution report: a
// measurement item with the percentage accumulated across the chronological
// history of approved medições up to and including its medição
type NegociacaoReportItemDTO struct {
	MedicaoID           uuid.UUID       `json:"medicaoId"`
	MedicaoNumero       int             `json:"medicaoNumero"`
	ItemNegociacaoID    uuid.UUID       `json:"itemNegociacaoId"`
	Descricao           string          `json:"descricao"`
	QuantidadeMedida    decimal.Decimal `json:"quantidadeMedida"`
	PercentualAcumulado decimal.Decimal `json:"percentualAcumulado"`
}

type NegociacaoReportDTO struct {
	Negociacao NegociacaoDTO             `json:"negociacao"`
	Linhas     []NegociacaoReportItemDTO `json:"linhas"`
}

// ContaDTO is one accounts payable/receivable row derived from a parcela
type ContaDTO struct {
	ParcelaID      uuid.UUID       `json:"parcelaId"`
	Origem         string          `json:"origem"` // "pedido_compra" or "medicao"
	OrigemID       uuid.UUID       `json:"origemId"`
	Numero         string          `json:"numero"`
	FornecedorNome string          `json:"fornecedorNome,omitempty"`
	ObraNome       string          `json:"obraNome,omitempty"`
	DataPrevista   string          `json:"dataPrevista"`
	Valor          decimal.Decimal `json:"valor"`
	Status         ParcelaStatus   `json:"status"`
}

type FinanceiroResumoDTO struct {
	TotalPendente decimal.Decimal `json:"totalPendente"`
	TotalPago     decimal.Decimal `json:"totalPago"`
	Total         decimal.Decimal `json:"total"`
	Contas        []ContaDTO      `json:"contas"`
}

// ============================================================================
// Requests
// ============================================================================

type CreateObraRequest struct {
	Nome         string     `json:"nome" validate:"required,max=200"`
	Endereco     string     `json:"endereco,omitempty" validate:"max=500"`
	Cidade       string     `json:"cidade,omitempty" validate:"max=100"`
	Estado       string     `json:"estado,omitempty" validate:"omitempty,len=2"`
	Responsavel  string     `json:"responsavel,omitempty" validate:"max=200"`
	DataInicio   *time.Time `json:"dataInicio,omitempty"`
	DataPrevista *time.Time `json:"dataPrevista,omitempty"`
}

type UpdateObraRequest = CreateObraRequest

type CreateFornecedorRequest struct {
	RazaoSocial  string `json:"razaoSocial" validate:"required,max=200"`
	NomeFantasia string `json:"nomeFantasia,omitempty" validate:"max=200"`
	CNPJ         string `json:"cnpj,omitempty" validate:"max=18"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Telefone     string `json:"telefone,omitempty" validate:"max=50"`
	Endereco     string `json:"endereco,omitempty" validate:"max=500"`
	Cidade       string `json:"cidade,omitempty" validate:"max=100"`
	Estado       string `json:"estado,omitempty" validate:"omitempty,len=2"`
}

type UpdateFornecedorRequest = CreateFornecedorRequest

type CreateCentroCustoRequest struct {
	ObraID        uuid.UUID       `json:"obraId" validate:"required"`
	Nome          string          `json:"nome" validate:"required,max=200"`
	Descricao     string          `json:"descricao,omitempty"`
	BDIPercentual decimal.Decimal `json:"bdiPercentual"`
}

type UpdateCentroCustoRequest struct {
	Nome          string          `json:"nome" validate:"required,max=200"`
	Descricao     string          `json:"descricao,omitempty"`
	BDIPercentual decimal.Decimal `json:"bdiPercentual"`
}

type CreateGrupoRequest struct {
	Nome string `json:"nome" validate:"required,max=200"`
}

type UpdateGrupoRequest = CreateGrupoRequest

type CreateItemCustoRequest struct {
	Descricao     string          `json:"descricao" validate:"required,max=500"`
	Unidade       string          `json:"unidade" validate:"required,max=20"`
	Quantidade    decimal.Decimal `json:"quantidade" validate:"required"`
	PrecoUnitario decimal.Decimal `json:"precoUnitario" validate:"required"`
}

type UpdateItemCustoRequest = CreateItemCustoRequest

type ParcelaRequest struct {
	DataPrevista time.Time       `json:"dataPrevista" validate:"required"`
	Valor        decimal.Decimal `json:"valor" validate:"required"`
}

type PedidoCompraItemRequest struct {
	ItemCustoID   uuid.UUID       `json:"itemCustoId" validate:"required"`
	Quantidade    decimal.Decimal `json:"quantidade" validate:"required"`
	ValorUnitario decimal.Decimal `json:"valorUnitario" validate:"required"`
}

type CreatePedidoCompraRequest struct {
	ObraID       uuid.UUID                 `json:"obraId" validate:"required"`
	FornecedorID uuid.UUID                 `json:"fornecedorId" validate:"required"`
	DataEmissao  time.Time                 `json:"dataEmissao" validate:"required"`
	Observacoes  string                    `json:"observacoes,omitempty"`
	Itens        []PedidoCompraItemRequest `json:"itens" validate:"required,min=1,dive"`
	Parcelas     []ParcelaRequest          `json:"parcelas,omitempty" validate:"dive"`
}

type UpdatePedidoCompraRequest = CreatePedidoCompraRequest

type ApproveRequest struct {
	AprovadoPor string `json:"aprovadoPor,omitempty" validate:"max=200"`
}

type ItemNegociacaoRequest struct {
	ItemCustoID   *uuid.UUID      `json:"itemCustoId,omitempty"`
	Descricao     string          `json:"descricao" validate:"required,max=500"`
	Unidade       string          `json:"unidade,omitempty" validate:"max=20"`
	Quantidade    decimal.Decimal `json:"quantidade" validate:"required"`
	PrecoUnitario decimal.Decimal `json:"precoUnitario" validate:"required"`
}

type CreateNegociacaoRequest struct {
	ObraID       uuid.UUID               `json:"obraId" validate:"required"`
	FornecedorID uuid.UUID               `json:"fornecedorId" validate:"required"`
	Tipo         NegociacaoTipo          `json:"tipo" validate:"required,oneof=servico locacao"`
	DataInicio   time.Time               `json:"dataInicio" validate:"required"`
	DataFim      *time.Time              `json:"dataFim,omitempty"`
	Observacoes  string                  `json:"observacoes,omitempty"`
	Itens        []ItemNegociacaoRequest `json:"itens" validate:"required,min=1,dive"`
}

type UpdateNegociacaoRequest = CreateNegociacaoRequest

type MedicaoItemRequest struct {
	ItemNegociacaoID uuid.UUID       `json:"itemNegociacaoId" validate:"required"`
	QuantidadeMedida decimal.Decimal `json:"quantidadeMedida" validate:"required"`
}

type CreateMedicaoRequest struct {
	NegociacaoID uuid.UUID            `json:"negociacaoId" validate:"required"`
	DataInicio   time.Time            `json:"dataInicio" validate:"required"`
	DataFim      time.Time            `json:"dataFim" validate:"required"`
	Desconto     decimal.Decimal      `json:"desconto"`
	Observacoes  string               `json:"observacoes,omitempty"`
	Itens        []MedicaoItemRequest `json:"itens" validate:"required,min=1,dive"`
	Parcelas     []ParcelaRequest     `json:"parcelas,omitempty" validate:"dive"`
}

type UpdateMedicaoRequest = CreateMedicaoRequest

// MutationResponse pairs the mutated resource with the feedback tuple the
// client displays
type MutationResponse struct {
	Data     interface{} `json:"data,omitempty"`
	Feedback Feedback    `json:"feedback"`
}
