package service_test

import (
	"context"
	"testing"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/repository"
	"github.com/construtivo/construtivo-api/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newNegociacaoService(db *gorm.DB) *service.NegociacaoService {
	return service.NewNegociacaoService(
		repository.NewNegociacaoRepository(db),
		repository.NewMedicaoRepository(db),
		repository.NewItemCustoRepository(db),
		repository.NewObraRepository(db),
		repository.NewFornecedorRepository(db),
		testLogger(),
		db,
	)
}

func newMedicaoService(db *gorm.DB) *service.MedicaoService {
	return service.NewMedicaoService(
		repository.NewMedicaoRepository(db),
		repository.NewNegociacaoRepository(db),
		testLogger(),
		db,
	)
}

// createTestNegociacao contracts 100 units at price 10 of a single line bound
// to the given item de custo (nil for an unbound line).
func createTestNegociacao(t *testing.T, svc *service.NegociacaoService, obra *domain.Obra, fornecedor *domain.Fornecedor, itemCustoID *uuid.UUID) *domain.NegociacaoDTO {
	negociacao, err := svc.Create(context.Background(), &domain.CreateNegociacaoRequest{
		ObraID:       obra.ID,
		FornecedorID: fornecedor.ID,
		Tipo:         domain.NegociacaoServico,
		DataInicio:   testDate(1),
		Itens: []domain.ItemNegociacaoRequest{
			{ItemCustoID: itemCustoID, Descricao: "Execução de alvenaria", Unidade: "m2", Quantidade: dec("100"), PrecoUnitario: dec("10")},
		},
	})
	require.NoError(t, err)
	return negociacao
}

func createTestMedicao(t *testing.T, svc *service.MedicaoService, negociacaoID, itemNegociacaoID uuid.UUID, quantidade string) *domain.MedicaoDTO {
	medicao, err := svc.Create(context.Background(), &domain.CreateMedicaoRequest{
		NegociacaoID: negociacaoID,
		DataInicio:   testDate(1),
		DataFim:      testDate(15),
		Itens: []domain.MedicaoItemRequest{
			{ItemNegociacaoID: itemNegociacaoID, QuantidadeMedida: dec(quantidade)},
		},
	})
	require.NoError(t, err)
	return medicao
}

func TestMedicaoCreate(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "22.333.444/0001-55")
	negociacao := createTestNegociacao(t, newNegociacaoService(db), obra, fornecedor, &item.ID)
	svc := newMedicaoService(db)

	medicao := createTestMedicao(t, svc, negociacao.ID, negociacao.Itens[0].ID, "30")

	assert.Equal(t, 1, medicao.Numero)
	assert.Equal(t, domain.StatusPendente, medicao.Status)
	assert.True(t, medicao.ValorTotal.Equal(dec("300")))
	require.Len(t, medicao.Itens, 1)
	// Unit value is snapshotted from the contracted line.
	assert.True(t, medicao.Itens[0].ValorUnitario.Equal(dec("10")))

	segunda := createTestMedicao(t, svc, negociacao.ID, negociacao.Itens[0].ID, "20")
	assert.Equal(t, 2, segunda.Numero)
}

func TestMedicaoCreateComDesconto(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "22.333.444/0001-55")
	negociacao := createTestNegociacao(t, newNegociacaoService(db), obra, fornecedor, &item.ID)
	svc := newMedicaoService(db)

	medicao, err := svc.Create(context.Background(), &domain.CreateMedicaoRequest{
		NegociacaoID: negociacao.ID,
		DataInicio:   testDate(1),
		DataFim:      testDate(15),
		Desconto:     dec("50"),
		Itens: []domain.MedicaoItemRequest{
			{ItemNegociacaoID: negociacao.Itens[0].ID, QuantidadeMedida: dec("30")},
		},
		Parcelas: []domain.ParcelaRequest{
			{DataPrevista: testDate(30), Valor: dec("250")},
		},
	})
	require.NoError(t, err)
	assert.True(t, medicao.ValorTotal.Equal(dec("250")))
	require.Len(t, medicao.Parcelas, 1)
}

func TestMedicaoCreateExcedeContratado(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "22.333.444/0001-55")
	negociacao := createTestNegociacao(t, newNegociacaoService(db), obra, fornecedor, &item.ID)
	svc := newMedicaoService(db)

	_, err := svc.Create(context.Background(), &domain.CreateMedicaoRequest{
		NegociacaoID: negociacao.ID,
		DataInicio:   testDate(1),
		DataFim:      testDate(15),
		Itens: []domain.MedicaoItemRequest{
			{ItemNegociacaoID: negociacao.Itens[0].ID, QuantidadeMedida: dec("120")},
		},
	})
	assert.ErrorIs(t, err, service.ErrOrcamentoExcedido)
}

func TestMedicaoCreatePeriodoInvalido(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "22.333.444/0001-55")
	negociacao := createTestNegociacao(t, newNegociacaoService(db), obra, fornecedor, &item.ID)
	svc := newMedicaoService(db)

	_, err := svc.Create(context.Background(), &domain.CreateMedicaoRequest{
		NegociacaoID: negociacao.ID,
		DataInicio:   testDate(15),
		DataFim:      testDate(1),
		Itens: []domain.MedicaoItemRequest{
			{ItemNegociacaoID: negociacao.Itens[0].ID, QuantidadeMedida: dec("10")},
		},
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestMedicaoApproveAcumulaNoContratoENoOrcamento(t *testing.T) {
	db := setupTestDB(t)
	obra, _, grupo, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "22.333.444/0001-55")
	negociacao := createTestNegociacao(t, newNegociacaoService(db), obra, fornecedor, &item.ID)
	svc := newMedicaoService(db)

	medicao := createTestMedicao(t, svc, negociacao.ID, negociacao.Itens[0].ID, "30")

	aprovada, feedback, err := svc.Approve(context.Background(), medicao.ID, &domain.ApproveRequest{AprovadoPor: "Carlos Pereira"})
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackSuccess, feedback.Type)
	assert.Equal(t, domain.StatusAprovado, aprovada.Status)

	var contratado domain.ItemNegociacao
	require.NoError(t, db.First(&contratado, "id = ?", negociacao.Itens[0].ID).Error)
	assert.True(t, contratado.QuantidadeMedida.Equal(dec("30")))

	// Bound budget item accrues the same quantity.
	var atualItem domain.ItemCusto
	require.NoError(t, db.First(&atualItem, "id = ?", item.ID).Error)
	assert.True(t, atualItem.QuantidadeRealizada.Equal(dec("30")))
	assert.True(t, atualItem.ValorRealizado.Equal(dec("300")))

	var atualGrupo domain.Grupo
	require.NoError(t, db.First(&atualGrupo, "id = ?", grupo.ID).Error)
	assert.True(t, atualGrupo.ValorRealizado.Equal(dec("300")))
}

func TestMedicaoApproveSemVinculoNaoTocaOrcamento(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "22.333.444/0001-55")
	negociacao := createTestNegociacao(t, newNegociacaoService(db), obra, fornecedor, nil)
	svc := newMedicaoService(db)

	medicao := createTestMedicao(t, svc, negociacao.ID, negociacao.Itens[0].ID, "30")

	_, _, err := svc.Approve(context.Background(), medicao.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	var atual domain.ItemCusto
	require.NoError(t, db.First(&atual, "id = ?", item.ID).Error)
	assert.True(t, atual.QuantidadeRealizada.IsZero())
}

func TestMedicaoApproveIdempotente(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "22.333.444/0001-55")
	negociacao := createTestNegociacao(t, newNegociacaoService(db), obra, fornecedor, &item.ID)
	svc := newMedicaoService(db)

	medicao := createTestMedicao(t, svc, negociacao.ID, negociacao.Itens[0].ID, "30")
	_, _, err := svc.Approve(context.Background(), medicao.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	_, feedback, err := svc.Approve(context.Background(), medicao.ID, &domain.ApproveRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackWarning, feedback.Type)
	assert.Equal(t, "Esta medição já está aprovada", feedback.Message)

	var contratado domain.ItemNegociacao
	require.NoError(t, db.First(&contratado, "id = ?", negociacao.Itens[0].ID).Error)
	assert.True(t, contratado.QuantidadeMedida.Equal(dec("30")))
}

func TestMedicaoApproveExcedeSaldoContratado(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "22.333.444/0001-55")
	negociacao := createTestNegociacao(t, newNegociacaoService(db), obra, fornecedor, &item.ID)
	svc := newMedicaoService(db)

	// Both pending medições fit individually but not together; the second
	// approval must fail on the re-check inside the transaction.
	primeira := createTestMedicao(t, svc, negociacao.ID, negociacao.Itens[0].ID, "70")
	segunda := createTestMedicao(t, svc, negociacao.ID, negociacao.Itens[0].ID, "70")

	_, _, err := svc.Approve(context.Background(), primeira.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	_, _, err = svc.Approve(context.Background(), segunda.ID, &domain.ApproveRequest{})
	assert.ErrorIs(t, err, service.ErrOrcamentoExcedido)

	var contratado domain.ItemNegociacao
	require.NoError(t, db.First(&contratado, "id = ?", negociacao.Itens[0].ID).Error)
	assert.True(t, contratado.QuantidadeMedida.Equal(dec("70")))
}

func TestMedicaoUpdateAprovadaFalha(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "22.333.444/0001-55")
	negociacao := createTestNegociacao(t, newNegociacaoService(db), obra, fornecedor, &item.ID)
	svc := newMedicaoService(db)

	medicao := createTestMedicao(t, svc, negociacao.ID, negociacao.Itens[0].ID, "30")
	_, _, err := svc.Approve(context.Background(), medicao.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), medicao.ID, &domain.UpdateMedicaoRequest{
		NegociacaoID: negociacao.ID,
		DataInicio:   testDate(1),
		DataFim:      testDate(20),
		Itens: []domain.MedicaoItemRequest{
			{ItemNegociacaoID: negociacao.Itens[0].ID, QuantidadeMedida: dec("10")},
		},
	})
	assert.ErrorIs(t, err, service.ErrMedicaoJaAprovada)
}

func TestMedicaoDeleteAprovadaEstorna(t *testing.T) {
	db := setupTestDB(t)
	obra, _, grupo, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "22.333.444/0001-55")
	negociacao := createTestNegociacao(t, newNegociacaoService(db), obra, fornecedor, &item.ID)
	svc := newMedicaoService(db)

	medicao := createTestMedicao(t, svc, negociacao.ID, negociacao.Itens[0].ID, "30")
	_, _, err := svc.Approve(context.Background(), medicao.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	feedback, err := svc.Delete(context.Background(), medicao.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackSuccess, feedback.Type)

	var contratado domain.ItemNegociacao
	require.NoError(t, db.First(&contratado, "id = ?", negociacao.Itens[0].ID).Error)
	assert.True(t, contratado.QuantidadeMedida.IsZero())

	var atualItem domain.ItemCusto
	require.NoError(t, db.First(&atualItem, "id = ?", item.ID).Error)
	assert.True(t, atualItem.QuantidadeRealizada.IsZero())
	assert.True(t, atualItem.ValorRealizado.IsZero())

	var atualGrupo domain.Grupo
	require.NoError(t, db.First(&atualGrupo, "id = ?", grupo.ID).Error)
	assert.True(t, atualGrupo.ValorRealizado.IsZero())

	_, err = svc.GetByID(context.Background(), medicao.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestMedicaoListByNegociacao(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "22.333.444/0001-55")
	negociacao := createTestNegociacao(t, newNegociacaoService(db), obra, fornecedor, &item.ID)
	svc := newMedicaoService(db)

	createTestMedicao(t, svc, negociacao.ID, negociacao.Itens[0].ID, "10")
	createTestMedicao(t, svc, negociacao.ID, negociacao.Itens[0].ID, "20")

	medicoes, err := svc.ListByNegociacao(context.Background(), negociacao.ID)
	require.NoError(t, err)
	require.Len(t, medicoes, 2)
	assert.Equal(t, 1, medicoes[0].Numero)
	assert.Equal(t, 2, medicoes[1].Numero)
}
