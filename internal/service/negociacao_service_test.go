package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegociacaoCreate(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "33.444.555/0001-66")
	svc := newNegociacaoService(db)

	negociacao := createTestNegociacao(t, svc, obra, fornecedor, &item.ID)

	assert.Equal(t, fmt.Sprintf("NEG-%d-0001", testDate(1).Year()), negociacao.Numero)
	assert.Equal(t, domain.NegociacaoServico, negociacao.Tipo)
	assert.True(t, negociacao.ValorTotal.Equal(dec("1000")))
	require.Len(t, negociacao.Itens, 1)
	assert.True(t, negociacao.Itens[0].QuantidadeDisponivel.Equal(dec("100")))
}

func TestNegociacaoCreateTipoInvalido(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, _ := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "33.444.555/0001-66")
	svc := newNegociacaoService(db)

	_, err := svc.Create(context.Background(), &domain.CreateNegociacaoRequest{
		ObraID:       obra.ID,
		FornecedorID: fornecedor.ID,
		Tipo:         domain.NegociacaoTipo("comodato"),
		DataInicio:   testDate(1),
		Itens: []domain.ItemNegociacaoRequest{
			{Descricao: "Andaime fachadeiro", Quantidade: dec("10"), PrecoUnitario: dec("5")},
		},
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestNegociacaoUpdatePreservaMedido(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "33.444.555/0001-66")
	svc := newNegociacaoService(db)
	medicaoSvc := newMedicaoService(db)

	negociacao := createTestNegociacao(t, svc, obra, fornecedor, &item.ID)
	medicao := createTestMedicao(t, medicaoSvc, negociacao.ID, negociacao.Itens[0].ID, "30")
	_, _, err := medicaoSvc.Approve(context.Background(), medicao.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	// Raising the contracted quantity of the same line keeps its history.
	atualizada, err := svc.Update(context.Background(), negociacao.ID, &domain.UpdateNegociacaoRequest{
		ObraID:       obra.ID,
		FornecedorID: fornecedor.ID,
		Tipo:         domain.NegociacaoServico,
		DataInicio:   testDate(1),
		Itens: []domain.ItemNegociacaoRequest{
			{ItemCustoID: &item.ID, Descricao: "Execução de alvenaria", Unidade: "m2", Quantidade: dec("150"), PrecoUnitario: dec("10")},
		},
	})
	require.NoError(t, err)
	require.Len(t, atualizada.Itens, 1)
	assert.True(t, atualizada.Itens[0].QuantidadeMedida.Equal(dec("30")))
	assert.True(t, atualizada.Itens[0].QuantidadeDisponivel.Equal(dec("120")))
	assert.True(t, atualizada.ValorTotal.Equal(dec("1500")))
}

func TestNegociacaoUpdateNaoReduzAbaixoDoMedido(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "33.444.555/0001-66")
	svc := newNegociacaoService(db)
	medicaoSvc := newMedicaoService(db)

	negociacao := createTestNegociacao(t, svc, obra, fornecedor, &item.ID)
	medicao := createTestMedicao(t, medicaoSvc, negociacao.ID, negociacao.Itens[0].ID, "30")
	_, _, err := medicaoSvc.Approve(context.Background(), medicao.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), negociacao.ID, &domain.UpdateNegociacaoRequest{
		ObraID:       obra.ID,
		FornecedorID: fornecedor.ID,
		Tipo:         domain.NegociacaoServico,
		DataInicio:   testDate(1),
		Itens: []domain.ItemNegociacaoRequest{
			{ItemCustoID: &item.ID, Descricao: "Execução de alvenaria", Unidade: "m2", Quantidade: dec("20"), PrecoUnitario: dec("10")},
		},
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestNegociacaoUpdateNaoRemoveItemMedido(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "33.444.555/0001-66")
	svc := newNegociacaoService(db)
	medicaoSvc := newMedicaoService(db)

	negociacao := createTestNegociacao(t, svc, obra, fornecedor, &item.ID)
	medicao := createTestMedicao(t, medicaoSvc, negociacao.ID, negociacao.Itens[0].ID, "30")
	_, _, err := medicaoSvc.Approve(context.Background(), medicao.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), negociacao.ID, &domain.UpdateNegociacaoRequest{
		ObraID:       obra.ID,
		FornecedorID: fornecedor.ID,
		Tipo:         domain.NegociacaoServico,
		DataInicio:   testDate(1),
		Itens: []domain.ItemNegociacaoRequest{
			{Descricao: "Linha totalmente nova", Quantidade: dec("10"), PrecoUnitario: dec("5")},
		},
	})
	assert.ErrorIs(t, err, service.ErrPossuiDependencias)
}

func TestNegociacaoDeleteComMedicoesFalha(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "33.444.555/0001-66")
	svc := newNegociacaoService(db)
	medicaoSvc := newMedicaoService(db)

	negociacao := createTestNegociacao(t, svc, obra, fornecedor, &item.ID)
	createTestMedicao(t, medicaoSvc, negociacao.ID, negociacao.Itens[0].ID, "30")

	err := svc.Delete(context.Background(), negociacao.ID)
	assert.ErrorIs(t, err, service.ErrPossuiDependencias)
}

func TestNegociacaoDeleteSemMedicoes(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "33.444.555/0001-66")
	svc := newNegociacaoService(db)

	negociacao := createTestNegociacao(t, svc, obra, fornecedor, &item.ID)

	require.NoError(t, svc.Delete(context.Background(), negociacao.ID))

	_, err := svc.GetByID(context.Background(), negociacao.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestNegociacaoNumeroAposRemocao(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "33.444.555/0001-66")
	svc := newNegociacaoService(db)

	primeira := createTestNegociacao(t, svc, obra, fornecedor, &item.ID)
	createTestNegociacao(t, svc, obra, fornecedor, &item.ID)

	require.NoError(t, svc.Delete(context.Background(), primeira.ID))

	// The sequence continues past the highest number ever issued, so the
	// new negociação cannot collide with the surviving NEG-...-0002.
	terceira := createTestNegociacao(t, svc, obra, fornecedor, &item.ID)
	assert.Equal(t, fmt.Sprintf("NEG-%d-0003", testDate(1).Year()), terceira.Numero)
}

func TestNegociacaoReportAcumulaCronologicamente(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "33.444.555/0001-66")
	svc := newNegociacaoService(db)
	medicaoSvc := newMedicaoService(db)

	negociacao := createTestNegociacao(t, svc, obra, fornecedor, &item.ID)
	itemNeg := negociacao.Itens[0].ID

	primeira := createTestMedicao(t, medicaoSvc, negociacao.ID, itemNeg, "20")
	segunda := createTestMedicao(t, medicaoSvc, negociacao.ID, itemNeg, "30")
	// A third medição stays pending and must not accrue.
	createTestMedicao(t, medicaoSvc, negociacao.ID, itemNeg, "10")

	_, _, err := medicaoSvc.Approve(context.Background(), primeira.ID, &domain.ApproveRequest{})
	require.NoError(t, err)
	_, _, err = medicaoSvc.Approve(context.Background(), segunda.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	report, err := svc.Report(context.Background(), negociacao.ID)
	require.NoError(t, err)
	require.Len(t, report.Linhas, 3)

	assert.Equal(t, 1, report.Linhas[0].MedicaoNumero)
	assert.True(t, report.Linhas[0].PercentualAcumulado.Equal(dec("20")))
	assert.Equal(t, 2, report.Linhas[1].MedicaoNumero)
	assert.True(t, report.Linhas[1].PercentualAcumulado.Equal(dec("50")))
	// The pending line reports the running total without adding to it.
	assert.Equal(t, 3, report.Linhas[2].MedicaoNumero)
	assert.True(t, report.Linhas[2].PercentualAcumulado.Equal(dec("50")))
	assert.Equal(t, "Execução de alvenaria", report.Linhas[0].Descricao)
}
