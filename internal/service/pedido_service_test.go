package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/repository"
	"github.com/construtivo/construtivo-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPedidoService(db *gorm.DB) *service.PedidoService {
	return service.NewPedidoService(
		repository.NewPedidoRepository(db),
		repository.NewItemCustoRepository(db),
		repository.NewObraRepository(db),
		repository.NewFornecedorRepository(db),
		testLogger(),
		db,
	)
}

func createTestPedido(t *testing.T, svc *service.PedidoService, obra *domain.Obra, fornecedor *domain.Fornecedor, item *domain.ItemCusto, quantidade string) *domain.PedidoCompraDTO {
	pedido, err := svc.Create(context.Background(), &domain.CreatePedidoCompraRequest{
		ObraID:       obra.ID,
		FornecedorID: fornecedor.ID,
		DataEmissao:  testDate(1),
		Itens: []domain.PedidoCompraItemRequest{
			{ItemCustoID: item.ID, Quantidade: dec(quantidade), ValorUnitario: dec("10")},
		},
	})
	require.NoError(t, err)
	return pedido
}

func TestPedidoCreate(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	pedido := createTestPedido(t, svc, obra, fornecedor, item, "40")

	assert.Equal(t, fmt.Sprintf("PC-%d-0001", testDate(1).Year()), pedido.Numero)
	assert.Equal(t, domain.StatusPendente, pedido.Status)
	assert.True(t, pedido.ValorTotal.Equal(dec("400")))
	require.Len(t, pedido.Itens, 1)
	assert.Equal(t, "Concreto usinado FCK 30", pedido.Itens[0].Descricao)

	// Creation alone must not touch the budget ledger.
	var atual domain.ItemCusto
	require.NoError(t, db.First(&atual, "id = ?", item.ID).Error)
	assert.True(t, atual.QuantidadeRealizada.IsZero())
}

func TestPedidoNumeroSequencial(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	primeiro := createTestPedido(t, svc, obra, fornecedor, item, "10")
	segundo := createTestPedido(t, svc, obra, fornecedor, item, "10")

	year := testDate(1).Year()
	assert.Equal(t, fmt.Sprintf("PC-%d-0001", year), primeiro.Numero)
	assert.Equal(t, fmt.Sprintf("PC-%d-0002", year), segundo.Numero)
}

func TestPedidoNumeroAposRemocao(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	primeiro := createTestPedido(t, svc, obra, fornecedor, item, "10")
	createTestPedido(t, svc, obra, fornecedor, item, "10")

	_, err := svc.Delete(context.Background(), primeiro.ID)
	require.NoError(t, err)

	// The sequence continues past the highest number ever issued, so the
	// new pedido cannot collide with the surviving PC-...-0002.
	terceiro := createTestPedido(t, svc, obra, fornecedor, item, "10")
	assert.Equal(t, fmt.Sprintf("PC-%d-0003", testDate(1).Year()), terceiro.Numero)
}

func TestPedidoCreateParcelasDivergem(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	_, err := svc.Create(context.Background(), &domain.CreatePedidoCompraRequest{
		ObraID:       obra.ID,
		FornecedorID: fornecedor.ID,
		DataEmissao:  testDate(1),
		Itens: []domain.PedidoCompraItemRequest{
			{ItemCustoID: item.ID, Quantidade: dec("40"), ValorUnitario: dec("10")},
		},
		Parcelas: []domain.ParcelaRequest{
			{DataPrevista: testDate(10), Valor: dec("100")},
			{DataPrevista: testDate(20), Valor: dec("100")},
		},
	})
	assert.ErrorIs(t, err, service.ErrParcelasDivergem)
}

func TestPedidoApproveConsomeOrcamento(t *testing.T) {
	db := setupTestDB(t)
	obra, centro, grupo, item := createTestBudget(t, db, "10")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	pedido := createTestPedido(t, svc, obra, fornecedor, item, "40")

	aprovado, feedback, err := svc.Approve(context.Background(), pedido.ID, &domain.ApproveRequest{AprovadoPor: "Maria Souza"})
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackSuccess, feedback.Type)
	assert.Equal(t, domain.StatusAprovado, aprovado.Status)
	assert.Equal(t, "Maria Souza", aprovado.AprovadoPor)
	require.NotNil(t, aprovado.AprovadoEm)

	var atualItem domain.ItemCusto
	require.NoError(t, db.First(&atualItem, "id = ?", item.ID).Error)
	assert.True(t, atualItem.QuantidadeRealizada.Equal(dec("40")))
	assert.True(t, atualItem.ValorRealizado.Equal(dec("400")))
	assert.Equal(t, 1, atualItem.Version)

	// Aggregates are recomputed in the same transaction.
	var atualGrupo domain.Grupo
	require.NoError(t, db.First(&atualGrupo, "id = ?", grupo.ID).Error)
	assert.True(t, atualGrupo.ValorOrcado.Equal(dec("1000")))
	assert.True(t, atualGrupo.ValorRealizado.Equal(dec("400")))
	assert.True(t, atualGrupo.ValorCusto.Equal(dec("1000")))
	assert.True(t, atualGrupo.ValorComBDI.Equal(dec("1100")))

	var atualCentro domain.CentroCusto
	require.NoError(t, db.First(&atualCentro, "id = ?", centro.ID).Error)
	assert.True(t, atualCentro.ValorOrcado.Equal(dec("1000")))
	assert.True(t, atualCentro.ValorRealizado.Equal(dec("400")))
	assert.True(t, atualCentro.ValorComBDI.Equal(dec("1100")))
}

func TestPedidoApproveIdempotente(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	pedido := createTestPedido(t, svc, obra, fornecedor, item, "40")

	_, _, err := svc.Approve(context.Background(), pedido.ID, &domain.ApproveRequest{AprovadoPor: "Maria Souza"})
	require.NoError(t, err)

	_, feedback, err := svc.Approve(context.Background(), pedido.ID, &domain.ApproveRequest{AprovadoPor: "João Lima"})
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackWarning, feedback.Type)
	assert.Equal(t, "Este pedido já está aprovado", feedback.Message)

	// The second call must not consume the budget again.
	var atual domain.ItemCusto
	require.NoError(t, db.First(&atual, "id = ?", item.ID).Error)
	assert.True(t, atual.QuantidadeRealizada.Equal(dec("40")))
}

func TestPedidoApproveExcedeOrcamento(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	pedido := createTestPedido(t, svc, obra, fornecedor, item, "150")

	_, _, err := svc.Approve(context.Background(), pedido.ID, &domain.ApproveRequest{AprovadoPor: "Maria Souza"})
	assert.ErrorIs(t, err, service.ErrOrcamentoExcedido)

	// The rejected approval leaves everything untouched.
	var atual domain.ItemCusto
	require.NoError(t, db.First(&atual, "id = ?", item.ID).Error)
	assert.True(t, atual.QuantidadeRealizada.IsZero())

	depois, err := svc.GetByID(context.Background(), pedido.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendente, depois.Status)
}

func TestPedidoApproveItemEsgotado(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	esgotador := createTestPedido(t, svc, obra, fornecedor, item, "100")
	_, _, err := svc.Approve(context.Background(), esgotador.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	segundo := createTestPedido(t, svc, obra, fornecedor, item, "1")
	_, _, err = svc.Approve(context.Background(), segundo.ID, &domain.ApproveRequest{})
	assert.ErrorIs(t, err, service.ErrItemIndisponivel)
}

func TestPedidoDeleteEstornaRealizacao(t *testing.T) {
	db := setupTestDB(t)
	obra, centro, grupo, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	pedido := createTestPedido(t, svc, obra, fornecedor, item, "40")
	_, _, err := svc.Approve(context.Background(), pedido.ID, &domain.ApproveRequest{AprovadoPor: "Maria Souza"})
	require.NoError(t, err)

	feedback, err := svc.Delete(context.Background(), pedido.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackSuccess, feedback.Type)

	var atualItem domain.ItemCusto
	require.NoError(t, db.First(&atualItem, "id = ?", item.ID).Error)
	assert.True(t, atualItem.QuantidadeRealizada.IsZero())
	assert.True(t, atualItem.ValorRealizado.IsZero())

	var atualGrupo domain.Grupo
	require.NoError(t, db.First(&atualGrupo, "id = ?", grupo.ID).Error)
	assert.True(t, atualGrupo.ValorRealizado.IsZero())
	assert.True(t, atualGrupo.ValorCusto.IsZero())

	var atualCentro domain.CentroCusto
	require.NoError(t, db.First(&atualCentro, "id = ?", centro.ID).Error)
	assert.True(t, atualCentro.ValorRealizado.IsZero())

	_, err = svc.GetByID(context.Background(), pedido.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	var parcelas int64
	require.NoError(t, db.Model(&domain.ParcelaPedidoCompra{}).Where("pedido_compra_id = ?", pedido.ID).Count(&parcelas).Error)
	assert.Zero(t, parcelas)
}

func TestPedidoDeletePendenteNaoEstorna(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	pedido := createTestPedido(t, svc, obra, fornecedor, item, "40")

	_, err := svc.Delete(context.Background(), pedido.ID)
	require.NoError(t, err)

	var atual domain.ItemCusto
	require.NoError(t, db.First(&atual, "id = ?", item.ID).Error)
	assert.True(t, atual.QuantidadeRealizada.IsZero())
	assert.Equal(t, 0, atual.Version)
}

func TestPedidoUpdateAprovadoFalha(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	pedido := createTestPedido(t, svc, obra, fornecedor, item, "40")
	_, _, err := svc.Approve(context.Background(), pedido.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), pedido.ID, &domain.UpdatePedidoCompraRequest{
		ObraID:       obra.ID,
		FornecedorID: fornecedor.ID,
		DataEmissao:  testDate(2),
		Itens: []domain.PedidoCompraItemRequest{
			{ItemCustoID: item.ID, Quantidade: dec("10"), ValorUnitario: dec("10")},
		},
	})
	assert.ErrorIs(t, err, service.ErrPedidoJaAprovado)
}

func TestPedidoUpdatePendente(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	pedido := createTestPedido(t, svc, obra, fornecedor, item, "40")

	atualizado, err := svc.Update(context.Background(), pedido.ID, &domain.UpdatePedidoCompraRequest{
		ObraID:       obra.ID,
		FornecedorID: fornecedor.ID,
		DataEmissao:  testDate(2),
		Observacoes:  "entrega parcial",
		Itens: []domain.PedidoCompraItemRequest{
			{ItemCustoID: item.ID, Quantidade: dec("25"), ValorUnitario: dec("12")},
		},
		Parcelas: []domain.ParcelaRequest{
			{DataPrevista: testDate(15), Valor: dec("300")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, pedido.Numero, atualizado.Numero)
	assert.True(t, atualizado.ValorTotal.Equal(dec("300")))
	assert.Equal(t, "entrega parcial", atualizado.Observacoes)
	require.Len(t, atualizado.Itens, 1)
	assert.True(t, atualizado.Itens[0].Quantidade.Equal(dec("25")))
	require.Len(t, atualizado.Parcelas, 1)
}

func TestPedidoListFiltraPorStatus(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	primeiro := createTestPedido(t, svc, obra, fornecedor, item, "10")
	createTestPedido(t, svc, obra, fornecedor, item, "20")
	_, _, err := svc.Approve(context.Background(), primeiro.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	aprovados, err := svc.List(context.Background(), nil, nil, domain.StatusAprovado)
	require.NoError(t, err)
	require.Len(t, aprovados, 1)
	assert.Equal(t, primeiro.ID, aprovados[0].ID)

	todos, err := svc.List(context.Background(), &obra.ID, nil, "")
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestPedidoVersionAvancaACadaEscrita(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	svc := newPedidoService(db)

	pedido := createTestPedido(t, svc, obra, fornecedor, item, "40")

	_, _, err := svc.Approve(context.Background(), pedido.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	var depoisAprovar domain.ItemCusto
	require.NoError(t, db.First(&depoisAprovar, "id = ?", item.ID).Error)
	assert.Equal(t, 1, depoisAprovar.Version)

	_, err = svc.Delete(context.Background(), pedido.ID)
	require.NoError(t, err)

	var depoisRemover domain.ItemCusto
	require.NoError(t, db.First(&depoisRemover, "id = ?", item.ID).Error)
	assert.Equal(t, 2, depoisRemover.Version)
}
