package service_test

import (
	"context"
	"testing"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/repository"
	"github.com/construtivo/construtivo-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOrcamentoService(db *gorm.DB) *service.OrcamentoService {
	return service.NewOrcamentoService(
		repository.NewCentroCustoRepository(db),
		repository.NewGrupoRepository(db),
		repository.NewItemCustoRepository(db),
		repository.NewObraRepository(db),
		testLogger(),
		db,
	)
}

func TestCentroCustoCreate(t *testing.T) {
	db := setupTestDB(t)
	obra := createTestObra(t, db)
	svc := newOrcamentoService(db)

	centro, err := svc.CreateCentroCusto(context.Background(), &domain.CreateCentroCustoRequest{
		ObraID:        obra.ID,
		Nome:          "Estrutura",
		BDIPercentual: dec("22.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Estrutura", centro.Nome)
	assert.True(t, centro.BDIPercentual.Equal(dec("22.5")))
	assert.True(t, centro.ValorOrcado.IsZero())
}

func TestCentroCustoCreateBDINegativo(t *testing.T) {
	db := setupTestDB(t)
	obra := createTestObra(t, db)
	svc := newOrcamentoService(db)

	_, err := svc.CreateCentroCusto(context.Background(), &domain.CreateCentroCustoRequest{
		ObraID:        obra.ID,
		Nome:          "Estrutura",
		BDIPercentual: dec("-5"),
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestItemCustoCreateRecalculaAgregados(t *testing.T) {
	db := setupTestDB(t)
	_, centro, grupo, _ := createTestBudget(t, db, "10")
	svc := newOrcamentoService(db)

	_, err := svc.CreateItemCusto(context.Background(), grupo.ID, &domain.CreateItemCustoRequest{
		Descricao:     "Aço CA-50 10mm",
		Unidade:       "kg",
		Quantidade:    dec("50"),
		PrecoUnitario: dec("5"),
	})
	require.NoError(t, err)

	// 100×10 from the fixture plus 50×5 from the new item.
	var atualGrupo domain.Grupo
	require.NoError(t, db.First(&atualGrupo, "id = ?", grupo.ID).Error)
	assert.True(t, atualGrupo.ValorOrcado.Equal(dec("1250")))
	assert.True(t, atualGrupo.ValorCusto.IsZero())
	assert.True(t, atualGrupo.ValorComBDI.Equal(dec("1375")))

	var atualCentro domain.CentroCusto
	require.NoError(t, db.First(&atualCentro, "id = ?", centro.ID).Error)
	assert.True(t, atualCentro.ValorOrcado.Equal(dec("1250")))
	assert.True(t, atualCentro.ValorComBDI.Equal(dec("1375")))
}

func TestCentroCustoUpdateBDIRecalcula(t *testing.T) {
	db := setupTestDB(t)
	_, centro, grupo, _ := createTestBudget(t, db, "0")
	svc := newOrcamentoService(db)

	// Seed the aggregates before changing the markup.
	_, err := svc.UpdateCentroCusto(context.Background(), centro.ID, &domain.UpdateCentroCustoRequest{
		Nome:          centro.Nome,
		BDIPercentual: dec("20"),
	})
	require.NoError(t, err)

	var atualGrupo domain.Grupo
	require.NoError(t, db.First(&atualGrupo, "id = ?", grupo.ID).Error)
	assert.True(t, atualGrupo.ValorOrcado.Equal(dec("1000")))
	assert.True(t, atualGrupo.ValorComBDI.Equal(dec("1200")))

	var atualCentro domain.CentroCusto
	require.NoError(t, db.First(&atualCentro, "id = ?", centro.ID).Error)
	assert.True(t, atualCentro.BDIPercentual.Equal(dec("20")))
	assert.True(t, atualCentro.ValorComBDI.Equal(dec("1200")))
}

func TestItemCustoUpdateNaoReduzAbaixoDoRealizado(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	pedidoSvc := newPedidoService(db)
	svc := newOrcamentoService(db)

	pedido := createTestPedido(t, pedidoSvc, obra, fornecedor, item, "40")
	_, _, err := pedidoSvc.Approve(context.Background(), pedido.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	_, err = svc.UpdateItemCusto(context.Background(), item.ID, &domain.UpdateItemCustoRequest{
		Descricao:     item.Descricao,
		Unidade:       item.Unidade,
		Quantidade:    dec("30"),
		PrecoUnitario: dec("10"),
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	// Raising it is fine and bumps the version.
	atualizado, err := svc.UpdateItemCusto(context.Background(), item.ID, &domain.UpdateItemCustoRequest{
		Descricao:     item.Descricao,
		Unidade:       item.Unidade,
		Quantidade:    dec("120"),
		PrecoUnitario: dec("10"),
	})
	require.NoError(t, err)
	assert.True(t, atualizado.Quantidade.Equal(dec("120")))
}

func TestItemCustoDeleteComRealizacaoFalha(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	pedidoSvc := newPedidoService(db)
	svc := newOrcamentoService(db)

	pedido := createTestPedido(t, pedidoSvc, obra, fornecedor, item, "40")
	_, _, err := pedidoSvc.Approve(context.Background(), pedido.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	err = svc.DeleteItemCusto(context.Background(), item.ID)
	assert.ErrorIs(t, err, service.ErrPossuiDependencias)
}

func TestItemCustoDeleteVinculadoAPedidoFalha(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	pedidoSvc := newPedidoService(db)
	svc := newOrcamentoService(db)

	// A pending order also blocks deletion because its lines reference the item.
	createTestPedido(t, pedidoSvc, obra, fornecedor, item, "40")

	err := svc.DeleteItemCusto(context.Background(), item.ID)
	assert.ErrorIs(t, err, service.ErrPossuiDependencias)
}

func TestItemCustoDeleteSemRealizacao(t *testing.T) {
	db := setupTestDB(t)
	_, _, grupo, item := createTestBudget(t, db, "0")
	svc := newOrcamentoService(db)

	require.NoError(t, svc.DeleteItemCusto(context.Background(), item.ID))

	var atualGrupo domain.Grupo
	require.NoError(t, db.First(&atualGrupo, "id = ?", grupo.ID).Error)
	assert.True(t, atualGrupo.ValorOrcado.IsZero())
}

func TestGrupoDeleteComRealizacaoFalha(t *testing.T) {
	db := setupTestDB(t)
	obra, _, grupo, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	pedidoSvc := newPedidoService(db)
	svc := newOrcamentoService(db)

	pedido := createTestPedido(t, pedidoSvc, obra, fornecedor, item, "40")
	_, _, err := pedidoSvc.Approve(context.Background(), pedido.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	err = svc.DeleteGrupo(context.Background(), grupo.ID)
	assert.ErrorIs(t, err, service.ErrPossuiDependencias)
}

func TestCentroCustoDeleteComRealizacaoFalha(t *testing.T) {
	db := setupTestDB(t)
	obra, centro, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	pedidoSvc := newPedidoService(db)
	svc := newOrcamentoService(db)

	pedido := createTestPedido(t, pedidoSvc, obra, fornecedor, item, "40")
	_, _, err := pedidoSvc.Approve(context.Background(), pedido.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	err = svc.DeleteCentroCusto(context.Background(), centro.ID)
	assert.ErrorIs(t, err, service.ErrPossuiDependencias)
}

func TestListItensApenasDisponiveis(t *testing.T) {
	db := setupTestDB(t)
	obra, _, grupo, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "11.222.333/0001-44")
	pedidoSvc := newPedidoService(db)
	svc := newOrcamentoService(db)

	segundo, err := svc.CreateItemCusto(context.Background(), grupo.ID, &domain.CreateItemCustoRequest{
		Descricao:     "Forma de madeira",
		Unidade:       "m2",
		Quantidade:    dec("20"),
		PrecoUnitario: dec("8"),
	})
	require.NoError(t, err)

	// Exhaust the first item.
	pedido := createTestPedido(t, pedidoSvc, obra, fornecedor, item, "100")
	_, _, err = pedidoSvc.Approve(context.Background(), pedido.ID, &domain.ApproveRequest{})
	require.NoError(t, err)

	todos, err := svc.ListItensByObra(context.Background(), obra.ID, false)
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	disponiveis, err := svc.ListItensByObra(context.Background(), obra.ID, true)
	require.NoError(t, err)
	require.Len(t, disponiveis, 1)
	assert.Equal(t, segundo.ID, disponiveis[0].ID)
}

func TestRefreshAllCorrigeDrift(t *testing.T) {
	db := setupTestDB(t)
	_, centro, grupo, _ := createTestBudget(t, db, "10")
	svc := newOrcamentoService(db)

	// Simulate drifted aggregates written by some out-of-band path.
	require.NoError(t, db.Model(&domain.Grupo{}).Where("id = ?", grupo.ID).
		Update("valor_orcado", dec("999")).Error)

	require.NoError(t, svc.RefreshAll(context.Background()))

	var atualGrupo domain.Grupo
	require.NoError(t, db.First(&atualGrupo, "id = ?", grupo.ID).Error)
	assert.True(t, atualGrupo.ValorOrcado.Equal(dec("1000")))
	assert.True(t, atualGrupo.ValorComBDI.Equal(dec("1100")))

	var atualCentro domain.CentroCusto
	require.NoError(t, db.First(&atualCentro, "id = ?", centro.ID).Error)
	assert.True(t, atualCentro.ValorOrcado.Equal(dec("1000")))
}
