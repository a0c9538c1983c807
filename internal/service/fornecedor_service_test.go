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

func newFornecedorService(db *gorm.DB) *service.FornecedorService {
	return service.NewFornecedorService(repository.NewFornecedorRepository(db), testLogger(), db)
}

func TestFornecedorCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := newFornecedorService(db)

	fornecedor, err := svc.Create(context.Background(), &domain.CreateFornecedorRequest{
		RazaoSocial:  "Aço Forte Siderurgia S.A.",
		NomeFantasia: "Aço Forte",
		CNPJ:         "44.555.666/0001-77",
		Email:        "vendas@acoforte.com.br",
	})
	require.NoError(t, err)
	assert.Equal(t, "Aço Forte Siderurgia S.A.", fornecedor.RazaoSocial)
	assert.Equal(t, "44.555.666/0001-77", fornecedor.CNPJ)
}

func TestFornecedorCreateCNPJDuplicado(t *testing.T) {
	db := setupTestDB(t)
	createTestFornecedor(t, db, "44.555.666/0001-77")
	svc := newFornecedorService(db)

	_, err := svc.Create(context.Background(), &domain.CreateFornecedorRequest{
		RazaoSocial: "Outra Empresa Ltda",
		CNPJ:        "44.555.666/0001-77",
	})
	assert.ErrorIs(t, err, service.ErrCNPJDuplicado)
}

func TestFornecedorUpdateCNPJDeOutro(t *testing.T) {
	db := setupTestDB(t)
	createTestFornecedor(t, db, "44.555.666/0001-77")
	outro := createTestFornecedor(t, db, "55.666.777/0001-88")
	svc := newFornecedorService(db)

	_, err := svc.Update(context.Background(), outro.ID, &domain.UpdateFornecedorRequest{
		RazaoSocial: outro.RazaoSocial,
		CNPJ:        "44.555.666/0001-77",
	})
	assert.ErrorIs(t, err, service.ErrCNPJDuplicado)
}

func TestFornecedorUpdateMantemProprioCNPJ(t *testing.T) {
	db := setupTestDB(t)
	fornecedor := createTestFornecedor(t, db, "44.555.666/0001-77")
	svc := newFornecedorService(db)

	atualizado, err := svc.Update(context.Background(), fornecedor.ID, &domain.UpdateFornecedorRequest{
		RazaoSocial: "Construmax Materiais e Serviços Ltda",
		CNPJ:        "44.555.666/0001-77",
	})
	require.NoError(t, err)
	assert.Equal(t, "Construmax Materiais e Serviços Ltda", atualizado.RazaoSocial)
}

func TestFornecedorDeleteComPedidoFalha(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, item := createTestBudget(t, db, "0")
	fornecedor := createTestFornecedor(t, db, "44.555.666/0001-77")
	pedidoSvc := newPedidoService(db)
	svc := newFornecedorService(db)

	createTestPedido(t, pedidoSvc, obra, fornecedor, item, "10")

	err := svc.Delete(context.Background(), fornecedor.ID)
	assert.ErrorIs(t, err, service.ErrPossuiDependencias)
}

func TestFornecedorDeleteSemVinculos(t *testing.T) {
	db := setupTestDB(t)
	fornecedor := createTestFornecedor(t, db, "44.555.666/0001-77")
	svc := newFornecedorService(db)

	require.NoError(t, svc.Delete(context.Background(), fornecedor.ID))

	_, err := svc.GetByID(context.Background(), fornecedor.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
