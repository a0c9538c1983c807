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

func newObraService(db *gorm.DB) *service.ObraService {
	return service.NewObraService(repository.NewObraRepository(db), testLogger(), db)
}

func TestObraCreateEGet(t *testing.T) {
	db := setupTestDB(t)
	svc := newObraService(db)

	inicio := testDate(1)
	obra, err := svc.Create(context.Background(), &domain.CreateObraRequest{
		Nome:        "Edifício Horizonte",
		Cidade:      "São Paulo",
		Estado:      "SP",
		Responsavel: "Marina Duarte",
		DataInicio:  &inicio,
	})
	require.NoError(t, err)
	assert.Equal(t, "Edifício Horizonte", obra.Nome)

	buscada, err := svc.GetByID(context.Background(), obra.ID)
	require.NoError(t, err)
	assert.Equal(t, obra.ID, buscada.ID)
	assert.Equal(t, "Marina Duarte", buscada.Responsavel)
}

func TestObraUpdate(t *testing.T) {
	db := setupTestDB(t)
	obra := createTestObra(t, db)
	svc := newObraService(db)

	atualizada, err := svc.Update(context.Background(), obra.ID, &domain.UpdateObraRequest{
		Nome:   "Residencial Aurora II",
		Cidade: "Campinas",
		Estado: "SP",
	})
	require.NoError(t, err)
	assert.Equal(t, "Residencial Aurora II", atualizada.Nome)
}

func TestObraDeleteComCentroCustoFalha(t *testing.T) {
	db := setupTestDB(t)
	obra, _, _, _ := createTestBudget(t, db, "0")
	svc := newObraService(db)

	err := svc.Delete(context.Background(), obra.ID)
	assert.ErrorIs(t, err, service.ErrPossuiDependencias)
}

func TestObraDeleteSemVinculos(t *testing.T) {
	db := setupTestDB(t)
	obra := createTestObra(t, db)
	svc := newObraService(db)

	require.NoError(t, svc.Delete(context.Background(), obra.ID))

	_, err := svc.GetByID(context.Background(), obra.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
