package service_test

import (
	"testing"
	"time"

	"github.com/construtivo/construtivo-api/internal/database"
	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func createTestObra(t *testing.T, db *gorm.DB) *domain.Obra {
	obra := &domain.Obra{
		Nome:   "Residencial Aurora",
		Cidade: "Campinas",
		Estado: "SP",
	}
	require.NoError(t, db.Create(obra).Error)
	return obra
}

func createTestFornecedor(t *testing.T, db *gorm.DB, cnpj string) *domain.Fornecedor {
	fornecedor := &domain.Fornecedor{
		RazaoSocial: "Construmax Materiais Ltda",
		CNPJ:        cnpj,
	}
	require.NoError(t, db.Create(fornecedor).Error)
	return fornecedor
}

// createTestBudget seeds obra → centro → grupo → item with a contracted
// quantity of 100 at unit price 10 and the given BDI.
func createTestBudget(t *testing.T, db *gorm.DB, bdi string) (*domain.Obra, *domain.CentroCusto, *domain.Grupo, *domain.ItemCusto) {
	obra := createTestObra(t, db)

	centro := &domain.CentroCusto{
		ObraID:        obra.ID,
		Nome:          "Fundação",
		BDIPercentual: dec(bdi),
	}
	require.NoError(t, db.Create(centro).Error)

	grupo := &domain.Grupo{
		CentroCustoID: centro.ID,
		Nome:          "Concreto",
	}
	require.NoError(t, db.Create(grupo).Error)

	item := &domain.ItemCusto{
		GrupoID:       grupo.ID,
		Descricao:     "Concreto usinado FCK 30",
		Unidade:       "m3",
		Quantidade:    dec("100"),
		PrecoUnitario: dec("10"),
	}
	require.NoError(t, db.Create(item).Error)

	return obra, centro, grupo, item
}

func testDate(day int) time.Time {
	return time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC)
}
