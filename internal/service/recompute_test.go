package service

import (
	"testing"

	"github.com/construtivo/construtivo-api/internal/database"
	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func seedLedgerItem(t *testing.T) (*gorm.DB, *domain.ItemCusto, *domain.Grupo) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	obra := &domain.Obra{Nome: "Condomínio Vista Verde"}
	require.NoError(t, db.Create(obra).Error)
	centro := &domain.CentroCusto{ObraID: obra.ID, Nome: "Estrutura", BDIPercentual: decimal.NewFromInt(10)}
	require.NoError(t, db.Create(centro).Error)
	grupo := &domain.Grupo{CentroCustoID: centro.ID, Nome: "Concreto"}
	require.NoError(t, db.Create(grupo).Error)
	item := &domain.ItemCusto{
		GrupoID:       grupo.ID,
		Descricao:     "Concreto usinado FCK 30",
		Unidade:       "m3",
		Quantidade:    decimal.NewFromInt(100),
		PrecoUnitario: decimal.NewFromInt(10),
	}
	require.NoError(t, db.Create(item).Error)
	return db, item, grupo
}

func TestWriteItemRealizacaoVersaoDesatualizada(t *testing.T) {
	db, item, _ := seedLedgerItem(t)

	// Another writer bumps the version after our snapshot was read.
	require.NoError(t, db.Model(&domain.ItemCusto{}).
		Where("id = ?", item.ID).
		Update("version", item.Version+1).Error)

	err := writeItemRealizacao(db, item, ledger.Realizacao{
		Quantidade: decimal.NewFromInt(40),
		Valor:      decimal.NewFromInt(400),
	})
	assert.ErrorIs(t, err, ErrConflitoVersao)

	var atual domain.ItemCusto
	require.NoError(t, db.First(&atual, "id = ?", item.ID).Error)
	assert.True(t, atual.QuantidadeRealizada.IsZero())
	assert.True(t, atual.ValorRealizado.IsZero())
}

func TestWriteItemRealizacaoConflitoDesfazTransacao(t *testing.T) {
	db, item, grupo := seedLedgerItem(t)

	require.NoError(t, db.Model(&domain.ItemCusto{}).
		Where("id = ?", item.ID).
		Update("version", item.Version+1).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		// A write that lands before the conflict must be rolled back with it.
		if err := tx.Model(&domain.Grupo{}).
			Where("id = ?", grupo.ID).
			Update("valor_realizado", decimal.NewFromInt(400)).Error; err != nil {
			return err
		}
		return writeItemRealizacao(tx, item, ledger.Realizacao{
			Quantidade: decimal.NewFromInt(40),
			Valor:      decimal.NewFromInt(400),
		})
	})
	assert.ErrorIs(t, err, ErrConflitoVersao)

	var atualGrupo domain.Grupo
	require.NoError(t, db.First(&atualGrupo, "id = ?", grupo.ID).Error)
	assert.True(t, atualGrupo.ValorRealizado.IsZero())

	var atualItem domain.ItemCusto
	require.NoError(t, db.First(&atualItem, "id = ?", item.ID).Error)
	assert.True(t, atualItem.QuantidadeRealizada.IsZero())
}

func TestWriteItemRealizacaoVersaoCorrente(t *testing.T) {
	db, item, _ := seedLedgerItem(t)

	err := writeItemRealizacao(db, item, ledger.Realizacao{
		Quantidade: decimal.NewFromInt(40),
		Valor:      decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	var atual domain.ItemCusto
	require.NoError(t, db.First(&atual, "id = ?", item.ID).Error)
	assert.True(t, atual.QuantidadeRealizada.Equal(decimal.NewFromInt(40)))
	assert.True(t, atual.ValorRealizado.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, item.Version+1, atual.Version)
}
