package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestItemDisponivel(t *testing.T) {
	assert.True(t, ItemDisponivel(dec("0")))
	assert.True(t, ItemDisponivel(dec("99.99")))
	assert.False(t, ItemDisponivel(dec("100")))
	assert.False(t, ItemDisponivel(dec("120")))
}

func TestPercentual(t *testing.T) {
	assert.True(t, Percentual(dec("25"), dec("100")).Equal(dec("25")))
	assert.True(t, Percentual(dec("3"), dec("0")).IsZero())
	assert.True(t, Percentual(dec("150"), dec("100")).Equal(dec("150")))
}

func TestPercentualLimitado(t *testing.T) {
	assert.True(t, PercentualLimitado(dec("50"), dec("100")).Equal(dec("50")))
	assert.True(t, PercentualLimitado(dec("150"), dec("100")).Equal(dec("100")))
	assert.True(t, PercentualLimitado(dec("1"), dec("0")).IsZero())
}

func TestExcedeContratado(t *testing.T) {
	assert.False(t, ExcedeContratado(dec("10"), dec("4"), dec("6")))
	assert.True(t, ExcedeContratado(dec("10"), dec("4"), dec("6.0001")))
	assert.False(t, ExcedeContratado(dec("10"), dec("0"), dec("10")))
}

func TestRealizacaoAcrescentar(t *testing.T) {
	r := Realizacao{}
	r = r.Acrescentar(dec("3"), dec("10"))
	r = r.Acrescentar(dec("2"), dec("10"))

	assert.True(t, r.Quantidade.Equal(dec("5")))
	assert.True(t, r.Valor.Equal(dec("50")))
}

func TestRealizacaoEstornar(t *testing.T) {
	r := Realizacao{Quantidade: dec("5"), Valor: dec("50")}
	r = r.Estornar(dec("2"), dec("10"))

	assert.True(t, r.Quantidade.Equal(dec("3")))
	assert.True(t, r.Valor.Equal(dec("30")))
}

func TestRealizacaoEstornarClampsAtZero(t *testing.T) {
	r := Realizacao{Quantidade: dec("2"), Valor: dec("20")}
	r = r.Estornar(dec("5"), dec("10"))

	assert.True(t, r.Quantidade.IsZero())
	assert.True(t, r.Valor.IsZero())
}

func TestPercentuaisAcumulados(t *testing.T) {
	itemID := uuid.New()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	linhas := []LinhaMedicao{
		{MedicaoNumero: 2, CriadaEm: base.AddDate(0, 1, 0), Aprovada: true, ItemNegociacaoID: itemID, Quantidade: dec("30")},
		{MedicaoNumero: 1, CriadaEm: base, Aprovada: true, ItemNegociacaoID: itemID, Quantidade: dec("20")},
	}
	contratadas := map[uuid.UUID]decimal.Decimal{itemID: dec("100")}

	resultado := PercentuaisAcumulados(linhas, contratadas)

	assert.Len(t, resultado, 2)
	assert.Equal(t, 1, resultado[0].MedicaoNumero)
	assert.True(t, resultado[0].PercentualAcumulado.Equal(dec("20")))
	assert.Equal(t, 2, resultado[1].MedicaoNumero)
	assert.True(t, resultado[1].PercentualAcumulado.Equal(dec("50")))
}

func TestPercentuaisAcumuladosIgnoraPendentes(t *testing.T) {
	itemID := uuid.New()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	linhas := []LinhaMedicao{
		{MedicaoNumero: 1, CriadaEm: base, Aprovada: true, ItemNegociacaoID: itemID, Quantidade: dec("40")},
		{MedicaoNumero: 2, CriadaEm: base.AddDate(0, 1, 0), Aprovada: false, ItemNegociacaoID: itemID, Quantidade: dec("40")},
		{MedicaoNumero: 3, CriadaEm: base.AddDate(0, 2, 0), Aprovada: true, ItemNegociacaoID: itemID, Quantidade: dec("10")},
	}
	contratadas := map[uuid.UUID]decimal.Decimal{itemID: dec("100")}

	resultado := PercentuaisAcumulados(linhas, contratadas)

	// The pending medição shows the running total without contributing to it.
	assert.True(t, resultado[1].PercentualAcumulado.Equal(dec("40")))
	assert.True(t, resultado[2].PercentualAcumulado.Equal(dec("50")))
}

func TestPercentuaisAcumuladosLimitaEmCem(t *testing.T) {
	itemID := uuid.New()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	linhas := []LinhaMedicao{
		{MedicaoNumero: 1, CriadaEm: base, Aprovada: true, ItemNegociacaoID: itemID, Quantidade: dec("90")},
		{MedicaoNumero: 2, CriadaEm: base.AddDate(0, 1, 0), Aprovada: true, ItemNegociacaoID: itemID, Quantidade: dec("20")},
	}
	contratadas := map[uuid.UUID]decimal.Decimal{itemID: dec("100")}

	resultado := PercentuaisAcumulados(linhas, contratadas)

	assert.True(t, resultado[1].PercentualAcumulado.Equal(dec("100")))
}

func TestPercentuaisAcumuladosDesempataPorNumero(t *testing.T) {
	itemID := uuid.New()
	mesmoInstante := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	linhas := []LinhaMedicao{
		{MedicaoNumero: 2, CriadaEm: mesmoInstante, Aprovada: true, ItemNegociacaoID: itemID, Quantidade: dec("10")},
		{MedicaoNumero: 1, CriadaEm: mesmoInstante, Aprovada: true, ItemNegociacaoID: itemID, Quantidade: dec("10")},
	}
	contratadas := map[uuid.UUID]decimal.Decimal{itemID: dec("100")}

	resultado := PercentuaisAcumulados(linhas, contratadas)

	assert.Equal(t, 1, resultado[0].MedicaoNumero)
	assert.True(t, resultado[0].PercentualAcumulado.Equal(dec("10")))
	assert.Equal(t, 2, resultado[1].MedicaoNumero)
	assert.True(t, resultado[1].PercentualAcumulado.Equal(dec("20")))
}

func TestSomarItens(t *testing.T) {
	itens := []ItemTotais{
		{Quantidade: dec("10"), PrecoUnitario: dec("100"), ValorRealizado: dec("300")},
		{Quantidade: dec("5"), PrecoUnitario: dec("50"), ValorRealizado: dec("0")},
	}

	t2 := SomarItens(itens)

	assert.True(t, t2.Orcado.Equal(dec("1250")))
	assert.True(t, t2.Realizado.Equal(dec("300")))
	// Custo only counts the full orçado of items that were touched.
	assert.True(t, t2.Custo.Equal(dec("1000")))
}

func TestSomarItensVazio(t *testing.T) {
	t2 := SomarItens(nil)
	assert.True(t, t2.Orcado.IsZero())
	assert.True(t, t2.Custo.IsZero())
	assert.True(t, t2.Realizado.IsZero())
}

func TestComBDI(t *testing.T) {
	assert.True(t, ComBDI(dec("1000"), dec("25")).Equal(dec("1250")))
	assert.True(t, ComBDI(dec("1000"), dec("0")).Equal(dec("1000")))
}
