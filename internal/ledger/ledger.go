// Package ledger holds the budget-realization reconciliation rules: the
// arithmetic that keeps orçado, custo and realizado consistent across pedidos
// de compra, negociações and medições that share the same pool of itens de
// custo. Everything here is pure; persistence and transactions live in the
// service layer.
package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var cem = decimal.NewFromInt(100)

// ItemDisponivel classifies a budget item as available for new commitments.
// This is the single source of the rule the browser forms apply when listing
// selectable items.
func ItemDisponivel(realizadoPercentual decimal.Decimal) bool {
	return realizadoPercentual.LessThan(cem)
}

// Percentual returns parte/total × 100, or zero when total is zero
func Percentual(parte, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return parte.Div(total).Mul(cem)
}

// PercentualLimitado returns Percentual capped at 100
func PercentualLimitado(parte, total decimal.Decimal) decimal.Decimal {
	pct := Percentual(parte, total)
	if pct.GreaterThan(cem) {
		return cem
	}
	return pct
}

// ExcedeContratado reports whether committing an additional quantity against
// an item would push its realized total past the contracted quantity
func ExcedeContratado(contratada, realizada, adicional decimal.Decimal) bool {
	return realizada.Add(adicional).GreaterThan(contratada)
}

// Realizacao is the running realized total of a budget item
type Realizacao struct {
	Quantidade decimal.Decimal
	Valor      decimal.Decimal
}

// Acrescentar returns the realization after an approval consumes quantity at
// the given unit value
func (r Realizacao) Acrescentar(quantidade, valorUnitario decimal.Decimal) Realizacao {
	return Realizacao{
		Quantidade: r.Quantidade.Add(quantidade),
		Valor:      r.Valor.Add(quantidade.Mul(valorUnitario)),
	}
}

// Estornar returns the realization after a delete reverses a previously
// approved consumption. Totals never go negative: a reversal of more than was
// accrued clamps to zero rather than corrupting the ledger.
func (r Realizacao) Estornar(quantidade, valorUnitario decimal.Decimal) Realizacao {
	novaQtd := r.Quantidade.Sub(quantidade)
	if novaQtd.IsNegative() {
		novaQtd = decimal.Zero
	}
	novoValor := r.Valor.Sub(quantidade.Mul(valorUnitario))
	if novoValor.IsNegative() {
		novoValor = decimal.Zero
	}
	return Realizacao{Quantidade: novaQtd, Valor: novoValor}
}

// LinhaMedicao is one measurement-item occurrence in a negotiation's history
type LinhaMedicao struct {
	MedicaoID        uuid.UUID
	MedicaoNumero    int
	CriadaEm         time.Time
	Aprovada         bool
	ItemNegociacaoID uuid.UUID
	Quantidade       decimal.Decimal
}

// Acumulado is the accumulated execution of one measurement item after
// walking the history up to and including its medição
type Acumulado struct {
	LinhaMedicao
	PercentualAcumulado decimal.Decimal
}

// PercentuaisAcumulados recomputes, from scratch, the accumulated execution
// percentage of every measurement line. Lines are walked in chronological
// order (creation time, then measurement number); only approved medições
// contribute to the running sum, and the percentage is capped at 100. The
// result is recomputed per report precisely so no stored counter can drift.
func PercentuaisAcumulados(linhas []LinhaMedicao, contratadas map[uuid.UUID]decimal.Decimal) []Acumulado {
	ordenadas := make([]LinhaMedicao, len(linhas))
	copy(ordenadas, linhas)
	sort.SliceStable(ordenadas, func(a, b int) bool {
		if !ordenadas[a].CriadaEm.Equal(ordenadas[b].CriadaEm) {
			return ordenadas[a].CriadaEm.Before(ordenadas[b].CriadaEm)
		}
		return ordenadas[a].MedicaoNumero < ordenadas[b].MedicaoNumero
	})

	somas := make(map[uuid.UUID]decimal.Decimal, len(contratadas))
	resultado := make([]Acumulado, 0, len(ordenadas))
	for _, linha := range ordenadas {
		if linha.Aprovada {
			somas[linha.ItemNegociacaoID] = somas[linha.ItemNegociacaoID].Add(linha.Quantidade)
		}
		resultado = append(resultado, Acumulado{
			LinhaMedicao:        linha,
			PercentualAcumulado: PercentualLimitado(somas[linha.ItemNegociacaoID], contratadas[linha.ItemNegociacaoID]),
		})
	}
	return resultado
}

// TotaisGrupo aggregates item-level figures into the grupo roll-up
type TotaisGrupo struct {
	Orcado    decimal.Decimal
	Custo     decimal.Decimal
	Realizado decimal.Decimal
}

// ItemTotais is the slice of an item that participates in roll-ups
type ItemTotais struct {
	Quantidade     decimal.Decimal
	PrecoUnitario  decimal.Decimal
	ValorRealizado decimal.Decimal
}

// SomarItens computes a grupo's totals from its constituent items. Custo is
// the committed value (orçado of items with any realization); orçado is the
// full contracted value.
func SomarItens(itens []ItemTotais) TotaisGrupo {
	var t TotaisGrupo
	for _, item := range itens {
		orcado := item.Quantidade.Mul(item.PrecoUnitario)
		t.Orcado = t.Orcado.Add(orcado)
		t.Realizado = t.Realizado.Add(item.ValorRealizado)
		if item.ValorRealizado.IsPositive() {
			t.Custo = t.Custo.Add(orcado)
		}
	}
	return t
}

// ComBDI applies the centro de custo's BDI markup to a value
func ComBDI(valor, bdiPercentual decimal.Decimal) decimal.Decimal {
	return valor.Mul(cem.Add(bdiPercentual)).Div(cem)
}
