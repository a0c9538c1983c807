// Package excel exports the financial report as a spreadsheet.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/construtivo/construtivo-api/internal/domain"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes the accounts payable/receivable report: a summary sheet and
// one detail sheet per origin
func (g *Generator) Generate(resumo domain.FinanceiroResumoDTO) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Resumo"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, resumo); err != nil {
		return nil, err
	}

	detailSheet := "Contas"
	if _, err := file.NewSheet(detailSheet); err != nil {
		return nil, err
	}
	if err := g.writeContas(file, detailSheet, resumo.Contas); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, resumo domain.FinanceiroResumoDTO) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Relatório financeiro")
	set("A3", "Total pendente")
	set("B3", resumo.TotalPendente.StringFixed(2))
	set("A4", "Total pago")
	set("B4", resumo.TotalPago.StringFixed(2))
	set("A5", "Total geral")
	set("B5", resumo.Total.StringFixed(2))
	set("A6", "Quantidade de parcelas")
	set("B6", len(resumo.Contas))

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 18)
	return nil
}

func (g *Generator) writeContas(file *excelize.File, sheet string, contas []domain.ContaDTO) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Origem", "Número", "Fornecedor", "Obra", "Vencimento", "Valor", "Situação"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	for rowIdx, conta := range contas {
		row := rowIdx + 2
		set(fmt.Sprintf("A%d", row), origemLabel(conta.Origem))
		set(fmt.Sprintf("B%d", row), conta.Numero)
		set(fmt.Sprintf("C%d", row), conta.FornecedorNome)
		set(fmt.Sprintf("D%d", row), conta.ObraNome)
		set(fmt.Sprintf("E%d", row), conta.DataPrevista)
		set(fmt.Sprintf("F%d", row), conta.Valor.StringFixed(2))
		set(fmt.Sprintf("G%d", row), statusLabel(conta.Status))
	}

	_ = file.SetColWidth(sheet, "A", "A", 18)
	_ = file.SetColWidth(sheet, "B", "B", 16)
	_ = file.SetColWidth(sheet, "C", "D", 32)
	_ = file.SetColWidth(sheet, "E", "G", 14)
	return nil
}

func origemLabel(origem string) string {
	switch origem {
	case "medicao":
		return "Medição"
	default:
		return "Pedido de compra"
	}
}

func statusLabel(status domain.ParcelaStatus) string {
	if status == domain.ParcelaPaga {
		return "Pago"
	}
	return "Pendente"
}
