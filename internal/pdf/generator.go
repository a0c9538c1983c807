// Package pdf renders printable documents for pedidos de compra and medições.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/construtivo/construtivo-api/internal/domain"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// GeneratePedido renders a purchase order document
func (g *Generator) GeneratePedido(doc domain.PedidoCompraDTO) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Pedido de Compra"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Pedido nº %s de %s", doc.Numero, doc.DataEmissao)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	headerBlock(pdf, tr, g.fontName, "Obra", doc.ObraNome)
	headerBlock(pdf, tr, g.fontName, "Fornecedor", doc.FornecedorNome)
	headerBlock(pdf, tr, g.fontName, "Situação", statusLabel(doc.Status))
	if doc.AprovadoPor != "" {
		headerBlock(pdf, tr, g.fontName, "Aprovado por", doc.AprovadoPor)
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Itens"), "", 1, "L", false, 0, "")

	headers := []string{"Descrição", "Un.", "Qtd.", "Valor unit.", "Valor total"}
	colWidths := []float64{80, 15, 25, 30, 30}
	drawTableRow(pdf, tr, g.fontName, headers, colWidths, true)
	for _, item := range doc.Itens {
		row := []string{
			item.Descricao,
			item.Unidade,
			formatAmount(item.Quantidade),
			formatAmount(item.ValorUnitario),
			formatAmount(item.ValorTotal),
		}
		drawTableRow(pdf, tr, g.fontName, row, colWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Valor total: R$ %s", formatAmount(doc.ValorTotal))), "", 1, "R", false, 0, "")

	if len(doc.Parcelas) > 0 {
		pdf.Ln(4)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, tr("Parcelas"), "", 1, "L", false, 0, "")
		parcelaHeaders := []string{"Vencimento", "Valor", "Situação"}
		parcelaWidths := []float64{50, 40, 40}
		drawTableRow(pdf, tr, g.fontName, parcelaHeaders, parcelaWidths, true)
		for _, parcela := range doc.Parcelas {
			drawTableRow(pdf, tr, g.fontName, []string{
				parcela.DataPrevista,
				formatAmount(parcela.Valor),
				parcelaLabel(parcela.Status),
			}, parcelaWidths, false)
		}
	}

	if doc.Observacoes != "" {
		pdf.Ln(4)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, tr("Observações"), "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, tr(doc.Observacoes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateMedicao renders a measurement bulletin
func (g *Generator) GenerateMedicao(doc domain.MedicaoDTO, negociacao domain.NegociacaoDTO) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Boletim de Medição"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Medição nº %d da negociação %s", doc.Numero, negociacao.Numero)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Período: %s a %s", doc.DataInicio, doc.DataFim)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	headerBlock(pdf, tr, g.fontName, "Obra", negociacao.ObraNome)
	headerBlock(pdf, tr, g.fontName, "Fornecedor", negociacao.FornecedorNome)
	headerBlock(pdf, tr, g.fontName, "Situação", statusLabel(doc.Status))
	if doc.AprovadaPor != "" {
		headerBlock(pdf, tr, g.fontName, "Aprovada por", doc.AprovadaPor)
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Itens medidos"), "", 1, "L", false, 0, "")

	headers := []string{"Descrição", "Qtd. medida", "Acumulado %", "Valor unit.", "Valor total"}
	colWidths := []float64{70, 28, 26, 28, 28}
	drawTableRow(pdf, tr, g.fontName, headers, colWidths, true)
	for _, item := range doc.Itens {
		row := []string{
			item.Descricao,
			formatAmount(item.QuantidadeMedida),
			formatAmount(item.PercentualExecutado),
			formatAmount(item.ValorUnitario),
			formatAmount(item.ValorTotal),
		}
		drawTableRow(pdf, tr, g.fontName, row, colWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	if !doc.Desconto.IsZero() {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Desconto: R$ %s", formatAmount(doc.Desconto))), "", 1, "R", false, 0, "")
	}
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Valor total: R$ %s", formatAmount(doc.ValorTotal))), "", 1, "R", false, 0, "")

	if doc.Observacoes != "" {
		pdf.Ln(4)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, tr("Observações"), "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, tr(doc.Observacoes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func headerBlock(pdf *gofpdf.Fpdf, tr func(string) string, fontName, label, value string) {
	pdf.SetFont(fontName, "B", 10)
	pdf.CellFormat(35, 6, tr(label+":"), "", 0, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func statusLabel(status domain.Status) string {
	switch status {
	case domain.StatusAprovado:
		return "Aprovado"
	default:
		return "Pendente"
	}
}

func parcelaLabel(status domain.ParcelaStatus) string {
	switch status {
	case domain.ParcelaPaga:
		return "Pago"
	default:
		return "Pendente"
	}
}
