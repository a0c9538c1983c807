package mapper

import (
	"time"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/ledger"
	"github.com/construtivo/construtivo-api/internal/repository"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dateLayout      = "2006-01-02"
)

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func formatTimestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timestampLayout)
	return &s
}

// ToObraDTO converts Obra to ObraDTO
func ToObraDTO(obra *domain.Obra) domain.ObraDTO {
	return domain.ObraDTO{
		ID:           obra.ID,
		Nome:         obra.Nome,
		Endereco:     obra.Endereco,
		Cidade:       obra.Cidade,
		Estado:       obra.Estado,
		Responsavel:  obra.Responsavel,
		DataInicio:   formatDatePtr(obra.DataInicio),
		DataPrevista: formatDatePtr(obra.DataPrevista),
		CreatedAt:    obra.CreatedAt.Format(timestampLayout),
		UpdatedAt:    obra.UpdatedAt.Format(timestampLayout),
	}
}

// ToFornecedorDTO converts Fornecedor to FornecedorDTO
func ToFornecedorDTO(fornecedor *domain.Fornecedor) domain.FornecedorDTO {
	return domain.FornecedorDTO{
		ID:           fornecedor.ID,
		RazaoSocial:  fornecedor.RazaoSocial,
		NomeFantasia: fornecedor.NomeFantasia,
		CNPJ:         fornecedor.CNPJ,
		Email:        fornecedor.Email,
		Telefone:     fornecedor.Telefone,
		Endereco:     fornecedor.Endereco,
		Cidade:       fornecedor.Cidade,
		Estado:       fornecedor.Estado,
		CreatedAt:    fornecedor.CreatedAt.Format(timestampLayout),
		UpdatedAt:    fornecedor.UpdatedAt.Format(timestampLayout),
	}
}

// ToItemCustoDTO converts ItemCusto to ItemCustoDTO. Availability follows the
// same rule the pedido and negociação flows enforce on approval.
func ToItemCustoDTO(item *domain.ItemCusto) domain.ItemCustoDTO {
	pct := item.RealizadoPercentual()
	return domain.ItemCustoDTO{
		ID:                  item.ID,
		GrupoID:             item.GrupoID,
		Descricao:           item.Descricao,
		Unidade:             item.Unidade,
		Quantidade:          item.Quantidade,
		PrecoUnitario:       item.PrecoUnitario,
		ValorOrcado:         item.ValorOrcado(),
		QuantidadeRealizada: item.QuantidadeRealizada,
		ValorRealizado:      item.ValorRealizado,
		RealizadoPercentual: pct,
		Disponivel:          ledger.ItemDisponivel(pct),
		CreatedAt:           item.CreatedAt.Format(timestampLayout),
		UpdatedAt:           item.UpdatedAt.Format(timestampLayout),
	}
}

// ToGrupoDTO converts Grupo to GrupoDTO, including nested items when loaded
func ToGrupoDTO(grupo *domain.Grupo) domain.GrupoDTO {
	dto := domain.GrupoDTO{
		ID:             grupo.ID,
		CentroCustoID:  grupo.CentroCustoID,
		Nome:           grupo.Nome,
		ValorOrcado:    grupo.ValorOrcado,
		ValorCusto:     grupo.ValorCusto,
		ValorRealizado: grupo.ValorRealizado,
		ValorComBDI:    grupo.ValorComBDI,
		CreatedAt:      grupo.CreatedAt.Format(timestampLayout),
		UpdatedAt:      grupo.UpdatedAt.Format(timestampLayout),
	}
	for i := range grupo.Itens {
		dto.Itens = append(dto.Itens, ToItemCustoDTO(&grupo.Itens[i]))
	}
	return dto
}

// ToCentroCustoDTO converts CentroCusto to CentroCustoDTO, including nested
// grupos when loaded
func ToCentroCustoDTO(centro *domain.CentroCusto) domain.CentroCustoDTO {
	dto := domain.CentroCustoDTO{
		ID:             centro.ID,
		ObraID:         centro.ObraID,
		Nome:           centro.Nome,
		Descricao:      centro.Descricao,
		BDIPercentual:  centro.BDIPercentual,
		ValorOrcado:    centro.ValorOrcado,
		ValorCusto:     centro.ValorCusto,
		ValorRealizado: centro.ValorRealizado,
		ValorComBDI:    centro.ValorComBDI,
		CreatedAt:      centro.CreatedAt.Format(timestampLayout),
		UpdatedAt:      centro.UpdatedAt.Format(timestampLayout),
	}
	for i := range centro.Grupos {
		dto.Grupos = append(dto.Grupos, ToGrupoDTO(&centro.Grupos[i]))
	}
	return dto
}

// ToParcelaPedidoDTO converts ParcelaPedidoCompra to ParcelaDTO
func ToParcelaPedidoDTO(parcela *domain.ParcelaPedidoCompra) domain.ParcelaDTO {
	return domain.ParcelaDTO{
		ID:           parcela.ID,
		DataPrevista: formatDate(parcela.DataPrevista),
		Valor:        parcela.Valor,
		Status:       parcela.Status,
		PagaEm:       formatTimestampPtr(parcela.PagaEm),
	}
}

// ToParcelaMedicaoDTO converts ParcelaMedicao to ParcelaDTO
func ToParcelaMedicaoDTO(parcela *domain.ParcelaMedicao) domain.ParcelaDTO {
	return domain.ParcelaDTO{
		ID:           parcela.ID,
		DataPrevista: formatDate(parcela.DataPrevista),
		Valor:        parcela.Valor,
		Status:       parcela.Status,
		PagaEm:       formatTimestampPtr(parcela.PagaEm),
	}
}

// ToPedidoCompraDTO converts PedidoCompra to PedidoCompraDTO
func ToPedidoCompraDTO(pedido *domain.PedidoCompra) domain.PedidoCompraDTO {
	dto := domain.PedidoCompraDTO{
		ID:           pedido.ID,
		Numero:       pedido.Numero,
		ObraID:       pedido.ObraID,
		FornecedorID: pedido.FornecedorID,
		Status:       pedido.Status,
		DataEmissao:  formatDate(pedido.DataEmissao),
		ValorTotal:   pedido.ValorTotal,
		Observacoes:  pedido.Observacoes,
		AprovadoPor:  pedido.AprovadoPor,
		AprovadoEm:   formatTimestampPtr(pedido.AprovadoEm),
		CreatedAt:    pedido.CreatedAt.Format(timestampLayout),
		UpdatedAt:    pedido.UpdatedAt.Format(timestampLayout),
	}
	if pedido.Obra != nil {
		dto.ObraNome = pedido.Obra.Nome
	}
	if pedido.Fornecedor != nil {
		dto.FornecedorNome = pedido.Fornecedor.RazaoSocial
	}
	for i := range pedido.Itens {
		item := &pedido.Itens[i]
		dto.Itens = append(dto.Itens, domain.PedidoCompraItemDTO{
			ID:            item.ID,
			ItemCustoID:   item.ItemCustoID,
			Descricao:     item.Descricao,
			Unidade:       item.Unidade,
			Quantidade:    item.Quantidade,
			ValorUnitario: item.ValorUnitario,
			ValorTotal:    item.ValorTotal(),
		})
	}
	for i := range pedido.Parcelas {
		dto.Parcelas = append(dto.Parcelas, ToParcelaPedidoDTO(&pedido.Parcelas[i]))
	}
	return dto
}

// ToItemNegociacaoDTO converts ItemNegociacao to ItemNegociacaoDTO
func ToItemNegociacaoDTO(item *domain.ItemNegociacao) domain.ItemNegociacaoDTO {
	return domain.ItemNegociacaoDTO{
		ID:                   item.ID,
		ItemCustoID:          item.ItemCustoID,
		Descricao:            item.Descricao,
		Unidade:              item.Unidade,
		Quantidade:           item.Quantidade,
		PrecoUnitario:        item.PrecoUnitario,
		QuantidadeMedida:     item.QuantidadeMedida,
		QuantidadeDisponivel: item.QuantidadeDisponivel(),
		PercentualExecutado:  ledger.PercentualLimitado(item.QuantidadeMedida, item.Quantidade),
	}
}

// ToNegociacaoDTO converts Negociacao to NegociacaoDTO
func ToNegociacaoDTO(negociacao *domain.Negociacao) domain.NegociacaoDTO {
	dto := domain.NegociacaoDTO{
		ID:           negociacao.ID,
		Numero:       negociacao.Numero,
		ObraID:       negociacao.ObraID,
		FornecedorID: negociacao.FornecedorID,
		Tipo:         negociacao.Tipo,
		DataInicio:   formatDate(negociacao.DataInicio),
		DataFim:      formatDatePtr(negociacao.DataFim),
		ValorTotal:   negociacao.ValorTotal,
		Observacoes:  negociacao.Observacoes,
		CreatedAt:    negociacao.CreatedAt.Format(timestampLayout),
		UpdatedAt:    negociacao.UpdatedAt.Format(timestampLayout),
	}
	if negociacao.Obra != nil {
		dto.ObraNome = negociacao.Obra.Nome
	}
	if negociacao.Fornecedor != nil {
		dto.FornecedorNome = negociacao.Fornecedor.RazaoSocial
	}
	for i := range negociacao.Itens {
		dto.Itens = append(dto.Itens, ToItemNegociacaoDTO(&negociacao.Itens[i]))
	}
	return dto
}

// ToMedicaoDTO converts Medicao to MedicaoDTO
func ToMedicaoDTO(medicao *domain.Medicao) domain.MedicaoDTO {
	dto := domain.MedicaoDTO{
		ID:           medicao.ID,
		NegociacaoID: medicao.NegociacaoID,
		Numero:       medicao.Numero,
		Status:       medicao.Status,
		DataInicio:   formatDate(medicao.DataInicio),
		DataFim:      formatDate(medicao.DataFim),
		Desconto:     medicao.Desconto,
		ValorTotal:   medicao.ValorTotal,
		Observacoes:  medicao.Observacoes,
		AprovadaPor:  medicao.AprovadaPor,
		AprovadaEm:   formatTimestampPtr(medicao.AprovadaEm),
		CreatedAt:    medicao.CreatedAt.Format(timestampLayout),
		UpdatedAt:    medicao.UpdatedAt.Format(timestampLayout),
	}
	for i := range medicao.Itens {
		item := &medicao.Itens[i]
		itemDTO := domain.MedicaoItemDTO{
			ID:               item.ID,
			ItemNegociacaoID: item.ItemNegociacaoID,
			QuantidadeMedida: item.QuantidadeMedida,
			ValorUnitario:    item.ValorUnitario,
			ValorTotal:       item.ValorTotal(),
		}
		if item.ItemNegociacao != nil {
			itemDTO.Descricao = item.ItemNegociacao.Descricao
			itemDTO.QuantidadeJaMedida = item.ItemNegociacao.QuantidadeMedida
			itemDTO.QuantidadeDisponivel = item.ItemNegociacao.QuantidadeDisponivel()
			itemDTO.PercentualExecutado = ledger.PercentualLimitado(
				item.ItemNegociacao.QuantidadeMedida, item.ItemNegociacao.Quantidade)
		}
		dto.Itens = append(dto.Itens, itemDTO)
	}
	for i := range medicao.Parcelas {
		dto.Parcelas = append(dto.Parcelas, ToParcelaMedicaoDTO(&medicao.Parcelas[i]))
	}
	return dto
}

// ToContaDTO converts a financial report row to ContaDTO
func ToContaDTO(row repository.ContaRow) domain.ContaDTO {
	return domain.ContaDTO{
		ParcelaID:      row.ParcelaID,
		Origem:         row.Origem,
		OrigemID:       row.OrigemID,
		Numero:         row.Numero,
		FornecedorNome: row.FornecedorNome,
		ObraNome:       row.ObraNome,
		DataPrevista:   formatDate(row.DataPrevista),
		Valor:          row.Valor,
		Status:         row.Status,
	}
}
