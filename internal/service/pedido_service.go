package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/ledger"
	"github.com/construtivo/construtivo-api/internal/mapper"
	"github.com/construtivo/construtivo-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PedidoService handles business logic for purchase orders. Approval and
// deletion reconcile the budget ledger: approving consumes quantity and value
// on every referenced item de custo, deleting an approved pedido reverses
// exactly what the approval consumed. Both run as a single transaction so the
// pedido status, the item totals and the grupo/centro aggregates always move
// together.
type PedidoService struct {
	pedidoRepo *repository.PedidoRepository
	itemRepo   *repository.ItemCustoRepository
	obraRepo   *repository.ObraRepository
	fornRepo   *repository.FornecedorRepository
	logger     *zap.Logger
	db         *gorm.DB
}

// NewPedidoService creates a new PedidoService instance
func NewPedidoService(
	pedidoRepo *repository.PedidoRepository,
	itemRepo *repository.ItemCustoRepository,
	obraRepo *repository.ObraRepository,
	fornRepo *repository.FornecedorRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *PedidoService {
	return &PedidoService{
		pedidoRepo: pedidoRepo,
		itemRepo:   itemRepo,
		obraRepo:   obraRepo,
		fornRepo:   fornRepo,
		logger:     logger,
		db:         db,
	}
}

// nextNumero generates the sequential pedido number for the emission year,
// e.g. PC-2026-0001. The sequence continues from the highest existing number
// so deleted pedidos never cause a numero to be reissued.
func (s *PedidoService) nextNumero(ctx context.Context, emissao time.Time) (string, error) {
	prefix := fmt.Sprintf("PC-%d-", emissao.Year())
	ultimo, err := s.pedidoRepo.MaxNumeroByPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to query last pedido numero: %w", err)
	}
	seq := 0
	if ultimo != "" {
		seq, err = strconv.Atoi(strings.TrimPrefix(ultimo, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed pedido numero %q: %w", ultimo, err)
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

func validateParcelas(parcelas []domain.ParcelaRequest, total decimal.Decimal) error {
	if len(parcelas) == 0 {
		return nil
	}
	var soma decimal.Decimal
	for _, p := range parcelas {
		if !p.Valor.IsPositive() {
			return ErrInvalidInput
		}
		soma = soma.Add(p.Valor)
	}
	if !soma.Equal(total) {
		return ErrParcelasDivergem
	}
	return nil
}

// Create creates a pedido de compra in pendente status. Creation commits
// nothing against the budget; only approval does.
func (s *PedidoService) Create(ctx context.Context, req *domain.CreatePedidoCompraRequest) (*domain.PedidoCompraDTO, error) {
	if _, err := s.obraRepo.GetByID(ctx, req.ObraID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to verify obra: %w", err)
	}
	if _, err := s.fornRepo.GetByID(ctx, req.FornecedorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to verify fornecedor: %w", err)
	}

	var total decimal.Decimal
	itens := make([]domain.PedidoCompraItem, 0, len(req.Itens))
	for _, itemReq := range req.Itens {
		if !itemReq.Quantidade.IsPositive() || itemReq.ValorUnitario.IsNegative() {
			return nil, ErrInvalidInput
		}
		itemCusto, err := s.itemRepo.GetByID(ctx, itemReq.ItemCustoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to verify item de custo: %w", err)
		}
		itens = append(itens, domain.PedidoCompraItem{
			ItemCustoID:   itemCusto.ID,
			Descricao:     itemCusto.Descricao,
			Unidade:       itemCusto.Unidade,
			Quantidade:    itemReq.Quantidade,
			ValorUnitario: itemReq.ValorUnitario,
		})
		total = total.Add(itemReq.Quantidade.Mul(itemReq.ValorUnitario))
	}

	if err := validateParcelas(req.Parcelas, total); err != nil {
		return nil, err
	}
	parcelas := make([]domain.ParcelaPedidoCompra, 0, len(req.Parcelas))
	for _, p := range req.Parcelas {
		parcelas = append(parcelas, domain.ParcelaPedidoCompra{
			DataPrevista: p.DataPrevista,
			Valor:        p.Valor,
			Status:       domain.ParcelaPendente,
		})
	}

	numero, err := s.nextNumero(ctx, req.DataEmissao)
	if err != nil {
		return nil, err
	}

	pedido := &domain.PedidoCompra{
		Numero:       numero,
		ObraID:       req.ObraID,
		FornecedorID: req.FornecedorID,
		Status:       domain.StatusPendente,
		DataEmissao:  req.DataEmissao,
		ValorTotal:   total,
		Observacoes:  req.Observacoes,
		Itens:        itens,
		Parcelas:     parcelas,
	}
	if err := s.pedidoRepo.Create(ctx, pedido); err != nil {
		return nil, fmt.Errorf("failed to create pedido: %w", err)
	}

	s.logger.Info("pedido created",
		zap.String("pedidoID", pedido.ID.String()),
		zap.String("numero", pedido.Numero),
		zap.String("valorTotal", total.String()))

	return s.GetByID(ctx, pedido.ID)
}

// GetByID returns a pedido with its itens, parcelas and related names
func (s *PedidoService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PedidoCompraDTO, error) {
	pedido, err := s.pedidoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pedido: %w", err)
	}
	dto := mapper.ToPedidoCompraDTO(pedido)
	return &dto, nil
}

// List returns pedidos filtered by obra, fornecedor and status
func (s *PedidoService) List(ctx context.Context, obraID, fornecedorID *uuid.UUID, status domain.Status) ([]domain.PedidoCompraDTO, error) {
	if status != "" && !status.IsValid() {
		return nil, ErrInvalidInput
	}
	pedidos, err := s.pedidoRepo.List(ctx, obraID, fornecedorID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list pedidos: %w", err)
	}
	dtos := make([]domain.PedidoCompraDTO, 0, len(pedidos))
	for i := range pedidos {
		dtos = append(dtos, mapper.ToPedidoCompraDTO(&pedidos[i]))
	}
	return dtos, nil
}

// Update replaces a pending pedido's header, itens and parcelas. Approved
// pedidos are immutable; they must be deleted (reversing the ledger) and
// recreated.
func (s *PedidoService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdatePedidoCompraRequest) (*domain.PedidoCompraDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pedido domain.PedidoCompra
		if err := tx.Where("id = ?", id).First(&pedido).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get pedido: %w", err)
		}
		if pedido.Status == domain.StatusAprovado {
			return ErrPedidoJaAprovado
		}

		var total decimal.Decimal
		itens := make([]domain.PedidoCompraItem, 0, len(req.Itens))
		for _, itemReq := range req.Itens {
			if !itemReq.Quantidade.IsPositive() || itemReq.ValorUnitario.IsNegative() {
				return ErrInvalidInput
			}
			var itemCusto domain.ItemCusto
			if err := tx.Where("id = ?", itemReq.ItemCustoID).First(&itemCusto).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return fmt.Errorf("failed to verify item de custo: %w", err)
			}
			itens = append(itens, domain.PedidoCompraItem{
				PedidoCompraID: pedido.ID,
				ItemCustoID:    itemCusto.ID,
				Descricao:      itemCusto.Descricao,
				Unidade:        itemCusto.Unidade,
				Quantidade:     itemReq.Quantidade,
				ValorUnitario:  itemReq.ValorUnitario,
			})
			total = total.Add(itemReq.Quantidade.Mul(itemReq.ValorUnitario))
		}
		if err := validateParcelas(req.Parcelas, total); err != nil {
			return err
		}

		if err := tx.Where("pedido_compra_id = ?", id).Delete(&domain.PedidoCompraItem{}).Error; err != nil {
			return fmt.Errorf("failed to replace itens: %w", err)
		}
		if err := tx.Where("pedido_compra_id = ?", id).Delete(&domain.ParcelaPedidoCompra{}).Error; err != nil {
			return fmt.Errorf("failed to replace parcelas: %w", err)
		}
		for i := range itens {
			if err := tx.Create(&itens[i]).Error; err != nil {
				return fmt.Errorf("failed to create item: %w", err)
			}
		}
		for _, p := range req.Parcelas {
			parcela := domain.ParcelaPedidoCompra{
				PedidoCompraID: pedido.ID,
				DataPrevista:   p.DataPrevista,
				Valor:          p.Valor,
				Status:         domain.ParcelaPendente,
			}
			if err := tx.Create(&parcela).Error; err != nil {
				return fmt.Errorf("failed to create parcela: %w", err)
			}
		}

		updates := map[string]interface{}{
			"obra_id":       req.ObraID,
			"fornecedor_id": req.FornecedorID,
			"data_emissao":  req.DataEmissao,
			"observacoes":   req.Observacoes,
			"valor_total":   total,
		}
		return tx.Model(&domain.PedidoCompra{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Approve approves a pending pedido and consumes its quantities against the
// budget. Availability is re-validated inside the transaction against the
// current item state, not whatever the client last saw. Approving an already
// approved pedido changes nothing and reports a warning.
func (s *PedidoService) Approve(ctx context.Context, id uuid.UUID, req *domain.ApproveRequest) (*domain.PedidoCompraDTO, domain.Feedback, error) {
	var feedback domain.Feedback

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pedido domain.PedidoCompra
		if err := tx.Preload("Itens").Where("id = ?", id).First(&pedido).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get pedido: %w", err)
		}

		if pedido.Status == domain.StatusAprovado {
			feedback = domain.NewFeedback(domain.FeedbackWarning, "Pedido já aprovado", "Este pedido já está aprovado")
			return nil
		}

		gruposAfetados := make(map[uuid.UUID]struct{})
		for _, linha := range pedido.Itens {
			var item domain.ItemCusto
			if err := tx.Where("id = ?", linha.ItemCustoID).First(&item).Error; err != nil {
				return fmt.Errorf("failed to load item de custo: %w", err)
			}

			if !ledger.ItemDisponivel(item.RealizadoPercentual()) {
				return ErrItemIndisponivel
			}
			if ledger.ExcedeContratado(item.Quantidade, item.QuantidadeRealizada, linha.Quantidade) {
				return ErrOrcamentoExcedido
			}

			atual := ledger.Realizacao{Quantidade: item.QuantidadeRealizada, Valor: item.ValorRealizado}
			nova := atual.Acrescentar(linha.Quantidade, linha.ValorUnitario)
			if err := writeItemRealizacao(tx, &item, nova); err != nil {
				return err
			}
			gruposAfetados[item.GrupoID] = struct{}{}
		}

		agora := time.Now().UTC()
		updates := map[string]interface{}{
			"status":       domain.StatusAprovado,
			"aprovado_por": req.AprovadoPor,
			"aprovado_em":  agora,
		}
		if err := tx.Model(&domain.PedidoCompra{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to approve pedido: %w", err)
		}

		for grupoID := range gruposAfetados {
			if err := recomputeGrupo(tx, grupoID); err != nil {
				return err
			}
		}

		feedback = domain.NewFeedback(domain.FeedbackSuccess, "Pedido aprovado",
			fmt.Sprintf("Pedido %s aprovado com sucesso", pedido.Numero))
		s.logger.Info("pedido approved",
			zap.String("pedidoID", id.String()),
			zap.String("numero", pedido.Numero),
			zap.String("aprovadoPor", req.AprovadoPor))
		return nil
	})
	if err != nil {
		return nil, domain.Feedback{}, err
	}

	dto, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Feedback{}, err
	}
	return dto, feedback, nil
}

// Delete removes a pedido. Deleting an approved pedido first reverses its
// consumption on every item de custo, restoring the exact quantities and
// values the approval accrued.
func (s *PedidoService) Delete(ctx context.Context, id uuid.UUID) (domain.Feedback, error) {
	var feedback domain.Feedback

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pedido domain.PedidoCompra
		if err := tx.Preload("Itens").Where("id = ?", id).First(&pedido).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get pedido: %w", err)
		}

		gruposAfetados := make(map[uuid.UUID]struct{})
		if pedido.Status == domain.StatusAprovado {
			for _, linha := range pedido.Itens {
				var item domain.ItemCusto
				if err := tx.Where("id = ?", linha.ItemCustoID).First(&item).Error; err != nil {
					return fmt.Errorf("failed to load item de custo: %w", err)
				}
				atual := ledger.Realizacao{Quantidade: item.QuantidadeRealizada, Valor: item.ValorRealizado}
				nova := atual.Estornar(linha.Quantidade, linha.ValorUnitario)
				if err := writeItemRealizacao(tx, &item, nova); err != nil {
					return err
				}
				gruposAfetados[item.GrupoID] = struct{}{}
			}
		}

		if err := tx.Where("pedido_compra_id = ?", id).Delete(&domain.PedidoCompraItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete itens: %w", err)
		}
		if err := tx.Where("pedido_compra_id = ?", id).Delete(&domain.ParcelaPedidoCompra{}).Error; err != nil {
			return fmt.Errorf("failed to delete parcelas: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&domain.PedidoCompra{}).Error; err != nil {
			return fmt.Errorf("failed to delete pedido: %w", err)
		}

		for grupoID := range gruposAfetados {
			if err := recomputeGrupo(tx, grupoID); err != nil {
				return err
			}
		}

		feedback = domain.NewFeedback(domain.FeedbackSuccess, "Pedido removido",
			fmt.Sprintf("Pedido %s removido com sucesso", pedido.Numero))
		s.logger.Info("pedido deleted",
			zap.String("pedidoID", id.String()),
			zap.String("numero", pedido.Numero),
			zap.Bool("estornado", pedido.Status == domain.StatusAprovado))
		return nil
	})
	if err != nil {
		return domain.Feedback{}, err
	}
	return feedback, nil
}
