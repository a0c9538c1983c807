package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/mapper"
	"github.com/construtivo/construtivo-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FinanceiroService handles the accounts payable/receivable view built from
// the forecast installments of pedidos de compra and medições
type FinanceiroService struct {
	financeiroRepo *repository.FinanceiroRepository
	logger         *zap.Logger
}

// NewFinanceiroService creates a new FinanceiroService instance
func NewFinanceiroService(financeiroRepo *repository.FinanceiroRepository, logger *zap.Logger) *FinanceiroService {
	return &FinanceiroService{financeiroRepo: financeiroRepo, logger: logger}
}

// Resumo returns every installment in the period with pending/paid totals
func (s *FinanceiroService) Resumo(ctx context.Context, de, ate *time.Time, status domain.ParcelaStatus) (*domain.FinanceiroResumoDTO, error) {
	if status != "" && !status.IsValid() {
		return nil, ErrInvalidInput
	}

	rows, err := s.financeiroRepo.ListContas(ctx, de, ate, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list contas: %w", err)
	}

	resumo := &domain.FinanceiroResumoDTO{Contas: make([]domain.ContaDTO, 0, len(rows))}
	for _, row := range rows {
		resumo.Contas = append(resumo.Contas, mapper.ToContaDTO(row))
		resumo.Total = resumo.Total.Add(row.Valor)
		switch row.Status {
		case domain.ParcelaPaga:
			resumo.TotalPago = resumo.TotalPago.Add(row.Valor)
		default:
			resumo.TotalPendente = resumo.TotalPendente.Add(row.Valor)
		}
	}
	return resumo, nil
}

// PagarParcela marks an installment as paid. The origem distinguishes pedido
// installments from medição installments.
func (s *FinanceiroService) PagarParcela(ctx context.Context, origem string, id uuid.UUID) (domain.Feedback, error) {
	agora := time.Now().UTC()

	var err error
	switch origem {
	case repository.OrigemPedidoCompra:
		err = s.financeiroRepo.PagarParcelaPedido(ctx, id, agora)
	case repository.OrigemMedicao:
		err = s.financeiroRepo.PagarParcelaMedicao(ctx, id, agora)
	default:
		return domain.Feedback{}, ErrInvalidInput
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Feedback{}, ErrNotFound
		}
		return domain.Feedback{}, fmt.Errorf("failed to pay parcela: %w", err)
	}

	s.logger.Info("parcela paid",
		zap.String("parcelaID", id.String()),
		zap.String("origem", origem))

	return domain.NewFeedback(domain.FeedbackSuccess, "Parcela paga", "Parcela registrada como paga"), nil
}
