package service

import (
	"fmt"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/ledger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Aggregate recompute helpers. Every write that touches an item's realization
// calls these inside the same transaction, so the stored grupo and centro de
// custo totals are never stale relative to the items they summarize.

// recomputeGrupo rebuilds a grupo's stored totals from its items and then
// cascades into the owning centro de custo
func recomputeGrupo(tx *gorm.DB, grupoID uuid.UUID) error {
	var grupo domain.Grupo
	if err := tx.Where("id = ?", grupoID).First(&grupo).Error; err != nil {
		return fmt.Errorf("failed to load grupo for recompute: %w", err)
	}

	var itens []domain.ItemCusto
	if err := tx.Where("grupo_id = ?", grupoID).Find(&itens).Error; err != nil {
		return fmt.Errorf("failed to load itens for recompute: %w", err)
	}

	totais := make([]ledger.ItemTotais, 0, len(itens))
	for _, item := range itens {
		totais = append(totais, ledger.ItemTotais{
			Quantidade:     item.Quantidade,
			PrecoUnitario:  item.PrecoUnitario,
			ValorRealizado: item.ValorRealizado,
		})
	}
	somas := ledger.SomarItens(totais)

	var centro domain.CentroCusto
	if err := tx.Where("id = ?", grupo.CentroCustoID).First(&centro).Error; err != nil {
		return fmt.Errorf("failed to load centro de custo for recompute: %w", err)
	}

	updates := map[string]interface{}{
		"valor_orcado":    somas.Orcado,
		"valor_custo":     somas.Custo,
		"valor_realizado": somas.Realizado,
		"valor_com_bdi":   ledger.ComBDI(somas.Orcado, centro.BDIPercentual),
	}
	if err := tx.Model(&domain.Grupo{}).Where("id = ?", grupoID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update grupo totals: %w", err)
	}

	return recomputeCentro(tx, grupo.CentroCustoID)
}

// recomputeCentro rebuilds a centro de custo's stored totals from its grupos
func recomputeCentro(tx *gorm.DB, centroID uuid.UUID) error {
	var centro domain.CentroCusto
	if err := tx.Where("id = ?", centroID).First(&centro).Error; err != nil {
		return fmt.Errorf("failed to load centro de custo for recompute: %w", err)
	}

	var grupos []domain.Grupo
	if err := tx.Where("centro_custo_id = ?", centroID).Find(&grupos).Error; err != nil {
		return fmt.Errorf("failed to load grupos for recompute: %w", err)
	}

	var totais ledger.TotaisGrupo
	for _, grupo := range grupos {
		totais.Orcado = totais.Orcado.Add(grupo.ValorOrcado)
		totais.Custo = totais.Custo.Add(grupo.ValorCusto)
		totais.Realizado = totais.Realizado.Add(grupo.ValorRealizado)
	}

	updates := map[string]interface{}{
		"valor_orcado":    totais.Orcado,
		"valor_custo":     totais.Custo,
		"valor_realizado": totais.Realizado,
		"valor_com_bdi":   ledger.ComBDI(totais.Orcado, centro.BDIPercentual),
	}
	return tx.Model(&domain.CentroCusto{}).Where("id = ?", centroID).Updates(updates).Error
}

// writeItemRealizacao persists a budget item's new realized totals with an
// optimistic version check. A zero rows-affected update means another
// transaction changed the item after we read it; the caller surfaces
// ErrConflitoVersao and the whole transaction rolls back.
func writeItemRealizacao(tx *gorm.DB, item *domain.ItemCusto, nova ledger.Realizacao) error {
	result := tx.Model(&domain.ItemCusto{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(map[string]interface{}{
			"quantidade_realizada": nova.Quantidade,
			"valor_realizado":      nova.Valor,
			"version":              item.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update item realization: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConflitoVersao
	}
	return nil
}
