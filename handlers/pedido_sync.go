// handlers/pedido_sync.go
package handlers

import (
	"gorm.io/gorm"

	"github.com/hsandinha/cotareconstruir-sub002/models"
	"github.com/hsandinha/cotareconstruir-sub002/utils"
)

// AplicarPropostaNosItens overwrites each pedido line item that matches
// an amended proposta item by normalized material name. Unmatched
// pedido items are left untouched but still count in the returned
// subtotal. Name is a fragile join key for renamed or duplicate-named
// items; TODO: thread CotacaoItemID through proposta amendment and
// match on it instead.
func AplicarPropostaNosItens(propItens []models.PropostaItem, pedidoItens []models.PedidoItem) ([]models.PedidoItem, float64, int) {
	porNome := make(map[string]models.PropostaItem, len(propItens))
	for _, item := range propItens {
		porNome[utils.NormalizeNome(item.Nome)] = item
	}

	atualizados := make([]models.PedidoItem, len(pedidoItens))
	copy(atualizados, pedidoItens)

	var subtotal float64
	matched := 0
	for i := range atualizados {
		if novo, ok := porNome[utils.NormalizeNome(atualizados[i].Nome)]; ok {
			atualizados[i].PrecoUnitario = novo.PrecoUnitario
			atualizados[i].Quantidade = novo.Quantidade
			atualizados[i].Subtotal = novo.Subtotal
			matched++
		}
		subtotal += atualizados[i].Subtotal
	}
	return atualizados, subtotal, matched
}

// SyncPedidoComProposta propagates an amended proposta into its
// still-negotiable pedido: item prices and quantities, recomputed
// totals, the snapshot's financial summary and the payment terms. Runs
// inside the caller's transaction.
func SyncPedidoComProposta(tx *gorm.DB, pedido *models.Pedido, proposta *models.Proposta) error {
	var pedidoItens []models.PedidoItem
	if err := tx.Where("pedido_id = ?", pedido.ID).Find(&pedidoItens).Error; err != nil {
		return err
	}

	atualizados, subtotal, _ := AplicarPropostaNosItens(proposta.Itens, pedidoItens)
	for i := range atualizados {
		if err := tx.Model(&models.PedidoItem{}).Where("id = ?", atualizados[i].ID).
			Updates(map[string]interface{}{
				"preco_unitario": atualizados[i].PrecoUnitario,
				"quantidade":     atualizados[i].Quantidade,
				"subtotal":       atualizados[i].Subtotal,
			}).Error; err != nil {
			return err
		}
	}

	snap := pedido.DecodeSnapshot()
	snap.Resumo.Subtotal = subtotal
	snap.Resumo.Frete = proposta.ValorFrete
	snap.Resumo.Impostos = proposta.ValorImpostos
	snap.Resumo.PrazoEntregaDias = proposta.PrazoEntregaDias
	snap.Resumo.FormaPagamento = proposta.CondicoesPagamento
	snap.Itens = make([]models.SnapshotItem, 0, len(atualizados))
	for _, item := range atualizados {
		snap.Itens = append(snap.Itens, models.SnapshotItem{
			Nome:          item.Nome,
			Quantidade:    item.Quantidade,
			Unidade:       item.Unidade,
			PrecoUnitario: item.PrecoUnitario,
			Subtotal:      item.Subtotal,
		})
	}
	if err := pedido.EncodeSnapshot(snap); err != nil {
		return err
	}

	pedido.ValorTotal = subtotal + proposta.ValorFrete + proposta.ValorImpostos
	pedido.ValorImpostos = proposta.ValorImpostos
	return tx.Model(&models.Pedido{}).Where("id = ?", pedido.ID).
		Updates(map[string]interface{}{
			"valor_total":    pedido.ValorTotal,
			"valor_impostos": pedido.ValorImpostos,
			"snapshot":       pedido.Snapshot,
		}).Error
}
