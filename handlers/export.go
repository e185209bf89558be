// handlers/export.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hsandinha/cotareconstruir-sub002/config"
	"github.com/hsandinha/cotareconstruir-sub002/middleware"
	"github.com/hsandinha/cotareconstruir-sub002/models"
)

// ExportPedidosExcel streams the caller's pedidos as a spreadsheet,
// scoped to the cliente or fornecedor behind the token.
func ExportPedidosExcel(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Preload("Obra").Preload("Fornecedor").Preload("Cliente").
		Order("created_at DESC")
	switch middleware.GetUserTipo(r) {
	case models.UserTipoCliente:
		cliente := currentCliente(r)
		if cliente == nil {
			respondError(w, http.StatusForbidden, msgAcessoNegado)
			return
		}
		q = q.Where("cliente_id = ?", cliente.ID)
	case models.UserTipoFornecedor:
		fornecedor := currentFornecedor(r)
		if fornecedor == nil {
			respondError(w, http.StatusForbidden, msgAcessoNegado)
			return
		}
		q = q.Where("fornecedor_id = ?", fornecedor.ID)
	default:
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var pedidos []models.Pedido
	if err := q.Find(&pedidos).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar pedidos")
		return
	}

	headers := []string{"Número", "Status", "Obra", "Fornecedor", "Cliente",
		"Valor Total (R$)", "Impostos (R$)", "Entrega Prevista", "Criado em"}
	f, sheet := novaPlanilha("Pedidos", headers)

	now := time.Now()
	for i, pedido := range pedidos {
		obra, fornecedorNome, clienteNome := "", "", ""
		if pedido.Obra != nil {
			obra = pedido.Obra.Nome
		}
		if pedido.Fornecedor != nil {
			fornecedorNome = pedido.Fornecedor.NomeEmpresa
		}
		if pedido.Cliente != nil {
			clienteNome = pedido.Cliente.NomeEmpresa
		}
		status := pedido.Status
		if PedidoAtrasado(&pedidos[i], now) {
			status += " (atrasado)"
		}
		entrega := ""
		if prevista, ok := DataPrevistaEntrega(&pedidos[i]); ok {
			entrega = prevista.Format("02/01/2006")
		}
		escreverLinha(f, sheet, i+2, []interface{}{
			pedido.Numero, status, obra, fornecedorNome, clienteNome,
			pedido.ValorTotal, pedido.ValorImpostos, entrega,
			pedido.CreatedAt.Format("02/01/2006 15:04"),
		})
	}

	enviarPlanilha(w, f, "pedidos")
}

// ExportCotacoesExcel streams the client's cotações with their derived
// display status and proposal counts.
func ExportCotacoesExcel(w http.ResponseWriter, r *http.Request) {
	cliente := currentCliente(r)
	if cliente == nil {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var cotacoes []models.Cotacao
	if err := config.DB.Preload("Obra").Preload("Itens").
		Where("cliente_id = ?", cliente.ID).
		Order("created_at DESC").Find(&cotacoes).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar cotações")
		return
	}

	headers := []string{"Número", "Status", "Grupo", "Obra", "Itens",
		"Propostas", "Criada em"}
	f, sheet := novaPlanilha("Cotações", headers)

	for i, cotacao := range cotacoes {
		qtd := 0
		if cotacao.QtdPropostas != nil {
			qtd = *cotacao.QtdPropostas
		} else {
			var n int64
			config.DB.Model(&models.Proposta{}).Where("cotacao_id = ?", cotacao.ID).Count(&n)
			qtd = int(n)
		}
		obra := ""
		if cotacao.Obra != nil {
			obra = cotacao.Obra.Nome
		}
		escreverLinha(f, sheet, i+2, []interface{}{
			cotacao.Numero, StatusExibicao(cotacao.Status, qtd),
			GrupoDaCotacao(cotacao.Observacoes), obra,
			len(cotacao.Itens), qtd,
			cotacao.CreatedAt.Format("02/01/2006 15:04"),
		})
	}

	enviarPlanilha(w, f, "cotacoes")
}

// novaPlanilha creates the workbook with a single named sheet and a
// styled header row.
func novaPlanilha(nome string, headers []string) (*excelize.File, string) {
	f := excelize.NewFile()
	index, _ := f.NewSheet(nome)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(nome, cell, header)
		f.SetCellStyle(nome, cell, cell, headerStyle)
		letra, _ := excelize.ColumnNumberToName(col + 1)
		f.SetColWidth(nome, letra, letra, 22)
	}
	return f, nome
}

func escreverLinha(f *excelize.File, sheet string, row int, valores []interface{}) {
	for col, valor := range valores {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		f.SetCellValue(sheet, cell, valor)
	}
}

// enviarPlanilha writes the workbook to the response as a download.
func enviarPlanilha(w http.ResponseWriter, f *excelize.File, prefixo string) {
	buffer, err := f.WriteToBuffer()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao gerar planilha")
		return
	}
	filename := fmt.Sprintf("%s_%s.xlsx", prefixo, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}
