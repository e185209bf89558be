// handlers/grupo_router.go
package handlers

import (
	"github.com/google/uuid"

	"github.com/hsandinha/cotareconstruir-sub002/models"
	"github.com/hsandinha/cotareconstruir-sub002/utils"
)

// ItemCotacaoInput is one requested line in a quote-creation call.
type ItemCotacaoInput struct {
	InsumoID   *uuid.UUID `json:"insumoId,omitempty"`
	Nome       string     `json:"nome"`
	Quantidade float64    `json:"quantidade"`
	Unidade    string     `json:"unidade"`
	GrupoNome  string     `json:"grupoNome"`
	Fase       *string    `json:"fase,omitempty"`
	Servico    *string    `json:"servico,omitempty"`
}

// GrupoBucket collects the items of one resolved insumo group. One
// cotação is created per bucket.
type GrupoBucket struct {
	GrupoID   uuid.UUID
	GrupoNome string
	Itens     []ItemCotacaoInput
}

// resolveGrupo maps one item to its group: the material's mapped group
// when the insumo is known, else a diacritic-insensitive name match on
// the caller-supplied label. ok=false means the item is invalid.
func resolveGrupo(item ItemCotacaoInput, insumos map[uuid.UUID]models.Insumo, gruposPorID map[uuid.UUID]models.GrupoInsumo, gruposPorNome map[string]models.GrupoInsumo) (models.GrupoInsumo, bool) {
	if item.InsumoID != nil {
		if insumo, known := insumos[*item.InsumoID]; known {
			if grupo, known := gruposPorID[insumo.GrupoID]; known {
				return grupo, true
			}
		}
	}
	if grupo, known := gruposPorNome[utils.NormalizeNome(item.GrupoNome)]; known {
		return grupo, true
	}
	return models.GrupoInsumo{}, false
}

// RouteItems buckets the submitted items by resolved group and returns
// the bucket list in first-appearance order plus the names of items
// that resolve to no group. Callers must reject the whole submission
// when any invalid name comes back: no partial quote batch is created.
func RouteItems(itens []ItemCotacaoInput, insumos map[uuid.UUID]models.Insumo, grupos []models.GrupoInsumo) ([]*GrupoBucket, []string) {
	gruposPorID := make(map[uuid.UUID]models.GrupoInsumo, len(grupos))
	gruposPorNome := make(map[string]models.GrupoInsumo, len(grupos))
	for _, g := range grupos {
		gruposPorID[g.ID] = g
		gruposPorNome[utils.NormalizeNome(g.Nome)] = g
	}

	byGrupo := map[uuid.UUID]*GrupoBucket{}
	var buckets []*GrupoBucket
	var invalidos []string

	for _, item := range itens {
		grupo, ok := resolveGrupo(item, insumos, gruposPorID, gruposPorNome)
		if !ok {
			invalidos = append(invalidos, item.Nome)
			continue
		}
		bucket, exists := byGrupo[grupo.ID]
		if !exists {
			bucket = &GrupoBucket{GrupoID: grupo.ID, GrupoNome: grupo.Nome}
			byGrupo[grupo.ID] = bucket
			buckets = append(buckets, bucket)
		}
		bucket.Itens = append(bucket.Itens, item)
	}

	return buckets, invalidos
}

// FornecedorElegivel is the inverse of the routing: a cotação is
// visible to a supplier when at least one item's resolved group (by
// insumo mapping or normalized name) intersects the supplier's
// memberships. Zero memberships means zero visibility.
func FornecedorElegivel(itens []models.CotacaoItem, insumos map[uuid.UUID]models.Insumo, gruposFornecedor []models.GrupoInsumo) bool {
	if len(gruposFornecedor) == 0 {
		return false
	}
	porID := make(map[uuid.UUID]bool, len(gruposFornecedor))
	porNome := make(map[string]bool, len(gruposFornecedor))
	for _, g := range gruposFornecedor {
		porID[g.ID] = true
		porNome[utils.NormalizeNome(g.Nome)] = true
	}

	for _, item := range itens {
		if item.InsumoID != nil {
			if insumo, known := insumos[*item.InsumoID]; known && porID[insumo.GrupoID] {
				return true
			}
		}
		if item.GrupoNome != "" && porNome[utils.NormalizeNome(item.GrupoNome)] {
			return true
		}
	}
	return false
}
