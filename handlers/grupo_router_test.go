package handlers

import (
	"testing"

	"github.com/google/uuid"

	"github.com/hsandinha/cotareconstruir-sub002/models"
)

func routerFixture() (map[uuid.UUID]models.Insumo, []models.GrupoInsumo) {
	cimento := models.GrupoInsumo{ID: uuid.New(), Nome: "Cimento"}
	tijolos := models.GrupoInsumo{ID: uuid.New(), Nome: "Tijolos"}
	aco := models.GrupoInsumo{ID: uuid.New(), Nome: "Aço e Ferragens"}

	cpII := models.Insumo{ID: uuid.New(), GrupoID: cimento.ID, Nome: "Cimento CP-II 50kg"}
	bloco := models.Insumo{ID: uuid.New(), GrupoID: tijolos.ID, Nome: "Bloco cerâmico 9x19x39"}

	insumos := map[uuid.UUID]models.Insumo{cpII.ID: cpII, bloco.ID: bloco}
	return insumos, []models.GrupoInsumo{cimento, tijolos, aco}
}

func TestRouteItemsByInsumoMapping(t *testing.T) {
	insumos, grupos := routerFixture()
	var cimentoInsumo uuid.UUID
	for id, insumo := range insumos {
		if insumo.Nome == "Cimento CP-II 50kg" {
			cimentoInsumo = id
		}
	}

	buckets, invalidos := RouteItems([]ItemCotacaoInput{
		{InsumoID: &cimentoInsumo, Nome: "Cimento CP-II 50kg", Quantidade: 100},
	}, insumos, grupos)

	if len(invalidos) != 0 {
		t.Fatalf("unexpected invalid items: %v", invalidos)
	}
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	if buckets[0].GrupoNome != "Cimento" {
		t.Errorf("bucket group = %q, expected Cimento", buckets[0].GrupoNome)
	}
}

func TestRouteItemsNameFallbackIgnoresAccents(t *testing.T) {
	insumos, grupos := routerFixture()

	buckets, invalidos := RouteItems([]ItemCotacaoInput{
		{Nome: "Vergalhão 10mm", Quantidade: 50, GrupoNome: "aço e ferragens"},
		{Nome: "Treliça H8", Quantidade: 20, GrupoNome: "ACO E FERRAGENS"},
	}, insumos, grupos)

	if len(invalidos) != 0 {
		t.Fatalf("unexpected invalid items: %v", invalidos)
	}
	if len(buckets) != 1 {
		t.Fatalf("accent/case variants must land in one bucket, got %d", len(buckets))
	}
	if len(buckets[0].Itens) != 2 {
		t.Errorf("bucket should hold both items, got %d", len(buckets[0].Itens))
	}
}

func TestRouteItemsOneBucketPerGroup(t *testing.T) {
	insumos, grupos := routerFixture()

	buckets, invalidos := RouteItems([]ItemCotacaoInput{
		{Nome: "Cimento CP-II", Quantidade: 100, GrupoNome: "Cimento"},
		{Nome: "Cal hidratada", Quantidade: 10, GrupoNome: "Cimento"},
		{Nome: "Tijolo baiano", Quantidade: 2000, GrupoNome: "Tijolos"},
	}, insumos, grupos)

	if len(invalidos) != 0 {
		t.Fatalf("unexpected invalid items: %v", invalidos)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	// First-appearance order is preserved.
	if buckets[0].GrupoNome != "Cimento" || buckets[1].GrupoNome != "Tijolos" {
		t.Errorf("bucket order = %q, %q", buckets[0].GrupoNome, buckets[1].GrupoNome)
	}
	if len(buckets[0].Itens) != 2 || len(buckets[1].Itens) != 1 {
		t.Errorf("item split = %d/%d, expected 2/1", len(buckets[0].Itens), len(buckets[1].Itens))
	}
}

func TestRouteItemsCollectsAllInvalidNames(t *testing.T) {
	insumos, grupos := routerFixture()
	unknownInsumo := uuid.New()

	_, invalidos := RouteItems([]ItemCotacaoInput{
		{Nome: "Item sem grupo", Quantidade: 1, GrupoNome: "Categoria Inexistente"},
		{InsumoID: &unknownInsumo, Nome: "Insumo desconhecido", Quantidade: 1},
		{Nome: "Cimento ok", Quantidade: 5, GrupoNome: "Cimento"},
	}, insumos, grupos)

	if len(invalidos) != 2 {
		t.Fatalf("expected 2 invalid names, got %v", invalidos)
	}
	if invalidos[0] != "Item sem grupo" || invalidos[1] != "Insumo desconhecido" {
		t.Errorf("invalid names = %v", invalidos)
	}
}

func TestFornecedorElegivel(t *testing.T) {
	insumos, grupos := routerFixture()
	cimento := grupos[0]
	tijolos := grupos[1]

	var blocoID uuid.UUID
	for id, insumo := range insumos {
		if insumo.GrupoID == tijolos.ID {
			blocoID = id
		}
	}

	itensCimento := []models.CotacaoItem{{Nome: "Cimento CP-II", GrupoNome: "Cimento"}}
	itensTijolosPorInsumo := []models.CotacaoItem{{Nome: "Bloco cerâmico", InsumoID: &blocoID}}

	t.Run("membership by group name", func(t *testing.T) {
		if !FornecedorElegivel(itensCimento, insumos, []models.GrupoInsumo{cimento}) {
			t.Error("cimento member should see cimento quote")
		}
	})

	t.Run("membership by insumo mapping", func(t *testing.T) {
		if !FornecedorElegivel(itensTijolosPorInsumo, insumos, []models.GrupoInsumo{tijolos}) {
			t.Error("tijolos member should see quote routed via insumo mapping")
		}
	})

	t.Run("non-member blind", func(t *testing.T) {
		if FornecedorElegivel(itensCimento, insumos, []models.GrupoInsumo{tijolos}) {
			t.Error("tijolos member must not see cimento quote")
		}
	})

	t.Run("zero memberships sees nothing", func(t *testing.T) {
		if FornecedorElegivel(itensCimento, insumos, nil) {
			t.Error("supplier with no group memberships must see no quotes")
		}
	})
}
