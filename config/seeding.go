package config

import (
	"log"

	"github.com/hsandinha/cotareconstruir-sub002/models"
)

// Standard construction insumo groups. Suppliers opt into these to
// start receiving cotações; the router also matches them by name.
var gruposPadrao = []models.GrupoInsumo{
	{Nome: "Cimento", Descricao: "Cimento e argamassas"},
	{Nome: "Tijolos", Descricao: "Tijolos e blocos"},
	{Nome: "Areia e Brita", Descricao: "Agregados"},
	{Nome: "Aço e Ferragens", Descricao: "Vergalhões, treliças e ferragens"},
	{Nome: "Madeira", Descricao: "Madeiras para forma e acabamento"},
	{Nome: "Hidráulica", Descricao: "Tubos, conexões e registros"},
	{Nome: "Elétrica", Descricao: "Fios, cabos e componentes elétricos"},
	{Nome: "Pintura", Descricao: "Tintas, seladores e texturas"},
	{Nome: "Revestimentos", Descricao: "Pisos, azulejos e porcelanatos"},
	{Nome: "Esquadrias", Descricao: "Portas, janelas e vidros"},
}

// SeedGruposInsumo inserts the standard groups if missing. Safe to run
// on every boot.
func SeedGruposInsumo() {
	for _, grupo := range gruposPadrao {
		var existing models.GrupoInsumo
		err := DB.Where("nome = ?", grupo.Nome).First(&existing).Error
		if err == nil {
			continue
		}
		g := grupo
		g.IsActive = true
		if err := DB.Create(&g).Error; err != nil {
			log.Printf("Warning: could not seed grupo %q: %v", grupo.Nome, err)
		}
	}
}
