package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/hsandinha/cotareconstruir-sub002/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250810_create_base_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Cliente{}, &models.Fornecedor{},
					&models.Obra{}, &models.GrupoInsumo{}, &models.Insumo{})
			},
		},
		{
			ID: "20250810_create_cotacao_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Cotacao{}, &models.CotacaoItem{},
					&models.Proposta{}, &models.PropostaItem{},
					&models.Pedido{}, &models.PedidoItem{})
			},
		},
		{
			ID: "20250811_create_support_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Notificacao{}, &models.Mensagem{})
			},
		},
		{
			// One proposta and one pedido per (cotacao, fornecedor). The
			// unique index is the serialization point for concurrent
			// submissions; inserts that lose the race fall back to update.
			ID: "20250815_unique_cotacao_fornecedor",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_proposta_cotacao_fornecedor
					ON propostas (cotacao_id, fornecedor_id) WHERE deleted_at IS NULL`).Error; err != nil {
					return err
				}
				return tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_pedido_cotacao_fornecedor
					ON pedidos (cotacao_id, fornecedor_id) WHERE deleted_at IS NULL`).Error
			},
		},
		{
			// Older deployments predate the frozen proposal count; keep the
			// column addition as its own step so the finalize fallback in
			// handlers/pedidos.go stays exercisable against them.
			ID: "20250820_add_qtd_propostas",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(`ALTER TABLE cotacoes ADD COLUMN IF NOT EXISTS qtd_propostas integer`).Error
			},
		},
	})

	return m.Migrate()
}
