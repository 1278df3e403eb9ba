// Package bootstrap arma los casos de uso sobre el almacenamiento configurado.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/costeo-api/internal/application/catalog"
	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/application/inventory"
	"github.com/jhoicas/costeo-api/internal/application/purchasing"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
	"github.com/jhoicas/costeo-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/costeo-api/internal/infrastructure/pdf"
	"github.com/jhoicas/costeo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/costeo-api/pkg/config"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

// Container casos de uso listos para exponer por HTTP o usar desde herramientas.
type Container struct {
	Purchases   *purchasing.PurchaseOrderUseCase
	PurchasePDF *purchasing.PDFUseCase
	Costing     *costing.CostingUseCase
	Catalog     *catalog.CatalogUseCase
	Adjustments *inventory.AdjustmentUseCase
}

type stores struct {
	materials repository.RawMaterialRepository
	movements repository.StockMovementRepository
	products  repository.ProductRepository
	bom       repository.BOMRepository
	orders    repository.PurchaseOrderRepository
	tx        interface {
		inventory.TxRunner
		purchasing.PurchaseTxRunner
	}
}

// Build conecta el almacenamiento (APP_STORAGE) y construye los casos de uso.
// cleanup libera el pool de conexiones; nunca es nil. Si hay error, lo ya abierto se cierra
// antes de retornar y cleanup no hace nada.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, func(), error) {
	cleanup := func() {}
	var s stores

	switch cfg.App.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		s = stores{
			materials: store.Materials(),
			movements: store.Movements(),
			products:  store.Products(),
			bom:       store.BOM(),
			orders:    store.Orders(),
			tx:        store,
		}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, cleanup, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, cleanup, err
			}
			log.Info().Msg("esquema aplicado")
		}
		s = stores{
			materials: postgres.NewRawMaterialRepository(pool),
			movements: postgres.NewStockMovementRepository(pool),
			products:  postgres.NewProductRepository(pool),
			bom:       postgres.NewBOMRepository(pool),
			orders:    postgres.NewPurchaseOrderRepository(pool),
			tx:        postgres.NewTxRunner(pool),
		}
		cleanup = pool.Close
	default:
		return nil, cleanup, fmt.Errorf("almacenamiento no soportado: %s", cfg.App.Storage)
	}

	return New(s.materials, s.movements, s.products, s.bom, s.orders, s.tx, cfg.Costing, log), cleanup, nil
}

// New construye los casos de uso sobre repositorios ya creados.
func New(
	materials repository.RawMaterialRepository,
	movements repository.StockMovementRepository,
	products repository.ProductRepository,
	bom repository.BOMRepository,
	orders repository.PurchaseOrderRepository,
	tx interface {
		inventory.TxRunner
		purchasing.PurchaseTxRunner
	},
	costingCfg config.CostingConfig,
	log *logger.Logger,
) *Container {
	ledger := inventory.NewLedger(movements)
	updater := inventory.NewCostUpdater(ledger, costingCfg.RecomputeOnReversal)
	purchases := purchasing.NewPurchaseOrderUseCase(tx, orders, updater, costingCfg.OrderPrefix, log)
	return &Container{
		Purchases:   purchases,
		PurchasePDF: purchasing.NewPDFUseCase(orders, materials, infrapdf.NewMarotoPurchaseOrderPDF()),
		Costing:     costing.NewCostingUseCase(ledger, materials, products, bom),
		Catalog:     catalog.NewCatalogUseCase(materials, products, bom),
		Adjustments: inventory.NewAdjustmentUseCase(tx, materials, updater, purchases.NumberPrefix(), log),
	}
}
