// seed carga un catálogo inicial desde YAML: materias primas, compras que alimentan el
// kardex y productos con su lista de materiales.
//
// Uso: go run ./cmd/seed [ruta/catalogo.yaml]
// Por defecto lee seed/catalogo.yaml. Usa la misma configuración que la API (APP_STORAGE, DB_*).
package main

import (
	"context"
	"os"

	"github.com/jhoicas/costeo-api/internal/bootstrap"
	"github.com/jhoicas/costeo-api/internal/seed"
	"github.com/jhoicas/costeo-api/pkg/config"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

func main() {
	path := "seed/catalogo.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name}).
		Component("seed").
		With("file", path)

	cat, err := seed.LoadFromFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("catálogo")
	}

	ctx := context.Background()
	container, closeStorage, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		closeStorage()
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer closeStorage()

	sum, err := seed.NewLoader(container.Catalog, container.Purchases).Apply(ctx, cat)
	if err != nil {
		log.Error().Err(err).
			Int("materials", sum.Materials).
			Int("purchases", sum.Purchases).
			Int("products", sum.Products).
			Msg("carga incompleta")
		closeStorage()
		os.Exit(1)
	}
	log.Info().
		Int("materials", sum.Materials).
		Int("purchases", sum.Purchases).
		Int("products", sum.Products).
		Int("bom_lines", sum.BOMLines).
		Str("file", path).
		Msg("catálogo cargado")
}
