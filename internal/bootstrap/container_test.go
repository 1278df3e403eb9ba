package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/bootstrap"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/pkg/config"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

func TestBuild_Memoria(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Storage: config.StorageMemory}, Costing: config.CostingConfig{OrderPrefix: "OC"}}
	c, cleanup, err := bootstrap.Build(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	defer cleanup()

	assert.Equal(t, "OC", c.Purchases.NumberPrefix())

	m, err := c.Catalog.CreateMaterial(context.Background(), dto.CreateMaterialRequest{Name: "Sensor", UnitMeasure: "und"})
	require.NoError(t, err)
	_, err = c.Adjustments.AdjustStock(context.Background(), m.ID, dto.AdjustStockRequest{Delta: decimal.NewFromInt(1), Reference: "OC-202603-0001"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el prefijo de órdenes llega a los ajustes")
}

func TestBuild_AlmacenamientoDesconocido(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Storage: "sqlite"}}
	c, cleanup, err := bootstrap.Build(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
	assert.Nil(t, c)
	require.NotNil(t, cleanup)
	assert.NotPanics(t, cleanup)
}

func TestBuild_PostgresInalcanzableNoDejaPoolAbierto(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cfg := &config.Config{
		App: config.AppConfig{Storage: config.StoragePostgres},
		DB: config.DBConfig{
			Host: "127.0.0.1", Port: 1, User: "costeo", Password: "x", DBName: "costeo",
			SSLMode: "disable", AutoMigrate: true,
		},
	}
	c, cleanup, err := bootstrap.Build(ctx, cfg, logger.Nop())
	assert.Error(t, err)
	assert.Nil(t, c)
	require.NotNil(t, cleanup)
	assert.NotPanics(t, cleanup)
}
