package serverfx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/0x5457/phosim/internal/config"
	"github.com/0x5457/phosim/internal/embeddings/embeddingsfx"
	"github.com/0x5457/phosim/internal/metrics/metricsfx"
	"github.com/0x5457/phosim/internal/models"
	"github.com/0x5457/phosim/internal/similarity/similarityfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func TestServerModule(t *testing.T) {
	v := config.NewViper()
	v.Set("model.provider", config.ProviderLocal)
	v.Set("http.addr", "127.0.0.1:0")
	cfg, err := config.Load(v)
	require.NoError(t, err)

	var lc *Lifecycle
	app := fx.New(
		fx.Supply(cfg, zap.NewNop()),
		embeddingsfx.Module,
		metricsfx.Module,
		similarityfx.Module,
		Module,
		fx.Invoke(Register),
		fx.Populate(&lc),
	)

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	defer func() {
		require.NoError(t, app.Stop(ctx))
	}()

	base := fmt.Sprintf("http://%s", lc.Addr().String())

	resp, err := http.Get(base + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var msg models.MessageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.Equal(t, models.HealthMessage, msg.Message)

	resp2, err := http.Post(base+"/similarity", "application/json",
		strings.NewReader(`{"sentence1": "Xin chào", "sentence2": "Xin chào"}`))
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	var sim models.SimilarityResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&sim))
	assert.InDelta(t, 1.0, sim.Similarity, 1e-5)

	resp3, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp3.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
}

func TestServerModule_PortInUse(t *testing.T) {
	v := config.NewViper()
	v.Set("model.provider", config.ProviderLocal)
	v.Set("http.addr", "127.0.0.1:0")
	cfg, err := config.Load(v)
	require.NoError(t, err)

	var first *Lifecycle
	app1 := fx.New(
		fx.Supply(cfg, zap.NewNop()),
		embeddingsfx.Module,
		similarityfx.Module,
		Module,
		fx.Invoke(Register),
		fx.Populate(&first),
	)
	ctx := context.Background()
	require.NoError(t, app1.Start(ctx))
	defer func() { _ = app1.Stop(ctx) }()

	cfg2 := *cfg
	cfg2.HTTP.Addr = first.Addr().String()
	app2 := fx.New(
		fx.Supply(&cfg2, zap.NewNop()),
		embeddingsfx.Module,
		similarityfx.Module,
		Module,
		fx.Invoke(Register),
	)
	assert.Error(t, app2.Start(ctx))
}

func TestServerModule_MetricsDisabled(t *testing.T) {
	v := config.NewViper()
	v.Set("model.provider", config.ProviderLocal)
	v.Set("http.addr", "127.0.0.1:0")
	v.Set("metrics.enabled", false)
	cfg, err := config.Load(v)
	require.NoError(t, err)

	var lc *Lifecycle
	app := fx.New(
		fx.Supply(cfg, zap.NewNop()),
		embeddingsfx.Module,
		metricsfx.Module,
		similarityfx.Module,
		Module,
		fx.Invoke(Register),
		fx.Populate(&lc),
	)
	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	defer func() { require.NoError(t, app.Stop(ctx)) }()

	base := fmt.Sprintf("http://%s", lc.Addr().String())
	resp, err := http.Post(base+"/similarity", "application/json",
		strings.NewReader(`{"sentence1": "mèo", "sentence2": "mèo"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	_ = resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
