package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"integrity-service/core/model"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	metrics []model.PillarCollectionMetrics
	err     error
}

func (s staticSource) AllMetrics(context.Context) ([]model.PillarCollectionMetrics, error) {
	return s.metrics, s.err
}

func scrape(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestHandler_ExposesPillarCounters(t *testing.T) {
	src := staticSource{metrics: []model.PillarCollectionMetrics{
		{CollectionID: "books", PillarID: "p1", Files: 10, MissingFiles: 2, ChecksumErrors: 1},
	}}
	reg := NewRegistry(NewPillarCollector(src, time.Second, nil))
	rec := NewRecorder(reg)
	rec.Observe("sweep", time.Now(), nil)
	rec.Observe("sweep", time.Now(), errors.New("boom"))
	rec.Ingested("listing", 3)

	app := fiber.New()
	app.Get("/metrics", Handler(reg))
	body := scrape(t, app)

	assert.Contains(t, body, `integrity_pillar_files{collection="books",pillar="p1"} 10`)
	assert.Contains(t, body, `integrity_pillar_missing_files{collection="books",pillar="p1"} 2`)
	assert.Contains(t, body, `integrity_pillar_checksum_errors{collection="books",pillar="p1"} 1`)
	assert.Contains(t, body, "integrity_pillar_scrape_success 1")
	assert.Contains(t, body, `integrity_operations_total{operation="sweep",result="error"} 1`)
	assert.Contains(t, body, `integrity_ingested_items_total{kind="listing"} 3`)
	assert.Contains(t, body, "go_goroutines")
}

func TestHandler_SourceFailure(t *testing.T) {
	reg := NewRegistry(NewPillarCollector(staticSource{err: errors.New("db down")}, 0, nil))
	app := fiber.New()
	app.Get("/metrics", Handler(reg))

	body := scrape(t, app)
	assert.Contains(t, body, "integrity_pillar_scrape_success 0")
	assert.NotContains(t, body, "integrity_pillar_files{")
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Observe("x", time.Now(), nil)
		r.Ingested("x", 1)
	})
}
