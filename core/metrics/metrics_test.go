package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catalog-sync/core/metrics"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := metrics.New()
	var _ reconcile.Observer = m

	m.Observe(store.KindField, reconcile.OutcomeInserted)
	m.Observe(store.KindField, reconcile.OutcomeInserted)
	m.Observe(store.KindCrop, reconcile.OutcomeMatchedRegistry)

	expected := `
# HELP catalog_sync_reconcile_resolutions_total Snapshot entities resolved, by entity kind and outcome.
# TYPE catalog_sync_reconcile_resolutions_total counter
catalog_sync_reconcile_resolutions_total{kind="crop",outcome="matched_registry"} 1
catalog_sync_reconcile_resolutions_total{kind="field",outcome="inserted"} 2
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "catalog_sync_reconcile_resolutions_total")
	assert.NoError(t, err)
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.ObserveImport(reconcile.ScopeCropZones, nil, 150*time.Millisecond)
	m.ObserveImport(reconcile.ScopeCropZones, errors.New("boom"), time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `catalog_sync_import_runs_total{scope="cropzones",status="ok"} 1`)
	assert.Contains(t, string(body), `catalog_sync_import_runs_total{scope="cropzones",status="error"} 1`)
	assert.Contains(t, string(body), "catalog_sync_import_duration_seconds_count")
}
