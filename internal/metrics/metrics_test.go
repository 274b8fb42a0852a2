package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := New(false)

	r.Fetched("latino.ch", 40)
	r.Fetched("latino.ch", 2)
	r.Fetched("bachata-bern.ch", 7)
	r.FetchFailed("bachata-bern.ch")

	assert.Equal(t, 42.0, testutil.ToFloat64(r.fetched.WithLabelValues("latino.ch")))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.fetched.WithLabelValues("bachata-bern.ch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchErrors.WithLabelValues("bachata-bern.ch")))
}

func TestRecorder_RunFinished(t *testing.T) {
	r := New(false)
	at := time.Unix(1746086400, 0)

	r.Aggregated(45, 3, 1)
	r.RunFinished(StatusSuccess, 2*time.Second, at)
	r.RunFinished(StatusNoData, time.Second, at.Add(time.Hour))

	assert.Equal(t, 45.0, testutil.ToFloat64(r.published))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.duplicates))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.invalid))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues(StatusNoData)))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(r.lastSuccess), "only successful runs move the timestamp")
}

func TestRecorder_Handler(t *testing.T) {
	r := New(false)
	r.Fetched("latino.ch", 5)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `latin_events_fetched_total{source="latino.ch"} 5`)
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New(false)
	r.RunFinished(StatusError, time.Second, time.Now())
	path := filepath.Join(t.TempDir(), "latin_events.prom")

	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `latin_events_runs_total{status="error"} 1`))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.Fetched("x", 1)
		r.FetchFailed("x")
		r.Aggregated(1, 0, 0)
		r.RunFinished(StatusSuccess, time.Second, time.Now())
	})
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile("/nonexistent/path"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew_WithProcessCollectors(t *testing.T) {
	r := New(true)

	n, err := testutil.GatherAndCount(r.Registry(), "go_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
