package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := New("insights")

	c.ObserveAnalysis("stored", OutcomeSuccess, time.Millisecond)
	c.ObserveAnalysis("stored", OutcomeSuccess, time.Millisecond)
	c.ObserveAnalysis("inline", OutcomeInvalid, time.Millisecond)
	c.ObserveGeneration(OutcomeUnavailable, time.Second)
	c.ObserveAssetMirror("image", OutcomeSuccess)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.analysesTotal.WithLabelValues("stored", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.analysesTotal.WithLabelValues("inline", OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generationsTotal.WithLabelValues(OutcomeUnavailable)))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "insights_analyses_total")
	assert.Contains(t, rec.Body.String(), "insights_assets_mirrored_total")
}
