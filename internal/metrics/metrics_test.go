package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesAuthCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	Register(registry)

	before := testutil.ToFloat64(Logins.WithLabelValues("success"))
	Logins.WithLabelValues("success").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Logins.WithLabelValues("success")))

	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `auth_logins_total{outcome="success"}`)
}
