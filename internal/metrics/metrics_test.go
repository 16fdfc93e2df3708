package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.LoginAttempt(ResultSuccess)
	m.LoginAttempt(ResultRejected)
	m.LoginAttempt(ResultRejected)
	m.Registration(ResultConflict)
	m.SessionResolution(ResultInvalid)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(ResultRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues(ResultConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionResolutions.WithLabelValues(ResultInvalid)))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHash("hash", 30*time.Millisecond)
	m.LoginAttempt(ResultSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `auth_password_hash_seconds_count{operation="hash"} 1`)
	assert.Contains(t, string(body), `auth_login_attempts_total{result="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = New()
		_ = New()
	})
}
