package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value reads the current value of a counter or gauge.
func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}

func TestRecorders(t *testing.T) {
	m := New()

	m.RecordLogin(true)
	m.RecordLogin(false)
	m.RecordLogin(false)
	assert.Equal(t, 1.0, value(t, m.LoginAttempts.WithLabelValues("success")))
	assert.Equal(t, 2.0, value(t, m.LoginAttempts.WithLabelValues("failure")))

	m.RecordMail("contact", nil)
	m.RecordMail("contact", errors.New("smtp down"))
	assert.Equal(t, 1.0, value(t, m.MailSent.WithLabelValues("contact", "failed")))

	m.RecordHTTPRequest(http.MethodGet, "/api/projects", 200, 10*time.Millisecond)
	assert.Equal(t, 1.0, value(t, m.HTTPRequestsTotal.WithLabelValues("GET", "/api/projects", "200")))

	m.RecordUpload(2048)
	assert.Equal(t, 2048.0, value(t, m.UploadBytes))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordLogin(true)
		m.RecordDecision("allow")
		m.RecordMail("contact", nil)
		m.RecordHTTPRequest("GET", "/", 200, time.Second)
		m.RecordUpload(1)
		m.RecordCache("hit")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordLogin(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "projecthub_auth_login_attempts_total")
}
