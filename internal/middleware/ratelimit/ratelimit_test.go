package rateLimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRule_Limits(t *testing.T) {
	h := Rule{Requests: 2, Window: time.Minute}.Handler()(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRule_PerIP(t *testing.T) {
	h := Rule{Requests: 1, Window: time.Minute}.Handler()(okHandler())

	for _, ip := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, ip)
	}
}

func TestRule_Disabled(t *testing.T) {
	h := Disabled().Login.Handler()(okHandler())

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
