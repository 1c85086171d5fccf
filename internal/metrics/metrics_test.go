package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/quizzes/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/quizzes/abc", nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/quizzes/:id", "GET", "200")))
}

func TestCounters(t *testing.T) {
	m := New()

	m.CacheRefresh(nil)
	m.CacheRefresh(errors.New("db down"))
	m.CacheRefresh(errors.New("db down"))
	m.QuizSubmitted("Easy")
	m.QuestionsGenerated(nil)
	m.ObserveAnalysis("analyze", 10*time.Millisecond, errors.New("x"))
	m.WebsocketOpened()
	m.WebsocketOpened()
	m.WebsocketClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheRefreshes.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheRefreshes.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quizzesSubmitted.WithLabelValues("Easy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.questionsGenerated.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analysisFailures.WithLabelValues("analyze")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wsConnections))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.QuizSubmitted("Hard")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `inquizzitive_quizzes_submitted_total{difficulty="Hard"} 1`)
}

func TestNilMetrics_NoPanic(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheRefresh(nil)
		m.QuizSubmitted("Easy")
		m.QuestionsGenerated(nil)
		m.ObserveAnalysis("analyze", time.Second, nil)
		m.WebsocketOpened()
		m.WebsocketClosed()
	})
}
