package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jgirmay/inquizzitive/internal/metrics"
	"github.com/jgirmay/inquizzitive/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	accountmodels "github.com/jgirmay/inquizzitive/internal/accounts/models"
	quizmodels "github.com/jgirmay/inquizzitive/internal/quiz/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Env:            "test",
			AllowedOrigins: []string{"*"},
		},
		Database:  config.DatabaseConfig{Type: "sqlite", Path: ":memory:"},
		Session:   config.SessionConfig{TTL: time.Hour},
		Generator: config.GeneratorConfig{BaseURL: "http://127.0.0.1:0", Model: "test", Timeout: time.Second},
		Jobs:      config.JobsConfig{Concurrency: 1},
		Analytics: config.AnalyticsConfig{ChartDays: 30},
	}
}

func setupApp(t *testing.T) (*App, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(append(accountmodels.Models(), quizmodels.Models()...)...))

	app, err := NewApp(testConfig(), db, zap.NewNop(), metrics.New())
	require.NoError(t, err)
	t.Cleanup(app.Shutdown)
	return app, setupRouter(app)
}

func call(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestServer_SubmitThenAnalyze(t *testing.T) {
	app, router := setupApp(t)

	w := call(router, "POST", "/api/v1/auth/register", "", accountmodels.RegisterRequest{
		Username: "student", Email: "student@example.com", Password: "practice-makes",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(router, "POST", "/api/v1/auth/login", "", accountmodels.LoginRequest{Username: "student", Password: "practice-makes"})
	require.Equal(t, http.StatusOK, w.Code)
	var login accountmodels.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	for _, correct := range []int{2, 3, 9} {
		w = call(router, "POST", "/api/v1/quizzes", login.Token, quizmodels.SubmitQuizRequest{
			Category: "Physics", Difficulty: "Medium", TotalQuestions: 10, CorrectAnswers: correct,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	app.inProcess.Wait()

	w = call(router, "GET", "/api/v1/analytics", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	weak := result["weakAreas"].([]interface{})
	require.Len(t, weak, 1)
	assert.Equal(t, "Physics", weak[0].(map[string]interface{})["category"])

	w = call(router, "GET", "/api/v1/analytics/cached", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code, "submit triggers a background cache refresh")
}

func TestServer_AuthAndInfra(t *testing.T) {
	_, router := setupApp(t)

	for _, path := range []string{"/api/v1/analytics", "/api/v1/quizzes", "/api/v1/account"} {
		w := call(router, "GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.JSONEq(t, `{"code":"NOT_AUTHENTICATED","error":"User not authenticated"}`, w.Body.String())
	}

	w := call(router, "GET", "/health/liveness", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(router, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "inquizzitive_http_requests_total")
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "host=db user=app password=*** dbname=q", maskDSN("host=db user=app password=s3cret dbname=q"))
	assert.Equal(t, "host=db password=***", maskDSN("host=db password=s3cret"))
	assert.Equal(t, "./data/q.db", maskDSN("./data/q.db"))
}
