package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"github.com/jgirmay/inquizzitive/internal/common/middleware"
	"github.com/jgirmay/inquizzitive/internal/quiz/models"
	"github.com/jgirmay/inquizzitive/internal/quiz/services"
)

type QuizHandler struct {
	service *services.QuizService
	limiter *middleware.RateLimiter
}

func NewQuizHandler(service *services.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

// WithGenerateLimit throttles question generation per user
func (h *QuizHandler) WithGenerateLimit(l *middleware.RateLimiter) *QuizHandler {
	h.limiter = l
	return h
}

// RegisterRoutes mounts quiz endpoints; r must already enforce authentication
func (h *QuizHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/questions/generate", middleware.RateLimit(h.limiter), h.GenerateQuestions)

	quizzes := r.Group("/quizzes")
	quizzes.POST("", h.SubmitQuiz)
	quizzes.GET("", h.History)
	quizzes.GET("/:id", h.GetAttempt)
	quizzes.DELETE("/:id", h.DeleteAttempt)
}

// POST /api/v1/questions/generate
func (h *QuizHandler) GenerateQuestions(c *gin.Context) {
	var req models.GenerateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid request body"))
		return
	}

	resp, err := h.service.GenerateQuestions(c.Request.Context(), &req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitQuiz records a completed quiz
// POST /api/v1/quizzes
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	var req models.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid request body"))
		return
	}

	attempt, err := h.service.SubmitQuiz(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

// GET /api/v1/quizzes?page=1&page_size=20
func (h *QuizHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.service.History(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/v1/quizzes/:id
func (h *QuizHandler) GetAttempt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid quiz id"))
		return
	}

	attempt, err := h.service.GetAttempt(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// DELETE /api/v1/quizzes/:id
func (h *QuizHandler) DeleteAttempt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid quiz id"))
		return
	}

	if err := h.service.DeleteAttempt(c.Request.Context(), middleware.UserID(c), id); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
