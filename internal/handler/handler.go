/**
* Name: 			handler.go
* Description: 		Gin 프레임워크의 HTTP 핸들러 공통 부분
* Workflow: 		의존성 보관, 템플릿 로딩, 라우트 등록
 */
package handler

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"CanteenFeedback/internal/auth"
	"CanteenFeedback/internal/feed"
	"CanteenFeedback/internal/feedback"
	"CanteenFeedback/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// Shown instead of upstream error details.
const submitFailedMessage = "Sorry, we couldn't save your feedback right now. Please try again."

type ErrorResponse struct {
	Error string `json:"error" example:"Invalid request"`
}

type ValidationErrorResponse struct {
	Error      string               `json:"error" example:"validation failed"`
	Violations []feedback.Violation `json:"violations"`
}

type Handler struct {
	service *feedback.Service
	reader  feedback.TableReader
	hub     *feed.Hub
	issuer  *auth.TokenIssuer
	admin   auth.Admin
	timeout time.Duration
	log     *zap.SugaredLogger

	upgrader websocket.Upgrader
}

type Config struct {
	Service *feedback.Service
	Reader  feedback.TableReader
	Hub     *feed.Hub
	// Issuer is nil when admin login is disabled; admin routes are then open.
	Issuer  *auth.TokenIssuer
	Admin   auth.Admin
	Timeout time.Duration
	Log     *zap.SugaredLogger
}

func New(cfg Config) *Handler {
	return &Handler{
		service: cfg.Service,
		reader:  cfg.Reader,
		hub:     cfg.Hub,
		issuer:  cfg.Issuer,
		admin:   cfg.Admin,
		timeout: cfg.Timeout,
		log:     cfg.Log,
	}
}

// Templates parses the embedded pages.
func Templates() (*template.Template, error) {
	funcs := template.FuncMap{
		"lower": func(v any) string { return strings.ToLower(fmt.Sprint(v)) },
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Register mounts every route. submitLimit guards the public submission
// endpoints.
func (h *Handler) Register(router *gin.Engine, submitLimit gin.HandlerFunc) error {
	tmpl, err := Templates()
	if err != nil {
		return fmt.Errorf("Register(): failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/health", h.Health)
	router.GET("/", h.ShowForm)
	router.POST("/feedback", submitLimit, h.SubmitForm)
	router.POST("/api/feedback", submitLimit, h.SubmitFeedback)

	router.GET("/admin/login", h.ShowLogin)
	router.POST("/admin/login", h.Login)

	protected := router.Group("").Use(middleware.AuthMiddleware(h.issuer, false))
	{
		protected.GET("/admin/dashboard", h.ShowDashboard)
		protected.GET("/api/admin/reviews", h.GetReviews)
	}
	router.GET("/ws/reviews", middleware.AuthMiddleware(h.issuer, true), h.StreamReviews)
	return nil
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// Health godoc
// @Summary      Liveness check
// @Tags         System
// @Produce      json
// @Success      200 {object} object{status=string,time=string}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}
