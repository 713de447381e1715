package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"CanteenFeedback/internal/feedback"
	"CanteenFeedback/internal/middleware"
)

// /admin/login 요청 바디
type LoginRequest struct {
	Username string `form:"username" json:"username" example:"admin"`
	Password string `form:"password" json:"password" example:"password123"`
}

type LoginSuccessResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type ReviewsResponse struct {
	Tables []feedback.TableView `json:"tables"`
}

type dashboardPage struct {
	Tables []feedback.TableView
	Error  string
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "application/json")
}

func (h *Handler) ShowLogin(c *gin.Context) {
	if h.issuer == nil {
		c.Redirect(http.StatusSeeOther, "/admin/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// Login godoc
// @Summary      Admin login
// @Description  Checks the admin credentials and issues a dashboard token. The token is also set as the admin_token cookie.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handler.LoginRequest true "Credentials"
// @Success      200 {object} handler.LoginSuccessResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse
// @Router       /admin/login [post]
func (h *Handler) Login(c *gin.Context) {
	if h.issuer == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Admin login is disabled"})
		return
	}

	var creds LoginRequest
	if err := c.ShouldBind(&creds); err != nil {
		if wantsJSON(c) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		} else {
			c.HTML(http.StatusBadRequest, "login.html", gin.H{"Error": "Invalid request"})
		}
		return
	}

	if !h.admin.Check(creds.Username, creds.Password) {
		h.log.Warnf("Login(): failed admin login for %q from %s", creds.Username, c.ClientIP())
		if wantsJSON(c) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		} else {
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": "Invalid credentials"})
		}
		return
	}

	token, err := h.issuer.GenerateToken(creds.Username)
	if err != nil {
		h.log.Errorf("Login(): failed to generate token: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, token, 0, "/", "", c.Request.TLS != nil, true)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, LoginSuccessResponse{Token: token})
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/dashboard")
}

func (h *Handler) ShowDashboard(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	views, err := feedback.Dashboard(ctx, h.reader)
	if err != nil {
		h.log.Errorf("ShowDashboard(): %v", err)
		c.HTML(http.StatusInternalServerError, "dashboard.html", dashboardPage{Error: "Failed to load reviews"})
		return
	}
	c.HTML(http.StatusOK, "dashboard.html", dashboardPage{Tables: views})
}

// GetReviews godoc
// @Summary      Read both review tables
// @Description  Returns every row of positive_reviews and negative_reviews, header row first.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.ReviewsResponse
// @Failure      401 {object} handler.ErrorResponse
// @Failure      500 {object} handler.ErrorResponse
// @Router       /api/admin/reviews [get]
func (h *Handler) GetReviews(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	views, err := feedback.Dashboard(ctx, h.reader)
	if err != nil {
		h.log.Errorf("GetReviews(): %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch reviews"})
		return
	}
	c.JSON(http.StatusOK, ReviewsResponse{Tables: views})
}

// StreamReviews godoc
// @Summary      Live review feed
// @Description  WebSocket stream of rows as they are stored. Connect with ws:// or wss://; pass the admin token as the token query parameter or cookie.
// @Tags         Admin
// @Param        token query string false "Admin JWT"
// @Success      101 {string} string "Switching Protocols"
// @Failure      401 {object} handler.ErrorResponse
// @Router       /ws/reviews [get]
func (h *Handler) StreamReviews(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnf("StreamReviews(): failed to upgrade to WebSocket: %v", err)
		return
	}
	h.hub.Serve(conn)
}
